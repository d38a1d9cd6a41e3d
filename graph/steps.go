package graph

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/wander-lang/wander/translate"
	"github.com/wander-lang/wander/traversal"
)

// compilePipeline turns recorded step applications into runnable stages.
// Modulators (by, from, to, times, until, emit) do not become stages of
// their own; they attach to the stage compiled immediately before them.
// Compilation happens per evaluation, so stage state never leaks between
// runs of the same Traversal.
func compilePipeline(apps []application) ([]stage, error) {
	stages := make([]stage, 0, len(apps))
	for _, app := range apps {
		if _, isModulator := modulatorTargets[app.op]; isModulator {
			if len(stages) == 0 {
				return nil, fmt.Errorf("%s() has no step to modulate", app.op)
			}
			if err := attachModulator(stages[len(stages)-1], app); err != nil {
				return nil, err
			}
			continue
		}
		st, err := compileStep(app)
		if err != nil {
			return nil, err
		}
		stages = append(stages, st)
	}
	for _, st := range stages {
		if r, ok := st.(*repeatStage); ok {
			if r.times == 0 && r.until == nil {
				return nil, fmt.Errorf("repeat() needs times() or until() to terminate")
			}
		}
	}
	return stages, nil
}

func attachModulator(st stage, app application) error {
	switch app.op {
	case traversal.OpBy:
		target, ok := st.(interface{ addBy(bySpec) error })
		if !ok {
			return fmt.Errorf("by() cannot modulate %s()", st.opName())
		}
		spec, err := parseBy(app.args)
		if err != nil {
			return err
		}
		return target.addBy(spec)
	case traversal.OpFrom, traversal.OpTo:
		target, ok := st.(*addEStage)
		if !ok {
			return fmt.Errorf("%s() cannot modulate %s()", app.op, st.opName())
		}
		return target.setEndpoint(app.op, parseEndpoint(app.args))
	case traversal.OpTimes, traversal.OpUntil, traversal.OpEmit:
		target, ok := st.(*repeatStage)
		if !ok {
			return fmt.Errorf("%s() cannot modulate %s()", app.op, st.opName())
		}
		return target.setModulator(app.op, app.args)
	}
	return fmt.Errorf("unknown modulator %s()", app.op)
}

func compileStep(app application) (stage, error) {
	op := app.op
	args := app.args
	switch op {
	case traversal.OpV:
		ids := args
		return &flatMapStage{op: op, fn: func(ec *evalContext, t traverser) ([]traverser, error) {
			var out []traverser
			for _, v := range ec.graph.Vertices() {
				if len(ids) > 0 && !idInList(v.ID(), ids) {
					continue
				}
				out = append(out, t.advance(v))
			}
			return out, nil
		}}, nil

	case traversal.OpE:
		ids := args
		return &flatMapStage{op: op, fn: func(ec *evalContext, t traverser) ([]traverser, error) {
			var out []traverser
			for _, e := range ec.graph.Edges() {
				if len(ids) > 0 && !idInList(e.ID(), ids) {
					continue
				}
				out = append(out, t.advance(e))
			}
			return out, nil
		}}, nil

	case traversal.OpInject:
		values := args
		return &barrierStage{op: op, fn: func(ec *evalContext, in []traverser) ([]traverser, error) {
			out := liveTraversers(in)
			for _, v := range values {
				out = append(out, rootTraverser().advance(v))
			}
			return out, nil
		}}, nil

	case traversal.OpAddV:
		label := "vertex"
		if len(args) == 1 {
			label = args[0].(string)
		}
		return &flatMapStage{op: op, fn: func(ec *evalContext, t traverser) ([]traverser, error) {
			v := ec.graph.AddVertex(label, nil)
			return []traverser{t.advance(v)}, nil
		}}, nil

	case traversal.OpAddE:
		return &addEStage{label: args[0].(string)}, nil

	case traversal.OpProperty:
		return compileProperty(args)

	case traversal.OpDrop:
		return &flatMapStage{op: op, fn: func(ec *evalContext, t traverser) ([]traverser, error) {
			switch el := t.value.(type) {
			case *Vertex:
				ec.graph.RemoveVertex(el.ID())
			case *Edge:
				ec.graph.RemoveEdge(el.ID())
			default:
				return nil, fmt.Errorf("drop requires a graph element, got %T", t.value)
			}
			return nil, nil
		}}, nil

	case traversal.OpHas:
		check := compileHas(args)
		return filterStage(op, check), nil

	case traversal.OpHasLabel:
		labels := stringList(args)
		return filterStage(op, func(ec *evalContext, t traverser) bool {
			el, ok := asElement(t.value)
			return ok && containsString(labels, el.Label())
		}), nil

	case traversal.OpHasID:
		ids := args
		return filterStage(op, func(ec *evalContext, t traverser) bool {
			el, ok := asElement(t.value)
			return ok && idInList(el.ID(), ids)
		}), nil

	case traversal.OpWhere:
		if pred, ok := args[0].(*traversal.P); ok {
			return filterStage(op, func(ec *evalContext, t traverser) bool {
				return pred.Test(t.value)
			}), nil
		}
		child := args[0].(*Traversal)
		return &flatMapStage{op: op, fn: func(ec *evalContext, t traverser) ([]traverser, error) {
			ok, err := nestedYields(ec, child, t)
			if err != nil || !ok {
				return nil, err
			}
			return []traverser{t}, nil
		}}, nil

	case traversal.OpIs:
		want := args[0]
		return filterStage(op, func(ec *evalContext, t traverser) bool {
			return matchValue(want, t.value)
		}), nil

	case traversal.OpNot:
		child := args[0].(*Traversal)
		return &flatMapStage{op: op, fn: func(ec *evalContext, t traverser) ([]traverser, error) {
			ok, err := nestedYields(ec, child, t)
			if err != nil || ok {
				return nil, err
			}
			return []traverser{t}, nil
		}}, nil

	case traversal.OpAnd, traversal.OpOr:
		children := traversalList(args)
		wantAll := op == traversal.OpAnd
		return &flatMapStage{op: op, fn: func(ec *evalContext, t traverser) ([]traverser, error) {
			matched := wantAll
			for _, child := range children {
				ok, err := nestedYields(ec, child, t)
				if err != nil {
					return nil, err
				}
				if ok != wantAll {
					matched = !wantAll
					break
				}
			}
			if !matched {
				return nil, nil
			}
			return []traverser{t}, nil
		}}, nil

	case traversal.OpDedup:
		return &dedupStage{}, nil

	case traversal.OpLimit:
		n, err := intArg(op, args, 0)
		if err != nil {
			return nil, err
		}
		return &barrierStage{op: op, fn: func(ec *evalContext, in []traverser) ([]traverser, error) {
			live := liveTraversers(in)
			if len(live) > n {
				live = live[:n]
			}
			return live, nil
		}}, nil

	case traversal.OpSkip:
		n, err := intArg(op, args, 0)
		if err != nil {
			return nil, err
		}
		return &barrierStage{op: op, fn: func(ec *evalContext, in []traverser) ([]traverser, error) {
			live := liveTraversers(in)
			if len(live) <= n {
				return nil, nil
			}
			return live[n:], nil
		}}, nil

	case traversal.OpRange:
		low, err := intArg(op, args, 0)
		if err != nil {
			return nil, err
		}
		high, err := intArg(op, args, 1)
		if err != nil {
			return nil, err
		}
		return &barrierStage{op: op, fn: func(ec *evalContext, in []traverser) ([]traverser, error) {
			live := liveTraversers(in)
			if low >= len(live) {
				return nil, nil
			}
			end := high
			if end > len(live) {
				end = len(live)
			}
			return live[low:end], nil
		}}, nil

	case traversal.OpSimplePath:
		return filterStage(op, func(ec *evalContext, t traverser) bool {
			seen := make(map[any]bool, len(t.path))
			for _, v := range t.path {
				k := dedupKey(v)
				if seen[k] {
					return false
				}
				seen[k] = true
			}
			return true
		}), nil

	case traversal.OpOut, traversal.OpIn, traversal.OpBoth:
		labels := stringList(args)
		return &flatMapStage{op: op, fn: func(ec *evalContext, t traverser) ([]traverser, error) {
			v, ok := t.value.(*Vertex)
			if !ok {
				return nil, fmt.Errorf("%s requires a vertex, got %T", op, t.value)
			}
			var out []traverser
			if op != traversal.OpIn {
				for _, e := range v.OutEdges(labels...) {
					out = append(out, t.advance(e.InVertex()))
				}
			}
			if op != traversal.OpOut {
				for _, e := range v.InEdges(labels...) {
					out = append(out, t.advance(e.OutVertex()))
				}
			}
			return out, nil
		}}, nil

	case traversal.OpOutE, traversal.OpInE, traversal.OpBothE:
		labels := stringList(args)
		return &flatMapStage{op: op, fn: func(ec *evalContext, t traverser) ([]traverser, error) {
			v, ok := t.value.(*Vertex)
			if !ok {
				return nil, fmt.Errorf("%s requires a vertex, got %T", op, t.value)
			}
			var out []traverser
			if op != traversal.OpInE {
				for _, e := range v.OutEdges(labels...) {
					out = append(out, t.advance(e))
				}
			}
			if op != traversal.OpOutE {
				for _, e := range v.InEdges(labels...) {
					out = append(out, t.advance(e))
				}
			}
			return out, nil
		}}, nil

	case traversal.OpInV, traversal.OpOutV, traversal.OpBothV:
		return &flatMapStage{op: op, fn: func(ec *evalContext, t traverser) ([]traverser, error) {
			e, ok := t.value.(*Edge)
			if !ok {
				return nil, fmt.Errorf("%s requires an edge, got %T", op, t.value)
			}
			switch op {
			case traversal.OpInV:
				return []traverser{t.advance(e.InVertex())}, nil
			case traversal.OpOutV:
				return []traverser{t.advance(e.OutVertex())}, nil
			default:
				return []traverser{t.advance(e.OutVertex()), t.advance(e.InVertex())}, nil
			}
		}}, nil

	case traversal.OpOtherV:
		return &flatMapStage{op: op, fn: func(ec *evalContext, t traverser) ([]traverser, error) {
			e, ok := t.value.(*Edge)
			if !ok {
				return nil, fmt.Errorf("otherV requires an edge, got %T", t.value)
			}
			if len(t.path) < 2 {
				return nil, fmt.Errorf("otherV requires arriving at the edge from one of its vertices")
			}
			switch t.path[len(t.path)-2] {
			case e.OutVertex():
				return []traverser{t.advance(e.InVertex())}, nil
			case e.InVertex():
				return []traverser{t.advance(e.OutVertex())}, nil
			}
			return nil, fmt.Errorf("otherV requires arriving at the edge from one of its vertices")
		}}, nil

	case traversal.OpValues:
		keys := stringList(args)
		return &flatMapStage{op: op, fn: func(ec *evalContext, t traverser) ([]traverser, error) {
			el, ok := asElement(t.value)
			if !ok {
				return nil, fmt.Errorf("values requires a graph element, got %T", t.value)
			}
			ks := keys
			if len(ks) == 0 {
				ks = el.PropertyKeys()
			}
			var out []traverser
			for _, k := range ks {
				v, ok := el.Property(k)
				if !ok {
					continue
				}
				for _, item := range spreadValue(v) {
					out = append(out, t.advance(item))
				}
			}
			return out, nil
		}}, nil

	case traversal.OpValueMap:
		keys := stringList(args)
		return &flatMapStage{op: op, fn: func(ec *evalContext, t traverser) ([]traverser, error) {
			el, ok := asElement(t.value)
			if !ok {
				return nil, fmt.Errorf("valueMap requires a graph element, got %T", t.value)
			}
			var m map[string]any
			if len(keys) == 0 {
				m = el.Properties()
			} else {
				m = make(map[string]any, len(keys))
				for _, k := range keys {
					if v, ok := el.Property(k); ok {
						m[k] = v
					}
				}
			}
			return []traverser{t.advance(m)}, nil
		}}, nil

	case traversal.OpID, traversal.OpLabel:
		return &flatMapStage{op: op, fn: func(ec *evalContext, t traverser) ([]traverser, error) {
			el, ok := asElement(t.value)
			if !ok {
				return nil, fmt.Errorf("%s requires a graph element, got %T", op, t.value)
			}
			if op == traversal.OpID {
				return []traverser{t.advance(el.ID())}, nil
			}
			return []traverser{t.advance(el.Label())}, nil
		}}, nil

	case traversal.OpConstant:
		value := args[0]
		return &flatMapStage{op: op, fn: func(ec *evalContext, t traverser) ([]traverser, error) {
			return []traverser{t.advance(value)}, nil
		}}, nil

	case traversal.OpSelect:
		return compileSelect(args), nil

	case traversal.OpAs:
		labels := stringList(args)
		return &flatMapStage{op: op, fn: func(ec *evalContext, t traverser) ([]traverser, error) {
			return []traverser{t.withLabels(labels...)}, nil
		}}, nil

	case traversal.OpOrder:
		return &orderStage{}, nil

	case traversal.OpFold:
		return &barrierStage{op: op, fn: func(ec *evalContext, in []traverser) ([]traverser, error) {
			live := liveTraversers(in)
			values := make([]any, len(live))
			for i, t := range live {
				values[i] = t.value
			}
			return []traverser{rootTraverser().advance(values)}, nil
		}}, nil

	case traversal.OpUnfold:
		return &flatMapStage{op: op, fn: func(ec *evalContext, t traverser) ([]traverser, error) {
			list, ok := t.value.([]any)
			if !ok {
				return []traverser{t}, nil
			}
			out := make([]traverser, len(list))
			for i, v := range list {
				out[i] = t.advance(v)
			}
			return out, nil
		}}, nil

	case traversal.OpCount:
		return &barrierStage{op: op, fn: func(ec *evalContext, in []traverser) ([]traverser, error) {
			n := int64(len(liveTraversers(in)))
			return []traverser{rootTraverser().advance(n)}, nil
		}}, nil

	case traversal.OpSum, traversal.OpMean:
		return compileSum(op), nil

	case traversal.OpMin, traversal.OpMax:
		return compileMinMax(op), nil

	case traversal.OpPath:
		return &flatMapStage{op: op, fn: func(ec *evalContext, t traverser) ([]traverser, error) {
			snapshot := make([]any, len(t.path))
			copy(snapshot, t.path)
			return []traverser{t.advance(snapshot)}, nil
		}}, nil

	case traversal.OpCoalesce:
		children := traversalList(args)
		return &flatMapStage{op: op, fn: func(ec *evalContext, t traverser) ([]traverser, error) {
			for _, child := range children {
				res, err := runNested(ec, child, t)
				if err != nil {
					return nil, err
				}
				if len(res) > 0 {
					return res, nil
				}
			}
			return nil, nil
		}}, nil

	case traversal.OpUnion:
		children := traversalList(args)
		return &flatMapStage{op: op, fn: func(ec *evalContext, t traverser) ([]traverser, error) {
			var out []traverser
			for _, child := range children {
				res, err := runNested(ec, child, t)
				if err != nil {
					return nil, err
				}
				out = append(out, res...)
			}
			return out, nil
		}}, nil

	case traversal.OpRepeat:
		body := args[0].(*Traversal)
		bodyStages, err := compilePipeline(body.apps)
		if err != nil {
			return nil, err
		}
		return &repeatStage{body: bodyStages}, nil

	case traversal.OpGroupCount:
		return &groupCountStage{}, nil

	case traversal.OpAggregate:
		key := args[0].(string)
		return &flatMapStage{op: op, fn: func(ec *evalContext, t traverser) ([]traverser, error) {
			ec.sideEffects[key] = append(ec.sideEffects[key], t.value)
			return []traverser{t}, nil
		}}, nil

	case traversal.OpCap:
		key := args[0].(string)
		return &barrierStage{op: op, fn: func(ec *evalContext, in []traverser) ([]traverser, error) {
			list := ec.sideEffects[key]
			out := make([]any, len(list))
			copy(out, list)
			return []traverser{rootTraverser().advance(out)}, nil
		}}, nil

	case traversal.OpProject:
		return &projectStage{keys: stringList(args)}, nil

	case traversal.OpMap:
		child := args[0].(*Traversal)
		return &flatMapStage{op: op, fn: func(ec *evalContext, t traverser) ([]traverser, error) {
			v, ok, err := nestedFirst(ec, child, t)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, nil
			}
			return []traverser{t.advance(v)}, nil
		}}, nil

	case traversal.OpIdentity:
		return &flatMapStage{op: op, fn: func(ec *evalContext, t traverser) ([]traverser, error) {
			return []traverser{t}, nil
		}}, nil
	}

	return nil, translate.Errorf(translate.ErrUnsupportedOperation,
		"no step named %q in this engine", op)
}

func filterStage(op string, keep func(ec *evalContext, t traverser) bool) stage {
	return &flatMapStage{op: op, fn: func(ec *evalContext, t traverser) ([]traverser, error) {
		if !keep(ec, t) {
			return nil, nil
		}
		return []traverser{t}, nil
	}}
}

func compileHas(args []any) func(ec *evalContext, t traverser) bool {
	switch len(args) {
	case 1:
		key := args[0].(string)
		return func(ec *evalContext, t traverser) bool {
			_, ok := lookupKey(t.value, key)
			return ok
		}
	case 2:
		if token, ok := args[0].(traversal.T); ok {
			want := args[1]
			return func(ec *evalContext, t traverser) bool {
				el, ok := asElement(t.value)
				if !ok {
					return false
				}
				if token == traversal.TID {
					return matchValue(want, el.ID())
				}
				return matchValue(want, el.Label())
			}
		}
		key := args[0].(string)
		want := args[1]
		return func(ec *evalContext, t traverser) bool {
			v, ok := lookupKey(t.value, key)
			return ok && matchValue(want, v)
		}
	default:
		label := args[0].(string)
		key := args[1].(string)
		want := args[2]
		return func(ec *evalContext, t traverser) bool {
			el, ok := asElement(t.value)
			if !ok || el.Label() != label {
				return false
			}
			v, ok := lookupKey(t.value, key)
			return ok && matchValue(want, v)
		}
	}
}

func compileProperty(args []any) (stage, error) {
	card := traversal.CardinalitySingle
	i := 0
	if c, ok := args[0].(traversal.Cardinality); ok {
		card = c
		i = 1
	}
	key := args[i].(string)
	value := args[i+1]
	return &flatMapStage{op: traversal.OpProperty, fn: func(ec *evalContext, t traverser) ([]traverser, error) {
		resolved := value
		if child, ok := value.(*Traversal); ok {
			v, found, err := nestedFirst(ec, child, t)
			if err != nil {
				return nil, err
			}
			if !found {
				return nil, fmt.Errorf("property(%q) traversal produced no value", key)
			}
			resolved = v
		}
		switch el := t.value.(type) {
		case *Vertex:
			setVertexProperty(el, key, resolved, card)
		case *Edge:
			if card != traversal.CardinalitySingle {
				return nil, fmt.Errorf("edge properties are single-valued")
			}
			el.SetProperty(key, resolved)
		default:
			return nil, fmt.Errorf("property requires a graph element, got %T", t.value)
		}
		return []traverser{t}, nil
	}}, nil
}

func setVertexProperty(v *Vertex, key string, value any, card traversal.Cardinality) {
	switch card {
	case traversal.CardinalityList:
		cur, ok := v.Property(key)
		if !ok {
			v.SetProperty(key, []any{value})
			return
		}
		v.SetProperty(key, append(asList(cur), value))
	case traversal.CardinalitySet:
		cur, ok := v.Property(key)
		if !ok {
			v.SetProperty(key, []any{value})
			return
		}
		list := asList(cur)
		for _, existing := range list {
			if equalAny(existing, value) {
				return
			}
		}
		v.SetProperty(key, append(list, value))
	default:
		v.SetProperty(key, value)
	}
}

func compileSelect(args []any) stage {
	op := traversal.OpSelect
	if col, ok := args[0].(traversal.Column); ok {
		return &flatMapStage{op: op, fn: func(ec *evalContext, t traverser) ([]traverser, error) {
			list, err := columnOf(t.value, col)
			if err != nil {
				return nil, err
			}
			return []traverser{t.advance(list)}, nil
		}}
	}

	pop := traversal.PopLast
	var labels []string
	if p, ok := args[0].(traversal.Pop); ok {
		pop = p
		labels = []string{args[1].(string)}
	} else {
		labels = stringList(args)
	}

	if len(labels) == 1 {
		label := labels[0]
		return &flatMapStage{op: op, fn: func(ec *evalContext, t traverser) ([]traverser, error) {
			list, ok := t.selectLabel(label)
			if !ok {
				return nil, nil
			}
			return []traverser{t.advance(popFrom(list, pop))}, nil
		}}
	}

	return &flatMapStage{op: op, fn: func(ec *evalContext, t traverser) ([]traverser, error) {
		m := make(map[string]any, len(labels))
		for _, label := range labels {
			list, ok := t.selectLabel(label)
			if !ok {
				return nil, nil
			}
			m[label] = list[len(list)-1]
		}
		return []traverser{t.advance(m)}, nil
	}}
}

func popFrom(list []any, pop traversal.Pop) any {
	switch pop {
	case traversal.PopFirst:
		return list[0]
	case traversal.PopAll:
		out := make([]any, len(list))
		copy(out, list)
		return out
	case traversal.PopMixed:
		if len(list) == 1 {
			return list[0]
		}
		out := make([]any, len(list))
		copy(out, list)
		return out
	default:
		return list[len(list)-1]
	}
}

func columnOf(value any, col traversal.Column) (any, error) {
	switch m := value.(type) {
	case map[string]any:
		keys := sortedKeys(m)
		out := make([]any, len(keys))
		for i, k := range keys {
			if col == traversal.ColumnKeys {
				out[i] = k
			} else {
				out[i] = m[k]
			}
		}
		return out, nil
	case map[any]any:
		keys := sortedAnyKeys(m)
		if col == traversal.ColumnKeys {
			return keys, nil
		}
		out := make([]any, len(keys))
		for i, k := range keys {
			out[i] = m[k]
		}
		return out, nil
	}
	return nil, fmt.Errorf("select(Column) requires a map, got %T", value)
}

func compileSum(op string) stage {
	return &barrierStage{op: op, fn: func(ec *evalContext, in []traverser) ([]traverser, error) {
		live := liveTraversers(in)
		if len(live) == 0 {
			return nil, nil
		}
		var intSum int64
		var floatSum float64
		allInts := true
		for _, t := range live {
			if i, ok := intValue(t.value); ok {
				intSum += i
				floatSum += float64(i)
				continue
			}
			f, ok := toNumber(t.value)
			if !ok {
				return nil, fmt.Errorf("%s requires numeric values, got %T", op, t.value)
			}
			allInts = false
			floatSum += f
		}
		var result any
		switch {
		case op == traversal.OpMean:
			result = floatSum / float64(len(live))
		case allInts:
			result = intSum
		default:
			result = floatSum
		}
		return []traverser{rootTraverser().advance(result)}, nil
	}}
}

func compileMinMax(op string) stage {
	return &barrierStage{op: op, fn: func(ec *evalContext, in []traverser) ([]traverser, error) {
		live := liveTraversers(in)
		if len(live) == 0 {
			return nil, nil
		}
		best := live[0].value
		for _, t := range live[1:] {
			c, err := compareAny(t.value, best)
			if err != nil {
				return nil, err
			}
			if (op == traversal.OpMin && c < 0) || (op == traversal.OpMax && c > 0) {
				best = t.value
			}
		}
		return []traverser{rootTraverser().advance(best)}, nil
	}}
}

// orderStage sorts the stream by its by() specs, identity ascending when
// none are given. Sorting is stable so equal keys keep stream order.
type orderStage struct {
	specs []bySpec
}

func (s *orderStage) opName() string { return traversal.OpOrder }

func (s *orderStage) addBy(spec bySpec) error {
	s.specs = append(s.specs, spec)
	return nil
}

func (s *orderStage) run(ec *evalContext, in []traverser) ([]traverser, error) {
	live := liveTraversers(in)
	specs := s.specs
	if len(specs) == 0 {
		specs = []bySpec{{}}
	}
	for _, spec := range specs {
		if spec.order == traversal.OrderShuffle {
			rand.Shuffle(len(live), func(i, j int) {
				live[i], live[j] = live[j], live[i]
			})
			return live, nil
		}
	}

	keys := make([][]any, len(live))
	for i, t := range live {
		ks := make([]any, len(specs))
		for j, spec := range specs {
			v, err := byValue(ec, t, spec)
			if err != nil {
				return nil, err
			}
			ks[j] = v
		}
		keys[i] = ks
	}

	idx := make([]int, len(live))
	for i := range idx {
		idx[i] = i
	}
	var sortErr error
	sort.SliceStable(idx, func(a, b int) bool {
		for j, spec := range specs {
			c, err := compareAny(keys[idx[a]][j], keys[idx[b]][j])
			if err != nil {
				if sortErr == nil {
					sortErr = err
				}
				return false
			}
			if c == 0 {
				continue
			}
			if spec.order == traversal.OrderDesc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
	if sortErr != nil {
		return nil, sortErr
	}

	out := make([]traverser, len(live))
	for i, j := range idx {
		out[i] = live[j]
	}
	return out, nil
}

// dedupStage keeps the first traverser per distinct value, or per by() key
// when modulated.
type dedupStage struct {
	spec *bySpec
}

func (s *dedupStage) opName() string { return traversal.OpDedup }

func (s *dedupStage) addBy(spec bySpec) error {
	if s.spec != nil {
		return fmt.Errorf("dedup() accepts a single by() modulator")
	}
	s.spec = &spec
	return nil
}

func (s *dedupStage) run(ec *evalContext, in []traverser) ([]traverser, error) {
	live := liveTraversers(in)
	seen := make(map[any]bool, len(live))
	out := live[:0]
	for _, t := range live {
		v := t.value
		if s.spec != nil {
			var err error
			v, err = byValue(ec, t, *s.spec)
			if err != nil {
				return nil, err
			}
		}
		k := dedupKey(v)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, t)
	}
	return out, nil
}

// groupCountStage reduces the stream to one map of value (or by() key) to
// occurrence count.
type groupCountStage struct {
	spec *bySpec
}

func (s *groupCountStage) opName() string { return traversal.OpGroupCount }

func (s *groupCountStage) addBy(spec bySpec) error {
	if s.spec != nil {
		return fmt.Errorf("groupCount() accepts a single by() modulator")
	}
	s.spec = &spec
	return nil
}

func (s *groupCountStage) run(ec *evalContext, in []traverser) ([]traverser, error) {
	counts := map[any]int64{}
	reps := map[any]any{}
	for _, t := range liveTraversers(in) {
		v := t.value
		if s.spec != nil {
			var err error
			v, err = byValue(ec, t, *s.spec)
			if err != nil {
				return nil, err
			}
		}
		k := dedupKey(v)
		if _, ok := counts[k]; !ok {
			reps[k] = groupKey(v)
		}
		counts[k]++
	}
	result := make(map[any]any, len(counts))
	for k, n := range counts {
		result[reps[k]] = n
	}
	return []traverser{rootTraverser().advance(result)}, nil
}

// projectStage maps each traverser to a map of the projected keys, each
// extracted by the matching by() modulator (identity when fewer bys than
// keys are given).
type projectStage struct {
	keys  []string
	specs []bySpec
}

func (s *projectStage) opName() string { return traversal.OpProject }

func (s *projectStage) addBy(spec bySpec) error {
	if len(s.specs) >= len(s.keys) {
		return fmt.Errorf("project() has more by() modulators than keys")
	}
	s.specs = append(s.specs, spec)
	return nil
}

func (s *projectStage) run(ec *evalContext, in []traverser) ([]traverser, error) {
	var out []traverser
	for _, t := range liveTraversers(in) {
		if err := ec.ctx.Err(); err != nil {
			return nil, err
		}
		m := make(map[string]any, len(s.keys))
		for i, key := range s.keys {
			var spec bySpec
			if i < len(s.specs) {
				spec = s.specs[i]
			}
			v, err := byValue(ec, t, spec)
			if err != nil {
				return nil, err
			}
			m[key] = v
		}
		out = append(out, t.advance(m))
	}
	return out, nil
}

// addEStage creates one edge per incoming traverser. Endpoints default to
// the current vertex and are overridden by from() and to().
type addEStage struct {
	label string
	from  *endpointSpec
	to    *endpointSpec
}

type endpointSpec struct {
	label  string
	child  *Traversal
	vertex *Vertex
}

func parseEndpoint(args []any) *endpointSpec {
	switch v := args[0].(type) {
	case string:
		return &endpointSpec{label: v}
	case *Traversal:
		return &endpointSpec{child: v}
	default:
		return &endpointSpec{vertex: v.(*Vertex)}
	}
}

func (s *addEStage) opName() string { return traversal.OpAddE }

func (s *addEStage) setEndpoint(op string, spec *endpointSpec) error {
	switch op {
	case traversal.OpFrom:
		if s.from != nil {
			return fmt.Errorf("from() already set on addE(%q)", s.label)
		}
		s.from = spec
	default:
		if s.to != nil {
			return fmt.Errorf("to() already set on addE(%q)", s.label)
		}
		s.to = spec
	}
	return nil
}

func (s *addEStage) run(ec *evalContext, in []traverser) ([]traverser, error) {
	var out []traverser
	for _, t := range in {
		if err := ec.ctx.Err(); err != nil {
			return nil, err
		}
		outV, err := s.resolve(ec, t, s.from, traversal.OpFrom)
		if err != nil {
			return nil, err
		}
		inV, err := s.resolve(ec, t, s.to, traversal.OpTo)
		if err != nil {
			return nil, err
		}
		e, err := ec.graph.AddEdge(s.label, outV, inV, nil)
		if err != nil {
			return nil, err
		}
		out = append(out, t.advance(e))
	}
	return out, nil
}

func (s *addEStage) resolve(ec *evalContext, t traverser, spec *endpointSpec, side string) (*Vertex, error) {
	if spec == nil {
		v, ok := t.value.(*Vertex)
		if !ok {
			return nil, fmt.Errorf("addE(%q) needs a %s() endpoint, current value is %T", s.label, side, t.value)
		}
		return v, nil
	}
	switch {
	case spec.vertex != nil:
		return spec.vertex, nil
	case spec.child != nil:
		v, ok, err := nestedFirst(ec, spec.child, t)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%s() traversal produced no vertex", side)
		}
		vert, isVertex := v.(*Vertex)
		if !isVertex {
			return nil, fmt.Errorf("%s() traversal produced %T, want a vertex", side, v)
		}
		return vert, nil
	default:
		list, ok := t.selectLabel(spec.label)
		if !ok {
			return nil, fmt.Errorf("%s() references unbound label %q", side, spec.label)
		}
		vert, isVertex := list[len(list)-1].(*Vertex)
		if !isVertex {
			return nil, fmt.Errorf("%s() label %q is bound to %T, want a vertex", side, spec.label, list[len(list)-1])
		}
		return vert, nil
	}
}

// repeatStage loops its body over the stream. The body runs before the
// exit checks, so every traverser passes through it at least once; until()
// is checked before times(). emit() copies survivors to the output while
// they keep looping.
type repeatStage struct {
	body       []stage
	times      int
	until      *Traversal
	hasEmit    bool
	emitFilter *Traversal
}

func (s *repeatStage) opName() string { return traversal.OpRepeat }

func (s *repeatStage) setModulator(op string, args []any) error {
	switch op {
	case traversal.OpTimes:
		if s.times != 0 {
			return fmt.Errorf("times() already set on repeat()")
		}
		n, err := intArg(op, args, 0)
		if err != nil {
			return err
		}
		s.times = n
	case traversal.OpUntil:
		if s.until != nil {
			return fmt.Errorf("until() already set on repeat()")
		}
		s.until = args[0].(*Traversal)
	default:
		if s.hasEmit {
			return fmt.Errorf("emit() already set on repeat()")
		}
		s.hasEmit = true
		if len(args) == 1 {
			s.emitFilter = args[0].(*Traversal)
		}
	}
	return nil
}

func (s *repeatStage) run(ec *evalContext, in []traverser) ([]traverser, error) {
	maxLoops := ec.opts.MaxRepeatLoops
	if maxLoops <= 0 {
		maxLoops = defaultMaxRepeatLoops
	}
	cur := in
	var out []traverser
	loops := 0
	for len(cur) > 0 {
		if err := ec.ctx.Err(); err != nil {
			return nil, err
		}
		loops++
		if loops > maxLoops {
			return nil, fmt.Errorf("repeat exceeded %d iterations", maxLoops)
		}
		next, err := runPipeline(ec, s.body, cur)
		if err != nil {
			return nil, err
		}
		var continuing []traverser
		for _, t := range next {
			t.loops = loops
			done := false
			if s.until != nil {
				ok, err := nestedYields(ec, s.until, t)
				if err != nil {
					return nil, err
				}
				done = ok
			}
			if !done && s.times > 0 && loops >= s.times {
				done = true
			}
			if done {
				out = append(out, t)
				continue
			}
			if s.hasEmit {
				keep := true
				if s.emitFilter != nil {
					keep, err = nestedYields(ec, s.emitFilter, t)
					if err != nil {
						return nil, err
					}
				}
				if keep {
					out = append(out, t)
				}
			}
			continuing = append(continuing, t)
		}
		cur = continuing
	}
	return out, nil
}

// bySpec is one parsed by() modulation.
type bySpec struct {
	key      string
	useKey   bool
	token    traversal.T
	useToken bool
	child    *Traversal
	order    traversal.Order
}

func parseBy(args []any) (bySpec, error) {
	spec := bySpec{order: traversal.OrderAsc}
	if len(args) == 0 {
		return spec, nil
	}
	switch v := args[0].(type) {
	case traversal.Order:
		spec.order = v
		return spec, nil
	case string:
		spec.key = v
		spec.useKey = true
	case traversal.T:
		if v != traversal.TID && v != traversal.TLabel {
			return spec, fmt.Errorf("by(%s) is not supported by this engine", v)
		}
		spec.token = v
		spec.useToken = true
	case *Traversal:
		spec.child = v
	}
	if len(args) == 2 {
		spec.order = args[1].(traversal.Order)
	}
	return spec, nil
}

func byValue(ec *evalContext, t traverser, spec bySpec) (any, error) {
	switch {
	case spec.child != nil:
		v, ok, err := nestedFirst(ec, spec.child, t)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("by() traversal produced no value")
		}
		return v, nil
	case spec.useToken:
		el, ok := asElement(t.value)
		if !ok {
			return nil, fmt.Errorf("by(%s) requires a graph element, got %T", spec.token, t.value)
		}
		if spec.token == traversal.TID {
			return el.ID(), nil
		}
		return el.Label(), nil
	case spec.useKey:
		v, ok := lookupKey(t.value, spec.key)
		if !ok {
			return nil, fmt.Errorf("no value under key %q", spec.key)
		}
		return v, nil
	default:
		return t.value, nil
	}
}

// element is the property surface shared by vertices and edges.
type element interface {
	ID() any
	Label() string
	Property(key string) (any, bool)
	Properties() map[string]any
	PropertyKeys() []string
}

func asElement(v any) (element, bool) {
	switch el := v.(type) {
	case *Vertex:
		return el, true
	case *Edge:
		return el, true
	}
	return nil, false
}

// lookupKey reads a named value from a graph element or a map.
func lookupKey(value any, key string) (any, bool) {
	switch x := value.(type) {
	case *Vertex:
		return x.Property(key)
	case *Edge:
		return x.Property(key)
	case map[string]any:
		v, ok := x[key]
		return v, ok
	case map[any]any:
		v, ok := x[key]
		return v, ok
	}
	return nil, false
}

func liveTraversers(in []traverser) []traverser {
	out := make([]traverser, 0, len(in))
	for _, t := range in {
		if !t.root {
			out = append(out, t)
		}
	}
	return out
}

func spreadValue(v any) []any {
	if list, ok := v.([]any); ok {
		return list
	}
	return []any{v}
}

func stringList(args []any) []string {
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = a.(string)
	}
	return out
}

func traversalList(args []any) []*Traversal {
	out := make([]*Traversal, len(args))
	for i, a := range args {
		out[i] = a.(*Traversal)
	}
	return out
}

func idInList(id any, ids []any) bool {
	for _, want := range ids {
		if equalAny(id, want) {
			return true
		}
	}
	return false
}

// matchValue compares a stream value against a recorded argument, which is
// either a predicate or a literal.
func matchValue(want, got any) bool {
	if p, ok := want.(*traversal.P); ok {
		return p.Test(got)
	}
	return equalAny(got, want)
}

// equalAny compares graph elements by identity and everything else by
// predicate equality, which widens numeric types.
func equalAny(a, b any) bool {
	if av, ok := a.(*Vertex); ok {
		bv, ok := b.(*Vertex)
		return ok && av == bv
	}
	if ae, ok := a.(*Edge); ok {
		be, ok := b.(*Edge)
		return ok && ae == be
	}
	if _, ok := b.(*Vertex); ok {
		return false
	}
	if _, ok := b.(*Edge); ok {
		return false
	}
	return traversal.Eq(b).Test(a)
}

func compareAny(a, b any) (int, error) {
	if af, ok := toNumber(a); ok {
		if bf, ok := toNumber(b); ok {
			switch {
			case af < bf:
				return -1, nil
			case af > bf:
				return 1, nil
			}
			return 0, nil
		}
	}
	if as, ok := a.(string); ok {
		if bs, ok := b.(string); ok {
			return strings.Compare(as, bs), nil
		}
	}
	if at, ok := a.(time.Time); ok {
		if bt, ok := b.(time.Time); ok {
			switch {
			case at.Before(bt):
				return -1, nil
			case at.After(bt):
				return 1, nil
			}
			return 0, nil
		}
	}
	return 0, fmt.Errorf("cannot compare %T with %T", a, b)
}

func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func intValue(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	}
	return 0, false
}

// dedupKey maps a value to a comparable key: elements by identity, numbers
// widened, everything unhashable by its printed form.
func dedupKey(v any) any {
	switch x := v.(type) {
	case int:
		return int64(x)
	case int32:
		return int64(x)
	case float32:
		return float64(x)
	case *Vertex:
		return x
	case *Edge:
		return x
	}
	switch v.(type) {
	case nil, bool, string, int64, float64, time.Time:
		return v
	}
	return fmt.Sprintf("%T<%v>", v, v)
}

// groupKey preserves the original value as a result map key when it is
// hashable, falling back to dedupKey's form.
func groupKey(v any) any {
	switch v.(type) {
	case nil, bool, string, int, int32, int64, float32, float64, time.Time, *Vertex, *Edge:
		return v
	}
	return dedupKey(v)
}

func sortedAnyKeys(m map[any]any) []any {
	keys := make([]any, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return fmt.Sprintf("%T<%v>", keys[i], keys[i]) < fmt.Sprintf("%T<%v>", keys[j], keys[j])
	})
	return keys
}
