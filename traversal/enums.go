package traversal

// EnumValue is implemented by the symbolic constants that appear as
// instruction arguments (T, Order, Scope, ...). Translators qualify them as
// EnumType().Name() in the target dialect; the engine switches on the
// concrete type.
type EnumValue interface {
	EnumType() string
	Name() string
}

// T identifies the token parts of an element: id, label, or a property
// key/value position.
type T string

const (
	TID    T = "id"
	TLabel T = "label"
	TKey   T = "key"
	TValue T = "value"
)

func (t T) EnumType() string { return "T" }
func (t T) Name() string     { return string(t) }
func (t T) String() string   { return "T." + string(t) }

// Order controls result ordering in order() and by() modulation.
type Order string

const (
	OrderAsc     Order = "asc"
	OrderDesc    Order = "desc"
	OrderShuffle Order = "shuffle"
)

func (o Order) EnumType() string { return "Order" }
func (o Order) Name() string     { return string(o) }
func (o Order) String() string   { return "Order." + string(o) }

// Scope selects whether an operation applies to the whole stream or to the
// current traverser's local object.
type Scope string

const (
	ScopeGlobal Scope = "global"
	ScopeLocal  Scope = "local"
)

func (s Scope) EnumType() string { return "Scope" }
func (s Scope) Name() string     { return string(s) }
func (s Scope) String() string   { return "Scope." + string(s) }

// Pop selects which of several values bound to one label select() yields.
type Pop string

const (
	PopFirst Pop = "first"
	PopLast  Pop = "last"
	PopAll   Pop = "all"
	PopMixed Pop = "mixed"
)

func (p Pop) EnumType() string { return "Pop" }
func (p Pop) Name() string     { return string(p) }
func (p Pop) String() string   { return "Pop." + string(p) }

// Column addresses one side of a map entry.
type Column string

const (
	ColumnKeys   Column = "keys"
	ColumnValues Column = "values"
)

func (c Column) EnumType() string { return "Column" }
func (c Column) Name() string     { return string(c) }
func (c Column) String() string   { return "Column." + string(c) }

// Direction orients edge-adjacent movement.
type Direction string

const (
	DirectionOut  Direction = "OUT"
	DirectionIn   Direction = "IN"
	DirectionBoth Direction = "BOTH"
)

func (d Direction) EnumType() string { return "Direction" }
func (d Direction) Name() string     { return string(d) }
func (d Direction) String() string   { return "Direction." + string(d) }

// Cardinality states how property() treats an existing value for the key.
type Cardinality string

const (
	CardinalitySingle Cardinality = "single"
	CardinalityList   Cardinality = "list"
	CardinalitySet    Cardinality = "set"
)

func (c Cardinality) EnumType() string { return "Cardinality" }
func (c Cardinality) Name() string     { return string(c) }
func (c Cardinality) String() string   { return "Cardinality." + string(c) }
