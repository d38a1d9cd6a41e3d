package traversal

// Operation names as they appear in recorded bytecode. The DSL records
// them, the default script syntax renders them, and the graph engine keys
// its step table on them.
const (
	OpWithSideEffect = "withSideEffect"
	OpWith           = "with"

	OpV          = "V"
	OpE          = "E"
	OpInject     = "inject"
	OpAddV       = "addV"
	OpAddE       = "addE"
	OpProperty   = "property"
	OpDrop       = "drop"
	OpHas        = "has"
	OpHasLabel   = "hasLabel"
	OpHasID      = "hasId"
	OpWhere      = "where"
	OpIs         = "is"
	OpNot        = "not"
	OpAnd        = "and"
	OpOr         = "or"
	OpDedup      = "dedup"
	OpLimit      = "limit"
	OpSkip       = "skip"
	OpRange      = "range"
	OpSimplePath = "simplePath"
	OpOut        = "out"
	OpIn         = "in"
	OpBoth       = "both"
	OpOutE       = "outE"
	OpInE        = "inE"
	OpBothE      = "bothE"
	OpInV        = "inV"
	OpOutV       = "outV"
	OpBothV      = "bothV"
	OpOtherV     = "otherV"
	OpValues     = "values"
	OpValueMap   = "valueMap"
	OpID         = "id"
	OpLabel      = "label"
	OpConstant   = "constant"
	OpSelect     = "select"
	OpAs         = "as"
	OpBy         = "by"
	OpOrder      = "order"
	OpFold       = "fold"
	OpUnfold     = "unfold"
	OpCount      = "count"
	OpSum        = "sum"
	OpMin        = "min"
	OpMax        = "max"
	OpMean       = "mean"
	OpPath       = "path"
	OpCoalesce   = "coalesce"
	OpUnion      = "union"
	OpRepeat     = "repeat"
	OpTimes      = "times"
	OpEmit       = "emit"
	OpUntil      = "until"
	OpGroupCount = "groupCount"
	OpAggregate  = "aggregate"
	OpCap        = "cap"
	OpFrom       = "from"
	OpTo         = "to"
	OpProject    = "project"
	OpMap        = "map"
	OpIdentity   = "identity"
)

var sourceOperations = []string{
	OpWithSideEffect,
	OpWith,
}

var stepOperations = []string{
	OpV, OpE, OpInject, OpAddV, OpAddE, OpProperty, OpDrop,
	OpHas, OpHasLabel, OpHasID, OpWhere, OpIs, OpNot, OpAnd, OpOr,
	OpDedup, OpLimit, OpSkip, OpRange, OpSimplePath,
	OpOut, OpIn, OpBoth, OpOutE, OpInE, OpBothE,
	OpInV, OpOutV, OpBothV, OpOtherV,
	OpValues, OpValueMap, OpID, OpLabel, OpConstant,
	OpSelect, OpAs, OpBy, OpOrder,
	OpFold, OpUnfold, OpCount, OpSum, OpMin, OpMax, OpMean,
	OpPath, OpCoalesce, OpUnion,
	OpRepeat, OpTimes, OpEmit, OpUntil,
	OpGroupCount, OpAggregate, OpCap,
	OpFrom, OpTo, OpProject, OpMap, OpIdentity,
}

// SourceOperations returns the known source instruction names.
func SourceOperations() []string {
	out := make([]string, len(sourceOperations))
	copy(out, sourceOperations)
	return out
}

// StepOperations returns the known step instruction names.
func StepOperations() []string {
	out := make([]string, len(stepOperations))
	copy(out, stepOperations)
	return out
}
