// Code generated by "stringer -type=NodeTag"; edit go:generate directive, not this file.

package interp

import "strconv"

func _() {
	var x [1]struct{}
	_ = x[CallNodeTag-0]
	_ = x[SymbolNodeTag-1]
	_ = x[LiteralNodeTag-2]
	_ = x[FuncDefNodeTag-3]
	_ = x[BlockNodeTag-4]
}

const _NodeTag_name = "CallNodeTagSymbolNodeTagLiteralNodeTagFuncDefNodeTagBlockNodeTag"

var _NodeTag_index = [...]uint8{0, 11, 24, 38, 52, 64}

func (i NodeTag) String() string {
	if i >= NodeTag(len(_NodeTag_index)-1) {
		return "NodeTag(" + strconv.FormatInt(int64(i), 10) + ")"
	}
	return _NodeTag_name[_NodeTag_index[i]:_NodeTag_index[i+1]]
}
