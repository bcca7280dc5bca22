// Code generated by "stringer -type=PayloadKind"; edit go:generate directive, not this file.

package interp

import "strconv"

func _() {
	var x [1]struct{}
	_ = x[Regular-0]
	_ = x[PromiseEvaluation-1]
	_ = x[NonFunctionParent-2]
	_ = x[Irregular-3]
}

const _PayloadKind_name = "RegularPromiseEvaluationNonFunctionParentIrregular"

var _PayloadKind_index = [...]uint8{0, 7, 24, 41, 50}

func (i PayloadKind) String() string {
	if i >= PayloadKind(len(_PayloadKind_index)-1) {
		return "PayloadKind(" + strconv.FormatInt(int64(i), 10) + ")"
	}
	return _PayloadKind_name[_PayloadKind_index[i]:_PayloadKind_index[i+1]]
}
