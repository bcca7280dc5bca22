// Code generated by "stringer -type=SlotKind"; edit go:generate directive, not this file.

package interp

import "strconv"

func _() {
	// An "invalid array index" compiler error signals that the constant
	// values have changed. Re-run the stringer command to regenerate.
	var x [1]struct{}
	_ = x[BooleanKind-0]
	_ = x[ByteKind-1]
	_ = x[IntKind-2]
	_ = x[DoubleKind-3]
	_ = x[ObjectKind-4]
}

const _SlotKind_name = "BooleanKindByteKindIntKindDoubleKindObjectKind"

var _SlotKind_index = [...]uint8{0, 11, 19, 26, 36, 46}

func (i SlotKind) String() string {
	if i >= SlotKind(len(_SlotKind_index)-1) {
		return "SlotKind(" + strconv.FormatInt(int64(i), 10) + ")"
	}
	return _SlotKind_name[_SlotKind_index[i]:_SlotKind_index[i+1]]
}
