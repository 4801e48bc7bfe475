package models

import "strconv"

// VariableLabel returns the label of the decision variable for the item at
// index. Labels are the canonical decimal form of the index; see
// [ParseVariableLabel] for the inverse.
func VariableLabel(index int) string {
	return strconv.Itoa(index)
}

// ParseVariableLabel recovers the item index from a variable label. Only the
// exact output of [VariableLabel] is accepted: ASCII digits, no sign, no
// leading zeros, no whitespace, and a value in [0, n).
func ParseVariableLabel(label string, n int) (int, error) {
	if label == "" {
		return 0, decodeErrorf("empty variable label")
	}
	for i := 0; i < len(label); i++ {
		if label[i] < '0' || label[i] > '9' {
			return 0, decodeErrorf("variable label %q is not a decimal index", label)
		}
	}
	if len(label) > 1 && label[0] == '0' {
		return 0, decodeErrorf("variable label %q has a leading zero", label)
	}

	idx, err := strconv.Atoi(label)
	if err != nil {
		return 0, decodeErrorf("variable label %q: %v", label, err)
	}
	if idx >= n {
		return 0, decodeErrorf("variable label %q is out of range for %d items", label, n)
	}
	return idx, nil
}
