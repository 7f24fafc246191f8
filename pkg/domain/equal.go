package domain

import "reflect"

// Equal is the one equality notion used throughout the protocol: deep
// structural equality. Identical atomic values and structurally identical
// composite values compare equal regardless of reference identity.
//
// The Keep sentinel is only ever equal to itself.
func Equal(a, b any) bool {
	if a == Keep || b == Keep {
		return a == b
	}
	return reflect.DeepEqual(a, b)
}

// EqualArgs compares two instantiation argument sequences positionally.
func EqualArgs(a, b []any) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}
