package coerce

import (
	"math"
	"reflect"
)

// SafeMul multiplies non-negative ints, reporting false on overflow.
func SafeMul(a, b int) (int, bool) {
	if a < 0 || b < 0 {
		return 0, false
	}
	if b != 0 && a > math.MaxInt/b {
		return 0, false
	}
	return a * b, true
}

// SafeAdd adds non-negative ints, reporting false on overflow.
func SafeAdd(a, b int) (int, bool) {
	if a < 0 || b < 0 || a > math.MaxInt-b {
		return 0, false
	}
	return a + b, true
}

// TypeName returns "nil" for nil values, avoiding reflect.TypeOf(nil) panic.
func TypeName(value any) string {
	if value == nil {
		return "nil"
	}
	return reflect.TypeOf(value).String()
}

// FitsUnsigned reports whether v fits in an unsigned integer of the given width.
func FitsUnsigned(v uint64, bits int) bool {
	return bits >= 64 || v < 1<<uint(bits)
}

// FitsSigned reports whether v fits in a signed integer of the given width.
func FitsSigned(v int64, bits int) bool {
	if bits >= 64 {
		return true
	}
	limit := int64(1) << uint(bits-1)
	return v >= -limit && v < limit
}
