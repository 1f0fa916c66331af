package abi

import (
	"math"
	"reflect"
)

func SafeAddU64(a, b uint64) (uint64, bool) {
	if a > math.MaxUint64-b {
		return 0, false
	}
	return a + b, true
}

func SafeMulU64(a, b uint64) (uint64, bool) {
	if b != 0 && a > math.MaxUint64/b {
		return 0, false
	}
	return a * b, true
}

// TypeName returns "nil" for nil values, avoiding reflect.TypeOf(nil) panic.
func TypeName(value any) string {
	if value == nil {
		return "nil"
	}
	return reflect.TypeOf(value).String()
}

// AlignTo rounds offset up to the next multiple of align. Any positive
// modulus is accepted, not only powers of two.
func AlignTo(offset, align uint64) uint64 {
	return offset + Padding(offset, align)
}

// Padding returns the minimal byte count bringing offset to a multiple of align.
func Padding(offset, align uint64) uint64 {
	if align <= 1 {
		return 0
	}
	return (align - offset%align) % align
}
