package abi

import (
	"math"
	"testing"
)

func TestPadding(t *testing.T) {
	tests := []struct {
		offset, align, want uint64
	}{
		{0, 4, 0},
		{1, 4, 3},
		{5, 4, 3},
		{8, 4, 0},
		{9, 8, 7},
		{7, 3, 2},
		{6, 3, 0},
		{5, 1, 0},
		{5, 0, 0},
	}

	for _, tc := range tests {
		if got := Padding(tc.offset, tc.align); got != tc.want {
			t.Errorf("Padding(%d, %d) = %d, want %d", tc.offset, tc.align, got, tc.want)
		}
		if got := AlignTo(tc.offset, tc.align); got != tc.offset+tc.want {
			t.Errorf("AlignTo(%d, %d) = %d, want %d", tc.offset, tc.align, got, tc.offset+tc.want)
		}
	}
}

func TestSafeArithmetic(t *testing.T) {
	if _, ok := SafeAddU64(math.MaxUint64, 1); ok {
		t.Error("SafeAddU64 should overflow")
	}
	if v, ok := SafeAddU64(2, 3); !ok || v != 5 {
		t.Errorf("SafeAddU64(2, 3) = %d, %v", v, ok)
	}
	if _, ok := SafeMulU64(math.MaxUint64, 2); ok {
		t.Error("SafeMulU64 should overflow")
	}
	if v, ok := SafeMulU64(0, math.MaxUint64); !ok || v != 0 {
		t.Errorf("SafeMulU64(0, max) = %d, %v", v, ok)
	}
}

func TestTypeName(t *testing.T) {
	if TypeName(nil) != "nil" {
		t.Error("TypeName(nil) should be nil")
	}
	if TypeName(1.5) != "float64" {
		t.Errorf("TypeName(1.5) = %s", TypeName(1.5))
	}
}

func TestDiscriminantSize(t *testing.T) {
	tests := []struct {
		cases int
		want  uint64
	}{
		{1, 1}, {256, 1}, {257, 2}, {65536, 2}, {65537, 4},
	}
	for _, tc := range tests {
		if got := DiscriminantSize(tc.cases); got != tc.want {
			t.Errorf("DiscriminantSize(%d) = %d, want %d", tc.cases, got, tc.want)
		}
	}
}

func TestFlagsSize(t *testing.T) {
	tests := []struct {
		flags int
		want  uint64
	}{
		{0, 0}, {1, 1}, {8, 1}, {9, 2}, {17, 4}, {33, 8}, {64, 8}, {65, 12}, {96, 12}, {97, 16},
	}
	for _, tc := range tests {
		if got := FlagsSize(tc.flags); got != tc.want {
			t.Errorf("FlagsSize(%d) = %d, want %d", tc.flags, got, tc.want)
		}
	}
}
