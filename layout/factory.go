package layout

import (
	"math"
	"reflect"
	"slices"

	"go.uber.org/zap"
	"golang.org/x/exp/constraints"

	"github.com/wippyai/binlayout/config"
	"github.com/wippyai/binlayout/errors"
	"github.com/wippyai/binlayout/internal/abi"
)

// Number is any numeric argument accepted by the factory. Floating point
// values are accepted only when they hold an integral value.
type Number interface {
	constraints.Integer | constraints.Float
}

// integral converts v to an int, rejecting fractional and out-of-range values.
func integral[N Number](typ, arg string, v N) (int, error) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
			return 0, errors.InvalidArgument(errors.PhaseConfigure, typ, arg, v)
		}
		if f >= math.MaxInt || f < math.MinInt {
			return 0, errors.Overflow(errors.PhaseConfigure, nil, v, "int")
		}
		return int(f), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt {
			return 0, errors.Overflow(errors.PhaseConfigure, nil, v, "int")
		}
		return int(u), nil
	default:
		return int(rv.Int()), nil
	}
}

func clamp(typ, arg string, n int) int {
	if n >= 0 {
		return n
	}
	Logger().Warn("argument cannot be < 0, clamped to zero",
		zap.String("type", typ),
		zap.String("argument", arg),
		zap.Int("value", n))
	return 0
}

// Block returns a descriptor for an opaque run of size bytes.
func Block[N Number](size N) (*Type, error) {
	n, err := integral("block", "size", size)
	if err != nil {
		return nil, err
	}
	return &Type{kind: KindBlock, length: clamp("block", "size", n)}, nil
}

// BlockArray returns a descriptor for elements of elem packed into exactly
// size bytes. Load decodes whole elements while they fit and keeps the
// remaining bytes as slack.
func BlockArray[N Number](elem *Type, size N) (*Type, error) {
	if elem == nil {
		return nil, errors.New(errors.PhaseConfigure, errors.KindInvalidArgument).
			Type("blockarray").
			Detail("element type is nil").
			Build()
	}
	n, err := integral("blockarray", "size", size)
	if err != nil {
		return nil, err
	}
	return &Type{kind: KindBlockArray, elem: elem, length: clamp("blockarray", "size", n)}, nil
}

// Array returns a descriptor for count consecutive elements. The count is
// checked against the configured max_array_count.
func Array[N Number](elem *Type, count N) (*Type, error) {
	if elem == nil {
		return nil, errors.New(errors.PhaseConfigure, errors.KindInvalidArgument).
			Type("array").
			Detail("element type is nil").
			Build()
	}
	n, err := integral("array", "count", count)
	if err != nil {
		return nil, err
	}
	n = clamp("array", "count", n)

	if err := checkCount(elem, n); err != nil {
		return nil, err
	}
	if size, ok := fixedSize(elem); ok {
		if _, ok := abi.SafeMulU64(size, uint64(n)); !ok {
			return nil, errors.New(errors.PhaseConfigure, errors.KindOverflow).
				Type("array").
				Value(n).
				Detail("%d elements of %d bytes overflow uint64", n, size).
				Build()
		}
	}
	return &Type{kind: KindArray, elem: elem, length: n}, nil
}

// checkCount applies the max_array_count guard. It returns an error only
// when the configuration enforces the limit.
func checkCount(elem *Type, n int) error {
	cfg := CurrentConfig()
	if cfg.MaxArrayCount <= 0 || n <= cfg.MaxArrayCount {
		return nil
	}
	fields := []zap.Field{
		zap.Stringer("element", elem),
		zap.Int("count", n),
		zap.Int("max_array_count", cfg.MaxArrayCount),
	}
	if cfg.EnforceMaxCount == config.EnforceFail {
		Logger().Error("requested array count is larger than max_array_count", fields...)
		return errors.LimitExceeded(errors.PhaseConfigure, "array", n, cfg.MaxArrayCount)
	}
	Logger().Warn("requested array count is larger than max_array_count", fields...)
	return nil
}

// Align returns a padding descriptor that advances to the next multiple of
// modulus. Undefined padding is never read from or written to the source.
func Align[N Number](modulus N, undefined bool) (*Type, error) {
	m, err := integral("align", "modulus", modulus)
	if err != nil {
		return nil, err
	}
	if m < 1 {
		return nil, errors.New(errors.PhaseConfigure, errors.KindInvalidArgument).
			Type("align").
			Value(m).
			Detail("modulus must be >= 1, got %d", m).
			Build()
	}
	return &Type{kind: KindAlign, modulus: m, undefined: undefined}, nil
}

// Struct returns a descriptor laying fields out consecutively.
// Field types must not be nil.
func Struct(fields ...Field) *Type {
	return &Type{kind: KindStruct, fields: slices.Clone(fields)}
}

// Union returns an overlay descriptor. Every field views the same storage,
// which is root when given, or a block as large as the largest field.
func Union(root *Type, fields ...Field) *Type {
	return &Type{kind: KindUnion, root: root, fields: slices.Clone(fields)}
}

// Must panics if err is non-nil.
func Must(t *Type, err error) *Type {
	if err != nil {
		panic(err)
	}
	return t
}
