package layout

import (
	"fmt"
	"math/bits"
	"slices"
	"strings"

	"github.com/wippyai/binlayout/config"
	"github.com/wippyai/binlayout/internal/abi"
)

// Type is an immutable layout descriptor. Descriptors carry no state and
// are shared freely between instances; use Clone to derive a variant.
type Type struct {
	elem       *Type
	addr       *Type
	root       *Type
	ancestor   AncestorFunc
	transform  TransformFunc
	name       string
	order      config.ByteOrder
	fields     []Field
	width      int
	length     int
	modulus    int
	kind       Kind
	resolution Resolution
	signed     bool
	undefined  bool
}

// Field is a named member of a struct or union.
type Field struct {
	Type *Type
	Name string
}

func integer(name string, width int, signed bool) *Type {
	return &Type{kind: KindInt, name: name, width: width, signed: signed}
}

// Predeclared integer descriptors.
var (
	Uint8  = integer("uint8", 1, false)
	Uint16 = integer("uint16", 2, false)
	Uint32 = integer("uint32", 4, false)
	Uint64 = integer("uint64", 8, false)
	Int8   = integer("int8", 1, true)
	Int16  = integer("int16", 2, true)
	Int32  = integer("int32", 4, true)
	Int64  = integer("int64", 8, true)

	// NativeAddress is the pointer-sized unsigned integer of the platform.
	NativeAddress = nativeAddress()
)

func nativeAddress() *Type {
	if bits.UintSize == 32 {
		return Uint32
	}
	return Uint64
}

func (t *Type) Kind() Kind { return t.kind }

// Name returns the display name, or the generated description when unnamed.
func (t *Type) Name() string {
	if t.name != "" {
		return t.name
	}
	return t.String()
}

// Width is the byte width of an integer descriptor.
func (t *Type) Width() int { return t.width }

func (t *Type) Signed() bool { return t.signed }

// Len is the byte length of a block or blockarray, or the element count of
// an array.
func (t *Type) Len() int { return t.length }

func (t *Type) Modulus() int { return t.modulus }

// Undefined reports whether alignment padding skips the source.
func (t *Type) Undefined() bool { return t.undefined }

// Elem is the element type of an array or the target of a pointer.
func (t *Type) Elem() *Type { return t.elem }

// Address is the addressing integer type of a pointer.
func (t *Type) Address() *Type { return t.addr }

func (t *Type) Resolution() Resolution { return t.resolution }

// Root is the explicit root of a union, nil when it is inferred.
func (t *Type) Root() *Type { return t.root }

// Fields returns a copy of the struct or union members.
func (t *Type) Fields() []Field { return slices.Clone(t.fields) }

// ByteOrder is the byte order override, empty when inherited.
func (t *Type) ByteOrder() config.ByteOrder { return t.order }

func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	if t.name != "" {
		return t.name
	}
	switch t.kind {
	case KindInt:
		if t.signed {
			return fmt.Sprintf("int%d", t.width*8)
		}
		return fmt.Sprintf("uint%d", t.width*8)
	case KindBlock:
		return fmt.Sprintf("block(%d)", t.length)
	case KindBlockArray:
		return fmt.Sprintf("blockarray(%s, %d)", t.elem, t.length)
	case KindArray:
		return fmt.Sprintf("array(%s, %d)", t.elem, t.length)
	case KindAlign:
		if t.undefined {
			return fmt.Sprintf("undefined(%d)", t.modulus)
		}
		return fmt.Sprintf("align(%d)", t.modulus)
	case KindPointer:
		return fmt.Sprintf("%s(%s)", t.resolution, t.elem)
	case KindStruct:
		return "struct{" + fieldList(t.fields) + "}"
	case KindUnion:
		return "union{" + fieldList(t.fields) + "}"
	}
	return t.kind.String()
}

func fieldList(fields []Field) string {
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = f.Name + " " + f.Type.String()
	}
	return strings.Join(parts, "; ")
}

// Option overrides a descriptor parameter in Clone.
type Option func(*Type)

func WithName(name string) Option {
	return func(t *Type) { t.name = name }
}

// WithLength sets the byte length or element count. Negative values become 0.
func WithLength(n int) Option {
	return func(t *Type) { t.length = max(n, 0) }
}

// WithElem sets the array element or pointer target.
func WithElem(elem *Type) Option {
	return func(t *Type) { t.elem = elem }
}

// WithAddress sets the addressing integer of a pointer. A nil addr selects
// NativeAddress.
func WithAddress(addr *Type) Option {
	return func(t *Type) { t.addr = addressing(addr) }
}

func WithByteOrder(order config.ByteOrder) Option {
	return func(t *Type) { t.order = order }
}

func WithFields(fields ...Field) Option {
	return func(t *Type) { t.fields = slices.Clone(fields) }
}

func WithRoot(root *Type) Option {
	return func(t *Type) { t.root = root }
}

// WithModulus sets the alignment modulus. Values below 1 become 1.
func WithModulus(m int) Option {
	return func(t *Type) { t.modulus = max(m, 1) }
}

// Clone returns a copy of t with opts applied. t is never modified.
//
// Clone cannot fail: an array count raised past max_array_count is logged
// at the configured level but kept. Use Array where the limit must reject.
func Clone(t *Type, opts ...Option) *Type {
	cp := *t
	cp.fields = slices.Clone(t.fields)
	for _, opt := range opts {
		opt(&cp)
	}
	if cp.kind == KindArray && cp.length > t.length {
		_ = checkCount(cp.elem, cp.length)
	}
	return &cp
}

// fixedSize is the byte size of t when it does not depend on placement.
// Alignment and unions report false, as does a size overflowing uint64.
func fixedSize(t *Type) (uint64, bool) {
	switch t.kind {
	case KindInt:
		return uint64(t.width), true
	case KindPointer:
		return uint64(t.addr.width), true
	case KindBlock, KindBlockArray:
		return uint64(t.length), true
	case KindArray:
		elem, ok := fixedSize(t.elem)
		if !ok {
			return 0, false
		}
		return abi.SafeMulU64(elem, uint64(t.length))
	case KindStruct:
		var total uint64
		for _, f := range t.fields {
			n, ok := fixedSize(f.Type)
			if !ok {
				return 0, false
			}
			if total, ok = abi.SafeAddU64(total, n); !ok {
				return 0, false
			}
		}
		return total, true
	}
	return 0, false
}
