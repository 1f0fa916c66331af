package witlayout

import (
	"strconv"

	"go.bytecodealliance.org/wit"

	"github.com/wippyai/binlayout/errors"
	"github.com/wippyai/binlayout/internal/abi"
	"github.com/wippyai/binlayout/layout"
)

// Describer converts WIT types to layout descriptors. Results are cached
// per type definition, so a Describer should be reused across calls.
type Describer struct {
	infos map[*wit.TypeDef]Info
	types map[*wit.TypeDef]*layout.Type
}

func NewDescriber() *Describer {
	return &Describer{
		infos: make(map[*wit.TypeDef]Info),
		types: make(map[*wit.TypeDef]*layout.Type),
	}
}

var (
	boolType   = layout.Clone(layout.Uint8, layout.WithName("bool"))
	f32Type    = layout.Clone(layout.Uint32, layout.WithName("f32"))
	f64Type    = layout.Clone(layout.Uint64, layout.WithName("f64"))
	charType   = layout.Clone(layout.Uint32, layout.WithName("char"))
	handleType = layout.Clone(layout.Uint32, layout.WithName("handle"))
	stringType = pair("string", layout.Must(layout.Block(0)))
)

// pair is the (ptr, len) representation of strings and lists.
func pair(name string, target *layout.Type) *layout.Type {
	return layout.Clone(layout.Struct(
		layout.Field{Type: layout.Pointer(target, layout.Uint32), Name: "ptr"},
		layout.Field{Type: layout.Uint32, Name: "len"},
	), layout.WithName(name))
}

// Describe returns the layout descriptor of t.
func (d *Describer) Describe(t wit.Type) (*layout.Type, error) {
	switch typ := t.(type) {
	case wit.Bool:
		return boolType, nil
	case wit.U8:
		return layout.Uint8, nil
	case wit.S8:
		return layout.Int8, nil
	case wit.U16:
		return layout.Uint16, nil
	case wit.S16:
		return layout.Int16, nil
	case wit.U32:
		return layout.Uint32, nil
	case wit.S32:
		return layout.Int32, nil
	case wit.U64:
		return layout.Uint64, nil
	case wit.S64:
		return layout.Int64, nil
	case wit.F32:
		return f32Type, nil
	case wit.F64:
		return f64Type, nil
	case wit.Char:
		return charType, nil
	case wit.String:
		return stringType, nil
	case *wit.TypeDef:
		return d.describeTypeDef(typ)
	case nil:
		return nil, errors.New(errors.PhaseConfigure, errors.KindInvalidArgument).
			Detail("nil WIT type").
			Build()
	}
	return nil, errors.Unsupported(errors.PhaseConfigure, abi.TypeName(t), "no layout for WIT type")
}

func (d *Describer) describeTypeDef(t *wit.TypeDef) (*layout.Type, error) {
	if cached, ok := d.types[t]; ok {
		return cached, nil
	}

	var (
		typ *layout.Type
		err error
	)

	switch kind := t.Kind.(type) {
	case *wit.Record:
		fields := make([]member, len(kind.Fields))
		for i, f := range kind.Fields {
			fields[i] = member{name: f.Name, typ: f.Type}
		}
		typ, err = d.describeMembers(fields)
	case *wit.Tuple:
		fields := make([]member, len(kind.Types))
		for i, elem := range kind.Types {
			fields[i] = member{name: strconv.Itoa(i), typ: elem}
		}
		typ, err = d.describeMembers(fields)
	case *wit.Variant:
		typ, err = d.describeCases(variantCases(kind))
	case *wit.Option:
		typ, err = d.describeCases(optionCases(kind))
	case *wit.Result:
		typ, err = d.describeCases(resultCases(kind))
	case *wit.Enum:
		typ = discriminant(len(kind.Cases))
	case *wit.Flags:
		typ, err = describeFlags(len(kind.Flags))
	case *wit.List:
		var elem *layout.Type
		if elem, err = d.Describe(kind.Type); err == nil {
			typ = pair("list", layout.Must(layout.Array(elem, 0)))
		}
	case *wit.Own, *wit.Borrow:
		typ = handleType
	case wit.Type:
		typ, err = d.Describe(kind)
	default:
		return nil, errors.Unsupported(errors.PhaseConfigure, abi.TypeName(t.Kind), "no layout for WIT type definition")
	}
	if err != nil {
		return nil, err
	}

	if t.Name != nil {
		typ = layout.Clone(typ, layout.WithName(*t.Name))
	}
	d.types[t] = typ
	return typ, nil
}

type member struct {
	typ  wit.Type
	name string
}

// describeMembers lays members out with padding to each member's alignment
// and trailing padding to the largest one.
func (d *Describer) describeMembers(members []member) (*layout.Type, error) {
	fields := make([]layout.Field, 0, 2*len(members)+1)
	maxAlign := uint64(1)

	for _, m := range members {
		elem, err := d.Describe(m.typ)
		if err != nil {
			return nil, errors.Within(errors.PhaseConfigure, m.name, err)
		}
		align := d.Info(m.typ).Align
		maxAlign = max(maxAlign, align)
		if align > 1 {
			fields = append(fields, layout.Field{Type: padding(align), Name: "_"})
		}
		fields = append(fields, layout.Field{Type: elem, Name: m.name})
	}
	if maxAlign > 1 {
		fields = append(fields, layout.Field{Type: padding(maxAlign), Name: "_"})
	}
	return layout.Struct(fields...), nil
}

// describeCases builds {tag, padding, payload union, padding}. Cases without
// a payload get no union member.
func (d *Describer) describeCases(cases []wit.Case) (*layout.Type, error) {
	if len(cases) == 0 {
		return layout.Struct(), nil
	}

	info := d.infoCases(cases)
	var payloadSize uint64
	payloads := make([]layout.Field, 0, len(cases))
	for _, cs := range cases {
		if cs.Type == nil {
			continue
		}
		elem, err := d.Describe(cs.Type)
		if err != nil {
			return nil, errors.Within(errors.PhaseConfigure, cs.Name, err)
		}
		payloadSize = max(payloadSize, d.Info(cs.Type).Size)
		payloads = append(payloads, layout.Field{Type: elem, Name: cs.Name})
	}

	return layout.Struct(
		layout.Field{Type: discriminant(len(cases)), Name: "tag"},
		layout.Field{Type: padding(info.Align), Name: "_"},
		layout.Field{Type: layout.Union(layout.Must(layout.Block(payloadSize)), payloads...), Name: "payload"},
		layout.Field{Type: padding(info.Align), Name: "_"},
	), nil
}

func discriminant(n int) *layout.Type {
	switch abi.DiscriminantSize(n) {
	case 1:
		return layout.Uint8
	case 2:
		return layout.Uint16
	}
	return layout.Uint32
}

func describeFlags(n int) (*layout.Type, error) {
	switch abi.FlagsSize(n) {
	case 0:
		return layout.Block(0)
	case 1:
		return layout.Uint8, nil
	case 2:
		return layout.Uint16, nil
	case 4:
		return layout.Uint32, nil
	case 8:
		return layout.Uint64, nil
	}
	return layout.Array(layout.Uint32, (n+31)/32)
}

// padding is undefined alignment: the bytes are never read or written.
func padding(align uint64) *layout.Type {
	return layout.Must(layout.Align(align, true))
}
