package witlayout

import (
	"go.bytecodealliance.org/wit"

	"github.com/wippyai/binlayout/internal/abi"
)

// Info is the Canonical ABI size and alignment of a WIT type. FieldOffs is
// set for records.
type Info struct {
	FieldOffs map[string]uint64
	Size      uint64
	Align     uint64
}

// Info returns the Canonical ABI layout of t.
func (d *Describer) Info(t wit.Type) Info {
	switch typ := t.(type) {
	case wit.U8, wit.S8, wit.Bool:
		return Info{Size: 1, Align: 1}
	case wit.U16, wit.S16:
		return Info{Size: 2, Align: 2}
	case wit.U32, wit.S32, wit.F32, wit.Char:
		return Info{Size: 4, Align: 4}
	case wit.U64, wit.S64, wit.F64:
		return Info{Size: 8, Align: 8}
	case wit.String:
		return Info{Size: 8, Align: 4} // [ptr: u32, len: u32]
	case *wit.TypeDef:
		return d.infoTypeDef(typ)
	default:
		return Info{Size: 0, Align: 1}
	}
}

func (d *Describer) infoTypeDef(t *wit.TypeDef) Info {
	if cached, ok := d.infos[t]; ok {
		return cached
	}

	var info Info

	switch kind := t.Kind.(type) {
	case *wit.Record:
		info = d.infoRecord(kind)
	case *wit.Variant:
		info = d.infoCases(variantCases(kind))
	case *wit.Enum:
		size := abi.DiscriminantSize(len(kind.Cases))
		info = Info{Size: size, Align: size}
	case *wit.List:
		info = Info{Size: 8, Align: 4}
	case *wit.Option:
		info = d.infoCases(optionCases(kind))
	case *wit.Result:
		info = d.infoCases(resultCases(kind))
	case *wit.Tuple:
		info = d.infoTuple(kind)
	case *wit.Flags:
		info = infoFlags(len(kind.Flags))
	case *wit.Own, *wit.Borrow:
		info = Info{Size: 4, Align: 4}
	case wit.Type:
		info = d.Info(kind)
	default:
		info = Info{Size: 0, Align: 1}
	}

	d.infos[t] = info
	return info
}

func (d *Describer) infoRecord(r *wit.Record) Info {
	if len(r.Fields) == 0 {
		return Info{Size: 0, Align: 1}
	}

	fieldOffs := make(map[string]uint64, len(r.Fields))
	maxAlign := uint64(1)
	offset := uint64(0)

	for _, field := range r.Fields {
		fieldInfo := d.Info(field.Type)

		offset = abi.AlignTo(offset, fieldInfo.Align)
		fieldOffs[field.Name] = offset
		maxAlign = max(maxAlign, fieldInfo.Align)
		offset += fieldInfo.Size
	}

	return Info{
		Size:      abi.AlignTo(offset, maxAlign),
		Align:     maxAlign,
		FieldOffs: fieldOffs,
	}
}

func (d *Describer) infoTuple(t *wit.Tuple) Info {
	if len(t.Types) == 0 {
		return Info{Size: 0, Align: 1}
	}

	maxAlign := uint64(1)
	offset := uint64(0)

	for _, typ := range t.Types {
		elemInfo := d.Info(typ)
		offset = abi.AlignTo(offset, elemInfo.Align)
		maxAlign = max(maxAlign, elemInfo.Align)
		offset += elemInfo.Size
	}

	return Info{
		Size:  abi.AlignTo(offset, maxAlign),
		Align: maxAlign,
	}
}

// infoCases lays out a discriminant followed by the largest case payload.
func (d *Describer) infoCases(cases []wit.Case) Info {
	if len(cases) == 0 {
		return Info{Size: 0, Align: 1}
	}

	discSize := abi.DiscriminantSize(len(cases))
	maxAlign := discSize
	maxSize := uint64(0)

	for _, cs := range cases {
		if cs.Type == nil {
			continue
		}
		caseInfo := d.Info(cs.Type)
		maxAlign = max(maxAlign, caseInfo.Align)
		maxSize = max(maxSize, caseInfo.Size)
	}

	payloadOffset := abi.AlignTo(discSize, maxAlign)
	return Info{
		Size:  abi.AlignTo(payloadOffset+maxSize, maxAlign),
		Align: maxAlign,
	}
}

func infoFlags(n int) Info {
	size := abi.FlagsSize(n)
	switch {
	case size == 0:
		return Info{Size: 0, Align: 1}
	case n > 64:
		return Info{Size: size, Align: 4}
	}
	return Info{Size: size, Align: size}
}

func variantCases(v *wit.Variant) []wit.Case {
	return v.Cases
}

func optionCases(o *wit.Option) []wit.Case {
	return []wit.Case{{Name: "none"}, {Name: "some", Type: o.Type}}
}

func resultCases(r *wit.Result) []wit.Case {
	return []wit.Case{{Name: "ok", Type: r.OK}, {Name: "error", Type: r.Err}}
}
