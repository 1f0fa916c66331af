package layout

// Kind is the shape of a descriptor.
type Kind uint8

const (
	KindInt Kind = iota
	KindBlock
	KindBlockArray
	KindArray
	KindAlign
	KindPointer
	KindStruct
	KindUnion
)

var kindNames = [...]string{
	KindInt:        "int",
	KindBlock:      "block",
	KindBlockArray: "blockarray",
	KindArray:      "array",
	KindAlign:      "align",
	KindPointer:    "pointer",
	KindStruct:     "struct",
	KindUnion:      "union",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// IsContainer reports whether instances of the kind hold child instances.
func (k Kind) IsContainer() bool {
	switch k {
	case KindBlockArray, KindArray, KindStruct, KindUnion:
		return true
	default:
		return false
	}
}

// IsScalar reports whether the kind decodes to an integer value.
func (k Kind) IsScalar() bool {
	return k == KindInt || k == KindPointer
}
