package layout

import (
	"fmt"
	"strings"
)

const (
	uninitialized = "???"
	maxHexBytes   = 32
)

// Details renders one line per leaf value. A union renders its root first
// and then every field, with ??? for views that failed to load.
func (i *Instance) Details() string {
	var b strings.Builder
	i.details(&b, 0)
	return strings.TrimSuffix(b.String(), "\n")
}

func (i *Instance) details(b *strings.Builder, depth int) {
	switch i.typ.kind {
	case KindUnion:
		root := i.unionObject()
		line(b, depth, root.offset, "<root>", root.typ, root.Summary())
		for _, a := range i.union.aliases {
			a.entry(b, depth)
		}
	case KindStruct, KindArray, KindBlockArray:
		for _, c := range i.Values() {
			c.entry(b, depth)
		}
	default:
		line(b, depth, i.offset, i.name, i.typ, i.Summary())
	}
}

func (i *Instance) entry(b *strings.Builder, depth int) {
	if !i.typ.kind.IsContainer() || (i.typ.kind != KindUnion && !i.loaded) {
		line(b, depth, i.offset, i.name, i.typ, i.Summary())
		return
	}
	line(b, depth, i.offset, i.name, i.typ, "")
	i.details(b, depth+1)
}

func line(b *strings.Builder, depth int, offset uint64, name string, t *Type, value string) {
	b.WriteString(strings.Repeat("  ", depth))
	fmt.Fprintf(b, "[%x] %s %s", offset, name, t)
	if value != "" {
		b.WriteByte(' ')
		b.WriteString(value)
	}
	b.WriteByte('\n')
}

// Summary renders the value of the instance on a single line.
func (i *Instance) Summary() string {
	switch i.typ.kind {
	case KindUnion:
		if i.union.root == nil || !i.union.root.loaded {
			return uninitialized
		}
		return i.union.root.Summary()
	case KindStruct, KindArray, KindBlockArray:
		if !i.loaded {
			return uninitialized
		}
		return fmt.Sprintf("%d items", i.Len())
	}
	if !i.loaded {
		return uninitialized
	}
	switch i.typ.kind {
	case KindInt:
		if i.typ.signed {
			v, _ := i.Int()
			return fmt.Sprintf("%d", v)
		}
		v, _ := i.Uint()
		return fmt.Sprintf("%#x (%d)", v, v)
	case KindPointer:
		raw, err := i.Raw()
		if err != nil {
			return err.Error()
		}
		target, err := i.Resolve()
		if err != nil {
			return fmt.Sprintf("%#x -> %s", raw, err)
		}
		return fmt.Sprintf("%#x -> %#x", raw, target)
	}
	return hexdump(i.data)
}

func hexdump(data []byte) string {
	if len(data) == 0 {
		return "''"
	}
	if len(data) > maxHexBytes {
		return fmt.Sprintf("%x... (%d bytes)", data[:maxHexBytes], len(data))
	}
	return fmt.Sprintf("%x", data)
}

func (i *Instance) String() string {
	name := i.name
	if name == "" {
		name = "-"
	}
	return fmt.Sprintf("[%x] %s %s %s", i.offset, name, i.typ, i.Summary())
}
