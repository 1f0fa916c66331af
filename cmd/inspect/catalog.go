package main

import (
	"fmt"
	"slices"
	"strings"

	"go.bytecodealliance.org/wit"

	"github.com/wippyai/binlayout/layout"
	"github.com/wippyai/binlayout/witlayout"
)

type entry struct {
	typ  *layout.Type
	name string
	help string
}

func f(t *layout.Type, name string) layout.Field {
	return layout.Field{Type: t, Name: name}
}

// catalog returns the layouts selectable with -layout, sorted by name.
func catalog() ([]entry, error) {
	table, err := layout.Array(layout.Uint32, 4)
	if err != nil {
		return nil, err
	}
	channels, err := layout.Array(layout.Uint8, 4)
	if err != nil {
		return nil, err
	}
	magic, err := layout.Block(4)
	if err != nil {
		return nil, err
	}
	pad, err := layout.Align(8, false)
	if err != nil {
		return nil, err
	}

	d := witlayout.NewDescriber()
	witString, err := d.Describe(wit.String{})
	if err != nil {
		return nil, err
	}

	entries := []entry{
		{
			name: "scalar",
			help: "one 8-byte value viewed as every integer width",
			typ: layout.Union(nil,
				f(layout.Uint8, "u8"),
				f(layout.Uint16, "u16"),
				f(layout.Uint32, "u32"),
				f(layout.Uint64, "u64"),
				f(layout.Int32, "i32"),
				f(layout.Int64, "i64"),
			),
		},
		{
			name: "rgba",
			help: "4 color channels overlaid with the packed u32",
			typ: layout.Union(channels,
				f(layout.Uint32, "packed"),
				f(layout.Struct(
					f(layout.Uint8, "r"),
					f(layout.Uint8, "g"),
					f(layout.Uint8, "b"),
					f(layout.Uint8, "a"),
				), "channels"),
			),
		},
		{
			name: "header",
			help: "magic, version, flags and a table addressed relative to the header",
			typ: layout.Struct(
				f(magic, "magic"),
				f(layout.Uint16, "version"),
				f(layout.Uint16, "flags"),
				f(layout.Uint32, "count"),
				f(layout.RelativePointer(table, nil, layout.Uint32), "table"),
				f(pad, "_"),
			),
		},
		{
			name: "wasm",
			help: "WebAssembly binary preamble",
			typ: layout.Struct(
				f(magic, "magic"),
				f(layout.Uint32, "version"),
			),
		},
		{
			name: "wit-string",
			help: "Canonical ABI string (ptr, len) in linear memory",
			typ:  witString,
		},
	}
	slices.SortFunc(entries, func(a, b entry) int { return strings.Compare(a.name, b.name) })
	return entries, nil
}

func lookup(entries []entry, name string) (entry, error) {
	for _, e := range entries {
		if strings.EqualFold(e.name, name) {
			return e, nil
		}
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.name
	}
	return entry{}, fmt.Errorf("unknown layout %q (available: %s)", name, strings.Join(names, ", "))
}
