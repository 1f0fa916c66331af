// Package binlayout declares composite binary layouts over byte-addressable
// resources.
//
// Layouts are built from immutable type descriptors and interpreted by a
// single instance engine. Besides fixed-size blocks, bounded arrays and
// alignment padding, the toolkit supports pointer indirection and overlay
// unions, where several differently-typed views share one storage region.
//
// # Architecture Overview
//
//	binlayout/           Root package with the Source and Sizer interfaces
//	├── layout/          Descriptors, factory, pointers, unions, instance engine
//	├── source/          Byte providers: in-memory, proxy, wasm linear memory
//	├── witlayout/       Descriptors for WIT types (Canonical ABI layout)
//	├── config/          YAML configuration (byte order, array guard, logging)
//	├── errors/          Structured error types for debugging
//	└── cmd/inspect/     CLI and TUI for overlaying layouts on binary data
//
// # Quick Start
//
// Overlay two views on the same four bytes:
//
//	u := layout.Union(nil,
//	    layout.Field{Type: layout.Uint32, Name: "word"},
//	    layout.Field{Type: layout.Must(layout.Array(layout.Uint8, 4)), Name: "bytes"},
//	)
//
//	inst := layout.New(u, source.NewBytes(data))
//	if err := inst.Load(); err != nil {
//	    log.Fatal(err)
//	}
//
//	word, _ := inst.Field("word")
//	v, _ := word.Uint()
//
// # Aliasing Model
//
// A union owns exactly one storage buffer, held by its root view. Every named
// field is a non-owning view reading and writing the root through a proxy at
// local offset zero. Loading a union loads the root first, then resynchronizes
// each view. Committing a union persists the root only.
//
// # Thread Safety
//
// Descriptors are immutable and safe for concurrent use. Instances are NOT
// thread-safe and should be used by a single goroutine.
package binlayout
