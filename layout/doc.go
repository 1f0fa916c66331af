// Package layout declares binary layouts and binds them to byte sources.
//
// A Type is an immutable descriptor built by the factory:
//
//	hdr := layout.Struct(
//		layout.Field{Type: layout.Uint32, Name: "magic"},
//		layout.Field{Type: layout.Must(layout.Align(8, false)), Name: "pad"},
//		layout.Field{Type: layout.Pointer(body, layout.Uint32), Name: "body"},
//	)
//
// An Instance binds a descriptor to a binlayout.Source at an offset. Load
// decodes it, Alloc zero-fills it, Commit writes it back:
//
//	inst := layout.New(hdr, source.NewBytes(buf), layout.At(0x40))
//	if err := inst.Load(); err != nil { ... }
//	magic, _ := inst.Field("magic")
//
// # Pointers
//
// Pointer, RelativePointer and OffsetPointer differ only in how the decoded
// integer becomes an offset: as is, added to the offset of an ancestor, or
// passed through a transform. Deref returns a fresh unloaded instance of the
// target on the pointer's source.
//
// # Unions
//
// A union instance owns one root instance and exposes every field as a view
// at offset 0 of a source.Proxy bound to the root. Loading reads the root,
// then reloads each view from the proxy. A view that fails to decode is
// logged and marked, and never fails the union. Commit writes the root only;
// writes through a view reach the root's memory when the view is committed.
//
// # Configuration
//
// The byte order and the array count guard come from SetConfig. The package
// logs through Logger, a no-op until SetLogger is called.
//
// Instances are not safe for concurrent use.
package layout
