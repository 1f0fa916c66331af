package layout

import (
	"bytes"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/wippyai/binlayout/config"
	lerrors "github.com/wippyai/binlayout/errors"
	"github.com/wippyai/binlayout/source"
)

func field(t *testing.T, inst *Instance, name string) *Instance {
	t.Helper()
	f, err := inst.Field(name)
	if err != nil {
		t.Fatalf("Field(%q): %v", name, err)
	}
	return f
}

func uintOf(t *testing.T, inst *Instance) uint64 {
	t.Helper()
	v, err := inst.Uint()
	if err != nil {
		t.Fatalf("Uint(%s): %v", inst.Path(), err)
	}
	return v
}

func TestAlign(t *testing.T) {
	tests := []struct {
		name   string
		prefix int
		mod    int
		want   uint64
	}{
		{"prefix 5 mod 4", 5, 4, 3},
		{"prefix 8 mod 4", 8, 4, 0},
		{"prefix 0 mod 8", 0, 8, 0},
		{"prefix 1 mod 3", 1, 3, 2},
		{"modulus 1", 7, 1, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			typ := Struct(
				Field{Type: Must(Block(tc.prefix)), Name: "head"},
				Field{Type: Must(Align(tc.mod, false)), Name: "pad"},
			)
			inst := New(typ, nil)
			if got := field(t, inst, "pad").BlockSize(); got != tc.want {
				t.Errorf("padding = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestAlign_StructLayout(t *testing.T) {
	typ := Struct(
		Field{Type: Uint32, Name: "a"},
		Field{Type: Uint8, Name: "b"},
		Field{Type: Must(Align(4, false)), Name: "pad"},
		Field{Type: Uint32, Name: "c"},
	)
	inst := New(typ, nil)

	if got := inst.BlockSize(); got != 12 {
		t.Errorf("BlockSize = %d, want 12", got)
	}
	if got := field(t, inst, "c").Offset(); got != 8 {
		t.Errorf("c.Offset = %d, want 8", got)
	}
}

func TestAlign_AbsoluteOffset(t *testing.T) {
	typ := Struct(
		Field{Type: Uint8, Name: "b"},
		Field{Type: Must(Align(4, false)), Name: "pad"},
	)
	inst := New(typ, nil, At(1))

	if got := field(t, inst, "pad").BlockSize(); got != 2 {
		t.Errorf("padding at offset 1 = %d, want 2", got)
	}
	inst.SetOffset(3, true)
	if got := field(t, inst, "pad").BlockSize(); got != 0 {
		t.Errorf("padding at offset 3 = %d, want 0", got)
	}
}

func TestAlign_Detached(t *testing.T) {
	if got := New(Must(Align(16, false)), nil).BlockSize(); got != 0 {
		t.Errorf("detached padding = %d, want 0", got)
	}
}

func TestAlign_Undefined(t *testing.T) {
	buf := []byte{0x7f}
	typ := Struct(
		Field{Type: Uint8, Name: "b"},
		Field{Type: Must(Align(4, true)), Name: "pad"},
	)
	inst := New(typ, source.NewBytes(buf), Named("rec"))

	if err := inst.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := inst.BlockSize(); got != 4 {
		t.Errorf("BlockSize = %d, want 4", got)
	}
	if err := inst.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	defined := Struct(
		Field{Type: Uint8, Name: "b"},
		Field{Type: Must(Align(4, false)), Name: "pad"},
	)
	err := New(defined, source.NewBytes(buf), Named("rec")).Load()
	if !errors.Is(err, lerrors.ErrOutOfBounds) {
		t.Fatalf("Load error = %v, want out_of_bounds", err)
	}
	if !strings.Contains(err.Error(), "rec.pad") {
		t.Errorf("error %q should name rec.pad", err)
	}
}

func TestInstance_LoadErrorPath(t *testing.T) {
	typ := Struct(
		Field{Type: Uint16, Name: "version"},
		Field{Type: Uint32, Name: "magic"},
	)
	err := New(typ, source.NewBytes(make([]byte, 4)), Named("header")).Load()

	var e *lerrors.Error
	if !errors.As(err, &e) {
		t.Fatalf("Load error = %v, want *errors.Error", err)
	}
	if e.Phase != lerrors.PhaseLoad || e.Kind != lerrors.KindOutOfBounds {
		t.Errorf("got [%s] %s, want [load] out_of_bounds", e.Phase, e.Kind)
	}
	if !strings.HasPrefix(err.Error(), "[load] out_of_bounds at header.magic") {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestInstance_LoadAndCommit(t *testing.T) {
	buf := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06}
	typ := Struct(
		Field{Type: Uint16, Name: "a"},
		Field{Type: Uint32, Name: "b"},
	)
	inst := New(typ, source.NewBytes(buf))
	if err := inst.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if got := uintOf(t, field(t, inst, "a")); got != 0x0201 {
		t.Errorf("a = %#x, want 0x0201", got)
	}
	if got := uintOf(t, field(t, inst, "b")); got != 0x06050403 {
		t.Errorf("b = %#x, want 0x06050403", got)
	}
	if inst.Size() != 6 || inst.BlockSize() != 6 {
		t.Errorf("Size, BlockSize = %d, %d, want 6, 6", inst.Size(), inst.BlockSize())
	}
	if !inst.Initialized() {
		t.Error("Initialized = false after Load")
	}

	a := field(t, inst, "a")
	if err := a.SetUint(0xbeef); err != nil {
		t.Fatalf("SetUint: %v", err)
	}
	if buf[0] != 0x01 {
		t.Error("SetUint must not touch the source")
	}
	if err := inst.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if !bytes.Equal(buf, []byte{0xef, 0xbe, 0x03, 0x04, 0x05, 0x06}) {
		t.Errorf("buf = % x", buf)
	}
}

func TestInstance_CommitUnloaded(t *testing.T) {
	err := New(Uint32, source.NewBytes(make([]byte, 4))).Commit()
	if !errors.Is(err, lerrors.ErrNotInitialized) {
		t.Errorf("Commit error = %v, want not_initialized", err)
	}
}

func TestInstance_Alloc(t *testing.T) {
	buf := []byte{0xaa, 0xbb, 0xcc}
	typ := Struct(
		Field{Type: Uint8, Name: "x"},
		Field{Type: Uint16, Name: "y"},
	)
	inst := New(typ, source.NewBytes(buf))
	if err := inst.Alloc(); err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	if got := uintOf(t, field(t, inst, "y")); got != 0 {
		t.Errorf("y = %#x, want 0", got)
	}
	if inst.Size() != 3 {
		t.Errorf("Size = %d, want 3", inst.Size())
	}
	if buf[0] != 0xaa {
		t.Error("Alloc must not touch the source")
	}
	if err := inst.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if !bytes.Equal(buf, []byte{0, 0, 0}) {
		t.Errorf("buf = % x, want zeros", buf)
	}
}

func TestInstance_SerializeDeserialize(t *testing.T) {
	typ := Struct(
		Field{Type: Uint8, Name: "tag"},
		Field{Type: Must(Align(2, false)), Name: "pad"},
		Field{Type: Uint16, Name: "value"},
	)
	inst := New(typ, nil, At(0x100))
	block := []byte{0x09, 0xff, 0x34, 0x12}

	if err := inst.Deserialize(block); err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	if got := uintOf(t, field(t, inst, "value")); got != 0x1234 {
		t.Errorf("value = %#x, want 0x1234", got)
	}
	out, err := inst.Serialize()
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if !bytes.Equal(out, block) {
		t.Errorf("Serialize = % x, want % x", out, block)
	}

	if err := New(Uint32, nil).Deserialize([]byte{1, 2}); !errors.Is(err, lerrors.ErrOutOfBounds) {
		t.Errorf("short block error = %v, want out_of_bounds", err)
	}
}

func TestBlockArray(t *testing.T) {
	buf := []byte{0x01, 0x00, 0x02, 0x00, 0x7e}
	inst := New(Must(BlockArray(Uint16, 5)), source.NewBytes(buf))

	if inst.Len() != 0 {
		t.Errorf("Len before Load = %d, want 0", inst.Len())
	}
	if err := inst.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if inst.Len() != 2 {
		t.Fatalf("Len = %d, want 2", inst.Len())
	}
	second, _ := inst.Index(1)
	if got := uintOf(t, second); got != 2 {
		t.Errorf("[1] = %d, want 2", got)
	}
	if inst.Size() != 5 || inst.BlockSize() != 5 {
		t.Errorf("Size, BlockSize = %d, %d, want 5, 5", inst.Size(), inst.BlockSize())
	}

	out, err := inst.Serialize()
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if !bytes.Equal(out, buf) {
		t.Errorf("Serialize = % x, want slack preserved", out)
	}

	buf[4] = 0
	if err := inst.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if buf[4] != 0x7e {
		t.Errorf("slack byte = %#x, want 0x7e", buf[4])
	}
}

func TestInstance_ByteOrder(t *testing.T) {
	buf := []byte{0x01, 0x02}

	t.Run("config", func(t *testing.T) {
		withConfig(t, &config.Config{ByteOrder: config.BigEndian})
		inst := New(Uint16, source.NewBytes(buf))
		if err := inst.Load(); err != nil {
			t.Fatal(err)
		}
		if got := uintOf(t, inst); got != 0x0102 {
			t.Errorf("got %#x, want 0x0102", got)
		}
	})

	t.Run("instance override", func(t *testing.T) {
		withConfig(t, &config.Config{ByteOrder: config.BigEndian})
		inst := New(Uint16, source.NewBytes(buf), Endian(config.LittleEndian))
		if err := inst.Load(); err != nil {
			t.Fatal(err)
		}
		if got := uintOf(t, inst); got != 0x0201 {
			t.Errorf("got %#x, want 0x0201", got)
		}
	})

	t.Run("type override", func(t *testing.T) {
		typ := Struct(Field{Type: Clone(Uint16, WithByteOrder(config.BigEndian)), Name: "v"})
		inst := New(typ, source.NewBytes(buf))
		if err := inst.Load(); err != nil {
			t.Fatal(err)
		}
		if got := uintOf(t, field(t, inst, "v")); got != 0x0102 {
			t.Errorf("got %#x, want 0x0102", got)
		}
	})
}

func TestInstance_EndianAfterMeasure(t *testing.T) {
	tests := []struct {
		name string
		typ  *Type
	}{
		{"union", Union(nil, Field{Type: Uint32, Name: "v"})},
		{"struct", Struct(Field{Type: Uint32, Name: "v"})},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			inst := New(tc.typ, source.NewBytes([]byte{0x41, 0x42, 0x43, 0x44}))
			if got := inst.BlockSize(); got != 4 {
				t.Fatalf("BlockSize = %d, want 4", got)
			}
			v := field(t, inst, "v")

			if err := inst.Load(Endian(config.BigEndian)); err != nil {
				t.Fatalf("Load: %v", err)
			}
			if got := uintOf(t, v); got != 0x41424344 {
				t.Errorf("v = %#x, want 0x41424344", got)
			}
		})
	}

	t.Run("type order kept", func(t *testing.T) {
		le := Clone(Uint16, WithByteOrder(config.LittleEndian))
		inst := New(Struct(Field{Type: Uint16, Name: "a"}, Field{Type: le, Name: "b"}),
			source.NewBytes([]byte{0x01, 0x02, 0x01, 0x02}))
		inst.BlockSize()

		if err := inst.Load(Endian(config.BigEndian)); err != nil {
			t.Fatalf("Load: %v", err)
		}
		if got := uintOf(t, field(t, inst, "a")); got != 0x0102 {
			t.Errorf("a = %#x, want 0x0102", got)
		}
		if got := uintOf(t, field(t, inst, "b")); got != 0x0201 {
			t.Errorf("b = %#x, want 0x0201", got)
		}
	})
}

func TestInstance_Int(t *testing.T) {
	tests := []struct {
		typ  *Type
		data []byte
		want int64
	}{
		{Int8, []byte{0xff}, -1},
		{Int16, []byte{0xfe, 0xff}, -2},
		{Int32, []byte{0x00, 0x00, 0x00, 0x80}, -1 << 31},
		{Int64, []byte{1, 0, 0, 0, 0, 0, 0, 0}, 1},
	}

	for _, tc := range tests {
		t.Run(tc.typ.String(), func(t *testing.T) {
			inst := New(tc.typ, source.NewBytes(tc.data))
			if err := inst.Load(); err != nil {
				t.Fatal(err)
			}
			got, err := inst.Int()
			if err != nil {
				t.Fatal(err)
			}
			if got != tc.want {
				t.Errorf("Int = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestInstance_SetIntegers(t *testing.T) {
	inst := New(Uint8, source.NewBytes(make([]byte, 1)))
	if err := inst.SetUint(256); !errors.Is(err, lerrors.ErrOverflow) {
		t.Errorf("SetUint(256) error = %v, want overflow", err)
	}
	if err := inst.SetUint(255); err != nil {
		t.Errorf("SetUint(255): %v", err)
	}

	signed := New(Int8, nil)
	if err := signed.SetInt(-129); !errors.Is(err, lerrors.ErrOverflow) {
		t.Errorf("SetInt(-129) error = %v, want overflow", err)
	}
	if err := signed.SetInt(-128); err != nil {
		t.Fatalf("SetInt(-128): %v", err)
	}
	if v, _ := signed.Int(); v != -128 {
		t.Errorf("Int = %d, want -128", v)
	}

	if err := New(Must(Block(2)), nil).SetUint(1); !errors.Is(err, lerrors.ErrUnsupported) {
		t.Errorf("SetUint on a block error = %v, want unsupported", err)
	}
}

func TestInstance_ValueErrors(t *testing.T) {
	if _, err := New(Uint32, nil).Uint(); !errors.Is(err, lerrors.ErrNotInitialized) {
		t.Errorf("Uint unloaded error = %v, want not_initialized", err)
	}
	if _, err := New(Must(Block(4)), nil).Uint(); !errors.Is(err, lerrors.ErrUnsupported) {
		t.Errorf("Uint on block error = %v, want unsupported", err)
	}
}

func TestInstance_SetOffset(t *testing.T) {
	typ := Struct(
		Field{Type: Uint32, Name: "a"},
		Field{Type: Uint16, Name: "b"},
	)
	inst := New(typ, nil)
	b := field(t, inst, "b")

	prev := inst.SetOffset(0x10, true)
	if prev != 0 {
		t.Errorf("previous offset = %d, want 0", prev)
	}
	if b.Offset() != 0x14 {
		t.Errorf("b.Offset = %#x, want 0x14", b.Offset())
	}

	inst.SetOffset(0x40, false)
	if b.Offset() != 0x14 {
		t.Errorf("b moved without recurse: %#x", b.Offset())
	}
}

func TestInstance_FieldLookup(t *testing.T) {
	typ := Struct(
		Field{Type: Uint8, Name: "Magic"},
		Field{Type: Uint16, Name: "dup"},
		Field{Type: Uint32, Name: "DUP"},
	)
	inst := New(typ, nil)

	if f := field(t, inst, "MAGIC"); f.Type() != Uint8 {
		t.Errorf("MAGIC resolved to %s", f.Type())
	}
	if f := field(t, inst, "dup"); f.Type() != Uint32 {
		t.Errorf("duplicate name resolved to %s, want the last field", f.Type())
	}
	if _, err := inst.Field("missing"); !errors.Is(err, lerrors.ErrKeyNotFound) {
		t.Errorf("missing field error = %v, want key_not_found", err)
	}
	if _, err := New(Uint8, nil).Field("x"); !errors.Is(err, lerrors.ErrUnsupported) {
		t.Errorf("field on uint8 error = %v, want unsupported", err)
	}

	if got := inst.Keys(); !slices.Equal(got, []string{"Magic", "dup", "DUP"}) {
		t.Errorf("Keys = %v", got)
	}
	var names []string
	for name := range inst.Items() {
		names = append(names, name)
	}
	if len(names) != 3 {
		t.Errorf("Items yielded %d entries, want 3", len(names))
	}
}

func TestInstance_Walk(t *testing.T) {
	inner := Struct(Field{Type: Uint8, Name: "leaf"})
	outer := Struct(Field{Type: inner, Name: "inner"})
	inst := New(outer, nil, Named("outer"))

	leaf := field(t, field(t, inst, "inner"), "leaf")
	var got []string
	for a := range leaf.Walk() {
		got = append(got, a.Name())
	}
	if !slices.Equal(got, []string{"inner", "outer"}) {
		t.Errorf("Walk = %v, want [inner outer]", got)
	}
	if leaf.Path() != "outer.inner.leaf" {
		t.Errorf("Path = %q", leaf.Path())
	}
	if Outermost(leaf) != inst {
		t.Error("Outermost should return the top-level instance")
	}
	if Outermost(inst) != inst {
		t.Error("Outermost of a detached instance is itself")
	}
}

func TestInstance_Details(t *testing.T) {
	typ := Struct(
		Field{Type: Uint16, Name: "count"},
		Field{Type: Must(Block(2)), Name: "tail"},
	)
	inst := New(typ, source.NewBytes([]byte{0x02, 0x00, 0xca, 0xfe}))
	if !strings.Contains(inst.Details(), uninitialized) {
		t.Error("unloaded details should mark values as ???")
	}
	if err := inst.Load(); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(inst.Details(), "\n")
	if len(lines) != 2 {
		t.Fatalf("Details has %d lines, want 2:\n%s", len(lines), inst.Details())
	}
	if !strings.Contains(lines[0], "count uint16 0x2 (2)") {
		t.Errorf("line 0 = %q", lines[0])
	}
	if !strings.Contains(lines[1], "[2] tail block(2) cafe") {
		t.Errorf("line 1 = %q", lines[1])
	}
}
