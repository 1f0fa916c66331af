package layout

import (
	"bytes"
	"encoding/binary"
	"iter"
	"slices"
	"strconv"
	"strings"

	"github.com/wippyai/binlayout"
	"github.com/wippyai/binlayout/config"
	"github.com/wippyai/binlayout/errors"
	"github.com/wippyai/binlayout/internal/abi"
	"github.com/wippyai/binlayout/source"
)

// Instance is a descriptor bound to a position in a source. Children of
// structs and arrays are created lazily and positioned on load.
type Instance struct {
	src    binlayout.Source
	order  binary.ByteOrder
	err    error
	typ    *Type
	parent *Instance
	union  *unionState
	name   string
	data   []byte
	elems  []*Instance
	offset uint64
	loaded bool
}

// InstanceOption configures an instance in New, Load and Alloc.
type InstanceOption func(*Instance)

// At sets the instance offset.
func At(offset uint64) InstanceOption {
	return func(i *Instance) { i.SetOffset(offset, true) }
}

func Named(name string) InstanceOption {
	return func(i *Instance) { i.name = name }
}

// Endian overrides the byte order for the instance and its children,
// including children created before the option is applied.
func Endian(order config.ByteOrder) InstanceOption {
	return func(i *Instance) { i.setOrder(order.Binary()) }
}

// fetchFunc reads length bytes at an absolute offset.
type fetchFunc func(offset, length uint64) ([]byte, error)

// New binds t to src. The instance is not loaded.
func New(t *Type, src binlayout.Source, opts ...InstanceOption) *Instance {
	i := &Instance{
		typ:   t,
		src:   src,
		order: orderFor(t, CurrentConfig().ByteOrder.Binary()),
	}
	if t.kind == KindUnion {
		i.union = &unionState{}
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

func orderFor(t *Type, inherited binary.ByteOrder) binary.ByteOrder {
	if t.order != "" {
		return t.order.Binary()
	}
	if t.kind == KindPointer && t.addr != nil && t.addr.order != "" {
		return t.addr.order.Binary()
	}
	return inherited
}

func (i *Instance) spawn(t *Type, name string, offset uint64, src binlayout.Source) *Instance {
	c := &Instance{
		typ:    t,
		name:   name,
		parent: i,
		src:    src,
		order:  orderFor(t, i.order),
		offset: offset,
	}
	if t.kind == KindUnion {
		c.union = &unionState{}
	}
	return c
}

// setOrder applies order to i and every existing child. Children whose
// type fixes a byte order keep it.
func (i *Instance) setOrder(order binary.ByteOrder) {
	i.order = order
	for _, c := range i.children() {
		c.setOrder(orderFor(c.typ, order))
	}
}

// children returns the instances already created under i, union root and
// fields included.
func (i *Instance) children() []*Instance {
	if i.union == nil || i.union.root == nil {
		return i.elems
	}
	return append([]*Instance{i.union.root}, i.union.aliases...)
}

func (i *Instance) Type() *Type { return i.typ }

func (i *Instance) Name() string { return i.name }

func (i *Instance) Parent() *Instance { return i.parent }

func (i *Instance) Source() binlayout.Source { return i.src }

func (i *Instance) Offset() uint64 { return i.offset }

// Err returns the error recorded by the last lazy load of this instance.
func (i *Instance) Err() error { return i.err }

// Walk yields the ancestors of i, innermost first.
func (i *Instance) Walk() iter.Seq[*Instance] {
	return func(yield func(*Instance) bool) {
		for p := i.parent; p != nil; p = p.parent {
			if !yield(p) {
				return
			}
		}
	}
}

// Path returns the dotted names from the outermost ancestor to i.
func (i *Instance) Path() string {
	return strings.Join(i.path(), ".")
}

func (i *Instance) path() []string {
	var parts []string
	for p := i; p != nil; p = p.parent {
		if p.name != "" {
			parts = append(parts, p.name)
		}
	}
	slices.Reverse(parts)
	return parts
}

// annotate attributes a source error without a path to this instance and
// the phase that triggered it.
func (i *Instance) annotate(phase errors.Phase, err error) error {
	if e, ok := err.(*errors.Error); ok && len(e.Path) == 0 {
		cp := *e
		cp.Phase = phase
		cp.Path = i.path()
		return &cp
	}
	return err
}

// SetOffset moves the instance and returns the previous offset. With
// recurse, children are repositioned consecutively from the new offset.
func (i *Instance) SetOffset(offset uint64, recurse bool) uint64 {
	prev := i.offset
	i.offset = offset
	if i.union != nil {
		if i.union.root != nil {
			i.union.root.SetOffset(offset, recurse)
		}
		return prev
	}
	if recurse {
		pos := offset
		for _, c := range i.elems {
			c.SetOffset(pos, true)
			pos += c.BlockSize()
		}
	}
	return prev
}

// BlockSize is the number of bytes the instance occupies in its source.
func (i *Instance) BlockSize() uint64 {
	t := i.typ
	switch t.kind {
	case KindInt:
		return uint64(t.width)
	case KindBlock, KindBlockArray:
		return uint64(t.length)
	case KindAlign:
		return i.padding()
	case KindPointer:
		return uint64(t.addr.width)
	case KindArray, KindStruct:
		i.ensureElems()
		return i.prefixSize(len(i.elems))
	case KindUnion:
		return i.Object().BlockSize()
	}
	return 0
}

// Size is the number of bytes currently initialized.
func (i *Instance) Size() uint64 {
	switch i.typ.kind {
	case KindArray, KindStruct, KindBlockArray:
		total := uint64(len(i.data))
		for _, c := range i.elems {
			total += c.Size()
		}
		return total
	case KindUnion:
		if i.union.root == nil {
			return 0
		}
		return i.union.root.Size()
	}
	return uint64(len(i.data))
}

// Initialized reports whether the instance and all of its children hold
// loaded values.
func (i *Instance) Initialized() bool {
	switch i.typ.kind {
	case KindUnion:
		return i.unionInitialized()
	case KindArray, KindStruct, KindBlockArray:
		if !i.loaded {
			return false
		}
		for _, c := range i.elems {
			if !c.Initialized() {
				return false
			}
		}
	}
	return i.loaded
}

func (i *Instance) ensureElems() {
	if i.elems != nil {
		return
	}
	switch i.typ.kind {
	case KindStruct:
		i.elems = make([]*Instance, 0, len(i.typ.fields))
		off := i.offset
		for _, f := range i.typ.fields {
			off += i.attach(f.Type, f.Name, off).BlockSize()
		}
	case KindArray:
		i.elems = make([]*Instance, 0, i.typ.length)
		off := i.offset
		for n := range i.typ.length {
			off += i.attach(i.typ.elem, strconv.Itoa(n), off).BlockSize()
		}
	}
}

// attach appends a child before it is measured, so alignment padding can
// locate its preceding siblings.
func (i *Instance) attach(t *Type, name string, offset uint64) *Instance {
	c := i.spawn(t, name, offset, i.src)
	i.elems = append(i.elems, c)
	return c
}

func (i *Instance) prefixSize(n int) uint64 {
	var total uint64
	for _, c := range i.elems[:n] {
		total += c.BlockSize()
	}
	return total
}

// padding computes the size of alignment padding from the absolute offset
// of the preceding siblings. Detached padding is empty.
func (i *Instance) padding() uint64 {
	p := i.parent
	if p == nil {
		return 0
	}
	idx := slices.Index(p.elems, i)
	if idx < 0 {
		return 0
	}
	return abi.Padding(p.offset+p.prefixSize(idx), uint64(i.typ.modulus))
}

func (i *Instance) sourceFetch() fetchFunc {
	return func(offset, length uint64) ([]byte, error) {
		if i.src == nil {
			return nil, errors.NotInitialized(errors.PhaseLoad, nil, "instance has no source")
		}
		return i.src.Read(offset, length)
	}
}

// Load decodes the instance from its source.
func (i *Instance) Load(opts ...InstanceOption) error {
	for _, opt := range opts {
		opt(i)
	}
	return i.materialize(errors.PhaseLoad, i.sourceFetch())
}

// Alloc materializes the instance zero-filled without touching the source.
func (i *Instance) Alloc(opts ...InstanceOption) error {
	for _, opt := range opts {
		opt(i)
	}
	return i.materialize(errors.PhaseAlloc, nil)
}

// Deserialize decodes the instance from block, which holds the bytes
// starting at the instance offset.
func (i *Instance) Deserialize(block []byte) error {
	base := i.offset
	blk := source.NewBytes(block)
	return i.materialize(errors.PhaseLoad, func(offset, length uint64) ([]byte, error) {
		if offset < base {
			return nil, errors.OutOfBounds(errors.PhaseLoad, nil, offset, length, base)
		}
		return blk.Read(offset-base, length)
	})
}

// materialize fills the instance from fetch, or with zeros when fetch is nil.
func (i *Instance) materialize(phase errors.Phase, fetch fetchFunc) error {
	var err error
	switch i.typ.kind {
	case KindUnion:
		return i.materializeUnion(phase, fetch)
	case KindArray, KindStruct:
		err = i.materializeElems(phase, fetch)
	case KindBlockArray:
		err = i.materializeBlockArray(phase, fetch)
	case KindAlign:
		if i.typ.undefined {
			i.data = make([]byte, i.padding())
		} else {
			err = i.fill(fetch, i.offset, i.padding())
		}
	default:
		err = i.fill(fetch, i.offset, i.BlockSize())
	}
	if err != nil {
		return err
	}
	i.loaded = true
	i.err = nil
	return nil
}

func (i *Instance) fill(fetch fetchFunc, offset, length uint64) error {
	if fetch == nil {
		i.data = make([]byte, length)
		return nil
	}
	data, err := fetch(offset, length)
	if err != nil {
		return i.annotate(errors.PhaseLoad, err)
	}
	i.data = bytes.Clone(data)
	return nil
}

func (i *Instance) materializeElems(phase errors.Phase, fetch fetchFunc) error {
	i.ensureElems()
	off := i.offset
	for _, c := range i.elems {
		if c.offset != off {
			c.SetOffset(off, true)
		}
		if err := c.materialize(phase, fetch); err != nil {
			return err
		}
		off += c.BlockSize()
	}
	return nil
}

func (i *Instance) materializeBlockArray(phase errors.Phase, fetch fetchFunc) error {
	total := uint64(i.typ.length)
	i.elems = make([]*Instance, 0)
	var used uint64
	for n := 0; ; n++ {
		c := i.attach(i.typ.elem, strconv.Itoa(n), i.offset+used)
		size := c.BlockSize()
		if size == 0 || used+size > total {
			i.elems = i.elems[:len(i.elems)-1]
			break
		}
		if err := c.materialize(phase, fetch); err != nil {
			return err
		}
		used += size
	}
	return i.fill(fetch, i.offset+used, total-used)
}

// Commit writes the loaded instance back to its source.
func (i *Instance) Commit() error {
	switch i.typ.kind {
	case KindUnion:
		return i.commitUnion()
	case KindArray, KindStruct, KindBlockArray:
		if !i.loaded {
			return errors.NotInitialized(errors.PhaseCommit, i.path(), "instance is not loaded")
		}
		for _, c := range i.elems {
			if err := c.Commit(); err != nil {
				return err
			}
		}
		if len(i.data) == 0 {
			return nil
		}
		return i.write(i.offset+i.prefixSize(len(i.elems)), i.data)
	case KindAlign:
		if i.typ.undefined {
			return nil
		}
	}
	if !i.loaded {
		return errors.NotInitialized(errors.PhaseCommit, i.path(), "instance is not loaded")
	}
	return i.write(i.offset, i.data)
}

func (i *Instance) write(offset uint64, data []byte) error {
	if i.src == nil {
		return errors.NotInitialized(errors.PhaseCommit, i.path(), "instance has no source")
	}
	return i.annotate(errors.PhaseCommit, i.src.Write(offset, data))
}

// Serialize returns the in-memory bytes of the instance.
func (i *Instance) Serialize() ([]byte, error) {
	if i.typ.kind == KindUnion {
		return i.Object().Serialize()
	}
	if !i.loaded {
		return nil, errors.NotInitialized(errors.PhaseAccess, i.path(), "instance is not loaded")
	}
	if !i.typ.kind.IsContainer() {
		return bytes.Clone(i.data), nil
	}
	var buf []byte
	for _, c := range i.elems {
		b, err := c.Serialize()
		if err != nil {
			return nil, err
		}
		buf = append(buf, b...)
	}
	return append(buf, i.data...), nil
}

// ReadRange returns length bytes of the in-memory value starting at offset,
// relative to the start of the instance.
func (i *Instance) ReadRange(offset, length uint64) ([]byte, error) {
	if !i.typ.kind.IsContainer() {
		if err := i.checkRange(offset, length); err != nil {
			return nil, err
		}
		return i.data[offset : offset+length], nil
	}
	buf, err := i.Serialize()
	if err != nil {
		return nil, err
	}
	if offset > uint64(len(buf)) || length > uint64(len(buf))-offset {
		return nil, errors.OutOfBounds(errors.PhaseAccess, i.path(), offset, length, uint64(len(buf)))
	}
	return buf[offset : offset+length], nil
}

// WriteRange patches the in-memory value. The source is not touched until
// Commit.
func (i *Instance) WriteRange(offset uint64, data []byte) error {
	if !i.typ.kind.IsContainer() {
		if err := i.checkRange(offset, uint64(len(data))); err != nil {
			return err
		}
		copy(i.data[offset:], data)
		return nil
	}
	buf, err := i.Serialize()
	if err != nil {
		return err
	}
	if offset > uint64(len(buf)) || uint64(len(data)) > uint64(len(buf))-offset {
		return errors.OutOfBounds(errors.PhaseAccess, i.path(), offset, uint64(len(data)), uint64(len(buf)))
	}
	copy(buf[offset:], data)
	return i.Deserialize(buf)
}

func (i *Instance) checkRange(offset, length uint64) error {
	if !i.loaded {
		return errors.NotInitialized(errors.PhaseAccess, i.path(), "instance is not loaded")
	}
	size := uint64(len(i.data))
	if offset > size || length > size-offset {
		return errors.OutOfBounds(errors.PhaseAccess, i.path(), offset, length, size)
	}
	return nil
}

func (i *Instance) intWidth() int {
	if i.typ.kind == KindPointer {
		return i.typ.addr.width
	}
	return i.typ.width
}

func (i *Instance) scalar() error {
	if !i.typ.kind.IsScalar() {
		return errors.Unsupported(errors.PhaseAccess, i.typ.String(), "not an integer")
	}
	if !i.loaded {
		return errors.NotInitialized(errors.PhaseAccess, i.path(), "value is not loaded")
	}
	return nil
}

// Uint decodes the value of an integer or pointer instance.
func (i *Instance) Uint() (uint64, error) {
	if err := i.scalar(); err != nil {
		return 0, err
	}
	return decode(i.order, i.data), nil
}

// Int decodes the value sign-extended from the instance width.
func (i *Instance) Int() (int64, error) {
	v, err := i.Uint()
	if err != nil {
		return 0, err
	}
	w := uint(len(i.data) * 8)
	if w == 0 || w >= 64 {
		return int64(v), nil
	}
	shift := 64 - w
	return int64(v<<shift) >> shift, nil
}

// SetUint stores v in memory. The instance counts as loaded afterwards.
func (i *Instance) SetUint(v uint64) error {
	if !i.typ.kind.IsScalar() {
		return errors.Unsupported(errors.PhaseAccess, i.typ.String(), "not an integer")
	}
	w := i.intWidth()
	if w < 8 && v >= uint64(1)<<(8*w) {
		return errors.Overflow(errors.PhaseAccess, i.path(), v, i.typ.String())
	}
	i.data = encode(i.order, v, w)
	i.loaded = true
	return nil
}

// SetInt stores v in memory using two's complement.
func (i *Instance) SetInt(v int64) error {
	if !i.typ.kind.IsScalar() {
		return errors.Unsupported(errors.PhaseAccess, i.typ.String(), "not an integer")
	}
	w := i.intWidth()
	if w < 8 {
		limit := int64(1) << (8*w - 1)
		if v < -limit || v >= limit {
			return errors.Overflow(errors.PhaseAccess, i.path(), v, i.typ.String())
		}
	}
	i.data = encode(i.order, uint64(v), w)
	i.loaded = true
	return nil
}

func decode(order binary.ByteOrder, b []byte) uint64 {
	switch len(b) {
	case 1:
		return uint64(b[0])
	case 2:
		return uint64(order.Uint16(b))
	case 4:
		return uint64(order.Uint32(b))
	case 8:
		return order.Uint64(b)
	}
	var v uint64
	if order == binary.BigEndian {
		for _, c := range b {
			v = v<<8 | uint64(c)
		}
		return v
	}
	for n := len(b) - 1; n >= 0; n-- {
		v = v<<8 | uint64(b[n])
	}
	return v
}

func encode(order binary.ByteOrder, v uint64, width int) []byte {
	b := make([]byte, width)
	switch width {
	case 1:
		b[0] = byte(v)
	case 2:
		order.PutUint16(b, uint16(v))
	case 4:
		order.PutUint32(b, uint32(v))
	case 8:
		order.PutUint64(b, v)
	default:
		for n := range width {
			shift := 8 * n
			if order == binary.BigEndian {
				b[width-1-n] = byte(v >> shift)
			} else {
				b[n] = byte(v >> shift)
			}
		}
	}
	return b
}

// Object returns the instance holding the storage: the root of a union,
// or i itself.
func (i *Instance) Object() *Instance {
	if i.typ.kind == KindUnion {
		return i.unionObject()
	}
	return i
}

// Field returns the member named name, compared case-insensitively.
func (i *Instance) Field(name string) (*Instance, error) {
	switch i.typ.kind {
	case KindUnion:
		return i.unionField(name)
	case KindStruct:
		i.ensureElems()
		for n := len(i.typ.fields) - 1; n >= 0; n-- {
			if strings.EqualFold(i.typ.fields[n].Name, name) {
				return i.elems[n], nil
			}
		}
		return nil, errors.KeyNotFound(errors.PhaseAccess, i.path(), name)
	}
	return nil, errors.Unsupported(errors.PhaseAccess, i.typ.String(), "field lookup")
}

// Index returns the n-th member or element.
func (i *Instance) Index(n int) (*Instance, error) {
	if !i.typ.kind.IsContainer() {
		return nil, errors.Unsupported(errors.PhaseAccess, i.typ.String(), "indexing")
	}
	elems := i.Values()
	if n < 0 || n >= len(elems) {
		return nil, errors.IndexOutOfBounds(errors.PhaseAccess, i.path(), n, len(elems))
	}
	return elems[n], nil
}

// Len is the number of members or elements. A blockarray counts the
// elements decoded by the last load.
func (i *Instance) Len() int {
	return len(i.Values())
}

// Values returns the members or elements in order.
func (i *Instance) Values() []*Instance {
	switch i.typ.kind {
	case KindUnion:
		i.unionObject()
		return slices.Clone(i.union.aliases)
	case KindStruct, KindArray:
		i.ensureElems()
	}
	return slices.Clone(i.elems)
}

// Keys returns the member names, or element indices as strings.
func (i *Instance) Keys() []string {
	values := i.Values()
	keys := make([]string, len(values))
	for n, v := range values {
		keys[n] = v.name
	}
	return keys
}

// Items yields name and instance pairs in order.
func (i *Instance) Items() iter.Seq2[string, *Instance] {
	return func(yield func(string, *Instance) bool) {
		for _, v := range i.Values() {
			if !yield(v.name, v) {
				return
			}
		}
	}
}

var _ source.Backing = (*Instance)(nil)
