package layout

import (
	"github.com/wippyai/binlayout/errors"
	"github.com/wippyai/binlayout/internal/abi"
)

// Resolution selects how a pointer's raw value becomes a source offset.
type Resolution uint8

const (
	ResolveAbsolute Resolution = iota
	// ResolveRelative adds the offset of an ancestor picked by an AncestorFunc.
	ResolveRelative
	// ResolveTransformed passes the raw value through a TransformFunc.
	ResolveTransformed
)

func (r Resolution) String() string {
	switch r {
	case ResolveAbsolute:
		return "pointer"
	case ResolveRelative:
		return "rpointer"
	case ResolveTransformed:
		return "opointer"
	}
	return "unknown"
}

// AncestorFunc picks the instance a relative pointer is based on.
type AncestorFunc func(p *Instance) *Instance

// TransformFunc maps a pointer's raw value to the final offset.
type TransformFunc func(p *Instance, raw uint64) uint64

// Pointer returns an absolute pointer to target. A nil addr selects
// NativeAddress.
func Pointer(target, addr *Type) *Type {
	return &Type{kind: KindPointer, elem: target, addr: addressing(addr), resolution: ResolveAbsolute}
}

// RelativePointer returns a pointer whose raw value is relative to the
// offset of the instance chosen by ancestor. A nil ancestor selects
// Outermost.
func RelativePointer(target *Type, ancestor AncestorFunc, addr *Type) *Type {
	if ancestor == nil {
		ancestor = Outermost
	}
	return &Type{
		kind:       KindPointer,
		elem:       target,
		addr:       addressing(addr),
		resolution: ResolveRelative,
		ancestor:   ancestor,
	}
}

// OffsetPointer returns a pointer whose raw value is mapped by transform.
// A nil transform is the identity.
func OffsetPointer(target *Type, transform TransformFunc, addr *Type) *Type {
	if transform == nil {
		transform = identity
	}
	return &Type{
		kind:       KindPointer,
		elem:       target,
		addr:       addressing(addr),
		resolution: ResolveTransformed,
		transform:  transform,
	}
}

func addressing(addr *Type) *Type {
	if addr == nil {
		return NativeAddress
	}
	return addr
}

func identity(_ *Instance, raw uint64) uint64 { return raw }

// Outermost returns the last ancestor of p, or p itself when detached.
func Outermost(p *Instance) *Instance {
	last := p
	for a := range p.Walk() {
		last = a
	}
	return last
}

// Nearest returns an AncestorFunc picking the closest ancestor of kind k.
func Nearest(k Kind) AncestorFunc {
	return func(p *Instance) *Instance {
		for a := range p.Walk() {
			if a.typ.kind == k {
				return a
			}
		}
		return nil
	}
}

// Raw decodes the addressing integer of a pointer instance.
func (i *Instance) Raw() (uint64, error) {
	if i.typ.kind != KindPointer {
		return 0, errors.Unsupported(errors.PhaseResolve, i.typ.String(), "not a pointer")
	}
	addr := i.typ.addr
	if addr == nil || addr.kind != KindInt {
		return 0, errors.New(errors.PhaseResolve, errors.KindInvalidArgument).
			Path(i.path()...).
			Type(i.typ.String()).
			Detail("addressing type %s is not an integer", addr).
			Build()
	}
	if addr.signed {
		v, err := i.Int()
		return uint64(v), err
	}
	return i.Uint()
}

// Resolve computes the final source offset of the pointer target.
func (i *Instance) Resolve() (uint64, error) {
	raw, err := i.Raw()
	if err != nil {
		return 0, err
	}
	switch i.typ.resolution {
	case ResolveRelative:
		base := i.typ.ancestor(i)
		if base == nil {
			return 0, errors.New(errors.PhaseResolve, errors.KindInvalidArgument).
				Path(i.path()...).
				Type(i.typ.String()).
				Detail("ancestor selector returned no object").
				Build()
		}
		off, ok := displace(base.Offset(), raw, i.typ.addr.signed)
		if !ok {
			return 0, errors.Overflow(errors.PhaseResolve, i.path(), raw, "uint64 offset")
		}
		return off, nil
	case ResolveTransformed:
		return i.typ.transform(i, raw), nil
	}
	return raw, nil
}

// Deref returns a fresh, unloaded instance of the pointer target at the
// resolved offset on the pointer's source. Nothing is cached.
func (i *Instance) Deref() (*Instance, error) {
	off, err := i.Resolve()
	if err != nil {
		return nil, err
	}
	if i.typ.elem == nil {
		return nil, errors.New(errors.PhaseResolve, errors.KindInvalidArgument).
			Path(i.path()...).
			Detail("pointer has no target type").
			Build()
	}
	return i.spawn(i.typ.elem, "*"+i.name, off, i.src), nil
}

// displace adds raw to base. A signed raw holds a two's complement
// displacement and may move backwards.
func displace(base, raw uint64, signed bool) (uint64, bool) {
	if signed && int64(raw) < 0 {
		back := ^raw + 1
		if back > base {
			return 0, false
		}
		return base - back, true
	}
	return abi.SafeAddU64(base, raw)
}
