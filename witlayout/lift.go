package witlayout

import (
	"github.com/wippyai/binlayout/config"
	"github.com/wippyai/binlayout/errors"
	"github.com/wippyai/binlayout/layout"
)

// Lift follows the pointer of a loaded string or list instance and returns
// the loaded elements: a block for strings, an array for lists. The array
// count goes through the configured max_array_count guard.
func Lift(inst *layout.Instance) (*layout.Instance, error) {
	ptr, err := inst.Field("ptr")
	if err != nil {
		return nil, err
	}
	length, err := inst.Field("len")
	if err != nil {
		return nil, err
	}
	n, err := length.Uint()
	if err != nil {
		return nil, err
	}
	addr, err := ptr.Resolve()
	if err != nil {
		return nil, err
	}

	var typ *layout.Type
	switch target := ptr.Type().Elem(); target.Kind() {
	case layout.KindArray:
		typ, err = layout.Array(target.Elem(), n)
	case layout.KindBlock:
		typ, err = layout.Block(n)
	default:
		return nil, errors.Unsupported(errors.PhaseResolve, target.String(), "lift target must be an array or block")
	}
	if err != nil {
		return nil, errors.Within(errors.PhaseResolve, inst.Name(), err)
	}

	// linear memory is little-endian regardless of the configured order
	out := layout.New(typ, ptr.Source(), layout.At(addr), layout.Named(inst.Name()), layout.Endian(config.LittleEndian))
	if err := out.Load(); err != nil {
		return nil, err
	}
	return out, nil
}

// LiftString returns the contents of a loaded string instance.
func LiftString(inst *layout.Instance) (string, error) {
	out, err := Lift(inst)
	if err != nil {
		return "", err
	}
	b, err := out.Serialize()
	if err != nil {
		return "", err
	}
	return string(b), nil
}
