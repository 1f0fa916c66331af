package layout

import (
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/binlayout/errors"
	"github.com/wippyai/binlayout/source"
)

// unionState is the overlay held by a union instance. The root owns the
// storage; every alias is a view at offset 0 of a proxy onto the root.
type unionState struct {
	root    *Instance
	proxy   *source.Proxy
	index   map[string]int
	aliases []*Instance
}

func (i *Instance) unionObject() *Instance {
	if i.union.root == nil {
		i.createUnion()
	}
	return i.union.root
}

func (i *Instance) createUnion() {
	u := i.union
	rootType := i.typ.root
	if rootType == nil {
		var size uint64
		for _, f := range i.typ.fields {
			size = max(size, New(f.Type, nil).BlockSize())
		}
		rootType = &Type{kind: KindBlock, length: int(size)}
		Logger().Debug("union root sized by largest field",
			zap.String("union", i.Path()),
			zap.Uint64("size", size))
	}

	u.root = i.spawn(rootType, "root", i.offset, i.src)
	u.proxy = source.NewProxy(u.root)
	u.index = make(map[string]int, len(i.typ.fields))
	u.aliases = make([]*Instance, 0, len(i.typ.fields))
	for _, f := range i.typ.fields {
		// duplicate names: the later field wins the lookup
		u.index[strings.ToLower(f.Name)] = len(u.aliases)
		u.aliases = append(u.aliases, i.spawn(f.Type, f.Name, 0, u.proxy))
	}

	Logger().Debug("union created",
		zap.String("union", i.Path()),
		zap.Stringer("root", rootType),
		zap.Int("fields", len(u.aliases)))
}

// Proxy returns the source every union field is bound to, or nil for
// other kinds.
func (i *Instance) Proxy() *source.Proxy {
	if i.union == nil {
		return nil
	}
	i.unionObject()
	return i.union.proxy
}

func (i *Instance) materializeUnion(phase errors.Phase, fetch fetchFunc) error {
	root := i.unionObject()
	if err := root.materialize(phase, fetch); err != nil {
		return err
	}
	i.loaded = true
	i.err = nil
	for _, a := range i.union.aliases {
		a.resync()
	}
	return nil
}

// resync reloads a union field from the proxy. Failures are recorded on
// the field and logged, never returned.
func (i *Instance) resync() {
	err := i.materialize(errors.PhaseLoad, i.sourceFetch())
	if err == nil {
		return
	}
	i.loaded = false
	i.err = errors.FieldDecode(errors.PhaseLoad, i.path(), err)
	Logger().Warn("union field failed to decode",
		zap.String("field", i.Path()),
		zap.Stringer("type", i.typ),
		zap.Error(err))
}

func (i *Instance) commitUnion() error {
	if i.union.root == nil {
		return errors.NotInitialized(errors.PhaseCommit, i.path(), "union has no root")
	}
	return i.union.root.Commit()
}

func (i *Instance) unionField(name string) (*Instance, error) {
	i.unionObject()
	idx, ok := i.union.index[strings.ToLower(name)]
	if !ok {
		return nil, errors.KeyNotFound(errors.PhaseAccess, i.path(), name)
	}
	a := i.union.aliases[idx]
	if !a.loaded {
		a.resync()
	}
	return a, nil
}

func (i *Instance) unionInitialized() bool {
	root := i.union.root
	if root == nil || !root.Initialized() {
		return false
	}
	for _, a := range i.union.aliases {
		if !a.loaded {
			return false
		}
	}
	return true
}
