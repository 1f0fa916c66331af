package source

import (
	"github.com/wippyai/binlayout"
)

// Backing is an object that owns a byte range addressable from zero.
type Backing interface {
	ReadRange(offset, length uint64) ([]byte, error)
	WriteRange(offset uint64, data []byte) error
	Size() uint64
}

// Proxy is a non-owning source redirecting all reads and writes into a
// Backing. Offsets are local to the backing's range.
type Proxy struct {
	target Backing
}

func NewProxy(target Backing) *Proxy {
	return &Proxy{target: target}
}

func (p *Proxy) Read(offset uint64, length uint64) ([]byte, error) {
	if err := check(offset, length, p.target.Size()); err != nil {
		return nil, err
	}
	return p.target.ReadRange(offset, length)
}

func (p *Proxy) Write(offset uint64, data []byte) error {
	if err := check(offset, uint64(len(data)), p.target.Size()); err != nil {
		return err
	}
	return p.target.WriteRange(offset, data)
}

// Size reports the currently initialized size of the backing.
func (p *Proxy) Size() uint64 {
	return p.target.Size()
}

// Target returns the object the proxy redirects to.
func (p *Proxy) Target() Backing {
	return p.target
}

var _ binlayout.Source = (*Proxy)(nil)
var _ binlayout.Sizer = (*Proxy)(nil)
