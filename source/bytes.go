package source

import (
	"github.com/wippyai/binlayout"
	"github.com/wippyai/binlayout/errors"
)

// Bytes is a fixed-size in-memory source. It does not copy the buffer it
// wraps, so writes are visible to the caller.
type Bytes struct {
	buf []byte
}

func NewBytes(buf []byte) *Bytes {
	return &Bytes{buf: buf}
}

// NewString wraps a copy of s.
func NewString(s string) *Bytes {
	return &Bytes{buf: []byte(s)}
}

func (s *Bytes) Read(offset uint64, length uint64) ([]byte, error) {
	if err := check(offset, length, uint64(len(s.buf))); err != nil {
		return nil, err
	}
	return s.buf[offset : offset+length], nil
}

func (s *Bytes) Write(offset uint64, data []byte) error {
	if err := check(offset, uint64(len(data)), uint64(len(s.buf))); err != nil {
		return err
	}
	copy(s.buf[offset:], data)
	return nil
}

func (s *Bytes) Size() uint64 {
	return uint64(len(s.buf))
}

// Bytes returns the wrapped buffer.
func (s *Bytes) Bytes() []byte {
	return s.buf
}

func check(offset, length, size uint64) error {
	if offset > size || length > size-offset {
		return errors.OutOfBounds(errors.PhaseSource, nil, offset, length, size)
	}
	return nil
}

var _ binlayout.Source = (*Bytes)(nil)
var _ binlayout.Sizer = (*Bytes)(nil)
