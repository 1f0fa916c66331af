package source

import (
	"math"

	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/binlayout"
	"github.com/wippyai/binlayout/errors"
)

// Memory wraps wazero linear memory. Reads return views into the memory and
// are invalidated when the memory grows.
type Memory struct {
	mem api.Memory
}

func NewMemory(mem api.Memory) *Memory {
	return &Memory{mem: mem}
}

func (m *Memory) Read(offset uint64, length uint64) ([]byte, error) {
	if offset > math.MaxUint32 || length > math.MaxUint32 {
		return nil, errors.Overflow(errors.PhaseSource, nil, offset+length, "u32 address space")
	}
	data, ok := m.mem.Read(uint32(offset), uint32(length))
	if !ok {
		return nil, errors.OutOfBounds(errors.PhaseSource, nil, offset, length, m.Size())
	}
	return data, nil
}

func (m *Memory) Write(offset uint64, data []byte) error {
	if offset > math.MaxUint32 || uint64(len(data)) > math.MaxUint32 {
		return errors.Overflow(errors.PhaseSource, nil, offset+uint64(len(data)), "u32 address space")
	}
	if !m.mem.Write(uint32(offset), data) {
		return errors.OutOfBounds(errors.PhaseSource, nil, offset, uint64(len(data)), m.Size())
	}
	return nil
}

func (m *Memory) Size() uint64 {
	if m.mem == nil {
		return 0
	}
	return uint64(m.mem.Size())
}

// Compile-time check that Memory implements binlayout.Source and Sizer
var _ binlayout.Source = (*Memory)(nil)
var _ binlayout.Sizer = (*Memory)(nil)
