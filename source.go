package binlayout

// Source represents a byte-addressable resource
type Source interface {
	Read(offset uint64, length uint64) ([]byte, error)
	Write(offset uint64, data []byte) error
}

// Sizer provides the current size of a Source in bytes.
type Sizer interface {
	Size() uint64
}
