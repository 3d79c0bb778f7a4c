// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package memory provides the data memory used by the psyCore cores.
// Memory is a flat array of signed 32-bit words. A single Memory may be
// shared by several cores; accesses through it are not atomic.
package memory

// Memory defines the interface for word addressed data memory.
type Memory interface {
	// Len returns the number of words.
	Len() int
	// Read returns the word at an address.
	Read(addr uint32) (value int32, err error)
	// Write stores a word at an address.
	Write(addr uint32, value int32) error
	// Reset zeros the memory.
	Reset()
}

// Ram is a Memory backed by a word slice.
type Ram struct {
	Data []int32
}

var _ Memory = (*Ram)(nil)

// NewRam creates a zeroed Ram of size words.
func NewRam(size int) *Ram {
	return &Ram{Data: make([]int32, size)}
}

func (ram *Ram) Len() int {
	return len(ram.Data)
}

// Read returns ErrAddressRange for addresses past the end of memory.
func (ram *Ram) Read(addr uint32) (value int32, err error) {
	if uint64(addr) >= uint64(len(ram.Data)) {
		err = ErrAddress(addr)
		return
	}

	value = ram.Data[addr]
	return
}

// Write returns ErrAddressRange for addresses past the end of memory.
func (ram *Ram) Write(addr uint32, value int32) (err error) {
	if uint64(addr) >= uint64(len(ram.Data)) {
		err = ErrAddress(addr)
		return
	}

	ram.Data[addr] = value
	return
}

func (ram *Ram) Reset() {
	clear(ram.Data)
}
