// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"fmt"
	"io"
	"iter"

	"github.com/psycore/psycore/memory"
)

// DataWord is an initial data memory value, from a .DATA directive.
type DataWord struct {
	Address uint32 // Data memory address.
	Value   int32  // Initial value.
	LineNo  int    // Source line.
}

// Image is a decoded program: one Instruction per instruction memory
// address, plus initial data words. An Image is read-only once loaded,
// and may be shared by any number of cores.
type Image struct {
	Code    []*Instruction    // Instruction per address. Unpopulated addresses hold NOP.
	Data    []DataWord        // Initial data memory contents.
	Symbols map[string]uint32 // Resolved labels and equates.
}

// NewImage creates an image of size NOP instructions.
func NewImage(size int) (img *Image) {
	img = &Image{
		Code:    make([]*Instruction, size),
		Symbols: map[string]uint32{},
	}

	for n := range img.Code {
		img.Code[n] = makeNop(uint32(n))
	}

	return
}

// Size returns the instruction memory size.
func (img *Image) Size() uint32 {
	return uint32(len(img.Code))
}

// Fetch returns the instruction at an address.
func (img *Image) Fetch(pc uint32) (inst *Instruction) {
	return img.Code[pc]
}

// Place stores an instruction at its address.
func (img *Image) Place(inst *Instruction) (err error) {
	if inst.Address >= img.Size() {
		err = ErrAddressRange
		return
	}

	img.Code[inst.Address] = inst
	return
}

// Populated returns true if an address holds an instruction from the source.
func (img *Image) Populated(addr uint32) bool {
	return addr < img.Size() && img.Code[addr].LineNo != 0
}

// Instructions iterates over the instructions that came from the source.
func (img *Image) Instructions() iter.Seq2[uint32, *Instruction] {
	return func(yield func(addr uint32, inst *Instruction) bool) {
		for n, inst := range img.Code {
			if inst.LineNo == 0 {
				continue
			}
			if !yield(uint32(n), inst) {
				return
			}
		}
	}
}

// LineNo returns the source line of the instruction at an address.
func (img *Image) LineNo(pc uint32) int {
	if pc >= img.Size() {
		return 0
	}
	return img.Code[pc].LineNo
}

// CheckSync verifies the LOC, UNLOC and MEET ids against the domain.
func (img *Image) CheckSync(dom *Domain) (err error) {
	for _, inst := range img.Instructions() {
		switch inst.Op {
		case OP_LOC, OP_UNLOC:
			err = dom.CheckLock(int(inst.Args[0].Value))
		case OP_MEET:
			err = dom.CheckBarrier(int(inst.Args[0].Value))
		}
		if err != nil {
			err = &ErrSyntax{LineNo: inst.LineNo, Line: inst.String(), Err: err}
			return
		}
	}

	return
}

// LoadData writes the initial data words into a memory.
func (img *Image) LoadData(mem memory.Memory) (err error) {
	for _, word := range img.Data {
		err = mem.Write(word.Address, word.Value)
		if err != nil {
			err = &ErrSyntax{LineNo: word.LineNo, Line: ".DATA", Err: err}
			return
		}
	}

	return
}

// Annotate writes an address annotated listing of the image.
func (img *Image) Annotate(w io.Writer) (err error) {
	for addr, inst := range img.Instructions() {
		_, err = fmt.Fprintf(w, "0x%04X: %v\n", addr, inst)
		if err != nil {
			return
		}
	}

	for _, word := range img.Data {
		_, err = fmt.Fprintf(w, ".DATA 0x%04X, %d\n", word.Address, word.Value)
		if err != nil {
			return
		}
	}

	return
}
