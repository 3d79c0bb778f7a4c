// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"fmt"
	"strconv"
)

// OperandKind is the shape of an instruction argument.
type OperandKind int

//go:generate go tool stringer -linecomment -type=OperandKind
const (
	ARG_IMMEDIATE = OperandKind(0) // imm
	ARG_REGISTER  = OperandKind(1) // reg
	ARG_MEMORY    = OperandKind(2) // mem
	ARG_INDIRECT  = OperandKind(3) // ind
)

// Operand is a decoded instruction argument.
type Operand struct {
	Kind  OperandKind // Operand shape.
	Value uint32      // Immediate, memory address, or register index.
	Text  string      // Normalized source text.
}

// IsMemory returns true if the operand addresses data memory.
func (arg Operand) IsMemory() bool {
	return arg.Kind == ARG_MEMORY || arg.Kind == ARG_INDIRECT
}

func (arg Operand) String() string {
	if len(arg.Text) != 0 {
		return arg.Text
	}

	switch arg.Kind {
	case ARG_REGISTER:
		return fmt.Sprintf("W%d", arg.Value)
	case ARG_MEMORY:
		return fmt.Sprintf("[%d]", arg.Value)
	case ARG_INDIRECT:
		return fmt.Sprintf("[W%d]", arg.Value)
	}

	return fmt.Sprintf("%d", arg.Value)
}

// argShape is a set of accepted operand kinds.
type argShape uint

const (
	SHAPE_IMM = argShape(1 << ARG_IMMEDIATE)
	SHAPE_REG = argShape(1 << ARG_REGISTER)
	SHAPE_MEM = argShape(1<<ARG_MEMORY | 1<<ARG_INDIRECT)
)

// accepts returns true if the operand kind is in the shape.
func (shape argShape) accepts(kind OperandKind) bool {
	return (shape & (1 << kind)) != 0
}

// register returns the work register index for a word like "W3".
// ok is false if the word is not register shaped.
func (dec *Decoder) register(word string) (index uint32, ok bool, err error) {
	if len(word) < 2 || word[0] != 'W' || !isDigit(rune(word[1])) {
		return
	}

	v64, perr := strconv.ParseUint(word[1:], 10, 32)
	if perr != nil {
		return
	}

	ok = true
	if v64 >= uint64(dec.registers()) {
		err = ErrRegisterInvalid
		return
	}

	index = uint32(v64)
	return
}

// value resolves a number or symbol.
func (dec *Decoder) value(word string) (value uint32, err error) {
	if isDigit(rune(word[0])) {
		return parseNumber(word)
	}

	value, ok := dec.Symbols[word]
	if !ok {
		err = ErrLabelMissing(word)
		return
	}

	return
}

// operand decodes one argument.
func (dec *Decoder) operand(word string) (arg Operand, err error) {
	arg.Text = word

	if len(word) == 0 {
		err = ErrArgumentEmpty
		return
	}

	open := rune(word[0])
	if open == '[' || open == '(' {
		if rune(word[len(word)-1]) != closer[open] || len(word) < 3 {
			err = ErrBracketUnbalanced
			return
		}
		inner := word[1 : len(word)-1]
		if !isWord(rune(inner[0])) {
			// Nested brackets are not addressable.
			err = ErrOperandKind
			return
		}
		var ok bool
		arg.Value, ok, err = dec.register(inner)
		if err != nil {
			return
		}
		if ok {
			arg.Kind = ARG_INDIRECT
			return
		}
		arg.Kind = ARG_MEMORY
		arg.Value, err = dec.value(inner)
		return
	}

	var ok bool
	arg.Value, ok, err = dec.register(word)
	if err != nil {
		return
	}
	if ok {
		arg.Kind = ARG_REGISTER
		return
	}

	arg.Kind = ARG_IMMEDIATE
	arg.Value, err = dec.value(word)
	return
}
