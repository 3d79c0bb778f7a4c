// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Op is an instruction mnemonic.
type Op int

//go:generate go tool stringer -linecomment -type=Op
const (
	OP_NOP    = Op(0)  // NOP
	OP_MOV    = Op(1)  // MOV
	OP_ADD    = Op(2)  // ADD
	OP_SUB    = Op(3)  // SUB
	OP_JZ     = Op(4)  // JZ
	OP_JE     = Op(5)  // JE
	OP_REPEAT = Op(6)  // REPEAT
	OP_SCTX   = Op(7)  // SCTX
	OP_RCTX   = Op(8)  // RCTX
	OP_LOC    = Op(9)  // LOC
	OP_UNLOC  = Op(10) // UNLOC
	OP_MEET   = Op(11) // MEET
	OP_RESET  = Op(12) // RESET
	OP_BSET   = Op(13) // BSET
	OP_BCLR   = Op(14) // BCLR
	OP_CALL   = Op(15) // CALL
	OP_RET    = Op(16) // RET
)

// opInfo is a registry entry: operand shapes, cycle cost and execute handler.
type opInfo struct {
	shape  []argShape                 // Accepted kinds, per operand position.
	check  func(args []Operand) error // Extra operand validation, may be nil.
	cycles func(args []Operand) int   // Declared cycle count.
	exec   func(ex *Exec) (err error) // Architectural effects.
}

// fixed is a cycle count independent of the operands.
func fixed(n int) func(args []Operand) int {
	return func(args []Operand) int { return n }
}

// memoryCost adds one cycle when any operand is in data memory.
func memoryCost(n int) func(args []Operand) int {
	return func(args []Operand) int {
		if slices.ContainsFunc(args, Operand.IsMemory) {
			return n + 1
		}
		return n
	}
}

// checkBit requires the second operand to be a bit index of a work register.
func checkBit(args []Operand) (err error) {
	if args[1].Value >= 32 {
		err = ErrBitInvalid
	}
	return
}

// checkSyncId requires a lock or barrier id to be known at load time.
func checkSyncId(args []Operand) (err error) {
	if args[0].Kind != ARG_IMMEDIATE {
		err = ErrSyncIdInvalid
	}
	return
}

// opTable is the instruction registry, indexed by Op.
var opTable = [...]opInfo{
	OP_NOP: {
		cycles: fixed(1),
		exec:   execNop,
	},
	OP_MOV: {
		shape:  []argShape{SHAPE_IMM | SHAPE_REG | SHAPE_MEM, SHAPE_REG | SHAPE_MEM},
		cycles: memoryCost(1),
		exec:   execMov,
	},
	OP_ADD: {
		shape:  []argShape{SHAPE_IMM | SHAPE_REG | SHAPE_MEM, SHAPE_REG | SHAPE_MEM},
		cycles: fixed(1),
		exec:   execAdd,
	},
	OP_SUB: {
		shape:  []argShape{SHAPE_IMM | SHAPE_REG | SHAPE_MEM, SHAPE_REG | SHAPE_MEM},
		cycles: fixed(1),
		exec:   execSub,
	},
	OP_JZ: {
		shape:  []argShape{SHAPE_IMM | SHAPE_REG},
		cycles: fixed(2),
		exec:   execJz,
	},
	OP_JE: {
		shape:  []argShape{SHAPE_REG, SHAPE_REG},
		cycles: fixed(2),
		exec:   execJe,
	},
	OP_REPEAT: {
		shape:  []argShape{SHAPE_IMM | SHAPE_REG},
		cycles: fixed(1),
		exec:   execRepeat,
	},
	OP_SCTX: {
		cycles: fixed(1),
		exec:   execSctx,
	},
	OP_RCTX: {
		cycles: fixed(1),
		exec:   execRctx,
	},
	OP_LOC: {
		shape:  []argShape{SHAPE_IMM | SHAPE_REG},
		check:  checkSyncId,
		cycles: fixed(1),
		exec:   execLoc,
	},
	OP_UNLOC: {
		shape:  []argShape{SHAPE_IMM | SHAPE_REG},
		check:  checkSyncId,
		cycles: fixed(1),
		exec:   execUnloc,
	},
	OP_MEET: {
		shape:  []argShape{SHAPE_IMM | SHAPE_REG},
		check:  checkSyncId,
		cycles: fixed(1),
		exec:   execMeet,
	},
	OP_RESET: {
		cycles: fixed(1),
		exec:   execReset,
	},
	OP_BSET: {
		shape:  []argShape{SHAPE_REG, SHAPE_IMM},
		check:  checkBit,
		cycles: fixed(1),
		exec:   execBset,
	},
	OP_BCLR: {
		shape:  []argShape{SHAPE_REG, SHAPE_IMM},
		check:  checkBit,
		cycles: fixed(1),
		exec:   execBclr,
	},
	OP_CALL: {
		shape:  []argShape{SHAPE_IMM | SHAPE_REG},
		cycles: fixed(2),
		exec:   execCall,
	},
	OP_RET: {
		cycles: fixed(2),
		exec:   execRet,
	},
}

// opByName maps a mnemonic to its Op.
var opByName = map[string]Op{}

func init() {
	for n := range opTable {
		op := Op(n)
		opByName[op.String()] = op
	}
}

// LookupOp returns the Op for a mnemonic, in any letter case.
func LookupOp(mnemonic string) (op Op, ok bool) {
	op, ok = opByName[strings.ToUpper(mnemonic)]
	return
}

// Ops returns all of the registered mnemonics, in Op order.
func Ops() (ops []Op) {
	for n := range opTable {
		ops = append(ops, Op(n))
	}
	return
}

// Instruction is a decoded instruction, resident at Address in the program image.
// It is not modified after decode.
type Instruction struct {
	Op      Op        // Mnemonic.
	Address uint32    // Resident program address.
	Args    []Operand // Decoded arguments.
	Cycles  int       // Declared cycle count.
	LineNo  int       // Source line, zero for default fill.
}

// Mnemonic returns the normalized mnemonic.
func (inst *Instruction) Mnemonic() string {
	return inst.Op.String()
}

// String returns the normalized assembly text of the instruction.
func (inst *Instruction) String() string {
	if len(inst.Args) == 0 {
		return inst.Op.String()
	}

	args := make([]string, len(inst.Args))
	for n, arg := range inst.Args {
		args[n] = arg.String()
	}
	return fmt.Sprintf("%v %v", inst.Op, strings.Join(args, ", "))
}

// makeNop returns the fill instruction for an address.
func makeNop(addr uint32) *Instruction {
	return &Instruction{Op: OP_NOP, Address: addr, Cycles: opTable[OP_NOP].cycles(nil)}
}

// Decoder turns mnemonics and argument text into Instructions.
type Decoder struct {
	Registers int               // Work register count, 16 if zero.
	Symbols   map[string]uint32 // Labels and equates.
}

func (dec *Decoder) registers() int {
	if dec.Registers == 0 {
		return N_WORK_REG
	}
	return dec.Registers
}

// Decode decodes an instruction with sixteen work registers and no symbols.
func Decode(mnemonic string, args []string, address uint32) (inst *Instruction, err error) {
	dec := &Decoder{}
	return dec.Decode(mnemonic, args, address)
}

// Decode looks up the mnemonic in the registry, validates the operands and
// computes the declared cycle count.
func (dec *Decoder) Decode(mnemonic string, args []string, address uint32) (inst *Instruction, err error) {
	op, ok := LookupOp(mnemonic)
	if !ok {
		err = ErrMnemonicUnknown
		return
	}

	info := &opTable[op]

	if len(args) != len(info.shape) {
		err = errors.Join(ErrOperandsInvalid, ErrOperandCount)
		return
	}

	operands := make([]Operand, len(args))
	for n, word := range args {
		var arg Operand
		arg, err = dec.operand(strings.ToUpper(word))
		if err != nil {
			err = errors.Join(ErrOperandsInvalid, err)
			return
		}
		if !info.shape[n].accepts(arg.Kind) {
			err = errors.Join(ErrOperandsInvalid, ErrOperandKind)
			return
		}
		operands[n] = arg
	}

	if info.check != nil {
		err = info.check(operands)
		if err != nil {
			err = errors.Join(ErrOperandsInvalid, err)
			return
		}
	}

	inst = &Instruction{
		Op:      op,
		Address: address,
		Args:    operands,
		Cycles:  info.cycles(operands),
	}

	return
}
