// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAssembler(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	img, diags, err := asm.Parse(strings.NewReader(""))
	assert.NoError(err)
	assert.Empty(diags)
	assert.Equal(uint32(INSTRUCTION_MEM_SIZE), img.Size())
	assert.Equal(uint32(INSTRUCTION_MEM_SIZE), asm.Symbol["INSTRUCTION_MEM_SIZE"])
	assert.Equal(uint32(N_WORK_REG), asm.Symbol["N_WORK_REG"])

	for _, inst := range img.Code {
		assert.Equal(OP_NOP, inst.Op)
	}
}

func TestAssembler_Labels(t *testing.T) {
	assert := assert.New(t)

	program := []string{
		"; count down from 3",
		"start: mov 3, w0",
		"",
		"loop:  sub 1, w0",
		"       jz done      ; forward reference",
		"       je w0, w0",
		"       nop",
		"done:  jz start",
	}

	asm := &Assembler{}
	img, diags := asm.Load(program)
	assert.Empty(diags)

	assert.Equal(uint32(0), asm.Symbol["START"])
	assert.Equal(uint32(1), asm.Symbol["LOOP"])
	assert.Equal(uint32(5), asm.Symbol["DONE"])

	inst := img.Fetch(2)
	assert.Equal(OP_JZ, inst.Op)
	assert.Equal(uint32(5), inst.Args[0].Value)
	assert.Equal(5, inst.LineNo)

	assert.Equal(8, img.LineNo(5))
	assert.Equal(0, img.LineNo(6))
	assert.True(img.Populated(5))
	assert.False(img.Populated(6))

	count := 0
	for range img.Instructions() {
		count++
	}
	assert.Equal(6, count)
}

func TestAssembler_Addresses(t *testing.T) {
	assert := assert.New(t)

	program := []string{
		"0x10: nop",
		"      mov 1, w1",
		"4:    here: nop",
		"      nop",
	}

	asm := &Assembler{}
	img, diags := asm.Load(program)
	assert.Empty(diags)

	assert.Equal(1, img.LineNo(0x10))
	assert.Equal(OP_MOV, img.Fetch(0x11).Op)
	assert.Equal(3, img.LineNo(4))
	assert.Equal(4, img.LineNo(5))
	assert.Equal(uint32(4), asm.Symbol["HERE"])
}

func TestAssembler_Diagnostics(t *testing.T) {
	assert := assert.New(t)

	program := []string{
		"mov w1, w2",      // 0
		"mov w1 + w2",     // parse error, no address
		"frob w1",         // 1: decode error, NOP
		"mov w1",          // 2: decode error, NOP
		"jz nowhere",      // 3: missing label, NOP
		"add 1, w0",       // 4
		"4: nop",          // overlap
		"0x400: nop",      // out of range
		"label_only:",     // parse error
		"add: nop",        // 5
		"add: nop",        // 6: duplicate label
		"mov [w99], w0",   // 7: bad register
		"loc w1",          // 8: sync id must be immediate
		"sub 1, w0",       // 9
	}

	asm := &Assembler{}
	img, diags := asm.Load(program)

	expected := [](struct {
		lineno int
		kind   DiagKind
		err    error
	}){
		{2, DIAG_PARSE, ErrCharacter('+')},
		{3, DIAG_DECODE, ErrMnemonicUnknown},
		{4, DIAG_DECODE, ErrOperandCount},
		{5, DIAG_DECODE, ErrLabelMissing("NOWHERE")},
		{7, DIAG_ADDRESS, ErrAddressOverlap},
		{8, DIAG_ADDRESS, ErrAddressRange},
		{9, DIAG_PARSE, ErrMnemonicMissing},
		{11, DIAG_SYMBOL, ErrLabelDuplicate},
		{12, DIAG_DECODE, ErrRegisterInvalid},
		{13, DIAG_DECODE, ErrSyncIdInvalid},
	}

	if assert.Equal(len(expected), len(diags)) {
		for n, entry := range expected {
			diag := diags[n]
			assert.Equal(entry.lineno, diag.LineNo)
			assert.Equal(entry.kind, diag.Kind, "line %d", entry.lineno)
			assert.True(errors.Is(&diag, entry.err), "line %d: %v", entry.lineno, diag.Err)
			assert.Equal(program[entry.lineno-1], diag.Text)
		}
	}

	// Addresses after bad lines are stable.
	assert.Equal(OP_MOV, img.Fetch(0).Op)
	assert.Equal(OP_NOP, img.Fetch(1).Op)
	assert.Equal(3, img.Fetch(1).LineNo)
	assert.Equal(OP_NOP, img.Fetch(2).Op)
	assert.Equal(OP_NOP, img.Fetch(3).Op)
	assert.Equal(OP_ADD, img.Fetch(4).Op)
	assert.Equal(6, img.Fetch(4).LineNo)
	assert.Equal(10, img.Fetch(5).LineNo)
	assert.Equal(11, img.Fetch(6).LineNo)
	assert.Equal(uint32(5), asm.Symbol["ADD"])
	assert.Equal(OP_NOP, img.Fetch(7).Op)
	assert.Equal(OP_NOP, img.Fetch(8).Op)
	assert.Equal(OP_SUB, img.Fetch(9).Op)
	assert.Equal(14, img.Fetch(9).LineNo)
}

func TestAssembler_Directives(t *testing.T) {
	assert := assert.New(t)

	program := []string{
		".equ count, 3",
		".equ table, 0x20",
		".data table, 7, 8, count",
		".data 1, done",
		"      mov [table], w0",
		"done: repeat count",
		"      add 1, w1",
		".equ count, 4",
		".equ w2, 1",
		".data 1023, 1, 2",
		".data nothing, 1",
	}

	asm := &Assembler{}
	img, diags := asm.Load(program)

	assert.Equal(uint32(3), asm.Symbol["COUNT"])
	assert.Equal(uint32(0x20), asm.Symbol["TABLE"])

	assert.Equal([]DataWord{
		{Address: 0x20, Value: 7, LineNo: 3},
		{Address: 0x21, Value: 8, LineNo: 3},
		{Address: 0x22, Value: 3, LineNo: 3},
		{Address: 1, Value: 1, LineNo: 4},
	}, img.Data)

	inst := img.Fetch(0)
	assert.Equal(OP_MOV, inst.Op)
	assert.Equal(uint32(0x20), inst.Args[0].Value)
	assert.Equal(OP_REPEAT, img.Fetch(1).Op)
	assert.Equal(uint32(3), img.Fetch(1).Args[0].Value)

	if assert.Equal(4, len(diags)) {
		assert.True(errors.Is(&diags[0], ErrEquateDuplicate))
		assert.Equal(DIAG_SYMBOL, diags[0].Kind)
		assert.True(errors.Is(&diags[1], ErrEquateSyntax))
		assert.True(errors.Is(&diags[2], ErrAddressRange))
		assert.True(errors.Is(&diags[3], ErrDataSyntax))
	}
}

func TestAssembler_Predefine(t *testing.T) {
	assert := assert.New(t)

	cfg := DefaultConfig()
	cfg.InstructionMemSize = 16
	cfg.WorkRegisterCount = 4

	asm := &Assembler{Config: cfg}
	asm.Predefine("PORT", 9)

	img, diags := asm.Load([]string{
		"mov PORT, w3",
		"mov INSTRUCTION_MEM_SIZE, w0",
		"mov 1, w4",
	})
	assert.Equal(uint32(16), img.Size())
	assert.Equal(uint32(9), img.Fetch(0).Args[0].Value)
	assert.Equal(uint32(16), img.Fetch(1).Args[0].Value)
	if assert.Equal(1, len(diags)) {
		assert.True(errors.Is(&diags[0], ErrRegisterInvalid))
	}
}

func TestImage_Annotate(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	img, diags := asm.Load([]string{
		"start: mov   w1,w2",
		"0x10:  jz start ; back",
		".data 2, 5",
	})
	assert.Empty(diags)

	var sb strings.Builder
	err := img.Annotate(&sb)
	assert.NoError(err)
	assert.Equal("0x0000: MOV W1, W2\n0x0010: JZ START\n.DATA 0x0002, 5\n", sb.String())
}
