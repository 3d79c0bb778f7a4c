// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"errors"

	"github.com/psycore/psycore/memory"
)

// Exec is the state handle given to an instruction's execute handler.
type Exec struct {
	*Cpu
	Inst  *Instruction // Instruction being retired.
	Next  uint32       // Next PC, PC+1 unless changed.
	Jump  bool         // Set when the handler transfers control.
	Stall bool         // Set when a LOC or MEET is blocked.

	reset bool
}

// jump transfers control.
func (ex *Exec) jump(pc uint32) {
	ex.Next = pc
	ex.Jump = true
}

// address returns the data memory address of a memory operand.
func (ex *Exec) address(arg Operand) uint32 {
	if arg.Kind == ARG_INDIRECT {
		return uint32(ex.W[arg.Value])
	}
	return arg.Value
}

// memoryTrap converts a data memory error into a trap.
func (ex *Exec) memoryTrap(addr uint32, err error) error {
	if errors.Is(err, memory.ErrAddressRange) {
		return ex.raise(TRAP_DATA_RANGE, addr)
	}
	return err
}

// load reads the value of an operand.
func (ex *Exec) load(arg Operand) (value int32, err error) {
	switch arg.Kind {
	case ARG_IMMEDIATE:
		value = int32(arg.Value)
	case ARG_REGISTER:
		value = ex.W[arg.Value]
	default:
		addr := ex.address(arg)
		value, err = ex.Memory.Read(addr)
		if err != nil {
			err = ex.memoryTrap(addr, err)
		}
	}
	return
}

// store writes a register or memory operand.
func (ex *Exec) store(arg Operand, value int32) (err error) {
	switch arg.Kind {
	case ARG_REGISTER:
		ex.W[arg.Value] = value
	default:
		addr := ex.address(arg)
		err = ex.Memory.Write(addr, value)
		if err != nil {
			err = ex.memoryTrap(addr, err)
		}
	}
	return
}

// flags sets the status register from an arithmetic result.
func (ex *Exec) flags(result int32, overflow, carry bool) {
	stat := uint32(0)
	if result == 0 {
		stat |= STAT_Z
	}
	if result < 0 {
		stat |= STAT_N
	}
	if overflow {
		stat |= STAT_V
	}
	if carry {
		stat |= STAT_C
	}
	ex.Stat = stat
}

func execNop(ex *Exec) (err error) {
	return
}

func execMov(ex *Exec) (err error) {
	value, err := ex.load(ex.Inst.Args[0])
	if err != nil {
		return
	}

	err = ex.store(ex.Inst.Args[1], value)
	return
}

func execAdd(ex *Exec) (err error) {
	src, err := ex.load(ex.Inst.Args[0])
	if err != nil {
		return
	}
	dst, err := ex.load(ex.Inst.Args[1])
	if err != nil {
		return
	}

	result := dst + src
	err = ex.store(ex.Inst.Args[1], result)
	if err != nil {
		return
	}

	overflow := ((dst ^ result) & (src ^ result)) < 0
	carry := uint64(uint32(dst))+uint64(uint32(src)) > 0xffffffff
	ex.flags(result, overflow, carry)
	return
}

func execSub(ex *Exec) (err error) {
	src, err := ex.load(ex.Inst.Args[0])
	if err != nil {
		return
	}
	dst, err := ex.load(ex.Inst.Args[1])
	if err != nil {
		return
	}

	result := dst - src
	err = ex.store(ex.Inst.Args[1], result)
	if err != nil {
		return
	}

	overflow := ((dst ^ src) & (dst ^ result)) < 0
	borrow := uint32(dst) < uint32(src)
	ex.flags(result, overflow, borrow)
	return
}

func execJz(ex *Exec) (err error) {
	if ex.Stat&STAT_Z == 0 {
		return
	}

	target, err := ex.load(ex.Inst.Args[0])
	if err != nil {
		return
	}

	ex.jump(uint32(target))
	return
}

func execJe(ex *Exec) (err error) {
	a, err := ex.load(ex.Inst.Args[0])
	if err != nil {
		return
	}
	b, err := ex.load(ex.Inst.Args[1])
	if err != nil {
		return
	}

	if a == b {
		ex.jump(ex.PC + 2)
	}
	return
}

func execRepeat(ex *Exec) (err error) {
	count, err := ex.load(ex.Inst.Args[0])
	if err != nil {
		return
	}

	if count <= 0 {
		ex.repeat = 0
		ex.jump(ex.PC + 2)
		return
	}

	ex.repeat = uint32(count)
	ex.repeatAddr = ex.PC + 1
	return
}

func execSctx(ex *Exec) (err error) {
	if !ex.Stack.Room(len(ex.W) + 1) {
		err = ex.raise(TRAP_STACK_FULL, uint32(ex.Stack.Len()))
		return
	}

	for _, value := range ex.W {
		ex.Stack.Push(value)
	}
	ex.Stack.Push(int32(ex.Stat))
	return
}

func execRctx(ex *Exec) (err error) {
	if ex.Stack.Len() < len(ex.W)+1 {
		err = ex.raise(TRAP_STACK_EMPTY, uint32(ex.Stack.Len()))
		return
	}

	stat, _ := ex.Stack.Pop()
	ex.Stat = uint32(stat)
	for n := len(ex.W) - 1; n >= 0; n-- {
		ex.W[n], _ = ex.Stack.Pop()
	}
	return
}

// block applies the outcome of a LOC or MEET attempt.
func (ex *Exec) block(state SyncState) {
	switch state {
	case SYNC_ISSUED:
		ex.Stall = true
	case SYNC_WAITING:
		ex.Stall = true
		ex.CyclesLost++
	}
}

func execLoc(ex *Exec) (err error) {
	state, err := ex.Domain.Lock(ex.ID, int(ex.Inst.Args[0].Value))
	if err != nil {
		return
	}

	ex.block(state)
	return
}

func execUnloc(ex *Exec) (err error) {
	id := ex.Inst.Args[0].Value
	err = ex.Domain.Unlock(ex.ID, int(id))
	if errors.Is(err, ErrLockNotOwned) {
		err = ex.raise(TRAP_LOCK_OWNER, id)
	}
	return
}

func execMeet(ex *Exec) (err error) {
	state, err := ex.Domain.Meet(ex.ID, int(ex.Inst.Args[0].Value))
	if err != nil {
		return
	}

	ex.block(state)
	return
}

func execReset(ex *Exec) (err error) {
	ex.Cpu.Reset()
	ex.Retired++
	ex.reset = true
	return
}

func execBset(ex *Exec) (err error) {
	reg := ex.Inst.Args[0].Value
	ex.W[reg] |= int32(1) << ex.Inst.Args[1].Value
	return
}

func execBclr(ex *Exec) (err error) {
	reg := ex.Inst.Args[0].Value
	ex.W[reg] &^= int32(1) << ex.Inst.Args[1].Value
	return
}

func execCall(ex *Exec) (err error) {
	target, err := ex.load(ex.Inst.Args[0])
	if err != nil {
		return
	}

	if ex.Stack.Full() {
		err = ex.raise(TRAP_STACK_FULL, uint32(ex.Stack.Len()))
		return
	}

	ex.Stack.Push(int32(ex.PC + 1))
	ex.jump(uint32(target))
	return
}

func execRet(ex *Exec) (err error) {
	target, ok := ex.Stack.Pop()
	if !ok {
		err = ex.raise(TRAP_STACK_EMPTY, 0)
		return
	}

	ex.jump(uint32(target))
	return
}
