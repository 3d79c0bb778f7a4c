// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"fmt"
	"slices"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/psycore/psycore/memory"
)

// Status register flags, set by ADD and SUB.
const (
	STAT_Z = uint32(1 << 0) // Result was zero.
	STAT_N = uint32(1 << 1) // Result was negative.
	STAT_V = uint32(1 << 2) // Signed overflow.
	STAT_C = uint32(1 << 3) // Unsigned carry, or borrow for SUB.
)

// TrapKind is the cause of a hardware trap.
type TrapKind int

//go:generate go tool stringer -linecomment -type=TrapKind
const (
	TRAP_PC_RANGE    = TrapKind(0) // pc range
	TRAP_DATA_RANGE  = TrapKind(1) // data range
	TRAP_STACK_EMPTY = TrapKind(2) // stack empty
	TRAP_STACK_FULL  = TrapKind(3) // stack full
	TRAP_LOCK_OWNER  = TrapKind(4) // lock owner
)

// Cpu is the simulation context for a single psyCore core.
type Cpu struct {
	Verbose bool // Set to enable verbose logging.

	ID     int           // Core id within the domain.
	Image  *Image        // Program image, shared read-only.
	Memory memory.Memory // Data memory.
	Domain *Domain       // Synchronization domain.

	PC        uint32  // Program counter.
	W         []int32 // Work registers.
	Stat      uint32  // Status flags.
	Stack     Stack   // Context and call stack.
	ResetAddr uint32  // PC after reset.
	ItAddr    uint32  // Interrupt handler address.

	CyclesLost int // Ticks spent blocked in LOC or MEET. Survives Reset.
	Ticks      int // Ticks stepped while not trapped. Survives Reset.
	Retired    int // Instructions completed. Survives Reset.

	trap       *ErrTrap // Set while trapped.
	cycles     int      // Cycles remaining for the in-flight instruction.
	repeat     uint32   // Remaining REPEAT iterations.
	repeatAddr uint32   // Address of the repeated instruction.
}

// NewCpu creates a core running an image. If mem is nil the core gets
// private data memory. If dom is nil the core gets a private domain,
// and must be core 0.
func NewCpu(id int, cfg Config, img *Image, mem memory.Memory, dom *Domain) (cpu *Cpu) {
	if mem == nil {
		mem = memory.NewRam(cfg.DataMemSize)
	}
	if dom == nil {
		dom = NewDomain(1, cfg.LockCount, cfg.BarrierCount)
	}

	cpu = &Cpu{
		ID:        id,
		Image:     img,
		Memory:    mem,
		Domain:    dom,
		W:         make([]int32, cfg.WorkRegisterCount),
		Stack:     Stack{Limit: cfg.StackLimit},
		ResetAddr: cfg.ResetAddr,
		ItAddr:    cfg.ItAddr,
	}

	cpu.Reset()

	return
}

// Reset the core to its power-on state.
// - PC is set to ResetAddr.
// - Clears the work registers, status flags, stack and trap.
// - Abandons any lock or barrier the core holds or waits on.
// - Does not clear the CyclesLost, Ticks or Retired statistics.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		logrus.WithFields(logrus.Fields{"core": cpu.ID, "pc": cpu.ResetAddr}).Debug("cpu: reset")
	}

	cpu.Domain.Abandon(cpu.ID)

	cpu.PC = cpu.ResetAddr
	clear(cpu.W)
	cpu.Stat = 0
	cpu.Stack.Reset()
	cpu.trap = nil
	cpu.cycles = 0
	cpu.repeat = 0
	cpu.repeatAddr = 0
}

// Trapped returns true if the core is halted by a trap.
func (cpu *Cpu) Trapped() bool {
	return cpu.trap != nil
}

// Trap returns the pending trap, or nil.
func (cpu *Cpu) Trap() *ErrTrap {
	return cpu.trap
}

// Busy returns true if an instruction is part way through its cycles.
func (cpu *Cpu) Busy() bool {
	return cpu.cycles != 0
}

// raise traps the core at the current PC.
func (cpu *Cpu) raise(kind TrapKind, addr uint32) (err error) {
	cpu.trap = &ErrTrap{Kind: kind, Core: cpu.ID, PC: cpu.PC, Addr: addr}
	cpu.cycles = 0

	if cpu.Verbose {
		logrus.WithFields(logrus.Fields{"core": cpu.ID, "pc": cpu.PC, "addr": addr}).Debugf("cpu: trap %v", kind)
	}

	err = cpu.trap
	return
}

// setPC commits a new PC, or traps if it is outside instruction memory.
func (cpu *Cpu) setPC(pc uint32) (err error) {
	if pc >= cpu.Image.Size() {
		err = cpu.raise(TRAP_PC_RANGE, pc)
		return
	}

	cpu.PC = pc
	return
}

// Step advances the core by one cycle.
//
// While trapped, Step changes nothing and returns the trap. An
// instruction takes effect on the last of its declared cycles; a LOC
// or MEET that is still blocked is retried on the next step.
//
// A next PC outside instruction memory traps on the retiring cycle,
// not on the following fetch. PC stays at the retiring instruction,
// and the trap's Addr holds the rejected PC.
func (cpu *Cpu) Step() (err error) {
	if cpu.trap != nil {
		err = cpu.trap
		return
	}

	if cpu.PC >= cpu.Image.Size() {
		err = cpu.raise(TRAP_PC_RANGE, cpu.PC)
		return
	}

	cpu.Ticks++

	inst := cpu.Image.Fetch(cpu.PC)
	if cpu.cycles == 0 {
		cpu.cycles = inst.Cycles
	}

	cpu.cycles--
	if cpu.cycles > 0 {
		return
	}

	if cpu.Verbose {
		logrus.WithFields(logrus.Fields{
			"core": cpu.ID,
			"pc":   cpu.PC,
			"line": inst.LineNo,
		}).Debugf("cpu: %v", inst)
	}

	ex := &Exec{Cpu: cpu, Inst: inst, Next: cpu.PC + 1}
	err = opTable[inst.Op].exec(ex)
	if err != nil {
		return
	}

	if ex.Stall || ex.reset {
		return
	}

	if cpu.repeat > 0 && cpu.PC == cpu.repeatAddr {
		switch {
		case ex.Jump:
			cpu.repeat = 0
		default:
			cpu.repeat--
			if cpu.repeat > 0 {
				ex.Next = cpu.PC
			}
		}
	}

	err = cpu.setPC(ex.Next)
	if err != nil {
		return
	}

	cpu.Retired++
	return
}

// State is a snapshot of the architectural state of a core.
type State struct {
	ID         int
	PC         uint32
	W          []int32
	Stat       uint32
	Stack      []int32
	Trap       string
	CyclesLost int
	Ticks      int
	Retired    int
}

// State returns a snapshot of the core.
func (cpu *Cpu) State() (state State) {
	state = State{
		ID:         cpu.ID,
		PC:         cpu.PC,
		W:          slices.Clone(cpu.W),
		Stat:       cpu.Stat,
		Stack:      slices.Clone(cpu.Stack.Data),
		CyclesLost: cpu.CyclesLost,
		Ticks:      cpu.Ticks,
		Retired:    cpu.Retired,
	}

	if cpu.trap != nil {
		state.Trap = cpu.trap.Error()
	}

	return
}

// String returns the current core state as a string.
func (cpu *Cpu) String() (text string) {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%5s: %d\n", "core", cpu.ID)
	fmt.Fprintf(&sb, "%5s: %04X\n", "pc", cpu.PC)

	flags := []byte("----")
	for n, name := range "ZNVC" {
		if cpu.Stat&(1<<n) != 0 {
			flags[n] = byte(name)
		}
	}
	fmt.Fprintf(&sb, "%5s: %s\n", "stat", flags)

	for n, val := range cpu.W {
		fmt.Fprintf(&sb, "%5s: %04X_%04X\n", fmt.Sprintf("w%d", n), uint32(val)>>16, uint32(val)&0xffff)
	}

	val, ok := cpu.Stack.Peek()
	if ok {
		fmt.Fprintf(&sb, "%5s: %04X_%04X (%d)\n", "stack", uint32(val)>>16, uint32(val)&0xffff, cpu.Stack.Len())
	} else {
		fmt.Fprintf(&sb, "%5s: ----_----\n", "stack")
	}

	if cpu.trap != nil {
		fmt.Fprintf(&sb, "%5s: %v\n", "trap", cpu.trap)
	}

	text = sb.String()
	return
}
