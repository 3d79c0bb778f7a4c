// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/psycore/psycore/cpu"
)

// newTestEmulator assembles a program and creates an emulator for it.
func newTestEmulator(t *testing.T, cfg cpu.Config, program ...string) (emu *Emulator) {
	assert := assert.New(t)

	asm := &cpu.Assembler{Config: cfg}
	img, diags := asm.Load(program)
	assert.Empty(diags)

	emu, err := NewEmulator(cfg, img)
	if !assert.NoError(err) {
		t.FailNow()
	}

	return
}

func TestEmulator(t *testing.T) {
	assert := assert.New(t)

	cfg := cpu.DefaultConfig()
	cfg.Cores = 3
	emu := newTestEmulator(t, cfg, "nop")

	assert.False(emu.Verbose)
	assert.Equal(3, len(emu.Cores))
	assert.Equal(3, len(emu.Memory))
	assert.Equal(3, emu.Domain.Cores())
	for id, core := range emu.Cores {
		assert.Equal(id, core.ID)
		assert.Same(emu.Image, core.Image)
		assert.Same(emu.Domain, core.Domain)
		assert.Equal(emu.Memory[id], core.Memory)
	}
	assert.False(emu.Done())

	cfg.SharedMemory = true
	emu = newTestEmulator(t, cfg, "nop")
	assert.Equal(1, len(emu.Memory))
	for _, core := range emu.Cores {
		assert.Equal(emu.Memory[0], core.Memory)
	}
}

func TestEmulator_New_Errors(t *testing.T) {
	assert := assert.New(t)

	cfg := cpu.DefaultConfig()
	asm := &cpu.Assembler{Config: cfg}

	img, diags := asm.Load([]string{"loc 16"})
	assert.Empty(diags)
	_, err := NewEmulator(cfg, img)
	assert.True(errors.Is(err, cpu.ErrSyncViolation{}))
	assert.True(errors.Is(err, cpu.ErrLockInvalid))

	img, _ = asm.Load([]string{"nop", "meet 20"})
	_, err = NewEmulator(cfg, img)
	assert.True(errors.Is(err, cpu.ErrBarrierInvalid))

	bad := cfg
	bad.Cores = 0
	_, err = NewEmulator(bad, img)
	assert.True(errors.Is(err, cpu.ErrSyncViolation{}))
	assert.True(errors.Is(err, cpu.ErrCoreCount))

	small := cfg
	small.InstructionMemSize = 16
	img, _ = asm.Load([]string{"nop"})
	_, err = NewEmulator(small, img)
	assert.True(errors.Is(err, cpu.ErrConfigInvalid))
}

// example4 has core 0 reach MEET at tick 5, and core 1 at tick 7.
var example4 = []string{
	"     mov [0], w0",
	"     je w0, w1",
	"     jz 3",
	"     meet 1",
	"     nop",
}

func TestEmulator_Example4(t *testing.T) {
	for _, parallel := range []bool{false, true} {
		t.Run(fmt.Sprintf("parallel=%v", parallel), func(t *testing.T) {
			assert := assert.New(t)

			cfg := cpu.DefaultConfig()
			cfg.Cores = 2
			cfg.Parallel = parallel
			emu := newTestEmulator(t, cfg, example4...)
			assert.NoError(emu.Memory[1].Write(0, 1))

			for tick := 1; tick <= 7; tick++ {
				done, err := emu.Tick()
				assert.NoError(err)
				assert.False(done)
				for _, core := range emu.Cores {
					assert.LessOrEqual(core.PC, uint32(3), "tick %d", tick)
				}
				if tick == 5 {
					assert.Equal([]int{0}, emu.Domain.Waiting(1))
				}
			}

			_, err := emu.Tick()
			assert.NoError(err)
			for _, core := range emu.Cores {
				assert.Equal(uint32(4), core.PC)
			}

			assert.Equal(2, emu.Cores[0].CyclesLost)
			assert.Equal(0, emu.Cores[1].CyclesLost)
			assert.Equal(8, emu.Ticks)
		})
	}
}

func TestEmulator_BarrierAtomic(t *testing.T) {
	assert := assert.New(t)

	const cores = 4

	cfg := cpu.DefaultConfig()
	cfg.Cores = cores
	emu := newTestEmulator(t, cfg,
		"mov [0], w0",
		"repeat w0",
		"nop",
		"meet 0",
		"nop",
	)

	// Core k arrives at tick 4+2k.
	for id := range cores {
		assert.NoError(emu.Memory[id].Write(0, int32(2*id)))
	}

	last := 4 + 2*(cores-1)
	for tick := 1; tick <= last; tick++ {
		_, err := emu.Tick()
		assert.NoError(err)
		for id, core := range emu.Cores {
			assert.LessOrEqual(core.PC, uint32(3), "tick %d core %d", tick, id)
		}
	}

	_, err := emu.Tick()
	assert.NoError(err)
	for id, core := range emu.Cores {
		assert.Equal(uint32(4), core.PC, "core %d", id)
		assert.Equal(last-(4+2*id), core.CyclesLost, "core %d", id)
	}
}

func TestEmulator_MutualExclusion(t *testing.T) {
	for _, parallel := range []bool{false, true} {
		t.Run(fmt.Sprintf("parallel=%v", parallel), func(t *testing.T) {
			assert := assert.New(t)

			const cores = 4

			cfg := cpu.DefaultConfig()
			cfg.Cores = cores
			cfg.SharedMemory = true
			cfg.Parallel = parallel
			emu := newTestEmulator(t, cfg,
				"      mov 3, w1",
				"loop: loc 0",
				"      mov [0], w2",
				"      add 1, w2",
				"      mov w2, [0]",
				"      unloc 0",
				"      sub 1, w1",
				"      jz done",
				"      sub w3, w3",
				"      jz loop",
				"done: nop",
			)

			finished := func() bool {
				for _, core := range emu.Cores {
					if core.PC < 10 {
						return false
					}
				}
				return true
			}

			for tick := 0; tick < 1000 && !finished(); tick++ {
				_, err := emu.Tick()
				assert.NoError(err)

				inside := 0
				for _, core := range emu.Cores {
					if core.PC >= 2 && core.PC <= 5 {
						inside++
					}
				}
				assert.LessOrEqual(inside, 1, "tick %d", tick)
			}

			assert.True(finished())
			value, err := emu.Memory[0].Read(0)
			assert.NoError(err)
			assert.Equal(int32(cores*3), value)

			lost := 0
			for _, core := range emu.Cores {
				lost += core.CyclesLost
			}
			assert.Greater(lost, 0)
		})
	}
}

func TestEmulator_Deadlock(t *testing.T) {
	assert := assert.New(t)

	cfg := cpu.DefaultConfig()
	cfg.Cores = 2
	emu := newTestEmulator(t, cfg,
		"mov [0], w0",
		"je w0, w1",
		"ret",
		"meet 0",
	)
	assert.NoError(emu.Memory[1].Write(0, 1))

	err := emu.Run(100)
	assert.True(errors.Is(err, ErrTickLimit))
	assert.True(errors.Is(err, cpu.ErrTrapped))

	var where *ErrRuntime
	if assert.True(errors.As(err, &where)) {
		assert.Equal(1, where.Core)
		assert.Equal(3, where.LineNo)
	}

	assert.True(emu.Cores[1].Trapped())
	assert.Equal(cpu.TRAP_STACK_EMPTY, emu.Cores[1].Trap().Kind)
	assert.False(emu.Cores[0].Trapped())
	assert.Equal(uint32(3), emu.Cores[0].PC)
	assert.Equal(95, emu.Cores[0].CyclesLost)
	assert.False(emu.Done())
}

func TestEmulator_Run(t *testing.T) {
	assert := assert.New(t)

	cfg := cpu.DefaultConfig()
	cfg.InstructionMemSize = 8
	cfg.Cores = 2
	emu := newTestEmulator(t, cfg,
		".data 0, 5",
		"mov [0], w0",
		"add w0, w0",
		"mov w0, [1]",
	)

	err := emu.Run(0)
	assert.False(errors.Is(err, ErrTickLimit))
	assert.True(errors.Is(err, cpu.ErrTrapped))
	assert.True(emu.Done())

	for id, core := range emu.Cores {
		assert.Equal(cpu.TRAP_PC_RANGE, core.Trap().Kind)
		value, err := emu.Memory[id].Read(1)
		assert.NoError(err)
		assert.Equal(int32(10), value)
	}

	states := emu.State()
	assert.Equal(2, len(states))
	assert.Equal(int32(10), states[0].W[0])
	assert.NotEmpty(states[0].Trap)

	// Reset reloads the data words, and keeps statistics.
	ticks := emu.Cores[0].Ticks
	assert.NoError(emu.Memory[0].Write(0, 7))
	assert.NoError(emu.Reset())
	assert.Equal(0, emu.Ticks)
	assert.False(emu.Done())
	value, err := emu.Memory[0].Read(0)
	assert.NoError(err)
	assert.Equal(int32(5), value)
	value, err = emu.Memory[0].Read(1)
	assert.NoError(err)
	assert.Equal(int32(0), value)
	assert.Equal(ticks, emu.Cores[0].Ticks)
	assert.Equal(2, emu.LineNo(0))
}
