// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"errors"
	"iter"
	"maps"
)

// Default configuration values.
const (
	INSTRUCTION_MEM_SIZE = 1024 // Instruction memory, in instructions.
	DATA_MEM_SIZE        = 1024 // Data memory, in words.
	RESET_ADDR           = 0    // First address fetched after reset.
	IT_ADDR              = 1000 // Interrupt handler entry.
	N_CORES              = 1    // Cores sharing a program image.
	N_WORK_REG           = 16   // Work registers per core.
	N_LOCKS              = 16   // Locks in a sync domain.
	N_BARRIERS           = 16   // Barriers in a sync domain.
)

// Config is the simulator configuration.
type Config struct {
	InstructionMemSize int    // Instruction memory size.
	DataMemSize        int    // Data memory size, per core unless SharedMemory.
	ResetAddr          uint32 // First address fetched after reset.
	ItAddr             uint32 // Interrupt handler address.
	Cores              int    // Number of cores.
	WorkRegisterCount  int    // Work registers per core.
	LockCount          int    // Number of LOC lock ids.
	BarrierCount       int    // Number of MEET barrier ids.
	StackLimit         int    // Stack depth limit, zero for unbounded.
	SharedMemory       bool   // All cores share one data memory.
	Parallel           bool   // Step cores concurrently within a tick.
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		InstructionMemSize: INSTRUCTION_MEM_SIZE,
		DataMemSize:        DATA_MEM_SIZE,
		ResetAddr:          RESET_ADDR,
		ItAddr:             IT_ADDR,
		Cores:              N_CORES,
		WorkRegisterCount:  N_WORK_REG,
		LockCount:          N_LOCKS,
		BarrierCount:       N_BARRIERS,
	}
}

// Validate checks the configuration. Core, lock and barrier
// misconfiguration is reported as an ErrSyncViolation.
func (cfg Config) Validate() (err error) {
	switch {
	case cfg.InstructionMemSize < 1:
		err = errors.Join(ErrConfigInvalid, ErrConfigKey("instructionMemSize"))
	case cfg.DataMemSize < 0:
		err = errors.Join(ErrConfigInvalid, ErrConfigKey("dataMemSize"))
	case cfg.WorkRegisterCount < 1:
		err = errors.Join(ErrConfigInvalid, ErrConfigKey("workRegisterCount"))
	case cfg.StackLimit < 0:
		err = errors.Join(ErrConfigInvalid, ErrConfigKey("stackLimit"))
	case uint64(cfg.ResetAddr) >= uint64(cfg.InstructionMemSize):
		err = errors.Join(ErrConfigInvalid, ErrAddressRange)
	case cfg.Cores < 1:
		err = ErrSyncViolation{Value: cfg.Cores, Err: ErrCoreCount}
	case cfg.LockCount < 0:
		err = ErrSyncViolation{Value: cfg.LockCount, Err: ErrLockInvalid}
	case cfg.BarrierCount < 0:
		err = ErrSyncViolation{Value: cfg.BarrierCount, Err: ErrBarrierInvalid}
	}

	return
}

// Defines returns the assembler symbols predefined by the configuration.
func (cfg Config) Defines() iter.Seq2[string, uint32] {
	return maps.All(map[string]uint32{
		"INSTRUCTION_MEM_SIZE": uint32(cfg.InstructionMemSize),
		"DATA_MEM_SIZE":        uint32(cfg.DataMemSize),
		"RESET_ADDR":           cfg.ResetAddr,
		"IT_ADDR":              cfg.ItAddr,
		"N_CORES":              uint32(cfg.Cores),
		"N_WORK_REG":           uint32(cfg.WorkRegisterCount),
		"N_LOCKS":              uint32(cfg.LockCount),
		"N_BARRIERS":           uint32(cfg.BarrierCount),
	})
}
