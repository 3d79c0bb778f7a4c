// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/psycore/psycore/cpu"
)

func TestLoad_Defaults(t *testing.T) {
	assert := assert.New(t)

	cfg, err := Load("empty.star", strings.NewReader(""))
	assert.NoError(err)
	assert.Equal(cpu.DefaultConfig(), cfg)
}

func TestLoad(t *testing.T) {
	assert := assert.New(t)

	script := strings.Join([]string{
		"_base = 64",
		"instructionMemSize = _base * 4",
		"dataMemSize = DATA_MEM_SIZE * 2",
		"resetAddr = 0x10",
		"itAddr = 200",
		"nCores = 4",
		"workRegisterCount = N_WORK_REG // 2",
		"lockCount = 2",
		"barrierCount = 3",
		"stackLimit = 32",
		"sharedMemory = True",
		"parallel = nCores > 1",
	}, "\n")

	cfg, err := Load("test.star", strings.NewReader(script))
	assert.NoError(err)
	assert.Equal(cpu.Config{
		InstructionMemSize: 256,
		DataMemSize:        2048,
		ResetAddr:          0x10,
		ItAddr:             200,
		Cores:              4,
		WorkRegisterCount:  8,
		LockCount:          2,
		BarrierCount:       3,
		StackLimit:         32,
		SharedMemory:       true,
		Parallel:           true,
	}, cfg)
}

func TestLoad_Errors(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		script string
		err    error
	}){
		{"nCore = 2", cpu.ErrConfigKey("nCore")},
		{"nCores = '2'", ErrKeyType},
		{"sharedMemory = 1", ErrKeyType},
		{"resetAddr = -1", cpu.ErrAddressRange},
		{"nCores = 0", cpu.ErrCoreCount},
		{"lockCount = -1", cpu.ErrLockInvalid},
		{"instructionMemSize = 0", cpu.ErrConfigInvalid},
		{"instructionMemSize = 16\nresetAddr = 16", cpu.ErrAddressRange},
	}

	for _, entry := range table {
		_, err := Load("bad.star", strings.NewReader(entry.script))
		assert.True(errors.Is(err, entry.err), "%q: %v", entry.script, err)
	}

	_, err := Load("syntax.star", strings.NewReader("nCores = ("))
	assert.Error(err)
}

func TestLoadFile(t *testing.T) {
	assert := assert.New(t)

	path := filepath.Join(t.TempDir(), "psycore.star")
	err := os.WriteFile(path, []byte("nCores = 2\n"), 0o644)
	assert.NoError(err)

	cfg, err := LoadFile(path)
	assert.NoError(err)
	assert.Equal(2, cfg.Cores)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.star"))
	assert.True(errors.Is(err, os.ErrNotExist))
}
