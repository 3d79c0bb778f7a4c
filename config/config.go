// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package config loads a simulator configuration from a Starlark script.
//
// The script assigns the configuration keys as globals, for example:
//
//	nCores = 4
//	dataMemSize = DATA_MEM_SIZE * 2
//	sharedMemory = True
//
// The default value of every numeric key is predeclared under its
// assembler symbol name (DATA_MEM_SIZE, N_CORES, ...). Globals whose names
// start with '_' are private to the script.
package config

import (
	"errors"
	"io"
	"os"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/psycore/psycore/cpu"
	"github.com/psycore/psycore/translate"
)

var f = translate.From

var (
	ErrKeyType = errors.New(f("configuration key has the wrong type"))
)

// setter stores a Starlark value into a configuration field.
type setter func(cfg *cpu.Config, value starlark.Value) error

func intKey(field func(cfg *cpu.Config) *int) setter {
	return func(cfg *cpu.Config, value starlark.Value) (err error) {
		n, err := starlark.AsInt32(value)
		if err != nil {
			err = errors.Join(ErrKeyType, err)
			return
		}
		*field(cfg) = n
		return
	}
}

func addrKey(field func(cfg *cpu.Config) *uint32) setter {
	return func(cfg *cpu.Config, value starlark.Value) (err error) {
		n, err := starlark.AsInt32(value)
		if err == nil && n < 0 {
			err = cpu.ErrAddressRange
		}
		if err != nil {
			err = errors.Join(ErrKeyType, err)
			return
		}
		*field(cfg) = uint32(n)
		return
	}
}

func boolKey(field func(cfg *cpu.Config) *bool) setter {
	return func(cfg *cpu.Config, value starlark.Value) (err error) {
		b, ok := value.(starlark.Bool)
		if !ok {
			err = ErrKeyType
			return
		}
		*field(cfg) = bool(b)
		return
	}
}

// keys are the recognized configuration globals.
var keys = map[string]setter{
	"instructionMemSize": intKey(func(cfg *cpu.Config) *int { return &cfg.InstructionMemSize }),
	"dataMemSize":        intKey(func(cfg *cpu.Config) *int { return &cfg.DataMemSize }),
	"resetAddr":          addrKey(func(cfg *cpu.Config) *uint32 { return &cfg.ResetAddr }),
	"itAddr":             addrKey(func(cfg *cpu.Config) *uint32 { return &cfg.ItAddr }),
	"nCores":             intKey(func(cfg *cpu.Config) *int { return &cfg.Cores }),
	"workRegisterCount":  intKey(func(cfg *cpu.Config) *int { return &cfg.WorkRegisterCount }),
	"lockCount":          intKey(func(cfg *cpu.Config) *int { return &cfg.LockCount }),
	"barrierCount":       intKey(func(cfg *cpu.Config) *int { return &cfg.BarrierCount }),
	"stackLimit":         intKey(func(cfg *cpu.Config) *int { return &cfg.StackLimit }),
	"sharedMemory":       boolKey(func(cfg *cpu.Config) *bool { return &cfg.SharedMemory }),
	"parallel":           boolKey(func(cfg *cpu.Config) *bool { return &cfg.Parallel }),
}

// predeclared returns the default values, by assembler symbol name.
func predeclared() (dict starlark.StringDict) {
	dict = starlark.StringDict{}
	for name, value := range cpu.DefaultConfig().Defines() {
		dict[name] = starlark.MakeUint(uint(value))
	}
	return
}

// Load executes a configuration script and returns the resulting,
// validated configuration. Keys the script does not set keep their
// defaults.
func Load(name string, src io.Reader) (cfg cpu.Config, err error) {
	cfg = cpu.DefaultConfig()

	thread := &starlark.Thread{Name: name}
	opts := syntax.FileOptions{}
	globals, err := starlark.ExecFileOptions(&opts, thread, name, src, predeclared())
	if err != nil {
		return
	}

	for _, key := range globals.Keys() {
		if strings.HasPrefix(key, "_") {
			continue
		}
		set, ok := keys[key]
		if !ok {
			err = errors.Join(cpu.ErrConfigInvalid, cpu.ErrConfigKey(key))
			return
		}
		err = set(&cfg, globals[key])
		if err != nil {
			err = errors.Join(cpu.ErrConfigKey(key), err)
			return
		}
	}

	err = cfg.Validate()
	return
}

// LoadFile loads a configuration script from a file.
func LoadFile(path string) (cfg cpu.Config, err error) {
	inf, err := os.Open(path)
	if err != nil {
		return
	}
	defer inf.Close()

	cfg, err = Load(path, inf)
	return
}
