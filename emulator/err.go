// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"errors"

	"github.com/psycore/psycore/translate"
)

var f = translate.From

var (
	ErrTickLimit = errors.New(f("tick limit reached"))
)

// ErrRuntime indicates the core and source line of a runtime error.
type ErrRuntime struct {
	Core   int
	LineNo int
	Err    error
}

func (err *ErrRuntime) Error() string {
	return f("core %d line %d %v", err.Core, err.LineNo, err.Err)
}

func (err *ErrRuntime) Unwrap() error {
	return err.Err
}
