// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package memory

import (
	"errors"

	"github.com/psycore/psycore/translate"
)

var f = translate.From

var (
	// Memory errors
	ErrAddressRange = errors.New(f("memory address out of range"))
)

// ErrAddress is an access outside of memory.
type ErrAddress uint32

func (err ErrAddress) Error() string {
	return f("memory address 0x%x out of range", uint32(err))
}

func (err ErrAddress) Is(target error) bool {
	return target == ErrAddressRange
}
