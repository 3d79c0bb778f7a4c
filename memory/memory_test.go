// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package memory

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRam(t *testing.T) {
	assert := assert.New(t)

	ram := NewRam(4)
	assert.Equal(4, ram.Len())

	assert.NoError(ram.Write(3, -7))
	value, err := ram.Read(3)
	assert.NoError(err)
	assert.Equal(int32(-7), value)

	ram.Reset()
	value, err = ram.Read(3)
	assert.NoError(err)
	assert.Equal(int32(0), value)
}

func TestRam_Range(t *testing.T) {
	assert := assert.New(t)

	ram := NewRam(4)

	_, err := ram.Read(4)
	assert.True(errors.Is(err, ErrAddressRange))
	assert.Equal(ErrAddress(4), err)

	err = ram.Write(0xffffffff, 1)
	assert.True(errors.Is(err, ErrAddressRange))

	empty := NewRam(0)
	_, err = empty.Read(0)
	assert.True(errors.Is(err, ErrAddressRange))
}
