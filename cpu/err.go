// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"errors"

	"github.com/psycore/psycore/translate"
)

var f = translate.From

var (
	// Line syntax errors
	ErrMnemonicMissing   = errors.New(f("mnemonic missing"))
	ErrMnemonicInvalid   = errors.New(f("mnemonic invalid"))
	ErrBracketUnbalanced = errors.New(f("brackets unbalanced"))
	ErrArgumentEmpty     = errors.New(f("argument empty"))
	ErrArgumentSpace     = errors.New(f("argument has embedded whitespace"))
	ErrLabelPosition     = errors.New(f("label after mnemonic"))
	ErrLabelMultiple     = errors.New(f("multiple labels"))
	ErrAddressPosition   = errors.New(f("address must lead the line"))

	// Decode errors
	ErrMnemonicUnknown = errors.New(f("mnemonic unknown"))
	ErrOperandsInvalid = errors.New(f("operands invalid"))
	ErrOperandCount    = errors.New(f("operand count"))
	ErrOperandKind     = errors.New(f("operand kind"))
	ErrRegisterInvalid = errors.New(f("register invalid"))
	ErrBitInvalid      = errors.New(f("bit index invalid"))
	ErrSyncIdInvalid   = errors.New(f("sync id not immediate"))

	// Loader errors
	ErrAddressRange    = errors.New(f("address out of range"))
	ErrAddressOverlap  = errors.New(f("address already populated"))
	ErrLabelDuplicate  = errors.New(f("label duplicated"))
	ErrEquateDuplicate = errors.New(f(".EQU duplicated"))
	ErrEquateSyntax    = errors.New(f(".EQU syntax"))
	ErrDataSyntax      = errors.New(f(".DATA syntax"))

	// Runtime errors
	ErrTrapped      = errors.New(f("core trapped"))
	ErrStackEmpty   = errors.New(f("stack empty"))
	ErrStackFull    = errors.New(f("stack full"))
	ErrLockNotOwned = errors.New(f("lock not owned"))

	// Configuration and synchronization errors
	ErrConfigInvalid  = errors.New(f("configuration invalid"))
	ErrLockInvalid    = errors.New(f("lock id invalid"))
	ErrBarrierInvalid = errors.New(f("barrier id invalid"))
	ErrCoreCount      = errors.New(f("core count invalid"))
	ErrCoreInvalid    = errors.New(f("core id invalid"))
	ErrCoreDuplicate  = errors.New(f("core joined twice"))
	ErrCoreMissing    = errors.New(f("cores missing from domain"))
)

type ErrCharacter rune

func (ec ErrCharacter) Error() string {
	return f("character %q not allowed", rune(ec))
}

type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(err))
}

type ErrLabelMissing string

func (el ErrLabelMissing) Error() string {
	return f("label %v missing", string(el))
}

// ErrSyntax locates an error on a line of assembly text.
type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err *ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err *ErrSyntax) Unwrap() error {
	return err.Err
}

// ErrTrap is a hardware trap raised by a core. Only Reset() clears it.
type ErrTrap struct {
	Kind TrapKind // Cause of the trap.
	Core int      // Core that trapped.
	PC   uint32   // Address of the trapping instruction.
	Addr uint32   // Offending address, when the cause has one.
}

func (err *ErrTrap) Error() string {
	switch err.Kind {
	case TRAP_PC_RANGE, TRAP_DATA_RANGE:
		return f("core %d trap %v at pc 0x%04x (address 0x%x)", err.Core, err.Kind, err.PC, err.Addr)
	default:
		return f("core %d trap %v at pc 0x%04x", err.Core, err.Kind, err.PC)
	}
}

func (err *ErrTrap) Is(target error) bool {
	return target == ErrTrapped
}

// Unwrap returns the error for the cause of the trap.
func (err *ErrTrap) Unwrap() error {
	switch err.Kind {
	case TRAP_PC_RANGE, TRAP_DATA_RANGE:
		return ErrAddressRange
	case TRAP_STACK_EMPTY:
		return ErrStackEmpty
	case TRAP_STACK_FULL:
		return ErrStackFull
	case TRAP_LOCK_OWNER:
		return ErrLockNotOwned
	}
	return nil
}

// ErrSyncViolation reports a synchronization misconfiguration, found
// before the simulation starts.
type ErrSyncViolation struct {
	Value int
	Err   error
}

func (err ErrSyncViolation) Error() string {
	return f("sync violation: %v (%d)", err.Err, err.Value)
}

func (err ErrSyncViolation) Unwrap() error {
	return err.Err
}

func (err ErrSyncViolation) Is(target error) (ok bool) {
	_, ok = target.(ErrSyncViolation)
	return
}

type ErrConfigKey string

func (err ErrConfigKey) Error() string {
	return f("configuration key %v invalid", string(err))
}
