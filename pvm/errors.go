package pvm

import (
	"errors"
	"fmt"
)

// Error kinds surfaced inside the VM (§7). These never escape Ψ_M directly —
// they collapse into the termination taxonomy in invoke.go. The decoder
// returns ErrMalformedPreimage, the initializer ErrInitInvalid, and RAM
// operations ErrMemoryFault. Illegal fetches, unknown opcodes, and illegal
// jumps are reported by the dispatcher and handlers directly as ResultPanic;
// ErrIllegalFetch, ErrUnknownOpcode, and ErrIllegalJump are not returned by
// any function in this package.
var (
	// ErrMalformedPreimage is returned by the blob decoder when the
	// preimage header claims lengths exceeding the preimage, the
	// jump-table element size is out of range, or the bitmask is
	// under-length.
	ErrMalformedPreimage = errors.New("pvm: malformed preimage")

	// ErrInitInvalid is returned by Y when the gate equation (§4.4) is
	// violated.
	ErrInitInvalid = errors.New("pvm: invalid program initialization")

	// ErrIllegalFetch names the condition where the PC is out of code, or
	// the opcode octet falls inside a previously-decoded operand stream.
	ErrIllegalFetch = errors.New("pvm: illegal instruction fetch")

	// ErrUnknownOpcode names the condition where no handler is registered
	// for the fetched opcode byte.
	ErrUnknownOpcode = errors.New("pvm: unknown opcode")

	// ErrIllegalJump names the condition where a dynamic jump target fails
	// the JUMP_IND validation rules.
	ErrIllegalJump = errors.New("pvm: illegal jump target")

	// ErrMemoryFault is returned by RAM operations when every address in
	// the requested range is not at least as permissive as the access
	// being attempted.
	ErrMemoryFault = errors.New("pvm: memory access fault")
)

// faultError pairs ErrMemoryFault with the first offending address, so
// callers can both errors.Is against the sentinel and recover the address.
type faultError struct {
	addr uint32
}

func (e *faultError) Error() string {
	return fmt.Sprintf("%s: addr=0x%08x", ErrMemoryFault, e.addr)
}

func (e *faultError) Unwrap() error { return ErrMemoryFault }

func newFault(addr uint32) error { return &faultError{addr: addr} }

// FaultAddress extracts the faulting address from an error produced by a
// RAM operation, if any.
func FaultAddress(err error) (uint32, bool) {
	var fe *faultError
	if errors.As(err, &fe) {
		return fe.addr, true
	}
	return 0, false
}
