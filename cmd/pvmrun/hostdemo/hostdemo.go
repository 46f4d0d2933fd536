// Package hostdemo is a reference host-function table showing the
// context_mutator contract in action. It implements exactly one ECALLI id
// (HOST_HASH) that hashes a memory region with Keccak-256. The host-function
// library proper is out of scope for the VM core; this package exists only
// to give the repository an end-to-end runnable example.
package hostdemo

import (
	"golang.org/x/crypto/sha3"

	"github.com/jamvm/pvm/pvm"
)

// HostHash is the ECALLI id this demo answers. r7 holds the source
// address, r8 the length; the digest is written back starting at the
// address in r7 (overlapping allowed, matching typical host-call
// conventions where the caller supplies a scratch buffer).
const HostHash = 1

// Mutator returns a pvm.ContextMutator implementing HostHash and treating
// every other host id as an immediate PANIC, since no other host function
// is defined here.
func Mutator() pvm.ContextMutator {
	return func(hostID uint64, s *pvm.ExecState, ctx any) (bool, pvm.StepResult) {
		if hostID != HostHash {
			return false, pvm.StepResult{Kind: pvm.ResultPanic}
		}
		addr := uint32(s.Reg(7))
		length := uint32(s.Reg(8))
		data, err := s.RAM.ReadOctets(addr, length)
		if err != nil {
			fa, _ := pvm.FaultAddress(err)
			return false, pvm.StepResult{Kind: pvm.ResultFault, FaultAddress: fa}
		}
		h := sha3.NewLegacyKeccak256()
		h.Write(data)
		digest := h.Sum(nil)
		if err := s.RAM.WriteOctets(addr, digest); err != nil {
			fa, _ := pvm.FaultAddress(err)
			return false, pvm.StepResult{Kind: pvm.ResultFault, FaultAddress: fa}
		}
		return true, pvm.StepResult{}
	}
}
