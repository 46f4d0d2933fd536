package pvm

import (
	"encoding/binary"
	"fmt"

	mapset "github.com/deckarep/golang-set"
)

// Program is the decoded form of a preimage: the code octets, the
// instruction-boundary bitmask, and the jump table (§4.1). It is built once
// by Decode and is read-only for the lifetime of an invocation.
type Program struct {
	Code       []byte
	Bitmask    []byte
	JumpTable  []uint32
	validJumps mapset.Set // set of valid JUMP_IND target addresses (a values)
}

func readVarint(b []byte) (value uint64, rest []byte, ok bool) {
	// A compact unsigned LEB128-style varint: while the top bit of a byte
	// is set, more bytes follow.
	var shift uint
	for i := 0; i < len(b); i++ {
		c := b[i]
		value |= uint64(c&0x7f) << shift
		if c&0x80 == 0 {
			return value, b[i+1:], true
		}
		shift += 7
		if shift >= 64 {
			return 0, nil, false
		}
	}
	return 0, nil, false
}

// Decode parses a program preimage into a Program, per §4.1. It returns
// ErrMalformedPreimage (wrapped with context) on any structural violation.
func Decode(preimage []byte) (*Program, error) {
	jtLen, rest, ok := readVarint(preimage)
	if !ok {
		return nil, ErrMalformedPreimage
	}
	if len(rest) < 1 {
		return nil, ErrMalformedPreimage
	}
	elemSize := int(rest[0])
	rest = rest[1:]
	if elemSize < 1 || elemSize > 4 {
		return nil, ErrMalformedPreimage
	}

	codeLen, rest, ok := readVarint(rest)
	if !ok {
		return nil, ErrMalformedPreimage
	}

	jtBytes := jtLen * uint64(elemSize)
	if uint64(len(rest)) < jtBytes {
		return nil, ErrMalformedPreimage
	}
	jtRaw := rest[:jtBytes]
	rest = rest[jtBytes:]

	if uint64(len(rest)) < codeLen {
		return nil, ErrMalformedPreimage
	}
	code := rest[:codeLen]
	rest = rest[codeLen:]

	bitmaskLen := (codeLen + 7) / 8
	if uint64(len(rest)) < bitmaskLen {
		return nil, ErrMalformedPreimage
	}
	bitmask := rest[:bitmaskLen]

	jumpTable := make([]uint32, jtLen)
	for i := uint64(0); i < jtLen; i++ {
		entry := jtRaw[i*uint64(elemSize) : (i+1)*uint64(elemSize)]
		var buf [4]byte
		copy(buf[:], entry)
		jumpTable[i] = binary.LittleEndian.Uint32(buf[:])
	}

	// Every jump-table entry must name the start of an instruction: an
	// offset within the code and marked as an instruction boundary by the
	// bitmask. An entry failing either check can never be a legal JUMP_IND
	// destination, so it is rejected at decode time rather than deferred to
	// a runtime ErrIllegalJump.
	bitmaskForBounds := &Program{Code: code, Bitmask: bitmask}
	for _, target := range jumpTable {
		if uint64(target) >= codeLen || !bitmaskForBounds.bitmaskBit(uint64(target)) {
			return nil, fmt.Errorf("%w: jump-table target 0x%x is not an instruction boundary", ErrMalformedPreimage, target)
		}
	}

	valid := mapset.NewSet()
	for i := range jumpTable {
		// JUMP_IND resolves a = 2*(index+1) to jumpTable[index]; record the
		// 'a' values that are valid so the handler need not recompute.
		valid.Add(uint32(2 * (i + 1)))
	}

	return &Program{
		Code:       append([]byte(nil), code...),
		Bitmask:    append([]byte(nil), bitmask...),
		JumpTable:  jumpTable,
		validJumps: valid,
	}, nil
}

// bitmaskBit reports bit i of the logically-infinite bitmask: positions
// past the real bitmask (including the 16 conceptual trailing zero octets
// of code) read as 1, per §3.1's "infinite trailing stream of set bitmask
// bits".
func (p *Program) bitmaskBit(i uint64) bool {
	if i >= uint64(len(p.Code)) {
		return true
	}
	byteIdx := i / 8
	return p.Bitmask[byteIdx]&(1<<(i%8)) != 0
}

// Skip computes F_skip(i): the operand length of the instruction whose
// opcode octet is at code index i (§4.3).
func (p *Program) Skip(i uint64) int {
	for j := uint64(1); j <= MaxOperandLength; j++ {
		if p.bitmaskBit(i + j) {
			return int(j - 1)
		}
	}
	return MaxOperandLength
}

// fetchByte returns the code octet at i, treating the 16 conceptual
// trailing zero octets (and beyond) as zero, per §3.1.
func (p *Program) fetchByte(i uint64) byte {
	if i < uint64(len(p.Code)) {
		return p.Code[i]
	}
	return 0
}

// inBounds reports whether i is a legal fetch index: within the code, or
// within the 16-octet conceptual zero extension.
func (p *Program) inBounds(i uint64) bool {
	return i < uint64(len(p.Code))+trailingZeroOctets
}

// validJumpTarget reports whether raw address a (as computed by JUMP_IND)
// resolves to an entry in the jump table.
func (p *Program) validJumpTarget(a uint32) bool {
	return p.validJumps.Contains(a)
}

// jumpTarget resolves a validated JUMP_IND address to a PC.
func (p *Program) jumpTarget(a uint32) uint32 {
	return p.JumpTable[a/2-1]
}
