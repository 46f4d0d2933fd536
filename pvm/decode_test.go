package pvm

import "testing"

func TestDecodeRoundTrip(t *testing.T) {
	code, bitmask := program(instrNoOperand(OpTrap), instrNoOperand(OpFallthrough))
	pre := preimage(code, bitmask, []uint32{1}) // targets the FALLTHROUGH at offset 1

	prog, err := Decode(pre)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(prog.Code) != len(code) {
		t.Fatalf("code length mismatch: got %d want %d", len(prog.Code), len(code))
	}
	if len(prog.JumpTable) != 1 || prog.JumpTable[0] != 1 {
		t.Fatalf("jump table mismatch: %v", prog.JumpTable)
	}
}

func TestDecodeRejectsJumpTargetNotAnInstructionBoundary(t *testing.T) {
	// A 4-byte JUMP instruction has operand octets at offsets 1-4, none of
	// which start an instruction; a jump table entry naming offset 2 must
	// be rejected at decode time.
	code, bitmask := program(instrOneImm(OpJump, 0, 4))
	pre := preimage(code, bitmask, []uint32{2})
	if _, err := Decode(pre); err == nil {
		t.Fatal("expected malformed-preimage error for a non-instruction-boundary jump target")
	}
}

func TestDecodeRejectsJumpTargetPastCodeLength(t *testing.T) {
	code, bitmask := program(instrNoOperand(OpTrap))
	pre := preimage(code, bitmask, []uint32{99})
	if _, err := Decode(pre); err == nil {
		t.Fatal("expected malformed-preimage error for an out-of-range jump target")
	}
}

func TestDecodeRejectsBadElementSize(t *testing.T) {
	pre := []byte{0x00, 5, 0x00, 0x00} // jtLen=0, elemSize=5 (invalid), codeLen=0, bitmask len 0
	if _, err := Decode(pre); err == nil {
		t.Fatal("expected malformed-preimage error for element_size=5")
	}
}

func TestDecodeRejectsTruncatedPreimage(t *testing.T) {
	pre := []byte{0x00, 4, 0x10} // codeLen varint claims 16 bytes but none follow
	if _, err := Decode(pre); err == nil {
		t.Fatal("expected malformed-preimage error for truncated body")
	}
}

func TestSkipFunction(t *testing.T) {
	// TRAP (no operand) followed by a 4-byte-immediate JUMP.
	code, bitmask := program(instrNoOperand(OpTrap), instrOneImm(OpJump, 10, 4))
	pre := preimage(code, bitmask, nil)
	prog, err := Decode(pre)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got := prog.Skip(0); got != 0 {
		t.Fatalf("Skip(0) = %d, want 0", got)
	}
	if got := prog.Skip(1); got != 4 {
		t.Fatalf("Skip(1) = %d, want 4", got)
	}
}

func TestSkipCapsAtMaxOperandLength(t *testing.T) {
	// 30 code octets, only bit 0 set: the next instruction boundary (real
	// or extended) is more than 24 octets away, so F_skip caps at 24.
	code := make([]byte, 30)
	bitmask := []byte{0x01, 0x00, 0x00, 0x00}
	pre := preimage(code, bitmask, nil)
	prog, err := Decode(pre)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got := prog.Skip(0); got != MaxOperandLength {
		t.Fatalf("Skip(0) = %d, want %d", got, MaxOperandLength)
	}
}
