package pvm

// This file implements the operand-layout decode rules of §4.6's encoding
// family table. Each family function takes the raw operand octet slice
// (already sliced to fskip bytes by the dispatcher) and returns the decoded
// fields. Immediate decoding sign-extends from the actual encoded width,
// per "immX (l_X octets, sign-extended)".

// signExtendBytes reads b (length n, n in [0,8]) as a little-endian value
// and sign-extends it from 8*n bits to a full int64.
func signExtendBytes(b []byte) int64 {
	n := len(b)
	if n == 0 {
		return 0
	}
	var v uint64
	for i := n - 1; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	shift := uint(64 - 8*n)
	return int64(v<<shift) >> shift
}

func zeroExtendBytes(b []byte) uint64 {
	var v uint64
	for i := len(b) - 1; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v
}

// decodeOneImm decodes the "one immediate" family: l = min(4, fskip) octets,
// sign-extended.
func decodeOneImm(operands []byte, fskip int) int64 {
	l := fskip
	if l > 4 {
		l = 4
	}
	if l > len(operands) {
		l = len(operands)
	}
	return signExtendBytes(operands[:l])
}

// decodeRegImm decodes "one register + one immediate": reg byte, then the
// remaining bytes as the immediate (sign-extended).
func decodeRegImm(operands []byte, fskip int) (regD int, imm int64) {
	if len(operands) == 0 {
		return 0, 0
	}
	regD = RegisterIndex(operands[0] & 0x0F)
	rest := operands[1:]
	l := fskip - 1
	if l < 0 {
		l = 0
	}
	if l > 4 {
		l = 4
	}
	if l > len(rest) {
		l = len(rest)
	}
	return regD, signExtendBytes(rest[:l])
}

// decodeTwoRegs decodes "two registers": low nibble = r_D, high nibble = r_A.
func decodeTwoRegs(operands []byte) (regD, regA int) {
	if len(operands) == 0 {
		return 0, 0
	}
	b := operands[0]
	return RegisterIndex(b & 0x0F), RegisterIndex(b >> 4)
}

// decodeTwoRegsImm decodes "two registers + immediate": reg byte (r_D low
// nibble, r_A high nibble) then immX of l = min(4, fskip-1) octets.
func decodeTwoRegsImm(operands []byte, fskip int) (regD, regA int, imm int64) {
	if len(operands) == 0 {
		return 0, 0, 0
	}
	regD, regA = decodeTwoRegs(operands)
	rest := operands[1:]
	l := fskip - 1
	if l < 0 {
		l = 0
	}
	if l > 4 {
		l = 4
	}
	if l > len(rest) {
		l = len(rest)
	}
	return regD, regA, signExtendBytes(rest[:l])
}

// decodeThreeRegs decodes "three registers": reg byte 1 (r_D, r_A), reg
// byte 2 (r_B in its low nibble, high nibble ignored).
func decodeThreeRegs(operands []byte) (regD, regA, regB int) {
	if len(operands) == 0 {
		return 0, 0, 0
	}
	regD, regA = decodeTwoRegs(operands)
	if len(operands) > 1 {
		regB = RegisterIndex(operands[1] & 0x0F)
	}
	return regD, regA, regB
}

// decodeTwoImm decodes "two immediates": lenX byte, immX (lenX octets),
// immY (lenY = min(4, max(0, fskip - lenX - 1)) octets).
func decodeTwoImm(operands []byte, fskip int) (immX, immY int64) {
	if len(operands) == 0 {
		return 0, 0
	}
	lenX := int(operands[0])
	if lenX > 4 {
		lenX = 4
	}
	rest := operands[1:]
	if lenX > len(rest) {
		lenX = len(rest)
	}
	immX = signExtendBytes(rest[:lenX])
	rest = rest[lenX:]

	lenY := fskip - lenX - 1
	if lenY < 0 {
		lenY = 0
	}
	if lenY > 4 {
		lenY = 4
	}
	if lenY > len(rest) {
		lenY = len(rest)
	}
	immY = signExtendBytes(rest[:lenY])
	return immX, immY
}

// decodeRegTwoImm decodes "one register + two immediates": reg byte, lenX
// byte, immX, immY.
func decodeRegTwoImm(operands []byte, fskip int) (regA int, immX, immY int64) {
	if len(operands) == 0 {
		return 0, 0, 0
	}
	regA = RegisterIndex(operands[0] & 0x0F)
	immX, immY = decodeTwoImm(operands[1:], fskip-1)
	return regA, immX, immY
}

// decodeTwoRegsTwoImm decodes "two registers + two immediates": reg byte
// (r_A, r_B), lenX byte, immX, immY.
func decodeTwoRegsTwoImm(operands []byte, fskip int) (regA, regB int, immX, immY int64) {
	if len(operands) == 0 {
		return 0, 0, 0, 0
	}
	regA, regB = decodeTwoRegs(operands)
	immX, immY = decodeTwoImm(operands[1:], fskip-1)
	return regA, regB, immX, immY
}
