package pvm

// Hand-rolled bytecode builder helpers, in the teacher's vm_test.go texture:
// plain testing.T, no assertion library, small composable byte-slice
// builders instead of a fixture DSL.

func putVarint(v uint64) []byte {
	var out []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			out = append(out, b|0x80)
		} else {
			out = append(out, b)
			break
		}
	}
	return out
}

func leBytes(v uint64, n int) []byte {
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		out[i] = byte(v >> (8 * i))
	}
	return out
}

// instrNoOperand builds a zero-operand instruction (TRAP, FALLTHROUGH).
func instrNoOperand(op Opcode) []byte { return []byte{byte(op)} }

// instrOneImm builds JUMP/ECALLI: opcode + immediate (variable length).
func instrOneImm(op Opcode, imm int64, width int) []byte {
	return append([]byte{byte(op)}, leBytes(uint64(imm), width)...)
}

// instrRegImm builds the "one register + one immediate" family.
func instrRegImm(op Opcode, regD int, imm int64, width int) []byte {
	out := []byte{byte(op), byte(regD & 0x0F)}
	return append(out, leBytes(uint64(imm), width)...)
}

// instrTwoRegs builds the "two registers" family.
func instrTwoRegs(op Opcode, regD, regA int) []byte {
	return []byte{byte(op), byte(regD&0x0F) | byte(regA&0x0F)<<4}
}

// instrTwoRegsImm builds the "two registers + immediate" family.
func instrTwoRegsImm(op Opcode, regD, regA int, imm int64, width int) []byte {
	out := []byte{byte(op), byte(regD&0x0F) | byte(regA&0x0F)<<4}
	return append(out, leBytes(uint64(imm), width)...)
}

// instrThreeRegs builds the "three registers" family.
func instrThreeRegs(op Opcode, regD, regA, regB int) []byte {
	return []byte{byte(op), byte(regD&0x0F) | byte(regA&0x0F)<<4, byte(regB & 0x0F)}
}

// program concatenates instruction byte slices into one code blob and
// derives the matching bitmask (bit i = 1 iff code[i] starts an
// instruction).
func program(instrs ...[]byte) (code, bitmask []byte) {
	for _, in := range instrs {
		start := len(code)
		code = append(code, in...)
		for len(bitmask)*8 < len(code) {
			bitmask = append(bitmask, 0)
		}
		bitmask[start/8] |= 1 << (uint(start) % 8)
	}
	for len(bitmask)*8 < len(code) {
		bitmask = append(bitmask, 0)
	}
	return code, bitmask
}

// preimage builds a §4.1 preimage from code/bitmask and an optional jump
// table (element size fixed at 4 octets here, the simplest valid choice).
func preimage(code, bitmask []byte, jumpTable []uint32) []byte {
	var out []byte
	out = append(out, putVarint(uint64(len(jumpTable)))...)
	out = append(out, 4) // element_size
	out = append(out, putVarint(uint64(len(code)))...)
	for _, e := range jumpTable {
		out = append(out, leBytes(uint64(e), 4)...)
	}
	out = append(out, code...)
	out = append(out, bitmask...)
	return out
}

// programBlob wraps a preimage in the outer (ro, rw, stack_size,
// heap_zero_pages) header consumed by Y.
func programBlob(pre []byte, ro, rw []byte, stackSize, heapZeroPages uint64) []byte {
	var out []byte
	out = append(out, putVarint(uint64(len(ro)))...)
	out = append(out, putVarint(uint64(len(rw)))...)
	out = append(out, putVarint(stackSize)...)
	out = append(out, putVarint(heapZeroPages)...)
	out = append(out, ro...)
	out = append(out, rw...)
	out = append(out, pre...)
	return out
}

// minimalBlob builds the smallest valid program_blob wrapping code/bitmask,
// with no ro/rw segments and a small stack.
func minimalBlob(code, bitmask []byte, jumpTable []uint32) []byte {
	pre := preimage(code, bitmask, jumpTable)
	return programBlob(pre, nil, nil, PageSize, 0)
}

func noopMutator(hostID uint64, s *ExecState, ctx any) (bool, StepResult) {
	return true, StepResult{}
}
