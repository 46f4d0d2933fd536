package pvm

import "math/bits"

// Handlers for the "two registers" family (§4.6): reg_D in the low nibble,
// reg_A in the high nibble of the single operand byte.

type unaryOp func(v uint64) uint64

func twoRegHandler(op unaryOp) handlerFunc {
	return func(s *ExecState, inst Instruction) StepResult {
		regD, regA := decodeTwoRegs(inst.Operands)
		s.SetReg(regD, op(s.Reg(regA)))
		return contResult()
	}
}

func moveReg(v uint64) uint64 { return v }

func signExtend8(v uint64) uint64  { return uint64(int64(int8(v))) }
func signExtend16(v uint64) uint64 { return uint64(int64(int16(v))) }
func zeroExtend16(v uint64) uint64 { return uint64(uint16(v)) }

func countSetBits32(v uint64) uint64 { return uint64(bits.OnesCount32(uint32(v))) }
func countSetBits64(v uint64) uint64 { return uint64(bits.OnesCount64(v)) }

func leadingZeroBits32(v uint64) uint64 { return uint64(bits.LeadingZeros32(uint32(v))) }
func leadingZeroBits64(v uint64) uint64 { return uint64(bits.LeadingZeros64(v)) }

func trailingZeroBits32(v uint64) uint64 { return uint64(bits.TrailingZeros32(uint32(v))) }
func trailingZeroBits64(v uint64) uint64 { return uint64(bits.TrailingZeros64(v)) }

func reverseBytes(v uint64) uint64 { return bits.ReverseBytes64(v) }

func bitNot(v uint64) uint64 { return ^v }

// sbrkHandler implements §4.6's SBRK contract. Placed in the two-register
// family: its operand signature ("SBRK r_D, r_A") is two registers despite
// the encoding-family table listing it alongside the one-register-plus-
// immediate group (see DESIGN.md, "SBRK family placement").
func sbrkHandler(s *ExecState, inst Instruction) StepResult {
	regD, regA := decodeTwoRegs(inst.Operands)
	growth := s.Reg(regA)
	if growth == 0 {
		s.SetReg(regD, uint64(s.RAM.heapEnd))
		return contResult()
	}
	if growth > MaxMemoryAddress || uint64(s.RAM.heapEnd)+growth > MaxMemoryAddress {
		s.SetReg(regD, 0)
		return contResult()
	}
	prev, err := s.RAM.Sbrk(uint32(growth))
	if err != nil {
		s.SetReg(regD, 0)
		return contResult()
	}
	s.SetReg(regD, uint64(prev)+growth)
	return contResult()
}
