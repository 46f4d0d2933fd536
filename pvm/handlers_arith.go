package pvm

// Arithmetic, comparison, and bitwise handlers for the "three registers"
// and "two registers + immediate" families (§4.6).

type binOp func(a, b uint64) uint64

func threeRegHandler(op binOp) handlerFunc {
	return func(s *ExecState, inst Instruction) StepResult {
		regD, regA, regB := decodeThreeRegs(inst.Operands)
		s.SetReg(regD, op(s.Reg(regA), s.Reg(regB)))
		return contResult()
	}
}

func regImmHandler(op binOp) handlerFunc {
	return func(s *ExecState, inst Instruction) StepResult {
		regD, regA, imm := decodeTwoRegsImm(inst.Operands, inst.Fskip)
		s.SetReg(regD, op(s.Reg(regA), uint64(imm)))
		return contResult()
	}
}

func boolU64(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

func setLtU(a, b uint64) uint64  { return boolU64(a < b) }
func setLtS(a, b uint64) uint64  { return boolU64(int64(a) < int64(b)) }
func setGeU(a, b uint64) uint64  { return boolU64(a >= b) }
func setGeS(a, b uint64) uint64  { return boolU64(int64(a) >= int64(b)) }
func setLeU(a, b uint64) uint64  { return boolU64(a <= b) }
func setLeS(a, b uint64) uint64  { return boolU64(int64(a) <= int64(b)) }
func setGtU(a, b uint64) uint64  { return boolU64(a > b) }
func setGtS(a, b uint64) uint64  { return boolU64(int64(a) > int64(b)) }

func bitAnd(a, b uint64) uint64 { return a & b }
func bitOr(a, b uint64) uint64  { return a | b }
func bitXor(a, b uint64) uint64 { return a ^ b }

func negAddImm32(a, imm uint64) uint64 { return add32(-a, imm) }
func negAddImm64(a, imm uint64) uint64 { return add64(-a, imm) }

func cmovIzHandler(s *ExecState, inst Instruction) StepResult {
	regD, regA, regB := decodeThreeRegs(inst.Operands)
	if s.Reg(regB) == 0 {
		s.SetReg(regD, s.Reg(regA))
	}
	return contResult()
}

func cmovNzHandler(s *ExecState, inst Instruction) StepResult {
	regD, regA, regB := decodeThreeRegs(inst.Operands)
	if s.Reg(regB) != 0 {
		s.SetReg(regD, s.Reg(regA))
	}
	return contResult()
}

func mulUpperHandler(signedA, signedB bool) handlerFunc {
	return func(s *ExecState, inst Instruction) StepResult {
		regD, regA, regB := decodeThreeRegs(inst.Operands)
		s.SetReg(regD, mulUpper64(s.Reg(regA), s.Reg(regB), signedA, signedB))
		return contResult()
	}
}
