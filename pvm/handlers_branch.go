package pvm

// Branch handlers: BRANCH_*_IMM r_A, imm — compute a condition on r_A versus
// imm; if true, pc += imm (signed); if false, pc += 1+fskip (§4.6
// "Branches").
type branchCond func(a int64, imm int64) bool

func branchHandler(cond branchCond) handlerFunc {
	return func(s *ExecState, inst Instruction) StepResult {
		regA, imm := decodeRegImm(inst.Operands, inst.Fskip)
		taken := cond(int64(s.Reg(regA)), imm)
		if taken {
			s.PC = uint64(int64(s.PC) + imm)
		} else {
			s.PC = s.PC + 1 + uint64(inst.Fskip)
		}
		return StepResult{Kind: ResultContinue, PCSet: true}
	}
}

func bcEq(a, imm int64) bool  { return a == imm }
func bcNe(a, imm int64) bool  { return a != imm }
func bcLtU(a, imm int64) bool { return uint64(a) < uint64(imm) }
func bcLeU(a, imm int64) bool { return uint64(a) <= uint64(imm) }
func bcGeU(a, imm int64) bool { return uint64(a) >= uint64(imm) }
func bcGtU(a, imm int64) bool { return uint64(a) > uint64(imm) }
func bcLtS(a, imm int64) bool { return a < imm }
func bcLeS(a, imm int64) bool { return a <= imm }
func bcGeS(a, imm int64) bool { return a >= imm }
func bcGtS(a, imm int64) bool { return a > imm }
