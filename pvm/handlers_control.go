package pvm

// Control-flow, register-immediate load, and host-call handlers.

func trapHandler(s *ExecState, inst Instruction) StepResult {
	return panicResult()
}

func fallthroughHandler(s *ExecState, inst Instruction) StepResult {
	return contResult()
}

// jumpHandler: JUMP imm — pc += imm.
func jumpHandler(s *ExecState, inst Instruction) StepResult {
	imm := decodeOneImm(inst.Operands, inst.Fskip)
	s.PC = uint64(int64(s.PC) + imm)
	return StepResult{Kind: ResultContinue, PCSet: true}
}

// jumpIndResolve implements the JUMP_IND address-resolution rule shared by
// JUMP_IND and LOAD_IMM_JUMP_IND: HALT sentinel first, then table-entry
// validity (§9 open question: "verification order ... is as stated").
func jumpIndResolve(s *ExecState, a uint32) StepResult {
	if a == HaltAddress {
		return haltResult()
	}
	if !s.prog.validJumpTarget(a) {
		return panicResult()
	}
	s.PC = uint64(s.prog.jumpTarget(a))
	return StepResult{Kind: ResultContinue, PCSet: true}
}

// jumpIndHandler: JUMP_IND r_A, imm.
func jumpIndHandler(s *ExecState, inst Instruction) StepResult {
	regA, imm := decodeRegImm(inst.Operands, inst.Fskip)
	a := uint32(s.Reg(regA) + uint64(imm))
	return jumpIndResolve(s, a)
}

// loadImmHandler: LOAD_IMM r_D, imm.
func loadImmHandler(s *ExecState, inst Instruction) StepResult {
	regD, imm := decodeRegImm(inst.Operands, inst.Fskip)
	s.SetReg(regD, uint64(imm))
	return contResult()
}

// loadImmJumpHandler: LOAD_IMM_JUMP r_A, immX, immY — r_A <- immX, pc += immY.
func loadImmJumpHandler(s *ExecState, inst Instruction) StepResult {
	regA, immX, immY := decodeRegTwoImm(inst.Operands, inst.Fskip)
	s.SetReg(regA, uint64(immX))
	s.PC = uint64(int64(s.PC) + immY)
	return StepResult{Kind: ResultContinue, PCSet: true}
}

// loadImmJumpIndHandler: LOAD_IMM_JUMP_IND r_A, r_B, immX, immY — read r_B
// before overwriting r_A, set r_A <- immX, then apply the JUMP_IND rule with
// (r_B_old + immY).
func loadImmJumpIndHandler(s *ExecState, inst Instruction) StepResult {
	regA, regB, immX, immY := decodeTwoRegsTwoImm(inst.Operands, inst.Fskip)
	oldB := s.Reg(regB)
	s.SetReg(regA, uint64(immX))
	a := uint32(oldB + uint64(immY))
	return jumpIndResolve(s, a)
}

// ecalliHandler: ECALLI imm — host_call_id = imm (0 if fskip = 0).
func ecalliHandler(s *ExecState, inst Instruction) StepResult {
	var id uint64
	if inst.Fskip > 0 {
		id = uint64(decodeOneImm(inst.Operands, inst.Fskip))
	}
	return hostResult(id)
}
