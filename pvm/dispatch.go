package pvm

// handlerFunc is the per-opcode handler signature: §9's "Handler dispatch"
// design note models opcodes as a dense function-pointer table indexed by
// opcode, sharing a single mutable context struct (ExecState) by reference.
type handlerFunc func(s *ExecState, inst Instruction) StepResult

var handlerTable [opcodeCount]handlerFunc

func init() {
	handlerTable[OpTrap] = trapHandler
	handlerTable[OpFallthrough] = fallthroughHandler
	handlerTable[OpJump] = jumpHandler
	handlerTable[OpEcalli] = ecalliHandler

	handlerTable[OpLoadImm] = loadImmHandler
	handlerTable[OpJumpInd] = jumpIndHandler
	handlerTable[OpBranchEqImm] = branchHandler(bcEq)
	handlerTable[OpBranchNeImm] = branchHandler(bcNe)
	handlerTable[OpBranchLtUImm] = branchHandler(bcLtU)
	handlerTable[OpBranchLeUImm] = branchHandler(bcLeU)
	handlerTable[OpBranchGeUImm] = branchHandler(bcGeU)
	handlerTable[OpBranchGtUImm] = branchHandler(bcGtU)
	handlerTable[OpBranchLtSImm] = branchHandler(bcLtS)
	handlerTable[OpBranchLeSImm] = branchHandler(bcLeS)
	handlerTable[OpBranchGeSImm] = branchHandler(bcGeS)
	handlerTable[OpBranchGtSImm] = branchHandler(bcGtS)
	handlerTable[OpStoreU8] = directStoreHandler(wU8)
	handlerTable[OpStoreU16] = directStoreHandler(wU16)
	handlerTable[OpStoreU32] = directStoreHandler(wU32)
	handlerTable[OpStoreU64] = directStoreHandler(wU64)
	handlerTable[OpLoadU8] = directLoadHandler(wU8)
	handlerTable[OpLoadI8] = directLoadHandler(wI8)
	handlerTable[OpLoadU16] = directLoadHandler(wU16)
	handlerTable[OpLoadI16] = directLoadHandler(wI16)
	handlerTable[OpLoadU32] = directLoadHandler(wU32)
	handlerTable[OpLoadI32] = directLoadHandler(wI32)
	handlerTable[OpLoadU64] = directLoadHandler(wU64)

	handlerTable[OpMoveReg] = twoRegHandler(moveReg)
	handlerTable[OpSignExtend8] = twoRegHandler(signExtend8)
	handlerTable[OpSignExtend16] = twoRegHandler(signExtend16)
	handlerTable[OpZeroExtend16] = twoRegHandler(zeroExtend16)
	handlerTable[OpCountSetBits32] = twoRegHandler(countSetBits32)
	handlerTable[OpCountSetBits64] = twoRegHandler(countSetBits64)
	handlerTable[OpLeadingZeroBits32] = twoRegHandler(leadingZeroBits32)
	handlerTable[OpLeadingZeroBits64] = twoRegHandler(leadingZeroBits64)
	handlerTable[OpTrailingZeroBits32] = twoRegHandler(trailingZeroBits32)
	handlerTable[OpTrailingZeroBits64] = twoRegHandler(trailingZeroBits64)
	handlerTable[OpReverseBytes] = twoRegHandler(reverseBytes)
	handlerTable[OpNot] = twoRegHandler(bitNot)
	handlerTable[OpSbrk] = sbrkHandler

	handlerTable[OpLoadIndU8] = indirectLoadHandler(wU8)
	handlerTable[OpLoadIndI8] = indirectLoadHandler(wI8)
	handlerTable[OpLoadIndU16] = indirectLoadHandler(wU16)
	handlerTable[OpLoadIndI16] = indirectLoadHandler(wI16)
	handlerTable[OpLoadIndU32] = indirectLoadHandler(wU32)
	handlerTable[OpLoadIndI32] = indirectLoadHandler(wI32)
	handlerTable[OpLoadIndU64] = indirectLoadHandler(wU64)
	handlerTable[OpStoreIndU8] = indirectStoreHandler(wU8)
	handlerTable[OpStoreIndU16] = indirectStoreHandler(wU16)
	handlerTable[OpStoreIndU32] = indirectStoreHandler(wU32)
	handlerTable[OpStoreIndU64] = indirectStoreHandler(wU64)
	handlerTable[OpAddImm32] = regImmHandler(add32)
	handlerTable[OpAddImm64] = regImmHandler(add64)
	handlerTable[OpAndImm] = regImmHandler(bitAnd)
	handlerTable[OpXorImm] = regImmHandler(bitXor)
	handlerTable[OpOrImm] = regImmHandler(bitOr)
	handlerTable[OpMulImm32] = regImmHandler(mul32)
	handlerTable[OpMulImm64] = regImmHandler(mul64)
	handlerTable[OpSetLtUImm] = regImmHandler(setLtU)
	handlerTable[OpSetLtSImm] = regImmHandler(setLtS)
	handlerTable[OpSetGeUImm] = regImmHandler(setGeU)
	handlerTable[OpSetGeSImm] = regImmHandler(setGeS)
	handlerTable[OpSetLeUImm] = regImmHandler(setLeU)
	handlerTable[OpSetLeSImm] = regImmHandler(setLeS)
	handlerTable[OpSetGtUImm] = regImmHandler(setGtU)
	handlerTable[OpSetGtSImm] = regImmHandler(setGtS)
	handlerTable[OpShloLImm32] = regImmHandler(shloL32)
	handlerTable[OpShloLImm64] = regImmHandler(shloL64)
	handlerTable[OpShloRImm32] = regImmHandler(shloR32)
	handlerTable[OpShloRImm64] = regImmHandler(shloR64)
	handlerTable[OpSharRImm32] = regImmHandler(sharR32)
	handlerTable[OpSharRImm64] = regImmHandler(sharR64)
	handlerTable[OpRotRImm32] = regImmHandler(rotR32)
	handlerTable[OpRotRImm64] = regImmHandler(rotR64)
	handlerTable[OpRotLImm32] = regImmHandler(rotL32)
	handlerTable[OpRotLImm64] = regImmHandler(rotL64)
	handlerTable[OpNegAddImm32] = regImmHandler(negAddImm32)
	handlerTable[OpNegAddImm64] = regImmHandler(negAddImm64)

	handlerTable[OpAdd32] = threeRegHandler(add32)
	handlerTable[OpAdd64] = threeRegHandler(add64)
	handlerTable[OpSub32] = threeRegHandler(sub32)
	handlerTable[OpSub64] = threeRegHandler(sub64)
	handlerTable[OpMul32] = threeRegHandler(mul32)
	handlerTable[OpMul64] = threeRegHandler(mul64)
	handlerTable[OpDivU32] = threeRegHandler(divU32)
	handlerTable[OpDivU64] = threeRegHandler(divU64)
	handlerTable[OpDivS32] = threeRegHandler(divS32)
	handlerTable[OpDivS64] = threeRegHandler(divS64)
	handlerTable[OpRemU32] = threeRegHandler(remU32)
	handlerTable[OpRemU64] = threeRegHandler(remU64)
	handlerTable[OpRemS32] = threeRegHandler(remS32)
	handlerTable[OpRemS64] = threeRegHandler(remS64)
	handlerTable[OpAnd] = threeRegHandler(bitAnd)
	handlerTable[OpOr] = threeRegHandler(bitOr)
	handlerTable[OpXor] = threeRegHandler(bitXor)
	handlerTable[OpShloL32] = threeRegHandler(shloL32)
	handlerTable[OpShloL64] = threeRegHandler(shloL64)
	handlerTable[OpShloR32] = threeRegHandler(shloR32)
	handlerTable[OpShloR64] = threeRegHandler(shloR64)
	handlerTable[OpSharR32] = threeRegHandler(sharR32)
	handlerTable[OpSharR64] = threeRegHandler(sharR64)
	handlerTable[OpRotL32] = threeRegHandler(rotL32)
	handlerTable[OpRotL64] = threeRegHandler(rotL64)
	handlerTable[OpRotR32] = threeRegHandler(rotR32)
	handlerTable[OpRotR64] = threeRegHandler(rotR64)
	handlerTable[OpMulUpperUU64] = mulUpperHandler(false, false)
	handlerTable[OpMulUpperSS64] = mulUpperHandler(true, true)
	handlerTable[OpMulUpperSU64] = mulUpperHandler(true, false)
	handlerTable[OpMulUpperUS64] = mulUpperHandler(false, true)
	handlerTable[OpSetLtU] = threeRegHandler(setLtU)
	handlerTable[OpSetLtS] = threeRegHandler(setLtS)
	handlerTable[OpSetGeU] = threeRegHandler(setGeU)
	handlerTable[OpSetGeS] = threeRegHandler(setGeS)
	handlerTable[OpSetLeU] = threeRegHandler(setLeU)
	handlerTable[OpSetLeS] = threeRegHandler(setLeS)
	handlerTable[OpSetGtU] = threeRegHandler(setGtU)
	handlerTable[OpSetGtS] = threeRegHandler(setGtS)
	handlerTable[OpCmovIz] = cmovIzHandler
	handlerTable[OpCmovNz] = cmovNzHandler

	handlerTable[OpStoreImmIndU8] = storeImmIndHandler(wU8)
	handlerTable[OpStoreImmIndU16] = storeImmIndHandler(wU16)
	handlerTable[OpStoreImmIndU32] = storeImmIndHandler(wU32)
	handlerTable[OpStoreImmIndU64] = storeImmIndHandler(wU64)

	handlerTable[OpLoadImmJump] = loadImmJumpHandler
	handlerTable[OpLoadImmJumpInd] = loadImmJumpIndHandler
}

// Step executes one instruction: Ψ_1 (§4.5). sink receives the trace record
// for this step unless it is a NullSink.
func Step(s *ExecState, sink TraceSink, step uint64) StepResult {
	if s.Gas <= 0 {
		s.Result = ResultOOG
		return StepResult{Kind: ResultOOG}
	}

	i := s.PC
	if !s.prog.inBounds(i) {
		s.Result = ResultPanic
		return panicResult()
	}
	if !s.prog.bitmaskBit(i) {
		s.Result = ResultPanic
		return panicResult()
	}

	opcodeByte := s.prog.fetchByte(i)
	op := Opcode(opcodeByte)
	fskip := s.prog.Skip(i)

	opEnd := i + 1 + uint64(fskip)
	operands := make([]byte, fskip)
	for j := 0; j < fskip; j++ {
		operands[j] = s.prog.fetchByte(i + 1 + uint64(j))
	}
	_ = opEnd

	s.scratch.reset()
	pcBefore := s.PC
	gasBefore := s.Gas
	s.Gas--

	if !op.valid() {
		s.Result = ResultPanic
		return panicResult()
	}
	handler := handlerTable[op]
	if handler == nil {
		s.Result = ResultPanic
		return panicResult()
	}

	inst := Instruction{Opcode: op, Operands: operands, Fskip: fskip, PC: i}
	res := handler(s, inst)

	switch res.Kind {
	case ResultContinue:
		if !res.PCSet {
			s.PC = pcBefore + 1 + uint64(fskip)
		}
	case ResultHost:
		s.HostCallID = res.HostCallID
		// PC advance on host is the caller's (Ψ_M's) responsibility — it
		// depends on what the context mutator returns (§4.5 rule 2).
	case ResultFault:
		s.FaultAddress = res.FaultAddress
	}
	s.Result = res.Kind

	if sink != nil {
		sink.Record(TraceRecord{
			Step:        step,
			PCBefore:    uint32(pcBefore),
			Name:        op.String(),
			OpcodeHex:   opcodeHex(opcodeByte),
			GasAfter:    s.Gas,
			Registers:   s.Registers,
			LoadAddr:    s.scratch.loadAddr,
			LoadValue:   s.scratch.loadValue,
			LoadSet:     s.scratch.loadSet,
			StoreAddr:   s.scratch.storeAddr,
			StoreValue:  s.scratch.storeValue,
			StoreSet:    s.scratch.storeSet,
		})
	}

	_ = gasBefore
	return res
}

func opcodeHex(b byte) string {
	const hexDigits = "0123456789abcdef"
	return string([]byte{'0', 'x', hexDigits[b>>4], hexDigits[b&0xF]})
}
