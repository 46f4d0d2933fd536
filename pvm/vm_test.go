package pvm

import "testing"

func TestInvokeAddImm32Smoke(t *testing.T) {
	// r3 is 0 by Y's initial-register contract (only r0, r1, r7, r8 are
	// set), so r2 = sign_extend32(r3 + 0x0987) = 0x0987.
	code, bitmask := program(instrTwoRegsImm(OpAddImm32, 2, 3, 0x0987, 2))
	blob := minimalBlob(code, bitmask, nil)

	sink := NewSliceSink()
	res := Invoke(blob, 0, 100, nil, nil, noopMutator, sink)

	if len(sink.Instructions) < 1 {
		t.Fatalf("expected at least 1 trace record, got %d", len(sink.Instructions))
	}
	if got, want := sink.Instructions[0].Registers[2], uint64(0x0987); got != want {
		t.Fatalf("r2 after ADD_IMM_32 = 0x%x, want 0x%x", got, want)
	}

	// The program then falls off the end of code into the trailing-zero
	// region, which decodes as TRAP (opcode 0) -> PANIC.
	if res.Result != ResultPanic {
		t.Fatalf("result = %v, want PANIC", res.Result)
	}
	if res.GasConsumed != 2 {
		t.Fatalf("gas_consumed = %d, want 2 (ADD_IMM_32 + TRAP)", res.GasConsumed)
	}
}

func TestInvokeGasExhaustionToOOG(t *testing.T) {
	code, bitmask := program(instrNoOperand(OpTrap))
	blob := minimalBlob(code, bitmask, nil)

	res := Invoke(blob, 0, 0, nil, nil, noopMutator, nil)
	if res.Result != ResultOOG {
		t.Fatalf("result = %v, want OOG", res.Result)
	}
	if res.GasConsumed != 0 {
		t.Fatalf("gas_consumed = %d, want 0", res.GasConsumed)
	}
}

func TestInvokeTrapPanics(t *testing.T) {
	code, bitmask := program(instrNoOperand(OpTrap))
	blob := minimalBlob(code, bitmask, nil)

	res := Invoke(blob, 0, 10, nil, nil, noopMutator, nil)
	if res.Result != ResultPanic {
		t.Fatalf("result = %v, want PANIC", res.Result)
	}
	if res.GasConsumed != 1 {
		t.Fatalf("gas_consumed = %d, want 1", res.GasConsumed)
	}
}

func TestInvokeDynamicJumpHalts(t *testing.T) {
	// r2 <- HALT_ADDRESS via LOAD_IMM, then JUMP_IND r2, 0.
	loadHalt := instrRegImm(OpLoadImm, 2, int64(HaltAddress), 4)
	jumpInd := instrRegImm(OpJumpInd, 2, 0, 1)
	code, bitmask := program(loadHalt, jumpInd)
	blob := minimalBlob(code, bitmask, nil)

	res := Invoke(blob, 0, 10, nil, nil, noopMutator, nil)
	if res.Result != ResultHalt {
		t.Fatalf("result = %v, want HALT", res.Result)
	}
	if len(res.Blob) != 0 {
		t.Fatalf("result blob = %v, want empty (r8 = 0)", res.Blob)
	}
	if res.GasConsumed != 2 {
		t.Fatalf("gas_consumed = %d, want 2", res.GasConsumed)
	}
}

func TestInvokeFaultOnReservedRegion(t *testing.T) {
	code, bitmask := program(instrRegImm(OpLoadU8, 3, 0x0010, 2))
	blob := minimalBlob(code, bitmask, nil)

	res := Invoke(blob, 0, 10, nil, nil, noopMutator, nil)
	if res.Result != ResultFault {
		t.Fatalf("result = %v, want FAULT", res.Result)
	}
	if res.FaultAddr != 0x0010 {
		t.Fatalf("fault address = 0x%x, want 0x10", res.FaultAddr)
	}
	if res.GasConsumed != 1 {
		t.Fatalf("gas_consumed = %d, want 1", res.GasConsumed)
	}
}

func TestInvokeSbrkRoundTrip(t *testing.T) {
	// r2 is 0 by Y's initial-register contract, so SBRK r3, r2 reads the
	// initial heap pointer without growing it. Then grow by one page and
	// read the pointer again to confirm it advanced by exactly PageSize.
	readInitial := instrTwoRegs(OpSbrk, 3, 2)
	loadOnePage := instrRegImm(OpLoadImm, 1, PageSize, 4)
	grow := instrTwoRegs(OpSbrk, 4, 1)
	code, bitmask := program(readInitial, loadOnePage, grow)
	blob := minimalBlob(code, bitmask, nil)

	sink := NewSliceSink()
	Invoke(blob, 0, 20, nil, nil, noopMutator, sink)
	if len(sink.Instructions) < 3 {
		t.Fatalf("expected at least 3 trace records, got %d", len(sink.Instructions))
	}
	r3After := sink.Instructions[0].Registers[3]
	r4After := sink.Instructions[2].Registers[4]
	if r4After != r3After+PageSize {
		t.Fatalf("heap pointer did not advance by one page: initial=%d after=%d", r3After, r4After)
	}
}
