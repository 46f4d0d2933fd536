package pvm

// This file implements Y (program initialisation, §4.4) and Ψ_M (the
// marshalling invocation entry point, §4.7).
//
// §4.4 step 1 decodes the preimage into (code, ro, rw, stack_size,
// heap_zero_pages) — a richer tuple than §4.1's (code, bitmask, jump_table).
// The two sections are reconciled here by treating the outer program_blob
// as a small fixed-order header of four varints (ro_len, rw_len, stack_size,
// heap_zero_pages) followed by the ro segment, the rw segment, and finally
// the §4.1 preimage proper (see DESIGN.md, "program_blob framing").

// ProgramImage is everything Y produces from a program_blob plus an
// argument blob: the decoded code/bitmask/jump_table and the zone layout
// needed to build the RAM (§3.3, §4.4).
type ProgramImage struct {
	Prog *Program

	roData []byte
	rwData []byte
	stackSize       uint64
	heapZeroPages   uint64

	roStart, roEnd     uint32
	rwStart, rwEnd     uint32
	heapStart, heapCap uint32
	stackStart, stackEnd uint32
	argsStart, argsEnd uint32
}

// DecodedBlob is everything a program_blob yields once its header is parsed
// and its preimage is decoded: the pieces initProgram needs to lay out a
// fresh RAM for one invocation. It is the unit BlobCache caches, since
// parsing and decoding are the expensive, repeatable-per-replay part of
// running the same blob many times; the zone layout and register file are
// cheap and always built fresh (§4.4 runs once per invocation, not once per
// blob).
type DecodedBlob struct {
	Prog          *Program
	RoData        []byte
	RwData        []byte
	StackSize     uint64
	HeapZeroPages uint64
}

// DecodeProgramBlob parses a program_blob's outer header and decodes its
// embedded §4.1 preimage, without performing any of Y's zone layout.
func DecodeProgramBlob(blob []byte) (*DecodedBlob, error) {
	roData, rwData, stackSize, heapZeroPages, preimage, err := decodeProgramBlob(blob)
	if err != nil {
		return nil, err
	}
	prog, err := Decode(preimage)
	if err != nil {
		return nil, err
	}
	return &DecodedBlob{Prog: prog, RoData: roData, RwData: rwData, StackSize: stackSize, HeapZeroPages: heapZeroPages}, nil
}

// decodeProgramBlob parses the outer header described above.
func decodeProgramBlob(blob []byte) (roData, rwData []byte, stackSize, heapZeroPages uint64, preimage []byte, err error) {
	roLen, rest, ok := readVarint(blob)
	if !ok {
		return nil, nil, 0, 0, nil, ErrMalformedPreimage
	}
	rwLen, rest, ok := readVarint(rest)
	if !ok {
		return nil, nil, 0, 0, nil, ErrMalformedPreimage
	}
	stackSize, rest, ok = readVarint(rest)
	if !ok {
		return nil, nil, 0, 0, nil, ErrMalformedPreimage
	}
	heapZeroPages, rest, ok = readVarint(rest)
	if !ok {
		return nil, nil, 0, 0, nil, ErrMalformedPreimage
	}
	if uint64(len(rest)) < roLen {
		return nil, nil, 0, 0, nil, ErrMalformedPreimage
	}
	roData = rest[:roLen]
	rest = rest[roLen:]
	if uint64(len(rest)) < rwLen {
		return nil, nil, 0, 0, nil, ErrMalformedPreimage
	}
	rwData = rest[:rwLen]
	rest = rest[rwLen:]
	return roData, rwData, stackSize, heapZeroPages, rest, nil
}

// gateEquation checks §4.4's layout bound: 5Z + align_zone(|ro|) +
// align_zone(|rw| + heap_zero_pages*PAGE_SIZE) + align_zone(stack_size) + I
// <= 2^32.
func gateEquation(roLen, rwLen, heapZeroPages, stackSize uint64) bool {
	total := 5*uint64(ZoneSize) +
		alignZone(roLen) +
		alignZone(rwLen+heapZeroPages*PageSize) +
		alignZone(stackSize) +
		uint64(InitInputSize)
	return total <= uint64(1)<<32
}

// initProgram runs Y: decode, gate-check, and zone layout.
func initProgram(programBlob, encodedArgs []byte) (*ProgramImage, *ExecState, error) {
	db, err := DecodeProgramBlob(programBlob)
	if err != nil {
		return nil, nil, err
	}
	return initProgramFromDecoded(db, encodedArgs)
}

// initProgramFromDecoded runs Y's gate-check and zone layout from an
// already-decoded blob, skipping the preimage parse entirely. This is the
// path BlobCache-backed callers use to avoid re-decoding a blob they have
// already decoded once.
func initProgramFromDecoded(db *DecodedBlob, encodedArgs []byte) (*ProgramImage, *ExecState, error) {
	roData, rwData, stackSize, heapZeroPages := db.RoData, db.RwData, db.StackSize, db.HeapZeroPages
	if !gateEquation(uint64(len(roData)), uint64(len(rwData)), heapZeroPages, stackSize) {
		return nil, nil, ErrInitInvalid
	}
	if uint64(len(encodedArgs)) > InitInputSize {
		return nil, nil, ErrInitInvalid
	}

	prog := db.Prog
	img := &ProgramImage{Prog: prog, roData: roData, rwData: rwData, stackSize: stackSize, heapZeroPages: heapZeroPages}

	// Zone layout, low to high: five reserved zones, ro, rw+heap-zero-pad,
	// heap (growable up to the stack start), stack, arguments (§3.3).
	cursor := uint32(5 * ZoneSize)

	img.roStart = cursor
	roSize := uint32(alignZone(uint64(len(roData))))
	cursor += roSize
	img.roEnd = cursor

	img.rwStart = cursor
	rwSize := uint32(alignZone(uint64(len(rwData)) + heapZeroPages*PageSize))
	cursor += rwSize
	img.rwEnd = cursor

	img.heapStart = img.rwEnd
	img.heapCap = img.heapStart // grown below once stack position is known

	stackSizeAligned := uint32(alignZone(stackSize))
	img.stackEnd = uint32(uint64(MaxMemoryAddress+1) - 2*uint64(ZoneSize) - uint64(InitInputSize))
	img.stackStart = img.stackEnd - stackSizeAligned
	img.heapCap = img.stackStart

	img.argsStart = uint32(uint64(MaxMemoryAddress+1) - uint64(ZoneSize) - uint64(InitInputSize))
	img.argsEnd = img.argsStart + uint32(InitInputSize)

	ram := NewRAM()
	if roSize > 0 {
		if err := ram.WriteDuringInit(img.roStart, roData); err != nil {
			return nil, nil, ErrInitInvalid
		}
	}
	ram.grantZone(img.roStart, roSize, accessRead)

	if len(rwData) > 0 {
		if err := ram.WriteDuringInit(img.rwStart, rwData); err != nil {
			return nil, nil, ErrInitInvalid
		}
	}
	if rwSize > 0 {
		ram.grantZone(img.rwStart, rwSize, accessWrite)
	}

	if stackSizeAligned > 0 {
		ram.grantZone(img.stackStart, stackSizeAligned, accessWrite)
	}

	if len(encodedArgs) > 0 {
		if err := ram.WriteDuringInit(img.argsStart, encodedArgs); err != nil {
			return nil, nil, ErrInitInvalid
		}
	}
	ram.grantZone(img.argsStart, uint32(InitInputSize), accessRead)

	ram.initHeap(img.heapStart, img.heapCap)

	state := &ExecState{RAM: ram, prog: prog}
	// Initial register values (§3.2).
	state.Registers[0] = HaltAddress
	state.Registers[1] = uint64(MaxMemoryAddress+1) - 2*uint64(ZoneSize) - uint64(InitInputSize)
	state.Registers[7] = uint64(img.argsStart)
	state.Registers[8] = uint64(len(encodedArgs))

	return img, state, nil
}

// ContextMutator is the host-call seam (§6.2, §5). It runs synchronously
// and returns either (continue=true) to resume execution, or
// (continue=false, result) to terminate the invocation with that result.
type ContextMutator func(hostID uint64, s *ExecState, ctx any) (cont bool, result StepResult)

// InvokeResult is Ψ_M's output (§6.2, §4.7).
type InvokeResult struct {
	GasConsumed uint64
	Result      ResultKind
	Blob        []byte
	FaultAddr   uint32
	Context     any
}

// Invoke runs Ψ_M: program initialisation, gas-bounded execution, and
// result extraction (§4.7).
func Invoke(programBlob []byte, initialPC, gasLimit uint64, encodedArgs []byte, ctx any, mutator ContextMutator, sink TraceSink) InvokeResult {
	_, state, err := initProgram(programBlob, encodedArgs)
	if err != nil {
		return InvokeResult{GasConsumed: 0, Result: ResultPanic, Context: ctx}
	}
	return runInvocation(state, initialPC, gasLimit, ctx, mutator, sink)
}

// InvokeDecoded runs Ψ_M from a blob already parsed by DecodeProgramBlob,
// skipping the preimage decode step. Used by the BlobCache-backed serving
// path to amortize decode cost across repeated invocations of the same
// program.
func InvokeDecoded(db *DecodedBlob, initialPC, gasLimit uint64, encodedArgs []byte, ctx any, mutator ContextMutator, sink TraceSink) InvokeResult {
	_, state, err := initProgramFromDecoded(db, encodedArgs)
	if err != nil {
		return InvokeResult{GasConsumed: 0, Result: ResultPanic, Context: ctx}
	}
	return runInvocation(state, initialPC, gasLimit, ctx, mutator, sink)
}

// runInvocation is the shared gas-bounded-execution and result-extraction
// tail of Invoke and InvokeDecoded (§4.7 steps 2-3).
func runInvocation(state *ExecState, initialPC, gasLimit uint64, ctx any, mutator ContextMutator, sink TraceSink) InvokeResult {
	if sink == nil {
		sink = NullSink{}
	}

	state.PC = initialPC
	state.Gas = int64(gasLimit)

	final := runExecutor(state, sink, ctx, mutator)

	gasConsumed := gasLimit
	if state.Gas > 0 {
		gasConsumed = gasLimit - uint64(state.Gas)
	}

	out := InvokeResult{GasConsumed: gasConsumed, Context: ctx}
	switch final.Kind {
	case ResultOOG:
		out.Result = ResultOOG
	case ResultHalt:
		blob, err := state.RAM.ReadOctets(uint32(state.Reg(7)), uint32(state.Reg(8)))
		if err != nil {
			out.Result = ResultHalt
			out.Blob = nil
		} else {
			out.Result = ResultHalt
			out.Blob = blob
		}
	case ResultFault:
		out.Result = ResultFault
		out.FaultAddr = final.FaultAddress
	default:
		out.Result = ResultPanic
	}
	return out
}
