package pvm

import "encoding/binary"

// Load/store handlers for the direct ("one register + one immediate",
// address via immediate into r_D) and indirect ("two registers + immediate",
// addr = r_B + imm) families (§4.6's "Memory instructions").

type loadWidth struct {
	size   int
	signed bool
}

func (w loadWidth) decode(raw []byte) uint64 {
	var buf [8]byte
	copy(buf[:], raw)
	switch w.size {
	case 1:
		if w.signed {
			return uint64(int64(int8(buf[0])))
		}
		return uint64(buf[0])
	case 2:
		v := binary.LittleEndian.Uint16(buf[:2])
		if w.signed {
			return uint64(int64(int16(v)))
		}
		return uint64(v)
	case 4:
		v := binary.LittleEndian.Uint32(buf[:4])
		if w.signed {
			return uint64(int64(int32(v)))
		}
		return uint64(v)
	default:
		return binary.LittleEndian.Uint64(buf[:8])
	}
}

func (w loadWidth) encode(v uint64) []byte {
	buf := make([]byte, w.size)
	switch w.size {
	case 1:
		buf[0] = byte(v)
	case 2:
		binary.LittleEndian.PutUint16(buf, uint16(v))
	case 4:
		binary.LittleEndian.PutUint32(buf, uint32(v))
	default:
		binary.LittleEndian.PutUint64(buf, v)
	}
	return buf
}

var (
	wU8  = loadWidth{1, false}
	wI8  = loadWidth{1, true}
	wU16 = loadWidth{2, false}
	wI16 = loadWidth{2, true}
	wU32 = loadWidth{4, false}
	wI32 = loadWidth{4, true}
	wU64 = loadWidth{8, false}
)

// directLoadHandler: LOAD_* r_D, imm — effective address is the immediate
// itself.
func directLoadHandler(w loadWidth) handlerFunc {
	return func(s *ExecState, inst Instruction) StepResult {
		regD, imm := decodeRegImm(inst.Operands, inst.Fskip)
		addr := uint32(imm)
		raw, err := s.RAM.ReadOctets(addr, uint32(w.size))
		if err != nil {
			fa, _ := FaultAddress(err)
			return faultResult(fa)
		}
		v := w.decode(raw)
		s.SetReg(regD, v)
		s.scratch.recordLoad(addr, v)
		return contResult()
	}
}

// directStoreHandler: STORE_* r_D, imm — stores the low bytes of r_D's
// value at address imm.
func directStoreHandler(w loadWidth) handlerFunc {
	return func(s *ExecState, inst Instruction) StepResult {
		regD, imm := decodeRegImm(inst.Operands, inst.Fskip)
		addr := uint32(imm)
		v := s.Reg(regD)
		if err := s.RAM.WriteOctets(addr, w.encode(v)); err != nil {
			fa, _ := FaultAddress(err)
			return faultResult(fa)
		}
		s.scratch.recordStore(addr, v)
		return contResult()
	}
}

// indirectLoadHandler: LOAD_IND_* r_D, r_B, imm — addr = (r_B + imm) mod 2^32.
func indirectLoadHandler(w loadWidth) handlerFunc {
	return func(s *ExecState, inst Instruction) StepResult {
		regD, regB, imm := decodeTwoRegsImm(inst.Operands, inst.Fskip)
		addr := uint32(s.Reg(regB) + uint64(imm))
		raw, err := s.RAM.ReadOctets(addr, uint32(w.size))
		if err != nil {
			fa, _ := FaultAddress(err)
			return faultResult(fa)
		}
		v := w.decode(raw)
		s.SetReg(regD, v)
		s.scratch.recordLoad(addr, v)
		return contResult()
	}
}

// indirectStoreHandler: STORE_IND_* r_B(addr reg), r_D(value reg), imm —
// the decoded "r_D, r_A" pair from the two-registers-plus-immediate family
// is read as (value register, base register) for stores, matching the
// family table's "two registers + immediate" entry for STORE_IND_*.
func indirectStoreHandler(w loadWidth) handlerFunc {
	return func(s *ExecState, inst Instruction) StepResult {
		regVal, regBase, imm := decodeTwoRegsImm(inst.Operands, inst.Fskip)
		addr := uint32(s.Reg(regBase) + uint64(imm))
		v := s.Reg(regVal)
		if err := s.RAM.WriteOctets(addr, w.encode(v)); err != nil {
			fa, _ := FaultAddress(err)
			return faultResult(fa)
		}
		s.scratch.recordStore(addr, v)
		return contResult()
	}
}

// storeImmIndHandler: STORE_IMM_IND_* (two immediates family) — imm_X is
// the base address, imm_Y is the value stored.
func storeImmIndHandler(w loadWidth) handlerFunc {
	return func(s *ExecState, inst Instruction) StepResult {
		immX, immY := decodeTwoImm(inst.Operands, inst.Fskip)
		addr := uint32(immX)
		v := uint64(immY)
		if err := s.RAM.WriteOctets(addr, w.encode(v)); err != nil {
			fa, _ := FaultAddress(err)
			return faultResult(fa)
		}
		s.scratch.recordStore(addr, v)
		return contResult()
	}
}
