package pvm

import (
	"fmt"
	"strings"
)

// Disassemble renders a decoded program as a human-readable listing:
// offset, mnemonic, raw operand bytes. Grounded on the teacher's
// vm.Disassemble; useful for the CLI's decode subcommand and for test
// failure messages.
func Disassemble(prog *Program) string {
	var b strings.Builder
	i := uint64(0)
	for i < uint64(len(prog.Code)) {
		if !prog.bitmaskBit(i) {
			i++
			continue
		}
		op := Opcode(prog.fetchByte(i))
		fskip := prog.Skip(i)
		operands := make([]byte, 0, fskip)
		for j := 0; j < fskip; j++ {
			operands = append(operands, prog.fetchByte(i+1+uint64(j)))
		}
		fmt.Fprintf(&b, "%08x: %-20s %x\n", i, op.String(), operands)
		i += 1 + uint64(fskip)
	}
	return b.String()
}
