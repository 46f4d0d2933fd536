package runner

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/mattn/go-colorable"
	"github.com/olekukonko/tablewriter"

	"github.com/jamvm/pvm/pvm"
)

// PrintTrace renders a slice of trace records as an aligned table,
// colorizing low-gas steps yellow and UNKNOWN opcode names red. Grounded on
// the teacher's CLI color conventions (fatih/color, mattn/go-colorable) and
// olekukonko/tablewriter for the table itself.
func PrintTrace(w io.Writer, records []pvm.TraceRecord, lowGasThreshold int64) {
	out := w
	if f, ok := w.(*os.File); ok {
		out = colorable.NewColorable(f)
	}
	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"step", "pc", "opcode", "gas", "load", "store"})

	yellow := color.New(color.FgYellow).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()

	for _, r := range records {
		gasStr := strconv.FormatInt(r.GasAfter, 10)
		if r.GasAfter <= lowGasThreshold {
			gasStr = yellow(gasStr)
		}
		loadStr, storeStr := "-", "-"
		if r.LoadSet {
			loadStr = fmt.Sprintf("0x%08x=%d", r.LoadAddr, r.LoadValue)
		}
		if r.StoreSet {
			storeStr = fmt.Sprintf("0x%08x=%d", r.StoreAddr, r.StoreValue)
		}
		name := r.Name
		if r.Name == "UNKNOWN" {
			name = red(r.Name)
		}
		table.Append([]string{
			strconv.FormatUint(r.Step, 10),
			fmt.Sprintf("0x%08x", r.PCBefore),
			name,
			gasStr,
			loadStr,
			storeStr,
		})
	}
	table.Render()
}
