package runner

import (
	"github.com/davecgh/go-spew/spew"

	"github.com/jamvm/pvm/pvm"
)

// DumpState pretty-prints an invocation's InvokeResult (gas consumed, result
// kind, result blob, fault address, context) for the CLI's --dump-state flag;
// registers and memory are not part of it. Grounded on go-spew, used the
// same way across the teacher's debug tooling.
func DumpState(result pvm.InvokeResult) string {
	return spew.Sdump(result)
}
