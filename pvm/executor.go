package pvm

// runExecutor is Ψ_H: the run loop that iterates Ψ_1 (Step) until a
// terminal condition, handing host calls off to the mutator (§2, §5).
func runExecutor(state *ExecState, sink TraceSink, ctx any, mutator ContextMutator) StepResult {
	var step uint64
	for {
		res := Step(state, sink, step)
		step++
		switch res.Kind {
		case ResultContinue:
			continue
		case ResultHost:
			gasBefore := state.Gas
			cont, mres := mutator(res.HostCallID, state, ctx)
			sink.RecordHost(HostRecord{HostID: res.HostCallID, GasBefore: gasBefore, GasAfter: state.Gas})
			if cont {
				i := state.PC
				fskip := state.prog.Skip(i)
				state.PC = i + 1 + uint64(fskip)
				continue
			}
			return mres
		default:
			return res
		}
	}
}
