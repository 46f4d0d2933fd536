package pvm

// TraceRecord is emitted once per executed instruction (§6.4). Host-call
// records use HostRecord instead, emitted by runExecutor (executor.go) around
// the context-mutator call.
type TraceRecord struct {
	Step       uint64
	PCBefore   uint32
	Name       string
	OpcodeHex  string
	GasAfter   int64
	Registers  [NumRegisters]uint64
	LoadAddr   uint32
	LoadValue  uint64
	LoadSet    bool
	StoreAddr  uint32
	StoreValue uint64
	StoreSet   bool
}

// HostRecord is interleaved with TraceRecords around an ECALLI dispatch
// (§6.4: "Host-call records are interleaved").
type HostRecord struct {
	HostID    uint64
	GasBefore int64
	GasAfter  int64
	ServiceID uint64
	HasServiceID bool
}

// TraceSink receives trace records during an invocation. §9's Design Notes
// mandate a pluggable sink with a no-op default so deterministic-only runs
// pay no cost; tracing must never influence the result.
type TraceSink interface {
	Record(TraceRecord)
	RecordHost(HostRecord)
}

// NullSink discards every record. It is the default sink for Invoke.
type NullSink struct{}

func (NullSink) Record(TraceRecord)     {}
func (NullSink) RecordHost(HostRecord)  {}

// SliceSink accumulates records in memory, for tests and for the CLI's
// `trace` subcommand before rendering.
type SliceSink struct {
	Instructions []TraceRecord
	HostCalls    []HostRecord
}

func NewSliceSink() *SliceSink { return &SliceSink{} }

func (s *SliceSink) Record(r TraceRecord)     { s.Instructions = append(s.Instructions, r) }
func (s *SliceSink) RecordHost(r HostRecord)  { s.HostCalls = append(s.HostCalls, r) }
