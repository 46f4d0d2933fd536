package pvm

import (
	"encoding/json"
	"io"

	"github.com/golang/snappy"
)

// SnappySink writes each trace record as a snappy-framed JSON line to an
// underlying writer, for on-disk trace output (§11 domain
// stack: golang/snappy, the same compressor the teacher's go.mod carries
// for append-only log data).
type SnappySink struct {
	w   *snappy.Writer
	enc *json.Encoder
}

// NewSnappySink wraps w in a snappy framing writer and returns a sink ready
// for use. Callers must call Close when the invocation completes to flush
// the final frame.
func NewSnappySink(w io.Writer) *SnappySink {
	sw := snappy.NewBufferedWriter(w)
	return &SnappySink{w: sw, enc: json.NewEncoder(sw)}
}

type traceLine struct {
	Kind string       `json:"kind"`
	Inst *TraceRecord `json:"inst,omitempty"`
	Host *HostRecord  `json:"host,omitempty"`
}

func (s *SnappySink) Record(r TraceRecord) {
	_ = s.enc.Encode(traceLine{Kind: "inst", Inst: &r})
}

func (s *SnappySink) RecordHost(r HostRecord) {
	_ = s.enc.Encode(traceLine{Kind: "host", Host: &r})
}

// Close flushes the snappy writer. Tracing is best-effort (§7): a flush
// error here never propagates into an invocation's result.
func (s *SnappySink) Close() error {
	return s.w.Close()
}
