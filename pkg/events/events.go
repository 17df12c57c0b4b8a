package events

import (
	"sync"

	"go.uber.org/zap"
)

// Kind names a step in the life of an operation.
type Kind string

const (
	KindDerived     Kind = "derived"
	KindFetched     Kind = "fetched"
	KindBuilt       Kind = "built"
	KindSimulated   Kind = "simulated"
	KindSubmitted   Kind = "submitted"
	KindConfirmed   Kind = "confirmed"
	KindFailed      Kind = "failed"
	KindExpired     Kind = "expired"
	KindReconciled  Kind = "reconciled"
	KindPoolCreated Kind = "pool_created"
)

// Event is a structured progress record. Fields holds extra key/value detail
// such as amounts or derived addresses.
type Event struct {
	Kind      Kind
	Operation string
	Pool      string
	Signature string
	Fields    map[string]interface{}
	Err       error
}

// Sink receives events. Implementations must be safe for concurrent use.
type Sink interface {
	Emit(Event)
}

// Nop discards every event.
var Nop Sink = nopSink{}

type nopSink struct{}

func (nopSink) Emit(Event) {}

// ZapSink logs events as structured zap entries.
type ZapSink struct {
	logger *zap.Logger
}

func NewZapSink(logger *zap.Logger) *ZapSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZapSink{logger: logger}
}

func (s *ZapSink) Emit(e Event) {
	fields := make([]zap.Field, 0, 4+len(e.Fields))
	if e.Operation != "" {
		fields = append(fields, zap.String("operation", e.Operation))
	}
	if e.Pool != "" {
		fields = append(fields, zap.String("pool", e.Pool))
	}
	if e.Signature != "" {
		fields = append(fields, zap.String("signature", e.Signature))
	}
	for k, v := range e.Fields {
		fields = append(fields, zap.Any(k, v))
	}

	switch {
	case e.Err != nil:
		s.logger.Error(string(e.Kind), append(fields, zap.Error(e.Err))...)
	case e.Kind == KindFetched || e.Kind == KindDerived:
		s.logger.Debug(string(e.Kind), fields...)
	default:
		s.logger.Info(string(e.Kind), fields...)
	}
}

// Recorder keeps every event in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Emit(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Kinds returns the kinds of the recorded events in order.
func (r *Recorder) Kinds() []Kind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Kind, len(r.events))
	for i, e := range r.events {
		out[i] = e.Kind
	}
	return out
}
