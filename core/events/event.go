package events

import "aseledger/core/types"

// Emitter broadcasts events to downstream subscribers (e.g. indexers, test
// harnesses).
type Emitter interface {
	Emit(*types.Event)
}

// NoopEmitter satisfies the Emitter interface while discarding all events. It
// is useful when a component wants to optionally expose events.
type NoopEmitter struct{}

// Emit implements the Emitter interface.
func (NoopEmitter) Emit(*types.Event) {}

// Recorder collects emitted events in order. The ledger uses one recorder per
// operation so that events from a failed operation are never observable.
type Recorder struct {
	events []types.Event
}

// Emit implements the Emitter interface.
func (r *Recorder) Emit(evt *types.Event) {
	if r == nil || evt == nil {
		return
	}
	attrs := make(map[string]string, len(evt.Attributes))
	for k, v := range evt.Attributes {
		attrs[k] = v
	}
	r.events = append(r.events, types.Event{Type: evt.Type, Attributes: attrs})
}

// Events returns the recorded events in emission order.
func (r *Recorder) Events() []types.Event {
	if r == nil {
		return nil
	}
	out := make([]types.Event, len(r.events))
	copy(out, r.events)
	return out
}
