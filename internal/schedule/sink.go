package schedule

import "context"

// Plan is the set of writes a committed run applies atomically.
type Plan struct {
	WorkspaceID string
	Discard     []string
	Events      []Event
}

// Sink receives the plan produced by a run.
type Sink interface {
	Write(ctx context.Context, plan Plan) error
}

// NullSink discards every plan. Previews run against it.
type NullSink struct{}

func (NullSink) Write(context.Context, Plan) error { return nil }
