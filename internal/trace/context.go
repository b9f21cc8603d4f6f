package trace

import "context"

type tracerKey struct{}

type spanKey struct{}

// FromContext returns the tracer carried by ctx, or Nop.
func FromContext(ctx context.Context) Tracer {
	if ctx != nil {
		if t, ok := ctx.Value(tracerKey{}).(Tracer); ok {
			return t
		}
	}
	return Nop
}

// WithTracer returns ctx carrying t. A nil t means Nop.
func WithTracer(ctx context.Context, t Tracer) context.Context {
	if t == nil {
		t = Nop
	}
	return context.WithValue(ctx, tracerKey{}, t)
}

// parentOf is the id of the innermost span started through ctx.
func parentOf(ctx context.Context) uint64 {
	if ctx == nil {
		return 0
	}
	id, _ := ctx.Value(spanKey{}).(uint64)
	return id
}

// Start opens a span under the one ctx carries and returns a context in
// which the new span is the parent.
func Start(ctx context.Context, scope Scope, name string) (context.Context, *Span) {
	span := Begin(FromContext(ctx), scope, name, parentOf(ctx))
	if span.ID() == 0 {
		return ctx, span
	}
	return context.WithValue(ctx, spanKey{}, span.ID()), span
}
