// Package tracing records per-request span trees carried through a context.
// A finished root span is written to slog as one record per span.
package tracing

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

type contextKey string

const spanKey contextKey = "trace_span"

// Span is one timed step of a request.
type Span struct {
	Name     string
	TraceID  string
	Start    time.Time
	Duration time.Duration

	mu       sync.Mutex
	children []*Span
	attrs    []any
}

// Start opens a root span. traceID is normally the request ID.
func Start(ctx context.Context, name, traceID string) (context.Context, *Span) {
	span := &Span{Name: name, TraceID: traceID, Start: time.Now()}
	return context.WithValue(ctx, spanKey, span), span
}

// Child opens a span under the one in ctx. Without a parent the span is
// still usable but never logged.
func Child(ctx context.Context, name string) (context.Context, *Span) {
	child := &Span{Name: name, Start: time.Now()}
	if parent := FromContext(ctx); parent != nil {
		child.TraceID = parent.TraceID
		parent.mu.Lock()
		parent.children = append(parent.children, child)
		parent.mu.Unlock()
	}
	return context.WithValue(ctx, spanKey, child), child
}

func FromContext(ctx context.Context) *Span {
	if span, ok := ctx.Value(spanKey).(*Span); ok {
		return span
	}
	return nil
}

func (s *Span) End() {
	s.Duration = time.Since(s.Start)
}

// SetAttr attaches key/value pairs logged with the span.
func (s *Span) SetAttr(args ...any) {
	s.mu.Lock()
	s.attrs = append(s.attrs, args...)
	s.mu.Unlock()
}

// Children returns the direct child spans.
func (s *Span) Children() []*Span {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*Span(nil), s.children...)
}

// Report ends s and logs its tree: at warn when it took at least slow,
// otherwise at debug. slow <= 0 always logs at debug.
func (s *Span) Report(logger *slog.Logger, slow time.Duration) {
	s.End()
	level := slog.LevelDebug
	if slow > 0 && s.Duration >= slow {
		level = slog.LevelWarn
	}
	if !logger.Enabled(context.Background(), level) {
		return
	}
	s.log(logger, level, 0)
}

func (s *Span) log(logger *slog.Logger, level slog.Level, depth int) {
	s.mu.Lock()
	attrs := append([]any{
		"trace_id", s.TraceID,
		"span", s.Name,
		"duration", s.Duration,
		"depth", depth,
	}, s.attrs...)
	children := append([]*Span(nil), s.children...)
	s.mu.Unlock()

	msg := "span"
	if depth == 0 && level == slog.LevelWarn {
		msg = "slow request"
	}
	logger.Log(context.Background(), level, msg, attrs...)
	for _, child := range children {
		child.log(logger, level, depth+1)
	}
}
