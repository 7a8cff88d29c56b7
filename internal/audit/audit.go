// Package audit writes audit records without blocking the caller.
//
// Records are queued on a buffered channel and written by one background
// goroutine. When the queue is full the record is dropped and counted; an
// audit write must never slow down or fail a request.
package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/MikeMC777/tienda/internal/metrics"
)

// Recorder is what the services depend on.
type Recorder interface {
	Record(ctx context.Context, action string, attrs ...slog.Attr)
}

type record struct {
	at     time.Time
	action string
	attrs  []slog.Attr
}

type Log struct {
	out   *slog.Logger
	queue chan record
	done  chan struct{}
	once  sync.Once

	mu     sync.RWMutex
	closed bool
}

// New starts the writer goroutine. buf <= 0 uses 256.
func New(out *slog.Logger, buf int) *Log {
	if buf <= 0 {
		buf = 256
	}
	l := &Log{
		out:   out.With("log", "audit"),
		queue: make(chan record, buf),
		done:  make(chan struct{}),
	}
	go l.run()
	return l
}

func (l *Log) run() {
	defer close(l.done)
	for r := range l.queue {
		args := make([]any, 0, len(r.attrs)+1)
		args = append(args, slog.Time("at", r.at))
		for _, a := range r.attrs {
			args = append(args, a)
		}
		l.out.Info(r.action, args...)
	}
}

func (l *Log) Record(ctx context.Context, action string, attrs ...slog.Attr) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return
	}
	if rid, ok := ctx.Value(RequestIDKey{}).(string); ok && rid != "" {
		attrs = append(attrs, slog.String("request_id", rid))
	}
	select {
	case l.queue <- record{at: time.Now().UTC(), action: action, attrs: attrs}:
	default:
		metrics.AuditDropped.Inc()
	}
}

// Close stops accepting records and waits for queued ones to be written.
func (l *Log) Close() {
	l.once.Do(func() {
		l.mu.Lock()
		l.closed = true
		close(l.queue)
		l.mu.Unlock()
		<-l.done
	})
}

// RequestIDKey is the context key under which the HTTP layer stores the
// request id, so audit lines can be correlated with access logs.
type RequestIDKey struct{}

// Nop discards everything.
type Nop struct{}

func (Nop) Record(context.Context, string, ...slog.Attr) {}
