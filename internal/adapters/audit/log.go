package audit

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/aws/aws-xray-sdk-go/xray"
	"task-rbac/internal/domain"
	"task-rbac/internal/ports"
)

const (
	defaultMirrorBuffer = 1024
	flushPollInterval   = 5 * time.Millisecond
	mirrorSegmentName   = "audit-mirror"
)

// Log is an append-only, in-memory audit log safe for concurrent use.
// Entries may additionally be mirrored to a durable store by a single
// background writer; mirroring never blocks Record.
type Log struct {
	mu      sync.RWMutex
	entries []domain.AuditEntry
	seq     uint64
	last    time.Time
	now     func() time.Time
	logger  ports.Logger

	store   ports.AuditStore
	pending chan domain.AuditEntry
	queued  int
	done    chan struct{}
	closed  bool
}

type Option func(*Log)

func WithClock(now func() time.Time) Option {
	return func(l *Log) { l.now = now }
}

func WithLogger(logger ports.Logger) Option {
	return func(l *Log) { l.logger = logger }
}

// WithMirror copies every recorded entry to store through a buffer of size
// entries. When the buffer is full the copy is dropped and a warning logged.
func WithMirror(store ports.AuditStore, size int) Option {
	return func(l *Log) {
		if size <= 0 {
			size = defaultMirrorBuffer
		}
		l.store = store
		l.pending = make(chan domain.AuditEntry, size)
	}
}

func NewLog(opts ...Option) *Log {
	l := &Log{now: func() time.Time { return time.Now().UTC() }}
	for _, opt := range opts {
		opt(l)
	}
	if l.store != nil {
		l.done = make(chan struct{})
		go l.drain()
	}
	return l
}

// Record stamps the entry and appends it. Timestamps never go backwards
// within one log even if the wall clock does.
func (l *Log) Record(ctx context.Context, entry domain.AuditEntry) {
	l.mu.Lock()
	ts := l.now()
	if ts.Before(l.last) {
		ts = l.last
	}
	l.last = ts
	l.seq++
	entry.Seq = l.seq
	entry.Timestamp = ts
	l.entries = append(l.entries, entry)
	if l.pending != nil && !l.closed {
		select {
		case l.pending <- entry:
			l.queued++
		default:
			l.warn(ctx, "audit mirror buffer full, dropping durable copy", "seq", entry.Seq)
		}
	}
	l.mu.Unlock()
}

// Query returns matching entries newest first; equal timestamps are ordered
// by append position, later first.
func (l *Log) Query(_ context.Context, filter domain.AuditFilter) []domain.AuditEntry {
	l.mu.RLock()
	out := make([]domain.AuditEntry, 0, len(l.entries))
	for _, e := range l.entries {
		if filter.Matches(e) {
			out = append(out, e)
		}
	}
	l.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.After(out[j].Timestamp)
		}
		return out[i].Seq > out[j].Seq
	})
	return out
}

func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Clear empties the log. Sequence numbers keep counting.
func (l *Log) Clear() {
	l.mu.Lock()
	l.entries = nil
	l.mu.Unlock()
}

// Close stops mirroring and waits for buffered entries to be written or for
// ctx to end. Entries recorded after Close stay in memory only.
func (l *Log) Close(ctx context.Context) error {
	l.mu.Lock()
	if l.pending == nil || l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	close(l.pending)
	l.mu.Unlock()

	select {
	case <-l.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Flush waits until every entry handed to the mirror has been written, or
// ctx ends.
func (l *Log) Flush(ctx context.Context) error {
	for {
		l.mu.RLock()
		n := l.queued
		l.mu.RUnlock()
		if n == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(flushPollInterval):
		}
	}
}

func (l *Log) drain() {
	defer close(l.done)
	for entry := range l.pending {
		ctx, seg := xray.BeginSegment(context.Background(), mirrorSegmentName)
		err := l.store.Append(ctx, entry)
		seg.Close(err)
		if err != nil && l.logger != nil {
			l.logger.Error(ctx, "failed to persist audit entry", "error", err, "seq", entry.Seq)
		}
		l.mu.Lock()
		l.queued--
		l.mu.Unlock()
	}
}

func (l *Log) warn(ctx context.Context, msg string, args ...any) {
	if l.logger != nil {
		l.logger.Warn(ctx, msg, args...)
	}
}

var _ ports.AuditLog = (*Log)(nil)
