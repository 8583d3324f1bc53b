package logging

import (
	"context"
	"encoding/json"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/ahmetcoskunkizilkaya/humanizer-backend/internal/models"
	"gorm.io/datatypes"
)

const (
	flushBatchSize = 50
	flushInterval  = 5 * time.Second
	flushAction    = "logging.flush"
)

// LogStore persists batches of log rows.
type LogStore interface {
	CreateSystemLogs(ctx context.Context, logs []models.SystemLog) error
}

// PGHandler is an slog.Handler that batches ERROR+ records into system_logs.
type PGHandler struct {
	store  LogStore
	attrs  []slog.Attr
	shared *pgBuffer
}

type pgBuffer struct {
	mu      sync.Mutex
	buffer  []models.SystemLog
	ticker  *time.Ticker
	done    chan struct{}
	stopped chan struct{}
	once    sync.Once
}

func NewPGHandler(store LogStore) *PGHandler {
	h := &PGHandler{
		store: store,
		shared: &pgBuffer{
			buffer:  make([]models.SystemLog, 0, flushBatchSize),
			ticker:  time.NewTicker(flushInterval),
			done:    make(chan struct{}),
			stopped: make(chan struct{}),
		},
	}
	go h.flushLoop()
	return h
}

func (h *PGHandler) flushLoop() {
	defer close(h.shared.stopped)
	for {
		select {
		case <-h.shared.ticker.C:
			h.Flush()
		case <-h.shared.done:
			h.Flush()
			return
		}
	}
}

// Flush writes whatever is buffered.
func (h *PGHandler) Flush() {
	b := h.shared
	b.mu.Lock()
	if len(b.buffer) == 0 {
		b.mu.Unlock()
		return
	}
	batch := b.buffer
	b.buffer = make([]models.SystemLog, 0, flushBatchSize)
	b.mu.Unlock()

	if err := h.store.CreateSystemLogs(context.Background(), batch); err != nil {
		slog.Error("failed to flush system logs to DB", "action", flushAction, "error", err, "count", len(batch))
	}
}

// Stop flushes the remaining buffer and returns once the flush loop has exited.
func (h *PGHandler) Stop() {
	h.shared.once.Do(func() {
		h.shared.ticker.Stop()
		close(h.shared.done)
	})
	<-h.shared.stopped
}

// Enabled only handles ERROR and above.
func (h *PGHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= slog.LevelError
}

func (h *PGHandler) Handle(_ context.Context, record slog.Record) error {
	entry := models.SystemLog{
		Timestamp: record.Time.UTC(),
		Level:     record.Level.String(),
		Message:   record.Message,
	}

	extra := make(map[string]interface{})
	apply := func(a slog.Attr) bool {
		switch a.Key {
		case "request_id":
			entry.RequestID = a.Value.String()
		case "user_id":
			s := a.Value.String()
			entry.UserID = &s
		case "action":
			entry.Action = a.Value.String()
		case "error":
			entry.Error = a.Value.String()
		case "latency_ms":
			switch a.Value.Kind() {
			case slog.KindFloat64:
				entry.LatencyMs = int(math.Round(a.Value.Float64()))
			case slog.KindInt64:
				entry.LatencyMs = int(a.Value.Int64())
			}
		default:
			extra[a.Key] = a.Value.Any()
		}
		return true
	}
	for _, a := range h.attrs {
		apply(a)
	}
	record.Attrs(apply)

	// A failed flush must not feed itself back into the buffer.
	if entry.Action == flushAction {
		return nil
	}

	if len(extra) > 0 {
		if b, err := json.Marshal(extra); err == nil {
			entry.Extra = datatypes.JSON(b)
		}
	}

	b := h.shared
	b.mu.Lock()
	b.buffer = append(b.buffer, entry)
	needFlush := len(b.buffer) >= flushBatchSize
	b.mu.Unlock()

	if needFlush {
		go h.Flush()
	}
	return nil
}

func (h *PGHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &PGHandler{store: h.store, attrs: merged, shared: h.shared}
}

// WithGroup is a no-op; system_logs has no notion of nested keys.
func (h *PGHandler) WithGroup(name string) slog.Handler {
	return h
}
