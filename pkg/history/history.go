// Package history keeps a durable copy of the request history.
//
// The Writer copies every newly recorded request to a Store from a background
// goroutine, so the request path never touches disk. The Cleaner periodically
// removes stored records the in-memory Recorder no longer holds, which keeps
// the durable copy within the same bound. Restore loads the durable copy back
// into the Recorder at startup.
package history

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cappuccinotm/slogx"

	"github.com/getmockd/faque/pkg/logging"
	"github.com/getmockd/faque/pkg/requestlog"
)

// DefaultCleanupInterval is how often the Cleaner runs by default.
const DefaultCleanupInterval = 60 * time.Second

// Store is the durable side of the request history.
type Store interface {
	Put(rec *requestlog.Record) error
	List() ([]*requestlog.Record, error)
	IDs() ([]string, error)
	Delete(ids ...string) error
}

// Writer copies recorded requests to a Store.
type Writer struct {
	records     <-chan *requestlog.Record
	unsubscribe func()
	store       Store
	onError     func()
	log         *slog.Logger
}

// NewWriter creates a Writer subscribed to recorder. Records captured from
// this point on are queued for Run. onError, if set, is called for every
// failed write.
func NewWriter(recorder *requestlog.Recorder, store Store, onError func(), log *slog.Logger) *Writer {
	if log == nil {
		log = logging.Nop()
	}
	records, unsubscribe := recorder.Subscribe()
	return &Writer{records: records, unsubscribe: unsubscribe, store: store, onError: onError, log: log}
}

// Run writes records until ctx is canceled, then writes whatever is still
// queued and ends the subscription.
func (w *Writer) Run(ctx context.Context) {
	defer w.unsubscribe()

	for {
		select {
		case rec := <-w.records:
			w.put(rec)
		case <-ctx.Done():
			for {
				select {
				case rec := <-w.records:
					w.put(rec)
				default:
					return
				}
			}
		}
	}
}

func (w *Writer) put(rec *requestlog.Record) {
	if err := w.store.Put(rec); err != nil {
		w.log.Warn("failed to write request history", "id", rec.ID, slogx.Error(err))
		if w.onError != nil {
			w.onError()
		}
	}
}

// Cleaner removes stored records that are no longer in the Recorder.
type Cleaner struct {
	recorder *requestlog.Recorder
	store    Store
	interval time.Duration
	log      *slog.Logger
}

// NewCleaner creates a Cleaner. A non-positive interval uses DefaultCleanupInterval.
func NewCleaner(recorder *requestlog.Recorder, store Store, interval time.Duration, log *slog.Logger) *Cleaner {
	if interval <= 0 {
		interval = DefaultCleanupInterval
	}
	if log == nil {
		log = logging.Nop()
	}
	return &Cleaner{recorder: recorder, store: store, interval: interval, log: log}
}

// Run cleans every interval until ctx is canceled.
func (c *Cleaner) Run(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := c.Clean(); err != nil {
				c.log.Warn("request history cleanup failed", slogx.Error(err))
			}
		case <-ctx.Done():
			return
		}
	}
}

// Clean deletes stored records the Recorder no longer holds and returns how
// many were deleted.
func (c *Cleaner) Clean() (int, error) {
	stored, err := c.store.IDs()
	if err != nil {
		return 0, fmt.Errorf("failed to list stored requests: %w", err)
	}

	live := make(map[string]struct{}, len(stored))
	for _, id := range c.recorder.ListIDs() {
		live[id] = struct{}{}
	}

	var stale []string
	for _, id := range stored {
		if _, ok := live[id]; !ok {
			stale = append(stale, id)
		}
	}
	if len(stale) == 0 {
		return 0, nil
	}

	if err := c.store.Delete(stale...); err != nil {
		return 0, fmt.Errorf("failed to delete stale requests: %w", err)
	}
	c.log.Debug("request history cleaned", "deleted", len(stale))
	return len(stale), nil
}

// Restore loads stored records into recorder and returns how many it now holds.
func Restore(ctx context.Context, store Store, recorder *requestlog.Recorder) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	records, err := store.List()
	if err != nil {
		return 0, fmt.Errorf("failed to read request history: %w", err)
	}
	recorder.LoadAll(records)
	return recorder.Count(), nil
}
