package requestlog

import (
	"cmp"
	"errors"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/samber/lo"

	"github.com/getmockd/faque/internal/id"
	"github.com/getmockd/faque/pkg/logging"
)

// Defaults for a Recorder.
const (
	DefaultMaxHistory  = 1000
	DefaultMaxBodySize = 50 * 1024

	subscriberBuffer = 256
)

// ErrNotFound is returned when a record id is not in the history.
var ErrNotFound = errors.New("request not found")

// Recorder is a bounded in-memory request history.
type Recorder struct {
	mu      sync.RWMutex
	records map[string]*Record
	order   []string // ids, oldest first

	maxHistory  int
	maxBodySize int

	subMu       sync.RWMutex
	subscribers map[chan *Record]struct{}
	onDrop      func()

	now func() time.Time
	log *slog.Logger
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithMaxHistory sets how many records are kept. Values <= 0 use DefaultMaxHistory.
func WithMaxHistory(n int) Option {
	return func(r *Recorder) {
		if n > 0 {
			r.maxHistory = n
		}
	}
}

// WithMaxBodySize sets the number of body bytes kept per record.
// Zero or negative keeps bodies whole.
func WithMaxBodySize(n int) Option {
	return func(r *Recorder) { r.maxBodySize = n }
}

// WithDropHook sets a function called each time a subscriber misses a record.
func WithDropHook(fn func()) Option {
	return func(r *Recorder) { r.onDrop = fn }
}

// WithLogger sets the operational logger.
func WithLogger(log *slog.Logger) Option {
	return func(r *Recorder) {
		if log != nil {
			r.log = log
		}
	}
}

// NewRecorder creates an empty Recorder.
func NewRecorder(opts ...Option) *Recorder {
	r := &Recorder{
		records:     make(map[string]*Record),
		maxHistory:  DefaultMaxHistory,
		maxBodySize: DefaultMaxBodySize,
		subscribers: make(map[chan *Record]struct{}),
		now:         time.Now,
		log:         logging.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Record captures a request and returns a copy of the stored record.
// The oldest record is evicted when the history is full.
func (r *Recorder) Record(method, path, query string, headers map[string]string, body []byte) *Record {
	kept, truncated := truncate(body, r.maxBodySize)
	rec := &Record{
		Method:      method,
		Path:        path,
		QueryString: query,
		Headers:     maps.Clone(headers),
		Body:        string(kept),
		BodySize:    len(body),
		Truncated:   truncated,
	}

	r.mu.Lock()
	rec.ID = id.Sortable()
	rec.Timestamp = r.now()
	for len(r.order) >= r.maxHistory {
		delete(r.records, r.order[0])
		r.order = r.order[1:]
	}
	r.records[rec.ID] = rec
	r.order = append(r.order, rec.ID)
	r.mu.Unlock()

	r.publish(rec)
	return rec.clone()
}

func (r *Recorder) publish(rec *Record) {
	r.subMu.RLock()
	defer r.subMu.RUnlock()
	for sub := range r.subscribers {
		select {
		case sub <- rec:
		default:
			if r.onDrop != nil {
				r.onDrop()
			}
		}
	}
}

// Get returns a copy of the record with the given id.
func (r *Recorder) Get(id string) (*Record, error) {
	r.mu.RLock()
	rec, ok := r.records[id]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return rec.clone(), nil
}

// List returns copies of all records, newest first.
func (r *Recorder) List() []*Record {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Record, 0, len(r.order))
	for i := len(r.order) - 1; i >= 0; i-- {
		out = append(out, r.records[r.order[i]].clone())
	}
	return out
}

// ListSummaries returns the listing form of all records, newest first.
func (r *Recorder) ListSummaries() []Summary {
	return lo.Map(r.List(), func(rec *Record, _ int) Summary {
		return rec.Summary()
	})
}

// ListIDs returns the ids of all records, oldest first.
func (r *Recorder) ListIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.order)
}

// Count returns the number of records held.
func (r *Recorder) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Clear removes all records.
func (r *Recorder) Clear() {
	r.mu.Lock()
	r.records = make(map[string]*Record)
	r.order = nil
	r.mu.Unlock()
}

// LoadAll replaces the history with records, keeping the newest ones up to the
// history bound. Records whose id is not a sortable id, and duplicate ids,
// are skipped: eviction order relies on ids sorting by creation time.
func (r *Recorder) LoadAll(records []*Record) {
	valid := lo.UniqBy(
		lo.Filter(records, func(rec *Record, _ int) bool { return rec != nil && id.IsSortable(rec.ID) }),
		func(rec *Record) string { return rec.ID },
	)
	slices.SortFunc(valid, func(a, b *Record) int { return cmp.Compare(a.ID, b.ID) })
	if len(valid) > r.maxHistory {
		valid = valid[len(valid)-r.maxHistory:]
	}

	m := make(map[string]*Record, len(valid))
	order := make([]string, 0, len(valid))
	for _, rec := range valid {
		c := rec.clone()
		m[c.ID] = c
		order = append(order, c.ID)
	}

	r.mu.Lock()
	r.records = m
	r.order = order
	r.mu.Unlock()

	r.log.Debug("request history loaded", "records", len(order), "offered", len(records))
}

// Subscribe registers a subscriber for new records. Delivered records are
// shared with the Recorder and must not be modified.
// The returned function unsubscribes and closes the channel.
func (r *Recorder) Subscribe() (<-chan *Record, func()) {
	ch := make(chan *Record, subscriberBuffer)
	r.subMu.Lock()
	r.subscribers[ch] = struct{}{}
	r.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			r.subMu.Lock()
			delete(r.subscribers, ch)
			r.subMu.Unlock()
			close(ch)
		})
	}
}
