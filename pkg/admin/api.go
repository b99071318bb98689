package admin

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/getmockd/faque/pkg/logging"
	"github.com/getmockd/faque/pkg/metrics"
	"github.com/getmockd/faque/pkg/requestlog"
	"github.com/getmockd/faque/pkg/route"
)

// Prefix is the base path of the administrative API.
const Prefix = "/$$/api"

// API serves the administrative endpoints.
type API struct {
	table     *route.Table
	recorder  *requestlog.Recorder
	metrics   *metrics.Metrics
	version   string
	startTime time.Time
	mux       *http.ServeMux
	log       *slog.Logger
}

// Option configures an API.
type Option func(*API)

// WithMetrics exposes m under /$$/metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(a *API) { a.metrics = m }
}

// WithVersion sets the version reported by the health endpoint.
func WithVersion(v string) Option {
	return func(a *API) { a.version = v }
}

// WithLogger sets the operational logger.
func WithLogger(log *slog.Logger) Option {
	return func(a *API) {
		if log != nil {
			a.log = log
		}
	}
}

// New creates the administrative API.
func New(table *route.Table, recorder *requestlog.Recorder, opts ...Option) *API {
	a := &API{
		table:     table,
		recorder:  recorder,
		version:   "dev",
		startTime: time.Now(),
		mux:       http.NewServeMux(),
		log:       logging.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.registerRoutes(a.mux)
	return a
}

// ServeHTTP implements the http.Handler interface.
func (a *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mux.ServeHTTP(w, r)
}
