package engine

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/cappuccinotm/slogx"

	"github.com/getmockd/faque/pkg/httputil"
	"github.com/getmockd/faque/pkg/logging"
	"github.com/getmockd/faque/pkg/metrics"
	"github.com/getmockd/faque/pkg/requestlog"
	"github.com/getmockd/faque/pkg/route"
)

// AdminPrefix is the path prefix reserved for the administrative API.
const AdminPrefix = "/$$/"

// MaxRequestBodySize is the default limit on bytes read from a request body (10MB).
const MaxRequestBodySize = 10 << 20

// Handler answers requests from the route table and records them.
type Handler struct {
	table    *route.Table
	recorder *requestlog.Recorder
	admin    http.Handler
	metrics  *metrics.Metrics
	maxBody  int64
	log      *slog.Logger
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithAdmin sets the handler for requests under AdminPrefix.
func WithAdmin(admin http.Handler) HandlerOption {
	return func(h *Handler) { h.admin = admin }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) HandlerOption {
	return func(h *Handler) { h.metrics = m }
}

// WithMaxRequestBodySize limits how many body bytes are read per request.
func WithMaxRequestBodySize(n int64) HandlerOption {
	return func(h *Handler) {
		if n > 0 {
			h.maxBody = n
		}
	}
}

// WithLogger sets the operational logger.
func WithLogger(log *slog.Logger) HandlerOption {
	return func(h *Handler) {
		if log != nil {
			h.log = log
		}
	}
}

// NewHandler creates a Handler.
func NewHandler(table *route.Table, recorder *requestlog.Recorder, opts ...HandlerOption) *Handler {
	h := &Handler{
		table:    table,
		recorder: recorder,
		maxBody:  MaxRequestBodySize,
		log:      logging.Nop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ServeHTTP implements the http.Handler interface.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, AdminPrefix) {
		if h.admin == nil {
			httputil.WriteProblem(w, http.StatusNotFound, "administrative API is disabled", r.URL.Path)
			return
		}
		h.admin.ServeHTTP(w, r)
		return
	}

	body, tooLarge := h.readBody(w, r)
	h.recorder.Record(r.Method, r.URL.Path, r.URL.RawQuery, flattenHeaders(r), body)

	if tooLarge {
		h.metrics.ObserveRequest(r.Method, false)
		httputil.WriteProblem(w, http.StatusRequestEntityTooLarge,
			"request body exceeds "+strconv.FormatInt(h.maxBody, 10)+" bytes", r.URL.Path)
		return
	}

	rt, err := h.table.FindMatch(r.Method, r.URL.Path)
	if err != nil {
		h.metrics.ObserveRequest(r.Method, false)
		httputil.WriteProblem(w, http.StatusNotFound, "no route matches "+r.Method+" "+r.URL.Path, r.URL.Path)
		return
	}

	h.metrics.ObserveRequest(r.Method, true)
	for name, value := range rt.Response.Headers {
		w.Header().Set(name, value)
	}
	w.WriteHeader(rt.Response.StatusCode)
	if rt.Response.Body != "" {
		if _, err := io.WriteString(w, rt.Response.Body); err != nil {
			h.log.Debug("failed to write response body", "path", r.URL.Path, slogx.Error(err))
		}
	}
}

// readBody reads up to maxBody bytes. It reports whether the body was longer.
func (h *Handler) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	if r.Body == nil {
		return nil, false
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBody))
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.log.Warn("request body too large", "path", r.URL.Path, "limit", h.maxBody)
			return body, true
		}
		h.log.Warn("failed to read request body", "path", r.URL.Path, slogx.Error(err))
	}
	return body, false
}

// flattenHeaders joins repeated header values with ", ". The Host header,
// which net/http moves out of r.Header, is put back.
func flattenHeaders(r *http.Request) map[string]string {
	headers := make(map[string]string, len(r.Header)+1)
	for name, values := range r.Header {
		headers[name] = strings.Join(values, ", ")
	}
	if r.Host != "" {
		headers["Host"] = r.Host
	}
	return headers
}
