// Captured request handlers.

package admin

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/getmockd/faque/pkg/httputil"
)

// streamKeepAlive is how often an idle event stream sends a comment line.
const streamKeepAlive = 15 * time.Second

type healthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Uptime   int64  `json:"uptime"`
	Routes   int    `json:"routes"`
	Requests int    `json:"requests"`
}

func (a *API) handleHealth(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, healthResponse{
		Status:   "ok",
		Version:  a.version,
		Uptime:   int64(time.Since(a.startTime).Seconds()),
		Routes:   a.table.Count(),
		Requests: a.recorder.Count(),
	})
}

// handleListRequests lists summaries, newest first. An optional limit query
// parameter caps the result.
func (a *API) handleListRequests(w http.ResponseWriter, r *http.Request) {
	summaries := a.recorder.ListSummaries()
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			httputil.WriteProblem(w, http.StatusBadRequest, "limit must be a non-negative integer", r.URL.Path)
			return
		}
		if limit < len(summaries) {
			summaries = summaries[:limit]
		}
	}
	httputil.WriteJSON(w, http.StatusOK, summaries)
}

func (a *API) handleGetRequest(w http.ResponseWriter, r *http.Request) {
	rec, err := a.recorder.Get(r.PathValue("id"))
	if err != nil {
		a.writeError(w, r, err, "get request")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, rec)
}

func (a *API) handleClearRequests(w http.ResponseWriter, _ *http.Request) {
	a.recorder.Clear()
	httputil.WriteNoContent(w)
}

// handleStreamRequests sends each newly captured request as a server-sent event.
func (a *API) handleStreamRequests(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		httputil.WriteProblem(w, http.StatusInternalServerError, "streaming not supported", r.URL.Path)
		return
	}

	records, unsubscribe := a.recorder.Subscribe()
	defer unsubscribe()

	// the server write timeout would otherwise end the stream
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprint(w, "event: connected\ndata: {}\n\n")
	flusher.Flush()

	ticker := time.NewTicker(streamKeepAlive)
	defer ticker.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = fmt.Fprint(w, ": keep-alive\n\n")
			flusher.Flush()
		case rec, ok := <-records:
			if !ok {
				return
			}
			data, err := json.Marshal(rec.Summary())
			if err != nil {
				continue
			}
			_, _ = fmt.Fprintf(w, "id: %s\nevent: request\ndata: %s\n\n", rec.ID, data)
			flusher.Flush()
		}
	}
}
