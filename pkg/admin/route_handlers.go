// Route table handlers.

package admin

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/getmockd/faque/pkg/httputil"
	"github.com/getmockd/faque/pkg/route"
)

// maxRouteBodySize bounds a PUT body.
const maxRouteBodySize = 1 << 20

// routeRequest is the PUT body. Method and path pattern come from the URL.
type routeRequest struct {
	Response        route.Response `json:"response"`
	Enabled         *bool          `json:"enabled,omitempty"`
	ExpectedVersion *int64         `json:"expectedVersion,omitempty"`
}

// routeKey extracts the method and path pattern from the URL.
func routeKey(r *http.Request) (string, string) {
	pattern := r.PathValue("pattern")
	if !strings.HasPrefix(pattern, "/") {
		pattern = "/" + pattern
	}
	return r.PathValue("method"), pattern
}

// parseIfMatch reads a version from an If-Match value: 3, "3" or W/"3".
func parseIfMatch(v string) (*int64, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	v = strings.TrimPrefix(v, "W/")
	v = strings.Trim(v, `"`)
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n < 0 {
		return nil, errors.New("If-Match must be a route version")
	}
	return &n, nil
}

func (a *API) handleListRoutes(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, a.table.All())
}

func (a *API) handleClearRoutes(w http.ResponseWriter, _ *http.Request) {
	a.table.Clear()
	httputil.WriteNoContent(w)
}

func (a *API) handleGetRoute(w http.ResponseWriter, r *http.Request) {
	method, pattern := routeKey(r)
	rt, err := a.table.Get(method, pattern)
	if err != nil {
		a.writeError(w, r, err, "get route")
		return
	}
	w.Header().Set("ETag", etag(rt.Version))
	httputil.WriteJSON(w, http.StatusOK, rt)
}

func (a *API) handlePutRoute(w http.ResponseWriter, r *http.Request) {
	method, pattern := routeKey(r)

	var req routeRequest
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRouteBodySize))
	if err != nil {
		httputil.WriteProblem(w, http.StatusRequestEntityTooLarge, "route body is too large", r.URL.Path)
		return
	}
	if err := json.Unmarshal(body, &req); err != nil {
		httputil.WriteProblem(w, http.StatusBadRequest, "invalid JSON in request body", r.URL.Path)
		return
	}

	expected := req.ExpectedVersion
	ifMatch, err := parseIfMatch(r.Header.Get("If-Match"))
	if err != nil {
		httputil.WriteProblem(w, http.StatusBadRequest, err.Error(), r.URL.Path)
		return
	}
	if ifMatch != nil {
		if expected != nil && *expected != *ifMatch {
			httputil.WriteProblem(w, http.StatusBadRequest,
				"If-Match and expectedVersion disagree", r.URL.Path)
			return
		}
		expected = ifMatch
	}

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}

	saved, err := a.table.Upsert(route.Route{
		Method:      method,
		PathPattern: pattern,
		Response:    req.Response,
		Enabled:     enabled,
	}, expected)
	if err != nil {
		a.writeError(w, r, err, "save route")
		return
	}

	status := http.StatusOK
	if saved.Version == 1 {
		status = http.StatusCreated
	}
	w.Header().Set("ETag", etag(saved.Version))
	httputil.WriteJSON(w, status, saved)
}

func (a *API) handleDeleteRoute(w http.ResponseWriter, r *http.Request) {
	method, pattern := routeKey(r)
	if err := a.table.Delete(method, pattern); err != nil {
		a.writeError(w, r, err, "delete route")
		return
	}
	httputil.WriteNoContent(w)
}
