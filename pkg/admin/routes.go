// Route registration for the Admin API.

package admin

import (
	"net/http"

	"github.com/getmockd/faque/pkg/httputil"
)

// registerRoutes sets up all API routes.
func (a *API) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET "+Prefix+"/health", a.handleHealth)
	mux.Handle("GET /$$/metrics", a.metrics.Handler())

	// Route table
	mux.HandleFunc("GET "+Prefix+"/routes", a.handleListRoutes)
	mux.HandleFunc("DELETE "+Prefix+"/routes", a.handleClearRoutes)
	mux.HandleFunc("GET "+Prefix+"/routes/{method}/{pattern...}", a.handleGetRoute)
	mux.HandleFunc("PUT "+Prefix+"/routes/{method}/{pattern...}", a.handlePutRoute)
	mux.HandleFunc("DELETE "+Prefix+"/routes/{method}/{pattern...}", a.handleDeleteRoute)

	// Captured requests
	mux.HandleFunc("GET "+Prefix+"/requests", a.handleListRequests)
	mux.HandleFunc("DELETE "+Prefix+"/requests", a.handleClearRequests)
	mux.HandleFunc("GET "+Prefix+"/requests/stream", a.handleStreamRequests)
	mux.HandleFunc("GET "+Prefix+"/requests/{id}", a.handleGetRequest)

	mux.HandleFunc("/$$/", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteProblem(w, http.StatusNotFound, "unknown administrative endpoint", r.URL.Path)
	})
}
