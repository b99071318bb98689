// Error mapping for the admin API.

package admin

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/cappuccinotm/slogx"

	"github.com/getmockd/faque/pkg/httputil"
	"github.com/getmockd/faque/pkg/requestlog"
	"github.com/getmockd/faque/pkg/route"
)

// ErrMsgInternalError is returned for unexpected internal errors.
// The full error is only logged.
const ErrMsgInternalError = "An internal error occurred"

// writeError maps err to a problem response.
func (a *API) writeError(w http.ResponseWriter, r *http.Request, err error, operation string) {
	var conflict *route.ConflictError
	switch {
	case errors.As(err, &conflict):
		if conflict.Actual > 0 {
			w.Header().Set("ETag", etag(conflict.Actual))
		}
		httputil.WriteProblem(w, http.StatusConflict, err.Error(), r.URL.Path)
	case errors.Is(err, route.ErrValidation):
		httputil.WriteProblem(w, http.StatusUnprocessableEntity, err.Error(), r.URL.Path)
	case errors.Is(err, route.ErrNotFound), errors.Is(err, requestlog.ErrNotFound):
		httputil.WriteProblem(w, http.StatusNotFound, err.Error(), r.URL.Path)
	default:
		a.log.Error("admin operation failed", "operation", operation, "path", r.URL.Path, slogx.Error(err))
		httputil.WriteProblem(w, http.StatusInternalServerError, ErrMsgInternalError, r.URL.Path)
	}
}

func etag(version int64) string {
	return `"` + strconv.FormatInt(version, 10) + `"`
}
