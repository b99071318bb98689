// Package requestlog captures inbound requests for later inspection.
//
// This package serves faque users who need to see what requests came in. It is
// distinct from operational logging (which uses log/slog for platform debugging).
//
// # Core Types
//
// Record is a captured request: method, path, query string, flattened headers
// and the (possibly truncated) body. Summary is the compact listing form with a
// short body excerpt.
//
// # Recorder
//
// Recorder is a bounded, in-memory history. When full, recording a new request
// evicts the oldest one. Identifiers are time-sortable and generated while the
// recorder's write lock is held, so id order always equals insertion order and
// the oldest record is also the one with the smallest id.
//
//	rec := requestlog.NewRecorder(requestlog.WithMaxHistory(1000))
//	r := rec.Record("GET", "/api/users", "page=1", headers, body)
//	got, err := rec.Get(r.ID)
//
// Record never fails. Subscribers receive new records without blocking the
// request path; a subscriber whose buffer is full misses the record.
package requestlog
