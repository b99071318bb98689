// Package metrics exposes faque's Prometheus metrics.
//
// Every Metrics value owns its registry, so tests and multiple servers in one
// process never collide on the default registry.
//
// # Metrics
//
//   - faque_requests_total: captured requests (labels: method, matched)
//   - faque_routes: routes in the table
//   - faque_recorded_requests: requests held in the history
//   - faque_snapshot_saves_total: route snapshot writes (labels: result)
//   - faque_snapshot_save_duration_seconds: route snapshot write latency
//   - faque_history_dropped_total: records the history writer missed
//   - faque_history_write_errors_total: failed history writes
//   - faque_uptime_seconds: seconds since the server started
//
// Go runtime and process collectors are registered as well.
//
// # Usage
//
//	m := metrics.New()
//	m.TrackRoutes(table.Count)
//	m.ObserveRequest("GET", true)
//	mux.Handle("GET /$$/metrics", m.Handler())
//
// All methods are safe on a nil *Metrics, which records nothing.
package metrics
