// Package admin implements the administrative API under /$$/api.
//
// # Routes
//
//	GET    /$$/api/health                      health and uptime
//	GET    /$$/api/routes                      list routes in registration order
//	DELETE /$$/api/routes                      remove all routes
//	GET    /$$/api/routes/{method}/{pattern}   get one route
//	PUT    /$$/api/routes/{method}/{pattern}   create or replace a route
//	DELETE /$$/api/routes/{method}/{pattern}   delete a route
//	GET    /$$/api/requests                    list captured request summaries
//	GET    /$$/api/requests/stream             server-sent events for new requests
//	GET    /$$/api/requests/{id}               get one captured request
//	DELETE /$$/api/requests                    clear captured requests
//	GET    /$$/metrics                         Prometheus metrics
//
// The pattern segment is the path pattern, usually URL-encoded
// (%2Fapi%2Fusers%2F%2A). A leading slash is added when missing.
//
// # Versions
//
// Every route carries a version that starts at 1 and increases on each
// replacement. Route responses include it as an ETag. A PUT may send the
// version it last saw, either as an If-Match header or as an expectedVersion
// field in the body; the write then fails with 409 if the route changed in
// between. An expected version of 0 means "create only".
//
// # Errors
//
// Errors are application/problem+json documents. Unknown routes or requests
// give 404, rejected routes 422, version conflicts 409. Unexpected failures
// give 500 with a generic message and are logged server-side.
package admin
