// Package route holds the route table: the concurrently mutable registry of
// "method + path pattern → canned response" rules served by the engine.
//
// # Identity and versions
//
// A route is identified by its upper-cased method and its exact path pattern.
// The table owns the Version field: it starts at 1 when a key is first written
// and increases by one on every successful write to that key. Callers pass an
// expected version to Upsert to get optimistic concurrency: the write only
// happens if the stored version still equals the expected one.
//
// # Matching order
//
// FindMatch returns the first enabled route, in registration order, whose
// method equals the request method and whose pattern matches the path.
// Registration order is fixed when a key is first created. Replacing a route
// keeps its position; deleting and re-creating it moves it to the end.
// Overlapping patterns are not ranked by specificity.
//
// # Concurrency
//
// Reads (FindMatch, Get, All) take no locks. Writes to a single key are a
// compare-and-swap loop, so two racing writers never both succeed against the
// same expected version. Bulk replacement (LoadAll, Clear) briefly excludes
// writers but never readers.
//
// Every successful mutation calls the registered listeners exactly once,
// synchronously, after the change is visible to readers.
package route
