// Package id provides unique identifier generation utilities.
//
// This is the canonical source for ID generation across the faque codebase.
//
//   - Sortable: UUID version 7 identifiers whose string form sorts in creation
//     order. Captured requests rely on this to reconstruct chronological order
//     without a secondary index.
//
// Sortable IDs are strictly increasing within a process, even when several are
// generated in the same millisecond or from concurrent goroutines.
package id
