// Package persist writes the route table to durable storage in the background.
//
// The Coalescer is registered as a route.Table listener. A change only raises
// a dirty flag; a single goroutine started with Run checks the flag on every
// tick and writes one snapshot of the whole table. A burst of changes therefore
// costs one write, and request handling never waits on disk I/O.
//
// The flag is cleared with an atomic swap before the snapshot is taken. A change
// that lands while a write is in flight sets it again, so the next tick writes
// the newer state. A failed write also sets it again and is retried on the
// next tick.
//
//	c := persist.New(table, snapshots, persist.WithInterval(2*time.Second))
//	if _, err := c.LoadAtStartup(ctx); err != nil {
//	    return err
//	}
//	go c.Run(ctx) // flushes once more when ctx is canceled
package persist
