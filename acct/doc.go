// Package acct attributes a running byte counter to nested, possibly
// concurrent logical scopes.
//
// Instrumented code records consumption on its executing worker through a
// Context. Scope boundaries create Trackers with Start and query them with
// BytesAllocated. Workers keep thread-confined counters; the only state
// shared across workers is each tracker's flushed total, which is maintained
// with a single atomic add per ancestor, so the package needs no locks.
package acct
