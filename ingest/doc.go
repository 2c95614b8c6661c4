// Package ingest coordinates fetching adoption listings from external
// sources and landing them in the store.
//
// Sources are fetched concurrently through a worker pool, each behind its
// own circuit breaker and an optional shared rate limiter. Fetched records
// are converted, embedded, deduplicated and persisted by a single writer so
// duplicate decisions always see a consistent store snapshot. A failing
// source degrades the run, never fails it.
package ingest
