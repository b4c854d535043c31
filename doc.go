// Package triage keeps a ranked index of pending workflow exceptions.
//
// An exception is a queued work item that needs prioritized handling (not a
// Go error). Triage scores each exception from its priority, time in queue
// and deadline, writes its fields into a keyed store and places its key in a
// ranked index so consumers can read the most urgent items first.
//
// Triage is a library. It never executes or consumes items; it only
// maintains the index.
//
// # Quick Start
//
//	client := goredis.NewClient(&goredis.Options{Addr: "localhost:6379"})
//	w, err := queue.NewWriter(redisstore.New(client))
//	if err != nil { ... }
//
//	e := exception.New(123123123)
//	_ = e.SetPriority("high")
//	e.SetNeedByDate(time.Now().AddDate(0, 0, 5))
//	if err := w.AddException(ctx, e); err != nil { ... }
//
// # Architecture
//
// The exception package holds the record, scoring computes its rank, store
// defines the persistence boundary (memory, Redis, Postgres and Mongo
// backends) and queue writes and reads the ranked index. Writes pass
// through a middleware chain (logging, recovery, tracing, metrics) and
// notify ext extensions. rescore refreshes scores as deadlines approach and
// ingest decodes exceptions arriving from a message bus.
package triage
