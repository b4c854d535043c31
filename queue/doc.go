// Package queue writes scored exceptions into a ranked index and reads them
// back in priority order.
//
// A [Writer] turns an exception into a persisted entry: the field-bag is
// stored under "<prefix><id>" and the same key is added to the ranked index
// with the exception's score. Both writes happen in one store-level
// transaction, so a write can be replayed safely.
//
//	w, err := queue.NewWriter(redisstore.New(client),
//	    queue.WithIndex("FINANCE_QUEUE"),
//	    queue.WithMiddleware(middleware.Logging(logger), middleware.Recover(logger)),
//	    queue.WithRetry(backoff.DefaultStrategy(), 3),
//	)
//	if err != nil { ... }
//	err = w.AddException(ctx, e)
//
// # Rate limiting
//
// [WithRateLimit] installs a token bucket (golang.org/x/time/rate) in front
// of the store. AddException waits for a token and honours ctx while it
// waits.
//
// # Reading
//
// A [Reader] decodes ranked members back into exceptions. [Reader.Top]
// returns the highest scores first; [Reader.Range] follows the store's
// ascending order.
package queue
