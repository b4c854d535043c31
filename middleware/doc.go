// Package middleware provides composable middleware around ranked writes.
//
// A [Middleware] wraps the store upsert the queue writer performs for each
// exception. Middleware are composed into a chain using [Chain]; the first
// middleware in the slice is the outermost wrapper.
//
//	// logging → recover → store write
//	chain := middleware.Chain(middleware.Logging(logger), middleware.Recover(logger))
//
// # Built-in Middleware
//
//   - [Logging]: logs key, index, score, duration and outcome of each write
//   - [Recover]: catches panics in the store client and converts them to errors
//   - [Timeout]: bounds each write with a deadline
//   - [Tracing]: wraps the write in an OpenTelemetry span
//   - [Metrics]: records write duration and outcome counters
//
// # Writing Custom Middleware
//
//	func MyMiddleware() middleware.Middleware {
//	    return func(ctx context.Context, w *middleware.Write, next middleware.Handler) error {
//	        // pre-processing
//	        err := next(ctx)
//	        // post-processing
//	        return err
//	    }
//	}
//
// Middleware MUST call next to continue the chain unless intentionally
// short-circuiting.
package middleware
