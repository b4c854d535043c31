// Package ext defines the extension system for triage.
//
// Extensions are notified when exceptions are ranked, fail to be written,
// are retried or are re-scored, and can react to them by recording
// metrics or writing audit logs. Each lifecycle hook is a separate
// interface so extensions opt in only to the events they care about.
//
// # Implementing an Extension
//
//	type MyExtension struct{}
//
//	func (e *MyExtension) Name() string { return "my-extension" }
//
//	func (e *MyExtension) OnExceptionAdded(ctx context.Context, index string, entry *exception.Entry, elapsed time.Duration) error {
//	    log.Printf("%s ranked %.0f in %s", entry.Key, entry.Score, index)
//	    return nil
//	}
//
// # Write Hooks
//
//   - [ExceptionAdded]: the field-bag and ranked entry were written
//   - [ExceptionRetrying]: a write failed and will be re-issued
//   - [ExceptionFailed]: a write failed with no attempts remaining
//
// # Re-scoring Hooks
//
//   - [ExceptionRescored]: a stored score was replaced by a fresh one
//   - [RescoreCompleted]: a pass over an index finished
//
// # Other Hooks
//
//   - [Shutdown]: the owning component is shutting down
//
// The [Registry] fans out each event to all registered extensions that
// implement the corresponding hook interface.
package ext
