// Package audithook is a triage extension that bridges ranking events to
// an immutable audit trail backend.
//
// Every write, retry, failure and re-score emits a structured audit event
// through the [Recorder] interface. Severity is info for normal writes,
// warning for retries and critical for terminal failures; metadata carries
// the index, score and error.
//
// # Usage
//
//	audithook.New(audithook.RecorderFunc(func(ctx context.Context, evt *audithook.AuditEvent) error {
//	    logger.InfoContext(ctx, evt.Action, "resource_id", evt.ResourceID, "outcome", evt.Outcome)
//	    return nil
//	}))
//
// # Selective filtering
//
//	audithook.New(recorder,
//	    audithook.WithActions(
//	        audithook.ActionExceptionFailed,
//	        audithook.ActionExceptionRescored,
//	    ),
//	)
package audithook
