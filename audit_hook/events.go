package audithook

// Audit event actions. Each constant corresponds to one ext lifecycle hook
// and becomes the Action field of the audit event.
const (
	ActionExceptionAdded    = "exception.added"
	ActionExceptionRetrying = "exception.retrying"
	ActionExceptionFailed   = "exception.failed"
	ActionExceptionRescored = "exception.rescored"
	ActionRescoreCompleted  = "rescore.completed"
)

// Audit event categories group related actions.
const (
	CategoryWrite   = "triage.write"
	CategoryRescore = "triage.rescore"
)

// Resource types used as the Resource field in audit events.
const (
	ResourceException = "exception"
	ResourceIndex     = "ranked_index"
)

// AllActions returns every action this extension can emit.
func AllActions() []string {
	return []string{
		ActionExceptionAdded,
		ActionExceptionRetrying,
		ActionExceptionFailed,
		ActionExceptionRescored,
		ActionRescoreCompleted,
	}
}
