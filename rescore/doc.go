// Package rescore keeps ranked scores fresh.
//
// The urgency term of a score depends on today's date, so a stored score
// goes stale as its deadline approaches. A [Rescorer] walks an index,
// rebuilds every exception from its field-bag, recomputes the score and
// rewrites the entry through the queue writer when the score changed.
//
//	r, err := rescore.New(w, rescore.WithSchedule("@daily"))
//	if err != nil { ... }
//	if err := r.Start(ctx); err != nil { ... }
//	defer r.Stop(ctx)
//
// Schedules use standard 5-field cron syntax or descriptors such as
// "@hourly" and "@every 30m" (github.com/robfig/cron/v3).
package rescore
