package middleware

import (
	"context"

	"github.com/xraph/triage/exception"
)

// Handler is the terminal function that performs the store write.
type Handler func(ctx context.Context) error

// Write describes one ranked upsert passing through the chain.
type Write struct {
	// Index is the ranked index being written.
	Index string
	// ExceptionID is the id of the exception the entry was derived from.
	ExceptionID int64
	// Entry holds the key, field-bag and score being written.
	Entry *exception.Entry
	// Attempt is 1 for the first try and grows with each retry.
	Attempt int
}

// Middleware wraps a Handler with cross-cutting logic.
type Middleware func(ctx context.Context, w *Write, next Handler) error

// Chain composes multiple middleware into a single Middleware.
// The first middleware in the list is the outermost wrapper.
//
// Example: Chain(logging, recover) executes as:
//
//	logging → recover → handler
func Chain(mws ...Middleware) Middleware {
	return func(ctx context.Context, w *Write, next Handler) error {
		h := next
		for i := len(mws) - 1; i >= 0; i-- {
			mw := mws[i]
			prev := h
			h = func(ctx context.Context) error {
				return mw(ctx, w, prev)
			}
		}
		return h(ctx)
	}
}
