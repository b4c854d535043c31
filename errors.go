package triage

import "errors"

var (
	// ErrInvalidArgument is returned when a field is assigned a value it
	// cannot hold, such as a negative days-in-queue or an unknown priority.
	ErrInvalidArgument = errors.New("triage: invalid argument")

	// ErrStore wraps any failure surfaced by the backing store.
	ErrStore = errors.New("triage: store error")

	// ErrNoStore is returned when a component is built without a store.
	ErrNoStore = errors.New("triage: no store configured")

	// ErrExceptionNotFound is returned when no field-bag exists for a key.
	ErrExceptionNotFound = errors.New("triage: exception not found")

	// ErrInvalidIndex is returned for an empty or unsupported index name.
	ErrInvalidIndex = errors.New("triage: invalid index name")
)
