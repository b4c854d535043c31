package triage

import "time"

const (
	// DefaultIndex is the ranked index exceptions are written to when no
	// other index is configured.
	DefaultIndex = "FINANCE_QUEUE"

	// DefaultKeyPrefix prefixes the exception id to form its store key.
	DefaultKeyPrefix = "WorkflowException:"
)

// Config holds the settings shared by the queue writer and reader.
type Config struct {
	// Index is the name of the ranked index.
	Index string

	// KeyPrefix is prepended to the exception id to build the field-bag key
	// and the index member.
	KeyPrefix string

	// BatchConcurrency caps concurrent writes during a batch add.
	BatchConcurrency int

	// WriteTimeout bounds a single store write. Zero means no timeout.
	WriteTimeout time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Index:            DefaultIndex,
		KeyPrefix:        DefaultKeyPrefix,
		BatchConcurrency: 8,
	}
}
