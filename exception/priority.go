package exception

import (
	"fmt"
	"strings"

	"github.com/xraph/triage"
)

// Priority is the order priority of an exception.
type Priority int

const (
	// PriorityNone means no priority has been assigned.
	PriorityNone Priority = iota
	// PriorityLow is the lowest assignable priority.
	PriorityLow
	// PriorityMedium is the default business priority.
	PriorityMedium
	// PriorityHigh is for items that should surface ahead of normal work.
	PriorityHigh
	// PriorityUrgent is the highest assignable priority.
	PriorityUrgent
)

var priorityNames = map[Priority]string{
	PriorityLow:    "LOW",
	PriorityMedium: "MEDIUM",
	PriorityHigh:   "HIGH",
	PriorityUrgent: "URGENT",
}

// Priorities lists every assignable priority from lowest to highest.
func Priorities() []Priority {
	return []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}
}

// String returns the upper-case name, or "" for PriorityNone.
func (p Priority) String() string {
	return priorityNames[p]
}

// ParsePriority matches s case-insensitively against the priority names.
// Surrounding whitespace is not trimmed. An empty string yields PriorityNone.
func ParsePriority(s string) (Priority, error) {
	if s == "" {
		return PriorityNone, nil
	}
	upper := strings.ToUpper(s)
	for p, name := range priorityNames {
		if name == upper {
			return p, nil
		}
	}
	return PriorityNone, fmt.Errorf("%w: order priority %q", triage.ErrInvalidArgument, s)
}
