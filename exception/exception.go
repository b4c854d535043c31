// Package exception defines the workflow exception record and its persisted
// field-bag form.
package exception

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/xraph/triage"
)

// TagSeparator joins tags in the persisted field-bag. Tags may not contain it.
const TagSeparator = ","

// Exception is one queued work item awaiting prioritized handling.
//
// Setters validate their input and leave the record unchanged on error. The
// caller owns an Exception until it is handed to a queue writer, which only
// reads it.
type Exception struct {
	id    int64
	hasID bool

	itemNumber    int64
	hasItemNumber bool

	daysInQueue int
	priority    Priority
	needByDate  time.Time
	tags        []string
}

// New returns an exception with the given id.
func New(id int64) *Exception {
	return &Exception{id: id, hasID: true}
}

// ID returns the exception id. Check HasID for presence.
func (e *Exception) ID() int64 { return e.id }

// HasID reports whether an id has been assigned.
func (e *Exception) HasID() bool { return e.hasID }

// SetID assigns the id. An id cannot be changed once set.
func (e *Exception) SetID(id int64) error {
	if e.hasID && e.id != id {
		return fmt.Errorf("%w: exception id already set to %d", triage.ErrInvalidArgument, e.id)
	}
	e.id = id
	e.hasID = true
	return nil
}

// ItemNumber returns the item number. Check HasItemNumber for presence.
func (e *Exception) ItemNumber() int64 { return e.itemNumber }

// HasItemNumber reports whether an item number has been assigned.
func (e *Exception) HasItemNumber() bool { return e.hasItemNumber }

// SetItemNumber assigns the item number.
func (e *Exception) SetItemNumber(n int64) {
	e.itemNumber = n
	e.hasItemNumber = true
}

// DaysInQueue returns how many days the item has been queued.
func (e *Exception) DaysInQueue() int { return e.daysInQueue }

// SetDaysInQueue assigns the days in queue. Negative values are rejected.
func (e *Exception) SetDaysInQueue(days int) error {
	if days < 0 {
		return fmt.Errorf("%w: days in queue cannot be negative (%d)", triage.ErrInvalidArgument, days)
	}
	e.daysInQueue = days
	return nil
}

// Priority returns the assigned priority, or PriorityNone.
func (e *Exception) Priority() Priority { return e.priority }

// PriorityName returns the upper-case priority name, or "" when unset.
func (e *Exception) PriorityName() string { return e.priority.String() }

// SetPriority parses name case-insensitively. An empty name clears the
// priority; an unknown name is rejected.
func (e *Exception) SetPriority(name string) error {
	p, err := ParsePriority(name)
	if err != nil {
		return err
	}
	e.priority = p
	return nil
}

// NeedByDate returns the deadline. The zero time means unset.
func (e *Exception) NeedByDate() time.Time { return e.needByDate }

// SetNeedByDate assigns the deadline.
func (e *Exception) SetNeedByDate(t time.Time) { e.needByDate = t }

// Tags returns a copy of the tags in insertion order.
func (e *Exception) Tags() []string { return slices.Clone(e.tags) }

// SetTags replaces the tags. A tag containing TagSeparator is rejected
// because it could not be told apart from two tags once persisted.
func (e *Exception) SetTags(tags []string) error {
	for _, t := range tags {
		if strings.Contains(t, TagSeparator) {
			return fmt.Errorf("%w: tag %q contains %q", triage.ErrInvalidArgument, t, TagSeparator)
		}
	}
	e.tags = slices.Clone(tags)
	return nil
}
