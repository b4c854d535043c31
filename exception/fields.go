package exception

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xraph/triage"
)

// Field names of the persisted field-bag.
const (
	FieldItemNumber    = "ItemNumber"
	FieldDaysInQueue   = "DaysInQueue"
	FieldOrderPriority = "OrderPriority"
	FieldNeedByDate    = "NeedByDate"
	FieldTags          = "tags"
)

// DateLayout is the canonical text form of NeedByDate: an ISO-8601 local
// date-time without zone.
const DateLayout = "2006-01-02T15:04:05"

// Entry is the persisted form of an exception: the store key, its text
// field-bag and the score it is ranked by.
type Entry struct {
	Key    string
	Fields map[string]string
	Score  float64
}

// Fields encodes the exception into its field-bag. All values are text.
func (e *Exception) Fields() map[string]string {
	m := map[string]string{
		FieldItemNumber:    "",
		FieldDaysInQueue:   strconv.Itoa(e.daysInQueue),
		FieldOrderPriority: e.priority.String(),
		FieldNeedByDate:    "",
		FieldTags:          strings.Join(e.tags, TagSeparator),
	}
	if e.hasItemNumber {
		m[FieldItemNumber] = strconv.FormatInt(e.itemNumber, 10)
	}
	if !e.needByDate.IsZero() {
		m[FieldNeedByDate] = e.needByDate.Format(DateLayout)
	}
	return m
}

// FromFields rebuilds an exception from a persisted field-bag, applying the
// same validation as the setters.
func FromFields(id int64, m map[string]string) (*Exception, error) {
	e := New(id)

	if v := m[FieldItemNumber]; v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: item number %q", triage.ErrInvalidArgument, v)
		}
		e.SetItemNumber(n)
	}
	if v := m[FieldDaysInQueue]; v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("%w: days in queue %q", triage.ErrInvalidArgument, v)
		}
		if err := e.SetDaysInQueue(n); err != nil {
			return nil, err
		}
	}
	if err := e.SetPriority(m[FieldOrderPriority]); err != nil {
		return nil, err
	}
	if v := m[FieldNeedByDate]; v != "" {
		t, err := ParseDate(v)
		if err != nil {
			return nil, err
		}
		e.SetNeedByDate(t)
	}
	if v := m[FieldTags]; v != "" {
		e.tags = strings.Split(v, TagSeparator)
	}
	return e, nil
}

// ParseDate parses a NeedByDate in DateLayout, falling back to RFC 3339 and
// a bare date.
func ParseDate(s string) (time.Time, error) {
	for _, layout := range []string{DateLayout, time.RFC3339Nano, time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: need-by date %q", triage.ErrInvalidArgument, s)
}
