package ingest

import (
	"fmt"

	"github.com/xraph/triage"
	"github.com/xraph/triage/exception"
)

// Message is the wire form of an exception.
type Message struct {
	ExceptionID   *int64   `json:"exceptionId"             msgpack:"exceptionId"`
	ItemNumber    *int64   `json:"itemNumber,omitempty"    msgpack:"itemNumber,omitempty"`
	DaysInQueue   *int     `json:"daysInQueue,omitempty"   msgpack:"daysInQueue,omitempty"`
	OrderPriority string   `json:"orderPriority,omitempty" msgpack:"orderPriority,omitempty"`
	NeedByDate    string   `json:"needByDate,omitempty"    msgpack:"needByDate,omitempty"`
	Tags          []string `json:"tags,omitempty"          msgpack:"tags,omitempty"`
}

// Exception builds a validated exception from m.
func (m *Message) Exception() (*exception.Exception, error) {
	if m.ExceptionID == nil {
		return nil, fmt.Errorf("%w: message has no exceptionId", triage.ErrInvalidArgument)
	}
	e := exception.New(*m.ExceptionID)

	if m.ItemNumber != nil {
		e.SetItemNumber(*m.ItemNumber)
	}
	if m.DaysInQueue != nil {
		if err := e.SetDaysInQueue(*m.DaysInQueue); err != nil {
			return nil, err
		}
	}
	if err := e.SetPriority(m.OrderPriority); err != nil {
		return nil, err
	}
	if m.NeedByDate != "" {
		t, err := exception.ParseDate(m.NeedByDate)
		if err != nil {
			return nil, err
		}
		e.SetNeedByDate(t)
	}
	if err := e.SetTags(m.Tags); err != nil {
		return nil, err
	}
	return e, nil
}

// FromException builds the wire form of e.
func FromException(e *exception.Exception) *Message {
	m := &Message{
		OrderPriority: e.PriorityName(),
		Tags:          e.Tags(),
	}
	if e.HasID() {
		id := e.ID()
		m.ExceptionID = &id
	}
	if e.HasItemNumber() {
		n := e.ItemNumber()
		m.ItemNumber = &n
	}
	days := e.DaysInQueue()
	m.DaysInQueue = &days
	if t := e.NeedByDate(); !t.IsZero() {
		m.NeedByDate = t.Format(exception.DateLayout)
	}
	return m
}
