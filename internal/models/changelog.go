package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TimestampLayout formats change-log timestamps.
const TimestampLayout = "2006-01-02 15:04:05"

// ChangeKind is the action recorded by a change-log entry.
type ChangeKind int

const (
	ChangeAdded ChangeKind = iota
	ChangeModified
	ChangeDeleted
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeAdded:
		return "ADDED"
	case ChangeModified:
		return "MODIFIED"
	case ChangeDeleted:
		return "DELETED"
	default:
		return "UNKNOWN"
	}
}

// ErrIncompleteChange is returned when an entry lacks the snapshot its kind needs.
var ErrIncompleteChange = errors.New("change is missing a product snapshot")

// ChangeLogEntry is one immutable audit record.
type ChangeLogEntry struct {
	Time         time.Time       `json:"time"`
	Kind         ChangeKind      `json:"-"`
	Action       string          `json:"action"`
	Name         string          `json:"name"`
	ID           string          `json:"id"`
	Quantity     int             `json:"quantity"`
	Price        decimal.Decimal `json:"price"`
	PreviousID   string          `json:"previous_id,omitempty"`
	PreviousName string          `json:"previous_name,omitempty"`
}

// NewChangeLogEntry builds the entry for kind. Added needs after, Deleted needs
// before and Modified needs both.
func NewChangeLogEntry(kind ChangeKind, before, after *Product, at time.Time) (ChangeLogEntry, error) {
	var subject *Product
	switch kind {
	case ChangeAdded:
		subject = after
	case ChangeDeleted:
		subject = before
	case ChangeModified:
		if before != nil {
			subject = after
		}
	default:
		return ChangeLogEntry{}, fmt.Errorf("unknown change kind %d", int(kind))
	}
	if subject == nil {
		return ChangeLogEntry{}, fmt.Errorf("%s: %w", kind, ErrIncompleteChange)
	}

	entry := ChangeLogEntry{
		Time:     at,
		Kind:     kind,
		Action:   kind.String(),
		Name:     subject.Name,
		ID:       subject.ID,
		Quantity: subject.Quantity,
		Price:    subject.Price,
	}
	if kind == ChangeModified {
		entry.PreviousID = before.ID
		entry.PreviousName = before.Name
	}
	return entry, nil
}

// Line renders the entry the way it is stored in the change log, without the
// trailing newline.
func (e ChangeLogEntry) Line() string {
	ts := e.Time.Format(TimestampLayout)
	if e.Kind == ChangeModified {
		return fmt.Sprintf("[%s] %s: %s (ID: %s)", ts, e.Kind, e.Name, e.ID)
	}
	return fmt.Sprintf("[%s] %s: %s (ID: %s, Qty: %d, Price: %s)",
		ts, e.Kind, e.Name, e.ID, e.Quantity, e.Price.StringFixed(2))
}
