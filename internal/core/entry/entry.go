// Package entry contains the pure business logic for to-do entries.
// Nothing in this package performs I/O; adapters and services build on it.
package entry

import "fmt"

// Status is the lifecycle state of an entry.
type Status int

const (
	StatusToDo Status = iota
	StatusInProgress
	StatusDone
)

// String returns the snake_case spelling used on the wire and in storage.
func (s Status) String() string {
	switch s {
	case StatusToDo:
		return "to_do"
	case StatusInProgress:
		return "in_progress"
	case StatusDone:
		return "done"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Valid reports whether s is one of the declared statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusToDo, StatusInProgress, StatusDone:
		return true
	default:
		return false
	}
}

// ParseStatus converts a wire spelling into a Status.
func ParseStatus(s string) (Status, error) {
	switch s {
	case "to_do":
		return StatusToDo, nil
	case "in_progress":
		return StatusInProgress, nil
	case "done":
		return StatusDone, nil
	default:
		return 0, fmt.Errorf("unknown status %q (valid: to_do, in_progress, done)", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("cannot marshal %s", s)
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(text []byte) error {
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Priority ranks an entry. PriorityNone is the default.
type Priority int

const (
	PriorityNone Priority = iota
	PriorityLow
	PriorityMedium
	PriorityHigh
)

func (p Priority) String() string {
	switch p {
	case PriorityNone:
		return "none"
	case PriorityLow:
		return "low"
	case PriorityMedium:
		return "medium"
	case PriorityHigh:
		return "high"
	default:
		return fmt.Sprintf("priority(%d)", int(p))
	}
}

// Valid reports whether p is one of the declared priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityNone, PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

// ParsePriority converts a wire spelling into a Priority.
func ParsePriority(s string) (Priority, error) {
	switch s {
	case "none":
		return PriorityNone, nil
	case "low":
		return PriorityLow, nil
	case "medium":
		return PriorityMedium, nil
	case "high":
		return PriorityHigh, nil
	default:
		return 0, fmt.Errorf("unknown priority %q (valid: none, low, medium, high)", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (p Priority) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("cannot marshal %s", p)
	}
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Priority) UnmarshalText(text []byte) error {
	parsed, err := ParsePriority(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Entry is a single owner-scoped to-do record.
// ID is assigned at creation and never changes; Owner is never changed by updates.
type Entry struct {
	ID          uint64   `json:"id"`
	Description string   `json:"description"`
	Status      Status   `json:"status"`
	Priority    Priority `json:"priority"`
	Owner       string   `json:"owner"`
}

// New builds a freshly created entry: status to_do, priority defaulting to none.
func New(id uint64, description string, priority *Priority, owner string) *Entry {
	p := PriorityNone
	if priority != nil {
		p = *priority
	}
	return &Entry{
		ID:          id,
		Description: description,
		Status:      StatusToDo,
		Priority:    p,
		Owner:       owner,
	}
}

// Clone returns a copy of e.
func (e *Entry) Clone() *Entry {
	c := *e
	return &c
}
