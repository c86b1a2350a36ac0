package audit

import (
	"slices"
	"time"
)

type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
	OutcomePartial Outcome = "partial"
)

func (o Outcome) Valid() bool {
	switch o {
	case OutcomeSuccess, OutcomeFailure, OutcomePartial:
		return true
	}
	return false
}

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// Actor is the already-authenticated principal performing the action.
// The log trusts these fields verbatim; authentication is the caller's job.
type Actor struct {
	UserID    string   `json:"userId"`
	Email     string   `json:"email"`
	Roles     []string `json:"roles"`
	IPAddress string   `json:"ipAddress,omitempty"`
	DeviceID  string   `json:"deviceId,omitempty"`
}

// Resource identifies the target of the recorded action.
type Resource struct {
	Type string `json:"type"`
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// Entry is one immutable record in the hash chain. Entries are constructed
// only by Log.Append and never mutated afterwards; any field change makes
// HashCurrent unverifiable.
type Entry struct {
	ID           string         `json:"id"`
	Timestamp    time.Time      `json:"timestamp"`
	Action       string         `json:"action"`
	Actor        Actor          `json:"actor"`
	Resource     Resource       `json:"resource"`
	Details      map[string]any `json:"details,omitempty"`
	Outcome      Outcome        `json:"outcome"`
	Severity     Severity       `json:"severity"`
	HashPrevious string         `json:"hashPrevious,omitempty"` // empty for the first entry
	HashCurrent  string         `json:"hashCurrent"`
	Sequence     uint64         `json:"sequence"`
}

func (e *Entry) clone() *Entry {
	cp := *e
	cp.Actor.Roles = slices.Clone(e.Actor.Roles)
	cp.Details = cloneDetails(e.Details)
	return &cp
}

// cloneDetails deep-copies a details map. Nested maps and slices must not
// stay aliased between the stored entry, the caller's input and returned
// copies, or a reader could mutate the log through them.
func cloneDetails(details map[string]any) map[string]any {
	if details == nil {
		return nil
	}
	cloned := make(map[string]any, len(details))
	for key, value := range details {
		cloned[key] = cloneDetailValue(value)
	}
	return cloned
}

func cloneDetailValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		return cloneDetails(v)
	case []any:
		cloned := make([]any, len(v))
		for i, elem := range v {
			cloned[i] = cloneDetailValue(elem)
		}
		return cloned
	default:
		return v
	}
}
