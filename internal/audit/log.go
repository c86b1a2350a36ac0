// Package audit implements the tamper-evident audit log: an append-only,
// HMAC-SHA256 hash-chained record of privileged administrative actions.
// Each entry's digest covers its own canonical fields plus the previous
// entry's digest, so any retroactive edit is detectable by VerifyChain.
package audit

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// AppendInput carries the caller-supplied fields of a new entry. Actor and
// resource descriptors arrive already authenticated; the log records them
// verbatim.
type AppendInput struct {
	Action   string
	Actor    Actor
	Resource Resource
	Details  map[string]any
	Outcome  Outcome  // defaults to OutcomeSuccess
	Severity Severity // defaults to SeverityMedium
}

func (in *AppendInput) validate() error {
	if strings.TrimSpace(in.Action) == "" {
		return ErrActionEmpty
	}
	if in.Actor.UserID == "" {
		return ErrActorUserIDEmpty
	}
	if in.Actor.Email == "" {
		return ErrActorEmailEmpty
	}
	if in.Resource.Type == "" {
		return ErrResourceTypeEmpty
	}
	if in.Resource.ID == "" {
		return ErrResourceIDEmpty
	}
	if in.Outcome == "" {
		in.Outcome = OutcomeSuccess
	} else if !in.Outcome.Valid() {
		return ErrInvalidOutcome
	}
	if in.Severity == "" {
		in.Severity = SeverityMedium
	} else if !in.Severity.Valid() {
		return ErrInvalidSeverity
	}
	return nil
}

// Log is the append-only store. It owns the entries and the sequence
// counter exclusively; a single mutex serializes the whole append critical
// section (read last hash, reserve sequence, hash, insert) so concurrent
// appends can never chain off the same predecessor. Readers take the read
// lock and return copies, observing the log entirely before or entirely
// after any append.
type Log struct {
	mu         sync.RWMutex
	secret     string
	production bool
	entries    []*Entry
	byID       map[string]*Entry
	seq        uint64
}

func NewLog(secret string, production bool) *Log {
	return &Log{
		secret:     secret,
		production: production,
		byID:       make(map[string]*Entry),
	}
}

// Append validates input, chains a new entry off the current last one and
// inserts it atomically. On any failure the log is left unchanged: no
// sequence number is consumed and no partial entry becomes visible.
func (l *Log) Append(input AppendInput) (string, error) {
	if err := input.validate(); err != nil {
		return "", err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	var hashPrevious string
	if n := len(l.entries); n > 0 {
		hashPrevious = l.entries[n-1].HashCurrent
	}

	entry := &Entry{
		ID:           uuid.NewString(),
		Timestamp:    time.Now().UTC(),
		Action:       input.Action,
		Actor:        input.Actor,
		Resource:     input.Resource,
		Details:      cloneDetails(input.Details),
		Outcome:      input.Outcome,
		Severity:     input.Severity,
		HashPrevious: hashPrevious,
		Sequence:     l.seq + 1,
	}
	entry.Actor.Roles = sortedRoles(input.Actor.Roles)

	hash, err := computeHash(canonicalPayload(entry), l.secret)
	if err != nil {
		return "", err
	}
	entry.HashCurrent = hash

	l.entries = append(l.entries, entry)
	l.byID[entry.ID] = entry
	l.seq = entry.Sequence
	return entry.ID, nil
}

// GetEntry looks up an entry by id. An unknown id is a normal outcome
// reported as ErrEntryNotFound, not a failure of the log.
func (l *Log) GetEntry(id string) (*Entry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	entry, ok := l.byID[id]
	if !ok {
		return nil, ErrEntryNotFound
	}
	return entry.clone(), nil
}

// Clear wipes all entries and restarts the sequence at zero. This is the
// only destructive transition the log allows and it is refused in
// production environments.
func (l *Log) Clear() error {
	if l.production {
		return ErrResetNotPermitted
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = nil
	l.byID = make(map[string]*Entry)
	l.seq = 0
	return nil
}

// snapshot returns a consistent copy of all entries in sequence order.
func (l *Log) snapshot() []*Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	entries := make([]*Entry, len(l.entries))
	for i, e := range l.entries {
		entries[i] = e.clone()
	}
	return entries
}
