package audit

import (
	"log/slog"
	"strings"
	"time"

	"github.com/exchora/auditchain/params"
)

// SearchFilter narrows a search. All fields are optional and combined with
// AND. FromDate/ToDate are RFC 3339 strings as received from the wire;
// malformed values degrade to the filter being absent rather than failing
// the whole query.
type SearchFilter struct {
	UserID       string
	Action       string // case-insensitive substring match
	ResourceType string
	ResourceID   string
	FromDate     string // inclusive, RFC 3339
	ToDate       string // inclusive, RFC 3339
	Outcome      string
	Severity     string
	Offset       int
	Limit        int // defaults to params.SearchDefaultLimit, capped at params.SearchMaxLimit
}

// Search returns matching entries in ascending sequence order, sliced by
// offset/limit. It never fails on malformed filters: bad values are logged
// and skipped, out-of-range offsets yield an empty result.
func (l *Log) Search(filter SearchFilter) []*Entry {
	match := filter.compile()

	var results []*Entry
	for _, entry := range l.snapshot() {
		if match(entry) {
			results = append(results, entry)
		}
	}

	offset, limit := filter.EffectivePage()
	if offset >= len(results) {
		return []*Entry{}
	}
	end := offset + limit
	if end > len(results) {
		end = len(results)
	}
	return results[offset:end]
}

// EffectivePage returns the offset and limit Search actually applies:
// negative offsets become zero, omitted or oversized limits fall back to
// the default page size, which is also the hard cap.
func (f SearchFilter) EffectivePage() (offset, limit int) {
	offset = f.Offset
	if offset < 0 {
		offset = 0
	}
	limit = f.Limit
	if limit <= 0 || limit > params.SearchMaxLimit {
		limit = params.SearchDefaultLimit
	}
	return offset, limit
}

func (f *SearchFilter) compile() func(*Entry) bool {
	var preds []func(*Entry) bool

	if f.UserID != "" {
		userID := f.UserID
		preds = append(preds, func(e *Entry) bool { return e.Actor.UserID == userID })
	}
	if f.Action != "" {
		action := strings.ToLower(f.Action)
		preds = append(preds, func(e *Entry) bool {
			return strings.Contains(strings.ToLower(e.Action), action)
		})
	}
	if f.ResourceType != "" {
		resourceType := f.ResourceType
		preds = append(preds, func(e *Entry) bool { return e.Resource.Type == resourceType })
	}
	if f.ResourceID != "" {
		resourceID := f.ResourceID
		preds = append(preds, func(e *Entry) bool { return e.Resource.ID == resourceID })
	}
	if from, ok := parseFilterDate("fromDate", f.FromDate); ok {
		preds = append(preds, func(e *Entry) bool { return !e.Timestamp.Before(from) })
	}
	if to, ok := parseFilterDate("toDate", f.ToDate); ok {
		preds = append(preds, func(e *Entry) bool { return !e.Timestamp.After(to) })
	}
	if outcome, ok := parseFilterOutcome(f.Outcome); ok {
		preds = append(preds, func(e *Entry) bool { return e.Outcome == outcome })
	}
	if severity, ok := parseFilterSeverity(f.Severity); ok {
		preds = append(preds, func(e *Entry) bool { return e.Severity == severity })
	}

	return func(e *Entry) bool {
		for _, pred := range preds {
			if !pred(e) {
				return false
			}
		}
		return true
	}
}

func parseFilterDate(name, value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		slog.Warn("Ignoring malformed audit search date filter", "filter", name, "value", value, "error", err)
		return time.Time{}, false
	}
	return t, true
}

func parseFilterOutcome(value string) (Outcome, bool) {
	if value == "" {
		return "", false
	}
	outcome := Outcome(value)
	if !outcome.Valid() {
		slog.Warn("Ignoring unknown audit search outcome filter", "value", value)
		return "", false
	}
	return outcome, true
}

func parseFilterSeverity(value string) (Severity, bool) {
	if value == "" {
		return "", false
	}
	severity := Severity(value)
	if !severity.Valid() {
		slog.Warn("Ignoring unknown audit search severity filter", "value", value)
		return "", false
	}
	return severity, true
}
