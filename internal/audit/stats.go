package audit

import "time"

// Statistics is a single-pass aggregation over the whole log. Oldest and
// newest are nil on an empty log.
type Statistics struct {
	TotalEntries      int              `json:"totalEntries"`
	CurrentSequence   uint64           `json:"currentSequence"`
	OldestEntry       *time.Time       `json:"oldestEntry,omitempty"`
	NewestEntry       *time.Time       `json:"newestEntry,omitempty"`
	EntriesByOutcome  map[Outcome]int  `json:"entriesByOutcome"`
	EntriesBySeverity map[Severity]int `json:"entriesBySeverity"`
	EntriesByAction   map[string]int   `json:"entriesByAction"`
	UniqueActors      int              `json:"uniqueActors"`
}

func (l *Log) GetStatistics() Statistics {
	entries := l.snapshot()

	stats := Statistics{
		TotalEntries:      len(entries),
		EntriesByOutcome:  make(map[Outcome]int),
		EntriesBySeverity: make(map[Severity]int),
		EntriesByAction:   make(map[string]int),
	}

	actors := make(map[string]struct{})
	for _, entry := range entries {
		stats.CurrentSequence = entry.Sequence
		stats.EntriesByOutcome[entry.Outcome]++
		stats.EntriesBySeverity[entry.Severity]++
		stats.EntriesByAction[entry.Action]++
		actors[entry.Actor.UserID] = struct{}{}
	}
	stats.UniqueActors = len(actors)

	if len(entries) > 0 {
		oldest := entries[0].Timestamp
		newest := entries[len(entries)-1].Timestamp
		stats.OldestEntry = &oldest
		stats.NewestEntry = &newest
	}
	return stats
}
