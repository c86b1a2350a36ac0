package audit

import "fmt"

const (
	ChainErrorHashMismatch = "hash_mismatch"
	ChainErrorLinkage      = "chain_linkage"
	ChainErrorSequence     = "sequence_gap"
)

// ChainError describes one anomaly found during verification. Position is
// the 0-indexed position of the offending entry in the walk.
type ChainError struct {
	Position int    `json:"position"`
	Sequence uint64 `json:"sequence"`
	Kind     string `json:"kind"`
	Message  string `json:"message"`
}

// ChainReport is the result of a full chain verification. Integrity
// violations are reported here as values, never as errors. BrokenAt is -1
// while the chain is intact.
type ChainReport struct {
	IsValid          bool         `json:"isValid"`
	BrokenAt         int          `json:"brokenAt"`
	TotalEntries     int          `json:"totalEntries"`
	ValidatedEntries int          `json:"validatedEntries"`
	Errors           []ChainError `json:"errors,omitempty"`
}

// VerifyChain replays the whole log in ascending sequence order and
// recomputes every digest. The walk stops at the first anomaly: a hash
// mismatch at a position masks the linkage and sequence checks there, so
// the report pinpoints the first point of tampering instead of cascading
// follow-on errors.
func (l *Log) VerifyChain() ChainReport {
	entries := l.snapshot()

	report := ChainReport{
		IsValid:      true,
		BrokenAt:     -1,
		TotalEntries: len(entries),
	}

	var prev *Entry
	for i, entry := range entries {
		expected, err := computeHash(canonicalPayload(entry), l.secret)
		if err != nil {
			report.IsValid = false
			report.BrokenAt = i
			report.Errors = append(report.Errors, ChainError{
				Position: i,
				Sequence: entry.Sequence,
				Kind:     ChainErrorHashMismatch,
				Message:  fmt.Sprintf("hash recomputation failed: %v", err),
			})
			return report
		}
		if expected != entry.HashCurrent {
			report.IsValid = false
			report.BrokenAt = i
			report.Errors = append(report.Errors, ChainError{
				Position: i,
				Sequence: entry.Sequence,
				Kind:     ChainErrorHashMismatch,
				Message:  fmt.Sprintf("entry %s hash does not match its recorded content", entry.ID),
			})
			return report
		}

		if i > 0 && entry.HashPrevious != prev.HashCurrent {
			report.IsValid = false
			report.BrokenAt = i
			report.Errors = append(report.Errors, ChainError{
				Position: i,
				Sequence: entry.Sequence,
				Kind:     ChainErrorLinkage,
				Message:  fmt.Sprintf("entry %s is not chained to its predecessor", entry.ID),
			})
			return report
		}

		wantSeq := uint64(1)
		if i > 0 {
			wantSeq = prev.Sequence + 1
		}
		if entry.Sequence != wantSeq {
			report.IsValid = false
			report.BrokenAt = i
			report.Errors = append(report.Errors, ChainError{
				Position: i,
				Sequence: entry.Sequence,
				Kind:     ChainErrorSequence,
				Message:  fmt.Sprintf("expected sequence %d, got %d", wantSeq, entry.Sequence),
			})
			return report
		}

		report.ValidatedEntries++
		prev = entry
	}
	return report
}
