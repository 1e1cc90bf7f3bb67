package models

import (
	"fmt"
	"time"
)

type CriterionScore struct {
	Criterion string  `json:"criterion"`
	Points    float64 `json:"points"`
}

// ScoreSheet is one judge's evaluation of one team in one round.
// The total is never stored: it is always recomputed from the criteria.
type ScoreSheet struct {
	ID        int              `json:"id" db:"id"`
	RoundID   int              `json:"round_id" db:"round_id"`
	TeamID    int              `json:"team_id" db:"team_id"`
	JudgeID   int              `json:"judge_id" db:"judge_id"`
	Scores    []CriterionScore `json:"scores" db:"scores"`
	Comments  *string          `json:"overall_comments,omitempty" db:"comments"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
}

func (s *ScoreSheet) Total() float64 {
	var total float64
	for _, cs := range s.Scores {
		total += cs.Points
	}
	return total
}

// Validate checks the sheet against the configured marking criteria: every
// criterion scored exactly once, every score within [0, max_points].
func (s *ScoreSheet) Validate() error {
	seen := make(map[string]bool, len(s.Scores))
	for _, cs := range s.Scores {
		criterion, ok := CriterionByKey(cs.Criterion)
		if !ok {
			return fmt.Errorf("unknown marking criterion %q", cs.Criterion)
		}
		if seen[cs.Criterion] {
			return fmt.Errorf("criterion %q scored more than once", cs.Criterion)
		}
		seen[cs.Criterion] = true
		if cs.Points < 0 || cs.Points > criterion.MaxPoints {
			return fmt.Errorf("criterion %q score %.2f out of range [0, %.0f]",
				cs.Criterion, cs.Points, criterion.MaxPoints)
		}
	}
	if len(seen) != len(MarkingCriteria) {
		for _, c := range MarkingCriteria {
			if !seen[c.Key] {
				return fmt.Errorf("criterion %q is missing", c.Key)
			}
		}
	}
	return nil
}
