package models

import "time"

type DashboardSummary struct {
	TotalTeams       int      `json:"total_teams"`
	TotalRounds      int      `json:"total_rounds"`
	DecidedRounds    int      `json:"decided_rounds"`
	EvaluatingRounds []*Round `json:"evaluating_rounds"`
	RecentWinners    []*Round `json:"recent_winners"`
}

// MissingMarks flags a round whose contest window has passed while one or
// both teams still lack a score sheet.
type MissingMarks struct {
	RoundID        int       `json:"round_id"`
	Stage          Stage     `json:"stage"`
	ScheduledAt    time.Time `json:"scheduled_at"`
	MissingTeamIDs []int     `json:"missing_team_ids"`
}
