package models

// TeamMarks is a team's aggregated evaluation for one round, derived on
// demand from the submitted score sheets.
type TeamMarks struct {
	TeamID     int              `json:"team_id"`
	JudgeCount int              `json:"judge_count"`
	Criteria   []CriterionScore `json:"criteria"`
	Total      float64          `json:"total"`
}

// RoundMarks pairs both teams' aggregates for a round. A nil side means that
// team has not received any score sheet yet.
type RoundMarks struct {
	Team1 *TeamMarks `json:"team1,omitempty"`
	Team2 *TeamMarks `json:"team2,omitempty"`
}

// Complete reports whether both paired teams have a computable aggregate,
// the guard for entering winner selection.
func (m *RoundMarks) Complete() bool {
	return m != nil && m.Team1 != nil && m.Team2 != nil
}
