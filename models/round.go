package models

import "time"

// RoundStatus is derived on every read, never persisted. The only stored
// state a status depends on besides the schedule is winner_id.
type RoundStatus string

const (
	RoundStatusScheduled  RoundStatus = "scheduled"
	RoundStatusOngoing    RoundStatus = "ongoing"
	RoundStatusEvaluating RoundStatus = "evaluating"
	RoundStatusDecided    RoundStatus = "decided"
)

type LocationMode string

const (
	LocationOffline LocationMode = "offline"
	LocationOnline  LocationMode = "online"
)

// Round is one scheduled contest between two teams at one bracket stage.
type Round struct {
	ID              int          `json:"id" db:"id"`
	Stage           Stage        `json:"stage" db:"stage"`
	Team1ID         *int         `json:"team1,omitempty" db:"team1_id"`
	Team2ID         *int         `json:"team2,omitempty" db:"team2_id"`
	ScheduledAt     time.Time    `json:"scheduled_at" db:"scheduled_at"`
	DurationMinutes int          `json:"duration_in_minutes" db:"duration_minutes"`
	LocationMode    LocationMode `json:"location_mode" db:"location_mode"`
	Venue           *string      `json:"venue,omitempty" db:"venue"`
	MeetURL         *string      `json:"meet_url,omitempty" db:"meet_url"`
	JudgeID         *int         `json:"judge_id,omitempty" db:"judge_id"`
	WinnerID        *int         `json:"winner,omitempty" db:"winner_id"`
	CreatedAt       time.Time    `json:"created_at" db:"created_at"`

	Team1  *Team `json:"team1_details,omitempty" db:"-"`
	Team2  *Team `json:"team2_details,omitempty" db:"-"`
	Winner *Team `json:"winner_details,omitempty" db:"-"`
	Judge  *User `json:"judge,omitempty" db:"-"`

	Status RoundStatus `json:"status,omitempty" db:"-"`
	Marks  *RoundMarks `json:"marks,omitempty" db:"-"`
}

func (r *Round) Window() (start, end time.Time) {
	return r.ScheduledAt, r.ScheduledAt.Add(time.Duration(r.DurationMinutes) * time.Minute)
}

// HasTeam reports whether teamID is one of the round's paired teams.
func (r *Round) HasTeam(teamID int) bool {
	if r.Team1ID != nil && *r.Team1ID == teamID {
		return true
	}
	if r.Team2ID != nil && *r.Team2ID == teamID {
		return true
	}
	return false
}

// DeriveRoundStatus is the single status derivation for a round. It is a pure
// function of its inputs so the same round never reports two different phases
// for the same wall-clock instant:
//
//   - a committed winner is terminal (decided),
//   - submitted marks pull the round into evaluating even inside the window,
//   - otherwise the schedule window alone decides scheduled/ongoing/evaluating.
func DeriveRoundStatus(now, scheduledAt time.Time, duration time.Duration, winnerSet, marksPresent bool) RoundStatus {
	if winnerSet {
		return RoundStatusDecided
	}
	if marksPresent {
		return RoundStatusEvaluating
	}
	if now.Before(scheduledAt) {
		return RoundStatusScheduled
	}
	if now.Before(scheduledAt.Add(duration)) {
		return RoundStatusOngoing
	}
	return RoundStatusEvaluating
}
