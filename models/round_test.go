package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDeriveRoundStatus(t *testing.T) {
	scheduled := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	duration := 90 * time.Minute

	tests := []struct {
		name         string
		now          time.Time
		winnerSet    bool
		marksPresent bool
		want         RoundStatus
	}{
		{
			name: "before window",
			now:  scheduled.Add(-time.Hour),
			want: RoundStatusScheduled,
		},
		{
			name: "at window start",
			now:  scheduled,
			want: RoundStatusOngoing,
		},
		{
			name: "inside window",
			now:  scheduled.Add(45 * time.Minute),
			want: RoundStatusOngoing,
		},
		{
			name: "at window end",
			now:  scheduled.Add(duration),
			want: RoundStatusEvaluating,
		},
		{
			name: "after window",
			now:  scheduled.Add(3 * time.Hour),
			want: RoundStatusEvaluating,
		},
		{
			name:         "marks pull round into evaluating inside window",
			now:          scheduled.Add(10 * time.Minute),
			marksPresent: true,
			want:         RoundStatusEvaluating,
		},
		{
			name:         "marks before window start",
			now:          scheduled.Add(-time.Hour),
			marksPresent: true,
			want:         RoundStatusEvaluating,
		},
		{
			name:      "winner is terminal regardless of clock",
			now:       scheduled.Add(-time.Hour),
			winnerSet: true,
			want:      RoundStatusDecided,
		},
		{
			name:         "winner beats marks",
			now:          scheduled.Add(time.Hour),
			winnerSet:    true,
			marksPresent: true,
			want:         RoundStatusDecided,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveRoundStatus(tt.now, scheduled, duration, tt.winnerSet, tt.marksPresent)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDeriveRoundStatusIsPure(t *testing.T) {
	scheduled := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	now := scheduled.Add(30 * time.Minute)

	first := DeriveRoundStatus(now, scheduled, time.Hour, false, false)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, DeriveRoundStatus(now, scheduled, time.Hour, false, false))
	}
}

func TestRoundWindow(t *testing.T) {
	scheduled := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	round := &Round{ScheduledAt: scheduled, DurationMinutes: 90}

	start, end := round.Window()
	assert.Equal(t, scheduled, start)
	assert.Equal(t, scheduled.Add(90*time.Minute), end)
}

func TestRoundHasTeam(t *testing.T) {
	team1, team2 := 7, 9
	round := &Round{Team1ID: &team1, Team2ID: &team2}

	assert.True(t, round.HasTeam(7))
	assert.True(t, round.HasTeam(9))
	assert.False(t, round.HasTeam(8))

	empty := &Round{}
	assert.False(t, empty.HasTeam(7))
}
