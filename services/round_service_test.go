package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hirusha02/mootcourt-system/models"
)

type roundServiceFixture struct {
	svc    *roundService
	rounds *fakeRoundRepo
	teams  *fakeTeamRepo
	users  *fakeUserRepo
	sheets *fakeSheetRepo
	now    time.Time
}

func newRoundServiceFixture(t *testing.T) *roundServiceFixture {
	t.Helper()

	teams := newFakeTeamRepo(
		&models.Team{ID: 1, TeamCode: "T01"},
		&models.Team{ID: 2, TeamCode: "T02"},
		&models.Team{ID: 3, TeamCode: "T03"},
		&models.Team{ID: 4, TeamCode: "T04"},
	)
	users := newFakeUserRepo(
		&models.User{ID: 100, Name: "Judge Holden", Email: "judge@example.com", Role: models.RoleJury},
		&models.User{ID: 200, Name: "Ops", Email: "ops@example.com", Role: models.RoleAdmin},
	)
	rounds := newFakeRoundRepo()
	sheets := newFakeSheetRepo()
	logger := discardLogger()

	scoring := NewScoringService(sheets)
	eligibility := NewEligibilityService(models.DefaultStages, teams, rounds, logger)
	svc := NewRoundService(models.DefaultStages, rounds, teams, users, scoring, eligibility, nil, logger).(*roundService)

	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	return &roundServiceFixture{
		svc:    svc,
		rounds: rounds,
		teams:  teams,
		users:  users,
		sheets: sheets,
		now:    now,
	}
}

func (f *roundServiceFixture) validInput() CreateRoundInput {
	return CreateRoundInput{
		Stage:           "Prelims",
		Team1ID:         intPtr(1),
		Team2ID:         intPtr(2),
		ScheduledAt:     f.now.Add(time.Hour),
		DurationMinutes: 90,
		LocationMode:    models.LocationOffline,
		Venue:           strPtr("Moot Court Hall A"),
		JudgeID:         intPtr(100),
	}
}

func (f *roundServiceFixture) markTeam(t *testing.T, roundID, teamID, judgeID int, scale float64) {
	t.Helper()
	require.NoError(t, f.sheets.Create(context.Background(), &models.ScoreSheet{
		RoundID: roundID, TeamID: teamID, JudgeID: judgeID, Scores: scaledScores(scale),
	}))
}

func TestCreateRoundValidation(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		mutate  func(*CreateRoundInput)
		wantErr error
	}{
		{
			name:    "unknown stage",
			mutate:  func(in *CreateRoundInput) { in.Stage = "Playoffs" },
			wantErr: ErrRoundStageInvalid,
		},
		{
			name:    "missing team",
			mutate:  func(in *CreateRoundInput) { in.Team2ID = nil },
			wantErr: ErrRoundTeamsRequired,
		},
		{
			name:    "team paired against itself",
			mutate:  func(in *CreateRoundInput) { in.Team2ID = intPtr(1) },
			wantErr: ErrRoundSameTeam,
		},
		{
			name:    "zero duration",
			mutate:  func(in *CreateRoundInput) { in.DurationMinutes = 0 },
			wantErr: ErrRoundScheduleRequired,
		},
		{
			name:    "offline without venue",
			mutate:  func(in *CreateRoundInput) { in.Venue = nil },
			wantErr: ErrRoundVenueRequired,
		},
		{
			name: "online without meet url",
			mutate: func(in *CreateRoundInput) {
				in.LocationMode = models.LocationOnline
				in.MeetURL = nil
			},
			wantErr: ErrRoundMeetURLRequired,
		},
		{
			name:    "bad location mode",
			mutate:  func(in *CreateRoundInput) { in.LocationMode = "hybrid" },
			wantErr: ErrRoundLocationModeInvalid,
		},
		{
			name:    "unknown judge",
			mutate:  func(in *CreateRoundInput) { in.JudgeID = intPtr(999) },
			wantErr: ErrJudgeNotFound,
		},
		{
			name:    "admin cannot be assigned as judge",
			mutate:  func(in *CreateRoundInput) { in.JudgeID = intPtr(200) },
			wantErr: ErrJudgeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newRoundServiceFixture(t)
			input := f.validInput()
			tt.mutate(&input)

			_, err := f.svc.CreateRound(ctx, input)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCreateRound(t *testing.T) {
	ctx := context.Background()

	t.Run("success advances team stage markers", func(t *testing.T) {
		f := newRoundServiceFixture(t)

		round, err := f.svc.CreateRound(ctx, f.validInput())
		require.NoError(t, err)
		assert.Equal(t, models.RoundStatusScheduled, round.Status)
		require.NotNil(t, round.Team1)
		assert.Equal(t, "T01", round.Team1.TeamCode)

		team1, err := f.teams.GetByID(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, models.Stage("Prelims"), team1.CurrentStage)
	})

	t.Run("double booking a team rejected", func(t *testing.T) {
		f := newRoundServiceFixture(t)
		_, err := f.svc.CreateRound(ctx, f.validInput())
		require.NoError(t, err)

		input := f.validInput()
		input.Team1ID = intPtr(1)
		input.Team2ID = intPtr(3)
		_, err = f.svc.CreateRound(ctx, input)
		assert.ErrorIs(t, err, ErrTeamNotEligible)
	})

	t.Run("team that never won prior stage rejected", func(t *testing.T) {
		f := newRoundServiceFixture(t)
		_, err := f.svc.CreateRound(ctx, f.validInput())
		require.NoError(t, err)

		input := f.validInput()
		input.Stage = "Quarter-Finals"
		input.Team1ID = intPtr(3)
		input.Team2ID = intPtr(4)
		_, err = f.svc.CreateRound(ctx, input)
		assert.ErrorIs(t, err, ErrTeamNotEligible)
	})
}

func TestUpdateRound(t *testing.T) {
	ctx := context.Background()

	t.Run("patches only the provided fields", func(t *testing.T) {
		f := newRoundServiceFixture(t)
		round, err := f.svc.CreateRound(ctx, f.validInput())
		require.NoError(t, err)

		updated, err := f.svc.UpdateRound(ctx, round.ID, UpdateRoundInput{
			DurationMinutes: intPtr(120),
		})
		require.NoError(t, err)
		assert.Equal(t, 120, updated.DurationMinutes)
		assert.Equal(t, round.ScheduledAt, updated.ScheduledAt)
		assert.Equal(t, strPtr("Moot Court Hall A"), updated.Venue)
	})

	t.Run("decided round cannot be rescheduled", func(t *testing.T) {
		f := newRoundServiceFixture(t)
		round, err := f.svc.CreateRound(ctx, f.validInput())
		require.NoError(t, err)

		f.markTeam(t, round.ID, 1, 100, 0.7)
		f.markTeam(t, round.ID, 2, 100, 0.655)
		_, err = f.svc.SelectWinner(ctx, round.ID, 1)
		require.NoError(t, err)

		_, err = f.svc.UpdateRound(ctx, round.ID, UpdateRoundInput{DurationMinutes: intPtr(60)})
		assert.ErrorIs(t, err, ErrRoundAlreadyDecided)
	})

	t.Run("missing round", func(t *testing.T) {
		f := newRoundServiceFixture(t)
		_, err := f.svc.UpdateRound(ctx, 42, UpdateRoundInput{})
		assert.ErrorIs(t, err, ErrRoundNotFound)
	})
}

func TestSelectWinner(t *testing.T) {
	ctx := context.Background()

	t.Run("marks incomplete blocks the decision", func(t *testing.T) {
		f := newRoundServiceFixture(t)
		round, err := f.svc.CreateRound(ctx, f.validInput())
		require.NoError(t, err)

		// Only one side evaluated.
		f.markTeam(t, round.ID, 1, 100, 0.7)

		_, err = f.svc.SelectWinner(ctx, round.ID, 1)
		assert.ErrorIs(t, err, ErrMarksIncomplete)
	})

	t.Run("decides once both sides have marks", func(t *testing.T) {
		f := newRoundServiceFixture(t)
		round, err := f.svc.CreateRound(ctx, f.validInput())
		require.NoError(t, err)

		f.markTeam(t, round.ID, 1, 100, 0.7)
		f.markTeam(t, round.ID, 2, 100, 0.655)

		decided, err := f.svc.SelectWinner(ctx, round.ID, 1)
		require.NoError(t, err)
		assert.Equal(t, models.RoundStatusDecided, decided.Status)
		require.NotNil(t, decided.WinnerID)
		assert.Equal(t, 1, *decided.WinnerID)
		require.True(t, decided.Marks.Complete())
		assert.InDelta(t, 70.0, decided.Marks.Team1.Total, 1e-9)
		assert.InDelta(t, 65.5, decided.Marks.Team2.Total, 1e-9)
	})

	t.Run("winner must be a paired team", func(t *testing.T) {
		f := newRoundServiceFixture(t)
		round, err := f.svc.CreateRound(ctx, f.validInput())
		require.NoError(t, err)

		_, err = f.svc.SelectWinner(ctx, round.ID, 3)
		assert.ErrorIs(t, err, ErrWinnerInvalidTeam)
	})

	t.Run("retry with the committed winner is idempotent", func(t *testing.T) {
		f := newRoundServiceFixture(t)
		round, err := f.svc.CreateRound(ctx, f.validInput())
		require.NoError(t, err)
		f.markTeam(t, round.ID, 1, 100, 0.7)
		f.markTeam(t, round.ID, 2, 100, 0.655)

		_, err = f.svc.SelectWinner(ctx, round.ID, 1)
		require.NoError(t, err)

		again, err := f.svc.SelectWinner(ctx, round.ID, 1)
		require.NoError(t, err)
		assert.Equal(t, 1, *again.WinnerID)
	})

	t.Run("different winner after the decision is rejected", func(t *testing.T) {
		f := newRoundServiceFixture(t)
		round, err := f.svc.CreateRound(ctx, f.validInput())
		require.NoError(t, err)
		f.markTeam(t, round.ID, 1, 100, 0.7)
		f.markTeam(t, round.ID, 2, 100, 0.655)

		_, err = f.svc.SelectWinner(ctx, round.ID, 1)
		require.NoError(t, err)

		_, err = f.svc.SelectWinner(ctx, round.ID, 2)
		assert.ErrorIs(t, err, ErrRoundAlreadyDecided)
	})

	t.Run("missing round", func(t *testing.T) {
		f := newRoundServiceFixture(t)
		_, err := f.svc.SelectWinner(ctx, 42, 1)
		assert.ErrorIs(t, err, ErrRoundNotFound)
	})
}

func TestSelectWinnerConcurrent(t *testing.T) {
	ctx := context.Background()
	f := newRoundServiceFixture(t)
	round, err := f.svc.CreateRound(ctx, f.validInput())
	require.NoError(t, err)
	f.markTeam(t, round.ID, 1, 100, 0.7)
	f.markTeam(t, round.ID, 2, 100, 0.655)

	const attempts = 16
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		i := i
		winner := 1 + i%2
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = f.svc.SelectWinner(ctx, round.ID, winner)
		}()
	}
	wg.Wait()

	// Exactly one winner is persisted; every caller saw either that winner
	// or the already-decided rejection.
	final, err := f.rounds.GetByID(ctx, round.ID)
	require.NoError(t, err)
	require.NotNil(t, final.WinnerID)
	committed := *final.WinnerID

	for i, callErr := range errs {
		attemptedWinner := 1 + i%2
		if attemptedWinner == committed {
			assert.NoError(t, callErr)
		} else {
			assert.ErrorIs(t, callErr, ErrRoundAlreadyDecided)
		}
	}
}

func TestMissingMarks(t *testing.T) {
	ctx := context.Background()
	f := newRoundServiceFixture(t)

	// Elapsed round with one unevaluated team.
	elapsed := f.validInput()
	elapsed.ScheduledAt = f.now.Add(-3 * time.Hour)
	round1, err := f.svc.CreateRound(ctx, elapsed)
	require.NoError(t, err)
	f.markTeam(t, round1.ID, 1, 100, 0.7)

	// Round still inside its window, nobody evaluated yet.
	ongoing := f.validInput()
	ongoing.Team1ID = intPtr(3)
	ongoing.Team2ID = intPtr(4)
	ongoing.ScheduledAt = f.now.Add(-10 * time.Minute)
	_, err = f.svc.CreateRound(ctx, ongoing)
	require.NoError(t, err)

	missing, err := f.svc.MissingMarks(ctx, nil)
	require.NoError(t, err)
	require.Len(t, missing, 1)
	assert.Equal(t, round1.ID, missing[0].RoundID)
	assert.Equal(t, []int{2}, missing[0].MissingTeamIDs)

	t.Run("scoped to a judge", func(t *testing.T) {
		otherJudge := intPtr(999)
		missing, err := f.svc.MissingMarks(ctx, otherJudge)
		require.NoError(t, err)
		assert.Empty(t, missing)

		missing, err = f.svc.MissingMarks(ctx, intPtr(100))
		require.NoError(t, err)
		assert.Len(t, missing, 1)
	})
}
