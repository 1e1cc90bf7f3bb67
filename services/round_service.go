package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Hirusha02/mootcourt-system/live"
	"github.com/Hirusha02/mootcourt-system/models"
	"github.com/Hirusha02/mootcourt-system/repositories"
	"golang.org/x/sync/errgroup"
)

const enrichConcurrency = 4

type CreateRoundInput struct {
	Stage           models.Stage        `json:"stage"`
	Team1ID         *int                `json:"team1"`
	Team2ID         *int                `json:"team2"`
	ScheduledAt     time.Time           `json:"scheduled_at"`
	DurationMinutes int                 `json:"duration_in_minutes"`
	LocationMode    models.LocationMode `json:"location_mode"`
	Venue           *string             `json:"venue"`
	MeetURL         *string             `json:"meet_url"`
	JudgeID         *int                `json:"judge_id"`
}

// UpdateRoundInput patches scheduling fields of an existing round. Nil
// fields are left unchanged. Pairing and stage are fixed at creation.
type UpdateRoundInput struct {
	ScheduledAt     *time.Time           `json:"scheduled_at"`
	DurationMinutes *int                 `json:"duration_in_minutes"`
	LocationMode    *models.LocationMode `json:"location_mode"`
	Venue           *string              `json:"venue"`
	MeetURL         *string              `json:"meet_url"`
	JudgeID         *int                 `json:"judge_id"`
}

type ListRoundsFilter struct {
	Stage   *models.Stage
	JudgeID *int
	TeamID  *int
}

type RoundService interface {
	CreateRound(ctx context.Context, input CreateRoundInput) (*models.Round, error)
	GetRoundByID(ctx context.Context, id int) (*models.Round, error)
	ListRounds(ctx context.Context, filter ListRoundsFilter) ([]*models.Round, error)
	UpdateRound(ctx context.Context, id int, input UpdateRoundInput) (*models.Round, error)
	DeleteRound(ctx context.Context, id int) error

	// SelectWinner commits winnerTeamID as the round's winner and moves the
	// round into its terminal state. Preconditions are checked in order:
	// round exists, not already decided, winner is one of the paired teams,
	// both teams have computable marks. The commit itself is a conditional
	// update on winner_id IS NULL, so of two concurrent callers exactly one
	// wins; the loser observes ErrRoundAlreadyDecided. A retry carrying the
	// already-committed winner is treated as idempotent success.
	SelectWinner(ctx context.Context, roundID, winnerTeamID int) (*models.Round, error)

	// MissingMarks lists rounds whose contest window has elapsed while one
	// or both teams still have no score sheet, optionally narrowed to the
	// rounds assigned to one judge.
	MissingMarks(ctx context.Context, judgeID *int) ([]models.MissingMarks, error)
}

type roundService struct {
	stages      models.StageList
	roundRepo   repositories.RoundRepository
	teamRepo    repositories.TeamRepository
	userRepo    repositories.UserRepository
	scoring     ScoringService
	eligibility EligibilityService
	hub         *live.Hub
	logger      *slog.Logger
	now         func() time.Time
}

func NewRoundService(
	stages models.StageList,
	roundRepo repositories.RoundRepository,
	teamRepo repositories.TeamRepository,
	userRepo repositories.UserRepository,
	scoring ScoringService,
	eligibility EligibilityService,
	hub *live.Hub,
	logger *slog.Logger,
) RoundService {
	return &roundService{
		stages:      stages,
		roundRepo:   roundRepo,
		teamRepo:    teamRepo,
		userRepo:    userRepo,
		scoring:     scoring,
		eligibility: eligibility,
		hub:         hub,
		logger:      logger,
		now:         time.Now,
	}
}

func (s *roundService) CreateRound(ctx context.Context, input CreateRoundInput) (*models.Round, error) {
	round := &models.Round{
		Stage:           input.Stage,
		Team1ID:         input.Team1ID,
		Team2ID:         input.Team2ID,
		ScheduledAt:     input.ScheduledAt,
		DurationMinutes: input.DurationMinutes,
		LocationMode:    input.LocationMode,
		Venue:           input.Venue,
		MeetURL:         input.MeetURL,
		JudgeID:         input.JudgeID,
	}

	if err := s.validateRound(ctx, round); err != nil {
		return nil, err
	}
	if err := s.checkEligibility(ctx, round); err != nil {
		return nil, err
	}

	if err := s.roundRepo.Create(ctx, round); err != nil {
		if errors.Is(err, repositories.ErrRoundTeamInvalid) {
			return nil, ErrTeamNotFound
		}
		if errors.Is(err, repositories.ErrRoundJudgeInvalid) {
			return nil, ErrJudgeNotFound
		}
		return nil, fmt.Errorf("failed to create round: %w", err)
	}

	// The paired teams advance their roster marker to this stage.
	for _, teamID := range []*int{round.Team1ID, round.Team2ID} {
		if teamID == nil {
			continue
		}
		if err := s.teamRepo.UpdateCurrentStage(ctx, *teamID, round.Stage); err != nil {
			s.logger.Error("failed to update team current stage",
				slog.Int("team_id", *teamID), slog.Any("error", err))
		}
	}

	enriched, err := s.enrich(ctx, round)
	if err != nil {
		return nil, err
	}
	s.broadcast(live.EventRoundCreated, enriched)
	return enriched, nil
}

func (s *roundService) GetRoundByID(ctx context.Context, id int) (*models.Round, error) {
	round, err := s.roundRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrRoundNotFound) {
			return nil, ErrRoundNotFound
		}
		return nil, fmt.Errorf("failed to get round %d: %w", id, err)
	}
	return s.enrich(ctx, round)
}

func (s *roundService) ListRounds(ctx context.Context, filter ListRoundsFilter) ([]*models.Round, error) {
	if filter.Stage != nil && !s.stages.Contains(*filter.Stage) {
		return nil, fmt.Errorf("%w: %q", ErrRoundStageInvalid, *filter.Stage)
	}

	rounds, err := s.roundRepo.List(ctx, repositories.RoundFilter{
		Stage:   filter.Stage,
		JudgeID: filter.JudgeID,
		TeamID:  filter.TeamID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list rounds: %w", err)
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(enrichConcurrency)
	enriched := make([]*models.Round, len(rounds))
	for i, round := range rounds {
		i, round := i, round
		g.Go(func() error {
			r, err := s.enrich(gCtx, round)
			if err != nil {
				return err
			}
			enriched[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return enriched, nil
}

func (s *roundService) UpdateRound(ctx context.Context, id int, input UpdateRoundInput) (*models.Round, error) {
	round, err := s.roundRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrRoundNotFound) {
			return nil, ErrRoundNotFound
		}
		return nil, fmt.Errorf("failed to get round %d: %w", id, err)
	}
	if round.WinnerID != nil {
		return nil, ErrRoundAlreadyDecided
	}

	if input.ScheduledAt != nil {
		round.ScheduledAt = *input.ScheduledAt
	}
	if input.DurationMinutes != nil {
		round.DurationMinutes = *input.DurationMinutes
	}
	if input.LocationMode != nil {
		round.LocationMode = *input.LocationMode
	}
	if input.Venue != nil {
		round.Venue = input.Venue
	}
	if input.MeetURL != nil {
		round.MeetURL = input.MeetURL
	}
	if input.JudgeID != nil {
		round.JudgeID = input.JudgeID
	}

	if err := s.validateRound(ctx, round); err != nil {
		return nil, err
	}

	if err := s.roundRepo.Update(ctx, round); err != nil {
		if errors.Is(err, repositories.ErrRoundNotFound) {
			return nil, ErrRoundNotFound
		}
		if errors.Is(err, repositories.ErrRoundJudgeInvalid) {
			return nil, ErrJudgeNotFound
		}
		return nil, fmt.Errorf("failed to update round %d: %w", id, err)
	}

	enriched, err := s.enrich(ctx, round)
	if err != nil {
		return nil, err
	}
	s.broadcast(live.EventRoundUpdated, enriched)
	return enriched, nil
}

func (s *roundService) DeleteRound(ctx context.Context, id int) error {
	if err := s.roundRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrRoundNotFound) {
			return ErrRoundNotFound
		}
		return fmt.Errorf("failed to delete round %d: %w", id, err)
	}
	s.broadcast(live.EventRoundDeleted, map[string]int{"id": id})
	return nil
}

func (s *roundService) SelectWinner(ctx context.Context, roundID, winnerTeamID int) (*models.Round, error) {
	round, err := s.roundRepo.GetByID(ctx, roundID)
	if err != nil {
		if errors.Is(err, repositories.ErrRoundNotFound) {
			return nil, ErrRoundNotFound
		}
		return nil, fmt.Errorf("failed to get round %d: %w", roundID, err)
	}

	if round.WinnerID != nil {
		if *round.WinnerID == winnerTeamID {
			// Retry of an already-applied commit.
			return s.enrich(ctx, round)
		}
		return nil, ErrRoundAlreadyDecided
	}

	if !round.HasTeam(winnerTeamID) {
		return nil, ErrWinnerInvalidTeam
	}

	marks, err := s.scoring.RoundMarks(ctx, round)
	if err != nil {
		return nil, err
	}
	if !marks.Complete() {
		return nil, ErrMarksIncomplete
	}

	committed, err := s.roundRepo.SetWinner(ctx, roundID, winnerTeamID)
	if err != nil {
		return nil, fmt.Errorf("failed to commit winner for round %d: %w", roundID, err)
	}
	if !committed {
		// Lost the race. Re-read to tell a concurrent identical commit
		// apart from a different winner.
		current, err := s.roundRepo.GetByID(ctx, roundID)
		if err != nil {
			return nil, fmt.Errorf("failed to re-read round %d after commit conflict: %w", roundID, err)
		}
		if current.WinnerID != nil && *current.WinnerID == winnerTeamID {
			return s.enrich(ctx, current)
		}
		return nil, ErrRoundAlreadyDecided
	}

	round.WinnerID = &winnerTeamID
	enriched, err := s.enrich(ctx, round)
	if err != nil {
		return nil, err
	}
	s.broadcast(live.EventWinnerDecided, enriched)
	return enriched, nil
}

func (s *roundService) MissingMarks(ctx context.Context, judgeID *int) ([]models.MissingMarks, error) {
	rounds, err := s.roundRepo.List(ctx, repositories.RoundFilter{JudgeID: judgeID})
	if err != nil {
		return nil, fmt.Errorf("failed to list rounds: %w", err)
	}

	now := s.now()
	missing := make([]models.MissingMarks, 0)
	for _, round := range rounds {
		if round.Team1ID == nil || round.Team2ID == nil {
			continue
		}
		if _, end := round.Window(); now.Before(end) {
			continue
		}

		entry := models.MissingMarks{
			RoundID:     round.ID,
			Stage:       round.Stage,
			ScheduledAt: round.ScheduledAt,
		}
		for _, teamID := range []int{*round.Team1ID, *round.Team2ID} {
			_, err := s.scoring.AggregateTeamMarks(ctx, round.ID, teamID)
			if errors.Is(err, ErrMarksNotFound) {
				entry.MissingTeamIDs = append(entry.MissingTeamIDs, teamID)
				continue
			}
			if err != nil {
				return nil, err
			}
		}
		if len(entry.MissingTeamIDs) > 0 {
			missing = append(missing, entry)
		}
	}
	return missing, nil
}

// validateRound enforces the round invariants shared by create and update.
func (s *roundService) validateRound(ctx context.Context, round *models.Round) error {
	if !s.stages.Contains(round.Stage) {
		return fmt.Errorf("%w: %q", ErrRoundStageInvalid, round.Stage)
	}
	if round.Team1ID == nil || round.Team2ID == nil {
		return ErrRoundTeamsRequired
	}
	if *round.Team1ID == *round.Team2ID {
		return ErrRoundSameTeam
	}
	if round.ScheduledAt.IsZero() || round.DurationMinutes <= 0 {
		return ErrRoundScheduleRequired
	}

	switch round.LocationMode {
	case models.LocationOffline:
		if round.Venue == nil || *round.Venue == "" {
			return ErrRoundVenueRequired
		}
	case models.LocationOnline:
		if round.MeetURL == nil || *round.MeetURL == "" {
			return ErrRoundMeetURLRequired
		}
	default:
		return ErrRoundLocationModeInvalid
	}

	if round.JudgeID != nil {
		judge, err := s.userRepo.GetByID(ctx, *round.JudgeID)
		if err != nil {
			if errors.Is(err, repositories.ErrUserNotFound) {
				return ErrJudgeNotFound
			}
			return fmt.Errorf("failed to verify judge %d: %w", *round.JudgeID, err)
		}
		if judge.Role != models.RoleJury {
			return ErrJudgeNotFound
		}
	}
	return nil
}

// checkEligibility requires both paired teams to currently appear in the
// stage's eligible set. This is what keeps the bracket consistent: a team
// cannot be double-booked into a stage or skip a stage it never won into.
func (s *roundService) checkEligibility(ctx context.Context, round *models.Round) error {
	eligible, err := s.eligibility.EligibleTeams(ctx, round.Stage)
	if err != nil {
		return err
	}
	eligibleIDs := make(map[int]bool, len(eligible))
	for _, team := range eligible {
		eligibleIDs[team.ID] = true
	}

	for _, teamID := range []int{*round.Team1ID, *round.Team2ID} {
		if !eligibleIDs[teamID] {
			return fmt.Errorf("%w: team %d at stage %q", ErrTeamNotEligible, teamID, round.Stage)
		}
	}
	return nil
}

// enrich attaches team and judge details, the current marks and the derived
// status. The status is recomputed on every read and never written back.
func (s *roundService) enrich(ctx context.Context, round *models.Round) (*models.Round, error) {
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		marks, err := s.scoring.RoundMarks(gCtx, round)
		if err != nil {
			return err
		}
		round.Marks = marks
		return nil
	})

	loadTeam := func(teamID *int, dst **models.Team) {
		if teamID == nil {
			return
		}
		id := *teamID
		g.Go(func() error {
			team, err := s.teamRepo.GetByID(gCtx, id)
			if err != nil {
				if errors.Is(err, repositories.ErrTeamNotFound) {
					return nil
				}
				return fmt.Errorf("failed to load team %d: %w", id, err)
			}
			*dst = team
			return nil
		})
	}
	loadTeam(round.Team1ID, &round.Team1)
	loadTeam(round.Team2ID, &round.Team2)
	loadTeam(round.WinnerID, &round.Winner)

	if round.JudgeID != nil {
		judgeID := *round.JudgeID
		g.Go(func() error {
			judge, err := s.userRepo.GetByID(gCtx, judgeID)
			if err != nil {
				if errors.Is(err, repositories.ErrUserNotFound) {
					return nil
				}
				return fmt.Errorf("failed to load judge %d: %w", judgeID, err)
			}
			round.Judge = judge
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	marksPresent := round.Marks != nil && (round.Marks.Team1 != nil || round.Marks.Team2 != nil)
	start, _ := round.Window()
	round.Status = models.DeriveRoundStatus(
		s.now(),
		start,
		time.Duration(round.DurationMinutes)*time.Minute,
		round.WinnerID != nil,
		marksPresent,
	)
	return round, nil
}

func (s *roundService) broadcast(event string, payload interface{}) {
	if s.hub == nil {
		return
	}
	s.hub.BroadcastToRoom(live.RoomRounds, live.Message{Type: event, Payload: payload})
}
