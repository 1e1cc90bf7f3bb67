package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Hirusha02/mootcourt-system/models"
	"github.com/Hirusha02/mootcourt-system/repositories"
)

// EligibilityService answers which teams may be paired into a stage.
// Results are recomputed from storage on every call: round mutations and
// winner commits must be visible immediately, so nothing is cached.
type EligibilityService interface {
	EligibleTeams(ctx context.Context, targetStage models.Stage) ([]*models.Team, error)
}

type eligibilityService struct {
	stages    models.StageList
	teamRepo  repositories.TeamRepository
	roundRepo repositories.RoundRepository
	logger    *slog.Logger
}

func NewEligibilityService(
	stages models.StageList,
	teamRepo repositories.TeamRepository,
	roundRepo repositories.RoundRepository,
	logger *slog.Logger,
) EligibilityService {
	return &eligibilityService{
		stages:    stages,
		teamRepo:  teamRepo,
		roundRepo: roundRepo,
		logger:    logger,
	}
}

// EligibleTeams returns the teams that may still be paired into targetStage:
// winners of decided prior-stage rounds (the full roster for the first
// stage) that are not yet team1 or team2 of any round at targetStage.
//
// A team recorded as winner of more than one prior-stage round violates a
// core bracket invariant; that case returns ErrBracketInconsistent with an
// empty set instead of silently picking one of the rounds.
func (s *eligibilityService) EligibleTeams(ctx context.Context, targetStage models.Stage) ([]*models.Team, error) {
	if !s.stages.Contains(targetStage) {
		return nil, fmt.Errorf("%w: %q", ErrRoundStageInvalid, targetStage)
	}

	paired, err := s.pairedTeamIDs(ctx, targetStage)
	if err != nil {
		return nil, err
	}

	priorStage, hasPrior := s.stages.Prior(targetStage)
	if !hasPrior {
		return s.rosterEligible(ctx, paired)
	}

	decided := true
	priorRounds, err := s.roundRepo.List(ctx, repositories.RoundFilter{
		Stage:   &priorStage,
		Decided: &decided,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list decided rounds at stage %q: %w", priorStage, err)
	}

	winnerIDs := make([]int, 0, len(priorRounds))
	seenWinner := make(map[int]bool, len(priorRounds))
	for _, round := range priorRounds {
		if round.WinnerID == nil {
			continue
		}
		winnerID := *round.WinnerID
		if seenWinner[winnerID] {
			s.logger.Error("bracket invariant violated: team recorded as winner of multiple rounds at one stage",
				slog.Int("team_id", winnerID),
				slog.String("stage", string(priorStage)))
			return []*models.Team{}, fmt.Errorf("%w: team %d won multiple rounds at stage %q",
				ErrBracketInconsistent, winnerID, priorStage)
		}
		seenWinner[winnerID] = true
		winnerIDs = append(winnerIDs, winnerID)
	}

	teams, err := s.teamsByID(ctx)
	if err != nil {
		return nil, err
	}

	eligible := make([]*models.Team, 0, len(winnerIDs))
	for _, winnerID := range winnerIDs {
		if paired[winnerID] {
			continue
		}
		team, ok := teams[winnerID]
		if !ok {
			s.logger.Error("bracket invariant violated: round winner references a missing team",
				slog.Int("team_id", winnerID))
			return []*models.Team{}, fmt.Errorf("%w: winner team %d does not exist", ErrBracketInconsistent, winnerID)
		}
		eligible = append(eligible, team)
	}
	return eligible, nil
}

// pairedTeamIDs collects every team already booked into a round at stage,
// decided or not. A team paired once must never be offered again for the
// same stage.
func (s *eligibilityService) pairedTeamIDs(ctx context.Context, stage models.Stage) (map[int]bool, error) {
	rounds, err := s.roundRepo.List(ctx, repositories.RoundFilter{Stage: &stage})
	if err != nil {
		return nil, fmt.Errorf("failed to list rounds at stage %q: %w", stage, err)
	}

	paired := make(map[int]bool)
	for _, round := range rounds {
		if round.Team1ID != nil {
			paired[*round.Team1ID] = true
		}
		if round.Team2ID != nil {
			paired[*round.Team2ID] = true
		}
	}
	return paired, nil
}

func (s *eligibilityService) rosterEligible(ctx context.Context, paired map[int]bool) ([]*models.Team, error) {
	teams, err := s.teamRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list registered teams: %w", err)
	}

	eligible := make([]*models.Team, 0, len(teams))
	for _, team := range teams {
		if !paired[team.ID] {
			eligible = append(eligible, team)
		}
	}
	return eligible, nil
}

func (s *eligibilityService) teamsByID(ctx context.Context) (map[int]*models.Team, error) {
	teams, err := s.teamRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list registered teams: %w", err)
	}
	byID := make(map[int]*models.Team, len(teams))
	for _, team := range teams {
		byID[team.ID] = team
	}
	return byID, nil
}
