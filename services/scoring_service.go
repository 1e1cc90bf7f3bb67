package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Hirusha02/mootcourt-system/models"
	"github.com/Hirusha02/mootcourt-system/repositories"
	"golang.org/x/sync/errgroup"
)

// ScoringService derives marks from stored score sheets. It is read-only
// and recomputes on every call; nothing here caches across mutations.
type ScoringService interface {
	// AggregateTeamMarks combines all of a team's score sheets for a round.
	// With several judges the per-criterion scores and the total are the
	// arithmetic mean across judges; with a single judge the mean is that
	// judge's sheet unchanged. Returns ErrMarksNotFound when no sheet
	// exists, so callers can tell "no marks" from "marked zero".
	AggregateTeamMarks(ctx context.Context, roundID, teamID int) (*models.TeamMarks, error)

	// RoundMarks pairs both teams' aggregates. A side without any sheet is
	// left nil rather than reported as an error.
	RoundMarks(ctx context.Context, round *models.Round) (*models.RoundMarks, error)
}

type scoringService struct {
	sheetRepo repositories.ScoreSheetRepository
}

func NewScoringService(sheetRepo repositories.ScoreSheetRepository) ScoringService {
	return &scoringService{sheetRepo: sheetRepo}
}

func (s *scoringService) AggregateTeamMarks(ctx context.Context, roundID, teamID int) (*models.TeamMarks, error) {
	sheets, err := s.sheetRepo.ListByRoundTeam(ctx, roundID, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list score sheets for round %d team %d: %w", roundID, teamID, err)
	}
	if len(sheets) == 0 {
		return nil, ErrMarksNotFound
	}

	sums := make(map[string]float64, len(models.MarkingCriteria))
	for _, sheet := range sheets {
		for _, cs := range sheet.Scores {
			sums[cs.Criterion] += cs.Points
		}
	}

	judgeCount := float64(len(sheets))
	marks := &models.TeamMarks{
		TeamID:     teamID,
		JudgeCount: len(sheets),
		Criteria:   make([]models.CriterionScore, 0, len(models.MarkingCriteria)),
	}
	for _, criterion := range models.MarkingCriteria {
		mean := sums[criterion.Key] / judgeCount
		marks.Criteria = append(marks.Criteria, models.CriterionScore{
			Criterion: criterion.Key,
			Points:    mean,
		})
		marks.Total += mean
	}

	return marks, nil
}

func (s *scoringService) RoundMarks(ctx context.Context, round *models.Round) (*models.RoundMarks, error) {
	marks := &models.RoundMarks{}

	g, gCtx := errgroup.WithContext(ctx)

	if round.Team1ID != nil {
		teamID := *round.Team1ID
		g.Go(func() error {
			tm, err := s.AggregateTeamMarks(gCtx, round.ID, teamID)
			if err != nil {
				if errors.Is(err, ErrMarksNotFound) {
					return nil
				}
				return err
			}
			marks.Team1 = tm
			return nil
		})
	}
	if round.Team2ID != nil {
		teamID := *round.Team2ID
		g.Go(func() error {
			tm, err := s.AggregateTeamMarks(gCtx, round.ID, teamID)
			if err != nil {
				if errors.Is(err, ErrMarksNotFound) {
					return nil
				}
				return err
			}
			marks.Team2 = tm
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return marks, nil
}
