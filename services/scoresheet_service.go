package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Hirusha02/mootcourt-system/live"
	"github.com/Hirusha02/mootcourt-system/models"
	"github.com/Hirusha02/mootcourt-system/repositories"
)

type SubmitScoreSheetInput struct {
	RoundID  int                     `json:"round_id"`
	TeamID   int                     `json:"team_id"`
	Scores   []models.CriterionScore `json:"scores"`
	Comments *string                 `json:"overall_comments"`
}

type UpdateScoreSheetInput struct {
	Scores   []models.CriterionScore `json:"scores"`
	Comments *string                 `json:"overall_comments"`
}

type ScoreSheetService interface {
	// Submit records a judge's evaluation of one team in one round. A judge
	// may hold at most one sheet per (round, team); edits go through Update.
	Submit(ctx context.Context, judgeID int, input SubmitScoreSheetInput) (*models.ScoreSheet, error)
	// Update replaces the scores on an existing sheet. Only the owning
	// judge may edit, and only while the round is still undecided.
	Update(ctx context.Context, sheetID, judgeID int, input UpdateScoreSheetInput) (*models.ScoreSheet, error)
	List(ctx context.Context, filter repositories.ScoreSheetFilter) ([]*models.ScoreSheet, error)
}

type scoreSheetService struct {
	sheetRepo repositories.ScoreSheetRepository
	roundRepo repositories.RoundRepository
	hub       *live.Hub
}

func NewScoreSheetService(
	sheetRepo repositories.ScoreSheetRepository,
	roundRepo repositories.RoundRepository,
	hub *live.Hub,
) ScoreSheetService {
	return &scoreSheetService{
		sheetRepo: sheetRepo,
		roundRepo: roundRepo,
		hub:       hub,
	}
}

func (s *scoreSheetService) Submit(ctx context.Context, judgeID int, input SubmitScoreSheetInput) (*models.ScoreSheet, error) {
	round, err := s.roundRepo.GetByID(ctx, input.RoundID)
	if err != nil {
		if errors.Is(err, repositories.ErrRoundNotFound) {
			return nil, ErrRoundNotFound
		}
		return nil, fmt.Errorf("failed to get round %d: %w", input.RoundID, err)
	}

	if round.WinnerID != nil {
		return nil, ErrScoreSheetLocked
	}
	if !round.HasTeam(input.TeamID) {
		return nil, ErrScoreSheetTeamNotPaired
	}

	sheet := &models.ScoreSheet{
		RoundID:  input.RoundID,
		TeamID:   input.TeamID,
		JudgeID:  judgeID,
		Scores:   input.Scores,
		Comments: input.Comments,
	}
	if err := sheet.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	if err := s.sheetRepo.Create(ctx, sheet); err != nil {
		if errors.Is(err, repositories.ErrScoreSheetConflict) {
			return nil, ErrScoreSheetDuplicate
		}
		return nil, fmt.Errorf("failed to create score sheet: %w", err)
	}

	s.broadcastMarks(round.ID, sheet.TeamID)
	return sheet, nil
}

func (s *scoreSheetService) Update(ctx context.Context, sheetID, judgeID int, input UpdateScoreSheetInput) (*models.ScoreSheet, error) {
	sheet, err := s.sheetRepo.GetByID(ctx, sheetID)
	if err != nil {
		if errors.Is(err, repositories.ErrScoreSheetNotFound) {
			return nil, ErrScoreSheetNotFound
		}
		return nil, fmt.Errorf("failed to get score sheet %d: %w", sheetID, err)
	}
	if sheet.JudgeID != judgeID {
		return nil, ErrScoreSheetNotOwned
	}

	round, err := s.roundRepo.GetByID(ctx, sheet.RoundID)
	if err != nil {
		if errors.Is(err, repositories.ErrRoundNotFound) {
			return nil, ErrRoundNotFound
		}
		return nil, fmt.Errorf("failed to get round %d: %w", sheet.RoundID, err)
	}
	if round.WinnerID != nil {
		return nil, ErrScoreSheetLocked
	}

	sheet.Scores = input.Scores
	sheet.Comments = input.Comments
	if err := sheet.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	if err := s.sheetRepo.Update(ctx, sheet); err != nil {
		return nil, fmt.Errorf("failed to update score sheet %d: %w", sheetID, err)
	}

	s.broadcastMarks(sheet.RoundID, sheet.TeamID)
	return sheet, nil
}

func (s *scoreSheetService) List(ctx context.Context, filter repositories.ScoreSheetFilter) ([]*models.ScoreSheet, error) {
	sheets, err := s.sheetRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list score sheets: %w", err)
	}
	return sheets, nil
}

func (s *scoreSheetService) broadcastMarks(roundID, teamID int) {
	if s.hub == nil {
		return
	}
	s.hub.BroadcastToRoom(live.RoomRounds, live.Message{
		Type:    live.EventMarksUpdated,
		Payload: map[string]int{"round_id": roundID, "team_id": teamID},
	})
}
