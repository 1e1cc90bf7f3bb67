package services

import (
	"context"
	"fmt"

	"github.com/Hirusha02/mootcourt-system/models"
	"github.com/Hirusha02/mootcourt-system/repositories"
	"golang.org/x/sync/errgroup"
)

const recentWinnersLimit = 5

type DashboardService interface {
	Summary(ctx context.Context) (*models.DashboardSummary, error)
}

type dashboardService struct {
	teamRepo repositories.TeamRepository
	rounds   RoundService
}

func NewDashboardService(teamRepo repositories.TeamRepository, rounds RoundService) DashboardService {
	return &dashboardService{
		teamRepo: teamRepo,
		rounds:   rounds,
	}
}

// Summary assembles the admin dashboard header in one call. The team count
// and the round list load in parallel; everything else derives from them.
func (s *dashboardService) Summary(ctx context.Context) (*models.DashboardSummary, error) {
	summary := &models.DashboardSummary{}

	var rounds []*models.Round
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		teams, err := s.teamRepo.List(gCtx)
		if err != nil {
			return fmt.Errorf("failed to list teams: %w", err)
		}
		summary.TotalTeams = len(teams)
		return nil
	})

	g.Go(func() error {
		var err error
		rounds, err = s.rounds.ListRounds(gCtx, ListRoundsFilter{})
		if err != nil {
			return err
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary.TotalRounds = len(rounds)
	summary.EvaluatingRounds = make([]*models.Round, 0)
	summary.RecentWinners = make([]*models.Round, 0, recentWinnersLimit)

	for _, round := range rounds {
		switch round.Status {
		case models.RoundStatusEvaluating:
			summary.EvaluatingRounds = append(summary.EvaluatingRounds, round)
		case models.RoundStatusDecided:
			summary.DecidedRounds++
		}
	}

	// Most recently scheduled decided rounds first.
	for i := len(rounds) - 1; i >= 0 && len(summary.RecentWinners) < recentWinnersLimit; i-- {
		if rounds[i].Status == models.RoundStatusDecided {
			summary.RecentWinners = append(summary.RecentWinners, rounds[i])
		}
	}

	return summary, nil
}
