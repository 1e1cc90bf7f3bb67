package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Hirusha02/mootcourt-system/models"
	"github.com/Hirusha02/mootcourt-system/repositories"
	"github.com/Hirusha02/mootcourt-system/storage"
)

var ErrTeamFieldsRequired = errors.New("team code, representative name and institution are required")

type CreateTeamInput struct {
	TeamCode           string `json:"team_id"`
	RepresentativeName string `json:"team_representative_name"`
	InstitutionName    string `json:"institution_name"`
}

type TeamService interface {
	CreateTeam(ctx context.Context, input CreateTeamInput) (*models.Team, error)
	GetTeamByID(ctx context.Context, id int) (*models.Team, error)
	ListTeams(ctx context.Context) ([]*models.Team, error)
	UpdateTeam(ctx context.Context, id int, input CreateTeamInput) (*models.Team, error)
	DeleteTeam(ctx context.Context, id int) error
	UploadLogo(ctx context.Context, teamID int, contentType string, file io.Reader) (*models.Team, error)
}

type teamService struct {
	teamRepo repositories.TeamRepository
	stages   models.StageList
	uploader storage.FileUploader
}

func NewTeamService(teamRepo repositories.TeamRepository, stages models.StageList, uploader storage.FileUploader) TeamService {
	return &teamService{
		teamRepo: teamRepo,
		stages:   stages,
		uploader: uploader,
	}
}

func (s *teamService) CreateTeam(ctx context.Context, input CreateTeamInput) (*models.Team, error) {
	if err := validateTeamInput(input); err != nil {
		return nil, err
	}

	team := &models.Team{
		TeamCode:           strings.TrimSpace(input.TeamCode),
		RepresentativeName: strings.TrimSpace(input.RepresentativeName),
		InstitutionName:    strings.TrimSpace(input.InstitutionName),
		CurrentStage:       s.stages.First(),
	}

	if err := s.teamRepo.Create(ctx, team); err != nil {
		if errors.Is(err, repositories.ErrTeamCodeConflict) {
			return nil, ErrTeamCodeConflict
		}
		return nil, fmt.Errorf("failed to create team: %w", err)
	}
	return s.withLogoURL(team), nil
}

func (s *teamService) GetTeamByID(ctx context.Context, id int) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to get team %d: %w", id, err)
	}
	return s.withLogoURL(team), nil
}

func (s *teamService) ListTeams(ctx context.Context) ([]*models.Team, error) {
	teams, err := s.teamRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	for _, team := range teams {
		s.withLogoURL(team)
	}
	return teams, nil
}

func (s *teamService) UpdateTeam(ctx context.Context, id int, input CreateTeamInput) (*models.Team, error) {
	if err := validateTeamInput(input); err != nil {
		return nil, err
	}

	team, err := s.teamRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to get team %d: %w", id, err)
	}

	team.TeamCode = strings.TrimSpace(input.TeamCode)
	team.RepresentativeName = strings.TrimSpace(input.RepresentativeName)
	team.InstitutionName = strings.TrimSpace(input.InstitutionName)

	if err := s.teamRepo.Update(ctx, team); err != nil {
		if errors.Is(err, repositories.ErrTeamCodeConflict) {
			return nil, ErrTeamCodeConflict
		}
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to update team %d: %w", id, err)
	}
	return s.withLogoURL(team), nil
}

func (s *teamService) DeleteTeam(ctx context.Context, id int) error {
	err := s.teamRepo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return ErrTeamNotFound
		}
		// A team that has played (or is paired to play) stays on the books.
		if errors.Is(err, repositories.ErrTeamReferenced) {
			return ErrTeamReferenced
		}
		return fmt.Errorf("failed to delete team %d: %w", id, err)
	}
	return nil
}

func (s *teamService) UploadLogo(ctx context.Context, teamID int, contentType string, file io.Reader) (*models.Team, error) {
	if s.uploader == nil {
		return nil, errors.New("logo storage is not configured")
	}

	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to get team %d: %w", teamID, err)
	}

	key := fmt.Sprintf("teams/%d/logo", teamID)
	result, err := s.uploader.Upload(ctx, key, contentType, file)
	if err != nil {
		return nil, fmt.Errorf("failed to upload team logo: %w", err)
	}

	if err := s.teamRepo.UpdateLogoKey(ctx, teamID, &result.Key); err != nil {
		return nil, fmt.Errorf("failed to store logo key for team %d: %w", teamID, err)
	}
	team.LogoKey = &result.Key
	return s.withLogoURL(team), nil
}

func (s *teamService) withLogoURL(team *models.Team) *models.Team {
	if s.uploader != nil && team.LogoKey != nil {
		url := s.uploader.GetPublicURL(*team.LogoKey)
		if url != "" {
			team.LogoURL = &url
		}
	}
	return team
}

func validateTeamInput(input CreateTeamInput) error {
	if strings.TrimSpace(input.TeamCode) == "" ||
		strings.TrimSpace(input.RepresentativeName) == "" ||
		strings.TrimSpace(input.InstitutionName) == "" {
		return ErrTeamFieldsRequired
	}
	return nil
}
