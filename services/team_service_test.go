package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hirusha02/mootcourt-system/models"
)

func TestCreateTeam(t *testing.T) {
	ctx := context.Background()

	t.Run("starts at the first stage", func(t *testing.T) {
		svc := NewTeamService(newFakeTeamRepo(), models.DefaultStages, nil)

		team, err := svc.CreateTeam(ctx, CreateTeamInput{
			TeamCode:           " TM01 ",
			RepresentativeName: "A. Silva",
			InstitutionName:    "University of Colombo",
		})
		require.NoError(t, err)
		assert.Equal(t, "TM01", team.TeamCode)
		assert.Equal(t, models.Stage("Prelims"), team.CurrentStage)
	})

	t.Run("blank fields rejected", func(t *testing.T) {
		svc := NewTeamService(newFakeTeamRepo(), models.DefaultStages, nil)

		_, err := svc.CreateTeam(ctx, CreateTeamInput{TeamCode: "TM01"})
		assert.ErrorIs(t, err, ErrTeamFieldsRequired)
	})

	t.Run("duplicate team code rejected", func(t *testing.T) {
		svc := NewTeamService(newFakeTeamRepo(), models.DefaultStages, nil)
		input := CreateTeamInput{
			TeamCode:           "TM01",
			RepresentativeName: "A. Silva",
			InstitutionName:    "University of Colombo",
		}
		_, err := svc.CreateTeam(ctx, input)
		require.NoError(t, err)

		_, err = svc.CreateTeam(ctx, input)
		assert.ErrorIs(t, err, ErrTeamCodeConflict)
	})
}

func TestUploadLogoWithoutStorage(t *testing.T) {
	svc := NewTeamService(newFakeTeamRepo(&models.Team{ID: 1, TeamCode: "TM01"}), models.DefaultStages, nil)

	_, err := svc.UploadLogo(context.Background(), 1, "image/png", nil)
	assert.ErrorContains(t, err, "not configured")
}
