package services

import (
	"context"
	"sort"
	"sync"

	"github.com/Hirusha02/mootcourt-system/models"
	"github.com/Hirusha02/mootcourt-system/repositories"
)

// In-memory repository fakes. They honor the same sentinel errors and the
// same conditional-update contract as the postgres implementations, so the
// services under test cannot tell them apart.

type fakeRoundRepo struct {
	mu     sync.Mutex
	rounds map[int]*models.Round
	nextID int
}

func newFakeRoundRepo() *fakeRoundRepo {
	return &fakeRoundRepo{rounds: make(map[int]*models.Round), nextID: 1}
}

func copyRound(r *models.Round) *models.Round {
	cp := *r
	return &cp
}

func (f *fakeRoundRepo) Create(_ context.Context, round *models.Round) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	round.ID = f.nextID
	f.nextID++
	f.rounds[round.ID] = copyRound(round)
	return nil
}

func (f *fakeRoundRepo) GetByID(_ context.Context, id int) (*models.Round, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	round, ok := f.rounds[id]
	if !ok {
		return nil, repositories.ErrRoundNotFound
	}
	return copyRound(round), nil
}

func (f *fakeRoundRepo) List(_ context.Context, filter repositories.RoundFilter) ([]*models.Round, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]int, 0, len(f.rounds))
	for id := range f.rounds {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	out := make([]*models.Round, 0, len(ids))
	for _, id := range ids {
		round := f.rounds[id]
		if filter.Stage != nil && round.Stage != *filter.Stage {
			continue
		}
		if filter.JudgeID != nil && (round.JudgeID == nil || *round.JudgeID != *filter.JudgeID) {
			continue
		}
		if filter.TeamID != nil && !round.HasTeam(*filter.TeamID) {
			continue
		}
		if filter.Decided != nil && (round.WinnerID != nil) != *filter.Decided {
			continue
		}
		out = append(out, copyRound(round))
	}
	return out, nil
}

func (f *fakeRoundRepo) Update(_ context.Context, round *models.Round) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rounds[round.ID]; !ok {
		return repositories.ErrRoundNotFound
	}
	f.rounds[round.ID] = copyRound(round)
	return nil
}

func (f *fakeRoundRepo) SetWinner(_ context.Context, roundID, winnerTeamID int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	round, ok := f.rounds[roundID]
	if !ok || round.WinnerID != nil {
		return false, nil
	}
	round.WinnerID = &winnerTeamID
	return true, nil
}

func (f *fakeRoundRepo) Delete(_ context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rounds[id]; !ok {
		return repositories.ErrRoundNotFound
	}
	delete(f.rounds, id)
	return nil
}

type fakeTeamRepo struct {
	mu     sync.Mutex
	teams  map[int]*models.Team
	nextID int
}

func newFakeTeamRepo(teams ...*models.Team) *fakeTeamRepo {
	f := &fakeTeamRepo{teams: make(map[int]*models.Team), nextID: 1}
	for _, t := range teams {
		if t.ID >= f.nextID {
			f.nextID = t.ID + 1
		}
		f.teams[t.ID] = t
	}
	return f
}

func (f *fakeTeamRepo) Create(_ context.Context, team *models.Team) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.teams {
		if existing.TeamCode == team.TeamCode {
			return repositories.ErrTeamCodeConflict
		}
	}
	team.ID = f.nextID
	f.nextID++
	f.teams[team.ID] = team
	return nil
}

func (f *fakeTeamRepo) GetByID(_ context.Context, id int) (*models.Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	team, ok := f.teams[id]
	if !ok {
		return nil, repositories.ErrTeamNotFound
	}
	return team, nil
}

func (f *fakeTeamRepo) GetByCode(_ context.Context, code string) (*models.Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, team := range f.teams {
		if team.TeamCode == code {
			return team, nil
		}
	}
	return nil, repositories.ErrTeamNotFound
}

func (f *fakeTeamRepo) List(_ context.Context) ([]*models.Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]int, 0, len(f.teams))
	for id := range f.teams {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]*models.Team, 0, len(ids))
	for _, id := range ids {
		out = append(out, f.teams[id])
	}
	return out, nil
}

func (f *fakeTeamRepo) Update(_ context.Context, team *models.Team) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.teams[team.ID]; !ok {
		return repositories.ErrTeamNotFound
	}
	f.teams[team.ID] = team
	return nil
}

func (f *fakeTeamRepo) UpdateCurrentStage(_ context.Context, id int, stage models.Stage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	team, ok := f.teams[id]
	if !ok {
		return repositories.ErrTeamNotFound
	}
	team.CurrentStage = stage
	return nil
}

func (f *fakeTeamRepo) UpdateLogoKey(_ context.Context, id int, logoKey *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	team, ok := f.teams[id]
	if !ok {
		return repositories.ErrTeamNotFound
	}
	team.LogoKey = logoKey
	return nil
}

func (f *fakeTeamRepo) Delete(_ context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.teams[id]; !ok {
		return repositories.ErrTeamNotFound
	}
	delete(f.teams, id)
	return nil
}

type fakeUserRepo struct {
	mu     sync.Mutex
	users  map[int]*models.User
	nextID int
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	f := &fakeUserRepo{users: make(map[int]*models.User), nextID: 1}
	for _, u := range users {
		if u.ID >= f.nextID {
			f.nextID = u.ID + 1
		}
		f.users[u.ID] = u
	}
	return f
}

func (f *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Email == user.Email {
			return repositories.ErrUserEmailConflict
		}
	}
	user.ID = f.nextID
	f.nextID++
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id int) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (f *fakeUserRepo) ListByRole(_ context.Context, role models.UserRole) ([]*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]int, 0, len(f.users))
	for id := range f.users {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]*models.User, 0, len(ids))
	for _, id := range ids {
		if f.users[id].Role == role {
			out = append(out, f.users[id])
		}
	}
	return out, nil
}

type fakeSheetRepo struct {
	mu     sync.Mutex
	sheets map[int]*models.ScoreSheet
	nextID int
}

func newFakeSheetRepo() *fakeSheetRepo {
	return &fakeSheetRepo{sheets: make(map[int]*models.ScoreSheet), nextID: 1}
}

func (f *fakeSheetRepo) Create(_ context.Context, sheet *models.ScoreSheet) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.sheets {
		if existing.RoundID == sheet.RoundID &&
			existing.TeamID == sheet.TeamID &&
			existing.JudgeID == sheet.JudgeID {
			return repositories.ErrScoreSheetConflict
		}
	}
	sheet.ID = f.nextID
	f.nextID++
	f.sheets[sheet.ID] = sheet
	return nil
}

func (f *fakeSheetRepo) GetByID(_ context.Context, id int) (*models.ScoreSheet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sheet, ok := f.sheets[id]
	if !ok {
		return nil, repositories.ErrScoreSheetNotFound
	}
	return sheet, nil
}

func (f *fakeSheetRepo) List(_ context.Context, filter repositories.ScoreSheetFilter) ([]*models.ScoreSheet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]int, 0, len(f.sheets))
	for id := range f.sheets {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]*models.ScoreSheet, 0, len(ids))
	for _, id := range ids {
		sheet := f.sheets[id]
		if filter.RoundID != nil && sheet.RoundID != *filter.RoundID {
			continue
		}
		if filter.TeamID != nil && sheet.TeamID != *filter.TeamID {
			continue
		}
		if filter.JudgeID != nil && sheet.JudgeID != *filter.JudgeID {
			continue
		}
		out = append(out, sheet)
	}
	return out, nil
}

func (f *fakeSheetRepo) ListByRoundTeam(ctx context.Context, roundID, teamID int) ([]*models.ScoreSheet, error) {
	return f.List(ctx, repositories.ScoreSheetFilter{RoundID: &roundID, TeamID: &teamID})
}

func (f *fakeSheetRepo) Update(_ context.Context, sheet *models.ScoreSheet) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.sheets[sheet.ID]; !ok {
		return repositories.ErrScoreSheetNotFound
	}
	f.sheets[sheet.ID] = sheet
	return nil
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

// scaledScores fills every marking criterion with scale*max_points, so the
// sheet total is scale*100.
func scaledScores(scale float64) []models.CriterionScore {
	scores := make([]models.CriterionScore, 0, len(models.MarkingCriteria))
	for _, c := range models.MarkingCriteria {
		scores = append(scores, models.CriterionScore{Criterion: c.Key, Points: c.MaxPoints * scale})
	}
	return scores
}
