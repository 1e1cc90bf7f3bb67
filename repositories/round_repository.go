package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"

	"github.com/Hirusha02/mootcourt-system/models"
	"github.com/lib/pq"
)

var (
	ErrRoundNotFound      = errors.New("round not found")
	ErrRoundTeamInvalid   = errors.New("round references an unknown team")
	ErrRoundJudgeInvalid  = errors.New("round references an unknown judge")
	ErrRoundWinnerInvalid = errors.New("round winner references an unknown team")
)

// RoundFilter narrows List results. Nil fields are not applied.
type RoundFilter struct {
	Stage   *models.Stage
	JudgeID *int
	TeamID  *int
	Decided *bool
}

type RoundRepository interface {
	Create(ctx context.Context, round *models.Round) error
	GetByID(ctx context.Context, id int) (*models.Round, error)
	List(ctx context.Context, filter RoundFilter) ([]*models.Round, error)
	Update(ctx context.Context, round *models.Round) error
	// SetWinner commits the winner with a conditional update keyed on
	// winner_id IS NULL. It reports false when another commit got there
	// first (or the round does not exist); the caller disambiguates.
	SetWinner(ctx context.Context, roundID, winnerTeamID int) (bool, error)
	Delete(ctx context.Context, id int) error
}

type postgresRoundRepository struct {
	db *sql.DB
}

func NewPostgresRoundRepository(db *sql.DB) RoundRepository {
	return &postgresRoundRepository{db: db}
}

const roundColumns = `id, stage, team1_id, team2_id, scheduled_at, duration_minutes,
	location_mode, venue, meet_url, judge_id, winner_id, created_at`

func (r *postgresRoundRepository) Create(ctx context.Context, round *models.Round) error {
	query := `
		INSERT INTO rounds
			(stage, team1_id, team2_id, scheduled_at, duration_minutes, location_mode, venue, meet_url, judge_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		round.Stage,
		round.Team1ID,
		round.Team2ID,
		round.ScheduledAt,
		round.DurationMinutes,
		round.LocationMode,
		round.Venue,
		round.MeetURL,
		round.JudgeID,
	).Scan(&round.ID, &round.CreatedAt)

	return r.handleRoundError(err)
}

func (r *postgresRoundRepository) GetByID(ctx context.Context, id int) (*models.Round, error) {
	query := `SELECT ` + roundColumns + ` FROM rounds WHERE id = $1`

	round := &models.Round{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&round.ID,
		&round.Stage,
		&round.Team1ID,
		&round.Team2ID,
		&round.ScheduledAt,
		&round.DurationMinutes,
		&round.LocationMode,
		&round.Venue,
		&round.MeetURL,
		&round.JudgeID,
		&round.WinnerID,
		&round.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoundNotFound
		}
		return nil, err
	}
	return round, nil
}

func (r *postgresRoundRepository) List(ctx context.Context, filter RoundFilter) ([]*models.Round, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + roundColumns + ` FROM rounds WHERE 1=1`)

	args := []interface{}{}
	placeholderIndex := 1

	appendCondition := func(condition string, value interface{}) {
		queryBuilder.WriteString(" AND " + condition + " $")
		queryBuilder.WriteString(strconv.Itoa(placeholderIndex))
		args = append(args, value)
		placeholderIndex++
	}

	if filter.Stage != nil {
		appendCondition("stage =", *filter.Stage)
	}
	if filter.JudgeID != nil {
		appendCondition("judge_id =", *filter.JudgeID)
	}
	if filter.TeamID != nil {
		queryBuilder.WriteString(" AND (team1_id = $" + strconv.Itoa(placeholderIndex))
		queryBuilder.WriteString(" OR team2_id = $" + strconv.Itoa(placeholderIndex) + ")")
		args = append(args, *filter.TeamID)
		placeholderIndex++
	}
	if filter.Decided != nil {
		if *filter.Decided {
			queryBuilder.WriteString(" AND winner_id IS NOT NULL")
		} else {
			queryBuilder.WriteString(" AND winner_id IS NULL")
		}
	}

	queryBuilder.WriteString(" ORDER BY scheduled_at ASC, id ASC")

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rounds := make([]*models.Round, 0)
	for rows.Next() {
		var round models.Round
		if scanErr := rows.Scan(
			&round.ID,
			&round.Stage,
			&round.Team1ID,
			&round.Team2ID,
			&round.ScheduledAt,
			&round.DurationMinutes,
			&round.LocationMode,
			&round.Venue,
			&round.MeetURL,
			&round.JudgeID,
			&round.WinnerID,
			&round.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		rounds = append(rounds, &round)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}
	return rounds, nil
}

func (r *postgresRoundRepository) Update(ctx context.Context, round *models.Round) error {
	query := `
		UPDATE rounds
		SET stage = $1, team1_id = $2, team2_id = $3, scheduled_at = $4, duration_minutes = $5,
			location_mode = $6, venue = $7, meet_url = $8, judge_id = $9
		WHERE id = $10`

	result, err := r.db.ExecContext(ctx, query,
		round.Stage,
		round.Team1ID,
		round.Team2ID,
		round.ScheduledAt,
		round.DurationMinutes,
		round.LocationMode,
		round.Venue,
		round.MeetURL,
		round.JudgeID,
		round.ID,
	)
	if err != nil {
		return r.handleRoundError(err)
	}
	return checkAffectedRows(result, ErrRoundNotFound)
}

func (r *postgresRoundRepository) SetWinner(ctx context.Context, roundID, winnerTeamID int) (bool, error) {
	query := `
		UPDATE rounds
		SET winner_id = $1
		WHERE id = $2 AND winner_id IS NULL`

	result, err := r.db.ExecContext(ctx, query, winnerTeamID, roundID)
	if err != nil {
		return false, r.handleRoundError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rowsAffected == 1, nil
}

func (r *postgresRoundRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM rounds WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrRoundNotFound)
}

func (r *postgresRoundRepository) handleRoundError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		if pqErr.Code == "23503" { // foreign_key_violation
			switch pqErr.Constraint {
			case "rounds_team1_id_fkey", "rounds_team2_id_fkey":
				return ErrRoundTeamInvalid
			case "rounds_judge_id_fkey":
				return ErrRoundJudgeInvalid
			case "rounds_winner_id_fkey":
				return ErrRoundWinnerInvalid
			}
		}
	}
	return err
}
