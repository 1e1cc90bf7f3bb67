package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Hirusha02/mootcourt-system/models"
	"github.com/lib/pq"
)

var (
	ErrScoreSheetNotFound  = errors.New("score sheet not found")
	ErrScoreSheetConflict  = errors.New("judge has already submitted a score sheet for this team and round")
	ErrScoreSheetRefBroken = errors.New("score sheet references an unknown round, team or judge")
)

type ScoreSheetFilter struct {
	RoundID *int
	TeamID  *int
	JudgeID *int
}

type ScoreSheetRepository interface {
	Create(ctx context.Context, sheet *models.ScoreSheet) error
	GetByID(ctx context.Context, id int) (*models.ScoreSheet, error)
	List(ctx context.Context, filter ScoreSheetFilter) ([]*models.ScoreSheet, error)
	ListByRoundTeam(ctx context.Context, roundID, teamID int) ([]*models.ScoreSheet, error)
	Update(ctx context.Context, sheet *models.ScoreSheet) error
}

type postgresScoreSheetRepository struct {
	db *sql.DB
}

func NewPostgresScoreSheetRepository(db *sql.DB) ScoreSheetRepository {
	return &postgresScoreSheetRepository{db: db}
}

// Criterion scores travel as a jsonb column; the shape is owned by
// models.CriterionScore.
func marshalScores(scores []models.CriterionScore) ([]byte, error) {
	data, err := json.Marshal(scores)
	if err != nil {
		return nil, fmt.Errorf("failed to encode criterion scores: %w", err)
	}
	return data, nil
}

func unmarshalScores(data []byte, sheet *models.ScoreSheet) error {
	if err := json.Unmarshal(data, &sheet.Scores); err != nil {
		return fmt.Errorf("failed to decode criterion scores for sheet %d: %w", sheet.ID, err)
	}
	return nil
}

func (r *postgresScoreSheetRepository) Create(ctx context.Context, sheet *models.ScoreSheet) error {
	scores, err := marshalScores(sheet.Scores)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO score_sheets (round_id, team_id, judge_id, scores, comments)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err = r.db.QueryRowContext(ctx, query,
		sheet.RoundID,
		sheet.TeamID,
		sheet.JudgeID,
		scores,
		sheet.Comments,
	).Scan(&sheet.ID, &sheet.CreatedAt)

	return r.handleScoreSheetError(err)
}

func (r *postgresScoreSheetRepository) GetByID(ctx context.Context, id int) (*models.ScoreSheet, error) {
	query := `
		SELECT id, round_id, team_id, judge_id, scores, comments, created_at
		FROM score_sheets
		WHERE id = $1`

	sheet := &models.ScoreSheet{}
	var rawScores []byte
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&sheet.ID,
		&sheet.RoundID,
		&sheet.TeamID,
		&sheet.JudgeID,
		&rawScores,
		&sheet.Comments,
		&sheet.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrScoreSheetNotFound
		}
		return nil, err
	}
	if err := unmarshalScores(rawScores, sheet); err != nil {
		return nil, err
	}
	return sheet, nil
}

func (r *postgresScoreSheetRepository) List(ctx context.Context, filter ScoreSheetFilter) ([]*models.ScoreSheet, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`
		SELECT id, round_id, team_id, judge_id, scores, comments, created_at
		FROM score_sheets
		WHERE 1=1`)

	args := []interface{}{}
	placeholderIndex := 1

	appendCondition := func(condition string, value interface{}) {
		queryBuilder.WriteString(" AND " + condition + " $")
		queryBuilder.WriteString(strconv.Itoa(placeholderIndex))
		args = append(args, value)
		placeholderIndex++
	}

	if filter.RoundID != nil {
		appendCondition("round_id =", *filter.RoundID)
	}
	if filter.TeamID != nil {
		appendCondition("team_id =", *filter.TeamID)
	}
	if filter.JudgeID != nil {
		appendCondition("judge_id =", *filter.JudgeID)
	}

	queryBuilder.WriteString(" ORDER BY id ASC")

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sheets := make([]*models.ScoreSheet, 0)
	for rows.Next() {
		var sheet models.ScoreSheet
		var rawScores []byte
		if scanErr := rows.Scan(
			&sheet.ID,
			&sheet.RoundID,
			&sheet.TeamID,
			&sheet.JudgeID,
			&rawScores,
			&sheet.Comments,
			&sheet.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		if err := unmarshalScores(rawScores, &sheet); err != nil {
			return nil, err
		}
		sheets = append(sheets, &sheet)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}
	return sheets, nil
}

func (r *postgresScoreSheetRepository) ListByRoundTeam(ctx context.Context, roundID, teamID int) ([]*models.ScoreSheet, error) {
	return r.List(ctx, ScoreSheetFilter{RoundID: &roundID, TeamID: &teamID})
}

func (r *postgresScoreSheetRepository) Update(ctx context.Context, sheet *models.ScoreSheet) error {
	scores, err := marshalScores(sheet.Scores)
	if err != nil {
		return err
	}

	query := `
		UPDATE score_sheets
		SET scores = $1, comments = $2
		WHERE id = $3`

	result, err := r.db.ExecContext(ctx, query, scores, sheet.Comments, sheet.ID)
	if err != nil {
		return r.handleScoreSheetError(err)
	}
	return checkAffectedRows(result, ErrScoreSheetNotFound)
}

func (r *postgresScoreSheetRepository) handleScoreSheetError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "23505": // unique_violation on (round_id, team_id, judge_id)
			return ErrScoreSheetConflict
		case "23503": // foreign_key_violation
			return ErrScoreSheetRefBroken
		}
	}
	return err
}
