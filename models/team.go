package models

import "time"

type Team struct {
	ID                 int       `json:"id" db:"id"`
	TeamCode           string    `json:"team_id" db:"team_code"`
	RepresentativeName string    `json:"team_representative_name" db:"representative_name"`
	InstitutionName    string    `json:"institution_name" db:"institution_name"`
	CurrentStage       Stage     `json:"current_round" db:"current_stage"`
	CreatedAt          time.Time `json:"created_at" db:"created_at"`

	LogoKey *string `json:"-" db:"logo_key"`
	LogoURL *string `json:"logo_url,omitempty" db:"-"`
}
