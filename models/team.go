package models

import "time"

// Team is a registered roster entry. The engine never mutates teams; they
// are owned by the roster provider and read through TeamRepository.
type Team struct {
	ID           int       `json:"id" db:"id"`
	TournamentID int       `json:"tournament_id" db:"tournament_id"`
	Name         string    `json:"name" db:"name"`
	Tag          *string   `json:"tag,omitempty" db:"tag"`
	Nationality  *string   `json:"nationality,omitempty" db:"nationality"`
	Seed         int       `json:"seed" db:"seed"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`

	LogoKey *string `json:"-" db:"logo_key"`
	LogoURL *string `json:"logo_url,omitempty" db:"-"`
}
