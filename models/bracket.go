package models

import "time"

// BracketFormat is a closed set of supported competition structures.
// Builder, progression and standings all dispatch on this tag.
type BracketFormat string

const (
	FormatSingleElimination BracketFormat = "single_elimination"
	FormatDoubleElimination BracketFormat = "double_elimination"
	FormatSwiss             BracketFormat = "swiss"
	FormatGroupStage        BracketFormat = "group_stage"
	FormatLeaderboard       BracketFormat = "leaderboard"
)

// Valid reports whether f is one of the five known formats.
func (f BracketFormat) Valid() bool {
	switch f {
	case FormatSingleElimination, FormatDoubleElimination, FormatSwiss,
		FormatGroupStage, FormatLeaderboard:
		return true
	}
	return false
}

// Tree reports whether the format is an elimination tree, which constrains
// MaxSlots to a power of two.
func (f BracketFormat) Tree() bool {
	return f == FormatSingleElimination || f == FormatDoubleElimination
}

// Bracket is the per-tournament aggregate root: one row describing the
// structure, with the matches stored individually and keyed by id.
// Format is immutable after creation; a rebuild replaces the matches but
// never the format.
type Bracket struct {
	ID           int           `json:"id" db:"id"`
	TournamentID int           `json:"tournament_id" db:"tournament_id"`
	Format       BracketFormat `json:"format" db:"format"`
	MaxSlots     int           `json:"max_slots" db:"max_slots"`

	// SwissRoundCap is min(5, teamCount-1); nil for non-Swiss formats.
	SwissRoundCap *int `json:"swiss_round_cap,omitempty" db:"swiss_round_cap"`
	// GroupCount is nil for non-group formats.
	GroupCount *int `json:"group_count,omitempty" db:"group_count"`
	// LosersGenerated flips once the full losers bracket has been
	// populated by the explicit operator action.
	LosersGenerated bool `json:"losers_generated" db:"losers_generated"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
