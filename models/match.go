package models

import "time"

type MatchStatus string

const (
	MatchStatusScheduled MatchStatus = "scheduled"
	MatchStatusCompleted MatchStatus = "completed"
	MatchStatusCanceled  MatchStatus = "canceled"
)

// BracketSection tells which part of the competition structure a match
// belongs to. Single elimination and Swiss only ever use SectionWinners.
type BracketSection string

const (
	SectionWinners     BracketSection = "winners"
	SectionLosers      BracketSection = "losers"
	SectionGrandFinal  BracketSection = "grand_final"
	SectionGroup       BracketSection = "group"
	SectionLeaderboard BracketSection = "leaderboard"
)

// Match is one slot-pair in a bracket. Team1ID/Team2ID are nil while the
// slot is still fed by an undecided upstream match; the feed itself is
// recorded on the upstream row (NextMatchID/WinnerToSlot for the winner,
// LoserNextMatchID/LoserToSlot for the loser in double elimination).
//
// Leaderboard entries reuse this shape with only Team1ID set; Score1 is
// the accumulated score and Winner is never assigned.
type Match struct {
	ID           int            `json:"id" db:"id"`
	TournamentID int            `json:"tournament_id" db:"tournament_id"`
	Section      BracketSection `json:"section" db:"section"`
	Round        int            `json:"round" db:"round"`
	MatchNumber  int            `json:"match_number" db:"match_number"`
	GroupNumber  *int           `json:"group_number,omitempty" db:"group_number"`

	Team1ID *int `json:"team1_id,omitempty" db:"team1_id"`
	Team2ID *int `json:"team2_id,omitempty" db:"team2_id"`
	Score1  *int `json:"score1,omitempty" db:"score1"`
	Score2  *int `json:"score2,omitempty" db:"score2"`

	WinnerID *int        `json:"winner_id,omitempty" db:"winner_id"`
	IsBye    bool        `json:"is_bye" db:"is_bye"`
	Status   MatchStatus `json:"status" db:"status"`

	BracketUID *string `json:"bracket_uid,omitempty" db:"bracket_uid"`

	NextMatchID      *int `json:"next_match_id,omitempty" db:"next_match_id"`
	WinnerToSlot     *int `json:"winner_to_slot,omitempty" db:"winner_to_slot"`
	LoserNextMatchID *int `json:"loser_next_match_id,omitempty" db:"loser_next_match_id"`
	LoserToSlot      *int `json:"loser_to_slot,omitempty" db:"loser_to_slot"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Decided reports whether the match has a recorded winner. Bye matches
// count as decided from the moment they are built.
func (m *Match) Decided() bool {
	return m.WinnerID != nil
}

// Ready reports whether both slots hold concrete teams, i.e. a result may
// be recorded. Byes are never ready: their outcome is fixed at build time.
func (m *Match) Ready() bool {
	return !m.IsBye && m.Team1ID != nil && m.Team2ID != nil
}

// HasTeam reports whether the given team occupies one of the two slots.
func (m *Match) HasTeam(teamID int) bool {
	return (m.Team1ID != nil && *m.Team1ID == teamID) ||
		(m.Team2ID != nil && *m.Team2ID == teamID)
}

// LoserID returns the team that did not win, or nil for undecided or bye
// matches.
func (m *Match) LoserID() *int {
	if m.WinnerID == nil || m.IsBye || m.Team1ID == nil || m.Team2ID == nil {
		return nil
	}
	if *m.WinnerID == *m.Team1ID {
		return m.Team2ID
	}
	return m.Team1ID
}
