package models

// Slot resolution states. Consumers render slots without knowing any
// format-specific rules: a slot is a concrete team, a TBD fed by another
// match, or a permanently empty bye marker.
const (
	SlotTeam = "team"
	SlotTBD  = "tbd"
	SlotBye  = "bye"
)

const (
	SourceWinner = "winner"
	SourceLoser  = "loser"
)

type SlotView struct {
	Kind string `json:"kind"`
	Team *Team  `json:"team,omitempty"`
	// SourceMatchID and SourceKind are set for TBD slots: the slot will be
	// filled by the winner or loser of that match.
	SourceMatchID *int   `json:"source_match_id,omitempty"`
	SourceKind    string `json:"source_kind,omitempty"`
}

type MatchView struct {
	ID          int         `json:"id"`
	Round       int         `json:"round"`
	MatchNumber int         `json:"match_number"`
	GroupNumber *int        `json:"group_number,omitempty"`
	Slot1       SlotView    `json:"slot1"`
	Slot2       SlotView    `json:"slot2"`
	Score1      *int        `json:"score1,omitempty"`
	Score2      *int        `json:"score2,omitempty"`
	Winner      *Team       `json:"winner,omitempty"`
	IsBye       bool        `json:"is_bye"`
	Status      MatchStatus `json:"status"`
}

type RoundView struct {
	Round   int         `json:"round"`
	Name    string      `json:"name"`
	Matches []MatchView `json:"matches"`
}

type GroupView struct {
	Number    int         `json:"number"`
	Name      string      `json:"name"`
	Teams     []Team      `json:"teams"`
	Matches   []MatchView `json:"matches"`
	Standings []Standing  `json:"standings"`
}

// BracketView is the single serializable snapshot consumed by every
// rendering surface. Exactly one of the format payloads is populated.
type BracketView struct {
	TournamentID int           `json:"tournament_id"`
	Format       BracketFormat `json:"format"`

	// Single elimination and Swiss.
	Rounds []RoundView `json:"rounds,omitempty"`

	// Double elimination.
	WinnersRounds []RoundView `json:"winners_rounds,omitempty"`
	LosersRounds  []RoundView `json:"losers_rounds,omitempty"`
	GrandFinal    *MatchView  `json:"grand_final,omitempty"`

	// Group stage.
	Groups []GroupView `json:"groups,omitempty"`

	// Swiss and leaderboard ranking; per-group standings live in Groups.
	Standings []Standing `json:"standings,omitempty"`
}
