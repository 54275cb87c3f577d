package models

// Standing is one ranked row derived from the decided matches of a
// tournament. Wins are worth three points; draws are not supported.
type Standing struct {
	Rank        int   `json:"rank"`
	TeamID      int   `json:"team_id"`
	Seed        int   `json:"seed"`
	GroupNumber *int  `json:"group_number,omitempty"`
	Played      int   `json:"played"`
	Wins        int   `json:"wins"`
	Losses      int   `json:"losses"`
	Points      int   `json:"points"`
	Team        *Team `json:"team,omitempty"`
}
