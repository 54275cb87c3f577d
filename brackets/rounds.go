package brackets

import "fmt"

// RoundName derives the display name from the distance to the final.
func RoundName(round, totalRounds int) string {
	switch totalRounds - round {
	case 0:
		return "Final"
	case 1:
		return "Semi-Final"
	case 2:
		return "Quarter-Final"
	default:
		return fmt.Sprintf("Round %d", round)
	}
}

// LosersRoundName never uses the finals table: the losers bracket has its
// own culminating match but the tournament's final lives elsewhere.
func LosersRoundName(round int) string {
	return fmt.Sprintf("Losers Round %d", round)
}
