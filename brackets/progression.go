package brackets

import (
	"fmt"

	"github.com/openbracket/tournament-engine/models"
)

// Advance propagates the outcome of a decided match into every downstream
// slot that references it: the winner along NextMatchID/WinnerToSlot, the
// loser along LoserNextMatchID/LoserToSlot. Writes are idempotent (a slot
// already holding the exact team is left alone), so retries never
// double-assign. A correction that would flow into a match with its own
// recorded result fails with ErrDownstreamDecided before anything is
// written; callers run Advance inside a transaction and persist only the
// returned matches.
//
// Byes whose occupant arrives through progression (sparse double
// elimination brackets) are decided on the spot and cascade further.
//
// Swiss, group and leaderboard matches carry no links and advance nothing.
func Advance(m *models.Match, index map[int]*models.Match) ([]*models.Match, error) {
	if m.WinnerID == nil {
		return nil, fmt.Errorf("match %d has no winner to advance", m.ID)
	}

	var changed []*models.Match

	apply := func(targetID, slot int, teamID int) error {
		target, ok := index[targetID]
		if !ok {
			return fmt.Errorf("downstream match %d not loaded", targetID)
		}
		mutated, err := placeTeam(target, slot, teamID)
		if err != nil {
			return err
		}
		if !mutated {
			return nil
		}
		changed = append(changed, target)

		// An occupied bye resolves immediately and cascades.
		if target.IsBye && target.WinnerID == nil {
			target.WinnerID = intPtr(teamID)
			target.Status = models.MatchStatusCompleted
			cascade, err := Advance(target, index)
			if err != nil {
				return err
			}
			changed = append(changed, cascade...)
		}
		return nil
	}

	if m.NextMatchID != nil && m.WinnerToSlot != nil {
		if err := apply(*m.NextMatchID, *m.WinnerToSlot, *m.WinnerID); err != nil {
			return nil, err
		}
	}
	if loser := m.LoserID(); loser != nil && m.LoserNextMatchID != nil && m.LoserToSlot != nil {
		if err := apply(*m.LoserNextMatchID, *m.LoserToSlot, *loser); err != nil {
			return nil, err
		}
	}

	return changed, nil
}

// placeTeam writes teamID into the given slot of target, reporting whether
// anything changed. Replacing a different team (result correction) is only
// legal while the target itself is undecided.
func placeTeam(target *models.Match, slot int, teamID int) (bool, error) {
	var current **int
	switch slot {
	case 1:
		current = &target.Team1ID
	case 2:
		current = &target.Team2ID
	default:
		return false, fmt.Errorf("match %d: invalid destination slot %d", target.ID, slot)
	}

	if *current != nil && **current == teamID {
		return false, nil
	}
	if target.Decided() && !target.IsBye {
		return false, fmt.Errorf("%w: match %d", ErrDownstreamDecided, target.ID)
	}
	if target.IsBye && target.WinnerID != nil && !target.HasTeam(teamID) {
		// A bye that already auto-advanced someone else cannot be rewired.
		return false, fmt.Errorf("%w: bye match %d", ErrDownstreamDecided, target.ID)
	}
	*current = intPtr(teamID)
	return true, nil
}

// RoundComplete reports whether every match of the given round (within one
// section) has a recorded winner. Used to gate Swiss round generation.
func RoundComplete(matches []*models.Match, round int) bool {
	seen := false
	for _, m := range matches {
		if m.Round != round {
			continue
		}
		seen = true
		if !m.Decided() {
			return false
		}
	}
	return seen
}
