package services

import (
	"testing"

	"github.com/openbracket/tournament-engine/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readyMatch() *models.Match {
	return &models.Match{
		ID:      1,
		Team1ID: intPtr(10),
		Team2ID: intPtr(20),
		Status:  models.MatchStatusScheduled,
	}
}

func TestResolveWinnerExplicit(t *testing.T) {
	m := readyMatch()

	winner, err := resolveWinner(m, RecordResultParams{WinnerID: intPtr(20)})
	require.NoError(t, err)
	assert.Equal(t, 20, winner)

	// The explicit winner overrides contradicting scores.
	winner, err = resolveWinner(m, RecordResultParams{
		Score1: intPtr(5), Score2: intPtr(0), WinnerID: intPtr(20),
	})
	require.NoError(t, err)
	assert.Equal(t, 20, winner)
}

func TestResolveWinnerRejectsOutsider(t *testing.T) {
	m := readyMatch()
	_, err := resolveWinner(m, RecordResultParams{WinnerID: intPtr(99)})
	assert.ErrorIs(t, err, ErrInvalidWinner)
}

func TestResolveWinnerFromScores(t *testing.T) {
	m := readyMatch()

	winner, err := resolveWinner(m, RecordResultParams{Score1: intPtr(3), Score2: intPtr(1)})
	require.NoError(t, err)
	assert.Equal(t, 10, winner)

	winner, err = resolveWinner(m, RecordResultParams{Score1: intPtr(0), Score2: intPtr(2)})
	require.NoError(t, err)
	assert.Equal(t, 20, winner)
}

func TestResolveWinnerAmbiguous(t *testing.T) {
	m := readyMatch()

	_, err := resolveWinner(m, RecordResultParams{Score1: intPtr(2), Score2: intPtr(2)})
	assert.ErrorIs(t, err, ErrAmbiguousResult)

	_, err = resolveWinner(m, RecordResultParams{Score1: intPtr(2)})
	assert.ErrorIs(t, err, ErrAmbiguousResult)

	_, err = resolveWinner(m, RecordResultParams{})
	assert.ErrorIs(t, err, ErrAmbiguousResult)
}

func TestApplyLeaderboardScore(t *testing.T) {
	entry := &models.Match{
		ID:      1,
		Section: models.SectionLeaderboard,
		Team1ID: intPtr(10),
		Status:  models.MatchStatusScheduled,
	}

	err := applyLeaderboardScore(entry, RecordResultParams{Score1: intPtr(150)})
	require.NoError(t, err)
	assert.Equal(t, 150, *entry.Score1)
	// The completed status, never a winner, is what marks the entry as
	// holding a recorded result; the rebuild gate counts on it.
	assert.Equal(t, models.MatchStatusCompleted, entry.Status)
	assert.Nil(t, entry.WinnerID)

	// Resubmitting replaces the score.
	err = applyLeaderboardScore(entry, RecordResultParams{Score1: intPtr(200)})
	require.NoError(t, err)
	assert.Equal(t, 200, *entry.Score1)
}

func TestApplyLeaderboardScoreValidation(t *testing.T) {
	entry := &models.Match{Section: models.SectionLeaderboard, Team1ID: intPtr(10)}

	err := applyLeaderboardScore(entry, RecordResultParams{})
	assert.ErrorIs(t, err, ErrScoreRequired)

	err = applyLeaderboardScore(entry, RecordResultParams{Score1: intPtr(1), WinnerID: intPtr(10)})
	assert.ErrorIs(t, err, ErrValidationFailed)

	err = applyLeaderboardScore(entry, RecordResultParams{Score1: intPtr(1), Score2: intPtr(2)})
	assert.ErrorIs(t, err, ErrValidationFailed)

	// Nothing was written by the rejected submissions.
	assert.Nil(t, entry.Score1)
}

func TestPlayedFunc(t *testing.T) {
	matches := []*models.Match{
		{Team1ID: intPtr(1), Team2ID: intPtr(2)},
		{Team1ID: intPtr(4), Team2ID: intPtr(3)},
		{Team1ID: intPtr(5), IsBye: true},
	}

	played := playedFunc(matches)
	assert.True(t, played(1, 2))
	assert.True(t, played(2, 1))
	assert.True(t, played(3, 4))
	assert.False(t, played(1, 3))
	assert.False(t, played(5, 1), "byes are not meetings")
}

func TestNextPowerOfTwo(t *testing.T) {
	assert.Equal(t, 1, nextPowerOfTwo(1))
	assert.Equal(t, 2, nextPowerOfTwo(2))
	assert.Equal(t, 4, nextPowerOfTwo(3))
	assert.Equal(t, 8, nextPowerOfTwo(5))
	assert.Equal(t, 8, nextPowerOfTwo(8))
	assert.Equal(t, 16, nextPowerOfTwo(9))
}
