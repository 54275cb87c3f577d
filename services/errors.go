package services

import "errors"

// Sentinel errors shared across services and the HTTP error mapping.
var (
	ErrNotFound = errors.New("requested resource not found")

	ErrValidationFailed = errors.New("validation failed")

	// Bracket lifecycle
	ErrBracketNotFound      = errors.New("bracket not found")
	ErrBracketAlreadyExists = errors.New("bracket already exists for this tournament")
	ErrBracketHasResults    = errors.New("bracket has recorded results and cannot be rebuilt without force")
	ErrUnsupportedFormat    = errors.New("unsupported bracket format")
	ErrNotEnoughTeams       = errors.New("not enough teams to build a bracket")
	ErrInvalidSlotCount     = errors.New("slot count must be a power of two and fit all teams")

	// Match results
	ErrMatchNotFound            = errors.New("match not found")
	ErrMatchNotReady            = errors.New("match is not ready for a result")
	ErrMatchIsBye               = errors.New("bye matches cannot receive results")
	ErrInvalidWinner            = errors.New("winner is not a participant of this match")
	ErrAmbiguousResult          = errors.New("result is ambiguous, scores are tied and no winner given")
	ErrScoreRequired            = errors.New("leaderboard entries require a score")
	ErrDownstreamAlreadyDecided = errors.New("a downstream match already has a recorded result")

	// Round generation
	ErrRoundIncomplete    = errors.New("current round still has undecided matches")
	ErrSwissCapReached    = errors.New("swiss round cap reached")
	ErrLosersAlreadyBuilt = errors.New("losers bracket already generated")
	ErrFormatHasNoRounds  = errors.New("this format does not generate additional rounds")

	ErrTournamentNotFound = errors.New("tournament not found")
	ErrTeamNotFound       = errors.New("team not found")

	// Team logos
	ErrUnsupportedLogoType = errors.New("unsupported logo content type")
	ErrLogoStorageDisabled = errors.New("logo storage is not configured")
)
