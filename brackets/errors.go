package brackets

import "errors"

// Builder validation failures. Services wrap these; handlers map them to
// HTTP status codes.
var (
	ErrInvalidFormat     = errors.New("unrecognized bracket format")
	ErrInsufficientTeams = errors.New("not enough teams to generate a bracket (minimum 2)")
	ErrInvalidSlotCount  = errors.New("slot count must be a power of two for elimination formats")

	// ErrRoundIncomplete is returned when the next Swiss round is requested
	// while the current one still has undecided matches.
	ErrRoundIncomplete = errors.New("previous round is not complete")
	// ErrSwissComplete is returned once the configured Swiss round cap has
	// been reached.
	ErrSwissComplete = errors.New("all swiss rounds have been generated")

	// ErrDownstreamDecided is returned by the progression engine when a
	// result correction would cascade into a match that already has its own
	// recorded result.
	ErrDownstreamDecided = errors.New("downstream match already decided")
)
