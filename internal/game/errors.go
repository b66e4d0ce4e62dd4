package game

import "errors"

var (
	// ErrNoRollsRemaining is returned when a roll is attempted with the
	// turn's budget exhausted. Recoverable: the budget resets next turn.
	ErrNoRollsRemaining = errors.New("no rolls remaining this turn")

	// ErrInvalidKeepMask is returned for a keep mask that does not cover
	// exactly five dice. The roll budget is untouched.
	ErrInvalidKeepMask = errors.New("keep mask must cover exactly five dice")

	// ErrCategoryUnavailable is returned when scoring a category that is
	// already committed or does not exist.
	ErrCategoryUnavailable = errors.New("category unavailable")

	// ErrMustRollFirst is returned when a score is attempted before any
	// roll has been taken this turn.
	ErrMustRollFirst = errors.New("must roll before scoring")

	// ErrGameComplete is returned for any roll or score after the
	// scorecard is full.
	ErrGameComplete = errors.New("game is complete")
)
