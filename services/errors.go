package services

import "errors"

// Semantic error categories surfaced to the presentation layer. All of these
// are expected, recoverable conditions; handlers map them to HTTP statuses
// and the chat adapter renders them verbatim.
var (
	// Input validation, rejected before any state change.
	ErrInvalidClaim      = errors.New("invalid result, use 'w', 'l' or 'd'")
	ErrInvalidGameNumber = errors.New("invalid game number, use 1 or 2")
	ErrSelfReport        = errors.New("you can't report a match with yourself")
	ErrInvalidLimit      = errors.New("leaderboard limit must be positive")

	// Registration and signup.
	ErrNotRegistered     = errors.New("player is not registered")
	ErrAlreadyRegistered = errors.New("player is already registered")

	// Match reporting.
	ErrNoPairingFound      = errors.New("no valid season pairing found")
	ErrAlreadyReported     = errors.New("this game has already been confirmed")
	ErrDuplicateReport     = errors.New("already reported, waiting for opponent's confirmation")
	ErrConflictingResults  = errors.New("results don't match, please report the opposite result")
	ErrNoPendingReport     = errors.New("no pending report found to cancel")
	ErrCancelClaimMismatch = errors.New("result doesn't match your pending report")

	// Season lifecycle.
	ErrSeasonAlreadyActive = errors.New("there is already an active season")
	ErrNoActiveSeason      = errors.New("no active season")
	ErrSeasonNotFound      = errors.New("season not found")
	ErrNoPlayersToGroup    = errors.New("no players have signed up for the season")
	ErrNoDivisionsFormed   = errors.New("couldn't group players into league divisions")
)
