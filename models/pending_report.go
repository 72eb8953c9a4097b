package models

import "time"

// Valid claim symbols, always from the reporting player's own perspective.
const (
	ClaimWin  = "w"
	ClaimLoss = "l"
	ClaimDraw = "d"
)

// ValidClaim reports whether s is one of the three claim symbols.
func ValidClaim(s string) bool {
	return s == ClaimWin || s == ClaimLoss || s == ClaimDraw
}

// OppositeClaim returns the symbol the opponent has to submit to confirm a
// pending report: wins and losses mirror each other, a draw confirms a draw.
func OppositeClaim(s string) string {
	switch s {
	case ClaimWin:
		return ClaimLoss
	case ClaimLoss:
		return ClaimWin
	default:
		return ClaimDraw
	}
}

// PendingReport is one side's unconfirmed submission for a single game slot.
// It lives from first submission until confirmation, cancellation, or the
// staleness sweep removes it.
type PendingReport struct {
	ID         int       `json:"id"`
	PairingID  int       `json:"pairing_id"`
	ReporterID int64     `json:"reporter_id"`
	Result     string    `json:"result"`
	GameNumber int       `json:"game_number"`
	Timestamp  time.Time `json:"timestamp"`
}
