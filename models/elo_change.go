package models

import "time"

// EloChange is an append-only audit entry written for every rating delta
// applied to a player. Never updated or deleted.
type EloChange struct {
	ID        int       `json:"id"`
	PlayerID  int64     `json:"player_id"`
	EloChange float64   `json:"elo_change"`
	Timestamp time.Time `json:"timestamp"`
}
