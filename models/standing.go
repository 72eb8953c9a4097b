package models

// Standing is one row of a division ranking. SB is the Sonneborn-Berger
// style tiebreak: half the sum of defeated opponents' total points.
type Standing struct {
	PlayerID int64   `json:"player_id"`
	Points   float64 `json:"points"`
	SB       float64 `json:"sb"`
}
