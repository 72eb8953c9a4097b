package models

// Pairing is the season-scoped match record between two players: one
// round-robin fixture consisting of two games. A result slot is nil until the
// game is confirmed and is written exactly once.
type Pairing struct {
	ID           int      `json:"id"`
	Player1ID    int64    `json:"player1_id"`
	Player2ID    int64    `json:"player2_id"`
	Result1      *float64 `json:"result1,omitempty"`
	Result2      *float64 `json:"result2,omitempty"`
	SeasonNumber int      `json:"season_number"`
	GroupName    string   `json:"group_name"`
}

// Result returns the slot for game 1 or 2, nil for anything else.
func (p *Pairing) Result(gameNumber int) *float64 {
	switch gameNumber {
	case 1:
		return p.Result1
	case 2:
		return p.Result2
	default:
		return nil
	}
}

func (p *Pairing) Complete() bool {
	return p.Result1 != nil && p.Result2 != nil
}

// Seat returns 1 or 2 for the given player, 0 if they are not part of the
// pairing.
func (p *Pairing) Seat(playerID int64) int {
	switch playerID {
	case p.Player1ID:
		return 1
	case p.Player2ID:
		return 2
	default:
		return 0
	}
}
