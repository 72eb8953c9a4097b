package models

// Color outcomes as stored in match history.
const (
	ColorWonWhite = "w"
	ColorWonBlack = "b"
	ColorWonDraw  = "d"
)

// MatchRecord is the immutable confirmed-game history entry and the sole
// source of truth for standings. Which seat plays white alternates between
// the two games of a pairing, so seat 1 is white in game 1 and black in
// game 2.
type MatchRecord struct {
	ID          int    `json:"id"`
	WhitePlayer int64  `json:"whiteplayer"`
	BlackPlayer int64  `json:"blackplayer"`
	ColorWon    string `json:"colorwon"`
	Season      int    `json:"season"`
	League      string `json:"league"`
}

// Points returns the score the given player earned in this game: 1 for a
// win, 0.5 for a draw, 0 otherwise (including players not in the game).
func (m *MatchRecord) Points(playerID int64) float64 {
	switch {
	case m.ColorWon == ColorWonWhite && m.WhitePlayer == playerID:
		return 1
	case m.ColorWon == ColorWonBlack && m.BlackPlayer == playerID:
		return 1
	case m.ColorWon == ColorWonDraw && (m.WhitePlayer == playerID || m.BlackPlayer == playerID):
		return 0.5
	default:
		return 0
	}
}

// Defeated returns the id of the opponent the given player beat in this
// game, or 0 when the player did not win it.
func (m *MatchRecord) Defeated(playerID int64) int64 {
	switch {
	case m.ColorWon == ColorWonWhite && m.WhitePlayer == playerID:
		return m.BlackPlayer
	case m.ColorWon == ColorWonBlack && m.BlackPlayer == playerID:
		return m.WhitePlayer
	default:
		return 0
	}
}
