package models

// Player is a registered league member. The ID is the external identifier
// supplied by the chat front end; the engine never generates player ids.
type Player struct {
	ID            int64   `json:"id"`
	Elo           float64 `json:"elo"`
	Wins          int     `json:"wins"`
	Losses        int     `json:"losses"`
	Draws         int     `json:"draws"`
	SignedUp      bool    `json:"signed_up"`
	SeasonsMissed int     `json:"seasons_missed"`
}

func (p *Player) TotalGames() int {
	return p.Wins + p.Losses + p.Draws
}

// WinRate counts draws as half a win. Returns 0 for players without games.
func (p *Player) WinRate() float64 {
	total := p.TotalGames()
	if total == 0 {
		return 0
	}
	return (float64(p.Wins) + 0.5*float64(p.Draws)) / float64(total) * 100
}
