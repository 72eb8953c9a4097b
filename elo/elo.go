// Package elo implements the rating arithmetic of the league: logistic
// expected scores, single-game updates, and the two-game match statistics
// used when a pairing completes.
package elo

import "math"

const (
	// InitialRating is assigned on registration and is also the value
	// inactive players decay toward.
	InitialRating = 1380

	// KFactor scales every rating movement.
	KFactor = 25
)

// ExpectedScore returns the probability in (0,1) that a beats b.
func ExpectedScore(a, b float64) float64 {
	return 1 / (1 + math.Pow(10, (b-a)/400))
}

// UpdateRatings computes new ratings for a decisive game. The first argument
// is the winner. A single game is zero-sum: the winner gains exactly what
// the loser drops.
func UpdateRatings(winner, loser float64) (newWinner, newLoser float64) {
	expected := ExpectedScore(winner, loser)
	newWinner = winner + KFactor*(1-expected)
	newLoser = loser - KFactor*(1-expected)
	return newWinner, newLoser
}

// UpdateRatingsDraw moves both sides toward a 0.5 expected score. Equal
// ratings are left unchanged.
func UpdateRatingsDraw(a, b float64) (newA, newB float64) {
	newA = a + KFactor*(0.5-ExpectedScore(a, b))
	newB = b + KFactor*(0.5-ExpectedScore(b, a))
	return newA, newB
}

// PlayerStats is the outcome of a completed two-game match for one player.
// Wins/Losses/Draws are increments to be added to the player's counters, not
// totals.
type PlayerStats struct {
	Elo    float64
	Wins   int
	Losses int
	Draws  int
}

// MatchStats folds both game results of a pairing into new ratings and
// counter increments for seat 1 and seat 2. Results are canonical, i.e. from
// seat 1's perspective: 1.0 seat 1 won, 0.0 seat 2 won, 0.5 draw.
//
// The games are applied sequentially: game 2 is rated against the ratings
// that game 1 already produced, so the second game moves less when the first
// went the same way.
func MatchStats(game1, game2, elo1, elo2 float64) (PlayerStats, PlayerStats) {
	p1 := PlayerStats{Elo: elo1}
	p2 := PlayerStats{Elo: elo2}

	for _, result := range []float64{game1, game2} {
		switch result {
		case 1.0:
			p1.Elo, p2.Elo = UpdateRatings(p1.Elo, p2.Elo)
			p1.Wins++
			p2.Losses++
		case 0.0:
			p2.Elo, p1.Elo = UpdateRatings(p2.Elo, p1.Elo)
			p2.Wins++
			p1.Losses++
		default:
			p1.Elo, p2.Elo = UpdateRatingsDraw(p1.Elo, p2.Elo)
			p1.Draws++
			p2.Draws++
		}
	}
	return p1, p2
}

// Decay moves a rating one step of K toward InitialRating without crossing
// it. Applied to players who sat out two or more consecutive seasons.
func Decay(rating float64) float64 {
	switch {
	case rating > InitialRating:
		return math.Max(InitialRating, rating-KFactor)
	case rating < InitialRating:
		return math.Min(InitialRating, rating+KFactor)
	default:
		return rating
	}
}
