package models

// Season numbers increase monotonically; at most one season is active at a
// time, enforced by the season service rather than a database constraint.
type Season struct {
	SeasonNumber int  `json:"season_number"`
	Active       bool `json:"active"`
}
