package models

import "strings"

// LeagueRange is one configured rating bracket. Ranges are supplied sorted
// descending by Min; the first range containing a player's rating wins.
type LeagueRange struct {
	Name string `json:"name"`
	Min  int    `json:"min"`
	Max  int    `json:"max"`
}

func (r LeagueRange) Contains(elo float64) bool {
	return float64(r.Min) <= elo && elo <= float64(r.Max)
}

// Subgroup suffixes have accumulated two naming styles over past seasons:
// "Pro League-1" and "Pro League-A" refer to the same subgroup.
var suffixAliases = map[string]string{
	"-a": "-1",
	"-b": "-2",
	"-c": "-3",
	"-d": "-4",
}

// Some leagues were renamed between seasons; history still carries the old
// labels. Keys and values are lowercase canonical-suffix forms.
var leagueSynonyms = map[string]string{
	"procrastination league": "lazy league",
}

// NormalizeLeagueName maps a user-supplied division label to its canonical
// form: lowercase, letter subgroup suffixes rewritten to numeric ones, and
// known renamed leagues resolved through the synonym table.
func NormalizeLeagueName(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	for alias, canonical := range suffixAliases {
		if strings.HasSuffix(n, alias) {
			n = strings.TrimSuffix(n, alias) + canonical
			break
		}
	}
	if canonical, ok := leagueSynonyms[n]; ok {
		return canonical
	}
	// Synonyms may also appear with a subgroup suffix attached.
	if idx := strings.LastIndex(n, "-"); idx > 0 {
		if canonical, ok := leagueSynonyms[n[:idx]]; ok {
			return canonical + n[idx:]
		}
	}
	return n
}

// SameLeague reports whether two division labels refer to the same division
// once normalized.
func SameLeague(a, b string) bool {
	return NormalizeLeagueName(a) == NormalizeLeagueName(b)
}
