package brackets

import "github.com/mauer01/5D-Chess-League-Bot/models"

// GenerateRoundRobin returns one pairing per unordered pair of players in
// the (sub)division: every member plays every other member exactly once
// across the season, as a single two-game match. Both game slots start
// unset. An empty or single-player pool yields no pairings.
func GenerateRoundRobin(groupName string, seasonNumber int, playerIDs []int64) []*models.Pairing {
	n := len(playerIDs)
	pairings := make([]*models.Pairing, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			pairings = append(pairings, &models.Pairing{
				Player1ID:    playerIDs[i],
				Player2ID:    playerIDs[j],
				SeasonNumber: seasonNumber,
				GroupName:    groupName,
			})
		}
	}
	return pairings
}
