// Package brackets holds the pure season math: partitioning signed-up
// players into league divisions, splitting oversized divisions into balanced
// subgroups, and generating round-robin pairings. Nothing in here touches
// storage.
package brackets

import (
	"fmt"
	"math/rand"

	"github.com/mauer01/5D-Chess-League-Bot/models"
)

// maxGroupSize is the largest division that still plays a single round
// robin; anything bigger is split into subgroups of 4 to 7 players.
const maxGroupSize = 7

// RatedPlayer is the grouper's input: an id with its current rating.
type RatedPlayer struct {
	ID  int64
	Elo float64
}

// GroupPlayers assigns each player to the first league range containing
// their rating. Ranges must already be sorted descending by Min, which is
// how config.LoadLeagueRanges returns them. Players matching no range are
// left out of the season.
func GroupPlayers(players []RatedPlayer, ranges []models.LeagueRange) map[string][]int64 {
	groups := make(map[string][]int64)
	for _, p := range players {
		for _, r := range ranges {
			if r.Contains(p.Elo) {
				groups[r.Name] = append(groups[r.Name], p.ID)
				break
			}
		}
	}
	return groups
}

// SubgroupSizes computes balanced subgroup sizes for a division of count
// players: peel off chunks of 6 while more than 12 remain, halve the rest,
// then level by moving one player at a time from the largest to the smallest
// subgroup until all sizes are within one of each other. Counts of
// maxGroupSize or fewer stay whole.
func SubgroupSizes(count int) []int {
	if count <= maxGroupSize {
		return []int{count}
	}

	var sizes []int
	rest := count
	for rest > 12 {
		rest -= 6
		sizes = append(sizes, 6)
	}
	half := rest / 2
	sizes = append(sizes, half, rest-half)

	for {
		minIdx, maxIdx := 0, 0
		for i, s := range sizes {
			if s < sizes[minIdx] {
				minIdx = i
			}
			if s > sizes[maxIdx] {
				maxIdx = i
			}
		}
		if sizes[maxIdx]-sizes[minIdx] <= 1 {
			return sizes
		}
		sizes[maxIdx]--
		sizes[minIdx]++
	}
}

// SplitGroup shuffles the division and slices it into subgroups per
// SubgroupSizes. The shuffle is deliberate: without it subgroup 1 would
// collect all the strongest players, because the ids arrive in rating order
// from the signup query.
func SplitGroup(playerIDs []int64, rng *rand.Rand) [][]int64 {
	ids := make([]int64, len(playerIDs))
	copy(ids, playerIDs)
	rng.Shuffle(len(ids), func(i, j int) {
		ids[i], ids[j] = ids[j], ids[i]
	})

	var subgroups [][]int64
	offset := 0
	for _, size := range SubgroupSizes(len(ids)) {
		subgroups = append(subgroups, ids[offset:offset+size])
		offset += size
	}
	return subgroups
}

// SubgroupName suffixes the division name with a 1-based index when the
// division was actually split; a lone subgroup keeps the bare name.
func SubgroupName(groupName string, index, total int) string {
	if total == 1 {
		return groupName
	}
	return fmt.Sprintf("%s-%d", groupName, index+1)
}
