package reorder

import "github.com/dustin/go-humanize"

// Rank tiers for the top of a leaderboard.
const (
	TierGold     = "gold"
	TierSilver   = "silver"
	TierBronze   = "bronze"
	TierStandard = "standard"
)

// Standing is the rank derived from an item's position.
type Standing struct {
	ID    string `json:"id"`
	Index int    `json:"index"`
	Rank  int    `json:"rank"`
	Label string `json:"label"`
	Tier  string `json:"tier"`
}

// Rank returns the 1-indexed rank for a position.
func Rank(index int) int { return index + 1 }

// RankLabel returns the English ordinal for a position ("1st", "2nd", "11th", "21st").
func RankLabel(index int) string {
	return humanize.Ordinal(Rank(index))
}

// RankTier returns the badge tier for a position.
func RankTier(index int) string {
	switch index {
	case 0:
		return TierGold
	case 1:
		return TierSilver
	case 2:
		return TierBronze
	default:
		return TierStandard
	}
}

// Standings projects the collection's current order into ranks.
func Standings[T any](c *Collection[T]) []Standing {
	out := make([]Standing, c.Len())
	for i, it := range c.items {
		out[i] = Standing{
			ID:    it.ID,
			Index: i,
			Rank:  Rank(i),
			Label: RankLabel(i),
			Tier:  RankTier(i),
		}
	}
	return out
}
