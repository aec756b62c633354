package entities

import "strings"

// LevelTier is a named bracket of total activity
type LevelTier struct {
	Name      string
	Threshold int64
}

// LevelTiers is ordered from the highest threshold down. The last tier has a
// zero threshold and matches every total.
var LevelTiers = []LevelTier{
	{Name: "LVMAX", Threshold: 1000},
	{Name: "LV3", Threshold: 100},
	{Name: "LV2", Threshold: 10},
	{Name: "LV1", Threshold: 0},
}

// FloorTier is the tier every member starts in
func FloorTier() LevelTier {
	return LevelTiers[len(LevelTiers)-1]
}

// MaxTier is the last reachable tier
func MaxTier() LevelTier {
	return LevelTiers[0]
}

// TierByName finds a tier, ignoring case
func TierByName(name string) (LevelTier, bool) {
	for _, tier := range LevelTiers {
		if strings.EqualFold(tier.Name, name) {
			return tier, true
		}
	}
	return LevelTier{}, false
}

// GameTier is the minimum tier allowed to wager
func GameTier() LevelTier {
	tier, _ := TierByName("LV2")
	return tier
}
