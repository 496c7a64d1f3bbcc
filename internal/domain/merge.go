package domain

// MergeWithCache overlays the authenticated data captured in cached onto a fresh
// fetch. Contributions, achievements and the commit total come from cached;
// identity, stars, forks, languages and power level come from fresh.
func MergeWithCache(fresh UserStats, cached CachedRecord) UserStats {
	merged := fresh.Copy()
	c := cached.UserStats.Copy()

	merged.Contributions = c.Contributions
	merged.Achievements = c.Achievements
	merged.TotalCommits = c.TotalCommits

	return merged
}
