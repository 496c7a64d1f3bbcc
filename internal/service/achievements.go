package service

import (
	"math"

	"gitwrap/internal/api"
	"gitwrap/internal/constants"
	"gitwrap/internal/domain"
)

// computeLanguageShares sums byte counts per language and turns them into
// rounded percentages. Shares need not add up to exactly 100.
func computeLanguageShares(perRepo []map[string]int64) map[string]int {
	totals := make(map[string]int64)
	var grand int64
	for _, langs := range perRepo {
		for lang, bytes := range langs {
			totals[lang] += bytes
			grand += bytes
		}
	}

	shares := make(map[string]int, len(totals))
	if grand == 0 {
		return shares
	}
	for lang, bytes := range totals {
		shares[lang] = int(math.Round(float64(bytes) / float64(grand) * 100))
	}
	return shares
}

func flattenCalendar(calendar *api.ContributionCalendar) []domain.ContributionDay {
	if calendar == nil {
		return []domain.ContributionDay{}
	}
	days := make([]domain.ContributionDay, 0, len(calendar.Weeks)*7)
	for _, week := range calendar.Weeks {
		for _, day := range week.ContributionDays {
			days = append(days, domain.ContributionDay{Date: day.Date, Count: day.ContributionCount})
		}
	}
	return days
}

// lastDays keeps the most recent n entries of a chronological sequence.
func lastDays(days []domain.ContributionDay, n int) []domain.ContributionDay {
	if len(days) <= n {
		return days
	}
	out := make([]domain.ContributionDay, n)
	copy(out, days[len(days)-n:])
	return out
}

// zero values when no authenticated calendar is available
func defaultAchievements() domain.Achievements {
	return domain.Achievements{}
}

// computeAchievements derives the streak and busiest day from the calendar.
// The busiest day is credited to the top repository overall, since the
// per-repository breakdown carries no dates.
func computeAchievements(days []domain.ContributionDay, byRepo []api.RepositoryContribution) domain.Achievements {
	top := topRepository(byRepo)

	var best domain.ContributionDay
	var streak, longest int
	for _, day := range days {
		if day.Count > best.Count {
			best = day
		}
		if day.Count > 0 {
			streak++
			longest = max(longest, streak)
		} else {
			streak = 0
		}
	}

	achievements := domain.Achievements{
		LongestStreak: longest,
		TopRepository: top,
	}
	if best.Count > 0 {
		achievements.MostActiveDay = domain.MostActiveDay{
			Date:       best.Date,
			Count:      best.Count,
			Repository: top.Name,
		}
	}
	return achievements
}

func topRepository(byRepo []api.RepositoryContribution) domain.TopRepository {
	top := domain.TopRepository{Name: constants.UnknownRepository}
	found := false
	for _, r := range byRepo {
		if !found || r.Contributions.TotalCount > top.Commits {
			top = domain.TopRepository{Name: r.Repository.Name, Commits: r.Contributions.TotalCount}
			found = true
		}
	}
	return top
}
