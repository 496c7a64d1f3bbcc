package domain

import (
	"time"
)

type UserStats struct {
	Name          string            `json:"name"`
	Username      string            `json:"username"`
	AvatarURL     string            `json:"avatar_url"`
	Bio           string            `json:"bio"`
	PowerLevel    int               `json:"power_level"`
	TotalCommits  int               `json:"total_commits"`
	TotalStars    int               `json:"total_stars"`
	TotalForks    int               `json:"total_forks"`
	Languages     map[string]int    `json:"languages"`
	Achievements  Achievements      `json:"achievements"`
	Contributions []ContributionDay `json:"contributions"`
}

type Achievements struct {
	MostActiveDay MostActiveDay `json:"mostActiveDay"`
	LongestStreak int           `json:"longestStreak"`
	TopRepository TopRepository `json:"topRepository"`
}

type MostActiveDay struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
	// top repository overall, not the one active that day
	Repository string `json:"repository"`
}

type TopRepository struct {
	Name    string `json:"name"`
	Commits int    `json:"commits"`
}

type ContributionDay struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Count int    `json:"count"`
}

// transient, never persisted
type RepoSummary struct {
	Name            string
	DefaultBranch   string
	StargazersCount int
	ForksCount      int
	LanguagesURL    string
}

type CachedRecord struct {
	UserStats
	UpdatedAt time.Time `json:"updatedAt"`
}

type StatsSnapshot struct {
	ID           string    `json:"id"` // nanoid
	Username     string    `json:"username"`
	PowerLevel   int       `json:"power_level"`
	TotalCommits int       `json:"total_commits"`
	RecordedAt   time.Time `json:"recorded_at"`
}

type Leaderboard struct {
	Users      []CachedRecord `json:"users"`
	Total      int            `json:"total"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	TotalPages int            `json:"totalPages"`
}

type CommitSourceKind string

const (
	// contributions collection sum: commits, PRs, issues, reviews, restricted
	CommitSourceAggregate CommitSourceKind = "aggregate"
	// literal commit count summed over public repositories
	CommitSourcePerRepoSum CommitSourceKind = "per-repo-sum"
)

// CommitSource keeps the two commit totals apart; they do not mean the same thing.
type CommitSource struct {
	Kind  CommitSourceKind
	Total int
}

func AggregateCommits(total int) CommitSource {
	return CommitSource{Kind: CommitSourceAggregate, Total: total}
}

func PerRepoCommits(counts []int) CommitSource {
	var total int
	for _, c := range counts {
		total += c
	}
	return CommitSource{Kind: CommitSourcePerRepoSum, Total: total}
}

// Copy returns a deep copy so records never share maps or slices across layers.
func (s UserStats) Copy() UserStats {
	out := s
	out.Languages = make(map[string]int, len(s.Languages))
	for k, v := range s.Languages {
		out.Languages[k] = v
	}
	out.Contributions = make([]ContributionDay, len(s.Contributions))
	copy(out.Contributions, s.Contributions)
	return out
}
