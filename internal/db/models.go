package db

import (
	"time"
)

type UserStat struct {
	Username      string
	Login         string
	Name          string
	AvatarUrl     string
	Bio           string
	PowerLevel    int64
	TotalCommits  int64
	TotalStars    int64
	TotalForks    int64
	Languages     string
	Achievements  string
	Contributions string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type StatsSnapshot struct {
	ID           string
	Username     string
	PowerLevel   int64
	TotalCommits int64
	RecordedAt   time.Time
}
