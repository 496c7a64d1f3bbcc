package db

import (
	"context"
	"time"
)

const userStatColumns = `username, login, name, avatar_url, bio, power_level, total_commits, total_stars,
       total_forks, languages, achievements, contributions, created_at, updated_at`

const getUserStats = `
SELECT ` + userStatColumns + `
FROM user_stats
WHERE username = ?
`

func (q *Queries) GetUserStats(ctx context.Context, username string) (UserStat, error) {
	row := q.db.QueryRowContext(ctx, getUserStats, username)
	var i UserStat
	err := row.Scan(
		&i.Username,
		&i.Login,
		&i.Name,
		&i.AvatarUrl,
		&i.Bio,
		&i.PowerLevel,
		&i.TotalCommits,
		&i.TotalStars,
		&i.TotalForks,
		&i.Languages,
		&i.Achievements,
		&i.Contributions,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const upsertUserStats = `
INSERT INTO user_stats (
    username, login, name, avatar_url, bio, power_level, total_commits, total_stars,
    total_forks, languages, achievements, contributions, created_at, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (username) DO UPDATE SET
    login = excluded.login,
    name = excluded.name,
    avatar_url = excluded.avatar_url,
    bio = excluded.bio,
    power_level = excluded.power_level,
    total_commits = excluded.total_commits,
    total_stars = excluded.total_stars,
    total_forks = excluded.total_forks,
    languages = excluded.languages,
    achievements = excluded.achievements,
    contributions = excluded.contributions,
    updated_at = excluded.updated_at
`

type UpsertUserStatsParams struct {
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

func (q *Queries) UpsertUserStats(ctx context.Context, arg UpsertUserStatsParams) error {
	_, err := q.db.ExecContext(ctx, upsertUserStats,
		arg.Username,
		arg.Login,
		arg.Name,
		arg.AvatarUrl,
		arg.Bio,
		arg.PowerLevel,
		arg.TotalCommits,
		arg.TotalStars,
		arg.TotalForks,
		arg.Languages,
		arg.Achievements,
		arg.Contributions,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return err
}

const countUserStats = `
SELECT COUNT(*) FROM user_stats
`

func (q *Queries) CountUserStats(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, countUserStats)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const listUserStatsByPowerLevel = `
SELECT ` + userStatColumns + `
FROM user_stats
ORDER BY power_level DESC, username ASC
LIMIT ? OFFSET ?
`

type ListUserStatsByPowerLevelParams struct {
	Limit  int64
	Offset int64
}

func (q *Queries) ListUserStatsByPowerLevel(ctx context.Context, arg ListUserStatsByPowerLevelParams) ([]UserStat, error) {
	rows, err := q.db.QueryContext(ctx, listUserStatsByPowerLevel, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []UserStat
	for rows.Next() {
		var i UserStat
		if err := rows.Scan(
			&i.Username,
			&i.Login,
			&i.Name,
			&i.AvatarUrl,
			&i.Bio,
			&i.PowerLevel,
			&i.TotalCommits,
			&i.TotalStars,
			&i.TotalForks,
			&i.Languages,
			&i.Achievements,
			&i.Contributions,
			&i.CreatedAt,
			&i.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
