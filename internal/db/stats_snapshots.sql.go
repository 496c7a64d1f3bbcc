package db

import (
	"context"
	"time"
)

const insertStatsSnapshot = `
INSERT INTO stats_snapshots (id, username, power_level, total_commits, recorded_at)
VALUES (?, ?, ?, ?, ?)
`

type InsertStatsSnapshotParams struct {
	ID           string
	Username     string
	PowerLevel   int64
	TotalCommits int64
	RecordedAt   time.Time
}

func (q *Queries) InsertStatsSnapshot(ctx context.Context, arg InsertStatsSnapshotParams) error {
	_, err := q.db.ExecContext(ctx, insertStatsSnapshot,
		arg.ID,
		arg.Username,
		arg.PowerLevel,
		arg.TotalCommits,
		arg.RecordedAt,
	)
	return err
}

const listStatsSnapshots = `
SELECT id, username, power_level, total_commits, recorded_at
FROM stats_snapshots
WHERE username = ?
ORDER BY recorded_at DESC
LIMIT ?
`

type ListStatsSnapshotsParams struct {
	Username string
	Limit    int64
}

func (q *Queries) ListStatsSnapshots(ctx context.Context, arg ListStatsSnapshotsParams) ([]StatsSnapshot, error) {
	rows, err := q.db.QueryContext(ctx, listStatsSnapshots, arg.Username, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []StatsSnapshot
	for rows.Next() {
		var i StatsSnapshot
		if err := rows.Scan(
			&i.ID,
			&i.Username,
			&i.PowerLevel,
			&i.TotalCommits,
			&i.RecordedAt,
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
