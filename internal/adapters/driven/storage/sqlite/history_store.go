package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Victor-GX-Rocha/mercado-livre-auto-pecas/internal/adapters/driven/storage/queuesql"
	"github.com/Victor-GX-Rocha/mercado-livre-auto-pecas/internal/core/domain"
	"github.com/Victor-GX-Rocha/mercado-livre-auto-pecas/internal/core/ports/driven"
)

// timeLayout is fixed width so text ordering matches time ordering.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// historyStore implements driven.BatchHistoryStore.
type historyStore struct {
	store *Store
}

var _ driven.BatchHistoryStore = (*historyStore)(nil)

// RecordBatch stores or replaces a pass.
func (s *historyStore) RecordBatch(ctx context.Context, summary *domain.BatchSummary) error {
	if summary == nil || summary.RunID == "" {
		return domain.ErrInvalidInput
	}
	counts, err := queuesql.EncodeCounts(summary.Counts)
	if err != nil {
		return err
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO batch_runs (run_id, queue, started_at, ended_at, groups_count, counts, error)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id) DO UPDATE SET
			ended_at = excluded.ended_at,
			groups_count = excluded.groups_count,
			counts = excluded.counts,
			error = excluded.error
	`, summary.RunID, summary.Queue, formatTime(summary.StartedAt), nullTime(summary.EndedAt),
		summary.Groups, counts, nullString(summary.Error))
	if err != nil {
		return fmt.Errorf("recording batch: %w", err)
	}
	return nil
}

// RecentBatches returns recent passes, most recent first.
func (s *historyStore) RecentBatches(ctx context.Context, queue string, limit int) ([]domain.BatchSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT run_id, queue, started_at, ended_at, groups_count, counts, error
		FROM batch_runs
		WHERE ? = '' OR queue = ?
		ORDER BY started_at DESC
		LIMIT ?
	`, queue, queue, limit)
	if err != nil {
		return nil, fmt.Errorf("querying batches: %w", err)
	}
	defer rows.Close()

	var out []domain.BatchSummary //nolint:prealloc // size unknown from query
	for rows.Next() {
		var (
			b        domain.BatchSummary
			started  string
			ended    sql.NullString
			counts   string
			batchErr sql.NullString
		)
		if err := rows.Scan(&b.RunID, &b.Queue, &started, &ended, &b.Groups, &counts, &batchErr); err != nil {
			return nil, fmt.Errorf("scanning batch: %w", err)
		}
		if b.StartedAt, err = time.Parse(timeLayout, started); err != nil {
			return nil, fmt.Errorf("parsing started_at: %w", err)
		}
		if ended.Valid {
			if b.EndedAt, err = time.Parse(timeLayout, ended.String); err != nil {
				return nil, fmt.Errorf("parsing ended_at: %w", err)
			}
		}
		if b.Counts, err = queuesql.DecodeCounts(counts); err != nil {
			return nil, err
		}
		b.Error = batchErr.String
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating batches: %w", err)
	}
	return out, nil
}

// PruneHistory keeps the newest 'keep' passes of each queue.
func (s *historyStore) PruneHistory(ctx context.Context, keep int) error {
	if keep < 0 {
		keep = 0
	}
	_, err := s.store.db.ExecContext(ctx, `
		DELETE FROM batch_runs WHERE run_id IN (
			SELECT run_id FROM (
				SELECT run_id, ROW_NUMBER() OVER (PARTITION BY queue ORDER BY started_at DESC) AS rn
				FROM batch_runs
			) WHERE rn > ?
		)
	`, keep)
	if err != nil {
		return fmt.Errorf("pruning batches: %w", err)
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func nullTime(t time.Time) sql.NullString {
	if t.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(t), Valid: true}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
