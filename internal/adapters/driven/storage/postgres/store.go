// Package postgres provides the production queue database.
//
// Queries run on a pgx connection pool. The schema is applied with
// golang-migrate from migrations embedded in the binary.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // database/sql driver for migrations

	"github.com/Victor-GX-Rocha/mercado-livre-auto-pecas/internal/adapters/driven/storage/postgres/migrations"
	"github.com/Victor-GX-Rocha/mercado-livre-auto-pecas/internal/adapters/driven/storage/queuesql"
	"github.com/Victor-GX-Rocha/mercado-livre-auto-pecas/internal/core/domain"
	"github.com/Victor-GX-Rocha/mercado-livre-auto-pecas/internal/core/ports/driven"
)

// pingTimeout bounds the connection check in Connect.
const pingTimeout = 5 * time.Second

// Store is a Postgres queue database serving every queue port.
type Store struct {
	pool *pgxpool.Pool
	dsn  string
}

// Connect opens a pool and checks the connection.
func Connect(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("%w: empty postgres dsn", domain.ErrInvalidInput)
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &Store{pool: pool, dsn: dsn}, nil
}

// Migrate applies pending migrations. No change is not an error.
func (s *Store) Migrate() error {
	db, err := sql.Open("pgx", s.dsn)
	if err != nil {
		return fmt.Errorf("opening migration connection: %w", err)
	}
	defer db.Close()

	driver, err := migratepg.WithInstance(db, &migratepg.Config{})
	if err != nil {
		return fmt.Errorf("migration driver: %w", err)
	}
	source, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("migration source: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("migrator: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("applying migrations: %w", err)
	}
	return nil
}

// Close closes the pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// Products returns the product queue reader.
func (s *Store) Products() driven.ProductQueue {
	return &productStore{store: s}
}

// Recorder returns the product outcome recorder.
func (s *Store) Recorder() driven.OutcomeRecorder {
	return &productStore{store: s}
}

// Lookups returns the category lookup queue.
func (s *Store) Lookups() driven.CategoryLookupStore {
	return &lookupStore{store: s}
}

// Statuses returns the status check queue.
func (s *Store) Statuses() driven.StatusCheckStore {
	return &statusStore{store: s}
}

// History returns the batch history store.
func (s *Store) History() driven.BatchHistoryStore {
	return &historyStore{store: s}
}

// update runs a single-row update. A missing row is domain.ErrNotFound.
func (s *Store) update(ctx context.Context, what, query string, args ...any) error {
	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("updating %s: %w", what, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("updating %s: %w", what, domain.ErrNotFound)
	}
	return nil
}

// collect scans every row with scan.
func collect[T any](rows pgx.Rows, what string, scan func(queuesql.Scanner) (T, error)) ([]T, error) {
	defer rows.Close()

	var out []T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s: %w", what, err)
	}
	return out, nil
}

// ==================== Product Queue ====================

type productStore struct {
	store *Store
}

var (
	_ driven.ProductQueue    = (*productStore)(nil)
	_ driven.OutcomeRecorder = (*productStore)(nil)
)

func (s *productStore) PendingProducts(ctx context.Context) ([]domain.ProductRecord, error) {
	rows, err := s.store.pool.Query(ctx,
		`SELECT `+queuesql.ProductColumns+` FROM produtos WHERE cod_retorno = $1 ORDER BY id`,
		int(domain.CodePending))
	if err != nil {
		return nil, fmt.Errorf("querying products: %w", err)
	}
	return collect(rows, "products", queuesql.ScanProduct)
}

func (s *productStore) MarkExecuting(ctx context.Context, id int64) error {
	return s.store.update(ctx, "product", `UPDATE produtos SET cod_retorno = $1 WHERE id = $2`,
		int(domain.CodeExecuting), id)
}

func (s *productStore) MarkSuccess(ctx context.Context, id int64, u domain.SuccessUpdate) error {
	return s.store.update(ctx, "product", `
		UPDATE produtos SET
			cod_retorno = $1,
			log_erro = $2,
			ml_id_produto = COALESCE(NULLIF($3, ''), ml_id_produto),
			link_publicacao = COALESCE(NULLIF($4, ''), link_publicacao),
			produto_status = COALESCE(NULLIF($5, ''), produto_status),
			categoria = COALESCE(NULLIF($6, ''), categoria),
			produto_atualizado = 'S'
		WHERE id = $7
	`, int(domain.CodeSuccess), queuesql.JoinCauses(u.Causes),
		u.MarketplaceID, u.Permalink, u.Status, u.CategoryID, id)
}

func (s *productStore) MarkFailure(ctx context.Context, id int64, code domain.OutcomeCode, causes []string) error {
	return s.store.update(ctx, "product", `UPDATE produtos SET cod_retorno = $1, log_erro = $2 WHERE id = $3`,
		int(code), queuesql.JoinCauses(causes), id)
}

func (s *productStore) MarkAsleep(ctx context.Context, id int64) error {
	return s.store.update(ctx, "product", `UPDATE produtos SET cod_retorno = $1 WHERE id = $2`,
		int(domain.CodeAsleep), id)
}

// ==================== Category Lookup Queue ====================

type lookupStore struct {
	store *Store
}

var _ driven.CategoryLookupStore = (*lookupStore)(nil)

func (s *lookupStore) PendingLookups(ctx context.Context) ([]domain.CategoryLookupRecord, error) {
	rows, err := s.store.pool.Query(ctx,
		`SELECT `+queuesql.LookupColumns+` FROM produtos_categoria WHERE cod_retorno = $1 ORDER BY id`,
		int(domain.CodePending))
	if err != nil {
		return nil, fmt.Errorf("querying category lookups: %w", err)
	}
	return collect(rows, "category lookups", queuesql.ScanLookup)
}

func (s *lookupStore) MarkLookupExecuting(ctx context.Context, id int64) error {
	return s.store.update(ctx, "category lookup", `UPDATE produtos_categoria SET cod_retorno = $1 WHERE id = $2`,
		int(domain.CodeExecuting), id)
}

func (s *lookupStore) MarkLookupSuccess(ctx context.Context, id int64, r domain.CategoryLookupResult) error {
	return s.store.update(ctx, "category lookup", `
		UPDATE produtos_categoria SET
			cod_retorno = $1,
			log_erro = NULL,
			categoria_id = COALESCE(NULLIF($2, ''), categoria_id),
			nome_categoria = COALESCE(NULLIF($3, ''), nome_categoria),
			atualizado = 'S'
		WHERE id = $4
	`, int(domain.CodeSuccess), r.CategoryID, r.CategoryPath, id)
}

func (s *lookupStore) MarkLookupFailure(ctx context.Context, id int64, code domain.OutcomeCode, causes []string) error {
	return s.store.update(ctx, "category lookup", `UPDATE produtos_categoria SET cod_retorno = $1, log_erro = $2 WHERE id = $3`,
		int(code), queuesql.JoinCauses(causes), id)
}

// ==================== Status Check Queue ====================

type statusStore struct {
	store *Store
}

var _ driven.StatusCheckStore = (*statusStore)(nil)

func (s *statusStore) PendingStatusChecks(ctx context.Context) ([]domain.StatusCheckRecord, error) {
	rows, err := s.store.pool.Query(ctx,
		`SELECT `+queuesql.StatusColumns+` FROM produtos_status WHERE cod_retorno = $1 ORDER BY id`,
		int(domain.CodePending))
	if err != nil {
		return nil, fmt.Errorf("querying status checks: %w", err)
	}
	return collect(rows, "status checks", queuesql.ScanStatus)
}

func (s *statusStore) MarkStatusExecuting(ctx context.Context, id int64) error {
	return s.store.update(ctx, "status check", `UPDATE produtos_status SET cod_retorno = $1 WHERE id = $2`,
		int(domain.CodeExecuting), id)
}

func (s *statusStore) MarkStatusSuccess(ctx context.Context, id int64, status string) error {
	return s.store.update(ctx, "status check",
		`UPDATE produtos_status SET cod_retorno = $1, log_erro = NULL, status_produto = $2 WHERE id = $3`,
		int(domain.CodeSuccess), status, id)
}

func (s *statusStore) MarkStatusFailure(ctx context.Context, id int64, code domain.OutcomeCode, causes []string) error {
	return s.store.update(ctx, "status check", `UPDATE produtos_status SET cod_retorno = $1, log_erro = $2 WHERE id = $3`,
		int(code), queuesql.JoinCauses(causes), id)
}

// ==================== Batch History ====================

type historyStore struct {
	store *Store
}

var _ driven.BatchHistoryStore = (*historyStore)(nil)

func (s *historyStore) RecordBatch(ctx context.Context, summary *domain.BatchSummary) error {
	if summary == nil || summary.RunID == "" {
		return domain.ErrInvalidInput
	}
	counts, err := queuesql.EncodeCounts(summary.Counts)
	if err != nil {
		return err
	}
	var ended *time.Time
	if !summary.EndedAt.IsZero() {
		ended = &summary.EndedAt
	}

	_, err = s.store.pool.Exec(ctx, `
		INSERT INTO batch_runs (run_id, queue, started_at, ended_at, groups_count, counts, error)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''))
		ON CONFLICT (run_id) DO UPDATE SET
			ended_at = EXCLUDED.ended_at,
			groups_count = EXCLUDED.groups_count,
			counts = EXCLUDED.counts,
			error = EXCLUDED.error
	`, summary.RunID, summary.Queue, summary.StartedAt, ended, summary.Groups, counts, summary.Error)
	if err != nil {
		return fmt.Errorf("recording batch: %w", err)
	}
	return nil
}

func (s *historyStore) RecentBatches(ctx context.Context, queue string, limit int) ([]domain.BatchSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.store.pool.Query(ctx, `
		SELECT run_id, queue, started_at, ended_at, groups_count, counts, COALESCE(error, '')
		FROM batch_runs
		WHERE $1 = '' OR queue = $1
		ORDER BY started_at DESC
		LIMIT $2
	`, queue, limit)
	if err != nil {
		return nil, fmt.Errorf("querying batches: %w", err)
	}
	return collect(rows, "batches", scanBatch)
}

func scanBatch(row queuesql.Scanner) (domain.BatchSummary, error) {
	var (
		b      domain.BatchSummary
		ended  *time.Time
		counts string
	)
	if err := row.Scan(&b.RunID, &b.Queue, &b.StartedAt, &ended, &b.Groups, &counts, &b.Error); err != nil {
		return domain.BatchSummary{}, fmt.Errorf("scanning batch: %w", err)
	}
	if ended != nil {
		b.EndedAt = *ended
	}
	var err error
	if b.Counts, err = queuesql.DecodeCounts(counts); err != nil {
		return domain.BatchSummary{}, err
	}
	return b, nil
}

func (s *historyStore) PruneHistory(ctx context.Context, keep int) error {
	if keep < 0 {
		keep = 0
	}
	_, err := s.store.pool.Exec(ctx, `
		DELETE FROM batch_runs WHERE run_id IN (
			SELECT run_id FROM (
				SELECT run_id, ROW_NUMBER() OVER (PARTITION BY queue ORDER BY started_at DESC) AS rn
				FROM batch_runs
			) ranked WHERE rn > $1
		)
	`, keep)
	if err != nil {
		return fmt.Errorf("pruning batches: %w", err)
	}
	return nil
}
