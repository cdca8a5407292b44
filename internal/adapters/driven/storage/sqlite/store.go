package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/Victor-GX-Rocha/mercado-livre-auto-pecas/internal/adapters/driven/storage/queuesql"
	"github.com/Victor-GX-Rocha/mercado-livre-auto-pecas/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/Victor-GX-Rocha/mercado-livre-auto-pecas/internal/core/domain"
	"github.com/Victor-GX-Rocha/mercado-livre-auto-pecas/internal/core/ports/driven"
)

// dbFile is the database file name inside the data directory.
const dbFile = "autopecas.db"

// Store is a SQLite queue database serving every queue port.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (or creates) the database in dataDir and migrates it.
// If dataDir is empty, the current directory is used.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, dbFile)
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// A single writer keeps outcome updates strictly ordered.
	db.SetMaxOpenConns(1)

	s := &Store{db: db, path: dbPath}
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
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

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if name := entry.Name(); strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}
	return nil
}

// update runs a single-row update. A missing row is domain.ErrNotFound.
func (s *Store) update(ctx context.Context, what, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("updating %s: %w", what, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating %s: %w", what, err)
	}
	if n == 0 {
		return fmt.Errorf("updating %s: %w", what, domain.ErrNotFound)
	}
	return nil
}

// ==================== Product Queue ====================

// productStore implements driven.ProductQueue and driven.OutcomeRecorder.
type productStore struct {
	store *Store
}

var (
	_ driven.ProductQueue    = (*productStore)(nil)
	_ driven.OutcomeRecorder = (*productStore)(nil)
)

// PendingProducts returns pending rows ordered by id.
func (s *productStore) PendingProducts(ctx context.Context) ([]domain.ProductRecord, error) {
	rows, err := s.store.db.QueryContext(ctx,
		`SELECT `+queuesql.ProductColumns+` FROM produtos WHERE cod_retorno = ? ORDER BY id`,
		int(domain.CodePending))
	if err != nil {
		return nil, fmt.Errorf("querying products: %w", err)
	}
	defer rows.Close()

	var out []domain.ProductRecord //nolint:prealloc // size unknown from query
	for rows.Next() {
		rec, err := queuesql.ScanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating products: %w", err)
	}
	return out, nil
}

// MarkExecuting flags a row as in progress.
func (s *productStore) MarkExecuting(ctx context.Context, id int64) error {
	return s.store.update(ctx, "product", `UPDATE produtos SET cod_retorno = ? WHERE id = ?`,
		int(domain.CodeExecuting), id)
}

// MarkSuccess writes the remote state. Empty fields keep their value.
func (s *productStore) MarkSuccess(ctx context.Context, id int64, u domain.SuccessUpdate) error {
	return s.store.update(ctx, "product", `
		UPDATE produtos SET
			cod_retorno = ?,
			log_erro = ?,
			ml_id_produto = COALESCE(NULLIF(?, ''), ml_id_produto),
			link_publicacao = COALESCE(NULLIF(?, ''), link_publicacao),
			produto_status = COALESCE(NULLIF(?, ''), produto_status),
			categoria = COALESCE(NULLIF(?, ''), categoria),
			produto_atualizado = 'S'
		WHERE id = ?
	`, int(domain.CodeSuccess), queuesql.JoinCauses(u.Causes),
		u.MarketplaceID, u.Permalink, u.Status, u.CategoryID, id)
}

// MarkFailure writes the failure code and causes.
func (s *productStore) MarkFailure(ctx context.Context, id int64, code domain.OutcomeCode, causes []string) error {
	return s.store.update(ctx, "product", `UPDATE produtos SET cod_retorno = ?, log_erro = ? WHERE id = ?`,
		int(code), queuesql.JoinCauses(causes), id)
}

// MarkAsleep parks a row.
func (s *productStore) MarkAsleep(ctx context.Context, id int64) error {
	return s.store.update(ctx, "product", `UPDATE produtos SET cod_retorno = ? WHERE id = ?`,
		int(domain.CodeAsleep), id)
}

// ==================== Category Lookup Queue ====================

// lookupStore implements driven.CategoryLookupStore.
type lookupStore struct {
	store *Store
}

var _ driven.CategoryLookupStore = (*lookupStore)(nil)

// PendingLookups returns pending lookup rows ordered by id.
func (s *lookupStore) PendingLookups(ctx context.Context) ([]domain.CategoryLookupRecord, error) {
	rows, err := s.store.db.QueryContext(ctx,
		`SELECT `+queuesql.LookupColumns+` FROM produtos_categoria WHERE cod_retorno = ? ORDER BY id`,
		int(domain.CodePending))
	if err != nil {
		return nil, fmt.Errorf("querying category lookups: %w", err)
	}
	defer rows.Close()

	var out []domain.CategoryLookupRecord //nolint:prealloc // size unknown from query
	for rows.Next() {
		rec, err := queuesql.ScanLookup(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating category lookups: %w", err)
	}
	return out, nil
}

// MarkLookupExecuting flags a row as in progress.
func (s *lookupStore) MarkLookupExecuting(ctx context.Context, id int64) error {
	return s.store.update(ctx, "category lookup", `UPDATE produtos_categoria SET cod_retorno = ? WHERE id = ?`,
		int(domain.CodeExecuting), id)
}

// MarkLookupSuccess writes the resolved id and path.
func (s *lookupStore) MarkLookupSuccess(ctx context.Context, id int64, r domain.CategoryLookupResult) error {
	return s.store.update(ctx, "category lookup", `
		UPDATE produtos_categoria SET
			cod_retorno = ?,
			log_erro = NULL,
			categoria_id = COALESCE(NULLIF(?, ''), categoria_id),
			nome_categoria = COALESCE(NULLIF(?, ''), nome_categoria),
			atualizado = 'S'
		WHERE id = ?
	`, int(domain.CodeSuccess), r.CategoryID, r.CategoryPath, id)
}

// MarkLookupFailure writes the failure code and causes.
func (s *lookupStore) MarkLookupFailure(ctx context.Context, id int64, code domain.OutcomeCode, causes []string) error {
	return s.store.update(ctx, "category lookup", `UPDATE produtos_categoria SET cod_retorno = ?, log_erro = ? WHERE id = ?`,
		int(code), queuesql.JoinCauses(causes), id)
}

// ==================== Status Check Queue ====================

// statusStore implements driven.StatusCheckStore.
type statusStore struct {
	store *Store
}

var _ driven.StatusCheckStore = (*statusStore)(nil)

// PendingStatusChecks returns pending status rows ordered by id.
func (s *statusStore) PendingStatusChecks(ctx context.Context) ([]domain.StatusCheckRecord, error) {
	rows, err := s.store.db.QueryContext(ctx,
		`SELECT `+queuesql.StatusColumns+` FROM produtos_status WHERE cod_retorno = ? ORDER BY id`,
		int(domain.CodePending))
	if err != nil {
		return nil, fmt.Errorf("querying status checks: %w", err)
	}
	defer rows.Close()

	var out []domain.StatusCheckRecord //nolint:prealloc // size unknown from query
	for rows.Next() {
		rec, err := queuesql.ScanStatus(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating status checks: %w", err)
	}
	return out, nil
}

// MarkStatusExecuting flags a row as in progress.
func (s *statusStore) MarkStatusExecuting(ctx context.Context, id int64) error {
	return s.store.update(ctx, "status check", `UPDATE produtos_status SET cod_retorno = ? WHERE id = ?`,
		int(domain.CodeExecuting), id)
}

// MarkStatusSuccess writes the remote status.
func (s *statusStore) MarkStatusSuccess(ctx context.Context, id int64, status string) error {
	return s.store.update(ctx, "status check",
		`UPDATE produtos_status SET cod_retorno = ?, log_erro = NULL, status_produto = ? WHERE id = ?`,
		int(domain.CodeSuccess), status, id)
}

// MarkStatusFailure writes the failure code and causes.
func (s *statusStore) MarkStatusFailure(ctx context.Context, id int64, code domain.OutcomeCode, causes []string) error {
	return s.store.update(ctx, "status check", `UPDATE produtos_status SET cod_retorno = ?, log_erro = ? WHERE id = ?`,
		int(code), queuesql.JoinCauses(causes), id)
}
