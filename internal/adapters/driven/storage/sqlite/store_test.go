package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Victor-GX-Rocha/mercado-livre-auto-pecas/internal/core/domain"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, store.Close()) })
	return store
}

// insertProduct adds a pending product row and returns its id.
func insertProduct(t *testing.T, s *Store, op domain.OperationKind, code string) int64 {
	t.Helper()
	res, err := s.db.Exec(`
		INSERT INTO produtos (client_id, client_secret, redirect_uri, refresh_token, operacao,
			cod_produto, titulo, estoque, preco, retirada_local, frete_gratis, largura, marcas_ids)
		VALUES ('cid', 'secret', 'https://r', 'refresh', ?, ?, 'Pastilha', 3, '49.90', 0, 1, 12, '1;2')
	`, int(op), code)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}

func productColumns(t *testing.T, s *Store, id int64) (code int, log sql.NullString, mlID, status sql.NullString) {
	t.Helper()
	require.NoError(t, s.db.QueryRow(
		`SELECT cod_retorno, log_erro, ml_id_produto, produto_status FROM produtos WHERE id = ?`, id,
	).Scan(&code, &log, &mlID, &status))
	return code, log, mlID, status
}

func TestNewStore_CreatesFileAndMigratesOnce(t *testing.T) {
	dir := t.TempDir()

	s, err := NewStore(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, dbFile), s.Path())
	require.NoError(t, s.Close())

	s, err = NewStore(dir)
	require.NoError(t, err)
	defer s.Close()

	var version int
	require.NoError(t, s.db.QueryRow(`SELECT MAX(version) FROM schema_migrations`).Scan(&version))
	assert.Equal(t, 1, version)
}

func TestProductStore_PendingProducts(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	first := insertProduct(t, s, domain.OperationPublish, "P-1")
	done := insertProduct(t, s, domain.OperationEdit, "P-2")
	third := insertProduct(t, s, domain.OperationPause, "P-3")
	require.NoError(t, s.Recorder().MarkFailure(ctx, done, domain.CodeValidationFailure, []string{"x"}))

	recs, err := s.Products().PendingProducts(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, first, recs[0].ID)
	assert.Equal(t, third, recs[1].ID)
	assert.Equal(t, domain.OperationPublish, recs[0].Operation)
	assert.Equal(t, "cid", recs[0].Credentials.ClientID)
	assert.Equal(t, "P-1", recs[0].Identifiers.InternalCode)
	assert.Equal(t, int64(4990), recs[0].Sale.PriceCents)
	assert.Equal(t, 3, recs[0].Sale.Stock)
	assert.True(t, recs[0].Shipping.FreeShipping)
	assert.False(t, recs[0].Shipping.LocalPickUp)
	assert.Equal(t, 12, recs[0].Dimensions.Width)
	assert.Equal(t, "1;2", recs[0].Technical.BrandIDs)
	assert.Equal(t, "Ainda não publicado", recs[0].RemoteStatus)
}

func TestProductStore_Outcomes(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	rec := s.Recorder()
	id := insertProduct(t, s, domain.OperationPublish, "P-1")

	require.NoError(t, rec.MarkExecuting(ctx, id))
	code, _, _, _ := productColumns(t, s, id)
	assert.Equal(t, int(domain.CodeExecuting), code)

	require.NoError(t, rec.MarkFailure(ctx, id, domain.CodeRemoteFailure, []string{"Erro HTTP 500", "detalhe"}))
	code, log, _, _ := productColumns(t, s, id)
	assert.Equal(t, int(domain.CodeRemoteFailure), code)
	assert.Equal(t, "Erro HTTP 500\ndetalhe", log.String)

	require.NoError(t, rec.MarkSuccess(ctx, id, domain.SuccessUpdate{
		MarketplaceID: "MLB1",
		Permalink:     "https://ml/1",
		Status:        domain.StatusActive,
	}))
	code, log, mlID, status := productColumns(t, s, id)
	assert.Equal(t, int(domain.CodeSuccess), code)
	assert.False(t, log.Valid)
	assert.Equal(t, "MLB1", mlID.String)
	assert.Equal(t, domain.StatusActive, status.String)

	// Empty fields keep the stored values.
	require.NoError(t, rec.MarkSuccess(ctx, id, domain.SuccessUpdate{Status: domain.StatusPaused, Causes: []string{"nota"}}))
	_, log, mlID, status = productColumns(t, s, id)
	assert.Equal(t, "nota", log.String)
	assert.Equal(t, "MLB1", mlID.String)
	assert.Equal(t, domain.StatusPaused, status.String)

	require.NoError(t, rec.MarkAsleep(ctx, id))
	code, _, _, _ = productColumns(t, s, id)
	assert.Equal(t, int(domain.CodeAsleep), code)
}

func TestProductStore_MissingRow(t *testing.T) {
	s := setupTestStore(t)
	err := s.Recorder().MarkExecuting(context.Background(), 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLookupStore(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	res, err := s.db.Exec(`
		INSERT INTO produtos_categoria (client_id, client_secret, redirect_uri, refresh_token, operacao, titulo_produto, cod_produto)
		VALUES ('cid', 's', 'r', 't', 2, 'Pastilha de freio', 'P-9')
	`)
	require.NoError(t, err)
	id, _ := res.LastInsertId()

	recs, err := s.Lookups().PendingLookups(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, domain.LookupIDByTitle, recs[0].Operation)
	assert.Equal(t, "Pastilha de freio", recs[0].Title)

	require.NoError(t, s.Lookups().MarkLookupExecuting(ctx, id))
	require.NoError(t, s.Lookups().MarkLookupSuccess(ctx, id, domain.CategoryLookupResult{
		CategoryID:   "MLB22659",
		CategoryPath: "Acessórios > Freios",
	}))

	var (
		code       int
		catID, nom string
		atualizado string
	)
	require.NoError(t, s.db.QueryRow(
		`SELECT cod_retorno, categoria_id, nome_categoria, atualizado FROM produtos_categoria WHERE id = ?`, id,
	).Scan(&code, &catID, &nom, &atualizado))
	assert.Equal(t, int(domain.CodeSuccess), code)
	assert.Equal(t, "MLB22659", catID)
	assert.Equal(t, "Acessórios > Freios", nom)
	assert.Equal(t, "S", atualizado)

	recs, err = s.Lookups().PendingLookups(ctx)
	require.NoError(t, err)
	assert.Empty(t, recs)

	assert.ErrorIs(t, s.Lookups().MarkLookupFailure(ctx, 404, domain.CodeUnexpectedFailure, nil), domain.ErrNotFound)
}

func TestStatusStore(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	res, err := s.db.Exec(`
		INSERT INTO produtos_status (client_id, client_secret, redirect_uri, refresh_token, operacao, mercado_livre_id)
		VALUES ('cid', 's', 'r', 't', 1, 'MLB123')
	`)
	require.NoError(t, err)
	id, _ := res.LastInsertId()

	recs, err := s.Statuses().PendingStatusChecks(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "MLB123", recs[0].MarketplaceID)

	require.NoError(t, s.Statuses().MarkStatusExecuting(ctx, id))
	require.NoError(t, s.Statuses().MarkStatusFailure(ctx, id, domain.CodeRemoteFailure, []string{"timeout"}))
	require.NoError(t, s.Statuses().MarkStatusSuccess(ctx, id, domain.StatusPaused))

	var (
		code   int
		status string
		log    sql.NullString
	)
	require.NoError(t, s.db.QueryRow(
		`SELECT cod_retorno, status_produto, log_erro FROM produtos_status WHERE id = ?`, id,
	).Scan(&code, &status, &log))
	assert.Equal(t, int(domain.CodeSuccess), code)
	assert.Equal(t, domain.StatusPaused, status)
	assert.False(t, log.Valid)
}

func TestHistoryStore(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	h := s.History()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		b := domain.NewBatchSummary("prod-"+string(rune('a'+i)), domain.QueueProducts)
		b.StartedAt = base.Add(time.Duration(i) * time.Minute)
		b.EndedAt = b.StartedAt.Add(2 * time.Second)
		b.Groups = 1
		b.Count(domain.CodeSuccess)
		require.NoError(t, h.RecordBatch(ctx, b))
	}
	failed := domain.NewBatchSummary("status-a", domain.QueueStatus)
	failed.StartedAt = base
	failed.Error = "queue unreadable"
	require.NoError(t, h.RecordBatch(ctx, failed))

	all, err := h.RecentBatches(ctx, "", 10)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	prods, err := h.RecentBatches(ctx, domain.QueueProducts, 2)
	require.NoError(t, err)
	require.Len(t, prods, 2)
	assert.Equal(t, "prod-c", prods[0].RunID)
	assert.Equal(t, "prod-b", prods[1].RunID)
	assert.True(t, prods[0].StartedAt.Equal(base.Add(2*time.Minute)))
	assert.Equal(t, 2*time.Second, prods[0].Duration())
	assert.Equal(t, map[domain.OutcomeCode]int{domain.CodeSuccess: 1}, prods[0].Counts)

	status, err := h.RecentBatches(ctx, domain.QueueStatus, 0)
	require.NoError(t, err)
	require.Len(t, status, 1)
	assert.Equal(t, "queue unreadable", status[0].Error)
	assert.True(t, status[0].EndedAt.IsZero())

	require.NoError(t, h.PruneHistory(ctx, 1))
	all, err = h.RecentBatches(ctx, "", 10)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	assert.ErrorIs(t, h.RecordBatch(ctx, &domain.BatchSummary{}), domain.ErrInvalidInput)
}
