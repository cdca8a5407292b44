package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/Victor-GX-Rocha/mercado-livre-auto-pecas/internal/core/domain"
	"github.com/Victor-GX-Rocha/mercado-livre-auto-pecas/internal/core/ports/driven"
)

// Ensure ProductStore implements the interfaces.
var (
	_ driven.ProductQueue    = (*ProductStore)(nil)
	_ driven.OutcomeRecorder = (*ProductStore)(nil)
)

// ProductRow is a product row with its outcome columns.
type ProductRow struct {
	Record  domain.ProductRecord
	Code    domain.OutcomeCode
	Causes  []string
	Updated bool
}

// ProductStore is an in-memory product queue.
type ProductStore struct {
	mu     sync.RWMutex
	rows   map[int64]*ProductRow
	nextID int64
}

// NewProductStore creates a new in-memory product queue.
func NewProductStore() *ProductStore {
	return &ProductStore{rows: make(map[int64]*ProductRow)}
}

// Add enqueues a pending record. A zero ID is assigned.
func (s *ProductStore) Add(rec domain.ProductRecord) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec.ID == 0 {
		s.nextID++
		rec.ID = s.nextID
	} else if rec.ID > s.nextID {
		s.nextID = rec.ID
	}
	s.rows[rec.ID] = &ProductRow{Record: rec, Code: domain.CodePending}
	return rec.ID
}

// Row returns a copy of a row.
func (s *ProductStore) Row(id int64) (ProductRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row, ok := s.rows[id]
	if !ok {
		return ProductRow{}, domain.ErrNotFound
	}
	cp := *row
	cp.Causes = append([]string(nil), row.Causes...)
	return cp, nil
}

// PendingProducts returns pending rows ordered by id.
func (s *ProductStore) PendingProducts(_ context.Context) ([]domain.ProductRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.ProductRecord
	for _, row := range s.rows {
		if row.Code == domain.CodePending {
			out = append(out, row.Record)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// MarkExecuting flags a row as in progress.
func (s *ProductStore) MarkExecuting(_ context.Context, id int64) error {
	return s.set(id, func(row *ProductRow) { row.Code = domain.CodeExecuting })
}

// MarkSuccess writes the remote state. Empty fields keep their value.
func (s *ProductStore) MarkSuccess(_ context.Context, id int64, u domain.SuccessUpdate) error {
	return s.set(id, func(row *ProductRow) {
		row.Code = domain.CodeSuccess
		row.Causes = append([]string(nil), u.Causes...)
		row.Updated = true
		if u.MarketplaceID != "" {
			row.Record.Identifiers.MarketplaceID = u.MarketplaceID
		}
		if u.Permalink != "" {
			row.Record.Identifiers.Permalink = u.Permalink
		}
		if u.Status != "" {
			row.Record.RemoteStatus = u.Status
		}
		if u.CategoryID != "" {
			row.Record.Category.CategoryID = u.CategoryID
		}
	})
}

// MarkFailure writes the failure code and causes.
func (s *ProductStore) MarkFailure(_ context.Context, id int64, code domain.OutcomeCode, causes []string) error {
	return s.set(id, func(row *ProductRow) {
		row.Code = code
		row.Causes = append([]string(nil), causes...)
	})
}

// MarkAsleep parks a row.
func (s *ProductStore) MarkAsleep(_ context.Context, id int64) error {
	return s.set(id, func(row *ProductRow) { row.Code = domain.CodeAsleep })
}

func (s *ProductStore) set(id int64, fn func(*ProductRow)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[id]
	if !ok {
		return domain.ErrNotFound
	}
	fn(row)
	return nil
}
