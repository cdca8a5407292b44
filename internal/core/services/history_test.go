package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Victor-GX-Rocha/mercado-livre-auto-pecas/internal/core/domain"
)

type limitRecordingHistory struct {
	mockHistory
	limits []int
	err    error
}

func (m *limitRecordingHistory) RecentBatches(ctx context.Context, queue string, limit int) ([]domain.BatchSummary, error) {
	m.limits = append(m.limits, limit)
	if m.err != nil {
		return nil, m.err
	}
	return m.mockHistory.RecentBatches(ctx, queue, limit)
}

func TestHistoryService_Recent_FiltersByQueue(t *testing.T) {
	store := &limitRecordingHistory{}
	store.recorded = []domain.BatchSummary{
		{RunID: "r1", Queue: domain.QueueProducts},
		{RunID: "r2", Queue: domain.QueueStatus},
		{RunID: "r3", Queue: domain.QueueProducts},
	}
	svc := NewHistoryService(store)

	got, err := svc.Recent(context.Background(), domain.QueueProducts, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "r3", got[0].RunID)
	assert.Equal(t, "r1", got[1].RunID)

	all, err := svc.Recent(context.Background(), "", 10)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestHistoryService_Recent_Limits(t *testing.T) {
	store := &limitRecordingHistory{}
	svc := NewHistoryService(store)

	_, _ = svc.Recent(context.Background(), "", 0)
	_, _ = svc.Recent(context.Background(), "", 5)
	_, _ = svc.Recent(context.Background(), "", 10_000)

	assert.Equal(t, []int{defaultHistoryLimit, 5, historyKeep}, store.limits)
}

func TestHistoryService_Recent_UnknownQueue(t *testing.T) {
	store := &limitRecordingHistory{}
	svc := NewHistoryService(store)

	_, err := svc.Recent(context.Background(), "pedidos", 10)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, store.limits)
}

func TestHistoryService_Recent_StoreError(t *testing.T) {
	store := &limitRecordingHistory{err: errors.New("disk gone")}
	svc := NewHistoryService(store)

	_, err := svc.Recent(context.Background(), domain.QueueStatus, 10)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk gone")
}
