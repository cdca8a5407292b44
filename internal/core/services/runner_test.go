package services

import (
	"context"
	"errors"
	stdsync "sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Victor-GX-Rocha/mercado-livre-auto-pecas/internal/core/domain"
)

// mockControl implements driven.RunControlSource with a scripted sequence.
// After the script runs out the last value repeats.
type mockControl struct {
	mu      stdsync.Mutex
	script  []domain.RunControl
	loads   int
	err     error
	changes chan struct{}
}

func (m *mockControl) Load() (domain.RunControl, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return domain.RunControl{}, m.err
	}
	i := m.loads
	if i >= len(m.script) {
		i = len(m.script) - 1
	}
	m.loads++
	return m.script[i], nil
}

func (m *mockControl) Changes() <-chan struct{} { return m.changes }
func (m *mockControl) Close() error             { return nil }

// mockBatch implements driving.BatchProcessor counting passes.
type mockBatch struct {
	mu     stdsync.Mutex
	passes int
	ran    chan struct{}
	err    error
}

func (m *mockBatch) RunOnce(context.Context) ([]domain.BatchSummary, error) {
	m.mu.Lock()
	m.passes++
	m.mu.Unlock()
	if m.ran != nil {
		select {
		case m.ran <- struct{}{}:
		default:
		}
	}
	s := domain.NewBatchSummary("run", domain.QueueProducts)
	s.Count(domain.CodeSuccess)
	return []domain.BatchSummary{*s}, m.err
}

func (m *mockBatch) ProcessProducts(context.Context) (*domain.BatchSummary, error) { return nil, nil }

func (m *mockBatch) ProcessCategoryLookups(context.Context) (*domain.BatchSummary, error) {
	return nil, nil
}

func (m *mockBatch) ProcessStatusChecks(context.Context) (*domain.BatchSummary, error) {
	return nil, nil
}

func (m *mockBatch) Passes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.passes
}

func runOn(interval time.Duration) domain.RunControl {
	return domain.RunControl{StillOn: true, Interval: interval}
}

var runOff = domain.RunControl{}

func TestRunner_StopsWhenSwitchTurnsOff(t *testing.T) {
	control := &mockControl{script: []domain.RunControl{runOn(time.Millisecond), runOn(time.Millisecond), runOff}}
	batch := &mockBatch{}
	history := &mockHistory{}
	r := NewRunner(control, batch, history, 0, nil)

	err := r.Start(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, batch.Passes())
	assert.Equal(t, []int{historyKeep, historyKeep}, history.pruned)
}

func TestRunner_SwitchOffFromStart(t *testing.T) {
	batch := &mockBatch{}
	r := NewRunner(&mockControl{script: []domain.RunControl{runOff}}, batch, nil, 0, nil)

	require.NoError(t, r.Start(context.Background()))
	assert.Zero(t, batch.Passes())
}

func TestRunner_LoadError(t *testing.T) {
	batch := &mockBatch{}
	r := NewRunner(&mockControl{err: errors.New("permission denied")}, batch, nil, 0, nil)

	err := r.Start(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "permission denied")
	assert.Zero(t, batch.Passes())
}

func TestRunner_FallbackInterval(t *testing.T) {
	control := &mockControl{script: []domain.RunControl{runOn(0), runOff}}
	batch := &mockBatch{}
	r := NewRunner(control, batch, nil, time.Millisecond, nil)

	start := time.Now()
	require.NoError(t, r.Start(context.Background()))

	assert.Equal(t, 1, batch.Passes())
	assert.Less(t, time.Since(start), time.Second)
}

func TestRunner_ChangeWakesLoop(t *testing.T) {
	changes := make(chan struct{}, 1)
	changes <- struct{}{}
	control := &mockControl{script: []domain.RunControl{runOn(time.Hour), runOff}, changes: changes}
	batch := &mockBatch{}
	r := NewRunner(control, batch, nil, 0, nil)

	done := make(chan error, 1)
	go func() { done <- r.Start(context.Background()) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("runner did not wake on change")
	}
	assert.Equal(t, 1, batch.Passes())
}

func TestRunner_Stop(t *testing.T) {
	control := &mockControl{script: []domain.RunControl{runOn(time.Hour)}}
	batch := &mockBatch{ran: make(chan struct{}, 1)}
	r := NewRunner(control, batch, nil, 0, nil)

	done := make(chan error, 1)
	go func() { done <- r.Start(context.Background()) }()
	<-batch.ran

	require.NoError(t, r.Stop())
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("runner did not stop")
	}
	assert.Equal(t, 1, batch.Passes())
}

func TestRunner_StopWhenIdle(t *testing.T) {
	r := NewRunner(&mockControl{script: []domain.RunControl{runOff}}, &mockBatch{}, nil, 0, nil)
	assert.NoError(t, r.Stop())
}

func TestRunner_ContextCancelled(t *testing.T) {
	control := &mockControl{script: []domain.RunControl{runOn(time.Hour)}}
	batch := &mockBatch{ran: make(chan struct{}, 1)}
	r := NewRunner(control, batch, nil, 0, nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- r.Start(ctx) }()
	<-batch.ran
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("runner ignored cancellation")
	}
}

func TestRunner_PassErrorKeepsLooping(t *testing.T) {
	control := &mockControl{script: []domain.RunControl{runOn(time.Millisecond), runOn(time.Millisecond), runOff}}
	batch := &mockBatch{err: errors.New("queue unreadable")}
	r := NewRunner(control, batch, nil, 0, nil)

	require.NoError(t, r.Start(context.Background()))
	assert.Equal(t, 2, batch.Passes())
}
