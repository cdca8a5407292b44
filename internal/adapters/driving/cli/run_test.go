package cli

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Victor-GX-Rocha/mercado-livre-auto-pecas/internal/core/domain"
)

func TestRunCmd_StartsRunner(t *testing.T) {
	r := &mockRunner{}
	withServices(t, &Services{Runner: r})

	out, err := execute(t, "run")

	require.NoError(t, err)
	assert.True(t, r.started)
	assert.Contains(t, out, "Processing queues until STILL_ON is turned off...")
	assert.Contains(t, out, "Stopped.")
}

func TestRunCmd_CancelledIsNotAnError(t *testing.T) {
	withServices(t, &Services{Runner: &mockRunner{err: context.Canceled}})

	_, err := execute(t, "run")

	assert.NoError(t, err)
}

func TestRunCmd_ReportsFailure(t *testing.T) {
	withServices(t, &Services{Runner: &mockRunner{err: errors.New("control file missing")}})

	_, err := execute(t, "run")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "run failed: control file missing")
}

func TestRunCmd_NotConfigured(t *testing.T) {
	withServices(t, nil)

	_, err := execute(t, "run")

	require.Error(t, err)
	assert.ErrorIs(t, err, errNotConfigured)
}

func sampleSummary(queue string) domain.BatchSummary {
	s := domain.NewBatchSummary("run-1", queue)
	s.Groups = 1
	s.Count(domain.CodeSuccess)
	s.Count(domain.CodeSuccess)
	s.Count(domain.CodeRemoteFailure)
	s.EndedAt = s.StartedAt.Add(1200 * time.Millisecond)
	return *s
}

func TestOnceCmd_PrintsSummary(t *testing.T) {
	b := &mockBatchProcessor{summaries: []domain.BatchSummary{sampleSummary(domain.QueueProducts)}}
	withServices(t, &Services{Batch: b})

	out, err := execute(t, "once")

	require.NoError(t, err)
	assert.Equal(t, 1, b.calls)
	assert.Contains(t, out, "Queue")
	assert.Contains(t, out, domain.QueueProducts)
	assert.Contains(t, out, "1.2s")
}

func TestOnceCmd_PrintsSummaryOnError(t *testing.T) {
	s := domain.NewBatchSummary("run-2", domain.QueueStatus)
	s.Error = "list pending: connection refused"
	b := &mockBatchProcessor{summaries: []domain.BatchSummary{*s}, err: errors.New("status queue failed")}
	withServices(t, &Services{Batch: b})

	out, err := execute(t, "once")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "pass failed")
	assert.Contains(t, out, "connection refused")
}

func TestOnceCmd_NoQueues(t *testing.T) {
	withServices(t, &Services{Batch: &mockBatchProcessor{}})

	out, err := execute(t, "once")

	require.NoError(t, err)
	assert.Contains(t, out, "No queue is enabled.")
}

func TestRenderSummaries(t *testing.T) {
	summaries := []domain.BatchSummary{sampleSummary(domain.QueueProducts), sampleSummary(domain.QueueCategories)}

	out := renderSummaries(nil, summaries, true)

	assert.Contains(t, out, "Started")
	assert.Contains(t, out, domain.QueueProducts)
	assert.Contains(t, out, domain.QueueCategories)
	assert.Contains(t, out, summaries[0].StartedAt.Local().Format(startLayout))
}
