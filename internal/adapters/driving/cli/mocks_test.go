package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/Victor-GX-Rocha/mercado-livre-auto-pecas/internal/core/domain"
)

type mockSettingsService struct {
	settings    *domain.Settings
	err         error
	validateErr error
}

func (m *mockSettingsService) Get() (*domain.Settings, error) {
	return m.settings, m.err
}

func (m *mockSettingsService) Validate() error {
	return m.validateErr
}

type mockBatchProcessor struct {
	summaries []domain.BatchSummary
	err       error
	calls     int
}

func (m *mockBatchProcessor) ProcessProducts(_ context.Context) (*domain.BatchSummary, error) {
	return nil, nil
}

func (m *mockBatchProcessor) ProcessCategoryLookups(_ context.Context) (*domain.BatchSummary, error) {
	return nil, nil
}

func (m *mockBatchProcessor) ProcessStatusChecks(_ context.Context) (*domain.BatchSummary, error) {
	return nil, nil
}

func (m *mockBatchProcessor) RunOnce(_ context.Context) ([]domain.BatchSummary, error) {
	m.calls++
	return m.summaries, m.err
}

type mockRunner struct {
	err     error
	started bool
}

func (m *mockRunner) Start(_ context.Context) error {
	m.started = true
	return m.err
}

func (m *mockRunner) Stop() error {
	return nil
}

type mockCategoryFinder struct {
	category *domain.Category
	err      error
	path     string
}

func (m *mockCategoryFinder) FindByPath(_ context.Context, _ domain.AccessToken, path string) (*domain.Category, error) {
	m.path = path
	return m.category, m.err
}

type mockHistoryService struct {
	summaries []domain.BatchSummary
	err       error
	queue     string
	limit     int
}

func (m *mockHistoryService) Recent(_ context.Context, queue string, limit int) ([]domain.BatchSummary, error) {
	m.queue, m.limit = queue, limit
	return m.summaries, m.err
}

// withServices swaps the package services for the test.
func withServices(t *testing.T, svc *Services) {
	t.Helper()
	oldSettings, oldBatch, oldRunner := settingsService, batchProcessor, loopRunner
	oldFinder, oldHistory, oldBootstrap := categoryFinder, historyService, bootstrap
	settingsService, batchProcessor, loopRunner = nil, nil, nil
	categoryFinder, historyService, bootstrap = nil, nil, nil
	useServices(svc)
	t.Cleanup(func() {
		settingsService, batchProcessor, loopRunner = oldSettings, oldBatch, oldRunner
		categoryFinder, historyService, bootstrap = oldFinder, oldHistory, oldBootstrap
		closeServices = nil
	})
}

// execute runs the root command with args and returns its output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})
	err := rootCmd.Execute()
	return buf.String(), err
}
