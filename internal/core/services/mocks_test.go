package services

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	stdsync "sync"

	"github.com/Victor-GX-Rocha/mercado-livre-auto-pecas/internal/core/domain"
	"github.com/Victor-GX-Rocha/mercado-livre-auto-pecas/internal/core/ports/driven"
)

// --- Shared fixtures and hand-written mocks for service tests ---

func testCredentials(clientID string) domain.Credentials {
	return domain.Credentials{
		ClientID:     clientID,
		ClientSecret: "secret-" + clientID,
		RedirectURI:  "https://example.com/callback",
		RefreshToken: "TG-" + clientID,
	}
}

func testProduct(id int64, op domain.OperationKind) domain.ProductRecord {
	return domain.ProductRecord{
		ID:          id,
		Credentials: testCredentials("app-1"),
		Operation:   op,
		Identifiers: domain.Identifiers{
			InternalCode:  fmt.Sprintf("P%03d", id),
			SKU:           fmt.Sprintf("SKU-%d", id),
			MarketplaceID: "MLB100",
		},
		Sale: domain.SaleInfo{
			Title:       "Pastilha de freio",
			Description: "Pastilha de freio dianteira",
			Pictures:    "a.jpg;b.jpg",
			Stock:       5,
			PriceCents:  10000,
			Currency:    "BRL",
			ListingType: "gold_special",
			BuyingMode:  "buy_it_now",
			Warranty:    "90 dias",
		},
		Shipping: domain.ShippingInfo{Mode: "me2"},
		Category: domain.CategoryInfo{CategoryID: "MLB2000"},
		Technical: domain.TechnicalInfo{
			Brand:     "Bosch",
			Condition: "new",
		},
	}
}

// mockGateway implements driven.MarketplaceGateway with in-memory state.
type mockGateway struct {
	mu    stdsync.Mutex
	calls []string

	items        map[string]*domain.RemoteItem
	descriptions map[string]string
	roots        []domain.CategoryNode
	categories   map[string]*domain.Category
	attributes   map[string][]domain.CategoryAttribute
	predictions  []domain.CategoryPrediction
	compatibles  []string
	attached     map[string][]string

	// updateHook overrides UpdateItem when set.
	updateHook func(itemID string, patch map[string]any) (*domain.RemoteItem, error)
	// getItemHook overrides GetItem when set.
	getItemHook func(itemID string) (*domain.RemoteItem, error)

	getItemErr    error
	publishErr    error
	getDescErr    error
	setDescErr    error
	rootsErr      error
	categoryErr   map[string]error
	searchErr     error
	attachErr     error
	uploadErr     error
	publishResult *domain.RemoteItem
}

var _ driven.MarketplaceGateway = (*mockGateway)(nil)

func newMockGateway() *mockGateway {
	return &mockGateway{
		items:        make(map[string]*domain.RemoteItem),
		descriptions: make(map[string]string),
		categories:   make(map[string]*domain.Category),
		attributes:   make(map[string][]domain.CategoryAttribute),
		categoryErr:  make(map[string]error),
		attached:     make(map[string][]string),
	}
}

func (m *mockGateway) record(format string, args ...any) {
	m.calls = append(m.calls, fmt.Sprintf(format, args...))
}

// Calls returns a copy of the recorded calls.
func (m *mockGateway) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// CountPrefix counts recorded calls starting with prefix.
func (m *mockGateway) CountPrefix(prefix string) int {
	n := 0
	for _, c := range m.Calls() {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

func (m *mockGateway) GetItem(_ context.Context, _ domain.AccessToken, itemID string) (*domain.RemoteItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("GetItem %s", itemID)
	if m.getItemHook != nil {
		return m.getItemHook(itemID)
	}
	if m.getItemErr != nil {
		return nil, m.getItemErr
	}
	item, ok := m.items[itemID]
	if !ok {
		return nil, &domain.RemoteError{Message: "item not found", Code: 404, HTTPStatus: 404, Context: "item_data"}
	}
	cp := *item
	return &cp, nil
}

func (m *mockGateway) UpdateItem(_ context.Context, _ domain.AccessToken, itemID string, patch map[string]any) (*domain.RemoteItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("UpdateItem %s %s", itemID, patchKey(patch))
	if m.updateHook != nil {
		return m.updateHook(itemID, patch)
	}
	item, ok := m.items[itemID]
	if !ok {
		return nil, &domain.RemoteError{Message: "item not found", Code: 404, HTTPStatus: 404, Context: "item_edition"}
	}
	if status, ok := patch["status"].(string); ok {
		item.Status = status
	}
	if _, ok := patch["deleted"]; ok {
		item.Status = domain.StatusClosed
	}
	if title, ok := patch["title"].(string); ok {
		item.Title = title
	}
	cp := *item
	return &cp, nil
}

func (m *mockGateway) PublishItem(_ context.Context, _ domain.AccessToken, payload map[string]any) (*domain.RemoteItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("PublishItem %v", payload["title"])
	if m.publishErr != nil {
		return nil, m.publishErr
	}
	if m.publishResult != nil {
		cp := *m.publishResult
		return &cp, nil
	}
	return &domain.RemoteItem{
		ID:         "MLB900",
		Status:     domain.StatusActive,
		Permalink:  "https://produto.mercadolivre.com.br/MLB-900",
		CategoryID: fmt.Sprint(payload["category_id"]),
	}, nil
}

func (m *mockGateway) GetDescription(_ context.Context, _ domain.AccessToken, itemID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("GetDescription %s", itemID)
	if m.getDescErr != nil {
		return "", m.getDescErr
	}
	return m.descriptions[itemID], nil
}

func (m *mockGateway) SetDescription(_ context.Context, _ domain.AccessToken, itemID, text string, overwrite bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("SetDescription %s overwrite=%t", itemID, overwrite)
	if m.setDescErr != nil {
		return m.setDescErr
	}
	m.descriptions[itemID] = text
	return nil
}

func (m *mockGateway) RootCategories(_ context.Context, _ domain.AccessToken) ([]domain.CategoryNode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("RootCategories")
	if m.rootsErr != nil {
		return nil, m.rootsErr
	}
	return m.roots, nil
}

func (m *mockGateway) GetCategory(_ context.Context, _ domain.AccessToken, categoryID string) (*domain.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("GetCategory %s", categoryID)
	if err := m.categoryErr[categoryID]; err != nil {
		return nil, err
	}
	c, ok := m.categories[categoryID]
	if !ok {
		return nil, &domain.RemoteError{Message: "Category not found", Code: 404, HTTPStatus: 404, Context: "category_data"}
	}
	cp := *c
	return &cp, nil
}

func (m *mockGateway) CategoryAttributes(_ context.Context, _ domain.AccessToken, categoryID string) ([]domain.CategoryAttribute, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("CategoryAttributes %s", categoryID)
	return m.attributes[categoryID], nil
}

func (m *mockGateway) DiscoverCategory(_ context.Context, _ domain.AccessToken, title string) ([]domain.CategoryPrediction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("DiscoverCategory %s", title)
	return m.predictions, nil
}

func (m *mockGateway) SearchCompatibilities(_ context.Context, _ domain.AccessToken, _ domain.CompatibilityQuery) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("SearchCompatibilities")
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if len(m.compatibles) == 0 {
		return nil, domain.ErrNoCompatibilities
	}
	return m.compatibles, nil
}

func (m *mockGateway) AddCompatibilities(_ context.Context, _ domain.AccessToken, itemID string, productIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("AddCompatibilities %s %d", itemID, len(productIDs))
	if m.attachErr != nil {
		return m.attachErr
	}
	m.attached[itemID] = productIDs
	return nil
}

func (m *mockGateway) UploadPicture(_ context.Context, _ domain.AccessToken, filename string, _ io.Reader) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("UploadPicture %s", filename)
	if m.uploadErr != nil {
		return "", m.uploadErr
	}
	return "PIC-" + filename, nil
}

func (m *mockGateway) RegisterPictureURL(_ context.Context, _ domain.AccessToken, url string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("RegisterPictureURL %s", url)
	return "PIC-URL", nil
}

// patchKey renders a patch deterministically for call assertions.
func patchKey(patch map[string]any) string {
	keys := make([]string, 0, len(patch))
	for k := range patch {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, patch[k]))
	}
	return strings.Join(parts, ",")
}

// recordedFailure is one MarkFailure call.
type recordedFailure struct {
	code   domain.OutcomeCode
	causes []string
}

// mockRecorder implements driven.OutcomeRecorder.
type mockRecorder struct {
	mu        stdsync.Mutex
	executing []int64
	successes map[int64]domain.SuccessUpdate
	failures  map[int64]recordedFailure
	asleep    []int64
	terminal  map[int64]int

	executingErr error
	successErr   error
}

var _ driven.OutcomeRecorder = (*mockRecorder)(nil)

func newMockRecorder() *mockRecorder {
	return &mockRecorder{
		successes: make(map[int64]domain.SuccessUpdate),
		failures:  make(map[int64]recordedFailure),
		terminal:  make(map[int64]int),
	}
}

func (m *mockRecorder) MarkExecuting(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.executing = append(m.executing, id)
	return m.executingErr
}

func (m *mockRecorder) MarkSuccess(_ context.Context, id int64, update domain.SuccessUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.terminal[id]++
	m.successes[id] = update
	return m.successErr
}

func (m *mockRecorder) MarkFailure(_ context.Context, id int64, code domain.OutcomeCode, causes []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.terminal[id]++
	m.failures[id] = recordedFailure{code: code, causes: causes}
	return nil
}

func (m *mockRecorder) MarkAsleep(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.terminal[id]++
	m.asleep = append(m.asleep, id)
	return nil
}

// mockBroker implements driven.CredentialBroker.
type mockBroker struct {
	mu      stdsync.Mutex
	fetches []string
	err     error
}

var _ driven.CredentialBroker = (*mockBroker)(nil)

func (m *mockBroker) FetchToken(_ context.Context, creds domain.Credentials) (domain.AccessToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetches = append(m.fetches, creds.ClientID)
	if !creds.IsComplete() {
		return domain.AccessToken{}, fmt.Errorf("%w: %s", domain.ErrMissingCredentials, strings.Join(creds.MissingFields(), ", "))
	}
	if m.err != nil {
		return domain.AccessToken{}, m.err
	}
	return domain.AccessToken{Value: "APP_USR-" + creds.ClientID}, nil
}

// stubPayloads implements driven.PayloadBuilder with minimal bodies.
type stubPayloads struct {
	shippingErr error
	editPatch   func(rec domain.ProductRecord, remote domain.RemoteItem) (map[string]any, error)
}

var _ driven.PayloadBuilder = (*stubPayloads)(nil)

func (s *stubPayloads) Shipping(rec domain.ProductRecord) (map[string]any, error) {
	if s.shippingErr != nil {
		return nil, s.shippingErr
	}
	return map[string]any{"mode": rec.Shipping.Mode}, nil
}

func (s *stubPayloads) Publication(rec domain.ProductRecord, parts domain.PublicationParts) (map[string]any, error) {
	return map[string]any{
		"title":       rec.Sale.Title,
		"category_id": parts.CategoryID,
		"pictures":    parts.PictureIDs,
		"attributes":  parts.Attributes,
		"shipping":    parts.Shipping,
	}, nil
}

func (s *stubPayloads) EditPatch(rec domain.ProductRecord, remote domain.RemoteItem) (map[string]any, error) {
	if s.editPatch != nil {
		return s.editPatch(rec, remote)
	}
	patch := map[string]any{}
	if rec.Sale.Title != remote.Title {
		patch["title"] = rec.Sale.Title
	}
	return patch, nil
}

// stubAttributes implements driven.AttributeGenerator.
type stubAttributes struct {
	err error
}

func (s *stubAttributes) Generate(_ context.Context, _ domain.AccessToken, rec domain.ProductRecord, _ string) ([]domain.Attribute, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []domain.Attribute{{ID: "BRAND", ValueName: rec.Technical.Brand}}, nil
}

// stubPictures implements driven.PictureUploader.
type stubPictures struct {
	err   error
	calls int
}

func (s *stubPictures) Upload(_ context.Context, _ domain.AccessToken, raw string) ([]string, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return domain.SplitList(raw), nil
}

// mockReceipts implements driven.ReceiptLog.
type mockReceipts struct {
	receipts []domain.Receipt
	err      error
}

func (m *mockReceipts) Append(_ context.Context, r domain.Receipt) error {
	m.receipts = append(m.receipts, r)
	return m.err
}

// leafCategory builds an enabled leaf category.
func leafCategory(id, name string) *domain.Category {
	return &domain.Category{
		Node:         domain.CategoryNode{ID: id, Name: name},
		PathFromRoot: []domain.CategoryNode{{ID: id, Name: name}},
		Settings:     domain.CategorySettings{Status: domain.CategoryStatusEnabled},
	}
}
