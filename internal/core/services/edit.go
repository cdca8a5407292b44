package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Victor-GX-Rocha/mercado-livre-auto-pecas/internal/core/domain"
)

// Edit step names, recorded verbatim as the causal step of a failure.
const (
	stepEditDescription = "Atualizar a descrição do produto"
	stepEditFetch       = "Obter dados do produto"
	stepEditPause       = "Pausar o produto"
	stepEditBuild       = "Construir o payload de edição do produto"
	stepEditApply       = "Realizar a requisição de edição do produto"
	stepEditReactivate  = "Reativar o produto"
)

// editState is the position of a record in the edit saga. It only moves
// forward.
type editState int

const (
	editStarted editState = iota
	editDescriptionSynced
	editFetched
	editPaused
	editPatchBuilt
	editApplied
	editReactivating
	editFinished
)

func (s editState) String() string {
	switch s {
	case editStarted:
		return "started"
	case editDescriptionSynced:
		return "description_synced"
	case editFetched:
		return "fetched"
	case editPaused:
		return "paused"
	case editPatchBuilt:
		return "patch_built"
	case editApplied:
		return "applied"
	case editReactivating:
		return "reactivating"
	default:
		return "finished"
	}
}

// editContext carries the saga data between steps. Steps never mutate it;
// each returns a new value.
type editContext struct {
	rec   domain.ProductRecord
	state editState
	// remote is the last item state the marketplace reported.
	remote *domain.RemoteItem
	// revision is the last_updated value the patch is based on.
	revision time.Time
	patch    map[string]any
	notes    []string
}

func newEditContext(rec domain.ProductRecord) editContext {
	return editContext{rec: rec, state: editStarted}
}

// advance moves to a later state. Moving backwards or standing still is
// ignored.
func (c editContext) advance(to editState) editContext {
	if to > c.state {
		c.state = to
	}
	return c
}

// enterReactivation moves to editReactivating. It reports false when the saga
// already reached or passed that state.
func (c editContext) enterReactivation() (editContext, bool) {
	if c.state >= editReactivating {
		return c, false
	}
	c.state = editReactivating
	return c, true
}

func (c editContext) withRemote(item *domain.RemoteItem) editContext {
	cp := *item
	c.remote = &cp
	if !item.LastUpdated.IsZero() {
		c.revision = item.LastUpdated
	}
	return c
}

func (c editContext) withPatch(patch map[string]any) editContext {
	cp := make(map[string]any, len(patch))
	for k, v := range patch {
		cp[k] = v
	}
	c.patch = cp
	return c
}

func (c editContext) withNote(note string) editContext {
	notes := make([]string, len(c.notes), len(c.notes)+1)
	copy(notes, c.notes)
	c.notes = append(notes, note)
	return c
}

// remoteStatus returns the last known remote status, or "" when the item was
// never fetched.
func (c editContext) remoteStatus() string {
	if c.remote == nil {
		return ""
	}
	return c.remote.Status
}

// editStep is one forward step of the saga.
type editStep struct {
	name string
	done editState
	run  func(ctx context.Context, c editContext, token domain.AccessToken) (editContext, error)
}

// editOperation updates an existing listing: it pauses the listing, applies
// a diff patch and reactivates it, reactivating even when a step fails.
type editOperation struct {
	deps OperationDeps
}

func newEditOperation(deps OperationDeps) *editOperation {
	return &editOperation{deps: deps}
}

func (o *editOperation) Kind() domain.OperationKind { return domain.OperationEdit }

func (o *editOperation) steps() []editStep {
	return []editStep{
		{name: stepEditDescription, done: editDescriptionSynced, run: o.syncDescription},
		{name: stepEditFetch, done: editFetched, run: o.fetch},
		{name: stepEditPause, done: editPaused, run: o.pause},
		{name: stepEditBuild, done: editPatchBuilt, run: o.buildPatch},
		{name: stepEditApply, done: editApplied, run: o.apply},
	}
}

// Run executes the saga for one record.
func (o *editOperation) Run(ctx context.Context, rec domain.ProductRecord, token domain.AccessToken) domain.OperationResult {
	log := recordLogger(o.deps.Logger, rec)

	if f := validateRecord(rec, columnMarketplaceID); f != nil {
		log.Warn("edit rejected", zap.Strings("causes", f.Causes))
		return domain.Failed(f)
	}

	c := newEditContext(rec)
	for _, step := range o.steps() {
		next, err := step.run(ctx, c, token)
		if err != nil {
			return o.compensate(ctx, log, c, token, stepFailure(step.name, err))
		}
		c = next.advance(step.done)
		log.Debug("edit step done", zap.String("step", step.name), zap.Stringer("state", c.state))
	}

	c, err := o.reactivate(context.WithoutCancel(ctx), log, c, token)
	if err != nil {
		f := stepFailure(stepEditReactivate, err)
		log.Warn("edit failed", zap.String("step", f.Step), zap.Strings("causes", f.Causes))
		return domain.Failed(f)
	}
	c = c.advance(editFinished)

	log.Info("listing edited", zap.String("status", c.remoteStatus()))
	return domain.Succeeded(&domain.RemoteState{
		MarketplaceID: rec.Identifiers.MarketplaceID,
		Status:        c.remoteStatus(),
		Permalink:     c.remote.Permalink,
		CategoryID:    c.remote.CategoryID,
	}, c.notes...)
}

// compensate attempts the single reactivation after a failed step and
// returns the failure to record.
func (o *editOperation) compensate(ctx context.Context, log *zap.Logger, c editContext, token domain.AccessToken, f *domain.Failure) domain.OperationResult {
	log.Warn("edit step failed, reactivating",
		zap.String("step", f.Step),
		zap.Stringer("state", c.state),
		zap.Strings("causes", f.Causes))

	before := c.remoteStatus()
	c, err := o.reactivate(context.WithoutCancel(ctx), log, c, token)
	if err != nil {
		rf := domain.NewFailure(domain.AbortedStepFailure,
			fmt.Sprintf("Falha na etapa '%s': %s", f.Step, strings.Join(f.Causes, "; ")),
			fmt.Sprintf("Falha na reativação: %v", err))
		rf.Step = stepEditReactivate
		rf.Err = errors.Join(f, err)
		log.Error("listing left paused", zap.Strings("causes", rf.Causes))
		return domain.Failed(rf)
	}

	if before != "" && before != c.remoteStatus() {
		f = f.WithCause("Produto reativado após a falha.")
	}
	return domain.Failed(f)
}

func (o *editOperation) syncDescription(ctx context.Context, c editContext, token domain.AccessToken) (editContext, error) {
	local := c.rec.Sale.Description
	if strings.TrimSpace(local) == "" {
		return c, nil
	}
	itemID := c.rec.Identifiers.MarketplaceID

	current, err := o.deps.Items.GetDescription(ctx, token, itemID)
	if err != nil {
		return c, fmt.Errorf("Falha ao obter dados de descrição: %w", err)
	}
	switch {
	case strings.TrimSpace(current) == "":
		err = o.deps.Items.SetDescription(ctx, token, itemID, local, false)
	case current != local:
		err = o.deps.Items.SetDescription(ctx, token, itemID, local, true)
	default:
		return c, nil
	}
	if err != nil {
		return c, fmt.Errorf("Falha no processo de adicionar a descrição: %w", err)
	}
	return c.withNote("Descrição atualizada."), nil
}

func (o *editOperation) fetch(ctx context.Context, c editContext, token domain.AccessToken) (editContext, error) {
	item, err := o.deps.Items.GetItem(ctx, token, c.rec.Identifiers.MarketplaceID)
	if err != nil {
		return c, fmt.Errorf("Falha no processo de obter dados do produto: %w", err)
	}
	return c.withRemote(item), nil
}

func (o *editOperation) pause(ctx context.Context, c editContext, token domain.AccessToken) (editContext, error) {
	if c.remoteStatus() == domain.StatusPaused {
		return c, nil
	}
	item, err := o.deps.Items.UpdateItem(ctx, token, c.rec.Identifiers.MarketplaceID,
		map[string]any{"status": domain.StatusPaused})
	if err != nil {
		return c, fmt.Errorf("Falha no processo de pausar o produto para edição: %w", err)
	}
	return c.withRemote(item), nil
}

func (o *editOperation) buildPatch(_ context.Context, c editContext, _ domain.AccessToken) (editContext, error) {
	patch, err := o.deps.Payloads.EditPatch(c.rec, *c.remote)
	if err != nil {
		return c, fmt.Errorf("Falha no processo de geração dos dados de edição: %w", err)
	}
	return c.withPatch(patch), nil
}

func (o *editOperation) apply(ctx context.Context, c editContext, token domain.AccessToken) (editContext, error) {
	if len(c.patch) == 0 {
		return c.withNote("Nenhum campo diferente do anúncio."), nil
	}
	itemID := c.rec.Identifiers.MarketplaceID

	if o.deps.OptimisticEdit && !c.revision.IsZero() {
		current, err := o.deps.Items.GetItem(ctx, token, itemID)
		if err != nil {
			return c, fmt.Errorf("Falha ao conferir a revisão do produto: %w", err)
		}
		if !current.LastUpdated.IsZero() && !current.LastUpdated.Equal(c.revision) {
			return c.withRemote(current), fmt.Errorf("%w: last_updated %s, esperado %s", domain.ErrRemoteChanged,
				current.LastUpdated.Format(time.RFC3339), c.revision.Format(time.RFC3339))
		}
	}

	item, err := o.deps.Items.UpdateItem(ctx, token, itemID, c.patch)
	if err != nil {
		return c, fmt.Errorf("Falha no comando de edição do produto: %w", err)
	}
	return c.withRemote(item), nil
}

// reactivate issues the activation edit at most once per saga. It is a no-op
// when the item was never fetched or is already active. Callers detach ctx
// from cancellation so an interrupted run still reactivates.
func (o *editOperation) reactivate(ctx context.Context, log *zap.Logger, c editContext, token domain.AccessToken) (editContext, error) {
	c, ok := c.enterReactivation()
	if !ok {
		return c, nil
	}
	switch c.remoteStatus() {
	case "", domain.StatusActive:
		return c, nil
	}

	log.Info("reactivating listing")
	item, err := o.deps.Items.UpdateItem(ctx, token, c.rec.Identifiers.MarketplaceID,
		map[string]any{"status": domain.StatusActive})
	if err != nil {
		return c, fmt.Errorf("Falha no processo de reativação do produto: %w", err)
	}
	return c.withRemote(item), nil
}
