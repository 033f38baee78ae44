package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/aaweerawat2/TipitakaAi/internal/core/domain"
	"github.com/aaweerawat2/TipitakaAi/internal/core/ports/driven"
	"github.com/aaweerawat2/TipitakaAi/internal/core/ports/driving"
	"github.com/aaweerawat2/TipitakaAi/internal/logger"
)

// Ensure ModelLifecycle implements the driving interface.
var _ driving.ModelService = (*ModelLifecycle)(nil)

// loadWaitTimeout bounds how long an Acquire call waits for another
// caller's in-progress load of the same model.
const loadWaitTimeout = 2 * time.Minute

// modelState tracks one catalogued model inside the controller.
type modelState struct {
	desc   domain.ModelDescriptor
	handle driven.ModelHandle

	// refs counts Acquire calls without a matching Release.
	// A model with refs > 0 is pinned and never evicted.
	refs int

	// lastUsed is a monotonic recency sequence for LRU eviction.
	lastUsed uint64

	// loading is non-nil while a load is in flight. Concurrent
	// Acquire calls for the same model wait on it and share the
	// result.
	loading chan struct{}
	loadErr error
}

// ModelLifecycle arbitrates a fixed RAM budget across all models.
// It is the single owner of load/unload transitions; no other
// component may load or unload a model directly.
type ModelLifecycle struct {
	mu      sync.Mutex
	budget  int // MB
	loader  driven.ModelLoader
	catalog driven.ModelCatalog // optional, persists descriptors
	models  map[string]*modelState

	// pendingMB reserves budget for loads in flight so that
	// concurrent loads cannot jointly exceed the budget.
	pendingMB int

	seq uint64
}

// NewModelLifecycle creates a controller with the given RAM budget in
// MB. The catalog is optional; when nil, descriptors live only in
// memory.
func NewModelLifecycle(budgetMB int, loader driven.ModelLoader, catalog driven.ModelCatalog) *ModelLifecycle {
	return &ModelLifecycle{
		budget:  budgetMB,
		loader:  loader,
		catalog: catalog,
		models:  make(map[string]*modelState),
	}
}

// Register adds a model descriptor to the controller. Descriptors
// loaded from the catalog keep their installed flag; loaded state is
// never restored across runs.
func (l *ModelLifecycle) Register(desc domain.ModelDescriptor) error {
	if desc.ID == "" || !desc.Kind.Valid() || desc.RAMCostMB <= 0 {
		return fmt.Errorf("register model: %w", domain.ErrInvalidInput)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.models[desc.ID]; ok {
		return fmt.Errorf("register model %s: %w", desc.ID, domain.ErrAlreadyExists)
	}

	desc.Loaded = false
	l.models[desc.ID] = &modelState{desc: desc}
	l.persistLocked(desc)

	logger.Debug("Registered model %s (%s, %d MB, installed=%t)",
		desc.ID, desc.Kind, desc.RAMCostMB, desc.Installed)
	return nil
}

// MarkInstalled records that a model artifact is present on disk.
// Called by the installation watcher when an artifact appears.
func (l *ModelLifecycle) MarkInstalled(id, storagePath string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	st, ok := l.models[id]
	if !ok {
		return fmt.Errorf("mark installed %s: %w", id, domain.ErrNotFound)
	}

	st.desc.Installed = true
	st.desc.StoragePath = storagePath
	l.persistLocked(st.desc)

	logger.Info("Model %s installed at %s", id, storagePath)
	return nil
}

// Acquire returns a handle to the loaded model, loading it first if
// necessary. If the load would exceed the RAM budget, least-recently-
// used evictable models are unloaded until enough headroom exists.
// Generation models and models currently held by a caller are never
// evicted. Fails with domain.ErrInsufficientMemory when nothing
// evictable can free enough headroom.
func (l *ModelLifecycle) Acquire(ctx context.Context, id string) (driven.ModelHandle, error) {
	for {
		l.mu.Lock()

		st, ok := l.models[id]
		if !ok {
			l.mu.Unlock()
			return nil, fmt.Errorf("acquire %s: %w", id, domain.ErrNotFound)
		}

		// Another caller is loading this model: wait and share the result.
		if st.loading != nil {
			loading := st.loading
			l.mu.Unlock()
			if err := waitLoad(ctx, loading); err != nil {
				return nil, fmt.Errorf("acquire %s: %w", id, err)
			}
			continue // re-evaluate under lock
		}

		// Already loaded: idempotent, no second RAM charge.
		if st.desc.Loaded {
			st.refs++
			l.seq++
			st.lastUsed = l.seq
			handle := st.handle
			l.mu.Unlock()
			return handle, nil
		}

		if !st.desc.Installed {
			l.mu.Unlock()
			return nil, fmt.Errorf("acquire %s: %w", id, domain.ErrNotInstalled)
		}

		// Make headroom. Eviction is immediate: if nothing evictable
		// remains and the budget is still exceeded, fail now rather
		// than wait for pinned models to be released.
		required := st.desc.RAMCostMB
		if err := l.evictForLocked(ctx, required); err != nil {
			l.mu.Unlock()
			return nil, fmt.Errorf("acquire %s: %w", id, err)
		}

		// Reserve budget and start the load outside the lock.
		st.loading = make(chan struct{})
		st.loadErr = nil
		l.pendingMB += required
		desc := st.desc
		l.mu.Unlock()

		handle, err := l.loader.Load(ctx, desc)

		l.mu.Lock()
		l.pendingMB -= required
		close(st.loading)
		st.loading = nil
		if err != nil {
			st.loadErr = err
			l.mu.Unlock()
			logger.Warn("Load failed for model %s: %v", id, err)
			return nil, fmt.Errorf("acquire %s: %w", id, domain.ErrModelUnavailable)
		}

		st.handle = handle
		st.desc.Loaded = true
		st.refs++
		l.seq++
		st.lastUsed = l.seq
		l.persistLocked(st.desc)
		total := l.loadedRAMLocked()
		l.mu.Unlock()

		logger.Info("Loaded model %s (%d MB); resident total %d MB", id, required, total)
		return handle, nil
	}
}

// Release marks the model eligible for eviction. The model stays
// resident until memory pressure evicts it, so an immediate re-acquire
// does not reload it.
func (l *ModelLifecycle) Release(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	st, ok := l.models[id]
	if !ok || st.refs == 0 {
		return
	}
	st.refs--
	l.seq++
	st.lastUsed = l.seq
	logger.Debug("Released model %s (refs=%d)", id, st.refs)
}

// Unload explicitly evicts a model. Fails with domain.ErrModelInUse if
// a caller still holds it.
func (l *ModelLifecycle) Unload(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	st, ok := l.models[id]
	if !ok {
		return fmt.Errorf("unload %s: %w", id, domain.ErrNotFound)
	}
	if !st.desc.Loaded {
		return nil
	}
	if st.refs > 0 {
		return fmt.Errorf("unload %s: %w", id, domain.ErrModelInUse)
	}
	return l.unloadLocked(ctx, st)
}

// Delete removes an installed, unloaded model from the catalog.
// A loaded model must be unloaded first.
func (l *ModelLifecycle) Delete(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	st, ok := l.models[id]
	if !ok {
		return fmt.Errorf("delete %s: %w", id, domain.ErrNotFound)
	}
	if st.desc.Loaded || st.refs > 0 {
		return fmt.Errorf("delete %s: %w", id, domain.ErrModelInUse)
	}

	st.desc.Installed = false
	st.desc.StoragePath = ""
	if l.catalog != nil {
		if err := l.catalog.Delete(ctx, id); err != nil {
			logger.Warn("Catalog delete for %s failed: %v", id, err)
		}
	}
	delete(l.models, id)

	logger.Info("Deleted model %s", id)
	return nil
}

// LoadedRAMMB returns the sum of RAM costs of all loaded models.
func (l *ModelLifecycle) LoadedRAMMB() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loadedRAMLocked()
}

// BudgetMB returns the configured RAM budget.
func (l *ModelLifecycle) BudgetMB() int {
	return l.budget
}

// List returns all catalogued descriptors with current state.
func (l *ModelLifecycle) List(ctx context.Context) ([]domain.ModelDescriptor, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	descs := make([]domain.ModelDescriptor, 0, len(l.models))
	for _, st := range l.models {
		descs = append(descs, st.desc)
	}
	sort.Slice(descs, func(i, j int) bool { return descs[i].ID < descs[j].ID })
	return descs, nil
}

// Get returns the descriptor for one model.
func (l *ModelLifecycle) Get(id string) (*domain.ModelDescriptor, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	st, ok := l.models[id]
	if !ok {
		return nil, fmt.Errorf("model %s: %w", id, domain.ErrNotFound)
	}
	desc := st.desc
	return &desc, nil
}

// evictForLocked unloads least-recently-used evictable models until
// requiredMB fits within the budget. Caller holds l.mu.
func (l *ModelLifecycle) evictForLocked(ctx context.Context, requiredMB int) error {
	for l.loadedRAMLocked()+l.pendingMB+requiredMB > l.budget {
		victim := l.evictionCandidateLocked()
		if victim == nil {
			logger.Warn("No evictable model: loaded=%d MB pending=%d MB required=%d MB budget=%d MB",
				l.loadedRAMLocked(), l.pendingMB, requiredMB, l.budget)
			return domain.ErrInsufficientMemory
		}
		logger.Info("Evicting model %s (%d MB, LRU)", victim.desc.ID, victim.desc.RAMCostMB)
		if err := l.unloadLocked(ctx, victim); err != nil {
			return err
		}
	}
	return nil
}

// evictionCandidateLocked selects the least-recently-used loaded model
// that is not pinned and not a generation model. Returns nil when no
// model is evictable.
func (l *ModelLifecycle) evictionCandidateLocked() *modelState {
	var victim *modelState
	for _, st := range l.models {
		if !st.desc.Loaded || st.refs > 0 || st.loading != nil {
			continue
		}
		if st.desc.Kind == domain.ModelKindGeneration {
			continue
		}
		if victim == nil || st.lastUsed < victim.lastUsed {
			victim = st
		}
	}
	return victim
}

// unloadLocked performs the unload transition. Caller holds l.mu.
func (l *ModelLifecycle) unloadLocked(ctx context.Context, st *modelState) error {
	if err := l.loader.Unload(ctx, st.desc); err != nil {
		return fmt.Errorf("unload %s: %w", st.desc.ID, err)
	}
	st.desc.Loaded = false
	st.handle = nil
	l.persistLocked(st.desc)
	logger.Debug("Unloaded model %s; resident total %d MB", st.desc.ID, l.loadedRAMLocked())
	return nil
}

func (l *ModelLifecycle) loadedRAMLocked() int {
	total := 0
	for _, st := range l.models {
		if st.desc.Loaded {
			total += st.desc.RAMCostMB
		}
	}
	return total
}

// persistLocked writes the descriptor to the catalog, best effort.
// Caller holds l.mu.
func (l *ModelLifecycle) persistLocked(desc domain.ModelDescriptor) {
	if l.catalog == nil {
		return
	}
	if err := l.catalog.Save(context.Background(), desc); err != nil {
		logger.Warn("Catalog save for %s failed: %v", desc.ID, err)
	}
}

// waitLoad waits for an in-progress load with a bounded timeout.
func waitLoad(ctx context.Context, loading <-chan struct{}) error {
	timer := time.NewTimer(loadWaitTimeout)
	defer timer.Stop()

	select {
	case <-loading:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return domain.ErrModelUnavailable
	}
}
