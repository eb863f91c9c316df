package usecase

import (
	"context"
	"fmt"
	"sync"

	"github.com/diillson/multicloud-finops-go/internal/domain/entity"
	"github.com/diillson/multicloud-finops-go/internal/domain/service"
	"github.com/diillson/multicloud-finops-go/internal/shared/types"
)

// ViewStateKind is the state of a provider detail view.
type ViewStateKind int

const (
	StateIdle ViewStateKind = iota
	StateLoading
	StateReady
	StateEmpty
)

func (k ViewStateKind) String() string {
	switch k {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateEmpty:
		return "empty"
	default:
		return "idle"
	}
}

// ViewState is an immutable copy of what the detail view currently shows. Money values are
// already projected to Currency and the series is already bucketed by Granularity.
type ViewState struct {
	State            ViewStateKind
	Selector         entity.PeriodSelector
	Range            entity.DateRange
	Source           SeriesSource
	Granularity      entity.Granularity
	Currency         string
	Series           entity.CostSeries
	Snapshot         entity.ProviderCostSnapshot
	LoadingChartData bool
	Syncing          bool
}

type snapshotLoader interface {
	Load(ctx context.Context, providerID string) (entity.ProviderCostSnapshot, error)
}

type syncTrigger interface {
	TriggerSync(ctx context.Context, providerID string) (entity.SyncResult, error)
}

// DetailViewOptions configures a DetailView. Zero values mean day buckets in the currency
// of the snapshot. Currency is only honoured when Converter is set.
type DetailViewOptions struct {
	Granularity entity.Granularity
	Converter   *service.CurrencyConverter
	Currency    string
	OnChange    func(ViewState)
}

// DetailView holds the selector, the committed series and the loading flags of one
// provider. Only the most recently selected period may commit its result.
type DetailView struct {
	mu       sync.Mutex
	notifyMu sync.Mutex
	wg       sync.WaitGroup

	ctx    context.Context
	cancel context.CancelFunc

	providerID string
	loader     *SeriesLoader
	snapshots  snapshotLoader
	syncer     syncTrigger
	logger     types.Logger
	onChange   func(ViewState)
	converter  *service.CurrencyConverter

	snapshot    entity.ProviderCostSnapshot
	state       ViewStateKind
	selector    entity.PeriodSelector
	bounds      entity.DateRange
	source      SeriesSource
	raw         entity.CostSeries
	granularity entity.Granularity
	display     string
	rate        float64
	currency    string
	generation  uint64
	loading     bool
	syncing     bool
	closed      bool
}

// NewDetailView creates an idle view over snapshot. snapshots and syncer are only used by
// Reload and may be nil.
func NewDetailView(
	parent context.Context,
	snapshot entity.ProviderCostSnapshot,
	loader *SeriesLoader,
	snapshots snapshotLoader,
	syncer syncTrigger,
	logger types.Logger,
	opts DetailViewOptions,
) *DetailView {
	ctx, cancel := context.WithCancel(parent)
	granularity := opts.Granularity
	if granularity == "" {
		granularity = entity.GranularityDay
	}
	v := &DetailView{
		ctx:         ctx,
		cancel:      cancel,
		providerID:  snapshot.ProviderID,
		loader:      loader,
		snapshots:   snapshots,
		syncer:      syncer,
		logger:      logger,
		onChange:    opts.OnChange,
		converter:   opts.Converter,
		snapshot:    snapshot,
		state:       StateIdle,
		granularity: granularity,
		display:     opts.Currency,
	}
	v.reprojectLocked()
	return v
}

// reprojectLocked recomputes the rate from the snapshot currency to the display currency.
// Callers hold v.mu, or own v exclusively.
func (v *DetailView) reprojectLocked() {
	if v.converter == nil {
		v.rate, v.currency = 1.0, v.snapshot.Currency
		return
	}
	v.rate, v.currency = v.converter.RateFor(v.snapshot.Currency, v.display)
}

// Select switches the view to a new period and starts loading it. Invalid ranges are
// rejected before anything changes. A result for a period that is no longer selected
// is discarded when it arrives.
func (v *DetailView) Select(selector entity.PeriodSelector) error {
	bounds, err := service.Resolve(selector, v.loader.now())
	if err != nil {
		return err
	}

	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return types.ErrViewClosed
	}
	v.generation++
	generation := v.generation
	v.selector = selector
	v.bounds = bounds
	v.source = ""
	v.state = StateLoading
	v.loading = true
	snapshot := v.snapshot
	v.wg.Add(1)
	v.mu.Unlock()

	v.notify()

	go func() {
		defer v.wg.Done()
		result, err := v.loader.LoadSeries(v.ctx, v.providerID, selector, snapshot)
		v.commit(generation, result, err)
	}()
	return nil
}

func (v *DetailView) commit(generation uint64, result SeriesResult, err error) {
	v.mu.Lock()
	if v.closed || generation != v.generation {
		v.mu.Unlock()
		return
	}
	v.loading = false
	if err != nil {
		if v.logger != nil {
			v.logger.LogError("Could not load %s for %s: %v", v.selector.Label(), v.providerID, err)
		}
		v.raw = entity.CostSeries{}
		v.source = SourceEmpty
		v.state = StateEmpty
	} else {
		v.raw = result.Series
		v.bounds = result.Range
		v.source = result.Source
		v.state = StateReady
		if len(result.Series) == 0 {
			v.state = StateEmpty
		}
	}
	v.mu.Unlock()

	v.notify()
}

// SetGranularity changes the bucket size of the displayed series without re-fetching.
func (v *DetailView) SetGranularity(granularity entity.Granularity) {
	v.mu.Lock()
	v.granularity = granularity
	v.mu.Unlock()
	v.notify()
}

// SetCurrency changes the display currency without re-fetching. An empty code shows the
// snapshot in its own currency.
func (v *DetailView) SetCurrency(code string) {
	v.mu.Lock()
	v.display = code
	v.reprojectLocked()
	v.mu.Unlock()
	v.notify()
}

// Reload triggers a sync for the provider and, unless the sync reported an error for it,
// replaces the snapshot and reloads the current period.
func (v *DetailView) Reload(ctx context.Context) error {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return types.ErrViewClosed
	}
	v.syncing = true
	v.mu.Unlock()
	v.notify()

	defer func() {
		v.mu.Lock()
		v.syncing = false
		v.mu.Unlock()
		v.notify()
	}()

	if v.syncer != nil {
		result, err := v.syncer.TriggerSync(ctx, v.providerID)
		if err != nil {
			return fmt.Errorf("sync provider %s: %w", v.providerID, err)
		}
		if msg, failed := result.FailedFor(v.providerID); failed {
			if v.logger != nil {
				v.logger.LogWarning("Sync failed for %s: %s; keeping previous data", v.providerID, msg)
			}
			return nil
		}
	}

	if v.snapshots == nil {
		return nil
	}
	snapshot, err := v.snapshots.Load(ctx, v.providerID)
	if err != nil {
		return fmt.Errorf("reload snapshot for %s: %w", v.providerID, err)
	}

	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return nil
	}
	v.snapshot = snapshot
	v.reprojectLocked()
	selector := v.selector
	hasSelection := v.state != StateIdle
	v.mu.Unlock()

	if hasSelection {
		return v.Select(selector)
	}
	v.notify()
	return nil
}

// View returns the current state of the view.
func (v *DetailView) View() ViewState {
	v.mu.Lock()
	defer v.mu.Unlock()

	return ViewState{
		State:            v.state,
		Selector:         v.selector,
		Range:            v.bounds,
		Source:           v.source,
		Granularity:      v.granularity,
		Currency:         v.currency,
		Series:           service.Aggregate(service.Project(v.raw, v.rate), v.granularity),
		Snapshot:         service.ProjectSnapshot(v.snapshot, v.rate, v.currency),
		LoadingChartData: v.loading,
		Syncing:          v.syncing,
	}
}

// Wait blocks until every started load has settled.
func (v *DetailView) Wait() {
	v.wg.Wait()
}

// Close detaches the view. Loads that settle afterwards are ignored.
func (v *DetailView) Close() {
	v.mu.Lock()
	v.closed = true
	v.loading = false
	v.mu.Unlock()
	v.cancel()
}

func (v *DetailView) notify() {
	if v.onChange == nil {
		return
	}
	v.notifyMu.Lock()
	defer v.notifyMu.Unlock()

	v.mu.Lock()
	closed := v.closed
	v.mu.Unlock()
	if closed {
		return
	}
	v.onChange(v.View())
}
