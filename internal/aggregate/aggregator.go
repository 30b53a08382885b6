// Package aggregate implements the refresh-cycle orchestration: it runs all
// four Source Clients concurrently, collects their outcomes independently,
// and merges them into one GridState snapshot. One failing feed never blocks
// the others; its field group simply comes back unknown.
package aggregate

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"gridpulse/internal/feeds"
	"gridpulse/internal/types"
)

// mwPerGW converts feed megawatt figures to the gigawatt readings carried in
// the snapshot.
const mwPerGW = 1000.0

// Aggregator orchestrates one refresh cycle over the four feed sources.
type Aggregator struct {
	mix       feeds.MixSource
	emissions feeds.EmissionsSource
	pricing   feeds.PricingSource
	demand    feeds.DemandSource

	fetchTimeout time.Duration
	logger       *slog.Logger
}

// AggregatorConfig holds the dependencies for creating an Aggregator.
type AggregatorConfig struct {
	Mix       feeds.MixSource
	Emissions feeds.EmissionsSource
	Pricing   feeds.PricingSource
	Demand    feeds.DemandSource

	// FetchTimeout bounds each individual feed fetch so one unresponsive
	// upstream cannot stall a whole cycle.
	FetchTimeout time.Duration
	Logger       *slog.Logger
}

// NewAggregator creates an Aggregator with the given configuration.
func NewAggregator(cfg AggregatorConfig) *Aggregator {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.FetchTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Aggregator{
		mix:          cfg.Mix,
		emissions:    cfg.Emissions,
		pricing:      cfg.Pricing,
		demand:       cfg.Demand,
		fetchTimeout: timeout,
		logger:       logger,
	}
}

// cycleResults holds the settled outcome of one cycle's fetches. Each field
// is written by exactly one goroutine, so no lock is needed.
type cycleResults struct {
	mix       *types.MixRecord
	emissions *types.EmissionsRecord
	pricing   *types.PricingRecord
	demand    *types.DemandRecord
}

// Aggregate runs one full refresh cycle and returns the merged snapshot.
// It never fails: per-source errors are logged with their typed code and
// become unknown fields in the result.
//
// All four fetches are issued concurrently and the merge only starts after
// every fetch has settled, so no derived field is ever computed from a
// half-resolved cycle. CapturedAt is triggeredAt, the cycle's trigger time,
// regardless of per-source latency.
func (a *Aggregator) Aggregate(ctx context.Context, triggeredAt time.Time) types.GridState {
	cycleID := uuid.NewString()
	start := time.Now()

	var res cycleResults

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		res.mix = fetchOne(gCtx, a, cycleID, "mix", a.mix.Fetch)
		return nil
	})
	g.Go(func() error {
		res.emissions = fetchOne(gCtx, a, cycleID, "emissions", a.emissions.Fetch)
		return nil
	})
	g.Go(func() error {
		res.pricing = fetchOne(gCtx, a, cycleID, "pricing", a.pricing.Fetch)
		return nil
	})
	g.Go(func() error {
		res.demand = fetchOne(gCtx, a, cycleID, "demand", a.demand.Fetch)
		return nil
	})

	// Goroutines never return errors; Wait is a pure barrier here.
	_ = g.Wait()

	state := merge(res, triggeredAt)

	a.logger.InfoContext(ctx, "refresh cycle complete",
		"cycle_id", cycleID,
		"duration", time.Since(start),
		"price_known", state.Price.Known,
		"emissions_known", state.Emissions.Known,
		"demand_known", state.DemandGW.Known,
		"mix_fuels", len(state.FuelMix),
	)

	return state
}

// fetchOne runs a single source fetch under the per-source timeout and
// absorbs its error into a nil record, logging the typed failure code.
func fetchOne[R any](ctx context.Context, a *Aggregator, cycleID, feed string, fetch func(context.Context) (*R, error)) *R {
	fetchCtx, cancel := context.WithTimeout(ctx, a.fetchTimeout)
	defer cancel()

	rec, err := fetch(fetchCtx)
	if err != nil {
		code, _ := types.FeedErrorCode(err)
		a.logger.WarnContext(ctx, "feed fetch failed",
			"cycle_id", cycleID,
			"feed", feed,
			"code", string(code),
			"error", err,
		)
		return nil
	}
	return rec
}

// merge computes the GridState from the settled cycle results. Pure: two
// calls over identical results yield identical snapshots apart from
// CapturedAt.
func merge(res cycleResults, triggeredAt time.Time) types.GridState {
	state := types.GridState{
		CapturedAt:   triggeredAt,
		Price:        types.UnknownReading(),
		Emissions:    types.UnknownReading(),
		DemandGW:     types.UnknownReading(),
		GenerationGW: types.UnknownReading(),
		TransfersGW:  types.UnknownReading(),
	}

	if res.mix != nil {
		// Shares are taken verbatim per fuel; category grouping is a derived
		// view computed by consumers, never stored here.
		state.FuelMix = res.mix.Shares
	}

	if res.emissions != nil {
		state.Emissions = types.KnownReading(res.emissions.Intensity())
	}

	if res.pricing != nil {
		state.Price = types.KnownReading(res.pricing.Current().Price)
	}

	if res.demand != nil {
		state.DemandGW = types.KnownReading(res.demand.NationalDemandMW / mwPerGW)
		state.TransfersGW = types.KnownReading(res.demand.TotalTransfersMW() / mwPerGW)
		// Generation is derived only when both inputs are known; a partial
		// cycle must never fabricate an arithmetic result.
		state.GenerationGW = types.KnownReading(state.DemandGW.Value - state.TransfersGW.Value)
	}

	return state
}
