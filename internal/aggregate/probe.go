package aggregate

import (
	"context"
	"fmt"
	"time"
)

// FreshnessProbe reports the snapshot store healthy when a snapshot exists
// and is no older than the staleness bound. It satisfies the API chassis
// HealthProbe interface.
type FreshnessProbe struct {
	store *Store
	// maxAge is the staleness bound; typically a small multiple of the
	// refresh period so a single skipped cycle does not flap the probe.
	maxAge time.Duration
	now    func() time.Time
}

// NewFreshnessProbe creates a probe over the given store.
func NewFreshnessProbe(store *Store, maxAge time.Duration) *FreshnessProbe {
	return &FreshnessProbe{
		store:  store,
		maxAge: maxAge,
		now:    time.Now,
	}
}

// Name identifies the probe in health responses.
func (p *FreshnessProbe) Name() string {
	return "snapshot"
}

// Check fails when no cycle has completed yet or the latest snapshot has
// gone stale.
func (p *FreshnessProbe) Check(_ context.Context) error {
	state, ok := p.store.Latest()
	if !ok {
		return fmt.Errorf("no snapshot published yet")
	}
	if age := p.now().Sub(state.CapturedAt); age > p.maxAge {
		return fmt.Errorf("snapshot is stale: captured %s ago", age.Round(time.Second))
	}
	return nil
}
