package feeds

import (
	"context"

	"gridpulse/internal/types"
)

// The Source interfaces are consumed by the aggregator and the proxy
// handlers. Each fetch performs exactly one upstream round-trip and returns
// either a typed record or an AppError carrying one of the feed failure
// codes (transport, status, shape, parse).

// MixSource produces the current generation mix.
type MixSource interface {
	Fetch(ctx context.Context) (*types.MixRecord, error)
}

// EmissionsSource produces the current carbon intensity window.
type EmissionsSource interface {
	Fetch(ctx context.Context) (*types.EmissionsRecord, error)
}

// PricingSource produces the recent market price series, newest first.
type PricingSource interface {
	Fetch(ctx context.Context) (*types.PricingRecord, error)
}

// DemandSource produces the current national demand and interconnector flows.
type DemandSource interface {
	Fetch(ctx context.Context) (*types.DemandRecord, error)
}

// RawSource exposes the verbatim upstream payload for the inbound proxy
// surface. The payload is returned untouched on success so proxy consumers
// see exactly what the upstream published.
type RawSource interface {
	Raw(ctx context.Context) (body []byte, contentType string, err error)
}
