package feeds

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"gridpulse/internal/types"
)

// pricingEnvelope mirrors the market-price feed wire format:
//
//	{"data": [{"startTime": "2026-08-30T11:30:00Z", "price": 84.5}, ...]}
//
// Entries are ordered most-recent-first.
type pricingEnvelope struct {
	Data []struct {
		StartTime string  `json:"startTime"`
		Price     float64 `json:"price"`
	} `json:"data"`
}

// PricingClient fetches and parses the market-price feed.
type PricingClient struct {
	base *BaseClient
}

// NewPricingClient creates a PricingClient for the given upstream URL.
func NewPricingClient(httpClient *http.Client, url, userAgent string) *PricingClient {
	return &PricingClient{base: NewBaseClient(httpClient, "pricing", url, userAgent)}
}

// Fetch performs one round-trip and returns the recent price series.
// An empty data array is a shape failure: the feed responded but carried
// nothing usable, and the aggregator must see that as missing data rather
// than a zero price.
func (c *PricingClient) Fetch(ctx context.Context) (*types.PricingRecord, error) {
	body, _, err := c.base.Get(ctx)
	if err != nil {
		return nil, err
	}

	var env pricingEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, types.NewAppError(types.ErrCodeFeedParse, "malformed pricing feed payload", err)
	}
	if len(env.Data) == 0 {
		return nil, types.NewAppError(types.ErrCodeFeedShape, "pricing feed returned no price points", nil)
	}

	points := make([]types.PricePoint, 0, len(env.Data))
	for _, e := range env.Data {
		p := types.PricePoint{Price: e.Price}
		if t, err := time.Parse(time.RFC3339, e.StartTime); err == nil {
			p.StartTime = t
		}
		points = append(points, p)
	}

	return &types.PricingRecord{Points: points}, nil
}

// Raw returns the verbatim upstream payload for the proxy surface.
func (c *PricingClient) Raw(ctx context.Context) ([]byte, string, error) {
	return c.base.Get(ctx)
}
