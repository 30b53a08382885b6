package feeds

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"gridpulse/internal/types"
)

// mixEnvelope mirrors the generation-mix feed wire format:
//
//	{"data": {"generationmix": [{"fuel": "gas", "perc": 38.2}, ...]}}
type mixEnvelope struct {
	Data *struct {
		GenerationMix []struct {
			Fuel string  `json:"fuel"`
			Perc float64 `json:"perc"`
		} `json:"generationmix"`
	} `json:"data"`
}

// MixClient fetches and parses the generation-mix feed.
type MixClient struct {
	base *BaseClient
}

// NewMixClient creates a MixClient for the given upstream URL.
func NewMixClient(httpClient *http.Client, url, userAgent string) *MixClient {
	return &MixClient{base: NewBaseClient(httpClient, "mix", url, userAgent)}
}

// Fetch performs one round-trip and returns the typed generation mix.
// The wrapper object must exist and carry a non-empty generationmix array;
// absence is a shape failure, not a permissive default. Unknown fuel codes
// map to other; negative percentages are a shape failure.
func (c *MixClient) Fetch(ctx context.Context) (*types.MixRecord, error) {
	body, _, err := c.base.Get(ctx)
	if err != nil {
		return nil, err
	}

	var env mixEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, types.NewAppError(types.ErrCodeFeedParse, "malformed mix feed payload", err)
	}
	if env.Data == nil || len(env.Data.GenerationMix) == 0 {
		return nil, types.NewAppError(types.ErrCodeFeedShape, "mix feed missing generationmix data", nil)
	}

	shares := make([]types.FuelShare, 0, len(env.Data.GenerationMix))
	for _, e := range env.Data.GenerationMix {
		if e.Perc < 0 {
			return nil, types.NewAppError(types.ErrCodeFeedShape,
				fmt.Sprintf("mix feed reported negative share for %q", e.Fuel), nil)
		}
		shares = append(shares, types.FuelShare{
			Fuel:         types.ParseFuelKind(e.Fuel),
			SharePercent: e.Perc,
		})
	}

	return &types.MixRecord{Shares: shares}, nil
}

// Raw returns the verbatim upstream payload for the proxy surface.
func (c *MixClient) Raw(ctx context.Context) ([]byte, string, error) {
	return c.base.Get(ctx)
}
