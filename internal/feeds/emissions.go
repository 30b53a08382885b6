package feeds

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"gridpulse/internal/types"
)

// emissionsEnvelope mirrors the carbon-intensity feed wire format:
//
//	{"data": [{"from": "...", "to": "...",
//	           "intensity": {"forecast": 215, "actual": 211}}]}
//
// The actual figure lags the forecast and is null until the upstream has
// computed a measured value for the window.
type emissionsEnvelope struct {
	Data []struct {
		From      string `json:"from"`
		To        string `json:"to"`
		Intensity *struct {
			Forecast float64  `json:"forecast"`
			Actual   *float64 `json:"actual"`
		} `json:"intensity"`
	} `json:"data"`
}

// emissionsTimeLayout is the upstream window timestamp format.
const emissionsTimeLayout = "2006-01-02T15:04Z"

// EmissionsClient fetches and parses the carbon-intensity feed.
type EmissionsClient struct {
	base *BaseClient
}

// NewEmissionsClient creates an EmissionsClient for the given upstream URL.
func NewEmissionsClient(httpClient *http.Client, url, userAgent string) *EmissionsClient {
	return &EmissionsClient{base: NewBaseClient(httpClient, "emissions", url, userAgent)}
}

// Fetch performs one round-trip and returns the current intensity window.
// The data array must be non-empty and its first entry must carry an
// intensity object; either absence is a shape failure. A missing actual
// intensity is allowed and surfaces as an unknown Reading.
func (c *EmissionsClient) Fetch(ctx context.Context) (*types.EmissionsRecord, error) {
	body, _, err := c.base.Get(ctx)
	if err != nil {
		return nil, err
	}

	var env emissionsEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, types.NewAppError(types.ErrCodeFeedParse, "malformed emissions feed payload", err)
	}
	if len(env.Data) == 0 {
		return nil, types.NewAppError(types.ErrCodeFeedShape, "emissions feed returned no data", nil)
	}

	entry := env.Data[0]
	if entry.Intensity == nil {
		return nil, types.NewAppError(types.ErrCodeFeedShape, "emissions feed entry missing intensity", nil)
	}

	rec := &types.EmissionsRecord{
		ForecastIntensity: entry.Intensity.Forecast,
		ActualIntensity:   types.UnknownReading(),
	}
	if entry.Intensity.Actual != nil {
		rec.ActualIntensity = types.KnownReading(*entry.Intensity.Actual)
	}

	// Window bounds are informational; a missing timestamp does not fail the
	// record, it just leaves the zero time.
	if t, err := time.Parse(emissionsTimeLayout, entry.From); err == nil {
		rec.ValidFrom = t
	}
	if t, err := time.Parse(emissionsTimeLayout, entry.To); err == nil {
		rec.ValidTo = t
	}

	return rec, nil
}

// Raw returns the verbatim upstream payload for the proxy surface.
func (c *EmissionsClient) Raw(ctx context.Context) ([]byte, string, error) {
	return c.base.Get(ctx)
}
