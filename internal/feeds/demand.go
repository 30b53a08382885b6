package feeds

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"gridpulse/internal/types"
)

// demandTimestampColumn and demandNDColumn are the two non-flow columns of
// the national demand CSV. Every other header names an interconnector whose
// value is a flow in MW (positive = import, negative = export).
const (
	demandTimestampColumn = "timestamp"
	demandNDColumn        = "nd"
)

// DemandClient fetches and parses the national demand feed. Unlike the other
// feeds this one is CSV: a header row followed by data rows ordered
// newest-first, e.g.
//
//	timestamp,nd,ifa,ifa2,britned,moyle,nemo,nsl,eleclink,viking
//	2026-08-30T11:30:00Z,32000,1012,-74,502,60,...
type DemandClient struct {
	base *BaseClient
}

// NewDemandClient creates a DemandClient for the given upstream URL.
func NewDemandClient(httpClient *http.Client, url, userAgent string) *DemandClient {
	return &DemandClient{base: NewBaseClient(httpClient, "demand", url, userAgent)}
}

// Fetch performs one round-trip and returns the canonical current state:
// the first data row. A payload without the expected nd header, or with no
// data rows, is a shape failure reported here, never a downstream crash.
func (c *DemandClient) Fetch(ctx context.Context) (*types.DemandRecord, error) {
	body, _, err := c.base.Get(ctx)
	if err != nil {
		return nil, err
	}
	return parseDemandCSV(body)
}

// Raw returns the verbatim upstream payload for the proxy surface.
func (c *DemandClient) Raw(ctx context.Context) ([]byte, string, error) {
	return c.base.Get(ctx)
}

// parseDemandCSV decodes the demand CSV body into a DemandRecord.
func parseDemandCSV(body []byte) (*types.DemandRecord, error) {
	reader := csv.NewReader(bytes.NewReader(body))
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeFeedParse, "malformed demand feed CSV", err)
	}
	if len(rows) < 2 {
		return nil, types.NewAppError(types.ErrCodeFeedShape, "demand feed has no data rows", nil)
	}

	header := rows[0]
	ndIdx := -1
	for i, col := range header {
		if strings.EqualFold(strings.TrimSpace(col), demandNDColumn) {
			ndIdx = i
			break
		}
	}
	if ndIdx < 0 {
		return nil, types.NewAppError(types.ErrCodeFeedShape, "demand feed missing nd header", nil)
	}

	// Feed is ordered newest-first: the first data row is current state.
	current := rows[1]
	if len(current) != len(header) {
		return nil, types.NewAppError(types.ErrCodeFeedShape, "demand feed row does not match header", nil)
	}

	nd, err := strconv.ParseFloat(strings.TrimSpace(current[ndIdx]), 64)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeFeedParse,
			fmt.Sprintf("demand feed nd value %q is not numeric", current[ndIdx]), err)
	}

	flows := make(map[types.InterconnectorID]float64)
	for i, col := range header {
		name := strings.ToLower(strings.TrimSpace(col))
		if i == ndIdx || name == demandTimestampColumn {
			continue
		}
		mw, err := strconv.ParseFloat(strings.TrimSpace(current[i]), 64)
		if err != nil {
			return nil, types.NewAppError(types.ErrCodeFeedParse,
				fmt.Sprintf("demand feed flow %q value %q is not numeric", name, current[i]), err)
		}
		flows[types.InterconnectorID(name)] = mw
	}

	return &types.DemandRecord{
		NationalDemandMW: nd,
		FlowsMW:          flows,
	}, nil
}
