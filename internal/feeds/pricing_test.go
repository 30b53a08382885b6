package feeds

import (
	"context"
	"testing"
	"time"

	"gridpulse/internal/types"
)

func TestPricingClientFetch(t *testing.T) {
	srv := jsonServer(t, `{"data":[
		{"startTime":"2026-08-30T11:30:00Z","price":84.5},
		{"startTime":"2026-08-30T11:00:00Z","price":79.1}
	]}`)

	c := NewPricingClient(srv.Client(), srv.URL, "")
	rec, err := c.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}

	if len(rec.Points) != 2 {
		t.Fatalf("got %d points, want 2", len(rec.Points))
	}
	// Newest-first ordering: Current() is the head.
	if rec.Current().Price != 84.5 {
		t.Errorf("Current().Price = %v, want 84.5", rec.Current().Price)
	}
	wantStart := time.Date(2026, 8, 30, 11, 30, 0, 0, time.UTC)
	if !rec.Current().StartTime.Equal(wantStart) {
		t.Errorf("Current().StartTime = %v, want %v", rec.Current().StartTime, wantStart)
	}
}

func TestPricingClientFailures(t *testing.T) {
	tests := []struct {
		name string
		body string
		want types.ErrorCode
	}{
		{"empty array", `{"data":[]}`, types.ErrCodeFeedShape},
		{"missing wrapper", `{}`, types.ErrCodeFeedShape},
		{"malformed json", `[{]`, types.ErrCodeFeedParse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := jsonServer(t, tt.body)
			c := NewPricingClient(srv.Client(), srv.URL, "")
			_, err := c.Fetch(context.Background())
			requireFeedCode(t, err, tt.want)
		})
	}
}
