package market

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
)

const marketSummaryPath = "/api/marketSummery"

// Overview is an exchange-wide snapshot: the All Share Price Index, the
// S&P Sri Lanka 20 index and the day's turnover.
type Overview struct {
	ASPI        float64 `json:"aspi"`
	ASPIChange  float64 `json:"aspi_change"`
	SPSL20      float64 `json:"sp_sl20"`
	Turnover    float64 `json:"turnover"`
	Currency    string  `json:"currency"`
	Timestamp   string  `json:"timestamp"`
	Source      string  `json:"source,omitempty"`
}

type overviewEnvelope struct {
	ASPI       float64 `json:"aspi"`
	ASPIChange float64 `json:"aspiChange"`
	SPSL20     float64 `json:"spSl20"`
	Turnover   float64 `json:"turnover"`
}

// Overview fetches the market-wide summary. Like Quote it never fails hard:
// any transport or decode problem yields a mock snapshot tagged in Source.
func (c *QuoteClient) Overview(ctx context.Context) Overview {
	ov, err := c.fetchOverview(ctx)
	if err != nil {
		return c.mockOverview()
	}
	return *ov
}

func (c *QuoteClient) fetchOverview(ctx context.Context) (*Overview, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.BaseURL+marketSummaryPath, nil)
	if err != nil {
		return nil, fmt.Errorf("build overview request: %w", err)
	}
	setBrowserHeaders(req)

	resp, err := c.opts.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("overview request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("overview request: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read overview response: %w", err)
	}

	var envelope overviewEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode overview response: %w", err)
	}
	if envelope.ASPI == 0 {
		return nil, fmt.Errorf("overview data empty")
	}

	return &Overview{
		ASPI:       envelope.ASPI,
		ASPIChange: envelope.ASPIChange,
		SPSL20:     envelope.SPSL20,
		Turnover:   envelope.Turnover,
		Currency:   "LKR",
		Timestamp:  c.opts.Now().Format("2006-01-02 15:04:05"),
	}, nil
}

func (c *QuoteClient) mockOverview() Overview {
	var rng *rand.Rand
	if c.opts.MockSeed != 0 {
		rng = rand.New(rand.NewSource(c.opts.MockSeed))
	} else {
		rng = rand.New(rand.NewSource(c.opts.Now().UnixNano()))
	}
	aspi := 11000 + rng.Float64()*2000
	return Overview{
		ASPI:       round2(aspi),
		ASPIChange: round2(-50 + rng.Float64()*100),
		SPSL20:     round2(aspi * 0.3),
		Turnover:   round2(1e9 + rng.Float64()*4e9),
		Currency:   "LKR",
		Timestamp:  c.opts.Now().Format("2006-01-02 15:04:05"),
		Source:     "Mock Data (Fallback)",
	}
}
