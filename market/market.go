// Package market provides clients for Colombo Stock Exchange (CSE) data and
// market news search. These are the external collaborators behind the tools
// workers can call.
//
// The CSE endpoints are unauthenticated but picky about request headers; the
// clients send a browser-like header set. When the live endpoint is
// unreachable or returns unusable data the clients fall back to generated
// mock data so the orchestration layer stays demonstrable offline.
package market

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"io"
	"math"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://www.cse.lk"
	quotePath      = "/api/companyInfoSummery"
	defaultTimeout = 5 * time.Second
)

// Quote is a point-in-time price snapshot for a single listed security.
type Quote struct {
	Symbol        string  `json:"symbol"`
	Price         float64 `json:"price"`
	ChangeAmount  float64 `json:"change_amount"`
	ChangePercent float64 `json:"change_percent"`
	Currency      string  `json:"currency"`
	MarketStatus  string  `json:"market_status"`
	Timestamp     string  `json:"timestamp"`
	Source        string  `json:"source,omitempty"`
}

// QuoteClientOptions configure a QuoteClient.
type QuoteClientOptions struct {
	// BaseURL of the exchange API. Override in tests.
	BaseURL string
	// HTTPClient used for requests. Defaults to a client with a 5s timeout.
	HTTPClient *http.Client
	// MockSeed, when non-zero, makes mock fallback quotes deterministic per
	// symbol. Zero seeds from the clock.
	MockSeed int64
	// Now supplies timestamps. Override in tests.
	Now func() time.Time
}

// QuoteClient fetches price snapshots from the CSE company info endpoint.
type QuoteClient struct {
	opts QuoteClientOptions
}

// NewQuoteClient creates a quote client with the given options applied.
func NewQuoteClient(optFns ...func(o *QuoteClientOptions)) *QuoteClient {
	opts := QuoteClientOptions{
		BaseURL:    defaultBaseURL,
		HTTPClient: &http.Client{Timeout: defaultTimeout},
		Now:        time.Now,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &QuoteClient{opts: opts}
}

// NormalizeSymbol upper-cases a ticker and appends the CSE ordinary share
// suffix when no board suffix is present. "jkh" becomes "JKH.N0000".
func NormalizeSymbol(ticker string) string {
	symbol := strings.ToUpper(strings.TrimSpace(ticker))
	if strings.Contains(symbol, ".") {
		return symbol
	}
	return symbol + ".N0000"
}

// symbolInfo mirrors the relevant slice of the CSE response payload.
type symbolInfo struct {
	LastTradedPrice  float64 `json:"lastTradedPrice"`
	Change           float64 `json:"change"`
	ChangePercentage float64 `json:"changePercentage"`
}

type quoteEnvelope struct {
	ReqSymbolInfo *symbolInfo `json:"reqSymbolInfo"`
}

// Quote fetches the latest snapshot for a ticker. Any transport, status or
// decode failure switches to a mock quote instead of returning an error; the
// Source field tells the two apart.
func (c *QuoteClient) Quote(ctx context.Context, ticker string) Quote {
	symbol := NormalizeSymbol(ticker)

	info, err := c.fetchSymbolInfo(ctx, symbol)
	if err != nil {
		return c.mockQuote(ticker)
	}

	return Quote{
		Symbol:        symbol,
		Price:         info.LastTradedPrice,
		ChangeAmount:  info.Change,
		ChangePercent: info.ChangePercentage,
		Currency:      "LKR",
		MarketStatus:  "Active (CSE Direct)",
		Timestamp:     c.opts.Now().Format("2006-01-02 15:04:05"),
	}
}

func (c *QuoteClient) fetchSymbolInfo(ctx context.Context, symbol string) (*symbolInfo, error) {
	form := url.Values{"symbol": {symbol}}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.opts.BaseURL+quotePath,
		strings.NewReader(form.Encode()),
	)
	if err != nil {
		return nil, fmt.Errorf("build quote request: %w", err)
	}
	setBrowserHeaders(req)

	resp, err := c.opts.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("quote request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("quote request: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read quote response: %w", err)
	}

	var envelope quoteEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode quote response: %w", err)
	}
	if envelope.ReqSymbolInfo == nil {
		return nil, fmt.Errorf("symbol data empty")
	}
	return envelope.ReqSymbolInfo, nil
}

// mockQuote generates a plausible fallback snapshot. With a non-zero MockSeed
// the same ticker always yields the same quote.
func (c *QuoteClient) mockQuote(ticker string) Quote {
	rng := c.rng(ticker)
	price := 50 + rng.Float64()*150
	change := -5 + rng.Float64()*10
	pct := 0.0
	if price != 0 {
		pct = change / price * 100
	}
	return Quote{
		Symbol:        strings.ToUpper(strings.TrimSpace(ticker)),
		Price:         round2(price),
		ChangeAmount:  round2(change),
		ChangePercent: round2(pct),
		Currency:      "LKR",
		MarketStatus:  "Unknown (Fallback)",
		Timestamp:     c.opts.Now().Format("2006-01-02 15:04:05"),
		Source:        "Mock Data (Fallback)",
	}
}

func (c *QuoteClient) rng(ticker string) *rand.Rand {
	if c.opts.MockSeed == 0 {
		return rand.New(rand.NewSource(c.opts.Now().UnixNano()))
	}
	h := fnv.New64a()
	h.Write([]byte(strings.ToUpper(strings.TrimSpace(ticker))))
	return rand.New(rand.NewSource(c.opts.MockSeed ^ int64(h.Sum64())))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func setBrowserHeaders(req *http.Request) {
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	req.Header.Set("Referer", "https://www.cse.lk/")
	req.Header.Set("Origin", "https://www.cse.lk")
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=UTF-8")
}
