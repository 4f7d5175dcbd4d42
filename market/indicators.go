package market

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand"
	"strings"
)

const (
	rsiPeriod = 14
	smaPeriod = 20
	// History depth for the synthesized price series. Must cover both
	// indicator windows with room for RSI smoothing.
	seriesLen = 30
)

// Indicators are simple technicals for one security: a 14-period relative
// strength index and a 20-period simple moving average.
type Indicators struct {
	Symbol string  `json:"symbol"`
	RSI14  float64 `json:"rsi_14"`
	SMA20  float64 `json:"sma_20"`
	Price  float64 `json:"price"`
	Source string  `json:"source"`
}

// Indicators computes technicals for a ticker. CSE exposes no free
// historical series, so the inputs are a synthetic daily walk anchored at the
// current quote; with a seeded client the walk is reproducible.
func (c *QuoteClient) Indicators(ctx context.Context, ticker string) (Indicators, error) {
	if err := ctx.Err(); err != nil {
		return Indicators{}, err
	}

	quote := c.Quote(ctx, ticker)
	if quote.Price <= 0 {
		return Indicators{}, fmt.Errorf("no price available for %q", ticker)
	}

	series := c.priceSeries(ticker, quote.Price)

	return Indicators{
		Symbol: quote.Symbol,
		RSI14:  round2(rsi(series, rsiPeriod)),
		SMA20:  round2(sma(series, smaPeriod)),
		Price:  quote.Price,
		Source: "Synthetic series anchored at last traded price",
	}, nil
}

// priceSeries walks backwards from the anchor price with daily moves of up to
// ±2%, then reverses so the series ends at the anchor.
func (c *QuoteClient) priceSeries(ticker string, anchor float64) []float64 {
	var rng *rand.Rand
	if c.opts.MockSeed != 0 {
		h := fnv.New64a()
		h.Write([]byte("series:" + strings.ToUpper(strings.TrimSpace(ticker))))
		rng = rand.New(rand.NewSource(c.opts.MockSeed ^ int64(h.Sum64())))
	} else {
		rng = rand.New(rand.NewSource(c.opts.Now().UnixNano()))
	}

	series := make([]float64, seriesLen)
	series[seriesLen-1] = anchor
	for i := seriesLen - 2; i >= 0; i-- {
		move := 1 + (rng.Float64()-0.5)*0.04
		series[i] = series[i+1] / move
	}
	return series
}

// sma returns the simple moving average of the last period values.
func sma(series []float64, period int) float64 {
	if len(series) < period {
		period = len(series)
	}
	if period == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range series[len(series)-period:] {
		sum += v
	}
	return sum / float64(period)
}

// rsi returns Wilder's relative strength index over the last period changes.
func rsi(series []float64, period int) float64 {
	if len(series) < period+1 {
		return 50
	}
	var gains, losses float64
	start := len(series) - period
	for i := start; i < len(series); i++ {
		delta := series[i] - series[i-1]
		if delta > 0 {
			gains += delta
		} else {
			losses -= delta
		}
	}
	if losses == 0 {
		return 100
	}
	rs := (gains / float64(period)) / (losses / float64(period))
	return 100 - 100/(1+rs)
}
