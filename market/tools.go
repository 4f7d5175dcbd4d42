package market

import (
	"encoding/json"
	"fmt"

	"github.com/senarath/smartscout/core"
	"github.com/senarath/smartscout/tool"
)

// GetStockPriceArgs are the arguments for the get_stock_price tool.
type GetStockPriceArgs struct {
	Ticker string `json:"ticker" description:"CSE ticker symbol, e.g. JKH or LOLC"`
}

// NewGetStockPriceTool exposes QuoteClient.Quote as a callable tool.
func NewGetStockPriceTool(client *QuoteClient) tool.Tool {
	return tool.NewFunctionToolFromStruct(
		"get_stock_price",
		"Get the latest traded price, change and change percentage for a Colombo Stock Exchange listed company.",
		GetStockPriceArgs{},
		func(toolCtx *core.ToolContext, args map[string]any) (any, error) {
			ticker, _ := args["ticker"].(string)
			quote := client.Quote(toolCtx.Context(), ticker)
			return marshalResult(quote)
		},
	)
}

// SearchMarketNewsArgs are the arguments for the search_market_news tool.
type SearchMarketNewsArgs struct {
	Query string `json:"query" description:"Company name, ticker or topic to search news for"`
}

// NewSearchMarketNewsTool exposes NewsClient.Search as a callable tool.
func NewSearchMarketNewsTool(client *NewsClient) tool.Tool {
	return tool.NewFunctionToolFromStruct(
		"search_market_news",
		"Search recent news about Sri Lankan listed companies and the Colombo stock market.",
		SearchMarketNewsArgs{},
		func(toolCtx *core.ToolContext, args map[string]any) (any, error) {
			query, _ := args["query"].(string)
			return client.Search(toolCtx.Context(), query)
		},
	)
}

// NewMarketOverviewTool exposes QuoteClient.Overview as a callable tool.
// It takes no arguments.
func NewMarketOverviewTool(client *QuoteClient) tool.Tool {
	return tool.NewFunctionTool(
		"get_market_overview",
		"Get an exchange-wide snapshot of the Colombo Stock Exchange: ASPI, S&P SL20 and turnover.",
		map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		},
		func(toolCtx *core.ToolContext, args map[string]any) (any, error) {
			return marshalResult(client.Overview(toolCtx.Context()))
		},
	)
}

// GetIndicatorsArgs are the arguments for the get_technical_indicators tool.
type GetIndicatorsArgs struct {
	Ticker string `json:"ticker" description:"CSE ticker symbol to compute indicators for"`
}

// NewIndicatorsTool exposes QuoteClient.Indicators as a callable tool.
func NewIndicatorsTool(client *QuoteClient) tool.Tool {
	return tool.NewFunctionToolFromStruct(
		"get_technical_indicators",
		"Compute RSI-14 and SMA-20 technical indicators for a Colombo Stock Exchange listed company.",
		GetIndicatorsArgs{},
		func(toolCtx *core.ToolContext, args map[string]any) (any, error) {
			ticker, _ := args["ticker"].(string)
			ind, err := client.Indicators(toolCtx.Context(), ticker)
			if err != nil {
				return nil, err
			}
			return marshalResult(ind)
		},
	)
}

func marshalResult(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode result: %w", err)
	}
	return string(data), nil
}
