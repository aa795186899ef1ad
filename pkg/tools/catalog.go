package tools

// DefaultCatalog is the built-in set of financial-data and calendar
// lookups the assistant may call. Each entry is pure data; the generic
// executor in Registry handles all of them.
func DefaultCatalog() []Definition {
	symbol := String("Ticker symbol, for example AAPL")
	limit := Integer("Maximum number of rows to return")
	period := String("Reporting period", "annual", "quarter")

	return []Definition{
		{
			Name:        "stock_quote",
			Description: "Latest price quote for a stock symbol.",
			Parameters:  Object(map[string]any{"symbol": symbol}, "symbol"),
			Endpoint:    "/tools/stock_quote",
		},
		{
			Name:        "company_profile",
			Description: "Company profile and key facts for a symbol.",
			Parameters:  Object(map[string]any{"symbol": symbol}, "symbol"),
			Endpoint:    "/tools/company_profile",
		},
		{
			Name:        "income_statement",
			Description: "Income statements for a symbol.",
			Parameters:  Object(map[string]any{"symbol": symbol, "period": period, "limit": limit}, "symbol"),
			Endpoint:    "/tools/income_statement",
			Defaults:    map[string]any{"period": "annual", "limit": 4},
		},
		{
			Name:        "balance_sheet",
			Description: "Balance sheet statements for a symbol.",
			Parameters:  Object(map[string]any{"symbol": symbol, "period": period, "limit": limit}, "symbol"),
			Endpoint:    "/tools/balance_sheet",
			Defaults:    map[string]any{"period": "annual", "limit": 4},
		},
		{
			Name:        "cash_flow_statement",
			Description: "Cash flow statements for a symbol.",
			Parameters:  Object(map[string]any{"symbol": symbol, "period": period, "limit": limit}, "symbol"),
			Endpoint:    "/tools/cash_flow_statement",
			Defaults:    map[string]any{"period": "annual", "limit": 4},
		},
		{
			Name:        "key_metrics",
			Description: "Key financial metrics for a symbol.",
			Parameters:  Object(map[string]any{"symbol": symbol, "period": period}, "symbol"),
			Endpoint:    "/tools/key_metrics",
			Defaults:    map[string]any{"period": "annual"},
		},
		{
			Name:        "financial_ratios",
			Description: "Financial ratios for a symbol.",
			Parameters:  Object(map[string]any{"symbol": symbol, "period": period}, "symbol"),
			Endpoint:    "/tools/financial_ratios",
			Defaults:    map[string]any{"period": "annual"},
		},
		{
			Name:        "historical_prices",
			Description: "Historical daily prices for a symbol.",
			Parameters: Object(map[string]any{
				"symbol": symbol,
				"from":   String("Start date, YYYY-MM-DD"),
				"to":     String("End date, YYYY-MM-DD"),
			}, "symbol"),
			Endpoint: "/tools/historical_prices",
		},
		{
			Name:        "symbol_search",
			Description: "Search for symbols by company name.",
			Parameters:  Object(map[string]any{"query": String("Company name or partial symbol"), "limit": limit}, "query"),
			Endpoint:    "/tools/symbol_search",
			Defaults:    map[string]any{"limit": 10},
		},
		{
			Name:        "stock_news",
			Description: "Recent news articles for a symbol.",
			Parameters:  Object(map[string]any{"symbol": symbol, "limit": limit}, "symbol"),
			Endpoint:    "/tools/stock_news",
			Defaults:    map[string]any{"limit": 10},
		},
		{
			Name:        "market_movers",
			Description: "Top gaining and losing stocks of the session.",
			Parameters:  Object(map[string]any{"direction": String("Which movers to return", "gainers", "losers", "actives")}),
			Endpoint:    "/tools/market_movers",
			Defaults:    map[string]any{"direction": "gainers"},
		},
		{
			Name:        "sector_performance",
			Description: "Per-sector performance for the current session.",
			Parameters:  Object(map[string]any{}),
			Endpoint:    "/tools/sector_performance",
		},
		{
			Name:        "analyst_ratings",
			Description: "Analyst recommendations for a symbol.",
			Parameters:  Object(map[string]any{"symbol": symbol, "limit": limit}, "symbol"),
			Endpoint:    "/tools/analyst_ratings",
			Defaults:    map[string]any{"limit": 10},
		},
		{
			Name:        "price_target",
			Description: "Analyst price targets for a symbol.",
			Parameters:  Object(map[string]any{"symbol": symbol}, "symbol"),
			Endpoint:    "/tools/price_target",
		},
		{
			Name:        "insider_trades",
			Description: "Recent insider transactions for a symbol.",
			Parameters:  Object(map[string]any{"symbol": symbol, "limit": limit}, "symbol"),
			Endpoint:    "/tools/insider_trades",
			Defaults:    map[string]any{"limit": 20},
		},
		{
			Name:        "earnings_calendar",
			Description: "Upcoming earnings announcements.",
			Parameters: Object(map[string]any{
				"from": String("Start date, YYYY-MM-DD"),
				"to":   String("End date, YYYY-MM-DD"),
			}),
			Endpoint: "/tools/earnings_calendar",
		},
		{
			Name:        "dividends_calendar",
			Description: "Upcoming dividend dates.",
			Parameters: Object(map[string]any{
				"from": String("Start date, YYYY-MM-DD"),
				"to":   String("End date, YYYY-MM-DD"),
			}),
			Endpoint: "/tools/dividends_calendar",
		},
		{
			Name:        "ipo_calendar",
			Description: "Upcoming initial public offerings.",
			Parameters: Object(map[string]any{
				"from": String("Start date, YYYY-MM-DD"),
				"to":   String("End date, YYYY-MM-DD"),
			}),
			Endpoint: "/tools/ipo_calendar",
		},
		{
			Name:        "economic_calendar",
			Description: "Upcoming economic data releases.",
			Parameters: Object(map[string]any{
				"from": String("Start date, YYYY-MM-DD"),
				"to":   String("End date, YYYY-MM-DD"),
			}),
			Endpoint: "/tools/economic_calendar",
		},
		{
			Name:        "crypto_quote",
			Description: "Latest quote for a cryptocurrency pair.",
			Parameters:  Object(map[string]any{"symbol": String("Pair symbol, for example BTCUSD")}, "symbol"),
			Endpoint:    "/tools/crypto_quote",
		},
		{
			Name:        "forex_quote",
			Description: "Latest quote for a currency pair.",
			Parameters:  Object(map[string]any{"symbol": String("Pair symbol, for example EURUSD")}, "symbol"),
			Endpoint:    "/tools/forex_quote",
		},
	}
}
