package metrics

import "github.com/shopspring/decimal"

// TokenEntry is the per-token slice of the final report.
type TokenEntry struct {
	Ticker    string          `json:"ticker"`
	MarketCap decimal.Decimal `json:"market_cap"`
	TVL       decimal.Decimal `json:"tvl"`
}

// Totals accumulates USD sums over all tokens that resolved successfully.
type Totals struct {
	TotalMarketCap decimal.Decimal `json:"total_market_cap"`
	TotalTVL       decimal.Decimal `json:"total_tvl"`
}

// Report is the terminal output of one aggregation pass. Failed tokens are
// absent from Tokens and contribute nothing to Totals.
type Report struct {
	Tokens map[string]TokenEntry `json:"tokens"`
	Totals Totals                `json:"totals"`
}

// NewReport returns an empty report with zeroed totals.
func NewReport() *Report {
	return &Report{
		Tokens: make(map[string]TokenEntry),
		Totals: Totals{
			TotalMarketCap: decimal.Zero,
			TotalTVL:       decimal.Zero,
		},
	}
}

// Add records a successful metric under address and folds it into the totals.
func (r *Report) Add(address string, m NormalizedMetric) {
	marketCap := m.MarketCap()
	r.Tokens[address] = TokenEntry{
		Ticker:    m.Ticker,
		MarketCap: marketCap,
		TVL:       m.TVLUSD,
	}
	r.Totals.TotalMarketCap = r.Totals.TotalMarketCap.Add(marketCap)
	r.Totals.TotalTVL = r.Totals.TotalTVL.Add(m.TVLUSD)
}
