package export

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rovshanmuradov/kmoon-analytics/internal/metrics"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00E5FF"))

	addressStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C7280"))

	tickerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ECEFF4"))

	totalStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#2AFFAA"))
)

// Summary renders the per-token table and totals for console output.
// Addresses are sorted for a stable presentation; the totals themselves are
// computed by the aggregator in configuration order.
func Summary(report *metrics.Report) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("KMOON Ecosystem Analytics Summary"))
	b.WriteString("\n\n")

	addresses := make([]string, 0, len(report.Tokens))
	for addr := range report.Tokens {
		addresses = append(addresses, addr)
	}
	sort.Strings(addresses)

	for _, addr := range addresses {
		entry := report.Tokens[addr]
		ticker := entry.Ticker
		if ticker == "" {
			ticker = "?"
		}
		b.WriteString(fmt.Sprintf("  %s  %s\n",
			tickerStyle.Render(ticker),
			addressStyle.Render(addr)))
		b.WriteString(fmt.Sprintf("      market cap: $%s\n", entry.MarketCap.StringFixed(2)))
		b.WriteString(fmt.Sprintf("      tvl:        $%s\n", entry.TVL.StringFixed(2)))
	}

	if len(addresses) == 0 {
		b.WriteString("  no tokens resolved\n")
	}

	b.WriteString("\n")
	b.WriteString(totalStyle.Render(fmt.Sprintf("Total market cap: $%s", report.Totals.TotalMarketCap.StringFixed(2))))
	b.WriteString("\n")
	b.WriteString(totalStyle.Render(fmt.Sprintf("Total TVL:        $%s", report.Totals.TotalTVL.StringFixed(2))))
	b.WriteString("\n")

	return b.String()
}
