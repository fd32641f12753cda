package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rickgao/pricewatch/internal/viewmodel"
)

const (
	labelWidth  = 8
	minBarWidth = 10
)

// renderChart draws one bar per series on a log scale, colored by the series color.
func renderChart(vm viewmodel.ViewModel, width int, dim bool) string {
	if len(vm.Series) == 0 {
		return ""
	}

	barWidth := width - labelWidth - 16
	if barWidth < minBarWidth {
		barWidth = minBarWidth
	}

	maxLog := 0.0
	for _, s := range vm.Series {
		maxLog = math.Max(maxLog, scale(s.PriceUSD.InexactFloat64()))
	}

	var b strings.Builder
	for _, s := range vm.Series {
		n := 0
		if maxLog > 0 {
			n = int(math.Round(scale(s.PriceUSD.InexactFloat64()) / maxLog * float64(barWidth)))
		}
		if n < 1 && s.PriceUSD.IsPositive() {
			n = 1
		}

		style := lipgloss.NewStyle().Foreground(lipgloss.Color(s.Color.Hex))
		if dim {
			style = dimStyle
		}
		fmt.Fprintf(&b, "%-*s %s %s\n",
			labelWidth, s.Symbol,
			style.Render(strings.Repeat("█", n)),
			dimStyle.Render(s.Tooltip),
		)
	}
	return b.String()
}

func scale(price float64) float64 {
	if price <= 0 {
		return 0
	}
	return math.Log10(1 + price)
}

// renderTable draws the quote table in snapshot order.
func renderTable(vm viewmodel.ViewModel, dim bool) string {
	var b strings.Builder

	b.WriteString(colHeader.Render(fmt.Sprintf("%-4s %-20s %-8s %18s %10s", "#", "Name", "Symbol", "Price (USD)", "24h %")))
	b.WriteString("\n")

	for i, row := range vm.Table {
		change := gainStyle
		if row.Trend == viewmodel.TrendLoss {
			change = lossStyle
		}
		symbol, price := symbolStyle, priceStyle
		if dim {
			change, symbol, price = dimStyle, dimStyle, dimStyle
		}

		fmt.Fprintf(&b, "%-4d %-20s %s %s %s\n",
			i+1,
			truncate(row.Name, 20),
			symbol.Render(fmt.Sprintf("%-8s", row.Symbol)),
			price.Render(fmt.Sprintf("%18s", row.PriceText)),
			change.Render(fmt.Sprintf("%10s", row.ChangeText)),
		)
	}
	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
