package viewmodel

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/rickgao/pricewatch/internal/model"
)

// Trend classifies the sign of a 24h change for display styling.
type Trend int

const (
	TrendGain Trend = iota // change >= 0
	TrendLoss
)

func (t Trend) String() string {
	if t == TrendLoss {
		return "loss"
	}
	return "gain"
}

// MarshalText renders the trend as "gain" or "loss".
func (t Trend) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText parses "gain" or "loss".
func (t *Trend) UnmarshalText(text []byte) error {
	switch string(text) {
	case "gain":
		*t = TrendGain
	case "loss":
		*t = TrendLoss
	default:
		return fmt.Errorf("unknown trend %q", text)
	}
	return nil
}

// TrendOf classifies a 24h change. Zero counts as a gain.
func TrendOf(change decimal.Decimal) Trend {
	if change.IsNegative() {
		return TrendLoss
	}
	return TrendGain
}

// Series is one chart line. Only the symbol and price are plotted.
type Series struct {
	Symbol   string          `json:"symbol"`
	PriceUSD decimal.Decimal `json:"priceUsd"`
	Color    Color           `json:"color"`
	Tooltip  string          `json:"tooltip"`
}

// Row is one table row: the full quote plus display fields.
type Row struct {
	model.Quote
	Trend      Trend  `json:"trend"`
	PriceText  string `json:"priceText"`
	ChangeText string `json:"changeText"`
}

// ViewModel is the render-ready projection of one snapshot.
type ViewModel struct {
	Series []Series `json:"series"`
	Table  []Row    `json:"table"`
}

// Build projects quotes into a ViewModel, preserving input order.
func Build(quotes []model.Quote) ViewModel {
	vm := ViewModel{
		Series: make([]Series, len(quotes)),
		Table:  make([]Row, len(quotes)),
	}
	for i, q := range quotes {
		vm.Series[i] = Series{
			Symbol:   q.Symbol,
			PriceUSD: q.PriceUSD,
			Color:    ColorAt(i),
			Tooltip:  FormatTooltip(q.PriceUSD),
		}
		vm.Table[i] = Row{
			Quote:      q,
			Trend:      TrendOf(q.ChangePercent24Hr),
			PriceText:  FormatPrice(q.PriceUSD),
			ChangeText: FormatChange(q.ChangePercent24Hr),
		}
	}
	return vm
}

// FormatPrice renders a table price, e.g. "$64012.3400".
func FormatPrice(d decimal.Decimal) string {
	return "$" + d.StringFixed(4)
}

// FormatChange renders a 24h change, e.g. "-1.25%".
func FormatChange(d decimal.Decimal) string {
	return d.StringFixed(2) + "%"
}

// FormatTooltip renders a chart tooltip price, e.g. "$64012.34".
func FormatTooltip(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}
