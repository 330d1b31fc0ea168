package ledger

// PortfolioStats is derived on demand, never stored.
type PortfolioStats struct {
	TotalValue      float64
	InvestedValue   float64
	DayPnL          float64
	TotalPnL        float64
	AvailableMargin float64
}

// Stats marks the open positions to market. Instruments missing from prices
// fall back to their entry price.
func (b *Book) Stats(prices map[string]float64) PortfolioStats {
	var invested, current float64

	for _, pos := range b.positions {
		price, ok := prices[pos.Symbol]
		if !ok {
			price = pos.AvgPrice
		}

		cost := float64(pos.Quantity) * pos.AvgPrice
		invested += cost

		if pos.Side == Long {
			current += float64(pos.Quantity) * price
		} else {
			pnl := (pos.AvgPrice - price) * float64(pos.Quantity)
			current += cost + pnl
		}
	}

	return PortfolioStats{
		TotalValue:      b.capital + current,
		InvestedValue:   invested,
		DayPnL:          current - invested,
		TotalPnL:        current - invested,
		AvailableMargin: b.capital,
	}
}
