package market

import "math/rand"

// Catalog returns the default NSE instrument universe. Prices are starting
// values; each instrument's history window is seeded by the feed.
func Catalog() []Instrument {
	return []Instrument{
		{Symbol: "NIFTY 50", Name: "Nifty 50 Index", Price: 22450.00, Volume: 15000000, Kind: Index, Sector: "Indices"},
		{Symbol: "BANKNIFTY", Name: "Nifty Bank", Price: 47800.00, Volume: 8000000, Kind: Index, Sector: "Indices"},

		{Symbol: "RELIANCE", Name: "Reliance Industries", Price: 2980.50, Volume: 250000, Kind: Equity, Sector: "Energy"},
		{Symbol: "HDFCBANK", Name: "HDFC Bank Ltd", Price: 1450.00, Volume: 450000, Kind: Equity, Sector: "Banking"},
		{Symbol: "INFY", Name: "Infosys Ltd", Price: 1620.00, Volume: 120000, Kind: Equity, Sector: "Technology"},
		{Symbol: "TCS", Name: "Tata Consultancy Svcs", Price: 3950.00, Volume: 320000, Kind: Equity, Sector: "Technology"},
		{Symbol: "ITC", Name: "ITC Limited", Price: 435.00, Volume: 800000, Kind: Equity, Sector: "FMCG"},
		{Symbol: "LT", Name: "Larsen & Toubro", Price: 3600.00, Volume: 150000, Kind: Equity, Sector: "Construction"},

		{Symbol: "SBIN", Name: "State Bank of India", Price: 760.00, Volume: 600000, Kind: Equity, Sector: "Banking"},
		{Symbol: "ICICIBANK", Name: "ICICI Bank Ltd", Price: 1080.00, Volume: 400000, Kind: Equity, Sector: "Banking"},
		{Symbol: "AXISBANK", Name: "Axis Bank Ltd", Price: 1050.00, Volume: 300000, Kind: Equity, Sector: "Banking"},
		{Symbol: "BAJFINANCE", Name: "Bajaj Finance", Price: 6800.00, Volume: 50000, Kind: Equity, Sector: "Finance"},

		{Symbol: "TATAMOTORS", Name: "Tata Motors Ltd", Price: 980.00, Volume: 1200000, Kind: Equity, Sector: "Auto"},
		{Symbol: "M&M", Name: "Mahindra & Mahindra", Price: 1850.00, Volume: 180000, Kind: Equity, Sector: "Auto"},
		{Symbol: "MARUTI", Name: "Maruti Suzuki", Price: 11500.00, Volume: 20000, Kind: Equity, Sector: "Auto"},

		{Symbol: "TATASTEEL", Name: "Tata Steel Ltd", Price: 155.00, Volume: 850000, Kind: Equity, Sector: "Metals"},
		{Symbol: "ADANIENT", Name: "Adani Enterprises", Price: 3100.00, Volume: 950000, Kind: Equity, Sector: "Diversified"},
		{Symbol: "ONGC", Name: "ONGC", Price: 270.00, Volume: 600000, Kind: Equity, Sector: "Energy"},

		{Symbol: "SUNPHARMA", Name: "Sun Pharma", Price: 1550.00, Volume: 100000, Kind: Equity, Sector: "Pharma"},
		{Symbol: "CIPLA", Name: "Cipla Ltd", Price: 1400.00, Volume: 90000, Kind: Equity, Sector: "Pharma"},

		{Symbol: "ZOMATO", Name: "Zomato Ltd", Price: 180.00, Volume: 2500000, Kind: Equity, Sector: "Technology"},
		{Symbol: "PAYTM", Name: "Paytm", Price: 420.00, Volume: 1500000, Kind: Equity, Sector: "Finance"},

		{Symbol: "MRF", Name: "MRF Ltd", Price: 135000.00, Volume: 1000, Kind: Equity, Sector: "Auto"},
	}
}

// seedHistory builds an initial price window ending near base by walking a
// bounded random path, so the rolling-window baseline is populated from the
// first tick.
func seedHistory(rng *rand.Rand, base float64, points int) []float64 {
	hist := make([]float64, 0, points)
	current := base
	for i := 0; i < points; i++ {
		delta := (rng.Float64() - 0.5) * (base * 0.02)
		current += delta
		hist = append(hist, current)
	}
	return hist
}
