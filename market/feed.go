package market

import (
	"math/rand"
	"sort"
	"strings"
	"sync"
)

const (
	// DefaultVolatility bounds the per-tick random walk: the delta drawn for
	// an instrument lies in [-price*v, +price*v].
	DefaultVolatility = 0.002

	// DefaultWindow is the length of the rolling price-history window.
	DefaultWindow = 50
)

// Feed advances every tracked instrument by a bounded random walk on each
// Tick. The random source is injected so tests can replay deterministic
// paths.
type Feed struct {
	mu         sync.RWMutex
	rng        *rand.Rand
	volatility float64
	order      []string
	bySymbol   map[string]*Instrument
}

// NewFeed builds a feed over the given instruments. Instruments without a
// seeded history get a window of length DefaultWindow generated from rng.
func NewFeed(instruments []Instrument, rng *rand.Rand, volatility float64) *Feed {
	if volatility <= 0 {
		volatility = DefaultVolatility
	}

	order, bySymbol := indexInstruments(instruments, rng)
	return &Feed{
		rng:        rng,
		volatility: volatility,
		order:      order,
		bySymbol:   bySymbol,
	}
}

// SeedHistories pre-fills each instrument's rolling window at the given
// length. NewFeed leaves seeded histories alone, so this is how callers pick
// a window other than DefaultWindow.
func SeedHistories(instruments []Instrument, rng *rand.Rand, window int) []Instrument {
	if window < 2 {
		window = DefaultWindow
	}
	out := make([]Instrument, len(instruments))
	for i, in := range instruments {
		if len(in.History) == 0 {
			in.History = seedHistory(rng, in.Price, window)
		}
		out[i] = in
	}
	return out
}

func indexInstruments(instruments []Instrument, rng *rand.Rand) (order []string, bySymbol map[string]*Instrument) {
	bySymbol = make(map[string]*Instrument, len(instruments))
	for i := range instruments {
		in := instruments[i]
		if len(in.History) == 0 {
			in.History = seedHistory(rng, in.Price, DefaultWindow)
		}
		base := in.History[0]
		in.Change = in.Price - base
		if base != 0 {
			in.ChangePercent = (in.Price - base) / base * 100
		}
		order = append(order, in.Symbol)
		bySymbol[in.Symbol] = &in
	}
	return order, bySymbol
}

// Tick advances every instrument by one step and returns the new prices keyed
// by symbol. The returned map is a snapshot; later ticks do not mutate it.
func (f *Feed) Tick() map[string]float64 {
	f.mu.Lock()
	defer f.mu.Unlock()

	prices := make(map[string]float64, len(f.bySymbol))
	for _, sym := range f.order {
		in := f.bySymbol[sym]

		delta := (f.rng.Float64() - 0.5) * 2 * (in.Price * f.volatility)
		newPrice := in.Price + delta

		// Slide the window: drop oldest, append newest. The change baseline
		// is the oldest value still in the window.
		in.History = append(in.History[1:], newPrice)
		base := in.History[0]

		in.Price = newPrice
		in.Change = newPrice - base
		if base != 0 {
			in.ChangePercent = (newPrice - base) / base * 100
		}

		prices[sym] = newPrice
	}
	return prices
}

// Get returns a copy of one instrument.
func (f *Feed) Get(symbol string) (Instrument, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	in, ok := f.bySymbol[symbol]
	if !ok {
		return Instrument{}, false
	}
	return copyInstrument(in), true
}

// Price returns the latest price for symbol.
func (f *Feed) Price(symbol string) (float64, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	in, ok := f.bySymbol[symbol]
	if !ok {
		return 0, false
	}
	return in.Price, true
}

// Snapshot returns copies of all instruments in listing order.
func (f *Feed) Snapshot() []Instrument {
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := make([]Instrument, 0, len(f.order))
	for _, sym := range f.order {
		out = append(out, copyInstrument(f.bySymbol[sym]))
	}
	return out
}

// Gainers returns instruments with positive window change, best first.
func (f *Feed) Gainers() []Instrument {
	snap := f.Snapshot()
	out := snap[:0]
	for _, in := range snap {
		if in.ChangePercent > 0 {
			out = append(out, in)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ChangePercent > out[j].ChangePercent })
	return out
}

// Losers returns instruments with negative window change, worst first.
func (f *Feed) Losers() []Instrument {
	snap := f.Snapshot()
	out := snap[:0]
	for _, in := range snap {
		if in.ChangePercent < 0 {
			out = append(out, in)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ChangePercent < out[j].ChangePercent })
	return out
}

// Search filters instruments by symbol/name substring, kind and sector.
// Empty kind or sector matches everything.
func (f *Feed) Search(query string, kind Kind, sector string) []Instrument {
	q := strings.ToLower(query)

	var out []Instrument
	for _, in := range f.Snapshot() {
		if q != "" &&
			!strings.Contains(strings.ToLower(in.Symbol), q) &&
			!strings.Contains(strings.ToLower(in.Name), q) {
			continue
		}
		if kind != "" && in.Kind != kind {
			continue
		}
		if sector != "" && in.Sector != sector {
			continue
		}
		out = append(out, in)
	}
	return out
}

// Sectors lists the distinct sectors in listing order.
func (f *Feed) Sectors() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	seen := make(map[string]bool)
	var out []string
	for _, sym := range f.order {
		sec := f.bySymbol[sym].Sector
		if sec != "" && !seen[sec] {
			seen[sec] = true
			out = append(out, sec)
		}
	}
	return out
}

func copyInstrument(in *Instrument) Instrument {
	out := *in
	out.History = append([]float64(nil), in.History...)
	return out
}
