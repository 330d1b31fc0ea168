package journal

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"
)

type CSV struct {
	fills  *csv.Writer
	equity *csv.Writer
	ff, ef *os.File
}

func NewCSV(fillsPath, equityPath string) (*CSV, error) {
	ff, err := os.Create(fillsPath)
	if err != nil {
		return nil, err
	}
	ef, err := os.Create(equityPath)
	if err != nil {
		ff.Close()
		return nil, err
	}

	fw := csv.NewWriter(ff)
	ew := csv.NewWriter(ef)

	if err := fw.Write([]string{"order_id", "symbol", "side", "product", "kind", "quantity", "price", "status", "realized_pnl", "time"}); err != nil {
		return nil, err
	}
	if err := ew.Write([]string{"time", "capital", "total_value", "invested_value", "total_pnl"}); err != nil {
		return nil, err
	}
	fw.Flush()
	ew.Flush()
	if err := fw.Error(); err != nil {
		return nil, err
	}
	if err := ew.Error(); err != nil {
		return nil, err
	}

	return &CSV{fills: fw, equity: ew, ff: ff, ef: ef}, nil
}

func (j *CSV) RecordFill(r FillRecord) error {
	pnl := ""
	if r.RealizedPnL != nil {
		pnl = f(*r.RealizedPnL)
	}
	err := j.fills.Write([]string{
		r.OrderID,
		r.Symbol,
		r.Side,
		r.Product,
		r.Kind,
		strconv.FormatInt(r.Quantity, 10),
		f(r.Price),
		r.Status,
		pnl,
		r.Time.Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	j.fills.Flush()
	return j.fills.Error()
}

func (j *CSV) RecordEquity(e EquitySnapshot) error {
	err := j.equity.Write([]string{
		e.Time.Format(time.RFC3339),
		f(e.Capital),
		f(e.TotalValue),
		f(e.InvestedValue),
		f(e.TotalPnL),
	})
	if err != nil {
		return err
	}
	j.equity.Flush()
	return j.equity.Error()
}

func (j *CSV) Close() error {
	j.fills.Flush()
	if err := j.fills.Error(); err != nil {
		return err
	}
	j.equity.Flush()
	if err := j.equity.Error(); err != nil {
		return err
	}
	if err := j.ff.Close(); err != nil {
		return err
	}
	return j.ef.Close()
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 2, 64)
}
