package journal

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordFill(r FillRecord) error {
	var pnl sql.NullFloat64
	if r.RealizedPnL != nil {
		pnl = sql.NullFloat64{Float64: *r.RealizedPnL, Valid: true}
	}

	_, err := j.db.Exec(`
		INSERT INTO fills
		(order_id, symbol, side, product, kind, quantity, price, status, realized_pnl, time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.OrderID, r.Symbol, r.Side, r.Product, r.Kind,
		r.Quantity, r.Price, r.Status, pnl, r.Time,
	)
	return err
}

func (j *SQLite) RecordEquity(e EquitySnapshot) error {
	_, err := j.db.Exec(`
		INSERT INTO equity
		(time, capital, total_value, invested_value, total_pnl)
		VALUES (?, ?, ?, ?, ?)`,
		e.Time, e.Capital, e.TotalValue, e.InvestedValue, e.TotalPnL,
	)
	return err
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
