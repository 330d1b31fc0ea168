package journal

import (
	"database/sql"
	"fmt"
	"time"
)

// GetFill returns a single fill record by order ID.
func (j *SQLite) GetFill(orderID string) (FillRecord, error) {
	row := j.db.QueryRow(`
		SELECT order_id, symbol, side, product, kind, quantity, price, status, realized_pnl, time
		FROM fills
		WHERE order_id = ?`, orderID)

	rec, err := scanFill(row)
	if err == sql.ErrNoRows {
		return FillRecord{}, fmt.Errorf("fill %q not found", orderID)
	}
	return rec, err
}

// ListFills returns all fills ordered by time ascending.
func (j *SQLite) ListFills() ([]FillRecord, error) {
	rows, err := j.db.Query(`
		SELECT order_id, symbol, side, product, kind, quantity, price, status, realized_pnl, time
		FROM fills
		ORDER BY time ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []FillRecord
	for rows.Next() {
		rec, err := scanFill(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// ListFillsBetween returns fills with time in [start, end).
func (j *SQLite) ListFillsBetween(start, end time.Time) ([]FillRecord, error) {
	rows, err := j.db.Query(`
		SELECT order_id, symbol, side, product, kind, quantity, price, status, realized_pnl, time
		FROM fills
		WHERE time >= ? AND time < ?
		ORDER BY time ASC`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []FillRecord
	for rows.Next() {
		rec, err := scanFill(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanFill(s scanner) (FillRecord, error) {
	var rec FillRecord
	var pnl sql.NullFloat64

	err := s.Scan(
		&rec.OrderID,
		&rec.Symbol,
		&rec.Side,
		&rec.Product,
		&rec.Kind,
		&rec.Quantity,
		&rec.Price,
		&rec.Status,
		&pnl,
		&rec.Time,
	)
	if err != nil {
		return FillRecord{}, err
	}
	if pnl.Valid {
		v := pnl.Float64
		rec.RealizedPnL = &v
	}
	return rec, nil
}
