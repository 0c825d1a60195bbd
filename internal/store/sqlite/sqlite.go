// Package sqlite keeps cash flows in a SQLite database. The default DSN is an
// in-memory database, so records still live only as long as the process.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"cashflow/internal/core"
	"cashflow/internal/store"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

// MemoryDSN opens a private in-memory database.
const MemoryDSN = ":memory:"

var _ store.Repository = (*Store)(nil)

type Store struct {
	db *sql.DB
}

// New opens dsn and applies the schema. A single connection is used so that
// an in-memory database is shared by every query.
func New(dsn string) (*Store, error) {
	if dsn == "" {
		dsn = MemoryDSN
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

const selectColumns = `SELECT id, type, source, label, amount, description, created_at, updated_at FROM cash_flows`

func (s *Store) GetAll(ctx context.Context) ([]core.CashFlow, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+` ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("query cash flows: %w", err)
	}
	defer rows.Close()

	out := make([]core.CashFlow, 0)
	for rows.Next() {
		c, err := scanCashFlow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cash flows: %w", err)
	}
	return out, nil
}

func (s *Store) FindByID(ctx context.Context, id string) (core.CashFlow, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id)
	c, err := scanCashFlow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.CashFlow{}, core.ErrNotFound
	}
	return c, err
}

func (s *Store) Add(ctx context.Context, c core.CashFlow) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO cash_flows (id, type, source, label, amount, description, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Type, c.Source, c.Label, c.Amount.String(), c.Description, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert cash flow %s: %w", c.ID, err)
	}
	return nil
}

func (s *Store) Update(ctx context.Context, id string, c core.CashFlow) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE cash_flows
		 SET id = ?, type = ?, source = ?, label = ?, amount = ?, description = ?, created_at = ?, updated_at = ?
		 WHERE id = ?`,
		c.ID, c.Type, c.Source, c.Label, c.Amount.String(), c.Description, c.CreatedAt, c.UpdatedAt, id)
	if err != nil {
		return fmt.Errorf("update cash flow %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update cash flow %s: %w", id, err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (s *Store) RemoveByID(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM cash_flows WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete cash flow %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete cash flow %s: %w", id, err)
	}
	return n > 0, nil
}

func (s *Store) Clear(ctx context.Context) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM cash_flows`)
	if err != nil {
		return fmt.Errorf("clear cash flows: %w", err)
	}
	n, _ := res.RowsAffected()
	slog.DebugContext(ctx, "Cash flows cleared", "component", "storage", "rows", n)
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCashFlow(row scanner) (core.CashFlow, error) {
	var (
		c      core.CashFlow
		amount string
	)
	if err := row.Scan(&c.ID, &c.Type, &c.Source, &c.Label, &amount, &c.Description, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.CashFlow{}, err
		}
		return core.CashFlow{}, fmt.Errorf("scan cash flow: %w", err)
	}
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return core.CashFlow{}, fmt.Errorf("parse amount %q of %s: %w", amount, c.ID, err)
	}
	c.Amount = d
	return c, nil
}
