package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"github.com/devjuank/FinanceService/internal/logging"
	"github.com/devjuank/FinanceService/internal/models"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// ErrSnapshotNotFound is returned when a run has no stored snapshot.
var ErrSnapshotNotFound = errors.New("snapshot not found")

const runTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Run describes one stored ledger snapshot.
type Run struct {
	ID               string
	CreatedAt        time.Time
	TransactionCount int
}

// SnapshotStore keeps every persisted ledger in a SQLite database, one run
// per write, in ledger order.
type SnapshotStore struct {
	db     *sql.DB
	logger logging.Logger
}

// OpenSnapshotStore opens (or creates) the database at path and applies
// pending migrations.
func OpenSnapshotStore(path string, logger logging.Logger) (*SnapshotStore, error) {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}

	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(5000)&_pragma=foreign_keys(on)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database at %s: %w", path, err)
	}
	// a single connection avoids SQLITE_BUSY between writers
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &SnapshotStore{db: db, logger: logger.WithField(logging.FieldOutputFile, path)}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SnapshotStore) migrate() error {
	source, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return fmt.Errorf("could not read embedded migrations: %w", err)
	}
	driver, err := sqlite.WithInstance(s.db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("could not create sqlite migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("migration instance creation failed: %w", err)
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			s.logger.Debug("No new database migrations to apply")
			return nil
		}
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	s.logger.Debug("Database migrations applied")
	return nil
}

// Close releases the database.
func (s *SnapshotStore) Close() error {
	return s.db.Close()
}

// SaveSnapshot stores transactions under runID in one database transaction.
func (s *SnapshotStore) SaveSnapshot(ctx context.Context, runID string, transactions []models.Transaction) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin snapshot: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, created_at, transaction_count) VALUES (?, ?, ?)`,
		runID, time.Now().UTC().Format(runTimeLayout), len(transactions)); err != nil {
		return fmt.Errorf("insert run %s: %w", runID, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO transactions (
			run_id, position, id, source, account, date, amount, currency,
			description, direction, merchant, category, subcategory, balance,
			is_transfer, is_fee, is_tax, neutralized
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, t := range transactions {
		var balance *string
		if t.Balance != nil {
			b := t.Balance.StringFixed(2)
			balance = &b
		}
		if _, err := stmt.ExecContext(ctx,
			runID, i, t.ID, t.Source, t.Account, t.Date.String(), t.Amount.StringFixed(2), t.Currency,
			t.Description, t.Direction.String(), t.Merchant, t.Category, t.Subcategory, balance,
			t.IsTransfer, t.IsFee, t.IsTax, t.Neutralized); err != nil {
			return fmt.Errorf("insert transaction %s: %w", t.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}
	s.logger.Info("Saved ledger snapshot",
		logging.F(logging.FieldRunID, runID),
		logging.F(logging.FieldCount, len(transactions)))
	return nil
}

// LoadSnapshot returns the transactions stored under runID in ledger order.
func (s *SnapshotStore) LoadSnapshot(ctx context.Context, runID string) ([]models.Transaction, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT transaction_count FROM runs WHERE id = ?`, runID).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", runID, ErrSnapshotNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query run %s: %w", runID, err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source, account, date, amount, currency, description, direction,
		       merchant, category, subcategory, balance,
		       is_transfer, is_fee, is_tax, neutralized
		FROM transactions
		WHERE run_id = ?
		ORDER BY position ASC`, runID)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	transactions := make([]models.Transaction, 0, count)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}

// LatestRun returns the most recently stored run.
func (s *SnapshotStore) LatestRun(ctx context.Context) (Run, error) {
	var (
		run       Run
		createdAt string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, created_at, transaction_count FROM runs ORDER BY rowid DESC LIMIT 1`).
		Scan(&run.ID, &createdAt, &run.TransactionCount)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrSnapshotNotFound
	}
	if err != nil {
		return Run{}, fmt.Errorf("query latest run: %w", err)
	}
	run.CreatedAt, err = time.Parse(runTimeLayout, createdAt)
	if err != nil {
		return Run{}, fmt.Errorf("invalid run timestamp %q: %w", createdAt, err)
	}
	return run, nil
}

func scanTransaction(rows *sql.Rows) (models.Transaction, error) {
	var (
		t                               models.Transaction
		date, amount, direction         string
		merchant, category, subcategory sql.NullString
		balance                         sql.NullString
	)
	if err := rows.Scan(&t.ID, &t.Source, &t.Account, &date, &amount, &t.Currency, &t.Description, &direction,
		&merchant, &category, &subcategory, &balance,
		&t.IsTransfer, &t.IsFee, &t.IsTax, &t.Neutralized); err != nil {
		return models.Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}

	var err error
	if t.Date, err = civil.ParseDate(date); err != nil {
		return models.Transaction{}, fmt.Errorf("transaction %s: invalid date %q: %w", t.ID, date, err)
	}
	if t.Amount, err = decimal.NewFromString(amount); err != nil {
		return models.Transaction{}, fmt.Errorf("transaction %s: invalid amount %q: %w", t.ID, amount, err)
	}
	t.Direction = models.TransactionDirection(direction)
	t.Merchant = nullString(merchant)
	t.Category = nullString(category)
	t.Subcategory = nullString(subcategory)
	if balance.Valid {
		b, err := decimal.NewFromString(balance.String)
		if err != nil {
			return models.Transaction{}, fmt.Errorf("transaction %s: invalid balance %q: %w", t.ID, balance.String, err)
		}
		t.Balance = &b
	}
	return t, nil
}

func nullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}
