package warehouse

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/qrafiq/truck-etl/internal/domain"
)

// TimeLayout is the canonical form of the fact table's `at` column. Storing
// one fixed TEXT layout keeps BETWEEN comparisons stable across drivers.
const TimeLayout = "2006-01-02 15:04:05"

// Store wraps an open warehouse connection. Every component that touches the
// warehouse receives a Store rather than opening its own connection.
type Store struct {
	db *sql.DB
}

// Open connects to the warehouse and verifies the connection.
func Open(driver, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("warehouse: dsn is required: %w", domain.ErrDataUnavailable)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("warehouse: open %s: %w: %v", driver, domain.ErrDataUnavailable, err)
	}
	// The pipeline is a single sequential writer.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("warehouse: ping: %w: %v", domain.ErrDataUnavailable, err)
	}

	return &Store{db: db}, nil
}

// NewStore wraps an already-open connection handle.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Migrate creates the warehouse schema if it does not exist yet.
func (s *Store) Migrate(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS DIM_Truck (
			truck_id INTEGER PRIMARY KEY,
			truck_name TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS DIM_Payment_Method (
			payment_method_id INTEGER PRIMARY KEY AUTOINCREMENT,
			payment_method TEXT NOT NULL UNIQUE
		);`,
		`CREATE TABLE IF NOT EXISTS FACT_Transaction (
			transaction_id INTEGER PRIMARY KEY AUTOINCREMENT,
			truck_id INTEGER NOT NULL,
			payment_method_id INTEGER NOT NULL,
			total REAL NOT NULL,
			at TEXT NOT NULL,
			FOREIGN KEY (truck_id) REFERENCES DIM_Truck(truck_id),
			FOREIGN KEY (payment_method_id) REFERENCES DIM_Payment_Method(payment_method_id)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_fact_transaction_at ON FACT_Transaction(at);`,
	}

	for _, statement := range statements {
		if _, err := s.db.ExecContext(ctx, statement); err != nil {
			return fmt.Errorf("warehouse: migrate: %w", err)
		}
	}
	return nil
}

// SeedPaymentMethods inserts the given labels into the payment-method
// dimension, skipping ones already present.
func (s *Store) SeedPaymentMethods(ctx context.Context, labels []domain.PaymentMethod) error {
	for _, label := range labels {
		_, err := s.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO DIM_Payment_Method (payment_method) VALUES (?)`,
			string(label))
		if err != nil {
			return fmt.Errorf("warehouse: seed payment method %q: %w", label, err)
		}
	}
	return nil
}

// UpsertTrucks writes truck dimension rows, replacing names for known ids.
func (s *Store) UpsertTrucks(ctx context.Context, trucks []domain.Truck) error {
	for _, truck := range trucks {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO DIM_Truck (truck_id, truck_name) VALUES (?, ?)
			ON CONFLICT(truck_id) DO UPDATE SET truck_name = excluded.truck_name
		`, truck.ID, truck.Name)
		if err != nil {
			return fmt.Errorf("warehouse: upsert truck %d: %w", truck.ID, err)
		}
	}
	return nil
}

// ListTrucks returns the truck dimension ordered by id.
func (s *Store) ListTrucks(ctx context.Context) ([]domain.Truck, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT truck_id, truck_name FROM DIM_Truck ORDER BY truck_id`)
	if err != nil {
		return nil, fmt.Errorf("warehouse: list trucks: %w", err)
	}
	defer rows.Close()

	var trucks []domain.Truck
	for rows.Next() {
		var t domain.Truck
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, fmt.Errorf("warehouse: scan truck: %w", err)
		}
		trucks = append(trucks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("warehouse: list trucks: %w", err)
	}
	return trucks, nil
}
