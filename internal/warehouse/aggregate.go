package warehouse

import (
	"context"
	"fmt"
	"time"
)

// TruckAggregate is the raw per-truck grouping over a window, before any
// percentage or rounding work is applied.
type TruckAggregate struct {
	TruckID         int
	TruckName       string
	NumTransactions int
	TotalValue      float64
	CashCount       int
	CardCount       int
}

// TotalRevenue sums fact totals with `at` inside the closed interval
// [start, end]. An empty window yields 0, not an error.
func (s *Store) TotalRevenue(ctx context.Context, start, end time.Time) (float64, error) {
	var total float64
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(total), 0)
		FROM FACT_Transaction
		WHERE at BETWEEN ? AND ?
	`, start.Format(TimeLayout), end.Format(TimeLayout)).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("warehouse: total revenue: %w", err)
	}
	return total, nil
}

// TruckAggregates groups fact rows in [start, end] by truck, joined against
// the truck and payment-method dimensions. Trucks with no rows in the window
// do not appear. Results are ordered by truck id.
func (s *Store) TruckAggregates(ctx context.Context, start, end time.Time) ([]TruckAggregate, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.truck_id, t.truck_name,
			COUNT(f.transaction_id) AS num_transactions,
			SUM(f.total) AS total_value,
			SUM(CASE WHEN p.payment_method = 'cash' THEN 1 ELSE 0 END) AS cash_transactions,
			SUM(CASE WHEN p.payment_method = 'card' THEN 1 ELSE 0 END) AS card_transactions
		FROM FACT_Transaction AS f
		JOIN DIM_Truck t ON f.truck_id = t.truck_id
		JOIN DIM_Payment_Method p ON f.payment_method_id = p.payment_method_id
		WHERE f.at BETWEEN ? AND ?
		GROUP BY t.truck_id, t.truck_name
		ORDER BY t.truck_id
	`, start.Format(TimeLayout), end.Format(TimeLayout))
	if err != nil {
		return nil, fmt.Errorf("warehouse: truck aggregates: %w", err)
	}
	defer rows.Close()

	var aggregates []TruckAggregate
	for rows.Next() {
		var a TruckAggregate
		if err := rows.Scan(&a.TruckID, &a.TruckName, &a.NumTransactions,
			&a.TotalValue, &a.CashCount, &a.CardCount); err != nil {
			return nil, fmt.Errorf("warehouse: scan truck aggregate: %w", err)
		}
		aggregates = append(aggregates, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("warehouse: truck aggregates: %w", err)
	}
	return aggregates, nil
}
