package report

import (
	"context"
	"fmt"
	"time"

	"github.com/qrafiq/truck-etl/internal/domain"
	"github.com/qrafiq/truck-etl/internal/warehouse"
)

// Warehouse is the slice of the warehouse store the aggregator needs.
type Warehouse interface {
	TotalRevenue(ctx context.Context, start, end time.Time) (float64, error)
	TruckAggregates(ctx context.Context, start, end time.Time) ([]warehouse.TruckAggregate, error)
}

// DayWindow returns the closed interval covering one calendar day,
// [00:00:00, 23:59:59].
func DayWindow(day time.Time) (time.Time, time.Time) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.Add(23*time.Hour + 59*time.Minute + 59*time.Second)
	return start, end
}

// PreviousDay returns the window covering yesterday.
func PreviousDay(now time.Time) (time.Time, time.Time) {
	return DayWindow(now.AddDate(0, 0, -1))
}

// Summarize aggregates the window [start, end] into a daily summary. An
// empty window is a valid zero-valued summary, not an error. A truck with no
// transactions in the window is omitted entirely: its average would be
// undefined, and its percentages meaningless.
func Summarize(ctx context.Context, wh Warehouse, start, end time.Time) (domain.DailySummary, error) {
	summary := domain.DailySummary{
		Date:   start.Format("2006-01-02"),
		Trucks: []domain.TruckLine{},
	}

	total, err := wh.TotalRevenue(ctx, start, end)
	if err != nil {
		return summary, fmt.Errorf("summarize: %w", err)
	}
	summary.TotalValue = domain.Round2(total)

	aggregates, err := wh.TruckAggregates(ctx, start, end)
	if err != nil {
		return summary, fmt.Errorf("summarize: %w", err)
	}

	for _, agg := range aggregates {
		if agg.NumTransactions == 0 {
			continue
		}

		line := domain.TruckLine{
			TruckID:            agg.TruckID,
			TruckName:          agg.TruckName,
			NumTransactions:    agg.NumTransactions,
			TotalValue:         domain.Round2(agg.TotalValue),
			AverageTransaction: domain.Round2(agg.TotalValue / float64(agg.NumTransactions)),
		}

		// Percentages are over classified transactions only; a zero
		// denominator yields 0.00 for both, never a division error.
		classified := agg.CashCount + agg.CardCount
		if classified > 0 {
			line.CashPercentage = domain.Round2(float64(agg.CashCount) / float64(classified) * 100)
			line.CardPercentage = domain.Round2(float64(agg.CardCount) / float64(classified) * 100)
		}

		summary.Trucks = append(summary.Trucks, line)
	}

	return summary, nil
}
