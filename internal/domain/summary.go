package domain

import (
	"math"
)

// TruckLine is the per-truck aggregate for one report window. Monetary and
// percentage fields carry at most two decimal places.
type TruckLine struct {
	TruckID            int     `json:"truck_id"`
	TruckName          string  `json:"truck_name"`
	NumTransactions    int     `json:"num_transactions"`
	TotalValue         float64 `json:"total_transaction_value"`
	CashPercentage     float64 `json:"cash_transactions"`
	CardPercentage     float64 `json:"card_transactions"`
	AverageTransaction float64 `json:"Average_transaction"`
}

// DailySummary is the aggregate over one closed date window. It is derived,
// disposable data: rebuilt from the fact table on every report run.
type DailySummary struct {
	Date       string      `json:"date"` // YYYY-MM-DD, the covered day
	TotalValue float64     `json:"total_transaction_value"`
	Trucks     []TruckLine `json:"trucks"`
}

// Round2 rounds a monetary or percentage value to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
