package domain

import (
	"time"
)

// PaymentMethod is one of the labels the trucks' card readers emit.
// The warehouse owns the mapping from label to surrogate key.
type PaymentMethod string

const (
	PaymentCash PaymentMethod = "cash"
	PaymentCard PaymentMethod = "card"
)

// KnownPaymentMethods is the fixed vocabulary of payment labels the
// pipeline accepts. Rows with any other label are dropped during cleaning.
var KnownPaymentMethods = map[PaymentMethod]bool{
	PaymentCash: true,
	PaymentCard: true,
}

// RawRecord is one row as read from a per-truck source file, before any
// validation. Timestamp and Total are kept as strings because a source file
// may carry sentinel markers ("VOID", "ERR", ...) instead of values.
type RawRecord struct {
	TruckID   int    // stamped by the merger from the source identifier
	Timestamp string // source format, unparsed
	Total     string // may be a sentinel invalid value
	Type      string // payment method label as exported
}

// CleanRecord is a validated transaction. Every field is populated, Total is
// a finite non-negative amount, and Type is within the known vocabulary.
type CleanRecord struct {
	TruckID   int
	Timestamp time.Time
	Total     float64
	Type      PaymentMethod
}

// FactTransaction is one row of the warehouse fact table. Created only by
// the loader, never mutated afterward.
type FactTransaction struct {
	TruckID         int
	PaymentMethodID int64
	Total           float64
	At              time.Time
}

// Truck is one row of the truck dimension, read-only to this pipeline.
type Truck struct {
	ID   int
	Name string
}
