package warehouse

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/qrafiq/truck-etl/internal/domain"
)

// PaymentMethodKey resolves a payment-method label to its surrogate key.
// A label with no warehouse row yields an UnknownDimensionError; it is never
// defaulted, since a guessed key would corrupt the fact table's foreign key.
func (s *Store) PaymentMethodKey(ctx context.Context, label domain.PaymentMethod) (int64, error) {
	var key int64
	err := s.db.QueryRowContext(ctx,
		`SELECT payment_method_id FROM DIM_Payment_Method WHERE payment_method = ?`,
		string(label)).Scan(&key)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, &domain.UnknownDimensionError{Dimension: "payment method", Label: string(label)}
	}
	if err != nil {
		return 0, fmt.Errorf("warehouse: resolve payment method %q: %w", label, err)
	}
	return key, nil
}

// dimensionCache resolves each distinct label at most once per load run.
type dimensionCache struct {
	store *Store
	keys  map[domain.PaymentMethod]int64
}

func newDimensionCache(store *Store) *dimensionCache {
	return &dimensionCache{
		store: store,
		keys:  make(map[domain.PaymentMethod]int64),
	}
}

func (c *dimensionCache) key(ctx context.Context, label domain.PaymentMethod) (int64, error) {
	if key, ok := c.keys[label]; ok {
		return key, nil
	}
	key, err := c.store.PaymentMethodKey(ctx, label)
	if err != nil {
		return 0, err
	}
	c.keys[label] = key
	return key, nil
}
