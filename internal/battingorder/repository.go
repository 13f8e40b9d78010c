package battingorder

import (
	"context"

	"github.com/batting-order-system/pkg/redis"
)

// OrdersKey holds the whole collection as one JSON array.
const OrdersKey = "battingOrders"

// Load reads the collection through kv. A missing key is an empty collection.
func Load(ctx context.Context, kv redis.KV) (Collection, error) {
	var orders Collection
	if _, err := kv.GetJSON(ctx, OrdersKey, &orders); err != nil {
		return nil, err
	}
	if orders == nil {
		orders = Collection{}
	}
	orders.normalize()
	return orders, nil
}

// Save overwrites the collection in a single write. Concurrent writers are
// not detected; the last Save wins.
func Save(ctx context.Context, kv redis.KV, orders Collection) error {
	if orders == nil {
		orders = Collection{}
	}
	return kv.SetJSON(ctx, OrdersKey, orders)
}
