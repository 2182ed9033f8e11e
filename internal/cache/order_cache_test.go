package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/franciscosanchezn/gin-pizza-orders/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getRedisClient(t *testing.T) *redis.Client {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	return client
}

func TestOrderKey(t *testing.T) {
	assert.Equal(t, "order:42", orderKey(42))
}

func TestDecodeOrder(t *testing.T) {
	order, err := decodeOrder([]byte(`{"id":5,"customer_id":2,"pizza_name":"Veggie Delight","status":"SHIPPED"}`))
	require.NoError(t, err)
	assert.Equal(t, uint(5), order.ID)
	assert.Equal(t, models.OrderStatusShipped, order.Status)

	_, err = decodeOrder([]byte(`{"id":5,"status":"LOST"}`))
	assert.ErrorContains(t, err, "unknown status")

	_, err = decodeOrder([]byte(`not json`))
	assert.Error(t, err)
}

func TestConnectRejectsBadURL(t *testing.T) {
	_, err := Connect(context.Background(), "http://not-redis")
	assert.Error(t, err)
}

func TestSetAndGetOrder(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	c := NewRedisOrderCache(client, time.Minute)
	order := models.Order{
		ID:         900001,
		CustomerID: 7,
		PizzaID:    1,
		PizzaName:  "Margherita",
		Quantity:   3,
		TotalPrice: 597,
		Status:     models.OrderStatusPending,
	}
	defer c.Invalidate(ctx, order.ID)

	require.NoError(t, c.SetOrder(ctx, order))

	got, err := c.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, order.PizzaName, got.PizzaName)
	assert.Equal(t, order.TotalPrice, got.TotalPrice)
	assert.Equal(t, models.OrderStatusPending, got.Status)

	ttl := client.TTL(ctx, orderKey(order.ID)).Val()
	assert.True(t, ttl > 0 && ttl <= time.Minute)
}

func TestGetOrderMiss(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	c := NewRedisOrderCache(client, time.Minute)
	require.NoError(t, c.Invalidate(ctx, 900002))

	got, err := c.GetOrder(ctx, 900002)
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestGetOrderDropsUnreadableEntry(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	c := NewRedisOrderCache(client, time.Minute)
	require.NoError(t, client.Set(ctx, orderKey(900003), `{"id":900003,"status":"LOST"}`, time.Minute).Err())

	got, err := c.GetOrder(ctx, 900003)
	assert.Error(t, err)
	assert.Nil(t, got)
	assert.Equal(t, int64(0), client.Exists(ctx, orderKey(900003)).Val())
}
