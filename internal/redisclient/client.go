package redisclient

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"marketplace-service/internal/models"

	"github.com/go-redis/redis/v8"
)

const productCacheTTL = 5 * time.Minute

type Client struct {
	rdb *redis.Client
}

// NewClient creates a new Redis client
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

func productKey(storeID, id string) string {
	return fmt.Sprintf("product:%s:%s", storeID, id)
}

// CacheProduct stores a product for read-through caching.
func (c *Client) CacheProduct(ctx context.Context, product *models.Product) error {
	data, err := json.Marshal(product)
	if err != nil {
		return fmt.Errorf("failed to marshal product: %w", err)
	}
	return c.rdb.Set(ctx, productKey(product.StoreID, product.ID), data, productCacheTTL).Err()
}

// GetCachedProduct retrieves a cached product, or nil on a miss.
func (c *Client) GetCachedProduct(ctx context.Context, storeID, id string) (*models.Product, error) {
	data, err := c.rdb.Get(ctx, productKey(storeID, id)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var product models.Product
	if err := json.Unmarshal(data, &product); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached product: %w", err)
	}
	return &product, nil
}

// InvalidateProduct drops a product from the cache after a write.
func (c *Client) InvalidateProduct(ctx context.Context, storeID, id string) error {
	return c.rdb.Del(ctx, productKey(storeID, id)).Err()
}

// CacheSession stores a verified session under its bearer token.
func (c *Client) CacheSession(ctx context.Context, token string, session *models.Session, ttl time.Duration) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	return c.rdb.Set(ctx, fmt.Sprintf("session:%s", token), data, ttl).Err()
}

// GetCachedSession retrieves a cached session, or nil on a miss.
func (c *Client) GetCachedSession(ctx context.Context, token string) (*models.Session, error) {
	data, err := c.rdb.Get(ctx, fmt.Sprintf("session:%s", token)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var session models.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached session: %w", err)
	}
	return &session, nil
}
