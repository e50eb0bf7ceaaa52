package progress

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/coocood/freecache"
	"github.com/go-redis/redis/v8"
)

// BestCache keeps the personal best value per template and kind, so the
// ledger only asks the store once.
type BestCache interface {
	Get(ctx context.Context, templateID string, kind MetricKind) (float64, bool, error)
	Set(ctx context.Context, templateID string, kind MetricKind, value float64) error
}

var (
	_ BestCache = (*MemoryBestCache)(nil)
	_ BestCache = (*RedisBestCache)(nil)
)

const defaultBestCacheSize = 1024 * 1024 // freecache minimum is 512KB

type MemoryBestCache struct {
	cache *freecache.Cache
}

func NewMemoryBestCache(size int) *MemoryBestCache {
	if size <= 0 {
		size = defaultBestCacheSize
	}
	return &MemoryBestCache{
		cache: freecache.NewCache(size),
	}
}

func (c *MemoryBestCache) Get(_ context.Context, templateID string, kind MetricKind) (float64, bool, error) {
	valueBytes, err := c.cache.Get(bestKey(templateID, kind))
	if err != nil {
		if errors.Is(err, freecache.ErrNotFound) {
			return 0, false, nil
		}
		return 0, false, err
	}
	if len(valueBytes) != 8 {
		return 0, false, fmt.Errorf("corrupt cached best, %d bytes", len(valueBytes))
	}
	return math.Float64frombits(binary.BigEndian.Uint64(valueBytes)), true, nil
}

func (c *MemoryBestCache) Set(_ context.Context, templateID string, kind MetricKind, value float64) error {
	valueBytes := make([]byte, 8)
	binary.BigEndian.PutUint64(valueBytes, math.Float64bits(value))
	// no expiry, bests only change through the ledger
	return c.cache.Set(bestKey(templateID, kind), valueBytes, 0)
}

func bestKey(templateID string, kind MetricKind) []byte {
	return []byte(templateID + "|" + kind.String())
}

const redisBestKeyPrefix = "fittrack::progress::best::"

// RedisBestCache keeps one redis hash per template, with a field per kind.
type RedisBestCache struct {
	redisClient *redis.Client
}

func NewRedisBestCache(redisClient *redis.Client) *RedisBestCache {
	return &RedisBestCache{
		redisClient: redisClient,
	}
}

func (c *RedisBestCache) Get(ctx context.Context, templateID string, kind MetricKind) (float64, bool, error) {
	cmd := c.redisClient.HGet(ctx, redisBestKeyPrefix+templateID, kind.String())
	if err := cmd.Err(); err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, false, nil
		}
		return 0, false, err
	}

	value, err := strconv.ParseFloat(cmd.Val(), 64)
	if err != nil {
		return 0, false, fmt.Errorf("parse cached best: %w", err)
	}
	return value, true, nil
}

func (c *RedisBestCache) Set(ctx context.Context, templateID string, kind MetricKind, value float64) error {
	cmd := c.redisClient.HSet(
		ctx,
		redisBestKeyPrefix+templateID,
		kind.String(), strconv.FormatFloat(value, 'g', -1, 64),
	)
	return cmd.Err()
}
