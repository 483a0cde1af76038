package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const scanBatchSize = 100

// GeoRedisClient implements RedisClient on go-redis, storing each geo member's
// JSON payload under a plain key named after the member.
type GeoRedisClient struct {
	client *redis.Client
	logger *zap.Logger
}

// NewGeoRedisClient wraps an existing go-redis client.
func NewGeoRedisClient(client *redis.Client, logger *zap.Logger) *GeoRedisClient {
	return &GeoRedisClient{
		client: client,
		logger: logger.Named("redis"),
	}
}

// Set sets a key-value pair in Redis. A zero ttl keeps the key forever.
func (r *GeoRedisClient) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

// Get retrieves the value for a given key from Redis
func (r *GeoRedisClient) Get(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}
	return val, err
}

func (r *GeoRedisClient) Del(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

// Keys lists keys matching a glob pattern using SCAN rather than KEYS.
func (r *GeoRedisClient) Keys(ctx context.Context, pattern string) ([]string, error) {
	var (
		keys   []string
		cursor uint64
	)
	for {
		batch, next, err := r.client.Scan(ctx, cursor, pattern, scanBatchSize).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to scan keys %q: %w", pattern, err)
		}
		keys = append(keys, batch...)
		if next == 0 {
			return keys, nil
		}
		cursor = next
	}
}

func (r *GeoRedisClient) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *GeoRedisClient) Close() error {
	return r.client.Close()
}

// AddLocationWithJSON stores geolocation along with associated JSON data.
func (r *GeoRedisClient) AddLocationWithJSON(ctx context.Context, geoKey, memberKey string, lat, lon float64, data interface{}) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if err := r.client.GeoAdd(ctx, geoKey, &redis.GeoLocation{
		Name:      memberKey,
		Latitude:  lat,
		Longitude: lon,
	}).Err(); err != nil {
		return fmt.Errorf("failed to add geolocation: %w", err)
	}

	if err := r.client.Set(ctx, memberKey, jsonData, 0).Err(); err != nil {
		return fmt.Errorf("failed to set JSON data: %w", err)
	}

	r.logger.Debug("added geolocation", zap.String("member", memberKey))
	return nil
}

// GetLocationsWithinRadius returns the JSON payloads of members within
// radiusKm of the point. Members whose payload is gone are skipped.
func (r *GeoRedisClient) GetLocationsWithinRadius(ctx context.Context, geoKey string, lat, lon, radiusKm float64) ([]string, error) {
	results, err := r.client.GeoRadius(ctx, geoKey, lon, lat, &redis.GeoRadiusQuery{
		Radius: radiusKm,
		Unit:   "km",
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get nearby locations: %w", err)
	}

	objects := make([]string, 0, len(results))
	for _, loc := range results {
		data, err := r.client.Get(ctx, loc.Name).Result()
		if err != nil {
			r.logger.Warn("skipping geo member", zap.String("member", loc.Name), zap.Error(err))
			continue
		}
		objects = append(objects, data)
	}
	return objects, nil
}

// RemoveLocation drops a member from the geo index and its payload.
func (r *GeoRedisClient) RemoveLocation(ctx context.Context, geoKey, memberKey string) error {
	if err := r.client.ZRem(ctx, geoKey, memberKey).Err(); err != nil {
		return fmt.Errorf("failed to remove geolocation: %w", err)
	}
	return r.client.Del(ctx, memberKey).Err()
}
