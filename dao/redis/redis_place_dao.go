package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"livepop-server/db"
	"livepop-server/models/live_popularity"
	"livepop-server/models/place"
)

const PLACES_GEO_KEY_V1 = "places_geo_v1"
const PLACES_GEO_PLACE_MEMBER_FORMAT_V1 = "places_geo_place_v1:%s"

// LIVE_POPULARITY_KEY_FORMAT is used to cache the latest result per place.
const LIVE_POPULARITY_KEY_FORMAT = "live_popularity_v1:%s"

// ErrNotFound is returned when nothing is cached for a place.
var ErrNotFound = errors.New("not found")

// RedisPlaceDAO handles place and live popularity operations using Redis.
type RedisPlaceDAO struct {
	client db.RedisClient
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisPlaceDAO initializes a RedisPlaceDAO. Cached results expire after
// ttl; zero keeps them until overwritten or deleted.
func NewRedisPlaceDAO(client db.RedisClient, ttl time.Duration, logger *zap.Logger) *RedisPlaceDAO {
	return &RedisPlaceDAO{
		client: client,
		ttl:    ttl,
		logger: logger.Named("place_dao"),
	}
}

// UpsertPlace stores the place in the geo index with its JSON data. Places
// without coordinates are stored as plain keys only and dropped from the geo
// index, so a place whose URL lost its coordinates stops showing up nearby.
func (dao *RedisPlaceDAO) UpsertPlace(ctx context.Context, p place.Place) error {
	placeKey := fmt.Sprintf(PLACES_GEO_PLACE_MEMBER_FORMAT_V1, p.PlaceID)
	if !p.HasCoordinates {
		data, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("failed to marshal place %s: %w", p.PlaceID, err)
		}
		if err := dao.client.RemoveLocation(ctx, PLACES_GEO_KEY_V1, placeKey); err != nil {
			return fmt.Errorf("failed to remove stale location of place %s: %w", p.PlaceID, err)
		}
		return dao.client.Set(ctx, placeKey, string(data), 0)
	}
	if err := dao.client.AddLocationWithJSON(ctx, PLACES_GEO_KEY_V1, placeKey, p.PlaceLat, p.PlaceLon, p); err != nil {
		return fmt.Errorf("failed to upsert place %s: %w", p.PlaceID, err)
	}
	return nil
}

// GetPlace loads one place by id.
func (dao *RedisPlaceDAO) GetPlace(ctx context.Context, placeID string) (*place.Place, error) {
	str, err := dao.client.Get(ctx, fmt.Sprintf(PLACES_GEO_PLACE_MEMBER_FORMAT_V1, placeID))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return nil, fmt.Errorf("place %s: %w", placeID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get place from redis: %w", err)
	}
	var p place.Place
	if err := json.Unmarshal([]byte(str), &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal place JSON: %w", err)
	}
	return &p, nil
}

// GetNearbyPlaces retrieves places within radiusKm of a point.
func (dao *RedisPlaceDAO) GetNearbyPlaces(ctx context.Context, lat, lon, radiusKm float64) ([]place.Place, error) {
	placesJSON, err := dao.client.GetLocationsWithinRadius(ctx, PLACES_GEO_KEY_V1, lat, lon, radiusKm)
	if err != nil {
		return nil, fmt.Errorf("failed to get places: %w", err)
	}

	places := make([]place.Place, len(placesJSON))
	for i, placeJSON := range placesJSON {
		if err := json.Unmarshal([]byte(placeJSON), &places[i]); err != nil {
			return nil, fmt.Errorf("failed to unmarshal place JSON: %w", err)
		}
	}
	dao.logger.Debug("loaded nearby places", zap.Int("count", len(places)))
	return places, nil
}

// ListAllPlaceIDs returns every stored place id.
func (dao *RedisPlaceDAO) ListAllPlaceIDs(ctx context.Context) ([]string, error) {
	return dao.listIDs(ctx, PLACES_GEO_PLACE_MEMBER_FORMAT_V1)
}

// SetLivePopularity caches the latest result for a place.
func (dao *RedisPlaceDAO) SetLivePopularity(ctx context.Context, res live_popularity.Result) error {
	if res.PlaceID == "" {
		return errors.New("cannot cache live popularity without a place id")
	}
	key := fmt.Sprintf(LIVE_POPULARITY_KEY_FORMAT, res.PlaceID)
	data, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("failed to marshal live popularity for place %s: %w", res.PlaceID, err)
	}
	if err := dao.client.Set(ctx, key, string(data), dao.ttl); err != nil {
		return fmt.Errorf("failed to set live popularity in redis: %w", err)
	}
	return nil
}

// GetLivePopularity retrieves the cached result for a place.
func (dao *RedisPlaceDAO) GetLivePopularity(ctx context.Context, placeID string) (*live_popularity.Result, error) {
	key := fmt.Sprintf(LIVE_POPULARITY_KEY_FORMAT, placeID)
	str, err := dao.client.Get(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return nil, fmt.Errorf("live popularity for %s: %w", placeID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get live popularity from redis: %w", err)
	}
	var res live_popularity.Result
	if err := json.Unmarshal([]byte(str), &res); err != nil {
		return nil, fmt.Errorf("failed to unmarshal live popularity JSON: %w", err)
	}
	return &res, nil
}

// ListCachedPlaceIDs returns the place ids of all cached results.
func (dao *RedisPlaceDAO) ListCachedPlaceIDs(ctx context.Context) ([]string, error) {
	return dao.listIDs(ctx, LIVE_POPULARITY_KEY_FORMAT)
}

func (dao *RedisPlaceDAO) DeleteLivePopularity(ctx context.Context, placeID string) error {
	key := fmt.Sprintf(LIVE_POPULARITY_KEY_FORMAT, placeID)
	if err := dao.client.Del(ctx, key); err != nil {
		return fmt.Errorf("failed to delete live popularity key %s: %w", key, err)
	}
	dao.logger.Info("deleted live popularity cache", zap.String("place_id", placeID))
	return nil
}

// listIDs strips the prefix of a "<prefix>%s" key format from matching keys.
func (dao *RedisPlaceDAO) listIDs(ctx context.Context, format string) ([]string, error) {
	keys, err := dao.client.Keys(ctx, fmt.Sprintf(format, "*"))
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}
	prefix := fmt.Sprintf(format, "")
	ids := make([]string, 0, len(keys))
	for _, k := range keys {
		ids = append(ids, strings.TrimPrefix(k, prefix))
	}
	return ids, nil
}
