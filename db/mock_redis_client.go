package db

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"path"
	"sort"
	"sync"
	"time"
)

const earthRadiusKm = 6371.0

// MockRedisClient is an in-memory RedisClient for tests and the dev
// environment. TTLs are honoured lazily on read.
type MockRedisClient struct {
	mu        sync.RWMutex
	data      map[string]string
	expiresAt map[string]time.Time
	geoData   map[string]map[string]GeoLoc
	now       func() time.Time
}

// GeoLoc represents a geolocation with latitude and longitude.
type GeoLoc struct {
	Latitude  float64
	Longitude float64
}

// NewMockRedisClient initializes a new MockRedisClient.
func NewMockRedisClient() *MockRedisClient {
	return &MockRedisClient{
		data:      make(map[string]string),
		expiresAt: make(map[string]time.Time),
		geoData:   make(map[string]map[string]GeoLoc),
		now:       time.Now,
	}
}

func (m *MockRedisClient) expired(key string) bool {
	exp, ok := m.expiresAt[key]
	return ok && !m.now().Before(exp)
}

// Set stores a key-value pair in the mock Redis.
func (m *MockRedisClient) Set(_ context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	if ttl > 0 {
		m.expiresAt[key] = m.now().Add(ttl)
	} else {
		delete(m.expiresAt, key)
	}
	return nil
}

// Get retrieves a value for a given key from the mock Redis.
func (m *MockRedisClient) Get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, exists := m.data[key]
	if !exists || m.expired(key) {
		return "", fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}
	return value, nil
}

func (m *MockRedisClient) Del(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	delete(m.expiresAt, key)
	return nil
}

// Keys matches with path.Match, which covers the *, ? and [..] globs used
// by this project. Results are sorted.
func (m *MockRedisClient) Keys(_ context.Context, pattern string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := []string{}
	for k := range m.data {
		if m.expired(k) {
			continue
		}
		ok, err := path.Match(pattern, k)
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", pattern, err)
		}
		if ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Ping always succeeds.
func (m *MockRedisClient) Ping(context.Context) error {
	return nil
}

func (m *MockRedisClient) Close() error {
	return nil
}

// AddLocationWithJSON adds geolocation with JSON data in the mock Redis.
func (m *MockRedisClient) AddLocationWithJSON(_ context.Context, geoKey, memberKey string, lat, lon float64, data interface{}) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.geoData[geoKey]; !exists {
		m.geoData[geoKey] = make(map[string]GeoLoc)
	}
	m.geoData[geoKey][memberKey] = GeoLoc{Latitude: lat, Longitude: lon}
	m.data[memberKey] = string(jsonData)
	return nil
}

// GetLocationsWithinRadius filters members by great-circle distance.
// Results are ordered by distance, closest first.
func (m *MockRedisClient) GetLocationsWithinRadius(_ context.Context, geoKey string, lat, lon, radiusKm float64) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	type hit struct {
		data string
		dist float64
	}
	var hits []hit
	for memberKey, loc := range m.geoData[geoKey] {
		dist := haversineKm(lat, lon, loc.Latitude, loc.Longitude)
		if dist > radiusKm {
			continue
		}
		if data, exists := m.data[memberKey]; exists {
			hits = append(hits, hit{data: data, dist: dist})
		}
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].dist < hits[j].dist })

	results := make([]string, 0, len(hits))
	for _, h := range hits {
		results = append(results, h.data)
	}
	return results, nil
}

func (m *MockRedisClient) RemoveLocation(_ context.Context, geoKey, memberKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.geoData[geoKey], memberKey)
	delete(m.data, memberKey)
	return nil
}

func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	toRad := func(d float64) float64 { return d * math.Pi / 180 }
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(a))
}
