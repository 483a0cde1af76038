package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"livepop-server/api/maps"
	"livepop-server/dao/redis"
	"livepop-server/metrics"
	"livepop-server/models/live_popularity"
	"livepop-server/models/place"
	"livepop-server/popularity"
)

// Scrape results as counted in metrics.ScrapesTotal.
const (
	ScrapeResultLive      = "live"
	ScrapeResultNoReading = "no_reading"
	ScrapeResultFailed    = "navigation_failed"
)

// NearbyPlace is a place together with its cached live popularity.
type NearbyPlace struct {
	place.Place
	Live *live_popularity.Result `json:"live"`
}

// LivePopularityService scrapes place pages and keeps the cache current.
type LivePopularityService struct {
	navigator  maps.Navigator
	labels     maps.LabelSource
	classifier *popularity.Classifier
	placeDao   *redis.RedisPlaceDAO
	logger     *zap.Logger
	now        func() time.Time
}

// NewLivePopularityService constructs a new LivePopularityService with its
// collaborators.
func NewLivePopularityService(
	navigator maps.Navigator,
	labels maps.LabelSource,
	classifier *popularity.Classifier,
	placeDao *redis.RedisPlaceDAO,
	logger *zap.Logger) *LivePopularityService {

	return &LivePopularityService{
		navigator:  navigator,
		labels:     labels,
		classifier: classifier,
		placeDao:   placeDao,
		logger:     logger.Named("live_popularity_service"),
		now:        time.Now,
	}
}

// Extract runs the extraction on labels that were collected elsewhere.
func (s *LivePopularityService) Extract(placeName string, labels []string) live_popularity.Result {
	res := s.classifier.Extract(placeName, labels)
	metrics.ObserveResult(res)
	return res
}

// ScrapePlace opens the place page and extracts its live popularity. A page
// that cannot be opened is treated as having no labels; only an unparseable
// URL is an error.
func (s *LivePopularityService) ScrapePlace(ctx context.Context, placeURL string) (live_popularity.Result, error) {
	p, err := place.ParsePlaceURL(placeURL)
	if err != nil {
		return live_popularity.Result{}, err
	}

	started := s.now()
	info := &live_popularity.ScrapeInfo{
		ScrapeID:       uuid.NewString(),
		ScrapedAt:      started.UTC(),
		Consent:        string(maps.ConsentUnknown),
		SectionVisible: string(maps.VisibilityUnknown),
	}
	log := s.logger.With(
		zap.String("scrape_id", info.ScrapeID),
		zap.String("place_id", p.PlaceID),
		zap.String("place_url", placeURL),
	)

	labels := []string{}
	placeName := p.PlaceName

	page, err := s.navigator.Open(ctx, placeURL)
	if err != nil {
		log.Warn("Failed to open place page, continuing without labels", zap.Error(err))
		metrics.ScrapesTotal.WithLabelValues(ScrapeResultFailed).Inc()
	} else {
		var consent maps.ConsentOutcome
		page, consent = s.navigator.DismissConsent(ctx, page)
		info.Consent = string(consent)
		metrics.ConsentTotal.WithLabelValues(info.Consent).Inc()

		var visibility maps.Visibility
		page, visibility = s.navigator.EnsurePopularTimes(ctx, page)
		info.SectionVisible = string(visibility)
		if visibility != maps.VisibilityVisible {
			log.Info("Popular times section not confirmed", zap.String("visibility", info.SectionVisible))
		}

		labels = s.labels.Labels(page)
		if name := s.labels.PlaceName(page); name != maps.UnknownPlaceName || placeName == "" {
			placeName = name
		}
	}
	if placeName == "" {
		placeName = maps.UnknownPlaceName
	}
	info.LabelCount = len(labels)

	res := s.Extract(placeName, labels)
	res.PlaceID = p.PlaceID
	res.PlaceURL = placeURL
	res.Scrape = info

	if err == nil {
		if res.HasLiveReading() {
			metrics.ScrapesTotal.WithLabelValues(ScrapeResultLive).Inc()
		} else {
			metrics.ScrapesTotal.WithLabelValues(ScrapeResultNoReading).Inc()
		}
	}
	metrics.ScrapeDuration.Observe(s.now().Sub(started).Seconds())

	log.Info("Scrape finished",
		zap.Int("label_count", info.LabelCount),
		zap.Strings("stages", res.Stages),
		zap.Bool("live", res.HasLiveReading()))
	return res, nil
}

// ScrapeAndCache scrapes placeURL, upserts the place and caches the result.
// A result without a current reading removes any stale cache entry.
func (s *LivePopularityService) ScrapeAndCache(ctx context.Context, placeURL string) (live_popularity.Result, error) {
	res, err := s.ScrapePlace(ctx, placeURL)
	if err != nil {
		return res, err
	}

	p, err := place.ParsePlaceURL(placeURL)
	if err != nil {
		return res, err
	}
	if res.PlaceName != maps.UnknownPlaceName {
		p.PlaceName = res.PlaceName
	}
	if err := s.placeDao.UpsertPlace(ctx, p); err != nil {
		return res, fmt.Errorf("failed to upsert place %s: %w", p.PlaceID, err)
	}

	if !res.HasLiveReading() {
		s.logger.Info("No live reading, removing cached result", zap.String("place_id", p.PlaceID))
		if err := s.placeDao.DeleteLivePopularity(ctx, p.PlaceID); err != nil {
			return res, fmt.Errorf("failed to delete stale result for %s: %w", p.PlaceID, err)
		}
		return res, nil
	}

	if err := s.placeDao.SetLivePopularity(ctx, res); err != nil {
		return res, fmt.Errorf("failed to cache result for %s: %w", p.PlaceID, err)
	}
	return res, nil
}

// GetLivePopularity returns the cached result for a place, or
// redis.ErrNotFound.
func (s *LivePopularityService) GetLivePopularity(ctx context.Context, placeID string) (*live_popularity.Result, error) {
	return s.placeDao.GetLivePopularity(ctx, placeID)
}

// GetPlacesNearby returns the places within radiusKm that have a cached
// result, busiest first.
func (s *LivePopularityService) GetPlacesNearby(ctx context.Context, lat, lon, radiusKm float64) ([]NearbyPlace, error) {
	places, err := s.placeDao.GetNearbyPlaces(ctx, lat, lon, radiusKm)
	if err != nil {
		return nil, err
	}

	out := make([]NearbyPlace, 0, len(places))
	for _, p := range places {
		live, err := s.placeDao.GetLivePopularity(ctx, p.PlaceID)
		if errors.Is(err, redis.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, NearbyPlace{Place: p, Live: live})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Live.CurrentOrZero() > out[j].Live.CurrentOrZero()
	})
	return out, nil
}

// ListCachedResults returns every cached result, busiest first.
func (s *LivePopularityService) ListCachedResults(ctx context.Context) ([]live_popularity.Result, error) {
	ids, err := s.placeDao.ListCachedPlaceIDs(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]live_popularity.Result, 0, len(ids))
	for _, id := range ids {
		res, err := s.placeDao.GetLivePopularity(ctx, id)
		if errors.Is(err, redis.ErrNotFound) {
			// expired between listing and reading
			continue
		}
		if err != nil {
			return nil, err
		}
		results = append(results, *res)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].CurrentOrZero() > results[j].CurrentOrZero()
	})
	return results, nil
}
