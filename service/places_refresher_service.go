package services

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"livepop-server/dao/redis"
)

// PlacesRefresherService periodically scrapes the configured places.
type PlacesRefresherService struct {
	livePopularity *LivePopularityService
	placeDao       *redis.RedisPlaceDAO
	placeURLs      []string
	logger         *zap.Logger
}

// NewPlacesRefresherService constructs a new refresher with dependencies.
func NewPlacesRefresherService(
	livePopularity *LivePopularityService,
	placeDao *redis.RedisPlaceDAO,
	placeURLs []string,
	logger *zap.Logger,
) *PlacesRefresherService {
	return &PlacesRefresherService{
		livePopularity: livePopularity,
		placeDao:       placeDao,
		placeURLs:      placeURLs,
		logger:         logger.Named("places_refresher"),
	}
}

// StartPeriodicJob launches the background loop at the given interval. The
// loop stops when ctx is done.
func (pr *PlacesRefresherService) StartPeriodicJob(ctx context.Context, interval time.Duration) {
	go pr.startPeriodicJob(ctx, interval)
}

func (pr *PlacesRefresherService) startPeriodicJob(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			pr.logger.Info("Stopping periodic places refresher job")
			return
		case <-ticker.C:
			pr.logger.Info("Running periodic places refresher job")
			if err := pr.RefreshPlaces(ctx); err != nil {
				pr.logger.Error("RefreshPlaces returned error", zap.Error(err))
			} else {
				pr.logger.Info("RefreshPlaces completed successfully")
			}
		}
	}
}

// RefreshPlaces scrapes every configured place in order. Failures of single
// places are logged and joined into the returned error; the pass continues.
func (pr *PlacesRefresherService) RefreshPlaces(ctx context.Context) error {
	pr.logger.Info("Refreshing places", zap.Int("count", len(pr.placeURLs)))
	return pr.refresh(ctx, pr.placeURLs)
}

// RefreshCachedPlaces re-scrapes only the places that currently have a
// cached result.
func (pr *PlacesRefresherService) RefreshCachedPlaces(ctx context.Context) error {
	ids, err := pr.placeDao.ListCachedPlaceIDs(ctx)
	if err != nil {
		pr.logger.Error("Error listing cached place ids", zap.Error(err))
		return err
	}
	pr.logger.Info("Found cached live popularity entries", zap.Int("count", len(ids)))
	return pr.refresh(ctx, pr.urlsFor(ctx, ids))
}

// RefreshKnownPlaces re-scrapes every stored place, cached result or not.
func (pr *PlacesRefresherService) RefreshKnownPlaces(ctx context.Context) error {
	ids, err := pr.placeDao.ListAllPlaceIDs(ctx)
	if err != nil {
		pr.logger.Error("Error listing stored place ids", zap.Error(err))
		return err
	}
	pr.logger.Info("Found stored places", zap.Int("count", len(ids)))
	return pr.refresh(ctx, pr.urlsFor(ctx, ids))
}

func (pr *PlacesRefresherService) urlsFor(ctx context.Context, ids []string) []string {
	urls := make([]string, 0, len(ids))
	for _, id := range ids {
		p, err := pr.placeDao.GetPlace(ctx, id)
		if err != nil {
			pr.logger.Warn("No stored place for id, skipping", zap.String("place_id", id), zap.Error(err))
			continue
		}
		urls = append(urls, p.PlaceURL)
	}
	return urls
}

func (pr *PlacesRefresherService) refresh(ctx context.Context, urls []string) error {
	var errs []error
	for _, u := range urls {
		if err := ctx.Err(); err != nil {
			return errors.Join(append(errs, err)...)
		}

		res, err := pr.livePopularity.ScrapeAndCache(ctx, u)
		if err != nil {
			pr.logger.Error("Refresh failed", zap.String("place_url", u), zap.Error(err))
			errs = append(errs, err)
			continue
		}
		pr.logger.Info("Place refreshed",
			zap.String("place_id", res.PlaceID),
			zap.Bool("live", res.HasLiveReading()))
	}
	return errors.Join(errs...)
}
