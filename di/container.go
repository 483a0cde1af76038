package di

import (
	"context"
	"fmt"

	goredis "github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"livepop-server/api"
	"livepop-server/api/maps"
	"livepop-server/config"
	"livepop-server/dao/redis"
	"livepop-server/db"
	"livepop-server/popularity"
	"livepop-server/server"
	"livepop-server/server/handlers"
	services "livepop-server/service"
)

// Container holds all application dependencies.
type Container struct {
	Config                 *config.Config
	Logger                 *zap.Logger
	RedisClient            db.RedisClient
	RedisPlaceDao          *redis.RedisPlaceDAO
	Navigator              maps.Navigator
	LabelSource            maps.LabelSource
	LivePopularityService  *services.LivePopularityService
	PlacesRefresherService *services.PlacesRefresherService
	LiveHandler            *handlers.LivePopularityHandler
	MuxRouter              *mux.Router
	Router                 *server.Router
	LivePopHttpServer      *server.LivePopHttpServer
}

// NewContainer initializes and wires up all dependencies. The dev
// environment uses the in-memory Redis and serves place pages from fixtures.
func NewContainer(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Container, error) {
	logger.Info("initializing container", zap.String("env", cfg.Env))

	redisClient, err := newRedisClient(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	redisPlaceDao := redis.NewRedisPlaceDAO(redisClient, cfg.Redis.LiveTTL, logger)

	navigator, err := newNavigator(cfg, logger)
	if err != nil {
		redisClient.Close()
		return nil, err
	}
	labelSource := maps.NewDOMLabelSource(cfg.Scraper.MaxLabels)

	livePopularityService := services.NewLivePopularityService(
		navigator,
		labelSource,
		popularity.NewClassifier(popularity.DefaultLocales...),
		redisPlaceDao,
		logger,
	)
	placesRefresherService := services.NewPlacesRefresherService(
		livePopularityService,
		redisPlaceDao,
		cfg.Scraper.PlaceURLs,
		logger,
	)

	liveHandler := handlers.NewLivePopularityHandler(livePopularityService, logger)

	muxRouter := mux.NewRouter()
	router := server.NewRouter(liveHandler, promhttp.Handler(), muxRouter)
	livePopHttpServer := server.NewLivePopHttpServer(router, muxRouter, cfg.Server.Port, logger)

	return &Container{
		Config:                 cfg,
		Logger:                 logger,
		RedisClient:            redisClient,
		RedisPlaceDao:          redisPlaceDao,
		Navigator:              navigator,
		LabelSource:            labelSource,
		LivePopularityService:  livePopularityService,
		PlacesRefresherService: placesRefresherService,
		LiveHandler:            liveHandler,
		MuxRouter:              muxRouter,
		Router:                 router,
		LivePopHttpServer:      livePopHttpServer,
	}, nil
}

// Close releases the Redis connection.
func (c *Container) Close() error {
	return c.RedisClient.Close()
}

func newRedisClient(ctx context.Context, cfg *config.Config, logger *zap.Logger) (db.RedisClient, error) {
	if cfg.Env == config.EnvDev {
		logger.Info("Using in-memory redis")
		return db.NewMockRedisClient(), nil
	}

	redisInternalClient := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	redisClient := db.NewGeoRedisClient(redisInternalClient, logger)
	if err := redisClient.Ping(ctx); err != nil {
		redisClient.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Redis.Address, err)
	}
	return redisClient, nil
}

func newNavigator(cfg *config.Config, logger *zap.Logger) (maps.Navigator, error) {
	if cfg.Env == config.EnvDev {
		dir := cfg.FixturePath("")
		logger.Info("Using fixture navigator", zap.String("dir", dir))
		return maps.NewFixtureNavigator(dir, cfg.Scraper.SectionMarkers), nil
	}

	pageClient, err := api.NewPageClient(api.PageClientOptions{
		UserAgent: cfg.Scraper.UserAgent,
		Timeout:   cfg.Scraper.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create page client: %w", err)
	}
	return maps.NewHTTPNavigator(pageClient, maps.NavigatorOptions{
		ConsentButtons: cfg.Scraper.ConsentButtons,
		SectionMarkers: cfg.Scraper.SectionMarkers,
		MaxAttempts:    cfg.Scraper.MaxScrollAttempts,
		Wait:           cfg.Scraper.ScrollWait,
	}, logger), nil
}
