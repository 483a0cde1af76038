package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"livepop-server/di"
	"livepop-server/models/live_popularity"
	"livepop-server/util"
)

const (
	storedCached = "cached"
	storedAll    = "all"
)

func newScrapeCmd(opts *rootOptions) *cobra.Command {
	var (
		cache  bool
		asJSON bool
		stored string
	)

	cmd := &cobra.Command{
		Use:   "scrape [url...]",
		Short: "Scrapes places once and prints their live popularity.",
		Long: "Scrapes the given place URLs, or scraper.place_urls from the config " +
			"when none are given, and prints one record per place. With --stored " +
			"the places already in redis are re-scraped instead and the cached " +
			"results are printed.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if stored != "" {
				if stored != storedCached && stored != storedAll {
					return fmt.Errorf("invalid --stored %q: want %q or %q", stored, storedCached, storedAll)
				}
				if len(args) > 0 {
					return errors.New("--stored does not take place urls")
				}
			}

			cfg, logger, err := opts.load()
			if err != nil {
				return err
			}
			defer logger.Sync()

			urls := args
			if len(urls) == 0 {
				urls = cfg.Scraper.PlaceURLs
			}
			if stored == "" && len(urls) == 0 {
				return errors.New("no place urls given and scraper.place_urls is empty")
			}

			ctx := cmd.Context()
			container, err := di.NewContainer(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer container.Close()

			var results []live_popularity.Result
			if stored != "" {
				results, err = scrapeStored(ctx, container, stored)
			} else {
				results, err = scrapeURLs(ctx, container, urls, cache)
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if encErr := enc.Encode(results); encErr != nil {
					return errors.Join(err, encErr)
				}
			} else {
				util.WriteResultsTable(cmd.OutOrStdout(), results)
			}
			return err
		},
	}
	cmd.Flags().BoolVar(&cache, "cache", false, "upsert places and cache results in redis")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print records as JSON instead of a table")
	cmd.Flags().StringVar(&stored, "stored", "",
		`re-scrape places already in redis: "cached" for those with a cached result, "all" for every stored place`)
	return cmd
}

// scrapeURLs scrapes each url once. Results of failed navigations are kept
// when the scrape got far enough to describe itself.
func scrapeURLs(ctx context.Context, c *di.Container, urls []string, cache bool) ([]live_popularity.Result, error) {
	svc := c.LivePopularityService
	results := make([]live_popularity.Result, 0, len(urls))
	var errs []error
	for _, u := range urls {
		var (
			res live_popularity.Result
			err error
		)
		if cache {
			res, err = svc.ScrapeAndCache(ctx, u)
		} else {
			res, err = svc.ScrapePlace(ctx, u)
		}
		if err != nil {
			errs = append(errs, err)
			if res.Scrape == nil {
				continue
			}
		}
		results = append(results, res)
	}
	return results, errors.Join(errs...)
}

// scrapeStored refreshes the places already in redis and returns the cached
// results after the pass.
func scrapeStored(ctx context.Context, c *di.Container, mode string) ([]live_popularity.Result, error) {
	var err error
	switch mode {
	case storedCached:
		err = c.PlacesRefresherService.RefreshCachedPlaces(ctx)
	case storedAll:
		err = c.PlacesRefresherService.RefreshKnownPlaces(ctx)
	default:
		return nil, fmt.Errorf("invalid stored mode %q", mode)
	}

	results, listErr := c.LivePopularityService.ListCachedResults(ctx)
	if listErr != nil {
		return nil, errors.Join(err, listErr)
	}
	return results, err
}
