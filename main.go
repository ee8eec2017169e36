package main

import (
	"fmt"
	"os"
	"time"

	"vehicle-scraper/config"
	"vehicle-scraper/models"
	"vehicle-scraper/scraper/motoscout"
	"vehicle-scraper/services"
	"vehicle-scraper/storage"
	"vehicle-scraper/utils"
)

func main() {
	cfg := config.Load()
	logger := utils.NewLogger(cfg.LogDebug)

	categories, err := parseCategories(os.Args[1:])
	if err != nil {
		logger.Error("%v", err)
		fmt.Fprintf(os.Stderr, "usage: %s [bike|car|all]\n", os.Args[0])
		os.Exit(2)
	}

	logger.Info("=== Vehicle Sync starting ===")
	logger.Info("Config — source: %s | max pages: %d | concurrency: %d | rate: %.2f req/s | dry run: %t",
		cfg.SourceBaseURL, cfg.MaxPages, cfg.MaxConcurrency, cfg.RequestRPS, cfg.DryRun)

	var store storage.VehicleStore
	if cfg.DryRun {
		logger.Warn("Dry run — using in-memory store, nothing is persisted")
		store = storage.NewMemoryStore()
	} else {
		pg, err := storage.NewPostgresStore(cfg.DSN())
		if err != nil {
			logger.Error("Failed to connect to PostgreSQL: %v", err)
			logger.Error("Make sure Docker is running: docker compose up -d")
			os.Exit(1)
		}
		store = pg
	}
	defer store.Close()

	csvWriter, err := storage.NewCSVWriter(cfg.CSVOutputPath)
	if err != nil {
		logger.Error("Failed to create CSV writer: %v", err)
		os.Exit(1)
	}
	defer csvWriter.Close()

	enricher, err := services.NewEnricher(logger)
	if err != nil {
		logger.Error("Failed to load translation tables: %v", err)
		os.Exit(1)
	}

	scraper := motoscout.New(cfg, logger)
	normalizer := services.NewNormalizer(logger)
	insightSvc := services.NewInsightService(logger)
	retry := &utils.RetryConfig{
		MaxAttempts: cfg.MaxRetries,
		BaseDelay:   5 * time.Second,
		Logger:      logger.WithComponent("retry"),
	}

	exitCode := 0
	for _, category := range categories {
		if err := syncCategory(category, scraper, normalizer, enricher, insightSvc,
			store, csvWriter, retry, logger); err != nil {
			logger.Error("Category %s failed: %v", category, err)
			exitCode = 1
		}
	}

	os.Exit(exitCode)
}

// syncCategory runs the full pipeline for one category: crawl, extract,
// normalize, enrich, replace-sync, report. The sync step is retried as a
// whole, which is safe because it is idempotent.
func syncCategory(
	category string,
	scraper *motoscout.Scraper,
	normalizer *services.Normalizer,
	enricher *services.Enricher,
	insightSvc *services.InsightService,
	store storage.VehicleStore,
	csvWriter storage.RawExtractionWriter,
	retry *utils.RetryConfig,
	logger *utils.Logger,
) error {
	results, err := scraper.ScrapeCategory(category)
	if err != nil {
		return err
	}

	if err := csvWriter.WriteRaw(results); err != nil {
		logger.Warn("Raw CSV dump failed: %v", err)
	}

	vehicles := make([]*models.Vehicle, 0, len(results))
	for _, res := range results {
		v := normalizer.Normalize(category, res)
		enricher.Enrich(v)
		vehicles = append(vehicles, v)
	}

	logger.Info("Normalized %d %s vehicles — syncing store", len(vehicles), category)

	if err := retry.Do("sync-"+category, func() error {
		return store.SyncCategory(category, vehicles)
	}); err != nil {
		return err
	}

	stored, err := store.FetchCategory(category)
	if err != nil {
		logger.Warn("Could not read back %s vehicles for the report: %v", category, err)
		stored = vehicles
	}

	insightSvc.Print(insightSvc.Generate(category, stored))
	return nil
}

func parseCategories(args []string) ([]string, error) {
	if len(args) == 0 {
		return []string{models.CategoryBike, models.CategoryCar}, nil
	}
	switch args[0] {
	case "all":
		return []string{models.CategoryBike, models.CategoryCar}, nil
	case models.CategoryBike, models.CategoryCar:
		return []string{args[0]}, nil
	default:
		return nil, fmt.Errorf("unknown category %q", args[0])
	}
}
