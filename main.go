package main

import (
	"context"
	"log"

	"pulsegrid/adapters/excel"
	"pulsegrid/adapters/memory"
	"pulsegrid/adapters/postgres"
	"pulsegrid/app"
	"pulsegrid/domain/core"
	"pulsegrid/internal/config"
	"pulsegrid/internal/errors"
	"pulsegrid/internal/metrics"
	"pulsegrid/internal/ops"
	"pulsegrid/ports"
	"pulsegrid/ui"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

// initDatabase connects to PostgreSQL and applies the schema. Only called
// when DATABASE_URL is set; the server runs entirely in memory without it.
func initDatabase(appConfig *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", appConfig.Database.URL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}
	if err := db.Ping(); err != nil {
		return nil, errors.Wrap(err, "failed to ping database")
	}
	if err := postgres.Migrate(context.Background(), db); err != nil {
		return nil, errors.Wrap(err, "database migration failed")
	}
	return db, nil
}

// importBundle loads an indicator workbook into the repository.
func importBundle(ctx context.Context, repo ports.SeriesRepository, filePath string, rec metrics.Recorder) error {
	reader := excel.NewDataReader(filePath)
	bundle, err := reader.ReadBundle()
	if err != nil {
		return err
	}
	coverage := make(map[core.CountryCode][]core.IndicatorKey, len(bundle))
	for country, indicators := range bundle {
		for key, ts := range indicators {
			if err := repo.SaveSeries(ctx, country, key, ts); err != nil {
				return err
			}
			coverage[country] = append(coverage[country], key)
			rec.Inc(metrics.CounterSeriesImported)
		}
	}
	log.Printf("Imported %d countries, bundle fingerprint %s", len(bundle), core.ComputeBundleHash(coverage))
	return nil
}

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	registry := metrics.NewRegistry()

	// Repository: Postgres when configured, in-memory otherwise
	var repo ports.SeriesRepository
	if appConfig.Database.URL != "" {
		db, err := initDatabase(appConfig)
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		defer db.Close()
		repo = postgres.NewSeriesRepository(db)
		log.Println("Using PostgreSQL repository")
	} else {
		repo = memory.NewSeriesRepository()
		log.Println("No DATABASE_URL configured, using in-memory repository")
	}

	// Configure data source
	if appConfig.Data.File != "" {
		log.Printf("Importing indicator workbook: %s", appConfig.Data.File)
		if err := importBundle(context.Background(), repo, appConfig.Data.File, registry); err != nil {
			log.Fatalf("Failed to import workbook: %v", err)
		}
	} else {
		log.Println("No DATA_FILE configured, serving request payloads only")
	}

	analysis := app.NewAnalysisService(registry, app.EngineDefaults{
		Forecast:  appConfig.Engine.Forecast,
		Anomaly:   appConfig.Engine.Anomaly,
		Causality: appConfig.Engine.Causality,
	})

	// Start ops listener for health, counters, and pprof
	if appConfig.Ops.Enabled {
		opsServer := ops.NewServer(registry)
		go func() {
			log.Printf("Ops server listening on :%s", appConfig.Ops.Port)
			if err := opsServer.Run(appConfig.Ops.Port); err != nil {
				log.Printf("Ops server failed: %v", err)
			}
		}()
	}

	server := ui.NewServer(ui.Config{
		GinMode:  appConfig.Server.GinMode,
		Analysis: analysis,
		Repo:     repo,
		Recorder: registry,
	})

	log.Printf("Starting PulseGrid analytics server on port %s", appConfig.Server.Port)
	log.Fatal(server.Run(appConfig.Server.Port))
}
