package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/qrafiq/truck-etl/internal/api/handlers"
	"github.com/qrafiq/truck-etl/internal/api/middleware"
	"github.com/qrafiq/truck-etl/internal/config"
	"github.com/qrafiq/truck-etl/internal/domain"
	"github.com/qrafiq/truck-etl/internal/jobs"
	"github.com/qrafiq/truck-etl/internal/jobs/inmemory"
	"github.com/qrafiq/truck-etl/internal/logger"
	"github.com/qrafiq/truck-etl/internal/pipeline"
	"github.com/qrafiq/truck-etl/internal/storage"
	"github.com/qrafiq/truck-etl/internal/warehouse"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg.LogLevel)

	port := flag.String("port", cfg.Port, "HTTP server port")
	flag.Parse()

	ctx := context.Background()
	ctx = logger.WithContext(ctx, log)

	wh, err := warehouse.Open(cfg.WarehouseDriver, cfg.WarehouseDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to warehouse")
	}
	defer wh.Close()

	objectStore, err := storage.NewGCSStore(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create object store client")
	}
	defer objectStore.Close()

	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(100, jobStore)

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	jobHandler := func(ctx context.Context, job *jobs.EtlRunJob) error {
		bucket := job.Bucket
		if bucket == "" {
			bucket = cfg.Bucket
		}
		prefix := job.Prefix
		if prefix == "" {
			prefix = cfg.SourcePrefix
		}
		sample := job.SampleSize
		if sample == 0 {
			sample = cfg.SampleSize
		}

		keyTemplate := prefix + "TRUCK_DATA_HIST_%d.csv"

		// Jobs can point at any bucket and prefix, so the source set is
		// discovered from the store rather than assumed from config.
		sourceIDs, err := pipeline.DiscoverSourceIDs(ctx, objectStore, bucket, keyTemplate)
		if err != nil {
			return err
		}
		if len(sourceIDs) == 0 {
			return fmt.Errorf("no source files under %s/%s: %w", bucket, prefix, domain.ErrDataUnavailable)
		}

		runner := &pipeline.Runner{
			Merger: &pipeline.Merger{
				Store:       objectStore,
				Bucket:      bucket,
				KeyTemplate: keyTemplate,
			},
			Cleaner:      pipeline.NewCleaner(),
			Loader:       warehouse.NewLoader(wh),
			SourceIDs:    sourceIDs,
			CombinedPath: cfg.CombinedPath,
			LoadOptions: warehouse.LoadOptions{
				SampleSize: sample,
				BatchSize:  cfg.BatchSize,
			},
		}

		log.Info().Str("job_id", job.JobID).Str("bucket", bucket).Str("prefix", prefix).
			Msg("Processing pipeline run")

		result, err := runner.Run(ctx)
		if err != nil {
			log.Error().Err(err).Str("job_id", job.JobID).Msg("Pipeline run failed")
			return err
		}

		job.RowsInserted = result.Load.Inserted
		log.Info().Str("job_id", job.JobID).Int("rows_inserted", result.Load.Inserted).
			Msg("Pipeline run completed")
		return nil
	}

	if err := jobQueue.Start(workerCtx, jobHandler); err != nil {
		log.Fatal().Err(err).Msg("Failed to start job consumer")
	}

	reportHandler := handlers.NewReportHandler(wh, log)
	runsHandler := handlers.NewRunsHandler(jobQueue, jobStore, log)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/report", reportHandler.GetReport)
	mux.HandleFunc("GET /api/report/html", reportHandler.GetReportHTML)
	mux.HandleFunc("POST /api/runs", runsHandler.CreateRun)
	mux.HandleFunc("GET /api/runs", runsHandler.ListRuns)
	mux.HandleFunc("GET /api/runs/{id}", runsHandler.GetRun)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	var handler http.Handler = mux
	handler = middleware.RequestID(handler)
	handler = middleware.CORS(handler)
	handler = middleware.Recovery(log)(handler)
	handler = middleware.Logger(log)(handler)

	server := &http.Server{
		Addr:         ":" + *port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	go func() {
		log.Info().Str("port", *port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down API server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}

	cancelWorker()
	_ = jobQueue.Stop()

	log.Info().Msg("Shutdown complete")
}
