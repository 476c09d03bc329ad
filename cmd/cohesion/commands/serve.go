package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/cohesion/internal/api"
	"github.com/wonny/cohesion/internal/api/events"
	"github.com/wonny/cohesion/internal/api/handlers"
	"github.com/wonny/cohesion/internal/catalog"
	"github.com/wonny/cohesion/internal/cohesion"
	"github.com/wonny/cohesion/internal/pipeline"
	"github.com/wonny/cohesion/internal/scheduler"
	"github.com/wonny/cohesion/internal/scheduler/jobs"
	"github.com/wonny/cohesion/pkg/metrics"
	"github.com/wonny/cohesion/pkg/redis"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "API 서버 + 스케줄러 시작",
	Long: `REST API 서버, 파이프라인 스케줄러, 메트릭 서버를 시작합니다.

Endpoints:
  GET  /health
  GET  /api/meta/seasons
  GET  /api/teams?season=
  GET  /api/system_state?team=&side=
  GET  /api/system_state/summary?team=&side=&system_state_id=
  GET  /api/roster?team=&side=[&system_state_id=]
  GET  /api/coaches/active?team=&date=
  POST /api/score/lineup
  GET  /api/jobs
  POST /api/jobs/{name}/run
  GET  /api/pipeline/runs
  GET  /ws/pipeline            - 파이프라인 실행 이벤트 (websocket)

Example:
  go run ./cmd/cohesion serve
  go run ./cmd/cohesion serve --port 8080`,
	RunE: runServe,
}

var (
	servePort string
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&servePort, "port", "", "API 서버 포트 (기본값 PORT)")
}

func runServe(cmd *cobra.Command, args []string) error {
	d, err := bootstrap()
	if err != nil {
		return err
	}
	defer d.Close()

	cfg, log := d.cfg, d.log
	if servePort != "" {
		cfg.Port = servePort
	}

	log.WithFields(map[string]interface{}{
		"port": cfg.Port,
		"env":  cfg.Env,
	}).Info("Initializing API server")

	rc, err := redis.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer rc.Close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	mgr := metrics.NewManager(metrics.WithGoCollectors())

	hub := events.NewHub(log)
	go hub.Run(ctx)

	// Pipeline + scheduler
	runner := newRunner(d, rc, mgr, hub)
	var jobScheduler handlers.JobScheduler
	if cfg.Scheduler.Enabled {
		sched := scheduler.New(cfg.Scheduler, log)
		if err := sched.AddJob(jobs.NewPipelineJob(runner, cfg.Scheduler.PipelineCron, log)); err != nil {
			return fmt.Errorf("register pipeline job: %w", err)
		}
		sched.Start()
		defer sched.Stop()
		jobScheduler = sched
	}

	// Handlers
	catalogSvc := catalog.NewService(catalog.NewRepository(d.db.Pool), log.Component("catalog"))
	scorer := cohesion.NewScorer(cohesion.NewRepository(d.db.Pool), log.Component("cohesion")).WithRecorder(mgr)

	router := api.NewRouter(api.Routes{
		Catalog: handlers.NewCatalogHandler(catalogSvc, log),
		Score:   handlers.NewScoreHandler(scorer, log),
		Jobs:    handlers.NewJobsHandler(jobScheduler, pipeline.NewRepository(d.db.Pool), log),
		Events:  hub,
		Health: func() error {
			hctx, hcancel := context.WithTimeout(ctx, 2*time.Second)
			defer hcancel()
			return d.db.Ping(hctx)
		},
	}, cfg.CORSOrigin, mgr, log)

	server := api.New(cfg, log, router)
	errs := make(chan error, 2)
	go func() { errs <- server.Start() }()

	var metricsServer *api.Server
	if cfg.MetricsEnabled {
		metricsServer = api.NewMetricsServer(cfg, log, mgr.Handler())
		go func() { errs <- metricsServer.Start() }()
	}

	log.Info("API server started successfully")
	fmt.Printf("\n✅ Server running on http://localhost:%s\n", cfg.Port)
	if metricsServer != nil {
		fmt.Printf("   Metrics on http://localhost:%s/metrics\n", cfg.MetricsPort)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal or a listener failure
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errs:
		if err != nil {
			log.WithError(err).Error("Server stopped unexpectedly")
		}
	}

	log.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	cancel()
	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("Metrics server shutdown failed")
		}
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
