package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/ammons-datalabs/adl-pdf-ingest-phd/pkg/artifact"
	"github.com/ammons-datalabs/adl-pdf-ingest-phd/pkg/catalog"
	"github.com/ammons-datalabs/adl-pdf-ingest-phd/pkg/cleanup"
	"github.com/ammons-datalabs/adl-pdf-ingest-phd/pkg/extract"
	"github.com/ammons-datalabs/adl-pdf-ingest-phd/pkg/manifest"
	"github.com/ammons-datalabs/adl-pdf-ingest-phd/pkg/metrics"
	"github.com/ammons-datalabs/adl-pdf-ingest-phd/pkg/models"
	"github.com/ammons-datalabs/adl-pdf-ingest-phd/pkg/queue"
	"github.com/ammons-datalabs/adl-pdf-ingest-phd/pkg/robot"
)

var (
	runRobotMaxIterations int
	runRobotManifestPath  string
	runRobotHTTPPort      string
)

// runRobotCmd drives one Robot's Runtime: a named handler polling the work
// queue for a single enhancement type. With --max-iterations it runs
// bounded and exits (useful for cron-style invocation or tests); without
// it, it runs as a daemon exposing /healthz and /metrics via gin until
// SIGINT/SIGTERM.
var runRobotCmd = &cobra.Command{
	Use:       "run-robot {pdf-extractor|paperpile-sync}",
	Short:     "Run a robot runtime against the work queue",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"pdf-extractor", "paperpile-sync"},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		robotDef, err := buildRobot(args[0])
		if err != nil {
			return err
		}

		q := queue.NewStore(sqlxDB())
		c := catalog.NewStore(sqlxDB())
		w := artifact.NewStore(sqlxDB())

		registry := prometheus.NewRegistry()
		robotMetrics := metrics.NewRobot(registry)
		queueDepth := metrics.NewQueueDepth(registry)

		cfg := robot.RuntimeConfig{
			PollInterval: current.cfg.RobotPollInterval,
			PollJitter:   current.cfg.RobotPollJitter,
		}

		rt := robot.NewRuntime(robotDef, q, c, w, cfg, robotMetrics)

		if runRobotMaxIterations > 0 {
			iterations, err := rt.RunBounded(ctx, runRobotMaxIterations)
			if err != nil {
				return fmt.Errorf("run robot: %w", err)
			}
			fmt.Printf("%s: ran %d iteration(s)\n", robotDef.ID, iterations)
			return nil
		}

		cleanupSvc := cleanup.NewService(cleanup.Config{
			Interval: current.cfg.IndexCleanupInterval,
			Keep:     current.cfg.IndexCleanupKeep,
		}, current.search)

		return runDaemon(ctx, rt, registry, q, robotDef.Type, queueDepth, cleanupSvc)
	},
}

func init() {
	runRobotCmd.Flags().IntVar(&runRobotMaxIterations, "max-iterations", 0, "Run a bounded number of iterations and exit (0 = run as a daemon)")
	runRobotCmd.Flags().StringVar(&runRobotManifestPath, "manifest", "", "Path to the Paperpile CSV export (required for paperpile-sync)")
	runRobotCmd.Flags().StringVar(&runRobotHTTPPort, "http-port", "8080", "Port for the daemon's /healthz and /metrics endpoints")
}

func buildRobot(kind string) (robot.Robot, error) {
	switch kind {
	case "pdf-extractor":
		return robot.Robot{
			ID:      "pdf-extractor",
			Type:    models.EnhancementFullText,
			Handler: robot.NewExtractorHandler(extract.PDFExtractor{}),
		}, nil
	case "paperpile-sync":
		if runRobotManifestPath == "" {
			return robot.Robot{}, fmt.Errorf("run-robot paperpile-sync: --manifest is required")
		}
		return robot.Robot{
			ID:      "paperpile-sync",
			Type:    models.EnhancementPaperpileMetadata,
			Handler: robot.NewManifestSyncHandler(manifest.NewCSVSource(runRobotManifestPath)),
		}, nil
	default:
		return robot.Robot{}, fmt.Errorf("unknown robot %q (want pdf-extractor or paperpile-sync)", kind)
	}
}

// runDaemon starts rt in the background and serves /healthz and /metrics
// until the process receives SIGINT/SIGTERM, then stops rt and drains any
// in-flight handler invocation before returning. Alongside the robot
// runtime it runs a queue-depth gauge refresher and the search index
// cleanup service, so a single long-lived process keeps all three
// timers alive.
func runDaemon(ctx context.Context, rt *robot.Runtime, registry *prometheus.Registry, q *queue.Store, enhancementType models.EnhancementType, queueDepth *metrics.QueueDepth, cleanupSvc *cleanup.Service) error {
	rt.Start(ctx)

	daemonCtx, cancelDaemon := context.WithCancel(ctx)
	defer cancelDaemon()
	go refreshQueueDepth(daemonCtx, q, enhancementType, queueDepth, current.cfg.RobotPollInterval)
	cleanupSvc.Start(daemonCtx)

	router := gin.Default()
	router.GET("/healthz", func(c *gin.Context) {
		health, err := current.db.Health(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, health)
			return
		}
		c.JSON(http.StatusOK, health)
	})
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	srv := &http.Server{Addr: ":" + runRobotHTTPPort, Handler: router}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Fprintf(os.Stderr, "robot http server error: %v\n", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	rt.Stop()
	cleanupSvc.Stop()
	cancelDaemon()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// refreshQueueDepth polls the number of PENDING units for enhancementType on
// interval and reports it to queueDepth, until ctx is cancelled.
func refreshQueueDepth(ctx context.Context, q *queue.Store, enhancementType models.EnhancementType, queueDepth *metrics.QueueDepth, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	refresh := func() {
		pending, err := q.ListByStatus(ctx, []models.Status{models.StatusPending}, &enhancementType, nil)
		if err != nil {
			return
		}
		queueDepth.Set(enhancementType, float64(len(pending)))
	}

	refresh()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			refresh()
		}
	}
}
