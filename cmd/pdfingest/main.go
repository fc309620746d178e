// Command pdfingest stages, enhances, and indexes a corpus of research-paper
// PDFs: a relational catalog, a work-queue-driven robot runtime, and an
// Elasticsearch search projection behind a versioned alias.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/ammons-datalabs/adl-pdf-ingest-phd/pkg/config"
	"github.com/ammons-datalabs/adl-pdf-ingest-phd/pkg/database"
	"github.com/ammons-datalabs/adl-pdf-ingest-phd/pkg/search"
	"github.com/ammons-datalabs/adl-pdf-ingest-phd/pkg/version"
)

// app holds the shared collaborators every subcommand needs, wired once in
// rootCmd's PersistentPreRunE.
type app struct {
	cfg    config.Config
	db     *database.Client
	search *search.Client
}

var (
	current app
	envFile string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "pdfingest",
	Short:   "Ingest, enhance, and index a corpus of research-paper PDFs",
	Version: version.Full(),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup(cmd.Context())
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return teardown()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Path to a .env file (defaults to ./.env if present)")
	rootCmd.SetVersionTemplate(fmt.Sprintf("%s\n", version.Full()))

	rootCmd.AddCommand(initDBCmd)
	rootCmd.AddCommand(initESCmd)
	rootCmd.AddCommand(stageCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(queueMetadataCmd)
	rootCmd.AddCommand(runRobotCmd)
	rootCmd.AddCommand(syncESCmd)
	rootCmd.AddCommand(esStatusCmd)
	rootCmd.AddCommand(esMigrateCmd)
	rootCmd.AddCommand(esRollbackCmd)
	rootCmd.AddCommand(esCleanupCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(grepCmd)
	rootCmd.AddCommand(venuesCmd)
}

// setup loads configuration and connects the database and search client.
// Connecting the database also applies any pending schema migrations, so
// every subcommand (init-db included) starts from a migrated schema.
func setup(ctx context.Context) error {
	config.LoadEnv(envFile)

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	current.cfg = cfg

	db, err := database.NewClient(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	current.db = db

	sc, err := search.NewClient(search.Config{Addresses: cfg.ESAddresses(), Alias: cfg.ESIndex})
	if err != nil {
		return fmt.Errorf("new search client: %w", err)
	}
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("parse REDIS_URL: %w", err)
		}
		sc = sc.WithCache(redis.NewClient(opts))
	}
	current.search = sc

	slog.Info("pdfingest starting", "version", version.Full())
	return nil
}

func teardown() error {
	if current.db != nil {
		return current.db.Close()
	}
	return nil
}

func sqlxDB() *sqlx.DB { return current.db.DB }
