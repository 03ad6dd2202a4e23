package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/joshdurbin/js4hs-edge/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "js4hs-edge",
	Short: "Job board edge service with QR check-in links",
	Long:  "Serves job listings behind an in-process response cache and issues and validates time-limited QR check-in links",
}

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the server",
	RunE:  runServer,
}

func init() {
	serverCmd.Flags().StringP("port", "p", "8080", "Server port (PORT)")
	serverCmd.Flags().String("db-driver", config.DriverSQLite, "Database driver: sqlite or postgres (DB_DRIVER)")
	serverCmd.Flags().String("db-path", "jobs.db", "SQLite database file path (DB_PATH)")
	serverCmd.Flags().String("database-url", "", "Postgres connection string (DATABASE_URL)")
	serverCmd.Flags().Duration("cache-ttl", 5*time.Minute, "Response cache TTL, whole seconds (CACHE_TTL)")
	serverCmd.Flags().Duration("sweep-interval", 24*time.Hour, "Interval between full cache sweeps (CACHE_SWEEP_INTERVAL)")
	serverCmd.Flags().Duration("qr-max-age", 60*time.Second, "How long an issued QR link stays valid (QR_MAX_AGE)")
	serverCmd.Flags().String("env-file", ".env", "Optional .env file loaded before reading the environment")
	serverCmd.Flags().BoolP("verbose", "v", false, "Enable verbose logging (request and error bodies)")

	rootCmd.AddCommand(serverCmd, newClientCmd())
}

func runServer(cmd *cobra.Command, args []string) error {
	envFile, _ := cmd.Flags().GetString("env-file")

	cfg, err := config.Load(envFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	applyFlags(cmd, cfg)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger().Level(cfg.LogLevel())
	logger.Info().
		Str("port", cfg.Server.Port).
		Str("env", cfg.Environment).
		Dur("cache_ttl", cfg.Cache.TTL).
		Dur("qr_max_age", cfg.Links.MaxAge).
		Msg("starting server")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.run(ctx); err != nil {
		return err
	}

	logger.Info().Msg("server stopped")
	return nil
}

// applyFlags overrides environment values with flags set on the command line
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()

	if flags.Changed("port") {
		cfg.Server.Port, _ = flags.GetString("port")
	}
	if flags.Changed("db-driver") {
		cfg.Database.Driver, _ = flags.GetString("db-driver")
	}
	if flags.Changed("db-path") {
		cfg.Database.Path, _ = flags.GetString("db-path")
	}
	if flags.Changed("database-url") {
		cfg.Database.URL, _ = flags.GetString("database-url")
	}
	if flags.Changed("cache-ttl") {
		cfg.Cache.TTL, _ = flags.GetDuration("cache-ttl")
	}
	if flags.Changed("sweep-interval") {
		cfg.Cache.SweepInterval, _ = flags.GetDuration("sweep-interval")
	}
	if flags.Changed("qr-max-age") {
		cfg.Links.MaxAge, _ = flags.GetDuration("qr-max-age")
	}
	if flags.Changed("verbose") {
		cfg.Logging.Verbose, _ = flags.GetBool("verbose")
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
