package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/chucky-1/teadiary/internal/config"
	"github.com/chucky-1/teadiary/internal/entrypoint"
)

var (
	rootCmd = &cobra.Command{
		Use:          "teadiary",
		Short:        "Tea Diary telegram bot",
		SilenceUsage: true,
		RunE:         runStart,
	}

	startCmd = &cobra.Command{
		Use:   "start",
		Short: "Idle in maintenance mode or migrate and run the bot",
		RunE:  runStart,
	}

	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Bring the database schema up to date and exit",
		RunE:  runMigrate,
	}

	botCmd = &cobra.Command{
		Use:   "bot",
		Short: "Run the bot without migrating",
		RunE:  runBot,
	}
)

func init() {
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(botCmd)
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, os.Interrupt)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logrus.Error(err)
		cancel()
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	cfg.SetupLogging()
	return cfg, nil
}

func runStart(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	flags := entrypoint.Flags{
		Maintenance:    cfg.Maintenance(),
		SkipMigrations: cfg.SkipMigrations(),
	}
	if !flags.Maintenance {
		if err = cfg.RequireToken(); err != nil {
			return err
		}
	}
	steps := entrypoint.Steps{
		Target: migrationTarget(cfg),
		Migrate: func(ctx context.Context) error {
			return migrate(ctx, cfg)
		},
		Bot: func(ctx context.Context) error {
			return newApp(cfg, clockwork.NewRealClock()).run(ctx)
		},
	}
	return entrypoint.Run(cmd.Context(), clockwork.NewRealClock(), flags, steps)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	t := migrationTarget(cfg)
	logrus.Infof("ENV user=%s host=%s db=%s", t.User, t.Host, t.DB)
	logrus.Infof("Using DB URL: %s", t.RedactedURL)
	return migrate(cmd.Context(), cfg)
}

func runBot(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err = cfg.RequireToken(); err != nil {
		return err
	}
	return newApp(cfg, clockwork.NewRealClock()).run(cmd.Context())
}
