package main

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xavierca1/ligue-imoveis/internal/config"
	"github.com/xavierca1/ligue-imoveis/internal/infra/database"
	"github.com/xavierca1/ligue-imoveis/internal/infra/logger"
)

var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:           "propctl",
		Short:         "Administrative tasks for the Ligue Imóveis backend",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(retryNotificationsCmd())
	rootCmd.AddCommand(createAdminCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// env is what every subcommand needs: configuration, a logger and the
// database pool. Callers must call close.
type env struct {
	cfg *config.Config
	log *zap.Logger
	db  *sql.DB
}

func openEnv() (*env, error) {
	cfg := config.Load()
	log, err := logger.New(cfg.LogLevel, "console", "propctl")
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	db, err := database.NewDBConnection(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	return &env{cfg: cfg, log: log, db: db}, nil
}

func (e *env) close() {
	e.db.Close()
	e.log.Sync()
}
