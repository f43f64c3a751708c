package main

import (
	"database/sql"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/dukerupert/larder/internal/config"
	"github.com/dukerupert/larder/internal/database"
	"github.com/dukerupert/larder/internal/logging"
)

// app carries state shared by every command once the root has loaded config.
type app struct {
	envFile string
	dbPath  string

	cfg    config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "larder",
		Short: "Household food inventory and expiry tracking",
		Long: `Larder tracks what is in the fridge, pantry and freezer, flags food that is
about to expire, and keeps shopping lists.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(a.envFile)
			if err != nil {
				return err
			}
			if a.dbPath != "" {
				cfg.DBPath = a.dbPath
			}
			a.cfg = cfg
			a.logger = logging.New(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
			slog.SetDefault(a.logger)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	root.PersistentFlags().StringVar(&a.dbPath, "db", "", "SQLite database path (overrides LARDER_DB_PATH)")

	root.AddCommand(
		newServeCmd(a),
		newSeedCmd(a),
		newBackupCmd(a),
		newRestoreCmd(a),
		newVAPIDKeysCmd(),
	)
	return root
}

func (a *app) openDB() (*sql.DB, error) {
	return database.Open(a.cfg.DBPath)
}
