package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dukerupert/larder/internal/backup"
)

func (a *app) backupManager() (*backup.Manager, error) {
	if err := a.cfg.ValidateBackup(); err != nil {
		return nil, err
	}
	return backup.NewManager(a.cfg.Backup, a.logger.With("component", "backup")), nil
}

func newBackupCmd(a *app) *cobra.Command {
	var keep int
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Upload an encrypted snapshot of the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := a.backupManager()
			if err != nil {
				return err
			}
			db, err := a.openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			key, err := m.Backup(cmd.Context(), db)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), key)

			if keep > 0 {
				removed, err := m.Prune(cmd.Context(), keep)
				if err != nil {
					return err
				}
				a.logger.Info("pruned old backups", "removed", removed, "kept", keep)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&keep, "keep", 0, "after uploading, delete all but the newest N snapshots (0 keeps all)")

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List stored snapshots, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := a.backupManager()
			if err != nil {
				return err
			}
			objects, err := m.List(cmd.Context())
			if err != nil {
				return err
			}
			for _, o := range objects {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\t%s\n", o.Key, o.Size, o.LastModified.Format("2006-01-02 15:04:05"))
			}
			return nil
		},
	})
	return cmd
}

func newRestoreCmd(a *app) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "restore <key>",
		Short: "Download, decrypt and verify a snapshot, then write it to disk",
		Long: `Restore replaces the database file with the snapshot stored under key.
Stop the server first.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.backupManager()
			if err != nil {
				return err
			}
			if out == "" {
				out = a.cfg.DBPath
			}
			if err := m.Restore(cmd.Context(), args[0], out); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "restored %s to %s\n", args[0], out)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "destination path (defaults to the configured database)")
	return cmd
}
