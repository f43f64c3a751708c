package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dukerupert/larder/internal/catalog"
	"github.com/dukerupert/larder/internal/store"
)

func newSeedCmd(a *app) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the starter ingredient catalog into an empty database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := a.openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			svc := catalog.NewService(store.NewIngredientStore(db), a.logger.With("component", "catalog"))
			var n int
			if file != "" {
				f, err := os.Open(file)
				if err != nil {
					return fmt.Errorf("open seed file: %w", err)
				}
				defer f.Close()
				n, err = svc.SeedFrom(cmd.Context(), f)
				if err != nil {
					return err
				}
			} else if n, err = svc.Seed(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "inserted %d ingredients\n", n)
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "YAML ingredient list to load instead of the built-in one")
	return cmd
}
