package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dukerupert/larder/internal/push"
)

func newVAPIDKeysCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "vapid-keys",
		Short: "Generate a VAPID key pair for web push",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pub, priv, err := push.GenerateVAPIDKeys()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "LARDER_VAPID_PUBLIC_KEY=%s\nLARDER_VAPID_PRIVATE_KEY=%s\n", pub, priv)
			return nil
		},
	}
}
