package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/A1X6/saaschat/pkg/config"
	"github.com/A1X6/saaschat/pkg/store"
)

// The billing-cycle resets the hosted version runs from cron, exposed as
// commands so any scheduler can drive them.
func newResetCmd() *cobra.Command {
	var (
		configPath string
		userID     string
	)

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Billing-cycle resets for credits and free tokens",
	}

	openStore := func() (*store.Store, error) {
		cfg := config.Default()
		if configPath != "" {
			var err error
			cfg, err = config.Load(configPath)
			if err != nil {
				return nil, err
			}
		}
		return store.New(cfg.DBPath)
	}

	creditsCmd := &cobra.Command{
		Use:   "credits",
		Short: "Restore credit balances to their allocated amounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore()
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			ctx := context.Background()
			if userID != "" {
				if err := st.ResetCredits(ctx, userID); err != nil {
					return err
				}
				fmt.Printf("reset credits for %s\n", userID)
				return nil
			}
			n, err := st.ResetAllCredits(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("reset credits for %d active subscribers\n", n)
			return nil
		},
	}

	freeTokensCmd := &cobra.Command{
		Use:   "free-tokens",
		Short: "Zero free-token usage counters",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore()
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			ctx := context.Background()
			if userID != "" {
				if err := st.ResetFreeTokens(ctx, userID); err != nil {
					return err
				}
				fmt.Printf("reset free tokens for %s\n", userID)
				return nil
			}
			n, err := st.ResetAllFreeTokens(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("reset free tokens for %d accounts\n", n)
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file")
	cmd.PersistentFlags().StringVar(&userID, "user", "", "limit to one user id")
	cmd.AddCommand(creditsCmd, freeTokensCmd)
	return cmd
}
