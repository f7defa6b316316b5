package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/A1X6/saaschat/pkg/config"
	"github.com/A1X6/saaschat/pkg/entitlement"
	"github.com/A1X6/saaschat/pkg/store"
)

func newBudgetCmd() *cobra.Command {
	var (
		configPath string
		userID     string
	)

	cmd := &cobra.Command{
		Use:   "budget",
		Short: "Show a user's credit balance and free-token allowance",
		RunE: func(cmd *cobra.Command, args []string) error {
			if userID == "" {
				return fmt.Errorf("--user is required")
			}

			cfg := config.Default()
			if configPath != "" {
				var err error
				cfg, err = config.Load(configPath)
				if err != nil {
					return err
				}
			}

			st, err := store.New(cfg.DBPath)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			acct, err := st.GetAccount(context.Background(), userID)
			if err != nil {
				return err
			}

			status := entitlement.Status(acct)
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "TIER\t%s\n", status.Tier)
			fmt.Fprintf(w, "CREDITS BALANCE\t$%.2f\n", status.CreditsBalance)
			fmt.Fprintf(w, "CREDITS ALLOCATED\t$%.2f\n", status.CreditsAllocated)
			fmt.Fprintf(w, "CREDITS USED\t$%.2f\n", status.CreditsUsed)
			fmt.Fprintf(w, "FREE TOKENS USED\t%d\n", status.FreeTokensUsed)
			fmt.Fprintf(w, "FREE TOKENS LIMIT\t%d\n", status.FreeTokensLimit)
			fmt.Fprintf(w, "FREE TOKENS REMAINING\t%d\n", status.FreeTokensRemaining)
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to config file")
	cmd.Flags().StringVar(&userID, "user", "", "user id")
	return cmd
}
