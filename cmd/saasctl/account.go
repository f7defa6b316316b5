package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/A1X6/saaschat/pkg/config"
	"github.com/A1X6/saaschat/pkg/models"
	"github.com/A1X6/saaschat/pkg/store"
)

func newAccountCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "account",
		Short: "Manage user accounts",
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

	var (
		createName   string
		createStatus string
		createLimit  int64
	)
	createCmd := &cobra.Command{
		Use:   "create <user-id>",
		Short: "Create an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore()
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			err = st.CreateAccount(context.Background(), models.Account{
				ID:                 args[0],
				Name:               createName,
				SubscriptionStatus: createStatus,
				FreeTokensLimit:    createLimit,
			})
			if err != nil {
				return err
			}
			fmt.Printf("created account %s\n", args[0])
			return nil
		},
	}
	createCmd.Flags().StringVar(&createName, "name", "", "display name")
	createCmd.Flags().StringVar(&createStatus, "status", "", "subscription status (active, trialing, or empty)")
	createCmd.Flags().Int64Var(&createLimit, "free-tokens-limit", 0, "free token allowance (0 = default)")

	var grantAmount float64
	grantCmd := &cobra.Command{
		Use:   "grant <user-id>",
		Short: "Set the credit balance and allocation, as on plan activation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore()
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			if err := st.SetCredits(context.Background(), args[0], grantAmount); err != nil {
				return err
			}
			fmt.Printf("granted $%.2f credits to %s\n", grantAmount, args[0])
			return nil
		},
	}
	grantCmd.Flags().Float64Var(&grantAmount, "amount", 0, "credit amount in dollars")

	var status string
	statusCmd := &cobra.Command{
		Use:   "set-status <user-id>",
		Short: "Update the subscription status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore()
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			if err := st.SetSubscriptionStatus(context.Background(), args[0], status); err != nil {
				return err
			}
			fmt.Printf("set %s status to %q\n", args[0], status)
			return nil
		},
	}
	statusCmd.Flags().StringVar(&status, "status", "", "subscription status (active, trialing, or empty)")

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file")
	cmd.AddCommand(createCmd, grantCmd, statusCmd)
	return cmd
}
