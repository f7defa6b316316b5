package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/A1X6/saaschat/pkg/config"
	"github.com/A1X6/saaschat/pkg/store"
)

func newUsageCmd() *cobra.Command {
	var (
		configPath string
		userID     string
		since      string
	)

	cmd := &cobra.Command{
		Use:   "usage",
		Short: "Show token usage and cost per model for a user",
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

			sinceTime := time.Time{}
			if since != "" {
				t, err := time.Parse("2006-01-02", since)
				if err != nil {
					return fmt.Errorf("invalid --since date (use YYYY-MM-DD): %w", err)
				}
				sinceTime = t
			}

			summaries, err := st.UsageSummary(context.Background(), userID, sinceTime)
			if err != nil {
				return err
			}
			if len(summaries) == 0 {
				fmt.Println("No usage recorded.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "MODEL\tREQUESTS\tINPUT\tOUTPUT\tTOTAL\tCOST")
			for _, u := range summaries {
				fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\t$%.4f\n",
					u.Model, u.RequestCount, u.InputTokens, u.OutputTokens, u.TotalTokens, u.TotalCost)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to config file")
	cmd.Flags().StringVar(&userID, "user", "", "user id")
	cmd.Flags().StringVar(&since, "since", "", "start date (YYYY-MM-DD)")
	return cmd
}
