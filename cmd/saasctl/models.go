package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/A1X6/saaschat/pkg/config"
)

func newModelsCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "models",
		Short: "List the AI model catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			if configPath != "" {
				var err error
				cfg, err = config.Load(configPath)
				if err != nil {
					return err
				}
			}

			cat, err := loadCatalog(cfg)
			if err != nil {
				return err
			}

			def := cat.Default().ID
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tTIER\tWINDOW\tIN $/M\tOUT $/M\tCATEGORY")
			for _, m := range cat.All() {
				marker := ""
				if m.ID == def {
					marker = " (default)"
				}
				if m.IsFree() {
					fmt.Fprintf(w, "%s\t%s%s\t%s\t%d\t-\t-\t%s\n",
						m.ID, m.Name, marker, m.Tier, m.MaxTokens, m.Category)
					continue
				}
				fmt.Fprintf(w, "%s\t%s%s\t%s\t%d\t%.2f\t%.2f\t%s\n",
					m.ID, m.Name, marker, m.Tier, m.MaxTokens, m.InputPrice, m.OutputPrice, m.Category)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to config file")
	return cmd
}
