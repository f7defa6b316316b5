package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	root := &cobra.Command{
		Use:     "saasctl",
		Short:   "saaschat — AI chat backend with token budgets and credits",
		Version: version,
	}

	root.AddCommand(
		newServeCmd(),
		newModelsCmd(),
		newUsageCmd(),
		newBudgetCmd(),
		newAccountCmd(),
		newResetCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
