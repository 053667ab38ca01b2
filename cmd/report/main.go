package main

import (
	"os"

	"github.com/spf13/cobra"
)

func newRootCmd(open openFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "report",
		Short:        "Export RingCentral call analytics reports",
		Long:         "Builds the dashboard's CSV, Excel or PDF export offline, reading credentials from the same env as the API.",
		SilenceUsage: true,
	}
	cmd.AddCommand(newExportCmd(open))
	return cmd
}

func execute(cmd *cobra.Command) int {
	if err := cmd.Execute(); err != nil {
		return 1
	}
	return 0
}

func main() {
	os.Exit(execute(newRootCmd(openFromEnv)))
}
