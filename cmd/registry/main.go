package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "arqut-registry",
	Short: "Arqut Registry - service catalog and dependency tracking",
	Long: `Arqut Registry is a self-contained service registry that provides:
- Service catalog with per-environment deployment state
- Dependency catalog and service-to-dependency bindings
- Service-to-service dependency tracking
- Dependency graph and dashboard projections over a REST API`,
	Run: func(cmd *cobra.Command, args []string) {
		// Default: run server
		runServer()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
