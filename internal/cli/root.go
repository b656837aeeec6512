// Package cli implements the healthctl operator commands.
package cli

import (
	"github.com/smarthealth/internal/config"
	"github.com/spf13/cobra"
)

var (
	configFile   string
	outputFormat string
)

// NewRootCmd builds the healthctl command tree.
func NewRootCmd(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "healthctl",
		Short: "SmartHealth operator tool",
		Long: `healthctl inspects and maintains a SmartHealth installation: it classifies
free text offline, looks up lab reference ranges, seeds and summarises the
local health-data store and checks the model server.`,
		SilenceUsage: true,
	}

	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to a YAML config file (default: $SMARTHEALTH_CONFIG)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", formatHuman, "Output format (human, json, yaml)")

	rootCmd.AddCommand(
		newClassifyCmd(),
		newLabCmd(),
		newSeedCmd(),
		newStatsCmd(),
		newModelCheckCmd(),
		newVersionCmd(version),
	)

	return rootCmd
}

func newVersionCmd(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("healthctl version %s\n", version)
		},
	}
}

func loadConfig() (*config.Config, error) {
	if configFile != "" {
		return config.LoadFile(configFile)
	}
	return config.Load()
}
