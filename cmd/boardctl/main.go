// Command boardctl imports Figma designs into board documents and renders
// boards to images from the command line.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"vectorboard/internal/config"
)

const version = "0.3.0"

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "boardctl",
	Short: "Import, inspect and render vector boards",
	Long: `boardctl works on the same documents as the Vectorboard desktop app.
It converts Figma files into board JSON and rasterizes boards to PNG or JPEG.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", config.DefaultPath(), "Path to config.yaml")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		red.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the config file, falling back to defaults with a warning.
func loadConfig() config.Config {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		(&cliLogger{}).Warnf("%v (using defaults)", err)
	}
	return cfg
}
