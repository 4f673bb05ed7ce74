package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"vectorboard/internal/editor"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of boardctl",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("boardctl version %s (document format %s)\n", version, editor.DocumentVersion)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
