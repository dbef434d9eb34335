package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/subhasish12345/SHOPSAGE/internal/mcp"
)

// Version is set via ldflags at build time.
var Version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of shopsage",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "shopsage %s\n", Version)
	},
}

func init() {
	mcp.Version = Version
	rootCmd.AddCommand(versionCmd)
}
