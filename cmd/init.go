package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/subhasish12345/SHOPSAGE/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize shopsage configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to choose a model provider, quality tier and server settings, and writes them to the config file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.RunWizard(cfgFile)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (provider %s, model %s)\n", cfgFile, cfg.Provider, cfg.Model)
		if env := config.APIKeyEnvVar(cfg.Provider); env != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "Set %s in your environment or a .env file before invoking flows.\n", env)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
