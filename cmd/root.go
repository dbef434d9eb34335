package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/subhasish12345/SHOPSAGE/internal/config"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "shopsage",
	Short: "Structured AI decision flows for e-commerce",
	Long: `shopsage runs structured decision flows (refund fraud detection, product
descriptions, delivery delay prediction, recommendations and campaign
optimization) against a generative model. Every input is validated against
the flow's schema before the model is called, and every reply is validated
against the output schema before it is returned.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// A missing .env is normal; variables may come from the shell.
		_ = godotenv.Load()
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultPath, "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
