package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/subhasish12345/SHOPSAGE/internal/prompt"
)

var flowsCmd = &cobra.Command{
	Use:   "flows",
	Short: "Inspect registered decision flows",
}

var flowsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the registered flows",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		reg, err := buildRegistry(cfg)
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tINPUTS\tOUTPUTS\tDESCRIPTION")
		for _, def := range reg.List() {
			fmt.Fprintf(tw, "%s\t%d\t%d\t%s\n", def.Name, def.Input.Len(), def.Output.Len(), def.Description)
		}
		return tw.Flush()
	},
}

var describeJSON bool

var flowsDescribeCmd = &cobra.Command{
	Use:   "describe <name>",
	Short: "Show a flow's input and output fields and its prompt template",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		reg, err := buildRegistry(cfg)
		if err != nil {
			return err
		}
		def, err := reg.Get(args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if describeJSON {
			return printJSON(out, def)
		}
		fmt.Fprintf(out, "%s\n  %s\n\n", def.Name, def.Description)
		fmt.Fprintf(out, "Input:\n%s\n\n", prompt.Shape(def.Input).Describe())
		fmt.Fprintf(out, "Output:\n%s\n\n", prompt.Shape(def.Output).Describe())
		fmt.Fprintf(out, "Template:\n%s\n", def.Template)
		return nil
	},
}

func init() {
	flowsDescribeCmd.Flags().BoolVar(&describeJSON, "json", false, "print the definition as JSON")
	flowsCmd.AddCommand(flowsListCmd, flowsDescribeCmd)
	rootCmd.AddCommand(flowsCmd)
}

