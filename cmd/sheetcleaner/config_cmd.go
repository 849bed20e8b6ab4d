package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/David-Botos/sheet-cleaner/pkg/config"
)

var (
	showYAML  bool
	initForce bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or create the cleaning policy file",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective cleaning policy",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		pf := config.LoadPolicyFile(cfg.PolicyPath, logger)
		return config.EncodePolicyFile(cmd.OutOrStdout(), pf, showYAML)
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write the default cleaning policy to a file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfg.PolicyPath
		if len(args) == 1 {
			path = args[0]
		}

		if _, err := os.Stat(path); err == nil && !initForce {
			return fmt.Errorf("%s already exists, use --force to overwrite", path)
		}

		if err := config.SavePolicyFile(path, config.DefaultPolicyFile()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote default policy to %s\n", path)
		return nil
	},
}

func init() {
	configShowCmd.Flags().BoolVar(&showYAML, "yaml", false, "Print as YAML instead of JSON")
	configInitCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite an existing file")

	configCmd.AddCommand(configShowCmd, configInitCmd)
}
