package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/menta2k/docblur/internal/config"
	"github.com/menta2k/docblur/internal/utils"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var (
	configForce  bool
	configGlobal bool
)

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write the default configuration as YAML",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "docblur.yaml"
		if configGlobal {
			path = config.GetConfigPath()
		}
		if len(args) == 1 {
			path = args[0]
		}

		if utils.FileExists(path) && !configForce {
			return fmt.Errorf("%s already exists, use --force to overwrite", path)
		}
		if err := config.WriteDefault(path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := config.New(cfgFile)
		if err != nil {
			return err
		}
		cfg, err := config.Parse(v)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if used := v.ConfigFileUsed(); used != "" {
			fmt.Fprintf(out, "# from %s\n", used)
		}
		data, err := config.Marshal(cfg)
		if err != nil {
			return err
		}
		_, err = out.Write(data)
		return err
	},
}

func init() {
	configInitCmd.Flags().BoolVarP(&configForce, "force", "f", false, "overwrite an existing file")
	configInitCmd.Flags().BoolVar(&configGlobal, "global", false, "write to ~/.docblur/docblur.yaml")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
}
