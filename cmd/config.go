package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zjrosen/regform/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the regform config file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	Args:  cobra.NoArgs,
	// The existing file may be invalid; that is what init is for.
	PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
	RunE:              runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as YAML",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		data, err := config.Marshal(cfg)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

var configSetEndpointCmd = &cobra.Command{
	Use:               "set-endpoint URL",
	Short:             "Save the registration endpoint to the config file",
	Args:              cobra.ExactArgs(1),
	PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath()
		if err := config.SaveEndpoint(path, args[0]); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "endpoint saved to %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd, configShowCmd, configSetEndpointCmd)

	configInitCmd.Flags().Bool("force", false, "overwrite an existing config file")
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	force, _ := cmd.Flags().GetBool("force")
	path := cfgFile
	if path == "" {
		path = defaultConfigPath
	}
	return writeConfigFile(cmd, path, force)
}

func writeConfigFile(cmd *cobra.Command, path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("config file %s already exists (use --force to overwrite)", path)
	}
	if err := config.WriteDefaultConfig(path); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
	return nil
}
