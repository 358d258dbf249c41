package main

import (
	"fmt"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/ShayCichocki/heavy/internal/config"
)

var (
	configProject bool
	configKeys    bool
)

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Manage configuration",
	Long: `View or modify heavy configuration.

Without arguments (or with 'show'), displays the effective configuration.
With one argument (key), displays the value for that key.
With two arguments (key value), sets the configuration value.

Configuration is stored at ~/.config/heavy/config.yaml
Project-specific overrides can be placed in .heavy.yaml (use --project).`,
	Args: cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if configKeys {
			for _, k := range config.Keys() {
				fmt.Fprintln(out, k)
			}
			return nil
		}

		switch {
		case len(args) == 0 || (len(args) == 1 && args[0] == "show"):
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return displayAllConfig(cmd, cfg)
		case len(args) == 1:
			return displayConfigKey(cmd, args[0])
		default:
			return setConfigKey(cmd, args[0], args[1])
		}
	},
}

func init() {
	configCmd.Flags().BoolVar(&configProject, "project", false, "write to ./.heavy.yaml instead of the user config")
	configCmd.Flags().BoolVar(&configKeys, "keys", false, "list every configuration key")
}

// displayAllConfig prints the effective configuration as YAML with the key masked.
func displayAllConfig(cmd *cobra.Command, cfg *config.Config) error {
	shown := *cfg
	shown.Provider.APIKey = maskedKey(cfg)

	data, err := yaml.Marshal(&shown)
	if err != nil {
		return fmt.Errorf("rendering config: %w", err)
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "# user config:    %s\n", config.GetUserConfigPath())
	if p := config.GetProjectConfigPath(); p != "" {
		fmt.Fprintf(out, "# project config: %s\n", p)
	}
	fmt.Fprintf(out, "# api key source: %s\n", config.GetAPIKeySource(cfg))
	_, err = out.Write(data)
	return err
}

// displayConfigKey prints a single configuration value.
func displayConfigKey(cmd *cobra.Command, key string) error {
	if key == "provider.api_key" {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), maskedKey(cfg))
		return nil
	}

	value, err := config.Lookup(key)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), value)
	return nil
}

// setConfigKey sets a configuration value in the chosen config file.
func setConfigKey(cmd *cobra.Command, key, value string) error {
	path := config.GetUserConfigPath()
	switch {
	case cfgFile != "":
		path = cfgFile
	case configProject:
		path = filepath.Join(".", ".heavy.yaml")
	}

	if err := config.SetValue(path, key, value); err != nil {
		return err
	}

	shown := value
	if key == "provider.api_key" {
		shown = config.MaskAPIKey(value)
	}
	printStatus(cmd.OutOrStdout(), "✓", fmt.Sprintf("Set %s = %s in %s", key, shown, path), color.FgGreen)
	return nil
}
