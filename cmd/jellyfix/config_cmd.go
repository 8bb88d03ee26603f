package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/Nomadcxx/jellyfix/internal/config"
	"github.com/Nomadcxx/jellyfix/internal/paths"
	"github.com/Nomadcxx/jellyfix/internal/ui"
	"github.com/spf13/cobra"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage jellyfix configuration",
		Long: `Commands for managing jellyfix configuration.

The config file is stored at: ~/.config/jellyfix/config.json
Every key can be overridden with a JELLYFIX_ environment variable, for
example JELLYFIX_ORGANIZE_DRY_RUN=false. TMDB_API_KEY is used when
metadata.tmdb_api_key is empty.

Examples:
  jellyfix config init              # Create default config file
  jellyfix config show              # Display current configuration
  jellyfix config path              # Show config file path`,
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigPathCmd())

	return cmd
}

func configPath() (string, error) {
	if cfgFile != "" {
		return cfgFile, nil
	}
	return paths.ConfigPath()
}

func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath()
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("config already exists at %s (use --force to overwrite)", path)
			}

			if err := config.DefaultConfig().Save(path); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			ui.SuccessMsg("Created config file: %s", path)
			fmt.Fprintln(ui.Output(), "\nNext steps:")
			fmt.Fprintln(ui.Output(), "  1. Set metadata.tmdb_api_key (or TMDB_API_KEY) for title lookups")
			fmt.Fprintln(ui.Output(), "  2. Review subtitles.kept_languages")
			fmt.Fprintln(ui.Output(), "  3. Set organize.dry_run to false once the plans look right")
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing config file")

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			path, err := configPath()
			if err != nil {
				return err
			}

			shown := *cfg
			if shown.Metadata.TMDBAPIKey != "" {
				shown.Metadata.TMDBAPIKey = maskSecret(shown.Metadata.TMDBAPIKey)
			}
			data, err := json.MarshalIndent(shown, "", "    ")
			if err != nil {
				return err
			}

			if _, err := os.Stat(path); err != nil {
				ui.InfoMsg("No config file at %s, showing defaults", path)
			} else {
				ui.InfoMsg("Config file: %s", path)
			}
			fmt.Fprintln(ui.Output(), string(data))
			return nil
		},
	}
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show config file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath()
			if err != nil {
				return err
			}
			fmt.Fprintln(ui.Output(), path)
			return nil
		},
	}
}

func maskSecret(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	return "****" + s[len(s)-4:]
}
