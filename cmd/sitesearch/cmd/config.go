package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Aman-CERP/sitesearch/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage sitesearch configuration",
		Long: `Manage the project configuration file.

Configuration precedence (lowest to highest):
  1. Hardcoded defaults
  2. User config (~/.config/sitesearch/config.yaml)
  3. Project config (.sitesearch.yaml, .sitesearch.yml or .sitesearch.toml)
  4. Environment variables (SITESEARCH_*)
  5. Command flags`,
		Example: `  # Create .sitesearch.yaml in the current directory
  sitesearch config init --language en,fr --out-dir public

  # Show effective configuration
  sitesearch config show`,
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigPathCmd())

	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var (
		flags siteFlags
		force bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create .sitesearch.yaml",
		Long: `Create a project configuration file with defaults, seeded from any
site flags given. An existing file is kept unless --force is set, in which
case it is backed up first.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := flags.apply(cmd, config.NewConfig())
			if err != nil {
				return err
			}
			return runConfigInit(cmd, cfg, force)
		},
	}

	flags.bind(cmd)
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing configuration (a backup is kept)")

	return cmd
}

func runConfigInit(cmd *cobra.Command, cfg *config.Config, force bool) error {
	out := newOutput(cmd)

	dir := configDir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get current directory: %w", err)
		}
		dir = wd
	}

	path := filepath.Join(dir, ".sitesearch.yaml")
	if existing := config.ProjectConfigPath(dir); existing != "" {
		if !force {
			out.Warning("Project configuration already exists")
			out.KeyValue("Location", existing)
			out.Status("", "Use --force to overwrite it (a backup is kept)")
			return nil
		}
		backup, err := config.BackupConfig(existing)
		if err != nil {
			return err
		}
		if backup != "" {
			out.KeyValue("Backup", backup)
		}
		path = existing
		if filepath.Ext(existing) == ".toml" {
			// Written as YAML, so the old TOML file must not shadow it.
			if err := os.Remove(existing); err != nil {
				return fmt.Errorf("failed to remove %s: %w", existing, err)
			}
			path = filepath.Join(dir, ".sitesearch.yaml")
		}
	}

	if err := cfg.WriteYAML(path); err != nil {
		return err
	}
	out.Successf("Created %s", path)
	out.Status("", "Run 'sitesearch config show' to verify")
	return nil
}

func newConfigShowCmd() *cobra.Command {
	var (
		jsonOutput bool
		source     string
	)

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show effective configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var cfg *config.Config
			switch source {
			case "merged":
				loaded, err := requireConfig()
				if err != nil {
					return err
				}
				cfg = loaded
			case "defaults":
				cfg = config.NewConfig()
			default:
				return fmt.Errorf("invalid source: %s (use: merged, defaults)", source)
			}

			if jsonOutput {
				data, err := json.MarshalIndent(cfg, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to marshal config: %w", err)
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return err
			}
			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().StringVar(&source, "source", "merged", "Config source: merged, defaults")

	return cmd
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print configuration file paths",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := newOutput(cmd)
			out.KeyValue("User", config.GetUserConfigPath())
			dir, err := projectDir()
			if err != nil {
				return err
			}
			if path := config.ProjectConfigPath(dir); path != "" {
				out.KeyValue("Project", path)
			} else {
				out.KeyValue("Project", "(none)")
			}
			return nil
		},
	}
}
