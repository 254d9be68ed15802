package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/example/robodb/internal/config"
	"github.com/example/robodb/internal/wire"
)

// InitCmd returns the init command
func InitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize the robodb database",
		Long: `Initialize the robodb database with the latest schema and write a
default config.yaml to the config directory if none exists.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			out := cmd.OutOrStdout()

			dir, err := wire.ConfigDir()
			if err != nil {
				return err
			}

			written, err := writeDefaultConfig(dir)
			if err != nil {
				return err
			}
			if written {
				fmt.Fprintf(out, "✓ Config written to %s\n", filepath.Join(dir, config.FileName))
			}

			a, err := getApp()
			if err != nil {
				return err
			}

			version, err := a.Handle.Version(ctx)
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "✓ Database ready at %s (schema version %d)\n", a.Handle.Path(), version)
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Next steps:")
			fmt.Fprintln(out, "  robodb robot create --name R2D2 --label Astromech --year 1977 --type service")
			fmt.Fprintln(out, "  robodb robot list")

			return nil
		},
	}
}

// writeDefaultConfig saves the default configuration for dir unless a config
// file is already there. Flag and environment overrides are not persisted.
func writeDefaultConfig(dir string) (bool, error) {
	if configExists(dir) {
		return false, nil
	}
	cfg, err := config.Defaults(dir)
	if err != nil {
		return false, err
	}
	if err := config.Save(dir, cfg); err != nil {
		return false, err
	}
	return true, nil
}

func configExists(dir string) bool {
	for _, name := range []string{config.FileName, "config.yml", "config.json"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}
