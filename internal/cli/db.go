package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/robodb/internal/db"
	"github.com/example/robodb/internal/wire"
)

// DBCmd returns the db command group for schema diagnostics and maintenance.
func DBCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Inspect and maintain the database",
	}

	cmd.AddCommand(dbInfoCmd())
	cmd.AddCommand(dbCheckCmd())
	cmd.AddCommand(dbVersionCmd())
	cmd.AddCommand(dbResetCmd())
	return cmd
}

func dbInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Print the live schema and an integrity report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp()
			if err != nil {
				return err
			}
			return a.DebugAdapter(cmd.OutOrStdout()).Info(context.Background())
		},
	}
}

func dbCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify the schema matches its stored version",
		Long:  "Verify the schema matches its stored version. Exits non-zero when columns are missing.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp()
			if err != nil {
				return err
			}
			return a.DebugAdapter(cmd.OutOrStdout()).Check(context.Background())
		},
	}
}

func dbVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the stored schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp()
			if err != nil {
				return err
			}
			return a.DebugAdapter(cmd.OutOrStdout()).Version(context.Background())
		},
	}
}

func dbResetCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete the database and recreate it empty",
		Long: `Delete the database file and recreate it with the latest schema.

This command:
1. Deletes the database file and its journal files
2. Creates a fresh database and runs every migration from version 0

All robots are lost. Also works when the current file cannot be opened.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			out := cmd.OutOrStdout()

			cfg, err := wire.LoadConfig()
			if err != nil {
				return err
			}
			path := cfg.Database.Path

			// Confirmation unless --force
			if !force {
				fmt.Fprintf(out, "This will delete and recreate: %s\n", path)
				fmt.Fprint(out, "Continue? [y/N] ")
				response, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				response = strings.TrimSpace(response)
				if response != "y" && response != "Y" {
					fmt.Fprintln(out, "Aborted.")
					return nil
				}
			}

			a, err := getApp()
			if err == nil {
				if err := a.Handle.Reset(ctx); err != nil {
					return fmt.Errorf("failed to reset database: %w", err)
				}
			} else {
				// The file could not be opened at all; remove it and start over.
				if err := db.Destroy(path); err != nil {
					return err
				}
				h, err := db.Open(ctx, path)
				if err != nil {
					return fmt.Errorf("failed to create database: %w", err)
				}
				h.Close()
			}

			fmt.Fprintf(out, "✓ Deleted %s\n", path)
			fmt.Fprintf(out, "✓ Created fresh database with schema version %d\n", db.LatestVersion())
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip confirmation prompt")
	return cmd
}
