package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/robodb/internal/cli"
	"github.com/example/robodb/internal/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "robodb",
		Short:   "robodb - local robot catalogue",
		Version: version.String(),
		Long: `robodb keeps a catalogue of robots in a local SQLite database.
It creates, searches, archives, exports and imports robots, and migrates the
database schema automatically on every start.`,
		SilenceUsage: true,
	}

	cli.BindGlobalFlags(rootCmd)

	// Add subcommands
	rootCmd.AddCommand(cli.InitCmd())
	rootCmd.AddCommand(cli.RobotCmd())
	rootCmd.AddCommand(cli.ExportCmd())
	rootCmd.AddCommand(cli.ImportCmd())
	rootCmd.AddCommand(cli.DBCmd())

	// Developer tools
	rootCmd.AddCommand(cli.DevCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
