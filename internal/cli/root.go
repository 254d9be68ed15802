package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/robodb/internal/wire"
)

// BindGlobalFlags adds the flags every command shares and wires their
// lifecycle: configuration before the command, shutdown after it.
func BindGlobalFlags(root *cobra.Command) {
	var (
		configDir string
		logLevel  string
	)

	root.PersistentFlags().StringVar(&configDir, "config-dir", "", "Configuration directory (default ~/.robodb)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level override: debug, info, warn, error")

	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		wire.Configure(configDir, logLevel)
	}
	root.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		return wire.Shutdown()
	}
}

// getApp returns the initialized application, opening the database on first use.
func getApp() (*wire.App, error) {
	return wire.Get()
}
