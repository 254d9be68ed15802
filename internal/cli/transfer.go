package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/example/robodb/internal/adapters/filesystem"
	"github.com/example/robodb/internal/ports/primary"
)

// ExportCmd returns the export command
func ExportCmd() *cobra.Command {
	var (
		format   string
		compress bool
		output   string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export every robot to a JSON or YAML file",
		Long: `Export every robot, archived ones included, wrapped in a versioned envelope.

Without --output the file is written to the export directory as
robots-export-<timestamp>.<ext>. A .gz suffix on --output, or --gzip,
compresses the file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp()
			if err != nil {
				return err
			}

			return a.TransferAdapter(cmd.OutOrStdout()).Export(context.Background(), primary.ExportRequest{
				Format:   format,
				Compress: compress,
				Target:   output,
			})
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format: json or yaml (default from --output, else json)")
	cmd.Flags().BoolVarP(&compress, "gzip", "z", false, "Compress with gzip")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file path")
	return cmd
}

// ImportCmd returns the import command
func ImportCmd() *cobra.Command {
	var (
		format  string
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Import robots from an export file or stdin",
		Long: `Import robots from an export envelope or a bare array of robots.

Pass "-" (or nothing) to read standard input. Ids and timestamps in the
file are ignored; every robot gets a new id. Robots whose name already
exists, or that fail validation, are skipped.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp()
			if err != nil {
				return err
			}

			source := filesystem.StdinSource
			if len(args) == 1 {
				source = args[0]
			}

			return a.TransferAdapter(cmd.OutOrStdout()).Import(context.Background(), primary.ImportRequest{
				Source: source,
				Format: format,
			}, verbose)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "Input format: json or yaml (default from file name, else json)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "List skipped rows")
	return cmd
}
