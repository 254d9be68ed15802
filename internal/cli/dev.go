package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/example/robodb/internal/core/robot"
	"github.com/example/robodb/internal/ports/primary"
)

// DevCmd returns the dev command group for development utilities.
func DevCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dev",
		Short: "Development utilities",
	}

	cmd.AddCommand(devSeedCmd())
	return cmd
}

func devSeedCmd() *cobra.Command {
	var clear bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert a set of well-known robots",
		Long: `Insert a fixed set of well-known robots for development and demos.

Robots whose name already exists are skipped, so seeding twice is harmless.
With --clear every robot is deleted first.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp()
			if err != nil {
				return err
			}

			fixtures := robot.Fixtures()
			reqs := make([]primary.CreateRobotRequest, len(fixtures))
			for i, f := range fixtures {
				reqs[i] = primary.CreateRobotRequest{Name: f.Name, Label: f.Label, Year: f.Year, Type: f.Type}
			}

			return a.RobotAdapter(cmd.OutOrStdout()).Seed(context.Background(), reqs, clear)
		},
	}

	cmd.Flags().BoolVar(&clear, "clear", false, "Delete every robot before seeding")
	return cmd
}
