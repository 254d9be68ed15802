package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/example/robodb/internal/core/robot"
	"github.com/example/robodb/internal/ports/primary"
)

var robotCmd = &cobra.Command{
	Use:   "robot",
	Short: "Manage robots",
	Long:  "Create, list, show, update, archive and delete robots in the catalogue",
}

var robotCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new robot",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := getApp()
		if err != nil {
			return err
		}

		name, _ := cmd.Flags().GetString("name")
		label, _ := cmd.Flags().GetString("label")
		year, _ := cmd.Flags().GetInt("year")
		robotType, _ := cmd.Flags().GetString("type")

		return a.RobotAdapter(cmd.OutOrStdout()).Create(context.Background(), primary.CreateRobotRequest{
			Name:  name,
			Label: label,
			Year:  year,
			Type:  robotType,
		})
	},
}

var robotShowCmd = &cobra.Command{
	Use:   "show [robot-id]",
	Short: "Show robot details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := getApp()
		if err != nil {
			return err
		}

		_, err = a.RobotAdapter(cmd.OutOrStdout()).Show(context.Background(), args[0])
		return err
	},
}

var robotUpdateCmd = &cobra.Command{
	Use:   "update [robot-id]",
	Short: "Update robot fields",
	Long:  "Update the given fields of a robot. Fields without a flag are left untouched.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := getApp()
		if err != nil {
			return err
		}

		req := primary.UpdateRobotRequest{RobotID: args[0]}
		flags := cmd.Flags()
		if flags.Changed("name") {
			v, _ := flags.GetString("name")
			req.Name = &v
		}
		if flags.Changed("label") {
			v, _ := flags.GetString("label")
			req.Label = &v
		}
		if flags.Changed("year") {
			v, _ := flags.GetInt("year")
			req.Year = &v
		}
		if flags.Changed("type") {
			v, _ := flags.GetString("type")
			req.Type = &v
		}

		return a.RobotAdapter(cmd.OutOrStdout()).Update(context.Background(), req)
	},
}

var robotDeleteCmd = &cobra.Command{
	Use:   "delete [robot-id]",
	Short: "Permanently delete a robot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := getApp()
		if err != nil {
			return err
		}
		return a.RobotAdapter(cmd.OutOrStdout()).Delete(context.Background(), args[0])
	},
}

var robotArchiveCmd = &cobra.Command{
	Use:   "archive [robot-id]",
	Short: "Archive a robot (hidden from lists, name stays reserved)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := getApp()
		if err != nil {
			return err
		}
		return a.RobotAdapter(cmd.OutOrStdout()).Archive(context.Background(), args[0])
	},
}

var robotUnarchiveCmd = &cobra.Command{
	Use:   "unarchive [robot-id]",
	Short: "Restore an archived robot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := getApp()
		if err != nil {
			return err
		}
		return a.RobotAdapter(cmd.OutOrStdout()).Unarchive(context.Background(), args[0])
	},
}

var robotListCmd = &cobra.Command{
	Use:   "list",
	Short: "Search and list robots",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := getApp()
		if err != nil {
			return err
		}

		query, _ := cmd.Flags().GetString("query")
		sortKey, _ := cmd.Flags().GetString("sort")
		order, _ := cmd.Flags().GetString("order")
		limit, _ := cmd.Flags().GetInt("limit")
		offset, _ := cmd.Flags().GetInt("offset")
		all, _ := cmd.Flags().GetBool("all")

		return a.RobotAdapter(cmd.OutOrStdout()).List(context.Background(), primary.ListRobotsRequest{
			Query:           query,
			Sort:            sortKey,
			Order:           order,
			Limit:           limit,
			Offset:          offset,
			IncludeArchived: all,
		})
	},
}

var robotCountCmd = &cobra.Command{
	Use:   "count",
	Short: "Count robots",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := getApp()
		if err != nil {
			return err
		}

		all, _ := cmd.Flags().GetBool("all")
		return a.RobotAdapter(cmd.OutOrStdout()).Count(context.Background(), all)
	},
}

var robotStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize robots by type and year",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := getApp()
		if err != nil {
			return err
		}
		return a.RobotAdapter(cmd.OutOrStdout()).Stats(context.Background())
	},
}

func init() {
	// robot create flags
	robotCreateCmd.Flags().StringP("name", "n", "", "Robot name (unique, 2-50 characters)")
	robotCreateCmd.Flags().StringP("label", "l", "", "Robot label (3-100 characters)")
	robotCreateCmd.Flags().IntP("year", "y", 0, "Year of creation")
	robotCreateCmd.Flags().StringP("type", "t", "", "Robot type: industrial, service, medical, educational, other")
	_ = robotCreateCmd.MarkFlagRequired("name")
	_ = robotCreateCmd.MarkFlagRequired("label")
	_ = robotCreateCmd.MarkFlagRequired("year")
	_ = robotCreateCmd.MarkFlagRequired("type")

	// robot update flags
	robotUpdateCmd.Flags().StringP("name", "n", "", "New name")
	robotUpdateCmd.Flags().StringP("label", "l", "", "New label")
	robotUpdateCmd.Flags().IntP("year", "y", 0, "New year")
	robotUpdateCmd.Flags().StringP("type", "t", "", "New type")

	// robot list flags
	robotListCmd.Flags().StringP("query", "q", "", "Case-insensitive name search")
	robotListCmd.Flags().String("sort", robot.SortName, "Sort key: name, year or createdAt")
	robotListCmd.Flags().String("order", robot.OrderAsc, "Sort order: ASC or DESC")
	robotListCmd.Flags().Int("limit", robot.DefaultLimit, "Page size")
	robotListCmd.Flags().Int("offset", 0, "Rows to skip")
	robotListCmd.Flags().BoolP("all", "a", false, "Include archived robots")

	// robot count flags
	robotCountCmd.Flags().BoolP("all", "a", false, "Include archived robots")

	// Register subcommands
	robotCmd.AddCommand(robotCreateCmd)
	robotCmd.AddCommand(robotShowCmd)
	robotCmd.AddCommand(robotUpdateCmd)
	robotCmd.AddCommand(robotDeleteCmd)
	robotCmd.AddCommand(robotArchiveCmd)
	robotCmd.AddCommand(robotUnarchiveCmd)
	robotCmd.AddCommand(robotListCmd)
	robotCmd.AddCommand(robotCountCmd)
	robotCmd.AddCommand(robotStatsCmd)
}

// RobotCmd returns the robot command
func RobotCmd() *cobra.Command {
	return robotCmd
}
