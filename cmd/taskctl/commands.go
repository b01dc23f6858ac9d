package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"tasks-api/internal/client"
	"tasks-api/internal/domain"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	addr   string
	userID int64
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "taskctl",
		Short:         "Manage tasks through the tasks API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.addr, "addr", envOr("TASKS_API_URL", "http://localhost:3001"), "API base URL")
	root.PersistentFlags().Int64VarP(&opts.userID, "user", "u", 0, "acting user id")
	_ = root.MarkPersistentFlagRequired("user")

	root.AddCommand(
		newTokenCmd(opts),
		newListCmd(opts),
		newCreateCmd(opts),
		newUpdateCmd(opts),
		newDeleteCmd(opts),
	)
	return root
}

func (o *rootOptions) session(cmd *cobra.Command) (*client.Client, *client.Session, error) {
	if o.userID <= 0 {
		return nil, nil, errors.New("--user must be a positive id")
	}
	c := client.New(o.addr)
	s, err := c.Session(cmd.Context(), o.userID)
	if err != nil {
		return nil, nil, err
	}
	return c, s, nil
}

func newTokenCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "token",
		Short: "Print the current CSRF token for the user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, s, err := opts.session(cmd)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), s.Token)
			return nil
		},
	}
}

func newListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the user's tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, s, err := opts.session(cmd)
			if err != nil {
				return err
			}
			list, err := c.ListTasks(cmd.Context(), s)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, t := range list.Tasks {
				printTask(out, t)
			}
			fmt.Fprintf(out, "%d task(s)\n", list.Total)
			return nil
		},
	}
}

func newCreateCmd(opts *rootOptions) *cobra.Command {
	var in client.CreateTaskInput
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, s, err := opts.session(cmd)
			if err != nil {
				return err
			}
			task, err := c.CreateTask(cmd.Context(), s, in)
			if err != nil {
				return err
			}
			color.New(color.FgGreen).Fprintln(cmd.OutOrStdout(), "Task created")
			printTask(cmd.OutOrStdout(), *task)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Title, "title", "", "task title")
	cmd.Flags().StringVar(&in.Description, "description", "", "task description")
	cmd.Flags().StringVar(&in.Status, "status", "", "pending, in_progress or completed")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("description")
	return cmd
}

func newUpdateCmd(opts *rootOptions) *cobra.Command {
	var title, description, status string
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change a task's title, description or status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			var in client.UpdateTaskInput
			if cmd.Flags().Changed("title") {
				in.Title = &title
			}
			if cmd.Flags().Changed("description") {
				in.Description = &description
			}
			if cmd.Flags().Changed("status") {
				in.Status = &status
			}
			if in.Title == nil && in.Description == nil && in.Status == nil {
				return errors.New("nothing to update")
			}

			c, s, err := opts.session(cmd)
			if err != nil {
				return err
			}
			task, err := c.UpdateTask(cmd.Context(), s, id, in)
			if err != nil {
				return err
			}
			color.New(color.FgGreen).Fprintln(cmd.OutOrStdout(), "Task updated")
			if task != nil {
				printTask(cmd.OutOrStdout(), *task)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVar(&description, "description", "", "new description")
	cmd.Flags().StringVar(&status, "status", "", "pending, in_progress or completed")
	return cmd
}

func newDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			c, s, err := opts.session(cmd)
			if err != nil {
				return err
			}
			if err := c.DeleteTask(cmd.Context(), s, id); err != nil {
				return err
			}
			color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "Task %d deleted\n", id)
			return nil
		},
	}
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid task id %q", raw)
	}
	return id, nil
}

func statusColor(s domain.TaskStatus) *color.Color {
	switch s {
	case domain.TaskStatusCompleted:
		return color.New(color.FgGreen)
	case domain.TaskStatusInProgress:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgCyan)
	}
}

func printTask(w io.Writer, t domain.Task) {
	fmt.Fprintf(w, "#%-4d %-12s %s\n", t.ID, statusColor(t.Status).Sprint(t.Status), t.Title)
}
