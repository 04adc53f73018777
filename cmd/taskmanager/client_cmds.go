package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/taskflow/task-manager/internal/core/domain"
	"github.com/taskflow/task-manager/internal/notify"
	"github.com/taskflow/task-manager/internal/view"
	"github.com/taskflow/task-manager/pkg/client"
)

var loginCmd = &cobra.Command{
	Use:   "login <email> <password>",
	Short: "Authenticate and print a bearer token",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		c := newClient()
		user, err := c.Login(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "logged in as %s (%s)\n", user.Name, user.Email)
		fmt.Fprintf(cmd.OutOrStdout(), "export TASKMANAGER_TOKEN=%s\n", c.Token())
		return nil
	},
}

var taskFilter view.Filter

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "List tasks, filtered and sorted locally",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		tasks, err := newClient().ListTasks(ctx, client.TaskQuery{})
		if err != nil {
			return err
		}
		filter := taskFilter
		filter.Sort = view.ParseSortKey(string(taskFilter.Sort))
		printTasks(cmd.OutOrStdout(), view.Apply(tasks, filter))
		return nil
	},
}

var taskStatusCmd = &cobra.Command{
	Use:   "status <id> <pending|in-progress|completed>",
	Short: "Change the status of a task",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		c := newClient()
		tasks, err := c.ListTasks(ctx, client.TaskQuery{})
		if err != nil {
			return err
		}

		board := view.NewBoard(tasks, c, notify.NewTerminal(cmd.ErrOrStderr()))
		if err := board.ChangeStatus(ctx, args[0], domain.TaskStatus(args[1])); err != nil {
			return err
		}
		printTasks(cmd.OutOrStdout(), board.View(view.Filter{}))
		return nil
	},
}

var calendarMonth string

var calendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "Show tasks grouped by due day for a month",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		month := time.Now()
		if calendarMonth != "" {
			m, err := time.Parse("2006-01", calendarMonth)
			if err != nil {
				return fmt.Errorf("--month must be YYYY-MM: %w", err)
			}
			month = m
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		days, err := newClient().Calendar(ctx, month)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(days) == 0 {
			fmt.Fprintf(out, "no tasks due in %s\n", month.Format("January 2006"))
			return nil
		}
		for _, day := range days {
			fmt.Fprintf(out, "%s\n", day.Date.Format("Mon Jan 2"))
			for _, t := range day.Tasks {
				fmt.Fprintf(out, "  [%s] %s (%s)\n", t.Status, t.Title, t.Priority)
			}
		}
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show task counters",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		s, err := newClient().Stats(ctx)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "Total\t%d\n", s.Total)
		fmt.Fprintf(w, "Completed\t%d\n", s.Completed)
		fmt.Fprintf(w, "In progress\t%d\n", s.InProgress)
		fmt.Fprintf(w, "Pending\t%d\n", s.Pending)
		fmt.Fprintf(w, "Due today\t%d\n", s.DueToday)
		return w.Flush()
	},
}

func init() {
	f := tasksCmd.Flags()
	f.StringVar(&taskFilter.Search, "search", "", "substring of title or description")
	f.StringVar(&taskFilter.Status, "status", view.All, "pending, in-progress, completed or all")
	f.StringVar(&taskFilter.Priority, "priority", view.All, "low, medium, high or all")
	f.StringVar(&taskFilter.Category, "category", view.All, "category id or all")
	f.StringVar((*string)(&taskFilter.Sort), "sort", string(view.SortDueDate), "dueDate, priority or title")
	tasksCmd.AddCommand(taskStatusCmd)

	calendarCmd.Flags().StringVar(&calendarMonth, "month", "", "month as YYYY-MM (default current month)")
}

func printTasks(out io.Writer, tasks []domain.Task) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tDUE\tPRIORITY\tSTATUS")
	for _, t := range tasks {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", t.ID, t.Title, t.DueDate.Format(time.DateOnly), t.Priority, t.Status)
	}
	w.Flush()
}
