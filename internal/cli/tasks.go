package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"taskmanager/internal/models"
	"taskmanager/internal/report"
	"taskmanager/internal/tasks"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks, newest first",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var addCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Add a task",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withTasks(cmd, func(s *tasks.Store) {
			s.Add(strings.Join(args, " "))
		})
	},
}

var toggleCmd = &cobra.Command{
	Use:   "toggle <id>",
	Short: "Toggle a task between open and completed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withTasks(cmd, func(s *tasks.Store) {
			warnUnknown(cmd, s, args[0])
			s.Toggle(args[0])
		})
	},
}

var editCmd = &cobra.Command{
	Use:   "edit <id> <title>",
	Short: "Rename a task",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withTasks(cmd, func(s *tasks.Store) {
			warnUnknown(cmd, s, args[0])
			s.Edit(args[0], strings.Join(args[1:], " "))
		})
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withTasks(cmd, func(s *tasks.Store) {
			warnUnknown(cmd, s, args[0])
			s.Delete(args[0])
		})
	},
}

var clearCompletedCmd = &cobra.Command{
	Use:   "clear-completed",
	Short: "Remove all completed tasks",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withTasks(cmd, func(s *tasks.Store) {
			s.ClearCompleted()
		})
	},
}

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Replace all tasks with sample data",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withTasks(cmd, func(s *tasks.Store) {
			s.LoadSample()
		})
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Remove all tasks",
	Args:  cobra.NoArgs,
	RunE:  runReset,
}

var exportPDFCmd = &cobra.Command{
	Use:   "export-pdf <file>",
	Short: "Write the task list to a PDF file",
	Args:  cobra.ExactArgs(1),
	RunE:  runExportPDF,
}

// errResetNotConfirmed is returned when reset would discard tasks without --yes.
var errResetNotConfirmed = errors.New("this will remove all tasks; rerun with --yes to continue")

func init() {
	listCmd.Flags().String("filter", "all", "Show 'all', 'active', or 'completed' tasks")
	listCmd.Flags().StringP("search", "s", "", "Only show tasks whose title contains this text")

	resetCmd.Flags().Bool("yes", false, "Do not ask for confirmation")

	exportPDFCmd.Flags().String("filter", "all", "Export 'all', 'active', or 'completed' tasks")
	exportPDFCmd.Flags().StringP("search", "s", "", "Only export tasks whose title contains this text")
}

// withTasks opens the store, runs fn and prints the resulting counts.
// The store is flushed to disk before returning.
func withTasks(cmd *cobra.Command, fn func(*tasks.Store)) error {
	_, s, cleanup, err := openTasks(cmd.Context())
	if err != nil {
		return err
	}
	defer cleanup()

	fn(s)
	fmt.Fprintln(cmd.OutOrStdout(), s.Counts().Summary())
	return nil
}

func warnUnknown(cmd *cobra.Command, s *tasks.Store, id string) {
	for _, t := range s.Tasks() {
		if t.ID == id {
			return
		}
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "no task with id %s\n", id)
}

func viewFlags(cmd *cobra.Command) (models.Filter, string, error) {
	name, _ := cmd.Flags().GetString("filter")
	search, _ := cmd.Flags().GetString("search")

	filter, err := models.ParseFilter(name)
	if err != nil {
		return "", "", err
	}
	return filter, search, nil
}

func runList(cmd *cobra.Command, args []string) error {
	filter, search, err := viewFlags(cmd)
	if err != nil {
		return err
	}

	_, s, cleanup, err := openTasks(cmd.Context())
	if err != nil {
		return err
	}
	defer cleanup()

	printTasks(cmd.OutOrStdout(), s.FilteredAndSorted(filter, search), s.Counts())
	return nil
}

func printTasks(out io.Writer, list []models.Task, counts models.Counts) {
	if len(list) == 0 {
		if counts.Total == 0 {
			fmt.Fprintln(out, "No tasks yet.")
		} else {
			fmt.Fprintln(out, "No tasks match your filters.")
		}
	} else {
		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tDONE\tTITLE\tCREATED")
		for _, t := range list {
			done := ""
			if t.Completed {
				done = "x"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", t.ID, done, t.Title, t.Created().Format(time.DateTime))
		}
		w.Flush()
	}

	fmt.Fprintf(out, "\n%d remaining, %d completed, %d total\n", counts.Remaining, counts.Completed, counts.Total)
}

func runReset(cmd *cobra.Command, args []string) error {
	yes, _ := cmd.Flags().GetBool("yes")

	_, s, cleanup, err := openTasks(cmd.Context())
	if err != nil {
		return err
	}
	defer cleanup()

	if s.Counts().Total > 0 && !yes {
		return errResetNotConfirmed
	}

	s.Reset()
	fmt.Fprintln(cmd.OutOrStdout(), s.Counts().Summary())
	return nil
}

func runExportPDF(cmd *cobra.Command, args []string) error {
	filter, search, err := viewFlags(cmd)
	if err != nil {
		return err
	}

	_, s, cleanup, err := openTasks(cmd.Context())
	if err != nil {
		return err
	}
	defer cleanup()

	f, err := os.Create(args[0])
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", args[0], err)
	}

	list := s.FilteredAndSorted(filter, search)
	counts := s.Counts()
	if err := report.WritePDF(f, counts.Summary(), list, counts); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", args[0], err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d tasks to %s\n", len(list), args[0])
	return nil
}
