package cli

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"taskmanager/internal/config"
	"taskmanager/internal/store"
	"taskmanager/internal/tasks"
)

// Assets are the embedded web files served by the serve command.
type Assets struct {
	Templates *template.Template
	Static    fs.FS
}

var (
	configPath string
	assets     Assets
	rootCmd    *cobra.Command
)

func init() {
	rootCmd = &cobra.Command{
		Use:   "taskmanager",
		Short: "A small local task manager",
		Long: `taskmanager keeps a list of tasks in a local key-value store.

Run "taskmanager serve" for the web interface, or use the subcommands to
manage tasks from the terminal.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(toggleCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(clearCompletedCmd)
	rootCmd.AddCommand(sampleCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(exportPDFCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command
func Execute(version string, a Assets) error {
	assets = a
	rootCmd.Version = version
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), rootCmd.Version)
	},
}

// openTasks loads config and opens the configured key-value store and the
// task store on top of it. The returned cleanup flushes and closes both.
func openTasks(ctx context.Context) (*config.Config, *tasks.Store, func(), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, err
	}

	kv, err := store.Open(cfg.Storage)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to initialize store: %w", err)
	}

	s := tasks.Open(ctx, kv, tasks.Options{SaveTimeout: cfg.Persist.Timeout})
	cleanup := func() {
		s.Close()
		kv.Close()
	}

	return cfg, s, cleanup, nil
}
