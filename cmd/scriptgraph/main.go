package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ravi-parthasarathy/scriptgraph/pkg/ctxlog"
	"github.com/ravi-parthasarathy/scriptgraph/pkg/project"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := rootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		if !errors.Is(err, errCheckFailed) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

// globalFlags are shared by every subcommand.
type globalFlags struct {
	logLevel    string
	logFormat   string
	projectPath string
}

func rootCmd() *cobra.Command {
	var flags globalFlags

	root := &cobra.Command{
		Use:   "scriptgraph",
		Short: "scriptgraph compiles visual script graphs into TypeScript",
		Long: `scriptgraph turns node graphs drawn in a visual scripting editor into
TypeScript scene scripts.

Graphs are DOT or YAML documents. Event links order statements, data links
carry values, and scoped nodes (callbacks, conditions) nest the statements
they trigger.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := initLogger(flags.logLevel, flags.logFormat); err != nil {
				return err
			}
			cmd.SetContext(ctxlog.WithLogger(cmd.Context(), slog.Default()))
			return nil
		},
	}
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "info", "log level: debug, info, warn or error")
	root.PersistentFlags().StringVar(&flags.logFormat, "log-format", "text", "log format: text or json")
	root.PersistentFlags().StringVar(&flags.projectPath, "project", project.FileName, "project file; optional unless set explicitly")

	root.AddCommand(compileCmd(&flags))
	root.AddCommand(checkCmd(&flags))
	root.AddCommand(exportCmd(&flags))
	root.AddCommand(lintCmd())
	root.AddCommand(graphCmd())
	root.AddCommand(nodesCmd())
	return root
}

// initLogger installs the default slog logger. Logs go to stderr so generated
// scripts can be piped from stdout.
func initLogger(level, format string) error {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		return fmt.Errorf("unknown log level %q: use debug, info, warn or error", level)
	}

	opts := &slog.HandlerOptions{Level: lvl}
	var handler slog.Handler
	switch strings.ToLower(format) {
	case "text":
		handler = slog.NewTextHandler(os.Stderr, opts)
	case "json":
		handler = slog.NewJSONHandler(os.Stderr, opts)
	default:
		return fmt.Errorf("unknown log format %q: use text or json", format)
	}
	slog.SetDefault(slog.New(handler))
	return nil
}

// loadProject reads the project file named by --project. The file may be
// missing unless the flag was given explicitly.
func loadProject(cmd *cobra.Command, flags *globalFlags) (*project.Config, error) {
	required := cmd.Flags().Changed("project")
	return project.LoadOrDefault(cmd.Context(), flags.projectPath, required)
}
