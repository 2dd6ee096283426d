package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ravi-parthasarathy/scriptgraph/pkg/ctxlog"
	"github.com/ravi-parthasarathy/scriptgraph/pkg/project"
)

func exportCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Compile every graph of the project into the output directory",
		Long: `export compiles every graph document under the project's graphs directory.
Each script is written to the output directory as <relative path with "/"
replaced by "_">.ts. The output directory is cleared first. Graphs that fail to
compile are logged and skipped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadProject(cmd, flags)
			if err != nil {
				return err
			}
			res, err := exportGraphs(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d of %d graphs to %s\n", res.written, res.total, cfg.OutputDir)
			return nil
		},
	}
	return cmd
}

type exportResult struct {
	total   int
	written int
	failed  []string
}

// exportGraphs writes one script per graph document of cfg.
func exportGraphs(ctx context.Context, cfg *project.Config) (exportResult, error) {
	logger := ctxlog.FromContext(ctx)
	var res exportResult

	if err := cfg.Validate(); err != nil {
		return res, err
	}
	if err := os.RemoveAll(cfg.OutputDir); err != nil {
		return res, fmt.Errorf("clear output directory: %w", err)
	}

	paths, err := findGraphs(cfg.GraphsDir)
	if err != nil {
		return res, err
	}
	res.total = len(paths)
	if len(paths) == 0 {
		logger.Info("No graphs to export", "dir", cfg.GraphsDir)
		return res, nil
	}
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return res, fmt.Errorf("create output directory: %w", err)
	}

	s, err := newSession(cfg)
	if err != nil {
		return res, err
	}
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		name, err := scriptName(cfg.GraphsDir, path)
		if err != nil {
			return res, err
		}
		src, err := s.compile(ctx, path)
		if err != nil {
			logger.Error("Graph failed to compile", "graph", path, "error", err)
			res.failed = append(res.failed, path)
			continue
		}
		out := filepath.Join(cfg.OutputDir, name)
		if err := os.WriteFile(out, []byte(src), 0o644); err != nil {
			return res, fmt.Errorf("write script: %w", err)
		}
		logger.Debug("Script written", "graph", path, "path", out)
		res.written++
	}
	return res, nil
}

// findGraphs lists graph documents below dir in lexical order. A missing
// directory holds no graphs.
func findGraphs(dir string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) && path == dir {
				return fs.SkipDir
			}
			return err
		}
		if !d.IsDir() && isGraphFile(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("find graphs: %w", err)
	}
	return paths, nil
}

// scriptName maps a graph path to its script file name: the path relative to
// the graphs directory with separators replaced by underscores, plus ".ts".
func scriptName(graphsDir, path string) (string, error) {
	rel, err := filepath.Rel(graphsDir, path)
	if err != nil {
		return "", fmt.Errorf("graph %s: %w", path, err)
	}
	return strings.ReplaceAll(filepath.ToSlash(rel), "/", "_") + ".ts", nil
}
