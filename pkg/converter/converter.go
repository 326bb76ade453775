// Package converter turns exported Postman files into Bruno import files,
// mirroring the export tree under the Bruno output folder.
package converter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	udiff "github.com/aymanbagabas/go-udiff"
	"github.com/blackcoderx/brunomigrate/pkg/bruno"
	"github.com/blackcoderx/brunomigrate/pkg/logging"
	"github.com/blackcoderx/brunomigrate/pkg/storage"
	json "github.com/goccy/go-json"
)

// Subdirectories converted for every workspace.
const (
	CollectionsDir  = "collections"
	EnvironmentsDir = "environments"
)

// Options configures a Converter.
type Options struct {
	// SourceDir is the export root holding workspace_list.json.
	SourceDir string
	// TargetDir receives the mirrored tree.
	TargetDir string
	// Diff prints a unified diff to DiffOutput whenever an existing
	// converted file changes.
	Diff       bool
	DiffOutput io.Writer
}

// Failure describes one file that could not be converted.
type Failure struct {
	Path string
	Err  error
}

// Report counts the outcome of a conversion pass.
type Report struct {
	Converted int
	Failed    int
	// Skipped counts source subdirectories that did not exist.
	Skipped  int
	Changed  int
	Failures []Failure
	Outputs  []string
}

// Converter runs the conversion pass sequentially.
type Converter struct {
	opts   Options
	logger *slog.Logger
}

// New creates a Converter.
func New(opts Options, logger *slog.Logger) *Converter {
	if opts.DiffOutput == nil {
		opts.DiffOutput = io.Discard
	}
	return &Converter{opts: opts, logger: logging.OrDiscard(logger)}
}

type transformFunc func(doc []byte) (any, error)

func collectionTransform(doc []byte) (any, error) { return bruno.FromPostmanCollection(doc) }

func environmentTransform(doc []byte) (any, error) { return bruno.FromPostmanEnvironment(doc) }

// ConvertAll converts every collection and environment of every workspace
// listed in workspace_list.json. Per-file failures are logged and counted;
// only a missing workspace list, a directory failure or cancellation stop
// the pass.
func (c *Converter) ConvertAll(ctx context.Context) (*Report, error) {
	listPath := filepath.Join(c.opts.SourceDir, storage.WorkspaceListFile)
	list, err := storage.LoadWorkspaceList(listPath)
	if err != nil {
		return nil, err
	}

	report := &Report{}
	for _, ws := range list {
		wsDir := storage.SafeName(ws.Name)
		if err := c.convertDir(ctx, report, wsDir, CollectionsDir, collectionTransform); err != nil {
			return report, err
		}
		if err := c.convertDir(ctx, report, wsDir, EnvironmentsDir, environmentTransform); err != nil {
			return report, err
		}
	}

	c.logger.Info("conversion finished",
		"converted", report.Converted,
		"failed", report.Failed,
		"skipped_dirs", report.Skipped,
		"changed", report.Changed,
	)
	return report, nil
}

func (c *Converter) convertDir(ctx context.Context, report *Report, workspace, kind string, transform transformFunc) error {
	targetDir, err := storage.ResolveWithin(c.opts.TargetDir, workspace, kind)
	if err != nil {
		return err
	}
	if err := storage.EnsureDirectory(targetDir); err != nil {
		return err
	}

	sourceDir := filepath.Join(c.opts.SourceDir, workspace, kind)
	files, err := storage.ListJSONFiles(sourceDir)
	if err != nil {
		if errors.Is(err, storage.ErrDirNotFound) {
			c.logger.Warn(kind+" directory not found, skipping", "path", sourceDir)
			report.Skipped++
			return nil
		}
		return err
	}

	for _, name := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		in := filepath.Join(sourceDir, name)
		out := filepath.Join(targetDir, name)
		if err := c.convertFile(in, out, transform, report); err != nil {
			c.logger.Error("conversion failed", "file", in, "error", err)
			report.Failed++
			report.Failures = append(report.Failures, Failure{Path: in, Err: err})
			continue
		}
		c.logger.Info("converted", "file", in, "output", out)
		report.Converted++
		report.Outputs = append(report.Outputs, out)
	}
	return nil
}

func (c *Converter) convertFile(in, out string, transform transformFunc, report *Report) error {
	doc, err := os.ReadFile(in)
	if err != nil {
		return fmt.Errorf("reading: %w", err)
	}
	converted, err := transform(doc)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(converted, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling: %w", err)
	}

	if c.opts.Diff {
		if previous, err := os.ReadFile(out); err == nil && string(previous) != string(data) {
			report.Changed++
			fmt.Fprint(c.opts.DiffOutput, Diff(out, string(previous), string(data)))
		}
	}

	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("writing: %w", err)
	}
	return nil
}

// Diff renders a unified diff with three lines of context.
func Diff(filename, original, modified string) string {
	edits := udiff.Strings(original, modified)
	unified, err := udiff.ToUnified("a/"+filename, "b/"+filename, original, edits, 3)
	if err != nil {
		return fmt.Sprintf("--- a/%s\n+++ b/%s\n(diff generation failed)\n", filename, filename)
	}
	return unified
}
