// Package materializer drives the bru CLI to turn converted Bruno JSON files
// into on-disk Bruno projects.
package materializer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/blackcoderx/brunomigrate/pkg/converter"
	"github.com/blackcoderx/brunomigrate/pkg/logging"
	"github.com/blackcoderx/brunomigrate/pkg/storage"
)

// ErrNoCommand is returned when no bru command is configured.
var ErrNoCommand = errors.New("bru command is empty")

// Materializer runs "<command> export --input <file>" inside WorkDir.
type Materializer struct {
	command []string
	workDir string
	logger  *slog.Logger
}

// New creates a Materializer. command may carry leading arguments, for
// example "npx bru".
func New(command, workDir string, logger *slog.Logger) *Materializer {
	return &Materializer{
		command: strings.Fields(command),
		workDir: workDir,
		logger:  logging.OrDiscard(logger),
	}
}

// Materialize exports one converted collection file. Output on stderr is
// logged as a warning; a failed or non-zero exit is returned.
func (m *Materializer) Materialize(ctx context.Context, jsonFile string) error {
	if len(m.command) == 0 {
		return ErrNoCommand
	}
	if err := storage.EnsureDirectory(m.workDir); err != nil {
		return err
	}

	input, err := filepath.Abs(jsonFile)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", jsonFile, err)
	}

	args := append(append([]string{}, m.command[1:]...), "export", "--input", input)
	cmd := exec.CommandContext(ctx, m.command[0], args...)
	cmd.Dir = m.workDir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	m.logger.Info("running bru export", "command", strings.Join(m.command, " "), "input", input, "dir", m.workDir)
	runErr := cmd.Run()

	if msg := strings.TrimSpace(stderr.String()); msg != "" {
		m.logger.Warn("bru CLI warning", "file", filepath.Base(jsonFile), "stderr", msg)
	}
	if runErr != nil {
		m.logger.Error("bru export failed", "file", filepath.Base(jsonFile), "error", runErr)
		return fmt.Errorf("bru export %s: %w", filepath.Base(jsonFile), runErr)
	}
	if out := strings.TrimSpace(stdout.String()); out != "" {
		m.logger.Debug("bru CLI output", "stdout", out)
	}

	m.logger.Info("generated bru structure", "file", filepath.Base(jsonFile))
	return nil
}

// MaterializeAll exports every converted collection below brunoDir for the
// given workspaces. It keeps going after a failure and returns the number of
// files exported together with the joined errors.
func (m *Materializer) MaterializeAll(ctx context.Context, brunoDir string, workspaces storage.WorkspaceList) (int, error) {
	var (
		done int
		errs []error
	)
	for _, ws := range workspaces {
		dir := filepath.Join(brunoDir, storage.SafeName(ws.Name), converter.CollectionsDir)
		files, err := storage.ListJSONFiles(dir)
		if err != nil {
			if errors.Is(err, storage.ErrDirNotFound) {
				m.logger.Warn("no converted collections, skipping", "workspace", ws.Name, "path", dir)
				continue
			}
			errs = append(errs, err)
			continue
		}

		for _, name := range files {
			if err := ctx.Err(); err != nil {
				return done, errors.Join(append(errs, err)...)
			}
			if err := m.Materialize(ctx, filepath.Join(dir, name)); err != nil {
				errs = append(errs, err)
				continue
			}
			done++
		}
	}
	return done, errors.Join(errs...)
}
