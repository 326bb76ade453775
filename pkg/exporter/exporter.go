// Package exporter walks Postman workspaces and writes their collections,
// environments and global variables to disk, recording the outcome of every
// resource in a status ledger.
package exporter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/blackcoderx/brunomigrate/pkg/httpclient"
	"github.com/blackcoderx/brunomigrate/pkg/logging"
	"github.com/blackcoderx/brunomigrate/pkg/postman"
	"github.com/blackcoderx/brunomigrate/pkg/storage"
	json "github.com/goccy/go-json"
)

// ErrWorkspaceListMissing is returned by ExportAll when workspace_list.json
// has not been fetched yet.
var ErrWorkspaceListMissing = errors.New("workspace list not found")

// GlobalsFile is the per-workspace file holding global variables.
const GlobalsFile = "global_variables.json"

// Source is the subset of the Postman API the exporter needs.
type Source interface {
	ListWorkspaces(ctx context.Context) ([]postman.WorkspaceSummary, json.RawMessage, error)
	GetWorkspace(ctx context.Context, id string) (*postman.Workspace, error)
	GetCollection(ctx context.Context, id string) (json.RawMessage, error)
	GetEnvironment(ctx context.Context, id string) (json.RawMessage, error)
	GetGlobalVariables(ctx context.Context, workspaceID string) (json.RawMessage, error)
}

// Options configures an Exporter.
type Options struct {
	// BaseDir is the export root, usually <output>/<postman_files_folder>.
	BaseDir string
	// StatusPath is the CSV ledger file appended to by ExportAll.
	StatusPath string
	// SkipAlreadyExported leaves existing files untouched and records them
	// as skipped without calling the API.
	SkipAlreadyExported bool
	// Now overrides the ledger clock.
	Now func() time.Time
}

// Exporter runs the export pipeline. It is not safe for concurrent use.
type Exporter struct {
	opts   Options
	src    Source
	logger *slog.Logger
	ledger *Ledger
}

// New creates an Exporter.
func New(opts Options, src Source, logger *slog.Logger) *Exporter {
	return &Exporter{
		opts:   opts,
		src:    src,
		logger: logging.OrDiscard(logger),
		ledger: NewLedger(opts.Now),
	}
}

// Ledger returns the ledger of the current run.
func (e *Exporter) Ledger() *Ledger { return e.ledger }

// WorkspaceListPath is the location of the cached id -> name mapping.
func (e *Exporter) WorkspaceListPath() string {
	return filepath.Join(e.opts.BaseDir, storage.WorkspaceListFile)
}

// FetchWorkspaceList downloads the workspace list and caches it as
// workspaces.json (raw array) and workspace_list.json (id -> name). Nothing
// is written when the request fails.
func (e *Exporter) FetchWorkspaceList(ctx context.Context) ([]postman.WorkspaceSummary, error) {
	workspaces, raw, err := e.src.ListWorkspaces(ctx)
	if err != nil {
		e.logger.Error("failed to fetch workspaces", "kind", string(httpclient.KindOf(err)), "error", err)
		return nil, fmt.Errorf("fetching workspaces: %w", err)
	}

	if err := storage.EnsureDirectory(e.opts.BaseDir); err != nil {
		return nil, err
	}

	list := make(storage.WorkspaceList, 0, len(workspaces))
	for _, ws := range workspaces {
		list = append(list, storage.WorkspaceEntry{ID: ws.ID, Name: ws.Name})
	}

	if err := storage.WriteRawJSON(filepath.Join(e.opts.BaseDir, storage.WorkspacesFile), raw); err != nil {
		return nil, err
	}
	if err := storage.SaveWorkspaceList(e.WorkspaceListPath(), list); err != nil {
		return nil, err
	}

	e.logger.Info("exported list of available workspaces", "count", len(workspaces), "path", e.WorkspaceListPath())
	return workspaces, nil
}

// ExportAll exports every workspace of workspace_list.json in file order and
// appends the resulting ledger to the status CSV. A workspace whose detail
// cannot be fetched is logged and skipped. Directory failures abort the run
// after the ledger is flushed.
func (e *Exporter) ExportAll(ctx context.Context) (Summary, error) {
	list, err := storage.LoadWorkspaceList(e.WorkspaceListPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			e.logger.Error("workspace list not found, run `brunomigrate workspaces` first", "path", e.WorkspaceListPath())
			return Summary{}, ErrWorkspaceListMissing
		}
		return Summary{}, err
	}

	e.ledger = NewLedger(e.opts.Now)

	var runErr error
	for _, entry := range list {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}

		ws, err := e.src.GetWorkspace(ctx, entry.ID)
		if err != nil {
			e.logger.Error("failed to fetch workspace, continuing",
				"workspace", entry.Name, "id", entry.ID, "kind", string(httpclient.KindOf(err)), "error", err)
			continue
		}

		if err := e.exportWorkspace(ctx, entry, ws); err != nil {
			runErr = err
			break
		}
	}

	summary, err := e.ledger.SaveCSV(e.opts.StatusPath)
	if err != nil {
		return summary, errors.Join(runErr, err)
	}
	if summary.Total > 0 {
		e.logger.Info("export status saved",
			"path", e.opts.StatusPath,
			"success", summary.Success,
			"failed", summary.Failed,
			"skipped", summary.Skipped,
			"total", summary.Total,
		)
	}
	return summary, runErr
}

func (e *Exporter) exportWorkspace(ctx context.Context, entry storage.WorkspaceEntry, ws *postman.Workspace) error {
	e.logger.Info("exporting workspace", "workspace", entry.Name, "collections", len(ws.Collections), "environments", len(ws.Environments))

	if err := e.ExportGlobalVariables(ctx, entry.ID, entry.Name); err != nil {
		return err
	}
	if err := e.ExportCollections(ctx, ws.Collections, entry.Name); err != nil {
		return err
	}
	return e.ExportEnvironments(ctx, ws.Environments, entry.Name)
}

type globalsDocument struct {
	Name   string          `json:"name"`
	ID     string          `json:"id"`
	Values json.RawMessage `json:"values"`
}

// ExportGlobalVariables writes <base>/<workspace>/global_variables.json. Only
// the globals of the workspace payload are kept.
func (e *Exporter) ExportGlobalVariables(ctx context.Context, workspaceID, workspaceName string) error {
	wsName := displayName(workspaceName)
	dir, err := storage.ResolveWithin(e.opts.BaseDir, storage.SafeName(workspaceName))
	if err != nil {
		return err
	}
	if err := storage.EnsureDirectory(dir); err != nil {
		return err
	}
	path := filepath.Join(dir, GlobalsFile)

	if e.opts.SkipAlreadyExported && storage.Exists(path) {
		e.logger.Info("global variables already exported, skipping", "workspace", wsName)
		e.ledger.Add(wsName, "global_variables", KindGlobalVariables, StatusSkipped)
		return nil
	}

	values, err := e.src.GetGlobalVariables(ctx, workspaceID)
	if err != nil {
		e.logger.Error("failed to fetch global variables", "workspace", wsName, "kind", string(httpclient.KindOf(err)), "error", err)
		e.ledger.Add(wsName, "global_variables", KindGlobalVariables, StatusFailed)
		return nil
	}
	if len(values) == 0 {
		values = json.RawMessage("[]")
	}

	doc := globalsDocument{Name: "Globals", ID: "sampleid", Values: values}
	if err := storage.WriteJSON(path, doc); err != nil {
		e.logger.Error("failed to write global variables", "workspace", wsName, "error", err)
		e.ledger.Add(wsName, "global_variables", KindGlobalVariables, StatusFailed)
		return nil
	}

	e.logger.Info("exported global variables", "workspace", wsName)
	e.ledger.Add(wsName, "global_variables", KindGlobalVariables, StatusSuccess)
	return nil
}

// ExportCollections writes each collection to <base>/<workspace>/collections.
// One failed collection never stops the rest.
func (e *Exporter) ExportCollections(ctx context.Context, refs []postman.Ref, workspaceName string) error {
	return e.exportItems(ctx, refs, workspaceName, KindCollection, "collections", e.src.GetCollection)
}

// ExportEnvironments writes each environment to <base>/<workspace>/environments.
func (e *Exporter) ExportEnvironments(ctx context.Context, refs []postman.Ref, workspaceName string) error {
	return e.exportItems(ctx, refs, workspaceName, KindEnvironment, "environments", e.src.GetEnvironment)
}

type fetchFunc func(ctx context.Context, id string) (json.RawMessage, error)

func (e *Exporter) exportItems(ctx context.Context, refs []postman.Ref, workspaceName string, kind Kind, subdir string, fetch fetchFunc) error {
	wsName := displayName(workspaceName)
	dir, err := storage.ResolveWithin(e.opts.BaseDir, storage.SafeName(workspaceName), subdir)
	if err != nil {
		return err
	}
	if err := storage.EnsureDirectory(dir); err != nil {
		return err
	}

	for _, ref := range refs {
		if err := ctx.Err(); err != nil {
			return err
		}

		name := displayName(ref.Name)
		path := filepath.Join(dir, storage.SafeName(ref.Name)+".json")

		if e.opts.SkipAlreadyExported && storage.Exists(path) {
			e.logger.Info("already exported, skipping", "type", string(kind), "name", name, "workspace", wsName)
			e.ledger.Add(wsName, name, kind, StatusSkipped)
			continue
		}

		raw, err := fetch(ctx, refID(ref))
		if err != nil {
			e.logger.Error("failed to fetch "+string(kind),
				"name", name, "workspace", wsName, "kind", string(httpclient.KindOf(err)), "error", err)
			e.ledger.Add(wsName, name, kind, StatusFailed)
			continue
		}

		if err := storage.WriteRawJSON(path, raw); err != nil {
			e.logger.Error("failed to write "+string(kind), "name", name, "workspace", wsName, "error", err)
			e.ledger.Add(wsName, name, kind, StatusFailed)
			continue
		}

		e.logger.Info("exported "+string(kind), "name", name, "workspace", wsName)
		e.ledger.Add(wsName, name, kind, StatusSuccess)
	}
	return nil
}

func displayName(name string) string {
	if strings.TrimSpace(name) == "" {
		return storage.UnknownName
	}
	return name
}

func refID(ref postman.Ref) string {
	if ref.ID != "" {
		return ref.ID
	}
	return ref.UID
}
