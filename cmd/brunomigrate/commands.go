package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/blackcoderx/brunomigrate/pkg/converter"
	"github.com/blackcoderx/brunomigrate/pkg/materializer"
	"github.com/blackcoderx/brunomigrate/pkg/storage"
	"github.com/blackcoderx/brunomigrate/pkg/tui"
	"github.com/spf13/cobra"
)

var (
	allCollections bool
	showDiff       bool
)

func init() {
	workspacesCmd.Flags().BoolVar(&allCollections, "all-collections", false, "also list every collection visible to the API key")
	convertCmd.Flags().BoolVar(&showDiff, "diff", false, "print a unified diff for converted files that changed")

	rootCmd.AddCommand(workspacesCmd, exportCmd, convertCmd, importCmd)
}

var workspacesCmd = &cobra.Command{
	Use:   "workspaces",
	Short: "Fetch the workspace list and cache it as workspace_list.json",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		if err := runWorkspaces(cmd.Context(), a, cmd.OutOrStdout()); err != nil {
			return err
		}
		if allCollections {
			return listCollections(cmd.Context(), a, cmd.OutOrStdout())
		}
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export collections, environments and globals of every listed workspace",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		return runExport(cmd.Context(), a, cmd.OutOrStdout())
	},
}

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert exported Postman files to Bruno import files",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		return runConvert(cmd.Context(), a, cmd.OutOrStdout(), showDiff)
	},
}

var importCmd = &cobra.Command{
	Use:   "import [file...]",
	Short: "Generate Bruno projects from converted collections with the bru CLI",
	Long: `import runs "<bru_command> export --input <file>" for every converted
collection, or only for the files given as arguments.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		return runImport(cmd.Context(), a, cmd.OutOrStdout(), args)
	},
}

func runWorkspaces(ctx context.Context, a *app, out io.Writer) error {
	fmt.Fprintln(out, tui.Stage("Fetching workspace list"))
	if err := a.cfg.RequireAPIKey(); err != nil {
		return err
	}

	workspaces, err := a.exporter().FetchWorkspaceList(ctx)
	if err != nil {
		return err
	}

	var sb strings.Builder
	sb.WriteString("| id | name | type |\n|---|---|---|\n")
	for _, ws := range workspaces {
		fmt.Fprintf(&sb, "| %s | %s | %s |\n", ws.ID, strings.ReplaceAll(ws.Name, "|", `\|`), ws.Type)
	}
	fmt.Fprint(out, tui.RenderMarkdown(sb.String(), 0))
	fmt.Fprintln(out, tui.DimStyle.Render(fmt.Sprintf("%d workspaces saved to %s", len(workspaces), a.cfg.PostmanDir())))
	return nil
}

func listCollections(ctx context.Context, a *app, out io.Writer) error {
	collections, err := a.service().ListCollections(ctx)
	if err != nil {
		return err
	}

	var sb strings.Builder
	sb.WriteString("| id | name | updated |\n|---|---|---|\n")
	for _, c := range collections {
		fmt.Fprintf(&sb, "| %s | %s | %s |\n", c.ID, strings.ReplaceAll(c.Name, "|", `\|`), c.UpdatedAt)
	}
	fmt.Fprint(out, tui.RenderMarkdown(sb.String(), 0))
	return nil
}

func runExport(ctx context.Context, a *app, out io.Writer) error {
	fmt.Fprintln(out, tui.Stage("Exporting workspaces"))
	if err := a.cfg.RequireAPIKey(); err != nil {
		return err
	}

	exp := a.exporter()
	summary, err := exp.ExportAll(ctx)
	for _, r := range exp.Ledger().Records() {
		fmt.Fprintln(out, tui.StatusLine(r))
	}
	fmt.Fprintln(out, tui.Summary(summary))
	return err
}

func runConvert(ctx context.Context, a *app, out io.Writer, diff bool) error {
	fmt.Fprintln(out, tui.Stage("Converting to Bruno import format"))

	conv := converter.New(converter.Options{
		SourceDir:  a.cfg.PostmanDir(),
		TargetDir:  a.cfg.BrunoDir(),
		Diff:       diff,
		DiffOutput: out,
	}, a.logger)

	report, err := conv.ConvertAll(ctx)
	if report != nil {
		for _, f := range report.Failures {
			fmt.Fprintln(out, tui.ErrorStyle.Render(tui.FailPrefix)+tui.TextStyle.Render(fmt.Sprintf("%s: %v", f.Path, f.Err)))
		}
		line := fmt.Sprintf("%d converted / %d failed / %d missing folders", report.Converted, report.Failed, report.Skipped)
		if diff {
			line += fmt.Sprintf(" / %d changed", report.Changed)
		}
		fmt.Fprintln(out, tui.DimStyle.Render(line))
	}
	return err
}

func runImport(ctx context.Context, a *app, out io.Writer, files []string) error {
	fmt.Fprintln(out, tui.Stage("Generating Bruno projects"))

	m := materializer.New(a.cfg.BruCommand, a.cfg.ProjectsDir(), a.logger)

	if len(files) > 0 {
		var errs []error
		for _, f := range files {
			if err := m.Materialize(ctx, f); err != nil {
				errs = append(errs, err)
				continue
			}
			fmt.Fprintln(out, tui.SuccessStyle.Render(tui.OKPrefix)+tui.TextStyle.Render(filepath.Base(f)))
		}
		return errors.Join(errs...)
	}

	list, err := storage.LoadWorkspaceList(filepath.Join(a.cfg.PostmanDir(), storage.WorkspaceListFile))
	if err != nil {
		return err
	}
	done, err := m.MaterializeAll(ctx, a.cfg.BrunoDir(), list)
	fmt.Fprintln(out, tui.DimStyle.Render(fmt.Sprintf("%d collections exported to %s", done, a.cfg.ProjectsDir())))
	return err
}
