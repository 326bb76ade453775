package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/blackcoderx/brunomigrate/pkg/exporter"
	"github.com/blackcoderx/brunomigrate/pkg/tui"
	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	statusFormat    string
	statusWorkspace string
	statusOnly      string
)

func init() {
	statusCmd.Flags().StringVarP(&statusFormat, "format", "f", "table", "output format: table, yaml or json")
	statusCmd.Flags().StringVarP(&statusWorkspace, "workspace", "w", "", "only show records of this workspace")
	statusCmd.Flags().StringVar(&statusOnly, "status", "", "only show records with this status (success, failed, skipped)")
	rootCmd.AddCommand(statusCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the export status ledger",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		records, err := exporter.ReadCSV(a.cfg.StatusPath())
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("no export status at %s, run `brunomigrate export` first", a.cfg.StatusPath())
			}
			return err
		}
		return writeStatus(cmd.OutOrStdout(), filterRecords(records, statusWorkspace, exporter.Status(statusOnly)), statusFormat)
	},
}

// statusReport is the yaml and json shape of the status command.
type statusReport struct {
	Summary exporter.Summary  `json:"summary" yaml:"summary"`
	Records []exporter.Record `json:"records" yaml:"records"`
}

func filterRecords(records []exporter.Record, workspace string, status exporter.Status) []exporter.Record {
	if workspace == "" && status == "" {
		return records
	}
	var out []exporter.Record
	for _, r := range records {
		if workspace != "" && r.Workspace != workspace {
			continue
		}
		if status != "" && r.Status != status {
			continue
		}
		out = append(out, r)
	}
	return out
}

func writeStatus(w io.Writer, records []exporter.Record, format string) error {
	report := statusReport{Records: records}
	for _, r := range records {
		report.Summary.Add(r.Status)
	}
	if report.Records == nil {
		report.Records = []exporter.Record{}
	}

	switch format {
	case "table", "":
		fmt.Fprint(w, tui.RenderMarkdown(tui.StatusMarkdown(records), 0))
		fmt.Fprintln(w, tui.Summary(report.Summary))
		return nil
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("encoding status: %w", err)
		}
		return enc.Close()
	case "json":
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding status: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	default:
		return fmt.Errorf("unknown format %q, expected table, yaml or json", format)
	}
}
