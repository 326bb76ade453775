package tui

import (
	"fmt"
	"strings"

	"github.com/blackcoderx/brunomigrate/pkg/exporter"
	"github.com/charmbracelet/glamour"
)

// Stage formats the header line printed before a pipeline stage.
func Stage(name string) string {
	return TitleStyle.Render(StagePrefix + name)
}

// Summary formats aggregate ledger counts as one styled line.
func Summary(s exporter.Summary) string {
	parts := []string{
		SuccessStyle.Render(fmt.Sprintf("%d success", s.Success)),
		ErrorStyle.Render(fmt.Sprintf("%d failed", s.Failed)),
		WarnStyle.Render(fmt.Sprintf("%d skipped", s.Skipped)),
	}
	return strings.Join(parts, DimStyle.Render(" / ")) + DimStyle.Render(fmt.Sprintf(" (total %d)", s.Total))
}

// StatusLine formats one record for console output.
func StatusLine(r exporter.Record) string {
	label := fmt.Sprintf("%s %s [%s]", r.Workspace, r.Name, r.Kind)
	switch r.Status {
	case exporter.StatusSuccess:
		return SuccessStyle.Render(OKPrefix) + TextStyle.Render(label)
	case exporter.StatusFailed:
		return ErrorStyle.Render(FailPrefix) + TextStyle.Render(label)
	default:
		return WarnStyle.Render(SkipPrefix) + DimStyle.Render(label)
	}
}

// StatusMarkdown renders ledger records as a markdown table.
func StatusMarkdown(records []exporter.Record) string {
	var sb strings.Builder
	sb.WriteString("| export_time | workspace | name | type | status |\n")
	sb.WriteString("|---|---|---|---|---|\n")
	for _, r := range records {
		fmt.Fprintf(&sb, "| %s | %s | %s | %s | %s |\n",
			r.ExportTime.Format(exporter.TimeFormat),
			escapeCell(r.Workspace),
			escapeCell(r.Name),
			r.Kind,
			r.Status,
		)
	}
	return sb.String()
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// RenderMarkdown renders markdown for the terminal. It falls back to the
// input when the renderer cannot be created.
func RenderMarkdown(md string, width int) string {
	if width <= 0 {
		width = 100
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return md
	}

	out, err := renderer.Render(md)
	if err != nil {
		return md
	}
	return out
}
