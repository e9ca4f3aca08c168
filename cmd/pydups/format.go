package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/olekukonko/tablewriter"
	"github.com/pmezard/go-difflib/difflib"
	"gopkg.in/yaml.v3"

	"github.com/jward/pydups"
)

const (
	foundHeader  = "Found duplicates 💥"
	noDuplicates = "No duplicates! ✨"
	separator    = "================================================================================"
)

// Theme styles the text report on a terminal.
type Theme struct {
	Header    lipgloss.Style
	Separator lipgloss.Style
	Location  lipgloss.Style
}

var defaultTheme = Theme{
	Header:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
	Separator: lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	Location:  lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
}

// paint renders text in style. A nil theme leaves text unchanged.
func (t *Theme) paint(style func(*Theme) lipgloss.Style, text string) string {
	if t == nil {
		return text
	}
	return style(t).Render(text)
}

func headerStyle(t *Theme) lipgloss.Style { return t.Header }
func separatorStyle(t *Theme) lipgloss.Style { return t.Separator }
func locationStyle(t *Theme) lipgloss.Style { return t.Location }

var validFormats = []string{"text", "json", "yaml", "markdown"}

func formatList() string {
	return strings.Join(validFormats, "|")
}

// validateFormat checks that the --format value is recognized.
func validateFormat(format string) error {
	for _, f := range validFormats {
		if format == f {
			return nil
		}
	}
	return fmt.Errorf("invalid format %q: must be one of %s", format, strings.Join(validFormats, ", "))
}

// isTTY reports whether w is a terminal.
func isTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// writeReport renders r in the given format. styled enables terminal
// colours for text and glamour rendering for markdown.
func writeReport(w io.Writer, r *pydups.Report, format string, styled bool) error {
	switch format {
	case "text":
		var theme *Theme
		if styled {
			theme = &defaultTheme
		}
		formatText(w, r, theme)
		return nil
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(toCLIReport(r))
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(toCLIReport(r)); err != nil {
			return err
		}
		return enc.Close()
	case "markdown":
		md := formatMarkdown(r)
		if styled {
			renderer, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
			if err != nil {
				return fmt.Errorf("markdown renderer: %w", err)
			}
			out, err := renderer.Render(md)
			if err != nil {
				return fmt.Errorf("rendering markdown: %w", err)
			}
			md = out
		}
		_, err := io.WriteString(w, md)
		return err
	}
	return validateFormat(format)
}

// formatText writes the classic report: a header, then per group a
// separator, the representative source and one location per occurrence.
func formatText(w io.Writer, r *pydups.Report, theme *Theme) {
	if len(r.Groups) == 0 {
		fmt.Fprintln(w, noDuplicates)
		return
	}
	fmt.Fprintln(w, theme.paint(headerStyle, foundHeader))
	fmt.Fprintln(w)
	for _, g := range r.Groups {
		fmt.Fprintln(w, theme.paint(separatorStyle, separator))
		fmt.Fprintln(w)
		fmt.Fprintln(w, pydups.Source(g))
		for _, occ := range g.Occurrences {
			fmt.Fprintln(w, theme.paint(locationStyle, occ.String()))
		}
		fmt.Fprintln(w)
	}
}

func formatMarkdown(r *pydups.Report) string {
	var b strings.Builder
	if len(r.Groups) == 0 {
		b.WriteString(noDuplicates + "\n")
		return b.String()
	}
	fmt.Fprintf(&b, "# %s\n\n", foundHeader)
	fmt.Fprintf(&b, "%d groups, %d duplicated functions out of %d scanned.\n\n",
		len(r.Groups), r.Duplicates(), r.Functions)
	for i, g := range r.Groups {
		fmt.Fprintf(&b, "## Group %d `%s`\n\n", i+1, g.Fingerprint.Short())
		b.WriteString("```python\n")
		b.WriteString(pydups.Source(g))
		b.WriteString("```\n\n")
		for _, occ := range g.Occurrences {
			fmt.Fprintf(&b, "- `%s` (line %d)\n", occ.String(), occ.Line)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// formatSummary writes a per-file table of fingerprinted functions.
func formatSummary(w io.Writer, r *pydups.Report) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"File", "Functions"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT})
	for _, f := range r.Files {
		table.Append([]string{f.Path, fmt.Sprintf("%d", f.Functions)})
	}
	table.SetFooter([]string{
		fmt.Sprintf("%d files, %d excluded, %d groups", len(r.Files), len(r.Excluded), len(r.Groups)),
		fmt.Sprintf("%d", r.Functions),
	})
	table.Render()
}

// formatDiffs writes a unified diff of every later occurrence against the
// group's representative. Only names differ, so the diff shows what the
// fingerprint abstracted away.
func formatDiffs(w io.Writer, r *pydups.Report) {
	for _, g := range r.Groups {
		rep := g.Representative()
		base := pydups.OccurrenceSource(rep)
		for _, occ := range g.Occurrences[1:] {
			diff := difflib.UnifiedDiff{
				A:        difflib.SplitLines(base),
				B:        difflib.SplitLines(pydups.OccurrenceSource(occ)),
				FromFile: rep.String(),
				ToFile:   occ.String(),
				Context:  3,
			}
			text, err := difflib.GetUnifiedDiffString(diff)
			if err != nil || text == "" {
				continue
			}
			fmt.Fprint(w, text)
			fmt.Fprintln(w)
		}
	}
}
