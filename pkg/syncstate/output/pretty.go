package output

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

// hashWidth is how many hash characters the pretty table shows.
const hashWidth = 12

// PrettyFormatter formats output with colors and styling using lipgloss.
type PrettyFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PrettyFormatter) Format(w *bytes.Buffer, r *Result) error {
	w.WriteString(f.formatHeader(r))
	w.WriteString("\n")
	w.WriteString(f.formatTable(r))
	w.WriteString(f.formatFooter(r))

	if len(r.Warnings) > 0 {
		w.WriteString("\n")
		w.WriteString(f.formatWarnings(r.Warnings))
	}
	return nil
}

// formatHeader builds the header box with snapshot metadata.
func (f *PrettyFormatter) formatHeader(r *Result) string {
	s := r.Snapshot
	lines := []string{
		LabelStyle.Render("Snapshot:") + " " + ValueStyle.Render(s.Name),
	}

	var info []string
	if s.Backend != "" {
		info = append(info, LabelStyle.Render("Store:")+" "+ValueStyle.Render(s.Backend))
	}
	if s.Size > 0 {
		info = append(info, LabelStyle.Render("Size:")+" "+ValueStyle.Render(humanize.IBytes(uint64(s.Size))))
	}
	if !s.ModTime.IsZero() {
		info = append(info, LabelStyle.Render("Written:")+" "+MutedStyle.Render(humanize.Time(s.ModTime)))
	}
	if s.Size == 0 && s.ModTime.IsZero() {
		info = append(info, MutedStyle.Render("not written yet"))
	}
	lines = append(lines, strings.Join(info, "  "))

	if s.Path != "" {
		lines = append(lines, MutedStyle.Render(s.Path))
	}

	return HeaderBox.Render(strings.Join(lines, "\n"))
}

// formatTable builds the KIND/HASH/NAME table.
func (f *PrettyFormatter) formatTable(r *Result) string {
	if len(r.Records) == 0 {
		return MutedStyle.Render("  No records") + "\n"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "  %s %s %s\n",
		TableHeaderStyle.Render(padRight("KIND", 4)),
		TableHeaderStyle.Render(padRight("HASH", hashWidth)),
		TableHeaderStyle.Render("NAME"),
	)

	for _, rec := range r.Records {
		kind := MutedStyle.Render(padRight(rec.Kind, 4))
		name := NameStyle.Render(rec.Name)
		if rec.Kind == KindDir {
			kind = DirStyle.Render(padRight(rec.Kind, 4))
			name = DirStyle.Render(rec.Name + "/")
		}
		hash := HashStyle.Render(padRight(shortHash(rec.Hash), hashWidth))
		fmt.Fprintf(&sb, "  %s   %s   %s\n", kind, hash, name)
	}

	return sb.String()
}

// formatFooter builds the footer box with record counts.
func (f *PrettyFormatter) formatFooter(r *Result) string {
	parts := []string{
		LabelStyle.Render("Records:") + " " + ValueStyle.Render(humanize.Comma(int64(len(r.Records)))),
		LabelStyle.Render("Dirs:") + " " + ValueStyle.Render(humanize.Comma(int64(r.Dirs()))),
		LabelStyle.Render("Files:") + " " + ValueStyle.Render(humanize.Comma(int64(r.Files()))),
	}
	if r.Total > len(r.Records) {
		parts = append(parts, MutedStyle.Render(fmt.Sprintf("of %s indexed", humanize.Comma(int64(r.Total)))))
	}
	parts = append(parts, MutedStyle.Render("Use -o plain for unformatted output"))

	return FooterBox.Render(strings.Join(parts, "  "))
}

// formatWarnings builds a warning block.
func (f *PrettyFormatter) formatWarnings(warnings []string) string {
	var sb strings.Builder
	sb.WriteString(WarningStyle.Bold(true).Render("Warnings:"))
	sb.WriteString("\n")
	for _, warning := range warnings {
		sb.WriteString(WarningStyle.Render("  " + warning))
		sb.WriteString("\n")
	}
	return sb.String()
}

// shortHash truncates long hashes for display.
func shortHash(h string) string {
	if h == "" {
		return "-"
	}
	if len(h) > hashWidth {
		return h[:hashWidth-1] + "…"
	}
	return h
}

// padRight pads s with spaces on the right to width.
func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

func init() {
	Register("pretty", func() Formatter {
		return &PrettyFormatter{}
	})
}

// Ensure PrettyFormatter implements Formatter.
var _ Formatter = (*PrettyFormatter)(nil)
