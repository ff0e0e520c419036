package divscan

import (
	"fmt"
	"strings"
	"time"
)

// borderSet holds the glyphs of one table style. Each rule is
// {left end, column join, right end}.
type borderSet struct {
	rule, sep           string
	top, header, bottom [3]string
}

var tableStyles = map[string]borderSet{
	"rounded": {rule: "─", sep: "│", top: [3]string{"╭", "┬", "╮"}, header: [3]string{"├", "┼", "┤"}, bottom: [3]string{"╰", "┴", "╯"}},
	"sharp":   {rule: "─", sep: "│", top: [3]string{"┌", "┬", "┐"}, header: [3]string{"├", "┼", "┤"}, bottom: [3]string{"└", "┴", "┘"}},
	"ascii":   {rule: "-", sep: "|", top: [3]string{"+", "+", "+"}, header: [3]string{"+", "+", "+"}, bottom: [3]string{"+", "+", "+"}},
	"minimal": {rule: "─", sep: " ", top: [3]string{" ", " ", " "}, header: [3]string{" ", " ", " "}, bottom: [3]string{" ", " ", " "}},
}

// TableStyles returns the names accepted by NewTableReporter.
func TableStyles() []string {
	return []string{"rounded", "sharp", "ascii", "minimal"}
}

// formatMillis renders d as fractional milliseconds.
func formatMillis(d time.Duration) string {
	return fmt.Sprintf("%.3f ms", float64(d.Nanoseconds())/1e6)
}

// formatMin renders a minimum, or "none" when nothing matched.
func formatMin(r Result) string {
	if !r.Found() {
		return "none"
	}
	return fmt.Sprintf("%d", r.Min)
}

// renderTable draws headers and rows as a bordered table. The first column
// is left-aligned, the rest right-aligned.
func renderTable(headers []string, rows [][]string, style string) string {
	set, ok := tableStyles[style]
	if !ok {
		set = tableStyles["rounded"]
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var sb strings.Builder
	border := func(ends [3]string) {
		sb.WriteString(ends[0])
		for i, w := range widths {
			if i > 0 {
				sb.WriteString(ends[1])
			}
			sb.WriteString(strings.Repeat(set.rule, w+2))
		}
		sb.WriteString(ends[2])
		sb.WriteString("\n")
	}
	line := func(cells []string) {
		sb.WriteString(set.sep)
		for i, w := range widths {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			if i == 0 {
				sb.WriteString(fmt.Sprintf(" %-*s ", w, cell))
			} else {
				sb.WriteString(fmt.Sprintf(" %*s ", w, cell))
			}
			sb.WriteString(set.sep)
		}
		sb.WriteString("\n")
	}

	border(set.top)
	line(headers)
	border(set.header)
	for _, row := range rows {
		line(row)
	}
	border(set.bottom)

	return sb.String()
}
