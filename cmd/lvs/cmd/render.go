package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/dd0wney/cluso-lvs/pkg/compare"
)

// column of the pair table
type column struct {
	title string
	width int
	value func(p compare.PairResult) string
}

var pairColumns = []column{
	{"Cell", 20, func(p compare.PairResult) string { return p.First }},
	{"Counterpart", 20, func(p compare.PairResult) string { return p.Second }},
	{"Result", 10, func(p compare.PairResult) string { return resultText(p.Result) }},
	{"Tier", 18, func(p compare.PairResult) string { return p.Tier }},
	{"Iter", 6, func(p compare.PairResult) string { return strconv.Itoa(p.Iterations) }},
	{"Forced", 7, func(p compare.PairResult) string { return strconv.Itoa(p.ForcedSplits) }},
	{"Time", 10, func(p compare.PairResult) string { return p.Duration.Round(time.Microsecond).String() }},
}

type reportStyles struct {
	title   lipgloss.Style
	header  lipgloss.Style
	cell    lipgloss.Style
	match   lipgloss.Style
	miss    lipgloss.Style
	summary lipgloss.Style
	success lipgloss.Style
	failure lipgloss.Style
}

// newReportStyles binds the styles to a renderer for w so that colour is
// only emitted when w is a terminal
func newReportStyles(w io.Writer) reportStyles {
	r := lipgloss.NewRenderer(w)
	return reportStyles{
		title: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF00FF")),
		header: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00FFFF")).
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("#00FFFF")).
			BorderBottom(true),
		cell: r.NewStyle(),
		match: r.NewStyle().
			Foreground(lipgloss.Color("#00FF00")),
		miss: r.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true),
		summary: r.NewStyle().
			Foreground(lipgloss.Color("#888888")),
		success: r.NewStyle().
			Foreground(lipgloss.Color("#00FF00")).
			Bold(true),
		failure: r.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true),
	}
}

func resultText(r compare.Result) string {
	if r == compare.ResultTrue {
		return "match"
	}
	return "MISMATCH"
}

// truncate shortens s to width runes, marking the cut with "~"
func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-1]) + "~"
}

func renderReport(w io.Writer, report *compare.Report) string {
	st := newReportStyles(w)
	var sb strings.Builder

	sb.WriteString(st.title.Render(fmt.Sprintf("LVS %s vs %s", report.First, report.Second)))
	sb.WriteString("\n")
	sb.WriteString(st.summary.Render(fmt.Sprintf("run %s  mode %s  concurrent %t  %s",
		report.RunID, report.Mode, report.Concurrent, report.Duration.Round(time.Microsecond))))
	sb.WriteString("\n\n")

	headers := make([]string, len(pairColumns))
	for i, c := range pairColumns {
		headers[i] = st.cell.Width(c.width).Render(c.title)
	}
	sb.WriteString(st.header.Render(lipgloss.JoinHorizontal(lipgloss.Top, headers...)))
	sb.WriteString("\n")

	for _, p := range report.Pairs {
		row := make([]string, len(pairColumns))
		for i, c := range pairColumns {
			style := st.cell
			if c.title == "Result" {
				style = st.match
				if p.Result != compare.ResultTrue {
					style = st.miss
				}
			}
			row[i] = style.Width(c.width).Render(truncate(c.value(p), c.width-1))
		}
		sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, row...))
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	verdict := st.success
	if !report.Equivalent {
		verdict = st.failure
	}
	sb.WriteString(verdict.Render(report.Verdict()))
	sb.WriteString("\n")
	return sb.String()
}
