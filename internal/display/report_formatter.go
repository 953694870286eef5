// Package display renders metrics records, comparisons and scan results as
// text, JSON or a compact single line.
package display

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/standardbeagle/sauco/internal/compare"
	"github.com/standardbeagle/sauco/internal/scan"
	"github.com/standardbeagle/sauco/internal/types"
)

// Output formats
const (
	FormatText    = "text"
	FormatJSON    = "json"
	FormatCompact = "compact"
)

// ReportFormatter formats analysis results for display
type ReportFormatter struct {
	options FormatterOptions
}

// FormatterOptions controls report formatting
type FormatterOptions struct {
	Format      string             // "text", "json", "compact"
	ShowMethods bool               // List methods under the metric table
	Thresholds  map[string]float64 // nil uses the default thresholds
	Indent      string             // JSON indentation
}

// NewReportFormatter creates a new report formatter
func NewReportFormatter(options FormatterOptions) *ReportFormatter {
	if options.Format == "" {
		options.Format = FormatText
	}
	if options.Indent == "" {
		options.Indent = "  "
	}
	return &ReportFormatter{options: options}
}

// recordReport is the JSON shape of a single analysis
type recordReport struct {
	Source  string              `json:"source,omitempty"`
	Record  types.MetricsRecord `json:"record"`
	Summary compare.Summary     `json:"summary"`
}

// Record formats the metrics of one source unit. source names it in headers.
func (rf *ReportFormatter) Record(source string, record types.MetricsRecord) string {
	summary := compare.Summarize(record, rf.options.Thresholds)

	switch rf.options.Format {
	case FormatJSON:
		return rf.formatJSON(recordReport{Source: source, Record: record, Summary: summary})
	case FormatCompact:
		return rf.compactRecord(source, record, summary)
	default:
		return rf.textRecord(source, record, summary)
	}
}

// Comparison formats a before/after report
func (rf *ReportFormatter) Comparison(cmp compare.Comparison) string {
	switch rf.options.Format {
	case FormatJSON:
		return rf.formatJSON(cmp)
	case FormatCompact:
		return rf.compactComparison(cmp)
	default:
		return rf.textComparison(cmp)
	}
}

// Scan formats the result of a batch scan
func (rf *ReportFormatter) Scan(result *scan.Result) string {
	if result == nil {
		return "No scan data available"
	}

	switch rf.options.Format {
	case FormatJSON:
		return rf.formatJSON(result)
	case FormatCompact:
		return rf.compactScan(result)
	default:
		return rf.textScan(result)
	}
}

// FileReport formats one report of a scan or watch session
func (rf *ReportFormatter) FileReport(report scan.FileReport) string {
	switch rf.options.Format {
	case FormatJSON:
		return rf.formatJSON(report)
	case FormatCompact:
		return compactFileReport(report)
	default:
		if report.Metrics == nil {
			return fileReportLine(report)
		}
		return rf.textRecord(report.Path, *report.Metrics, compare.Summarize(*report.Metrics, rf.options.Thresholds))
	}
}

func (rf *ReportFormatter) textRecord(source string, record types.MetricsRecord, summary compare.Summary) string {
	var sb strings.Builder

	if source == "" {
		source = "<input>"
	}
	sb.WriteString(fmt.Sprintf("Metrics for '%s' (%s)\n", source, grammarLabel(record)))
	sb.WriteString(fmt.Sprintf("Overall score: %s\n", formatValue(summary.OverallScore)))
	sb.WriteString("\n")

	writeMetricTable(&sb, summary.Metrics)

	if rf.options.ShowMethods && len(record.Methods) > 0 {
		sb.WriteString("\n")
		complexity := make(map[string][]int)
		for _, fc := range record.PerFunctionComplexity {
			complexity[fc.Name] = append(complexity[fc.Name], fc.Complexity)
		}

		lines := make([]string, len(record.Methods))
		for i, m := range record.Methods {
			line := fmt.Sprintf("%s [%d-%d] (%d lines", m.Name, m.StartLine, m.EndLine, m.LineCount)
			// methods and per-function entries share source order, so repeated names line up
			if queue := complexity[m.Name]; len(queue) > 0 {
				line += fmt.Sprintf(", complexity=%d", queue[0])
				complexity[m.Name] = queue[1:]
			}
			lines[i] = line + ")"
		}
		writeTree(&sb, "methods", lines)
	}

	return sb.String()
}

func writeMetricTable(sb *strings.Builder, metrics []compare.Metric) {
	sb.WriteString(fmt.Sprintf("  %-24s %10s %10s  %s\n", "Metric", "Value", "Threshold", "Status"))
	for _, m := range metrics {
		status := "ok"
		if !m.IsGood {
			status = "over"
		}
		sb.WriteString(fmt.Sprintf("  %-24s %10s %10s  %s\n", m.Name, formatValue(m.Value), formatValue(m.Threshold), status))
	}
}

func (rf *ReportFormatter) textComparison(cmp compare.Comparison) string {
	var sb strings.Builder

	verdict := "unchanged"
	switch {
	case cmp.Improved():
		verdict = "improved"
	case cmp.ScoreDelta > 0:
		verdict = "regressed"
	}
	sb.WriteString(fmt.Sprintf("Comparison: score %s → %s (%s, %s)\n",
		formatValue(cmp.Before.OverallScore), formatValue(cmp.After.OverallScore),
		formatDelta(cmp.ScoreDelta), verdict))
	if cmp.Before.Fallback || cmp.After.Fallback {
		sb.WriteString("Note: lexical fallback used for at least one side\n")
	}
	sb.WriteString("\n")

	sb.WriteString(fmt.Sprintf("  %-24s %10s %10s %10s\n", "Metric", "Before", "After", "Delta"))
	for _, d := range cmp.Deltas {
		sb.WriteString(fmt.Sprintf("  %-24s %10s %10s %10s\n", d.Name, formatValue(d.Before), formatValue(d.After), formatDelta(d.Delta)))
	}

	if regressions := cmp.Regressions(); len(regressions) > 0 {
		names := make([]string, len(regressions))
		for i, m := range regressions {
			names[i] = m.Name
		}
		sb.WriteString(fmt.Sprintf("\nOver threshold after the change: %s\n", strings.Join(names, ", ")))
	}

	var lines []string
	for _, p := range cmp.Functions {
		name := p.Before
		if p.Renamed {
			name = fmt.Sprintf("%s → %s", p.Before, p.After)
		}
		line := fmt.Sprintf("%s (%d → %d, %s)", name, p.BeforeComplexity, p.AfterComplexity, formatDelta(float64(p.Delta)))
		if p.Renamed {
			line += fmt.Sprintf(" similarity=%.2f", p.Similarity)
		}
		lines = append(lines, line)
	}
	for _, fc := range cmp.Added {
		lines = append(lines, fmt.Sprintf("+ %s (%d)", fc.Name, fc.Complexity))
	}
	for _, fc := range cmp.Removed {
		lines = append(lines, fmt.Sprintf("- %s (%d)", fc.Name, fc.Complexity))
	}
	if len(lines) > 0 {
		sb.WriteString("\n")
		writeTree(&sb, "functions", lines)
	}

	return sb.String()
}

func (rf *ReportFormatter) textScan(result *scan.Result) string {
	var sb strings.Builder

	t := result.Totals
	sb.WriteString(fmt.Sprintf("Scan of '%s'\n", result.Root))
	sb.WriteString(fmt.Sprintf("Files: %d, analyzed: %d, skipped: %d, failed: %d, fallback: %d\n",
		t.Files, t.Analyzed, t.Skipped, t.Failed, t.Fallback))
	sb.WriteString(fmt.Sprintf("Methods: %d, cyclomatic complexity: %d, max nesting: %d\n",
		t.Methods, t.CyclomaticTotal, t.MaxNesting))

	if len(result.Reports) == 0 {
		return sb.String()
	}

	sb.WriteString("\n")
	lines := make([]string, len(result.Reports))
	for i, report := range result.Reports {
		lines[i] = fileReportLine(report)
	}
	writeTree(&sb, "files", lines)
	return sb.String()
}

func fileReportLine(report scan.FileReport) string {
	switch {
	case report.Error != "":
		return fmt.Sprintf("%s error: %s", report.Path, report.Error)
	case report.Metrics == nil:
		return fmt.Sprintf("%s skipped: %s", report.Path, report.Skipped)
	}

	m := report.Metrics
	line := fmt.Sprintf("%s [%s] methods=%d cc=%d cognitive=%d nesting=%d",
		report.Path, grammarLabel(*m), m.MethodCount, m.CyclomaticTotal, m.CognitiveComplexity, m.MaxNesting)
	if m.Fallback {
		line += " (fallback)"
	}
	return line
}

// writeTree draws lines as the children of a single root
func writeTree(sb *strings.Builder, root string, lines []string) {
	sb.WriteString("→ ")
	sb.WriteString(root)
	sb.WriteString("\n")

	for i, line := range lines {
		branch := "├─→ "
		if i == len(lines)-1 {
			branch = "└─→ "
		}
		sb.WriteString("  ")
		sb.WriteString(branch)
		sb.WriteString(line)
		sb.WriteString("\n")
	}
}

// compactRecord formats a record as a single line
func (rf *ReportFormatter) compactRecord(source string, record types.MetricsRecord, summary compare.Summary) string {
	parts := make([]string, 0, len(summary.Metrics)+2)
	if source != "" {
		parts = append(parts, source+":")
	}
	for _, m := range summary.Metrics {
		parts = append(parts, fmt.Sprintf("%s=%s", m.Key, formatValue(m.Value)))
	}
	parts = append(parts, "score="+formatValue(summary.OverallScore))
	if record.Fallback {
		parts = append(parts, "fallback")
	}
	return strings.Join(parts, " ")
}

func (rf *ReportFormatter) compactComparison(cmp compare.Comparison) string {
	parts := make([]string, 0, len(cmp.Deltas)+1)
	parts = append(parts, fmt.Sprintf("score=%s→%s",
		formatValue(cmp.Before.OverallScore), formatValue(cmp.After.OverallScore)))
	for _, d := range cmp.Deltas {
		if d.Delta != 0 {
			parts = append(parts, fmt.Sprintf("%s%s", d.Key, formatDelta(d.Delta)))
		}
	}
	return strings.Join(parts, " ")
}

func (rf *ReportFormatter) compactScan(result *scan.Result) string {
	lines := make([]string, 0, len(result.Reports)+1)
	for _, report := range result.Reports {
		lines = append(lines, compactFileReport(report))
	}
	t := result.Totals
	lines = append(lines, fmt.Sprintf("total: files=%d analyzed=%d skipped=%d failed=%d methods=%d cc=%d",
		t.Files, t.Analyzed, t.Skipped, t.Failed, t.Methods, t.CyclomaticTotal))
	return strings.Join(lines, "\n")
}

func compactFileReport(report scan.FileReport) string {
	switch {
	case report.Error != "":
		return report.Path + ": error"
	case report.Metrics == nil:
		return report.Path + ": skipped (" + report.Skipped + ")"
	}
	m := report.Metrics
	return fmt.Sprintf("%s: methods=%d ifs=%d loops=%d cc=%d nesting=%d",
		report.Path, m.MethodCount, m.IfCount, m.LoopCount, m.CyclomaticTotal, m.MaxNesting)
}

func (rf *ReportFormatter) formatJSON(v interface{}) string {
	data, err := json.MarshalIndent(v, "", rf.options.Indent)
	if err != nil {
		return fmt.Sprintf(`{"error": %q}`, err.Error())
	}
	return string(data)
}

func grammarLabel(record types.MetricsRecord) string {
	label := record.Grammar
	if label == "" {
		label = "unknown"
	}
	if record.Fallback {
		label += ", fallback"
	}
	return label
}

// formatValue prints whole numbers without decimals
func formatValue(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.2f", v)
}

func formatDelta(v float64) string {
	if v > 0 {
		return "+" + formatValue(v)
	}
	return formatValue(v)
}
