package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
)

// MarkdownWriter outputs run summaries in Markdown format.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation, which gives type-safe tables and GitHub-flavored alerts.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the summary in Markdown format.
func (w *MarkdownWriter) Write(summary *RunSummary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, summary)
	w.writeErrors(md, summary)
	w.writeHosts(md, summary)
	w.writeKeywords(md, summary)

	md.HorizontalRule()
	md.PlainText("")
	md.PlainText("*Summary generated by [randcrawl](https://github.com/nao1215/randcrawl)*")

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, s *RunSummary) {
	md.H1("randcrawl Run " + s.RunDate)
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Hosts", strconv.Itoa(len(s.Hosts))},
			{"Pages", strconv.Itoa(s.FindingCount)},
			{"Failures", strconv.Itoa(s.ErrorCount)},
		},
	})
	md.PlainText("")

	if s.HasFindings() {
		md.Note(fmt.Sprintf("%d page(s) fetched from %d host(s).", s.FindingCount, len(s.Hosts)))
	} else {
		md.Tip("No host answered during this run.")
	}
	md.PlainText("")
}

// writeErrors writes the failure table and a mermaid pie chart of kinds.
func (w *MarkdownWriter) writeErrors(md *markdown.Markdown, s *RunSummary) {
	if s.ErrorCount == 0 {
		return
	}
	md.H2("Failures")
	md.PlainText("")

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Failures by Kind"),
		piechart.WithShowData(true),
	)
	rows := make([][]string, 0, len(s.ErrorsByKind))
	for _, kind := range s.kindsInOrder() {
		n := s.ErrorsByKind[kind]
		rows = append(rows, []string{kind, strconv.Itoa(n)})
		chart.LabelAndIntValue(kind, uint64(n)) //nolint:gosec // counts are never negative
	}
	md.Table(markdown.TableSet{Header: []string{"Kind", "Count"}, Rows: rows})
	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func (w *MarkdownWriter) writeHosts(md *markdown.Markdown, s *RunSummary) {
	md.H2("Hosts")
	md.PlainText("")
	if len(s.Hosts) == 0 {
		md.PlainText("No hosts.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(s.Hosts))
	for i, h := range s.Hosts {
		emails := "-"
		if len(h.Emails) > 0 {
			emails = truncateString(strings.Join(h.Emails, ", "), 60)
		}
		rows[i] = []string{"`" + h.Hostname + "`", h.IPAddress, strconv.Itoa(h.Pages), emails}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Hostname", "IP Address", "Pages", "Emails"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeKeywords(md *markdown.Markdown, s *RunSummary) {
	if len(s.TopKeywords) == 0 {
		return
	}
	md.H2("Top Keywords")
	md.PlainText("")
	rows := make([][]string, len(s.TopKeywords))
	for i, kw := range s.TopKeywords {
		rows[i] = []string{kw.Word, strconv.Itoa(kw.Count)}
	}
	md.Table(markdown.TableSet{Header: []string{"Word", "Count"}, Rows: rows})
	md.PlainText("")
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
