package report

import (
	"fmt"
	"io"
	"strings"
)

// SimpleWriter outputs human-readable text summaries for terminal display.
type SimpleWriter struct {
	baseWriter

	// verbose lists the e-mail addresses of every host.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the summary in human-readable format.
func (w *SimpleWriter) Write(summary *RunSummary) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, summary)
	w.writeErrors(&sb, summary)
	w.writeHosts(&sb, summary)
	w.writeKeywords(&sb, summary)
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")

	return w.output.Write([]byte(sb.String()))
}

func (w *SimpleWriter) writeHeader(sb *strings.Builder, s *RunSummary) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                         RANDCRAWL RUN SUMMARY\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	fmt.Fprintf(sb, "Run Date:  %s\n", s.RunDate)
	fmt.Fprintf(sb, "Hosts:     %d\n", len(s.Hosts))
	fmt.Fprintf(sb, "Pages:     %d\n", s.FindingCount)
	fmt.Fprintf(sb, "Failures:  %d\n", s.ErrorCount)
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeErrors(sb *strings.Builder, s *RunSummary) {
	if s.ErrorCount == 0 {
		return
	}
	writeSection(sb, "FAILURES BY KIND")
	for _, kind := range s.kindsInOrder() {
		fmt.Fprintf(sb, "  %-12s %d\n", kind+":", s.ErrorsByKind[kind])
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeHosts(sb *strings.Builder, s *RunSummary) {
	writeSection(sb, "HOSTS")
	if len(s.Hosts) == 0 {
		sb.WriteString("  No host answered during this run\n\n")
		return
	}
	for _, h := range s.Hosts {
		fmt.Fprintf(sb, "  [+] %s (%s) pages=%d emails=%d\n", h.Hostname, h.IPAddress, h.Pages, len(h.Emails))
		if w.verbose {
			for _, e := range h.Emails {
				fmt.Fprintf(sb, "      %s\n", e)
			}
		}
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeKeywords(sb *strings.Builder, s *RunSummary) {
	if len(s.TopKeywords) == 0 {
		return
	}
	writeSection(sb, "TOP KEYWORDS")
	for _, kw := range s.TopKeywords {
		fmt.Fprintf(sb, "  %-20s %d\n", kw.Word, kw.Count)
	}
	sb.WriteString("\n")
}

func writeSection(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")
}
