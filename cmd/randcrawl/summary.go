package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/randcrawl/internal/config"
	"github.com/nao1215/randcrawl/internal/database"
	"github.com/nao1215/randcrawl/internal/model"
	"github.com/nao1215/randcrawl/internal/report"
)

// NewSummaryCmd creates the summary command.
// It reads a finished (or running) crawl back and renders a report.
func NewSummaryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary [run-dir | run-date]",
		Short: "Summarize the findings and errors of a crawl run",
		Long: `Summary reads the findings and error log of one run and prints the hosts
found, the error counts per kind and the most frequent keywords.

By default the argument is a run directory written by 'randcrawl crawl'.
With --db the argument is a run date (YYYY-MM-DD) looked up in the SQLite
database; the latest run is used when it is omitted.

Examples:
  # Summarize a run directory
  randcrawl summary ./2026-10-19

  # Markdown report
  randcrawl summary --markdown ./2026-10-19 > report.md

  # List the runs stored in the database
  randcrawl summary --db --list

  # Every finding of one host across all runs in the database
  randcrawl summary --db --host example.com`,
		Args: cobra.MaximumNArgs(1),
		RunE: runSummaryCmd,
	}

	// Source flags
	cmd.Flags().Bool("db", false,
		"Read from the SQLite database instead of a run directory")
	cmd.Flags().String("db-dir", "",
		"Database directory (default: XDG data directory)")
	cmd.Flags().BoolP("list", "l", false,
		"List the runs stored in the database (requires --db)")
	cmd.Flags().String("host", "",
		"List every finding of a hostname across runs (requires --db)")

	// Output format flags
	cmd.Flags().BoolP("json", "j", false,
		"Output the summary in JSON format")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output the summary in Markdown format")
	cmd.Flags().Int("top", config.DefaultTopKeywords,
		"Number of keywords in the merged keyword list")

	return cmd
}

// summaryOptions holds the parsed flags of the summary command.
type summaryOptions struct {
	useDB    bool
	dbDir    string
	list     bool
	host     string
	json     bool
	markdown bool
	top      int
	verbose  bool
}

// runSummaryCmd executes the summary command.
func runSummaryCmd(cmd *cobra.Command, args []string) error {
	opts, err := parseSummaryFlags(cmd)
	if err != nil {
		return err
	}
	if opts.json && opts.markdown {
		return errors.New("--json and --markdown are mutually exclusive")
	}
	if (opts.list || opts.host != "") && !opts.useDB {
		return errors.New("--list and --host require --db")
	}

	ctx := context.Background()
	out := cmd.OutOrStdout()

	if !opts.useDB {
		if len(args) == 0 {
			return errors.New("run directory is required (or use --db)")
		}
		summary, err := summarizeRunDir(args[0], opts.top)
		if err != nil {
			return err
		}
		return writeSummary(out, summary, opts)
	}

	dbDir := opts.dbDir
	if dbDir == "" {
		dbDir = config.XDGDataDir()
	}
	db, err := database.Open(dbDir, database.Options{CreateIfNotExists: false, EnableWAL: true})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	switch {
	case opts.list:
		return listRuns(ctx, out, db)
	case opts.host != "":
		return listHostFindings(ctx, out, db, opts.host)
	}

	runDate := ""
	if len(args) > 0 {
		runDate = filepath.Base(args[0])
	}
	summary, err := summarizeDBRun(ctx, db, runDate, opts.top)
	if err != nil {
		return err
	}
	return writeSummary(out, summary, opts)
}

func parseSummaryFlags(cmd *cobra.Command) (summaryOptions, error) {
	var opts summaryOptions
	var err error
	flags := cmd.Flags()

	if opts.useDB, err = flags.GetBool("db"); err != nil {
		return opts, err
	}
	if opts.dbDir, err = flags.GetString("db-dir"); err != nil {
		return opts, err
	}
	if opts.list, err = flags.GetBool("list"); err != nil {
		return opts, err
	}
	if opts.host, err = flags.GetString("host"); err != nil {
		return opts, err
	}
	if opts.json, err = flags.GetBool("json"); err != nil {
		return opts, err
	}
	if opts.markdown, err = flags.GetBool("markdown"); err != nil {
		return opts, err
	}
	if opts.top, err = flags.GetInt("top"); err != nil {
		return opts, err
	}
	opts.verbose = getVerboseFlag(cmd)
	return opts, nil
}

// summarizeRunDir loads a JSON Lines run directory.
func summarizeRunDir(dir string, top int) (*report.RunSummary, error) {
	findings, err := report.ReadFindings(dir)
	if err != nil {
		return nil, err
	}
	records, err := report.ReadErrors(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read error log: %w", err)
	}
	return report.Summarize(filepath.Base(filepath.Clean(dir)), findings, records, top), nil
}

// summarizeDBRun loads one run from the database. An empty runDate selects
// the latest run.
func summarizeDBRun(ctx context.Context, db *database.CrawlDB, runDate string, top int) (*report.RunSummary, error) {
	if runDate == "" {
		runs, err := db.ListRuns(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list runs: %w", err)
		}
		if len(runs) == 0 {
			return nil, errors.New("no runs found in the database")
		}
		runDate = runs[0]
	}

	findings, err := db.FindingsByRun(ctx, runDate)
	if err != nil {
		return nil, fmt.Errorf("failed to load findings: %w", err)
	}
	records, err := db.ErrorsByRun(ctx, runDate)
	if err != nil {
		return nil, fmt.Errorf("failed to load crawl errors: %w", err)
	}
	return report.Summarize(runDate, findings, records, top), nil
}

// writeSummary renders summary in the requested format.
func writeSummary(out io.Writer, summary *report.RunSummary, opts summaryOptions) error {
	var w report.Writer
	switch {
	case opts.json:
		w = report.NewJSONWriter(out, report.WithPrettyPrint())
	case opts.markdown:
		w = report.NewMarkdownWriter(out)
	default:
		w = report.NewSimpleWriter(out, report.WithVerbose(opts.verbose))
	}
	_, err := w.Write(summary)
	return err
}

// listRuns prints every run in the database with its host and error counts.
func listRuns(ctx context.Context, out io.Writer, db *database.CrawlDB) error {
	runs, err := db.ListRuns(ctx)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs found in the database.")
		fmt.Fprintln(out, "\nUse 'randcrawl crawl --db' to record a run.")
		return nil
	}

	fmt.Fprintf(out, "Runs (%d):\n\n", len(runs))
	fmt.Fprintf(out, "  %-10s  %6s  %s\n", "Date", "Hosts", "Errors")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 40))
	for _, run := range runs {
		hosts, err := db.ListHosts(ctx, run)
		if err != nil {
			return fmt.Errorf("failed to list hosts: %w", err)
		}
		counts, err := db.CountErrors(ctx, run)
		if err != nil {
			return fmt.Errorf("failed to count errors: %w", err)
		}
		fmt.Fprintf(out, "  %-10s  %6d  %s\n", run, len(hosts), formatErrorCounts(counts))
	}
	return nil
}

// formatErrorCounts renders counts per kind in a fixed order.
func formatErrorCounts(counts map[string]int) string {
	var parts []string
	for _, kind := range []model.ErrorKind{model.KindResolution, model.KindTransport, model.KindHTTP} {
		if n := counts[kind.String()]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s:%d", kind, n))
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, " ")
}

// listHostFindings prints every finding of hostname, newest first.
func listHostFindings(ctx context.Context, out io.Writer, db *database.CrawlDB, hostname string) error {
	findings, err := db.FindingsByHost(ctx, hostname)
	if err != nil {
		return fmt.Errorf("failed to load findings: %w", err)
	}
	if len(findings) == 0 {
		fmt.Fprintf(out, "No findings for %s\n", hostname)
		return nil
	}

	fmt.Fprintf(out, "Findings for %s (%d):\n\n", hostname, len(findings))
	for _, f := range findings {
		fmt.Fprintf(out, "  %s  %s  emails:%d  links:%d\n",
			f.Timestamp.Format("2006-01-02 15:04:05"), f.URL, len(f.Emails), len(f.Subdirectories))
	}
	return nil
}
