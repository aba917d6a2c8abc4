package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/randcrawl/internal/analyzer"
	"github.com/nao1215/randcrawl/internal/config"
	"github.com/nao1215/randcrawl/internal/crawler"
	"github.com/nao1215/randcrawl/internal/database"
	"github.com/nao1215/randcrawl/internal/log"
	"github.com/nao1215/randcrawl/internal/protocol"
	"github.com/nao1215/randcrawl/internal/registry"
	"github.com/nao1215/randcrawl/internal/report"
	"github.com/nao1215/randcrawl/internal/runstate"
	"github.com/nao1215/randcrawl/internal/scheduler"
	"github.com/nao1215/randcrawl/internal/seed"
	"github.com/nao1215/randcrawl/internal/transport"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Crawl randomly generated hosts until interrupted",
		Long: `Crawl keeps generating candidate hosts and crawls each one on a bounded
worker pool. Every host is resolved, checked over HTTPS then HTTP, fetched,
and its same-host links are followed depth-first up to --depth levels.

Findings are appended to <output>/<YYYY-MM-DD>/<hostname>.jsonl and failures
to <output>/<YYYY-MM-DD>/error_log.jsonl. Press Ctrl+C to stop: in-flight
fetches finish, no new work starts. A second Ctrl+C exits immediately.

Examples:
  # Crawl random hosts, one level of sub-links each
  randcrawl crawl

  # Crawl a fixed seed three levels deep, once
  randcrawl crawl --seed http://example.com --depth 3 --max-seeds 1

  # Ask for depth and seed interactively
  randcrawl crawl -i

  # Route through a SOCKS5 proxy and mirror results into SQLite
  randcrawl crawl --proxy 127.0.0.1:9050 --db`,
		Args: cobra.NoArgs,
		RunE: runCrawlCmd,
	}

	// Traversal flags
	cmd.Flags().IntP("depth", "d", config.DefaultMaxDepth,
		"Maximum recursion depth below every seed")
	cmd.Flags().StringP("seed", "s", "",
		"Fixed seed URL (default: generate random hosts)")
	cmd.Flags().IntP("workers", "w", config.DefaultWorkers,
		"Number of seeds crawled in parallel")
	cmd.Flags().Int("max-seeds", 0,
		"Stop after this many seeds (0: run until interrupted)")
	cmd.Flags().Duration("delay", config.DefaultCrawlDelay,
		"Rate-limit delay before each sub-link fetch")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout of every connection test and fetch")
	cmd.Flags().Bool("fetch-path", false,
		"Request each discovered path instead of the bare host")
	cmd.Flags().BoolP("interactive", "i", false,
		"Prompt for depth and seed on stdin")

	// Network flags
	cmd.Flags().String("proxy", "",
		"Route all traffic through a SOCKS5 proxy (host:port)")

	// Output flags
	cmd.Flags().StringP("output", "o", config.DefaultOutputDir,
		"Parent directory of the dated run directories")
	cmd.Flags().Bool("db", false,
		"Mirror findings and errors into the SQLite database")
	cmd.Flags().String("redis", "",
		"Share the visited registry through Redis at this address")
	cmd.Flags().StringSlice("kafka-brokers", nil,
		"Publish findings and errors to these Kafka brokers")
	cmd.Flags().String("kafka-topic", config.DefaultKafkaTopic,
		"Kafka topic for findings and errors")
	cmd.Flags().Bool("json-log", false,
		"Write the operator log as JSON")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .randcrawl in current or home directory)")

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	interactive, err := cmd.Flags().GetBool("interactive")
	if err != nil {
		return err
	}
	if interactive {
		if err := promptSettings(cmd.InOrStdin(), cmd.OutOrStdout(), cfg); err != nil {
			return err
		}
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd.ErrOrStderr(), cfg)
	slog.SetDefault(logger)

	ctrl := runstate.New(context.Background(), runstate.WithLogger(logger))
	uninstall := ctrl.Install(os.Interrupt, syscall.SIGTERM)
	defer uninstall()

	stats, runDir, err := runCrawl(ctrl.Context(), cfg, logger, time.Now())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run directory: %s\n", runDir)
	fmt.Fprintf(out, "Seeds: %d  Pages: %d  Failures: %d  Skipped: %d  Aborted: %d\n",
		stats.SeedsSubmitted, stats.Pages, stats.Failures, stats.Skipped, stats.Aborted)
	return nil
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from defaults, the config file and the flags
// the user set explicitly, in that order of precedence.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Verbose = getVerboseFlag(cmd)

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// If user explicitly specified a config file path, error if not found.
	// If no path specified, silently keep defaults if no file found.
	found := config.FindConfigFile(configPath)
	switch {
	case found != "":
		file, err := config.LoadConfigFile(found)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", found, err)
		}
		file.ApplyTo(cfg)
		cfg.ConfigFilePath = found
	case configPath != "":
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, configPath)
	}

	if err := applyFlags(cmd, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyFlags copies every flag changed on the command line onto cfg.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	var err error

	intFlags := map[string]*int{
		"depth":     &cfg.MaxDepth,
		"workers":   &cfg.Workers,
		"max-seeds": &cfg.MaxSeeds,
	}
	for name, dst := range intFlags {
		if flags.Changed(name) {
			if *dst, err = flags.GetInt(name); err != nil {
				return err
			}
		}
	}

	stringFlags := map[string]*string{
		"seed":        &cfg.SeedPattern,
		"proxy":       &cfg.ProxyAddress,
		"output":      &cfg.OutputDir,
		"redis":       &cfg.RedisAddress,
		"kafka-topic": &cfg.KafkaTopic,
	}
	for name, dst := range stringFlags {
		if flags.Changed(name) {
			if *dst, err = flags.GetString(name); err != nil {
				return err
			}
		}
	}

	durationFlags := map[string]*time.Duration{
		"delay":   &cfg.CrawlDelay,
		"timeout": &cfg.Timeout,
	}
	for name, dst := range durationFlags {
		if flags.Changed(name) {
			if *dst, err = flags.GetDuration(name); err != nil {
				return err
			}
		}
	}

	boolFlags := map[string]*bool{
		"fetch-path": &cfg.FetchPath,
		"db":         &cfg.SaveToDB,
		"json-log":   &cfg.JSONLog,
	}
	for name, dst := range boolFlags {
		if flags.Changed(name) {
			if *dst, err = flags.GetBool(name); err != nil {
				return err
			}
		}
	}

	if flags.Changed("kafka-brokers") {
		if cfg.KafkaBrokers, err = flags.GetStringSlice("kafka-brokers"); err != nil {
			return err
		}
	}
	return nil
}

// errInvalidDepthInput is returned when the interactive depth is not a
// non-negative integer.
var errInvalidDepthInput = errors.New("depth must be a non-negative integer")

// promptSettings asks for the depth and an optional seed pattern.
// An empty answer keeps the current value.
func promptSettings(in io.Reader, out io.Writer, cfg *config.Config) error {
	scanner := bufio.NewScanner(in)

	fmt.Fprintf(out, "Enter the maximum crawl depth [%d]: ", cfg.MaxDepth)
	if scanner.Scan() {
		if answer := strings.TrimSpace(scanner.Text()); answer != "" {
			depth, err := strconv.Atoi(answer)
			if err != nil || depth < 0 {
				return fmt.Errorf("%w: %q", errInvalidDepthInput, answer)
			}
			cfg.MaxDepth = depth
		}
	}

	fmt.Fprint(out, "Enter a seed URL (leave empty for random hosts): ")
	if scanner.Scan() {
		if answer := strings.TrimSpace(scanner.Text()); answer != "" {
			cfg.SeedPattern = answer
		}
	}
	return scanner.Err()
}

// setupLogger creates the operator log stream.
func setupLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	if cfg.JSONLog {
		return log.NewSecureJSONLogger(w, cfg.Verbose)
	}
	return log.NewSecureLogger(w, cfg.Verbose)
}

// runCrawl wires every component and blocks until ctx is cancelled or the
// seed budget is spent. It returns the run's stats and run directory.
func runCrawl(ctx context.Context, cfg *config.Config, logger *slog.Logger, startedAt time.Time) (scheduler.Stats, string, error) {
	client, err := newTransport(ctx, cfg, logger)
	if err != nil {
		return scheduler.Stats{}, "", err
	}
	httpClient := client.HTTPClient()

	sink, runDir, err := buildSinks(cfg, startedAt, logger)
	if err != nil {
		return scheduler.Stats{}, "", err
	}
	defer func() {
		if err := sink.Close(); err != nil {
			logger.Error("failed to close sinks", "error", err)
		}
	}()

	reg, err := buildRegistry(ctx, cfg, logger)
	if err != nil {
		return scheduler.Stats{}, "", err
	}
	defer reg.Close()

	c := crawler.New(
		protocol.NewResolver(httpClient, protocol.WithResolveTimeout(cfg.Timeout)),
		protocol.NewFetcher(httpClient,
			protocol.WithFetchTimeout(cfg.Timeout),
			protocol.WithMaxBodySize(cfg.MaxBodySize),
		),
		reg,
		sink,
		crawler.WithLogger(logger),
		crawler.WithDelay(cfg.CrawlDelay),
		crawler.WithFetchPath(cfg.FetchPath),
		crawler.WithAnalyzer(analyzer.New(
			analyzer.WithTopKeywords(cfg.TopKeywords),
			analyzer.WithPreviewLength(cfg.PreviewLength),
		)),
	)

	s := scheduler.New(c,
		scheduler.WithWorkers(cfg.Workers),
		scheduler.WithMaxSeeds(cfg.MaxSeeds),
		scheduler.WithSeedInterval(cfg.CrawlDelay),
		scheduler.WithSeedOptions(
			seed.WithLabelLength(cfg.MinLabelLength, cfg.MaxLabelLength),
			seed.WithTLDs(cfg.TLDs...),
		),
		scheduler.WithLogger(logger),
	)

	stats, err := s.StartCrawl(ctx, cfg.MaxDepth, cfg.SeedPattern)
	if err != nil {
		return stats, runDir, fmt.Errorf("crawl failed: %w", err)
	}

	if n, err := reg.Len(context.WithoutCancel(ctx)); err == nil {
		logger.Info("visited registry", "urls", n)
	}
	return stats, runDir, nil
}

// newTransport builds the HTTP client and verifies the proxy, if any.
func newTransport(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*transport.Client, error) {
	opts := []transport.Option{transport.WithHeaders(cfg.Headers())}
	if cfg.ProxyAddress != "" {
		opts = append(opts, transport.WithProxy(cfg.ProxyAddress))
	}

	client, err := transport.NewClient(cfg.Timeout, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	if cfg.ProxyAddress != "" {
		if status := client.CheckConnection(ctx); status != transport.ProxyStatusOK {
			return nil, fmt.Errorf("proxy check failed: %w (make sure a SOCKS5 proxy is running at %s)",
				status.Error(), cfg.ProxyAddress)
		}
		logger.Info("proxy connection verified", "address", cfg.ProxyAddress)
	}
	return client, nil
}

// buildSinks opens the JSONL run directory and the optional SQLite and
// Kafka sinks. The returned sink owns all of them.
func buildSinks(cfg *config.Config, startedAt time.Time, logger *slog.Logger) (report.Sink, string, error) {
	fileSink, err := report.NewFileSink(cfg.OutputDir, startedAt)
	if err != nil {
		return nil, "", err
	}
	sinks := []report.Sink{fileSink}
	logger.Info("writing run directory", "dir", fileSink.Dir())

	if cfg.SaveToDB {
		db, err := database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			_ = fileSink.Close() //nolint:errcheck // Best effort cleanup
			return nil, "", fmt.Errorf("failed to open database: %w", err)
		}
		sinks = append(sinks, database.NewSink(db, startedAt.Format(report.RunDateLayout)))
		logger.Info("database opened", "path", db.Path())
	}

	if len(cfg.KafkaBrokers) > 0 {
		sinks = append(sinks, report.NewKafkaSink(cfg.KafkaBrokers, cfg.KafkaTopic))
		logger.Info("publishing to kafka", "brokers", strings.Join(cfg.KafkaBrokers, ","), "topic", cfg.KafkaTopic)
	}

	if len(sinks) == 1 {
		return fileSink, fileSink.Dir(), nil
	}
	return report.NewMultiSink(sinks...), fileSink.Dir(), nil
}

// buildRegistry returns the Redis registry when configured, otherwise an
// in-memory one.
func buildRegistry(ctx context.Context, cfg *config.Config, logger *slog.Logger) (registry.Registry, error) {
	if cfg.RedisAddress == "" {
		return registry.NewMemory(), nil
	}

	r := registry.NewRedis(cfg.RedisAddress, cfg.RedisPrefix)
	if err := r.Reset(ctx); err != nil {
		_ = r.Close() //nolint:errcheck // Best effort cleanup
		return nil, fmt.Errorf("failed to initialize redis registry: %w", err)
	}
	logger.Info("using redis registry", "address", cfg.RedisAddress, "prefix", cfg.RedisPrefix)
	return r, nil
}
