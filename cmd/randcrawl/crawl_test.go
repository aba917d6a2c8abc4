package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/randcrawl/internal/config"
	"github.com/nao1215/randcrawl/internal/registry"
	"github.com/nao1215/randcrawl/internal/report"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// writeConfigFile writes content to a config file in a temp directory.
func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".randcrawl")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

// parsedCrawlCmd returns a crawl command whose flags were parsed from args.
func parsedCrawlCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := NewCrawlCmd()
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatalf("failed to parse flags %v: %v", args, err)
	}
	return cmd
}

func TestNewCrawlCmd(t *testing.T) {
	t.Parallel()

	cmd := NewCrawlCmd()

	if cmd.Use != "crawl" {
		t.Errorf("unexpected Use: got %q", cmd.Use)
	}

	flagsWithShort := map[string]string{
		"depth":       "d",
		"seed":        "s",
		"workers":     "w",
		"timeout":     "t",
		"interactive": "i",
		"output":      "o",
		"config":      "c",
	}
	for flag, shorthand := range flagsWithShort {
		f := cmd.Flags().Lookup(flag)
		if f == nil {
			t.Errorf("expected flag %q to exist", flag)
			continue
		}
		if f.Shorthand != shorthand {
			t.Errorf("flag %q: expected shorthand %q, got %q", flag, shorthand, f.Shorthand)
		}
	}

	for _, flag := range []string{"max-seeds", "delay", "fetch-path", "proxy", "db", "redis", "kafka-brokers", "kafka-topic", "json-log"} {
		if cmd.Flags().Lookup(flag) == nil {
			t.Errorf("expected flag %q to exist", flag)
		}
	}

	t.Run("defaults match config defaults", func(t *testing.T) {
		t.Parallel()
		defaults := map[string]string{
			"depth":   "1",
			"workers": "8",
			"delay":   config.DefaultCrawlDelay.String(),
			"timeout": config.DefaultTimeout.String(),
		}
		for flag, want := range defaults {
			if got := cmd.Flags().Lookup(flag).DefValue; got != want {
				t.Errorf("flag %q: expected default %q, got %q", flag, want, got)
			}
		}
	})
}

func TestBuildConfig(t *testing.T) {
	t.Parallel()

	t.Run("empty config file keeps defaults", func(t *testing.T) {
		t.Parallel()
		path := writeConfigFile(t, "")

		cfg, err := buildConfig(parsedCrawlCmd(t, "-c", path))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.MaxDepth != config.DefaultMaxDepth || cfg.Workers != config.DefaultWorkers {
			t.Errorf("expected defaults, got depth=%d workers=%d", cfg.MaxDepth, cfg.Workers)
		}
		if cfg.ConfigFilePath != path {
			t.Errorf("expected ConfigFilePath %q, got %q", path, cfg.ConfigFilePath)
		}
	})

	t.Run("config file overrides defaults", func(t *testing.T) {
		t.Parallel()
		path := writeConfigFile(t, `
crawl:
  depth: 0
  workers: 2
  delay: 250ms
seeds:
  pattern: "http://example.com"
output:
  kafkaBrokers: ["127.0.0.1:9092"]
`)

		cfg, err := buildConfig(parsedCrawlCmd(t, "-c", path))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.MaxDepth != 0 {
			t.Errorf("expected depth 0 from file, got %d", cfg.MaxDepth)
		}
		if cfg.Workers != 2 {
			t.Errorf("expected 2 workers, got %d", cfg.Workers)
		}
		if cfg.CrawlDelay != 250*time.Millisecond {
			t.Errorf("expected delay 250ms, got %v", cfg.CrawlDelay)
		}
		if cfg.SeedPattern != "http://example.com" {
			t.Errorf("expected seed pattern from file, got %q", cfg.SeedPattern)
		}
		if len(cfg.KafkaBrokers) != 1 {
			t.Errorf("expected kafka brokers from file, got %v", cfg.KafkaBrokers)
		}
	})

	t.Run("flags override config file", func(t *testing.T) {
		t.Parallel()
		path := writeConfigFile(t, "crawl:\n  depth: 5\n  workers: 2\n")

		cfg, err := buildConfig(parsedCrawlCmd(t,
			"-c", path,
			"--depth", "3",
			"--delay", "0s",
			"--fetch-path",
			"--kafka-brokers", "a:9092,b:9092",
			"--seed", "https://example.org",
		))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.MaxDepth != 3 {
			t.Errorf("expected depth 3 from flag, got %d", cfg.MaxDepth)
		}
		if cfg.Workers != 2 {
			t.Errorf("expected unchanged flag to keep file value 2, got %d", cfg.Workers)
		}
		if cfg.CrawlDelay != 0 {
			t.Errorf("expected delay 0 from flag, got %v", cfg.CrawlDelay)
		}
		if !cfg.FetchPath {
			t.Error("expected fetch-path from flag")
		}
		if len(cfg.KafkaBrokers) != 2 {
			t.Errorf("expected 2 kafka brokers, got %v", cfg.KafkaBrokers)
		}
		if cfg.SeedPattern != "https://example.org" {
			t.Errorf("expected seed from flag, got %q", cfg.SeedPattern)
		}
	})

	t.Run("missing explicit config file is an error", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "missing.yaml")

		_, err := buildConfig(parsedCrawlCmd(t, "-c", path))
		if !errors.Is(err, config.ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("malformed config file is an error", func(t *testing.T) {
		t.Parallel()
		path := writeConfigFile(t, "crawl: [not, a, map")

		if _, err := buildConfig(parsedCrawlCmd(t, "-c", path)); err == nil {
			t.Error("expected parse error")
		}
	})
}

func TestRunCrawlCmdRejectsInvalidConfig(t *testing.T) {
	t.Parallel()

	path := writeConfigFile(t, "")
	cmd := NewCrawlCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"-c", path, "--depth=-1"})

	err := cmd.Execute()
	if !errors.Is(err, config.ErrInvalidDepth) {
		t.Errorf("expected ErrInvalidDepth, got %v", err)
	}
}

func TestPromptSettings(t *testing.T) {
	t.Parallel()

	t.Run("reads depth and seed", func(t *testing.T) {
		t.Parallel()
		cfg := config.NewConfig()
		var out bytes.Buffer

		err := promptSettings(strings.NewReader("3\nhttp://example.com\n"), &out, cfg)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.MaxDepth != 3 {
			t.Errorf("expected depth 3, got %d", cfg.MaxDepth)
		}
		if cfg.SeedPattern != "http://example.com" {
			t.Errorf("expected seed, got %q", cfg.SeedPattern)
		}
		if !strings.Contains(out.String(), "maximum crawl depth") {
			t.Errorf("expected depth prompt, got %q", out.String())
		}
	})

	t.Run("empty answers keep current values", func(t *testing.T) {
		t.Parallel()
		cfg := config.NewConfig()
		cfg.MaxDepth = 2

		if err := promptSettings(strings.NewReader("\n\n"), io.Discard, cfg); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.MaxDepth != 2 || cfg.SeedPattern != "" {
			t.Errorf("expected unchanged config, got depth=%d seed=%q", cfg.MaxDepth, cfg.SeedPattern)
		}
	})

	t.Run("end of input keeps current values", func(t *testing.T) {
		t.Parallel()
		cfg := config.NewConfig()

		if err := promptSettings(strings.NewReader(""), io.Discard, cfg); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.MaxDepth != config.DefaultMaxDepth {
			t.Errorf("expected default depth, got %d", cfg.MaxDepth)
		}
	})

	t.Run("rejects invalid depth", func(t *testing.T) {
		t.Parallel()
		for _, input := range []string{"abc\n", "-1\n", "1.5\n"} {
			cfg := config.NewConfig()
			err := promptSettings(strings.NewReader(input), io.Discard, cfg)
			if !errors.Is(err, errInvalidDepthInput) {
				t.Errorf("input %q: expected errInvalidDepthInput, got %v", input, err)
			}
		}
	})
}

func TestSetupLogger(t *testing.T) {
	t.Parallel()

	t.Run("json log", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		cfg := config.NewConfig()
		cfg.JSONLog = true

		setupLogger(&buf, cfg).Info("finding recorded", "url", "http://example.com")

		var entry map[string]any
		if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
			t.Fatalf("expected JSON output, got %q: %v", buf.String(), err)
		}
		if entry["msg"] != "finding recorded" {
			t.Errorf("unexpected msg %v", entry["msg"])
		}
	})

	t.Run("debug only when verbose", func(t *testing.T) {
		t.Parallel()
		var quiet, verbose bytes.Buffer

		cfg := config.NewConfig()
		setupLogger(&quiet, cfg).Debug("task state")

		cfg.Verbose = true
		setupLogger(&verbose, cfg).Debug("task state")

		if quiet.Len() != 0 {
			t.Errorf("expected no debug output without verbose, got %q", quiet.String())
		}
		if !strings.Contains(verbose.String(), "task state") {
			t.Errorf("expected debug output with verbose, got %q", verbose.String())
		}
	})
}

func TestBuildRegistryDefaultsToMemory(t *testing.T) {
	t.Parallel()

	reg, err := buildRegistry(context.Background(), config.NewConfig(), discardLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer reg.Close()

	if _, ok := reg.(*registry.Memory); !ok {
		t.Errorf("expected memory registry, got %T", reg)
	}
}

func TestRunCrawl(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = io.WriteString(w, `<html><body>
			<a href="/about">about</a>
			contact: ops@example.com
		</body></html>`)
	}))
	defer server.Close()

	cfg := config.NewConfig()
	cfg.SeedPattern = server.URL
	cfg.MaxSeeds = 1
	cfg.MaxDepth = 1
	cfg.CrawlDelay = 0
	cfg.Timeout = 2 * time.Second
	cfg.OutputDir = t.TempDir()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("invalid test config: %v", err)
	}

	startedAt := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	stats, runDir, err := runCrawl(context.Background(), cfg, discardLogger(), startedAt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if want := filepath.Join(cfg.OutputDir, "2026-10-19"); runDir != want {
		t.Errorf("expected run dir %q, got %q", want, runDir)
	}
	if stats.SeedsSubmitted != 1 || stats.Pages != 2 || stats.Failures != 0 {
		t.Errorf("unexpected stats %+v", stats)
	}

	findings, err := report.ReadFindings(runDir)
	if err != nil {
		t.Fatalf("failed to read findings: %v", err)
	}
	if len(findings) != 2 {
		t.Fatalf("expected 2 findings, got %d", len(findings))
	}
	for _, f := range findings {
		if len(f.Emails) != 1 || f.Emails[0] != "ops@example.com" {
			t.Errorf("unexpected emails %v in %s", f.Emails, f.URL)
		}
	}
}
