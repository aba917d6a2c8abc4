package report

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/nao1215/randcrawl/internal/model"
)

const (
	// ErrorLogName is the file holding every ErrorRecord of a run.
	ErrorLogName = "error_log.jsonl"

	// findingExt is the extension of per-host finding files.
	findingExt = ".jsonl"

	// RunDateLayout names run directories.
	RunDateLayout = "2006-01-02"

	// maxLineSize bounds a single JSON line when reading a run back.
	maxLineSize = 4 * 1024 * 1024
)

// RunDir returns the directory of the run started at t below outputDir.
func RunDir(outputDir string, t time.Time) string {
	return filepath.Join(outputDir, t.Format(RunDateLayout))
}

// SanitizeHostname maps every rune that is not a Unicode letter, a number
// or '_' to '_' so a hostname can be used as a file name.
func SanitizeHostname(hostname string) string {
	return strings.Map(func(r rune) rune {
		if r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r) {
			return r
		}
		return '_'
	}, hostname)
}

// FileSink appends JSON Lines to the dated run directory.
// Findings go to one file per sanitized hostname, errors to ErrorLogName.
type FileSink struct {
	dir string

	findingsMu sync.Mutex
	errorsMu   sync.Mutex
}

var _ Sink = (*FileSink)(nil)

// NewFileSink creates the run directory for runDate below outputDir.
// An existing directory is reused and its files are appended to.
func NewFileSink(outputDir string, runDate time.Time) (*FileSink, error) {
	dir := RunDir(outputDir, runDate)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create run directory: %w", err)
	}
	return &FileSink{dir: dir}, nil
}

// Dir returns the run directory.
func (s *FileSink) Dir() string {
	return s.dir
}

// RecordFinding implements Sink.
func (s *FileSink) RecordFinding(_ context.Context, finding *model.Finding) error {
	s.findingsMu.Lock()
	defer s.findingsMu.Unlock()

	name := SanitizeHostname(finding.Hostname) + findingExt
	if name == ErrorLogName {
		// A host literally named "error_log" must not corrupt the error log.
		name = "_" + name
	}
	return appendJSONLine(filepath.Join(s.dir, name), finding)
}

// RecordError implements Sink.
func (s *FileSink) RecordError(_ context.Context, record *model.ErrorRecord) error {
	s.errorsMu.Lock()
	defer s.errorsMu.Unlock()

	return appendJSONLine(filepath.Join(s.dir, ErrorLogName), record)
}

// Close implements Sink. Files are opened per write, so there is nothing to flush.
func (s *FileSink) Close() error {
	return nil
}

// appendJSONLine appends v as one line of JSON to path.
func appendJSONLine(path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}
	data = append(data, '\n')

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600) //nolint:gosec // path is built from a sanitized name
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to append to %s: %w", path, err)
	}
	return f.Close()
}

// ReadFindings loads every finding stored in runDir, ordered by file name
// and then by line.
func ReadFindings(runDir string) ([]model.Finding, error) {
	entries, err := os.ReadDir(runDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read run directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || e.Name() == ErrorLogName || filepath.Ext(e.Name()) != findingExt {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	var findings []model.Finding
	for _, name := range names {
		err := readJSONLines(filepath.Join(runDir, name), func(line []byte) error {
			var f model.Finding
			if err := json.Unmarshal(line, &f); err != nil {
				return err
			}
			findings = append(findings, f)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return findings, nil
}

// ReadErrors loads the error log of runDir. A missing log means no errors.
func ReadErrors(runDir string) ([]model.ErrorRecord, error) {
	var records []model.ErrorRecord
	err := readJSONLines(filepath.Join(runDir, ErrorLogName), func(line []byte) error {
		var r model.ErrorRecord
		if err := json.Unmarshal(line, &r); err != nil {
			return err
		}
		records = append(records, r)
		return nil
	})
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	return records, err
}

// readJSONLines calls fn for every non-empty line of path.
func readJSONLines(path string, fn func([]byte) error) error {
	f, err := os.Open(path) //nolint:gosec // run directory is chosen by the user
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if err := fn(line); err != nil {
			return fmt.Errorf("%s:%d: %w", path, lineNo, err)
		}
	}
	return scanner.Err()
}
