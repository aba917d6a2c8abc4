package seed

import (
	"errors"
	"math/rand/v2"
	"strings"
	"sync"
)

const alphabet = "abcdefghijklmnopqrstuvwxyz"

// ErrInvalidOptions is returned when the generator cannot produce any seed.
var ErrInvalidOptions = errors.New("seed generator needs a positive label range and at least one TLD")

// Generator produces seed URLs. It is safe for concurrent use.
type Generator struct {
	pattern string
	minLen  int
	maxLen  int
	tlds    []string

	mu  sync.Mutex
	rng *rand.Rand
}

// Option configures a Generator.
type Option func(*Generator)

// WithPattern switches the generator to fixed-seed mode.
// An empty pattern keeps random mode.
func WithPattern(pattern string) Option {
	return func(g *Generator) {
		g.pattern = pattern
	}
}

// WithLabelLength sets the inclusive range of generated label lengths.
func WithLabelLength(minLen, maxLen int) Option {
	return func(g *Generator) {
		g.minLen = minLen
		g.maxLen = maxLen
	}
}

// WithTLDs sets the top-level domains appended to generated labels.
// Each entry should include its leading dot.
func WithTLDs(tlds ...string) Option {
	return func(g *Generator) {
		g.tlds = append([]string(nil), tlds...)
	}
}

// WithSource replaces the random source. Tests use a seeded PCG for
// deterministic output.
func WithSource(src rand.Source) Option {
	return func(g *Generator) {
		g.rng = rand.New(src) //nolint:gosec // seeds are not security sensitive
	}
}

// NewGenerator creates a Generator with the 6..10 letter, .com/.net/.org defaults.
func NewGenerator(opts ...Option) (*Generator, error) {
	g := &Generator{
		minLen: 6,
		maxLen: 10,
		tlds:   []string{".com", ".net", ".org"},
		rng:    rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())), //nolint:gosec // seeds are not security sensitive
	}
	for _, opt := range opts {
		opt(g)
	}

	if g.pattern == "" && (g.minLen <= 0 || g.maxLen < g.minLen || len(g.tlds) == 0) {
		return nil, ErrInvalidOptions
	}
	return g, nil
}

// Fixed reports whether the generator returns a fixed pattern.
func (g *Generator) Fixed() bool {
	return g.pattern != ""
}

// Next returns the next seed URL.
// In fixed mode it returns the pattern verbatim without any validation.
func (g *Generator) Next() string {
	if g.pattern != "" {
		return g.pattern
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	n := g.minLen + g.rng.IntN(g.maxLen-g.minLen+1)
	var b strings.Builder
	b.Grow(len("http://") + n + 4)
	b.WriteString("http://")
	for range n {
		b.WriteByte(alphabet[g.rng.IntN(len(alphabet))])
	}
	b.WriteString(g.tlds[g.rng.IntN(len(g.tlds))])
	return b.String()
}
