package config

import (
	"net/url"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "randcrawl"

	// DefaultMaxDepth follows one level of sub-links below every seed.
	DefaultMaxDepth = 1

	// DefaultWorkers is the number of root tasks crawled in parallel.
	// Most generated hosts fail at the lookup, so workers spend most of their
	// time waiting on DNS and a handful keeps the resolver busy enough.
	DefaultWorkers = 8

	// DefaultCrawlDelay is the flat rate-limit delay inserted before each
	// recursive child fetch.
	DefaultCrawlDelay = 1 * time.Second

	// DefaultTimeout bounds every connection test and every fetch.
	DefaultTimeout = 3 * time.Second

	// DefaultMaxBodySize limits the response body size read per fetch.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// DefaultTopKeywords is the number of keywords kept per finding.
	DefaultTopKeywords = 10

	// DefaultPreviewLength is the number of characters kept as content preview.
	DefaultPreviewLength = 100

	// DefaultMinLabelLength and DefaultMaxLabelLength bound generated host labels.
	DefaultMinLabelLength = 6
	DefaultMaxLabelLength = 10

	// DefaultUserAgent identifies the crawler to the operators of crawled hosts.
	DefaultUserAgent = "Mozilla/5.0 (compatible; randcrawl/1.0; +https://github.com/nao1215/randcrawl)"

	// DefaultContactHeader is the header carrying the operator contact.
	DefaultContactHeader = "X-Contact"

	// DefaultContact is sent in the contact header unless overridden.
	DefaultContact = "https://github.com/nao1215/randcrawl/issues"

	// DefaultOutputDir is where dated run directories are created.
	DefaultOutputDir = "."

	// DefaultKafkaTopic is the topic findings are published to when Kafka is enabled.
	DefaultKafkaTopic = "randcrawl.findings"

	// DefaultRedisPrefix namespaces the visited registry keys in Redis.
	DefaultRedisPrefix = "randcrawl:"
)

// DefaultTLDs are the top-level domains used for generated seeds.
var DefaultTLDs = []string{".com", ".net", ".org"}

// Config holds all configuration options for a crawl run.
// It is populated from defaults, then the YAML config file, then CLI flags,
// and passed down explicitly rather than kept in global state.
type Config struct {
	// MaxDepth is the depth budget of every root task.
	// 0 crawls only the seed itself.
	MaxDepth int

	// SeedPattern switches to fixed-seed mode when non-empty.
	// It must be an absolute URL with a scheme and a host.
	SeedPattern string

	// Workers is the size of the root task worker pool.
	Workers int

	// MaxSeeds stops seed submission after this many seeds. 0 means unbounded.
	MaxSeeds int

	// CrawlDelay is the rate-limit delay before each recursive child fetch.
	CrawlDelay time.Duration

	// Timeout bounds every connection test and fetch.
	Timeout time.Duration

	// MaxBodySize is the maximum response body size in bytes to read.
	MaxBodySize int64

	// UserAgent is sent with every outbound request.
	UserAgent string

	// ContactHeader and Contact form the operator contact header.
	ContactHeader string
	Contact       string

	// FetchPath requests the task URL's own path instead of the bare host.
	// Off by default, which reproduces the bare-host fetch behavior.
	FetchPath bool

	// TopKeywords is the number of keywords kept per finding.
	TopKeywords int

	// PreviewLength is the number of characters kept as content preview.
	PreviewLength int

	// MinLabelLength and MaxLabelLength bound the generated host label.
	MinLabelLength int
	MaxLabelLength int

	// TLDs are appended to generated labels.
	TLDs []string

	// OutputDir is the parent of the dated run directories.
	OutputDir string

	// ProxyAddress routes all traffic through a SOCKS5 proxy ("host:port").
	ProxyAddress string

	// SaveToDB mirrors findings and errors into the SQLite database in DBDir.
	SaveToDB bool

	// DBDir is the directory of the SQLite database.
	// Defaults to the XDG data directory (~/.local/share/randcrawl on Linux).
	DBDir string

	// RedisAddress switches the visited registry to Redis when set.
	RedisAddress string

	// RedisPrefix namespaces the registry keys.
	RedisPrefix string

	// KafkaBrokers enables publishing findings and errors to Kafka.
	KafkaBrokers []string

	// KafkaTopic is the topic used when KafkaBrokers is set.
	KafkaTopic string

	// Verbose enables debug logging.
	Verbose bool

	// JSONLog switches the operator log stream to JSON.
	JSONLog bool

	// ConfigFilePath is the YAML file that was loaded, if any.
	ConfigFilePath string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		MaxDepth:       DefaultMaxDepth,
		Workers:        DefaultWorkers,
		CrawlDelay:     DefaultCrawlDelay,
		Timeout:        DefaultTimeout,
		MaxBodySize:    DefaultMaxBodySize,
		UserAgent:      DefaultUserAgent,
		ContactHeader:  DefaultContactHeader,
		Contact:        DefaultContact,
		TopKeywords:    DefaultTopKeywords,
		PreviewLength:  DefaultPreviewLength,
		MinLabelLength: DefaultMinLabelLength,
		MaxLabelLength: DefaultMaxLabelLength,
		TLDs:           append([]string(nil), DefaultTLDs...),
		OutputDir:      DefaultOutputDir,
		DBDir:          XDGDataDir(),
		RedisPrefix:    DefaultRedisPrefix,
		KafkaTopic:     DefaultKafkaTopic,
	}
}

// XDGDataDir returns the XDG data directory for randcrawl.
// On Linux: ~/.local/share/randcrawl
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for randcrawl.
// On Linux: ~/.config/randcrawl
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Headers returns the fixed identification header set sent with every request.
func (c *Config) Headers() map[string]string {
	return map[string]string{
		"User-Agent":    c.UserAgent,
		c.ContactHeader: c.Contact,
	}
}

// Validate checks if the configuration is valid.
// It returns the first problem found as a sentinel error.
func (c *Config) Validate() error {
	if c.MaxDepth < 0 {
		return ErrInvalidDepth
	}
	if c.Workers <= 0 {
		return ErrInvalidWorkers
	}
	if c.MaxSeeds < 0 {
		return ErrInvalidMaxSeeds
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.CrawlDelay < 0 {
		return ErrInvalidCrawlDelay
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	if c.UserAgent == "" {
		return ErrMissingUserAgent
	}
	if c.ContactHeader == "" || c.Contact == "" {
		return ErrMissingContact
	}
	if c.SeedPattern != "" && !isAbsoluteURL(c.SeedPattern) {
		return ErrInvalidSeedPattern
	}
	if c.MinLabelLength <= 0 || c.MaxLabelLength < c.MinLabelLength {
		return ErrInvalidLabelLength
	}
	if c.SeedPattern == "" && len(c.TLDs) == 0 {
		return ErrNoTLDs
	}
	if len(c.KafkaBrokers) > 0 && c.KafkaTopic == "" {
		return ErrMissingKafkaTopic
	}
	return nil
}

// isAbsoluteURL reports whether raw has both a scheme and a host.
func isAbsoluteURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && u.Scheme != "" && u.Host != ""
}
