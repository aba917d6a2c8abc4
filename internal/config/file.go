package config

import "time"

// File represents the structure of the .randcrawl configuration file.
// Every field is optional; unset fields keep the value already in Config.
// Pointer fields distinguish "not set" from a meaningful zero (depth 0, delay 0).
type File struct {
	// Crawl holds the crawl behavior settings.
	Crawl CrawlSection `yaml:"crawl,omitempty"`

	// Seeds holds the seed generator settings.
	Seeds SeedSection `yaml:"seeds,omitempty"`

	// Identity holds the identification headers sent with every request.
	Identity IdentitySection `yaml:"identity,omitempty"`

	// Output holds the persistence settings.
	Output OutputSection `yaml:"output,omitempty"`
}

// CrawlSection configures traversal and networking.
type CrawlSection struct {
	Depth       *int           `yaml:"depth,omitempty"`
	Workers     *int           `yaml:"workers,omitempty"`
	MaxSeeds    *int           `yaml:"maxSeeds,omitempty"`
	Delay       *time.Duration `yaml:"delay,omitempty"`
	Timeout     *time.Duration `yaml:"timeout,omitempty"`
	MaxBodySize *int64         `yaml:"maxBodySize,omitempty"`
	FetchPath   *bool          `yaml:"fetchPath,omitempty"`
	Proxy       string         `yaml:"proxy,omitempty"`
	TopKeywords *int           `yaml:"topKeywords,omitempty"`
	Preview     *int           `yaml:"previewLength,omitempty"`
}

// SeedSection configures seed generation.
type SeedSection struct {
	// Pattern switches to fixed-seed mode when set.
	Pattern        string   `yaml:"pattern,omitempty"`
	MinLabelLength *int     `yaml:"minLabelLength,omitempty"`
	MaxLabelLength *int     `yaml:"maxLabelLength,omitempty"`
	TLDs           []string `yaml:"tlds,omitempty"`
}

// IdentitySection configures the identification headers.
type IdentitySection struct {
	UserAgent     string `yaml:"userAgent,omitempty"`
	ContactHeader string `yaml:"contactHeader,omitempty"`
	Contact       string `yaml:"contact,omitempty"`
}

// OutputSection configures where results go.
type OutputSection struct {
	Dir          string   `yaml:"dir,omitempty"`
	DB           *bool    `yaml:"db,omitempty"`
	DBDir        string   `yaml:"dbDir,omitempty"`
	Redis        string   `yaml:"redis,omitempty"`
	RedisPrefix  string   `yaml:"redisPrefix,omitempty"`
	KafkaBrokers []string `yaml:"kafkaBrokers,omitempty"`
	KafkaTopic   string   `yaml:"kafkaTopic,omitempty"`
}

// ApplyTo copies every value set in the file onto cfg.
// CLI flags are applied afterwards by the caller so they take precedence.
func (f *File) ApplyTo(cfg *Config) {
	c := f.Crawl
	setInt(&cfg.MaxDepth, c.Depth)
	setInt(&cfg.Workers, c.Workers)
	setInt(&cfg.MaxSeeds, c.MaxSeeds)
	setInt(&cfg.TopKeywords, c.TopKeywords)
	setInt(&cfg.PreviewLength, c.Preview)
	if c.Delay != nil {
		cfg.CrawlDelay = *c.Delay
	}
	if c.Timeout != nil {
		cfg.Timeout = *c.Timeout
	}
	if c.MaxBodySize != nil {
		cfg.MaxBodySize = *c.MaxBodySize
	}
	if c.FetchPath != nil {
		cfg.FetchPath = *c.FetchPath
	}
	setString(&cfg.ProxyAddress, c.Proxy)

	s := f.Seeds
	setString(&cfg.SeedPattern, s.Pattern)
	setInt(&cfg.MinLabelLength, s.MinLabelLength)
	setInt(&cfg.MaxLabelLength, s.MaxLabelLength)
	if len(s.TLDs) > 0 {
		cfg.TLDs = append([]string(nil), s.TLDs...)
	}

	id := f.Identity
	setString(&cfg.UserAgent, id.UserAgent)
	setString(&cfg.ContactHeader, id.ContactHeader)
	setString(&cfg.Contact, id.Contact)

	o := f.Output
	setString(&cfg.OutputDir, o.Dir)
	if o.DB != nil {
		cfg.SaveToDB = *o.DB
	}
	setString(&cfg.DBDir, o.DBDir)
	setString(&cfg.RedisAddress, o.Redis)
	setString(&cfg.RedisPrefix, o.RedisPrefix)
	if len(o.KafkaBrokers) > 0 {
		cfg.KafkaBrokers = append([]string(nil), o.KafkaBrokers...)
	}
	setString(&cfg.KafkaTopic, o.KafkaTopic)
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
