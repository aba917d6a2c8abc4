package config

import "errors"

// Configuration validation errors returned by Config.Validate().
// Callers can match them with errors.Is().
var (
	// ErrInvalidDepth is returned when the maximum depth is negative.
	ErrInvalidDepth = errors.New("invalid depth: must be zero or positive")

	// ErrInvalidWorkers is returned when the worker pool size is not positive.
	ErrInvalidWorkers = errors.New("invalid worker count: must be positive")

	// ErrInvalidMaxSeeds is returned when the seed limit is negative.
	ErrInvalidMaxSeeds = errors.New("invalid max seeds: must be non-negative (0 means unbounded)")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidCrawlDelay is returned when the crawl delay is negative.
	ErrInvalidCrawlDelay = errors.New("invalid crawl delay: must be non-negative")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrMissingUserAgent is returned when the identification user agent is empty.
	ErrMissingUserAgent = errors.New("user agent must not be empty")

	// ErrMissingContact is returned when the contact header or its value is empty.
	ErrMissingContact = errors.New("contact header and value must not be empty")

	// ErrInvalidSeedPattern is returned when a fixed seed lacks a scheme or host.
	ErrInvalidSeedPattern = errors.New("invalid seed pattern: must be an absolute URL such as http://example.com")

	// ErrInvalidLabelLength is returned when the generated label length range is empty.
	ErrInvalidLabelLength = errors.New("invalid label length: min must be positive and not above max")

	// ErrNoTLDs is returned when random seeds are requested without any TLD.
	ErrNoTLDs = errors.New("no top-level domains configured for generated seeds")

	// ErrMissingKafkaTopic is returned when Kafka brokers are set without a topic.
	ErrMissingKafkaTopic = errors.New("kafka topic must be set when kafka brokers are configured")
)
