// Package config provides configuration management for randcrawl.
package config
