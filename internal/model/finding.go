package model

import "time"

// KeywordCount is a word and how many times it occurred on a page.
type KeywordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// Finding is the record produced exactly once per successfully fetched URL.
// It is appended to the record of its hostname and never mutated afterwards.
type Finding struct {
	// Timestamp is when the finding was built.
	Timestamp time.Time `json:"timestamp"`

	// URL is the task URL that was crawled.
	URL string `json:"url"`

	// IPAddress is the resolved address of the host.
	IPAddress string `json:"ip_address"`

	// Hostname is the host the page was fetched from.
	Hostname string `json:"hostname"`

	// StatusCode is the HTTP status of the fetch (always 200 for findings).
	StatusCode int `json:"status_code"`

	// ContentPreview holds the first characters of the body.
	ContentPreview string `json:"content_preview"`

	// Subdirectories are the absolute URLs of host-relative links on the page.
	Subdirectories []string `json:"subdirectories"`

	// Emails are the distinct address-shaped tokens found in the body.
	Emails []string `json:"emails"`

	// TopKeywords holds at most ten words, most frequent first.
	TopKeywords []KeywordCount `json:"top_keywords"`
}
