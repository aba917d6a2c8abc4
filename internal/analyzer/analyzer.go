package analyzer

import "github.com/nao1215/randcrawl/internal/model"

// Result bundles everything extracted from one page.
type Result struct {
	Subdirectories []string
	Emails         []string
	TopKeywords    []model.KeywordCount
	ContentPreview string
}

// Analyzer runs all extractors over a page.
type Analyzer struct {
	topKeywords   int
	previewLength int
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithTopKeywords sets how many keywords are kept.
func WithTopKeywords(n int) Option {
	return func(a *Analyzer) {
		a.topKeywords = n
	}
}

// WithPreviewLength sets how many characters the content preview keeps.
func WithPreviewLength(n int) Option {
	return func(a *Analyzer) {
		a.previewLength = n
	}
}

// New creates an Analyzer keeping 10 keywords and a 100 character preview.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		topKeywords:   10,
		previewLength: 100,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze extracts links, e-mails, keywords and the preview from body.
// All extractors see the raw body, markup included.
func (a *Analyzer) Analyze(baseURL, body string) Result {
	return Result{
		Subdirectories: ExtractSubdirectories(baseURL, body),
		Emails:         ExtractEmails(body),
		TopKeywords:    KeywordFrequency(body, a.topKeywords),
		ContentPreview: ContentPreview(body, a.previewLength),
	}
}

// ContentPreview returns the first n characters of body.
// Multi-byte characters are never split.
func ContentPreview(body string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range body {
		if count == n {
			return body[:i]
		}
		count++
	}
	return body
}
