package analyzer

import (
	"fmt"
	"slices"
	"strings"
	"testing"

	"github.com/nao1215/randcrawl/internal/model"
)

func TestExtractSubdirectories(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		base string
		body string
		want []string
	}{
		{
			name: "external links excluded and duplicates collapsed",
			base: "http://x.com/p",
			body: `<a href="/a">a</a><a href="https://other.com/b">b</a><a href="/a">again</a>`,
			want: []string{"http://x.com/a"},
		},
		{
			name: "document order kept",
			base: "http://x.com",
			body: `<a href="/z">z</a><a href="/b">b</a><a href="/a?q=1">a</a>`,
			want: []string{"http://x.com/z", "http://x.com/b", "http://x.com/a?q=1"},
		},
		{
			name: "relative without slash ignored",
			base: "http://x.com/dir/",
			body: `<a href="page.html">p</a><a href="#top">t</a><a href="mailto:a@b.co">m</a>`,
			want: nil,
		},
		{
			name: "protocol relative ignored",
			base: "http://x.com",
			body: `<a href="//cdn.example.com/lib.js">cdn</a><a href="/ok">ok</a>`,
			want: []string{"http://x.com/ok"},
		},
		{
			name: "port of base kept",
			base: "http://127.0.0.1:8080/",
			body: `<a href="/a">a</a>`,
			want: []string{"http://127.0.0.1:8080/a"},
		},
		{
			name: "anchors without href ignored",
			base: "http://x.com",
			body: `<a name="x">x</a><link href="/style.css">`,
			want: nil,
		},
		{
			name: "malformed html tolerated",
			base: "http://x.com",
			body: `<div><a href="/a">unclosed<p><a href="/b">`,
			want: []string{"http://x.com/a", "http://x.com/b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := ExtractSubdirectories(tt.base, tt.body)
			if !slices.Equal(got, tt.want) {
				t.Errorf("ExtractSubdirectories() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsCrawlable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		url  string
		want bool
	}{
		{"http://x.com/a", true},
		{"https://127.0.0.1:8443/", true},
		{"/a", false},
		{"x.com/a", false},
		{"http://", false},
		{"http://[::1", false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			t.Parallel()
			if got := IsCrawlable(tt.url); got != tt.want {
				t.Errorf("IsCrawlable(%q) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}

func TestExtractEmails(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
		want []string
	}{
		{
			name: "single address",
			body: "contact me at a.b+c@sub.example.co",
			want: []string{"a.b+c@sub.example.co"},
		},
		{
			name: "no at sign",
			body: "nothing to see here",
			want: nil,
		},
		{
			name: "duplicates collapsed case preserved",
			body: `<a href="mailto:Info@Example.com">Info@Example.com</a> info@example.com`,
			want: []string{"Info@Example.com", "info@example.com"},
		},
		{
			name: "one letter tld rejected",
			body: "user@host.c",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := ExtractEmails(tt.body)
			if !slices.Equal(got, tt.want) {
				t.Errorf("ExtractEmails() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestKeywordFrequency(t *testing.T) {
	t.Parallel()

	t.Run("ties keep first occurrence order", func(t *testing.T) {
		t.Parallel()

		got := KeywordFrequency("c a b a b a b", 10)
		want := []model.KeywordCount{{Word: "a", Count: 3}, {Word: "b", Count: 3}, {Word: "c", Count: 1}}
		if !slices.Equal(got, want) {
			t.Errorf("KeywordFrequency() = %v, want %v", got, want)
		}
	})

	t.Run("at most topN entries", func(t *testing.T) {
		t.Parallel()

		words := make([]string, 0, 15)
		for i := range 15 {
			words = append(words, fmt.Sprintf("w%d", i))
		}
		got := KeywordFrequency(strings.Join(words, " "), 10)
		if len(got) != 10 {
			t.Fatalf("len = %d, want 10", len(got))
		}
		if got[0].Word != "w0" || got[9].Word != "w9" {
			t.Errorf("unexpected order: %v", got)
		}
	})

	t.Run("lower cased and punctuation split", func(t *testing.T) {
		t.Parallel()

		got := KeywordFrequency("Hello, HELLO! hello_world; Ünïcode ünïcode", 10)
		want := []model.KeywordCount{
			{Word: "hello", Count: 2},
			{Word: "ünïcode", Count: 2},
			{Word: "hello_world", Count: 1},
		}
		if !slices.Equal(got, want) {
			t.Errorf("KeywordFrequency() = %v, want %v", got, want)
		}
	})

	t.Run("markup tokens counted", func(t *testing.T) {
		t.Parallel()

		got := KeywordFrequency(`<p>go</p>`, 1)
		if len(got) != 1 || got[0].Word != "p" || got[0].Count != 2 {
			t.Errorf("KeywordFrequency() = %v, want [{p 2}]", got)
		}
	})

	t.Run("empty body", func(t *testing.T) {
		t.Parallel()

		if got := KeywordFrequency("  ...  ", 10); len(got) != 0 {
			t.Errorf("expected no keywords, got %v", got)
		}
	})

	t.Run("non-positive topN", func(t *testing.T) {
		t.Parallel()

		if got := KeywordFrequency("a b c", 0); got != nil {
			t.Errorf("expected nil, got %v", got)
		}
	})
}

func TestContentPreview(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
		n    int
		want string
	}{
		{name: "shorter than limit", body: "short", n: 100, want: "short"},
		{name: "truncated", body: strings.Repeat("a", 150), n: 100, want: strings.Repeat("a", 100)},
		{name: "multibyte not split", body: "日本語テキスト", n: 3, want: "日本語"},
		{name: "exact length", body: "abc", n: 3, want: "abc"},
		{name: "zero", body: "abc", n: 0, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ContentPreview(tt.body, tt.n); got != tt.want {
				t.Errorf("ContentPreview() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAnalyzerAnalyze(t *testing.T) {
	t.Parallel()

	body := `<html><body>Write to ops@example.org <a href="/docs">docs</a> docs docs</body></html>`
	res := New(WithTopKeywords(1), WithPreviewLength(6)).Analyze("http://example.org", body)

	if !slices.Equal(res.Subdirectories, []string{"http://example.org/docs"}) {
		t.Errorf("Subdirectories = %v", res.Subdirectories)
	}
	if !slices.Equal(res.Emails, []string{"ops@example.org"}) {
		t.Errorf("Emails = %v", res.Emails)
	}
	if len(res.TopKeywords) != 1 || res.TopKeywords[0].Word != "docs" {
		t.Errorf("TopKeywords = %v", res.TopKeywords)
	}
	if res.ContentPreview != "<html>" {
		t.Errorf("ContentPreview = %q", res.ContentPreview)
	}
}
