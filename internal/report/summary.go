package report

import (
	"slices"
	"sort"

	"github.com/nao1215/randcrawl/internal/model"
)

// HostSummary aggregates the findings of one hostname.
type HostSummary struct {
	Hostname  string   `json:"hostname"`
	IPAddress string   `json:"ip_address"`
	Pages     int      `json:"pages"`
	Emails    []string `json:"emails"`
}

// RunSummary aggregates one run directory.
type RunSummary struct {
	// RunDate is the name of the run directory.
	RunDate string `json:"run_date"`

	// Hosts are ordered by page count, then hostname.
	Hosts []HostSummary `json:"hosts"`

	// FindingCount is the number of successfully fetched pages.
	FindingCount int `json:"finding_count"`

	// ErrorCount is the number of failed attempts.
	ErrorCount int `json:"error_count"`

	// ErrorsByKind counts failed attempts per error kind.
	ErrorsByKind map[string]int `json:"errors_by_kind"`

	// TopKeywords merges the per-page keyword counts of the whole run.
	TopKeywords []model.KeywordCount `json:"top_keywords"`
}

// HasFindings reports whether any page was fetched successfully.
func (s *RunSummary) HasFindings() bool {
	return s.FindingCount > 0
}

// Summarize builds a RunSummary from the records of one run.
// topN bounds the merged keyword list.
func Summarize(runDate string, findings []model.Finding, records []model.ErrorRecord, topN int) *RunSummary {
	s := &RunSummary{
		RunDate:      runDate,
		FindingCount: len(findings),
		ErrorCount:   len(records),
		ErrorsByKind: make(map[string]int),
	}

	hosts := make(map[string]*HostSummary)
	wordCounts := make(map[string]int)
	var wordOrder []string
	for _, f := range findings {
		h, ok := hosts[f.Hostname]
		if !ok {
			h = &HostSummary{Hostname: f.Hostname, IPAddress: f.IPAddress}
			hosts[f.Hostname] = h
		}
		h.Pages++
		for _, e := range f.Emails {
			if !slices.Contains(h.Emails, e) {
				h.Emails = append(h.Emails, e)
			}
		}
		for _, kw := range f.TopKeywords {
			if _, seen := wordCounts[kw.Word]; !seen {
				wordOrder = append(wordOrder, kw.Word)
			}
			wordCounts[kw.Word] += kw.Count
		}
	}

	for _, h := range hosts {
		s.Hosts = append(s.Hosts, *h)
	}
	sort.Slice(s.Hosts, func(i, j int) bool {
		if s.Hosts[i].Pages != s.Hosts[j].Pages {
			return s.Hosts[i].Pages > s.Hosts[j].Pages
		}
		return s.Hosts[i].Hostname < s.Hosts[j].Hostname
	})

	for _, w := range wordOrder {
		s.TopKeywords = append(s.TopKeywords, model.KeywordCount{Word: w, Count: wordCounts[w]})
	}
	slices.SortStableFunc(s.TopKeywords, func(a, b model.KeywordCount) int {
		return b.Count - a.Count
	})
	if topN >= 0 && len(s.TopKeywords) > topN {
		s.TopKeywords = s.TopKeywords[:topN]
	}

	for _, r := range records {
		s.ErrorsByKind[r.Kind.String()]++
	}
	return s
}

// kindsInOrder returns the error kinds of s in taxonomy order.
func (s *RunSummary) kindsInOrder() []string {
	kinds := []string{
		model.KindResolution.String(),
		model.KindTransport.String(),
		model.KindHTTP.String(),
	}
	out := make([]string, 0, len(kinds))
	for _, k := range kinds {
		if s.ErrorsByKind[k] > 0 {
			out = append(out, k)
		}
	}
	return out
}
