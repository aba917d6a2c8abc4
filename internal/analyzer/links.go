package analyzer

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ExtractSubdirectories returns the host-relative links of body resolved
// against baseURL, deduplicated in document order.
//
// Only href values that literally begin with a single "/" qualify. Absolute
// links, relative links without a leading slash and protocol-relative "//"
// links are skipped. Skipping "//" departs from a plain prefix check, which
// would keep them as links to other hosts. An unparsable baseURL or body
// yields no links.
func ExtractSubdirectories(baseURL, body string) []string {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil
	}

	seen := make(map[string]struct{})
	var links []string
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if !strings.HasPrefix(href, "/") || strings.HasPrefix(href, "//") {
			return
		}
		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		abs := base.ResolveReference(ref).String()
		if _, ok := seen[abs]; ok {
			return
		}
		seen[abs] = struct{}{}
		links = append(links, abs)
	})
	return links
}

// IsCrawlable reports whether rawURL has both a scheme and a host.
func IsCrawlable(rawURL string) bool {
	u, err := url.Parse(rawURL)
	return err == nil && u.Scheme != "" && u.Host != ""
}
