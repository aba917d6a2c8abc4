package analyzer

import "regexp"

// emailRegex matches local-part@domain.tld shaped tokens.
// No validation is done beyond the shape, so false positives are expected.
var emailRegex = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)

// ExtractEmails returns the distinct e-mail shaped tokens of body in order of
// first appearance. Case is preserved.
func ExtractEmails(body string) []string {
	matches := emailRegex.FindAllString(body, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(matches))
	emails := make([]string, 0, len(matches))
	for _, m := range matches {
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		emails = append(emails, m)
	}
	return emails
}
