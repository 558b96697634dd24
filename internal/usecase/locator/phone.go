package locator

import (
	"regexp"
	"strings"

	"github.com/carebase/carebase/internal/domain"
)

// phonePatterns are tried in priority order. Specific Vietnamese shapes come
// before the generic bare-digit runs, so "0909123456" is claimed as a
// national number rather than an arbitrary 10-digit run. A bare digit run
// inside a longer number can still be claimed first; documented behavior.
var phonePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b0\d{9}\b`),                        // national, leading 0
	regexp.MustCompile(`\+84\d{9}\b`),                       // international with +84 ("+" is not a word character, so no leading \b)
	regexp.MustCompile(`\b84\d{9}\b`),                       // international without the plus
	regexp.MustCompile(`\b0\d{2}[\s-]?\d{3}[\s-]?\d{4}\b`),  // grouped 0xx xxx xxxx
	regexp.MustCompile(`\b0\d{3}[\s-]?\d{3}[\s-]?\d{3}\b`),  // grouped 0xxx xxx xxx
	regexp.MustCompile(`\b\d{10}\b`),                        // any bare 10-digit run
	regexp.MustCompile(`\b\d{11}\b`),                        // any bare 11-digit run
}

var phoneSeparators = regexp.MustCompile(`[\s\-()+]`)

// byPhone extracts phone-shaped candidates, normalizes away separators, and
// substring-matches each candidate (plus its 0-prefix ↔ 84-prefix twin)
// against similarly normalized customer documents.
func (s *Service) byPhone(snap *domain.Snapshot, query string) (domain.MatchResult, bool) {
	for _, pattern := range phonePatterns {
		for _, candidate := range pattern.FindAllString(query, -1) {
			var match domain.MatchResult
			variants := phoneVariants(normalizePhone(candidate))

			eachCustomer(snap, func(_ int64, content string) bool {
				normalized := normalizePhone(content)
				for _, variant := range variants {
					if strings.Contains(normalized, variant) {
						match = domain.MatchResult{
							Found:   true,
							Method:  domain.MatchPhone,
							Term:    candidate,
							Content: content,
						}
						return false
					}
				}
				return true
			})
			if match.Found {
				return match, true
			}
		}
	}

	return domain.MatchResult{}, false
}

func normalizePhone(s string) string {
	return phoneSeparators.ReplaceAllString(strings.TrimSpace(s), "")
}

// phoneVariants returns the normalized number plus its alternate-prefix
// form: 84xxxxxxxxx ↔ 0xxxxxxxxx name the same subscriber.
func phoneVariants(clean string) []string {
	variants := []string{clean}
	if strings.HasPrefix(clean, "84") && len(clean) == 11 {
		variants = append(variants, "0"+clean[2:])
	}
	if strings.HasPrefix(clean, "0") && len(clean) == 10 {
		variants = append(variants, "84"+clean[1:])
	}
	return variants
}
