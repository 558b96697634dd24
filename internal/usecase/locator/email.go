package locator

import (
	"regexp"
	"strings"

	"github.com/carebase/carebase/internal/domain"
)

var emailPattern = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)

// byEmail extracts email addresses from the query in order of appearance and
// substring-matches each one, case-insensitively, against customer documents.
func (s *Service) byEmail(snap *domain.Snapshot, query string) (domain.MatchResult, bool) {
	var match domain.MatchResult

	for _, email := range emailPattern.FindAllString(query, -1) {
		needle := strings.ToLower(strings.TrimSpace(email))

		eachCustomer(snap, func(_ int64, content string) bool {
			if strings.Contains(strings.ToLower(content), needle) {
				match = domain.MatchResult{
					Found:   true,
					Method:  domain.MatchEmail,
					Term:    email,
					Content: content,
				}
				return false
			}
			return true
		})
		if match.Found {
			return match, true
		}
	}

	return domain.MatchResult{}, false
}
