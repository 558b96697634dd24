package locator

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/carebase/carebase/internal/domain"
)

// namePatterns extract a candidate name from the query, labeled fields
// first, then capitalized-word runs (Vietnamese uppercase letters included).
var namePatterns = []*regexp.Regexp{
	regexp.MustCompile(`thông tin khách hàng[:\s]+([^,\n]+)`),
	regexp.MustCompile(`khách hàng[:\s]+([^,\n]+)`),
	regexp.MustCompile(`tìm.*?([A-ZĐÀ-Ỹ][a-zà-ỹ]+(?:\s+[A-ZĐÀ-Ỹ][a-zà-ỹ]+)*)`),
	regexp.MustCompile(`([A-ZĐÀ-Ỹ][a-zà-ỹ]+(?:\s+[A-ZĐÀ-Ỹ][a-zà-ỹ]+)+)`),
}

// namePhrasings are the per-document search forms, most specific first. The
// bare substring comes last as the loose fallback.
var namePhrasings = []string{
	"khách hàng: %s",
	"tên khách hàng: %s",
	"họ tên: %s",
	"name: %s",
	"tên: %s",
	"fullname: %s",
	"%s",
}

// byName tries each extraction pattern in order; the pattern's first match
// becomes the candidate. A candidate that matches no document does not stop
// the cascade, the next pattern still runs.
func (s *Service) byName(snap *domain.Snapshot, query string) (domain.MatchResult, bool) {
	for _, pattern := range namePatterns {
		groups := pattern.FindStringSubmatch(query)
		if groups == nil {
			continue
		}

		candidate := strings.TrimSpace(groups[1])
		if candidate == "" {
			continue
		}

		if content, ok := searchByName(snap, strings.ToLower(candidate)); ok {
			return domain.MatchResult{
				Found:   true,
				Method:  domain.MatchName,
				Term:    candidate,
				Content: content,
			}, true
		}
	}

	return domain.MatchResult{}, false
}

// searchByName matches the lower-cased name against every customer document.
// One hit returns that document; several hits (homonymous customers) return
// one aggregate block with 1-based ordinal headers, in ascending-id order.
func searchByName(snap *domain.Snapshot, name string) (string, bool) {
	var found []string

	eachCustomer(snap, func(_ int64, content string) bool {
		lower := strings.ToLower(content)
		for _, phrasing := range namePhrasings {
			if strings.Contains(lower, fmt.Sprintf(phrasing, name)) {
				found = append(found, content)
				break
			}
		}
		return true
	})

	switch len(found) {
	case 0:
		return "", false
	case 1:
		return found[0], true
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Tìm thấy %d khách hàng có tên '%s':\n\n", len(found), name)
	for i, content := range found {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "=== KHÁCH HÀNG %d ===\n%s", i+1, content)
	}
	return b.String(), true
}
