package domain

// MatchMethod identifies which detector located a customer document.
type MatchMethod string

const (
	// MatchEmail is a hit on an email address extracted from the query.
	MatchEmail MatchMethod = "email"
	// MatchPhone is a hit on a phone number extracted from the query.
	MatchPhone MatchMethod = "phone"
	// MatchName is a hit on a personal name extracted from the query.
	MatchName MatchMethod = "name"
)

// Label returns the Vietnamese label used in user-facing result headers.
func (m MatchMethod) Label() string {
	switch m {
	case MatchEmail:
		return "email"
	case MatchPhone:
		return "số điện thoại"
	case MatchName:
		return "tên"
	default:
		return string(m)
	}
}

// MatchResult is the outcome of one exact-match lookup. It is transient:
// produced per query, never persisted.
type MatchResult struct {
	Found   bool
	Method  MatchMethod
	Term    string // the extracted term that actually matched
	Content string // matched document content, or an aggregate block for multi-name hits
}
