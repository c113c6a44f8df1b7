package queries

import (
	"regexp"
	"strings"

	"github.com/light-bringer/pricefeed-service/internal/app/catalog/contracts"
)

// filterSyntax recognizes /pattern/flags filter values. Anything that does
// not match is an exact-match literal.
var filterSyntax = regexp.MustCompile(`^/(.+)/([a-z]*)$`)

// ParseMatch turns a raw filter value into a match predicate. Three forms:
//
//	""                empty or unset field
//	"/pattern/flags"  RE2 match, flag i for case-insensitive
//	anything else     exact literal
func ParseMatch(value string) *contracts.Match {
	if value == "" {
		return &contracts.Match{EmptyOrNull: true}
	}
	if m := filterSyntax.FindStringSubmatch(value); m != nil {
		pattern := m[1]
		if strings.Contains(m[2], "i") {
			pattern = "(?i)" + pattern
		}
		return contracts.Regex(pattern)
	}
	return contracts.Exact(value)
}

// evalMatch applies a predicate in memory with the same semantics the store
// uses in SQL: an unset field reads as "". Invalid patterns surface as
// errors rather than silently matching nothing.
func evalMatch(m *contracts.Match, value *string) (bool, error) {
	s := ""
	if value != nil {
		s = *value
	}
	switch {
	case m.EmptyOrNull:
		return s == "", nil
	case m.Exact != nil:
		return s == *m.Exact, nil
	case m.Regex != nil:
		re, err := regexp.Compile(*m.Regex)
		if err != nil {
			return false, err
		}
		return re.MatchString(s), nil
	}
	return true, nil
}
