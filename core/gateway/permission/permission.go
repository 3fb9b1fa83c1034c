package permission

import (
	"strings"

	"github.com/sqlgate/sqlgate/core/config"
	"github.com/sqlgate/sqlgate/core/shared/errors"
)

// StatementClass is the coarse access class of a SQL statement
type StatementClass int

const (
	// Read covers statements that cannot mutate data
	Read StatementClass = iota
	// Write covers everything else, including statements we cannot
	// confidently classify
	Write
)

func (c StatementClass) String() string {
	if c == Read {
		return "read"
	}
	return "write"
}

// readPrefixes is the allow-list of leading keywords classified as Read.
// EXEC, transaction wrappers and anything unrecognized classify as Write
// so misclassification can never let a mutation through to a read-only
// backend.
var readPrefixes = []string{"select", "with", "show", "explain", "describe", "desc"}

// Classify determines the access class of a SQL statement by its leading
// keyword, after stripping whitespace and SQL comments.
func Classify(sql string) StatementClass {
	s := strings.ToLower(stripLeadingComments(sql))
	if s == "" {
		return Write
	}

	for _, prefix := range readPrefixes {
		if strings.HasPrefix(s, prefix) {
			// Keyword must end at a word boundary: "selector" is not SELECT
			rest := s[len(prefix):]
			if rest == "" || !isWordChar(rest[0]) {
				return Read
			}
		}
	}
	return Write
}

// Check rejects write statements against read-only profiles. The denial
// reason contains the literal marker "READ-ONLY"; consumers match on it.
func Check(profile *config.Profile, sql string) error {
	if !profile.ReadOnly {
		return nil
	}
	if Classify(sql) == Read {
		return nil
	}
	return errors.NewAppError(
		errors.ErrCodePermissionDenied,
		"server profile '"+profile.Name+"' is READ-ONLY: write statements are not permitted",
		nil,
	)
}

// stripLeadingComments removes leading whitespace, -- line comments and
// /* */ block comments so the first real keyword decides the class.
func stripLeadingComments(sql string) string {
	s := strings.TrimSpace(sql)
	for {
		switch {
		case strings.HasPrefix(s, "--"):
			idx := strings.IndexByte(s, '\n')
			if idx < 0 {
				return ""
			}
			s = strings.TrimSpace(s[idx+1:])
		case strings.HasPrefix(s, "/*"):
			idx := strings.Index(s, "*/")
			if idx < 0 {
				return ""
			}
			s = strings.TrimSpace(s[idx+2:])
		default:
			return s
		}
	}
}

func isWordChar(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= '0' && b <= '9')
}
