package service

import (
	"regexp"
	"strings"
)

// ErrorCategory is the coarse classification of a database failure.
type ErrorCategory string

const (
	ErrConfiguration  ErrorCategory = "configuration"
	ErrAuthentication ErrorCategory = "authentication"
	ErrTimeout        ErrorCategory = "timeout"
	ErrNotFound       ErrorCategory = "not_found"
	ErrSyntax         ErrorCategory = "syntax"
	ErrPermission     ErrorCategory = "permission"
	ErrUnknown        ErrorCategory = "unknown"
)

// DBError is a classified database failure. Message is user-facing; Raw keeps
// the driver's original text for logs and the unknown fallback.
type DBError struct {
	Category ErrorCategory
	Message  string
	Raw      string
}

func (e *DBError) Error() string {
	return e.Message
}

// Transient reports whether retrying the same statement might succeed.
func (e *DBError) Transient() bool {
	return e.Category == ErrTimeout || e.Category == ErrUnknown
}

// classifyDBError maps driver error text onto the error taxonomy by
// case-insensitive substring matching, first match wins. This is a best-effort
// mapping tied to the driver's message wording; anything unmatched falls
// through to ErrUnknown with the raw text preserved.
func classifyDBError(err error) *DBError {
	raw := err.Error()
	lower := strings.ToLower(raw)

	switch {
	case strings.Contains(lower, "login failed"):
		return &DBError{
			Category: ErrAuthentication,
			Message:  "Database authentication failed. Please check credentials.",
			Raw:      raw,
		}
	case strings.Contains(lower, "timeout"):
		return &DBError{
			Category: ErrTimeout,
			Message:  "Database connection timed out. The server may be unavailable.",
			Raw:      raw,
		}
	case strings.Contains(lower, "not found"):
		return &DBError{
			Category: ErrNotFound,
			Message:  "Database or server not found. Please check configuration.",
			Raw:      raw,
		}
	case strings.Contains(lower, "syntax error"):
		return &DBError{
			Category: ErrSyntax,
			Message:  "SQL syntax error in query: " + raw,
			Raw:      raw,
		}
	case strings.Contains(lower, "permission"):
		return &DBError{
			Category: ErrPermission,
			Message:  "Insufficient permissions to execute the query.",
			Raw:      raw,
		}
	default:
		return &DBError{
			Category: ErrUnknown,
			Message:  "Database error: " + raw,
			Raw:      raw,
		}
	}
}

var credentialPattern = regexp.MustCompile(`(?i)(password|pwd)=[^;]*`)

// maskConnectionString replaces credential fields so connection targets can be
// logged safely.
func maskConnectionString(connString string) string {
	return credentialPattern.ReplaceAllString(connString, "$1=****")
}
