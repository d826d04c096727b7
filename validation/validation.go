package validation

import (
	"regexp"
	"strings"
)

// Database names are substituted into the connection string template, so
// they must never carry connection-string syntax (';', '=', whitespace).
var databaseNamePattern = regexp.MustCompile(`^[A-Za-z0-9_][A-Za-z0-9_\-]*$`)

// IsValidDatabaseName reports whether name is safe to splice into a
// connection string.
func IsValidDatabaseName(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 128 {
		return false
	}
	return databaseNamePattern.MatchString(name)
}

// Session ids are either client-echoed UUIDs or arbitrary opaque tokens; the
// only hard requirements are printability and a sane length.
var sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9_\-]{1,64}$`)

// IsValidSessionID reports whether id is acceptable as a session key. The
// empty string is valid: it asks the server to mint a fresh id.
func IsValidSessionID(id string) bool {
	if id == "" {
		return true
	}
	return sessionIDPattern.MatchString(id)
}
