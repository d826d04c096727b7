package config

import "strings"

// RestrictedDatabases lists the databases whose EmployeeAttendance table is
// shared across projects and must always be filtered to this deployment's
// project.
var RestrictedDatabases = []string{"pa", "erp_mbl"}

const (
	// AttendanceFilterRule is appended verbatim to the system instruction for
	// restricted databases.
	AttendanceFilterRule = `MANDATORY QUERY RULE for this database:
Every query that reads from the EmployeeAttendance table MUST include the filter "ProjectId = 64" in its WHERE clause. The table contains rows for multiple projects and only ProjectId 64 belongs to this deployment. Never return EmployeeAttendance data without this filter.`

	// LikeMatchingRule instructs the model to prefer partial matching on text
	// columns so users do not need exact names.
	LikeMatchingRule = `TEXT MATCHING RULE:
When filtering on names or other free-text columns, use LIKE with wildcards (e.g. WHERE Name LIKE '%John%') instead of exact equality, unless the user explicitly asks for an exact match.`
)

// IsRestrictedDatabase reports whether the attendance filter rule applies to
// the given database identifier.
func IsRestrictedDatabase(database string) bool {
	for _, db := range RestrictedDatabases {
		if strings.EqualFold(db, database) {
			return true
		}
	}
	return false
}
