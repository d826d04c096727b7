package service

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"regexp"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	_ "github.com/microsoft/go-mssqldb"

	"dbassist/models"
)

// Target describes the active database: its identifier, connection string and
// the schema context injected into new conversations. Targets are immutable;
// a switch installs a whole new value.
type Target struct {
	Database   string
	ConnString string
	Context    string
}

type targetState struct {
	target Target
	db     *sql.DB
}

var databasePattern = regexp.MustCompile(`(?i)database=[^;]*`)

// SQLServer executes SQL against the active target and owns target switching.
// The current target is read through an atomic pointer so in-flight requests
// never observe a half-applied switch.
type SQLServer struct {
	template string // connection string with the database component stripped

	// open is swappable for tests
	open func(connString string) (*sql.DB, error)

	maxAttempts    int
	retryBaseDelay time.Duration
	retryMaxDelay  time.Duration

	switchMu sync.Mutex // serializes Switch and Start
	current  atomic.Pointer[targetState]
}

func NewSQLServer(connString string) *SQLServer {
	return &SQLServer{
		template: databasePattern.ReplaceAllString(connString, "database={database}"),
		open: func(cs string) (*sql.DB, error) {
			db, err := sql.Open("sqlserver", cs)
			if err != nil {
				return nil, err
			}
			db.SetMaxOpenConns(25)
			db.SetMaxIdleConns(5)
			db.SetConnMaxLifetime(5 * time.Minute)
			return db, nil
		},
		maxAttempts:    3,
		retryBaseDelay: 2 * time.Second,
		retryMaxDelay:  10 * time.Second,
	}
}

// BuildConnString substitutes the database component of the configured
// connection template.
func (s *SQLServer) BuildConnString(database string) string {
	return strings.Replace(s.template, "{database}", database, 1)
}

// Start installs the initial target. Schema discovery is attempted against
// the live database; when it fails the staticContext fallback supplies the
// context instead and startup proceeds, so an unreachable database never
// blocks the process.
func (s *SQLServer) Start(ctx context.Context, database string, staticContext func() string) error {
	s.switchMu.Lock()
	defer s.switchMu.Unlock()

	connString := s.BuildConnString(database)
	if strings.TrimSpace(connString) == "" || strings.TrimSpace(s.template) == "" {
		log.Printf("[SQL] No connection string configured; queries will fail until one is provided")
		s.current.Store(&targetState{target: Target{Database: database}})
		return nil
	}

	db, err := s.open(connString)
	if err != nil {
		return fmt.Errorf("failed to open SQL Server connection: %w", err)
	}

	schemaContext, derr := DiscoverSchema(ctx, db)
	if derr != nil {
		log.Printf("[SQL] Schema auto-discovery failed: %v; falling back to context files", derr)
		schemaContext = staticContext()
	} else {
		log.Printf("[SQL] Auto-discovered schema for database: %s", database)
	}

	s.current.Store(&targetState{
		target: Target{Database: database, ConnString: connString, Context: schemaContext},
		db:     db,
	})
	log.Printf("[SQL] Active target: %s", maskConnectionString(connString))
	return nil
}

// Current returns a snapshot of the active target.
func (s *SQLServer) Current() Target {
	if st := s.current.Load(); st != nil {
		return st.target
	}
	return Target{}
}

// Execute runs one SQL statement against the active target. Statements whose
// first keyword is SELECT are materialized into a text rendering plus a
// structured table; everything else reports its affected-row count. Transient
// failures are retried with exponential backoff; the caller only ever sees
// the final outcome, always as a classified *DBError.
func (s *SQLServer) Execute(ctx context.Context, query string) (*models.QueryResult, error) {
	st := s.current.Load()
	if st == nil || st.db == nil || st.target.ConnString == "" {
		log.Printf("[SQL] Rejecting query: connection string not configured")
		return nil, &DBError{
			Category: ErrConfiguration,
			Message:  "Database connection string not configured. Please check your environment variables.",
		}
	}

	var lastErr *DBError
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		if attempt > 1 {
			delay := s.retryBaseDelay * time.Duration(1<<uint(attempt-2))
			if delay > s.retryMaxDelay {
				delay = s.retryMaxDelay
			}
			log.Printf("[SQL] Retrying after %v (attempt %d/%d)", delay, attempt, s.maxAttempts)
			time.Sleep(delay)
		}

		log.Printf("[SQL] Executing query (attempt %d/%d) against %s",
			attempt, s.maxAttempts, maskConnectionString(st.target.ConnString))

		result, err := s.executeOnce(ctx, st.db, query)
		if err == nil {
			log.Printf("[SQL] Query executed successfully")
			return result, nil
		}

		lastErr = classifyDBError(err)
		log.Printf("[SQL] Query failed (%s): %s", lastErr.Category, lastErr.Raw)
		if !lastErr.Transient() {
			break
		}
	}

	return nil, lastErr
}

func (s *SQLServer) executeOnce(ctx context.Context, db *sql.DB, query string) (*models.QueryResult, error) {
	if isRowReturning(query) {
		return queryRows(ctx, db, query)
	}

	res, err := db.ExecContext(ctx, query)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	return &models.QueryResult{
		Text: fmt.Sprintf("Query executed successfully. Rows affected: %d", affected),
	}, nil
}

// isRowReturning classifies a statement by its leading keyword.
func isRowReturning(query string) bool {
	return strings.HasPrefix(strings.ToUpper(strings.TrimSpace(query)), "SELECT")
}

func queryRows(ctx context.Context, db *sql.DB, query string) (*models.QueryResult, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	resultRows := make([][]interface{}, 0)
	for rows.Next() {
		values := make([]interface{}, len(columns))
		valuePtrs := make([]interface{}, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}
		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, err
		}

		row := make([]interface{}, len(columns))
		for i, val := range values {
			if b, ok := val.([]byte); ok {
				row[i] = string(b)
			} else {
				row[i] = val
			}
		}
		resultRows = append(resultRows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	table := &models.TableData{
		Headers:  columns,
		Rows:     resultRows,
		RowCount: len(resultRows),
	}
	return &models.QueryResult{
		Text:  renderTable(table),
		Table: table,
	}, nil
}

// renderTable produces the aligned text form of a table, ending with the
// row-count trailer the model is primed to expect.
func renderTable(table *models.TableData) string {
	widths := make([]int, len(table.Headers))
	for i, h := range table.Headers {
		widths[i] = len(h)
	}

	cells := make([][]string, len(table.Rows))
	for r, row := range table.Rows {
		cells[r] = make([]string, len(row))
		for c, val := range row {
			text := "NULL"
			if val != nil {
				text = fmt.Sprintf("%v", val)
			}
			cells[r][c] = text
			if c < len(widths) && len(text) > widths[c] {
				widths[c] = len(text)
			}
		}
	}

	var b strings.Builder
	for i, h := range table.Headers {
		if i > 0 {
			b.WriteString("  ")
		}
		b.WriteString(fmt.Sprintf("%-*s", widths[i], h))
	}
	for _, row := range cells {
		b.WriteString("\n")
		for i, cell := range row {
			if i > 0 {
				b.WriteString("  ")
			}
			b.WriteString(fmt.Sprintf("%-*s", widths[i], cell))
		}
	}

	b.WriteString(fmt.Sprintf("\n\n(%d rows returned)", table.RowCount))
	return b.String()
}

// CheckConnection probes the active target with a trivial query.
func (s *SQLServer) CheckConnection(ctx context.Context) bool {
	_, err := s.Execute(ctx, "SELECT 1 AS ConnectionTest")
	if err != nil {
		log.Printf("[SQL] Connection check failed: %v", err)
		return false
	}
	return true
}

// Switch changes the active database. The new target is validated by running
// schema discovery against it before any shared state changes; on failure the
// previous target stays installed untouched. On success the new target (with
// its fresh schema context) replaces the old one atomically and the old
// connection pool is closed.
func (s *SQLServer) Switch(ctx context.Context, database string) (string, error) {
	s.switchMu.Lock()
	defer s.switchMu.Unlock()

	connString := s.BuildConnString(database)
	if strings.TrimSpace(s.template) == "" {
		return "", &DBError{
			Category: ErrConfiguration,
			Message:  "Database connection string not configured. Please check your environment variables.",
		}
	}

	log.Printf("[SQL] Switch requested: %s (%s)", database, maskConnectionString(connString))

	newDB, err := s.open(connString)
	if err != nil {
		return "", classifyDBError(err)
	}

	schemaContext, derr := DiscoverSchema(ctx, newDB)
	if derr != nil {
		newDB.Close()
		log.Printf("[SQL] Switch to %s rejected: %v", database, derr)
		return "", derr
	}

	old := s.current.Swap(&targetState{
		target: Target{Database: database, ConnString: connString, Context: schemaContext},
		db:     newDB,
	})
	if old != nil && old.db != nil {
		old.db.Close()
	}

	log.Printf("[SQL] Switched active database to: %s", database)
	return schemaContext, nil
}

// Close releases the active connection pool.
func (s *SQLServer) Close() error {
	if st := s.current.Load(); st != nil && st.db != nil {
		return st.db.Close()
	}
	return nil
}
