package service

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"dbassist/cache"
)

const schemaDiscoveryQuery = `SELECT t.TABLE_SCHEMA, t.TABLE_NAME, c.COLUMN_NAME, c.DATA_TYPE, c.IS_NULLABLE
FROM INFORMATION_SCHEMA.TABLES t
JOIN INFORMATION_SCHEMA.COLUMNS c
  ON t.TABLE_SCHEMA = c.TABLE_SCHEMA AND t.TABLE_NAME = c.TABLE_NAME
WHERE t.TABLE_TYPE = 'BASE TABLE'
ORDER BY t.TABLE_SCHEMA, t.TABLE_NAME, c.ORDINAL_POSITION`

// DiscoverSchema introspects the target database and renders its structure
// into the context string injected into model conversations. Errors come back
// classified so callers can report them like any other database failure.
func DiscoverSchema(ctx context.Context, db *sql.DB) (string, error) {
	rows, err := db.QueryContext(ctx, schemaDiscoveryQuery)
	if err != nil {
		return "", classifyDBError(err)
	}
	defer rows.Close()

	var b strings.Builder
	b.WriteString("Database schema (auto-discovered):\n")

	currentTable := ""
	tableCount := 0
	for rows.Next() {
		var schema, table, column, dataType, nullable string
		if err := rows.Scan(&schema, &table, &column, &dataType, &nullable); err != nil {
			return "", classifyDBError(err)
		}

		qualified := schema + "." + table
		if qualified != currentTable {
			currentTable = qualified
			tableCount++
			b.WriteString(fmt.Sprintf("\nTable: %s\n", qualified))
		}

		nullText := "not null"
		if strings.EqualFold(nullable, "YES") {
			nullText = "null"
		}
		b.WriteString(fmt.Sprintf("  - %s (%s, %s)\n", column, dataType, nullText))
	}
	if err := rows.Err(); err != nil {
		return "", classifyDBError(err)
	}

	if tableCount == 0 {
		return "", &DBError{
			Category: ErrNotFound,
			Message:  "Schema discovery returned no tables. Please check the database.",
		}
	}

	return b.String(), nil
}

// supportedContextExtensions is the allow-list of text-like files the static
// context loader picks up.
var supportedContextExtensions = []string{".cs", ".py", ".sql", ".json", ".ts"}

// LoadContextFiles walks the context folder recursively and concatenates
// every supported file, each prefixed by a header naming its relative path.
// Unreadable files become inline error markers rather than aborting the load.
// Returns the combined text, the number of files loaded and their paths.
func LoadContextFiles(contextDir string) (string, int, []string) {
	var b strings.Builder
	filesLoaded := 0
	var filePaths []string

	if _, err := os.Stat(contextDir); os.IsNotExist(err) {
		if err := os.MkdirAll(contextDir, 0755); err != nil {
			log.Printf("[CONTEXT] Failed to create context directory: %v", err)
		}
		return "", 0, nil
	}

	err := filepath.Walk(contextDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !hasSupportedExtension(info.Name()) {
			return nil
		}

		relPath, rerr := filepath.Rel(contextDir, path)
		if rerr != nil {
			relPath = info.Name()
		}

		content, rerr := os.ReadFile(path)
		if rerr != nil {
			log.Printf("[CONTEXT] Error reading %s: %v", relPath, rerr)
			b.WriteString(fmt.Sprintf("\n\n--- ERROR: %s ---\nError reading %s: %v", relPath, relPath, rerr))
			return nil
		}

		b.WriteString(fmt.Sprintf("\n\n--- %s ---\n", relPath))
		b.Write(content)
		filePaths = append(filePaths, relPath)
		filesLoaded++
		return nil
	})
	if err != nil {
		log.Printf("[CONTEXT] Error walking context directory: %v", err)
	}

	return b.String(), filesLoaded, filePaths
}

func hasSupportedExtension(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range supportedContextExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// ContextProvider serves the static context-file fallback, memoized because a
// full directory walk per session creation is wasteful.
type ContextProvider struct {
	contextDir string
	cache      *cache.Cache
}

func NewContextProvider(contextDir string, c *cache.Cache) *ContextProvider {
	return &ContextProvider{contextDir: contextDir, cache: c}
}

// StaticContext returns the combined context-file text.
func (p *ContextProvider) StaticContext() string {
	if cached, found := p.cache.Get("static_context"); found {
		return cached.(string)
	}

	text, count, _ := LoadContextFiles(p.contextDir)
	log.Printf("[CONTEXT] Loaded %d context files", count)
	p.cache.SetDefault("static_context", text)
	return text
}

// ContextInfo reports the loader's diagnostics for the /debug endpoints.
func (p *ContextProvider) ContextInfo() (int, []string) {
	_, count, paths := LoadContextFiles(p.contextDir)
	return count, paths
}

// Invalidate drops the memoized context so the next read re-walks the folder.
func (p *ContextProvider) Invalidate() {
	p.cache.Delete("static_context")
}
