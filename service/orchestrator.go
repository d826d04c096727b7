package service

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"

	"dbassist/ai"
	"dbassist/config"
	"dbassist/models"
)

// Database is the SQL side of the orchestrator: query execution, target
// switching and connectivity probing. *SQLServer implements it; tests use
// scripted fakes.
type Database interface {
	Execute(ctx context.Context, query string) (*models.QueryResult, error)
	Switch(ctx context.Context, database string) (string, error)
	Current() Target
	CheckConnection(ctx context.Context) bool
}

// Orchestrator drives the conversation-to-SQL loop: for each message it picks
// the SQL-involvement path, executes queries through the adapter and runs the
// interpretation round-trips with the model.
type Orchestrator struct {
	sessions *SessionStore
	database Database
}

func NewOrchestrator(sessions *SessionStore, database Database) *Orchestrator {
	return &Orchestrator{sessions: sessions, database: database}
}

const apologeticResponse = "<p><b>Error:</b> There was a problem processing your request. Please try again.</p>"

// sqlBlockPattern matches a fenced code block with an optional sql tag,
// non-greedy and spanning newlines.
var sqlBlockPattern = regexp.MustCompile("(?si)```(?:sql)?\\s*(.*?)\\s*```")

// ExtractSQLBlocks returns every fenced SQL candidate in the reply, trimmed,
// in order of appearance. Callers take the first match; that tie-break is
// policy, not accident.
func ExtractSQLBlocks(text string) []string {
	matches := sqlBlockPattern.FindAllStringSubmatch(text, -1)
	blocks := make([]string, 0, len(matches))
	for _, m := range matches {
		if body := strings.TrimSpace(m[1]); body != "" {
			blocks = append(blocks, body)
		}
	}
	return blocks
}

// dataKeywords marks a message as data-related when the model produced no SQL
// on its own.
var dataKeywords = []string{
	"how many", "list", "show", "find", "get", "count",
	"database", "data", "records", "total", "search", "query",
	"lookup", "fetch", "retrieve", "display", "users",
}

func containsDataKeyword(message string) bool {
	lower := strings.ToLower(message)
	for _, keyword := range dataKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

// isDirectSQL reports whether the user typed a literal SELECT statement.
func isDirectSQL(message string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(message)), "select ")
}

// dbInstruction derives the system instruction for a database-query session
// from the active target. Re-derived on every session (re)creation so the
// query rules always track the active database.
func (o *Orchestrator) dbInstruction(schemaContext string) string {
	return ai.DBSystemInstruction(schemaContext, o.database.Current().Database)
}

// liveDBInstruction reads the active target exactly once and builds the
// instruction from that single snapshot. Passed to GetOrCreate as the mint
// factory, so the read happens inside the session store's critical section
// and is ordered against ClearAll.
func (o *Orchestrator) liveDBInstruction() string {
	target := o.database.Current()
	return ai.DBSystemInstruction(target.Context, target.Database)
}

// HandleDBMessage runs one message through the state machine. It never
// returns an error: every failure, SQL or model, ends up inside the
// ChatResponse so the caller always has a session id and renderable text.
func (o *Orchestrator) HandleDBMessage(ctx context.Context, message, sessionID string) models.ChatResponse {
	sessionID, chat := o.sessions.GetOrCreate(sessionID, KindDBQuery, o.liveDBInstruction)

	// Path 1: the message itself is SQL
	if isDirectSQL(message) {
		log.Printf("[DB CHAT] Direct SQL query detected: %s", truncate(message, 50))
		return o.runDirectSQL(ctx, chat, sessionID, message)
	}

	// Path 2: free-form message
	reply, err := chat.Send(ctx, message)
	if err != nil {
		log.Printf("[DB CHAT] Error processing chat message: %v", err)
		return models.ChatResponse{Response: apologeticResponse, SessionID: sessionID}
	}

	if blocks := ExtractSQLBlocks(reply); len(blocks) > 0 {
		log.Printf("[DB CHAT] AI generated SQL query: %s", truncate(blocks[0], 50))
		return o.runGeneratedSQL(ctx, chat, sessionID, message, blocks[0])
	}

	// Path 3: no SQL, but the question looks data-related - nudge once
	if containsDataKeyword(message) {
		log.Printf("[DB CHAT] Data-related question detected: %s", truncate(message, 50))
		nudgeReply, err := chat.Send(ctx, ai.NudgePrompt(message))
		if err != nil {
			log.Printf("[DB CHAT] Error processing nudge: %v", err)
			return models.ChatResponse{Response: apologeticResponse, SessionID: sessionID}
		}

		if blocks := ExtractSQLBlocks(nudgeReply); len(blocks) > 0 {
			log.Printf("[DB CHAT] Generated SQL query on second attempt: %s", truncate(blocks[0], 50))
			return o.runGeneratedSQL(ctx, chat, sessionID, message, blocks[0])
		}

		log.Printf("[DB CHAT] No SQL query could be generated")
		return models.ChatResponse{Response: nudgeReply, SessionID: sessionID}
	}

	// Path 4: plain conversation
	log.Printf("[DB CHAT] Regular response (no SQL needed)")
	return models.ChatResponse{Response: reply, SessionID: sessionID}
}

// runDirectSQL executes the user's own SELECT statement verbatim. On failure
// there is no model round-trip at all; on success the model summarizes the
// rendered result.
func (o *Orchestrator) runDirectSQL(ctx context.Context, chat Conversation, sessionID, query string) models.ChatResponse {
	result, err := o.database.Execute(ctx, query)
	if err != nil {
		log.Printf("[DB CHAT] SQL error in direct query: %v", err)
		return models.ChatResponse{
			Response:  fmt.Sprintf("<p><b>SQL Error:</b> %v</p>", err),
			SessionID: sessionID,
			HasSQL:    true,
			SQLQuery:  query,
			SQLError:  err.Error(),
		}
	}

	interpretation, ierr := chat.Send(ctx, ai.InterpretDirectSQLPrompt(query, result.Text))
	if ierr != nil {
		log.Printf("[DB CHAT] Error getting interpretation: %v", ierr)
		interpretation = fmt.Sprintf("<p><b>Error:</b> Unable to interpret results: %v</p>", ierr)
	}

	return models.ChatResponse{
		Response:       interpretation,
		SessionID:      sessionID,
		HasSQL:         true,
		SQLQuery:       query,
		SQLResult:      result.Text,
		SQLTable:       result.Table,
		Interpretation: interpretation,
	}
}

// runGeneratedSQL executes a model-produced statement and drives the second
// round-trip: an analysis request on success, a recovery request on failure.
// A failed interpretation round-trip degrades to an inline error message; the
// SQL outcome itself is still reported.
func (o *Orchestrator) runGeneratedSQL(ctx context.Context, chat Conversation, sessionID, question, query string) models.ChatResponse {
	result, err := o.database.Execute(ctx, query)
	if err != nil {
		log.Printf("[DB CHAT] SQL error: %v", err)
		recovery, rerr := chat.Send(ctx, ai.QueryFailedPrompt(err.Error()))
		if rerr != nil {
			log.Printf("[DB CHAT] Error getting recovery suggestion: %v", rerr)
			recovery = fmt.Sprintf("<p><b>SQL Error:</b> %v</p>", err)
		}
		return models.ChatResponse{
			Response:     recovery,
			SessionID:    sessionID,
			HasSQL:       true,
			SQLQuery:     query,
			SQLError:     err.Error(),
			UserQuestion: question,
		}
	}

	log.Printf("[DB CHAT] SQL query executed successfully")
	interpretation, ierr := chat.Send(ctx, ai.InterpretResultsPrompt(result.Text))
	if ierr != nil {
		log.Printf("[DB CHAT] Error getting interpretation: %v", ierr)
		interpretation = fmt.Sprintf("<p><b>Error:</b> Unable to interpret results: %v</p>", ierr)
	}

	return models.ChatResponse{
		Response:       interpretation,
		SessionID:      sessionID,
		HasSQL:         true,
		SQLQuery:       query,
		SQLResult:      result.Text,
		SQLTable:       result.Table,
		Interpretation: interpretation,
		UserQuestion:   question,
	}
}

// ClearSession reseeds the conversation behind sessionID under the same id.
// Database-query sessions are reseeded with a reset placeholder context, not
// the live schema: a cleared conversation starts from a clean slate and picks
// up the live context the next time it is recreated.
func (o *Orchestrator) ClearSession(sessionID string) bool {
	kind, ok := o.sessions.Kind(sessionID)
	if !ok {
		return false
	}

	var instruction string
	if kind == KindDBQuery {
		instruction = o.dbInstruction("[Context has been reset]")
	} else {
		instruction = ai.FileAnalysisSystemInstruction()
	}
	return o.sessions.Clear(sessionID, instruction)
}

// SwitchDatabase changes the active target. Validation happens against the
// new target before any shared state mutates; only after the target swap do
// the sessions get invalidated, so a session created mid-switch can never
// observe the old context with the new database.
func (o *Orchestrator) SwitchDatabase(ctx context.Context, database string) models.SwitchDatabaseResponse {
	database = strings.ToLower(strings.TrimSpace(database))
	log.Printf("[DB SWITCH] Database switch requested: %s", database)

	schemaContext, err := o.database.Switch(ctx, database)
	if err != nil {
		log.Printf("[DB SWITCH] Schema discovery failed for %s: %v", database, err)
		return models.SwitchDatabaseResponse{
			Status:   "error",
			Database: database,
			Message:  fmt.Sprintf("Failed to connect to database '%s': %v", database, err),
		}
	}

	cleared := o.sessions.ClearAll()
	log.Printf("[DB SWITCH] Cleared %d chat sessions for database switch to: %s", cleared, database)

	if config.IsRestrictedDatabase(database) {
		log.Printf("[DB SWITCH] Database %s: ProjectId filter will be applied to EmployeeAttendance queries", database)
	}

	preview := schemaContext
	if len(preview) > 500 {
		preview = preview[:500] + "..."
	}

	return models.SwitchDatabaseResponse{
		Status:        "success",
		Database:      database,
		Message:       fmt.Sprintf("Successfully switched to database '%s'. All sessions cleared and database-specific rules applied.", database),
		SchemaPreview: preview,
	}
}

// CurrentDatabase returns the active database identifier.
func (o *Orchestrator) CurrentDatabase() string {
	return o.database.Current().Database
}

// CurrentContext returns the active schema context.
func (o *Orchestrator) CurrentContext() string {
	return o.database.Current().Context
}

// DatabaseStatus probes connectivity to the active target.
func (o *Orchestrator) DatabaseStatus(ctx context.Context) bool {
	return o.database.CheckConnection(ctx)
}

// SessionCounts reports the session store's diagnostic snapshot.
func (o *Orchestrator) SessionCounts() (int, map[string]int) {
	return o.sessions.Counts()
}

// HandleFileMessage forwards a file-analysis message to the session's
// conversation. Unknown ids mint a fresh session, matching the database path.
func (o *Orchestrator) HandleFileMessage(ctx context.Context, message, sessionID string) models.ChatResponse {
	sessionID, chat := o.sessions.GetOrCreate(sessionID, KindFileAnalysis, ai.FileAnalysisSystemInstruction)

	reply, err := chat.Send(ctx, message)
	if err != nil {
		log.Printf("[FILE CHAT] Error processing file analysis message: %v", err)
		return models.ChatResponse{Response: apologeticResponse, SessionID: sessionID}
	}

	return models.ChatResponse{Response: reply, SessionID: sessionID}
}

// HandleFileUpload introduces an uploaded file's summary to a file-analysis
// session and returns the model's initial analysis.
func (o *Orchestrator) HandleFileUpload(ctx context.Context, fileSummary, sessionID string) (string, string, error) {
	sessionID, chat := o.sessions.GetOrCreate(sessionID, KindFileAnalysis, ai.FileAnalysisSystemInstruction)

	reply, err := chat.Send(ctx, ai.FileUploadPrompt(fileSummary))
	if err != nil {
		return sessionID, "", fmt.Errorf("error processing file with AI: %w", err)
	}

	return sessionID, reply, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
