package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"dbassist/config"
	"dbassist/models"
	"dbassist/validation"
)

// DBChatHandler answers a natural-language question against the database
// @Summary      Ask the database a question
// @Description  Send a natural-language question (or a raw SELECT statement). The AI generates SQL when needed, runs it and interprets the results.
// @Tags         Database Chat
// @Accept       json
// @Produce      json
// @Param        request  body      models.ChatRequest   true  "Message and optional session id"
// @Success      200      {object}  models.ChatResponse  "Assistant reply with optional SQL details"
// @Failure      400      {object}  map[string]string    "Invalid request"
// @Router       /db/chat [post]
func (h *Handlers) DBChatHandler(c *gin.Context) {
	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: message is required"})
		return
	}
	if !validation.IsValidSessionID(req.SessionID) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid session id"})
		return
	}

	resp := h.orchestrator.HandleDBMessage(c.Request.Context(), req.Message, req.SessionID)

	if err := h.db.StoreChatExchange(resp.SessionID, "db_query", req.Message, resp.Response); err != nil {
		log.Printf("[DB CHAT] Error storing chat exchange: %v", err)
	}

	c.JSON(http.StatusOK, resp)
}

// DBClearHandler resets a database chat session
// @Summary      Clear a chat session
// @Description  Reset the conversation behind a session id. The id stays valid; the conversation restarts from a clean context.
// @Tags         Database Chat
// @Accept       json
// @Produce      json
// @Param        request  body      models.ClearRequest  true  "Session id to clear"
// @Success      200      {object}  map[string]string    "Session cleared"
// @Failure      400      {object}  map[string]string    "Invalid request"
// @Failure      404      {object}  map[string]string    "Session not found"
// @Router       /db/clear [post]
func (h *Handlers) DBClearHandler(c *gin.Context) {
	var req models.ClearRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: session_id is required"})
		return
	}

	if !h.orchestrator.ClearSession(req.SessionID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "cleared",
		"session_id": req.SessionID,
		"message":    "Chat session has been reset",
	})
}

// DBStatusHandler reports database connectivity
// @Summary      Database status
// @Description  Check whether the active SQL Server database is reachable
// @Tags         Database Chat
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "Connection status"
// @Router       /db/status [get]
func (h *Handlers) DBStatusHandler(c *gin.Context) {
	connected := h.orchestrator.DatabaseStatus(c.Request.Context())
	status := "disconnected"
	if connected {
		status = "connected"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    status,
		"connected": connected,
		"database":  h.orchestrator.CurrentDatabase(),
	})
}

// DBSwitchHandler switches the active database
// @Summary      Switch database
// @Description  Point the assistant at a different database. The new target is validated before the switch; all chat sessions are cleared on success.
// @Tags         Database Chat
// @Accept       json
// @Produce      json
// @Param        request  body      models.SwitchDatabaseRequest   true  "Target database name"
// @Success      200      {object}  models.SwitchDatabaseResponse  "Switch succeeded"
// @Failure      400      {object}  map[string]string              "Invalid request"
// @Failure      500      {object}  models.SwitchDatabaseResponse  "Switch failed, previous database still active"
// @Router       /db/switch-database [post]
func (h *Handlers) DBSwitchHandler(c *gin.Context) {
	var req models.SwitchDatabaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: database is required"})
		return
	}
	if !validation.IsValidDatabaseName(req.Database) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid database name"})
		return
	}

	resp := h.orchestrator.SwitchDatabase(c.Request.Context(), req.Database)
	if resp.Status != "success" {
		c.JSON(http.StatusInternalServerError, resp)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// DBCurrentHandler reports the active database and its query rules
// @Summary      Current database
// @Description  Get the active database name and whether restricted-database query rules apply to it
// @Tags         Database Chat
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "Active database info"
// @Router       /db/current-database [get]
func (h *Handlers) DBCurrentHandler(c *gin.Context) {
	database := h.orchestrator.CurrentDatabase()

	filterInfo := "No ProjectId filter applied"
	if config.IsRestrictedDatabase(database) {
		filterInfo = "ProjectId=64 filter applied to EmployeeAttendance"
	}

	c.JSON(http.StatusOK, gin.H{
		"current_database": database,
		"filter_rules":     filterInfo,
		"like_matching":    "Enabled for all text searches",
	})
}

// DBHistoryHandler returns the stored transcript for a session
// @Summary      Session history
// @Description  Get the persisted message/response transcript for a session id
// @Tags         Database Chat
// @Produce      json
// @Param        session_id  path      string                  true  "Session id"
// @Success      200         {object}  map[string]interface{}  "Stored exchanges"
// @Failure      500         {object}  map[string]string       "Failed to load history"
// @Router       /db/history/{session_id} [get]
func (h *Handlers) DBHistoryHandler(c *gin.Context) {
	sessionID := c.Param("session_id")

	history, err := h.db.GetSessionHistory(sessionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load session history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session_id": sessionID,
		"count":      len(history),
		"history":    history,
	})
}

// DebugSchemaHandler exposes the schema context for troubleshooting
// @Summary      Schema context (debug)
// @Description  Inspect the schema context the AI currently sees, plus the static context files on disk
// @Tags         Debug
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "Schema context details"
// @Router       /debug/schema [get]
func (h *Handlers) DebugSchemaHandler(c *gin.Context) {
	context := h.orchestrator.CurrentContext()
	preview := context
	if len(preview) > 2000 {
		preview = preview[:2000] + "..."
	}

	fileCount, files := h.contexts.ContextInfo()

	c.JSON(http.StatusOK, gin.H{
		"database":        h.orchestrator.CurrentDatabase(),
		"context_length":  len(context),
		"context_preview": preview,
		"static_files":    files,
		"static_count":    fileCount,
	})
}

// DebugRefreshContextHandler drops the memoized static context
// @Summary      Refresh static context (debug)
// @Description  Drop the cached static context so the next read re-walks the context folder, and report what is on disk now
// @Tags         Debug
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "Reloaded context details"
// @Router       /debug/refresh-context [post]
func (h *Handlers) DebugRefreshContextHandler(c *gin.Context) {
	h.contexts.Invalidate()
	fileCount, files := h.contexts.ContextInfo()
	log.Printf("[CONTEXT] Static context cache invalidated, %d files on disk", fileCount)

	c.JSON(http.StatusOK, gin.H{
		"status":       "refreshed",
		"static_count": fileCount,
		"static_files": files,
	})
}

// DebugSessionsHandler reports live session counts
// @Summary      Session counts (debug)
// @Description  Get the number of live in-memory chat sessions, broken down by kind
// @Tags         Debug
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "Session counts"
// @Router       /debug/sessions [get]
func (h *Handlers) DebugSessionsHandler(c *gin.Context) {
	total, byKind := h.orchestrator.SessionCounts()
	c.JSON(http.StatusOK, gin.H{
		"total":   total,
		"by_kind": byKind,
	})
}
