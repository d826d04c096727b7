package handlers

import (
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"dbassist/models"
	"dbassist/service"
	"dbassist/validation"
)

// FileUploadHandler uploads a spreadsheet or CSV for analysis
// @Summary      Upload a file for analysis
// @Description  Upload an .xlsx, .xls or .csv file. The file is summarized and handed to the AI, which returns an initial analysis bound to a session id.
// @Tags         File Analysis
// @Accept       multipart/form-data
// @Produce      json
// @Param        file        formData  file    true   "Spreadsheet or CSV file"
// @Param        session_id  formData  string  false  "Existing file-analysis session id"
// @Success      200         {object}  models.FileUploadResponse  "Initial analysis"
// @Failure      400         {object}  map[string]string          "No file or unsupported type"
// @Failure      500         {object}  map[string]string          "Processing failed"
// @Router       /files/upload [post]
func (h *Handlers) FileUploadHandler(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
		return
	}

	if !service.IsSupportedUpload(file.Filename) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("Unsupported file type. Supported types: %s",
				strings.Join(service.SupportedUploadExtensions(), ", ")),
		})
		return
	}

	sessionID := c.PostForm("session_id")
	if !validation.IsValidSessionID(sessionID) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid session id"})
		return
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open uploaded file"})
		return
	}
	defer src.Close()

	path, err := h.files.Save(file.Filename, src)
	if err != nil {
		log.Printf("[FILE UPLOAD] Error storing file: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store uploaded file"})
		return
	}

	summary, info, err := h.files.Summarize(path)
	if err != nil {
		log.Printf("[FILE UPLOAD] Error reading file: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Failed to read file: %v", err)})
		return
	}

	sessionID, analysis, err := h.orchestrator.HandleFileUpload(c.Request.Context(), summary, sessionID)
	if err != nil {
		log.Printf("[FILE UPLOAD] Error analyzing file: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error processing file with AI"})
		return
	}

	record := models.FileRecord{
		Filename:   info.Filename,
		SessionID:  sessionID,
		Rows:       info.Rows,
		Columns:    info.Columns,
		UploadedAt: time.Now().Format(time.RFC3339),
	}
	if err := h.db.StoreFileRecord(record); err != nil {
		log.Printf("[FILE UPLOAD] Error storing upload record: %v", err)
	}

	c.JSON(http.StatusOK, models.FileUploadResponse{
		SessionID: sessionID,
		Response:  analysis,
		FileInfo:  info,
	})
}

// FileChatHandler continues a file-analysis conversation
// @Summary      Ask about an uploaded file
// @Description  Send a follow-up question about a previously uploaded file. Uses the session id returned by the upload endpoint.
// @Tags         File Analysis
// @Accept       json
// @Produce      json
// @Param        request  body      models.ChatRequest   true  "Message and session id"
// @Success      200      {object}  models.ChatResponse  "Assistant reply"
// @Failure      400      {object}  map[string]string    "Invalid request"
// @Router       /files/chat [post]
func (h *Handlers) FileChatHandler(c *gin.Context) {
	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: message is required"})
		return
	}
	if req.SessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session_id is required: upload a file first"})
		return
	}
	if !validation.IsValidSessionID(req.SessionID) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid session id"})
		return
	}

	resp := h.orchestrator.HandleFileMessage(c.Request.Context(), req.Message, req.SessionID)

	if err := h.db.StoreChatExchange(resp.SessionID, "file_analysis", req.Message, resp.Response); err != nil {
		log.Printf("[FILE CHAT] Error storing chat exchange: %v", err)
	}

	c.JSON(http.StatusOK, resp)
}

// FileClearHandler resets a file-analysis session
// @Summary      Clear a file-analysis session
// @Description  Reset the conversation behind a file-analysis session id
// @Tags         File Analysis
// @Accept       json
// @Produce      json
// @Param        request  body      models.ClearRequest  true  "Session id to clear"
// @Success      200      {object}  map[string]string    "Session cleared"
// @Failure      400      {object}  map[string]string    "Invalid request"
// @Failure      404      {object}  map[string]string    "Session not found"
// @Router       /files/clear [post]
func (h *Handlers) FileClearHandler(c *gin.Context) {
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
		"message":    "File analysis session has been reset",
	})
}

// FileUploadsHandler lists persisted upload records
// @Summary      List uploads
// @Description  Get the metadata of every file uploaded for analysis
// @Tags         File Analysis
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "Upload records"
// @Failure      500  {object}  map[string]string       "Failed to list uploads"
// @Router       /files/uploads [get]
func (h *Handlers) FileUploadsHandler(c *gin.Context) {
	records, err := h.db.ListFileRecords()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list uploads"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count":   len(records),
		"uploads": records,
	})
}
