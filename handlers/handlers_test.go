package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"dbassist/cache"
	"dbassist/config"
	"dbassist/db"
	"dbassist/models"
	"dbassist/service"
)

type stubChat struct{ replies []string }

func (c *stubChat) Send(context.Context, string) (string, error) {
	if len(c.replies) == 0 {
		return "ok", nil
	}
	r := c.replies[0]
	c.replies = c.replies[1:]
	return r, nil
}

type stubDatabase struct {
	target    service.Target
	result    *models.QueryResult
	switchErr error
	connected bool
}

func (s *stubDatabase) Execute(context.Context, string) (*models.QueryResult, error) {
	if s.result != nil {
		return s.result, nil
	}
	return &models.QueryResult{Text: "(0 rows returned)"}, nil
}

func (s *stubDatabase) Switch(_ context.Context, database string) (string, error) {
	if s.switchErr != nil {
		return "", s.switchErr
	}
	s.target.Database = database
	return "Table: dbo.Employees", nil
}

func (s *stubDatabase) Current() service.Target { return s.target }
func (s *stubDatabase) CheckConnection(context.Context) bool { return s.connected }

type testEnv struct {
	router   *gin.Engine
	database *db.DB
	stub     *stubDatabase
	ctxDir   string
}

func newTestEnv(t *testing.T, replies ...string) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	database, err := db.New(t.TempDir())
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	stub := &stubDatabase{target: service.Target{Database: "pa", Context: "schema"}, connected: true}
	sessions := service.NewSessionStore(func(string, float64) service.Conversation {
		return &stubChat{replies: replies}
	}, 0)
	t.Cleanup(sessions.Stop)

	orch := service.NewOrchestrator(sessions, stub)

	files, err := service.NewFileService(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create file service: %v", err)
	}

	ctxDir := t.TempDir()
	contexts := service.NewContextProvider(ctxDir, cache.New())
	cfg := &config.Config{Version: "1.0.0"}

	h := New(cfg, database, orch, files, contexts)

	r := gin.New()
	r.GET("/", h.RootHandler)
	r.GET("/health", h.HealthHandler)
	r.POST("/db/chat", h.DBChatHandler)
	r.POST("/db/clear", h.DBClearHandler)
	r.GET("/db/status", h.DBStatusHandler)
	r.POST("/db/switch-database", h.DBSwitchHandler)
	r.GET("/db/current-database", h.DBCurrentHandler)
	r.GET("/db/history/:session_id", h.DBHistoryHandler)
	r.POST("/files/upload", h.FileUploadHandler)
	r.POST("/files/chat", h.FileChatHandler)
	r.POST("/files/clear", h.FileClearHandler)
	r.GET("/files/uploads", h.FileUploadsHandler)
	r.GET("/debug/schema", h.DebugSchemaHandler)
	r.POST("/debug/refresh-context", h.DebugRefreshContextHandler)
	r.GET("/debug/sessions", h.DebugSessionsHandler)

	return &testEnv{router: r, database: database, stub: stub, ctxDir: ctxDir}
}

func (e *testEnv) postJSON(t *testing.T, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
		t.Fatalf("bad response body %s: %v", w.Body.String(), err)
	}
}

func TestDBChatRequiresMessage(t *testing.T) {
	env := newTestEnv(t)

	w := env.postJSON(t, "/db/chat", map[string]string{})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestDBChatReturnsEnvelopeAndPersists(t *testing.T) {
	env := newTestEnv(t, "Hello! Ask me about your data.")

	w := env.postJSON(t, "/db/chat", models.ChatRequest{Message: "good morning"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp models.ChatResponse
	decode(t, w, &resp)
	if resp.Response != "Hello! Ask me about your data." {
		t.Fatalf("unexpected response: %s", resp.Response)
	}
	if resp.SessionID == "" {
		t.Fatal("expected minted session id")
	}
	if resp.HasSQL {
		t.Fatal("plain reply must not report SQL")
	}

	history, err := env.database.GetSessionHistory(resp.SessionID)
	if err != nil {
		t.Fatalf("history lookup failed: %v", err)
	}
	if len(history) != 1 || history[0].Message != "good morning" {
		t.Fatalf("exchange not persisted: %+v", history)
	}

	hw := env.get(t, "/db/history/"+resp.SessionID)
	if hw.Code != http.StatusOK {
		t.Fatalf("history endpoint failed: %d", hw.Code)
	}
	var hist struct {
		Count int `json:"count"`
	}
	decode(t, hw, &hist)
	if hist.Count != 1 {
		t.Fatalf("expected 1 stored exchange, got %d", hist.Count)
	}
}

func TestDBClearUnknownSession(t *testing.T) {
	env := newTestEnv(t)

	w := env.postJSON(t, "/db/clear", models.ClearRequest{SessionID: "nope"})
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", w.Code, w.Body.String())
	}

	w = env.postJSON(t, "/db/clear", map[string]string{})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without session_id, got %d", w.Code)
	}
}

func TestDBClearKnownSession(t *testing.T) {
	env := newTestEnv(t, "hi")

	var resp models.ChatResponse
	decode(t, env.postJSON(t, "/db/chat", models.ChatRequest{Message: "good morning"}), &resp)

	w := env.postJSON(t, "/db/clear", models.ClearRequest{SessionID: resp.SessionID})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestDBStatus(t *testing.T) {
	env := newTestEnv(t)

	var status struct {
		Status    string `json:"status"`
		Connected bool   `json:"connected"`
		Database  string `json:"database"`
	}
	decode(t, env.get(t, "/db/status"), &status)
	if status.Status != "connected" || !status.Connected || status.Database != "pa" {
		t.Fatalf("unexpected status: %+v", status)
	}

	env.stub.connected = false
	decode(t, env.get(t, "/db/status"), &status)
	if status.Status != "disconnected" || status.Connected {
		t.Fatalf("unexpected status: %+v", status)
	}
}

func TestDBSwitchValidation(t *testing.T) {
	env := newTestEnv(t)

	w := env.postJSON(t, "/db/switch-database", models.SwitchDatabaseRequest{Database: "bad;name"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unsafe name, got %d", w.Code)
	}

	w = env.postJSON(t, "/db/switch-database", map[string]string{})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing database, got %d", w.Code)
	}
}

func TestDBSwitchSuccess(t *testing.T) {
	env := newTestEnv(t)

	w := env.postJSON(t, "/db/switch-database", models.SwitchDatabaseRequest{Database: "erp_mbl"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp models.SwitchDatabaseResponse
	decode(t, w, &resp)
	if resp.Status != "success" || resp.Database != "erp_mbl" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if !strings.Contains(resp.SchemaPreview, "dbo.Employees") {
		t.Fatalf("missing schema preview: %+v", resp)
	}
}

func TestDBSwitchFailure(t *testing.T) {
	env := newTestEnv(t)
	env.stub.switchErr = &service.DBError{
		Category: service.ErrNotFound,
		Message:  "Database or server not found. Please check configuration.",
	}

	w := env.postJSON(t, "/db/switch-database", models.SwitchDatabaseRequest{Database: "ghost"})
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d: %s", w.Code, w.Body.String())
	}

	var resp models.SwitchDatabaseResponse
	decode(t, w, &resp)
	if resp.Status != "error" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestDBCurrentDatabase(t *testing.T) {
	env := newTestEnv(t)

	var resp struct {
		Database     string `json:"current_database"`
		FilterRules  string `json:"filter_rules"`
		LikeMatching string `json:"like_matching"`
	}
	decode(t, env.get(t, "/db/current-database"), &resp)

	if resp.Database != "pa" {
		t.Fatalf("expected current database pa, got %q", resp.Database)
	}
	if resp.FilterRules != "ProjectId=64 filter applied to EmployeeAttendance" {
		t.Fatalf("pa should carry the attendance filter: %+v", resp)
	}
	if resp.LikeMatching == "" {
		t.Fatalf("like_matching missing: %+v", resp)
	}
}

func TestFileUploadRejectsUnsupportedType(t *testing.T) {
	env := newTestEnv(t)

	w := env.uploadFile(t, "notes.txt", "just text")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for .txt, got %d: %s", w.Code, w.Body.String())
	}
}

func TestFileUploadCSV(t *testing.T) {
	env := newTestEnv(t, "This looks like staff data with 2 rows.")

	w := env.uploadFile(t, "staff.csv", "Name,Salary\nAlice,90000\nBob,60000\n")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp models.FileUploadResponse
	decode(t, w, &resp)
	if resp.SessionID == "" {
		t.Fatal("expected session id")
	}
	if resp.Response != "This looks like staff data with 2 rows." {
		t.Fatalf("unexpected analysis: %s", resp.Response)
	}
	if resp.FileInfo.Rows != 2 || resp.FileInfo.Columns != 2 {
		t.Fatalf("unexpected file info: %+v", resp.FileInfo)
	}

	var uploads struct {
		Count int `json:"count"`
	}
	decode(t, env.get(t, "/files/uploads"), &uploads)
	if uploads.Count != 1 {
		t.Fatalf("upload record missing, count=%d", uploads.Count)
	}
}

func TestFileChatRequiresMessage(t *testing.T) {
	env := newTestEnv(t)

	w := env.postJSON(t, "/files/chat", map[string]string{})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}

	// a message without a session id is a client error on the file path
	w = env.postJSON(t, "/files/chat", models.ChatRequest{Message: "what is in the file?"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without session_id, got %d", w.Code)
	}
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	w := env.get(t, "/health")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var status map[string]string
	decode(t, w, &status)
	if status["status"] != "healthy" || status["sql_server"] != "connected" {
		t.Fatalf("unexpected health payload: %v", status)
	}
}

func TestDebugSessions(t *testing.T) {
	env := newTestEnv(t, "hi")

	env.postJSON(t, "/db/chat", models.ChatRequest{Message: "good morning"})

	var resp struct {
		Total  int            `json:"total"`
		ByKind map[string]int `json:"by_kind"`
	}
	decode(t, env.get(t, "/debug/sessions"), &resp)
	if resp.Total != 1 || resp.ByKind["db_query"] != 1 {
		t.Fatalf("unexpected counts: %+v", resp)
	}
}

func TestDebugRefreshContext(t *testing.T) {
	env := newTestEnv(t)

	var resp struct {
		Status string   `json:"status"`
		Count  int      `json:"static_count"`
		Files  []string `json:"static_files"`
	}
	decode(t, env.postJSON(t, "/debug/refresh-context", nil), &resp)
	if resp.Status != "refreshed" || resp.Count != 0 {
		t.Fatalf("expected empty refreshed context, got %+v", resp)
	}

	path := filepath.Join(env.ctxDir, "notes.sql")
	if err := os.WriteFile(path, []byte("SELECT 1"), 0644); err != nil {
		t.Fatal(err)
	}

	decode(t, env.postJSON(t, "/debug/refresh-context", nil), &resp)
	if resp.Count != 1 || len(resp.Files) != 1 || resp.Files[0] != "notes.sql" {
		t.Fatalf("refresh should report the new file: %+v", resp)
	}
}

func (e *testEnv) uploadFile(t *testing.T, filename, content string) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/files/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}
