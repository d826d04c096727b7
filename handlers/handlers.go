package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"dbassist/config"
	"dbassist/db"
	"dbassist/service"
)

// @title           Database Assistant API
// @version         1.0
// @description     Conversational gateway over SQL Server - ask questions in natural language, the AI generates and runs SQL and explains the results. Also analyzes uploaded spreadsheets.
// @termsOfService  http://swagger.io/terms/

// @contact.name   API Support
// @contact.url    http://www.swagger.io/support
// @contact.email  support@swagger.io

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8000
// @BasePath  /

// @schemes   http https

type Handlers struct {
	cfg          *config.Config
	db           *db.DB
	orchestrator *service.Orchestrator
	files        *service.FileService
	contexts     *service.ContextProvider
}

func New(cfg *config.Config, database *db.DB, orchestrator *service.Orchestrator, files *service.FileService, contexts *service.ContextProvider) *Handlers {
	return &Handlers{
		cfg:          cfg,
		db:           database,
		orchestrator: orchestrator,
		files:        files,
		contexts:     contexts,
	}
}

// RootHandler describes the service
// @Summary      Service info
// @Description  Get the service name, version and available endpoint groups
// @Tags         Health
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "Service description"
// @Router       / [get]
func (h *Handlers) RootHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service":          "Database Assistant API",
		"status":           "running",
		"version":          h.cfg.Version,
		"current_database": h.orchestrator.CurrentDatabase(),
		"endpoints": gin.H{
			"db":    []string{"/db/chat", "/db/clear", "/db/status", "/db/switch-database", "/db/current-database", "/db/history/:session_id"},
			"files": []string{"/files/upload", "/files/chat", "/files/clear", "/files/uploads"},
		},
	})
}

// HealthHandler checks the health status of the service
// @Summary      Health check
// @Description  Check the health status of the service and its SQL Server connection
// @Tags         Health
// @Produce      json
// @Success      200  {object}  map[string]string  "Service health status"
// @Router       /health [get]
func (h *Handlers) HealthHandler(c *gin.Context) {
	status := gin.H{
		"status":     "healthy",
		"version":    h.cfg.Version,
		"sql_server": "disconnected",
		"database":   h.orchestrator.CurrentDatabase(),
	}

	if h.orchestrator.DatabaseStatus(c.Request.Context()) {
		status["sql_server"] = "connected"
	}

	c.JSON(http.StatusOK, status)
}
