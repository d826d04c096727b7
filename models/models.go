package models

type ChatRequest struct {
	Message   string `json:"message" binding:"required"`
	SessionID string `json:"session_id,omitempty"`
}

type ClearRequest struct {
	SessionID string `json:"session_id" binding:"required"`
}

// TableData is the structured form of a row-returning query result. Every row
// has exactly len(Headers) values and RowCount always equals len(Rows).
type TableData struct {
	Headers  []string        `json:"headers"`
	Rows     [][]interface{} `json:"rows"`
	RowCount int             `json:"row_count"`
}

// QueryResult bundles the two renderings of a successful execution: the text
// form shown to the model and the table for the frontend. Table is nil for
// statements that do not return rows.
type QueryResult struct {
	Text  string     `json:"text"`
	Table *TableData `json:"table,omitempty"`
}

type ChatResponse struct {
	Response       string     `json:"response"`
	SessionID      string     `json:"session_id"`
	HasSQL         bool       `json:"has_sql"`
	SQLQuery       string     `json:"sql_query,omitempty"`
	SQLResult      string     `json:"sql_result,omitempty"`
	SQLTable       *TableData `json:"sql_table,omitempty"`
	SQLError       string     `json:"sql_error,omitempty"`
	UserQuestion   string     `json:"user_question,omitempty"`
	Interpretation string     `json:"interpretation,omitempty"`
}

type SwitchDatabaseRequest struct {
	Database string `json:"database" binding:"required"`
}

type SwitchDatabaseResponse struct {
	Status        string `json:"status"`
	Database      string `json:"database"`
	Message       string `json:"message"`
	SchemaPreview string `json:"schema_preview,omitempty"`
}

type FileInfo struct {
	Filename    string   `json:"filename"`
	Rows        int      `json:"rows"`
	Columns     int      `json:"columns"`
	ColumnNames []string `json:"column_names"`
}

type FileUploadResponse struct {
	SessionID string   `json:"session_id"`
	Response  string   `json:"response"`
	FileInfo  FileInfo `json:"file_info"`
}

// ChatExchange is one persisted request/response pair of a session transcript.
type ChatExchange struct {
	SessionID string `json:"session_id"`
	Kind      string `json:"kind"`
	Message   string `json:"message"`
	Response  string `json:"response"`
	Timestamp string `json:"timestamp"`
}

// FileRecord is the persisted metadata of an uploaded file.
type FileRecord struct {
	Filename   string `json:"filename"`
	SessionID  string `json:"session_id"`
	Rows       int    `json:"rows"`
	Columns    int    `json:"columns"`
	UploadedAt string `json:"uploaded_at"`
}
