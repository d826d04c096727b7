package service

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"dbassist/models"
)

// maxSampleRows caps how many data rows feed the model summary; anything
// beyond it is counted but not rendered.
const maxSampleRows = 10000

// previewRows is how many sample rows the summary shows verbatim.
const previewRows = 10

var supportedUploadExtensions = []string{".xlsx", ".xls", ".csv"}

// IsSupportedUpload reports whether filename carries an analyzable extension.
func IsSupportedUpload(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, s := range supportedUploadExtensions {
		if ext == s {
			return true
		}
	}
	return false
}

// SupportedUploadExtensions returns the upload allow-list for error messages.
func SupportedUploadExtensions() []string {
	return append([]string(nil), supportedUploadExtensions...)
}

// FileService persists uploads and turns tabular files into text summaries
// the model can analyze.
type FileService struct {
	uploadDir string
}

func NewFileService(uploadDir string) (*FileService, error) {
	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &FileService{uploadDir: uploadDir}, nil
}

// Save writes the upload to disk under its original name and returns the
// stored path.
func (f *FileService) Save(filename string, r io.Reader) (string, error) {
	path := filepath.Join(f.uploadDir, filepath.Base(filename))
	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to store upload: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, r); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to store upload: %w", err)
	}
	return path, nil
}

// Summarize reads a stored tabular file and produces the text summary handed
// to the model plus the structural metadata returned to the caller. At most
// maxSampleRows data rows are read; larger files are truncated, not rejected.
func (f *FileService) Summarize(path string) (string, models.FileInfo, error) {
	headers, rows, err := readTable(path)
	if err != nil {
		return "", models.FileInfo{}, err
	}

	filename := filepath.Base(path)
	info := models.FileInfo{
		Filename:    filename,
		Rows:        len(rows),
		Columns:     len(headers),
		ColumnNames: headers,
	}

	var b strings.Builder
	fmt.Fprintf(&b, "File: %s\n", filename)
	fmt.Fprintf(&b, "Rows: %d, Columns: %d\n", len(rows), len(headers))
	fmt.Fprintf(&b, "Column names: %s\n\n", strings.Join(headers, ", "))

	limit := previewRows
	if len(rows) < limit {
		limit = len(rows)
	}
	if limit > 0 {
		fmt.Fprintf(&b, "First %d rows:\n", limit)
		b.WriteString(strings.Join(headers, " | "))
		b.WriteString("\n")
		for _, row := range rows[:limit] {
			b.WriteString(strings.Join(row, " | "))
			b.WriteString("\n")
		}
	} else {
		b.WriteString("The file contains no data rows.\n")
	}

	log.Printf("[FILE UPLOAD] Summarized %s: %d rows, %d columns", filename, len(rows), len(headers))
	return b.String(), info, nil
}

// readTable dispatches on extension and returns header row plus data rows,
// capped at maxSampleRows.
func readTable(path string) ([]string, [][]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return readCSV(path)
	case ".xlsx", ".xls":
		return readSpreadsheet(path)
	default:
		return nil, nil, fmt.Errorf("unsupported file type: %s (supported: %s)",
			filepath.Ext(path), strings.Join(supportedUploadExtensions, ", "))
	}
}

func readCSV(path string) ([]string, [][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err == io.EOF {
		return nil, nil, fmt.Errorf("file is empty")
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse CSV: %w", err)
	}

	var rows [][]string
	for len(rows) < maxSampleRows {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("failed to parse CSV: %w", err)
		}
		rows = append(rows, row)
	}
	return headers, rows, nil
}

func readSpreadsheet(path string) ([]string, [][]string, error) {
	book, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open spreadsheet: %w", err)
	}
	defer book.Close()

	sheets := book.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, fmt.Errorf("spreadsheet has no sheets")
	}

	all, err := book.GetRows(sheets[0])
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read spreadsheet: %w", err)
	}
	if len(all) == 0 {
		return nil, nil, fmt.Errorf("file is empty")
	}

	headers := all[0]
	rows := all[1:]
	if len(rows) > maxSampleRows {
		rows = rows[:maxSampleRows]
	}
	// pad ragged rows so every row has one cell per header
	for i, row := range rows {
		for len(row) < len(headers) {
			row = append(row, "")
		}
		rows[i] = row
	}
	return headers, rows, nil
}
