package service

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestIsSupportedUpload(t *testing.T) {
	cases := []struct {
		filename string
		want     bool
	}{
		{"report.xlsx", true},
		{"legacy.XLS", true},
		{"data.csv", true},
		{"notes.txt", false},
		{"script.sql", false},
		{"noextension", false},
	}
	for _, tc := range cases {
		if got := IsSupportedUpload(tc.filename); got != tc.want {
			t.Errorf("IsSupportedUpload(%q) = %v, want %v", tc.filename, got, tc.want)
		}
	}
}

func TestSummarizeCSV(t *testing.T) {
	dir := t.TempDir()
	svc, err := NewFileService(dir)
	if err != nil {
		t.Fatalf("NewFileService failed: %v", err)
	}

	csv := "Name,Department,Salary\nAlice,Engineering,90000\nBob,Sales,60000\nCarol,Engineering,95000\n"
	path, err := svc.Save("staff.csv", strings.NewReader(csv))
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Fatalf("upload saved outside the upload dir: %s", path)
	}

	summary, info, err := svc.Summarize(path)
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}

	if info.Filename != "staff.csv" || info.Rows != 3 || info.Columns != 3 {
		t.Fatalf("unexpected file info: %+v", info)
	}
	if info.ColumnNames[1] != "Department" {
		t.Fatalf("unexpected columns: %v", info.ColumnNames)
	}

	for _, want := range []string{
		"File: staff.csv",
		"Rows: 3, Columns: 3",
		"Column names: Name, Department, Salary",
		"Alice | Engineering | 90000",
	} {
		if !strings.Contains(summary, want) {
			t.Errorf("summary missing %q:\n%s", want, summary)
		}
	}
}

func TestSummarizeEmptyCSV(t *testing.T) {
	dir := t.TempDir()
	svc, err := NewFileService(dir)
	if err != nil {
		t.Fatalf("NewFileService failed: %v", err)
	}

	path := filepath.Join(dir, "empty.csv")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	if _, _, err := svc.Summarize(path); err == nil {
		t.Fatal("expected error for empty file")
	}
}

func TestSummarizeHeaderOnlyCSV(t *testing.T) {
	dir := t.TempDir()
	svc, err := NewFileService(dir)
	if err != nil {
		t.Fatalf("NewFileService failed: %v", err)
	}

	path := filepath.Join(dir, "headers.csv")
	if err := os.WriteFile(path, []byte("A,B,C\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	summary, info, err := svc.Summarize(path)
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if info.Rows != 0 || info.Columns != 3 {
		t.Fatalf("unexpected info: %+v", info)
	}
	if !strings.Contains(summary, "no data rows") {
		t.Fatalf("summary should note the empty body:\n%s", summary)
	}
}

func TestSummarizeUnsupportedExtension(t *testing.T) {
	dir := t.TempDir()
	svc, err := NewFileService(dir)
	if err != nil {
		t.Fatalf("NewFileService failed: %v", err)
	}

	path := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, _, err = svc.Summarize(path)
	if err == nil || !strings.Contains(err.Error(), "unsupported file type") {
		t.Fatalf("expected unsupported-type error, got %v", err)
	}
}

func TestSummarizeCapsSampledRows(t *testing.T) {
	dir := t.TempDir()
	svc, err := NewFileService(dir)
	if err != nil {
		t.Fatalf("NewFileService failed: %v", err)
	}

	var b strings.Builder
	b.WriteString("Id\n")
	for i := 0; i < maxSampleRows+500; i++ {
		b.WriteString("1\n")
	}
	path := filepath.Join(dir, "big.csv")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatal(err)
	}

	_, info, err := svc.Summarize(path)
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if info.Rows != maxSampleRows {
		t.Fatalf("expected sampling cap %d, got %d", maxSampleRows, info.Rows)
	}
}
