package rag

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestExtractText_PlainText(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "notes.txt", "hello world\nsecond line")

	content, err := ExtractText(context.Background(), path)
	if err != nil {
		t.Fatalf("ExtractText() error = %v", err)
	}
	if content != "hello world\nsecond line" {
		t.Errorf("ExtractText() = %q", content)
	}
}

func TestExtractText_UnknownExtensionTreatedAsText(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "readme.rst", "restructured text body")

	content, err := ExtractText(context.Background(), path)
	if err != nil {
		t.Fatalf("ExtractText() error = %v", err)
	}
	if content != "restructured text body" {
		t.Errorf("ExtractText() = %q", content)
	}
}

func TestExtractText_CSV(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "people.csv", "name,city\nada,london\ngrace,washington\n")

	content, err := ExtractText(context.Background(), path)
	if err != nil {
		t.Fatalf("ExtractText() error = %v", err)
	}

	lines := strings.Split(content, "\n")
	if len(lines) != 2 {
		t.Fatalf("ExtractText() produced %d lines, want 2: %q", len(lines), content)
	}
	if lines[0] != "name: ada, city: london" {
		t.Errorf("first row = %q, want %q", lines[0], "name: ada, city: london")
	}
}

func TestExtractText_InvalidPDF(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "broken.pdf", "this is not a pdf")

	if _, err := ExtractText(context.Background(), path); err == nil {
		t.Fatal("ExtractText() expected error for invalid PDF")
	}
}

func TestExtractText_MissingFile(t *testing.T) {
	if _, err := ExtractText(context.Background(), "/nonexistent/file.txt"); err == nil {
		t.Fatal("ExtractText() expected error for missing file")
	}
}

func TestExtractText_BinaryContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "blob.bin")
	if err := os.WriteFile(path, []byte{0xff, 0xfe, 0x00, 0x80}, 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	if _, err := ExtractText(context.Background(), path); err == nil {
		t.Fatal("ExtractText() expected error for binary content")
	}
}
