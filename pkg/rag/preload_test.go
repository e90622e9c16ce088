package rag

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDirectory(t *testing.T) {
	engine := newTestEngine(t, "preload")
	ctx := context.Background()

	dir := t.TempDir()
	writePreloadFile(t, dir, "facts.txt", "the moon orbits the earth")
	writePreloadFile(t, dir, "notes.md", "markdown notes about tides")
	writePreloadFile(t, dir, "ignore.bin", "binary-ish file that should not load")

	n, err := LoadDirectory(ctx, engine, dir)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	results, err := engine.Search(ctx, "moon orbits the earth")
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "preload", results[0].Metadata["source"])
}

func TestLoadDirectory_MissingDirectory(t *testing.T) {
	engine := newTestEngine(t, "preload")

	_, err := LoadDirectory(context.Background(), engine, "/nonexistent/knowledge")
	var confErr *ConfigurationMissingError
	require.ErrorAs(t, err, &confErr)
}

func TestLoadDirectory_NotADirectory(t *testing.T) {
	engine := newTestEngine(t, "preload")

	dir := t.TempDir()
	path := writePreloadFile(t, dir, "file.txt", "content")

	_, err := LoadDirectory(context.Background(), engine, path)
	var confErr *ConfigurationMissingError
	require.ErrorAs(t, err, &confErr)
}

func TestLoadDirectory_NoMatchingFiles(t *testing.T) {
	engine := newTestEngine(t, "preload")

	dir := t.TempDir()
	writePreloadFile(t, dir, "data.json", `{"not": "loaded"}`)

	_, err := LoadDirectory(context.Background(), engine, dir)
	var confErr *ConfigurationMissingError
	require.ErrorAs(t, err, &confErr)
}

func TestLoadDirectory_SkipsEmptyFiles(t *testing.T) {
	engine := newTestEngine(t, "preload")

	dir := t.TempDir()
	writePreloadFile(t, dir, "real.txt", "actual knowledge to index")
	writePreloadFile(t, dir, "empty.txt", "   \n ")

	n, err := LoadDirectory(context.Background(), engine, dir)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func writePreloadFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}
