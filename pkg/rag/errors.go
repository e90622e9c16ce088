package rag

import (
	"fmt"
)

// ConfigurationMissingError reports an absent knowledge source, e.g. no
// preload directory or no matching files in it. Non-fatal: callers log it
// and proceed without that retrieval path.
type ConfigurationMissingError struct {
	Resource string // What was looked for
	Message  string // Why it is missing
}

func (e *ConfigurationMissingError) Error() string {
	return fmt.Sprintf("knowledge source missing (%s): %s", e.Resource, e.Message)
}

// NewConfigurationMissingError creates a new ConfigurationMissingError.
func NewConfigurationMissingError(resource, message string) *ConfigurationMissingError {
	return &ConfigurationMissingError{Resource: resource, Message: message}
}

// FileLoadError reports a single file that failed to load or parse. The
// file is skipped and the batch continues.
type FileLoadError struct {
	File string // File name or path
	Err  error  // Underlying error
}

func (e *FileLoadError) Error() string {
	return fmt.Sprintf("failed to load file %s: %v", e.File, e.Err)
}

func (e *FileLoadError) Unwrap() error {
	return e.Err
}

// NewFileLoadError creates a new FileLoadError.
func NewFileLoadError(file string, err error) *FileLoadError {
	return &FileLoadError{File: file, Err: err}
}

// EmptyContentError reports a batch that yielded zero usable documents.
// Fatal to that retrieval path only.
type EmptyContentError struct {
	Source string // Batch description ("uploads", "preload directory", ...)
}

func (e *EmptyContentError) Error() string {
	return fmt.Sprintf("no usable content extracted from %s", e.Source)
}

// NewEmptyContentError creates a new EmptyContentError.
func NewEmptyContentError(source string) *EmptyContentError {
	return &EmptyContentError{Source: source}
}

// SearchError reports a failure during a search operation.
type SearchError struct {
	Component string // Component that failed ("embedder", "vector_db", ...)
	Operation string // Operation that failed
	Message   string // Error message
	Query     string // Query that caused the error
	Err       error  // Underlying error
}

func (e *SearchError) Error() string {
	msg := fmt.Sprintf("[%s] %s: %s", e.Component, e.Operation, e.Message)
	if e.Query != "" {
		query := e.Query
		if len(query) > 50 {
			query = query[:50] + "..."
		}
		msg += fmt.Sprintf(" (query: %q)", query)
	}
	if e.Err != nil {
		msg += fmt.Sprintf(": %v", e.Err)
	}
	return msg
}

func (e *SearchError) Unwrap() error {
	return e.Err
}

// NewSearchError creates a new SearchError.
func NewSearchError(component, operation, message, query string, err error) *SearchError {
	return &SearchError{
		Component: component,
		Operation: operation,
		Message:   message,
		Query:     query,
		Err:       err,
	}
}

// IndexError reports a failure while indexing a document.
type IndexError struct {
	Collection string // Target collection
	DocumentID string // Document ID
	Operation  string // Operation ("chunk", "embed", "upsert")
	Message    string // Error message
	Err        error  // Underlying error
}

func (e *IndexError) Error() string {
	msg := fmt.Sprintf("[%s] index %s failed for %s: %s", e.Collection, e.Operation, e.DocumentID, e.Message)
	if e.Err != nil {
		msg += fmt.Sprintf(": %v", e.Err)
	}
	return msg
}

func (e *IndexError) Unwrap() error {
	return e.Err
}

// NewIndexError creates a new IndexError.
func NewIndexError(collection, documentID, operation, message string, err error) *IndexError {
	return &IndexError{
		Collection: collection,
		DocumentID: documentID,
		Operation:  operation,
		Message:    message,
		Err:        err,
	}
}
