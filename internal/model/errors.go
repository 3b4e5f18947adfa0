package model

import (
	"errors"
	"fmt"
)

// Sentinel errors for document validation and configuration
var (
	ErrEmptyDocument = errors.New("document text is empty")
	ErrNonText       = errors.New("document content is not text")
	ErrNoWords       = errors.New("document contains no countable words")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// LoadError reports an unreadable or missing lexicon or stop-word source.
// It is fatal for a batch: scoring without lexicons is meaningless.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// DocumentAnalysisError reports a per-document failure. The batch continues
// and the document is exported with a zero-valued record.
type DocumentAnalysisError struct {
	DocumentID string
	Err        error
}

func (e *DocumentAnalysisError) Error() string {
	return fmt.Sprintf("document %s: %v", e.DocumentID, e.Err)
}

func (e *DocumentAnalysisError) Unwrap() error {
	return e.Err
}
