// Package errors defines the typed failures reported by the CLI, scan, watch and MCP layers.
// The metrics engine itself never fails; these cover everything around it.
package errors

import (
	stderrors "errors"
	"fmt"
	"os"
	"strings"
)

// ErrorType classifies a failure for callers that report it to users or agents
type ErrorType string

const (
	ErrorTypeAnalysis     ErrorType = "analysis"
	ErrorTypeParse        ErrorType = "parse"
	ErrorTypeFileNotFound ErrorType = "file_not_found"
	ErrorTypePermission   ErrorType = "permission"
	ErrorTypeFileRead     ErrorType = "file_read"
	ErrorTypeConfig       ErrorType = "config"
	ErrorTypeInternal     ErrorType = "internal"
)

// multiErrorShown caps how many failures MultiError spells out
const multiErrorShown = 3

// AnalysisError wraps a failure to produce a report for one input: reading it,
// scheduling it or stat-ing it. Grammar and FilePath are optional context.
type AnalysisError struct {
	Type       ErrorType
	Operation  string
	Grammar    string
	FilePath   string
	Underlying error
}

// NewAnalysisError wraps err as a failure of op
func NewAnalysisError(op string, err error) *AnalysisError {
	return &AnalysisError{
		Type:       ErrorTypeAnalysis,
		Operation:  op,
		Underlying: err,
	}
}

// WithFile records which file, and with which grammar, op was working on
func (e *AnalysisError) WithFile(grammar, path string) *AnalysisError {
	e.Grammar = grammar
	e.FilePath = path
	return e
}

func (e *AnalysisError) Error() string {
	if e.FilePath == "" {
		return fmt.Sprintf("%s failed: %v", e.Operation, e.Underlying)
	}
	if e.Grammar == "" {
		return fmt.Sprintf("%s failed for %s: %v", e.Operation, e.FilePath, e.Underlying)
	}
	return fmt.Sprintf("%s failed for %s (%s): %v", e.Operation, e.FilePath, e.Grammar, e.Underlying)
}

func (e *AnalysisError) Unwrap() error {
	return e.Underlying
}

// ParseError describes why a source unit could not be turned into a syntax tree.
// It never escapes the metrics engine; it explains the fallback in debug output.
// Line and Column are 1-based; a zero Line means no position is known.
type ParseError struct {
	Grammar    string
	Line       int
	Column     int
	Token      string
	Underlying error
}

func NewParseError(grammar string, line, column int, token string, err error) *ParseError {
	return &ParseError{
		Grammar:    grammar,
		Line:       line,
		Column:     column,
		Token:      token,
		Underlying: err,
	}
}

func (e *ParseError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("%s parse error: %v", e.Grammar, e.Underlying)
	}
	return fmt.Sprintf("%s parse error at %d:%d (near token %q): %v",
		e.Grammar, e.Line, e.Column, e.Token, e.Underlying)
}

func (e *ParseError) Unwrap() error {
	return e.Underlying
}

// FileError is a file system failure; Type tells missing files from unreadable ones
type FileError struct {
	Type       ErrorType
	Path       string
	Operation  string
	Underlying error
}

// NewFileError classifies err from the os package
func NewFileError(op, path string, err error) *FileError {
	errorType := ErrorTypeFileRead
	switch {
	case os.IsNotExist(err):
		errorType = ErrorTypeFileNotFound
	case os.IsPermission(err):
		errorType = ErrorTypePermission
	}

	return &FileError{
		Type:       errorType,
		Path:       path,
		Operation:  op,
		Underlying: err,
	}
}

func (e *FileError) Error() string {
	return fmt.Sprintf("file %s failed for %s: %v", e.Operation, e.Path, e.Underlying)
}

func (e *FileError) Unwrap() error {
	return e.Underlying
}

// ConfigError names the setting that failed validation
type ConfigError struct {
	Field      string
	Value      string
	Underlying error
}

func NewConfigError(field, value string, err error) *ConfigError {
	return &ConfigError{
		Field:      field,
		Value:      value,
		Underlying: err,
	}
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error for field %s (value %s): %v", e.Field, e.Value, e.Underlying)
}

func (e *ConfigError) Unwrap() error {
	return e.Underlying
}

// MultiError collects per-file failures of a batch run
type MultiError struct {
	Errors []error
}

// NewMultiError keeps the non-nil errors of errs
func NewMultiError(errs []error) *MultiError {
	filtered := make([]error, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err)
		}
	}
	return &MultiError{Errors: filtered}
}

// ErrorOrNil returns nil when no errors were collected
func (e *MultiError) ErrorOrNil() error {
	if e == nil || len(e.Errors) == 0 {
		return nil
	}
	return e
}

func (e *MultiError) Error() string {
	switch len(e.Errors) {
	case 0:
		return "no errors"
	case 1:
		return e.Errors[0].Error()
	}

	shown := min(len(e.Errors), multiErrorShown)
	parts := make([]string, shown)
	for i := range parts {
		parts[i] = e.Errors[i].Error()
	}
	msg := fmt.Sprintf("%d errors: %s", len(e.Errors), strings.Join(parts, "; "))
	if rest := len(e.Errors) - shown; rest > 0 {
		msg += fmt.Sprintf("; and %d more", rest)
	}
	return msg
}

func (e *MultiError) Unwrap() []error {
	return e.Errors
}

// TypeOf classifies err by the most specific typed error in its chain, checking
// file, config, parse and then analysis errors. Untyped errors are internal.
func TypeOf(err error) ErrorType {
	if err == nil {
		return ""
	}

	var fileErr *FileError
	if stderrors.As(err, &fileErr) {
		return fileErr.Type
	}
	var configErr *ConfigError
	if stderrors.As(err, &configErr) {
		return ErrorTypeConfig
	}
	var parseErr *ParseError
	if stderrors.As(err, &parseErr) {
		return ErrorTypeParse
	}
	var analysisErr *AnalysisError
	if stderrors.As(err, &analysisErr) {
		return analysisErr.Type
	}
	return ErrorTypeInternal
}
