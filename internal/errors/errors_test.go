package errors

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalysisError(t *testing.T) {
	underlying := stderrors.New("boom")

	tests := []struct {
		name string
		err  *AnalysisError
		want string
	}{
		{"bare", NewAnalysisError("scan", underlying), "scan failed: boom"},
		{"with path", NewAnalysisError("scan", underlying).WithFile("", "a.py"), "scan failed for a.py: boom"},
		{"with grammar", NewAnalysisError("scan", underlying).WithFile("python", "a.py"), "scan failed for a.py (python): boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
			assert.Equal(t, ErrorTypeAnalysis, tt.err.Type)
			assert.ErrorIs(t, tt.err, underlying)
		})
	}
}

func TestParseError(t *testing.T) {
	underlying := stderrors.New("source contains syntax errors")

	positioned := NewParseError("python", 3, 7, "ERROR", underlying)
	assert.Equal(t, `python parse error at 3:7 (near token "ERROR"): source contains syntax errors`, positioned.Error())
	assert.ErrorIs(t, positioned, underlying)

	unpositioned := NewParseError("go", 0, 0, "", underlying)
	assert.Equal(t, "go parse error: source contains syntax errors", unpositioned.Error())
}

func TestFileError_Classification(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{"missing", fs.ErrNotExist, ErrorTypeFileNotFound},
		{"wrapped missing", &fs.PathError{Op: "open", Path: "a.py", Err: fs.ErrNotExist}, ErrorTypeFileNotFound},
		{"permission", fs.ErrPermission, ErrorTypePermission},
		{"other", stderrors.New("disk on fire"), ErrorTypeFileRead},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewFileError("read", "a.py", tt.err)
			assert.Equal(t, tt.want, err.Type)
			assert.Equal(t, "file read failed for a.py: "+tt.err.Error(), err.Error())
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestFileError_FromOS(t *testing.T) {
	_, statErr := os.Stat("/definitely/not/here.py")
	require.Error(t, statErr)

	err := NewFileError("stat", "/definitely/not/here.py", statErr)
	assert.Equal(t, ErrorTypeFileNotFound, err.Type)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestConfigError(t *testing.T) {
	underlying := stderrors.New("must be positive")
	err := NewConfigError("analysis", "indent_unit=0", underlying)

	assert.Equal(t, "config error for field analysis (value indent_unit=0): must be positive", err.Error())
	assert.ErrorIs(t, err, underlying)
}

func TestMultiError(t *testing.T) {
	assert.NoError(t, NewMultiError(nil).ErrorOrNil())
	assert.NoError(t, NewMultiError([]error{nil, nil}).ErrorOrNil())

	var nilMulti *MultiError
	assert.NoError(t, nilMulti.ErrorOrNil())

	first := stderrors.New("first")
	single := NewMultiError([]error{nil, first})
	require.Error(t, single.ErrorOrNil())
	assert.Equal(t, "first", single.Error())
	assert.ErrorIs(t, single, first)
}

func TestMultiError_TruncatesLongLists(t *testing.T) {
	errs := make([]error, 5)
	for i := range errs {
		errs[i] = fmt.Errorf("e%d", i)
	}

	multi := NewMultiError(errs)
	assert.Equal(t, "5 errors: e0; e1; e2; and 2 more", multi.Error())
	assert.ErrorIs(t, multi, errs[4], "every error stays reachable")

	three := NewMultiError(errs[:3])
	assert.Equal(t, "3 errors: e0; e1; e2", three.Error())
}

func TestTypeOf(t *testing.T) {
	missing := NewFileError("read", "a.py", fs.ErrNotExist)

	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{"nil", nil, ""},
		{"plain", stderrors.New("x"), ErrorTypeInternal},
		{"file", missing, ErrorTypeFileNotFound},
		{"file inside analysis", NewAnalysisError("scan", missing).WithFile("python", "a.py"), ErrorTypeFileNotFound},
		{"config", fmt.Errorf("load: %w", NewConfigError("output", "xml", stderrors.New("bad"))), ErrorTypeConfig},
		{"parse", NewParseError("python", 1, 1, "", stderrors.New("bad")), ErrorTypeParse},
		{"analysis", NewAnalysisError("scan", stderrors.New("x")), ErrorTypeAnalysis},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TypeOf(tt.err))
		})
	}
}
