package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appError *AppError
		expected string
	}{
		{
			name: "error with wrapped error",
			appError: &AppError{
				Type:    ErrorTypeReadIO,
				Message: "failed to read input",
				Err:     errors.New("permission denied"),
			},
			expected: "read_io: failed to read input: permission denied",
		},
		{
			name: "error without wrapped error",
			appError: &AppError{
				Type:    ErrorTypeParsing,
				Message: "invalid TOML document",
				Err:     nil,
			},
			expected: "parsing: invalid TOML document",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.appError.Error()
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	wrappedErr := errors.New("wrapped error")
	appErr := &AppError{
		Type:    ErrorTypeWriteIO,
		Message: "test message",
		Err:     wrappedErr,
	}

	result := appErr.Unwrap()
	assert.Equal(t, wrappedErr, result)
}

func TestAppError_Is(t *testing.T) {
	tests := []struct {
		name     string
		appError *AppError
		target   error
		expected bool
	}{
		{
			name:     "same type",
			appError: NewNotExistError("a.toml"),
			target:   &AppError{Type: ErrorTypeNotExist},
			expected: true,
		},
		{
			name:     "different type",
			appError: NewNotExistError("a.toml"),
			target:   &AppError{Type: ErrorTypeNotAFile},
			expected: false,
		},
		{
			name:     "not an AppError",
			appError: NewNotExistError("a.toml"),
			target:   errors.New("standard error"),
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.appError.Is(tt.target)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestAppError_WrapsSentinels(t *testing.T) {
	assert.ErrorIs(t, NewNotExistError("x"), ErrFileNotFound)
	assert.ErrorIs(t, NewNotAFileError("x"), ErrNotAFile)
	assert.ErrorIs(t, NewNoExtensionError("x"), ErrNoExtension)
	assert.ErrorIs(t, NewUnknownExtensionError("x.txt", ".txt"), ErrUnknownExtension)

	wrapped := fmt.Errorf("converting: %w", NewNoExtensionError("Makefile"))
	assert.ErrorIs(t, wrapped, &AppError{Type: ErrorTypeNoExtension})
}

func TestParseError_Error(t *testing.T) {
	withLine := &ParseError{Format: "TOML", Line: 3, Column: 7, Offset: 20, Message: "duplicate key a"}
	assert.Equal(t, "TOML line 3, column 7: duplicate key a", withLine.Error())

	offsetOnly := &ParseError{Format: "JSON", Offset: 12, Message: "unexpected end of input"}
	assert.Equal(t, "JSON offset 12: unexpected end of input", offsetOnly.Error())
}

func TestUnsupportedValueError(t *testing.T) {
	err := NewUnsupportedValueError("table.key", "TOML has no null value")

	var valueErr *UnsupportedValueError
	require.ErrorAs(t, err, &valueErr)
	assert.Equal(t, "table.key", valueErr.Path)
	assert.Equal(t, `key "table.key": TOML has no null value`, valueErr.Error())

	root := &UnsupportedValueError{Reason: "TOML documents must be tables, got array"}
	assert.Equal(t, "document root: TOML documents must be tables, got array", root.Error())
}

func TestUserFriendlyError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "not exist",
			err:      NewNotExistError("missing.toml"),
			expected: `Input error: "missing.toml" does not exist`,
		},
		{
			name:     "not a file",
			err:      NewNotAFileError("dir.toml"),
			expected: `Input error: "dir.toml" is not a file`,
		},
		{
			name: "parsing error",
			err: NewParsingError("invalid JSON document", &ParseError{
				Format: "JSON", Line: 1, Column: 5, Offset: 4, Message: "duplicate key \"a\"",
			}),
			expected: `Parse error: JSON line 1, column 5: duplicate key "a"`,
		},
		{
			name:     "unsupported value",
			err:      NewUnsupportedValueError("a.b", "TOML has no null value"),
			expected: `Unsupported value: key "a.b": TOML has no null value`,
		},
		{
			name:     "no extension",
			err:      NewNoExtensionError("Makefile"),
			expected: `Extension error: no extension for file "Makefile"`,
		},
		{
			name:     "create file",
			err:      NewCreateFileError(`unable to create file "a.json"`, errors.New("read-only file system")),
			expected: `Output error: unable to create file "a.json": read-only file system`,
		},
		{
			name:     "usage",
			err:      NewUsageError("no files specified", ErrNoInput),
			expected: "Usage error: no files specified",
		},
		{
			name:     "standard error - no input",
			err:      ErrNoInput,
			expected: "Error: No input provided. Please specify one or more .toml or .json files.",
		},
		{
			name:     "standard error - conversion failed",
			err:      fmt.Errorf("2 of 3 files: %w", ErrConversionFailed),
			expected: "Error: One or more files failed to convert.",
		},
		{
			name:     "unknown error",
			err:      errors.New("some unknown error"),
			expected: "Error: some unknown error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := UserFriendlyError(tt.err)
			assert.Equal(t, tt.expected, result)
		})
	}
}
