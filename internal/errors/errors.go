package errors

import (
	"errors"
	"fmt"
)

// Standard application errors
var (
	ErrNotAFile         = errors.New("path is not a regular file")
	ErrFileNotFound     = errors.New("file not found")
	ErrNoExtension      = errors.New("file has no extension")
	ErrUnknownExtension = errors.New("file extension is not a supported format")
	ErrNoInput          = errors.New("no input provided: please specify one or more files to convert")
	ErrConversionFailed = errors.New("one or more files failed to convert")
)

// ErrorType categorizes errors
type ErrorType string

const (
	ErrorTypeNotAFile         ErrorType = "not_a_file"
	ErrorTypeNotExist         ErrorType = "not_exist"
	ErrorTypeReadIO           ErrorType = "read_io"
	ErrorTypeParsing          ErrorType = "parsing"
	ErrorTypeUnsupportedValue ErrorType = "unsupported_value"
	ErrorTypeNoExtension      ErrorType = "no_extension"
	ErrorTypeUnknownExtension ErrorType = "unknown_extension"
	ErrorTypeWriteIO          ErrorType = "write_io"
	ErrorTypeCreateFile       ErrorType = "create_file"
	ErrorTypeUsage            ErrorType = "usage"
	ErrorTypeConfig           ErrorType = "config"
)

// AppError is an application-specific error with context
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns wrapped error
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for comparison
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// ParseError reports a syntax or semantic error in a source document.
// Line and Column start at 1; Offset is the byte offset into the input.
type ParseError struct {
	Format  string
	Line    int
	Column  int
	Offset  int
	Message string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s line %d, column %d: %s", e.Format, e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("%s offset %d: %s", e.Format, e.Offset, e.Message)
}

// UnsupportedValueError reports a value the target format cannot express.
// Path is the dotted key path of the value, empty for the document root.
type UnsupportedValueError struct {
	Path   string
	Reason string
}

func (e *UnsupportedValueError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("document root: %s", e.Reason)
	}
	return fmt.Sprintf("key %q: %s", e.Path, e.Reason)
}

// NewNotAFileError creates an error for a path that exists but is not a regular file
func NewNotAFileError(path string) *AppError {
	return &AppError{
		Type:    ErrorTypeNotAFile,
		Message: fmt.Sprintf("%q is not a file", path),
		Err:     ErrNotAFile,
	}
}

// NewNotExistError creates an error for a path that does not exist
func NewNotExistError(path string) *AppError {
	return &AppError{
		Type:    ErrorTypeNotExist,
		Message: fmt.Sprintf("%q does not exist", path),
		Err:     ErrFileNotFound,
	}
}

// NewReadIOError creates a new error related to reading an input file
func NewReadIOError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeReadIO,
		Message: message,
		Err:     err,
	}
}

// NewParsingError wraps a ParseError produced by one of the readers
func NewParsingError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeParsing,
		Message: message,
		Err:     err,
	}
}

// NewUnsupportedValueError creates an error for a value that cannot be
// represented in the target format
func NewUnsupportedValueError(path, reason string) *AppError {
	return &AppError{
		Type:    ErrorTypeUnsupportedValue,
		Message: "value cannot be represented in the target format",
		Err:     &UnsupportedValueError{Path: path, Reason: reason},
	}
}

// NewNoExtensionError creates an error for a path without an extension
func NewNoExtensionError(path string) *AppError {
	return &AppError{
		Type:    ErrorTypeNoExtension,
		Message: fmt.Sprintf("no extension for file %q", path),
		Err:     ErrNoExtension,
	}
}

// NewUnknownExtensionError creates an error for an extension that maps to no format
func NewUnknownExtensionError(path, ext string) *AppError {
	return &AppError{
		Type:    ErrorTypeUnknownExtension,
		Message: fmt.Sprintf("extension %q of file %q is not supported", ext, path),
		Err:     ErrUnknownExtension,
	}
}

// NewWriteIOError creates a new error related to writing an output file
func NewWriteIOError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeWriteIO,
		Message: message,
		Err:     err,
	}
}

// NewCreateFileError creates a new error related to creating an output file
func NewCreateFileError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeCreateFile,
		Message: message,
		Err:     err,
	}
}

// NewUsageError creates a new error for invalid command-line usage
func NewUsageError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeUsage,
		Message: message,
		Err:     err,
	}
}

// NewConfigError creates a new error for an unreadable or invalid config file
func NewConfigError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeConfig,
		Message: message,
		Err:     err,
	}
}

// UserFriendlyError returns a user-friendly error message
func UserFriendlyError(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		switch appErr.Type {
		case ErrorTypeNotAFile, ErrorTypeNotExist:
			return fmt.Sprintf("Input error: %s", appErr.Message)
		case ErrorTypeReadIO:
			return fmt.Sprintf("Read error: %s: %v", appErr.Message, appErr.Err)
		case ErrorTypeParsing:
			var parseErr *ParseError
			if errors.As(appErr.Err, &parseErr) {
				return fmt.Sprintf("Parse error: %s", parseErr.Error())
			}
			return fmt.Sprintf("Parse error: %s", appErr.Message)
		case ErrorTypeUnsupportedValue:
			var valueErr *UnsupportedValueError
			if errors.As(appErr.Err, &valueErr) {
				return fmt.Sprintf("Unsupported value: %s", valueErr.Error())
			}
			return fmt.Sprintf("Unsupported value: %s", appErr.Message)
		case ErrorTypeNoExtension, ErrorTypeUnknownExtension:
			return fmt.Sprintf("Extension error: %s", appErr.Message)
		case ErrorTypeWriteIO, ErrorTypeCreateFile:
			return fmt.Sprintf("Output error: %s: %v", appErr.Message, appErr.Err)
		case ErrorTypeUsage:
			return fmt.Sprintf("Usage error: %s", appErr.Message)
		case ErrorTypeConfig:
			return fmt.Sprintf("Config error: %s: %v", appErr.Message, appErr.Err)
		default:
			return fmt.Sprintf("Error: %s", appErr.Message)
		}
	}

	// Handle standard errors
	if errors.Is(err, ErrFileNotFound) {
		return "Error: The specified file could not be found. Please check the file path."
	}
	if errors.Is(err, ErrNoInput) {
		return "Error: No input provided. Please specify one or more .toml or .json files."
	}
	if errors.Is(err, ErrConversionFailed) {
		return "Error: One or more files failed to convert."
	}

	// Generic error message for unknown errors
	return fmt.Sprintf("Error: %v", err)
}
