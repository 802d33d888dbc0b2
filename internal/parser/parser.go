package parser

import (
	"fmt"
	"io"

	"github.com/mcncl/tomljson/internal/errors"
	"github.com/mcncl/tomljson/internal/models"
)

// Parse reads a whole document of the given format from reader and returns
// its value tree.
func Parse(reader io.Reader, format models.Format) (models.Value, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.NewReadIOError("failed to read input", err)
	}
	return ParseBytes(data, format)
}

// ParseBytes parses data according to format.
func ParseBytes(data []byte, format models.Format) (models.Value, error) {
	switch format {
	case models.FormatTOML:
		root, err := ParseTOML(data)
		if err != nil {
			return nil, err
		}
		return root, nil
	case models.FormatJSON:
		return ParseJSON(data)
	default:
		return nil, fmt.Errorf("unknown format %v", format)
	}
}

// ParseString parses a document held in a string.
func ParseString(s string, format models.Format) (models.Value, error) {
	return ParseBytes([]byte(s), format)
}

// lineColumn converts a byte offset into 1-based line and column numbers.
// Columns count bytes.
func lineColumn(data []byte, offset int) (int, int) {
	if offset > len(data) {
		offset = len(data)
	}
	line, col := 1, 1
	for _, b := range data[:offset] {
		if b == '\n' {
			line++
			col = 1
			continue
		}
		col++
	}
	return line, col
}

func parseFailure(format models.Format, data []byte, offset int, message string) error {
	line, col := lineColumn(data, offset)
	return errors.NewParsingError(
		fmt.Sprintf("invalid %s document", format),
		&errors.ParseError{
			Format:  format.String(),
			Line:    line,
			Column:  col,
			Offset:  offset,
			Message: message,
		},
	)
}
