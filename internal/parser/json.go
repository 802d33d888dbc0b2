package parser

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/mcncl/tomljson/internal/models"
)

// ParseJSON converts a JSON document into a value tree.
//
// Object members keep their document order. Numbers without a fraction or
// exponent that fit in an int64 become Integer values, every other number
// becomes a Float. Duplicate member names and invalid UTF-8 are rejected.
func ParseJSON(data []byte) (models.Value, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, parseFailure(models.FormatJSON, data, 0, "document is empty")
	}
	if !utf8.Valid(data) {
		return nil, parseFailure(models.FormatJSON, data, invalidUTF8Offset(data), "invalid UTF-8")
	}

	r := &jsonReader{data: data, dec: json.NewDecoder(bytes.NewReader(data))}
	r.dec.UseNumber()

	root, err := r.readValue()
	if err != nil {
		return nil, err
	}

	offset := r.dec.InputOffset()
	tok, err := r.dec.Token()
	if stderrors.Is(err, io.EOF) {
		return root, nil
	}
	if err != nil {
		return nil, r.failure(err, offset)
	}
	return nil, r.fail(r.skipSeparators(offset), fmt.Sprintf("unexpected %s after top-level value", describeToken(tok)))
}

type jsonReader struct {
	data []byte
	dec  *json.Decoder
}

func (r *jsonReader) readValue() (models.Value, error) {
	offset := r.dec.InputOffset()
	tok, err := r.dec.Token()
	if err != nil {
		return nil, r.failure(err, offset)
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return r.readObject()
		case '[':
			return r.readArray()
		}
		return nil, r.fail(r.skipSeparators(offset), fmt.Sprintf("unexpected %q", rune(t)))
	case string:
		return models.String(t), nil
	case json.Number:
		return r.number(t, r.skipSeparators(offset))
	case bool:
		return models.Bool(t), nil
	case nil:
		return models.Null{}, nil
	default:
		return nil, r.fail(r.skipSeparators(offset), fmt.Sprintf("unexpected token %v", t))
	}
}

func (r *jsonReader) readObject() (models.Value, error) {
	obj := models.NewTable()
	for r.dec.More() {
		offset := r.dec.InputOffset()
		tok, err := r.dec.Token()
		if err != nil {
			return nil, r.failure(err, offset)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, r.fail(r.skipSeparators(offset), "object key must be a string")
		}
		if obj.Has(key) {
			return nil, r.fail(r.skipSeparators(offset), fmt.Sprintf("duplicate key %q", key))
		}

		value, err := r.readValue()
		if err != nil {
			return nil, err
		}
		obj.Set(key, value)
	}
	if err := r.closeContainer(); err != nil {
		return nil, err
	}
	return obj, nil
}

func (r *jsonReader) readArray() (models.Value, error) {
	arr := models.Array{}
	for r.dec.More() {
		value, err := r.readValue()
		if err != nil {
			return nil, err
		}
		arr = append(arr, value)
	}
	if err := r.closeContainer(); err != nil {
		return nil, err
	}
	return arr, nil
}

// closeContainer consumes the closing delimiter of the current object or array.
func (r *jsonReader) closeContainer() error {
	offset := r.dec.InputOffset()
	if _, err := r.dec.Token(); err != nil {
		return r.failure(err, offset)
	}
	return nil
}

func (r *jsonReader) number(n json.Number, offset int) (models.Value, error) {
	s := n.String()
	if !strings.ContainsAny(s, ".eE") {
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return models.Integer(i), nil
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, r.fail(offset, fmt.Sprintf("number %s is out of range", s))
	}
	return models.Float(f), nil
}

// failure converts a decoder error into a ParseError.
func (r *jsonReader) failure(err error, offset int64) error {
	var syntaxErr *json.SyntaxError
	switch {
	case stderrors.As(err, &syntaxErr):
		pos := int(syntaxErr.Offset) - 1
		if pos < 0 {
			pos = 0
		}
		return r.fail(pos, syntaxErr.Error())
	case stderrors.Is(err, io.EOF), stderrors.Is(err, io.ErrUnexpectedEOF):
		return r.fail(len(r.data), "unexpected end of input")
	default:
		return r.fail(int(offset), err.Error())
	}
}

func (r *jsonReader) fail(offset int, message string) error {
	return parseFailure(models.FormatJSON, r.data, offset, message)
}

// skipSeparators advances offset past whitespace and the separators the
// decoder consumes implicitly before a token.
func (r *jsonReader) skipSeparators(offset int64) int {
	i := int(offset)
	for i < len(r.data) {
		switch r.data[i] {
		case ' ', '\t', '\r', '\n', ',', ':':
			i++
			continue
		}
		break
	}
	return i
}

func describeToken(tok json.Token) string {
	switch t := tok.(type) {
	case json.Delim:
		return fmt.Sprintf("%q", rune(t))
	case string:
		return "string"
	case json.Number:
		return "number"
	case bool:
		return "boolean"
	case nil:
		return "null"
	default:
		return fmt.Sprintf("%v", t)
	}
}

// invalidUTF8Offset returns the offset of the first byte that does not start
// a valid UTF-8 sequence, or len(data).
func invalidUTF8Offset(data []byte) int {
	for i := 0; i < len(data); {
		r, size := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && size == 1 {
			return i
		}
		i += size
	}
	return len(data)
}
