package converter

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcncl/tomljson/internal/config"
	"github.com/mcncl/tomljson/internal/errors"
	"github.com/mcncl/tomljson/internal/mapper"
	"github.com/mcncl/tomljson/internal/models"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestConverter_Route(t *testing.T) {
	conv := NewConverter(nil)

	tests := []struct {
		name   string
		path   string
		output string
		source models.Format
	}{
		{name: "toml", path: "conf/app.toml", output: "conf/app.json", source: models.FormatTOML},
		{name: "json", path: "data.json", output: "data.toml", source: models.FormatJSON},
		{name: "upper case extension", path: "DATA.JSON", output: "DATA.toml", source: models.FormatJSON},
		{name: "dotted stem", path: "app.prod.toml", output: "app.prod.json", source: models.FormatTOML},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			route, ok, err := conv.Route(tt.path)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, tt.path, route.Input)
			assert.Equal(t, tt.output, route.Output)
			assert.Equal(t, tt.source, route.Source)
			assert.Equal(t, tt.source.Opposite(), route.Target)
		})
	}
}

func TestConverter_RouteWithoutExtension(t *testing.T) {
	conv := NewConverter(nil)

	for _, path := range []string{"Makefile", "dir/.toml"} {
		_, _, err := conv.Route(path)
		require.Error(t, err, path)
		assert.ErrorIs(t, err, errors.ErrNoExtension)
	}
}

func TestConverter_RouteUnknownExtension(t *testing.T) {
	_, ok, err := NewConverter(nil).Route("notes.txt")
	require.NoError(t, err)
	assert.False(t, ok)

	cfg := config.NewConfig()
	cfg.UnknownExtension = config.UnknownExtensionError
	_, _, err = NewConverter(cfg).Route("notes.txt")
	assert.ErrorIs(t, err, errors.ErrUnknownExtension)
}

func TestConverter_RouteCustomExtensions(t *testing.T) {
	cfg := config.NewConfig()
	cfg.TOML.Extensions = []string{".tml", ".toml"}
	require.NoError(t, cfg.Validate())

	route, ok, err := NewConverter(cfg).Route("a.tml")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "a.json", route.Output)

	route, ok, err = NewConverter(cfg).Route("b.json")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "b.tml", route.Output)
}

func TestConverter_Convert(t *testing.T) {
	conv := NewConverter(nil)

	text, result, err := conv.Convert([]byte("a = 1\nb = \"x\"\n"), models.FormatTOML)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"a\": 1,\n  \"b\": \"x\"\n}", text)
	assert.True(t, result.RoundTrips())

	text, _, err = conv.Convert([]byte(`{"a": [1, 2.5, "s"]}`), models.FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, "a = [1, 2.5, \"s\"]\n", text)
}

func TestConverter_ConvertUsesConfig(t *testing.T) {
	cfg := config.NewConfig()
	cfg.JSON.Indent = 4
	cfg.Nulls.Policy = mapper.NullPolicySentinel

	conv := NewConverter(cfg)

	text, _, err := conv.Convert([]byte("[t]\nk = true\n"), models.FormatTOML)
	require.NoError(t, err)
	assert.Equal(t, "{\n    \"t\": {\n        \"k\": true\n    }\n}", text)

	text, result, err := conv.Convert([]byte(`{"k": null}`), models.FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, "k = \"null\"\n", text)
	require.Len(t, result.Lossy, 1)
	assert.Equal(t, "k", result.Lossy[0].Path)
}

func TestConverter_ConvertFile(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "config.toml", "name = \"svc\"\n\n[db]\nport = 5432\n")

	outcome := NewConverter(nil).ConvertFile(input)

	require.NoError(t, outcome.Err)
	assert.False(t, outcome.Skipped)
	assert.Equal(t, filepath.Join(dir, "config.json"), outcome.Output)
	assert.Equal(t, "{\n  \"name\": \"svc\",\n  \"db\": {\n    \"port\": 5432\n  }\n}", readFile(t, outcome.Output))
}

func TestConverter_ConvertFileOverwrites(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "data.json", `{"a": 1}`)
	output := writeFile(t, dir, "data.toml", "stale = \"content that is much longer than the new output\"\n")

	outcome := NewConverter(nil).ConvertFile(input)

	require.NoError(t, outcome.Err)
	assert.Equal(t, "a = 1\n", readFile(t, output))
}

func TestConverter_ConvertFileRecordsLossyFields(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "release.toml", "date = 1979-05-27\n")

	var debug bytes.Buffer
	conv := NewConverter(nil)
	conv.SetDebugOutput(&debug)
	outcome := conv.ConvertFile(input)

	require.NoError(t, outcome.Err)
	require.Len(t, outcome.Lossy, 1)
	assert.Equal(t, "date", outcome.Lossy[0].Path)
	assert.Equal(t, "{\n  \"date\": \"1979-05-27\"\n}", readFile(t, outcome.Output))
	assert.Contains(t, debug.String(), "debug: lossy conversion")
	assert.Contains(t, debug.String(), "debug: TOML tree:")
}

func TestConverter_ConvertFileFailures(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "folder.toml"), 0o755))
	writeFile(t, dir, "README", "no extension")
	writeFile(t, dir, "broken.json", `{"a": 1,}`)
	writeFile(t, dir, "nulls.json", `{"a": {"b": null}}`)
	writeFile(t, dir, "dup.toml", "a = 1\na = 2\n")

	tests := []struct {
		name     string
		path     string
		expected *errors.AppError
	}{
		{name: "missing", path: "missing.toml", expected: &errors.AppError{Type: errors.ErrorTypeNotExist}},
		{name: "directory", path: "folder.toml", expected: &errors.AppError{Type: errors.ErrorTypeNotAFile}},
		{name: "no extension", path: "README", expected: &errors.AppError{Type: errors.ErrorTypeNoExtension}},
		{name: "invalid json", path: "broken.json", expected: &errors.AppError{Type: errors.ErrorTypeParsing}},
		{name: "null", path: "nulls.json", expected: &errors.AppError{Type: errors.ErrorTypeUnsupportedValue}},
		{name: "duplicate key", path: "dup.toml", expected: &errors.AppError{Type: errors.ErrorTypeParsing}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.path)
			outcome := NewConverter(nil).ConvertFile(path)

			require.True(t, outcome.Failed())
			assert.ErrorIs(t, outcome.Err, tt.expected)
			assert.Empty(t, outcome.Output)
		})
	}

	// Failed conversions leave no output behind
	_, err := os.Stat(filepath.Join(dir, "broken.toml"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(dir, "nulls.toml"))
	assert.True(t, os.IsNotExist(err))
}

func TestConverter_ConvertFileSkipsUnknownExtension(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "notes.txt", "hello")

	outcome := NewConverter(nil).ConvertFile(input)
	assert.True(t, outcome.Skipped)
	assert.False(t, outcome.Failed())

	cfg := config.NewConfig()
	cfg.UnknownExtension = config.UnknownExtensionError
	outcome = NewConverter(cfg).ConvertFile(input)
	assert.ErrorIs(t, outcome.Err, errors.ErrUnknownExtension)
}

func TestConverter_ConvertAllKeepsInputOrder(t *testing.T) {
	dir := t.TempDir()
	cfg := config.NewConfig()
	cfg.Jobs = 4

	var paths []string
	for i := 0; i < 12; i++ {
		if i%3 == 2 {
			paths = append(paths, filepath.Join(dir, fmt.Sprintf("missing-%d.toml", i)))
			continue
		}
		paths = append(paths, writeFile(t, dir, fmt.Sprintf("doc-%d.toml", i), fmt.Sprintf("n = %d\n", i)))
	}

	outcomes := NewConverter(cfg).ConvertAll(context.Background(), paths)

	require.Len(t, outcomes, len(paths))
	for i, outcome := range outcomes {
		assert.Equal(t, paths[i], outcome.Input)
		if i%3 == 2 {
			assert.ErrorIs(t, outcome.Err, errors.ErrFileNotFound)
			continue
		}
		require.NoError(t, outcome.Err)
		assert.Equal(t, fmt.Sprintf("{\n  \"n\": %d\n}", i), readFile(t, outcome.Output))
	}
}

func TestConverter_ConvertAllSequentialWhenOutputIsInput(t *testing.T) {
	dir := t.TempDir()
	cfg := config.NewConfig()
	cfg.Jobs = 4

	toml := writeFile(t, dir, "a.toml", "x = 1\n")
	json := filepath.Join(dir, "a.json")

	// a.toml writes a.json, which the second entry then converts back.
	outcomes := NewConverter(cfg).ConvertAll(context.Background(), []string{toml, json})

	require.Len(t, outcomes, 2)
	require.NoError(t, outcomes[0].Err)
	require.NoError(t, outcomes[1].Err)
	assert.Equal(t, "x = 1\n", readFile(t, toml))
}

func TestConverter_ConvertAllSequentialWhenOutputsCollide(t *testing.T) {
	dir := t.TempDir()
	cfg := config.NewConfig()
	cfg.Jobs = 4

	input := writeFile(t, dir, "a.toml", "x = 1\n")

	outcomes := NewConverter(cfg).ConvertAll(context.Background(), []string{input, input, input})

	require.Len(t, outcomes, 3)
	for _, outcome := range outcomes {
		require.NoError(t, outcome.Err)
		assert.Equal(t, filepath.Join(dir, "a.json"), outcome.Output)
	}
	assert.Equal(t, "{\n  \"x\": 1\n}", readFile(t, filepath.Join(dir, "a.json")))
}

func TestConverter_Overlapping(t *testing.T) {
	cfg := config.NewConfig()
	cfg.TOML.Extensions = []string{".toml", ".tml"}
	require.NoError(t, cfg.Validate())
	conv := NewConverter(cfg)

	tests := []struct {
		name     string
		paths    []string
		expected bool
	}{
		{name: "distinct files", paths: []string{"a.toml", "b.toml", "c.json"}, expected: false},
		{name: "output is an input", paths: []string{"a.toml", "a.json"}, expected: true},
		{name: "repeated path", paths: []string{"a.toml", "b.json", "a.toml"}, expected: true},
		{name: "same path spelled differently", paths: []string{"a.toml", "./a.toml"}, expected: true},
		{name: "two extensions share an output", paths: []string{"a.toml", "a.tml"}, expected: true},
		{name: "unknown extensions are ignored", paths: []string{"a.txt", "a.txt"}, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, conv.overlapping(tt.paths))
		})
	}
}

func TestConverter_ConvertAllCancelled(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "a.toml", "x = 1\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcomes := NewConverter(nil).ConvertAll(ctx, []string{input})
	require.Len(t, outcomes, 1)
	assert.ErrorIs(t, outcomes[0].Err, context.Canceled)
}
