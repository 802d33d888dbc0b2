// Package converter wires the readers, the mapper and the writers together
// and performs the per-file I/O: picking a direction from the extension,
// reading the input and replacing the sibling output file.
package converter

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/davecgh/go-spew/spew"

	"github.com/mcncl/tomljson/internal/config"
	"github.com/mcncl/tomljson/internal/errors"
	"github.com/mcncl/tomljson/internal/generator"
	"github.com/mcncl/tomljson/internal/mapper"
	"github.com/mcncl/tomljson/internal/models"
	"github.com/mcncl/tomljson/internal/parser"
)

// Route is the pipeline chosen for one input file.
type Route struct {
	Input  string
	Output string
	Source models.Format
	Target models.Format
}

// Outcome is the result of converting one input file.
type Outcome struct {
	Input   string
	Output  string
	Skipped bool
	Lossy   []mapper.LossyField
	Err     error
}

// Failed reports whether the file could not be converted.
func (o Outcome) Failed() bool {
	return o.Err != nil
}

// Converter converts files between TOML and JSON.
type Converter struct {
	config *config.Config

	debugMu sync.Mutex
	debug   io.Writer
	dumper  spew.ConfigState
}

// NewConverter creates a Converter for the given configuration.
func NewConverter(cfg *config.Config) *Converter {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	return &Converter{
		config: cfg,
		dumper: spew.ConfigState{
			Indent:                  "  ",
			DisablePointerAddresses: true,
			DisableCapacities:       true,
		},
	}
}

// SetDebugOutput enables debug tracing to w. A nil writer disables it.
func (c *Converter) SetDebugOutput(w io.Writer) {
	c.debugMu.Lock()
	defer c.debugMu.Unlock()
	c.debug = w
}

func (c *Converter) debugf(format string, args ...any) {
	c.debugMu.Lock()
	defer c.debugMu.Unlock()
	if c.debug == nil {
		return
	}
	fmt.Fprintf(c.debug, "debug: "+format+"\n", args...)
}

func (c *Converter) debugEnabled() bool {
	c.debugMu.Lock()
	defer c.debugMu.Unlock()
	return c.debug != nil
}

// Route picks the pipeline for path from its extension. The boolean is false
// when the extension belongs to neither format and the configuration says to
// skip such files.
func (c *Converter) Route(path string) (Route, bool, error) {
	ext := filepath.Ext(path)
	if ext == "" || ext == filepath.Base(path) {
		return Route{}, false, errors.NewNoExtensionError(path)
	}

	source, ok := c.config.FormatForExtension(ext)
	if !ok {
		if c.config.UnknownExtension == config.UnknownExtensionError {
			return Route{}, false, errors.NewUnknownExtensionError(path, ext)
		}
		return Route{}, false, nil
	}

	target := source.Opposite()
	return Route{
		Input:  path,
		Output: path[:len(path)-len(ext)] + c.config.OutputExtension(target),
		Source: source,
		Target: target,
	}, true, nil
}

// Convert runs the reader, mapper and writer for a document of format source
// and returns the text in the opposite format.
func (c *Converter) Convert(data []byte, source models.Format) (string, mapper.Result, error) {
	tree, err := parser.ParseBytes(data, source)
	if err != nil {
		return "", mapper.Result{}, err
	}
	if c.debugEnabled() {
		c.debugf("%s tree:\n%s", source, c.dumper.Sdump(tree))
	}

	result, err := mapper.NewMapperWithOptions(c.config.MapperOptions()).Map(tree, source)
	if err != nil {
		return "", mapper.Result{}, err
	}

	gen := generator.NewGeneratorWithIndent(c.config.JSON.Indent)
	var text string
	if source.Opposite() == models.FormatJSON {
		text, err = gen.GenerateJSON(result.Root)
	} else {
		text, err = gen.GenerateTOML(result.Root)
	}
	if err != nil {
		return "", mapper.Result{}, err
	}
	return text, result, nil
}

// ConvertFile converts the file at path and writes the sibling output file.
// Every failure is returned in the Outcome; nothing panics or exits.
func (c *Converter) ConvertFile(path string) Outcome {
	outcome := Outcome{Input: path}

	if err := checkInput(path); err != nil {
		outcome.Err = err
		return outcome
	}

	route, ok, err := c.Route(path)
	if err != nil {
		outcome.Err = err
		return outcome
	}
	if !ok {
		c.debugf("skipping %q: extension %q is not configured", path, filepath.Ext(path))
		outcome.Skipped = true
		return outcome
	}
	c.debugf("%s file %q -> %q", route.Source, route.Input, route.Output)

	data, err := os.ReadFile(path)
	if err != nil {
		outcome.Err = errors.NewReadIOError(fmt.Sprintf("reading file %q failed", path), err)
		return outcome
	}

	text, result, err := c.Convert(data, route.Source)
	if err != nil {
		outcome.Err = err
		return outcome
	}
	for _, l := range result.Lossy {
		c.debugf("lossy conversion in %q: %s", path, l)
	}

	if err := writeOutput(route.Output, text); err != nil {
		outcome.Err = err
		return outcome
	}
	outcome.Output = route.Output
	outcome.Lossy = result.Lossy
	return outcome
}

// checkInput verifies that path names an existing regular file.
func checkInput(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.NewNotExistError(path)
		}
		return errors.NewReadIOError(fmt.Sprintf("failed to stat %q", path), err)
	}
	if !info.Mode().IsRegular() {
		return errors.NewNotAFileError(path)
	}
	return nil
}

// writeOutput replaces the file at path with text.
func writeOutput(path, text string) error {
	if _, err := os.Stat(path); err == nil {
		if err := os.Remove(path); err != nil {
			return errors.NewCreateFileError(fmt.Sprintf("unable to remove existing file %q", path), err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return errors.NewCreateFileError(fmt.Sprintf("unable to create file %q", path), err)
	}
	if _, err := io.WriteString(file, text); err != nil {
		_ = file.Close()
		return errors.NewWriteIOError(fmt.Sprintf("unable to write file %q", path), err)
	}
	if err := file.Close(); err != nil {
		return errors.NewWriteIOError(fmt.Sprintf("unable to write file %q", path), err)
	}
	return nil
}
