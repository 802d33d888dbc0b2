package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/mcncl/tomljson/internal/config"
	"github.com/mcncl/tomljson/internal/converter"
	"github.com/mcncl/tomljson/internal/errors"
)

// CLI defines the command-line interface
var CLI struct {
	Files   []string `arg:"" optional:"" name:"file" help:"TOML or JSON files to convert. Each one produces a sibling file in the other format."`
	Config  string   `help:"Path to a config file. Defaults to the nearest .tomljson.yml." short:"c" type:"path" env:"TOMLJSON_CONFIG"`
	Jobs    int      `help:"Number of files to convert at once." short:"j" env:"TOMLJSON_JOBS"`
	Indent  int      `help:"Spaces per indentation level in JSON output." env:"TOMLJSON_INDENT"`
	Nulls   string   `help:"How JSON nulls are written to TOML: error or sentinel." env:"TOMLJSON_NULLS"`
	Strict  bool     `help:"Fail on files whose extension is neither TOML nor JSON instead of skipping them." env:"TOMLJSON_STRICT"`
	Debug   bool     `help:"Enable debug logging." short:"d" env:"TOMLJSON_DEBUG"`
	Version bool     `help:"Show version information." short:"v"`
}

// Context holds the runtime context
type Context struct {
	Debug  bool
	Config *config.Config
	Stdout io.Writer
	Stderr io.Writer
}

// Version information
const (
	Version = "0.1.0"
)

func main() {
	// Values from a local .env file feed the env tags above; a missing file is fine.
	_ = godotenv.Load()

	parser := kong.Must(&CLI,
		kong.Name("tomljson"),
		kong.Description("Convert TOML files to JSON and JSON files to TOML"),
		kong.UsageOnError(),
	)

	if _, err := parser.Parse(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", errors.UserFriendlyError(errors.NewUsageError(err.Error(), nil)))
		fmt.Fprintf(os.Stderr, "\nFor help, run: tomljson --help\n")
		os.Exit(1)
	}

	if CLI.Version {
		fmt.Printf("tomljson version %s\n", Version)
		return
	}

	configPath := CLI.Config
	if configPath == "" {
		configPath = config.FindConfigFile()
	}
	cfg, err := config.LoadConfigWithCLI(configPath, config.CLIOverrides{
		Jobs:   CLI.Jobs,
		Indent: CLI.Indent,
		Nulls:  CLI.Nulls,
		Strict: CLI.Strict,
		Debug:  CLI.Debug,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", errors.UserFriendlyError(errors.NewConfigError(fmt.Sprintf("cannot load %q", configPath), err)))
		os.Exit(1)
	}

	ctx := &Context{
		Debug:  cfg.Dev.Debug,
		Config: cfg,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
	if err := run(ctx, CLI.Files); err != nil {
		os.Exit(1)
	}
}

// run converts every file and reports each outcome on its own line. It
// returns an error when the list is empty or any file failed.
func run(ctx *Context, files []string) error {
	if len(files) == 0 {
		err := errors.NewUsageError("no files specified", errors.ErrNoInput)
		fmt.Fprintln(ctx.Stderr, "Usage: tomljson <file> [<file> ...]")
		fmt.Fprintf(ctx.Stderr, "error: %s\n", errors.UserFriendlyError(err))
		return err
	}

	conv := converter.NewConverter(ctx.Config)
	if ctx.Debug {
		conv.SetDebugOutput(ctx.Stderr)
	}

	failed := 0
	for _, outcome := range conv.ConvertAll(context.Background(), files) {
		switch {
		case outcome.Failed():
			failed++
			fmt.Fprintf(ctx.Stderr, "error: file %q can't be converted: %s\n", outcome.Input, errors.UserFriendlyError(outcome.Err))
		case outcome.Skipped:
		default:
			fmt.Fprintf(ctx.Stdout, "File %q produced\n", outcome.Output)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files: %w", failed, len(files), errors.ErrConversionFailed)
	}
	return nil
}
