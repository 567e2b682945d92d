// Command fxc compiles ReShade FX effects.
//
// Usage:
//
//	fxc compile Bloom.fx                    # SPIR-V next to the input
//	fxc compile -t glsl -o - Bloom.fx       # GLSL to stdout
//	fxc compile -t hlsl --shader-model 4.1 -e F__PS Bloom.fx
//	fxc compile --descriptors --output-dir build shaders/*.fx
//	fxc preprocess -D QUALITY=2 Bloom.fx
//	fxc check shaders/*.fx
//
// Settings are read from fxc.yaml in the working directory, or from the
// file given with --config. Flags override the file.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Sentinel errors.
var (
	ErrCompilationFailed  = errors.New("compilation failed")
	ErrOutputNeedsOneFile = errors.New("--output can only be used with a single input file")
)

const defaultConfig = "fxc.yaml"

var version = "0.1.0-dev"

// Context carries the global flags to every command.
type Context struct {
	Config  string
	Verbose bool
	Quiet   bool

	Stdout io.Writer
	Stderr io.Writer
}

// CLI is the command tree.
type CLI struct {
	Config  string `help:"Configuration file (default: fxc.yaml if present)." type:"path"`
	Verbose bool   `short:"v" help:"Print every compilation step."`
	Quiet   bool   `short:"q" help:"Print errors only."`
	NoColor bool   `help:"Disable colored output."`

	Compile    CompileCmd    `cmd:"" help:"Compile effects to SPIR-V, GLSL or HLSL."`
	Preprocess PreprocessCmd `cmd:"" help:"Print the preprocessed source of an effect."`
	Check      CheckCmd      `cmd:"" help:"Parse effects and report diagnostics without writing output."`
	Version    VersionCmd    `cmd:"" help:"Show version information."`
}

// VersionCmd prints the version.
type VersionCmd struct{}

func (cmd *VersionCmd) Run(ctx *Context) error {
	fmt.Fprintf(ctx.Stdout, "fxc %s\n", version)
	return nil
}

// configureColor turns color off when asked to or when stderr, where
// diagnostics go, is not a terminal.
func configureColor(noColor bool, f *os.File) {
	if noColor || (!isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd())) {
		color.NoColor = true
	}
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("fxc"),
		kong.Description("ReShade FX effect compiler."),
		kong.UsageOnError(),
	)
	configureColor(cli.NoColor, os.Stderr)

	ctx := &Context{
		Config:  cli.Config,
		Verbose: cli.Verbose && !cli.Quiet,
		Quiet:   cli.Quiet,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
	}
	if err := kctx.Run(ctx); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
