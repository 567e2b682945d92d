// Command spvdis prints a SPIR-V module as text, one instruction per line.
//
// Usage:
//
//	spvdis Effect.spv
//	fxc compile -o - Effect.fx | spvdis -
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"

	"github.com/gogpu/reshadefx/spirv"
)

var cli struct {
	Input  string `arg:"" help:"SPIR-V binary to disassemble, or - for stdin."`
	Output string `short:"o" help:"Write the listing to this file instead of stdout." type:"path"`
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Name("spvdis"),
		kong.Description("Disassemble SPIR-V produced by fxc."),
	)
	if err := run(cli.Input, cli.Output); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		ctx.Exit(1)
	}
}

func run(input, output string) error {
	var data []byte
	var err error
	if input == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(input)
	}
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	words, err := spirv.Words(data)
	if err != nil {
		return err
	}

	var w io.Writer = os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("creating output: %w", err)
		}
		defer f.Close()
		w = f
	}

	bw := bufio.NewWriter(w)
	if err := spirv.Disassemble(bw, words); err != nil {
		return err
	}
	return bw.Flush()
}
