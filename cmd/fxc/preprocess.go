package main

import (
	"context"
	"fmt"

	"github.com/gogpu/reshadefx"
	"github.com/gogpu/reshadefx/registry"
)

// PreprocessCmd prints preprocessor output.
type PreprocessCmd struct {
	CompileFlags `embed:""`

	File   string `arg:"" type:"existingfile" help:"Effect file to preprocess."`
	Output string `short:"o" help:"Write the output to this file instead of stdout."`
	Macros bool   `help:"List the macros tested by #ifdef and #ifndef after the output."`
}

func (cmd *PreprocessCmd) Run(ctx *Context) error {
	opts, _, err := cmd.options(ctx)
	if err != nil {
		return err
	}

	pp := reshadefx.NewPreprocessor(opts)
	ctx.stepf("Preprocessing %s", cmd.File)
	ok, err := pp.AppendFile(cmd.File)
	if err != nil {
		return err
	}
	ctx.report(pp.Diagnostics())

	for _, path := range pp.IncludedFiles() {
		ctx.stepf("Included %s", path)
	}
	for _, pragma := range pp.UsedPragmas() {
		ctx.stepf("Pragma reshade %s %s", pragma.Name, pragma.Value)
	}

	out := pp.Output()
	if cmd.Macros {
		for _, def := range pp.UsedMacroDefinitions() {
			out += fmt.Sprintf("// %s=%s\n", def.Name, def.Value)
		}
	}

	if cmd.Output != "" && cmd.Output != "-" {
		if err := writeFile(cmd.Output, []byte(out)); err != nil {
			return err
		}
		ctx.stepf("Wrote %s (%d bytes)", cmd.Output, len(out))
	} else {
		fmt.Fprint(ctx.Stdout, out)
	}

	if !ok {
		return fmt.Errorf("%w: %s", ErrCompilationFailed, cmd.File)
	}
	return nil
}

// CheckCmd compiles effects without writing output.
type CheckCmd struct {
	CompileFlags `embed:""`

	Files    []string `arg:"" type:"existingfile" help:"Effect files to check."`
	Parallel int      `short:"j" help:"Number of concurrent compilations (default: config or CPU count)."`
}

func (cmd *CheckCmd) Run(ctx *Context) error {
	opts, cfg, err := cmd.options(ctx)
	if err != nil {
		return err
	}
	parallel := cmd.Parallel
	if parallel == 0 {
		parallel = cfg.Parallel
	}

	compiler := registry.NewCompiler(opts, parallel)
	results, err := compiler.CompileAll(context.Background(), cmd.Files)
	if err != nil {
		return err
	}

	failed := 0
	for _, res := range results {
		switch {
		case res.Err != nil:
			ctx.failf("%s: %v", res.Path, res.Err)
			failed++
		case !res.Result.Success:
			ctx.report(res.Result.Diagnostics)
			ctx.failf("%s: FAIL", res.Path)
			failed++
		default:
			ctx.report(res.Result.Diagnostics)
			ctx.donef("%s: ok", res.Path)
		}
	}
	ctx.report(compiler.Registry.Diagnostics())

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d effect(s)", ErrCompilationFailed, failed, len(results))
	}
	return nil
}
