package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gogpu/reshadefx"
	"github.com/gogpu/reshadefx/registry"
	"github.com/gogpu/reshadefx/spirv"
)

// CompileCmd compiles one or more effects.
type CompileCmd struct {
	CompileFlags `embed:""`

	Files       []string `arg:"" type:"existingfile" help:"Effect files to compile."`
	Output      string   `short:"o" help:"Output file for a single input, - for stdout."`
	OutputDir   string   `help:"Directory for output files (default: next to each input)." type:"path"`
	Parallel    int      `short:"j" help:"Number of concurrent compilations (default: config or CPU count)."`
	Entry       string   `short:"e" help:"Write a source that compiles only this entry point (GLSL, HLSL)."`
	Descriptors bool     `help:"Also write the module descriptors as YAML."`
}

func (cmd *CompileCmd) Run(ctx *Context) error {
	if cmd.Output != "" && len(cmd.Files) > 1 {
		return ErrOutputNeedsOneFile
	}

	opts, cfg, err := cmd.options(ctx)
	if err != nil {
		return err
	}
	parallel := cmd.Parallel
	if parallel == 0 {
		parallel = cfg.Parallel
	}
	outputDir := cmd.OutputDir
	if outputDir == "" {
		outputDir = cfg.OutputDir
	}

	ctx.stepf("Compiling %d effect(s) to %s", len(cmd.Files), opts.Target)
	compiler := registry.NewCompiler(opts, parallel)
	results, err := compiler.CompileAll(context.Background(), cmd.Files)
	if err != nil {
		return err
	}

	failed := 0
	for _, res := range results {
		if res.Err != nil {
			ctx.failf("%s: %v", res.Path, res.Err)
			failed++
			continue
		}
		ctx.report(res.Result.Diagnostics)
		if !res.Result.Success {
			ctx.failf("%s: compilation failed", res.Path)
			failed++
			continue
		}
		if err := cmd.write(ctx, res.Path, res.Result, outputDir); err != nil {
			return err
		}
	}
	ctx.report(compiler.Registry.Diagnostics())

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d effect(s)", ErrCompilationFailed, failed, len(results))
	}
	return nil
}

// outputBytes returns the file content for r, restricted to one entry point
// when --entry is set.
func (cmd *CompileCmd) outputBytes(r *reshadefx.Result) ([]byte, error) {
	if r.Target == reshadefx.TargetSPIRV {
		if cmd.Entry != "" {
			if _, err := r.FindEntryPoint(cmd.Entry); err != nil {
				return nil, err
			}
		}
		return spirv.Bytes(r.Module.SPIRV), nil
	}
	if cmd.Entry != "" {
		code, err := r.StageSource(cmd.Entry)
		if err != nil {
			return nil, err
		}
		return []byte(code), nil
	}
	return []byte(r.Module.Code), nil
}

func (cmd *CompileCmd) write(ctx *Context, input string, r *reshadefx.Result, outputDir string) error {
	data, err := cmd.outputBytes(r)
	if err != nil {
		return fmt.Errorf("%s: %w", input, err)
	}

	stem := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	if cmd.Entry != "" {
		stem += "." + cmd.Entry
	}
	dir := outputDir
	if dir == "" {
		dir = filepath.Dir(input)
	}

	path := cmd.Output
	if path == "" {
		path = filepath.Join(dir, stem+r.Target.Extension())
	}

	if path == "-" {
		if _, err := ctx.Stdout.Write(data); err != nil {
			return err
		}
	} else {
		if err := writeFile(path, data); err != nil {
			return err
		}
		ctx.stepf("Wrote %s (%d bytes)", path, len(data))
		ctx.donef("Compiled %s -> %s", input, path)
	}

	if cmd.Descriptors {
		yamlData, err := marshalDescriptors(&r.Module)
		if err != nil {
			return err
		}
		descPath := filepath.Join(dir, stem+".yaml")
		if err := writeFile(descPath, yamlData); err != nil {
			return err
		}
		ctx.stepf("Wrote %s (%d bytes)", descPath, len(yamlData))
	}
	return nil
}

// writeFile writes data to path, creating the directory if necessary.
func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
