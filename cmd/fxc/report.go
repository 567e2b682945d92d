package main

import (
	"fmt"

	"github.com/fatih/color"

	"github.com/gogpu/reshadefx/fx"
)

var (
	progress = color.New(color.FgBlue)
	success  = color.New(color.FgGreen)
	failure  = color.New(color.FgRed, color.Bold)
)

// stepf prints a verbose progress line.
func (ctx *Context) stepf(format string, args ...any) {
	if ctx.Verbose {
		progress.Fprintf(ctx.Stderr, format+"\n", args...)
	}
}

// donef prints a success line unless --quiet is set.
func (ctx *Context) donef(format string, args ...any) {
	if !ctx.Quiet {
		success.Fprintf(ctx.Stdout, format+"\n", args...)
	}
}

// failf prints a failure line. Failures are shown even with --quiet.
func (ctx *Context) failf(format string, args ...any) {
	failure.Fprintf(ctx.Stderr, format+"\n", args...)
}

// report prints diagnostics to stderr. --quiet drops warnings.
func (ctx *Context) report(dl fx.Diagnostics) {
	if ctx.Quiet {
		dl = dl.Errors()
	}
	if len(dl) > 0 {
		fmt.Fprint(ctx.Stderr, dl.FormatColored())
	}
}
