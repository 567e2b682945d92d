package registry

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/gogpu/reshadefx"
)

// FileResult is the outcome for one input path. Err is set when the file
// could not be read; compile errors are in Result.Diagnostics.
type FileResult struct {
	Path   string
	Result *reshadefx.Result
	Err    error
}

// Compiler compiles effect files concurrently and merges every successful
// module into its Registry.
type Compiler struct {
	Options reshadefx.Options

	// Parallel bounds the number of concurrent compilations. Zero uses
	// GOMAXPROCS.
	Parallel int

	Registry *Registry
}

// NewCompiler returns a compiler with an empty registry.
func NewCompiler(opts reshadefx.Options, parallel int) *Compiler {
	return &Compiler{Options: opts, Parallel: parallel, Registry: New()}
}

// CompileAll compiles paths and returns one result per path in input order.
// A file that fails to read or compile does not stop the others. The
// returned error is non-nil only if ctx was cancelled before every file was
// compiled.
func (c *Compiler) CompileAll(ctx context.Context, paths []string) ([]FileResult, error) {
	results := make([]FileResult, len(paths))
	for i, path := range paths {
		results[i].Path = path
	}
	if c.Registry == nil {
		c.Registry = New()
	}

	limit := c.Parallel
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, path := range paths {
		i, path := i, path
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r, err := reshadefx.CompileFile(path, c.Options)
			if err != nil {
				results[i].Err = err
				return nil
			}
			results[i].Result = r
			if r.Success {
				c.Registry.Merge(path, &r.Module)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, ctx.Err()
}
