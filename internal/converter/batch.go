package converter

import (
	"context"
	"path/filepath"

	"golang.org/x/sync/errgroup"
)

// ConvertAll converts every path and returns one Outcome per path, in input
// order. A failing file never stops the others. Up to the configured number
// of jobs run at once; the batch falls back to one at a time when an output
// of one input is itself another input, or when two inputs write the same
// output, so the result matches a sequential run.
func (c *Converter) ConvertAll(ctx context.Context, paths []string) []Outcome {
	outcomes := make([]Outcome, len(paths))

	jobs := c.config.Jobs
	if jobs < 1 || c.overlapping(paths) {
		jobs = 1
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				outcomes[i] = Outcome{Input: path, Err: err}
				return nil
			}
			outcomes[i] = c.ConvertFile(path)
			return nil
		})
	}
	_ = g.Wait()
	return outcomes
}

// overlapping reports whether converting one path would write a file that is
// also listed as an input, or that another path writes too.
func (c *Converter) overlapping(paths []string) bool {
	inputs := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		inputs[filepath.Clean(p)] = struct{}{}
	}
	outputs := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		route, ok, err := c.Route(p)
		if err != nil || !ok {
			continue
		}
		output := filepath.Clean(route.Output)
		if _, clash := inputs[output]; clash {
			c.debugf("%q is both an input and an output, converting sequentially", route.Output)
			return true
		}
		if _, clash := outputs[output]; clash {
			c.debugf("%q is written by more than one input, converting sequentially", route.Output)
			return true
		}
		outputs[output] = struct{}{}
	}
	return false
}
