package solve

import (
	"context"
	"fmt"

	"github.com/san-kum/qdynsim/internal/dynamo"
	"golang.org/x/sync/errgroup"
)

// Problem is one independent initial value problem.
type Problem struct {
	Name    string
	RHS     any
	TSpan   [2]float64
	Y0      dynamo.State
	Options Options
}

// SolveBatch solves problems concurrently, at most limit at a time (no limit
// when limit <= 0). Results are returned in problem order. The first failure
// cancels the remaining problems.
func SolveBatch(ctx context.Context, problems []Problem, limit int) ([]*dynamo.Result, error) {
	results := make([]*dynamo.Result, len(problems))

	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, p := range problems {
		g.Go(func() error {
			res, err := SolveODE(ctx, p.RHS, p.TSpan, p.Y0, p.Options)
			if err != nil {
				name := p.Name
				if name == "" {
					name = fmt.Sprintf("#%d", i)
				}
				return fmt.Errorf("problem %s: %w", name, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
