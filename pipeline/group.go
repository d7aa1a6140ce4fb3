package pipeline

import (
	"context"
	"fmt"
	"sync"
)

// group runs pipeline stages and cancels all of them on the first error.
type group struct {
	ctx     context.Context
	cancel  context.CancelCauseFunc
	wg      sync.WaitGroup
	errOnce sync.Once
	err     error
}

func newGroup(ctx context.Context) (*group, context.Context) {
	ctx, cancel := context.WithCancelCause(ctx)
	return &group{ctx: ctx, cancel: cancel}, ctx
}

// Go starts a stage. Its error is reported with the stage name.
func (g *group) Go(stage string, f func(ctx context.Context) error) {
	g.wg.Add(1)

	go func() {
		defer g.wg.Done()

		if err := f(g.ctx); err != nil {
			g.errOnce.Do(func() {
				g.err = fmt.Errorf("%s: %w", stage, err)
				g.cancel(g.err)
			})
		}
	}()
}

// Wait blocks until every stage returns and reports the first error.
func (g *group) Wait() error {
	g.wg.Wait()
	g.cancel(nil)
	return g.err
}
