package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroup(t *testing.T) {
	t.Run("success with no errors", func(t *testing.T) {
		g, ctx := newGroup(context.Background())

		executed := make([]bool, 3)
		for i := range 3 {
			g.Go("stage", func(_ context.Context) error {
				executed[i] = true
				return nil
			})
		}

		require.NoError(t, g.Wait())
		assert.Equal(t, []bool{true, true, true}, executed)
		assert.Error(t, ctx.Err())
	})

	t.Run("first error cancels the other stages", func(t *testing.T) {
		g, ctx := newGroup(context.Background())

		boom := errors.New("boom")

		g.Go("blocked", func(ctx context.Context) error {
			<-ctx.Done()
			return context.Cause(ctx)
		})

		g.Go("failing", func(_ context.Context) error {
			return boom
		})

		err := g.Wait()
		assert.ErrorIs(t, err, boom)
		assert.EqualError(t, err, "failing: boom")
		assert.ErrorIs(t, context.Cause(ctx), boom)
	})

	t.Run("parent cancellation", func(t *testing.T) {
		parent, cancel := context.WithCancel(context.Background())
		g, _ := newGroup(parent)

		g.Go("waiting", func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		})

		cancel()

		assert.ErrorIs(t, g.Wait(), context.Canceled)
	})
}
