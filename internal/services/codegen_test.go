package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChecker struct {
	taken map[string]bool
	err   error
}

func (f *fakeChecker) Exists(_ context.Context, code string) (bool, error) {
	return f.taken[code], f.err
}

func sequence(codes ...string) (func(int) string, *int) {
	calls := 0
	return func(int) string {
		code := codes[calls%len(codes)]
		calls++
		return code
	}, &calls
}

func TestCodeGenerator_Claim(t *testing.T) {
	ctx := context.Background()

	t.Run("First candidate accepted", func(t *testing.T) {
		g := NewCodeGenerator(&fakeChecker{})
		code, err := g.Claim(ctx, func(context.Context, string) (bool, error) { return true, nil })
		require.NoError(t, err)
		assert.Len(t, code, DefaultCodeLength)
	})

	t.Run("Collision Retry", func(t *testing.T) {
		g := NewCodeGenerator(&fakeChecker{})
		var calls *int
		g.random, calls = sequence("COLLIDE", "UNIQUE1")

		code, err := g.Claim(ctx, func(_ context.Context, code string) (bool, error) {
			return code != "COLLIDE", nil
		})
		require.NoError(t, err)
		assert.Equal(t, "UNIQUE1", code)
		assert.Equal(t, 2, *calls)
	})

	t.Run("Exhausted after bounded attempts", func(t *testing.T) {
		g := NewCodeGenerator(&fakeChecker{})
		var calls *int
		g.random, calls = sequence("SAMEONE")

		_, err := g.Claim(ctx, func(context.Context, string) (bool, error) { return false, nil })
		assert.ErrorIs(t, err, ErrGenerationExhausted)
		assert.Equal(t, MaxCodeAttempts, *calls)
	})

	t.Run("Claim error aborts", func(t *testing.T) {
		g := NewCodeGenerator(&fakeChecker{})
		boom := errors.New("db down")
		attempts := 0
		_, err := g.Claim(ctx, func(context.Context, string) (bool, error) {
			attempts++
			return false, boom
		})
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 1, attempts)
	})

	t.Run("Cancelled context", func(t *testing.T) {
		g := NewCodeGenerator(&fakeChecker{})
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := g.Claim(cctx, func(context.Context, string) (bool, error) { return true, nil })
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestCodeGenerator_GenerateUniqueCode(t *testing.T) {
	ctx := context.Background()

	t.Run("Skips taken codes", func(t *testing.T) {
		g := NewCodeGenerator(&fakeChecker{taken: map[string]bool{"TAKEN01": true}})
		g.random, _ = sequence("TAKEN01", "FREE001")

		code, err := g.GenerateUniqueCode(ctx)
		require.NoError(t, err)
		assert.Equal(t, "FREE001", code)
	})

	t.Run("All taken", func(t *testing.T) {
		g := NewCodeGenerator(&fakeChecker{taken: map[string]bool{"TAKEN01": true}})
		g.random, _ = sequence("TAKEN01")

		_, err := g.GenerateUniqueCode(ctx)
		assert.ErrorIs(t, err, ErrGenerationExhausted)
	})

	t.Run("Store error", func(t *testing.T) {
		g := NewCodeGenerator(&fakeChecker{err: errors.New("timeout")})
		_, err := g.GenerateUniqueCode(ctx)
		assert.Error(t, err)
		assert.NotErrorIs(t, err, ErrGenerationExhausted)
	})
}
