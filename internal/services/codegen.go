package services

import (
	"context"

	"dynlink/pkg/utils"
)

const (
	DefaultCodeLength = 7
	MaxCodeAttempts   = 5
)

// ClaimFunc tries to take ownership of code. It returns false when the code
// already belongs to another link.
type ClaimFunc func(ctx context.Context, code string) (bool, error)

type codeChecker interface {
	Exists(ctx context.Context, code string) (bool, error)
}

// CodeGenerator produces short codes with a bounded number of attempts.
type CodeGenerator struct {
	store    codeChecker
	length   int
	attempts int
	random   func(int) string
}

func NewCodeGenerator(store codeChecker) *CodeGenerator {
	return &CodeGenerator{
		store:    store,
		length:   DefaultCodeLength,
		attempts: MaxCodeAttempts,
		random:   utils.GenerateShortCode,
	}
}

// Claim draws candidates and hands each to claim until one is accepted.
// Uniqueness is decided by claim (an atomic insert), not by a prior read.
func (g *CodeGenerator) Claim(ctx context.Context, claim ClaimFunc) (string, error) {
	for i := 0; i < g.attempts; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		code := g.random(g.length)
		ok, err := claim(ctx, code)
		if err != nil {
			return "", err
		}
		if ok {
			return code, nil
		}
	}
	return "", ErrGenerationExhausted
}

// GenerateUniqueCode returns a code that was free at the time of the check.
// Nothing reserves it, so a concurrent creator may still take it; callers that
// persist should use Claim instead.
func (g *CodeGenerator) GenerateUniqueCode(ctx context.Context) (string, error) {
	return g.Claim(ctx, func(ctx context.Context, code string) (bool, error) {
		exists, err := g.store.Exists(ctx, code)
		if err != nil {
			return false, err
		}
		return !exists, nil
	})
}
