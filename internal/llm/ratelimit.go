package llm

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/abdul-hamid-achik/ask/internal/config"
	"github.com/abdul-hamid-achik/ask/internal/logger"
)

// estimateTokens is a rough request-size estimate for rate limiting:
// ~4 characters per token plus a 20% safety buffer.
func estimateTokens(text string) int {
	return int(float64(len(text)/4) * 1.2)
}

// RateLimitedClient wraps a Generator with a client-side token bucket
// so bursts of turns do not trip the provider's rate limits.
type RateLimitedClient struct {
	inner   Generator
	limiter *rate.Limiter
}

// NewRateLimitedClient creates a rate-limited wrapper around a client.
// A missing or zero tokens_per_minute falls back to the default budget
// rather than a zero-rate limiter that would block forever.
func NewRateLimitedClient(inner Generator, cfg *config.RateLimitConfig) *RateLimitedClient {
	tokensPerMinute := cfg.TokensPerMinute
	if tokensPerMinute <= 0 {
		tokensPerMinute = 30000
	}

	tokensPerSecond := float64(tokensPerMinute) / 60.0
	burst := tokensPerMinute / 6
	if burst < 1000 {
		burst = 1000
	}

	return &RateLimitedClient{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(tokensPerSecond), burst),
	}
}

// Generate waits for budget in the token bucket, then delegates.
func (r *RateLimitedClient) Generate(ctx context.Context, prompt, contextBlock string) (*Reply, error) {
	tokens := estimateTokens(prompt) + estimateTokens(contextBlock)
	if tokens > r.limiter.Burst() {
		tokens = r.limiter.Burst()
	}

	if r.limiter.Tokens() < float64(tokens) {
		logger.Debug("rate limit: waiting for %d tokens", tokens)
	}
	if err := r.limiter.WaitN(ctx, tokens); err != nil {
		return nil, err
	}

	return r.inner.Generate(ctx, prompt, contextBlock)
}

// SetModel delegates to the wrapped client
func (r *RateLimitedClient) SetModel(model string) {
	r.inner.SetModel(model)
}

// GetModel delegates to the wrapped client
func (r *RateLimitedClient) GetModel() string {
	return r.inner.GetModel()
}
