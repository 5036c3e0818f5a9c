package generator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	zlog "github.com/rs/zerolog/log"

	"bananaledger/internal/logger"
	"bananaledger/internal/port"
)

// circuitState tracks rate-limit backoff for a single generator.
type circuitState struct {
	mu      sync.RWMutex
	resetAt time.Time // zero value = closed (healthy)
}

func (c *circuitState) isOpenWithReset(now time.Time) (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.resetAt, !c.resetAt.IsZero() && now.Before(c.resetAt)
}

func (c *circuitState) open(resetAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetAt = resetAt
}

// FallbackGenerator tries generators in order, skipping those with open circuits.
// It implements port.LedgerGenerator.
type FallbackGenerator struct {
	generators []port.LedgerGenerator
	circuits   []*circuitState
	names      []string
}

// NewFallbackGenerator creates a FallbackGenerator from an ordered list of generators and their names.
func NewFallbackGenerator(generators []port.LedgerGenerator, names []string) *FallbackGenerator {
	circuits := make([]*circuitState, len(generators))
	for i := range circuits {
		circuits[i] = &circuitState{}
	}
	return &FallbackGenerator{
		generators: generators,
		circuits:   circuits,
		names:      names,
	}
}

func (f *FallbackGenerator) Generate(ctx context.Context, input port.GenerateInput) (*port.GenerateOutput, error) {
	return f.try(ctx, "Generate", func(g port.LedgerGenerator) (*port.GenerateOutput, error) {
		return g.Generate(ctx, input)
	})
}

func (f *FallbackGenerator) Repair(ctx context.Context, input port.RepairInput) (*port.GenerateOutput, error) {
	return f.try(ctx, "Repair", func(g port.LedgerGenerator) (*port.GenerateOutput, error) {
		return g.Repair(ctx, input)
	})
}

func (f *FallbackGenerator) try(
	ctx context.Context, op string, call func(port.LedgerGenerator) (*port.GenerateOutput, error),
) (*port.GenerateOutput, error) {
	log := logger.FromContext(ctx, zlog.Logger)
	now := time.Now()
	var lastErr error
	allRateLimited := true
	var earliestReset time.Time

	for i, g := range f.generators {
		if resetAt, open := f.circuits[i].isOpenWithReset(now); open {
			log.Info().Str("provider", f.names[i]).Time("reset_at", resetAt).
				Msgf("generator.FallbackGenerator.%s: skipping provider, circuit open", op)
			if earliestReset.IsZero() || resetAt.Before(earliestReset) {
				earliestReset = resetAt
			}
			continue
		}

		out, err := call(g)
		if err == nil {
			return out, nil
		}

		log.Warn().Err(err).Str("provider", f.names[i]).
			Msgf("generator.FallbackGenerator.%s: provider failed", op)
		lastErr = err

		// A cancelled or expired caller context fails every provider the same way.
		if ctx.Err() != nil {
			return nil, err
		}

		var rlErr *RateLimitError
		if errors.As(err, &rlErr) {
			resetAt := now.Add(rlErr.RetryAfter)
			f.circuits[i].open(resetAt)
			if earliestReset.IsZero() || resetAt.Before(earliestReset) {
				earliestReset = resetAt
			}
		} else {
			allRateLimited = false
		}
	}

	if lastErr == nil || allRateLimited {
		retryAfter := time.Until(earliestReset)
		if retryAfter < time.Second {
			retryAfter = time.Second
		}
		return nil, NewRateLimitError("all", fmt.Errorf("all generators rate limited"), int(retryAfter.Seconds()))
	}

	return nil, fmt.Errorf("all generators failed: %w", lastErr)
}
