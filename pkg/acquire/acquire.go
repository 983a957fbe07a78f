// Package acquire locates the host container, retrying on a fixed delay
// while the host is still rendering it.
package acquire

import (
	"context"
	"time"

	"github.com/arthur-debert/hidefolder/pkg/errors"
	"github.com/arthur-debert/hidefolder/pkg/logging"
	"github.com/arthur-debert/hidefolder/pkg/tree"
	"github.com/rs/zerolog"
)

// Policy bounds the acquisition loop
type Policy struct {
	MaxAttempts int           `koanf:"max_attempts"` // Total attempts, the first one included
	Delay       time.Duration `koanf:"delay"`        // Wait between attempts
}

// DefaultPolicy tries once and retries 20 times, 100ms apart
func DefaultPolicy() Policy {
	return Policy{MaxAttempts: 21, Delay: 100 * time.Millisecond}
}

// Query looks up the container once
type Query func() (tree.Container, bool)

// HostQuery returns a Query resolving selector on host
func HostQuery(host tree.Host, selector string) Query {
	return func() (tree.Container, bool) {
		return host.Container(selector)
	}
}

// Acquire runs query until it finds a container, the attempts run out, or
// ctx is done. Running out yields a CONTAINER_NOT_FOUND error; cancellation
// returns ctx.Err() and schedules no further attempt.
func Acquire(ctx context.Context, policy Policy, query Query) (tree.Container, error) {
	return AcquireWithLogger(ctx, policy, query, logging.GetLogger("acquire"))
}

// AcquireWithLogger is Acquire with an explicit logger
func AcquireWithLogger(ctx context.Context, policy Policy, query Query, logger zerolog.Logger) (tree.Container, error) {
	attempts := policy.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if c, ok := query(); ok && c != nil {
			logger.Debug().
				Int("attempt", attempt).
				Str("container", c.Key()).
				Msg("Container acquired")
			return c, nil
		}

		if attempt >= attempts {
			break
		}

		logger.Trace().
			Int("attempt", attempt).
			Dur("delay", policy.Delay).
			Msg("Container not found, retrying")

		if timer == nil {
			timer = time.NewTimer(policy.Delay)
		} else {
			timer.Reset(policy.Delay)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	return nil, errors.Newf(errors.ErrContainerNotFound,
		"container not found after %d attempts", attempts).
		WithDetail("attempts", attempts)
}
