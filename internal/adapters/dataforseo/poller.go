package dataforseo

import (
	"context"
	"time"

	perr "seogate/internal/platform/errors"
	"seogate/internal/platform/logger"
)

const (
	// DefaultPollBudget is the number of status checks before giving up on a task
	DefaultPollBudget = 6
	// DefaultPollInterval is the wait before each status check
	DefaultPollInterval = 10 * time.Second
)

// ErrPollTimeout means the task never reached a terminal state within the poll budget
var ErrPollTimeout = perr.New(perr.ErrorCodeUnavailable, "dataforseo task did not finish within the poll budget")

// PollFunc checks a task once; done reports a terminal state
type PollFunc[T any] func(ctx context.Context) (v T, done bool, err error)

// Poller drives PollFunc calls: at most Budget checks, each preceded by Interval
// of waiting and bounded by Interval itself. Ceiling caps the whole poll.
type Poller struct {
	Budget   int
	Interval time.Duration

	log   logger.Logger
	sleep func(context.Context, time.Duration) error
}

// NewPoller returns a Poller, substituting defaults for non-positive values
func NewPoller(budget int, interval time.Duration) *Poller {
	if budget <= 0 {
		budget = DefaultPollBudget
	}
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{
		Budget:   budget,
		Interval: interval,
		log:      *logger.Named("dataforseo.poller"),
		sleep:    sleepCtx,
	}
}

// Ceiling is the longest one task can be polled: Budget intervals of waiting
// plus one interval for the final check
func (p *Poller) Ceiling() time.Duration {
	return time.Duration(p.Budget+1) * p.Interval
}

// Poll waits Interval, checks, and repeats until fn reports done or the budget runs out.
// A check error is retried while budget remains; the last one is returned otherwise.
// Hitting Ceiling yields ErrPollTimeout, cancellation of ctx its own error.
func Poll[T any](ctx context.Context, p *Poller, taskID string, fn PollFunc[T]) (T, error) {
	var zero T
	pctx, cancel := context.WithTimeout(ctx, p.Ceiling())
	defer cancel()

	var lastErr error
	for i := 0; i < p.Budget; i++ {
		if err := p.sleep(pctx, p.Interval); err != nil {
			if ctx.Err() != nil {
				return zero, ctx.Err()
			}
			return zero, ErrPollTimeout
		}
		cctx, ccancel := context.WithTimeout(pctx, p.Interval)
		v, done, err := fn(cctx)
		ccancel()
		if err != nil {
			switch {
			case ctx.Err() != nil, IsSystemic(err):
				return zero, err
			case pctx.Err() != nil:
				p.log.Debug().Err(err).Str("task_id", taskID).Dur("ceiling", p.Ceiling()).Msg("task poll ceiling reached")
				return zero, ErrPollTimeout
			case IsCancelled(err):
				p.log.Debug().Str("task_id", taskID).Int("poll", i+1).Msg("task check exceeded the poll interval")
			default:
				p.log.Debug().Err(err).Str("task_id", taskID).Int("poll", i+1).Msg("task poll failed")
			}
			lastErr = err
			continue
		}
		lastErr = nil
		if done {
			return v, nil
		}
		p.log.Debug().Str("task_id", taskID).Int("poll", i+1).Msg("task not finished")
	}
	if lastErr != nil {
		return zero, lastErr
	}
	return zero, ErrPollTimeout
}
