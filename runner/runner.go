// Package runner drives one reservation attempt to completion: resolve
// the requested restaurant or meal to a schedule entry, submit the
// reservation, and retry within a bounded budget.
package runner

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/edmundmok/mealpy/core"
)

// Client is the slice of the MealPal client the runner needs.
type Client interface {
	ScheduleByRestaurant(ctx context.Context, restaurant, cityName string) (core.ScheduleEntry, error)
	ScheduleByMeal(ctx context.Context, meal, cityName string) (core.ScheduleEntry, error)
	Reserve(ctx context.Context, scheduleID, pickupTime string) (int, error)
}

// Request names what to reserve. Exactly one of Restaurant or Meal must
// be set; City and PickupTime are required.
type Request struct {
	Restaurant string
	Meal       string
	PickupTime string
	City       string
}

// OutcomeKind tags a terminal runner state.
type OutcomeKind int

const (
	// Success: the service accepted the reservation with HTTP 200.
	Success OutcomeKind = iota
	// Failed: a terminal error occurred before the budget ran out.
	Failed
	// Exhausted: the attempt budget ran out without a 200.
	Exhausted
)

func (k OutcomeKind) String() string {
	switch k {
	case Success:
		return "success"
	case Failed:
		return "failed"
	case Exhausted:
		return "exhausted"
	default:
		return fmt.Sprintf("OutcomeKind(%d)", int(k))
	}
}

// Outcome is the terminal result of one Run.
type Outcome struct {
	Kind     OutcomeKind
	Entry    core.ScheduleEntry
	Attempts int
	Err      error
}

// Runner repeats resolve-then-reserve until success, a terminal error,
// or attempt exhaustion. Each retry re-resolves the schedule because the
// menu can change under us between attempts.
type Runner struct {
	client          Client
	maxAttempts     int
	retryDelay      time.Duration
	resolveAttempts int
	resolveDelay    time.Duration
	sleep           func(time.Duration)
}

// Option configures the runner.
type Option func(*Runner)

// WithMaxAttempts bounds the total resolve-and-reserve iterations.
func WithMaxAttempts(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.maxAttempts = n
		}
	}
}

// WithRetryDelay sets the pause between reservation attempts.
func WithRetryDelay(d time.Duration) Option {
	return func(r *Runner) {
		if d > 0 {
			r.retryDelay = d
		}
	}
}

// WithResolveAttempts bounds how often a schedule miss is re-resolved
// before it is treated as terminal. A menu not yet published looks
// identical to a restaurant that will never be listed; the bound is what
// keeps the second case from retrying forever.
func WithResolveAttempts(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.resolveAttempts = n
		}
	}
}

// WithResolveDelay sets the pause before re-resolving a missed schedule.
func WithResolveDelay(d time.Duration) Option {
	return func(r *Runner) {
		if d > 0 {
			r.resolveDelay = d
		}
	}
}

// WithSleep replaces the sleep function, for tests.
func WithSleep(sleep func(time.Duration)) Option {
	return func(r *Runner) {
		if sleep != nil {
			r.sleep = sleep
		}
	}
}

// New creates a runner with the default budgets.
func New(client Client, opts ...Option) *Runner {
	r := &Runner{
		client:          client,
		maxAttempts:     100,
		retryDelay:      50 * time.Millisecond,
		resolveAttempts: 5,
		resolveDelay:    time.Second,
		sleep:           time.Sleep,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes the reservation flow to a terminal outcome. The returned
// error is non-nil only for an invalid request; everything that happens
// against the service is reported through the Outcome.
func (r *Runner) Run(ctx context.Context, req Request) (Outcome, error) {
	if (req.Restaurant == "") == (req.Meal == "") {
		return Outcome{}, errors.New("runner: exactly one of Restaurant or Meal must be set")
	}
	if req.City == "" || req.PickupTime == "" {
		return Outcome{}, errors.New("runner: City and PickupTime are required")
	}

	resolveMisses := 0
	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return Outcome{Kind: Failed, Attempts: attempt, Err: core.NewError(core.ErrCanceled, "runner: canceled", core.WithWrapped(err))}, nil
		}

		entry, err := r.resolve(ctx, req)
		if err != nil {
			if core.IsNotFound(err) {
				resolveMisses++
				if resolveMisses >= r.resolveAttempts {
					return Outcome{Kind: Failed, Attempts: attempt, Err: err}, nil
				}
				r.pause(attempt, r.resolveDelay)
				continue
			}
			if core.IsTransient(err) {
				r.pause(attempt, r.retryDelay)
				continue
			}
			return Outcome{Kind: Failed, Attempts: attempt, Err: err}, nil
		}
		// A successful resolve means the menu currently lists the
		// request; only consecutive misses should count against the
		// re-resolution bound.
		resolveMisses = 0

		status, err := r.client.Reserve(ctx, entry.ID, req.PickupTime)
		if err != nil {
			if core.IsTransient(err) {
				r.pause(attempt, r.retryDelay)
				continue
			}
			return Outcome{Kind: Failed, Attempts: attempt, Err: err}, nil
		}
		if status == http.StatusOK {
			return Outcome{Kind: Success, Entry: entry, Attempts: attempt}, nil
		}
		r.pause(attempt, r.retryDelay)
	}
	return Outcome{
		Kind:     Exhausted,
		Attempts: r.maxAttempts,
		Err:      fmt.Errorf("runner: no success after %d attempts", r.maxAttempts),
	}, nil
}

// pause sleeps between attempts but not after the last one, which has
// no retry left to wait for.
func (r *Runner) pause(attempt int, d time.Duration) {
	if attempt < r.maxAttempts {
		r.sleep(d)
	}
}

func (r *Runner) resolve(ctx context.Context, req Request) (core.ScheduleEntry, error) {
	if req.Meal != "" {
		return r.client.ScheduleByMeal(ctx, req.Meal, req.City)
	}
	return r.client.ScheduleByRestaurant(ctx, req.Restaurant, req.City)
}

// ExecuteReservation is the one-shot entry point an external scheduler
// invokes once per day: reserve at restaurant in city for the pickup
// time window.
func ExecuteReservation(ctx context.Context, client Client, restaurant, pickupTime, city string, opts ...Option) (Outcome, error) {
	return New(client, opts...).Run(ctx, Request{
		Restaurant: restaurant,
		PickupTime: pickupTime,
		City:       city,
	})
}
