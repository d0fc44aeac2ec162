package session

import (
	"context"
	"net/http"
	"time"

	"github.com/edmundmok/mealpy/core"
)

// ReferenceCity is the fixed city whose menu serves as the liveness
// probe for a restored session.
const ReferenceCity = "San Francisco"

// Service is the slice of the MealPal client the session layer needs.
type Service interface {
	Login(ctx context.Context, email, password string) error
	SchedulesByCityName(ctx context.Context, cityName string) ([]core.ScheduleEntry, error)
	Jar() http.CookieJar
}

// CredentialSource supplies account credentials on demand. The session
// layer never prompts; interactive acquisition lives in the CLI shell.
type CredentialSource func(ctx context.Context) (core.Credentials, error)

// Options tune the validation backoff and the login retry budget.
type Options struct {
	ProbeAttempts int
	BaseDelay     time.Duration
	LoginAttempts int
	Sleep         func(time.Duration)
	City          string
	Restored      bool
}

// Option mutates Options.
type Option func(*Options)

// WithProbeAttempts sets how many times the liveness probe is retried.
func WithProbeAttempts(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.ProbeAttempts = n
		}
	}
}

// WithBaseDelay sets the first backoff delay; it doubles each attempt.
func WithBaseDelay(d time.Duration) Option {
	return func(o *Options) {
		if d > 0 {
			o.BaseDelay = d
		}
	}
}

// WithLoginAttempts bounds how often bad credentials may be re-entered.
func WithLoginAttempts(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.LoginAttempts = n
		}
	}
}

// WithSleep replaces the sleep function, for tests.
func WithSleep(sleep func(time.Duration)) Option {
	return func(o *Options) {
		if sleep != nil {
			o.Sleep = sleep
		}
	}
}

// WithReferenceCity overrides the probe city.
func WithReferenceCity(name string) Option {
	return func(o *Options) {
		if name != "" {
			o.City = name
		}
	}
}

// WithRestoredSession tells Establish whether Store.Load actually
// restored cookies. With no restored session there is nothing worth
// probing and login happens immediately.
func WithRestoredSession(restored bool) Option {
	return func(o *Options) { o.Restored = restored }
}

func defaultOptions() Options {
	return Options{
		ProbeAttempts: 5,
		BaseDelay:     time.Second,
		LoginAttempts: 3,
		Sleep:         time.Sleep,
		City:          ReferenceCity,
		Restored:      true,
	}
}

// Validate probes a restored session with one read-only menu fetch,
// retrying with exponential backoff to absorb transient network blips.
// The remote cookie lifetime is unknown, so a false verdict either way
// is possible; this is a heuristic, not a proof of liveness.
func Validate(ctx context.Context, svc Service, opts ...Option) bool {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	delay := o.BaseDelay
	for attempt := 0; attempt < o.ProbeAttempts; attempt++ {
		if ctx.Err() != nil {
			return false
		}
		if _, err := svc.SchedulesByCityName(ctx, o.City); err == nil {
			return true
		}
		o.Sleep(delay)
		delay *= 2
	}
	return false
}

// Establish produces a logged-in session: restored cookies are probed
// first, and only when they are dead are credentials pulled from source
// and a fresh login performed. When WithRestoredSession(false) says no
// cookies were loaded, the probe loop is skipped entirely and login
// happens straight away. The new cookies are saved to store
// on success. Bad credentials are surfaced back through source up to the
// configured attempt budget.
func Establish(ctx context.Context, svc Service, store *Store, source CredentialSource, opts ...Option) error {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if o.Restored && Validate(ctx, svc, opts...) {
		return nil
	}

	var lastErr error
	for attempt := 0; attempt < o.LoginAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return core.NewError(core.ErrCanceled, "session: canceled", core.WithWrapped(err))
		}
		creds, err := source(ctx)
		if err != nil {
			return err
		}
		err = svc.Login(ctx, creds.Email, creds.Password)
		if err == nil {
			if store != nil {
				if err := store.Save(svc.Jar()); err != nil {
					return err
				}
			}
			return nil
		}
		if !core.IsAuthentication(err) {
			return err
		}
		lastErr = err
	}
	return lastErr
}
