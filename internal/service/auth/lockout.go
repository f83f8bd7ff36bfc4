package auth

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/clusterboard/dashboard-api/internal/repository"
)

// Decision is the outcome of a single login attempt as judged by the lockout
// policy.
type Decision int

const (
	DecisionFailed Decision = iota
	DecisionSuccess
	DecisionLockedOut
)

// LockoutPolicy disables an account after too many consecutive failed logins.
// maxAttempts of 0 disables the lock check entirely.
type LockoutPolicy struct {
	users       repository.UserRepository
	attempts    repository.AttemptRepository
	maxAttempts int
	logger      zerolog.Logger
}

func NewLockoutPolicy(users repository.UserRepository, attempts repository.AttemptRepository,
	maxAttempts int, logger zerolog.Logger) *LockoutPolicy {
	return &LockoutPolicy{
		users:       users,
		attempts:    attempts,
		maxAttempts: maxAttempts,
		logger:      logger,
	}
}

// EvaluateAttempt applies the lockout policy to one login attempt. verify is
// only invoked when the account is not already locked, so a locked account
// leaks nothing about password correctness. All counter and enabled-flag
// writes are flushed before returning.
func (p *LockoutPolicy) EvaluateAttempt(ctx context.Context, username string,
	verify func(context.Context) (bool, error)) (Decision, error) {

	if p.maxAttempts > 0 {
		count, err := p.attempts.Get(ctx, username)
		if err != nil {
			return DecisionFailed, err
		}

		if count >= p.maxAttempts {
			// Disable is a no-op for usernames without a record; unknown
			// accounts must behave exactly like locked ones.
			if err := p.users.SetEnabled(ctx, username, false); err != nil &&
				!errors.Is(err, repository.ErrUserNotFound) {
				return DecisionFailed, err
			}
			p.logger.Warn().
				Str("username", username).
				Int("max_attempts", p.maxAttempts).
				Msg("maximum number of unsuccessful log-in attempts reached, account disabled until an administrator re-enables it")
			return DecisionLockedOut, nil
		}
	}

	ok, err := verify(ctx)
	if err != nil {
		return DecisionFailed, err
	}

	if ok {
		if err := p.attempts.Reset(ctx, username); err != nil {
			return DecisionFailed, err
		}
		return DecisionSuccess, nil
	}

	if _, err := p.attempts.Increment(ctx, username); err != nil {
		return DecisionFailed, err
	}
	return DecisionFailed, nil
}
