package auth_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clusterboard/dashboard-api/internal/model"
	"github.com/clusterboard/dashboard-api/internal/service/auth"
)

func failedVerify(context.Context) (bool, error)     { return false, nil }
func successfulVerify(context.Context) (bool, error) { return true, nil }

func TestEvaluateAttempt_LockoutDisabled(t *testing.T) {
	users := newFakeUserRepo()
	users.add("alice", "secret", model.PermissionMap{"pool": {"read"}})
	attempts := newFakeAttemptRepo()
	policy := auth.NewLockoutPolicy(users, attempts, 0, zerolog.Nop())

	for i := 0; i < 100; i++ {
		decision, err := policy.EvaluateAttempt(context.Background(), "alice", failedVerify)
		require.NoError(t, err)
		assert.Equal(t, auth.DecisionFailed, decision)
	}

	assert.True(t, users.enabled("alice"), "lockout must never trigger when disabled")
}

func TestEvaluateAttempt_LocksAfterThreshold(t *testing.T) {
	users := newFakeUserRepo()
	users.add("bob", "secret", model.PermissionMap{"pool": {"read"}})
	attempts := newFakeAttemptRepo()
	policy := auth.NewLockoutPolicy(users, attempts, 3, zerolog.Nop())

	for i := 0; i < 3; i++ {
		decision, err := policy.EvaluateAttempt(context.Background(), "bob", failedVerify)
		require.NoError(t, err)
		assert.Equal(t, auth.DecisionFailed, decision)
	}
	assert.Equal(t, 3, attempts.count("bob"))
	assert.True(t, users.enabled("bob"))

	verifyCalled := false
	decision, err := policy.EvaluateAttempt(context.Background(), "bob",
		func(context.Context) (bool, error) {
			verifyCalled = true
			return true, nil
		})
	require.NoError(t, err)
	assert.Equal(t, auth.DecisionLockedOut, decision)
	assert.False(t, verifyCalled, "credentials must not be checked once locked")
	assert.False(t, users.enabled("bob"))
}

func TestEvaluateAttempt_SuccessResetsCounter(t *testing.T) {
	users := newFakeUserRepo()
	users.add("carol", "secret", model.PermissionMap{"pool": {"read"}})
	attempts := newFakeAttemptRepo()
	policy := auth.NewLockoutPolicy(users, attempts, 5, zerolog.Nop())

	for i := 0; i < 4; i++ {
		_, err := policy.EvaluateAttempt(context.Background(), "carol", failedVerify)
		require.NoError(t, err)
	}
	assert.Equal(t, 4, attempts.count("carol"))

	decision, err := policy.EvaluateAttempt(context.Background(), "carol", successfulVerify)
	require.NoError(t, err)
	assert.Equal(t, auth.DecisionSuccess, decision)
	assert.Equal(t, 0, attempts.count("carol"))
}

func TestEvaluateAttempt_UnknownUsername(t *testing.T) {
	users := newFakeUserRepo()
	attempts := newFakeAttemptRepo()
	policy := auth.NewLockoutPolicy(users, attempts, 3, zerolog.Nop())

	for i := 0; i < 3; i++ {
		decision, err := policy.EvaluateAttempt(context.Background(), "ghost", failedVerify)
		require.NoError(t, err)
		assert.Equal(t, auth.DecisionFailed, decision)
	}

	// The locked branch finds no record to disable; that must not fault.
	decision, err := policy.EvaluateAttempt(context.Background(), "ghost", failedVerify)
	require.NoError(t, err)
	assert.Equal(t, auth.DecisionLockedOut, decision)
}
