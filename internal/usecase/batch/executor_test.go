package batch

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bnema/zerowrap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/acms/internal/domain"
)

func testContext() context.Context {
	return zerowrap.WithCtx(context.Background(), zerowrap.Default())
}

func TestExecutor_Run_KeepsRequestOrder(t *testing.T) {
	exec := NewExecutor(4)
	targets := []string{"a", "b", "c", "d", "e", "f"}

	// Earlier targets finish last.
	result := exec.Run(testContext(), "test", targets, func(_ context.Context, target string) error {
		time.Sleep(time.Duration(len(targets)-int(target[0]-'a')) * 5 * time.Millisecond)
		return nil
	})

	require.Len(t, result.Entries, len(targets))
	for i, entry := range result.Entries {
		assert.Equal(t, targets[i], entry.Target)
		assert.Equal(t, domain.OutcomeOK, entry.Outcome)
	}
}

func TestExecutor_Run_ClassifiesEveryTarget(t *testing.T) {
	exec := NewExecutor(2)
	errs := map[string]error{
		"ok":      nil,
		"missing": fmt.Errorf("lookup: %w", domain.ErrContainerNotFound),
		"running": domain.ErrContainerRunning,
		"slow":    context.DeadlineExceeded,
		"broken":  errors.New("disk on fire"),
	}
	targets := []string{"ok", "missing", "running", "slow", "broken"}

	result := exec.Run(testContext(), "test", targets, func(_ context.Context, target string) error {
		return errs[target]
	})

	want := []domain.Outcome{
		domain.OutcomeOK,
		domain.OutcomeNotFound,
		domain.OutcomePreconditionFailed,
		domain.OutcomeTimeout,
		domain.OutcomeError,
	}
	for i, entry := range result.Entries {
		assert.Equal(t, want[i], entry.Outcome, entry.Target)
	}
	assert.Equal(t, 1, result.Succeeded())
	assert.Equal(t, 4, result.Failed())
	assert.Empty(t, result.Entries[0].Detail)
	assert.Contains(t, result.Entries[4].Detail, "disk on fire")
}

func TestExecutor_Run_DuplicatesAreAttemptedIndividually(t *testing.T) {
	exec := NewExecutor(1)
	seen := map[string]bool{}

	result := exec.Run(testContext(), "test", []string{"x", "x"}, func(_ context.Context, target string) error {
		if seen[target] {
			return domain.ErrContainerNotFound
		}
		seen[target] = true
		return nil
	})

	require.Len(t, result.Entries, 2)
	assert.Equal(t, domain.OutcomeOK, result.Entries[0].Outcome)
	assert.Equal(t, domain.OutcomeNotFound, result.Entries[1].Outcome)
}

func TestExecutor_Run_RecoversPanics(t *testing.T) {
	exec := NewExecutor(2)

	result := exec.Run(testContext(), "test", []string{"a", "boom", "c"}, func(_ context.Context, target string) error {
		if target == "boom" {
			panic("unexpected nil")
		}
		return nil
	})

	assert.Equal(t, domain.OutcomeOK, result.Entries[0].Outcome)
	assert.Equal(t, domain.OutcomeError, result.Entries[1].Outcome)
	assert.Contains(t, result.Entries[1].Detail, "unexpected nil")
	assert.Equal(t, domain.OutcomeOK, result.Entries[2].Outcome)
}

func TestExecutor_Run_RespectsLimit(t *testing.T) {
	exec := NewExecutor(3)
	var current, peak atomic.Int32

	exec.Run(testContext(), "test", make([]string, 20), func(context.Context, string) error {
		n := current.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		current.Add(-1)
		return nil
	})

	assert.LessOrEqual(t, peak.Load(), int32(3))
}

func TestExecutor_Run_Empty(t *testing.T) {
	result := NewExecutor(0).Run(testContext(), "test", nil, func(context.Context, string) error {
		t.Fatal("op must not run")
		return nil
	})

	assert.Empty(t, result.Entries)
}
