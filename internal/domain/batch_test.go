package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOutcomeFor(t *testing.T) {
	assert.Equal(t, OutcomeOK, OutcomeFor(nil))
	assert.Equal(t, OutcomeNotFound, OutcomeFor(ErrVolumeNotFound))
	assert.Equal(t, OutcomePreconditionFailed, OutcomeFor(ErrProtectedResource))
	assert.Equal(t, OutcomeTimeout, OutcomeFor(ErrTimeout))
	assert.Equal(t, OutcomeError, OutcomeFor(errors.New("boom")))
}

func TestBatchResult_Counts(t *testing.T) {
	result := BatchResult{Entries: []BatchEntry{
		{Target: "a", Outcome: OutcomeOK},
		{Target: "b", Outcome: OutcomeNotFound},
		{Target: "a", Outcome: OutcomeOK},
	}}

	assert.Equal(t, 2, result.Succeeded())
	assert.Equal(t, 1, result.Failed())
}

func TestTargetSet(t *testing.T) {
	single := Single("x")
	many := Many("x")

	assert.Equal(t, single.Targets(), many.Targets())
	assert.False(t, single.IsAll())
	assert.True(t, All().IsAll())
	assert.Empty(t, All().Targets())

	dup := Many("a", "b", "a")
	assert.Equal(t, []string{"a", "b", "a"}, dup.Targets())

	// Targets returns a copy.
	ids := dup.Targets()
	ids[0] = "z"
	assert.Equal(t, "a", dup.Targets()[0])
}
