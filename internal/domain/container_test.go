package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContainerState_Predicates(t *testing.T) {
	tests := []struct {
		state     ContainerState
		deletable bool
		startable bool
	}{
		{ContainerStateCreated, true, true},
		{ContainerStateRunning, false, false},
		{ContainerStateStopped, true, true},
		{ContainerStateKilled, true, false},
		{ContainerStateDeleted, false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			assert.Equal(t, tt.deletable, tt.state.Deletable())
			assert.Equal(t, tt.startable, tt.state.Startable())
		})
	}
}

func TestContainer_Clone(t *testing.T) {
	orig := &Container{
		ID:     "abc",
		Env:    []string{"A=1"},
		Mounts: []Mount{{Volume: "data", Path: "/data"}},
		Labels: map[string]string{"k": "v"},
	}

	cp := orig.Clone()
	cp.Env[0] = "A=2"
	cp.Labels["k"] = "changed"

	assert.Equal(t, "A=1", orig.Env[0])
	assert.Equal(t, "v", orig.Labels["k"])
	assert.True(t, cp.UsesVolume("data"))
	assert.False(t, cp.UsesVolume("other"))
	assert.Nil(t, (*Container)(nil).Clone())
}
