package domain

import "time"

// BuilderState is the lifecycle state of the build engine.
type BuilderState string

const (
	BuilderStateStopped  BuilderState = "stopped"
	BuilderStateStarting BuilderState = "starting"
	BuilderStateRunning  BuilderState = "running"
	BuilderStateStopping BuilderState = "stopping"
)

// Builder is the singleton build engine instance.
type Builder struct {
	Name        string
	Image       string
	State       BuilderState
	ContainerID string
	LastError   string
	UpdatedAt   time.Time
}
