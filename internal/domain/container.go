// Package domain contains pure business types without external dependencies.
// These types are used throughout the application and have no tags or framework dependencies.
package domain

import "time"

// ContainerState is the lifecycle state of a managed container.
type ContainerState string

const (
	ContainerStateCreated ContainerState = "created"
	ContainerStateRunning ContainerState = "running"
	ContainerStateStopped ContainerState = "stopped"
	ContainerStateKilled  ContainerState = "killed"
	ContainerStateDeleted ContainerState = "deleted"
)

// Deletable reports whether a container in this state may be deleted.
func (s ContainerState) Deletable() bool {
	switch s {
	case ContainerStateCreated, ContainerStateStopped, ContainerStateKilled:
		return true
	}
	return false
}

// Startable reports whether a container in this state may be started.
func (s ContainerState) Startable() bool {
	return s == ContainerStateCreated || s == ContainerStateStopped
}

// Container represents a container tracked by the resource store.
type Container struct {
	ID         string
	Name       string
	Image      string
	State      ContainerState
	Command    []string
	Env        []string
	Ports      []PortMapping
	Mounts     []Mount
	Network    string
	Labels     map[string]string
	ExitCode   int
	CreatedAt  time.Time
	StartedAt  time.Time
	FinishedAt time.Time
}

// Clone returns a deep copy so callers never share slices with the store.
func (c *Container) Clone() *Container {
	if c == nil {
		return nil
	}
	cp := *c
	cp.Command = append([]string(nil), c.Command...)
	cp.Env = append([]string(nil), c.Env...)
	cp.Ports = append([]PortMapping(nil), c.Ports...)
	cp.Mounts = append([]Mount(nil), c.Mounts...)
	if c.Labels != nil {
		cp.Labels = make(map[string]string, len(c.Labels))
		for k, v := range c.Labels {
			cp.Labels[k] = v
		}
	}
	return &cp
}

// UsesVolume reports whether the container mounts the named volume.
func (c *Container) UsesVolume(name string) bool {
	for _, m := range c.Mounts {
		if m.Volume == name {
			return true
		}
	}
	return false
}

// PortMapping publishes a container port on the host.
type PortMapping struct {
	ContainerPort int
	HostPort      int
	Protocol      string
}

// Mount attaches a named volume at a path inside the container.
type Mount struct {
	Volume string
	Path   string
}

// ContainerConfig holds configuration for creating a container.
type ContainerConfig struct {
	Image   string
	Name    string
	Command []string
	Env     []string
	Ports   []PortMapping
	Mounts  []Mount
	Network string
	Labels  map[string]string
}

// RuntimeContainer is the runtime's view of a container process.
type RuntimeContainer struct {
	ID       string
	Name     string
	Image    string
	Running  bool
	ExitCode int
}

// ExecResult holds the result of executing a command in a container.
type ExecResult struct {
	ExitCode int
	Stdout   []byte
	Stderr   []byte
}
