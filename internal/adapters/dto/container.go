package dto

import "time"

// Port maps a container port onto the host.
type Port struct {
	ContainerPort int    `json:"container_port"`
	HostPort      int    `json:"host_port,omitempty"`
	Protocol      string `json:"protocol,omitempty"`
}

// Mount attaches a volume at a path.
type Mount struct {
	Volume string `json:"volume"`
	Path   string `json:"path"`
}

// Container represents a container in API responses.
type Container struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Image      string            `json:"image"`
	State      string            `json:"state"`
	Command    []string          `json:"command,omitempty"`
	Env        []string          `json:"env,omitempty"`
	Ports      []Port            `json:"ports,omitempty"`
	Mounts     []Mount           `json:"mounts,omitempty"`
	Network    string            `json:"network"`
	Labels     map[string]string `json:"labels,omitempty"`
	ExitCode   int               `json:"exit_code"`
	CreatedAt  time.Time         `json:"created_at"`
	StartedAt  *time.Time        `json:"started_at,omitempty"`
	FinishedAt *time.Time        `json:"finished_at,omitempty"`
}

// ContainersResponse represents a list of containers.
type ContainersResponse struct {
	Containers []Container `json:"containers"`
}

// CreateContainerRequest holds container_create and container_run arguments.
type CreateContainerRequest struct {
	Image   string            `json:"image"`
	Name    string            `json:"name,omitempty"`
	Command []string          `json:"command,omitempty"`
	Env     []string          `json:"env,omitempty"`
	Ports   []Port            `json:"ports,omitempty"`
	Mounts  []Mount           `json:"mounts,omitempty"`
	Network string            `json:"network,omitempty"`
	Labels  map[string]string `json:"labels,omitempty"`
}

// ContainerLogsResponse carries container output lines.
type ContainerLogsResponse struct {
	ID    string   `json:"id"`
	Lines []string `json:"lines"`
}

// ExecResponse carries the result of a command run in a container.
type ExecResponse struct {
	ExitCode int    `json:"exit_code"`
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr"`
}
