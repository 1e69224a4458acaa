package dto

import "time"

// Builder represents the builder singleton.
type Builder struct {
	Name        string    `json:"name"`
	Image       string    `json:"image"`
	State       string    `json:"state"`
	ContainerID string    `json:"container_id,omitempty"`
	LastError   string    `json:"last_error,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// StatusResponse represents system status information.
type StatusResponse struct {
	Version        string         `json:"version"`
	Commit         string         `json:"commit"`
	StartedAt      time.Time      `json:"started_at"`
	Uptime         string         `json:"uptime"`
	Runtime        string         `json:"runtime"`
	RuntimeVersion string         `json:"runtime_version"`
	Persistence    string         `json:"persistence"`
	Counts         map[string]int `json:"counts"`
	Builder        string         `json:"builder"`
}

// LogEntry is one server log line.
type LogEntry struct {
	Time    time.Time `json:"time"`
	Level   string    `json:"level,omitempty"`
	Message string    `json:"message"`
}

// SystemLogsResponse carries server log entries.
type SystemLogsResponse struct {
	Entries []LogEntry `json:"entries"`
}

// DNSDomain is a configured DNS domain.
type DNSDomain struct {
	Name    string `json:"name"`
	Default bool   `json:"default"`
}

// DNSResponse lists the configured DNS domains.
type DNSResponse struct {
	Domains []DNSDomain `json:"domains"`
}

// RegistryResponse names the default registry.
type RegistryResponse struct {
	Registry string `json:"registry"`
}

// MessageResponse acknowledges an operation without a payload.
type MessageResponse struct {
	Message string `json:"message"`
}
