package domain

import "time"

// Kind names a resource kind managed by the server.
type Kind string

const (
	KindImage     Kind = "image"
	KindContainer Kind = "container"
	KindNetwork   Kind = "network"
	KindVolume    Kind = "volume"
	KindBuilder   Kind = "builder"
)

// SystemStatus summarizes the running server.
type SystemStatus struct {
	Version        string
	Commit         string
	StartedAt      time.Time
	Uptime         time.Duration
	Runtime        string
	RuntimeVersion string
	Persistence    string
	Counts         map[Kind]int
	Builder        BuilderState
}

// LogEntry is one structured line from the server log.
type LogEntry struct {
	Time    time.Time
	Level   string
	Message string
	Raw     string
}

// DNSDomain is a configured local DNS domain.
type DNSDomain struct {
	Name    string
	Default bool
}
