package domain

import "time"

// Network is a container network. System default networks are protected.
type Network struct {
	Name      string
	ID        string
	Driver    string
	Subnet    string
	Labels    map[string]string
	Protected bool
	CreatedAt time.Time
}

// NetworkConfig holds configuration for creating a network.
type NetworkConfig struct {
	Name   string
	Driver string
	Subnet string
	Labels map[string]string
}

// Volume is a named storage volume.
type Volume struct {
	Name string
	// Size is the requested capacity in bytes, 0 when unbounded.
	Size      int64
	Path      string
	Labels    map[string]string
	Protected bool
	CreatedAt time.Time
}

// VolumeConfig holds configuration for creating a volume.
type VolumeConfig struct {
	Name   string
	Size   int64
	Labels map[string]string
}
