package dto

import "time"

// Network represents a network in API responses.
type Network struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Driver    string            `json:"driver"`
	Subnet    string            `json:"subnet,omitempty"`
	Labels    map[string]string `json:"labels,omitempty"`
	Protected bool              `json:"protected"`
	CreatedAt time.Time         `json:"created_at"`
}

// NetworksResponse represents a list of networks.
type NetworksResponse struct {
	Networks []Network `json:"networks"`
}

// Volume represents a volume in API responses.
type Volume struct {
	Name      string            `json:"name"`
	Size      int64             `json:"size"`
	SizeHuman string            `json:"size_human,omitempty"`
	Path      string            `json:"path,omitempty"`
	Labels    map[string]string `json:"labels,omitempty"`
	Protected bool              `json:"protected"`
	CreatedAt time.Time         `json:"created_at"`
}

// VolumesResponse represents a list of volumes.
type VolumesResponse struct {
	Volumes []Volume `json:"volumes"`
}
