package dto

import "time"

// Image represents a pulled image in API responses.
type Image struct {
	Reference string    `json:"reference"`
	Digest    string    `json:"digest,omitempty"`
	Size      int64     `json:"size"`
	SizeHuman string    `json:"size_human"`
	CreatedAt time.Time `json:"created_at"`
	PulledAt  time.Time `json:"pulled_at"`
}

// ImagesResponse represents a list of images.
type ImagesResponse struct {
	Images []Image `json:"images"`
}

// PruneResponse lists the references image_prune removed.
type PruneResponse struct {
	Reclaimed      []string `json:"reclaimed"`
	SpaceReclaimed int64    `json:"space_reclaimed"`
}
