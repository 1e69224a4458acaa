package domain

import "time"

// Image is a pulled image reference. The reference is the store key.
type Image struct {
	Reference string
	Digest    string
	// Size is reported in bytes.
	Size      int64
	CreatedAt time.Time
	PulledAt  time.Time
}

// ImageInfo is what the runtime reports after a pull or inspect.
type ImageInfo struct {
	Digest    string
	Size      int64
	CreatedAt time.Time
}

// PruneReport lists the image references reclaimed by a prune.
type PruneReport struct {
	Reclaimed []string
	// SpaceReclaimed is reported in bytes.
	SpaceReclaimed int64
}
