package domain

// Label keys used by acms for runtime container metadata.
const (
	LabelManaged = "acms.managed"
	LabelName    = "acms.name"
	LabelBuilder = "acms.builder"
)
