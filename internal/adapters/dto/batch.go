package dto

// BatchEntry is the outcome for one requested target.
type BatchEntry struct {
	Target  string `json:"target"`
	Outcome string `json:"outcome"`
	Detail  string `json:"detail,omitempty"`
}

// BatchResponse is returned by every batch tool, whatever the outcomes.
type BatchResponse struct {
	Results   []BatchEntry `json:"results"`
	Succeeded int          `json:"succeeded"`
	Failed    int          `json:"failed"`
}
