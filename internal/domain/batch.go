package domain

// Outcome is the per-target result of a batch operation.
type Outcome string

const (
	OutcomeOK                 Outcome = "ok"
	OutcomeNotFound           Outcome = "not_found"
	OutcomePreconditionFailed Outcome = "precondition_failed"
	OutcomeTimeout            Outcome = "timeout"
	OutcomeError              Outcome = "error"
)

// OutcomeFor classifies an operation error into a batch outcome.
func OutcomeFor(err error) Outcome {
	switch KindOf(err) {
	case "":
		return OutcomeOK
	case KindNotFound:
		return OutcomeNotFound
	case KindPreconditionFailed:
		return OutcomePreconditionFailed
	case KindTimeout:
		return OutcomeTimeout
	default:
		return OutcomeError
	}
}

// BatchEntry is the outcome for one requested target.
type BatchEntry struct {
	Target  string
	Outcome Outcome
	Detail  string
}

// BatchResult holds one entry per requested target, in request order.
type BatchResult struct {
	Entries []BatchEntry
}

// Succeeded counts entries with an ok outcome.
func (r BatchResult) Succeeded() int {
	n := 0
	for _, e := range r.Entries {
		if e.Outcome == OutcomeOK {
			n++
		}
	}
	return n
}

// Failed counts entries that did not succeed.
func (r BatchResult) Failed() int {
	return len(r.Entries) - r.Succeeded()
}
