// Package validation is the trust boundary between extracted data and persistence.
// Every validator is pure and total: malformed input yields nil or an empty
// collection, never an error or panic. Decisions are recorded in a Report so the
// caller chooses how to surface them.
package validation

// Decision is the verdict for a single field value.
type Decision struct {
	Field    string `json:"field"`
	Value    string `json:"value"`
	Accepted bool   `json:"accepted"`
	Reason   string `json:"reason,omitempty"`
}

// Report collects decisions. A nil *Report discards them.
type Report struct {
	Decisions []Decision `json:"decisions"`
}

// NewReport returns an empty report.
func NewReport() *Report {
	return &Report{}
}

func (r *Report) accept(field, value string) {
	if r == nil {
		return
	}
	r.Decisions = append(r.Decisions, Decision{Field: field, Value: value, Accepted: true})
}

func (r *Report) reject(field, value, reason string) {
	if r == nil {
		return
	}
	r.Decisions = append(r.Decisions, Decision{Field: field, Value: value, Reason: reason})
}

// Rejections returns the rejected decisions in order.
func (r *Report) Rejections() []Decision {
	if r == nil {
		return nil
	}
	var out []Decision
	for _, d := range r.Decisions {
		if !d.Accepted {
			out = append(out, d)
		}
	}
	return out
}

// Accepted counts accepted decisions.
func (r *Report) Accepted() int {
	if r == nil {
		return 0
	}
	n := 0
	for _, d := range r.Decisions {
		if d.Accepted {
			n++
		}
	}
	return n
}

// Merge appends other's decisions to r.
func (r *Report) Merge(other *Report) {
	if r == nil || other == nil {
		return
	}
	r.Decisions = append(r.Decisions, other.Decisions...)
}
