package verify

// Report aggregates verdicts over all references of one citing document.
// Results stay in original reference order.
type Report struct {
	Verified     int      `json:"verified"`
	Unverified   int      `json:"unverified"`
	Inconclusive int      `json:"inconclusive"`
	MissingRefs  int      `json:"missingReferences"`
	Results      []Result `json:"results"`
}

// NewReport returns an empty report.
func NewReport() *Report {
	return &Report{}
}

// Add appends one result and updates the tallies. A negative confidence
// signals inconclusive regardless of any other field; a verified flag wins
// next (manual verification of a missing reference counts as verified); a
// never-found source document counts as missing; the rest are unverified.
func (r *Report) Add(result Result) {
	r.Results = append(r.Results, result)
	switch {
	case result.Confidence < 0:
		r.Inconclusive++
	case result.IsVerified:
		r.Verified++
	case !result.ReferenceFound:
		r.MissingRefs++
	default:
		r.Unverified++
	}
}

// Total returns the number of references judged.
func (r *Report) Total() int {
	return len(r.Results)
}
