package dispatch

// Result is the aggregate verdict over all outcomes of one invocation.
type Result struct {
	Outcomes   []Outcome `json:"outcomes"`
	HasSuccess bool      `json:"has_success"`
	Succeeded  int       `json:"succeeded"`
	Failed     int       `json:"failed"`
}

// Aggregate folds outcomes into a Result. HasSuccess is the OR of every
// outcome's Success flag; the result does not depend on outcome order.
func Aggregate(outcomes []Outcome) Result {
	res := Result{Outcomes: outcomes}
	for _, o := range outcomes {
		if o.Success {
			res.Succeeded++
		} else {
			res.Failed++
		}
	}
	res.HasSuccess = res.Succeeded > 0
	return res
}
