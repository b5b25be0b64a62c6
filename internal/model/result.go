package model

import "time"

// QueryResult is the outcome of one orchestrated query. It is always
// well-formed: a failed generation still produces a result with Success
// set to false and a readable Answer, never an error escaping the
// orchestrator.
type QueryResult struct {
	Answer  string        `json:"answer"`
	Matches []ScoredMatch `json:"matches"`
	Elapsed time.Duration `json:"elapsed"`
	Success bool          `json:"success"`
	Error   string        `json:"error,omitempty"`
}

func (r *QueryResult) RetrievedCount() int {
	return len(r.Matches)
}
