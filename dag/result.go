package dag

import "time"

// Status of a node within a run.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped"
)

// Result holds the outcome of a successful run.
type Result struct {
	RunID string
	// Outputs maps every terminal node id to its output.
	Outputs map[string]any
	// Order is the topological order the run followed.
	Order       []string
	NodeResults map[string]NodeResult
	Duration    time.Duration
}

// Output returns the output produced by any node of the run.
func (r *Result) Output(id string) (any, bool) {
	nr, ok := r.NodeResults[id]
	if !ok || nr.Status != StatusCompleted {
		return nil, false
	}
	return nr.Output, true
}

// NodeResult holds the outcome of a single node execution.
type NodeResult struct {
	ID       string
	Status   Status
	Inputs   int
	Duration time.Duration
	Output   any
	Error    error
}
