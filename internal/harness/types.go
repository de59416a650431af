package harness

import (
	"github.com/roach88/framescript/internal/audioplan"
	"github.com/roach88/framescript/internal/compose"
	"github.com/roach88/framescript/internal/timeline"
)

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every probe and assertion matched.
	Pass bool `json:"pass"`

	// Errors contains one message per failed check.
	Errors []string `json:"errors,omitempty"`

	// Report is what the mounted scene produced. Zero when mounting failed.
	Report Report `json:"report"`
}

// Report captures a mounted scene for golden comparison.
type Report struct {
	Duration int                 `json:"duration"`
	Clips    []timeline.ClipNode `json:"clips"`
	Frames   []compose.Frame     `json:"frames"`
	Plan     audioplan.Plan      `json:"plan"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
