package harness

// Result is the outcome of running a suite.
type Result struct {
	// Suite is the suite name.
	Suite string `json:"suite"`

	// Pass is true when every vector passed.
	Pass bool `json:"pass"`

	// Vectors holds per-vector outcomes in suite order.
	Vectors []VectorResult `json:"vectors"`
}

// VectorResult is the outcome of one vector.
type VectorResult struct {
	Name    string `json:"name"`
	Profile string `json:"profile"`
	Pass    bool   `json:"pass"`

	// Canonical is the produced text when canonicalization succeeded.
	Canonical string `json:"canonical,omitempty"`

	// ErrorKind and ErrorPath describe the produced failure, if any.
	ErrorKind string `json:"error_kind,omitempty"`
	ErrorPath string `json:"error_path,omitempty"`

	// Errors lists failed checks. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult(suite string) *Result {
	return &Result{Suite: suite, Pass: true, Vectors: []VectorResult{}}
}

// Add appends a vector outcome and folds its status into the suite status.
func (r *Result) Add(v VectorResult) {
	r.Vectors = append(r.Vectors, v)
	if !v.Pass {
		r.Pass = false
	}
}

// Failed returns the vectors that did not pass.
func (r *Result) Failed() []VectorResult {
	var out []VectorResult
	for _, v := range r.Vectors {
		if !v.Pass {
			out = append(out, v)
		}
	}
	return out
}

// AddError records a failed check and marks the vector as failed.
func (v *VectorResult) AddError(err string) {
	v.Errors = append(v.Errors, err)
	v.Pass = false
}
