package txcontext

import (
	"context"
	"fmt"
	"time"

	"cellgate-hq/pricelock/pkg/telemetry/logging"
	"cellgate-hq/pricelock/pkg/validation"
)

// Validator runs one validation. *validation.Controller implements it.
type Validator interface {
	Validate(ctx context.Context, host validation.Host) *validation.Verdict
}

// CaseResult is the outcome of one fixture case.
type CaseResult struct {
	Name     string              `json:"name"`
	Passed   bool                `json:"passed"`
	Failures []string            `json:"failures,omitempty"`
	Verdict  *validation.Verdict `json:"-"`

	Accepted bool   `json:"accepted"`
	Kind     string `json:"kind,omitempty"`
	ExitCode int    `json:"exit_code"`
	Price    int64  `json:"price"`
	Error    string `json:"error,omitempty"`
}

// Report summarizes a suite run.
type Report struct {
	Suite    string        `json:"suite"`
	Path     string        `json:"path"`
	Results  []*CaseResult `json:"results"`
	Passed   int           `json:"passed"`
	Failed   int           `json:"failed"`
	Duration time.Duration `json:"duration_ns"`
}

// OK reports whether every case passed.
func (r *Report) OK() bool {
	return r.Failed == 0
}

// RunOption configures Suite.Run.
type RunOption func(*runOptions)

type runOptions struct {
	progress func(done, total int)
}

// WithProgress calls fn after each case with the number of cases finished.
func WithProgress(fn func(done, total int)) RunOption {
	return func(o *runOptions) {
		o.progress = fn
	}
}

// Run validates every case in order and checks the verdicts against the
// expectations. It stops early only if ctx is cancelled. Each validation
// runs with the suite and case names in its logging context.
func (s *Suite) Run(ctx context.Context, v Validator, opts ...RunOption) (*Report, error) {
	o := runOptions{progress: func(int, int) {}}
	for _, opt := range opts {
		opt(&o)
	}

	start := time.Now()
	report := &Report{Suite: s.Name, Path: s.path}
	ctx = logging.WithSuite(ctx, s.Name)

	for i := range s.Cases {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		c := &s.Cases[i]
		verdict := v.Validate(logging.WithCase(ctx, c.Name), c.Transaction())
		res := c.check(verdict)
		report.Results = append(report.Results, res)
		if res.Passed {
			report.Passed++
		} else {
			report.Failed++
		}
		o.progress(i+1, len(s.Cases))
	}

	report.Duration = time.Since(start)
	return report, nil
}

func (c *Case) check(v *validation.Verdict) *CaseResult {
	res := &CaseResult{
		Name:     c.Name,
		Verdict:  v,
		Accepted: v.Accepted(),
		Kind:     string(v.Kind()),
		ExitCode: v.ExitCode(),
		Price:    v.Price,
	}
	if v.Err != nil {
		res.Error = v.Err.Error()
	}

	got := VerdictReject
	if v.Accepted() {
		got = VerdictAccept
	}
	if got != c.Expect.Verdict {
		detail := ""
		if v.Err != nil {
			detail = fmt.Sprintf(" (%v)", v.Err)
		}
		res.Failures = append(res.Failures, fmt.Sprintf("verdict: got %s, want %s%s", got, c.Expect.Verdict, detail))
	}
	if c.Expect.Kind != "" && string(v.Kind()) != c.Expect.Kind {
		res.Failures = append(res.Failures, fmt.Sprintf("kind: got %q, want %q", v.Kind(), c.Expect.Kind))
	}
	if c.Expect.Price != nil && v.Price != *c.Expect.Price {
		res.Failures = append(res.Failures, fmt.Sprintf("price: got %d, want %d", v.Price, *c.Expect.Price))
	}

	res.Passed = len(res.Failures) == 0
	return res
}
