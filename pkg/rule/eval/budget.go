package eval

import (
	"fmt"

	"cellgate-hq/pricelock/pkg/rule/ast"
	rerrors "cellgate-hq/pricelock/pkg/rule/errors"
)

// Limits holds the resource limits for a single evaluation.
type Limits struct {
	// MaxSteps is the number of nodes evaluation may visit.
	MaxSteps int

	// MaxDepth is the deepest nesting of blocks and if expressions.
	MaxDepth int
}

// DefaultLimits returns the limits used when none are configured.
func DefaultLimits() Limits {
	return Limits{
		MaxSteps: 10_000,
		MaxDepth: 64,
	}
}

// Stats reports the resources consumed by an evaluation.
type Stats struct {
	Steps    int
	MaxDepth int
}

// tracker charges steps and nesting against Limits.
type tracker struct {
	limits Limits
	steps  int
	depth  int
	peak   int
}

func (t *tracker) step(loc ast.Location) error {
	return t.charge(1, loc)
}

func (t *tracker) charge(n int, loc ast.Location) error {
	t.steps += n
	if t.limits.MaxSteps > 0 && t.steps > t.limits.MaxSteps {
		return rerrors.Newf(rerrors.ErrorTypeBudget, rerrors.CodeBudget, loc,
			"step budget of %d exceeded", t.limits.MaxSteps)
	}
	return nil
}

func (t *tracker) enter(loc ast.Location) error {
	t.depth++
	if t.depth > t.peak {
		t.peak = t.depth
	}
	if t.limits.MaxDepth > 0 && t.depth > t.limits.MaxDepth {
		return rerrors.Newf(rerrors.ErrorTypeBudget, rerrors.CodeDepth, loc,
			"nesting depth of %d exceeded", t.limits.MaxDepth)
	}
	return nil
}

func (t *tracker) leave() {
	t.depth--
}

func (t *tracker) stats() Stats {
	return Stats{Steps: t.steps, MaxDepth: t.peak}
}

func (s Stats) String() string {
	return fmt.Sprintf("steps=%d depth=%d", s.Steps, s.MaxDepth)
}
