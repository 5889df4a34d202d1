package rule

import (
	"fmt"

	"cellgate-hq/pricelock/pkg/rule/ast"
	rerrors "cellgate-hq/pricelock/pkg/rule/errors"
	"cellgate-hq/pricelock/pkg/rule/eval"
	"cellgate-hq/pricelock/pkg/rule/parser"
	"cellgate-hq/pricelock/pkg/rule/validator"
)

// IdentifierBinding is the only name bound when a rule is evaluated.
const IdentifierBinding = "account_chars"

// DefaultSourceName is used in locations when a rule has no file name.
const DefaultSourceName = "rule"

// Limits bounds the work done to compile and evaluate one rule.
type Limits struct {
	MaxSteps       int
	MaxDepth       int
	MaxSourceBytes int
}

// DefaultLimits returns the conservative limits used when none are configured.
func DefaultLimits() Limits {
	return Limits{
		MaxSteps:       10_000,
		MaxDepth:       64,
		MaxSourceBytes: 16384,
	}
}

// Validate checks that every limit is positive.
func (l Limits) Validate() error {
	if l.MaxSteps <= 0 {
		return fmt.Errorf("max steps must be positive, got %d", l.MaxSteps)
	}
	if l.MaxDepth <= 0 {
		return fmt.Errorf("max depth must be positive, got %d", l.MaxDepth)
	}
	if l.MaxSourceBytes <= 0 {
		return fmt.Errorf("max source bytes must be positive, got %d", l.MaxSourceBytes)
	}
	return nil
}

func (l Limits) parserLimits() parser.Limits {
	return parser.Limits{MaxSourceBytes: l.MaxSourceBytes, MaxDepth: l.MaxDepth}
}

func (l Limits) evalLimits() eval.Limits {
	return eval.Limits{MaxSteps: l.MaxSteps, MaxDepth: l.MaxDepth}
}

// Scope holds the single identifier binding a rule is evaluated against.
// Nothing else is reachable from rule text.
type Scope struct {
	identifier string
}

// NewScope creates the evaluation scope for an identifier.
func NewScope(identifier string) Scope {
	return Scope{identifier: identifier}
}

// Identifier returns the bound identifier text.
func (s Scope) Identifier() string {
	return s.identifier
}

func (s Scope) env() *eval.Env {
	env := eval.NewEnv(nil)
	env.Set(IdentifierBinding, eval.NewString(s.identifier))
	return env
}

// Compile parses rule text into a program.
// Failures are *errors.Error values of type syntax.
func Compile(source string, limits Limits) (*ast.Program, error) {
	return CompileNamed(source, DefaultSourceName, limits)
}

// CompileNamed is Compile with a source name recorded in error locations.
func CompileNamed(source, name string, limits Limits) (*ast.Program, error) {
	program, err := parser.Parse(source, name, limits.parserLimits())
	if err != nil {
		return nil, withContext(err, source)
	}
	return program, nil
}

// Evaluate runs a compiled program against scope and returns its integer result.
// Failures are *errors.Error values of type evaluation or budget. A program
// whose value is not an int fails with code E_RESULT.
func Evaluate(program *ast.Program, scope Scope, limits Limits) (int64, eval.Stats, error) {
	val, stats, err := eval.Eval(program, scope.env(), limits.evalLimits())
	if err != nil {
		return 0, stats, err
	}

	price, ok := eval.AsInt(val)
	if !ok {
		loc := ast.Location{}
		if program != nil && len(program.Stmts) > 0 {
			loc = program.Stmts[len(program.Stmts)-1].Loc()
		}
		return 0, stats, rerrors.Newf(rerrors.ErrorTypeEvaluation, rerrors.CodeResult, loc,
			"rule must produce an int, produced %s", eval.Describe(val))
	}
	return price, stats, nil
}

// Run compiles and evaluates source in one call. Evaluation errors carry
// source context lines.
func Run(source string, scope Scope, limits Limits) (int64, eval.Stats, error) {
	program, err := Compile(source, limits)
	if err != nil {
		return 0, eval.Stats{}, err
	}
	price, stats, err := Evaluate(program, scope, limits)
	if err != nil {
		return 0, stats, withContext(err, source)
	}
	return price, stats, nil
}

// Lint compiles source and runs static validation. A compile failure returns
// a nil program; otherwise the program is returned with any findings as an
// *errors.ErrorList.
func Lint(source, name string, limits Limits) (*ast.Program, error) {
	program, err := CompileNamed(source, name, limits)
	if err != nil {
		return nil, err
	}
	if err := validator.NewValidator(IdentifierBinding).Validate(program); err != nil {
		if errList, ok := err.(*rerrors.ErrorList); ok {
			for _, e := range errList.Errors {
				rerrors.AddContextToError(e, source)
			}
		}
		return program, err
	}
	return program, nil
}

func withContext(err error, source string) error {
	if rerr, ok := err.(*rerrors.Error); ok {
		return rerrors.AddContextToError(rerr, source)
	}
	return err
}
