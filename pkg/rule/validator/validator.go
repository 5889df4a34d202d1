package validator

import (
	"cellgate-hq/pricelock/pkg/rule/ast"
	rerrors "cellgate-hq/pricelock/pkg/rule/errors"
)

// Validator is the main validator that orchestrates all validation passes.
// It runs scope, call and result validation over the same program and
// reports every finding together.
type Validator struct {
	scope  *ScopeValidator
	calls  *CallValidator
	result *ResultValidator
}

// NewValidator creates a validator for rules evaluated with the given
// predeclared bindings (normally just the identifier binding).
func NewValidator(predeclared ...string) *Validator {
	return &Validator{
		scope:  NewScopeValidator(predeclared...),
		calls:  NewCallValidator(),
		result: NewResultValidator(),
	}
}

// Validate runs all validation passes on a program.
// It returns nil or an *errors.ErrorList of semantic errors.
func (v *Validator) Validate(program *ast.Program) error {
	errs := rerrors.NewErrorList()

	for _, pass := range []interface {
		Validate(*ast.Program) error
	}{v.scope, v.calls, v.result} {
		if err := pass.Validate(program); err != nil {
			if errList, ok := err.(*rerrors.ErrorList); ok {
				errs.Errors = append(errs.Errors, errList.Errors...)
			} else {
				return err
			}
		}
	}

	return errs.ToError()
}

// ValidateScope runs only scope validation.
func (v *Validator) ValidateScope(program *ast.Program) error {
	return v.scope.Validate(program)
}

// ValidateCalls runs only call and constant validation.
func (v *Validator) ValidateCalls(program *ast.Program) error {
	return v.calls.Validate(program)
}

// ValidateResult runs only result validation.
func (v *Validator) ValidateResult(program *ast.Program) error {
	return v.result.Validate(program)
}
