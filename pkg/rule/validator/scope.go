package validator

import (
	"fmt"
	"sort"

	"cellgate-hq/pricelock/pkg/rule/ast"
	rerrors "cellgate-hq/pricelock/pkg/rule/errors"
)

// ScopeValidator reports references to names that are not bound at the point of use.
type ScopeValidator struct {
	predeclared []string
	scopes      []map[string]bool
	errors      *rerrors.ErrorList
}

// NewScopeValidator creates a scope validator with the given predeclared names.
func NewScopeValidator(predeclared ...string) *ScopeValidator {
	return &ScopeValidator{
		predeclared: predeclared,
		errors:      rerrors.NewErrorList(),
	}
}

// Validate walks the program tracking let bindings per block.
func (v *ScopeValidator) Validate(program *ast.Program) error {
	v.errors = rerrors.NewErrorList()
	v.scopes = []map[string]bool{{}}
	for _, name := range v.predeclared {
		v.scopes[0][name] = true
	}

	if err := ast.Walk(program, v); err != nil {
		return err
	}
	return v.errors.ToError()
}

func (v *ScopeValidator) EnterBlock(*ast.BlockExpr) error {
	v.scopes = append(v.scopes, map[string]bool{})
	return nil
}

func (v *ScopeValidator) LeaveBlock(*ast.BlockExpr) error {
	v.scopes = v.scopes[:len(v.scopes)-1]
	return nil
}

func (v *ScopeValidator) VisitStmt(stmt ast.Stmt) error {
	if let, ok := stmt.(*ast.LetStmt); ok {
		v.scopes[len(v.scopes)-1][let.Name] = true
	}
	return nil
}

func (v *ScopeValidator) VisitExpr(expr ast.Expr) error {
	ident, ok := expr.(*ast.Ident)
	if !ok || v.bound(ident.Name) {
		return nil
	}
	v.errors.AddErrorWithSuggestion(
		rerrors.ErrorTypeSemantic,
		rerrors.CodeUndefined,
		fmt.Sprintf("undefined variable '%s'", ident.Name),
		ident.Location,
		rerrors.SuggestName(ident.Name, v.visible()),
	)
	return nil
}

func (v *ScopeValidator) bound(name string) bool {
	for i := len(v.scopes) - 1; i >= 0; i-- {
		if v.scopes[i][name] {
			return true
		}
	}
	return false
}

func (v *ScopeValidator) visible() []string {
	seen := make(map[string]bool)
	var names []string
	for _, scope := range v.scopes {
		for name := range scope {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)
	return names
}
