package pricing

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"cellgate-hq/pricelock/pkg/rule"
	rerrors "cellgate-hq/pricelock/pkg/rule/errors"
	"cellgate-hq/pricelock/pkg/rule/validator"
)

// Result is a computed price together with the work it took.
type Result struct {
	Price    int64
	Steps    int
	Depth    int
	Duration time.Duration
}

// Evaluator computes prices from untrusted rule text.
// It holds only configuration and may be shared across goroutines.
type Evaluator struct {
	config *Config
	logger *slog.Logger
}

// NewEvaluator creates a rule evaluator. A nil config uses DefaultConfig
// and a nil logger uses slog.Default.
func NewEvaluator(config *Config, logger *slog.Logger) (*Evaluator, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Evaluator{config: config, logger: logger}, nil
}

// PriceFor computes the price of identifier under ruleSource.
// Every failure, including a negative result, is a *RuleError.
func (e *Evaluator) PriceFor(identifier, ruleSource string) (int64, error) {
	res, err := e.Evaluate(identifier, ruleSource)
	if err != nil {
		return 0, err
	}
	return res.Price, nil
}

// Evaluate is PriceFor returning evaluation statistics as well.
func (e *Evaluator) Evaluate(identifier, ruleSource string) (*Result, error) {
	start := time.Now()
	limits := e.config.Limits()

	program, err := rule.CompileNamed(ruleSource, e.config.SourceName, limits)
	if err != nil {
		return nil, e.fail(StageCompile, err)
	}

	if e.config.StrictValidation {
		if err := validator.NewValidator(rule.IdentifierBinding).Validate(program); err != nil {
			return nil, e.fail(StageValidate, err)
		}
	}

	price, stats, err := rule.Evaluate(program, rule.NewScope(identifier), limits)
	if err != nil {
		return nil, e.fail(StageEvaluate, withSource(err, ruleSource))
	}

	if price < 0 {
		return nil, e.fail(StageResult, rerrors.Newf(rerrors.ErrorTypeEvaluation, rerrors.CodeResult,
			program.Stmts[len(program.Stmts)-1].Loc(), "price must not be negative, got %d", price))
	}

	res := &Result{
		Price:    price,
		Steps:    stats.Steps,
		Depth:    stats.MaxDepth,
		Duration: time.Since(start),
	}
	e.logger.Debug("rule evaluated",
		"price", res.Price,
		"steps", res.Steps,
		"depth", res.Depth,
		"duration", res.Duration,
	)
	return res, nil
}

func (e *Evaluator) fail(stage Stage, cause error) *RuleError {
	code := ""
	var rerr *rerrors.Error
	var errList *rerrors.ErrorList
	switch {
	case errors.As(cause, &rerr):
		code = rerr.Code
	case errors.As(cause, &errList) && errList.HasErrors():
		code = errList.Errors[0].Code
	}

	ruleErr := newRuleError(stage, code, cause)
	e.logger.Debug("rule failed",
		"stage", stage,
		"code", code,
		"diagnostic", ruleErr.Diagnostic(),
	)
	return ruleErr
}

func withSource(err error, source string) error {
	var rerr *rerrors.Error
	if errors.As(err, &rerr) {
		return rerrors.AddContextToError(rerr, source)
	}
	return err
}

// PriceFor computes a price with the default configuration.
func PriceFor(identifier, ruleSource string) (int64, error) {
	e, err := NewEvaluator(nil, nil)
	if err != nil {
		return 0, err
	}
	return e.PriceFor(identifier, ruleSource)
}
