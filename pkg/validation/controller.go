package validation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"math"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"cellgate-hq/pricelock/pkg/pricing"
	"cellgate-hq/pricelock/pkg/telemetry/logging"
	"cellgate-hq/pricelock/pkg/telemetry/tracing"
)

// UnitMultiplier converts a rule price in whole units to shannons.
const UnitMultiplier uint64 = 100_000_000

// Pricer computes the price for an identifier under a rule.
// *pricing.Evaluator implements Pricer.
type Pricer interface {
	Evaluate(identifier, ruleSource string) (*pricing.Result, error)
}

// SpanStarter starts tracing spans. Both trace.Tracer and *tracing.Tracer
// implement it.
type SpanStarter interface {
	Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span)
}

// Observer is notified of every verdict, typically to record metrics or
// evidence. ctx is the context passed to Validate.
type Observer interface {
	ObserveVerdict(ctx context.Context, v *Verdict)
}

// Option configures a Controller.
type Option func(*Controller)

// WithPricer sets the rule evaluator.
func WithPricer(p Pricer) Option {
	return func(c *Controller) {
		c.pricer = p
	}
}

// WithWitnessIndex sets which output witness carries the rule. Default 0.
func WithWitnessIndex(i int) Option {
	return func(c *Controller) {
		c.witnessIndex = i
	}
}

// WithOutputIndex sets which output cell's capacity is checked. Default 0.
func WithOutputIndex(i int) Option {
	return func(c *Controller) {
		c.outputIndex = i
	}
}

// WithLogger sets the logger for debug diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = l
	}
}

// WithTracer sets the span starter used to trace each transition.
func WithTracer(t SpanStarter) Option {
	return func(c *Controller) {
		c.tracer = t
	}
}

// WithObserver adds an observer notified of every verdict.
func WithObserver(o Observer) Option {
	return func(c *Controller) {
		c.observers = append(c.observers, o)
	}
}

// Controller runs the validation state machine. It keeps only
// configuration, so one Controller may validate many transactions.
type Controller struct {
	pricer       Pricer
	witnessIndex int
	outputIndex  int
	logger       *slog.Logger
	tracer       SpanStarter
	observers    []Observer
}

// NewController creates a controller. Without WithPricer it uses a
// pricing.Evaluator with the default configuration.
func NewController(opts ...Option) (*Controller, error) {
	c := &Controller{}
	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.tracer == nil {
		c.tracer = noop.NewTracerProvider().Tracer("pricelock")
	}
	if c.pricer == nil {
		p, err := pricing.NewEvaluator(nil, c.logger)
		if err != nil {
			return nil, err
		}
		c.pricer = p
	}
	if c.witnessIndex < 0 || c.outputIndex < 0 {
		return nil, errors.New("witness and output indices must not be negative")
	}
	return c, nil
}

// run holds the state of one Validate call.
type run struct {
	ctx     context.Context
	host    Host
	machine *machine
	verdict *Verdict
	rule    string
}

// Validate runs the state machine once against host and returns its verdict.
// Every run ends in exactly one of Accept or Reject; nothing is retried.
func (c *Controller) Validate(ctx context.Context, host Host) *Verdict {
	start := time.Now()
	ctx, span := c.tracer.Start(ctx, "validation.validate")
	defer span.End()
	tracing.SetRunAttributes(span, logging.GetRunID(ctx), logging.GetSuite(ctx), logging.GetCase(ctx))

	r := &run{
		ctx:     ctx,
		host:    host,
		machine: newMachine(),
		verdict: &Verdict{},
	}

	if err := c.execute(r); err != nil {
		r.machine.fail()
		r.verdict.Err = err
		tracing.SetStatus(span, err)
		c.logger.DebugContext(ctx, "spend rejected", "kind", err.Kind, "error", err.Error())
	} else {
		r.machine.advance()
		c.logger.DebugContext(ctx, "spend accepted",
			"price", r.verdict.Price,
			"required", r.verdict.Required,
			"capacity", r.verdict.Capacity,
		)
	}

	r.verdict.Path = r.machine.path
	r.verdict.Duration = time.Since(start)
	tracing.SetOutcome(span, r.verdict.Final().String(), r.verdict.ExitCode(), string(r.verdict.Kind()))

	for _, o := range c.observers {
		o.ObserveVerdict(ctx, r.verdict)
	}
	return r.verdict
}

// execute drives the machine from Start to PriceComputed and checks capacity.
func (c *Controller) execute(r *run) *Error {
	steps := []struct {
		name string
		fn   func(*run) *Error
	}{
		{"validation.load_args", c.loadArgs},
		{"validation.load_witness", c.loadWitness},
		{"validation.compute_price", c.computePrice},
		{"validation.check_capacity", c.checkCapacity},
	}

	for _, step := range steps {
		ctx, span := c.tracer.Start(r.ctx, step.name)
		outer := r.ctx
		r.ctx = ctx
		err := step.fn(r)
		r.ctx = outer
		if err != nil {
			tracing.SetError(span, err)
			span.End()
			return err
		}
		span.End()
		if r.machine.current != StatePriceComputed {
			r.machine.advance()
		}
	}
	return nil
}

// loadArgs is Start -> ArgsLoaded.
func (c *Controller) loadArgs(r *run) *Error {
	args, err := r.host.ScriptArgs()
	if err != nil {
		return reject(KindSyscall, err, "failed to load script args")
	}
	c.logger.DebugContext(r.ctx, "script args loaded", "args_len", len(args))

	if len(args) == 0 {
		return reject(KindMissingIdentifier, nil, "script args are empty")
	}
	if !utf8.Valid(args) {
		return reject(KindEncoding, nil, "script args are not valid UTF-8")
	}

	r.verdict.Identifier = string(args)
	trace.SpanFromContext(r.ctx).SetAttributes(attribute.Int(tracing.AttrIdentifierLen, len(args)))
	c.logger.DebugContext(r.ctx, "account chars decoded", "account_chars", r.verdict.Identifier)
	return nil
}

// loadWitness is ArgsLoaded -> WitnessLoaded.
func (c *Controller) loadWitness(r *run) *Error {
	field, err := r.host.WitnessLock(c.witnessIndex, SourceOutput)
	if err != nil {
		return reject(KindSyscall, err, "failed to load witness %d", c.witnessIndex)
	}
	if !field.Present {
		return reject(KindMissingRule, nil, "witness %d has no lock field", c.witnessIndex)
	}
	if !utf8.Valid(field.Data) {
		return reject(KindEncoding, nil, "witness %d lock field is not valid UTF-8", c.witnessIndex)
	}

	r.rule = string(field.Data)
	r.verdict.RuleDigest = digest(field.Data)
	trace.SpanFromContext(r.ctx).SetAttributes(attribute.Int(tracing.AttrRuleBytes, len(field.Data)))
	c.logger.DebugContext(r.ctx, "pricing rule loaded", "rule_bytes", len(field.Data))
	return nil
}

// computePrice is WitnessLoaded -> PriceComputed.
func (c *Controller) computePrice(r *run) *Error {
	res, err := c.pricer.Evaluate(r.verdict.Identifier, r.rule)
	if err != nil {
		return reject(KindRule, err, "failed to compute price")
	}

	r.verdict.Price = res.Price
	r.verdict.Steps = res.Steps
	tracing.SetPriceAttributes(trace.SpanFromContext(r.ctx), res.Price, res.Steps)
	c.logger.DebugContext(r.ctx, "price computed", "price", res.Price, "steps", res.Steps)

	if res.Price < 0 {
		return reject(KindRule, nil, "price %d is negative", res.Price)
	}
	if uint64(res.Price) > math.MaxUint64/UnitMultiplier {
		return reject(KindRule, nil, "price %d overflows the capacity unit", res.Price)
	}
	r.verdict.Required = uint64(res.Price) * UnitMultiplier
	return nil
}

// checkCapacity is PriceComputed -> Accept, or Reject.
func (c *Controller) checkCapacity(r *run) *Error {
	capacity, err := r.host.CellCapacity(c.outputIndex, SourceOutput)
	if err != nil {
		return reject(KindSyscall, err, "failed to load capacity of output %d", c.outputIndex)
	}
	r.verdict.Capacity = capacity
	tracing.SetCapacityAttributes(trace.SpanFromContext(r.ctx), r.verdict.Required, capacity)
	c.logger.DebugContext(r.ctx, "output capacity loaded", "capacity", capacity, "required", r.verdict.Required)

	if capacity < r.verdict.Required {
		return reject(KindInsufficientCapacity, nil, "output %d capacity %d is below required %d",
			c.outputIndex, capacity, r.verdict.Required)
	}
	return nil
}

func digest(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
