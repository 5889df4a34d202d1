package tracing

import (
	"strconv"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys use the "pricelock.*" namespace.
const (
	AttrRunID = "pricelock.run_id"
	AttrSuite = "pricelock.suite"
	AttrCase  = "pricelock.case"

	AttrIdentifierLen = "pricelock.identifier.len"
	AttrRuleBytes     = "pricelock.rule.bytes"
	AttrPrice         = "pricelock.rule.price"
	AttrSteps         = "pricelock.rule.steps"

	AttrRequired = "pricelock.capacity.required"
	AttrCapacity = "pricelock.capacity.committed"

	AttrFinalState = "pricelock.validation.final_state"
	AttrExitCode   = "pricelock.validation.exit_code"
	AttrKind       = "pricelock.validation.kind"

	AttrErrorMessage = "error.message"
)

// SetRunAttributes tags a span with the run, suite and case it belongs to.
// Empty values are skipped.
func SetRunAttributes(span trace.Span, runID, suite, caseName string) {
	attrs := make([]attribute.KeyValue, 0, 3)
	if runID != "" {
		attrs = append(attrs, attribute.String(AttrRunID, runID))
	}
	if suite != "" {
		attrs = append(attrs, attribute.String(AttrSuite, suite))
	}
	if caseName != "" {
		attrs = append(attrs, attribute.String(AttrCase, caseName))
	}
	span.SetAttributes(attrs...)
}

// SetPriceAttributes records a computed price.
func SetPriceAttributes(span trace.Span, price int64, steps int) {
	span.SetAttributes(
		attribute.Int64(AttrPrice, price),
		attribute.Int(AttrSteps, steps),
	)
}

// SetCapacityAttributes records the required and committed capacity in
// shannons. Values are strings because they may exceed int64.
func SetCapacityAttributes(span trace.Span, required, capacity uint64) {
	span.SetAttributes(
		attribute.String(AttrRequired, strconv.FormatUint(required, 10)),
		attribute.String(AttrCapacity, strconv.FormatUint(capacity, 10)),
	)
}

// SetOutcome records how a validation run ended. kind is empty on accept.
func SetOutcome(span trace.Span, finalState string, exitCode int, kind string) {
	attrs := []attribute.KeyValue{
		attribute.String(AttrFinalState, finalState),
		attribute.Int(AttrExitCode, exitCode),
	}
	if kind != "" {
		attrs = append(attrs, attribute.String(AttrKind, kind))
	}
	span.SetAttributes(attrs...)
}

// SetError records err on the span and marks it failed.
func SetError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.SetAttributes(
		attribute.Bool("error", true),
		attribute.String(AttrErrorMessage, err.Error()),
	)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// SetStatus sets the span status to Ok for a nil error and Error otherwise.
func SetStatus(span trace.Span, err error) {
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return
	}
	span.SetStatus(codes.Ok, "")
}
