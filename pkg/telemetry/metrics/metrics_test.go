package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"cellgate-hq/pricelock/pkg/config"
	"cellgate-hq/pricelock/pkg/txcontext"
	"cellgate-hq/pricelock/pkg/validation"
)

func testConfig() *config.MetricsConfig {
	return &config.MetricsConfig{
		Enabled:     true,
		Namespace:   "test",
		StepBuckets: []float64{10, 100, 1000},
	}
}

func validate(t *testing.T, c *Collector, tx *txcontext.Transaction) *validation.Verdict {
	t.Helper()
	ctrl, err := validation.NewController(validation.WithObserver(c))
	if err != nil {
		t.Fatalf("NewController() error = %v", err)
	}
	return ctrl.Validate(t.Context(), tx)
}

const tierRule = `let n = account_chars.len(); if n >= 5 { 100 } else { 1000 }`

func TestCollector_ObserveVerdict(t *testing.T) {
	c := NewCollector(testConfig(), nil)

	validate(t, c, txcontext.New([]byte("ABC"), []byte(tierRule), 10000*validation.UnitMultiplier))
	validate(t, c, txcontext.New([]byte("ABC"), []byte(tierRule), 1))
	validate(t, c, txcontext.New(nil, []byte(tierRule), 0))

	vm := c.validationMetrics
	if got := testutil.ToFloat64(vm.verdictsTotal.WithLabelValues("accept", "none")); got != 1 {
		t.Errorf("accept count = %v, want 1", got)
	}
	if got := testutil.ToFloat64(vm.verdictsTotal.WithLabelValues("reject", "insufficient_capacity")); got != 1 {
		t.Errorf("insufficient_capacity count = %v, want 1", got)
	}
	if got := testutil.ToFloat64(vm.verdictsTotal.WithLabelValues("reject", "missing_identifier")); got != 1 {
		t.Errorf("missing_identifier count = %v, want 1", got)
	}

	// Both runs that computed a price observe steps; the empty args run does not.
	if got := testutil.CollectAndCount(vm.ruleSteps); got != 1 {
		t.Errorf("rule_steps series = %d, want 1", got)
	}
	if got := testutil.CollectAndCount(vm.ruleErrors); got != 0 {
		t.Errorf("rule_errors series = %d, want 0", got)
	}
}

func TestCollector_RuleErrors(t *testing.T) {
	tests := []struct {
		name  string
		rule  string
		stage string
		code  string
	}{
		{"parse", "1 +", "compile", "E_PARSE"},
		{"division by zero", "1 / 0", "evaluate", "E_DIV_ZERO"},
		{"negative price", "0 - 5", "result", "E_RESULT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCollector(testConfig(), nil)
			v := validate(t, c, txcontext.New([]byte("ABC"), []byte(tt.rule), 0))
			if v.Kind() != validation.KindRule {
				t.Fatalf("Kind() = %q, want %q", v.Kind(), validation.KindRule)
			}

			got := testutil.ToFloat64(c.validationMetrics.ruleErrors.WithLabelValues(tt.stage, tt.code))
			if got != 1 {
				t.Errorf("rule_errors{stage=%q,code=%q} = %v, want 1", tt.stage, tt.code, got)
			}
		})
	}
}

func TestCollector_Disabled(t *testing.T) {
	cfg := testConfig()
	cfg.Enabled = false
	c := NewCollector(cfg, nil)

	validate(t, c, txcontext.New([]byte("ABC"), []byte(tierRule), 0))
	c.RecordSuite(&txcontext.Report{Passed: 1})
	c.RecordEvidenceWrite(nil)
	c.RecordPrune(3, time.Millisecond, nil)

	if got := testutil.CollectAndCount(c.validationMetrics.verdictsTotal); got != 0 {
		t.Errorf("verdicts series = %d, want 0", got)
	}
	if got := testutil.CollectAndCount(c.suiteMetrics.runsTotal); got != 0 {
		t.Errorf("suite runs series = %d, want 0", got)
	}
	if got := testutil.ToFloat64(c.evidenceMetrics.prunedTotal); got != 0 {
		t.Errorf("pruned = %v, want 0", got)
	}
}

func TestCollector_RecordSuite(t *testing.T) {
	c := NewCollector(testConfig(), nil)

	c.RecordSuite(&txcontext.Report{Passed: 4, Failed: 0, Duration: time.Millisecond})
	c.RecordSuite(&txcontext.Report{Passed: 3, Failed: 1, Duration: time.Millisecond})

	sm := c.suiteMetrics
	if got := testutil.ToFloat64(sm.runsTotal.WithLabelValues("pass")); got != 1 {
		t.Errorf("pass runs = %v, want 1", got)
	}
	if got := testutil.ToFloat64(sm.runsTotal.WithLabelValues("fail")); got != 1 {
		t.Errorf("fail runs = %v, want 1", got)
	}
	if got := testutil.ToFloat64(sm.cases.WithLabelValues("passed")); got != 3 {
		t.Errorf("passed cases = %v, want 3", got)
	}
	if got := testutil.ToFloat64(sm.cases.WithLabelValues("failed")); got != 1 {
		t.Errorf("failed cases = %v, want 1", got)
	}
}

func TestCollector_Evidence(t *testing.T) {
	c := NewCollector(testConfig(), nil)

	c.RecordEvidenceWrite(nil)
	c.RecordEvidenceWrite(nil)
	c.RecordEvidenceWrite(errors.New("disk full"))
	c.RecordPrune(5, 10*time.Millisecond, nil)
	c.RecordPrune(0, time.Millisecond, errors.New("locked"))

	em := c.evidenceMetrics
	if got := testutil.ToFloat64(em.writesTotal.WithLabelValues("success")); got != 2 {
		t.Errorf("successful writes = %v, want 2", got)
	}
	if got := testutil.ToFloat64(em.writesTotal.WithLabelValues("error")); got != 1 {
		t.Errorf("failed writes = %v, want 1", got)
	}
	if got := testutil.ToFloat64(em.prunedTotal); got != 5 {
		t.Errorf("pruned = %v, want 5", got)
	}
	if got := testutil.CollectAndCount(em.pruneDuration); got != 2 {
		t.Errorf("prune duration series = %d, want 2", got)
	}
}

func TestNewCollector_Defaults(t *testing.T) {
	cfg := &config.MetricsConfig{Enabled: true}
	c := NewCollector(cfg, nil)

	if cfg.Namespace != config.DefaultMetricsNamespace {
		t.Errorf("Namespace = %q, want %q", cfg.Namespace, config.DefaultMetricsNamespace)
	}
	if len(cfg.StepBuckets) != len(config.DefaultStepBuckets) {
		t.Errorf("StepBuckets = %v, want %v", cfg.StepBuckets, config.DefaultStepBuckets)
	}
	if c.Registry() == nil {
		t.Fatal("Registry() = nil")
	}
}

func TestCollector_Handler(t *testing.T) {
	c := NewCollector(testConfig(), nil)
	validate(t, c, txcontext.New([]byte("ABC"), []byte(tierRule), 10000*validation.UnitMultiplier))

	srv := httptest.NewServer(c.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	want := `test_validation_verdicts_total{kind="none",verdict="accept"} 1`
	if !strings.Contains(string(body), want) {
		t.Errorf("body missing %q\n%s", want, body)
	}
}
