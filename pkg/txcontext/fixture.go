package txcontext

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"cellgate-hq/pricelock/pkg/validation"
)

// MaxSuiteBytes bounds the size of suite and rule files.
const MaxSuiteBytes = 1 << 20

// Expected verdicts.
const (
	VerdictAccept = "accept"
	VerdictReject = "reject"
)

// Suite is a set of transaction cases loaded from YAML:
//
//	name: tiers
//	rule_file: tiers.rhai
//	cases:
//	  - name: three chars
//	    account: ABC
//	    capacity: 10000
//	    expect:
//	      verdict: accept
//	      price: 10000
type Suite struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`

	// Rule and RuleFile give a default rule for cases that set none.
	Rule     string `yaml:"rule,omitempty"`
	RuleFile string `yaml:"rule_file,omitempty"`

	Cases []Case `yaml:"cases"`

	path string
}

// Case is a single transaction and its expected verdict.
type Case struct {
	Name string `yaml:"name"`

	// Account is the identifier as text. ArgsHex gives raw script args
	// instead, which allows non-UTF-8 and empty args.
	Account string  `yaml:"account,omitempty"`
	ArgsHex *string `yaml:"args_hex,omitempty"`

	// At most one of Rule, RuleFile and RuleHex may be set.
	Rule          string `yaml:"rule,omitempty"`
	RuleFile      string `yaml:"rule_file,omitempty"`
	RuleHex       string `yaml:"rule_hex,omitempty"`
	WitnessAbsent bool   `yaml:"witness_absent,omitempty"`

	// Capacity is in CKB; CapacityShannons is the raw amount.
	Capacity         *uint64 `yaml:"capacity,omitempty"`
	CapacityShannons *uint64 `yaml:"capacity_shannons,omitempty"`

	// Fail injects a host read failure: args, witness or capacity.
	Fail string `yaml:"fail,omitempty"`

	Expect Expectation `yaml:"expect"`

	args     []byte
	rule     []byte
	capacity uint64
}

// Expectation is the verdict a case must produce.
type Expectation struct {
	Verdict string `yaml:"verdict"`
	Kind    string `yaml:"kind,omitempty"`
	Price   *int64 `yaml:"price,omitempty"`
}

// Path returns the file the suite was loaded from.
func (s *Suite) Path() string {
	return s.path
}

// Files returns the suite file and every rule file it references.
func (s *Suite) Files() []string {
	seen := map[string]bool{}
	var files []string
	add := func(p string) {
		if p != "" && !seen[p] {
			seen[p] = true
			files = append(files, p)
		}
	}

	add(s.path)
	add(s.resolve(s.RuleFile))
	for i := range s.Cases {
		add(s.resolve(s.Cases[i].RuleFile))
	}
	return files
}

func (s *Suite) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) || s.path == "" {
		return p
	}
	return filepath.Join(filepath.Dir(s.path), p)
}

// ToShannons converts whole CKB to shannons.
func ToShannons(ckb uint64) (uint64, error) {
	if ckb > math.MaxUint64/validation.UnitMultiplier {
		return 0, fmt.Errorf("capacity %d CKB overflows shannons", ckb)
	}
	return ckb * validation.UnitMultiplier, nil
}

// LoadSuite reads and checks a fixture suite. Rule files are resolved
// relative to the suite file.
func LoadSuite(path string) (*Suite, error) {
	data, err := ReadFile(path)
	if err != nil {
		return nil, err
	}

	suite, err := ParseSuite(data, path)
	if err != nil {
		return nil, err
	}
	return suite, nil
}

// ParseSuite parses suite YAML. path is used to resolve rule files and in
// error messages.
func ParseSuite(data []byte, path string) (*Suite, error) {
	var suite Suite
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&suite); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &LoadError{FilePath: path, Message: "suite is empty"}
		}
		return nil, &LoadError{FilePath: path, Message: "invalid YAML", Cause: err}
	}
	suite.path = path

	if err := suite.prepare(); err != nil {
		return nil, err
	}
	return &suite, nil
}

// prepare checks every case and resolves its args, rule and capacity.
func (s *Suite) prepare() error {
	var defaultRule []byte
	switch {
	case s.Rule != "" && s.RuleFile != "":
		return &SuiteError{FilePath: s.path, Errors: []*CaseError{{
			Case: "(suite)", Field: "rule", Message: "rule and rule_file are mutually exclusive",
		}}}
	case s.RuleFile != "":
		data, err := ReadFile(s.resolve(s.RuleFile))
		if err != nil {
			return err
		}
		defaultRule = data
	case s.Rule != "":
		defaultRule = []byte(s.Rule)
	}

	var errs []*CaseError
	if len(s.Cases) == 0 {
		errs = append(errs, &CaseError{Case: "(suite)", Field: "cases", Message: "suite has no cases"})
	}

	names := make(map[string]bool, len(s.Cases))
	for i := range s.Cases {
		c := &s.Cases[i]
		if c.Name == "" {
			c.Name = fmt.Sprintf("case %d", i+1)
		}
		if names[c.Name] {
			errs = append(errs, &CaseError{Case: c.Name, Message: "duplicate case name"})
		}
		names[c.Name] = true

		caseErrs, err := s.prepareCase(c, defaultRule)
		if err != nil {
			return err
		}
		errs = append(errs, caseErrs...)
	}

	if len(errs) > 0 {
		return &SuiteError{FilePath: s.path, Errors: errs}
	}
	return nil
}

func (s *Suite) prepareCase(c *Case, defaultRule []byte) ([]*CaseError, error) {
	var errs []*CaseError
	fail := func(field, format string, args ...any) {
		errs = append(errs, &CaseError{Case: c.Name, Field: field, Message: fmt.Sprintf(format, args...)})
	}

	switch {
	case c.ArgsHex != nil && c.Account != "":
		fail("account", "account and args_hex are mutually exclusive")
	case c.ArgsHex != nil:
		args, err := hex.DecodeString(strings.TrimPrefix(*c.ArgsHex, "0x"))
		if err != nil {
			fail("args_hex", "invalid hex: %v", err)
		}
		c.args = args
	default:
		c.args = []byte(c.Account)
	}

	set := 0
	for _, v := range []string{c.Rule, c.RuleFile, c.RuleHex} {
		if v != "" {
			set++
		}
	}
	switch {
	case set > 1:
		fail("rule", "rule, rule_file and rule_hex are mutually exclusive")
	case c.WitnessAbsent && set > 0:
		fail("witness_absent", "an absent witness cannot carry a rule")
	case c.WitnessAbsent:
	case c.Rule != "":
		c.rule = []byte(c.Rule)
	case c.RuleFile != "":
		data, err := ReadFile(s.resolve(c.RuleFile))
		if err != nil {
			return nil, err
		}
		c.rule = data
	case c.RuleHex != "":
		data, err := hex.DecodeString(strings.TrimPrefix(c.RuleHex, "0x"))
		if err != nil {
			fail("rule_hex", "invalid hex: %v", err)
		}
		c.rule = data
	case defaultRule != nil:
		c.rule = defaultRule
	default:
		fail("rule", "no rule given and the suite has no default rule")
	}

	switch {
	case c.Capacity != nil && c.CapacityShannons != nil:
		fail("capacity", "capacity and capacity_shannons are mutually exclusive")
	case c.Capacity != nil:
		shannons, err := ToShannons(*c.Capacity)
		if err != nil {
			fail("capacity", "%v", err)
		}
		c.capacity = shannons
	case c.CapacityShannons != nil:
		c.capacity = *c.CapacityShannons
	}

	if c.Fail != "" {
		if _, err := ParseRead(c.Fail); err != nil {
			fail("fail", "%v", err)
		}
	}

	switch c.Expect.Verdict {
	case VerdictAccept:
		if c.Expect.Kind != "" {
			fail("expect.kind", "an accepted case has no rejection kind")
		}
	case VerdictReject:
		if c.Expect.Kind != "" {
			if _, err := validation.ParseKind(c.Expect.Kind); err != nil {
				fail("expect.kind", "%v", err)
			}
		}
	case "":
		fail("expect.verdict", "expected verdict is required")
	default:
		fail("expect.verdict", "must be %q or %q, got %q", VerdictAccept, VerdictReject, c.Expect.Verdict)
	}

	return errs, nil
}

// Transaction builds the in-memory transaction for the case.
func (c *Case) Transaction() *Transaction {
	tx := &Transaction{
		Args:    c.args,
		Outputs: []Cell{{Capacity: c.capacity}},
	}
	if c.WitnessAbsent {
		tx.Witnesses = []validation.WitnessField{{Present: false}}
	} else {
		tx.Witnesses = []validation.WitnessField{{Present: true, Data: c.rule}}
	}
	if c.Fail != "" {
		tx.FailOn(Read(c.Fail), nil)
	}
	return tx
}

// ReadFile reads a suite or rule file of at most MaxSuiteBytes. Failures are
// *LoadError values.
func ReadFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &LoadError{FilePath: path, Message: "file not found", Cause: err}
		}
		return nil, &LoadError{FilePath: path, Message: "failed to access file", Cause: err}
	}
	if !info.Mode().IsRegular() {
		return nil, &LoadError{FilePath: path, Message: "not a regular file"}
	}
	if info.Size() > MaxSuiteBytes {
		return nil, &LoadError{
			FilePath: path,
			Message:  fmt.Sprintf("file size %d bytes exceeds maximum %d bytes", info.Size(), MaxSuiteBytes),
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{FilePath: path, Message: "failed to read file", Cause: err}
	}
	return data, nil
}
