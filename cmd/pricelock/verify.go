package main

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"cellgate-hq/pricelock/pkg/cli"
	"cellgate-hq/pricelock/pkg/config"
	"cellgate-hq/pricelock/pkg/txcontext"
	"cellgate-hq/pricelock/pkg/validation"
)

// txFlags describe a single in-memory transaction.
type txFlags struct {
	account   string
	argsHex   string
	rule      string
	ruleFile  string
	noWitness bool
	capacity  uint64
	shannons  uint64
	exact     bool // shannons was set
	fail      string
}

var verifyFlags struct {
	tx     txFlags
	format string
}

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Validate one transaction",
	Long: `Validate one transaction against the price-gate lock.

The transaction has the given script args, the pricing rule in the lock
field of witness 0 and one output cell of the given capacity. The process
exits with the verdict's exit code.

Examples:
  # Accepted: "ABC" costs 10000 CKB under the tier rule
  pricelock verify --account ABC --rule-file tiers.rhai --capacity 10000

  # Raw script args and capacity in shannons
  pricelock verify --args-hex 414243 --rule "100" --shannons 10000000000

  # Simulate a failing capacity read
  pricelock verify --account ABC --rule "1" --capacity 1 --fail capacity`,
	RunE: func(cmd *cobra.Command, args []string) error {
		verifyFlags.tx.exact = cmd.Flags().Changed("shannons")
		format, err := cli.ParseOutputFormat(verifyFlags.format)
		if err != nil {
			return err
		}

		tx, err := verifyFlags.tx.transaction()
		if err != nil {
			return cli.NewCommandError("verify", err)
		}

		v, err := runVerify(cmd.Context(), config.MustGetConfig(), tx)
		if err != nil {
			return cli.NewCommandError("verify", err)
		}
		if err := printVerdict(cmd.OutOrStdout(), format, v); err != nil {
			return err
		}
		return cli.Exit(v.ExitCode(), nil)
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	addTxFlags(verifyCmd, &verifyFlags.tx)
	verifyCmd.Flags().StringVar(&verifyFlags.format, "format", "text", "output format: text, json")
}

func addTxFlags(cmd *cobra.Command, f *txFlags) {
	cmd.Flags().StringVarP(&f.account, "account", "a", "", "identifier placed in the script args")
	cmd.Flags().StringVar(&f.argsHex, "args-hex", "", "raw script args as hex, instead of --account")
	cmd.Flags().StringVarP(&f.rule, "rule", "r", "", "pricing rule text")
	cmd.Flags().StringVarP(&f.ruleFile, "rule-file", "f", "", "file containing the pricing rule")
	cmd.Flags().BoolVar(&f.noWitness, "no-witness", false, "leave the witness lock field empty")
	cmd.Flags().Uint64Var(&f.capacity, "capacity", 0, "output capacity in CKB")
	cmd.Flags().Uint64Var(&f.shannons, "shannons", 0, "output capacity in shannons, instead of --capacity")
	cmd.Flags().StringVar(&f.fail, "fail", "", "inject a host read failure: args, witness, capacity")
}

// transaction builds the transaction described by the flags.
func (f *txFlags) transaction() (*txcontext.Transaction, error) {
	args, err := f.args()
	if err != nil {
		return nil, err
	}

	var rule string
	switch {
	case f.noWitness && (f.rule != "" || f.ruleFile != ""):
		return nil, errors.New("--no-witness cannot be combined with --rule or --rule-file")
	case f.noWitness:
	default:
		rule, err = readRule(f.rule, f.ruleFile)
		if err != nil {
			return nil, err
		}
	}

	capacity := f.shannons
	if !f.exact {
		capacity, err = txcontext.ToShannons(f.capacity)
		if err != nil {
			return nil, err
		}
	}

	tx := txcontext.New(args, rule, capacity)
	if f.noWitness {
		tx.Witnesses[0] = validation.WitnessField{}
	}
	if f.fail != "" {
		read, err := txcontext.ParseRead(f.fail)
		if err != nil {
			return nil, err
		}
		tx.FailOn(read, nil)
	}
	return tx, nil
}

func (f *txFlags) args() ([]byte, error) {
	if f.argsHex == "" {
		return []byte(f.account), nil
	}
	if f.account != "" {
		return nil, errors.New("--account and --args-hex are mutually exclusive")
	}
	args, err := hex.DecodeString(strings.TrimPrefix(f.argsHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid --args-hex: %w", err)
	}
	return args, nil
}

// readRule returns inline rule text or the contents of file. Exactly one
// must be given.
func readRule(inline, file string) (string, error) {
	switch {
	case inline != "" && file != "":
		return "", errors.New("--rule and --rule-file are mutually exclusive")
	case inline != "":
		return inline, nil
	case file != "":
		data, err := txcontext.ReadFile(file)
		if err != nil {
			return "", err
		}
		return string(data), nil
	default:
		return "", errors.New("either --rule or --rule-file must be specified")
	}
}

// runVerify validates tx once with the configured controller.
func runVerify(ctx context.Context, cfg *config.Config, tx *txcontext.Transaction) (*validation.Verdict, error) {
	a, err := newApp(cfg, rootLogger)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := a.Close(context.WithoutCancel(ctx)); err != nil {
			rootLogger.Warn("shutdown failed", "error", err)
		}
	}()

	ctrl, err := a.controller()
	if err != nil {
		return nil, err
	}
	return ctrl.Validate(ctx, tx), nil
}

// verdictOutput is the JSON form of a verdict.
type verdictOutput struct {
	Verdict    string   `json:"verdict"`
	Kind       string   `json:"kind,omitempty"`
	ExitCode   int      `json:"exit_code"`
	Error      string   `json:"error,omitempty"`
	Identifier string   `json:"identifier,omitempty"`
	RuleDigest string   `json:"rule_digest,omitempty"`
	Price      int64    `json:"price"`
	Required   uint64   `json:"required"`
	Capacity   uint64   `json:"capacity"`
	Steps      int      `json:"steps"`
	Path       []string `json:"path"`
}

func newVerdictOutput(v *validation.Verdict) verdictOutput {
	out := verdictOutput{
		Verdict:    txcontext.VerdictAccept,
		ExitCode:   v.ExitCode(),
		Identifier: v.Identifier,
		RuleDigest: v.RuleDigest,
		Price:      v.Price,
		Required:   v.Required,
		Capacity:   v.Capacity,
		Steps:      v.Steps,
	}
	if !v.Accepted() {
		out.Verdict = txcontext.VerdictReject
		out.Kind = string(v.Kind())
		out.Error = v.Err.Error()
	}
	for _, s := range v.Path {
		out.Path = append(out.Path, s.String())
	}
	return out
}

func printVerdict(w io.Writer, format cli.OutputFormat, v *validation.Verdict) error {
	if format == cli.FormatJSON {
		return cli.NewFormatter(format).FormatTo(w, newVerdictOutput(v))
	}
	if format != cli.FormatText {
		return fmt.Errorf("verify does not support %s output", format)
	}

	if v.Accepted() {
		fmt.Fprintf(w, "✓ %s\n", v)
	} else {
		fmt.Fprintf(w, "✗ %s\n", v)
	}
	fmt.Fprintf(w, "  exit code: %d\n", v.ExitCode())
	return nil
}
