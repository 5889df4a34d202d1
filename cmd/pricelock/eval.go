package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"cellgate-hq/pricelock/pkg/cli"
	"cellgate-hq/pricelock/pkg/config"
	"cellgate-hq/pricelock/pkg/pricing"
	"cellgate-hq/pricelock/pkg/validation"
)

var evalFlags struct {
	account  string
	rule     string
	ruleFile string
	format   string
}

var evalCmd = &cobra.Command{
	Use:   "eval",
	Short: "Compute the price a rule assigns to an identifier",
	Long: `Evaluate a pricing rule for one identifier and print the price.

A rule failure prints the engine diagnostic and exits with the rule_error
exit code (5).

Examples:
  pricelock eval --account ABC --rule-file tiers.rhai
  pricelock eval --account alice --rule 'if account_chars.len() > 4 { 10 } else { 100 }'`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := cli.ParseOutputFormat(evalFlags.format)
		if err != nil {
			return err
		}
		source, err := readRule(evalFlags.rule, evalFlags.ruleFile)
		if err != nil {
			return cli.NewCommandError("eval", err)
		}

		pricer, err := newPricer(&config.MustGetConfig().Engine, rootLogger)
		if err != nil {
			return cli.NewCommandError("eval", err)
		}

		res, err := pricer.Evaluate(evalFlags.account, source)
		if err != nil {
			printRuleFailure(cmd.ErrOrStderr(), err)
			return cli.Exit(validation.KindRule.ExitCode(), nil)
		}
		return printPrice(cmd.OutOrStdout(), format, res)
	},
}

func init() {
	rootCmd.AddCommand(evalCmd)

	evalCmd.Flags().StringVarP(&evalFlags.account, "account", "a", "", "identifier bound to account_chars")
	evalCmd.Flags().StringVarP(&evalFlags.rule, "rule", "r", "", "pricing rule text")
	evalCmd.Flags().StringVarP(&evalFlags.ruleFile, "rule-file", "f", "", "file containing the pricing rule")
	evalCmd.Flags().StringVar(&evalFlags.format, "format", "text", "output format: text, json")
}

type priceOutput struct {
	Price    int64  `json:"price"`
	Required uint64 `json:"required"`
	Steps    int    `json:"steps"`
	Depth    int    `json:"depth"`
}

func printPrice(w io.Writer, format cli.OutputFormat, res *pricing.Result) error {
	out := priceOutput{Price: res.Price, Steps: res.Steps, Depth: res.Depth}
	// A price too large to scale is still printed; verify rejects it.
	if res.Price >= 0 && uint64(res.Price) <= ^uint64(0)/validation.UnitMultiplier {
		out.Required = uint64(res.Price) * validation.UnitMultiplier
	}

	switch format {
	case cli.FormatJSON:
		return cli.NewFormatter(format).FormatTo(w, out)
	case cli.FormatText:
		fmt.Fprintf(w, "price:    %d CKB\n", out.Price)
		fmt.Fprintf(w, "required: %d shannons\n", out.Required)
		fmt.Fprintf(w, "steps:    %d\n", out.Steps)
		return nil
	default:
		return fmt.Errorf("eval does not support %s output", format)
	}
}

func printRuleFailure(w io.Writer, err error) {
	fmt.Fprintf(w, "✗ %v\n", err)
	var ruleErr *pricing.RuleError
	if errors.As(err, &ruleErr) && ruleErr.Diagnostic() != "" {
		fmt.Fprintln(w, ruleErr.Diagnostic())
	}
}
