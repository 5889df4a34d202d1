// Pricelock checks spends of cells guarded by a price-gate lock.
//
// The lock reads an identifier from its script args and a pricing rule from
// the first output witness, computes the identifier's price and accepts the
// spend only when the first output commits enough capacity. This command
// runs that validation off-chain against in-memory transactions:
//
//	# Check one transaction, exit code is the rejection kind
//	pricelock verify --account ABC --rule-file tiers.rhai --capacity 10000
//
//	# Print the price a rule assigns
//	pricelock eval --account ABC --rule-file tiers.rhai
//
//	# Check rule files for errors
//	pricelock lint --file tiers.rhai
//
//	# Run a fixture suite, or re-run it on every change
//	pricelock test --suite cases.yaml
//	pricelock watch --suite cases.yaml
//
//	# Inspect recorded verdicts
//	pricelock evidence list --verdict reject
package main

import "os"

func main() {
	os.Exit(Execute())
}
