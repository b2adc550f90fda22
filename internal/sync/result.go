package sync

import (
	"fmt"
	"strings"

	"stockbridge/internal"
)

func newResult(store string, dryRun bool) *internal.SyncResult {
	return &internal.SyncResult{
		Store:  store,
		DryRun: dryRun,
		Errors: []internal.ItemError{},
		Mismatches: internal.SyncMismatches{
			NotInStorefront: []string{},
			NotInWarehouse:  []string{},
		},
	}
}

func addItemError(result *internal.SyncResult, sku string, err error) {
	result.Errors = append(result.Errors, internal.ItemError{SKU: sku, Error: err.Error()})
	result.Stats.Errors++
}

// PrintSummary writes the run report: counters first, then mismatch lists.
// Mismatches are informational and printed even on a clean run.
func PrintSummary(result internal.SyncResult, verbose bool) {
	rule := strings.Repeat("=", 60)
	fmt.Println(rule)
	fmt.Println("Summary:")
	fmt.Println(rule)
	fmt.Printf("  warehouse records:   %d\n", result.Stats.TotalWarehouse)
	fmt.Printf("  storefront variants: %d\n", result.Stats.TotalStorefront)
	fmt.Printf("  matched:             %d\n", result.Stats.Matched)
	fmt.Printf("  updated:             %d\n", result.Stats.Updated)
	fmt.Printf("  skipped:             %d\n", result.Stats.Skipped)
	fmt.Printf("  errors:              %d\n", result.Stats.Errors)
	fmt.Printf("  duration:            %.1fs\n", result.Duration.Seconds())

	printMismatchList("SKUs in warehouse not found in storefront", result.Mismatches.NotInStorefront, verbose)
	printMismatchList("SKUs in storefront not found in warehouse", result.Mismatches.NotInWarehouse, verbose)

	for _, itemErr := range result.Errors {
		fmt.Printf("  error %s: %s\n", itemErr.SKU, itemErr.Error)
	}
}

func printMismatchList(label string, skus []string, verbose bool) {
	if len(skus) == 0 {
		return
	}
	fmt.Printf("\n  %d %s\n", len(skus), label)
	if !verbose {
		return
	}
	shown := skus
	suffix := ""
	if len(shown) > 10 {
		shown = shown[:10]
		suffix = "..."
	}
	fmt.Printf("    %s%s\n", strings.Join(shown, ", "), suffix)
}
