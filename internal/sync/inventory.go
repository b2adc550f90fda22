package sync

import (
	"context"
	"fmt"
	"time"

	"stockbridge/internal"
	"stockbridge/internal/config"
	"stockbridge/internal/storage"
)

type StockSource interface {
	FetchAllStock(ctx context.Context) ([]internal.StockRecord, error)
}

type VariantSource interface {
	FetchAllVariants(ctx context.Context) ([]internal.Variant, error)
}

type InventoryWriter interface {
	SetInventoryLevel(ctx context.Context, inventoryItemID, locationID int64, available int) error
}

type Options struct {
	DryRun  bool
	Verbose bool
}

// Reconciler pulls both snapshots, diffs them by SKU and writes bounded
// updates back to the storefront. SKUs are processed sequentially; a
// failed write is recorded and the run moves on.
type Reconciler struct {
	cfg      config.Config
	stock    StockSource
	variants VariantSource
	writer   InventoryWriter
	db       *storage.DB
}

func NewReconciler(cfg config.Config, stock StockSource, variants VariantSource, writer InventoryWriter, db *storage.DB) *Reconciler {
	return &Reconciler{cfg: cfg, stock: stock, variants: variants, writer: writer, db: db}
}

// Run executes one reconciliation pass. The returned error is fatal: a
// missing location id or a failed snapshot fetch aborts before any write.
// Per-item write failures live on the result, not in the error.
func (r *Reconciler) Run(ctx context.Context, opts Options) (internal.SyncResult, error) {
	start := time.Now()
	result := newResult(r.cfg.StoreName, opts.DryRun)

	if err := r.cfg.RequireLocationID(); err != nil {
		return *result, err
	}

	fmt.Printf("Inventory sync: %s (mode: %s)\n", r.cfg.StoreDisplayName, mode(opts.DryRun))

	stock, err := r.stock.FetchAllStock(ctx)
	if err != nil {
		return *result, fmt.Errorf("fetch warehouse stock: %w", err)
	}
	result.Stats.TotalWarehouse = len(stock)
	stockIdx := BuildStockIndex(stock)
	fmt.Printf("  warehouse: %d stock records\n", len(stock))

	variants, err := r.variants.FetchAllVariants(ctx)
	if err != nil {
		return *result, fmt.Errorf("fetch storefront variants: %w", err)
	}
	result.Stats.TotalStorefront = len(variants)
	variantIdx := BuildVariantIndex(variants)
	fmt.Printf("  storefront: %d variants with SKUs\n", variantIdx.Len())

	stockIdx.Each(func(sku string, warehouseQty int) {
		variant, ok := variantIdx.Get(sku)
		if !ok {
			result.Mismatches.NotInStorefront = append(result.Mismatches.NotInStorefront, sku)
			return
		}

		result.Stats.Matched++

		// A variant that intentionally allows overselling is never
		// written, even when its quantity is stale. Checked before the
		// equality test so it always lands in skipped.
		if variant.Policy == internal.PolicyContinue {
			result.Stats.Skipped++
			if opts.Verbose {
				fmt.Printf("  skip %s: storefront allows oversell\n", sku)
			}
			return
		}

		if variant.Quantity == warehouseQty {
			result.Stats.Skipped++
			if opts.Verbose {
				fmt.Printf("  skip %s: %d (no change)\n", sku, warehouseQty)
			}
			return
		}

		if opts.DryRun {
			fmt.Printf("  [dry-run] %s: %d -> %d\n", sku, variant.Quantity, warehouseQty)
			result.Stats.Updated++
			return
		}

		if err := r.writer.SetInventoryLevel(ctx, variant.InventoryItemID, r.cfg.StorefrontLocationID, warehouseQty); err != nil {
			fmt.Printf("  fail %s: %v\n", sku, err)
			addItemError(result, sku, err)
			return
		}
		fmt.Printf("  set %s: %d -> %d\n", sku, variant.Quantity, warehouseQty)
		result.Stats.Updated++
	})

	variantIdx.Each(func(sku string, _ internal.Variant) {
		if !stockIdx.Has(sku) {
			result.Mismatches.NotInWarehouse = append(result.Mismatches.NotInWarehouse, sku)
		}
	})

	result.StartedAt = start
	result.Duration = time.Since(start)

	PrintSummary(*result, opts.Verbose)
	r.recordRun(*result)

	return *result, nil
}

func (r *Reconciler) recordRun(result internal.SyncResult) {
	if r.db == nil {
		return
	}
	if _, err := r.db.InsertRun("inventory", result.Store, result.DryRun, result.Stats, result.Errors, result.Mismatches, result.Duration); err != nil {
		fmt.Printf("  warn: failed to record run: %v\n", err)
	}
	_ = r.db.SetMetadata("sync.last_inventory_run", time.Now().UTC().Format(time.RFC3339))
}

func mode(dryRun bool) string {
	if dryRun {
		return "DRY RUN"
	}
	return "LIVE"
}
