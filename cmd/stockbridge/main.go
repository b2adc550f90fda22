package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"stockbridge/internal"
	"stockbridge/internal/config"
	"stockbridge/internal/report"
	"stockbridge/internal/scheduler"
	"stockbridge/internal/storage"
	"stockbridge/internal/storefront"
	"stockbridge/internal/sync"
	"stockbridge/internal/warehouse"
)

func main() {
	cfg, err := config.Load()
	must(err)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	cmd := os.Args[1]
	switch cmd {
	case "inventory:sync":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		dryRun := fs.Bool("dry-run", false, "compute updates without writing")
		verbose := fs.Bool("verbose", false, "per-SKU logging")
		store := fs.String("store", "", "override store name")
		_ = fs.Parse(os.Args[2:])
		applyStore(&cfg, *store)

		wh := warehouse.NewClient(cfg)
		sf := storefront.NewClient(cfg)
		reconciler := sync.NewReconciler(cfg, wh, sf, sf, db)
		_, err := reconciler.Run(context.Background(), sync.Options{DryRun: *dryRun, Verbose: *verbose})
		must(err)
	case "orders:sync":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		dryRun := fs.Bool("dry-run", false, "compute orders without submitting")
		verbose := fs.Bool("verbose", false, "per-line logging")
		sinceHours := fs.Int("since-hours", cfg.OrderLookbackHours, "fetch orders created in the last N hours")
		limit := fs.Int("limit", cfg.OrderFetchLimit, "max orders per fetch")
		_ = fs.Parse(os.Args[2:])
		cfg.OrderLookbackHours = *sinceHours
		cfg.OrderFetchLimit = *limit

		syncer := sync.NewOrderSyncer(cfg, storefront.NewClient(cfg), warehouse.NewClient(cfg), db)
		_, err := syncer.SyncRecent(context.Background(), sync.Options{DryRun: *dryRun, Verbose: *verbose})
		must(err)
	case "orders:sync-one":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		orderID := fs.Int64("orderId", 0, "storefront order id")
		dryRun := fs.Bool("dry-run", false, "compute order without submitting")
		verbose := fs.Bool("verbose", false, "per-line logging")
		_ = fs.Parse(os.Args[2:])
		if *orderID == 0 {
			must(fmt.Errorf("--orderId is required"))
		}

		syncer := sync.NewOrderSyncer(cfg, storefront.NewClient(cfg), warehouse.NewClient(cfg), db)
		result, err := syncer.SyncOne(context.Background(), *orderID, sync.Options{DryRun: *dryRun, Verbose: *verbose})
		must(err)
		if result.State == internal.StateFailed {
			must(fmt.Errorf("order #%d failed: %s", result.OrderNumber, result.Error))
		}
	case "bundles:import":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		file := fs.String("file", "", "CSV: storefrontSku,warehouseSku,componentQty[,active]")
		store := fs.String("store", "", "override store name")
		_ = fs.Parse(os.Args[2:])
		applyStore(&cfg, *store)
		if strings.TrimSpace(*file) == "" {
			must(fmt.Errorf("--file is required"))
		}

		mappings, err := readMappingsCSV(*file, cfg.StoreName)
		must(err)
		must(db.UpsertBundleMappings(mappings))
		fmt.Printf("imported %d bundle mappings for store %s\n", len(mappings), cfg.StoreName)
	case "bundles:list":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		store := fs.String("store", "", "override store name")
		_ = fs.Parse(os.Args[2:])
		applyStore(&cfg, *store)

		mappings, err := db.ListBundleMappings(cfg.StoreName)
		must(err)
		for _, mapping := range mappings {
			state := "active"
			if !mapping.Active {
				state = "inactive"
			}
			fmt.Printf("%s -> %s x%d (%s)\n", mapping.StorefrontSKU, mapping.WarehouseSKU, mapping.ComponentQty, state)
		}
		fmt.Printf("%d mappings\n", len(mappings))
	case "report:xlsx":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		runID := fs.Int("runId", 0, "run id from the runs table")
		out := fs.String("out", "", "output xlsx path")
		_ = fs.Parse(os.Args[2:])
		if *runID == 0 || strings.TrimSpace(*out) == "" {
			must(fmt.Errorf("--runId and --out are required"))
		}

		run, err := db.GetRun(*runID)
		must(err)
		if run == nil {
			must(fmt.Errorf("run not found: %d", *runID))
		}
		must(report.ExportRunToXLSX(*run, *out))
		fmt.Printf("exported run %d to %s\n", *runID, *out)
	case "sync:listen":
		s := scheduler.NewService(db, cfg)
		must(s.Run(context.Background()))
	default:
		usage()
		os.Exit(1)
	}
}

func applyStore(cfg *config.Config, store string) {
	if strings.TrimSpace(store) == "" {
		return
	}
	cfg.StoreName = store
	cfg.StoreDisplayName = store
}

func readMappingsCSV(path, store string) ([]internal.BundleMapping, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	var mappings []internal.BundleMapping
	for i, row := range rows {
		if len(row) < 3 {
			return nil, fmt.Errorf("line %d: want at least storefrontSku,warehouseSku,componentQty", i+1)
		}
		if i == 0 && strings.EqualFold(strings.TrimSpace(row[0]), "storefrontSku") {
			continue
		}
		qty, err := strconv.Atoi(strings.TrimSpace(row[2]))
		if err != nil || qty < 1 {
			return nil, fmt.Errorf("line %d: componentQty must be an integer >= 1", i+1)
		}
		active := true
		if len(row) > 3 {
			active = strings.EqualFold(strings.TrimSpace(row[3]), "true") || strings.TrimSpace(row[3]) == "1"
		}
		mappings = append(mappings, internal.BundleMapping{
			Store:         store,
			StorefrontSKU: strings.TrimSpace(row[0]),
			WarehouseSKU:  strings.TrimSpace(row[1]),
			ComponentQty:  qty,
			Active:        active,
		})
	}
	return mappings, nil
}

func usage() {
	fmt.Println("usage: stockbridge <command>")
	fmt.Println("commands:")
	fmt.Println("  inventory:sync  [--dry-run] [--verbose] [--store=name]")
	fmt.Println("  orders:sync     [--dry-run] [--verbose] [--since-hours=24] [--limit=50]")
	fmt.Println("  orders:sync-one --orderId=N [--dry-run] [--verbose]")
	fmt.Println("  bundles:import  --file=mappings.csv [--store=name]")
	fmt.Println("  bundles:list    [--store=name]")
	fmt.Println("  report:xlsx     --runId=1 --out=./out/run.xlsx")
	fmt.Println("  sync:listen")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
