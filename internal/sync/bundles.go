package sync

import (
	"math"
	"strconv"

	"stockbridge/internal"
	"stockbridge/internal/warehouse"
)

// Expansion is the outcome of turning one order's storefront line items
// into warehouse order lines.
type Expansion struct {
	Lines           []warehouse.SalesOrderLine
	BundlesExpanded int
	SkippedNoSKU    []string
}

// ExpandLines maps order line items to warehouse lines. A SKU with active
// bundle mappings for the store emits one line per component, quantity
// multiplied, at zero unit price: the price stays on the bundle parent.
// Any other SKU passes through as a single line. Items without a SKU are
// skipped and reported by title.
func ExpandLines(items []internal.LineItem, mappings []internal.BundleMapping, store string) Expansion {
	bundleIdx := make(map[string][]internal.BundleMapping)
	for _, mapping := range mappings {
		if mapping.Store != store || !mapping.Active {
			continue
		}
		bundleIdx[mapping.StorefrontSKU] = append(bundleIdx[mapping.StorefrontSKU], mapping)
	}

	var exp Expansion
	lineNumber := 1

	for _, item := range items {
		if item.SKU == "" {
			exp.SkippedNoSKU = append(exp.SkippedNoSKU, item.Title)
			continue
		}

		components := bundleIdx[item.SKU]
		if len(components) > 0 {
			exp.BundlesExpanded++
			for _, component := range components {
				qty := item.Quantity * component.ComponentQty
				exp.Lines = append(exp.Lines, warehouse.SalesOrderLine{
					LineNumber:    lineNumber,
					Product:       warehouse.Product{ProductCode: component.WarehouseSKU},
					OrderQuantity: qty,
					UnitPrice:     0,
					LineTotal:     0,
					Comments:      "Bundle: " + item.Title,
				})
				lineNumber++
			}
			continue
		}

		unitPrice := parsePrice(item.Price)
		exp.Lines = append(exp.Lines, warehouse.SalesOrderLine{
			LineNumber:    lineNumber,
			Product:       warehouse.Product{ProductCode: item.SKU},
			OrderQuantity: item.Quantity,
			UnitPrice:     unitPrice,
			LineTotal:     roundCents(float64(item.Quantity) * unitPrice),
		})
		lineNumber++
	}

	return exp
}

func parsePrice(price string) float64 {
	parsed, err := strconv.ParseFloat(price, 64)
	if err != nil {
		return 0
	}
	return parsed
}

func roundCents(value float64) float64 {
	return math.Round(value*100) / 100
}
