package sync

import "stockbridge/internal"

// Index is a SKU-keyed lookup. Keys are matched exactly, case sensitive,
// with no normalization. Duplicate SKUs are last-write-wins; a store's
// variant set is expected to keep SKUs unique, so the later record is
// taken as the current one.
type Index[T any] struct {
	bySKU map[string]T
}

func NewIndex[T any](size int) *Index[T] {
	return &Index[T]{bySKU: make(map[string]T, size)}
}

func (i *Index[T]) Put(sku string, value T) {
	i.bySKU[sku] = value
}

func (i *Index[T]) Get(sku string) (T, bool) {
	value, ok := i.bySKU[sku]
	return value, ok
}

func (i *Index[T]) Has(sku string) bool {
	_, ok := i.bySKU[sku]
	return ok
}

func (i *Index[T]) Len() int {
	return len(i.bySKU)
}

// Each visits every entry in map iteration order. Callers must not rely
// on a particular SKU order.
func (i *Index[T]) Each(fn func(sku string, value T)) {
	for sku, value := range i.bySKU {
		fn(sku, value)
	}
}

// BuildStockIndex maps SKU to warehouse on-hand quantity.
func BuildStockIndex(records []internal.StockRecord) *Index[int] {
	idx := NewIndex[int](len(records))
	for _, record := range records {
		idx.Put(record.SKU, record.QtyOnHand)
	}
	return idx
}

// BuildVariantIndex maps SKU to the storefront variant carrying it.
func BuildVariantIndex(variants []internal.Variant) *Index[internal.Variant] {
	idx := NewIndex[internal.Variant](len(variants))
	for _, variant := range variants {
		idx.Put(variant.SKU, variant)
	}
	return idx
}
