package sync

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"stockbridge/internal"
	"stockbridge/internal/config"
	"stockbridge/internal/storage"
	"stockbridge/internal/warehouse"
)

type OrderSource interface {
	FetchRecentOrders(ctx context.Context, since time.Time, limit int) ([]internal.Order, error)
	GetOrder(ctx context.Context, id int64) (*internal.Order, error)
}

type WarehouseGateway interface {
	CustomerGateway
	CreateSalesOrder(ctx context.Context, order warehouse.SalesOrder) (*warehouse.CreatedOrder, error)
	FindOrderByRef(ctx context.Context, externalRef string) string
}

// OrderSyncer pushes storefront orders into the warehouse as sales
// orders. Each order walks draft -> lines_expanded -> customer_resolved
// -> submitted and ends success, skipped or failed; one failed order
// never aborts the rest of a batch.
type OrderSyncer struct {
	cfg     config.Config
	orders  OrderSource
	gateway WarehouseGateway
	db      *storage.DB
}

func NewOrderSyncer(cfg config.Config, orders OrderSource, gateway WarehouseGateway, db *storage.DB) *OrderSyncer {
	return &OrderSyncer{cfg: cfg, orders: orders, gateway: gateway, db: db}
}

type OrderRunStats struct {
	Orders          int `json:"orders"`
	Succeeded       int `json:"succeeded"`
	Skipped         int `json:"skipped"`
	Failed          int `json:"failed"`
	BundlesExpanded int `json:"bundlesExpanded"`
}

// SyncRecent fetches the recent order batch and syncs each order in turn.
// A failed order fetch is fatal; everything after that is per-order.
func (s *OrderSyncer) SyncRecent(ctx context.Context, opts Options) ([]internal.OrderResult, error) {
	since := time.Now().Add(-time.Duration(s.cfg.OrderLookbackHours) * time.Hour)
	orders, err := s.orders.FetchRecentOrders(ctx, since, s.cfg.OrderFetchLimit)
	if err != nil {
		return nil, fmt.Errorf("fetch storefront orders: %w", err)
	}
	fmt.Printf("Order sync: %s (mode: %s), %d orders since %s\n",
		s.cfg.StoreDisplayName, mode(opts.DryRun), len(orders), since.UTC().Format(time.RFC3339))

	mappings, err := s.loadMappings()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	var stats OrderRunStats
	var itemErrors []internal.ItemError
	results := make([]internal.OrderResult, 0, len(orders))

	for _, order := range orders {
		result := s.SyncOrder(ctx, order, mappings, opts)
		results = append(results, result)

		stats.Orders++
		stats.BundlesExpanded += result.BundlesExpanded
		switch result.State {
		case internal.StateSuccess:
			stats.Succeeded++
		case internal.StateSkipped:
			stats.Skipped++
		default:
			stats.Failed++
			itemErrors = append(itemErrors, internal.ItemError{
				SKU:   "order:" + strconv.FormatInt(result.OrderID, 10),
				Error: result.Error,
			})
		}
	}

	fmt.Printf("Order sync done: %d orders, %d ok, %d skipped, %d failed, %d bundles expanded\n",
		stats.Orders, stats.Succeeded, stats.Skipped, stats.Failed, stats.BundlesExpanded)

	if s.db != nil {
		if _, err := s.db.InsertRun("orders", s.cfg.StoreName, opts.DryRun, stats, itemErrors, nil, time.Since(start)); err != nil {
			fmt.Printf("  warn: failed to record run: %v\n", err)
		}
		_ = s.db.SetMetadata("sync.last_order_run", time.Now().UTC().Format(time.RFC3339))
	}

	return results, nil
}

// SyncOne fetches a single order by id and syncs it.
func (s *OrderSyncer) SyncOne(ctx context.Context, orderID int64, opts Options) (internal.OrderResult, error) {
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return internal.OrderResult{}, fmt.Errorf("fetch order %d: %w", orderID, err)
	}
	mappings, err := s.loadMappings()
	if err != nil {
		return internal.OrderResult{}, err
	}
	return s.SyncOrder(ctx, *order, mappings, opts), nil
}

// SyncParsedOrder syncs an order already decoded from a webhook payload.
func (s *OrderSyncer) SyncParsedOrder(ctx context.Context, order internal.Order, opts Options) (internal.OrderResult, error) {
	mappings, err := s.loadMappings()
	if err != nil {
		return internal.OrderResult{}, err
	}
	return s.SyncOrder(ctx, order, mappings, opts), nil
}

// SyncOrder runs one order through the state machine. Dry runs execute
// every state except the warehouse create call and report success with a
// sentinel order identifier.
func (s *OrderSyncer) SyncOrder(ctx context.Context, order internal.Order, mappings []internal.BundleMapping, opts Options) internal.OrderResult {
	result := internal.OrderResult{
		Store:       s.cfg.StoreName,
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		State:       internal.StateDraft,
	}

	fmt.Printf("Processing order #%d (%s %s, %s)\n",
		order.OrderNumber, order.Customer.FirstName, order.Customer.LastName, order.Email)

	externalRef := strconv.FormatInt(order.ID, 10)

	if !opts.DryRun {
		if guid := s.alreadySynced(ctx, externalRef); guid != "" {
			fmt.Printf("  already synced (%s)\n", guid)
			result.State = internal.StateSkipped
			result.WarehouseGuid = guid
			return result
		}
	}

	exp := ExpandLines(order.LineItems, mappings, s.cfg.StoreName)
	result.State = internal.StateLinesExpanded
	result.BundlesExpanded = exp.BundlesExpanded
	result.LineCount = len(exp.Lines)

	for _, title := range exp.SkippedNoSKU {
		fmt.Printf("  warn: skipping item without SKU: %s\n", title)
	}
	if opts.Verbose {
		for _, line := range exp.Lines {
			fmt.Printf("  line %d: %s x%d @ %.2f\n", line.LineNumber, line.Product.ProductCode, line.OrderQuantity, line.UnitPrice)
		}
	}
	fmt.Printf("  line items: %d -> %d (bundles expanded: %d)\n", len(order.LineItems), len(exp.Lines), exp.BundlesExpanded)

	customer, err := ResolveCustomer(ctx, s.gateway, s.cfg.CustomerCodePrefix, order, opts.DryRun)
	if err != nil {
		return fail(result, err)
	}
	result.State = internal.StateCustomerResolved

	salesOrder := s.buildSalesOrder(order, customer, exp.Lines, externalRef)

	if opts.DryRun {
		fmt.Printf("  [dry-run] would create sales order with %d lines\n", len(exp.Lines))
		result.State = internal.StateSuccess
		result.WarehouseGuid = internal.DryRunGuid
		return result
	}

	result.State = internal.StateSubmitted
	created, err := s.gateway.CreateSalesOrder(ctx, salesOrder)
	if err != nil {
		return fail(result, err)
	}

	result.State = internal.StateSuccess
	result.WarehouseGuid = created.Guid
	fmt.Printf("  created sales order %s\n", created.Guid)

	if s.db != nil {
		if err := s.db.MarkOrderSynced(s.cfg.StoreName, order.ID, order.OrderNumber, created.Guid); err != nil {
			fmt.Printf("  warn: failed to record synced order: %v\n", err)
		}
	}
	return result
}

func (s *OrderSyncer) buildSalesOrder(order internal.Order, customer warehouse.CustomerRef, lines []warehouse.SalesOrderLine, externalRef string) warehouse.SalesOrder {
	orderDate := order.CreatedAt.UTC().Format(time.RFC3339)

	status := warehouse.StatusParked
	if order.FinancialStatus == "paid" {
		status = warehouse.StatusCompleted
	}

	var subTotal float64
	for _, line := range lines {
		subTotal += line.LineTotal
	}
	subTotal = roundCents(subTotal)

	salesOrder := warehouse.SalesOrder{
		Customer:        customer,
		OrderDate:       orderDate,
		RequiredDate:    orderDate,
		OrderStatus:     status,
		Comments:        fmt.Sprintf("Storefront order #%d. Email: %s. Payment: %s", order.OrderNumber, order.Email, order.FinancialStatus),
		CustomerRef:     externalRef,
		DeliveryMethod:  s.cfg.DeliveryMethod,
		Tax:             warehouse.Tax{TaxCode: s.cfg.TaxCode},
		Currency:        warehouse.Currency{CurrencyCode: s.cfg.CurrencyCode},
		SubTotal:        subTotal,
		TaxTotal:        0,
		Total:           subTotal,
		SalesOrderLines: lines,
	}

	if addr := order.ShippingAddress; addr != nil {
		salesOrder.DeliveryName = addr.Name
		salesOrder.DeliveryStreetAddress = addr.Address1
		salesOrder.DeliveryStreetAddress2 = addr.Address2
		salesOrder.DeliverySuburb = addr.City
		salesOrder.DeliveryCity = addr.City
		salesOrder.DeliveryRegion = addr.Province
		salesOrder.DeliveryPostCode = addr.Zip
		salesOrder.DeliveryCountry = addr.Country
	}

	return salesOrder
}

// alreadySynced consults the local dedupe table first, then the
// warehouse's recent orders, keyed by external reference.
func (s *OrderSyncer) alreadySynced(ctx context.Context, externalRef string) string {
	if s.db != nil {
		orderID, err := strconv.ParseInt(externalRef, 10, 64)
		if err == nil {
			if guid, err := s.db.SyncedOrderGuid(s.cfg.StoreName, orderID); err == nil && guid != "" {
				return guid
			}
		}
	}
	return s.gateway.FindOrderByRef(ctx, externalRef)
}

func (s *OrderSyncer) loadMappings() ([]internal.BundleMapping, error) {
	if s.db == nil {
		return nil, nil
	}
	mappings, err := s.db.ListBundleMappings(s.cfg.StoreName)
	if err != nil {
		return nil, fmt.Errorf("load bundle mappings: %w", err)
	}
	return mappings, nil
}

func fail(result internal.OrderResult, err error) internal.OrderResult {
	fmt.Printf("  failed: %v\n", err)
	result.State = internal.StateFailed
	result.Error = err.Error()
	return result
}
