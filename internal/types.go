package internal

import "time"

// StockRecord is one warehouse stock-on-hand row, fresh per sync run.
type StockRecord struct {
	SKU       string
	QtyOnHand int
}

type OversellPolicy string

const (
	PolicyDeny     OversellPolicy = "deny"
	PolicyContinue OversellPolicy = "continue"
)

// Variant is the storefront side of a SKU: where its inventory lives and
// whether the sync is allowed to touch it.
type Variant struct {
	SKU             string
	InventoryItemID int64
	ProductID       int64
	VariantID       int64
	ProductTitle    string
	VariantTitle    string
	Quantity        int
	Policy          OversellPolicy
}

// BundleMapping maps one storefront SKU to one warehouse component SKU.
// A bundle with several components has several rows sharing StorefrontSKU.
type BundleMapping struct {
	ID            int
	Store         string
	StorefrontSKU string
	WarehouseSKU  string
	ComponentQty  int
	Active        bool
}

type Customer struct {
	ID        int64
	FirstName string
	LastName  string
	Email     string
}

type Address struct {
	Name     string
	Address1 string
	Address2 string
	City     string
	Province string
	Zip      string
	Country  string
}

// LineItem keeps Price as the storefront's decimal string; it is parsed
// only at the point a warehouse line is built.
type LineItem struct {
	SKU      string
	Title    string
	Quantity int
	Price    string
}

type Order struct {
	ID              int64
	OrderNumber     int
	Email           string
	Customer        Customer
	LineItems       []LineItem
	ShippingAddress *Address
	FinancialStatus string
	CreatedAt       time.Time
}

// ItemError is one recovered per-item failure, kept with enough context to
// retry by hand.
type ItemError struct {
	SKU   string `json:"sku"`
	Error string `json:"error"`
}

type SyncStats struct {
	TotalWarehouse  int `json:"totalWarehouse"`
	TotalStorefront int `json:"totalStorefront"`
	Matched         int `json:"matched"`
	Updated         int `json:"updated"`
	Skipped         int `json:"skipped"`
	Errors          int `json:"errors"`
}

type SyncMismatches struct {
	NotInStorefront []string `json:"notInStorefront"`
	NotInWarehouse  []string `json:"notInWarehouse"`
}

// SyncResult is the report of one reconciliation run. Mismatch lists are
// informational; only Errors reflect failed writes.
type SyncResult struct {
	Store      string
	StartedAt  time.Time
	Duration   time.Duration
	DryRun     bool
	Stats      SyncStats
	Errors     []ItemError
	Mismatches SyncMismatches
}

type OrderState string

const (
	StateDraft            OrderState = "draft"
	StateLinesExpanded    OrderState = "lines_expanded"
	StateCustomerResolved OrderState = "customer_resolved"
	StateSubmitted        OrderState = "submitted"
	StateSuccess          OrderState = "success"
	StateSkipped          OrderState = "skipped"
	StateFailed           OrderState = "failed"
)

// DryRunGuid is the sentinel order identifier reported when a dry run
// stops short of the warehouse create call.
const DryRunGuid = "DRY_RUN"

// OrderResult is the per-order outcome of the push direction. A Failed
// order never aborts the batch it ran in.
type OrderResult struct {
	Store           string
	OrderID         int64
	OrderNumber     int
	WarehouseGuid   string
	State           OrderState
	BundlesExpanded int
	LineCount       int
	Error           string
}

// RunRow is a persisted sync run, for history listing and xlsx export.
type RunRow struct {
	ID         int
	Kind       string
	Store      string
	DryRun     bool
	StatsJSON  string
	ErrorsJSON string
	MismJSON   string
	DurationMs int64
	CreatedAt  string
}
