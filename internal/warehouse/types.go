package warehouse

// Wire shapes for the warehouse API. Field names follow the API's JSON,
// which is PascalCase throughout.

type pagination struct {
	NumberOfPages int `json:"NumberOfPages"`
	NumberOfItems int `json:"NumberOfItems"`
	PageNumber    int `json:"PageNumber"`
}

type stockItem struct {
	ProductCode        string  `json:"ProductCode"`
	ProductDescription string  `json:"ProductDescription"`
	QtyOnHand          float64 `json:"QtyOnHand"`
	AvailableQty       float64 `json:"AvailableQty"`
}

type stockPage struct {
	Items      []stockItem `json:"Items"`
	Pagination pagination  `json:"Pagination"`
}

// CustomerRef is the customer stub embedded in a sales order.
type CustomerRef struct {
	CustomerCode string `json:"CustomerCode"`
	CustomerName string `json:"CustomerName,omitempty"`
	Guid         string `json:"Guid,omitempty"`
}

// Customer is the full record used for lookup and create.
type Customer struct {
	CustomerCode string `json:"CustomerCode"`
	CustomerName string `json:"CustomerName"`
	ContactName  string `json:"ContactName,omitempty"`
	Email        string `json:"Email,omitempty"`
	Address1     string `json:"Address1,omitempty"`
	City         string `json:"City,omitempty"`
	Region       string `json:"Region,omitempty"`
	PostalCode   string `json:"PostalCode,omitempty"`
	Country      string `json:"Country,omitempty"`
	Guid         string `json:"Guid,omitempty"`
}

type customerPage struct {
	Items []Customer `json:"Items"`
}

type SalesOrderLine struct {
	LineNumber    int     `json:"LineNumber"`
	Product       Product `json:"Product"`
	OrderQuantity int     `json:"OrderQuantity"`
	UnitPrice     float64 `json:"UnitPrice"`
	DiscountRate  float64 `json:"DiscountRate"`
	LineTotal     float64 `json:"LineTotal"`
	TaxRate       float64 `json:"TaxRate"`
	LineTax       float64 `json:"LineTax"`
	Comments      string  `json:"Comments,omitempty"`
}

type Product struct {
	ProductCode string `json:"ProductCode"`
}

type Tax struct {
	TaxCode string `json:"TaxCode"`
}

type Currency struct {
	CurrencyCode string `json:"CurrencyCode"`
}

type SalesOrder struct {
	Customer               CustomerRef      `json:"Customer"`
	OrderDate              string           `json:"OrderDate"`
	RequiredDate           string           `json:"RequiredDate"`
	OrderStatus            string           `json:"OrderStatus"`
	Comments               string           `json:"Comments,omitempty"`
	CustomerRef            string           `json:"CustomerRef,omitempty"`
	DeliveryMethod         string           `json:"DeliveryMethod,omitempty"`
	Tax                    Tax              `json:"Tax"`
	Currency               Currency         `json:"Currency,omitempty"`
	SubTotal               float64          `json:"SubTotal"`
	TaxTotal               float64          `json:"TaxTotal"`
	Total                  float64          `json:"Total"`
	DeliveryName           string           `json:"DeliveryName,omitempty"`
	DeliveryStreetAddress  string           `json:"DeliveryStreetAddress,omitempty"`
	DeliveryStreetAddress2 string           `json:"DeliveryStreetAddress2,omitempty"`
	DeliverySuburb         string           `json:"DeliverySuburb,omitempty"`
	DeliveryCity           string           `json:"DeliveryCity,omitempty"`
	DeliveryRegion         string           `json:"DeliveryRegion,omitempty"`
	DeliveryCountry        string           `json:"DeliveryCountry,omitempty"`
	DeliveryPostCode       string           `json:"DeliveryPostCode,omitempty"`
	SalesOrderLines        []SalesOrderLine `json:"SalesOrderLines"`
}

// CreatedOrder is the subset of the create-order response the sync needs.
type CreatedOrder struct {
	Guid        string `json:"Guid"`
	OrderNumber string `json:"OrderNumber"`
	OrderStatus string `json:"OrderStatus"`
}

type orderListItem struct {
	Guid        string `json:"Guid"`
	OrderNumber string `json:"OrderNumber"`
	CustomerRef string `json:"CustomerRef"`
}

type orderListPage struct {
	Items []orderListItem `json:"Items"`
}

const (
	StatusParked    = "Parked"
	StatusCompleted = "Completed"
)
