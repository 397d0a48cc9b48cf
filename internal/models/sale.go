package models

import (
	"time"
)

// Enumerated field domains. Values are stored as plain strings on Sale so the
// JSON shape stays flat; these constants are the canonical spellings.
const (
	GenderMale   = "Male"
	GenderFemale = "Female"
	GenderOther  = "Other"
)

const (
	CustomerTypeRegular = "Regular"
	CustomerTypePremium = "Premium"
	CustomerTypeNew     = "New"
)

const (
	PaymentCreditCard = "Credit Card"
	PaymentDebitCard  = "Debit Card"
	PaymentPayPal     = "PayPal"
	PaymentCash       = "Cash"
)

const (
	StatusCompleted = "Completed"
	StatusPending   = "Pending"
	StatusCancelled = "Cancelled"
	StatusReturned  = "Returned"
)

const (
	DeliveryStandard = "Standard"
	DeliveryExpress  = "Express"
	DeliveryPickup   = "In-Store Pickup"
)

type Sale struct {
	// Customer fields
	CustomerID     string `json:"customerId"`
	CustomerName   string `json:"customerName"`
	PhoneNumber    string `json:"phoneNumber"`
	Gender         string `json:"gender"`
	Age            int    `json:"age"`
	CustomerRegion string `json:"customerRegion"`
	CustomerType   string `json:"customerType"`

	// Product fields
	ProductID       string   `json:"productId"`
	ProductName     string   `json:"productName"`
	Brand           string   `json:"brand"`
	ProductCategory string   `json:"productCategory"`
	Tags            []string `json:"tags"`

	// Sales fields
	Quantity           int     `json:"quantity"`
	PricePerUnit       float64 `json:"pricePerUnit"`
	DiscountPercentage float64 `json:"discountPercentage"`
	TotalAmount        float64 `json:"totalAmount"`
	FinalAmount        float64 `json:"finalAmount"`

	// Operational fields
	Date           time.Time `json:"date"`
	PaymentMethod  string    `json:"paymentMethod"`
	OrderStatus    string    `json:"orderStatus"`
	DeliveryType   string    `json:"deliveryType"`
	StoreID        string    `json:"storeId"`
	StoreLocation  string    `json:"storeLocation"`
	SalespersonID  string    `json:"salespersonId"`
	EmployeeName   string    `json:"employeeName"`
}

// SortField is a sortable column. Sorting dispatches on these values through
// a fixed comparator table; there is no by-name field lookup.
type SortField string

const (
	SortByDate         SortField = "date"
	SortByQuantity     SortField = "quantity"
	SortByCustomerName SortField = "customerName"
	SortByFinalAmount  SortField = "finalAmount"
)

// Valid reports whether f is one of the sortable columns.
func (f SortField) Valid() bool {
	switch f {
	case SortByDate, SortByQuantity, SortByCustomerName, SortByFinalAmount:
		return true
	}
	return false
}

type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

func (d SortDirection) Valid() bool {
	return d == SortAsc || d == SortDesc
}

type SortConfig struct {
	Field     SortField     `json:"field"`
	Direction SortDirection `json:"direction"`
}

// DefaultSortConfig returns the initial sort: newest sales first.
func DefaultSortConfig() SortConfig {
	return SortConfig{Field: SortByDate, Direction: SortDesc}
}

// DateRange is an optional inclusive window; a nil bound is unbounded on
// that side.
type DateRange struct {
	Start *time.Time `json:"start,omitempty"`
	End   *time.Time `json:"end,omitempty"`
}

// FilterState describes the active filters. An empty allow-list imposes no
// restriction on its field. AgeRange is always applied and is deliberately
// not clamped to min <= max; a reversed range matches nothing.
type FilterState struct {
	Regions        []string  `json:"regions"`
	Genders        []string  `json:"genders"`
	AgeRange       [2]int    `json:"ageRange"`
	Categories     []string  `json:"categories"`
	PaymentMethods []string  `json:"paymentMethods"`
	DateRange      DateRange `json:"dateRange"`
}

// DefaultFilterState returns the unrestricted filter set with the age range
// open across the full domain.
func DefaultFilterState() FilterState {
	return FilterState{AgeRange: [2]int{0, 100}}
}

type PaginationConfig struct {
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalItems int `json:"totalItems"`
	TotalPages int `json:"totalPages"`
}

// QueryRequest is the full, self-contained description of one query. Two
// requests with identical fields produce identical results.
type QueryRequest struct {
	SearchQuery string      `json:"searchQuery"`
	Filters     FilterState `json:"filters"`
	Sort        SortConfig  `json:"sort"`
	Page        int         `json:"page"`
	PageSize    int         `json:"pageSize"`
}

type QueryResult struct {
	Data       []Sale           `json:"data"`
	Pagination PaginationConfig `json:"pagination"`
	Duration   string           `json:"duration,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    int    `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}
