package engine

import (
	"errors"
	"math"
	"sort"
	"strings"

	"sales-dashboard-api/internal/models"
)

// ErrInvalidPageSize is returned for a non-positive page size. Every other
// input, including fully-excluding filters and out-of-range pages, yields an
// empty but well-formed result.
var ErrInvalidPageSize = errors.New("engine: page size must be positive")

// lessFunc orders two sales by one column.
type lessFunc func(a, b models.Sale) bool

// comparators maps each sortable column to its comparator. Sorting dispatches
// through this table; there is no lookup of struct fields by name.
var comparators = map[models.SortField]lessFunc{
	models.SortByDate: func(a, b models.Sale) bool {
		return a.Date.Before(b.Date)
	},
	models.SortByQuantity: func(a, b models.Sale) bool {
		return a.Quantity < b.Quantity
	},
	models.SortByCustomerName: func(a, b models.Sale) bool {
		return a.CustomerName < b.CustomerName
	},
	models.SortByFinalAmount: func(a, b models.Sale) bool {
		return a.FinalAmount < b.FinalAmount
	},
}

// Execute runs the query pipeline over dataset: search, filters, sort,
// paginate. It is a pure function of its inputs and never mutates dataset.
// Identical requests over the same dataset produce identical results.
func Execute(dataset []models.Sale, req models.QueryRequest) (*models.QueryResult, error) {
	if req.PageSize <= 0 {
		return nil, ErrInvalidPageSize
	}

	filtered := applySearch(dataset, req.SearchQuery)
	filtered = applyFilters(filtered, req.Filters)
	applySort(filtered, req.Sort)
	page, pagination := applyPagination(filtered, req.Page, req.PageSize)

	return &models.QueryResult{
		Data:       page,
		Pagination: pagination,
	}, nil
}

// applySearch retains sales whose customer name contains the case-folded
// query, or whose phone number contains the query verbatim. It always copies
// so later stages never touch the caller's slice.
func applySearch(sales []models.Sale, query string) []models.Sale {
	out := make([]models.Sale, 0, len(sales))
	if query == "" {
		return append(out, sales...)
	}

	folded := strings.ToLower(query)
	for _, sale := range sales {
		if strings.Contains(strings.ToLower(sale.CustomerName), folded) ||
			strings.Contains(sale.PhoneNumber, query) {
			out = append(out, sale)
		}
	}
	return out
}

func applyFilters(sales []models.Sale, filters models.FilterState) []models.Sale {
	filtered := make([]models.Sale, 0, len(sales))

	for _, sale := range sales {
		// Categorical allow-lists: empty list means no restriction,
		// membership within a list is OR, lists compose with AND.
		if len(filters.Regions) > 0 && !contains(filters.Regions, sale.CustomerRegion) {
			continue
		}
		if len(filters.Genders) > 0 && !contains(filters.Genders, sale.Gender) {
			continue
		}
		if len(filters.Categories) > 0 && !contains(filters.Categories, sale.ProductCategory) {
			continue
		}
		if len(filters.PaymentMethods) > 0 && !contains(filters.PaymentMethods, sale.PaymentMethod) {
			continue
		}

		// Age range is always applied, bounds inclusive.
		if sale.Age < filters.AgeRange[0] || sale.Age > filters.AgeRange[1] {
			continue
		}

		// Date range, either bound optional, both inclusive.
		if start := filters.DateRange.Start; start != nil && sale.Date.Before(*start) {
			continue
		}
		if end := filters.DateRange.End; end != nil && sale.Date.After(*end) {
			continue
		}

		filtered = append(filtered, sale)
	}

	return filtered
}

// applySort sorts in place. The sort is stable in both directions: desc
// reverses the comparator, not the output, so equal keys keep their relative
// input order. An unrecognized field leaves the input order untouched.
func applySort(sales []models.Sale, cfg models.SortConfig) {
	less, ok := comparators[cfg.Field]
	if !ok {
		return
	}
	if cfg.Direction == models.SortDesc {
		asc := less
		less = func(a, b models.Sale) bool { return asc(b, a) }
	}

	sort.SliceStable(sales, func(i, j int) bool {
		return less(sales[i], sales[j])
	})
}

// applyPagination slices out the requested page, clamped to the available
// range. A page past the end yields an empty page while the metadata still
// reports the true totals; keeping page in range is the caller's problem.
func applyPagination(sales []models.Sale, page, pageSize int) ([]models.Sale, models.PaginationConfig) {
	total := len(sales)
	totalPages := int(math.Ceil(float64(total) / float64(pageSize)))

	pagination := models.PaginationConfig{
		Page:       page,
		PageSize:   pageSize,
		TotalItems: total,
		TotalPages: totalPages,
	}

	start := (page - 1) * pageSize
	if start < 0 || start >= total {
		return []models.Sale{}, pagination
	}

	end := start + pageSize
	if end > total {
		end = total
	}

	return sales[start:end], pagination
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
