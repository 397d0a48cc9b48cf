package facet

import (
	"errors"
	"sort"

	"sales-dashboard-api/internal/models"
)

// ErrUnknownField is returned for a field with no facet extractor.
var ErrUnknownField = errors.New("facet: unknown field")

// extractors maps each facetable field to the values it contributes per
// record. Fields are dispatched through this table, not looked up by name
// on the struct. Tags contribute every element of the list.
var extractors = map[string]func(models.Sale) []string{
	"gender":          func(s models.Sale) []string { return []string{s.Gender} },
	"customerRegion":  func(s models.Sale) []string { return []string{s.CustomerRegion} },
	"customerType":    func(s models.Sale) []string { return []string{s.CustomerType} },
	"productCategory": func(s models.Sale) []string { return []string{s.ProductCategory} },
	"brand":           func(s models.Sale) []string { return []string{s.Brand} },
	"tags":            func(s models.Sale) []string { return s.Tags },
	"paymentMethod":   func(s models.Sale) []string { return []string{s.PaymentMethod} },
	"orderStatus":     func(s models.Sale) []string { return []string{s.OrderStatus} },
	"deliveryType":    func(s models.Sale) []string { return []string{s.DeliveryType} },
	"storeLocation":   func(s models.Sale) []string { return []string{s.StoreLocation} },
}

// Fields returns the facetable field names, sorted.
func Fields() []string {
	fields := make([]string, 0, len(extractors))
	for f := range extractors {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

// UniqueValues returns the distinct values of field across the whole
// dataset, sorted ascending. Facets always describe the full dataset,
// never a filtered subset.
func UniqueValues(dataset []models.Sale, field string) ([]string, error) {
	extract, ok := extractors[field]
	if !ok {
		return nil, ErrUnknownField
	}

	seen := make(map[string]struct{})
	values := make([]string, 0)
	for _, sale := range dataset {
		for _, v := range extract(sale) {
			if _, dup := seen[v]; dup {
				continue
			}
			seen[v] = struct{}{}
			values = append(values, v)
		}
	}

	sort.Strings(values)
	return values, nil
}
