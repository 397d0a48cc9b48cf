package facet_test

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sales-dashboard-api/internal/facet"
	"sales-dashboard-api/internal/generator"
	"sales-dashboard-api/internal/models"
)

func TestUniqueValuesDedupedAndSorted(t *testing.T) {
	t.Parallel()

	dataset := []models.Sale{
		{ProductCategory: "Fashion"},
		{ProductCategory: "Electronics"},
		{ProductCategory: "Fashion"},
		{ProductCategory: "Beauty"},
		{ProductCategory: "Electronics"},
	}

	values, err := facet.UniqueValues(dataset, "productCategory")
	require.NoError(t, err)
	assert.Equal(t, []string{"Beauty", "Electronics", "Fashion"}, values)
}

func TestUniqueValuesTagsFlattened(t *testing.T) {
	t.Parallel()

	dataset := []models.Sale{
		{Tags: []string{"Gift", "Bestseller"}},
		{Tags: []string{"Bestseller", "Bestseller"}},
	}

	values, err := facet.UniqueValues(dataset, "tags")
	require.NoError(t, err)
	assert.Equal(t, []string{"Bestseller", "Gift"}, values)
}

func TestUniqueValuesUnknownField(t *testing.T) {
	t.Parallel()

	_, err := facet.UniqueValues(nil, "finalAmount")
	assert.ErrorIs(t, err, facet.ErrUnknownField)
}

func TestUniqueValuesEmptyDataset(t *testing.T) {
	t.Parallel()

	values, err := facet.UniqueValues(nil, "gender")
	require.NoError(t, err)
	assert.Empty(t, values)
}

func TestUniqueValuesOverGeneratedDataset(t *testing.T) {
	t.Parallel()

	dataset := generator.Generate(350, 1234)

	for _, field := range facet.Fields() {
		values, err := facet.UniqueValues(dataset, field)
		require.NoError(t, err, field)
		assert.NotEmpty(t, values, field)
		assert.True(t, sort.StringsAreSorted(values), "%s not sorted", field)

		seen := map[string]bool{}
		for _, v := range values {
			assert.False(t, seen[v], "%s has duplicate %q", field, v)
			seen[v] = true
		}
	}
}
