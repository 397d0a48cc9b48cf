package utils_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"sales-dashboard-api/pkg/utils"
)

func TestRound2(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1.23, utils.Round2(1.234))
	assert.Equal(t, 1.24, utils.Round2(1.235))
	assert.Equal(t, 0.0, utils.Round2(0))
	assert.Equal(t, -1.23, utils.Round2(-1.234))
}

func TestLineTotal(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 500.0, utils.LineTotal(5, 100))
	assert.Equal(t, 29.97, utils.LineTotal(3, 9.99))
}

func TestApplyDiscount(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 90.0, utils.ApplyDiscount(100, 10))
	assert.Equal(t, 100.0, utils.ApplyDiscount(100, 0))
	assert.Equal(t, 0.0, utils.ApplyDiscount(100, 100))
	assert.Equal(t, 22.48, utils.ApplyDiscount(29.97, 25))
}
