package utils

import (
	"math"
)

// Round2 rounds a monetary amount to 2 decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// LineTotal computes quantity * unit price rounded to cents.
func LineTotal(quantity int, pricePerUnit float64) float64 {
	return Round2(float64(quantity) * pricePerUnit)
}

// ApplyDiscount reduces a total by a percentage (0-100), rounded to cents.
func ApplyDiscount(total, discountPercentage float64) float64 {
	return Round2(total * (1 - discountPercentage/100))
}
