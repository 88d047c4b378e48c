package sales

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func samplePurchase() []LineItem {
	return []LineItem{
		{Name: "t-shirt", Qty: 15, Price: 9.99},
		{Name: "jeans", Qty: 10, Price: 12.50},
	}
}

func sampleTaxes() TaxConfig {
	return TaxConfig{"city": 0.2, "state": 0.7}
}

func TestCalculateTotalPurchase(t *testing.T) {
	assert.Equal(t, 274.85, CalculateTotalPurchase(samplePurchase()), "Computing total purchase failed")
}

func TestCalculateTotalPurchase_Empty(t *testing.T) {
	assert.Equal(t, 0.0, CalculateTotalPurchase(nil))
	assert.Equal(t, 0.0, CalculateTotalPurchase([]LineItem{}))
}

func TestCalculateTax(t *testing.T) {
	assert.Equal(t, 247.365, CalculateTax(274.85, sampleTaxes()))
}

func TestCalculateTax_EmptyConfig(t *testing.T) {
	assert.Equal(t, 0.0, CalculateTax(274.85, nil))
	assert.Equal(t, 0.0, CalculateTax(274.85, TaxConfig{}))
}

func TestCalculateTax_Deterministic(t *testing.T) {
	taxes := TaxConfig{"city": 0.1, "state": 0.2, "county": 0.3, "district": 0.07}
	want := CalculateTax(99.99, taxes)
	for i := 0; i < 50; i++ {
		// map iteration order changes between runs; the result must not
		assert.Equal(t, want, CalculateTax(99.99, taxes))
	}
}
