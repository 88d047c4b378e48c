package sales

import "sort"

// CalculateTotalPurchase returns the sum of qty*price over items.
func CalculateTotalPurchase(items []LineItem) float64 {
	var total float64
	for _, it := range items {
		// explicit conversion keeps the product from being fused into an FMA
		total += float64(it.Qty * it.Price)
	}
	return total
}

// CalculateTax returns total multiplied by the combined rate of taxes.
// Rates are summed in key order so identical configs always give identical results.
func CalculateTax(total float64, taxes TaxConfig) float64 {
	if len(taxes) == 0 {
		return 0
	}
	names := make([]string, 0, len(taxes))
	for name := range taxes {
		names = append(names, name)
	}
	sort.Strings(names)

	var rate float64
	for _, name := range names {
		rate += taxes[name]
	}
	return total * rate
}
