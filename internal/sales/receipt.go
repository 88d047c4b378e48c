package sales

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	receiptHeader  = "<html><body><h2>My Fashion Store</h2><hr>"
	receiptNameLen = 5
)

// RenderReceipt formats a sale into the store's fixed HTML receipt layout.
func RenderReceipt(items []LineItem, totalPurchased, taxDue, totalDue float64) string {
	var b strings.Builder
	b.WriteString(receiptHeader)

	for i, it := range items {
		if i > 0 {
			b.WriteString("<br>")
		}
		b.WriteString(receiptName(it.Name))
		b.WriteString("    ")
		b.WriteString(formatFloat(it.Qty))
		b.WriteString("    ")
		b.WriteString(formatFloat(it.Price))
	}
	b.WriteString("<hr>")

	fmt.Fprintf(&b, "<p>Total: $%.2f</p>", totalPurchased)
	fmt.Fprintf(&b, "<p>Tax: $%.2f</p>", taxDue)
	fmt.Fprintf(&b, "<p><strong>Total Due: $%.2f</strong></p>", totalDue)
	b.WriteString("</body></html>")
	return b.String()
}

func receiptName(name string) string {
	r := []rune(name)
	if len(r) > receiptNameLen {
		return string(r[:receiptNameLen])
	}
	return name
}

// formatFloat prints the shortest representation, always keeping a decimal
// point: 15 -> "15.0", 12.50 -> "12.5".
func formatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !math.IsInf(v, 0) && !math.IsNaN(v) && !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
