package sales

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderReceipt(t *testing.T) {
	got := RenderReceipt(samplePurchase(), 274.85, 247.365, 522.215)

	want := "<html><body><h2>My Fashion Store</h2><hr>t-shi    15.0    9.99" +
		"<br>jeans    10.0    12.5<hr><p>Total: $274.85</p>" +
		"<p>Tax: $247.37</p><p><strong>Total Due: $522.22</strong></p></body></html>"
	assert.Equal(t, want, got)
}

func TestRenderReceipt_NoItems(t *testing.T) {
	got := RenderReceipt(nil, 0, 0, 0)

	want := "<html><body><h2>My Fashion Store</h2><hr><hr><p>Total: $0.00</p>" +
		"<p>Tax: $0.00</p><p><strong>Total Due: $0.00</strong></p></body></html>"
	assert.Equal(t, want, got)
}

func TestRenderReceipt_SingleItem(t *testing.T) {
	got := RenderReceipt([]LineItem{{Name: "hat", Qty: 1, Price: 5}}, 5, 0.5, 5.5)

	assert.Equal(t, "<html><body><h2>My Fashion Store</h2><hr>hat    1.0    5.0<hr>"+
		"<p>Total: $5.00</p><p>Tax: $0.50</p><p><strong>Total Due: $5.50</strong></p></body></html>", got)
}

func TestReceiptName(t *testing.T) {
	assert.Equal(t, "t-shi", receiptName("t-shirt"))
	assert.Equal(t, "jeans", receiptName("jeans"))
	assert.Equal(t, "cap", receiptName("cap"))
	assert.Equal(t, "échar", receiptName("écharpe"))
}

func TestFormatFloat(t *testing.T) {
	assert.Equal(t, "15.0", formatFloat(15))
	assert.Equal(t, "9.99", formatFloat(9.99))
	assert.Equal(t, "12.5", formatFloat(12.50))
	assert.Equal(t, "0.0", formatFloat(0))
}
