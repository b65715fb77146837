package domain

// CartItem is one line of a cart. Name, Category and Image are a display
// snapshot taken when the product was added; they are not refreshed from the
// catalog afterwards.
type CartItem struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Category  string `json:"category"`
	Image     string `json:"image"`
	Price     int64  `json:"price"`
	Quantity  int    `json:"quantity"`
}

// CartSummary is derived from cart contents and never persisted.
// Subtotal+Tax == Total holds for every cart, see Summarize.
type CartSummary struct {
	Subtotal int64 `json:"subtotal"`
	Tax      int64 `json:"iva"`
	Total    int64 `json:"total"`
}

// Prices are tax-inclusive: a stored unit price already carries the 19% IVA
// component, so the subtotal is backed out of the total rather than taxed up.
const TaxRatePercent = 119

// Total sums price*quantity over all lines.
func Total(items []CartItem) int64 {
	var total int64
	for _, it := range items {
		total += it.Price * int64(it.Quantity)
	}
	return total
}

// ItemCount sums quantities over all lines.
func ItemCount(items []CartItem) int {
	count := 0
	for _, it := range items {
		count += it.Quantity
	}
	return count
}

// Summarize decomposes the tax-inclusive total into subtotal and tax.
// The subtotal is total/1.19 rounded half-up in integer arithmetic; the tax is
// the remainder, so the parts always sum back to the total exactly.
func Summarize(items []CartItem) CartSummary {
	total := Total(items)
	subtotal := (total*200 + TaxRatePercent) / (TaxRatePercent * 2)
	return CartSummary{
		Subtotal: subtotal,
		Tax:      total - subtotal,
		Total:    total,
	}
}
