// Package pricing is the single source of truth for what the customer
// actually pays versus the book price. Cart display, checkout and
// invoices all go through Summarize.
package pricing

import "strconv"

const (
	LabelSurcharge = "Biaya Tambahan"
	LabelDiscount  = "Diskon Biaya"
)

// Line is one cart/order line as pricing sees it. PriceOrder, when
// non-nil, replaces the whole line total (it is NOT per-unit). A zero
// override is a valid price of zero.
type Line struct {
	Price      int64
	Quantity   int
	PriceOrder *int64
}

// Adjustment is the signed difference between final and subtotal,
// reported as a magnitude plus a label.
type Adjustment struct {
	Amount int64  `json:"amount"`
	Label  string `json:"label"`
	Text   string `json:"text"`
}

type Summary struct {
	SubtotalPrice int64       `json:"subtotalPrice"`
	FinalPrice    int64       `json:"finalPrice"`
	Adjustment    *Adjustment `json:"adjustment,omitempty"`
}

// LineTotal returns the effective total for a single line.
func LineTotal(l Line) int64 {
	if l.PriceOrder != nil {
		return *l.PriceOrder
	}
	return l.Price * int64(l.Quantity)
}

// Summarize computes the undiscounted subtotal, the effective final
// price, and the display adjustment. Pure; safe to call from any
// read or write path.
func Summarize(lines []Line) Summary {
	var sub, final int64
	for _, l := range lines {
		sub += l.Price * int64(l.Quantity)
		final += LineTotal(l)
	}
	s := Summary{SubtotalPrice: sub, FinalPrice: final}
	switch {
	case final > sub:
		s.Adjustment = &Adjustment{Amount: final - sub, Label: LabelSurcharge}
	case final < sub:
		s.Adjustment = &Adjustment{Amount: sub - final, Label: LabelDiscount}
	}
	if s.Adjustment != nil {
		s.Adjustment.Text = s.Adjustment.Label + ": " + FormatRupiah(s.Adjustment.Amount)
	}
	return s
}

// FormatRupiah renders an amount as "Rp. 1.234.567".
func FormatRupiah(amount int64) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}
	raw := strconv.FormatInt(amount, 10)
	var out []byte
	for i, d := range []byte(raw) {
		if i > 0 && (len(raw)-i)%3 == 0 {
			out = append(out, '.')
		}
		out = append(out, d)
	}
	if neg {
		return "Rp. -" + string(out)
	}
	return "Rp. " + string(out)
}
