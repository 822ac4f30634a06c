// Package pricing holds the fee and discount rules shared by the checkout page,
// the payment page and the order API. Amounts are rupees rounded to paise.
package pricing

import (
	"math"

	"medcart/models"
)

const (
	PlatformFee = 9.0

	// Delivery fee tiers, keyed on the cart subtotal before discount.
	LowOrderThreshold = 200.0
	LowOrderFee       = 49.0
	MidOrderThreshold = 300.0
	MidOrderFee       = 28.0
)

type Breakdown struct {
	Subtotal    float64 `json:"subtotal"`
	DeliveryFee float64 `json:"deliveryFee"`
	PlatformFee float64 `json:"platformFee"`
	Discount    float64 `json:"discount"`
	GrandTotal  float64 `json:"grandTotal"`
}

// Subtotal sums price x quantity. Lines with a missing, NaN or negative price,
// or a non-positive quantity, contribute nothing.
func Subtotal(items []models.CartItem) float64 {
	total := 0.0
	for _, it := range items {
		total += lineTotal(it.UnitPrice(), it.Quantity)
	}
	return Round(total)
}

// LinesSubtotal is Subtotal for order lines submitted to the API.
func LinesSubtotal(lines []models.OrderLine) float64 {
	total := 0.0
	for _, l := range lines {
		total += lineTotal(l.Price, l.Quantity)
	}
	return Round(total)
}

func lineTotal(price float64, qty int) float64 {
	if math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 || qty <= 0 {
		return 0
	}
	return price * float64(qty)
}

func DeliveryFee(subtotal float64) float64 {
	switch {
	case subtotal < LowOrderThreshold:
		return LowOrderFee
	case subtotal < MidOrderThreshold:
		return MidOrderFee
	default:
		return 0
	}
}

// Discount is subtotal x discount% / 100, or 0 without a coupon.
func Discount(subtotal float64, coupon *models.Coupon) float64 {
	if coupon == nil || coupon.Discount <= 0 {
		return 0
	}
	pct := math.Min(coupon.Discount, 100)
	return Round(subtotal * pct / 100)
}

// QuoteSubtotal prices an order from an already computed subtotal.
func QuoteSubtotal(subtotal float64, coupon *models.Coupon) Breakdown {
	subtotal = Round(subtotal)
	b := Breakdown{
		Subtotal:    subtotal,
		DeliveryFee: DeliveryFee(subtotal),
		PlatformFee: PlatformFee,
		Discount:    Discount(subtotal, coupon),
	}
	b.GrandTotal = Round(b.Subtotal + b.DeliveryFee + b.PlatformFee - b.Discount)
	return b
}

func Quote(items []models.CartItem, coupon *models.Coupon) Breakdown {
	return QuoteSubtotal(Subtotal(items), coupon)
}

// Round rounds to two decimal places.
func Round(v float64) float64 {
	return math.Round(v*100) / 100
}

// ToPaise converts rupees to the gateway's minor unit.
func ToPaise(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// Equal reports whether two rupee amounts differ by at most one paisa.
func Equal(a, b float64) bool {
	return math.Abs(a-b) <= 0.01+1e-9
}
