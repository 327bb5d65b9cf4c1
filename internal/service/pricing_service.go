package service

import (
	"time"

	"github.com/dimaswi/pos-sub002/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// PricedItem is one resolved cart line: product already looked up, unit
// price taken from the catalog snapshot, per-item discount from the request.
type PricedItem struct {
	ProductID uuid.UUID
	Name      string
	Quantity  int
	UnitPrice decimal.Decimal
	Discount  decimal.Decimal
	Total     decimal.Decimal
}

// Quote is the full price breakdown of a cart before persistence.
// Promo and tier discounts are independent: both are computed against the
// ORIGINAL subtotal, never compounded sequentially. TaxAmount is always zero.
type Quote struct {
	Subtotal                   decimal.Decimal
	PromoDiscount              decimal.Decimal
	CustomerDiscount           decimal.Decimal
	CustomerDiscountPercentage decimal.Decimal
	TaxAmount                  decimal.Decimal
	Total                      decimal.Decimal
}

// PricingService computes totals, discounts and payment fees. It is
// stateless: all entities arrive as immutable snapshots.
type PricingService interface {
	Quote(items []PricedItem, discount *model.Discount, customer *model.Customer, now time.Time) Quote
}

type pricingService struct{}

func NewPricingService() PricingService { return &pricingService{} }

func (s *pricingService) Quote(items []PricedItem, discount *model.Discount, customer *model.Customer, now time.Time) Quote {
	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.Total)
	}

	q := Quote{
		Subtotal:                   subtotal,
		PromoDiscount:              decimal.Zero,
		CustomerDiscount:           decimal.Zero,
		CustomerDiscountPercentage: decimal.Zero,
		TaxAmount:                  decimal.Zero,
	}

	if discount != nil {
		q.PromoDiscount = promoAmount(discount, subtotal, now)
	}
	if customer != nil && customer.CustomerDiscount != nil {
		q.CustomerDiscount, q.CustomerDiscountPercentage = tierAmount(customer.CustomerDiscount, subtotal)
	}

	total := subtotal.Sub(q.PromoDiscount).Sub(q.CustomerDiscount).Add(q.TaxAmount)
	if total.IsNegative() {
		total = decimal.Zero
	}
	q.Total = total
	return q
}

// promoAmount evaluates a promo code against the subtotal. Inactive, expired
// or usage-exhausted codes contribute zero, as does a subtotal under the
// code's minimum amount. The maximum-discount clamp runs AFTER the
// percentage computation.
func promoAmount(d *model.Discount, subtotal decimal.Decimal, now time.Time) decimal.Decimal {
	if !d.UsableAt(now) {
		return decimal.Zero
	}
	if subtotal.LessThan(d.MinimumAmount) {
		return decimal.Zero
	}

	var amount decimal.Decimal
	switch d.Type {
	case model.DiscountPercentage:
		amount = subtotal.Mul(d.Value).Div(hundred)
	case model.DiscountFixed:
		amount = d.Value
	default:
		// buy_x_get_y carries no direct amount at settlement time
		return decimal.Zero
	}

	if amount.IsNegative() {
		return decimal.Zero
	}
	if d.MaximumDiscount != nil && amount.GreaterThan(*d.MaximumDiscount) {
		amount = *d.MaximumDiscount
	}
	return amount
}

// tierAmount evaluates the customer's membership discount on the original
// subtotal, independent of any promo code.
func tierAmount(tier *model.CustomerDiscount, subtotal decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	if !tier.Active || subtotal.LessThan(tier.MinimumPurchase) {
		return decimal.Zero, decimal.Zero
	}
	amount := subtotal.Mul(tier.DiscountPercentage).Div(hundred)
	if amount.IsNegative() {
		return decimal.Zero, decimal.Zero
	}
	if tier.MaximumDiscount != nil && amount.GreaterThan(*tier.MaximumDiscount) {
		amount = *tier.MaximumDiscount
	}
	return amount, tier.DiscountPercentage
}
