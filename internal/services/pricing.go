package services

import (
	"github.com/shopspring/decimal"

	"github.com/siwamsingh/bookstore-backend/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// PricedLine is one order line with its snapshot price and pre-discount
// total.
type PricedLine struct {
	ProductID   uint64
	Price       decimal.Decimal
	Quantity    int
	TotalAmount decimal.Decimal
}

// PriceBreakdown is the result of pricing a validated order.
type PriceBreakdown struct {
	Lines          []PricedLine
	GrossAmount    decimal.Decimal
	DiscountAmount decimal.Decimal
	NetAmount      decimal.Decimal
}

// PriceOrder computes per-line totals and the order totals. A coupon
// discounts only the line for its bound product; the discount is rounded to
// two decimal places where it is applied, and the final total is rounded to
// two decimal places again. Deterministic, no I/O.
func PriceOrder(lines []LineItem, coupon *domain.Coupon) PriceBreakdown {
	out := PriceBreakdown{
		Lines:          make([]PricedLine, 0, len(lines)),
		GrossAmount:    decimal.Zero,
		DiscountAmount: decimal.Zero,
	}

	for _, line := range lines {
		total := line.Product.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
		out.Lines = append(out.Lines, PricedLine{
			ProductID:   line.Product.ID,
			Price:       line.Product.Price,
			Quantity:    line.Quantity,
			TotalAmount: total,
		})

		contribution := total
		if coupon != nil && coupon.ProductID == line.Product.ID {
			discount := total.Mul(coupon.DiscountValue).Div(hundred).Round(2)
			out.DiscountAmount = discount
			contribution = total.Sub(discount)
		}
		out.GrossAmount = out.GrossAmount.Add(contribution)
	}

	out.NetAmount = out.GrossAmount.Round(2)
	return out
}
