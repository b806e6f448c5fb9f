package pricing

import (
	"testing"

	"github.com/chriskamgang/MyINSAM-Resto/internal/models"
	"github.com/chriskamgang/MyINSAM-Resto/internal/money"
	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

type line struct {
	price money.Amount
	qty   int
}

func (l line) LinePrice() money.Amount { return l.price }
func (l line) LineQuantity() int       { return l.qty }

func TestSubtotal(t *testing.T) {
	assert.Equal(t, money.Amount(0), Subtotal([]line(nil)))
	assert.Equal(t, money.Amount(7500), Subtotal([]line{{2000, 3}, {1500, 1}}))
}

func TestDeliveryFee(t *testing.T) {
	tests := []struct {
		name     string
		subtotal money.Amount
		coupon   models.CouponType
		want     money.Amount
	}{
		{name: "empty cart", subtotal: 0, want: 0},
		{name: "empty cart free delivery", subtotal: 0, coupon: models.CouponFreeDelivery, want: 0},
		{name: "base fee", subtotal: 6000, want: 500},
		{name: "percentage coupon keeps fee", subtotal: 6000, coupon: models.CouponPercentage, want: 500},
		{name: "free delivery", subtotal: 6000, coupon: models.CouponFreeDelivery, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeliveryFee(tt.subtotal, tt.coupon, DefaultDeliveryFee))
		})
	}
}

func TestDiscount(t *testing.T) {
	tests := []struct {
		name     string
		rule     Rule
		subtotal money.Amount
		want     money.Amount
	}{
		{name: "ten percent", rule: Rule{Type: models.CouponPercentage, Value: 10}, subtotal: 6000, want: 600},
		{name: "percentage capped", rule: Rule{Type: models.CouponPercentage, Value: 50, MaxDiscount: 1000}, subtotal: 6000, want: 1000},
		{name: "fixed", rule: Rule{Type: models.CouponFixed, Value: 1000}, subtotal: 6000, want: 1000},
		{name: "fixed above subtotal is not capped here", rule: Rule{Type: models.CouponFixed, Value: 1000}, subtotal: 200, want: 1000},
		{name: "free delivery", rule: Rule{Type: models.CouponFreeDelivery}, subtotal: 6000, want: 0},
		{name: "negative value clamps", rule: Rule{Type: models.CouponFixed, Value: -50}, subtotal: 6000, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Discount(tt.rule, tt.subtotal))
		})
	}
}

func TestCompute_Scenario(t *testing.T) {
	b := Compute(6000, nil, DefaultDeliveryFee)
	assert.Equal(t, Breakdown{Subtotal: 6000, DeliveryFee: 500, Discount: 0, Total: 6500}, b)

	b = Compute(6000, &models.Coupon{Type: models.CouponFixed, DiscountAmount: 1000}, DefaultDeliveryFee)
	assert.Equal(t, money.Amount(6000), b.Total)
}

func TestTotal_NeverNegative(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		subtotal := money.Amount(rapid.Int64Range(0, 1_000_000).Draw(t, "subtotal"))
		fee := money.Amount(rapid.Int64Range(0, 5_000).Draw(t, "fee"))
		discount := money.Amount(rapid.Int64Range(0, 2_000_000).Draw(t, "discount"))

		got := Total(subtotal, fee, discount)
		if got < 0 {
			t.Fatalf("Total(%d, %d, %d) = %d", subtotal, fee, discount, got)
		}
		if want := subtotal + fee - discount; want >= 0 && got != want {
			t.Fatalf("Total(%d, %d, %d) = %d, want %d", subtotal, fee, discount, got, want)
		}
	})
}
