package pricing

import "github.com/shopspring/decimal"

var half = decimal.New(5, -1)

// vatAmount is the only place the engine rounds: floor(subtotal × rate + 0.5).
func vatAmount(subtotal int64, rate decimal.Decimal) int64 {
	return decimal.NewFromInt(subtotal).Mul(rate).Add(half).Floor().IntPart()
}
