package service

import (
	"github.com/freshcart-next/internal/models"

	"github.com/shopspring/decimal"
)

// taxRate 统一税率 10%
var taxRate = decimal.NewFromFloat(0.10)

// Round2 金额保留 2 位小数（四舍五入，仅在最终结果上调用一次）
func Round2(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(2)
}

// CartSubtotal 计算购物车小计（单价 × 数量逐行累加）
func CartSubtotal(items []models.CartItem) decimal.Decimal {
	subtotal := decimal.Zero
	for _, item := range items {
		line := item.UnitPrice.Decimal.Mul(decimal.NewFromInt(int64(item.Quantity)))
		subtotal = subtotal.Add(line)
	}
	return Round2(subtotal)
}

// SnapshotSubtotal 计算支付意图快照小计
func SnapshotSubtotal(items []models.CartSnapshotItem) decimal.Decimal {
	subtotal := decimal.Zero
	for _, item := range items {
		line := item.UnitPrice.Decimal.Mul(decimal.NewFromInt(int64(item.Quantity)))
		subtotal = subtotal.Add(line)
	}
	return Round2(subtotal)
}

// TaxAmount 计算税额 tax = round2(subtotal * 0.10)
func TaxAmount(subtotal decimal.Decimal) decimal.Decimal {
	return Round2(subtotal.Mul(taxRate))
}

// CheckoutTotal 计算应付总额 total = round2(subtotal + tax + deliveryFee)
func CheckoutTotal(subtotal, tax, deliveryFee decimal.Decimal) decimal.Decimal {
	return Round2(subtotal.Add(tax).Add(deliveryFee))
}
