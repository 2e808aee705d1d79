package mapping

import (
	"testing"
	"time"

	"github.com/SscSPs/pos_reconciliation/internal/core/domain"
	"github.com/SscSPs/pos_reconciliation/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaleMapping_KeepsSplitAndLineOrder(t *testing.T) {
	pct := decimal.NewFromInt(10)
	sale := domain.Sale{
		ID:       "s1",
		Currency: domain.USD,
		Total:    decimal.NewFromInt(90),
		Rate:     domain.ExchangeRate{USDToIQD: decimal.NewFromInt(1250), IQDToUSD: decimal.RequireFromString("0.0008")},
		Items: []domain.LineItem{
			{ID: "b", ItemRef: "sku-2", Quantity: 1, ProductCurrency: domain.USD, DiscountPercent: &pct},
			{ID: "a", ItemRef: "sku-1", Quantity: 2, ProductCurrency: domain.IQD},
		},
		Split: &domain.PaymentSplit{USDAmount: decimal.NewFromInt(50), IQDAmount: decimal.Zero},
	}

	m, rows := ToModelSale(sale)
	require.Len(t, rows, 2)
	assert.Equal(t, 0, rows[0].Position)
	assert.Equal(t, "sale", rows[0].OwnerKind)
	assert.True(t, m.SplitIQD.Valid, "a zero side of a split is still stored")

	back := ToDomainSale(m, rows)
	require.NotNil(t, back.Split)
	assert.True(t, back.Split.USDAmount.Equal(decimal.NewFromInt(50)))
	assert.Equal(t, "b", back.Items[0].ID)
	require.NotNil(t, back.Items[0].DiscountPercent)
	assert.Nil(t, back.Items[1].DiscountPercent)
}

func TestSaleMapping_NoSplit(t *testing.T) {
	m, _ := ToModelSale(domain.Sale{ID: "s1", Currency: domain.IQD})
	assert.False(t, m.SplitUSD.Valid)
	assert.Nil(t, ToDomainSale(m, nil).Split)
}

func TestPaymentStateMapping_PaidAt(t *testing.T) {
	paid := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	debt := domain.Debt{ID: "d1", SaleID: "s1", PaymentState: domain.PaymentState{
		PaymentUSDAmount:            decimal.NewFromInt(5),
		PaymentExchangeRateUSDToIQD: decimal.NewFromInt(1440),
		PaidAt:                      &paid,
	}}
	back := ToDomainDebt(ToModelDebt(debt))
	require.NotNil(t, back.PaidAt)
	assert.True(t, back.PaidAt.Equal(paid))
	rate, ok := back.LastPaymentRate()
	assert.True(t, ok)
	assert.True(t, rate.USDToIQD.Equal(decimal.NewFromInt(1440)))
}

func TestPaymentHistoryMapping_ForcedCurrency(t *testing.T) {
	iqd := domain.IQD
	m := ToModelPaymentHistory(domain.PaymentRecord{ID: "p1", ForcedCurrency: &iqd})
	require.NotNil(t, m.ForcedCurrency)
	assert.Equal(t, "IQD", *m.ForcedCurrency)
	assert.Nil(t, ToDomainPaymentRecord(models.PaymentHistory{PaymentID: "p2"}).ForcedCurrency)
}

func TestReturnLogMapping_ItemIDIsNullable(t *testing.T) {
	whole := ToModelReturnLog(domain.ReturnRecord{ID: "r1", RecordKind: domain.KindSale, RecordID: "s1", RefundCurrency: domain.USD})
	assert.Nil(t, whole.ItemID)

	line := ToModelReturnLog(domain.ReturnRecord{ID: "r2", RecordKind: domain.KindSale, RecordID: "s1", ItemID: "l1", Quantity: 2})
	require.NotNil(t, line.ItemID)
	assert.Equal(t, "l1", ToDomainReturnRecord(line).ItemID)
	assert.Equal(t, 2, ToDomainReturnRecord(line).Quantity)
}
