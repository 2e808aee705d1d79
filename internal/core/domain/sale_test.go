package domain

import (
	"errors"
	"testing"

	"github.com/SscSPs/pos_reconciliation/internal/apperrors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestParseCurrency(t *testing.T) {
	c, err := ParseCurrency(" usd ")
	require.NoError(t, err)
	assert.Equal(t, USD, c)
	assert.Equal(t, IQD, c.Other())

	_, err = ParseCurrency("")
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
	_, err = ParseCurrency("EUR")
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
}

func TestLineItemNetSellingPrice(t *testing.T) {
	disc := d("25")
	item := LineItem{SellingPrice: d("80"), DiscountPercent: &disc}
	assert.True(t, d("60").Equal(item.NetSellingPrice()))

	item.DiscountPercent = nil
	assert.True(t, d("80").Equal(item.NetSellingPrice()))
}

func TestSaleValidate(t *testing.T) {
	rate, err := NewExchangeRate(d("1440"))
	require.NoError(t, err)
	valid := Sale{
		Currency: USD,
		Total:    d("10"),
		Rate:     rate,
		Items:    []LineItem{{ID: "l1", ItemRef: "p1", Quantity: 1, SellingPrice: d("10"), ProductCurrency: USD}},
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(s *Sale)
		target error
	}{
		{"missing currency", func(s *Sale) { s.Currency = "" }, apperrors.ErrValidation},
		{"missing rate", func(s *Sale) { s.Rate = ExchangeRate{} }, apperrors.ErrMissingExchangeRate},
		{"no items", func(s *Sale) { s.Items = nil }, apperrors.ErrValidation},
		{"zero quantity", func(s *Sale) { s.Items[0].Quantity = 0 }, apperrors.ErrValidation},
		{"item currency missing", func(s *Sale) { s.Items[0].ProductCurrency = "" }, apperrors.ErrValidation},
		{"discount over 100", func(s *Sale) { v := d("101"); s.Items[0].DiscountPercent = &v }, apperrors.ErrValidation},
		{"credit sale with split", func(s *Sale) { s.IsDebt = true; s.Split = &PaymentSplit{USDAmount: d("10")} }, apperrors.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid.Clone()
			tt.mutate(&s)
			assert.True(t, errors.Is(s.Validate(), tt.target))
		})
	}
}

func TestSaleCloneDoesNotAlias(t *testing.T) {
	disc := d("10")
	s := Sale{Items: []LineItem{{ID: "l1", Quantity: 3, DiscountPercent: &disc}}, Split: &PaymentSplit{USDAmount: d("5")}}
	c := s.Clone()
	c.Items[0].Quantity = 1
	*c.Items[0].DiscountPercent = d("50")
	c.Split.USDAmount = d("1")

	assert.Equal(t, 3, s.Items[0].Quantity)
	assert.True(t, d("10").Equal(*s.Items[0].DiscountPercent))
	assert.True(t, d("5").Equal(s.Split.USDAmount))
}

func TestCompanyDebtPosition(t *testing.T) {
	single := CompanyDebt{ID: "c1", CompanyName: "Acme", Currency: DebtIQD, Amount: d("50000")}
	require.NoError(t, single.Validate())
	pos := single.Position()
	assert.True(t, pos.OriginalIQD.Equal(d("50000")))
	assert.True(t, pos.OriginalUSD.IsZero())

	multi := CompanyDebt{ID: "c2", CompanyName: "Acme", Currency: DebtMulti, USDAmount: d("100")}
	require.NoError(t, multi.Validate())
	assert.True(t, multi.Position().OriginalUSD.Equal(d("100")))

	bad := CompanyDebt{CompanyName: "Acme", Currency: DebtMulti}
	assert.True(t, errors.Is(bad.Validate(), apperrors.ErrValidation))
}

func TestLastPaymentRateDerivesInverse(t *testing.T) {
	p := PaymentState{PaymentExchangeRateUSDToIQD: d("1500")}
	rate, ok := p.LastPaymentRate()
	require.True(t, ok)
	assert.True(t, rate.IQDToUSD.Mul(d("1500")).Round(8).Equal(d("1")))

	_, ok = PaymentState{}.LastPaymentRate()
	assert.False(t, ok)
}

func TestStockLevelRoom(t *testing.T) {
	assert.Equal(t, 2, StockLevel{OnHand: 8, MaxStock: 10}.Room())
	assert.Equal(t, 0, StockLevel{OnHand: 12, MaxStock: 10}.Room())
	assert.Greater(t, StockLevel{OnHand: 8}.Room(), 1000)
}
