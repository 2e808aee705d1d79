package reconciliation_test

import (
	"errors"
	"testing"
	"time"

	"github.com/SscSPs/pos_reconciliation/internal/apperrors"
	"github.com/SscSPs/pos_reconciliation/internal/core/domain"
	"github.com/SscSPs/pos_reconciliation/internal/core/reconciliation"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// rate1250 has an exactly representable inverse, which keeps expected values exact.
var rate1250 = domain.ExchangeRate{USDToIQD: d("1250"), IQDToUSD: d("0.0008")}

func rate1440(t *testing.T) domain.ExchangeRate {
	t.Helper()
	r, err := domain.NewExchangeRate(d("1440"))
	require.NoError(t, err)
	return r
}

func assertDec(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.True(t, d(want).Equal(got), append([]any{"want %s, got %s", want, got.String()}, msgAndArgs...)...)
}

func TestConvert(t *testing.T) {
	got, err := reconciliation.Convert(d("12.345"), domain.USD, domain.USD, domain.ExchangeRate{})
	require.NoError(t, err, "identity conversion must not consult the rate")
	assertDec(t, "12.345", got)

	got, err = reconciliation.Convert(d("2"), domain.USD, domain.IQD, rate1250)
	require.NoError(t, err)
	assertDec(t, "2500", got)

	got, err = reconciliation.Convert(d("2500"), domain.IQD, domain.USD, rate1250)
	require.NoError(t, err)
	assertDec(t, "2", got)

	_, err = reconciliation.Convert(d("1"), domain.USD, domain.IQD, domain.ExchangeRate{})
	assert.True(t, errors.Is(err, apperrors.ErrMissingExchangeRate))

	_, err = reconciliation.Convert(d("1"), domain.USD, domain.Currency("EUR"), rate1250)
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
}

func TestRatePolicy(t *testing.T) {
	sale := domain.Sale{ID: "s1", Rate: rate1250}

	rate, err := reconciliation.RateForCustomerDebt(domain.Debt{}, sale)
	require.NoError(t, err)
	assert.Equal(t, rate1250, rate, "falls back to the frozen sale rate")

	paid := domain.Debt{PaymentState: domain.PaymentState{PaymentExchangeRateUSDToIQD: d("1500"), PaymentExchangeRateIQDToUSD: d("0.0006666666666667")}}
	rate, err = reconciliation.RateForCustomerDebt(paid, sale)
	require.NoError(t, err)
	assertDec(t, "1500", rate.USDToIQD, "last payment rate wins")

	_, err = reconciliation.RateForCustomerDebt(domain.Debt{}, domain.Sale{})
	assert.True(t, errors.Is(err, apperrors.ErrMissingExchangeRate))

	live := domain.ExchangeRate{USDToIQD: d("1300"), IQDToUSD: d("0.000769")}
	rate, err = reconciliation.RateForLiveView(&live)
	require.NoError(t, err)
	assertDec(t, "1300", rate.USDToIQD)

	_, err = reconciliation.RateForLiveView(nil)
	assert.True(t, errors.Is(err, apperrors.ErrMissingExchangeRate))
}

func TestItemProfit(t *testing.T) {
	disc := d("10")
	tests := []struct {
		name     string
		item     domain.LineItem
		saleCur  domain.Currency
		want     string
		warnings int
	}{
		{
			name:    "same currency",
			item:    domain.LineItem{ItemRef: "a", Quantity: 3, BuyingPrice: d("4"), SellingPrice: d("6.5"), ProductCurrency: domain.USD},
			saleCur: domain.USD,
			want:    "7.5",
		},
		{
			name:    "iqd product sold in usd",
			item:    domain.LineItem{ItemRef: "b", Quantity: 2, BuyingPrice: d("37500"), SellingPrice: d("62500"), ProductCurrency: domain.IQD},
			saleCur: domain.USD,
			want:    "40",
		},
		{
			name:    "usd product sold in iqd with discount",
			item:    domain.LineItem{ItemRef: "c", Quantity: 1, BuyingPrice: d("10"), SellingPrice: d("20"), ProductCurrency: domain.USD, DiscountPercent: &disc},
			saleCur: domain.IQD,
			want:    "10000",
		},
		{
			name:     "zero prices warn instead of failing",
			item:     domain.LineItem{ItemRef: "d", Quantity: 5, ProductCurrency: domain.IQD},
			saleCur:  domain.IQD,
			want:     "0",
			warnings: 2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, warnings, err := reconciliation.ItemProfit(tt.item, tt.saleCur, rate1250)
			require.NoError(t, err)
			assertDec(t, tt.want, got)
			assert.Len(t, warnings, tt.warnings)
		})
	}
}

func TestSaleProfit_SingleCurrencyIdentity(t *testing.T) {
	sale := domain.Sale{
		ID:       "s1",
		Currency: domain.IQD,
		Rate:     rate1250,
		Items: []domain.LineItem{
			{ItemRef: "a", Quantity: 2, BuyingPrice: d("1000"), SellingPrice: d("1500"), ProductCurrency: domain.IQD},
			{ItemRef: "b", Quantity: 7, BuyingPrice: d("250"), SellingPrice: d("300"), ProductCurrency: domain.IQD},
		},
	}
	res, err := reconciliation.SaleProfit(sale)
	require.NoError(t, err)
	assertDec(t, "1350", res.Total)
	assertDec(t, "1350", res.IQD)
	assert.True(t, res.USD.IsZero())
	assert.Empty(t, res.Warnings)
}

func TestSaleProfit_SplitIsProportionalToTender(t *testing.T) {
	sale := domain.Sale{
		ID:       "s2",
		Currency: domain.USD,
		Rate:     rate1250,
		Items: []domain.LineItem{
			{ItemRef: "usd-item", Quantity: 1, BuyingPrice: d("10"), SellingPrice: d("20"), ProductCurrency: domain.USD},
			{ItemRef: "iqd-item", Quantity: 1, BuyingPrice: d("12500"), SellingPrice: d("25000"), ProductCurrency: domain.IQD},
		},
		Split: &domain.PaymentSplit{USDAmount: d("30"), IQDAmount: d("12500")},
	}
	res, err := reconciliation.SaleProfit(sale)
	require.NoError(t, err)
	assertDec(t, "20", res.Total)
	assertDec(t, "15", res.USD)
	assertDec(t, "6250", res.IQD)

	cost, err := reconciliation.SaleCost(sale)
	require.NoError(t, err)
	assertDec(t, "15", cost.USD)
	assertDec(t, "6250", cost.IQD)
}

func TestSaleCost_SingleCurrency(t *testing.T) {
	sale := domain.Sale{
		Currency: domain.IQD,
		Rate:     rate1250,
		Items: []domain.LineItem{
			{ItemRef: "a", Quantity: 2, BuyingPrice: d("1000"), ProductCurrency: domain.IQD},
			{ItemRef: "b", Quantity: 1, BuyingPrice: d("2"), ProductCurrency: domain.USD},
		},
	}
	cost, err := reconciliation.SaleCost(sale)
	require.NoError(t, err)
	assertDec(t, "4500", cost.IQD)
	assert.True(t, cost.USD.IsZero())

	sale.Rate = domain.ExchangeRate{}
	_, err = reconciliation.SaleCost(sale)
	assert.True(t, errors.Is(err, apperrors.ErrMissingExchangeRate))
}

func TestRemaining(t *testing.T) {
	paidAt := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	tests := []struct {
		name    string
		pos     domain.DebtPosition
		rate    domain.ExchangeRate
		wantUSD string
		wantIQD string
	}{
		{
			name:    "settled is zero whatever the fields say",
			pos:     domain.DebtPosition{Denomination: domain.DebtMulti, OriginalUSD: d("100"), PaymentState: domain.PaymentState{PaidAt: &paidAt}},
			rate:    rate1250,
			wantUSD: "0", wantIQD: "0",
		},
		{
			name:    "no payments returns original without a rate",
			pos:     domain.DebtPosition{Denomination: domain.DebtMulti, OriginalUSD: d("100"), OriginalIQD: d("50000")},
			wantUSD: "100", wantIQD: "50000",
		},
		{
			name: "single currency converts the opposite payment",
			pos: domain.DebtPosition{Denomination: domain.DebtUSD, OriginalUSD: d("100"),
				PaymentState: domain.PaymentState{PaymentUSDAmount: d("40"), PaymentIQDAmount: d("25000")}},
			rate:    rate1250,
			wantUSD: "40", wantIQD: "0",
		},
		{
			name: "dual currency subtracts per currency",
			pos: domain.DebtPosition{Denomination: domain.DebtMulti, OriginalUSD: d("100"), OriginalIQD: d("50000"),
				PaymentState: domain.PaymentState{PaymentUSDAmount: d("30"), PaymentIQDAmount: d("10000")}},
			rate:    rate1250,
			wantUSD: "70", wantIQD: "40000",
		},
		{
			name: "surplus on one side offsets the other",
			pos: domain.DebtPosition{Denomination: domain.DebtMulti, OriginalUSD: d("100"), OriginalIQD: d("50000"),
				PaymentState: domain.PaymentState{PaymentIQDAmount: d("100000")}},
			rate:    rate1250,
			wantUSD: "60", wantIQD: "0",
		},
		{
			name: "overpayment clamps to zero",
			pos: domain.DebtPosition{Denomination: domain.DebtIQD, OriginalIQD: d("10000"),
				PaymentState: domain.PaymentState{PaymentIQDAmount: d("20000")}},
			rate:    rate1250,
			wantUSD: "0", wantIQD: "0",
		},
		{
			name: "dust below 250 iqd is zero",
			pos: domain.DebtPosition{Denomination: domain.DebtIQD, OriginalIQD: d("10000"),
				PaymentState: domain.PaymentState{PaymentIQDAmount: d("9800")}},
			rate:    rate1250,
			wantUSD: "0", wantIQD: "0",
		},
		{
			name: "usd dust is valued in iqd",
			pos: domain.DebtPosition{Denomination: domain.DebtUSD, OriginalUSD: d("10"),
				PaymentState: domain.PaymentState{PaymentUSDAmount: d("9.9")}},
			rate:    rate1250,
			wantUSD: "0", wantIQD: "0",
		},
		{
			name: "just above dust is kept",
			pos: domain.DebtPosition{Denomination: domain.DebtUSD, OriginalUSD: d("10"),
				PaymentState: domain.PaymentState{PaymentUSDAmount: d("9.7")}},
			rate:    rate1250,
			wantUSD: "0.3", wantIQD: "0",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := reconciliation.Remaining(tt.pos, tt.rate)
			require.NoError(t, err)
			assertDec(t, tt.wantUSD, got.USD, "usd")
			assertDec(t, tt.wantIQD, got.IQD, "iqd")

			again, err := reconciliation.Remaining(tt.pos, tt.rate)
			require.NoError(t, err)
			assert.Equal(t, got, again, "remaining must be a pure function")
		})
	}
}

func TestRemaining_MissingRateWithPayments(t *testing.T) {
	pos := domain.DebtPosition{Denomination: domain.DebtUSD, OriginalUSD: d("10"), PaymentState: domain.PaymentState{PaymentIQDAmount: d("1")}}
	_, err := reconciliation.Remaining(pos, domain.ExchangeRate{})
	assert.True(t, errors.Is(err, apperrors.ErrMissingExchangeRate))
}

func TestApplyPayment_ExactAmountSettles(t *testing.T) {
	now := time.Now()
	pos := domain.DebtPosition{Kind: domain.KindCustomerDebt, ID: "d1", Denomination: domain.DebtUSD, OriginalUSD: d("100")}

	out, err := reconciliation.ApplyPayment(pos, domain.Tender{USD: d("100")}, nil, rate1250, now)
	require.NoError(t, err)
	assert.True(t, out.Settled)
	require.NotNil(t, out.Position.PaidAt)
	assert.True(t, out.NewRemaining.IsZero())
	assertDec(t, "100", out.AbsorbedUSD)
	assert.False(t, out.HasOverpayment())
	assert.Nil(t, pos.PaidAt, "input position is not modified")

	_, err = reconciliation.ApplyPayment(out.Position, domain.Tender{USD: d("1")}, nil, rate1250, now)
	assert.True(t, errors.Is(err, apperrors.ErrRecordAlreadySettled))
}

func TestApplyPayment_ForcedIQDSettlesUSDDebt(t *testing.T) {
	rate := rate1440(t)
	forced := domain.IQD
	pos := domain.DebtPosition{Kind: domain.KindCompanyDebt, ID: "c1", Denomination: domain.DebtMulti, OriginalUSD: d("100"), OriginalIQD: d("0")}

	out, err := reconciliation.ApplyPayment(pos, domain.Tender{IQD: d("144000")}, &forced, rate, time.Now())
	require.NoError(t, err)
	assert.True(t, out.Settled)
	assert.True(t, out.NewRemaining.IsZero())
	assertDec(t, "144000", out.AbsorbedIQD)
	assert.True(t, out.AbsorbedUSD.IsZero())
	assert.False(t, out.HasOverpayment())
	assertDec(t, "1440", out.Position.PaymentExchangeRateUSDToIQD)
}

func TestApplyPayment_PerCurrencyOverpayment(t *testing.T) {
	pos := domain.DebtPosition{Kind: domain.KindPersonalLoan, ID: "l1", Denomination: domain.DebtMulti, OriginalUSD: d("100"), OriginalIQD: d("50000")}

	out, err := reconciliation.ApplyPayment(pos, domain.Tender{USD: d("150"), IQD: d("20000")}, nil, rate1250, time.Now())
	require.NoError(t, err)
	assertDec(t, "100", out.AbsorbedUSD)
	assertDec(t, "20000", out.AbsorbedIQD)
	assertDec(t, "50", out.OverpaymentUSD)
	assertDec(t, "0", out.OverpaymentIQD)
	assertDec(t, "0", out.NewRemaining.USD)
	assertDec(t, "30000", out.NewRemaining.IQD)
	assert.False(t, out.Settled)
}

func TestApplyPayment_BlendedTenderOnSingleCurrencyDebt(t *testing.T) {
	pos := domain.DebtPosition{Kind: domain.KindCustomerDebt, ID: "d2", Denomination: domain.DebtUSD, OriginalUSD: d("100")}
	tender := domain.Tender{USD: d("60"), IQD: d("100000")}

	out, err := reconciliation.ApplyPayment(pos, tender, nil, rate1250, time.Now())
	require.NoError(t, err)
	assert.True(t, out.Settled)
	assert.True(t, out.AbsorbedUSD.Add(out.OverpaymentUSD).Equal(tender.USD))
	assert.True(t, out.AbsorbedIQD.Add(out.OverpaymentIQD).Equal(tender.IQD))

	absorbedValue := out.AbsorbedUSD.Add(out.AbsorbedIQD.Mul(rate1250.IQDToUSD))
	assert.InDelta(t, 100.0, absorbedValue.InexactFloat64(), 1e-9, "only what was owed is absorbed")
}

func TestApplyPayment_PartialThenRest(t *testing.T) {
	pos := domain.DebtPosition{Kind: domain.KindCompanyDebt, ID: "c2", Denomination: domain.DebtIQD, OriginalIQD: d("100000")}

	first, err := reconciliation.ApplyPayment(pos, domain.Tender{IQD: d("30000")}, nil, rate1250, time.Now())
	require.NoError(t, err)
	assert.False(t, first.Settled)
	assertDec(t, "70000", first.NewRemaining.IQD)

	second, err := reconciliation.ApplyPayment(first.Position, domain.Tender{USD: d("56")}, nil, rate1250, time.Now())
	require.NoError(t, err)
	assert.True(t, second.Settled)
	assertDec(t, "56", second.AbsorbedUSD)
	assertDec(t, "30000", second.Position.PaymentIQDAmount)
	assertDec(t, "56", second.Position.PaymentUSDAmount)
}

func TestApplyPayment_Rejections(t *testing.T) {
	pos := domain.DebtPosition{Denomination: domain.DebtUSD, OriginalUSD: d("10")}
	bad := domain.Currency("EUR")
	tests := []struct {
		name   string
		tender domain.Tender
		forced *domain.Currency
		rate   domain.ExchangeRate
		target error
	}{
		{"negative", domain.Tender{USD: d("-1")}, nil, rate1250, apperrors.ErrInvalidAmount},
		{"nothing tendered", domain.Tender{}, nil, rate1250, apperrors.ErrInvalidAmount},
		{"missing rate", domain.Tender{USD: d("1")}, nil, domain.ExchangeRate{}, apperrors.ErrMissingExchangeRate},
		{"bad forced currency", domain.Tender{USD: d("1")}, &bad, rate1250, apperrors.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := reconciliation.ApplyPayment(pos, tt.tender, tt.forced, tt.rate, time.Now())
			assert.True(t, errors.Is(err, tt.target), "got %v", err)
		})
	}
}

func TestRefunds(t *testing.T) {
	sale := domain.Sale{
		ID:       "s3",
		Currency: domain.USD,
		Total:    d("45"),
		Rate:     rate1250,
		Items: []domain.LineItem{
			{ID: "l1", ItemRef: "a", Quantity: 2, SellingPrice: d("10"), ProductCurrency: domain.USD},
			{ID: "l2", ItemRef: "b", Quantity: 1, SellingPrice: d("37500"), ProductCurrency: domain.IQD},
		},
	}

	line, err := reconciliation.SaleLineRefund(sale.Items[1], 1, sale)
	require.NoError(t, err)
	assertDec(t, "30", line)

	whole, err := reconciliation.WholeSaleRefund(sale)
	require.NoError(t, err)
	assertDec(t, "45", whole, "capped at the amount charged")

	item, err := reconciliation.SaleItemRefund(sale.Items[1], 1, sale)
	require.NoError(t, err)
	assertDec(t, "30", item)
	sale.Total = d("20")
	item, err = reconciliation.SaleItemRefund(sale.Items[1], 1, sale)
	require.NoError(t, err)
	assertDec(t, "20", item, "capped at what is still charged")

	entry := domain.BuyingHistoryEntry{Currency: domain.IQD, Total: d("30000"), Rate: rate1250,
		Items: []domain.LineItem{{ItemRef: "a", Quantity: 4, BuyingPrice: d("5"), ProductCurrency: domain.USD}}}
	p, err := reconciliation.PurchaseLineRefund(entry.Items[0], 3, entry)
	require.NoError(t, err)
	assertDec(t, "18750", p)
	wp, err := reconciliation.WholePurchaseRefund(entry)
	require.NoError(t, err)
	assertDec(t, "25000", wp)
}

func TestAllocateCashSaleRefund(t *testing.T) {
	plain := domain.Sale{Currency: domain.IQD, Rate: rate1250}
	alloc, err := reconciliation.AllocateCashSaleRefund(plain, d("5000"))
	require.NoError(t, err)
	assertDec(t, "5000", alloc.Cash.IQD)
	assert.True(t, alloc.Cash.USD.IsZero())

	split := domain.Sale{Currency: domain.USD, Rate: rate1250, Split: &domain.PaymentSplit{USDAmount: d("30"), IQDAmount: d("12500")}}
	alloc, err = reconciliation.AllocateCashSaleRefund(split, d("20"))
	require.NoError(t, err)
	assertDec(t, "15", alloc.Cash.USD)
	assertDec(t, "6250", alloc.Cash.IQD)
}

func TestAllocateCreditSaleRefund(t *testing.T) {
	payments := domain.PaymentState{PaymentUSDAmount: d("50")}

	alloc, err := reconciliation.AllocateCreditSaleRefund(d("30"), d("20"), domain.USD, payments, rate1250, false)
	require.NoError(t, err)
	assertDec(t, "20", alloc.DebtOffset)
	assertDec(t, "10", alloc.Cash.USD)

	alloc, err = reconciliation.AllocateCreditSaleRefund(d("15"), d("20"), domain.USD, payments, rate1250, false)
	require.NoError(t, err)
	assertDec(t, "15", alloc.DebtOffset)
	assert.True(t, alloc.Cash.USD.IsZero(), "refund below the outstanding debt pays nothing out")

	mixed := domain.PaymentState{PaymentUSDAmount: d("20"), PaymentIQDAmount: d("25000")}
	alloc, err = reconciliation.AllocateCreditSaleRefund(d("100"), d("60"), domain.USD, mixed, rate1250, true)
	require.NoError(t, err)
	assertDec(t, "20", alloc.Cash.USD)
	assertDec(t, "25000", alloc.Cash.IQD)
}
