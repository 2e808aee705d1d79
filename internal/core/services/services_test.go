package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SscSPs/pos_reconciliation/internal/adapters/database/memory"
	"github.com/SscSPs/pos_reconciliation/internal/apperrors"
	"github.com/SscSPs/pos_reconciliation/internal/core/domain"
	portssvc "github.com/SscSPs/pos_reconciliation/internal/core/ports/services"
	"github.com/SscSPs/pos_reconciliation/internal/core/services"
	"github.com/SscSPs/pos_reconciliation/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock EventPublisher ---
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...domain.LedgerEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

var errPublish = errors.New("broker unavailable")

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func mustRate(usdToIQD string) domain.ExchangeRate {
	rate, err := domain.NewExchangeRate(dec(usdToIQD))
	if err != nil {
		panic(err)
	}
	return rate
}

func strPtr(s string) *string {
	return &s
}

// --- Test Suite ---
type LedgerServicesTestSuite struct {
	suite.Suite
	ctx       context.Context
	db        *memory.DB
	publisher *MockEventPublisher
	svc       *portssvc.ServiceContainer
}

func (suite *LedgerServicesTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.setup(memory.WithRate(mustRate("1440")))
}

func (suite *LedgerServicesTestSuite) setup(opts ...memory.Option) {
	suite.db = memory.NewDB(opts...)
	suite.publisher = new(MockEventPublisher)
	suite.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil).Maybe()
	suite.svc = services.NewServiceContainer(suite.db,
		services.WithPublisher(suite.publisher),
		services.WithClock(func() time.Time { return fixedNow }))
}

func (suite *LedgerServicesTestSuite) balance() domain.Balance {
	b, err := suite.svc.Reporting.GetBalance(suite.ctx)
	suite.Require().NoError(err)
	return b
}

func (suite *LedgerServicesTestSuite) creditSale(id string, items ...dto.LineItemRequest) (*domain.Sale, *domain.Debt) {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.SellingPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	sale, debt, err := suite.svc.Sale.RecordSale(suite.ctx, dto.CreateSaleRequest{
		ID: id, Currency: "USD", Total: total, Items: items, IsDebt: true,
	})
	suite.Require().NoError(err)
	suite.Require().NotNil(debt)
	return sale, debt
}

func usdLine(id, ref string, qty int, buy, sell string) dto.LineItemRequest {
	return dto.LineItemRequest{ID: id, ItemRef: ref, Quantity: qty, BuyingPrice: dec(buy), SellingPrice: dec(sell), ProductCurrency: "USD"}
}

// --- Exchange rate ---

func (suite *LedgerServicesTestSuite) TestExchangeRate_SetAndGet() {
	rate, err := suite.svc.ExchangeRate.SetCurrentRate(suite.ctx, dto.SetExchangeRateRequest{USDToIQD: dec("1310")})
	suite.Require().NoError(err)
	suite.True(rate.USDToIQD.Equal(dec("1310")))
	suite.True(rate.IQDToUSD.IsPositive())

	got, err := suite.svc.ExchangeRate.GetCurrentRate(suite.ctx)
	suite.Require().NoError(err)
	suite.True(got.USDToIQD.Equal(dec("1310")))
}

func (suite *LedgerServicesTestSuite) TestExchangeRate_RejectsNonPositive() {
	_, err := suite.svc.ExchangeRate.SetCurrentRate(suite.ctx, dto.SetExchangeRateRequest{USDToIQD: decimal.Zero})
	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *LedgerServicesTestSuite) TestExchangeRate_MissingRateBlocksSales() {
	suite.setup()
	_, err := suite.svc.ExchangeRate.GetCurrentRate(suite.ctx)
	suite.ErrorIs(err, apperrors.ErrMissingExchangeRate)

	_, _, err = suite.svc.Sale.RecordSale(suite.ctx, dto.CreateSaleRequest{
		Currency: "USD", Total: dec("10"), Items: []dto.LineItemRequest{usdLine("l1", "sku-1", 1, "5", "10")},
	})
	suite.ErrorIs(err, apperrors.ErrMissingExchangeRate)
	suite.True(suite.balance().USDBalance.IsZero())
}

func (suite *LedgerServicesTestSuite) TestSeedExchangeRate_OnlyWhenMissing() {
	suite.setup()
	seeded, err := services.SeedExchangeRate(suite.ctx, suite.db, dec("1500"))
	suite.Require().NoError(err)
	suite.True(seeded)

	seeded, err = services.SeedExchangeRate(suite.ctx, suite.db, dec("1600"))
	suite.Require().NoError(err)
	suite.False(seeded)

	rate, err := suite.svc.ExchangeRate.GetCurrentRate(suite.ctx)
	suite.Require().NoError(err)
	suite.True(rate.USDToIQD.Equal(dec("1500")))
}

// --- Sales ---

func (suite *LedgerServicesTestSuite) TestRecordSale_FreezesRateAndCreditsDrawer() {
	sale, debt, err := suite.svc.Sale.RecordSale(suite.ctx, dto.CreateSaleRequest{
		ID: "s1", Currency: "USD", Total: dec("20"), Items: []dto.LineItemRequest{usdLine("l1", "sku-1", 2, "6", "10")},
	})
	suite.Require().NoError(err)
	suite.Nil(debt)
	suite.True(sale.Rate.USDToIQD.Equal(dec("1440")))
	suite.True(suite.balance().USDBalance.Equal(dec("20")))

	_, err = suite.svc.ExchangeRate.SetCurrentRate(suite.ctx, dto.SetExchangeRateRequest{USDToIQD: dec("1500")})
	suite.Require().NoError(err)
	stored, _, err := suite.svc.Sale.GetSale(suite.ctx, "s1")
	suite.Require().NoError(err)
	suite.True(stored.Rate.USDToIQD.Equal(dec("1440")), "rate stays frozen")

	profit, err := suite.svc.Sale.ComputeProfit(suite.ctx, "s1")
	suite.Require().NoError(err)
	suite.True(profit.USD.Equal(dec("8")))

	suite.publisher.AssertCalled(suite.T(), "Publish", mock.Anything, mock.MatchedBy(func(events []domain.LedgerEvent) bool {
		return len(events) == 1 && events[0].Type == domain.EventSaleRecorded && events[0].RecordID == "s1"
	}))
}

func (suite *LedgerServicesTestSuite) TestRecordSale_CreditSaleLeavesDrawerAlone() {
	sale, debt := suite.creditSale("s1", usdLine("l1", "sku-1", 1, "60", "100"))
	suite.Equal(sale.ID, debt.SaleID)
	suite.True(suite.balance().USDBalance.IsZero())

	_, _, err := suite.svc.Sale.RecordSale(suite.ctx, dto.CreateSaleRequest{
		ID: "s1", Currency: "USD", Total: dec("100"), Items: []dto.LineItemRequest{usdLine("l1", "sku-1", 1, "60", "100")}, IsDebt: true,
	})
	suite.ErrorIs(err, apperrors.ErrDuplicate)
}

func (suite *LedgerServicesTestSuite) TestRecordSale_PublishFailureDoesNotUndoCommit() {
	suite.db = memory.NewDB(memory.WithRate(mustRate("1440")))
	suite.publisher = new(MockEventPublisher)
	suite.publisher.On("Publish", mock.Anything, mock.Anything).Return(errPublish).Once()
	suite.svc = services.NewServiceContainer(suite.db, services.WithPublisher(suite.publisher))

	_, _, err := suite.svc.Sale.RecordSale(suite.ctx, dto.CreateSaleRequest{
		ID: "s1", Currency: "USD", Total: dec("10"), Items: []dto.LineItemRequest{usdLine("l1", "sku-1", 1, "5", "10")},
	})
	suite.Require().NoError(err)
	_, _, err = suite.svc.Sale.GetSale(suite.ctx, "s1")
	suite.NoError(err)
	suite.publisher.AssertExpectations(suite.T())
}

// --- Payments ---

func (suite *LedgerServicesTestSuite) TestApplyPayment_ForcedIQDSettlesUSDDebt() {
	_, debt := suite.creditSale("s1", usdLine("l1", "sku-1", 1, "60", "100"))

	outcome, record, err := suite.svc.Payment.ApplyPayment(suite.ctx, domain.KindCustomerDebt, debt.ID, dto.ApplyPaymentRequest{
		USDAmount: decimal.Zero, IQDAmount: dec("144000"), ForcedCurrency: strPtr("IQD"),
	})
	suite.Require().NoError(err)
	suite.True(outcome.Settled)
	suite.True(outcome.AbsorbedIQD.Equal(dec("144000")))
	suite.True(outcome.OverpaymentIQD.IsZero())
	suite.True(outcome.NewRemaining.IsZero())
	suite.Equal(domain.IQD, *record.ForcedCurrency)
	suite.True(suite.balance().IQDBalance.Equal(dec("144000")))

	remaining, pos, err := suite.svc.Ledger.Remaining(suite.ctx, domain.KindCustomerDebt, debt.ID)
	suite.Require().NoError(err)
	suite.True(remaining.IsZero())
	suite.Require().NotNil(pos.PaidAt)
	suite.True(pos.PaidAt.Equal(fixedNow))

	_, _, err = suite.svc.Payment.ApplyPayment(suite.ctx, domain.KindCustomerDebt, debt.ID, dto.ApplyPaymentRequest{USDAmount: dec("1")})
	suite.ErrorIs(err, apperrors.ErrRecordAlreadySettled)
}

func (suite *LedgerServicesTestSuite) TestApplyPayment_CustomerDebtIgnoresLiveRateMoves() {
	_, debt := suite.creditSale("s1", usdLine("l1", "sku-1", 1, "60", "100"))

	_, _, err := suite.svc.Payment.ApplyPayment(suite.ctx, domain.KindCustomerDebt, debt.ID, dto.ApplyPaymentRequest{IQDAmount: dec("72000")})
	suite.Require().NoError(err)
	_, err = suite.svc.ExchangeRate.SetCurrentRate(suite.ctx, dto.SetExchangeRateRequest{USDToIQD: dec("1500")})
	suite.Require().NoError(err)

	remaining, _, err := suite.svc.Ledger.Remaining(suite.ctx, domain.KindCustomerDebt, debt.ID)
	suite.Require().NoError(err)
	suite.True(remaining.USD.Round(2).Equal(dec("50")), "valued at the rate of the last payment, got %s", remaining.USD)

	outcome, record, err := suite.svc.Payment.ApplyPayment(suite.ctx, domain.KindCustomerDebt, debt.ID, dto.ApplyPaymentRequest{USDAmount: remaining.USD})
	suite.Require().NoError(err)
	suite.True(outcome.Settled)
	suite.True(outcome.NewRemaining.IsZero())
	suite.True(outcome.OverpaymentUSD.IsZero())
	suite.True(record.Rate.USDToIQD.Equal(dec("1440")))
	suite.True(suite.balance().USDBalance.Equal(remaining.USD))
	suite.True(suite.balance().IQDBalance.Equal(dec("72000")))

	after, _, err := suite.svc.Ledger.Remaining(suite.ctx, domain.KindCustomerDebt, debt.ID)
	suite.Require().NoError(err)
	suite.True(after.IsZero())
}

func (suite *LedgerServicesTestSuite) TestApplyPayment_CompanyDebtUsesLiveRate() {
	cd, err := suite.svc.Ledger.CreateCompanyDebt(suite.ctx, dto.CreateCompanyDebtRequest{CompanyName: "Acme", Currency: "USD", Amount: dec("100")})
	suite.Require().NoError(err)
	_, err = suite.svc.ExchangeRate.SetCurrentRate(suite.ctx, dto.SetExchangeRateRequest{USDToIQD: dec("1250")})
	suite.Require().NoError(err)

	outcome, _, err := suite.svc.Payment.ApplyPayment(suite.ctx, domain.KindCompanyDebt, cd.ID, dto.ApplyPaymentRequest{IQDAmount: dec("62500")})
	suite.Require().NoError(err)
	suite.False(outcome.Settled)
	suite.True(outcome.NewRemaining.USD.Equal(dec("50")))
}

func (suite *LedgerServicesTestSuite) TestApplyPayment_OverpaymentNeverEntersDrawer() {
	_, debt := suite.creditSale("s1", usdLine("l1", "sku-1", 1, "60", "100"))

	outcome, _, err := suite.svc.Payment.ApplyPayment(suite.ctx, domain.KindCustomerDebt, debt.ID, dto.ApplyPaymentRequest{USDAmount: dec("250")})
	suite.Require().NoError(err)
	suite.True(outcome.AbsorbedUSD.Equal(dec("100")))
	suite.True(outcome.OverpaymentUSD.Equal(dec("150")))
	suite.True(outcome.Settled)
	suite.True(suite.balance().USDBalance.Equal(dec("100")))

	history, err := suite.svc.Payment.ListPaymentHistory(suite.ctx, domain.KindCustomerDebt, debt.ID)
	suite.Require().NoError(err)
	suite.Require().Len(history, 1)
	suite.True(history[0].OverpaymentUSD.Equal(dec("150")))
}

func (suite *LedgerServicesTestSuite) TestApplyPayment_RejectsEmptyAndNegativeTender() {
	_, debt := suite.creditSale("s1", usdLine("l1", "sku-1", 1, "60", "100"))
	_, _, err := suite.svc.Payment.ApplyPayment(suite.ctx, domain.KindCustomerDebt, debt.ID, dto.ApplyPaymentRequest{})
	suite.ErrorIs(err, apperrors.ErrInvalidAmount)
	_, _, err = suite.svc.Payment.ApplyPayment(suite.ctx, domain.KindCustomerDebt, debt.ID, dto.ApplyPaymentRequest{USDAmount: dec("-1")})
	suite.ErrorIs(err, apperrors.ErrInvalidAmount)

	history, err := suite.svc.Payment.ListPaymentHistory(suite.ctx, domain.KindCustomerDebt, debt.ID)
	suite.Require().NoError(err)
	suite.Empty(history)
}

func (suite *LedgerServicesTestSuite) TestApplyPayment_DustSettlesAndStaysSettled() {
	cd, err := suite.svc.Ledger.CreateCompanyDebt(suite.ctx, dto.CreateCompanyDebtRequest{
		CompanyName: "Acme", Currency: "USD", Amount: dec("100"),
	})
	suite.Require().NoError(err)

	// 0.1 USD left is 144 IQD at 1440, under the dust threshold.
	outcome, _, err := suite.svc.Payment.ApplyPayment(suite.ctx, domain.KindCompanyDebt, cd.ID, dto.ApplyPaymentRequest{USDAmount: dec("99.9")})
	suite.Require().NoError(err)
	suite.True(outcome.Settled)

	for i := 0; i < 2; i++ {
		remaining, _, err := suite.svc.Ledger.Remaining(suite.ctx, domain.KindCompanyDebt, cd.ID)
		suite.Require().NoError(err)
		suite.True(remaining.IsZero())
	}
	outstanding, err := suite.svc.Ledger.ListOutstanding(suite.ctx, domain.KindCompanyDebt)
	suite.Require().NoError(err)
	suite.Empty(outstanding)
}

func (suite *LedgerServicesTestSuite) TestApplyPayment_MultiCurrencyLoanPerSide() {
	loan, err := suite.svc.Ledger.CreatePersonalLoan(suite.ctx, dto.CreatePersonalLoanRequest{
		PersonName: "Sam", USDAmount: dec("100"), IQDAmount: dec("144000"),
	})
	suite.Require().NoError(err)

	outcome, _, err := suite.svc.Payment.ApplyPayment(suite.ctx, domain.KindPersonalLoan, loan.ID, dto.ApplyPaymentRequest{USDAmount: dec("150")})
	suite.Require().NoError(err)
	suite.True(outcome.AbsorbedUSD.Equal(dec("100")))
	suite.True(outcome.OverpaymentUSD.Equal(dec("50")))
	suite.False(outcome.Settled)
	suite.True(outcome.NewRemaining.IQD.Equal(dec("144000")))

	outstanding, err := suite.svc.Ledger.ListOutstanding(suite.ctx, domain.KindPersonalLoan)
	suite.Require().NoError(err)
	suite.Require().Len(outstanding, 1)
	suite.Equal("Sam", outstanding[0].Counterparty)
}

func (suite *LedgerServicesTestSuite) TestApplyPayment_UnknownRecord() {
	_, _, err := suite.svc.Payment.ApplyPayment(suite.ctx, domain.KindCompanyDebt, "missing", dto.ApplyPaymentRequest{USDAmount: dec("1")})
	suite.ErrorIs(err, apperrors.ErrNotFound)
	_, _, err = suite.svc.Payment.ApplyPayment(suite.ctx, domain.KindSale, "s1", dto.ApplyPaymentRequest{USDAmount: dec("1")})
	suite.ErrorIs(err, apperrors.ErrValidation)
}

// --- Returns ---

func (suite *LedgerServicesTestSuite) TestReturnSale_IQDItemInUSDSale() {
	suite.setup(memory.WithRate(mustRate("1250")), memory.WithStock(domain.StockLevel{ItemRef: "phone", OnHand: 4, MaxStock: 10}))
	_, _, err := suite.svc.Sale.RecordSale(suite.ctx, dto.CreateSaleRequest{
		ID: "s1", Currency: "USD", Total: dec("50"),
		Items: []dto.LineItemRequest{{ID: "l1", ItemRef: "phone", Quantity: 1, BuyingPrice: dec("37500"), SellingPrice: dec("62500"), ProductCurrency: "IQD"}},
	})
	suite.Require().NoError(err)
	suite.True(suite.balance().USDBalance.Equal(dec("50")))

	profit, err := suite.svc.Sale.ComputeProfit(suite.ctx, "s1")
	suite.Require().NoError(err)
	suite.True(profit.USD.Equal(dec("20")))

	result, err := suite.svc.Return.ReturnSale(suite.ctx, "s1")
	suite.Require().NoError(err)
	suite.True(result.Refund.Equal(dec("50")))
	suite.Equal(1, result.ReturnedQuantity)
	suite.True(result.RecordDeleted)
	suite.Empty(result.Shortfalls)
	suite.True(suite.balance().USDBalance.IsZero())

	level, err := suite.svc.Purchase.GetStock(suite.ctx, "phone")
	suite.Require().NoError(err)
	suite.Equal(5, level.OnHand)

	_, err = suite.svc.Return.ReturnSale(suite.ctx, "s1")
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *LedgerServicesTestSuite) TestReturnSaleItem_CreditOffsetsDebtFirst() {
	_, debt := suite.creditSale("s1", usdLine("l1", "sku-1", 2, "30", "50"))
	_, _, err := suite.svc.Payment.ApplyPayment(suite.ctx, domain.KindCustomerDebt, debt.ID, dto.ApplyPaymentRequest{USDAmount: dec("30")})
	suite.Require().NoError(err)

	result, err := suite.svc.Return.ReturnSaleItem(suite.ctx, "s1", "l1", 1)
	suite.Require().NoError(err)
	suite.True(result.Refund.Equal(dec("50")))
	suite.True(result.DebtOffset.Equal(dec("50")))
	suite.True(result.CashRefund.USD.IsZero())
	suite.False(result.RecordDeleted)
	suite.True(suite.balance().USDBalance.Equal(dec("30")))

	remaining, _, err := suite.svc.Ledger.Remaining(suite.ctx, domain.KindCustomerDebt, debt.ID)
	suite.Require().NoError(err)
	suite.True(remaining.USD.Equal(dec("20")))

	result, err = suite.svc.Return.ReturnSaleItem(suite.ctx, "s1", "l1", 1)
	suite.Require().NoError(err)
	suite.True(result.DebtOffset.Equal(dec("20")))
	suite.True(result.CashRefund.USD.Equal(dec("30")))
	suite.True(result.RecordDeleted)
	suite.True(suite.balance().USDBalance.IsZero())

	_, _, err = suite.svc.Sale.GetSale(suite.ctx, "s1")
	suite.ErrorIs(err, apperrors.ErrNotFound)
	_, _, err = suite.svc.Ledger.Remaining(suite.ctx, domain.KindCustomerDebt, debt.ID)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *LedgerServicesTestSuite) TestReturnSaleItem_RejectsBadQuantities() {
	_, _, err := suite.svc.Sale.RecordSale(suite.ctx, dto.CreateSaleRequest{
		ID: "s1", Currency: "USD", Total: dec("20"), Items: []dto.LineItemRequest{usdLine("l1", "sku-1", 2, "6", "10")},
	})
	suite.Require().NoError(err)

	_, err = suite.svc.Return.ReturnSaleItem(suite.ctx, "s1", "l1", 0)
	suite.ErrorIs(err, apperrors.ErrInvalidQuantity)
	_, err = suite.svc.Return.ReturnSaleItem(suite.ctx, "s1", "l1", 3)
	suite.ErrorIs(err, apperrors.ErrQuantityExceedsAvailable)
	_, err = suite.svc.Return.ReturnSaleItem(suite.ctx, "s1", "nope", 1)
	suite.ErrorIs(err, apperrors.ErrQuantityExceedsAvailable)
	suite.True(suite.balance().USDBalance.Equal(dec("20")))
}

func (suite *LedgerServicesTestSuite) TestReturnSaleItem_FullyReturnedLineRejected() {
	_, _, err := suite.svc.Sale.RecordSale(suite.ctx, dto.CreateSaleRequest{
		ID: "s1", Currency: "USD", Total: dec("25"),
		Items: []dto.LineItemRequest{usdLine("l1", "sku-1", 2, "6", "10"), usdLine("l2", "sku-2", 1, "3", "5")},
	})
	suite.Require().NoError(err)

	result, err := suite.svc.Return.ReturnSaleItem(suite.ctx, "s1", "l1", 2)
	suite.Require().NoError(err)
	suite.True(result.Refund.Equal(dec("20")))
	suite.False(result.RecordDeleted)
	suite.True(suite.balance().USDBalance.Equal(dec("5")))

	_, err = suite.svc.Return.ReturnSaleItem(suite.ctx, "s1", "l1", 1)
	suite.ErrorIs(err, apperrors.ErrQuantityExceedsAvailable)
	suite.True(suite.balance().USDBalance.Equal(dec("5")))

	sale, _, err := suite.svc.Sale.GetSale(suite.ctx, "s1")
	suite.Require().NoError(err)
	suite.Require().Len(sale.Items, 1)
	suite.Equal("l2", sale.Items[0].ID)
}

func (suite *LedgerServicesTestSuite) TestReturnSaleItem_DiscountedSaleRefundsAtMostCharged() {
	_, _, err := suite.svc.Sale.RecordSale(suite.ctx, dto.CreateSaleRequest{
		ID: "s1", Currency: "USD", Total: dec("90"), Items: []dto.LineItemRequest{usdLine("l1", "sku-1", 2, "30", "50")},
	})
	suite.Require().NoError(err)
	suite.True(suite.balance().USDBalance.Equal(dec("90")))

	first, err := suite.svc.Return.ReturnSaleItem(suite.ctx, "s1", "l1", 1)
	suite.Require().NoError(err)
	suite.True(first.Refund.Equal(dec("50")))

	second, err := suite.svc.Return.ReturnSaleItem(suite.ctx, "s1", "l1", 1)
	suite.Require().NoError(err)
	suite.True(second.Refund.Equal(dec("40")))
	suite.True(second.RecordDeleted)
	suite.True(suite.balance().USDBalance.IsZero())
}

func (suite *LedgerServicesTestSuite) TestReturnSaleItem_ClampedByStockCap() {
	suite.setup(memory.WithRate(mustRate("1440")), memory.WithStock(domain.StockLevel{ItemRef: "sku-1", OnHand: 9, MaxStock: 10}))
	_, _, err := suite.svc.Sale.RecordSale(suite.ctx, dto.CreateSaleRequest{
		ID: "s1", Currency: "USD", Total: dec("30"), Items: []dto.LineItemRequest{usdLine("l1", "sku-1", 3, "6", "10")},
	})
	suite.Require().NoError(err)

	result, err := suite.svc.Return.ReturnSaleItem(suite.ctx, "s1", "l1", 3)
	suite.Require().NoError(err)
	suite.Equal(1, result.ReturnedQuantity)
	suite.True(result.Refund.Equal(dec("10")))
	suite.Require().Len(result.Shortfalls, 1)
	suite.Equal(2, result.Shortfalls[0].Missing())

	sale, _, err := suite.svc.Sale.GetSale(suite.ctx, "s1")
	suite.Require().NoError(err)
	suite.Equal(2, sale.Items[0].Quantity)
	suite.True(sale.Total.Equal(dec("20")))
}

func (suite *LedgerServicesTestSuite) TestReturnSale_InsufficientDrawerRejectedAtomically() {
	suite.setup(memory.WithRate(mustRate("1440")), memory.WithStock(domain.StockLevel{ItemRef: "sku-1", OnHand: 1}))
	_, _, err := suite.svc.Sale.RecordSale(suite.ctx, dto.CreateSaleRequest{
		ID: "s1", Currency: "USD", Total: dec("10"), Items: []dto.LineItemRequest{usdLine("l1", "sku-1", 1, "6", "10")},
	})
	suite.Require().NoError(err)
	_, err = suite.svc.Purchase.RecordPurchase(suite.ctx, dto.CreatePurchaseRequest{ID: "p1", SupplierName: "Acme", Currency: "USD", Total: dec("10")})
	suite.Require().NoError(err)

	_, err = suite.svc.Return.ReturnSale(suite.ctx, "s1")
	suite.ErrorIs(err, apperrors.ErrNegativeBalance)

	level, err := suite.svc.Purchase.GetStock(suite.ctx, "sku-1")
	suite.Require().NoError(err)
	suite.Equal(1, level.OnHand, "stock untouched")
	_, _, err = suite.svc.Sale.GetSale(suite.ctx, "s1")
	suite.NoError(err)
}

// --- Purchases ---

func (suite *LedgerServicesTestSuite) TestRecordPurchase_NegativeBalanceRejected() {
	_, err := suite.svc.Purchase.RecordPurchase(suite.ctx, dto.CreatePurchaseRequest{
		ID: "p1", SupplierName: "Acme", Currency: "USD", Total: dec("10"),
		Items: []dto.LineItemRequest{usdLine("l1", "sku-1", 2, "5", "0")},
	})
	suite.ErrorIs(err, apperrors.ErrNegativeBalance)

	_, err = suite.svc.Purchase.GetPurchase(suite.ctx, "p1")
	suite.ErrorIs(err, apperrors.ErrNotFound)
	_, err = suite.svc.Purchase.GetStock(suite.ctx, "sku-1")
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *LedgerServicesTestSuite) TestPurchaseRoundTrip() {
	suite.setup(memory.WithRate(mustRate("1440")), memory.WithBalance(domain.Balance{USDBalance: dec("100"), IQDBalance: decimal.Zero}))
	_, err := suite.svc.Purchase.RecordPurchase(suite.ctx, dto.CreatePurchaseRequest{
		ID: "p1", SupplierName: "Acme", Currency: "USD", Total: dec("40"),
		Items: []dto.LineItemRequest{usdLine("l1", "sku-1", 4, "10", "0")},
	})
	suite.Require().NoError(err)
	suite.True(suite.balance().USDBalance.Equal(dec("60")))

	result, err := suite.svc.Return.ReturnPurchaseItem(suite.ctx, "p1", "l1", 1)
	suite.Require().NoError(err)
	suite.True(result.Refund.Equal(dec("10")))
	suite.False(result.RecordDeleted)

	result, err = suite.svc.Return.ReturnPurchase(suite.ctx, "p1")
	suite.Require().NoError(err)
	suite.True(result.Refund.Equal(dec("30")))
	suite.Equal(3, result.ReturnedQuantity)
	suite.True(suite.balance().USDBalance.Equal(dec("100")))

	level, err := suite.svc.Purchase.GetStock(suite.ctx, "sku-1")
	suite.Require().NoError(err)
	suite.Zero(level.OnHand)
}

func (suite *LedgerServicesTestSuite) TestSetStock_Validates() {
	_, err := suite.svc.Purchase.SetStock(suite.ctx, "sku-1", dto.SetStockRequest{OnHand: 5, MaxStock: 3})
	suite.ErrorIs(err, apperrors.ErrValidation)

	level, err := suite.svc.Purchase.SetStock(suite.ctx, "sku-1", dto.SetStockRequest{OnHand: 3, MaxStock: 5})
	suite.Require().NoError(err)
	suite.Equal(2, level.Room())
}

// --- Reporting ---

func (suite *LedgerServicesTestSuite) TestAggregate() {
	from := fixedNow.Add(-time.Hour)
	to := fixedNow.Add(time.Hour)

	_, _, err := suite.svc.Sale.RecordSale(suite.ctx, dto.CreateSaleRequest{
		ID: "cash", Currency: "USD", Total: dec("20"), Items: []dto.LineItemRequest{usdLine("l1", "sku-1", 2, "6", "10")},
	})
	suite.Require().NoError(err)
	suite.creditSale("credit", usdLine("l1", "sku-1", 1, "60", "100"))
	_, err = suite.svc.Ledger.CreateCompanyDebt(suite.ctx, dto.CreateCompanyDebtRequest{CompanyName: "Acme", Currency: "IQD", Amount: dec("72000")})
	suite.Require().NoError(err)

	report, err := suite.svc.Reporting.Aggregate(suite.ctx, from, to)
	suite.Require().NoError(err)
	suite.Equal(2, report.SaleCount)
	suite.Equal(1, report.DebtSaleCount)
	usd := report.Totals[domain.USD]
	suite.True(usd.Revenue.Equal(dec("120")))
	suite.True(usd.Profit.Equal(dec("48")))
	suite.True(usd.OutstandingCustomerDebt.Equal(dec("100")))
	suite.True(usd.CashBalance.Equal(dec("20")))
	suite.True(usd.Cost.Equal(dec("72")))
	suite.True(report.Totals[domain.IQD].OutstandingCompanyDebt.Equal(dec("72000")))
	suite.Zero(report.ReturnCount)

	_, err = suite.svc.Return.ReturnSaleItem(suite.ctx, "cash", "l1", 1)
	suite.Require().NoError(err)
	report, err = suite.svc.Reporting.Aggregate(suite.ctx, from, to)
	suite.Require().NoError(err)
	suite.Equal(1, report.ReturnCount)
	usd = report.Totals[domain.USD]
	suite.True(usd.Refunds.Equal(dec("10")))
	suite.True(usd.Cost.Equal(dec("66")))
	suite.True(usd.Revenue.Equal(dec("110")))
	suite.True(report.Totals[domain.IQD].Refunds.IsZero())

	empty, err := suite.svc.Reporting.Aggregate(suite.ctx, to, to.Add(time.Hour))
	suite.Require().NoError(err)
	suite.Zero(empty.SaleCount)
	suite.True(empty.Totals[domain.USD].OutstandingCustomerDebt.Equal(dec("100")), "outstanding is as of the snapshot")

	_, err = suite.svc.Reporting.Aggregate(suite.ctx, to, from)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *LedgerServicesTestSuite) TestConcurrentPaymentsSerialize() {
	cd, err := suite.svc.Ledger.CreateCompanyDebt(suite.ctx, dto.CreateCompanyDebtRequest{CompanyName: "Acme", Currency: "USD", Amount: dec("1000")})
	suite.Require().NoError(err)

	const payers = 10
	errs := make(chan error, payers*2)
	for i := 0; i < payers; i++ {
		go func() {
			_, _, err := suite.svc.Payment.ApplyPayment(suite.ctx, domain.KindCompanyDebt, cd.ID, dto.ApplyPaymentRequest{USDAmount: dec("100")})
			errs <- err
		}()
		go func() {
			_, err := suite.svc.Reporting.Aggregate(suite.ctx, fixedNow.Add(-time.Hour), fixedNow.Add(time.Hour))
			errs <- err
		}()
	}
	for i := 0; i < payers*2; i++ {
		suite.NoError(<-errs)
	}

	suite.True(suite.balance().USDBalance.Equal(dec("1000")))
	history, err := suite.svc.Payment.ListPaymentHistory(suite.ctx, domain.KindCompanyDebt, cd.ID)
	suite.Require().NoError(err)
	suite.Len(history, payers)
	remaining, pos, err := suite.svc.Ledger.Remaining(suite.ctx, domain.KindCompanyDebt, cd.ID)
	suite.Require().NoError(err)
	suite.True(remaining.IsZero())
	suite.NotNil(pos.PaidAt)
}

// --- Run Suite ---
func TestLedgerServices(t *testing.T) {
	suite.Run(t, new(LedgerServicesTestSuite))
}
