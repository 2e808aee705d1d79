package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/SscSPs/pos_reconciliation/internal/apperrors"
	"github.com/SscSPs/pos_reconciliation/internal/core/domain"
	"github.com/shopspring/decimal"
)

func notFound(kind, id string) error {
	return fmt.Errorf("%w: %s %s", apperrors.ErrNotFound, kind, id)
}

func inWindow(t, from, to time.Time) bool {
	return !t.Before(from) && t.Before(to)
}

// --- sales ---

func (s *txStore) LoadSale(_ context.Context, saleID string) (*domain.Sale, error) {
	sale, ok := s.data.sales[saleID]
	if !ok {
		return nil, notFound("sale", saleID)
	}
	out := sale.Clone()
	return &out, nil
}

func (s *txStore) ListSales(_ context.Context, from, to time.Time) ([]domain.Sale, error) {
	out := make([]domain.Sale, 0)
	for _, sale := range s.data.sales {
		if inWindow(sale.CreatedAt, from, to) {
			out = append(out, sale.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *txStore) SaveSale(_ context.Context, sale domain.Sale) error {
	if err := s.writable(); err != nil {
		return err
	}
	s.data.sales[sale.ID] = sale.Clone()
	return nil
}

func (s *txStore) DeleteSale(_ context.Context, saleID string) error {
	if err := s.writable(); err != nil {
		return err
	}
	if _, ok := s.data.sales[saleID]; !ok {
		return notFound("sale", saleID)
	}
	delete(s.data.sales, saleID)
	return nil
}

// --- customer debts ---

func (s *txStore) LoadDebt(_ context.Context, debtID string) (*domain.Debt, error) {
	debt, ok := s.data.debts[debtID]
	if !ok {
		return nil, notFound("debt", debtID)
	}
	debt.PaidAt = cloneTime(debt.PaidAt)
	return &debt, nil
}

func (s *txStore) LoadDebtBySale(_ context.Context, saleID string) (*domain.Debt, error) {
	for _, debt := range s.data.debts {
		if debt.SaleID == saleID {
			debt.PaidAt = cloneTime(debt.PaidAt)
			return &debt, nil
		}
	}
	return nil, notFound("debt for sale", saleID)
}

func (s *txStore) ListDebts(_ context.Context) ([]domain.Debt, error) {
	out := make([]domain.Debt, 0, len(s.data.debts))
	for _, debt := range s.data.debts {
		debt.PaidAt = cloneTime(debt.PaidAt)
		out = append(out, debt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *txStore) SaveDebt(_ context.Context, debt domain.Debt) error {
	if err := s.writable(); err != nil {
		return err
	}
	for id, existing := range s.data.debts {
		if existing.SaleID == debt.SaleID && id != debt.ID {
			return fmt.Errorf("%w: sale %s already has debt %s", apperrors.ErrDuplicate, debt.SaleID, id)
		}
	}
	debt.PaidAt = cloneTime(debt.PaidAt)
	s.data.debts[debt.ID] = debt
	return nil
}

func (s *txStore) DeleteDebt(_ context.Context, debtID string) error {
	if err := s.writable(); err != nil {
		return err
	}
	if _, ok := s.data.debts[debtID]; !ok {
		return notFound("debt", debtID)
	}
	delete(s.data.debts, debtID)
	return nil
}

// --- company debts ---

func (s *txStore) LoadCompanyDebt(_ context.Context, id string) (*domain.CompanyDebt, error) {
	debt, ok := s.data.companyDebts[id]
	if !ok {
		return nil, notFound("company debt", id)
	}
	out := debt.Clone()
	return &out, nil
}

func (s *txStore) ListCompanyDebts(_ context.Context) ([]domain.CompanyDebt, error) {
	out := make([]domain.CompanyDebt, 0, len(s.data.companyDebts))
	for _, debt := range s.data.companyDebts {
		out = append(out, debt.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *txStore) SaveCompanyDebt(_ context.Context, debt domain.CompanyDebt) error {
	if err := s.writable(); err != nil {
		return err
	}
	s.data.companyDebts[debt.ID] = debt.Clone()
	return nil
}

// --- personal loans ---

func (s *txStore) LoadPersonalLoan(_ context.Context, id string) (*domain.PersonalLoan, error) {
	loan, ok := s.data.loans[id]
	if !ok {
		return nil, notFound("personal loan", id)
	}
	loan.PaidAt = cloneTime(loan.PaidAt)
	return &loan, nil
}

func (s *txStore) ListPersonalLoans(_ context.Context) ([]domain.PersonalLoan, error) {
	out := make([]domain.PersonalLoan, 0, len(s.data.loans))
	for _, loan := range s.data.loans {
		loan.PaidAt = cloneTime(loan.PaidAt)
		out = append(out, loan)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *txStore) SavePersonalLoan(_ context.Context, loan domain.PersonalLoan) error {
	if err := s.writable(); err != nil {
		return err
	}
	loan.PaidAt = cloneTime(loan.PaidAt)
	s.data.loans[loan.ID] = loan
	return nil
}

// --- purchases ---

func (s *txStore) LoadBuyingHistoryEntry(_ context.Context, id string) (*domain.BuyingHistoryEntry, error) {
	entry, ok := s.data.purchases[id]
	if !ok {
		return nil, notFound("purchase", id)
	}
	out := entry.Clone()
	return &out, nil
}

func (s *txStore) ListBuyingHistory(_ context.Context, from, to time.Time) ([]domain.BuyingHistoryEntry, error) {
	out := make([]domain.BuyingHistoryEntry, 0)
	for _, entry := range s.data.purchases {
		if inWindow(entry.CreatedAt, from, to) {
			out = append(out, entry.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *txStore) SaveBuyingHistoryEntry(_ context.Context, entry domain.BuyingHistoryEntry) error {
	if err := s.writable(); err != nil {
		return err
	}
	s.data.purchases[entry.ID] = entry.Clone()
	return nil
}

func (s *txStore) DeleteBuyingHistoryEntry(_ context.Context, id string) error {
	if err := s.writable(); err != nil {
		return err
	}
	if _, ok := s.data.purchases[id]; !ok {
		return notFound("purchase", id)
	}
	delete(s.data.purchases, id)
	return nil
}

// --- payment history ---

func (s *txStore) AppendPaymentHistory(_ context.Context, record domain.PaymentRecord) error {
	if err := s.writable(); err != nil {
		return err
	}
	s.data.history = append(s.data.history, record)
	return nil
}

func (s *txStore) ListPaymentHistory(_ context.Context, kind domain.RecordKind, recordID string) ([]domain.PaymentRecord, error) {
	out := make([]domain.PaymentRecord, 0)
	for _, r := range s.data.history {
		if r.RecordKind == kind && r.RecordID == recordID {
			out = append(out, r)
		}
	}
	return out, nil
}

// --- returns ---

func (s *txStore) AppendReturn(_ context.Context, record domain.ReturnRecord) error {
	if err := s.writable(); err != nil {
		return err
	}
	s.data.returns = append(s.data.returns, record)
	return nil
}

func (s *txStore) ListReturns(_ context.Context, from, to time.Time) ([]domain.ReturnRecord, error) {
	out := make([]domain.ReturnRecord, 0)
	for _, r := range s.data.returns {
		if inWindow(r.CreatedAt, from, to) {
			out = append(out, r)
		}
	}
	return out, nil
}

// --- balance ---

func (s *txStore) GetBalance(_ context.Context) (domain.Balance, error) {
	return s.data.balance, nil
}

func (s *txStore) AdjustBalance(_ context.Context, currency domain.Currency, delta decimal.Decimal) (domain.Balance, error) {
	if err := s.writable(); err != nil {
		return s.data.balance, err
	}
	if !currency.Valid() {
		return s.data.balance, fmt.Errorf("%w: unsupported currency %q", apperrors.ErrValidation, currency)
	}
	next := s.data.balance.Add(currency, delta)
	if next.Get(currency).IsNegative() {
		return s.data.balance, fmt.Errorf("%w: %s balance %s cannot absorb %s", apperrors.ErrNegativeBalance, currency, s.data.balance.Get(currency), delta)
	}
	s.data.balance = next
	return next, nil
}

// --- inventory ---

func (s *txStore) GetStock(_ context.Context, itemRef string) (domain.StockLevel, error) {
	level, ok := s.data.stock[itemRef]
	if !ok {
		return domain.StockLevel{}, notFound("item", itemRef)
	}
	return level, nil
}

func (s *txStore) SetStockLevel(_ context.Context, level domain.StockLevel) error {
	if err := s.writable(); err != nil {
		return err
	}
	s.data.stock[level.ItemRef] = level
	return nil
}

func (s *txStore) AddStock(_ context.Context, itemRef string, quantity int) error {
	if err := s.writable(); err != nil {
		return err
	}
	level := s.data.stock[itemRef]
	level.ItemRef = itemRef
	level.OnHand += quantity
	s.data.stock[itemRef] = level
	return nil
}

func (s *txStore) RestoreStock(_ context.Context, itemRef string, quantity int) (int, error) {
	if err := s.writable(); err != nil {
		return 0, err
	}
	level, ok := s.data.stock[itemRef]
	if !ok {
		// untracked items come back uncapped
		level = domain.StockLevel{ItemRef: itemRef}
	}
	n := min(quantity, level.Room())
	level.OnHand += n
	s.data.stock[itemRef] = level
	return n, nil
}

func (s *txStore) RemoveStock(_ context.Context, itemRef string, quantity int) (int, error) {
	if err := s.writable(); err != nil {
		return 0, err
	}
	level, ok := s.data.stock[itemRef]
	if !ok {
		return 0, nil
	}
	n := min(quantity, max(level.OnHand, 0))
	level.OnHand -= n
	s.data.stock[itemRef] = level
	return n, nil
}

// --- exchange rate ---

func (s *txStore) CurrentRate(_ context.Context) (domain.ExchangeRate, error) {
	if s.data.rate == nil {
		return domain.ExchangeRate{}, fmt.Errorf("%w: live rate is not set", apperrors.ErrMissingExchangeRate)
	}
	return *s.data.rate, nil
}

func (s *txStore) SetCurrentRate(_ context.Context, rate domain.ExchangeRate) error {
	if err := s.writable(); err != nil {
		return err
	}
	if err := rate.Validate(); err != nil {
		return err
	}
	s.data.rate = &rate
	return nil
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
