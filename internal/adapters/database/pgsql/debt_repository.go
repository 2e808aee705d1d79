package pgsql

import (
	"context"
	"fmt"

	"github.com/SscSPs/pos_reconciliation/internal/apperrors"
	"github.com/SscSPs/pos_reconciliation/internal/core/domain"
	"github.com/SscSPs/pos_reconciliation/internal/models"
	"github.com/SscSPs/pos_reconciliation/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
)

const paymentColumns = `payment_usd_amount, payment_iqd_amount, payment_rate_usd_to_iqd, payment_rate_iqd_to_usd, paid_at`

func paymentTargets(p *models.PaymentColumns) []any {
	return []any{&p.PaymentUSDAmount, &p.PaymentIQDAmount, &p.PaymentRateUSDToIQD, &p.PaymentRateIQDToUSD, &p.PaidAt}
}

func paymentValues(p models.PaymentColumns) []any {
	return []any{p.PaymentUSDAmount, p.PaymentIQDAmount, p.PaymentRateUSDToIQD, p.PaymentRateIQDToUSD, p.PaidAt}
}

// --- customer debts ---

const debtColumns = `debt_id, sale_id, ` + paymentColumns + `, created_at, last_updated_at`

func scanDebt(row pgx.Row) (domain.Debt, error) {
	var m models.Debt
	targets := append([]any{&m.DebtID, &m.SaleID}, paymentTargets(&m.PaymentColumns)...)
	targets = append(targets, &m.CreatedAt, &m.LastUpdatedAt)
	if err := row.Scan(targets...); err != nil {
		return domain.Debt{}, err
	}
	return mapping.ToDomainDebt(m), nil
}

func (s *txStore) LoadDebt(ctx context.Context, debtID string) (*domain.Debt, error) {
	debt, err := scanDebt(s.tx.QueryRow(ctx, `SELECT `+debtColumns+` FROM debts WHERE debt_id = $1`+s.forUpdate(), debtID))
	if err != nil {
		return nil, mapError(err, "load debt "+debtID)
	}
	return &debt, nil
}

func (s *txStore) LoadDebtBySale(ctx context.Context, saleID string) (*domain.Debt, error) {
	debt, err := scanDebt(s.tx.QueryRow(ctx, `SELECT `+debtColumns+` FROM debts WHERE sale_id = $1`+s.forUpdate(), saleID))
	if err != nil {
		return nil, mapError(err, "load debt of sale "+saleID)
	}
	return &debt, nil
}

func (s *txStore) ListDebts(ctx context.Context) ([]domain.Debt, error) {
	rows, err := s.tx.Query(ctx, `SELECT `+debtColumns+` FROM debts ORDER BY debt_id`)
	if err != nil {
		return nil, mapError(err, "list debts")
	}
	defer rows.Close()
	out := make([]domain.Debt, 0)
	for rows.Next() {
		debt, err := scanDebt(rows)
		if err != nil {
			return nil, mapError(err, "scan debt")
		}
		out = append(out, debt)
	}
	return out, mapError(rows.Err(), "iterate debts")
}

func (s *txStore) SaveDebt(ctx context.Context, debt domain.Debt) error {
	if err := s.writable(); err != nil {
		return err
	}
	m := mapping.ToModelDebt(debt)
	args := append([]any{m.DebtID, m.SaleID}, paymentValues(m.PaymentColumns)...)
	args = append(args, m.CreatedAt, m.LastUpdatedAt)
	_, err := s.tx.Exec(ctx, `
		INSERT INTO debts (`+debtColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (debt_id) DO UPDATE SET
			payment_usd_amount = EXCLUDED.payment_usd_amount,
			payment_iqd_amount = EXCLUDED.payment_iqd_amount,
			payment_rate_usd_to_iqd = EXCLUDED.payment_rate_usd_to_iqd,
			payment_rate_iqd_to_usd = EXCLUDED.payment_rate_iqd_to_usd,
			paid_at = EXCLUDED.paid_at,
			last_updated_at = EXCLUDED.last_updated_at`, args...)
	return mapError(err, "save debt "+debt.ID)
}

func (s *txStore) DeleteDebt(ctx context.Context, debtID string) error {
	if err := s.writable(); err != nil {
		return err
	}
	tag, err := s.tx.Exec(ctx, `DELETE FROM debts WHERE debt_id = $1`, debtID)
	if err != nil {
		return mapError(err, "delete debt "+debtID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: debt %s", apperrors.ErrNotFound, debtID)
	}
	return nil
}

// --- company debts ---

const companyDebtColumns = `company_debt_id, company_name, currency, amount, usd_amount, iqd_amount, ` +
	paymentColumns + `, created_at, last_updated_at`

func scanCompanyDebt(row pgx.Row) (models.CompanyDebt, error) {
	var m models.CompanyDebt
	targets := append([]any{&m.CompanyDebtID, &m.CompanyName, &m.Currency, &m.Amount, &m.USDAmount, &m.IQDAmount},
		paymentTargets(&m.PaymentColumns)...)
	targets = append(targets, &m.CreatedAt, &m.LastUpdatedAt)
	err := row.Scan(targets...)
	return m, err
}

func (s *txStore) LoadCompanyDebt(ctx context.Context, id string) (*domain.CompanyDebt, error) {
	m, err := scanCompanyDebt(s.tx.QueryRow(ctx, `SELECT `+companyDebtColumns+` FROM company_debts WHERE company_debt_id = $1`+s.forUpdate(), id))
	if err != nil {
		return nil, mapError(err, "load company debt "+id)
	}
	lines, err := s.loadLineItems(ctx, string(domain.KindCompanyDebt), id)
	if err != nil {
		return nil, err
	}
	debt := mapping.ToDomainCompanyDebt(m, lines[id])
	return &debt, nil
}

func (s *txStore) ListCompanyDebts(ctx context.Context) ([]domain.CompanyDebt, error) {
	rows, err := s.tx.Query(ctx, `SELECT `+companyDebtColumns+` FROM company_debts ORDER BY company_debt_id`)
	if err != nil {
		return nil, mapError(err, "list company debts")
	}
	var heads []models.CompanyDebt
	var ids []string
	for rows.Next() {
		m, err := scanCompanyDebt(rows)
		if err != nil {
			rows.Close()
			return nil, mapError(err, "scan company debt")
		}
		heads = append(heads, m)
		ids = append(ids, m.CompanyDebtID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "iterate company debts")
	}

	lines, err := s.loadLineItems(ctx, string(domain.KindCompanyDebt), ids...)
	if err != nil {
		return nil, err
	}
	out := make([]domain.CompanyDebt, 0, len(heads))
	for _, m := range heads {
		out = append(out, mapping.ToDomainCompanyDebt(m, lines[m.CompanyDebtID]))
	}
	return out, nil
}

func (s *txStore) SaveCompanyDebt(ctx context.Context, debt domain.CompanyDebt) error {
	if err := s.writable(); err != nil {
		return err
	}
	m, lines := mapping.ToModelCompanyDebt(debt)
	args := append([]any{m.CompanyDebtID, m.CompanyName, m.Currency, m.Amount, m.USDAmount, m.IQDAmount},
		paymentValues(m.PaymentColumns)...)
	args = append(args, m.CreatedAt, m.LastUpdatedAt)
	_, err := s.tx.Exec(ctx, `
		INSERT INTO company_debts (`+companyDebtColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (company_debt_id) DO UPDATE SET
			payment_usd_amount = EXCLUDED.payment_usd_amount,
			payment_iqd_amount = EXCLUDED.payment_iqd_amount,
			payment_rate_usd_to_iqd = EXCLUDED.payment_rate_usd_to_iqd,
			payment_rate_iqd_to_usd = EXCLUDED.payment_rate_iqd_to_usd,
			paid_at = EXCLUDED.paid_at,
			last_updated_at = EXCLUDED.last_updated_at`, args...)
	if err != nil {
		return mapError(err, "save company debt "+debt.ID)
	}
	return s.replaceLineItems(ctx, string(domain.KindCompanyDebt), debt.ID, lines)
}

// --- personal loans ---

const loanColumns = `loan_id, person_name, usd_amount, iqd_amount, notes, ` + paymentColumns + `, created_at, last_updated_at`

func scanLoan(row pgx.Row) (domain.PersonalLoan, error) {
	var m models.PersonalLoan
	targets := append([]any{&m.LoanID, &m.PersonName, &m.USDAmount, &m.IQDAmount, &m.Notes}, paymentTargets(&m.PaymentColumns)...)
	targets = append(targets, &m.CreatedAt, &m.LastUpdatedAt)
	if err := row.Scan(targets...); err != nil {
		return domain.PersonalLoan{}, err
	}
	return mapping.ToDomainPersonalLoan(m), nil
}

func (s *txStore) LoadPersonalLoan(ctx context.Context, id string) (*domain.PersonalLoan, error) {
	loan, err := scanLoan(s.tx.QueryRow(ctx, `SELECT `+loanColumns+` FROM personal_loans WHERE loan_id = $1`+s.forUpdate(), id))
	if err != nil {
		return nil, mapError(err, "load personal loan "+id)
	}
	return &loan, nil
}

func (s *txStore) ListPersonalLoans(ctx context.Context) ([]domain.PersonalLoan, error) {
	rows, err := s.tx.Query(ctx, `SELECT `+loanColumns+` FROM personal_loans ORDER BY loan_id`)
	if err != nil {
		return nil, mapError(err, "list personal loans")
	}
	defer rows.Close()
	out := make([]domain.PersonalLoan, 0)
	for rows.Next() {
		loan, err := scanLoan(rows)
		if err != nil {
			return nil, mapError(err, "scan personal loan")
		}
		out = append(out, loan)
	}
	return out, mapError(rows.Err(), "iterate personal loans")
}

func (s *txStore) SavePersonalLoan(ctx context.Context, loan domain.PersonalLoan) error {
	if err := s.writable(); err != nil {
		return err
	}
	m := mapping.ToModelPersonalLoan(loan)
	args := append([]any{m.LoanID, m.PersonName, m.USDAmount, m.IQDAmount, m.Notes}, paymentValues(m.PaymentColumns)...)
	args = append(args, m.CreatedAt, m.LastUpdatedAt)
	_, err := s.tx.Exec(ctx, `
		INSERT INTO personal_loans (`+loanColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (loan_id) DO UPDATE SET
			payment_usd_amount = EXCLUDED.payment_usd_amount,
			payment_iqd_amount = EXCLUDED.payment_iqd_amount,
			payment_rate_usd_to_iqd = EXCLUDED.payment_rate_usd_to_iqd,
			payment_rate_iqd_to_usd = EXCLUDED.payment_rate_iqd_to_usd,
			paid_at = EXCLUDED.paid_at,
			last_updated_at = EXCLUDED.last_updated_at`, args...)
	return mapError(err, "save personal loan "+loan.ID)
}
