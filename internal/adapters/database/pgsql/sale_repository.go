package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/pos_reconciliation/internal/apperrors"
	"github.com/SscSPs/pos_reconciliation/internal/core/domain"
	"github.com/SscSPs/pos_reconciliation/internal/models"
	"github.com/SscSPs/pos_reconciliation/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
)

const saleColumns = `sale_id, currency, total, rate_usd_to_iqd, rate_iqd_to_usd, split_usd, split_iqd,
	is_debt, created_at, last_updated_at`

func scanSale(row pgx.Row) (models.Sale, error) {
	var m models.Sale
	err := row.Scan(&m.SaleID, &m.Currency, &m.Total, &m.RateUSDToIQD, &m.RateIQDToUSD, &m.SplitUSD, &m.SplitIQD,
		&m.IsDebt, &m.CreatedAt, &m.LastUpdatedAt)
	return m, err
}

func (s *txStore) LoadSale(ctx context.Context, saleID string) (*domain.Sale, error) {
	m, err := scanSale(s.tx.QueryRow(ctx, `SELECT `+saleColumns+` FROM sales WHERE sale_id = $1`+s.forUpdate(), saleID))
	if err != nil {
		return nil, mapError(err, "load sale "+saleID)
	}
	lines, err := s.loadLineItems(ctx, string(domain.KindSale), saleID)
	if err != nil {
		return nil, err
	}
	sale := mapping.ToDomainSale(m, lines[saleID])
	return &sale, nil
}

func (s *txStore) ListSales(ctx context.Context, from, to time.Time) ([]domain.Sale, error) {
	rows, err := s.tx.Query(ctx, `
		SELECT `+saleColumns+`
		FROM sales
		WHERE created_at >= $1 AND created_at < $2
		ORDER BY created_at, sale_id`, from, to)
	if err != nil {
		return nil, mapError(err, "list sales")
	}
	var heads []models.Sale
	var ids []string
	for rows.Next() {
		m, err := scanSale(rows)
		if err != nil {
			rows.Close()
			return nil, mapError(err, "scan sale")
		}
		heads = append(heads, m)
		ids = append(ids, m.SaleID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "iterate sales")
	}

	lines, err := s.loadLineItems(ctx, string(domain.KindSale), ids...)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Sale, 0, len(heads))
	for _, m := range heads {
		out = append(out, mapping.ToDomainSale(m, lines[m.SaleID]))
	}
	return out, nil
}

func (s *txStore) SaveSale(ctx context.Context, sale domain.Sale) error {
	if err := s.writable(); err != nil {
		return err
	}
	m, lines := mapping.ToModelSale(sale)
	_, err := s.tx.Exec(ctx, `
		INSERT INTO sales (`+saleColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (sale_id) DO UPDATE SET
			total = EXCLUDED.total,
			split_usd = EXCLUDED.split_usd,
			split_iqd = EXCLUDED.split_iqd,
			last_updated_at = EXCLUDED.last_updated_at`,
		m.SaleID, m.Currency, m.Total, m.RateUSDToIQD, m.RateIQDToUSD, m.SplitUSD, m.SplitIQD,
		m.IsDebt, m.CreatedAt, m.LastUpdatedAt)
	if err != nil {
		return mapError(err, "save sale "+sale.ID)
	}
	return s.replaceLineItems(ctx, string(domain.KindSale), sale.ID, lines)
}

func (s *txStore) DeleteSale(ctx context.Context, saleID string) error {
	if err := s.writable(); err != nil {
		return err
	}
	if err := s.deleteLineItems(ctx, string(domain.KindSale), saleID); err != nil {
		return err
	}
	tag, err := s.tx.Exec(ctx, `DELETE FROM sales WHERE sale_id = $1`, saleID)
	if err != nil {
		return mapError(err, "delete sale "+saleID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: sale %s", apperrors.ErrNotFound, saleID)
	}
	return nil
}
