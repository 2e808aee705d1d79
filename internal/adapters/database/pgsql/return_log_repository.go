package pgsql

import (
	"context"
	"time"

	"github.com/SscSPs/pos_reconciliation/internal/core/domain"
	"github.com/SscSPs/pos_reconciliation/internal/models"
	"github.com/SscSPs/pos_reconciliation/internal/utils/mapping"
)

const returnLogColumns = `return_id, record_kind, record_id, item_id, quantity, refund, refund_currency, created_at`

func (s *txStore) AppendReturn(ctx context.Context, record domain.ReturnRecord) error {
	if err := s.writable(); err != nil {
		return err
	}
	m := mapping.ToModelReturnLog(record)
	_, err := s.tx.Exec(ctx, `
		INSERT INTO return_log (`+returnLogColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		m.ReturnID, m.RecordKind, m.RecordID, m.ItemID, m.Quantity, m.Refund, m.RefundCurrency, m.CreatedAt)
	return mapError(err, "append return "+record.ID)
}

func (s *txStore) ListReturns(ctx context.Context, from, to time.Time) ([]domain.ReturnRecord, error) {
	rows, err := s.tx.Query(ctx, `
		SELECT `+returnLogColumns+`
		FROM return_log
		WHERE created_at >= $1 AND created_at < $2
		ORDER BY seq`, from, to)
	if err != nil {
		return nil, mapError(err, "list returns")
	}
	defer rows.Close()
	out := make([]domain.ReturnRecord, 0)
	for rows.Next() {
		var m models.ReturnLog
		if err := rows.Scan(&m.ReturnID, &m.RecordKind, &m.RecordID, &m.ItemID, &m.Quantity, &m.Refund, &m.RefundCurrency, &m.CreatedAt); err != nil {
			return nil, mapError(err, "scan return log")
		}
		out = append(out, mapping.ToDomainReturnRecord(m))
	}
	return out, mapError(rows.Err(), "iterate return log")
}
