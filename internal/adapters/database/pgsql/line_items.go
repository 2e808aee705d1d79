package pgsql

import (
	"context"

	"github.com/SscSPs/pos_reconciliation/internal/models"
	"github.com/jackc/pgx/v5"
)

const lineItemColumns = `owner_kind, owner_id, item_id, position, item_ref, name, quantity,
	buying_price, selling_price, product_currency, discount_percent`

func scanLineItem(row pgx.Row) (models.LineItem, error) {
	var m models.LineItem
	err := row.Scan(&m.OwnerKind, &m.OwnerID, &m.ItemID, &m.Position, &m.ItemRef, &m.Name, &m.Quantity,
		&m.BuyingPrice, &m.SellingPrice, &m.ProductCurrency, &m.DiscountPercent)
	return m, err
}

// loadLineItems returns the lines of every given owner, grouped by owner id.
func (s *txStore) loadLineItems(ctx context.Context, ownerKind string, ownerIDs ...string) (map[string][]models.LineItem, error) {
	out := make(map[string][]models.LineItem, len(ownerIDs))
	if len(ownerIDs) == 0 {
		return out, nil
	}
	rows, err := s.tx.Query(ctx, `
		SELECT `+lineItemColumns+`
		FROM line_items
		WHERE owner_kind = $1 AND owner_id = ANY($2)
		ORDER BY owner_id, position`, ownerKind, ownerIDs)
	if err != nil {
		return nil, mapError(err, "query line items")
	}
	defer rows.Close()
	for rows.Next() {
		m, err := scanLineItem(rows)
		if err != nil {
			return nil, mapError(err, "scan line item")
		}
		out[m.OwnerID] = append(out[m.OwnerID], m)
	}
	return out, mapError(rows.Err(), "iterate line items")
}

// replaceLineItems overwrites the lines of one owner.
func (s *txStore) replaceLineItems(ctx context.Context, ownerKind, ownerID string, items []models.LineItem) error {
	if err := s.deleteLineItems(ctx, ownerKind, ownerID); err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, m := range items {
		batch.Queue(`
			INSERT INTO line_items (`+lineItemColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			m.OwnerKind, m.OwnerID, m.ItemID, m.Position, m.ItemRef, m.Name, m.Quantity,
			m.BuyingPrice, m.SellingPrice, m.ProductCurrency, m.DiscountPercent)
	}
	br := s.tx.SendBatch(ctx, batch)
	for range items {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return mapError(err, "insert line item of "+ownerID)
		}
	}
	return mapError(br.Close(), "close line item batch")
}

func (s *txStore) deleteLineItems(ctx context.Context, ownerKind, ownerID string) error {
	_, err := s.tx.Exec(ctx, `DELETE FROM line_items WHERE owner_kind = $1 AND owner_id = $2`, ownerKind, ownerID)
	return mapError(err, "delete line items of "+ownerID)
}
