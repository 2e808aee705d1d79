package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SscSPs/pos_reconciliation/internal/apperrors"
	"github.com/SscSPs/pos_reconciliation/internal/core/domain"
	portsrepo "github.com/SscSPs/pos_reconciliation/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/pos_reconciliation/internal/core/ports/services"
	"github.com/SscSPs/pos_reconciliation/internal/dto"
	"github.com/google/uuid"
)

// purchaseService records purchases and manages stock levels.
type purchaseService struct {
	BaseService
}

// NewPurchaseService creates a new PurchaseService.
func NewPurchaseService(base BaseService) portssvc.PurchaseSvcFacade {
	return &purchaseService{BaseService: base}
}

// Ensure purchaseService implements the portssvc.PurchaseSvcFacade interface
var _ portssvc.PurchaseSvcFacade = (*purchaseService)(nil)

func stockLockKey(itemRef string) string {
	return "stock:" + itemRef
}

// RecordPurchase stores a purchase, pays it out of the drawer and adds its lines to stock.
func (s *purchaseService) RecordPurchase(ctx context.Context, req dto.CreatePurchaseRequest) (*domain.BuyingHistoryEntry, error) {
	cur, err := domain.ParseCurrency(req.Currency)
	if err != nil {
		return nil, err
	}
	items, err := dto.ToDomainLineItems(req.Items)
	if err != nil {
		return nil, err
	}
	now := s.now()
	entry := domain.BuyingHistoryEntry{
		ID:           req.ID,
		SupplierName: req.SupplierName,
		Currency:     cur,
		Total:        req.Total,
		Items:        items,
		AuditFields:  domain.AuditFields{CreatedAt: now, LastUpdatedAt: now},
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if req.CreatedAt != nil {
		entry.CreatedAt = req.CreatedAt.UTC()
	}

	err = s.mutate(ctx, "record_purchase", []string{domain.LockKey(domain.KindPurchase, entry.ID)}, func(ctx context.Context, store portsrepo.Store) error {
		rate, err := store.CurrentRate(ctx)
		if err != nil {
			return err
		}
		entry.Rate = rate
		if err := entry.Validate(); err != nil {
			return err
		}
		if _, err := store.LoadBuyingHistoryEntry(ctx, entry.ID); err == nil {
			return fmt.Errorf("%w: purchase %s", apperrors.ErrDuplicate, entry.ID)
		} else if !errors.Is(err, apperrors.ErrNotFound) {
			return err
		}

		var cash domain.BalanceDelta
		cash.Add(entry.Currency, entry.Total.Neg())
		if err := adjustDrawer(ctx, store, cash); err != nil {
			return err
		}
		for _, item := range entry.Items {
			if err := store.AddStock(ctx, item.ItemRef, item.Quantity); err != nil {
				return err
			}
		}
		return store.SaveBuyingHistoryEntry(ctx, entry)
	})
	if err != nil {
		s.logFailure(ctx, err, "Failed to record purchase", slog.String("purchase_id", entry.ID))
		return nil, fmt.Errorf("failed to record purchase: %w", err)
	}

	s.LogInfo(ctx, "Purchase recorded",
		slog.String("purchase_id", entry.ID),
		slog.String("supplier", entry.SupplierName),
		slog.String("currency", string(entry.Currency)),
		slog.String("total", entry.Total.String()))
	s.publish(ctx, domain.NewLedgerEvent(domain.EventPurchaseRecorded, domain.KindPurchase, entry.ID, entry))
	return &entry, nil
}

// GetPurchase retrieves a purchase by id.
func (s *purchaseService) GetPurchase(ctx context.Context, id string) (*domain.BuyingHistoryEntry, error) {
	var entry *domain.BuyingHistoryEntry
	err := s.read(ctx, func(ctx context.Context, store portsrepo.Store) error {
		var err error
		entry, err = store.LoadBuyingHistoryEntry(ctx, id)
		return err
	})
	return entry, err
}

// GetStock returns the stock level of an item.
func (s *purchaseService) GetStock(ctx context.Context, itemRef string) (domain.StockLevel, error) {
	var level domain.StockLevel
	err := s.read(ctx, func(ctx context.Context, store portsrepo.Store) error {
		var err error
		level, err = store.GetStock(ctx, itemRef)
		return err
	})
	return level, err
}

// SetStock replaces an item's on-hand count and cap. A cap below the on-hand count is rejected.
func (s *purchaseService) SetStock(ctx context.Context, itemRef string, req dto.SetStockRequest) (domain.StockLevel, error) {
	if itemRef == "" {
		return domain.StockLevel{}, apperrors.NewValidationError("item reference is required")
	}
	if req.OnHand < 0 || req.MaxStock < 0 {
		return domain.StockLevel{}, apperrors.NewValidationError("stock levels must not be negative")
	}
	if req.MaxStock > 0 && req.OnHand > req.MaxStock {
		return domain.StockLevel{}, apperrors.NewValidationError(fmt.Sprintf("on-hand %d exceeds max stock %d", req.OnHand, req.MaxStock))
	}
	level := domain.StockLevel{ItemRef: itemRef, OnHand: req.OnHand, MaxStock: req.MaxStock}
	err := s.mutate(ctx, "set_stock", []string{stockLockKey(itemRef)}, func(ctx context.Context, store portsrepo.Store) error {
		return store.SetStockLevel(ctx, level)
	})
	if err != nil {
		s.logFailure(ctx, err, "Failed to set stock level", slog.String("item_ref", itemRef))
		return domain.StockLevel{}, fmt.Errorf("failed to set stock of %s: %w", itemRef, err)
	}
	s.LogInfo(ctx, "Stock level set", slog.String("item_ref", itemRef), slog.Int("on_hand", level.OnHand), slog.Int("max_stock", level.MaxStock))
	return level, nil
}
