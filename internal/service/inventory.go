package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/alialmasri-information-technology/restaurant-management/internal/database"
	"github.com/alialmasri-information-technology/restaurant-management/internal/enum"
)

// Errors returned by the inventory ledger.
var (
	ErrItemNotFound  = errors.New("menu item not found")
	ErrNegativeStock = errors.New("change would make stock negative")
	ErrZeroChange    = errors.New("change quantity must be non-zero")
	ErrInvalidReason = errors.New("invalid stock change reason")
)

// StockWriter is the slice of the query layer allowed to touch
// current_stock. Everything that moves stock goes through ApplyStockChange
// so the ledger and the counter never drift apart.
type StockWriter interface {
	GetMenuItemForUpdate(ctx context.Context, id uuid.UUID) (database.MenuItem, error)
	UpdateMenuItemStock(ctx context.Context, arg database.UpdateMenuItemStockParams) error
	CreateInventoryLogEntry(ctx context.Context, arg database.CreateInventoryLogEntryParams) (database.InventoryLogEntry, error)
}

// ApplyStockChange records a signed stock delta: it locks the item, refuses
// changes that would take stock below zero, writes the ledger row and the
// new counter in the caller's transaction. It is the only writer of
// current_stock in the codebase.
func ApplyStockChange(ctx context.Context, store StockWriter, itemID uuid.UUID, delta int32, reason string, orderItemID, adminID pgtype.UUID) (database.InventoryLogEntry, error) {
	item, err := store.GetMenuItemForUpdate(ctx, itemID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.InventoryLogEntry{}, ErrItemNotFound
		}
		return database.InventoryLogEntry{}, fmt.Errorf("get item: %w", err)
	}

	newLevel := item.CurrentStock + delta
	if newLevel < 0 {
		return database.InventoryLogEntry{}, ErrNegativeStock
	}

	if err := store.UpdateMenuItemStock(ctx, database.UpdateMenuItemStockParams{
		CurrentStock: newLevel,
		ID:           itemID,
	}); err != nil {
		return database.InventoryLogEntry{}, fmt.Errorf("update stock: %w", err)
	}

	entry, err := store.CreateInventoryLogEntry(ctx, database.CreateInventoryLogEntryParams{
		ItemID:         itemID,
		ChangeQuantity: delta,
		NewStockLevel:  newLevel,
		Reason:         reason,
		OrderItemID:    orderItemID,
		AdminID:        adminID,
	})
	if err != nil {
		return database.InventoryLogEntry{}, fmt.Errorf("create log entry: %w", err)
	}
	return entry, nil
}

// InventoryStore defines the DB methods needed by the inventory service.
// Satisfied by *database.Queries (and its WithTx variant).
type InventoryStore interface {
	StockWriter
	GetMenuItem(ctx context.Context, id uuid.UUID) (database.MenuItem, error)
	ListInventoryLogByItem(ctx context.Context, itemID uuid.UUID) ([]database.InventoryLogEntry, error)
}

// NewInventoryStore creates an InventoryStore from a DBTX (pool or tx).
type NewInventoryStore func(db database.DBTX) InventoryStore

// InventoryService owns manual stock changes and ledger reads.
type InventoryService struct {
	store    InventoryStore
	pool     TxBeginner
	newStore NewInventoryStore
}

// NewInventoryService creates a new InventoryService.
func NewInventoryService(store InventoryStore, pool TxBeginner, newStore NewInventoryStore) *InventoryService {
	return &InventoryService{store: store, pool: pool, newStore: newStore}
}

// ApplyChange applies an admin-initiated stock change (restock, spoilage,
// correction, initial stock) atomically. Sale entries are written by the
// order engine, never through here.
func (s *InventoryService) ApplyChange(ctx context.Context, itemID uuid.UUID, delta int32, reason string, adminID uuid.UUID) (database.InventoryLogEntry, error) {
	if delta == 0 {
		return database.InventoryLogEntry{}, ErrZeroChange
	}
	if !enum.ValidManualReason(reason) {
		return database.InventoryLogEntry{}, ErrInvalidReason
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return database.InventoryLogEntry{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	entry, err := ApplyStockChange(ctx, s.newStore(tx), itemID, delta, reason,
		pgtype.UUID{}, pgtype.UUID{Bytes: adminID, Valid: true})
	if err != nil {
		return database.InventoryLogEntry{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return database.InventoryLogEntry{}, fmt.Errorf("commit tx: %w", err)
	}
	return entry, nil
}

// History returns the item's full ledger, oldest entry first.
func (s *InventoryService) History(ctx context.Context, itemID uuid.UUID) ([]database.InventoryLogEntry, error) {
	if _, err := s.store.GetMenuItem(ctx, itemID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("get item: %w", err)
	}
	return s.store.ListInventoryLogByItem(ctx, itemID)
}
