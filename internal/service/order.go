package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/alialmasri-information-technology/restaurant-management/internal/database"
	"github.com/alialmasri-information-technology/restaurant-management/internal/enum"
)

// Errors returned by the order engine.
var (
	ErrInvalidQuantity       = errors.New("quantity must be > 0")
	ErrTableNotFound         = errors.New("table not found")
	ErrTableUnavailable      = errors.New("table already has an active order")
	ErrOrderNotFound         = errors.New("order not found")
	ErrOrderNotActive        = errors.New("order is not active")
	ErrOrderNotPayable       = errors.New("order cannot be paid in its current status")
	ErrOrderTerminal         = errors.New("order is already paid or cancelled")
	ErrOrderItemNotFound     = errors.New("order item not found")
	ErrItemUnavailable       = errors.New("menu item is not available")
	ErrInsufficientStock     = errors.New("insufficient stock")
	ErrEmptyOrder            = errors.New("order has no items")
	ErrPaymentMethodRequired = errors.New("payment method is required")
)

// TxBeginner starts a new database transaction.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// OrderStore defines the DB methods needed by the order engine.
// Satisfied by *database.Queries (and its WithTx variant).
type OrderStore interface {
	StockWriter
	GetTableForUpdate(ctx context.Context, id uuid.UUID) (database.DiningTable, error)
	HasActiveOrderForTable(ctx context.Context, tableID uuid.UUID) (bool, error)
	UpdateTableStatus(ctx context.Context, arg database.UpdateTableStatusParams) (database.DiningTable, error)
	CreateOrder(ctx context.Context, arg database.CreateOrderParams) (database.Order, error)
	GetOrderForUpdate(ctx context.Context, id uuid.UUID) (database.Order, error)
	UpdateOrderStatus(ctx context.Context, arg database.UpdateOrderStatusParams) (database.Order, error)
	UpdateOrderTotal(ctx context.Context, arg database.UpdateOrderTotalParams) (database.Order, error)
	MarkOrderPaid(ctx context.Context, arg database.MarkOrderPaidParams) (database.Order, error)
	CreateOrderItem(ctx context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error)
	GetOrderItem(ctx context.Context, id uuid.UUID) (database.OrderItem, error)
	DeleteOrderItem(ctx context.Context, id uuid.UUID) error
	ListOrderItems(ctx context.Context, orderID uuid.UUID) ([]database.OrderItem, error)
	CountOrderItems(ctx context.Context, orderID uuid.UUID) (int64, error)
	SumOrderItemSubtotals(ctx context.Context, orderID uuid.UUID) (pgtype.Numeric, error)
}

// NewOrderStore creates an OrderStore from a DBTX (pool or tx).
// This allows the service to create store instances from transactions.
type NewOrderStore func(db database.DBTX) OrderStore

// OrderService is the order state machine: Active -> Completed -> Paid, with
// Cancelled reachable from Active and Completed. Every operation that writes
// more than one row runs in a single transaction.
type OrderService struct {
	pool     TxBeginner
	newStore NewOrderStore
}

// NewOrderService creates a new OrderService.
func NewOrderService(pool TxBeginner, newStore NewOrderStore) *OrderService {
	return &OrderService{pool: pool, newStore: newStore}
}

// LineItemResult reports the outcome of adding a line item.
type LineItemResult struct {
	Item       database.OrderItem
	OrderTotal decimal.Decimal
	StockLevel int32
}

// Create opens an Active order for a table and marks the table Occupied.
// The table row is locked first so two waiters racing for the same table
// serialize on the active-order check.
func (s *OrderService) Create(ctx context.Context, tableID, waiterID uuid.UUID) (database.Order, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return database.Order{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	if _, err := store.GetTableForUpdate(ctx, tableID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Order{}, ErrTableNotFound
		}
		return database.Order{}, fmt.Errorf("get table: %w", err)
	}

	busy, err := store.HasActiveOrderForTable(ctx, tableID)
	if err != nil {
		return database.Order{}, fmt.Errorf("check active order: %w", err)
	}
	if busy {
		return database.Order{}, ErrTableUnavailable
	}

	order, err := store.CreateOrder(ctx, database.CreateOrderParams{
		TableID:  tableID,
		WaiterID: waiterID,
	})
	if err != nil {
		return database.Order{}, fmt.Errorf("create order: %w", err)
	}

	if _, err := store.UpdateTableStatus(ctx, database.UpdateTableStatusParams{
		Status: enum.TableStatusOccupied,
		ID:     tableID,
	}); err != nil {
		return database.Order{}, fmt.Errorf("occupy table: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return database.Order{}, fmt.Errorf("commit tx: %w", err)
	}
	return order, nil
}

// AddLineItem adds a priced quantity of a menu item to an Active order. It
// snapshots the current catalog price, debits stock through the ledger
// (reason Sale, linked to the new line item) and recomputes the order total,
// all in one transaction.
func (s *OrderService) AddLineItem(ctx context.Context, orderID, itemID uuid.UUID, quantity int32) (*LineItemResult, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	if _, err := lockActiveOrder(ctx, store, orderID); err != nil {
		return nil, err
	}

	item, err := store.GetMenuItemForUpdate(ctx, itemID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("get item: %w", err)
	}
	if !item.IsAvailable {
		return nil, ErrItemUnavailable
	}
	if item.CurrentStock < quantity {
		return nil, ErrInsufficientStock
	}

	price := numericToDecimal(item.Price)
	subtotal := price.Mul(decimal.NewFromInt32(quantity))

	orderItem, err := store.CreateOrderItem(ctx, database.CreateOrderItemParams{
		OrderID:      orderID,
		ItemID:       itemID,
		Quantity:     quantity,
		PriceAtOrder: decimalToNumeric(price),
		Subtotal:     decimalToNumeric(subtotal),
	})
	if err != nil {
		return nil, fmt.Errorf("create order item: %w", err)
	}

	entry, err := ApplyStockChange(ctx, store, itemID, -quantity, enum.ReasonSale,
		pgtype.UUID{Bytes: orderItem.ID, Valid: true}, pgtype.UUID{})
	if err != nil {
		return nil, err
	}

	total, err := recomputeTotal(ctx, store, orderID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return &LineItemResult{Item: orderItem, OrderTotal: total, StockLevel: entry.NewStockLevel}, nil
}

// RemoveLineItem deletes a line item from an Active order, restores the
// consumed stock with a Correction ledger entry, and recomputes the total.
// The original Sale entry survives with its line-item link nulled by the
// schema. Returns the new order total.
func (s *OrderService) RemoveLineItem(ctx context.Context, orderID, orderItemID uuid.UUID) (decimal.Decimal, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	if _, err := lockActiveOrder(ctx, store, orderID); err != nil {
		return decimal.Zero, err
	}

	orderItem, err := store.GetOrderItem(ctx, orderItemID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, ErrOrderItemNotFound
		}
		return decimal.Zero, fmt.Errorf("get order item: %w", err)
	}
	if orderItem.OrderID != orderID {
		return decimal.Zero, ErrOrderItemNotFound
	}

	if _, err := ApplyStockChange(ctx, store, orderItem.ItemID, orderItem.Quantity,
		enum.ReasonCorrection, pgtype.UUID{}, pgtype.UUID{}); err != nil {
		return decimal.Zero, err
	}

	if err := store.DeleteOrderItem(ctx, orderItemID); err != nil {
		return decimal.Zero, fmt.Errorf("delete order item: %w", err)
	}

	total, err := recomputeTotal(ctx, store, orderID)
	if err != nil {
		return decimal.Zero, err
	}

	if err := tx.Commit(ctx); err != nil {
		return decimal.Zero, fmt.Errorf("commit tx: %w", err)
	}
	return total, nil
}

// Complete marks an Active, non-empty order as Completed.
func (s *OrderService) Complete(ctx context.Context, orderID uuid.UUID) (database.Order, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return database.Order{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	if _, err := lockActiveOrder(ctx, store, orderID); err != nil {
		return database.Order{}, err
	}

	count, err := store.CountOrderItems(ctx, orderID)
	if err != nil {
		return database.Order{}, fmt.Errorf("count order items: %w", err)
	}
	if count == 0 {
		return database.Order{}, ErrEmptyOrder
	}

	order, err := store.UpdateOrderStatus(ctx, database.UpdateOrderStatusParams{
		Status: enum.OrderStatusCompleted,
		ID:     orderID,
	})
	if err != nil {
		return database.Order{}, fmt.Errorf("update status: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return database.Order{}, fmt.Errorf("commit tx: %w", err)
	}
	return order, nil
}

// FinalizePayment marks an order Paid, records the cashier, method and
// payment time, and frees the table. Paying straight from Active is allowed;
// the explicit Completed step is optional.
func (s *OrderService) FinalizePayment(ctx context.Context, orderID, cashierID uuid.UUID, method string) (database.Order, error) {
	if method == "" {
		return database.Order{}, ErrPaymentMethodRequired
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return database.Order{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	order, err := store.GetOrderForUpdate(ctx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Order{}, ErrOrderNotFound
		}
		return database.Order{}, fmt.Errorf("get order: %w", err)
	}
	if order.Status != enum.OrderStatusActive && order.Status != enum.OrderStatusCompleted {
		return database.Order{}, ErrOrderNotPayable
	}

	paid, err := store.MarkOrderPaid(ctx, database.MarkOrderPaidParams{
		CashierID:     cashierID,
		PaymentMethod: method,
		ID:            orderID,
	})
	if err != nil {
		return database.Order{}, fmt.Errorf("mark paid: %w", err)
	}

	if _, err := store.UpdateTableStatus(ctx, database.UpdateTableStatusParams{
		Status: enum.TableStatusAvailable,
		ID:     order.TableID,
	}); err != nil {
		return database.Order{}, fmt.Errorf("free table: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return database.Order{}, fmt.Errorf("commit tx: %w", err)
	}
	return paid, nil
}

// Cancel voids an Active or Completed order: every live line item gets a
// compensating Correction ledger entry restoring its stock, the order moves
// to Cancelled, and the table is freed. Paid and Cancelled orders are
// terminal.
func (s *OrderService) Cancel(ctx context.Context, orderID uuid.UUID) (database.Order, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return database.Order{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	order, err := store.GetOrderForUpdate(ctx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Order{}, ErrOrderNotFound
		}
		return database.Order{}, fmt.Errorf("get order: %w", err)
	}
	if order.Status == enum.OrderStatusPaid || order.Status == enum.OrderStatusCancelled {
		return database.Order{}, ErrOrderTerminal
	}

	items, err := store.ListOrderItems(ctx, orderID)
	if err != nil {
		return database.Order{}, fmt.Errorf("list order items: %w", err)
	}
	for _, item := range items {
		if _, err := ApplyStockChange(ctx, store, item.ItemID, item.Quantity,
			enum.ReasonCorrection, pgtype.UUID{}, pgtype.UUID{}); err != nil {
			return database.Order{}, err
		}
	}

	cancelled, err := store.UpdateOrderStatus(ctx, database.UpdateOrderStatusParams{
		Status: enum.OrderStatusCancelled,
		ID:     orderID,
	})
	if err != nil {
		return database.Order{}, fmt.Errorf("update status: %w", err)
	}

	if _, err := store.UpdateTableStatus(ctx, database.UpdateTableStatusParams{
		Status: enum.TableStatusAvailable,
		ID:     order.TableID,
	}); err != nil {
		return database.Order{}, fmt.Errorf("free table: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return database.Order{}, fmt.Errorf("commit tx: %w", err)
	}
	return cancelled, nil
}

// lockActiveOrder fetches and locks an order, requiring it to be Active.
func lockActiveOrder(ctx context.Context, store OrderStore, orderID uuid.UUID) (database.Order, error) {
	order, err := store.GetOrderForUpdate(ctx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Order{}, ErrOrderNotFound
		}
		return database.Order{}, fmt.Errorf("get order: %w", err)
	}
	if order.Status != enum.OrderStatusActive {
		return database.Order{}, ErrOrderNotActive
	}
	return order, nil
}

// recomputeTotal derives the order total from the live line items and
// persists it. total_amount is never edited independently.
func recomputeTotal(ctx context.Context, store OrderStore, orderID uuid.UUID) (decimal.Decimal, error) {
	sum, err := store.SumOrderItemSubtotals(ctx, orderID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum subtotals: %w", err)
	}
	total := numericToDecimal(sum)
	if _, err := store.UpdateOrderTotal(ctx, database.UpdateOrderTotalParams{
		TotalAmount: decimalToNumeric(total),
		ID:          orderID,
	}); err != nil {
		return decimal.Zero, fmt.Errorf("update total: %w", err)
	}
	return total, nil
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(d.StringFixed(2))
	return n
}
