package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/alialmasri-information-technology/restaurant-management/internal/database"
	"github.com/alialmasri-information-technology/restaurant-management/internal/middleware"
	"github.com/alialmasri-information-technology/restaurant-management/internal/service"
)

// OrderEngine is the transactional order state machine.
// Satisfied by *service.OrderService.
type OrderEngine interface {
	Create(ctx context.Context, tableID, waiterID uuid.UUID) (database.Order, error)
	AddLineItem(ctx context.Context, orderID, itemID uuid.UUID, quantity int32) (*service.LineItemResult, error)
	RemoveLineItem(ctx context.Context, orderID, orderItemID uuid.UUID) (decimal.Decimal, error)
	Complete(ctx context.Context, orderID uuid.UUID) (database.Order, error)
	FinalizePayment(ctx context.Context, orderID, cashierID uuid.UUID, method string) (database.Order, error)
	Cancel(ctx context.Context, orderID uuid.UUID) (database.Order, error)
}

// OrderReadStore defines the read-only queries behind the order list and
// detail endpoints. Satisfied by *database.Queries.
type OrderReadStore interface {
	ListOpenOrders(ctx context.Context) ([]database.Order, error)
	GetOrder(ctx context.Context, id uuid.UUID) (database.Order, error)
	ListOrderItems(ctx context.Context, orderID uuid.UUID) ([]database.OrderItem, error)
}

// OrderHandler handles order endpoints.
type OrderHandler struct {
	engine OrderEngine
	store  OrderReadStore
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(engine OrderEngine, store OrderReadStore) *OrderHandler {
	return &OrderHandler{engine: engine, store: store}
}

// RegisterWaiterRoutes registers the endpoints waiters use: creating orders
// and editing line items. Mounted behind the Admin+Waiter role gate.
func (h *OrderHandler) RegisterWaiterRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Post("/{id}/items", h.AddItem)
	r.Delete("/{id}/items/{itemID}", h.RemoveItem)
	r.Post("/{id}/complete", h.Complete)
}

// RegisterCashierRoutes registers the endpoints cashiers use: payment and
// cancellation. Mounted behind the Admin+Cashier role gate.
func (h *OrderHandler) RegisterCashierRoutes(r chi.Router) {
	r.Post("/{id}/payment", h.Pay)
	r.Post("/{id}/cancel", h.Cancel)
}

// RegisterReadRoutes registers the order dashboard reads, open to all
// authenticated staff.
func (h *OrderHandler) RegisterReadRoutes(r chi.Router) {
	r.Get("/", h.ListOpen)
	r.Get("/{id}", h.Get)
}

// --- Request / Response types ---

type createOrderRequest struct {
	TableID string `json:"table_id"`
}

type addItemRequest struct {
	ItemID   string `json:"item_id"`
	Quantity int32  `json:"quantity"`
}

type payRequest struct {
	PaymentMethod string `json:"payment_method"`
}

type orderResponse struct {
	ID            uuid.UUID           `json:"id"`
	TableID       uuid.UUID           `json:"table_id"`
	WaiterID      uuid.UUID           `json:"waiter_id"`
	CashierID     *string             `json:"cashier_id"`
	OrderTime     time.Time           `json:"order_time"`
	Status        string              `json:"status"`
	TotalAmount   string              `json:"total_amount"`
	PaymentTime   *time.Time          `json:"payment_time"`
	PaymentMethod *string             `json:"payment_method"`
	Items         []orderItemResponse `json:"items,omitempty"`
}

type orderItemResponse struct {
	ID           uuid.UUID `json:"id"`
	ItemID       uuid.UUID `json:"item_id"`
	Quantity     int32     `json:"quantity"`
	PriceAtOrder string    `json:"price_at_order"`
	Subtotal     string    `json:"subtotal"`
}

type addItemResponse struct {
	Item       orderItemResponse `json:"item"`
	OrderTotal string            `json:"order_total"`
	StockLevel int32             `json:"stock_level"`
}

func toOrderResponse(o database.Order) orderResponse {
	resp := orderResponse{
		ID:          o.ID,
		TableID:     o.TableID,
		WaiterID:    o.WaiterID,
		OrderTime:   o.OrderTime,
		Status:      o.Status,
		TotalAmount: numericToString(o.TotalAmount),
	}
	if o.CashierID.Valid {
		s := uuid.UUID(o.CashierID.Bytes).String()
		resp.CashierID = &s
	}
	if o.PaymentTime.Valid {
		resp.PaymentTime = &o.PaymentTime.Time
	}
	if o.PaymentMethod.Valid {
		resp.PaymentMethod = &o.PaymentMethod.String
	}
	return resp
}

func toOrderItemResponse(oi database.OrderItem) orderItemResponse {
	return orderItemResponse{
		ID:           oi.ID,
		ItemID:       oi.ItemID,
		Quantity:     oi.Quantity,
		PriceAtOrder: numericToString(oi.PriceAtOrder),
		Subtotal:     numericToString(oi.Subtotal),
	}
}

// --- Handlers ---

// ListOpen returns Active and Completed orders, oldest first.
func (h *OrderHandler) ListOpen(w http.ResponseWriter, r *http.Request) {
	orders, err := h.store.ListOpenOrders(r.Context())
	if err != nil {
		log.Printf("ERROR: list open orders: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]orderResponse, len(orders))
	for i, o := range orders {
		resp[i] = toOrderResponse(o)
	}

	writeJSON(w, http.StatusOK, resp)
}

// Get returns one order with its line items.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	order, err := h.store.GetOrder(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		log.Printf("ERROR: get order: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	items, err := h.store.ListOrderItems(r.Context(), orderID)
	if err != nil {
		log.Printf("ERROR: list order items: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := toOrderResponse(order)
	resp.Items = make([]orderItemResponse, len(items))
	for i, oi := range items {
		resp.Items[i] = toOrderItemResponse(oi)
	}

	writeJSON(w, http.StatusOK, resp)
}

// Create opens a new order on a table for the authenticated waiter.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	tableID, err := uuid.Parse(req.TableID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid table_id"})
		return
	}

	order, err := h.engine.Create(r.Context(), tableID, claims.UserID)
	if err != nil {
		respondOrderError(w, "create order", err)
		return
	}

	writeJSON(w, http.StatusCreated, toOrderResponse(order))
}

// AddItem adds a line item to an order.
func (h *OrderHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	itemID, err := uuid.Parse(req.ItemID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid item_id"})
		return
	}

	res, err := h.engine.AddLineItem(r.Context(), orderID, itemID, req.Quantity)
	if err != nil {
		respondOrderError(w, "add line item", err)
		return
	}

	writeJSON(w, http.StatusCreated, addItemResponse{
		Item:       toOrderItemResponse(res.Item),
		OrderTotal: res.OrderTotal.StringFixed(2),
		StockLevel: res.StockLevel,
	})
}

// RemoveItem deletes a line item and returns the new order total.
func (h *OrderHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	orderItemID, err := uuid.Parse(chi.URLParam(r, "itemID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order item ID"})
		return
	}

	total, err := h.engine.RemoveLineItem(r.Context(), orderID, orderItemID)
	if err != nil {
		respondOrderError(w, "remove line item", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"order_total": total.StringFixed(2)})
}

// Complete marks an order ready for payment.
func (h *OrderHandler) Complete(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	order, err := h.engine.Complete(r.Context(), orderID)
	if err != nil {
		respondOrderError(w, "complete order", err)
		return
	}

	writeJSON(w, http.StatusOK, toOrderResponse(order))
}

// Pay settles an order for the authenticated cashier.
func (h *OrderHandler) Pay(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	var req payRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	order, err := h.engine.FinalizePayment(r.Context(), orderID, claims.UserID, req.PaymentMethod)
	if err != nil {
		respondOrderError(w, "finalize payment", err)
		return
	}

	writeJSON(w, http.StatusOK, toOrderResponse(order))
}

// Cancel voids an order and restores its stock.
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	order, err := h.engine.Cancel(r.Context(), orderID)
	if err != nil {
		respondOrderError(w, "cancel order", err)
		return
	}

	writeJSON(w, http.StatusOK, toOrderResponse(order))
}

// --- Helpers ---

// respondOrderError maps engine errors to HTTP statuses.
func respondOrderError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, service.ErrTableNotFound),
		errors.Is(err, service.ErrOrderNotFound),
		errors.Is(err, service.ErrOrderItemNotFound),
		errors.Is(err, service.ErrItemNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrTableUnavailable),
		errors.Is(err, service.ErrOrderNotActive),
		errors.Is(err, service.ErrOrderNotPayable),
		errors.Is(err, service.ErrOrderTerminal),
		errors.Is(err, service.ErrInsufficientStock),
		errors.Is(err, service.ErrItemUnavailable),
		errors.Is(err, service.ErrEmptyOrder):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrPaymentMethodRequired):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		log.Printf("ERROR: %s: %v", op, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}
