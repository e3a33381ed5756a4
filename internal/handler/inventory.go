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

	"github.com/alialmasri-information-technology/restaurant-management/internal/database"
	"github.com/alialmasri-information-technology/restaurant-management/internal/middleware"
	"github.com/alialmasri-information-technology/restaurant-management/internal/service"
)

// Ledger is the inventory ledger service.
// Satisfied by *service.InventoryService.
type Ledger interface {
	ApplyChange(ctx context.Context, itemID uuid.UUID, delta int32, reason string, adminID uuid.UUID) (database.InventoryLogEntry, error)
	History(ctx context.Context, itemID uuid.UUID) ([]database.InventoryLogEntry, error)
}

// InventoryHandler handles manual stock changes and ledger reads.
type InventoryHandler struct {
	ledger Ledger
}

// NewInventoryHandler creates a new InventoryHandler.
func NewInventoryHandler(ledger Ledger) *InventoryHandler {
	return &InventoryHandler{ledger: ledger}
}

// RegisterRoutes registers stock endpoints on the given Chi router.
// Expected to be mounted at /items behind the admin role gate.
func (h *InventoryHandler) RegisterRoutes(r chi.Router) {
	r.Post("/{id}/stock", h.ApplyChange)
	r.Get("/{id}/stock/log", h.History)
}

// --- Request / Response types ---

type stockChangeRequest struct {
	ChangeQuantity int32  `json:"change_quantity"`
	Reason         string `json:"reason"`
}

type ledgerEntryResponse struct {
	ID             uuid.UUID `json:"id"`
	ItemID         uuid.UUID `json:"item_id"`
	ChangeQuantity int32     `json:"change_quantity"`
	NewStockLevel  int32     `json:"new_stock_level"`
	Reason         string    `json:"reason"`
	OrderItemID    *string   `json:"order_item_id"`
	AdminID        *string   `json:"admin_id"`
	LogTime        time.Time `json:"log_time"`
}

func toLedgerEntryResponse(e database.InventoryLogEntry) ledgerEntryResponse {
	resp := ledgerEntryResponse{
		ID:             e.ID,
		ItemID:         e.ItemID,
		ChangeQuantity: e.ChangeQuantity,
		NewStockLevel:  e.NewStockLevel,
		Reason:         e.Reason,
		LogTime:        e.LogTime,
	}
	if e.OrderItemID.Valid {
		s := uuid.UUID(e.OrderItemID.Bytes).String()
		resp.OrderItemID = &s
	}
	if e.AdminID.Valid {
		s := uuid.UUID(e.AdminID.Bytes).String()
		resp.AdminID = &s
	}
	return resp
}

// --- Handlers ---

// ApplyChange records a manual stock change for the authenticated admin.
// Sale is not accepted here; the order engine writes those.
func (h *InventoryHandler) ApplyChange(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	itemID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid item ID"})
		return
	}

	var req stockChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	entry, err := h.ledger.ApplyChange(r.Context(), itemID, req.ChangeQuantity, req.Reason, claims.UserID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrItemNotFound):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "item not found"})
		case errors.Is(err, service.ErrNegativeStock):
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		case errors.Is(err, service.ErrZeroChange), errors.Is(err, service.ErrInvalidReason):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		default:
			log.Printf("ERROR: apply stock change: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		}
		return
	}

	writeJSON(w, http.StatusCreated, toLedgerEntryResponse(entry))
}

// History returns the item's full ledger, oldest entry first.
func (h *InventoryHandler) History(w http.ResponseWriter, r *http.Request) {
	itemID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid item ID"})
		return
	}

	entries, err := h.ledger.History(r.Context(), itemID)
	if err != nil {
		if errors.Is(err, service.ErrItemNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "item not found"})
			return
		}
		log.Printf("ERROR: list stock log: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]ledgerEntryResponse, len(entries))
	for i, e := range entries {
		resp[i] = toLedgerEntryResponse(e)
	}

	writeJSON(w, http.StatusOK, resp)
}
