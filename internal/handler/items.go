package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/alialmasri-information-technology/restaurant-management/internal/database"
	"github.com/alialmasri-information-technology/restaurant-management/internal/enum"
	"github.com/alialmasri-information-technology/restaurant-management/internal/middleware"
	"github.com/alialmasri-information-technology/restaurant-management/internal/service"
)

// ItemStore defines the database methods needed by menu item handlers.
// The embedded StockWriter lets Create seed initial stock through the
// inventory ledger inside the same transaction.
type ItemStore interface {
	service.StockWriter
	ListMenuItems(ctx context.Context) ([]database.MenuItem, error)
	ListMenuItemsByCategory(ctx context.Context, categoryID uuid.UUID) ([]database.MenuItem, error)
	GetMenuItem(ctx context.Context, id uuid.UUID) (database.MenuItem, error)
	CreateMenuItem(ctx context.Context, arg database.CreateMenuItemParams) (database.MenuItem, error)
	UpdateMenuItem(ctx context.Context, arg database.UpdateMenuItemParams) (database.MenuItem, error)
	DeleteMenuItem(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
}

// NewItemStore creates an ItemStore from a DBTX (pool or tx).
type NewItemStore func(db database.DBTX) ItemStore

// ItemHandler handles menu item endpoints.
type ItemHandler struct {
	store    ItemStore
	pool     service.TxBeginner
	newStore NewItemStore
}

// NewItemHandler creates a new ItemHandler.
func NewItemHandler(store ItemStore, pool service.TxBeginner, newStore NewItemStore) *ItemHandler {
	return &ItemHandler{store: store, pool: pool, newStore: newStore}
}

// RegisterReadRoutes registers the item list and detail endpoints, open to
// all authenticated staff.
func (h *ItemHandler) RegisterReadRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
}

// RegisterAdminRoutes registers item mutations. Mounted behind the admin
// role gate.
func (h *ItemHandler) RegisterAdminRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

// --- Request / Response types ---

type createItemRequest struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	Price        string `json:"price"`
	CategoryID   string `json:"category_id"`
	ImagePath    string `json:"image_path"`
	IsAvailable  *bool  `json:"is_available"`
	InitialStock int32  `json:"initial_stock"`
}

type updateItemRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       string `json:"price"`
	CategoryID  string `json:"category_id"`
	ImagePath   string `json:"image_path"`
	IsAvailable *bool  `json:"is_available"`
}

type itemResponse struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Description  *string   `json:"description"`
	Price        string    `json:"price"`
	CategoryID   uuid.UUID `json:"category_id"`
	ImagePath    *string   `json:"image_path"`
	CurrentStock int32     `json:"current_stock"`
	IsAvailable  bool      `json:"is_available"`
}

func toItemResponse(m database.MenuItem) itemResponse {
	resp := itemResponse{
		ID:           m.ID,
		Name:         m.Name,
		Price:        numericToString(m.Price),
		CategoryID:   m.CategoryID,
		CurrentStock: m.CurrentStock,
		IsAvailable:  m.IsAvailable,
	}
	if m.Description.Valid {
		resp.Description = &m.Description.String
	}
	if m.ImagePath.Valid {
		resp.ImagePath = &m.ImagePath.String
	}
	return resp
}

// --- Handlers ---

// List returns menu items, optionally filtered by ?category_id=.
func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	var (
		items []database.MenuItem
		err   error
	)
	if raw := r.URL.Query().Get("category_id"); raw != "" {
		categoryID, parseErr := uuid.Parse(raw)
		if parseErr != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid category_id"})
			return
		}
		items, err = h.store.ListMenuItemsByCategory(r.Context(), categoryID)
	} else {
		items, err = h.store.ListMenuItems(r.Context())
	}
	if err != nil {
		log.Printf("ERROR: list menu items: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]itemResponse, len(items))
	for i, m := range items {
		resp[i] = toItemResponse(m)
	}

	writeJSON(w, http.StatusOK, resp)
}

// Get returns a single menu item.
func (h *ItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	itemID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid item ID"})
		return
	}

	item, err := h.store.GetMenuItem(r.Context(), itemID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "item not found"})
			return
		}
		log.Printf("ERROR: get menu item: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toItemResponse(item))
}

// Create adds a menu item. An optional initial_stock is applied through the
// inventory ledger (reason Initial Stock) in the same transaction, so the
// item never carries stock without a ledger entry explaining it.
func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	var req createItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.Name == "" || req.Price == "" || req.CategoryID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name, price, and category_id are required"})
		return
	}

	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid category_id"})
		return
	}

	price, err := decimal.NewFromString(req.Price)
	if err != nil || price.IsNegative() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "price must be a non-negative number"})
		return
	}

	if req.InitialStock < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "initial_stock cannot be negative"})
		return
	}

	isAvailable := true
	if req.IsAvailable != nil {
		isAvailable = *req.IsAvailable
	}

	tx, err := h.pool.Begin(r.Context())
	if err != nil {
		log.Printf("ERROR: begin tx for create item: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	defer tx.Rollback(r.Context())

	txStore := h.newStore(tx)

	item, err := txStore.CreateMenuItem(r.Context(), database.CreateMenuItemParams{
		Name:        req.Name,
		Description: optionalText(req.Description),
		Price:       decimalToNumeric(price),
		CategoryID:  categoryID,
		ImagePath:   optionalText(req.ImagePath),
		IsAvailable: isAvailable,
	})
	if err != nil {
		if isUniqueViolation(err) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "item name already exists"})
			return
		}
		if isForeignKeyViolation(err) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "category does not exist"})
			return
		}
		log.Printf("ERROR: create menu item: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	if req.InitialStock > 0 {
		entry, err := service.ApplyStockChange(r.Context(), txStore, item.ID, req.InitialStock,
			enum.ReasonInitialStock, pgtype.UUID{}, pgtype.UUID{Bytes: claims.UserID, Valid: true})
		if err != nil {
			log.Printf("ERROR: apply initial stock: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
			return
		}
		item.CurrentStock = entry.NewStockLevel
	}

	if err := tx.Commit(r.Context()); err != nil {
		log.Printf("ERROR: commit tx for create item: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, toItemResponse(item))
}

// Update modifies item details. current_stock is not part of the request;
// stock only moves through the ledger endpoints.
func (h *ItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	itemID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid item ID"})
		return
	}

	var req updateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.Name == "" || req.Price == "" || req.CategoryID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name, price, and category_id are required"})
		return
	}

	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid category_id"})
		return
	}

	price, err := decimal.NewFromString(req.Price)
	if err != nil || price.IsNegative() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "price must be a non-negative number"})
		return
	}

	isAvailable := true
	if req.IsAvailable != nil {
		isAvailable = *req.IsAvailable
	}

	item, err := h.store.UpdateMenuItem(r.Context(), database.UpdateMenuItemParams{
		Name:        req.Name,
		Description: optionalText(req.Description),
		Price:       decimalToNumeric(price),
		CategoryID:  categoryID,
		ImagePath:   optionalText(req.ImagePath),
		IsAvailable: isAvailable,
		ID:          itemID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "item not found"})
			return
		}
		if isUniqueViolation(err) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "item name already exists"})
			return
		}
		if isForeignKeyViolation(err) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "category does not exist"})
			return
		}
		log.Printf("ERROR: update menu item: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toItemResponse(item))
}

// Delete removes a menu item. Items referenced by any order survive with a
// 409; order history wins over catalog cleanup.
func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	itemID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid item ID"})
		return
	}

	if _, err := h.store.DeleteMenuItem(r.Context(), itemID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "item not found"})
			return
		}
		if isForeignKeyViolation(err) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "item is referenced by orders"})
			return
		}
		log.Printf("ERROR: delete menu item: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// --- Helpers ---

func optionalText(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}

func numericToString(n pgtype.Numeric) string {
	if !n.Valid {
		return "0.00"
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return "0.00"
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return "0.00"
	}
	return d.StringFixed(2)
}

func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(d.StringFixed(2))
	return n
}
