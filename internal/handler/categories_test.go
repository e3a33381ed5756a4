package handler_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/alialmasri-information-technology/restaurant-management/internal/database"
	"github.com/alialmasri-information-technology/restaurant-management/internal/handler"
)

// --- Mock store ---

type mockCategoryStore struct {
	categories map[uuid.UUID]database.Category // keyed by category ID
	referenced map[uuid.UUID]bool              // categories whose items appear in orders
}

func newMockCategoryStore() *mockCategoryStore {
	return &mockCategoryStore{
		categories: make(map[uuid.UUID]database.Category),
		referenced: make(map[uuid.UUID]bool),
	}
}

func (m *mockCategoryStore) ListCategories(_ context.Context) ([]database.Category, error) {
	var result []database.Category
	for _, c := range m.categories {
		result = append(result, c)
	}
	return result, nil
}

func (m *mockCategoryStore) CreateCategory(_ context.Context, arg database.CreateCategoryParams) (database.Category, error) {
	for _, existing := range m.categories {
		if existing.Name == arg.Name {
			return database.Category{}, &pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"}
		}
	}
	c := database.Category{
		ID:          uuid.New(),
		Name:        arg.Name,
		Description: arg.Description,
	}
	m.categories[c.ID] = c
	return c, nil
}

func (m *mockCategoryStore) UpdateCategory(_ context.Context, arg database.UpdateCategoryParams) (database.Category, error) {
	c, ok := m.categories[arg.ID]
	if !ok {
		return database.Category{}, pgx.ErrNoRows
	}
	for _, existing := range m.categories {
		if existing.Name == arg.Name && existing.ID != arg.ID {
			return database.Category{}, &pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"}
		}
	}
	c.Name = arg.Name
	c.Description = arg.Description
	m.categories[c.ID] = c
	return c, nil
}

func (m *mockCategoryStore) DeleteCategory(_ context.Context, id uuid.UUID) (uuid.UUID, error) {
	c, ok := m.categories[id]
	if !ok {
		return uuid.Nil, pgx.ErrNoRows
	}
	if m.referenced[id] {
		return uuid.Nil, &pgconn.PgError{Code: "23503", Message: "violates foreign key constraint"}
	}
	delete(m.categories, id)
	return c.ID, nil
}

// --- Helpers ---

func setupCategoryRouter(store *mockCategoryStore) *chi.Mux {
	h := handler.NewCategoryHandler(store)
	r := chi.NewRouter()
	r.Route("/categories", func(r chi.Router) {
		h.RegisterReadRoutes(r)
		h.RegisterAdminRoutes(r)
	})
	return r
}

// --- List tests ---

func TestCategoryList_Empty(t *testing.T) {
	store := newMockCategoryStore()
	router := setupCategoryRouter(store)

	rr := doRequest(t, router, "GET", "/categories", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	resp := decodeListResponse(t, rr)
	if len(resp) != 0 {
		t.Errorf("expected empty list, got %d categories", len(resp))
	}
}

func TestCategoryList_ReturnsAll(t *testing.T) {
	store := newMockCategoryStore()
	id := uuid.New()
	store.categories[id] = database.Category{ID: id, Name: "Mains"}

	router := setupCategoryRouter(store)
	rr := doRequest(t, router, "GET", "/categories", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}

	resp := decodeListResponse(t, rr)
	if len(resp) != 1 {
		t.Fatalf("expected 1 category, got %d", len(resp))
	}
	if resp[0]["name"] != "Mains" {
		t.Errorf("name: got %v, want Mains", resp[0]["name"])
	}
}

// --- Create tests ---

func TestCategoryCreate_Valid(t *testing.T) {
	store := newMockCategoryStore()
	router := setupCategoryRouter(store)

	rr := doRequest(t, router, "POST", "/categories", map[string]interface{}{
		"name":        "Beverages",
		"description": "All drinks",
	})

	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusCreated, rr.Body.String())
	}

	resp := decodeResponse(t, rr)
	if resp["name"] != "Beverages" {
		t.Errorf("name: got %v, want Beverages", resp["name"])
	}
	if resp["description"] != "All drinks" {
		t.Errorf("description: got %v, want 'All drinks'", resp["description"])
	}
}

func TestCategoryCreate_NoDescription(t *testing.T) {
	store := newMockCategoryStore()
	router := setupCategoryRouter(store)

	rr := doRequest(t, router, "POST", "/categories", map[string]interface{}{
		"name": "Sides",
	})

	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusCreated, rr.Body.String())
	}

	resp := decodeResponse(t, rr)
	if resp["description"] != nil {
		t.Errorf("description: expected null, got %v", resp["description"])
	}
}

func TestCategoryCreate_MissingName(t *testing.T) {
	store := newMockCategoryStore()
	router := setupCategoryRouter(store)

	rr := doRequest(t, router, "POST", "/categories", map[string]interface{}{
		"description": "No name",
	})

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}

	resp := decodeResponse(t, rr)
	if resp["error"] != "name is required" {
		t.Errorf("error: got %v, want 'name is required'", resp["error"])
	}
}

func TestCategoryCreate_DuplicateName(t *testing.T) {
	store := newMockCategoryStore()
	id := uuid.New()
	store.categories[id] = database.Category{ID: id, Name: "Mains"}
	router := setupCategoryRouter(store)

	rr := doRequest(t, router, "POST", "/categories", map[string]interface{}{
		"name": "Mains",
	})

	if rr.Code != http.StatusConflict {
		t.Errorf("status: got %d, want %d; body: %s", rr.Code, http.StatusConflict, rr.Body.String())
	}
}

func TestCategoryCreate_InvalidBody(t *testing.T) {
	store := newMockCategoryStore()
	router := setupCategoryRouter(store)

	rr := doRequest(t, router, "POST", "/categories", "not json")

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

// --- Update tests ---

func TestCategoryUpdate_Valid(t *testing.T) {
	store := newMockCategoryStore()
	id := uuid.New()
	store.categories[id] = database.Category{ID: id, Name: "Old Name"}
	router := setupCategoryRouter(store)

	rr := doRequest(t, router, "PUT", "/categories/"+id.String(), map[string]interface{}{
		"name":        "New Name",
		"description": "Updated desc",
	})

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	resp := decodeResponse(t, rr)
	if resp["name"] != "New Name" {
		t.Errorf("name: got %v, want 'New Name'", resp["name"])
	}
}

func TestCategoryUpdate_ClearDescription(t *testing.T) {
	store := newMockCategoryStore()
	id := uuid.New()
	store.categories[id] = database.Category{
		ID: id, Name: "Mains",
		Description: pgtype.Text{String: "Old desc", Valid: true},
	}
	router := setupCategoryRouter(store)

	rr := doRequest(t, router, "PUT", "/categories/"+id.String(), map[string]interface{}{
		"name": "Mains",
	})

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	resp := decodeResponse(t, rr)
	if resp["description"] != nil {
		t.Errorf("description: expected null, got %v", resp["description"])
	}
}

func TestCategoryUpdate_NotFound(t *testing.T) {
	store := newMockCategoryStore()
	router := setupCategoryRouter(store)

	rr := doRequest(t, router, "PUT", "/categories/"+uuid.New().String(), map[string]interface{}{
		"name": "Whatever",
	})

	if rr.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestCategoryUpdate_DuplicateName(t *testing.T) {
	store := newMockCategoryStore()
	id1 := uuid.New()
	id2 := uuid.New()
	store.categories[id1] = database.Category{ID: id1, Name: "Mains"}
	store.categories[id2] = database.Category{ID: id2, Name: "Sides"}
	router := setupCategoryRouter(store)

	rr := doRequest(t, router, "PUT", "/categories/"+id2.String(), map[string]interface{}{
		"name": "Mains",
	})

	if rr.Code != http.StatusConflict {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusConflict)
	}
}

func TestCategoryUpdate_InvalidID(t *testing.T) {
	store := newMockCategoryStore()
	router := setupCategoryRouter(store)

	rr := doRequest(t, router, "PUT", "/categories/not-a-uuid", map[string]interface{}{
		"name": "Test",
	})

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

// --- Delete tests ---

func TestCategoryDelete_Valid(t *testing.T) {
	store := newMockCategoryStore()
	id := uuid.New()
	store.categories[id] = database.Category{ID: id, Name: "Delete Me"}
	router := setupCategoryRouter(store)

	rr := doRequest(t, router, "DELETE", "/categories/"+id.String(), nil)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusNoContent, rr.Body.String())
	}

	if _, exists := store.categories[id]; exists {
		t.Error("expected category to be removed")
	}
}

func TestCategoryDelete_NotFound(t *testing.T) {
	store := newMockCategoryStore()
	router := setupCategoryRouter(store)

	rr := doRequest(t, router, "DELETE", "/categories/"+uuid.New().String(), nil)

	if rr.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestCategoryDelete_ItemsInOrderHistory(t *testing.T) {
	store := newMockCategoryStore()
	id := uuid.New()
	store.categories[id] = database.Category{ID: id, Name: "Popular"}
	store.referenced[id] = true
	router := setupCategoryRouter(store)

	rr := doRequest(t, router, "DELETE", "/categories/"+id.String(), nil)

	if rr.Code != http.StatusConflict {
		t.Errorf("status: got %d, want %d; body: %s", rr.Code, http.StatusConflict, rr.Body.String())
	}

	if _, exists := store.categories[id]; !exists {
		t.Error("category should survive a refused delete")
	}
}
