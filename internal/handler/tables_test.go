package handler_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/alialmasri-information-technology/restaurant-management/internal/database"
	"github.com/alialmasri-information-technology/restaurant-management/internal/handler"
)

// --- Mock store ---

type mockTableStore struct {
	tables       map[uuid.UUID]database.DiningTable
	activeOrders map[uuid.UUID]bool // table IDs with an Active order
}

func newMockTableStore() *mockTableStore {
	return &mockTableStore{
		tables:       make(map[uuid.UUID]database.DiningTable),
		activeOrders: make(map[uuid.UUID]bool),
	}
}

func (m *mockTableStore) ListTables(_ context.Context) ([]database.DiningTable, error) {
	var result []database.DiningTable
	for _, t := range m.tables {
		result = append(result, t)
	}
	return result, nil
}

func (m *mockTableStore) CreateTable(_ context.Context, arg database.CreateTableParams) (database.DiningTable, error) {
	for _, existing := range m.tables {
		if existing.TableNumber == arg.TableNumber {
			return database.DiningTable{}, &pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"}
		}
	}
	t := database.DiningTable{
		ID:          uuid.New(),
		TableNumber: arg.TableNumber,
		Capacity:    arg.Capacity,
		Status:      arg.Status,
	}
	m.tables[t.ID] = t
	return t, nil
}

func (m *mockTableStore) GetTableForUpdate(_ context.Context, id uuid.UUID) (database.DiningTable, error) {
	t, ok := m.tables[id]
	if !ok {
		return database.DiningTable{}, pgx.ErrNoRows
	}
	return t, nil
}

func (m *mockTableStore) HasActiveOrderForTable(_ context.Context, tableID uuid.UUID) (bool, error) {
	return m.activeOrders[tableID], nil
}

func (m *mockTableStore) UpdateTableStatus(_ context.Context, arg database.UpdateTableStatusParams) (database.DiningTable, error) {
	t, ok := m.tables[arg.ID]
	if !ok {
		return database.DiningTable{}, pgx.ErrNoRows
	}
	t.Status = arg.Status
	m.tables[t.ID] = t
	return t, nil
}

// --- Helpers ---

func setupTableRouter(store *mockTableStore) *chi.Mux {
	h := handler.NewTableHandler(store, &mockPool{}, func(db database.DBTX) handler.TableStore {
		return store
	})
	r := chi.NewRouter()
	r.Route("/tables", func(r chi.Router) {
		h.RegisterReadRoutes(r)
		h.RegisterAdminRoutes(r)
	})
	return r
}

func seedTable(store *mockTableStore, number, status string) database.DiningTable {
	t := database.DiningTable{
		ID:          uuid.New(),
		TableNumber: number,
		Capacity:    4,
		Status:      status,
	}
	store.tables[t.ID] = t
	return t
}

// --- List tests ---

func TestTableList_Empty(t *testing.T) {
	store := newMockTableStore()
	router := setupTableRouter(store)

	rr := doRequest(t, router, "GET", "/tables", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	resp := decodeListResponse(t, rr)
	if len(resp) != 0 {
		t.Errorf("expected empty list, got %d tables", len(resp))
	}
}

func TestTableList_ShowsStatus(t *testing.T) {
	store := newMockTableStore()
	seedTable(store, "T1", "Occupied")

	router := setupTableRouter(store)
	rr := doRequest(t, router, "GET", "/tables", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}

	resp := decodeListResponse(t, rr)
	if len(resp) != 1 {
		t.Fatalf("expected 1 table, got %d", len(resp))
	}
	if resp[0]["status"] != "Occupied" {
		t.Errorf("status: got %v, want Occupied", resp[0]["status"])
	}
}

// --- Create tests ---

func TestTableCreate_Valid(t *testing.T) {
	store := newMockTableStore()
	router := setupTableRouter(store)

	rr := doRequest(t, router, "POST", "/tables", map[string]interface{}{
		"table_number": "T1",
		"capacity":     4,
	})

	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusCreated, rr.Body.String())
	}

	resp := decodeResponse(t, rr)
	if resp["table_number"] != "T1" {
		t.Errorf("table_number: got %v, want T1", resp["table_number"])
	}
	if resp["status"] != "Available" {
		t.Errorf("status: got %v, want Available (default)", resp["status"])
	}
}

func TestTableCreate_ExplicitStatus(t *testing.T) {
	store := newMockTableStore()
	router := setupTableRouter(store)

	rr := doRequest(t, router, "POST", "/tables", map[string]interface{}{
		"table_number": "T2",
		"capacity":     2,
		"status":       "Reserved",
	})

	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusCreated, rr.Body.String())
	}

	resp := decodeResponse(t, rr)
	if resp["status"] != "Reserved" {
		t.Errorf("status: got %v, want Reserved", resp["status"])
	}
}

func TestTableCreate_MissingNumber(t *testing.T) {
	store := newMockTableStore()
	router := setupTableRouter(store)

	rr := doRequest(t, router, "POST", "/tables", map[string]interface{}{
		"capacity": 4,
	})

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestTableCreate_InvalidCapacity(t *testing.T) {
	store := newMockTableStore()
	router := setupTableRouter(store)

	rr := doRequest(t, router, "POST", "/tables", map[string]interface{}{
		"table_number": "T1",
		"capacity":     0,
	})

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestTableCreate_InvalidStatus(t *testing.T) {
	store := newMockTableStore()
	router := setupTableRouter(store)

	rr := doRequest(t, router, "POST", "/tables", map[string]interface{}{
		"table_number": "T1",
		"capacity":     4,
		"status":       "Broken",
	})

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestTableCreate_DuplicateNumber(t *testing.T) {
	store := newMockTableStore()
	seedTable(store, "T1", "Available")
	router := setupTableRouter(store)

	rr := doRequest(t, router, "POST", "/tables", map[string]interface{}{
		"table_number": "T1",
		"capacity":     4,
	})

	if rr.Code != http.StatusConflict {
		t.Errorf("status: got %d, want %d; body: %s", rr.Code, http.StatusConflict, rr.Body.String())
	}
}

// --- Status update tests ---

func TestTableUpdateStatus_Reserve(t *testing.T) {
	store := newMockTableStore()
	table := seedTable(store, "T1", "Available")
	router := setupTableRouter(store)

	rr := doRequest(t, router, "PUT", "/tables/"+table.ID.String()+"/status", map[string]interface{}{
		"status": "Reserved",
	})

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	resp := decodeResponse(t, rr)
	if resp["status"] != "Reserved" {
		t.Errorf("status: got %v, want Reserved", resp["status"])
	}
}

func TestTableUpdateStatus_OccupiedRejected(t *testing.T) {
	store := newMockTableStore()
	table := seedTable(store, "T1", "Available")
	router := setupTableRouter(store)

	// Occupied is owned by the order engine
	rr := doRequest(t, router, "PUT", "/tables/"+table.ID.String()+"/status", map[string]interface{}{
		"status": "Occupied",
	})

	if rr.Code != http.StatusConflict {
		t.Errorf("status: got %d, want %d; body: %s", rr.Code, http.StatusConflict, rr.Body.String())
	}

	if store.tables[table.ID].Status != "Available" {
		t.Error("table status should be unchanged")
	}
}

func TestTableUpdateStatus_AvailableWithActiveOrder(t *testing.T) {
	store := newMockTableStore()
	table := seedTable(store, "T1", "Occupied")
	store.activeOrders[table.ID] = true
	router := setupTableRouter(store)

	rr := doRequest(t, router, "PUT", "/tables/"+table.ID.String()+"/status", map[string]interface{}{
		"status": "Available",
	})

	if rr.Code != http.StatusConflict {
		t.Errorf("status: got %d, want %d; body: %s", rr.Code, http.StatusConflict, rr.Body.String())
	}

	if store.tables[table.ID].Status != "Occupied" {
		t.Error("table should stay Occupied while its order is open")
	}
}

func TestTableUpdateStatus_NeedsCleaningToAvailable(t *testing.T) {
	store := newMockTableStore()
	table := seedTable(store, "T1", "Needs Cleaning")
	router := setupTableRouter(store)

	rr := doRequest(t, router, "PUT", "/tables/"+table.ID.String()+"/status", map[string]interface{}{
		"status": "Available",
	})

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	resp := decodeResponse(t, rr)
	if resp["status"] != "Available" {
		t.Errorf("status: got %v, want Available", resp["status"])
	}
}

func TestTableUpdateStatus_NotFound(t *testing.T) {
	store := newMockTableStore()
	router := setupTableRouter(store)

	rr := doRequest(t, router, "PUT", "/tables/"+uuid.New().String()+"/status", map[string]interface{}{
		"status": "Reserved",
	})

	if rr.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestTableUpdateStatus_InvalidStatus(t *testing.T) {
	store := newMockTableStore()
	table := seedTable(store, "T1", "Available")
	router := setupTableRouter(store)

	rr := doRequest(t, router, "PUT", "/tables/"+table.ID.String()+"/status", map[string]interface{}{
		"status": "Closed",
	})

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}
