package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"

	"github.com/alialmasri-information-technology/restaurant-management/internal/database"
	"github.com/alialmasri-information-technology/restaurant-management/internal/handler"
)

// --- Mock store ---

type mockUserStore struct {
	users map[uuid.UUID]database.User // keyed by user ID
}

func newMockUserStore() *mockUserStore {
	return &mockUserStore{users: make(map[uuid.UUID]database.User)}
}

func (m *mockUserStore) GetUserByUsername(_ context.Context, username string) (database.User, error) {
	for _, u := range m.users {
		if u.Username == username && u.IsActive {
			return u, nil
		}
	}
	return database.User{}, pgx.ErrNoRows
}

func (m *mockUserStore) GetUserByID(_ context.Context, id uuid.UUID) (database.User, error) {
	u, ok := m.users[id]
	if !ok || !u.IsActive {
		return database.User{}, pgx.ErrNoRows
	}
	return u, nil
}

func (m *mockUserStore) ListUsers(_ context.Context) ([]database.User, error) {
	var result []database.User
	for _, u := range m.users {
		result = append(result, u)
	}
	return result, nil
}

func (m *mockUserStore) CreateUser(_ context.Context, arg database.CreateUserParams) (database.User, error) {
	// Duplicate username simulates the PostgreSQL unique constraint
	for _, existing := range m.users {
		if existing.Username == arg.Username {
			return database.User{}, &pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"}
		}
	}
	u := database.User{
		ID:             uuid.New(),
		Username:       arg.Username,
		HashedPassword: arg.HashedPassword,
		Role:           arg.Role,
		FullName:       arg.FullName,
		IsActive:       true,
		CreatedAt:      time.Now(),
	}
	m.users[u.ID] = u
	return u, nil
}

func (m *mockUserStore) UpdateUser(_ context.Context, arg database.UpdateUserParams) (database.User, error) {
	u, ok := m.users[arg.ID]
	if !ok || !u.IsActive {
		return database.User{}, pgx.ErrNoRows
	}
	u.FullName = arg.FullName
	u.Role = arg.Role
	m.users[u.ID] = u
	return u, nil
}

func (m *mockUserStore) DeactivateUser(_ context.Context, id uuid.UUID) (uuid.UUID, error) {
	u, ok := m.users[id]
	if !ok || !u.IsActive {
		return uuid.Nil, pgx.ErrNoRows
	}
	u.IsActive = false
	m.users[u.ID] = u
	return u.ID, nil
}

// --- Helpers ---

func setupUserRouter(store *mockUserStore) *chi.Mux {
	h := handler.NewUserHandler(store)
	r := chi.NewRouter()
	r.Route("/users", h.RegisterRoutes)
	return r
}

func doRequest(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		req = httptest.NewRequest(method, path, bytes.NewReader(b))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func decodeResponse(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func decodeListResponse(t *testing.T, rr *httptest.ResponseRecorder) []map[string]interface{} {
	t.Helper()
	var resp []map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func seedUser(store *mockUserStore, username, password, role string) database.User {
	hashed, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	u := database.User{
		ID:             uuid.New(),
		Username:       username,
		HashedPassword: string(hashed),
		Role:           role,
		FullName:       username,
		IsActive:       true,
		CreatedAt:      time.Now(),
	}
	store.users[u.ID] = u
	return u
}

// --- List tests ---

func TestListUsers_Empty(t *testing.T) {
	store := newMockUserStore()
	router := setupUserRouter(store)

	rr := doRequest(t, router, "GET", "/users", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	resp := decodeListResponse(t, rr)
	if len(resp) != 0 {
		t.Errorf("expected empty list, got %d users", len(resp))
	}
}

func TestListUsers_IncludesDeactivated(t *testing.T) {
	store := newMockUserStore()
	active := seedUser(store, "alice", "pw", "Waiter")
	gone := seedUser(store, "bob", "pw", "Cashier")
	u := store.users[gone.ID]
	u.IsActive = false
	store.users[gone.ID] = u

	router := setupUserRouter(store)
	rr := doRequest(t, router, "GET", "/users", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}

	resp := decodeListResponse(t, rr)
	if len(resp) != 2 {
		t.Fatalf("expected 2 users (active and deactivated), got %d", len(resp))
	}
	_ = active
}

// --- Create tests ---

func TestCreateUser_Valid(t *testing.T) {
	store := newMockUserStore()
	router := setupUserRouter(store)

	rr := doRequest(t, router, "POST", "/users", map[string]interface{}{
		"username":  "waiter1",
		"password":  "secret123",
		"full_name": "First Waiter",
		"role":      "Waiter",
	})

	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusCreated, rr.Body.String())
	}

	resp := decodeResponse(t, rr)
	if resp["username"] != "waiter1" {
		t.Errorf("username: got %v, want waiter1", resp["username"])
	}
	if resp["role"] != "Waiter" {
		t.Errorf("role: got %v, want Waiter", resp["role"])
	}
	if resp["is_active"] != true {
		t.Errorf("is_active: got %v, want true", resp["is_active"])
	}
	if _, ok := resp["hashed_password"]; ok {
		t.Error("response must not expose hashed_password")
	}
}

func TestCreateUser_StoresHashedPassword(t *testing.T) {
	store := newMockUserStore()
	router := setupUserRouter(store)

	rr := doRequest(t, router, "POST", "/users", map[string]interface{}{
		"username": "cashier1",
		"password": "secret123",
		"role":     "Cashier",
	})

	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusCreated, rr.Body.String())
	}

	u, err := store.GetUserByUsername(context.Background(), "cashier1")
	if err != nil {
		t.Fatalf("user not stored: %v", err)
	}
	if u.HashedPassword == "secret123" {
		t.Fatal("password stored in plaintext")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.HashedPassword), []byte("secret123")); err != nil {
		t.Errorf("stored hash does not verify: %v", err)
	}
}

func TestCreateUser_MissingFields(t *testing.T) {
	store := newMockUserStore()
	router := setupUserRouter(store)

	rr := doRequest(t, router, "POST", "/users", map[string]interface{}{
		"username": "incomplete",
	})

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestCreateUser_InvalidRole(t *testing.T) {
	store := newMockUserStore()
	router := setupUserRouter(store)

	rr := doRequest(t, router, "POST", "/users", map[string]interface{}{
		"username": "manager1",
		"password": "secret123",
		"role":     "Manager",
	})

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d; body: %s", rr.Code, http.StatusBadRequest, rr.Body.String())
	}

	resp := decodeResponse(t, rr)
	if resp["error"] != "invalid role" {
		t.Errorf("error: got %v, want 'invalid role'", resp["error"])
	}
}

func TestCreateUser_DuplicateUsername(t *testing.T) {
	store := newMockUserStore()
	seedUser(store, "taken", "pw", "Waiter")
	router := setupUserRouter(store)

	rr := doRequest(t, router, "POST", "/users", map[string]interface{}{
		"username": "taken",
		"password": "secret123",
		"role":     "Waiter",
	})

	if rr.Code != http.StatusConflict {
		t.Errorf("status: got %d, want %d; body: %s", rr.Code, http.StatusConflict, rr.Body.String())
	}
}

func TestCreateUser_InvalidBody(t *testing.T) {
	store := newMockUserStore()
	router := setupUserRouter(store)

	rr := doRequest(t, router, "POST", "/users", "not json")

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

// --- Update tests ---

func TestUpdateUser_Valid(t *testing.T) {
	store := newMockUserStore()
	u := seedUser(store, "alice", "pw", "Waiter")
	router := setupUserRouter(store)

	rr := doRequest(t, router, "PUT", "/users/"+u.ID.String(), map[string]interface{}{
		"full_name": "Alice Smith",
		"role":      "Cashier",
	})

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	resp := decodeResponse(t, rr)
	if resp["full_name"] != "Alice Smith" {
		t.Errorf("full_name: got %v, want 'Alice Smith'", resp["full_name"])
	}
	if resp["role"] != "Cashier" {
		t.Errorf("role: got %v, want Cashier", resp["role"])
	}
}

func TestUpdateUser_NotFound(t *testing.T) {
	store := newMockUserStore()
	router := setupUserRouter(store)

	rr := doRequest(t, router, "PUT", "/users/"+uuid.New().String(), map[string]interface{}{
		"full_name": "Ghost",
		"role":      "Waiter",
	})

	if rr.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestUpdateUser_InvalidRole(t *testing.T) {
	store := newMockUserStore()
	u := seedUser(store, "alice", "pw", "Waiter")
	router := setupUserRouter(store)

	rr := doRequest(t, router, "PUT", "/users/"+u.ID.String(), map[string]interface{}{
		"full_name": "Alice",
		"role":      "Supervisor",
	})

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestUpdateUser_InvalidID(t *testing.T) {
	store := newMockUserStore()
	router := setupUserRouter(store)

	rr := doRequest(t, router, "PUT", "/users/not-a-uuid", map[string]interface{}{
		"full_name": "Test",
		"role":      "Waiter",
	})

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

// --- Delete tests ---

func TestDeleteUser_Deactivates(t *testing.T) {
	store := newMockUserStore()
	u := seedUser(store, "leaver", "pw", "Waiter")
	router := setupUserRouter(store)

	rr := doRequest(t, router, "DELETE", "/users/"+u.ID.String(), nil)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusNoContent, rr.Body.String())
	}

	// Soft delete: the row survives with is_active=false
	stored, exists := store.users[u.ID]
	if !exists {
		t.Fatal("expected user row to survive deactivation")
	}
	if stored.IsActive {
		t.Error("expected is_active=false after delete")
	}
}

func TestDeleteUser_NotFound(t *testing.T) {
	store := newMockUserStore()
	router := setupUserRouter(store)

	rr := doRequest(t, router, "DELETE", "/users/"+uuid.New().String(), nil)

	if rr.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestDeleteUser_AlreadyDeactivated(t *testing.T) {
	store := newMockUserStore()
	u := seedUser(store, "leaver", "pw", "Waiter")
	router := setupUserRouter(store)

	doRequest(t, router, "DELETE", "/users/"+u.ID.String(), nil)
	rr := doRequest(t, router, "DELETE", "/users/"+u.ID.String(), nil)

	if rr.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}
