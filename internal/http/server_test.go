package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/mail"
	"fintrack/internal/services"
	"fintrack/internal/storage"
)

// memStore is a minimal in-memory storage.Store for handler tests.
type memStore struct {
	transactions  []core.Transaction
	budgets       []core.Budget
	notifications []core.Notification
	nextID        int64
}

func (m *memStore) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *memStore) CreateTransaction(_ context.Context, tx *core.Transaction) error {
	tx.ID = m.id()
	m.transactions = append(m.transactions, *tx)
	return nil
}

func (m *memStore) GetTransaction(_ context.Context, userID, id int64) (core.Transaction, error) {
	for _, tx := range m.transactions {
		if tx.ID == id && tx.UserID == userID {
			return tx, nil
		}
	}
	return core.Transaction{}, storage.ErrNotFound
}

func (m *memStore) UpdateTransaction(_ context.Context, tx *core.Transaction) error {
	for i, existing := range m.transactions {
		if existing.ID == tx.ID && existing.UserID == tx.UserID {
			m.transactions[i] = *tx
			return nil
		}
	}
	return storage.ErrNotFound
}

func (m *memStore) DeleteTransaction(_ context.Context, userID, id int64) error {
	for i, tx := range m.transactions {
		if tx.ID == id && tx.UserID == userID {
			m.transactions = append(m.transactions[:i], m.transactions[i+1:]...)
			return nil
		}
	}
	return storage.ErrNotFound
}

func (m *memStore) ListTransactions(_ context.Context, userID int64, filter storage.TransactionFilter) ([]core.Transaction, error) {
	var out []core.Transaction
	for _, tx := range m.transactions {
		if tx.UserID != userID {
			continue
		}
		if filter.Category != "" && tx.Category != filter.Category {
			continue
		}
		if filter.Type != "" && tx.Type != filter.Type {
			continue
		}
		if !filter.From.IsZero() && tx.Date.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && tx.Date.After(filter.To) {
			continue
		}
		out = append(out, tx)
	}
	return out, nil
}

func (m *memStore) CreateBudget(_ context.Context, b *core.Budget) error {
	b.ID = m.id()
	m.budgets = append(m.budgets, *b)
	return nil
}

func (m *memStore) GetBudget(_ context.Context, userID, id int64) (core.Budget, error) {
	for _, b := range m.budgets {
		if b.ID == id && b.UserID == userID {
			return b, nil
		}
	}
	return core.Budget{}, storage.ErrNotFound
}

func (m *memStore) UpdateBudget(_ context.Context, b *core.Budget) error {
	for i, existing := range m.budgets {
		if existing.ID == b.ID && existing.UserID == b.UserID {
			m.budgets[i] = *b
			return nil
		}
	}
	return storage.ErrNotFound
}

func (m *memStore) DeleteBudget(_ context.Context, userID, id int64) error {
	for i, b := range m.budgets {
		if b.ID == id && b.UserID == userID {
			m.budgets = append(m.budgets[:i], m.budgets[i+1:]...)
			return nil
		}
	}
	return storage.ErrNotFound
}

func (m *memStore) ListBudgets(_ context.Context, userID int64) ([]core.Budget, error) {
	var out []core.Budget
	for _, b := range m.budgets {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *memStore) ListBudgetsByCategory(_ context.Context, userID int64, category string) ([]core.Budget, error) {
	var out []core.Budget
	for _, b := range m.budgets {
		if b.UserID == userID && b.Category == category {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *memStore) ListRecurringBudgets(context.Context) ([]core.Budget, error) {
	return m.budgets, nil
}

func (m *memStore) CreateNotification(_ context.Context, n *core.Notification) error {
	n.ID = m.id()
	m.notifications = append(m.notifications, *n)
	return nil
}

func (m *memStore) ListNotifications(_ context.Context, userID int64, unreadOnly bool) ([]core.Notification, error) {
	var out []core.Notification
	for _, n := range m.notifications {
		if n.UserID != userID {
			continue
		}
		if unreadOnly && n.IsRead {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

func (m *memStore) MarkNotificationRead(_ context.Context, userID, id int64) error {
	for i, n := range m.notifications {
		if n.ID == id && n.UserID == userID {
			m.notifications[i].IsRead = true
			return nil
		}
	}
	return storage.ErrNotFound
}

func (m *memStore) CountUnreadNotifications(_ context.Context, userID int64) (int64, error) {
	var count int64
	for _, n := range m.notifications {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (m *memStore) GetUserByID(_ context.Context, id int64) (core.User, error) {
	return core.User{ID: id, Email: "user@example.com"}, nil
}

func (m *memStore) Close() error { return nil }

// nopPublisher swallows budget checks so handler tests never touch a
// broker or spawn background checks.
type nopPublisher struct{}

func (nopPublisher) PublishBudgetCheck(context.Context, int64, string) error { return nil }

func newTestServer(store *memStore) *Server {
	logger := log.New(log.DefaultConfig())
	notifier := services.NewNotifier(store, store, mail.ChainConfig{})
	budgets := services.NewBudgetService(store, store, notifier)
	txs := services.NewTransactionService(store, budgets, nopPublisher{}, time.Second)
	reports := services.NewReportService(store)
	return NewServer(":0", store, txs, budgets, reports, logger)
}

func do(t *testing.T, srv *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func TestHealth(t *testing.T) {
	srv := newTestServer(&memStore{})
	rr := do(t, srv, http.MethodGet, "/healthz", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("healthz status = %d", rr.Code)
	}
}

func TestMissingUserID(t *testing.T) {
	srv := newTestServer(&memStore{})
	rr := do(t, srv, http.MethodGet, "/api/budgets", "")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without user_id, got %d", rr.Code)
	}
}

func TestBudgetLifecycle(t *testing.T) {
	srv := newTestServer(&memStore{})

	// Validation failure.
	rr := do(t, srv, http.MethodPost, "/api/budgets?user_id=1",
		`{"category":"groceries","amount":"0","period":"monthly","startDate":"2024-06-01"}`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("zero amount: expected 422, got %d (%s)", rr.Code, rr.Body.String())
	}

	rr = do(t, srv, http.MethodPost, "/api/budgets?user_id=1",
		`{"category":"travel","amount":"500","period":"quarterly","startDate":"2024-06-01"}`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("unknown period: expected 422, got %d", rr.Code)
	}

	// Create.
	rr = do(t, srv, http.MethodPost, "/api/budgets?user_id=1",
		`{"name":"Groceries","category":"groceries","amount":"500","period":"monthly","startDate":"2024-06-01"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d (%s)", rr.Code, rr.Body.String())
	}
	var created struct {
		ID     int64  `json:"id"`
		Amount string `json:"amount"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	if created.ID == 0 {
		t.Fatal("created budget has no ID")
	}
	if created.Amount != "500" {
		t.Errorf("amount = %q, want decimal string 500", created.Amount)
	}

	// Read back.
	rr = do(t, srv, http.MethodGet, fmt.Sprintf("/api/budgets/%d?user_id=1", created.ID), "")
	if rr.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", rr.Code)
	}

	// Progress for an empty window.
	rr = do(t, srv, http.MethodGet, fmt.Sprintf("/api/budgets/%d/progress?user_id=1", created.ID), "")
	if rr.Code != http.StatusOK {
		t.Fatalf("progress: expected 200, got %d (%s)", rr.Code, rr.Body.String())
	}
	var progress struct {
		Progress struct {
			TotalSpent      string `json:"totalSpent"`
			PercentageSpent string `json:"percentageSpent"`
			IsOverspent     bool   `json:"isOverspent"`
		} `json:"progress"`
		Period struct {
			StartDate time.Time `json:"startDate"`
			EndDate   time.Time `json:"endDate"`
		} `json:"period"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &progress); err != nil {
		t.Fatalf("decode progress: %v", err)
	}
	if progress.Progress.TotalSpent != "0" || progress.Progress.IsOverspent {
		t.Errorf("empty window progress = %+v, want zero spend", progress.Progress)
	}
	if !progress.Period.StartDate.Before(progress.Period.EndDate) {
		t.Error("period start should precede end")
	}

	// Another user cannot see it.
	rr = do(t, srv, http.MethodGet, fmt.Sprintf("/api/budgets/%d?user_id=2", created.ID), "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("cross-user get: expected 404, got %d", rr.Code)
	}

	// Delete.
	rr = do(t, srv, http.MethodDelete, fmt.Sprintf("/api/budgets/%d?user_id=1", created.ID), "")
	if rr.Code != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", rr.Code)
	}
	rr = do(t, srv, http.MethodGet, fmt.Sprintf("/api/budgets/%d?user_id=1", created.ID), "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("get after delete: expected 404, got %d", rr.Code)
	}
}

func TestTransactionEndpoints(t *testing.T) {
	srv := newTestServer(&memStore{})

	rr := do(t, srv, http.MethodPost, "/api/transactions?user_id=1",
		`{"amount":"25.50","type":"expense","category":"dining","date":"2024-06-10"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d (%s)", rr.Code, rr.Body.String())
	}
	var created struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}

	rr = do(t, srv, http.MethodGet, fmt.Sprintf("/api/transactions/%d?user_id=1", created.ID), "")
	if rr.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", rr.Code)
	}

	rr = do(t, srv, http.MethodPost, "/api/transactions?user_id=1",
		`{"amount":"25.50","type":"transfer","category":"dining","date":"2024-06-10"}`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("bad type: expected 422, got %d", rr.Code)
	}

	rr = do(t, srv, http.MethodGet, "/api/transactions?user_id=1&category=dining", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", rr.Code)
	}
	var listed []json.RawMessage
	if err := json.Unmarshal(rr.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(listed))
	}

	rr = do(t, srv, http.MethodGet, "/api/transactions?user_id=1&startDate=bogus", "")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("bad date: expected 400, got %d", rr.Code)
	}
}

func TestNotificationEndpoints(t *testing.T) {
	store := &memStore{}
	store.notifications = []core.Notification{
		{ID: 100, UserID: 1, Type: core.NotificationBudgetOverrun, Message: "over"},
		{ID: 101, UserID: 1, Type: core.NotificationBudgetOverrun, Message: "read already", IsRead: true},
	}
	store.nextID = 101
	srv := newTestServer(store)

	rr := do(t, srv, http.MethodGet, "/api/notifications?user_id=1&unread=true", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", rr.Code)
	}
	var notifications []struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &notifications); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(notifications) != 1 || notifications[0].ID != 100 {
		t.Fatalf("unread filter returned %+v", notifications)
	}

	rr = do(t, srv, http.MethodGet, "/api/notifications/unread-count?user_id=1", "")
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `"count":1`) {
		t.Fatalf("unread-count = %d %s", rr.Code, rr.Body.String())
	}

	rr = do(t, srv, http.MethodPost, "/api/notifications/100/read?user_id=1", "")
	if rr.Code != http.StatusNoContent {
		t.Fatalf("mark read: expected 204, got %d", rr.Code)
	}
	rr = do(t, srv, http.MethodGet, "/api/notifications/unread-count?user_id=1", "")
	if !strings.Contains(rr.Body.String(), `"count":0`) {
		t.Fatalf("count after mark read = %s", rr.Body.String())
	}
}

func TestReportEndpoints(t *testing.T) {
	store := &memStore{}
	srv := newTestServer(store)

	seed := []string{
		`{"amount":"3000","type":"income","category":"salary","date":"2024-01-05"}`,
		`{"amount":"400","type":"expense","category":"groceries","date":"2024-01-10"}`,
		`{"amount":"100","type":"expense","category":"dining","date":"2024-01-12"}`,
	}
	for _, body := range seed {
		if rr := do(t, srv, http.MethodPost, "/api/transactions?user_id=1", body); rr.Code != http.StatusCreated {
			t.Fatalf("seed: %d %s", rr.Code, rr.Body.String())
		}
	}

	rr := do(t, srv, http.MethodGet, "/api/reports/monthly?user_id=1&startDate=2024-01-01&endDate=2024-12-31", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("monthly: expected 200, got %d (%s)", rr.Code, rr.Body.String())
	}
	var months []struct {
		Month string `json:"month"`
		Net   string `json:"net"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &months); err != nil {
		t.Fatalf("decode monthly: %v", err)
	}
	if len(months) != 1 || months[0].Month != "2024-01" || months[0].Net != "2500" {
		t.Fatalf("monthly = %+v", months)
	}

	rr = do(t, srv, http.MethodGet, "/api/reports/categories?user_id=1&startDate=2024-01-01&endDate=2024-12-31", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("categories: expected 200, got %d", rr.Code)
	}
	var categories struct {
		Total string `json:"total"`
		Items []struct {
			Category   string `json:"category"`
			Percentage string `json:"percentage"`
		} `json:"items"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &categories); err != nil {
		t.Fatalf("decode categories: %v", err)
	}
	if categories.Total != "500" || len(categories.Items) != 2 {
		t.Fatalf("categories = %+v", categories)
	}
	if categories.Items[0].Category != "groceries" || categories.Items[0].Percentage != "80" {
		t.Fatalf("top category = %+v", categories.Items[0])
	}

	rr = do(t, srv, http.MethodGet, "/api/reports/cashflow?user_id=1&startDate=2024-01-01&endDate=2024-12-31", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("cashflow: expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"net":"2500"`) {
		t.Fatalf("cashflow body = %s", rr.Body.String())
	}
}
