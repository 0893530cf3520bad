package requestshandler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"peerpulse/internal/domain/assignment"
	"peerpulse/internal/domain/auth"
	"peerpulse/internal/platform/metrics"
	"peerpulse/internal/transport/http/middleware"
)

type memStore struct {
	requests map[string]assignment.FeedbackRequest
}

func (m *memStore) CreateRequest(ctx context.Context, req assignment.FeedbackRequest) (string, bool, error) {
	return "", false, nil
}

func (m *memStore) GetRequest(ctx context.Context, requestID string) (assignment.FeedbackRequest, error) {
	req, ok := m.requests[requestID]
	if !ok {
		return assignment.FeedbackRequest{}, assignment.ErrRequestNotFound
	}
	return req, nil
}

func (m *memStore) RecentProviders(ctx context.Context, requesterID string, since time.Time) (map[string]struct{}, error) {
	return nil, nil
}

func (m *memStore) PendingFor(ctx context.Context, providerID string) ([]assignment.FeedbackRequest, error) {
	var out []assignment.FeedbackRequest
	for _, req := range m.requests {
		if req.ProviderID == providerID && req.Status != assignment.StatusCompleted {
			out = append(out, req)
		}
	}
	return out, nil
}

func (m *memStore) RequestsFrom(ctx context.Context, requesterID, cycleID string) ([]assignment.FeedbackRequest, error) {
	return nil, nil
}

func (m *memStore) UpdateStatusIf(ctx context.Context, requestID, fromStatus, toStatus string) (bool, error) {
	req, ok := m.requests[requestID]
	if !ok || req.Status != fromStatus {
		return false, nil
	}
	req.Status = toStatus
	m.requests[requestID] = req
	return true, nil
}

func (m *memStore) MarkOverdue(ctx context.Context, asOf time.Time) ([]assignment.FeedbackRequest, error) {
	return nil, nil
}

func (m *memStore) CreateResponse(ctx context.Context, resp assignment.FeedbackResponse) (string, error) {
	req := m.requests[resp.RequestID]
	req.Status = assignment.StatusCompleted
	m.requests[resp.RequestID] = req
	return "resp-1", nil
}

type allowAll struct{}

func (allowAll) HasPermission(ctx context.Context, roleName, permission string) (bool, error) {
	return true, nil
}

func newTestRouter(store *memStore) http.Handler {
	svc := assignment.NewService(store, nil, nil, nil, nil, metrics.New())
	handler := NewHandler(svc, allowAll{})
	router := chi.NewRouter()
	router.Route("/api/v1", func(r chi.Router) {
		handler.RegisterRoutes(r)
	})
	return router
}

func asProvider(req *http.Request, employeeID string) *http.Request {
	return req.WithContext(middleware.WithUser(req.Context(), auth.UserContext{
		UserID:     "u-" + employeeID,
		EmployeeID: employeeID,
		RoleName:   auth.RoleEmployee,
	}))
}

func TestHandlePendingReturnsCallersRequests(t *testing.T) {
	store := &memStore{requests: map[string]assignment.FeedbackRequest{
		"r1": {ID: "r1", RequesterID: "a", ProviderID: "b", Status: assignment.StatusPending},
		"r2": {ID: "r2", RequesterID: "a", ProviderID: "c", Status: assignment.StatusPending},
	}}
	router := newTestRouter(store)

	req := asProvider(httptest.NewRequest(http.MethodGet, "/api/v1/requests/pending", nil), "b")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Data []assignment.FeedbackRequest `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Data) != 1 || body.Data[0].ID != "r1" {
		t.Fatalf("unexpected pending set: %+v", body.Data)
	}
}

func TestHandleUpdateStatusMapping(t *testing.T) {
	store := &memStore{requests: map[string]assignment.FeedbackRequest{
		"r1": {ID: "r1", ProviderID: "b", Status: assignment.StatusCompleted},
	}}
	router := newTestRouter(store)

	cases := []struct {
		id     string
		status string
		want   int
	}{
		{"missing", assignment.StatusInProgress, http.StatusNotFound},
		{"r1", "bogus", http.StatusBadRequest},
		{"r1", assignment.StatusInProgress, http.StatusConflict},
	}
	for _, tc := range cases {
		payload := strings.NewReader(`{"status":"` + tc.status + `"}`)
		req := asProvider(httptest.NewRequest(http.MethodPatch, "/api/v1/requests/"+tc.id+"/status", payload), "b")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != tc.want {
			t.Fatalf("%s -> %s: expected %d, got %d: %s", tc.id, tc.status, tc.want, rec.Code, rec.Body.String())
		}
	}
}

func TestHandleSubmitResponse(t *testing.T) {
	store := &memStore{requests: map[string]assignment.FeedbackRequest{
		"r1": {ID: "r1", RequesterID: "a", ProviderID: "b", Status: assignment.StatusPending},
	}}
	router := newTestRouter(store)

	// A different provider cannot answer.
	req := asProvider(httptest.NewRequest(http.MethodPost, "/api/v1/requests/r1/response",
		strings.NewReader(`{"content":"nope"}`)), "intruder")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}

	// The owner can.
	req = asProvider(httptest.NewRequest(http.MethodPost, "/api/v1/requests/r1/response",
		strings.NewReader(`{"content":"great teammate","rating":5}`)), "b")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	// A second submission conflicts.
	req = asProvider(httptest.NewRequest(http.MethodPost, "/api/v1/requests/r1/response",
		strings.NewReader(`{"content":"again"}`)), "b")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
	}
}
