package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"peerpulse/internal/domain/auth"
)

type staticPerms struct {
	grants map[string][]string
}

func (s *staticPerms) HasPermission(ctx context.Context, roleName, permission string) (bool, error) {
	for _, perm := range s.grants[roleName] {
		if perm == permission {
			return true, nil
		}
	}
	return false, nil
}

func TestRequirePermission(t *testing.T) {
	perms := &staticPerms{grants: map[string][]string{
		auth.RoleAdmin: {auth.PermCyclesManage},
	}}
	handler := RequirePermission(auth.PermCyclesManage, perms)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	// No user attached.
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/cycles", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without user, got %d", rec.Code)
	}

	// Wrong role.
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cycles", nil).
		WithContext(WithUser(context.Background(), auth.UserContext{UserID: "u1", RoleName: auth.RoleEmployee}))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for employee, got %d", rec.Code)
	}

	// Granted.
	req = httptest.NewRequest(http.MethodPost, "/api/v1/cycles", nil).
		WithContext(WithUser(context.Background(), auth.UserContext{UserID: "u2", RoleName: auth.RoleAdmin}))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected admin to pass, got %d", rec.Code)
	}
}
