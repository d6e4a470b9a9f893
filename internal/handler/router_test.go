package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/boddenberg/crm-api-go/internal/handler"
	"github.com/boddenberg/crm-api-go/internal/infra/memory"
	"github.com/boddenberg/crm-api-go/internal/infra/observability"
	"github.com/boddenberg/crm-api-go/internal/infra/resilience"
	"github.com/boddenberg/crm-api-go/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type response struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Count   *int            `json:"count"`
	Stack   []string        `json:"stack"`
}

type testServer struct {
	router  http.Handler
	metrics *observability.Metrics
}

func newTestServer(t *testing.T, devMode bool) *testServer {
	t.Helper()

	store := memory.New()
	metrics := observability.NewMetrics()
	logger := zap.NewNop()
	hasher := service.NewPasswordHasher(bcrypt.MinCost)
	tokens := service.NewTokenIssuer("test-secret", time.Hour, "crm-test")
	validator := service.NewValidator(store, metrics)

	svc := handler.Services{
		Auth:           service.NewAuthService(store, store, hasher, tokens, "admin@system.com", logger),
		Users:          service.NewUserService(store, validator, hasher, logger),
		Leads:          service.NewLeadService(store, validator, metrics, logger),
		WorkItems:      service.NewWorkItemService(store, validator, logger),
		Tasks:          service.NewTaskService(store, validator, logger),
		Communications: service.NewCommunicationService(store, validator, logger),
		Lookups:        service.NewLookupService(store, store),
		Health:         service.NewHealthService(store, resilience.NewCircuitBreaker("test-store", logger), "test", "0.0.0", logger),
	}
	cfg := handler.RouterConfig{
		APIPrefix:      "/api",
		AllowedOrigins: []string{"*"},
		AdminRoles:     []string{"Admin"},
		MaxConcurrency: 10,
		DevMode:        devMode,
	}
	return &testServer{
		router:  handler.NewRouter(svc, cfg, metrics, logger),
		metrics: metrics,
	}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, response) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var resp response
	if rec.Body.Len() > 0 {
		_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	}
	return rec, resp
}

// signup registers a user through the API and returns its id and token.
func (s *testServer) signup(t *testing.T, email string, roleID int64) (int64, string) {
	t.Helper()

	rec, resp := s.do(t, http.MethodPost, "/api/auth/signup", "", map[string]any{
		"name":     "Test " + email,
		"email":    email,
		"password": "secret123",
		"role_id":  roleID,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var result struct {
		User  struct{ ID int64 } `json:"user"`
		Token string             `json:"token"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &result))
	return result.User.ID, result.Token
}

func decodeID(t *testing.T, resp response) int64 {
	t.Helper()

	var row struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &row))
	return row.ID
}

func (s *testServer) createCustomer(t *testing.T, token, name string) int64 {
	t.Helper()

	rec, resp := s.do(t, http.MethodPost, "/api/leads", token, map[string]any{
		"name":         name,
		"status_id":    1,
		"source_id":    1,
		"is_converted": true,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeID(t, resp)
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t, false)

	for _, path := range []string{"/api/health", "/api/health/ready", "/api/health/live", "/metrics", "/ping"} {
		t.Run(path, func(t *testing.T) {
			rec, _ := srv.do(t, http.MethodGet, path, "", nil)
			assert.Equal(t, http.StatusOK, rec.Code)
		})
	}

	rec, _ := srv.do(t, http.MethodGet, "/api/health", "", nil)
	var status struct {
		Status   string `json:"status"`
		Database struct {
			Status string `json:"status"`
		} `json:"database"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "healthy", status.Status)
	assert.Equal(t, "connected", status.Database.Status)
}

func TestSignupAndLogin(t *testing.T) {
	srv := newTestServer(t, false)
	srv.signup(t, "ana@example.com", 3)

	rec, resp := srv.do(t, http.MethodPost, "/api/auth/signup", "", map[string]any{
		"name":     "Ana Again",
		"email":    "ANA@example.com",
		"password": "secret123",
		"role_id":  3,
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.False(t, resp.Success)
	assert.Equal(t, "User with this email already exists", resp.Error)

	rec, resp = srv.do(t, http.MethodPost, "/api/auth/login", "", map[string]any{
		"email":    "ana@example.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(resp.Data), `"token"`)

	rec, resp = srv.do(t, http.MethodPost, "/api/auth/login", "", map[string]any{
		"email":    "ana@example.com",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid email or password", resp.Error)
}

func TestSignupValidation(t *testing.T) {
	srv := newTestServer(t, false)

	tests := []struct {
		name string
		body any
	}{
		{"missing email", map[string]any{"name": "X", "password": "secret123", "role_id": 2}},
		{"short password", map[string]any{"name": "X", "email": "x@example.com", "password": "123", "role_id": 2}},
		{"unknown field", map[string]any{"name": "X", "email": "x@example.com", "password": "secret123", "role_id": 2, "admin": true}},
		{"blank name", map[string]any{"name": "   ", "email": "x@example.com", "password": "secret123", "role_id": 2}},
		{"malformed json", `{"name":`},
		{"empty body", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, resp := srv.do(t, http.MethodPost, "/api/auth/signup", "", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.False(t, resp.Success)
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	srv := newTestServer(t, false)

	rec, resp := srv.do(t, http.MethodGet, "/api/leads", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Access token is required", resp.Error)

	rec, resp = srv.do(t, http.MethodGet, "/api/leads", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid token", resp.Error)

	assert.Equal(t, float64(1), srv.metrics.AuthFailures("missing_token"))
	assert.Equal(t, float64(1), srv.metrics.AuthFailures("invalid_token"))
}

func TestAdminOnlyRoutes(t *testing.T) {
	srv := newTestServer(t, false)
	_, userToken := srv.signup(t, "user@example.com", 2)
	_, adminToken := srv.signup(t, "boss@example.com", 1)

	body := map[string]any{
		"name":     "New Hire",
		"email":    "hire@example.com",
		"password": "secret123",
		"role_id":  3,
	}

	rec, resp := srv.do(t, http.MethodPost, "/api/users", userToken, body)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Access denied. Required role(s): Admin", resp.Error)
	assert.Equal(t, float64(1), srv.metrics.AuthFailures("role_mismatch"))

	rec, _ = srv.do(t, http.MethodPost, "/api/users", adminToken, body)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec, resp = srv.do(t, http.MethodGet, "/api/users", userToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, resp.Count)
	assert.Equal(t, 3, *resp.Count)
}

func TestSelfDeletionRejected(t *testing.T) {
	srv := newTestServer(t, false)
	adminID, adminToken := srv.signup(t, "boss@example.com", 1)

	rec, resp := srv.do(t, http.MethodDelete, fmt.Sprintf("/api/users/%d", adminID), adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "You cannot delete your own account", resp.Error)
}

func TestMeReturnsCaller(t *testing.T) {
	srv := newTestServer(t, false)
	id, token := srv.signup(t, "me@example.com", 3)

	rec, resp := srv.do(t, http.MethodGet, "/api/users/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, id, decodeID(t, resp))
}

func TestDeactivatedUserTokenRejected(t *testing.T) {
	srv := newTestServer(t, false)
	id, token := srv.signup(t, "gone@example.com", 3)
	_, adminToken := srv.signup(t, "boss@example.com", 1)

	rec, _ := srv.do(t, http.MethodDelete, fmt.Sprintf("/api/users/%d", id), adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = srv.do(t, http.MethodGet, "/api/leads", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLeadLifecycle(t *testing.T) {
	srv := newTestServer(t, false)
	_, token := srv.signup(t, "sales@example.com", 3)

	rec, resp := srv.do(t, http.MethodPost, "/api/leads", token, map[string]any{
		"name":      "Acme",
		"email":     "Contact@Acme.com",
		"phone":     "(11) 98765-4321",
		"status_id": 1,
		"source_id": 2,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	leadID := decodeID(t, resp)

	rec, resp = srv.do(t, http.MethodPost, "/api/leads", token, map[string]any{
		"name":      "Acme Copy",
		"email":     "contact@acme.com",
		"status_id": 1,
		"source_id": 2,
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, resp.Error, "contact@acme.com")

	path := fmt.Sprintf("/api/leads/%d/convert", leadID)
	rec, _ = srv.do(t, http.MethodPost, path, token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec, resp = srv.do(t, http.MethodPost, path, token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Lead is already converted", resp.Error)
	assert.Equal(t, float64(1), srv.metrics.LeadConversions())
	assert.Equal(t, float64(1), srv.metrics.DomainErrors("already_converted"))

	rec, resp = srv.do(t, http.MethodGet, "/api/leads?is_converted=true", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, resp.Count)
	assert.Equal(t, 1, *resp.Count)

	rec, resp = srv.do(t, http.MethodGet, "/api/leads?is_converted=false", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, *resp.Count)
	assert.JSONEq(t, `[]`, string(resp.Data))

	rec, _ = srv.do(t, http.MethodDelete, fmt.Sprintf("/api/leads/%d", leadID), token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec, _ = srv.do(t, http.MethodGet, fmt.Sprintf("/api/leads/%d", leadID), token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLeadQueryValidation(t *testing.T) {
	srv := newTestServer(t, false)
	_, token := srv.signup(t, "sales@example.com", 3)

	rec, _ := srv.do(t, http.MethodGet, "/api/leads?is_converted=maybe", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = srv.do(t, http.MethodGet, "/api/leads/abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, resp := srv.do(t, http.MethodPost, "/api/leads", token, map[string]any{
		"name":      "Acme",
		"status_id": 99,
		"source_id": 1,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid status_id", resp.Error)

	rec, resp = srv.do(t, http.MethodPost, "/api/leads", token, map[string]any{
		"name":      "   ",
		"status_id": 1,
		"source_id": 1,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation error on 'name': must not be blank", resp.Error)

	rec, resp = srv.do(t, http.MethodPost, "/api/work-items", token, map[string]any{
		"title":       "\t",
		"customer_id": 1,
		"status_id":   1,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation error on 'title': must not be blank", resp.Error)
}

func TestTaskCustomerMustMatchWorkItem(t *testing.T) {
	srv := newTestServer(t, false)
	_, token := srv.signup(t, "pm@example.com", 4)

	customerA := srv.createCustomer(t, token, "Customer A")
	customerB := srv.createCustomer(t, token, "Customer B")

	rec, resp := srv.do(t, http.MethodPost, "/api/work-items", token, map[string]any{
		"title":       "Onboarding",
		"customer_id": customerA,
		"status_id":   1,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	workItemID := decodeID(t, resp)

	rec, resp = srv.do(t, http.MethodPost, "/api/tasks", token, map[string]any{
		"title":        "Kickoff",
		"work_item_id": workItemID,
		"customer_id":  customerB,
		"status_id":    1,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Task customer_id must match the work item customer_id", resp.Error)

	rec, _ = srv.do(t, http.MethodPost, "/api/tasks", token, map[string]any{
		"title":        "Kickoff",
		"work_item_id": workItemID,
		"customer_id":  customerA,
		"status_id":    1,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, resp = srv.do(t, http.MethodGet, fmt.Sprintf("/api/tasks?work_item_id=%d", workItemID), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, *resp.Count)

	rec, resp = srv.do(t, http.MethodPost, "/api/tasks/filter", token, map[string]any{
		"customer_ids": []int64{customerB},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, *resp.Count)
}

func TestWorkItemRequiresCustomer(t *testing.T) {
	srv := newTestServer(t, false)
	_, token := srv.signup(t, "pm@example.com", 4)

	rec, resp := srv.do(t, http.MethodPost, "/api/leads", token, map[string]any{
		"name":      "Prospect",
		"status_id": 1,
		"source_id": 1,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	prospect := decodeID(t, resp)

	rec, resp = srv.do(t, http.MethodPost, "/api/work-items", token, map[string]any{
		"title":       "Too early",
		"customer_id": prospect,
		"status_id":   1,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid customer_id. Customer must exist and be a converted lead", resp.Error)
}

func TestCommunicationsFlow(t *testing.T) {
	srv := newTestServer(t, false)
	_, token := srv.signup(t, "sales@example.com", 3)
	leadID := srv.createCustomer(t, token, "Talkative Inc")

	rec, resp := srv.do(t, http.MethodPost, "/api/communications", token, map[string]any{
		"lead_id": leadID,
		"message": "  Called about renewal  ",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	id := decodeID(t, resp)

	rec, resp = srv.do(t, http.MethodPut, fmt.Sprintf("/api/communications/%d", id), token, map[string]any{
		"message": "Renewal confirmed",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(resp.Data), "Renewal confirmed")

	rec, resp = srv.do(t, http.MethodGet, fmt.Sprintf("/api/communications?lead_id=%d", leadID), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, *resp.Count)

	rec, _ = srv.do(t, http.MethodPost, "/api/communications", token, map[string]any{
		"lead_id": 9999,
		"message": "Nobody home",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLookupRoutes(t *testing.T) {
	srv := newTestServer(t, false)

	rec, resp := srv.do(t, http.MethodGet, "/api/roles", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 4, *resp.Count)

	_, token := srv.signup(t, "viewer@example.com", 2)
	for _, path := range []string{"/api/lead-statuses", "/api/sources", "/api/work-statuses", "/api/lead-statuses/1", "/api/sources/1", "/api/roles/1"} {
		t.Run(path, func(t *testing.T) {
			rec, _ := srv.do(t, http.MethodGet, path, token, nil)
			assert.Equal(t, http.StatusOK, rec.Code)
		})
	}

	rec, resp = srv.do(t, http.MethodGet, "/api/sources/42", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Source not found", resp.Error)
}

func TestUnknownRoute(t *testing.T) {
	srv := newTestServer(t, false)

	rec, resp := srv.do(t, http.MethodGet, "/api/nowhere", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, resp.Success)
}

func TestDevModeExposesStack(t *testing.T) {
	prod := newTestServer(t, false)
	_, resp := prod.do(t, http.MethodGet, "/api/leads", "", nil)
	assert.Empty(t, resp.Stack)

	dev := newTestServer(t, true)
	_, resp = dev.do(t, http.MethodGet, "/api/leads", "", nil)
	assert.NotEmpty(t, resp.Stack)
}
