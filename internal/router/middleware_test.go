package router

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/paygate-next/internal/authz"
	"github.com/paygate-next/internal/config"
	"github.com/paygate-next/internal/constants"
	handlershared "github.com/paygate-next/internal/http/handlers/shared"
	"github.com/paygate-next/internal/models"
	"github.com/paygate-next/internal/service"
	"github.com/paygate-next/internal/tenancy"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func TestCORSPolicyAllowOrigin(t *testing.T) {
	cases := []struct {
		name   string
		cfg    config.CORSConfig
		origin string
		want   string
	}{
		{name: "wildcard", cfg: config.CORSConfig{AllowedOrigins: []string{"*"}}, origin: "https://example.com", want: "*"},
		{name: "empty list means any", cfg: config.CORSConfig{}, origin: "https://example.com", want: "*"},
		{name: "wildcard with credentials echoes", cfg: config.CORSConfig{AllowedOrigins: []string{"*"}, AllowCredentials: true}, origin: "https://example.com", want: "https://example.com"},
		{name: "allow list match", cfg: config.CORSConfig{AllowedOrigins: []string{"https://a.example.com", " https://B.example.com "}}, origin: "https://b.example.com", want: "https://b.example.com"},
		{name: "allow list miss", cfg: config.CORSConfig{AllowedOrigins: []string{"https://a.example.com"}}, origin: "https://x.example.com", want: ""},
		{name: "allow list without origin", cfg: config.CORSConfig{AllowedOrigins: []string{"https://a.example.com"}}, origin: "", want: ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := newCORSPolicy(tc.cfg).allowOrigin(tc.origin); got != tc.want {
				t.Fatalf("want %q got %q", tc.want, got)
			}
		})
	}
}

func TestCORSMiddlewarePreflight(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(CORSMiddleware(config.CORSConfig{AllowedOrigins: []string{"https://console.acme.test"}, MaxAge: 600}))
	r.POST("/api/v1/transactions/process", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/transactions/process", nil)
	req.Header.Set("Origin", "https://console.acme.test")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("preflight want 204 got %d", w.Code)
	}
	h := w.Header()
	if h.Get("Access-Control-Allow-Origin") != "https://console.acme.test" || h.Get("Vary") != "Origin" {
		t.Fatalf("unexpected origin headers: %v", h)
	}
	if h.Get("Access-Control-Max-Age") != "600" || !strings.Contains(h.Get("Access-Control-Allow-Headers"), requestIDHeader) {
		t.Fatalf("unexpected preflight headers: %v", h)
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"request_id": getRequestID(c)})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(requestIDHeader, "req-123")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status want 200 got %d", w.Code)
	}
	if w.Header().Get(requestIDHeader) != "req-123" {
		t.Fatalf("response request id want req-123 got %s", w.Header().Get(requestIDHeader))
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if resp["request_id"] != "req-123" {
		t.Fatalf("context request id want req-123 got %s", resp["request_id"])
	}

	w2 := httptest.NewRecorder()
	req2 := httptest.NewRequest(http.MethodGet, "/ping", nil)
	r.ServeHTTP(w2, req2)
	generated := w2.Header().Get(requestIDHeader)
	if generated == "" {
		t.Fatalf("generated request id should not be empty")
	}
	if resp := strings.TrimSpace(generated); resp == "" {
		t.Fatalf("generated request id should not be blank")
	}
}

const testOperatorSecret = "router-test-secret"

type stubTenantLookup struct {
	tenants map[string]*models.Tenant
	err     error
}

func (s stubTenantLookup) GetActiveBySubdomain(subdomain string) (*models.Tenant, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.tenants[subdomain], nil
}

func newStubResolver(err error) *tenancy.Resolver {
	return tenancy.NewResolver(stubTenantLookup{
		tenants: map[string]*models.Tenant{
			"acme":   {ID: 1, Subdomain: "acme", IsActive: true},
			"globex": {ID: 2, Subdomain: "globex", IsActive: true},
		},
		err: err,
	}, nil)
}

func decodeStatusCode(t *testing.T, w *httptest.ResponseRecorder) int {
	t.Helper()
	var resp struct {
		StatusCode int `json:"status_code"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	return resp.StatusCode
}

func signOperator(t *testing.T, tenantID uint, role string) string {
	t.Helper()
	token, err := service.SignOperatorToken(testOperatorSecret, service.OperatorClaims{
		UserID:   42,
		TenantID: tenantID,
		Role:     role,
	}, time.Hour)
	if err != nil {
		t.Fatalf("sign operator token failed: %v", err)
	}
	return token
}

func TestTenantContextMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(TenantContextMiddleware(newStubResolver(nil)))
	r.GET("/api/v1/tenant", func(c *gin.Context) {
		scope := tenancy.FromContext(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"tenant_id": scope.TenantID()})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/tenant", nil)
	req.Host = "ACME.paygate.test:8080"
	r.ServeHTTP(w, req)
	var resp map[string]uint
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if resp["tenant_id"] != 1 {
		t.Fatalf("expected acme scope, got %+v", resp)
	}

	for _, host := range []string{"paygate.test", "unknown.paygate.test", "127.0.0.1"} {
		w = httptest.NewRecorder()
		req = httptest.NewRequest(http.MethodGet, "/api/v1/tenant", nil)
		req.Host = host
		r.ServeHTTP(w, req)
		if code := decodeStatusCode(t, w); code != 404 {
			t.Fatalf("host %s: status_code want 404 got %d", host, code)
		}
	}
}

func TestTenantContextMiddlewareStoreFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(TenantContextMiddleware(newStubResolver(errors.New("db down"))))
	r.GET("/api/v1/tenant", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/tenant", nil)
	req.Host = "acme.paygate.test"
	r.ServeHTTP(w, req)
	if code := decodeStatusCode(t, w); code != 500 {
		t.Fatalf("status_code want 500 got %d", code)
	}
}

func TestOperatorAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(TenantContextMiddleware(newStubResolver(nil)), OperatorAuthMiddleware(testOperatorSecret))
	r.GET("/api/v1/tenant", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status_code":   0,
			"operator_id":   c.GetUint(handlershared.OperatorIDKey),
			"operator_role": c.GetString(handlershared.OperatorRoleKey),
		})
	})

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{name: "missing header", header: "", want: 401},
		{name: "malformed header", header: "Token abc", want: 401},
		{name: "bad token", header: "Bearer not-a-jwt", want: 401},
		{name: "foreign tenant", header: "Bearer " + signOperator(t, 2, constants.OperatorRoleAdmin), want: 403},
		{name: "own tenant", header: "Bearer " + signOperator(t, 1, constants.OperatorRoleUser), want: 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/v1/tenant", nil)
			req.Host = "acme.paygate.test"
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			r.ServeHTTP(w, req)
			if code := decodeStatusCode(t, w); code != tc.want {
				t.Fatalf("status_code want %d got %d body=%s", tc.want, code, w.Body.String())
			}
			if tc.want == 0 && !strings.Contains(w.Body.String(), `"operator_role":"tenant_user"`) {
				t.Fatalf("operator role not propagated: %s", w.Body.String())
			}
		})
	}
}

func TestOperatorAuthMiddlewareMissingSecret(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(OperatorAuthMiddleware(""))
	r.GET("/api/v1/tenant", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/tenant", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status want 200 got %d", w.Code)
	}
	if code := decodeStatusCode(t, w); code != 401 {
		t.Fatalf("status_code want 401 got %d", code)
	}
}

func TestOperatorRBACMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:router_rbac_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	authzService, err := authz.NewService(db)
	if err != nil {
		t.Fatalf("new authz service failed: %v", err)
	}
	if err := authzService.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("bootstrap roles failed: %v", err)
	}

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(handlershared.OperatorRoleKey, c.GetHeader("X-Test-Role"))
		c.Next()
	}, OperatorRBACMiddleware(authzService))
	ok := func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status_code": 0}) }
	r.GET("/api/v1/transactions/:transaction_id", ok)
	r.POST("/api/v1/payment-accounts", ok)

	cases := []struct {
		role   string
		method string
		path   string
		want   int
	}{
		{role: constants.OperatorRoleUser, method: http.MethodGet, path: "/api/v1/transactions/abc", want: 0},
		{role: constants.OperatorRoleUser, method: http.MethodPost, path: "/api/v1/payment-accounts", want: 403},
		{role: constants.OperatorRoleAdmin, method: http.MethodPost, path: "/api/v1/payment-accounts", want: 0},
		{role: constants.OperatorRoleAdmin, method: http.MethodGet, path: "/api/v1/transactions/abc", want: 0},
		{role: "", method: http.MethodGet, path: "/api/v1/transactions/abc", want: 401},
		{role: "auditor", method: http.MethodGet, path: "/api/v1/transactions/abc", want: 403},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(tc.method, tc.path, nil)
		if tc.role != "" {
			req.Header.Set("X-Test-Role", tc.role)
		}
		r.ServeHTTP(w, req)
		if code := decodeStatusCode(t, w); code != tc.want {
			t.Fatalf("%s %s as %q: status_code want %d got %d", tc.method, tc.path, tc.role, tc.want, code)
		}
	}
}

func TestConsoleRoutesSkipPublicRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	noop := func(c *gin.Context) {}
	r.POST("/api/v1/public/tenants", noop)
	r.GET("/api/v1/transactions", noop)
	r.POST("/api/v1/transactions/:transaction_id/refund", noop)
	r.GET("/api/v1/tenant/settings", noop)
	r.GET("/health", noop)

	routes := consoleRoutes(r)
	if len(routes) != 3 {
		t.Fatalf("expected 3 console routes, got %+v", routes)
	}
	if routes[0].Module != "tenant" || routes[0].Route != "/tenant/settings" {
		t.Fatalf("unexpected first route: %+v", routes[0])
	}
	if routes[2].Method != http.MethodPost || routes[2].Route != "/transactions/:transaction_id/refund" {
		t.Fatalf("unexpected last route: %+v", routes[2])
	}
}

func TestPermissionsHandlerMarksGrantedRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:router_permissions_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	authzService, err := authz.NewService(db)
	if err != nil {
		t.Fatalf("new authz service failed: %v", err)
	}
	if err := authzService.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("bootstrap roles failed: %v", err)
	}

	r := gin.New()
	r.Use(func(c *gin.Context) {
		if role := c.GetHeader("X-Test-Role"); role != "" {
			c.Set(handlershared.OperatorIDKey, uint(7))
			c.Set(handlershared.OperatorRoleKey, role)
		}
		c.Next()
	})
	noop := func(c *gin.Context) {}
	r.GET("/api/v1/tenant/permissions", permissionsHandler(r, authzService))
	r.POST("/api/v1/payment-accounts", noop)
	r.POST("/api/v1/transactions/process", noop)

	fetch := func(role string) (int, map[string]bool) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/tenant/permissions", nil)
		if role != "" {
			req.Header.Set("X-Test-Role", role)
		}
		r.ServeHTTP(w, req)
		var resp struct {
			StatusCode int            `json:"status_code"`
			Data       []consoleRoute `json:"data"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshal response failed: %v", err)
		}
		granted := make(map[string]bool, len(resp.Data))
		for _, item := range resp.Data {
			granted[item.Method+" "+item.Route] = item.Granted
		}
		return resp.StatusCode, granted
	}

	code, granted := fetch(constants.OperatorRoleUser)
	if code != 0 || len(granted) != 3 {
		t.Fatalf("user catalog: code=%d routes=%v", code, granted)
	}
	if !granted["POST /transactions/process"] || granted["POST /payment-accounts"] || !granted["GET /tenant/permissions"] {
		t.Fatalf("unexpected user grants: %v", granted)
	}

	_, granted = fetch(constants.OperatorRoleAdmin)
	if !granted["POST /payment-accounts"] {
		t.Fatalf("admin should manage payment accounts: %v", granted)
	}

	if code, _ := fetch(""); code != 401 {
		t.Fatalf("missing operator want 401 got %d", code)
	}
}
