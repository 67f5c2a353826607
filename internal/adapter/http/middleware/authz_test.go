package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lordfalah/wasshoes-sub000/configs"
	"github.com/lordfalah/wasshoes-sub000/internal/usecase"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testCfg() configs.Config {
	cfg := configs.Config{}
	cfg.Security.JWTSecret = "test-secret"
	cfg.Security.Issuer = "wasshoes"
	cfg.Security.Audience = "wasshoes-api"
	cfg.Cart.CookieName = "wasshoes_cart"
	return cfg
}

func mint(t *testing.T, cfg configs.Config, claims jwt.MapClaims) string {
	t.Helper()
	if _, ok := claims["iss"]; !ok {
		claims["iss"] = cfg.Security.Issuer
	}
	if _, ok := claims["aud"]; !ok {
		claims["aud"] = cfg.Security.Audience
	}
	if _, ok := claims["exp"]; !ok {
		claims["exp"] = time.Now().Add(time.Hour).Unix()
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.Security.JWTSecret))
	require.NoError(t, err)
	return raw
}

func authzRouter(cfg configs.Config, roles ...string) (*gin.Engine, *usecase.Actor) {
	var seen usecase.Actor
	r := gin.New()
	r.GET("/protected", NewAuthz(cfg).Require(roles...), func(c *gin.Context) {
		seen = Actor(c)
		c.Status(http.StatusOK)
	})
	return r, &seen
}

func TestRequireValidToken(t *testing.T) {
	cfg := testCfg()
	r, seen := authzRouter(cfg, usecase.RoleAdmin)

	token := mint(t, cfg, jwt.MapClaims{
		"sub":      "a1",
		"role":     usecase.RoleAdmin,
		"store_id": "store-1",
		"name":     "Siti",
		"email":    "siti@example.com",
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	req.AddCookie(&http.Cookie{Name: cfg.Cart.CookieName, Value: "cart-9"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "a1", seen.UserID)
	assert.Equal(t, usecase.RoleAdmin, seen.Role)
	assert.Equal(t, "store-1", seen.StoreID)
	assert.Equal(t, "cart-9", seen.CartID)
	assert.Equal(t, "Siti", seen.Customer.Name)
}

func TestRequireMissingToken(t *testing.T) {
	r, _ := authzRouter(testCfg())

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Header().Get("WWW-Authenticate"), "invalid_request")
}

func TestRequireBadSignature(t *testing.T) {
	cfg := testCfg()
	r, _ := authzRouter(cfg)

	other := cfg
	other.Security.JWTSecret = "other-secret"
	token := mint(t, other, jwt.MapClaims{"sub": "u1", "role": usecase.RoleCustomer})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireExpiredToken(t *testing.T) {
	cfg := testCfg()
	r, _ := authzRouter(cfg)

	token := mint(t, cfg, jwt.MapClaims{
		"sub": "u1", "role": usecase.RoleCustomer,
		"exp": time.Now().Add(-time.Hour).Unix(),
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireWrongIssuer(t *testing.T) {
	cfg := testCfg()
	r, _ := authzRouter(cfg)

	token := mint(t, cfg, jwt.MapClaims{
		"sub": "u1", "role": usecase.RoleCustomer, "iss": "someone-else",
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRole(t *testing.T) {
	cfg := testCfg()
	r, _ := authzRouter(cfg, usecase.RoleAdmin)

	token := mint(t, cfg, jwt.MapClaims{"sub": "u1", "role": usecase.RoleCustomer})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestOptionalAnonymous(t *testing.T) {
	cfg := testCfg()
	var seen usecase.Actor
	r := gin.New()
	r.GET("/open", NewAuthz(cfg).Optional(), func(c *gin.Context) {
		seen = Actor(c)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/open", nil)
	req.AddCookie(&http.Cookie{Name: cfg.Cart.CookieName, Value: "cart-7"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, seen.UserID)
	assert.Equal(t, "cart-7", seen.CartID)
}
