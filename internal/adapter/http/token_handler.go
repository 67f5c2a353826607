package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/lordfalah/wasshoes-sub000/configs"
	"github.com/lordfalah/wasshoes-sub000/internal/security"
)

type TokenHandler struct {
	cfg configs.Config
}

func NewTokenHandler(cfg configs.Config) *TokenHandler {
	return &TokenHandler{cfg: cfg}
}

// IssueToken handles POST /v1/token (form or JSON).
// Accepts: account_id, account_secret. The token carries the role and
// store scope the authz middleware dispatches on.
func (h *TokenHandler) IssueToken(c *gin.Context) {
	accountID := c.PostForm("account_id")
	accountSecret := c.PostForm("account_secret")
	if accountID == "" || accountSecret == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid account"})
		return
	}

	acc, ok := security.Accounts[accountID]
	if !ok || !acc.Enabled || accountSecret != acc.Secret {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid account"})
		return
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"iss":      h.cfg.Security.Issuer,
		"aud":      h.cfg.Security.Audience,
		"iat":      now.Unix(),
		"nbf":      now.Unix(),
		"exp":      now.Add(h.cfg.Security.TTL).Unix(),
		"sub":      acc.ID,
		"role":     acc.Role,
		"store_id": acc.StoreID,
		"name":     acc.Name,
		"email":    acc.Email,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(h.cfg.Security.JWTSecret))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server_error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": signed,
		"token_type":   "Bearer",
		"expires_in":   int(h.cfg.Security.TTL.Seconds()),
	})
}
