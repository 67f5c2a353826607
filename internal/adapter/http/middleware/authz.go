package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/lordfalah/wasshoes-sub000/configs"
	domain "github.com/lordfalah/wasshoes-sub000/internal/entity"
	"github.com/lordfalah/wasshoes-sub000/internal/usecase"
)

const actorKey = "actor"

type Authz struct {
	cfg configs.Config
}

func NewAuthz(cfg configs.Config) *Authz {
	return &Authz{cfg: cfg}
}

// Require checks the JWT and, when roles are given, that the token's
// role is one of them. The resolved Actor (identity, role, store
// scope, cart cookie) is stored on the gin context for handlers.
func (a *Authz) Require(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			unauth(c, "invalid_request", "missing bearer token")
			return
		}

		raw := strings.TrimPrefix(auth, "Bearer ")
		token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(a.cfg.Security.JWTSecret), nil
		}, jwt.WithLeeway(30*time.Second)) // small clock skew

		if err != nil || !token.Valid {
			unauth(c, "invalid_token", "invalid jwt")
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			unauth(c, "invalid_token", "claims parsing error")
			return
		}

		if claims["iss"] != a.cfg.Security.Issuer || claims["aud"] != a.cfg.Security.Audience {
			unauth(c, "invalid_token", "iss/aud mismatch")
			return
		}

		actor := actorFromClaims(claims)
		actor.CartID, _ = c.Cookie(a.cfg.Cart.CookieName)
		if len(roles) > 0 && !roleAllowed(actor.Role, roles) {
			forbidden(c, "insufficient_role", "role not allowed for this resource")
			return
		}

		c.Set(actorKey, actor)
		c.Next()
	}
}

// Optional resolves the actor when a token is present but lets the
// request through either way; the cart view works for anonymous
// visitors.
func (a *Authz) Optional() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := usecase.Actor{}
		auth := c.GetHeader("Authorization")
		if strings.HasPrefix(auth, "Bearer ") {
			raw := strings.TrimPrefix(auth, "Bearer ")
			token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(a.cfg.Security.JWTSecret), nil
			}, jwt.WithLeeway(30*time.Second))
			if err == nil && token.Valid {
				if claims, ok := token.Claims.(jwt.MapClaims); ok {
					actor = actorFromClaims(claims)
				}
			}
		}
		actor.CartID, _ = c.Cookie(a.cfg.Cart.CookieName)
		c.Set(actorKey, actor)
		c.Next()
	}
}

// Actor returns the request actor placed by Require/Optional.
func Actor(c *gin.Context) usecase.Actor {
	if v, ok := c.Get(actorKey); ok {
		if a, ok := v.(usecase.Actor); ok {
			return a
		}
	}
	return usecase.Actor{}
}

func actorFromClaims(claims jwt.MapClaims) usecase.Actor {
	str := func(key string) string {
		if s, ok := claims[key].(string); ok {
			return s
		}
		return ""
	}
	return usecase.Actor{
		UserID:  str("sub"),
		Role:    str("role"),
		StoreID: str("store_id"),
		Customer: domain.CustomerInfo{
			Name:  str("name"),
			Email: str("email"),
			Phone: str("phone"),
		},
	}
}

func roleAllowed(role string, allowed []string) bool {
	for _, r := range allowed {
		if role == r {
			return true
		}
	}
	return false
}

func unauth(c *gin.Context, code, desc string) {
	c.Header("WWW-Authenticate", `Bearer error="`+code+`", error_description="`+desc+`"`)
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": code, "error_description": desc})
}

func forbidden(c *gin.Context, code, desc string) {
	c.Header("WWW-Authenticate", `Bearer error="`+code+`", error_description="`+desc+`"`)
	c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": code, "error_description": desc})
}
