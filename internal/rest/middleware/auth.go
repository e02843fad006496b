package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"

	"github.com/subledger/subledger/internal/config"
	ierr "github.com/subledger/subledger/internal/errors"
	"github.com/subledger/subledger/internal/types"
)

// AuthenticateMiddleware validates the bearer token and binds the token
// subject to the request context as the caller identity. Ownership and
// authority checks downstream compare against this identity.
func AuthenticateMiddleware(cfg *config.Configuration) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(types.HeaderAuthorization)
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.Error(ierr.NewError("missing authorization header").
				WithHint("Provide a bearer token in the Authorization header").
				Mark(ierr.ErrPermissionDenied))
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(header, "Bearer ")
		claims := &jwt.RegisteredClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, ierr.NewError("unexpected signing method").
					WithHint("Token must be signed with HMAC").
					Mark(ierr.ErrPermissionDenied)
			}
			return []byte(cfg.Auth.Secret), nil
		})
		if err != nil || !token.Valid || claims.Subject == "" {
			c.Error(ierr.WithError(err).
				WithHint("Invalid or expired token").
				Mark(ierr.ErrPermissionDenied))
			c.Abort()
			return
		}

		ctx := types.SetCallerID(c.Request.Context(), claims.Subject)
		c.Request = c.Request.WithContext(ctx)
		c.Set("caller_id", claims.Subject)
		c.Next()
	}
}
