package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/nekogravitycat/barbershop-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/barbershop-backend/internal/pkg/response"
)

var (
	errMissingHeader = errors.New("missing Authorization header")
	errBadHeader     = errors.New("invalid Authorization header format")
)

func bearerToken(c *gin.Context) (string, error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", errMissingHeader
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
		return "", errBadHeader
	}
	return parts[1], nil
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrorResponse{
		Error: message,
		Code:  string(apperror.KindUnauthorized),
	})
}

// setIdentity stores the claims for later handlers and tags the request logger.
func setIdentity(c *gin.Context, claims *Claims) {
	c.Set(userIDKey, claims.UserID)
	c.Set(userEmailKey, claims.Email)

	ctx := c.Request.Context()
	l := zerolog.Ctx(ctx).With().Str("user_id", claims.UserID).Logger()
	c.Request = c.Request.WithContext(l.WithContext(ctx))
}

// AuthRequired is a Gin middleware that validates JWT from Authorization: Bearer <token>
func AuthRequired(jwtManager *JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, err := bearerToken(c)
		if err != nil {
			abortUnauthorized(c, err.Error())
			return
		}

		claims, err := jwtManager.ParseAndValidate(tokenStr)
		if err != nil {
			abortUnauthorized(c, "invalid or expired token")
			return
		}

		setIdentity(c, claims)
		c.Next()
	}
}

// AuthOptional attaches the caller's identity when a token is present and lets
// anonymous requests through. A token that is present but invalid is still rejected.
func AuthOptional(jwtManager *JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, err := bearerToken(c)
		if errors.Is(err, errMissingHeader) {
			c.Next()
			return
		}
		if err != nil {
			abortUnauthorized(c, err.Error())
			return
		}

		claims, err := jwtManager.ParseAndValidate(tokenStr)
		if err != nil {
			abortUnauthorized(c, "invalid or expired token")
			return
		}

		setIdentity(c, claims)
		c.Next()
	}
}
