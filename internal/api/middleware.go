package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/barbershop-backend/internal/auth"
	"github.com/nekogravitycat/barbershop-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/barbershop-backend/internal/pkg/response"
	"github.com/nekogravitycat/barbershop-backend/internal/user"
)

// RequireSystemAdmin lets only shop staff through.
// It MUST be used after auth.AuthRequired middleware.
func RequireSystemAdmin(userService user.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := auth.GetUserID(c)
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrorResponse{
				Error: "unauthorized",
				Code:  string(apperror.KindUnauthorized),
			})
			return
		}

		u, err := userService.GetByID(c.Request.Context(), userID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrorResponse{
				Error: "user not found",
				Code:  string(apperror.KindUnauthorized),
			})
			return
		}

		if !u.IsActive || !u.IsSystemAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, response.ErrorResponse{
				Error: "forbidden: staff access required",
				Code:  string(apperror.KindForbidden),
			})
			return
		}

		c.Next()
	}
}
