package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/hireloop/hireloop/internal/models"
	"github.com/hireloop/hireloop/internal/services"
	"github.com/hireloop/hireloop/internal/utils"
)

// ResolveActor turns the JWT subject into a models.ActorRef stored under "actor".
// It must run after JWTAuth.
func ResolveActor(team services.TeamService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")
		if userID == "" {
			abortUnauthorized(c, "unauthorized")
			return
		}

		actor, err := team.ResolveActor(c.Request.Context(), userID, c.GetString("role"))
		if err != nil {
			status := utils.HTTPStatus(err)
			msg := http.StatusText(status)
			var ae *utils.AppError
			if errors.As(err, &ae) && ae.Message != "" {
				msg = ae.Message
			}
			c.AbortWithStatusJSON(status, apiError{Code: utils.CodeOf(err), Message: msg})
			return
		}

		c.Set("actor", actor)
		c.Set("member_id", actor.MemberID)
		c.Next()
	}
}

// RequirePermission admits actors holding every permission in perms.
func RequirePermission(perms ...models.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, _ := c.Get("actor")
		actor, ok := v.(models.ActorRef)
		if !ok {
			abortUnauthorized(c, "unauthorized")
			return
		}

		for _, p := range perms {
			if !services.HasPermission(actor, p) {
				c.AbortWithStatusJSON(http.StatusForbidden, apiError{
					Code:    utils.CodeForbidden,
					Message: "missing permission " + strings.ToLower(string(p)),
				})
				return
			}
		}
		c.Next()
	}
}
