package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/watchpost/watchpost/utils"
)

const (
	// SessionCookieName is the dashboard session cookie.
	SessionCookieName = "watchpost_session"
	// ContextUsernameKey stores the operator username inside Gin context.
	ContextUsernameKey = "username"
)

// SessionRequired gates dashboard pages behind the signed session cookie.
// Unauthenticated browsers are redirected to the login form.
func SessionRequired(secret string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token, err := ctx.Cookie(SessionCookieName)
		if err != nil || token == "" {
			ctx.Redirect(http.StatusFound, "/login")
			ctx.Abort()
			return
		}
		claims, err := utils.ParseSessionToken(secret, token)
		if err != nil {
			ctx.SetCookie(SessionCookieName, "", -1, "/", "", false, true)
			ctx.Redirect(http.StatusFound, "/login")
			ctx.Abort()
			return
		}
		ctx.Set(ContextUsernameKey, claims.Username)
		ctx.Next()
	}
}
