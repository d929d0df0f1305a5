package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/watchpost/watchpost/registry"
	"github.com/watchpost/watchpost/utils"
)

// AdminHeaderName carries the operator secret on tooling requests.
const AdminHeaderName = "X-Admin-Auth"

// AdminHeaderRequired gates operator API endpoints behind the shared admin
// secret. The check goes through the same credential predicate as the
// login form.
func AdminHeaderRequired(cred registry.AdminCredential) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if !cred.CheckPassword(ctx.GetHeader(AdminHeaderName)) {
			utils.Fail(ctx, http.StatusUnauthorized, "unauthorized")
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}
