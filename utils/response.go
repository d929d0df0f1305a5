package utils

import "github.com/gin-gonic/gin"

// OK writes the standard success envelope, merging extra fields into
// {"ok": true, ...}.
func OK(ctx *gin.Context, extra gin.H) {
	body := gin.H{"ok": true}
	for k, v := range extra {
		body[k] = v
	}
	ctx.JSON(200, body)
}

// Fail writes {"ok": false, "error": <message>} with the given status.
func Fail(ctx *gin.Context, status int, message string) {
	ctx.JSON(status, gin.H{"ok": false, "error": message})
}
