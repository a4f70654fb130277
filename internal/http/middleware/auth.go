// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file provides Identity, a lightweight middleware that resolves the
// caller's identity from trusted headers set by an upstream gateway and
// stashes it in the Gin context for handlers and other middleware.
//
// Design notes:
//   - The service never validates credentials itself; it trusts the values the
//     gateway injects after authentication (zero-trust networks terminate auth
//     at the edge).
//   - A development-friendly "demo-user" fallback keeps local runs and tests
//     working without a gateway in front.
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// Trusted identity headers injected by the upstream gateway.
const (
	HeaderUserID   = "X-User-ID"
	HeaderUserRole = "X-User-Role"
)

// Context keys under which Identity stores the resolved caller.
const (
	ctxKeyUserID  = "userID"
	ctxKeyIsAdmin = "isAdmin"
)

// Identity resolves the caller from the trusted identity headers and stores
// "userID" (string) and "isAdmin" (bool) in the Gin context.
//
// Behavior:
//   - X-User-ID, trimmed; empty falls back to "demo-user".
//   - X-User-Role equal to "admin" (case-insensitive) grants the admin
//     capability; anything else does not.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := strings.TrimSpace(c.GetHeader(HeaderUserID))
		if uid == "" {
			uid = "demo-user"
		}
		c.Set(ctxKeyUserID, uid)
		c.Set(ctxKeyIsAdmin, strings.EqualFold(strings.TrimSpace(c.GetHeader(HeaderUserRole)), "admin"))
		c.Next()
	}
}
