package handler

import (
	"github.com/gin-gonic/gin"

	"relief-ops/internal/api/middleware"
	"relief-ops/pkg/jwt"
	"relief-ops/pkg/response"
)

// MustGetUserID reads user_id set by JWTAuth. On false a 401 has been
// written and the caller should return.
func MustGetUserID(c *gin.Context) (string, bool) {
	s := c.GetString(middleware.CtxUserID)
	if s == "" {
		response.Unauthorized(c, 10002, "not authenticated")
		return "", false
	}
	return s, true
}

// MustGetClaims reads the parsed token set by JWTAuth
func MustGetClaims(c *gin.Context) (*jwt.Claims, bool) {
	v, exists := c.Get(middleware.CtxClaims)
	if !exists {
		response.Unauthorized(c, 10002, "not authenticated")
		return nil, false
	}
	claims, ok := v.(*jwt.Claims)
	if !ok {
		response.Unauthorized(c, 10002, "not authenticated")
		return nil, false
	}
	return claims, true
}

// actorID optional actor for audit and timeline entries
func actorID(c *gin.Context) *string {
	if s := c.GetString(middleware.CtxUserID); s != "" {
		return &s
	}
	return nil
}
