package middlewares

import "github.com/gin-gonic/gin"

const (
	CtxRequestID = "request_id"
	CtxUserID    = "auth.userID"
	CtxRole      = "auth.role"
	CtxToken     = "auth.token"
)

func UserIDFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(CtxUserID)

	if !ok {
		return "", false
	}

	s, ok := v.(string)

	return s, ok && s != ""
}

func RoleFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(CtxRole)

	if !ok {
		return "", false
	}

	s, ok := v.(string)

	return s, ok && s != ""
}

func TokenFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(CtxToken)

	if !ok {
		return "", false
	}

	s, ok := v.(string)

	return s, ok && s != ""
}
