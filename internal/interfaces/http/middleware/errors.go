package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/homechef/backend/internal/infrastructure/logger"
	"github.com/homechef/backend/internal/interfaces/http/dto"
)

// abort stops the chain with an error envelope whose status follows the code
func abort(c *gin.Context, code, message string) {
	requestID := logger.GetRequestID(c.Request.Context())
	c.AbortWithStatusJSON(dto.StatusFor(code), dto.NewErrorResponse(code, message, requestID))
}
