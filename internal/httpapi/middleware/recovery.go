package middleware

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/RehanAnsari17/Qloooooooo/internal/common"
)

// Recovery turns panics into a JSON 500 instead of gin's default plain text.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("panic recovered: %v", r)
				common.Fail(c, http.StatusInternalServerError, 50000, "internal error")
				c.Abort()
			}
		}()
		c.Next()
	}
}
