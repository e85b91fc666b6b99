package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// bindMessages maps struct field -> validation tag -> the message the
// client sees.
type bindMessages map[string]map[string]string

func bindJSON(c *gin.Context, req any, messages bindMessages, fallback string) bool {
	return reportBindError(c, c.ShouldBindJSON(req), messages, fallback)
}

func bindQuery(c *gin.Context, req any, messages bindMessages, fallback string) bool {
	return reportBindError(c, c.ShouldBindQuery(req), messages, fallback)
}

func reportBindError(c *gin.Context, err error, messages bindMessages, fallback string) bool {
	if err == nil {
		return true
	}
	message := fallback
	if message == "" {
		message = "invalid request"
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, verr := range verrs {
			if msg, ok := messages[verr.Field()][verr.Tag()]; ok {
				message = msg
				break
			}
		}
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": message})
	return false
}
