package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// API envelope: {status, message, data}. Error responses carry either
// the envelope with status "fail" or a bare {error} depending on the
// endpoint contract.
type envelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func respond(c *gin.Context, code int, status, message string, data any) {
	c.JSON(code, envelope{Status: status, Message: message, Data: data})
}

// bindErrors turns gin binding failures into per-field messages, so a
// bad checkout body reads "items[0].quantity: min" instead of one
// opaque string.
func bindErrors(err error) any {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
		return fields
	}
	return err.Error()
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"status": "fail", "message": "invalid request body", "errors": bindErrors(err)})
}
