package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorBody is the error envelope every endpoint answers with.
type ErrorBody struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	Message   string `json:"message"`
	Details   any    `json:"details,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// AbortWithError writes the envelope and stops the chain. message is the
// localized text for errors.<code> when the catalog has it, else errText.
func AbortWithError(c *gin.Context, status int, code, errText string, details any) {
	if code == "" {
		code = "error"
	}
	if errText == "" {
		errText = http.StatusText(status)
	}
	msg, ok := Translate(c, "errors."+code)
	if !ok {
		msg = errText
	}
	c.AbortWithStatusJSON(status, ErrorBody{
		Error:     errText,
		Code:      code,
		Message:   msg,
		Details:   details,
		RequestID: GetRequestID(c),
	})
}
