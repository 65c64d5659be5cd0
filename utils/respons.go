package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type JSONResponse struct {
	Status  bool        `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// RespondJSON is the envelope for staff-facing endpoints.
func RespondJSON(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, JSONResponse{
		Status:  code >= 200 && code < 300,
		Message: message,
		Data:    data,
	})
}

func RespondError(c *gin.Context, code int, err error) {
	c.JSON(code, JSONResponse{
		Status:  false,
		Message: err.Error(),
		Data:    nil,
	})
}

// RespondWebhook is the envelope the chat-automation platform expects:
// 200 with {"success":true, ...} on success.
func RespondWebhook(c *gin.Context, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["success"] = true
	c.JSON(http.StatusOK, data)
}

// RespondWebhookError answers a webhook call with a non-200 status and
// {"success":false, "error": ...}. Extra fields (e.g. requires_approval)
// may be merged in.
func RespondWebhookError(c *gin.Context, code int, message string, extra gin.H) {
	body := gin.H{"success": false, "error": message}
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(code, body)
}
