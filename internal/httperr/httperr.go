package httperr

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type HTTPError struct {
	Code    string `json:"error_code"`
	Message string `json:"message"`
}

type ConflictResponse struct {
	Code           string `json:"error_code"`
	Message        string `json:"message"`
	ConflictingIDs []uint `json:"conflicting_ids"`
}

func Write(c *gin.Context, status int, code, message string) {
	c.JSON(status, HTTPError{
		Code:    code,
		Message: message,
	})
}

func BadRequest(c *gin.Context, code, message string) {
	Write(c, http.StatusBadRequest, code, message)
}

func NotFound(c *gin.Context, code, message string) {
	Write(c, http.StatusNotFound, code, message)
}

func Internal(c *gin.Context, code, message string) {
	Write(c, http.StatusInternalServerError, code, message)
}

func Unauthorized(c *gin.Context, code, message string) {
	Write(c, http.StatusUnauthorized, code, message)
}

func Forbidden(c *gin.Context, code, message string) {
	Write(c, http.StatusForbidden, code, message)
}

// Conflict devolve 409 com os ids dos agendamentos em choque,
// para exibição no diagnóstico do cliente
func Conflict(c *gin.Context, code, message string, ids []uint) {
	if ids == nil {
		ids = []uint{}
	}
	c.JSON(http.StatusConflict, ConflictResponse{
		Code:           code,
		Message:        message,
		ConflictingIDs: ids,
	})
}
