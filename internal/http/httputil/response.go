package httputil

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func HandleSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    data,
	})
}

func HandleError(c *gin.Context, status int, err string) {
	c.JSON(status, Response{
		Success: false,
		Error:   err,
	})
}

func HandleBadRequest(c *gin.Context, err string) {
	HandleError(c, http.StatusBadRequest, err)
}

func HandleNotFound(c *gin.Context, err string) {
	HandleError(c, http.StatusNotFound, err)
}

func HandleTooManyRequests(c *gin.Context, err string) {
	HandleError(c, http.StatusTooManyRequests, err)
}

func HandleInternalError(c *gin.Context, err string) {
	HandleError(c, http.StatusInternalServerError, err)
}
