// Package api provides the shared JSON response envelope used by every
// endpoint: success flag, human-readable message on errors, data payload
// and optional list metadata on success.
package api

import "github.com/gin-gonic/gin"

type Response struct {
	Success    bool   `json:"success"`
	Message    string `json:"message,omitempty"`
	Data       any    `json:"data,omitempty"`
	Count      *int   `json:"count,omitempty"`
	Pagination any    `json:"pagination,omitempty"`
}

func OK(c *gin.Context, status int, data any) {
	c.JSON(status, Response{Success: true, Data: data})
}

func OKWithMessage(c *gin.Context, status int, message string, data any) {
	c.JSON(status, Response{Success: true, Message: message, Data: data})
}

// OKList attaches a count to a collection payload.
func OKList(c *gin.Context, status int, data any, count int) {
	c.JSON(status, Response{Success: true, Data: data, Count: &count})
}

// OKPage attaches pagination metadata to a listing payload.
func OKPage(c *gin.Context, status int, data any, pagination any) {
	c.JSON(status, Response{Success: true, Data: data, Pagination: pagination})
}

func Error(c *gin.Context, status int, message string) {
	c.JSON(status, Response{Success: false, Message: message})
}

// AbortError writes the error envelope and stops the handler chain; used
// by middleware.
func AbortError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, Response{Success: false, Message: message})
}
