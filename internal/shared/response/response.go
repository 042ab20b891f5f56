package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bookshelf-api/internal/shared/violation"
)

// ErrorBody is the envelope used for failures that are not validation
// failures (500, panics). 404 and 204 carry no body at all.
type ErrorBody struct {
	Success bool   `json:"success"`
	Error   *Error `json:"error"`
}

type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// OK writes a bare JSON document with 200.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Created writes 201 with the Location header and the created projection.
func Created(c *gin.Context, location string, data interface{}) {
	c.Header("Location", location)
	c.JSON(http.StatusCreated, data)
}

func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// NotFound answers 404 with an empty body.
func NotFound(c *gin.Context) {
	c.Status(http.StatusNotFound)
}

// Violations answers 400 with the JSON violation list.
func Violations(c *gin.Context, violations []violation.Violation) {
	if violations == nil {
		violations = []violation.Violation{}
	}
	c.JSON(http.StatusBadRequest, violations)
}

func ErrorResponse(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, ErrorBody{
		Success: false,
		Error: &Error{
			Code:    code,
			Message: message,
		},
	})
}

func InternalServerError(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", message)
}

func Conflict(c *gin.Context, code, message string) {
	ErrorResponse(c, http.StatusConflict, code, message)
}

func ServiceUnavailable(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", message)
}
