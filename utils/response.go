package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SettlementResponse is the caller-facing result of an escrow operation.
type SettlementResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	DonationID string `json:"donation_id"`
	Status     string `json:"status"`
}

// ErrorResponse is the only error shape returned to callers.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Settled sends a 200 settlement response
func Settled(c *gin.Context, resp SettlementResponse) {
	c.JSON(http.StatusOK, resp)
}

// Success sends a 200 response with an arbitrary payload
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Created sends a 201 response with an arbitrary payload
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// Error sends {error: message} with the given status
func Error(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, ErrorResponse{Error: message})
}

// AbortWithError writes err as an error payload and stops the handler chain.
// Errors that are not AppErrors are never exposed.
func AbortWithError(c *gin.Context, err error) {
	appErr := GetAppError(err)
	if appErr == nil {
		appErr = InternalError(err)
	}
	if appErr.Code >= http.StatusInternalServerError {
		LogError("Request %s failed: %v", c.GetString("RequestID"), appErr)
	}
	c.AbortWithStatusJSON(appErr.Code, ErrorResponse{Error: appErr.Message})
}

// BadRequest sends a 400 Bad Request response
func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

// Unauthorized sends a 401 Unauthorized response
func Unauthorized(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, message)
}

// Forbidden sends a 403 Forbidden response
func Forbidden(c *gin.Context, message string) {
	Error(c, http.StatusForbidden, message)
}

// NotFound sends a 404 Not Found response
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message)
}
