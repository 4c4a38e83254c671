// Package handlers provides the gin handlers for the storefront REST API
package handlers

import (
	"net/http"

	"github.com/basketful/storefront/internal/infrastructure/security"
	"github.com/basketful/storefront/pkg/errors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

func respond(c *gin.Context, status int, data interface{}) {
	c.JSON(status, APIResponse{Success: true, Data: data})
}

func respondMessage(c *gin.Context, status int, data interface{}, message string) {
	c.JSON(status, APIResponse{Success: true, Data: data, Message: message})
}

// fail hands err to the error middleware
func fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		fail(c, errors.NewBadRequestError("Invalid request body").WithCause(err))
		return false
	}
	return true
}

func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		fail(c, errors.NewBadRequestError("Invalid "+name))
		return uuid.Nil, false
	}
	return id, true
}

// userID reads the authenticated user; RequireAuth guarantees presence on
// protected routes.
func userID(c *gin.Context) (uuid.UUID, bool) {
	id, ok := security.CurrentUserID(c)
	if !ok {
		fail(c, errors.NewUnauthorizedError("Authentication required"))
		return uuid.Nil, false
	}
	return id, true
}

func noContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
