package handlers

import (
	"net/http"

	"github.com/basketful/storefront/internal/infrastructure/security"
	"github.com/basketful/storefront/internal/ports/inbound"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthHandlers handles sign up, sign in and session endpoints
type AuthHandlers struct {
	auth   inbound.AuthService
	logger *zap.Logger
}

// NewAuthHandlers creates auth handlers
func NewAuthHandlers(auth inbound.AuthService, logger *zap.Logger) *AuthHandlers {
	return &AuthHandlers{auth: auth, logger: logger}
}

// CredentialsRequest is the sign up and sign in body
type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignUp handles POST /auth/signup
func (h *AuthHandlers) SignUp(c *gin.Context) {
	var req CredentialsRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.auth.SignUp(c.Request.Context(), inbound.SignUpCommand{
		Email:     req.Email,
		Password:  req.Password,
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})
	if err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusCreated, result)
}

// SignIn handles POST /auth/signin
func (h *AuthHandlers) SignIn(c *gin.Context) {
	var req CredentialsRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.auth.SignIn(c.Request.Context(), inbound.SignInCommand{
		Email:     req.Email,
		Password:  req.Password,
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})
	if err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusOK, result)
}

// SignOut handles POST /auth/signout
func (h *AuthHandlers) SignOut(c *gin.Context) {
	if err := h.auth.SignOut(c.Request.Context(), security.CurrentSessionID(c)); err != nil {
		fail(c, err)
		return
	}
	noContent(c)
}

// Me handles GET /auth/me
func (h *AuthHandlers) Me(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}

	me, err := h.auth.Me(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}

	respond(c, http.StatusOK, me)
}
