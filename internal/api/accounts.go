package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ychia112/GroceryShopperAI/internal/auth"
)

// CredentialsRequest is the request body for signup and login.
type CredentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Signup creates a new account and returns a session token.
// POST /signup
func (h *Handler) Signup(c echo.Context) error {
	ctx := c.Request().Context()

	var req CredentialsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.Username == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "username is required"})
	}
	if len(req.Password) < 6 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "password must be at least 6 characters"})
	}

	existing, err := h.store.GetUserByUsername(ctx, req.Username)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to check username")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to create account"})
	}
	if existing != nil {
		return c.JSON(http.StatusConflict, map[string]string{"error": "username already taken"})
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to hash password")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to create account"})
	}

	// New accounts start on the configured default backend.
	user, err := h.store.CreateUser(ctx, req.Username, hash, h.backends.Default())
	if err != nil {
		h.log.Error().Err(err).Msg("failed to create user")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to create account"})
	}

	token, err := h.tokens.CreateToken(user.Username)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to issue token")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to create account"})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"token":    token,
		"username": user.Username,
	})
}

// Login verifies credentials and returns a session token.
// POST /login
func (h *Handler) Login(c echo.Context) error {
	ctx := c.Request().Context()

	var req CredentialsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	user, err := h.store.GetUserByUsername(ctx, req.Username)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to load user")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to log in"})
	}
	if user == nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid username or password"})
	}

	token, err := h.tokens.CreateToken(user.Username)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to issue token")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to log in"})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"token":    token,
		"username": user.Username,
	})
}

// Me returns the authenticated user's profile.
// GET /me
func (h *Handler) Me(c echo.Context) error {
	user, err := h.currentUser(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}
