package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// LLMModelRequest is the request to change the caller's preferred backend.
type LLMModelRequest struct {
	Backend string `json:"backend"`
}

// GetLLMModel returns the caller's preferred generation backend and the
// available choices.
// GET /llm-model
func (h *Handler) GetLLMModel(c echo.Context) error {
	user, err := h.currentUser(c)
	if err != nil {
		return err
	}

	backend := user.PreferredLLMBackend
	if backend == "" {
		backend = h.backends.Default()
	}
	return c.JSON(http.StatusOK, map[string]any{
		"backend":   backend,
		"available": h.backends.Names(),
	})
}

// SetLLMModel updates the caller's preferred generation backend. Unknown
// backends are rejected so a stored preference always resolves.
// PUT /llm-model
func (h *Handler) SetLLMModel(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := h.currentUser(c)
	if err != nil {
		return err
	}

	var req LLMModelRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.Backend == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "backend is required"})
	}
	if !h.backends.Has(req.Backend) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "unknown backend"})
	}

	if err := h.store.UpdateUserBackend(ctx, user.ID, req.Backend); err != nil {
		h.log.Error().Err(err).Msg("failed to update backend preference")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to update preference"})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"ok":      true,
		"backend": req.Backend,
	})
}
