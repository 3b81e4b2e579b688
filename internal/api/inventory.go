package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ychia112/GroceryShopperAI/internal/domain"
)

// ListInventory returns the caller's inventory.
// GET /inventory
func (h *Handler) ListInventory(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := h.currentUser(c)
	if err != nil {
		return err
	}

	items, err := h.store.ListInventory(ctx, user.ID)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list inventory")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to list inventory"})
	}
	if items == nil {
		items = []domain.InventoryItem{}
	}

	return c.JSON(http.StatusOK, map[string]any{"items": items})
}
