package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/ychia112/GroceryShopperAI/internal/domain"
)

// RoomCreateRequest is the request to create a room.
type RoomCreateRequest struct {
	Name string `json:"name"`
}

// InviteRequest is the request to add a member to a room.
type InviteRequest struct {
	Username string `json:"username"`
}

// CreateRoom creates a room owned by the caller; the owner joins
// automatically.
// POST /rooms
func (h *Handler) CreateRoom(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := h.currentUser(c)
	if err != nil {
		return err
	}

	var req RoomCreateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "name is required"})
	}

	existing, err := h.store.GetRoomByName(ctx, req.Name)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to check room name")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to create room"})
	}
	if existing != nil {
		return c.JSON(http.StatusConflict, map[string]string{"error": "room name already taken"})
	}

	room, err := h.store.CreateRoom(ctx, req.Name, user.ID)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to create room")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to create room"})
	}
	if err := h.store.AddRoomMember(ctx, room.ID, user.ID); err != nil {
		h.log.Error().Err(err).Msg("failed to add room owner as member")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to create room"})
	}

	return c.JSON(http.StatusOK, room)
}

// ListRooms lists the rooms the caller belongs to.
// GET /rooms
func (h *Handler) ListRooms(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := h.currentUser(c)
	if err != nil {
		return err
	}

	rooms, err := h.store.ListRoomsForUser(ctx, user.ID)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list rooms")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to list rooms"})
	}
	if rooms == nil {
		rooms = []domain.Room{}
	}

	return c.JSON(http.StatusOK, map[string]any{"rooms": rooms})
}

// ListRoomMembers lists a room's members; callers must be members themselves.
// GET /rooms/:room_id/members
func (h *Handler) ListRoomMembers(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := h.currentUser(c)
	if err != nil {
		return err
	}
	roomID, err := roomIDParam(c)
	if err != nil {
		return err
	}

	if err := h.requireMembership(c, roomID, user.ID); err != nil {
		return err
	}

	members, err := h.store.ListRoomMembers(ctx, roomID)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list room members")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to list members"})
	}

	names := make([]string, 0, len(members))
	for _, m := range members {
		names = append(names, m.Username)
	}
	return c.JSON(http.StatusOK, map[string]any{"members": names})
}

// InviteMember adds a user to a room. Only the room owner may invite.
// POST /rooms/:room_id/invite
func (h *Handler) InviteMember(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := h.currentUser(c)
	if err != nil {
		return err
	}
	roomID, err := roomIDParam(c)
	if err != nil {
		return err
	}

	var req InviteRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.Username == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "username is required"})
	}

	room, err := h.store.GetRoom(ctx, roomID)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to load room")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to invite"})
	}
	if room == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "room not found"})
	}
	if room.OwnerID != user.ID {
		return c.JSON(http.StatusForbidden, map[string]string{"error": "only the room owner can invite"})
	}

	invitee, err := h.store.GetUserByUsername(ctx, req.Username)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to load invitee")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to invite"})
	}
	if invitee == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "user not found"})
	}

	if err := h.store.AddRoomMember(ctx, roomID, invitee.ID); err != nil {
		h.log.Error().Err(err).Msg("failed to add room member")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to invite"})
	}

	return c.JSON(http.StatusOK, map[string]any{"ok": true})
}

// requireMembership fails with 403 if userID is not a member of roomID.
func (h *Handler) requireMembership(c echo.Context, roomID, userID int64) error {
	member, err := h.store.IsRoomMember(c.Request().Context(), roomID, userID)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to check membership")
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to check membership")
	}
	if !member {
		return echo.NewHTTPError(http.StatusForbidden, "not a member of this room")
	}
	return nil
}

func roomIDParam(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("room_id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid room id")
	}
	return id, nil
}
