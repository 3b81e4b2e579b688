package api

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/ychia112/GroceryShopperAI/internal/domain"
)

func (f *testFixture) createRoomWithMember(t *testing.T, owner *domain.User) *domain.Room {
	t.Helper()
	ctx := context.Background()
	room, err := f.handler.store.CreateRoom(ctx, "general", owner.ID)
	if err != nil {
		t.Fatalf("CreateRoom failed: %v", err)
	}
	if err := f.handler.store.AddRoomMember(ctx, room.ID, owner.ID); err != nil {
		t.Fatalf("AddRoomMember failed: %v", err)
	}
	return room
}

func TestPostMessagePersistsBroadcastsDispatches(t *testing.T) {
	f := newTestFixture(t)
	user, token := f.createUser(t, "alice")
	room := f.createRoomWithMember(t, user)

	c, rec := newJSONContext(http.MethodPost, "/rooms/1/messages", `{"content":"@gro hello"}`, token)
	c.SetParamNames("room_id")
	c.SetParamValues("1")
	if err := f.callAuthed(f.handler.PostMessage, c); err != nil {
		t.Fatalf("PostMessage failed: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		OK bool  `json:"ok"`
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.OK || resp.ID == 0 {
		t.Fatalf("unexpected response: %+v", resp)
	}

	// Persisted.
	history, err := f.handler.store.ListRoomMessages(context.Background(), room.ID, 10)
	if err != nil || len(history) != 1 {
		t.Fatalf("expected 1 persisted message, got %v %v", history, err)
	}

	// Broadcast to the room before the response returned.
	if len(f.broadcaster.sent) != 1 {
		t.Fatalf("expected 1 broadcast, got %d", len(f.broadcaster.sent))
	}
	mb, ok := f.broadcaster.sent[0].(domain.MessageBroadcast)
	if !ok || mb.Message.Content != "@gro hello" || mb.Message.Username != "alice" {
		t.Fatalf("unexpected broadcast: %+v", f.broadcaster.sent[0])
	}

	// Pipeline triggered exactly once with the raw content.
	if len(f.dispatcher.calls) != 1 {
		t.Fatalf("expected 1 dispatch, got %d", len(f.dispatcher.calls))
	}
	call := f.dispatcher.calls[0]
	if call.roomID != room.ID || call.userID != user.ID || call.content != "@gro hello" {
		t.Fatalf("unexpected dispatch: %+v", call)
	}
}

func TestPostMessageRequiresMembership(t *testing.T) {
	f := newTestFixture(t)
	owner, _ := f.createUser(t, "alice")
	f.createRoomWithMember(t, owner)
	_, token := f.createUser(t, "mallory")

	c, _ := newJSONContext(http.MethodPost, "/rooms/1/messages", `{"content":"hi"}`, token)
	c.SetParamNames("room_id")
	c.SetParamValues("1")
	err := f.callAuthed(f.handler.PostMessage, c)
	if code := respondHTTPError(c, err); code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d (%v)", code, err)
	}
	if len(f.dispatcher.calls) != 0 {
		t.Fatal("non-member post must not trigger the pipeline")
	}
}

func TestPostMessageEmptyContent(t *testing.T) {
	f := newTestFixture(t)
	user, token := f.createUser(t, "alice")
	f.createRoomWithMember(t, user)

	c, rec := newJSONContext(http.MethodPost, "/rooms/1/messages", `{"content":""}`, token)
	c.SetParamNames("room_id")
	c.SetParamValues("1")
	if err := f.callAuthed(f.handler.PostMessage, c); err != nil {
		t.Fatalf("PostMessage returned error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestListMessagesHistory(t *testing.T) {
	f := newTestFixture(t)
	user, token := f.createUser(t, "alice")
	room := f.createRoomWithMember(t, user)

	ctx := context.Background()
	for _, content := range []string{"one", "two"} {
		msg := &domain.Message{RoomID: room.ID, UserID: &user.ID, Content: content}
		if err := f.handler.store.CreateMessage(ctx, msg); err != nil {
			t.Fatalf("CreateMessage failed: %v", err)
		}
	}
	bot := &domain.Message{RoomID: room.ID, Content: "reply", IsBot: true}
	if err := f.handler.store.CreateMessage(ctx, bot); err != nil {
		t.Fatalf("CreateMessage failed: %v", err)
	}

	c, rec := newJSONContext(http.MethodGet, "/rooms/1/messages", "", token)
	c.SetParamNames("room_id")
	c.SetParamValues("1")
	if err := f.callAuthed(f.handler.ListMessages, c); err != nil {
		t.Fatalf("ListMessages failed: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Messages []domain.MessageView `json:"messages"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Messages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(resp.Messages))
	}
	if resp.Messages[0].Content != "one" {
		t.Fatalf("expected chronological order, got %+v", resp.Messages)
	}
	last := resp.Messages[2]
	if !last.IsBot || last.Username != "LLM Bot" {
		t.Fatalf("expected bot author resolution, got %+v", last)
	}
}

func TestListMessagesInvalidRoomID(t *testing.T) {
	f := newTestFixture(t)
	_, token := f.createUser(t, "alice")

	c, _ := newJSONContext(http.MethodGet, "/rooms/abc/messages", "", token)
	c.SetParamNames("room_id")
	c.SetParamValues("abc")
	err := f.callAuthed(f.handler.ListMessages, c)
	if code := respondHTTPError(c, err); code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d (%v)", code, err)
	}
}
