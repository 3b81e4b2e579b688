package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/ychia112/GroceryShopperAI/internal/auth"
	"github.com/ychia112/GroceryShopperAI/internal/config"
	"github.com/ychia112/GroceryShopperAI/internal/domain"
	"github.com/ychia112/GroceryShopperAI/tests/helpers"
)

type dispatchedCall struct {
	roomID  int64
	userID  int64
	content string
}

type fakeDispatcher struct {
	calls []dispatchedCall
}

func (f *fakeDispatcher) Dispatch(roomID, userID int64, content string) {
	f.calls = append(f.calls, dispatchedCall{roomID: roomID, userID: userID, content: content})
}

type fakeBroadcaster struct {
	sent []any
}

func (f *fakeBroadcaster) Broadcast(roomID int64, payload any) {
	f.sent = append(f.sent, payload)
}

type fakeBackends struct{}

func (fakeBackends) Has(name string) bool { return name == "openai" || name == "gemini" }
func (fakeBackends) Names() []string      { return []string{"gemini", "openai"} }
func (fakeBackends) Default() string      { return "openai" }

type testFixture struct {
	handler     *Handler
	dispatcher  *fakeDispatcher
	broadcaster *fakeBroadcaster
}

func newTestFixture(t *testing.T) *testFixture {
	t.Helper()

	d := &fakeDispatcher{}
	b := &fakeBroadcaster{}
	h := NewHandler(
		helpers.NewTestSQLiteStore(t),
		b,
		d,
		fakeBackends{},
		auth.NewTokenIssuer("test-secret", time.Hour),
		&config.Config{ChatHistoryLimit: 50},
		zerolog.Nop(),
	)
	return &testFixture{handler: h, dispatcher: d, broadcaster: b}
}

// createUser inserts a user directly and returns it with a valid token.
func (f *testFixture) createUser(t *testing.T, username string) (*domain.User, string) {
	t.Helper()
	user, err := f.handler.store.CreateUser(context.Background(), username, "hash", "openai")
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	token, err := f.handler.tokens.CreateToken(username)
	if err != nil {
		t.Fatalf("CreateToken failed: %v", err)
	}
	return user, token
}

func newJSONContext(method, target, body, token string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

// callAuthed runs a handler behind the auth middleware, the way it is routed.
func (f *testFixture) callAuthed(fn echo.HandlerFunc, c echo.Context) error {
	return auth.Middleware(f.handler.tokens)(fn)(c)
}

// respondHTTPError renders echo.HTTPError returns the way the echo server
// would, so tests can assert on status codes.
func respondHTTPError(c echo.Context, err error) int {
	if err == nil {
		return c.Response().Status
	}
	if he, ok := err.(*echo.HTTPError); ok {
		return he.Code
	}
	return http.StatusInternalServerError
}
