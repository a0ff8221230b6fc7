package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/anylearn/anylearn/internal/auth"
	"github.com/anylearn/anylearn/internal/config"
	"github.com/anylearn/anylearn/internal/domain/account"
	"github.com/anylearn/anylearn/internal/http/handlers"
	"github.com/anylearn/anylearn/internal/http/middlewares"
	"github.com/anylearn/anylearn/internal/session"
	"github.com/gin-gonic/gin"
)

// Make sure Gin does not spam the console during the test

func init() {
	gin.SetMode(gin.TestMode)
}

// Fake implementations of the handlers.Authenticator interface

type fakeAuthenticator struct {
	registerFn func(ctx context.Context, req auth.RegisterRequest) auth.RegisterOutcome
	loginFn    func(ctx context.Context, username, password string) auth.LoginOutcome
	logoutFn   func(ctx context.Context, token string) error
}

func (f *fakeAuthenticator) Register(ctx context.Context, req auth.RegisterRequest) auth.RegisterOutcome {
	if f.registerFn != nil {
		return f.registerFn(ctx, req)
	}
	return auth.RegisterOutcome{Status: auth.RegisterCreated, AccountID: "acc-1"}
}

func (f *fakeAuthenticator) Login(ctx context.Context, username, password string) auth.LoginOutcome {
	if f.loginFn != nil {
		return f.loginFn(ctx, username, password)
	}
	return auth.LoginOutcome{Status: auth.LoginAuthenticated}
}

func (f *fakeAuthenticator) Logout(ctx context.Context, token string) error {
	if f.logoutFn != nil {
		return f.logoutFn(ctx, token)
	}
	return nil
}

type fakeAccountReader struct {
	getFn func(ctx context.Context, id string) (account.Account, error)
}

func (f *fakeAccountReader) GetByID(ctx context.Context, id string) (account.Account, error) {
	if f.getFn != nil {
		return f.getFn(ctx, id)
	}
	return account.Account{}, account.ErrNotFound
}

// small helper function which returns the gin engine to mount one handler per test

func setupRouter(method, path string, h gin.HandlerFunc) *gin.Engine {
	r := gin.New()

	r.Handle(method, path, h)

	return r
}

func newAuthHandler(a handlers.Authenticator) *handlers.AuthHandler {
	return handlers.NewAuthHandler(a, &fakeAccountReader{}, nil, config.Config{Env: "test"})
}

func doJSON(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

type errorEnvelope struct {
	Error struct {
		Code    string          `json:"code"`
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
}

const validRegisterBody = `{"username":"alice","email":"alice@x.com","password":"Abcd123!","confirmPassword":"Abcd123!","role":"learner"}`

func TestRegisterHandler(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		outcome    auth.RegisterOutcome
		wantStatus int
		wantCode   string
	}{
		{
			name:       "created",
			body:       validRegisterBody,
			outcome:    auth.RegisterOutcome{Status: auth.RegisterCreated, AccountID: "acc-42"},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "policy rejection",
			body:       validRegisterBody,
			outcome:    auth.RegisterOutcome{Status: auth.RegisterRejected, Reason: "password_too_short", Message: "password must be at least 8 characters"},
			wantStatus: http.StatusBadRequest,
			wantCode:   "invalid_request",
		},
		{
			name:       "conflict",
			body:       validRegisterBody,
			outcome:    auth.RegisterOutcome{Status: auth.RegisterRejected, Reason: auth.ReasonAccountTaken, Message: "username or email already in use"},
			wantStatus: http.StatusConflict,
			wantCode:   auth.ReasonAccountTaken,
		},
		{
			name:       "store error",
			body:       validRegisterBody,
			outcome:    auth.RegisterOutcome{Status: auth.RegisterStoreError},
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   "service_unavailable",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			a := &fakeAuthenticator{
				registerFn: func(ctx context.Context, req auth.RegisterRequest) auth.RegisterOutcome {
					return tc.outcome
				},
			}

			r := setupRouter(http.MethodPost, "/auth/register", newAuthHandler(a).Register)
			w := doJSON(r, http.MethodPost, "/auth/register", tc.body)

			if w.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d, body=%s", w.Code, tc.wantStatus, w.Body.String())
			}

			if tc.wantCode != "" {
				var resp errorEnvelope

				if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
					t.Fatalf("unmarshal: %v body=%s", err, w.Body.String())
				}

				if resp.Error.Code != tc.wantCode {
					t.Fatalf("code = %s, want %s", resp.Error.Code, tc.wantCode)
				}
			}
		})
	}
}

func TestRegisterHandler_CreatedReturnsAccountID(t *testing.T) {
	a := &fakeAuthenticator{
		registerFn: func(ctx context.Context, req auth.RegisterRequest) auth.RegisterOutcome {
			return auth.RegisterOutcome{Status: auth.RegisterCreated, AccountID: "acc-42"}
		},
	}

	r := setupRouter(http.MethodPost, "/auth/register", newAuthHandler(a).Register)
	w := doJSON(r, http.MethodPost, "/auth/register", validRegisterBody)

	var resp struct {
		AccountID string `json:"accountId"`
	}

	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if resp.AccountID != "acc-42" {
		t.Fatalf("accountId = %s, want acc-42", resp.AccountID)
	}
}

func TestRegisterHandler_MissingFieldsFailBinding(t *testing.T) {
	called := false

	a := &fakeAuthenticator{
		registerFn: func(ctx context.Context, req auth.RegisterRequest) auth.RegisterOutcome {
			called = true
			return auth.RegisterOutcome{Status: auth.RegisterCreated}
		},
	}

	r := setupRouter(http.MethodPost, "/auth/register", newAuthHandler(a).Register)
	w := doJSON(r, http.MethodPost, "/auth/register", `{"username":"alice"}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}

	if called {
		t.Fatalf("authenticator must not run on a failed bind")
	}
}

func TestLoginHandler_SetsSessionCookie(t *testing.T) {
	sess := session.Session{
		Token:     "token-123",
		AccountID: "acc-1",
		Role:      "learner",
		ExpiresAt: time.Now().Add(time.Hour),
	}

	a := &fakeAuthenticator{
		loginFn: func(ctx context.Context, username, password string) auth.LoginOutcome {
			if username != "alice" || password != "Abcd123!" {
				t.Fatalf("unexpected credentials %s/%s", username, password)
			}
			return auth.LoginOutcome{Status: auth.LoginAuthenticated, Session: sess}
		},
	}

	r := setupRouter(http.MethodPost, "/auth/login", newAuthHandler(a).Login)
	w := doJSON(r, http.MethodPost, "/auth/login", `{"username":"alice","password":"Abcd123!"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body=%s", w.Code, w.Body.String())
	}

	var cookie *http.Cookie

	for _, c := range w.Result().Cookies() {
		if c.Name == middlewares.SessionCookie {
			cookie = c
		}
	}

	if cookie == nil {
		t.Fatalf("session cookie not set")
	}

	if cookie.Value != "token-123" {
		t.Fatalf("cookie value = %s, want token-123", cookie.Value)
	}

	if !cookie.HttpOnly {
		t.Fatalf("session cookie must be HttpOnly")
	}
}

func TestLoginHandler_RejectionIsGeneric(t *testing.T) {
	a := &fakeAuthenticator{
		loginFn: func(ctx context.Context, username, password string) auth.LoginOutcome {
			return auth.LoginOutcome{
				Status:  auth.LoginRejected,
				Reason:  auth.ReasonInvalidCredentials,
				Message: "username or password is incorrect",
			}
		},
	}

	r := setupRouter(http.MethodPost, "/auth/login", newAuthHandler(a).Login)
	w := doJSON(r, http.MethodPost, "/auth/login", `{"username":"ghost","password":"whatever"}`)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}

	var resp errorEnvelope

	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if resp.Error.Code != auth.ReasonInvalidCredentials {
		t.Fatalf("code = %s, want %s", resp.Error.Code, auth.ReasonInvalidCredentials)
	}

	if w.Result().Cookies() != nil && len(w.Result().Cookies()) > 0 {
		t.Fatalf("rejected login must not set cookies")
	}
}

func TestLoginHandler_StoreErrorIsServiceUnavailable(t *testing.T) {
	a := &fakeAuthenticator{
		loginFn: func(ctx context.Context, username, password string) auth.LoginOutcome {
			return auth.LoginOutcome{Status: auth.LoginStoreError}
		},
	}

	r := setupRouter(http.MethodPost, "/auth/login", newAuthHandler(a).Login)
	w := doJSON(r, http.MethodPost, "/auth/login", `{"username":"alice","password":"Abcd123!"}`)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", w.Code)
	}
}

func TestLogoutHandler_DestroysSessionAndClearsCookie(t *testing.T) {
	var destroyed string

	a := &fakeAuthenticator{
		logoutFn: func(ctx context.Context, token string) error {
			destroyed = token
			return nil
		},
	}

	r := setupRouter(http.MethodPost, "/auth/logout", newAuthHandler(a).Logout)

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: middlewares.SessionCookie, Value: "token-123"})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", w.Code)
	}

	if destroyed != "token-123" {
		t.Fatalf("destroyed token = %q, want token-123", destroyed)
	}

	cleared := false

	for _, c := range w.Result().Cookies() {
		if c.Name == middlewares.SessionCookie && c.MaxAge < 0 {
			cleared = true
		}
	}

	if !cleared {
		t.Fatalf("logout should clear the session cookie")
	}
}
