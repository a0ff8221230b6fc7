package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/anylearn/anylearn/internal/auth"
	"github.com/anylearn/anylearn/internal/config"
	"github.com/anylearn/anylearn/internal/domain/account"
	"github.com/anylearn/anylearn/internal/http/middlewares"
	"github.com/anylearn/anylearn/internal/observability"
	"github.com/gin-gonic/gin"
)

// Authenticator is the credential core; the handler only translates its
// outcomes into HTTP.
type Authenticator interface {
	Register(ctx context.Context, req auth.RegisterRequest) auth.RegisterOutcome
	Login(ctx context.Context, username, password string) auth.LoginOutcome
	Logout(ctx context.Context, token string) error
}

type AccountReader interface {
	GetByID(ctx context.Context, id string) (account.Account, error)
}

type AuthHandler struct {
	authn    Authenticator
	accounts AccountReader
	prom     *observability.Prom
	cfg      config.Config
}

func NewAuthHandler(authn Authenticator, accounts AccountReader, prom *observability.Prom, cfg config.Config) *AuthHandler {
	return &AuthHandler{
		authn:    authn,
		accounts: accounts,
		prom:     prom,
		cfg:      cfg,
	}
}

// policy detail is checked by the authenticator so its first-failed-rule
// message comes through; binding only enforces presence and shape here.
type RegisterRequest struct {
	Username        string `json:"username" binding:"required,min=1,max=60"`
	Email           string `json:"email" binding:"required"`
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirmPassword" binding:"required"`
	Role            string `json:"role" binding:"required"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Register(ctx *gin.Context) {
	var req RegisterRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	out := h.authn.Register(cctx, auth.RegisterRequest{
		Username:        req.Username,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		Role:            req.Role,
	})

	switch out.Status {
	case auth.RegisterCreated:
		h.prom.CountAuth("register", "ok")
		ctx.JSON(http.StatusCreated, gin.H{
			"accountId": out.AccountID,
		})

	case auth.RegisterRejected:
		h.prom.CountAuth("register", "rejected")

		if out.Reason == auth.ReasonAccountTaken {
			RespondConflict(ctx, auth.ReasonAccountTaken, out.Message)
			return
		}

		RespondBadRequest(ctx, out.Message, gin.H{"reason": out.Reason})

	default:
		h.prom.CountAuth("register", "store_error")
		RespondStoreUnavailable(ctx)
	}
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	out := h.authn.Login(cctx, req.Username, req.Password)

	switch out.Status {
	case auth.LoginAuthenticated:
		h.prom.CountAuth("login", "ok")
		h.setSessionCookie(ctx, out.Session.Token, out.Session.ExpiresAt)

		ctx.JSON(http.StatusOK, gin.H{
			"accountId": out.Session.AccountID,
			"role":      out.Session.Role,
			"expiresAt": out.Session.ExpiresAt,
		})

	case auth.LoginRejected:
		h.prom.CountAuth("login", "rejected")
		RespondUnAuthorized(ctx, out.Reason, out.Message)

	default:
		h.prom.CountAuth("login", "store_error")
		RespondStoreUnavailable(ctx)
	}
}

func (h *AuthHandler) Logout(ctx *gin.Context) {
	token, err := ctx.Cookie(middlewares.SessionCookie)

	if err == nil && token != "" {
		cctx, cancel := config.WithTimeout(2 * time.Second)

		defer cancel()

		// best effort; the cookie is cleared regardless
		_ = h.authn.Logout(cctx, token)
	}

	h.clearSessionCookie(ctx)
	ctx.Status(http.StatusNoContent)
}

// Me returns the authenticated account, minus the hash.
func (h *AuthHandler) Me(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)

	defer cancel()

	acc, err := h.accounts.GetByID(cctx, userID)

	if err != nil {
		RespondNotFound(ctx, "Account not found")
		return
	}

	ctx.JSON(http.StatusOK, acc)
}

// Cookie helpers

func (h *AuthHandler) setSessionCookie(ctx *gin.Context, token string, expiresAt time.Time) {
	secure := h.cfg.Env == "prod"

	maxAge := int(time.Until(expiresAt).Seconds())

	ctx.SetSameSite(http.SameSiteStrictMode)

	ctx.SetCookie(
		middlewares.SessionCookie,
		token,
		maxAge,
		"/",
		"",
		secure,
		true, // HttpOnly.
	)
}

func (h *AuthHandler) clearSessionCookie(ctx *gin.Context) {
	secure := h.cfg.Env == "prod"
	ctx.SetSameSite(http.SameSiteStrictMode)
	ctx.SetCookie(
		middlewares.SessionCookie,
		"",
		-1,
		"/",
		"",
		secure,
		true,
	)
}
