package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/anylearn/anylearn/internal/config"
	"github.com/anylearn/anylearn/internal/domain/profile"
	"github.com/anylearn/anylearn/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

type ProfileStore interface {
	GetByUserID(ctx context.Context, userID string) (profile.Profile, error)
	Upsert(ctx context.Context, req profile.UpdateProfileRequest) (profile.Profile, error)
}

type ProfilesHandler struct {
	repo ProfileStore
}

func NewProfilesHandler(repo ProfileStore) *ProfilesHandler {
	return &ProfilesHandler{repo: repo}
}

func (h *ProfilesHandler) GetMyProfile(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)

	defer cancel()

	p, err := h.repo.GetByUserID(cctx, userID)

	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			// never saved a profile yet; return the empty shell
			ctx.JSON(http.StatusOK, profile.Profile{UserID: userID})
			return
		}

		RespondInternal(ctx, "Could not load profile")
		return
	}

	ctx.JSON(http.StatusOK, p)
}

func (h *ProfilesHandler) UpdateMyProfile(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	var req profile.UpdateProfileRequest

	if !BindJSON(ctx, &req) {
		return
	}

	req.UserID = userID

	cctx, cancel := config.WithTimeout(2 * time.Second)

	defer cancel()

	p, err := h.repo.Upsert(cctx, req)

	if err != nil {
		RespondInternal(ctx, "Could not save profile")
		return
	}

	ctx.JSON(http.StatusOK, p)
}
