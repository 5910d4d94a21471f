package handler

import (
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/Hesed2817/taskflow-app/api/transport"
	"github.com/Hesed2817/taskflow-app/pkg/httpcontext"
	identityUC "github.com/Hesed2817/taskflow-app/usecase/identity"
)

type UserHandler struct {
	baseHandler
	identity *identityUC.UseCase
}

func NewUserHandler(identity *identityUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		baseHandler: newBaseHandler(adapter, logger),
		identity:    identity,
	}
}

// @Summary Current user profile
// @Tags users
// @Router /api/v1/users/me [get]
func (h *UserHandler) Me(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	user, err := h.identity.GetProfile(stdCtx, userID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, user)
}

// @Summary Update current user profile
// @Tags users
// @Router /api/v1/users/me [put]
func (h *UserHandler) UpdateMe(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	var req transport.ProfileUpdateRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.badRequest(ctx, "invalid payload")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	user, err := h.identity.UpdateProfile(stdCtx, userID, req.Username)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, user)
}

// @Summary Change password
// @Tags users
// @Router /api/v1/users/me/password [put]
func (h *UserHandler) ChangePassword(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	var req transport.ChangePasswordRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.badRequest(ctx, "invalid payload")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.identity.ChangePassword(stdCtx, userID, req.CurrentPassword, req.NewPassword); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]string{"message": "password updated"})
}

// @Summary Search users by email or username
// @Tags users
// @Router /api/v1/users/search [get]
func (h *UserHandler) Search(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	email := string(ctx.QueryArgs().Peek("email"))
	username := string(ctx.QueryArgs().Peek("username"))

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	users, err := h.identity.SearchUsers(stdCtx, userID, email, username)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, users)
}

// @Summary Delete the current account and everything it owns
// @Tags users
// @Router /api/v1/users/me [delete]
func (h *UserHandler) DeleteMe(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	var req transport.DeleteAccountRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.badRequest(ctx, "invalid payload")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.identity.DeleteAccount(stdCtx, userID, req.Password); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]string{"message": "account deleted"})
}
