package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/Hesed2817/taskflow-app/api/transport"
	"github.com/Hesed2817/taskflow-app/domain"
	"github.com/Hesed2817/taskflow-app/internal/services"
	"github.com/Hesed2817/taskflow-app/pkg/httpcontext"
	authUC "github.com/Hesed2817/taskflow-app/usecase/auth"
	identityUC "github.com/Hesed2817/taskflow-app/usecase/identity"
)

type AuthHandler struct {
	baseHandler
	identity *identityUC.UseCase
	auth     *authUC.UseCase
	notifier *services.Notifier
	resetURL string
}

func NewAuthHandler(
	identity *identityUC.UseCase,
	auth *authUC.UseCase,
	notifier *services.Notifier,
	resetURL string,
	adapter *httpcontext.Adapter,
	logger *zap.Logger,
) *AuthHandler {
	return &AuthHandler{
		baseHandler: newBaseHandler(adapter, logger),
		identity:    identity,
		auth:        auth,
		notifier:    notifier,
		resetURL:    resetURL,
	}
}

// @Summary Register a new account
// @Tags auth
// @Router /api/v1/auth/register [post]
func (h *AuthHandler) Register(ctx *fasthttp.RequestCtx) {
	var req transport.RegisterRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.badRequest(ctx, "invalid payload")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	user, err := h.identity.Register(stdCtx, req.Username, req.Email, req.Password)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	signed, session, err := h.auth.IssueToken(stdCtx, user.ID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	h.respondSuccess(ctx, http.StatusCreated, map[string]interface{}{
		"user":       user,
		"token":      signed,
		"expires_at": session.ExpiresAt,
	})
}

// @Summary Authenticate and receive a token
// @Tags auth
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) Login(ctx *fasthttp.RequestCtx) {
	var req transport.LoginRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.badRequest(ctx, "invalid payload")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	user, err := h.identity.Authenticate(stdCtx, req.Email, req.Password)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	signed, session, err := h.auth.IssueToken(stdCtx, user.ID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	h.respondSuccess(ctx, http.StatusOK, map[string]interface{}{
		"user":       user,
		"token":      signed,
		"expires_at": session.ExpiresAt,
	})
}

// @Summary Revoke the current session
// @Tags auth
// @Router /api/v1/auth/logout [post]
func (h *AuthHandler) Logout(ctx *fasthttp.RequestCtx) {
	header := string(ctx.Request.Header.Peek("Authorization"))
	token := header
	if len(header) > 7 && header[:7] == "Bearer " {
		token = header[7:]
	}
	if token == "" {
		h.respondJSON(ctx, http.StatusUnauthorized, transport.NewError(string(domain.ErrCodeUnauthorized), "missing token", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.auth.RevokeToken(stdCtx, token); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]string{"message": "logged out"})
}

// @Summary Request a password reset
// @Tags auth
// @Router /api/v1/auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(ctx *fasthttp.RequestCtx) {
	var req transport.ForgotPasswordRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil || req.Email == "" {
		h.badRequest(ctx, "invalid payload")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	raw, _, err := h.identity.IssueResetToken(stdCtx, req.Email)
	if err != nil {
		// Unknown addresses get the same response as known ones so the
		// endpoint cannot be used to probe for accounts.
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			h.respondSuccess(ctx, http.StatusOK, map[string]string{
				"message": "if the address is registered, a reset link has been sent",
			})
			return
		}
		h.respondError(ctx, err)
		return
	}

	link := fmt.Sprintf("%s?token=%s", h.resetURL, raw)
	if err := h.notifier.SendPasswordReset(stdCtx, req.Email, link); err != nil {
		h.logger.Error("queueing reset mail failed", zap.Error(err))
	}

	h.respondSuccess(ctx, http.StatusOK, map[string]string{
		"message": "if the address is registered, a reset link has been sent",
	})
}

// @Summary Redeem a reset token
// @Tags auth
// @Router /api/v1/auth/reset-password [post]
func (h *AuthHandler) ResetPassword(ctx *fasthttp.RequestCtx) {
	var req transport.ResetPasswordRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil || req.Token == "" {
		h.badRequest(ctx, "invalid payload")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	user, err := h.identity.ConsumeResetToken(stdCtx, req.Token, req.NewPassword)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, user)
}
