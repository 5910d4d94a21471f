package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/Hesed2817/taskflow-app/api/transport"
	"github.com/Hesed2817/taskflow-app/pkg/httpcontext"
	projectUC "github.com/Hesed2817/taskflow-app/usecase/project"
)

type ProjectHandler struct {
	baseHandler
	uc *projectUC.UseCase
}

func NewProjectHandler(uc *projectUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List accessible projects
// @Tags projects
// @Router /api/v1/projects [get]
func (h *ProjectHandler) List(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	projects, err := h.uc.List(stdCtx, userID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, projects)
}

// @Summary Create project
// @Tags projects
// @Router /api/v1/projects [post]
func (h *ProjectHandler) Create(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	var req transport.ProjectRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.badRequest(ctx, "invalid payload")
		return
	}

	in := projectUC.CreateInput{
		Name:        req.Name,
		Description: req.Description,
		StartDate:   parseDate(req.StartDate),
		EndDate:     parseDate(req.EndDate),
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	created, err := h.uc.Create(stdCtx, userID, in)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, created)
}

// @Summary Get project
// @Tags projects
// @Router /api/v1/projects/{id} [get]
func (h *ProjectHandler) Get(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	projectID := pathParam(ctx, "id")
	if projectID == "" {
		h.badRequest(ctx, "missing project id")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	project, err := h.uc.Get(stdCtx, userID, projectID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, project)
}

// @Summary Update project
// @Tags projects
// @Router /api/v1/projects/{id} [put]
func (h *ProjectHandler) Update(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	projectID := pathParam(ctx, "id")
	if projectID == "" {
		h.badRequest(ctx, "missing project id")
		return
	}

	var req transport.ProjectUpdateRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.badRequest(ctx, "invalid payload")
		return
	}

	in := projectUC.UpdateInput{
		Name:        req.Name,
		Description: req.Description,
	}
	if req.StartDate != nil {
		in.StartDate = parseDate(*req.StartDate)
	}
	if req.EndDate != nil {
		in.EndDate = parseDate(*req.EndDate)
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	updated, err := h.uc.Update(stdCtx, userID, projectID, in)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, updated)
}

// @Summary Delete project and its tasks
// @Tags projects
// @Router /api/v1/projects/{id} [delete]
func (h *ProjectHandler) Delete(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	projectID := pathParam(ctx, "id")
	if projectID == "" {
		h.badRequest(ctx, "missing project id")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.Delete(stdCtx, userID, projectID); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]string{"message": "project deleted"})
}

// @Summary Add project member
// @Tags projects
// @Router /api/v1/projects/{id}/members [post]
func (h *ProjectHandler) AddMember(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	projectID := pathParam(ctx, "id")
	var req transport.MemberRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil || req.UserID == "" {
		h.badRequest(ctx, "invalid payload")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	project, err := h.uc.AddMember(stdCtx, userID, projectID, req.UserID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, project)
}

// @Summary Remove project member
// @Tags projects
// @Router /api/v1/projects/{id}/members/{userId} [delete]
func (h *ProjectHandler) RemoveMember(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	projectID := pathParam(ctx, "id")
	memberID := pathParam(ctx, "userId")
	if projectID == "" || memberID == "" {
		h.badRequest(ctx, "missing project or member id")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.RemoveMember(stdCtx, userID, projectID, memberID); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]string{"message": "member removed"})
}

// @Summary Transfer project ownership
// @Tags projects
// @Router /api/v1/projects/{id}/transfer [post]
func (h *ProjectHandler) TransferOwnership(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	projectID := pathParam(ctx, "id")
	var req transport.TransferOwnershipRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil || req.NewOwnerID == "" {
		h.badRequest(ctx, "invalid payload")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.TransferOwnership(stdCtx, userID, projectID, req.NewOwnerID); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]string{"message": "ownership transferred"})
}

func parseDate(value string) *time.Time {
	if value == "" {
		return nil
	}
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return &parsed
	}
	return nil
}
