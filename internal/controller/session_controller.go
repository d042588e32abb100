package controller

import (
	"github.com/gravishankar/satify-backend/internal/service"
	"github.com/gravishankar/satify-backend/internal/util"

	"github.com/gin-gonic/gin"
)

type SessionController struct {
	Sessions *service.SessionService
}

func NewSessionController(sessions *service.SessionService) *SessionController {
	return &SessionController{Sessions: sessions}
}

// RecordSession godoc
// @Summary Record a completed practice session
// @Tags sessions
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body service.SessionRequest true "session result"
// @Success 201 {object} util.Response
// @Failure 400 {object} util.Response
// @Router /api/sessions [post]
func (c *SessionController) RecordSession(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.SessionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	session, err := c.Sessions.RecordSession(user.UserID, req)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, session)
}

// ListSessions godoc
// @Summary Practice session history for the current user
// @Tags sessions
// @Security BearerAuth
// @Produce json
// @Param page query int false "page" default(1)
// @Param limit query int false "page size" default(20)
// @Success 200 {object} util.Response
// @Router /api/sessions [get]
func (c *SessionController) ListSessions(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	page := int(util.MustParseUint(ctx.DefaultQuery("page", "1")))
	limit := int(util.MustParseUint(ctx.DefaultQuery("limit", "20")))

	sessions, total, err := c.Sessions.ListSessions(user.UserID, page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"sessions": sessions, "total": total, "page": page, "limit": limit})
}

// Summary godoc
// @Summary Aggregate practice statistics for the current user
// @Tags sessions
// @Security BearerAuth
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/analytics/summary [get]
func (c *SessionController) Summary(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	summary, err := c.Sessions.Summary(user.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, summary)
}

// SkillBreakdown godoc
// @Summary Per-skill accuracy for the current user
// @Tags sessions
// @Security BearerAuth
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/analytics/skills [get]
func (c *SessionController) SkillBreakdown(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	stats, err := c.Sessions.SkillBreakdown(user.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, stats)
}
