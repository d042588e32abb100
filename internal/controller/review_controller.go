package controller

import (
	"time"

	"github.com/gravishankar/satify-backend/internal/service"
	"github.com/gravishankar/satify-backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ReviewController struct {
	Publish *service.PublishService
}

func NewReviewController(publish *service.PublishService) *ReviewController {
	return &ReviewController{Publish: publish}
}

// PendingReviews godoc
// @Summary Drafts that differ from their published copy
// @Tags review
// @Security BearerAuth
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/review/pending [get]
func (c *ReviewController) PendingReviews(ctx *gin.Context) {
	pending, err := c.Publish.PendingReviews(ctx.Request.Context())
	if err != nil {
		util.StoreError(ctx, err)
		return
	}
	util.Success(ctx, pending)
}

// Changes godoc
// @Summary Field and slide level diff between draft and published
// @Tags review
// @Security BearerAuth
// @Produce json
// @Param lessonId path string true "lesson id"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/review/{lessonId}/changes [get]
func (c *ReviewController) Changes(ctx *gin.Context) {
	changes, err := c.Publish.Changes(ctx.Request.Context(), ctx.Param("lessonId"))
	if err != nil {
		util.StoreError(ctx, err)
		return
	}
	util.Success(ctx, changes)
}

type publishRequest struct {
	LessonID string `json:"lessonId" binding:"required"`
}

// PublishLesson godoc
// @Summary Approve a draft and copy it to the published tier
// @Tags review
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body publishRequest true "lesson to publish"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /api/publish-lesson [post]
func (c *ReviewController) PublishLesson(ctx *gin.Context) {
	var req publishRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	path, err := c.Publish.Approve(ctx.Request.Context(), req.LessonID)
	if err != nil {
		util.StoreError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"published": true, "filepath": path})
}

type rejectRequest struct {
	LessonID  string    `json:"lessonId" binding:"required"`
	Reason    string    `json:"reason" binding:"required"`
	Timestamp time.Time `json:"timestamp"`
}

// RejectLesson godoc
// @Summary Reject a draft with a reason
// @Description Records the rejection for the author; the draft itself is
// @Description left untouched.
// @Tags review
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body rejectRequest true "rejection payload"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response
// @Router /api/reject-lesson [post]
func (c *ReviewController) RejectLesson(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req rejectRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.Publish.Reject(ctx.Request.Context(), req.LessonID, req.Reason, user.UserID, req.Timestamp); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"rejected": true})
}

type rollbackRequest struct {
	LessonID string `json:"lessonId" binding:"required"`
}

// RollbackLesson godoc
// @Summary Restore the newest version snapshot as the draft
// @Tags review
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body rollbackRequest true "lesson to roll back"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/rollback-lesson [post]
func (c *ReviewController) RollbackLesson(ctx *gin.Context) {
	var req rollbackRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	restored, err := c.Publish.Rollback(ctx.Request.Context(), req.LessonID)
	if err != nil {
		util.StoreError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"restored": restored})
}
