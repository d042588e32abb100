package controller

import (
	"github.com/gravishankar/satify-backend/internal/model"
	"github.com/gravishankar/satify-backend/internal/service"
	"github.com/gravishankar/satify-backend/internal/util"

	"github.com/gin-gonic/gin"
)

type LessonController struct {
	Lessons *service.LessonService
	Drafts  *service.DraftService
}

func NewLessonController(lessons *service.LessonService, drafts *service.DraftService) *LessonController {
	return &LessonController{Lessons: lessons, Drafts: drafts}
}

// ListLessons godoc
// @Summary Published lesson index
// @Tags lessons
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/lessons [get]
func (c *LessonController) ListLessons(ctx *gin.Context) {
	manifest, err := c.Lessons.Manifest(ctx.Request.Context())
	if err != nil {
		util.StoreError(ctx, err)
		return
	}
	util.Success(ctx, manifest)
}

// SaveDraft godoc
// @Summary Save a lesson draft
// @Description Builds the lesson document from the posted form values, saves
// @Description it to the draft tier and writes a best-effort version snapshot.
// @Tags lessons
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body model.FormValues true "lesson form values"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response
// @Failure 409 {object} util.Response "another editor saved first"
// @Router /api/save-draft [post]
func (c *LessonController) SaveDraft(ctx *gin.Context) {
	var form model.FormValues
	if err := ctx.ShouldBindJSON(&form); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	doc := model.FromForm(form)
	if err := model.ValidateLesson(doc); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	sha, err := c.Drafts.SaveDraft(ctx.Request.Context(), doc)
	if err != nil {
		util.StoreError(ctx, err)
		return
	}

	c.Drafts.CreateVersionSnapshot(ctx.Request.Context(), doc)

	util.Success(ctx, gin.H{"lesson": doc, "sha": sha})
}

// LoadDraft godoc
// @Summary Load a lesson, draft tier first
// @Description Reads the draft copy when one exists and falls back to the
// @Description published copy otherwise; fromDraft reports which tier won.
// @Tags lessons
// @Security BearerAuth
// @Produce json
// @Param lessonId path string true "lesson id"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/load-draft/{lessonId} [get]
func (c *LessonController) LoadDraft(ctx *gin.Context) {
	id := ctx.Param("lessonId")

	publishedPath := ctx.Query("published")
	if publishedPath == "" {
		manifest, err := c.Lessons.Manifest(ctx.Request.Context())
		if err != nil {
			util.StoreError(ctx, err)
			return
		}
		if entry, ok := manifest[id]; ok {
			publishedPath = entry.Filepath
		}
	}

	loaded, err := c.Drafts.LoadLesson(ctx.Request.Context(), id, publishedPath)
	if err != nil {
		util.StoreError(ctx, err)
		return
	}
	util.Success(ctx, loaded)
}

// ListVersions godoc
// @Summary Version snapshots for a lesson
// @Tags lessons
// @Security BearerAuth
// @Produce json
// @Param lessonId path string true "lesson id"
// @Success 200 {object} util.Response
// @Router /api/versions/{lessonId} [get]
func (c *LessonController) ListVersions(ctx *gin.Context) {
	versions, err := c.Drafts.ListVersions(ctx.Request.Context(), ctx.Param("lessonId"))
	if err != nil {
		util.StoreError(ctx, err)
		return
	}
	util.Success(ctx, versions)
}

// SaveScratch godoc
// @Summary Mirror an in-progress edit for crash recovery
// @Tags lessons
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body model.FormValues true "lesson form values"
// @Success 200 {object} util.Response
// @Router /api/scratch [post]
func (c *LessonController) SaveScratch(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var form model.FormValues
	if err := ctx.ShouldBindJSON(&form); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	doc := model.FromForm(form)
	if err := model.ValidateLesson(doc); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.Drafts.SaveScratch(ctx.Request.Context(), user.UserID, doc); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"saved": true})
}

// LoadScratch godoc
// @Summary Retrieve the scratch copy saved within the last 24h
// @Tags lessons
// @Security BearerAuth
// @Produce json
// @Param lessonId path string true "lesson id"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/scratch/{lessonId} [get]
func (c *LessonController) LoadScratch(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	doc, err := c.Drafts.LoadScratch(ctx.Request.Context(), user.UserID, ctx.Param("lessonId"))
	if err != nil {
		util.StoreError(ctx, err)
		return
	}
	util.Success(ctx, doc)
}

// CommitLesson godoc
// @Summary Write a lesson directly to a publish path
// @Tags lessons
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body service.CommitRequest true "commit payload"
// @Success 200 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /api/commit-lesson [post]
func (c *LessonController) CommitLesson(ctx *gin.Context) {
	var req service.CommitRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.Lessons.CommitLesson(ctx.Request.Context(), req); err != nil {
		util.StoreError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"filepath": req.Filepath})
}
