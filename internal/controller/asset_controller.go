package controller

import (
	"github.com/gravishankar/satify-backend/internal/service"
	"github.com/gravishankar/satify-backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AssetController struct {
	Assets *service.AssetService
}

func NewAssetController(assets *service.AssetService) *AssetController {
	return &AssetController{Assets: assets}
}

// UploadSlideImage godoc
// @Summary Upload an image for use inside a slide
// @Tags assets
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "image file"
// @Success 201 {object} util.Response
// @Failure 400 {object} util.Response
// @Router /api/assets/upload [post]
func (c *AssetController) UploadSlideImage(ctx *gin.Context) {
	file, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "file is required")
		return
	}

	url, err := c.Assets.UploadSlideImage(ctx.Request.Context(), file)
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	util.Created(ctx, gin.H{"url": url})
}
