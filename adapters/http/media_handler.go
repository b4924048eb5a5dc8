package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	mediaUC "github.com/khoahotran/projectshelf/internal/application/usecase/media"
	"github.com/khoahotran/projectshelf/pkg/apperror"
	"github.com/khoahotran/projectshelf/pkg/logger"
)

const maxMediaSize = 50 << 20

type MediaHandler struct {
	uploadMediaUC *mediaUC.UploadMediaUseCase
	listMediaUC   *mediaUC.ListMediaUseCase
	deleteMediaUC *mediaUC.DeleteMediaUseCase
	logger        logger.Logger
}

func NewMediaHandler(
	uploadUC *mediaUC.UploadMediaUseCase,
	listUC *mediaUC.ListMediaUseCase,
	deleteUC *mediaUC.DeleteMediaUseCase,
	log logger.Logger,
) *MediaHandler {
	return &MediaHandler{
		uploadMediaUC: uploadUC,
		listMediaUC:   listUC,
		deleteMediaUC: deleteUC,
		logger:        log,
	}
}

func (h *MediaHandler) UploadMedia(c *gin.Context) {
	ownerID, ok := GetOwnerIDFromGinContext(c)
	if !ok {
		c.Error(apperror.NewPermissionDenied("ownerID not found in context"))
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.Error(apperror.NewInvalidInput("'file' is required", err))
		return
	}
	if fileHeader.Size > maxMediaSize {
		c.Error(apperror.NewInvalidInput("file is too large", nil))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.Error(apperror.NewInternal("failed to open file", err))
		return
	}
	defer file.Close()

	output, err := h.uploadMediaUC.Execute(c.Request.Context(), mediaUC.UploadMediaInput{
		OwnerID:     ownerID,
		File:        file,
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Caption:     c.PostForm("caption"),
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"media": ToMediaDTO(output.Media), "item": output.Item})
}

func (h *MediaHandler) ListMedia(c *gin.Context) {
	ownerID, ok := GetOwnerIDFromGinContext(c)
	if !ok {
		c.Error(apperror.NewPermissionDenied("ownerID not found in context"))
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "30"))
	if page < 1 {
		page = 1
	}

	input := mediaUC.ListMediaInput{OwnerID: ownerID, Limit: limit, Offset: (page - 1) * limit}
	output, err := h.listMediaUC.Execute(c.Request.Context(), input)
	if err != nil {
		c.Error(err)
		return
	}

	dtos := make([]MediaDTO, len(output.Medias))
	for i, m := range output.Medias {
		dtos[i] = ToMediaDTO(m)
	}
	c.JSON(http.StatusOK, dtos)
}

func (h *MediaHandler) DeleteMedia(c *gin.Context) {
	ownerID, ok := GetOwnerIDFromGinContext(c)
	if !ok {
		c.Error(apperror.NewPermissionDenied("ownerID not found in context"))
		return
	}
	mediaID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.Error(apperror.NewInvalidInput("invalid media ID", err))
		return
	}

	input := mediaUC.DeleteMediaInput{OwnerID: ownerID, MediaID: mediaID}
	if err := h.deleteMediaUC.Execute(c.Request.Context(), input); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}
