package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	editorUC "github.com/khoahotran/projectshelf/internal/application/usecase/editor"
	mediaUC "github.com/khoahotran/projectshelf/internal/application/usecase/media"
	"github.com/khoahotran/projectshelf/internal/domain/casestudy"
	"github.com/khoahotran/projectshelf/internal/domain/editor"
	"github.com/khoahotran/projectshelf/pkg/apperror"
	"github.com/khoahotran/projectshelf/pkg/logger"
)

// pendingOutcome addresses the staged outcome in metric routes.
const pendingOutcome = "pending"

type EditorHandler struct {
	editorUseCase *editorUC.EditorUseCase
	uploadMediaUC *mediaUC.UploadMediaUseCase
	logger        logger.Logger
}

func NewEditorHandler(uc *editorUC.EditorUseCase, uploadUC *mediaUC.UploadMediaUseCase, log logger.Logger) *EditorHandler {
	return &EditorHandler{editorUseCase: uc, uploadMediaUC: uploadUC, logger: log}
}

func (h *EditorHandler) OpenSession(c *gin.Context) {
	ownerID, ok := GetOwnerIDFromGinContext(c)
	if !ok {
		c.Error(apperror.NewPermissionDenied("ownerID not found in context"))
		return
	}
	var req OpenSessionRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.Error(apperror.NewInvalidInput("invalid request data", err))
			return
		}
	}

	input := editorUC.OpenSessionInput{OwnerID: ownerID}
	if req.CaseStudyID != nil {
		input.CaseStudyID = *req.CaseStudyID
	}
	s, err := h.editorUseCase.Open(c.Request.Context(), input)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, EditorSessionDTO{Session: s, Applied: true})
}

func (h *EditorHandler) GetSession(c *gin.Context) {
	ref, ok := sessionRef(c)
	if !ok {
		return
	}
	s, err := h.editorUseCase.Get(c.Request.Context(), ref)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, EditorSessionDTO{Session: s, Applied: true})
}

func (h *EditorHandler) DiscardSession(c *gin.Context) {
	ref, ok := sessionRef(c)
	if !ok {
		return
	}
	if err := h.editorUseCase.Discard(c.Request.Context(), ref); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SubmitSession answers with the session in both outcomes so the client can show field errors
// or the failure notice next to the draft.
func (h *EditorHandler) SubmitSession(c *gin.Context) {
	ref, ok := sessionRef(c)
	if !ok {
		return
	}
	s, err := h.editorUseCase.Submit(c.Request.Context(), ref)
	if err != nil {
		if s == nil {
			c.Error(err)
			return
		}
		body := gin.H{"error": apperror.ErrInternal.Error(), "session": s}
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			body = appErr.ToJSON()
			body["session"] = s
		}
		c.Error(err)
		c.JSON(apperror.ToHTTPStatus(err), body)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"session":       s,
		"case_study_id": s.CaseStudyID,
		"mode":          s.Mode,
	})
}

func (h *EditorHandler) EditField(c *gin.Context) {
	var req EditFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid request data", err))
		return
	}
	h.apply(c, func(s *editor.Session) (bool, error) {
		return true, s.EditField(req.Field, req.Value)
	})
}

func (h *EditorHandler) SwitchTab(c *gin.Context) {
	var req SwitchTabRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid request data", err))
		return
	}
	h.apply(c, func(s *editor.Session) (bool, error) {
		return true, s.SetActiveTab(editor.Tab(req.Tab))
	})
}

func (h *EditorHandler) StageTimeline(c *gin.Context) {
	var req editor.TimelinePatch
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid request data", err))
		return
	}
	h.apply(c, func(s *editor.Session) (bool, error) {
		return true, s.StageTimelineDraft(req)
	})
}

func (h *EditorHandler) CommitTimeline(c *gin.Context) {
	h.apply(c, func(s *editor.Session) (bool, error) {
		return s.CommitTimelineDraft()
	})
}

func (h *EditorHandler) RemoveTimeline(c *gin.Context) {
	entryID, ok := uuidParam(c, "entryID")
	if !ok {
		return
	}
	h.apply(c, func(s *editor.Session) (bool, error) {
		return true, s.RemoveTimelineEntry(entryID)
	})
}

func (h *EditorHandler) StageOutcome(c *gin.Context) {
	var req editor.OutcomePatch
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid request data", err))
		return
	}
	h.apply(c, func(s *editor.Session) (bool, error) {
		return true, s.StageOutcomeDraft(req)
	})
}

func (h *EditorHandler) CommitOutcome(c *gin.Context) {
	h.apply(c, func(s *editor.Session) (bool, error) {
		return s.CommitOutcomeDraft()
	})
}

func (h *EditorHandler) RemoveOutcome(c *gin.Context) {
	entryID, ok := uuidParam(c, "entryID")
	if !ok {
		return
	}
	h.apply(c, func(s *editor.Session) (bool, error) {
		return true, s.RemoveOutcome(entryID)
	})
}

func (h *EditorHandler) AddMetric(c *gin.Context) {
	outcomeID, ok := outcomeParam(c)
	if !ok {
		return
	}
	var req ValueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid request data", err))
		return
	}
	h.apply(c, func(s *editor.Session) (bool, error) {
		return s.AddMetricToOutcome(outcomeID, req.Value)
	})
}

func (h *EditorHandler) RemoveMetric(c *gin.Context) {
	outcomeID, ok := outcomeParam(c)
	if !ok {
		return
	}
	value := c.Query("value")
	h.apply(c, func(s *editor.Session) (bool, error) {
		return true, s.RemoveMetricFromOutcome(outcomeID, value)
	})
}

func (h *EditorHandler) AddTool(c *gin.Context) {
	var req ValueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid request data", err))
		return
	}
	h.apply(c, func(s *editor.Session) (bool, error) {
		return s.AddTool(req.Value)
	})
}

func (h *EditorHandler) RemoveTool(c *gin.Context) {
	value := c.Query("value")
	h.apply(c, func(s *editor.Session) (bool, error) {
		return true, s.RemoveTool(value)
	})
}

func (h *EditorHandler) AddTechnology(c *gin.Context) {
	var req ValueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid request data", err))
		return
	}
	h.apply(c, func(s *editor.Session) (bool, error) {
		return s.AddTechnology(req.Value)
	})
}

func (h *EditorHandler) RemoveTechnology(c *gin.Context) {
	value := c.Query("value")
	h.apply(c, func(s *editor.Session) (bool, error) {
		return true, s.RemoveTechnology(value)
	})
}

// AddMediaItem takes either a multipart upload ("file", optional "caption") or a JSON body
// referencing an existing URL.
func (h *EditorHandler) AddMediaItem(c *gin.Context) {
	ownerID, ok := GetOwnerIDFromGinContext(c)
	if !ok {
		c.Error(apperror.NewPermissionDenied("ownerID not found in context"))
		return
	}

	var item casestudy.MediaItem
	if strings.HasPrefix(c.ContentType(), "multipart/") {
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

		out, err := h.uploadMediaUC.Execute(c.Request.Context(), mediaUC.UploadMediaInput{
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
		item = out.Item
	} else {
		var req MediaItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.Error(apperror.NewInvalidInput("invalid request data", err))
			return
		}
		item = casestudy.MediaItem{
			ID:      uuid.NewString(),
			Type:    casestudy.MediaType(req.Type),
			URL:     req.URL,
			Caption: req.Caption,
		}
		if item.Type == "" {
			item.Type = casestudy.InferMediaType(req.URL)
		}
	}

	h.apply(c, func(s *editor.Session) (bool, error) {
		return s.AddMediaItem(item)
	})
}

func (h *EditorHandler) RemoveMediaItem(c *gin.Context) {
	itemID := c.Param("itemID")
	h.apply(c, func(s *editor.Session) (bool, error) {
		return true, s.RemoveMediaItem(itemID)
	})
}

func (h *EditorHandler) apply(c *gin.Context, fn func(s *editor.Session) (bool, error)) {
	ref, ok := sessionRef(c)
	if !ok {
		return
	}
	applied := false
	s, err := h.editorUseCase.Apply(c.Request.Context(), ref, func(s *editor.Session) error {
		var err error
		applied, err = fn(s)
		return err
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, EditorSessionDTO{Session: s, Applied: applied})
}

func sessionRef(c *gin.Context) (editorUC.SessionRef, bool) {
	ownerID, ok := GetOwnerIDFromGinContext(c)
	if !ok {
		c.Error(apperror.NewPermissionDenied("ownerID not found in context"))
		return editorUC.SessionRef{}, false
	}
	sessionID, ok := uuidParam(c, "sessionID")
	if !ok {
		return editorUC.SessionRef{}, false
	}
	return editorUC.SessionRef{OwnerID: ownerID, SessionID: sessionID}, true
}

func outcomeParam(c *gin.Context) (uuid.UUID, bool) {
	if c.Param("entryID") == pendingOutcome {
		return uuid.Nil, true
	}
	return uuidParam(c, "entryID")
}

func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.Error(apperror.NewInvalidInput("invalid "+name, err))
		return uuid.Nil, false
	}
	return id, true
}
