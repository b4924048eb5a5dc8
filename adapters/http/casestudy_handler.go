package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	casestudyUC "github.com/khoahotran/projectshelf/internal/application/usecase/casestudy"
	"github.com/khoahotran/projectshelf/pkg/apperror"
	"github.com/khoahotran/projectshelf/pkg/logger"
)

type CaseStudyHandler struct {
	saveUseCase     *casestudyUC.SaveCaseStudyUseCase
	listUseCase     *casestudyUC.ListCaseStudiesUseCase
	getUseCase      *casestudyUC.GetCaseStudyUseCase
	deleteUseCase   *casestudyUC.DeleteCaseStudyUseCase
	featuredUseCase *casestudyUC.SetFeaturedUseCase
	reorderUseCase  *casestudyUC.ReorderCaseStudiesUseCase
	logger          logger.Logger
}

func NewCaseStudyHandler(
	saveUC *casestudyUC.SaveCaseStudyUseCase,
	listUC *casestudyUC.ListCaseStudiesUseCase,
	getUC *casestudyUC.GetCaseStudyUseCase,
	deleteUC *casestudyUC.DeleteCaseStudyUseCase,
	featuredUC *casestudyUC.SetFeaturedUseCase,
	reorderUC *casestudyUC.ReorderCaseStudiesUseCase,
	log logger.Logger,
) *CaseStudyHandler {
	return &CaseStudyHandler{
		saveUseCase:     saveUC,
		listUseCase:     listUC,
		getUseCase:      getUC,
		deleteUseCase:   deleteUC,
		featuredUseCase: featuredUC,
		reorderUseCase:  reorderUC,
		logger:          log,
	}
}

func (h *CaseStudyHandler) ListCaseStudies(c *gin.Context) {
	ownerID, ok := GetOwnerIDFromGinContext(c)
	if !ok {
		c.Error(apperror.NewPermissionDenied("ownerID not found in context"))
		return
	}

	output, err := h.listUseCase.Execute(c.Request.Context(), casestudyUC.ListCaseStudiesInput{OwnerID: ownerID})
	if err != nil {
		c.Error(err)
		return
	}
	dtos := make([]CaseStudySummaryDTO, len(output.CaseStudies))
	for i, cs := range output.CaseStudies {
		dtos[i] = ToCaseStudySummaryDTO(cs)
	}
	c.JSON(http.StatusOK, dtos)
}

func (h *CaseStudyHandler) GetCaseStudy(c *gin.Context) {
	ownerID, ok := GetOwnerIDFromGinContext(c)
	if !ok {
		c.Error(apperror.NewPermissionDenied("ownerID not found in context"))
		return
	}
	caseStudyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.Error(apperror.NewInvalidInput("invalid case study ID", err))
		return
	}

	output, err := h.getUseCase.Execute(c.Request.Context(), casestudyUC.GetCaseStudyInput{OwnerID: ownerID, CaseStudyID: caseStudyID})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, output.Aggregate)
}

func (h *CaseStudyHandler) CreateCaseStudy(c *gin.Context) {
	h.save(c, uuid.Nil)
}

func (h *CaseStudyHandler) UpdateCaseStudy(c *gin.Context) {
	caseStudyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.Error(apperror.NewInvalidInput("invalid case study ID", err))
		return
	}
	h.save(c, caseStudyID)
}

func (h *CaseStudyHandler) save(c *gin.Context, caseStudyID uuid.UUID) {
	ownerID, ok := GetOwnerIDFromGinContext(c)
	if !ok {
		c.Error(apperror.NewPermissionDenied("ownerID not found in context"))
		return
	}
	var req SaveCaseStudyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid request data", err))
		return
	}

	output, err := h.saveUseCase.Execute(c.Request.Context(), casestudyUC.SaveCaseStudyInput{
		OwnerID:          ownerID,
		CaseStudyID:      caseStudyID,
		Aggregate:        req.Aggregate,
		RemovedTimelines: req.RemovedTimelines,
		RemovedOutcomes:  req.RemovedOutcomes,
	})
	if err != nil {
		c.Error(err)
		return
	}

	status := http.StatusOK
	if output.Created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"case_study_id": output.CaseStudyID, "created": output.Created})
}

func (h *CaseStudyHandler) DeleteCaseStudy(c *gin.Context) {
	ownerID, ok := GetOwnerIDFromGinContext(c)
	if !ok {
		c.Error(apperror.NewPermissionDenied("ownerID not found in context"))
		return
	}
	caseStudyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.Error(apperror.NewInvalidInput("invalid case study ID", err))
		return
	}

	input := casestudyUC.DeleteCaseStudyInput{OwnerID: ownerID, CaseStudyID: caseStudyID}
	if err := h.deleteUseCase.Execute(c.Request.Context(), input); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CaseStudyHandler) SetFeatured(c *gin.Context) {
	ownerID, ok := GetOwnerIDFromGinContext(c)
	if !ok {
		c.Error(apperror.NewPermissionDenied("ownerID not found in context"))
		return
	}
	caseStudyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.Error(apperror.NewInvalidInput("invalid case study ID", err))
		return
	}
	var req SetFeaturedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid request data", err))
		return
	}

	input := casestudyUC.SetFeaturedInput{OwnerID: ownerID, CaseStudyID: caseStudyID, Featured: *req.Featured}
	if err := h.featuredUseCase.Execute(c.Request.Context(), input); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CaseStudyHandler) Reorder(c *gin.Context) {
	ownerID, ok := GetOwnerIDFromGinContext(c)
	if !ok {
		c.Error(apperror.NewPermissionDenied("ownerID not found in context"))
		return
	}
	var req ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid request data", err))
		return
	}

	if err := h.reorderUseCase.Execute(c.Request.Context(), casestudyUC.ReorderCaseStudiesInput{OwnerID: ownerID, IDs: req.IDs}); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}
