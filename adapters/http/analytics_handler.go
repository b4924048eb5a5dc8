package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	analyticsUC "github.com/khoahotran/projectshelf/internal/application/usecase/analytics"
	"github.com/khoahotran/projectshelf/internal/application/service"
	"github.com/khoahotran/projectshelf/internal/domain/analytics"
	"github.com/khoahotran/projectshelf/pkg/apperror"
	"github.com/khoahotran/projectshelf/pkg/logger"
)

const dateLayout = "2006-01-02"

type AnalyticsHandler struct {
	trackUseCase     *analyticsUC.TrackEventUseCase
	reportUseCase    *analyticsUC.GetReportUseCase
	dashboardUseCase *analyticsUC.GetDashboardStatsUseCase
	visitors         service.VisitorIdentity
	logger           logger.Logger
}

func NewAnalyticsHandler(
	trackUC *analyticsUC.TrackEventUseCase,
	reportUC *analyticsUC.GetReportUseCase,
	dashboardUC *analyticsUC.GetDashboardStatsUseCase,
	visitors service.VisitorIdentity,
	log logger.Logger,
) *AnalyticsHandler {
	return &AnalyticsHandler{
		trackUseCase:     trackUC,
		reportUseCase:    reportUC,
		dashboardUseCase: dashboardUC,
		visitors:         visitors,
		logger:           log,
	}
}

// Track accepts events reported by public pages. The visitor id comes from the cookie, never
// from the body.
func (h *AnalyticsHandler) Track(c *gin.Context) {
	var req TrackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid request data", err))
		return
	}

	err := h.trackUseCase.Execute(c.Request.Context(), analyticsUC.TrackEventInput{
		Username:  req.Username,
		EventType: analytics.EventType(req.EventType),
		PagePath:  req.PagePath,
		VisitorID: h.visitors.GetOrCreateVisitorID(c.Writer, c.Request),
		Metadata:  req.Metadata,
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusAccepted)
}

func (h *AnalyticsHandler) Report(c *gin.Context) {
	ownerID, ok := GetOwnerIDFromGinContext(c)
	if !ok {
		c.Error(apperror.NewPermissionDenied("ownerID not found in context"))
		return
	}

	input := analyticsUC.GetReportInput{OwnerID: ownerID}
	var err error
	if input.Start, err = parseDay(c.Query("start")); err != nil {
		c.Error(apperror.NewInvalidInput("start must be YYYY-MM-DD", err))
		return
	}
	if input.End, err = parseDay(c.Query("end")); err != nil {
		c.Error(apperror.NewInvalidInput("end must be YYYY-MM-DD", err))
		return
	}

	report, err := h.reportUseCase.Execute(c.Request.Context(), input)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *AnalyticsHandler) DashboardStats(c *gin.Context) {
	ownerID, ok := GetOwnerIDFromGinContext(c)
	if !ok {
		c.Error(apperror.NewPermissionDenied("ownerID not found in context"))
		return
	}
	stats, err := h.dashboardUseCase.Execute(c.Request.Context(), ownerID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func parseDay(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(dateLayout, s)
}
