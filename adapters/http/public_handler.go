package http

import (
	"net/http"

	"github.com/a-h/templ"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/khoahotran/projectshelf/adapters/web"
	"github.com/khoahotran/projectshelf/internal/application/render"
	"github.com/khoahotran/projectshelf/internal/application/service"
	analyticsUC "github.com/khoahotran/projectshelf/internal/application/usecase/analytics"
	portfolioUC "github.com/khoahotran/projectshelf/internal/application/usecase/portfolio"
	"github.com/khoahotran/projectshelf/internal/domain/analytics"
	"github.com/khoahotran/projectshelf/internal/domain/profile"
	"github.com/khoahotran/projectshelf/pkg/apperror"
	"github.com/khoahotran/projectshelf/pkg/logger"
)

// PageRecorder counts rendered public pages; *metrics.Metrics implements it.
type PageRecorder interface {
	PageRendered(page, theme string)
}

type PublicHandler struct {
	portfolioUseCase *portfolioUC.LoadPortfolioViewUseCase
	caseStudyUseCase *portfolioUC.LoadCaseStudyViewUseCase
	feedUseCase      *portfolioUC.PortfolioFeedUseCase
	trackUseCase     *analyticsUC.TrackEventUseCase
	visitors         service.VisitorIdentity
	recorder         PageRecorder
	logger           logger.Logger
}

func NewPublicHandler(
	loadPortfolio *portfolioUC.LoadPortfolioViewUseCase,
	loadCaseStudy *portfolioUC.LoadCaseStudyViewUseCase,
	feed *portfolioUC.PortfolioFeedUseCase,
	track *analyticsUC.TrackEventUseCase,
	visitors service.VisitorIdentity,
	recorder PageRecorder,
	log logger.Logger,
) *PublicHandler {
	return &PublicHandler{
		portfolioUseCase: loadPortfolio,
		caseStudyUseCase: loadCaseStudy,
		feedUseCase:      feed,
		trackUseCase:     track,
		visitors:         visitors,
		recorder:         recorder,
		logger:           log,
	}
}

func (h *PublicHandler) PortfolioPage(c *gin.Context) {
	page, p, ok := h.portfolio(c, true)
	if !ok {
		return
	}
	h.trackPageView(c, p, page.Path)
	h.recorder.PageRendered("portfolio", string(page.Style.ID))
	h.html(c, http.StatusOK, web.PortfolioPage(page))
}

func (h *PublicHandler) CaseStudyPage(c *gin.Context) {
	page, p, ok := h.caseStudy(c, true)
	if !ok {
		return
	}
	h.trackPageView(c, p, page.Path)
	h.recorder.PageRendered("case_study", string(page.Style.ID))
	h.html(c, http.StatusOK, web.CaseStudyPage(page))
}

func (h *PublicHandler) PortfolioJSON(c *gin.Context) {
	page, _, ok := h.portfolio(c, false)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *PublicHandler) CaseStudyJSON(c *gin.Context) {
	page, _, ok := h.caseStudy(c, false)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *PublicHandler) Feed(c *gin.Context) {
	feed, err := h.feedUseCase.Execute(c.Request.Context(), c.Param("username"))
	if err != nil {
		c.Error(err)
		return
	}

	c.Header("Content-Type", "application/xml; charset=utf-8")
	if err := feed.WriteRss(c.Writer); err != nil {
		h.logger.Error("Failed to write RSS feed to response", err)
	}
}

// portfolio loads and renders the portfolio page. With asHTML a lookup failure answers with the
// not-found page, otherwise it goes through the error middleware.
func (h *PublicHandler) portfolio(c *gin.Context, asHTML bool) (*render.PortfolioPage, *profile.Profile, bool) {
	view, err := h.portfolioUseCase.Execute(c.Request.Context(), portfolioUC.LoadPortfolioViewInput{Username: c.Param("username")})
	if err != nil {
		h.fail(c, err, asHTML)
		return nil, nil, false
	}
	return render.RenderPortfolio(view.Profile, view.CaseStudies, view.Profile.Style()), view.Profile, true
}

func (h *PublicHandler) caseStudy(c *gin.Context, asHTML bool) (*render.CaseStudyPage, *profile.Profile, bool) {
	caseStudyID, err := uuid.Parse(c.Param("caseStudyID"))
	if err != nil {
		h.fail(c, apperror.NewNotFound("case study", c.Param("caseStudyID")), asHTML)
		return nil, nil, false
	}
	view, err := h.caseStudyUseCase.Execute(c.Request.Context(), portfolioUC.LoadCaseStudyViewInput{
		Username:    c.Param("username"),
		CaseStudyID: caseStudyID,
	})
	if err != nil {
		h.fail(c, err, asHTML)
		return nil, nil, false
	}
	return render.RenderCaseStudy(view.Profile, view.Aggregate, view.Profile.Style()), view.Profile, true
}

func (h *PublicHandler) fail(c *gin.Context, err error, asHTML bool) {
	if !asHTML {
		c.Error(err)
		return
	}
	if !apperror.IsNotFound(err) {
		h.logger.Warn("Public page failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
	}
	h.html(c, http.StatusNotFound, web.NotFoundPage())
}

// trackPageView records the view without failing the page.
func (h *PublicHandler) trackPageView(c *gin.Context, p *profile.Profile, path string) {
	err := h.trackUseCase.Execute(c.Request.Context(), analyticsUC.TrackEventInput{
		OwnerID:   p.ID,
		EventType: analytics.EventPageView,
		PagePath:  path,
		VisitorID: h.visitors.GetOrCreateVisitorID(c.Writer, c.Request),
		Metadata:  map[string]any{"referrer": c.Request.Referer()},
	})
	if err != nil {
		h.logger.Warn("Failed to track page view", zap.String("path", path), zap.Error(err))
	}
}

func (h *PublicHandler) html(c *gin.Context, status int, component templ.Component) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(status)
	if err := component.Render(c.Request.Context(), c.Writer); err != nil {
		h.logger.Error("Failed to render page", err, zap.String("path", c.Request.URL.Path))
	}
}
