package http

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	analyticsUC "github.com/khoahotran/projectshelf/internal/application/usecase/analytics"
	authUC "github.com/khoahotran/projectshelf/internal/application/usecase/auth"
	casestudyUC "github.com/khoahotran/projectshelf/internal/application/usecase/casestudy"
	editorUC "github.com/khoahotran/projectshelf/internal/application/usecase/editor"
	mediaUC "github.com/khoahotran/projectshelf/internal/application/usecase/media"
	portfolioUC "github.com/khoahotran/projectshelf/internal/application/usecase/portfolio"
	profileUC "github.com/khoahotran/projectshelf/internal/application/usecase/profile"
	"github.com/khoahotran/projectshelf/internal/domain/analytics"
	"github.com/khoahotran/projectshelf/internal/domain/casestudy"
	"github.com/khoahotran/projectshelf/internal/testutil/memstore"
	"github.com/khoahotran/projectshelf/pkg/auth"
	"github.com/khoahotran/projectshelf/pkg/logger"
	"github.com/khoahotran/projectshelf/pkg/metrics"
)

type RouterSuite struct {
	suite.Suite
	st     *memstore.Store
	router *gin.Engine
	token  string
}

func TestRouterSuite(t *testing.T) {
	gin.SetMode(gin.TestMode)
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	s.st = memstore.New()
	s.router = s.newRouter(NewRateLimiter(100, 100))
	s.token = s.signUp("ada@example.com", "ada")
}

func (s *RouterSuite) newRouter(limiter *RateLimiter) *gin.Engine {
	log := logger.NewNopLogger()
	jwt := auth.NewJWTService("test-secret", time.Hour)
	denylist := memstore.NewDenylist()
	hub := memstore.NewHub()
	blobs := memstore.NewBlobs()
	m := metrics.New("test")
	visitors := NewCookieVisitorIdentity(false)

	getCase := casestudyUC.NewGetCaseStudyUseCase(s.st.CaseStudies(), s.st.Timelines(), s.st.Outcomes(), casestudy.OrderByIndex)
	saveCase := casestudyUC.NewSaveCaseStudyUseCase(s.st.CaseStudies(), s.st.Timelines(), s.st.Outcomes(), log)
	upload := mediaUC.NewUploadMediaUseCase(s.st.Media(), blobs, nil, log)
	track := analyticsUC.NewTrackEventUseCase(s.st.Profiles(), analyticsUC.NewDirectSink(analyticsUC.NewIngestEventUseCase(s.st.Analytics(), m)), m, log)
	loadPortfolio := portfolioUC.NewLoadPortfolioViewUseCase(s.st.Profiles(), s.st.CaseStudies(), logger.NewNopLogger())

	h := Handlers{
		Auth: NewAuthHandler(
			authUC.NewSignUpUseCase(s.st.Users(), s.st.Profiles(), jwt, hub, log),
			authUC.NewSignInUseCase(s.st.Users(), jwt, hub, log),
			authUC.NewSignOutUseCase(denylist, hub, log),
			authUC.NewCurrentUserUseCase(s.st.Users(), s.st.Profiles()),
			authUC.NewSessionEventsUseCase(hub),
			log,
		),
		Profile: NewProfileHandler(profileUC.NewProfileUseCase(s.st.Profiles(), blobs, log), log),
		CaseStudy: NewCaseStudyHandler(
			saveCase,
			casestudyUC.NewListCaseStudiesUseCase(s.st.CaseStudies()),
			getCase,
			casestudyUC.NewDeleteCaseStudyUseCase(s.st.CaseStudies()),
			casestudyUC.NewSetFeaturedUseCase(s.st.CaseStudies()),
			casestudyUC.NewReorderCaseStudiesUseCase(s.st.CaseStudies()),
			log,
		),
		Editor: NewEditorHandler(editorUC.NewEditorUseCase(s.st.EditorSessions(), getCase, saveCase, m, log), upload, log),
		Media: NewMediaHandler(
			upload,
			mediaUC.NewListMediaUseCase(s.st.Media()),
			mediaUC.NewDeleteMediaUseCase(s.st.Media(), blobs, log),
			log,
		),
		Analytics: NewAnalyticsHandler(
			track,
			analyticsUC.NewGetReportUseCase(s.st.Analytics(), 30, 366),
			analyticsUC.NewGetDashboardStatsUseCase(s.st.Analytics(), s.st.CaseStudies()),
			visitors,
			log,
		),
		Public: NewPublicHandler(
			loadPortfolio,
			portfolioUC.NewLoadCaseStudyViewUseCase(s.st.Profiles(), s.st.CaseStudies(), s.st.Timelines(), s.st.Outcomes(), casestudy.OrderByDate, log),
			portfolioUC.NewPortfolioFeedUseCase(loadPortfolio, "https://shelf.example.com", log),
			track,
			visitors,
			m,
			log,
		),
	}

	return NewRouter(h, RouterConfig{
		JWT:          jwt,
		Revoker:      denylist,
		Metrics:      m,
		TrackLimiter: limiter,
		Logger:       log,
	})
}

func (s *RouterSuite) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *RouterSuite) decode(w *httptest.ResponseRecorder, v any) {
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func (s *RouterSuite) signUp(email, username string) string {
	w := s.do(http.MethodPost, "/api/admin/auth/signup", "", SignUpRequest{
		Email: email, Password: "correct-horse", Username: username, FullName: "Ada Lovelace",
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var resp AuthResponse
	s.decode(w, &resp)
	s.Require().NotEmpty(resp.AccessToken)
	s.Require().NotNil(resp.Profile)
	s.Equal(username, resp.Profile.Username)
	return resp.AccessToken
}

// publish drives an editor create session to a stored case study and returns its id.
func (s *RouterSuite) publish(title string) string {
	w := s.do(http.MethodPost, "/api/admin/editor/sessions", s.token, nil)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var opened EditorSessionDTO
	s.decode(w, &opened)
	base := "/api/admin/editor/sessions/" + opened.ID.String()

	for field, v := range map[string]any{
		"title": title, "description": "A faster checkout", "overview": "o", "challenge": "c",
		"solution": "s", "outcome": "r", "duration": "3 months", "role": "Lead", "team_size": 4,
	} {
		w = s.do(http.MethodPatch, base+"/fields", s.token, EditFieldRequest{Field: field, Value: v})
		s.Require().Equal(http.StatusOK, w.Code, "%s: %s", field, w.Body.String())
	}
	s.Require().Equal(http.StatusOK, s.do(http.MethodPost, base+"/tools", s.token, ValueRequest{Value: "Figma"}).Code)
	s.Require().Equal(http.StatusOK, s.do(http.MethodPost, base+"/technologies", s.token, ValueRequest{Value: "Go"}).Code)

	w = s.do(http.MethodPatch, base+"/timelines/draft", s.token, map[string]string{
		"title": "Kickoff", "description": "Scoping", "date": "2024-01-05",
	})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	w = s.do(http.MethodPost, base+"/timelines", s.token, nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodPost, base+"/submit", s.token, nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var submitted struct {
		CaseStudyID string `json:"case_study_id"`
		Mode        string `json:"mode"`
	}
	s.decode(w, &submitted)
	s.Equal("create", submitted.Mode)
	return submitted.CaseStudyID
}

func (s *RouterSuite) TestHealth() {
	w := s.do(http.MethodGet, "/health", "", nil)
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), "UP")
}

func (s *RouterSuite) TestPrivateRoutesRequireToken() {
	s.Equal(http.StatusUnauthorized, s.do(http.MethodGet, "/api/admin/auth/me", "", nil).Code)
	s.Equal(http.StatusUnauthorized, s.do(http.MethodGet, "/api/admin/case-studies", "not-a-token", nil).Code)
}

func (s *RouterSuite) TestSignUpMeAndSignOut() {
	w := s.do(http.MethodGet, "/api/admin/auth/me", s.token, nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var me AuthResponse
	s.decode(w, &me)
	s.Equal("ada@example.com", me.User.Email)
	s.Empty(me.AccessToken)

	s.Equal(http.StatusNoContent, s.do(http.MethodPost, "/api/admin/auth/signout", s.token, nil).Code)
	s.Equal(http.StatusUnauthorized, s.do(http.MethodGet, "/api/admin/auth/me", s.token, nil).Code)

	w = s.do(http.MethodPost, "/api/admin/auth/signin", "", SignInRequest{Email: "ada@example.com", Password: "correct-horse"})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var signedIn AuthResponse
	s.decode(w, &signedIn)
	s.Equal(http.StatusOK, s.do(http.MethodGet, "/api/admin/auth/me", signedIn.AccessToken, nil).Code)
}

func (s *RouterSuite) TestSignUpRejectsTakenUsername() {
	w := s.do(http.MethodPost, "/api/admin/auth/signup", "", SignUpRequest{
		Email: "other@example.com", Password: "correct-horse", Username: "ada", FullName: "Other Ada",
	})
	s.Equal(http.StatusConflict, w.Code, w.Body.String())
}

func (s *RouterSuite) TestSignInWrongPassword() {
	w := s.do(http.MethodPost, "/api/admin/auth/signin", "", SignInRequest{Email: "ada@example.com", Password: "nope-nope"})
	s.Equal(http.StatusUnauthorized, w.Code, w.Body.String())
}

func (s *RouterSuite) TestThemes() {
	w := s.do(http.MethodGet, "/api/themes", "", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var themes []ThemeDTO
	s.decode(w, &themes)
	s.Len(themes, 4)
}

func (s *RouterSuite) TestUpdateTheme() {
	w := s.do(http.MethodPut, "/api/admin/profile/theme", s.token, UpdateThemeRequest{Theme: "minimal"})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var p ProfileDTO
	s.decode(w, &p)
	s.Equal("minimal", p.Theme)

	w = s.do(http.MethodPut, "/api/admin/profile/theme", s.token, UpdateThemeRequest{Theme: "neon"})
	s.Equal(http.StatusUnprocessableEntity, w.Code, w.Body.String())
}

func (s *RouterSuite) TestEditorSubmitValidationFailure() {
	w := s.do(http.MethodPost, "/api/admin/editor/sessions", s.token, nil)
	s.Require().Equal(http.StatusCreated, w.Code)
	var opened EditorSessionDTO
	s.decode(w, &opened)

	w = s.do(http.MethodPost, "/api/admin/editor/sessions/"+opened.ID.String()+"/submit", s.token, nil)
	s.Require().Equal(http.StatusUnprocessableEntity, w.Code, w.Body.String())
	var body struct {
		Session struct {
			FieldErrors map[string]string `json:"field_errors"`
			State       string            `json:"state"`
		} `json:"session"`
	}
	s.decode(w, &body)
	s.Contains(body.Session.FieldErrors, "title")
	s.Equal("failed", body.Session.State)
}

func (s *RouterSuite) TestEditorDuplicateToolIsNotApplied() {
	w := s.do(http.MethodPost, "/api/admin/editor/sessions", s.token, nil)
	var opened EditorSessionDTO
	s.decode(w, &opened)
	base := "/api/admin/editor/sessions/" + opened.ID.String()

	s.Require().Equal(http.StatusOK, s.do(http.MethodPost, base+"/tools", s.token, ValueRequest{Value: "Figma"}).Code)
	w = s.do(http.MethodPost, base+"/tools", s.token, ValueRequest{Value: "Figma"})
	s.Require().Equal(http.StatusOK, w.Code)
	var resp struct {
		Applied bool `json:"applied"`
		Draft   struct {
			CaseStudy struct {
				Tools []string `json:"tools"`
			} `json:"case_study"`
		} `json:"draft"`
	}
	s.decode(w, &resp)
	s.False(resp.Applied)
	s.Equal([]string{"Figma"}, resp.Draft.CaseStudy.Tools)
}

func (s *RouterSuite) TestEditorSessionIsOwnerScoped() {
	w := s.do(http.MethodPost, "/api/admin/editor/sessions", s.token, nil)
	var opened EditorSessionDTO
	s.decode(w, &opened)

	other := s.signUp("grace@example.com", "grace")
	w = s.do(http.MethodGet, "/api/admin/editor/sessions/"+opened.ID.String(), other, nil)
	s.Equal(http.StatusNotFound, w.Code, w.Body.String())
}

func (s *RouterSuite) TestCaseStudyManagement() {
	first := s.publish("Checkout")
	second := s.publish("Search")

	w := s.do(http.MethodGet, "/api/admin/case-studies", s.token, nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var list []CaseStudySummaryDTO
	s.decode(w, &list)
	s.Require().Len(list, 2)

	featured := true
	w = s.do(http.MethodPut, "/api/admin/case-studies/"+second+"/featured", s.token, SetFeaturedRequest{Featured: &featured})
	s.Require().Equal(http.StatusNoContent, w.Code, w.Body.String())

	w = s.do(http.MethodPut, "/api/admin/case-studies/order", s.token, ReorderRequest{
		IDs: []uuid.UUID{uuid.MustParse(second), uuid.MustParse(first)},
	})
	s.Require().Equal(http.StatusNoContent, w.Code, w.Body.String())

	w = s.do(http.MethodGet, "/api/admin/case-studies", s.token, nil)
	s.decode(w, &list)
	s.Require().Len(list, 2)
	s.Equal(second, list[0].ID)
	s.True(list[0].Featured)

	w = s.do(http.MethodGet, "/api/admin/case-studies/"+first, s.token, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var agg casestudy.Aggregate
	s.decode(w, &agg)
	s.Equal("Checkout", agg.CaseStudy.Title)
	s.Len(agg.Timelines, 1)

	s.Equal(http.StatusNoContent, s.do(http.MethodDelete, "/api/admin/case-studies/"+first, s.token, nil).Code)
	s.Equal(http.StatusNotFound, s.do(http.MethodGet, "/api/admin/case-studies/"+first, s.token, nil).Code)
}

func (s *RouterSuite) TestPublicPortfolioRecordsPageView() {
	id := s.publish("Checkout <Redesign>")

	w := s.do(http.MethodGet, "/ada", "", nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.Contains(w.Header().Get("Content-Type"), "text/html")
	s.Contains(w.Body.String(), "Checkout &lt;Redesign&gt;")
	s.Contains(w.Header().Get("Set-Cookie"), "ps_visitor=")

	w = s.do(http.MethodGet, "/ada/"+id, "", nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.Contains(w.Body.String(), "Kickoff")

	events := s.st.Analytics().Events()
	s.Require().Len(events, 2)
	for _, e := range events {
		s.Equal(analytics.EventPageView, e.EventType)
		s.NotEmpty(e.VisitorID)
	}
	s.Equal("/ada", events[0].PagePath)
	s.Equal("/ada/"+id, events[1].PagePath)
}

func (s *RouterSuite) TestPublicUnknownUserRendersNotFound() {
	w := s.do(http.MethodGet, "/nobody", "", nil)
	s.Equal(http.StatusNotFound, w.Code)
	s.Contains(w.Body.String(), "Not Found")
	s.Empty(s.st.Analytics().Events())

	w = s.do(http.MethodGet, "/ada/not-a-uuid", "", nil)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *RouterSuite) TestPublicStoreFailureIsNotFound() {
	s.publish("Checkout")
	s.st.Fail("case_studies.ListByOwner", nil)

	w := s.do(http.MethodGet, "/ada", "", nil)
	s.Equal(http.StatusNotFound, w.Code)
	s.Contains(w.Body.String(), "Not Found")

	w = s.do(http.MethodGet, "/api/portfolio/ada", "", nil)
	s.Equal(http.StatusNotFound, w.Code)
	s.NotContains(w.Body.String(), "injected")

	w = s.do(http.MethodGet, "/api/portfolio/ada/feed", "", nil)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *RouterSuite) TestPublicJSONAndFeed() {
	s.publish("Checkout")

	w := s.do(http.MethodGet, "/api/portfolio/ada", "", nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.Contains(w.Body.String(), `"path":"/ada"`)
	s.Empty(s.st.Analytics().Events())

	w = s.do(http.MethodGet, "/api/portfolio/nobody", "", nil)
	s.Equal(http.StatusNotFound, w.Code)
	s.Contains(w.Header().Get("Content-Type"), "application/json")

	w = s.do(http.MethodGet, "/api/portfolio/ada/feed", "", nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.Contains(w.Body.String(), "<rss")
	s.Contains(w.Body.String(), "Checkout")
}

func (s *RouterSuite) TestTrackClick() {
	w := s.do(http.MethodPost, "/api/track", "", TrackRequest{
		Username:  "ada",
		EventType: "click",
		PagePath:  "/ada",
		Metadata:  map[string]any{"element": "contact_button"},
	})
	s.Require().Equal(http.StatusAccepted, w.Code, w.Body.String())
	s.Contains(w.Header().Get("Set-Cookie"), "ps_visitor=")

	events := s.st.Analytics().Events()
	s.Require().Len(events, 1)
	s.Equal(analytics.EventClick, events[0].EventType)

	w = s.do(http.MethodPost, "/api/track", "", TrackRequest{Username: "ada", EventType: "hover", PagePath: "/ada"})
	s.Equal(http.StatusBadRequest, w.Code, w.Body.String())

	w = s.do(http.MethodPost, "/api/track", "", TrackRequest{Username: "nobody", EventType: "click", PagePath: "/nobody"})
	s.Equal(http.StatusNotFound, w.Code, w.Body.String())
}

func (s *RouterSuite) TestTrackIsRateLimited() {
	s.router = s.newRouter(NewRateLimiter(0.001, 1))
	body := TrackRequest{Username: "ada", EventType: "page_view", PagePath: "/ada"}

	s.Equal(http.StatusAccepted, s.do(http.MethodPost, "/api/track", "", body).Code)
	s.Equal(http.StatusTooManyRequests, s.do(http.MethodPost, "/api/track", "", body).Code)
	s.Len(s.st.Analytics().Events(), 1)
}

func (s *RouterSuite) TestAnalyticsReport() {
	s.Require().Equal(http.StatusOK, s.do(http.MethodGet, "/ada", "", nil).Code)

	w := s.do(http.MethodGet, "/api/admin/analytics/dashboard", s.token, nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodGet, "/api/admin/analytics/report?start=2024-13-01", s.token, nil)
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/api/admin/analytics/report?start=1000-01-01&end=9999-12-31", s.token, nil)
	s.Equal(http.StatusUnprocessableEntity, w.Code)

	w = s.do(http.MethodGet, "/api/admin/analytics/report", s.token, nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
}

func (s *RouterSuite) TestMediaUploadAndList() {
	var buf bytes.Buffer
	mw := newMultipart(&buf, "shot.png", "image/png", []byte("\x89PNG fake"))
	req := httptest.NewRequest(http.MethodPost, "/api/admin/media", &buf)
	req.Header.Set("Content-Type", mw)
	req.Header.Set("Authorization", "Bearer "+s.token)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var uploaded struct {
		Media MediaDTO `json:"media"`
	}
	s.decode(w, &uploaded)
	s.Equal("image", uploaded.Media.Kind)
	s.True(strings.HasSuffix(uploaded.Media.URL, ".png"))

	w = s.do(http.MethodGet, "/api/admin/media", s.token, nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.Contains(w.Body.String(), uploaded.Media.ID)

	s.Equal(http.StatusNoContent, s.do(http.MethodDelete, "/api/admin/media/"+uploaded.Media.ID, s.token, nil).Code)
}

func (s *RouterSuite) TestMetricsEndpoint() {
	s.do(http.MethodGet, "/health", "", nil)
	w := s.do(http.MethodGet, "/metrics", "", nil)
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), "test_http_requests_total")
}

// newMultipart writes a single "file" part into buf and returns the request content type.
func newMultipart(buf io.Writer, name, contentType string, data []byte) string {
	mw := multipart.NewWriter(buf)
	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+name+`"`)
	h.Set("Content-Type", contentType)
	part, _ := mw.CreatePart(h)
	_, _ = part.Write(data)
	_ = mw.Close()
	return mw.FormDataContentType()
}
