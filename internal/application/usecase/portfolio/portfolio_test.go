package portfolio

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/khoahotran/projectshelf/internal/domain/casestudy"
	"github.com/khoahotran/projectshelf/internal/domain/profile"
	"github.com/khoahotran/projectshelf/internal/domain/theme"
	"github.com/khoahotran/projectshelf/internal/testutil/memstore"
	"github.com/khoahotran/projectshelf/pkg/apperror"
	"github.com/khoahotran/projectshelf/pkg/logger"
)

type PortfolioSuite struct {
	suite.Suite
	ctx   context.Context
	st    *memstore.Store
	ada   *profile.Profile
	grace *profile.Profile
	cs    *casestudy.CaseStudy
	view  *LoadCaseStudyViewUseCase
}

func TestPortfolioSuite(t *testing.T) {
	suite.Run(t, new(PortfolioSuite))
}

func (s *PortfolioSuite) SetupTest() {
	s.ctx = context.Background()
	s.st = memstore.New()

	s.ada = &profile.Profile{ID: uuid.New(), Username: "ada", FullName: "Ada Lovelace", Theme: theme.Modern}
	s.grace = &profile.Profile{ID: uuid.New(), Username: "grace", FullName: "Grace Hopper"}
	s.Require().NoError(s.st.Profiles().Save(s.ctx, s.ada))
	s.Require().NoError(s.st.Profiles().Save(s.ctx, s.grace))

	s.cs = s.caseStudy(s.ada.ID, "Checkout", 0, true)
	s.Require().NoError(s.st.Timelines().Upsert(s.ctx, s.cs.ID, []casestudy.TimelineEntry{
		{ID: uuid.New(), Title: "Launch", Description: "d", Date: "2024-03-01", OrderIndex: 0},
		{ID: uuid.New(), Title: "Kickoff", Description: "d", Date: "2024-01-05", OrderIndex: 1},
	}))

	s.view = NewLoadCaseStudyViewUseCase(s.st.Profiles(), s.st.CaseStudies(), s.st.Timelines(), s.st.Outcomes(),
		casestudy.OrderByDate, logger.NewNopLogger())
}

func (s *PortfolioSuite) caseStudy(owner uuid.UUID, title string, order int, featured bool) *casestudy.CaseStudy {
	cs := &casestudy.CaseStudy{
		ID: uuid.New(), OwnerID: owner, Title: title, Description: title + " description",
		OrderIndex: order, Featured: featured, CreatedAt: time.Now(),
	}
	s.Require().NoError(s.st.CaseStudies().Save(s.ctx, cs))
	return cs
}

func (s *PortfolioSuite) TestLoadCaseStudyView() {
	v, err := s.view.Execute(s.ctx, LoadCaseStudyViewInput{Username: "ADA", CaseStudyID: s.cs.ID})
	s.Require().NoError(err)

	s.Equal("ada", v.Profile.Username)
	s.Equal("Checkout", v.Aggregate.CaseStudy.Title)
	s.Require().Len(v.Aggregate.Timelines, 2)
	s.Equal("Kickoff", v.Aggregate.Timelines[0].Title, "ordered by date")
	s.NotNil(v.Aggregate.Outcomes)
	s.Empty(v.Aggregate.Outcomes)
	s.NotNil(v.Aggregate.CaseStudy.Images)
}

func (s *PortfolioSuite) TestForeignCaseStudyIsNotFound() {
	_, err := s.view.Execute(s.ctx, LoadCaseStudyViewInput{Username: "grace", CaseStudyID: s.cs.ID})
	s.True(apperror.IsNotFound(err))
}

func (s *PortfolioSuite) TestUnknownUserIsNotFound() {
	_, err := s.view.Execute(s.ctx, LoadCaseStudyViewInput{Username: "nobody", CaseStudyID: s.cs.ID})
	s.True(apperror.IsNotFound(err))
}

func (s *PortfolioSuite) TestStoreFailureCollapsesToNotFound() {
	s.st.Fail("outcomes.ListByCaseStudy", nil)

	_, err := s.view.Execute(s.ctx, LoadCaseStudyViewInput{Username: "ada", CaseStudyID: s.cs.ID})

	s.True(apperror.IsNotFound(err))
	s.NotErrorIs(err, memstore.ErrInjected)
}

func (s *PortfolioSuite) TestLoadPortfolioViewOrdersAndSplits() {
	second := s.caseStudy(s.ada.ID, "Search", 2, false)
	first := s.caseStudy(s.ada.ID, "Onboarding", 1, false)

	v, err := NewLoadPortfolioViewUseCase(s.st.Profiles(), s.st.CaseStudies(), logger.NewNopLogger()).
		Execute(s.ctx, LoadPortfolioViewInput{Username: "ada"})
	s.Require().NoError(err)

	s.Require().Len(v.CaseStudies, 3)
	s.Equal([]uuid.UUID{s.cs.ID, first.ID, second.ID},
		[]uuid.UUID{v.CaseStudies[0].ID, v.CaseStudies[1].ID, v.CaseStudies[2].ID})
	s.Len(v.Featured(), 1)
	s.Equal([]*casestudy.CaseStudy{v.CaseStudies[1], v.CaseStudies[2]}, v.Regular())
}

func (s *PortfolioSuite) TestLoadPortfolioViewEmpty() {
	v, err := NewLoadPortfolioViewUseCase(s.st.Profiles(), s.st.CaseStudies(), logger.NewNopLogger()).
		Execute(s.ctx, LoadPortfolioViewInput{Username: "grace"})
	s.Require().NoError(err)
	s.NotNil(v.CaseStudies)
	s.Empty(v.CaseStudies)
	s.Empty(v.Featured())
}

func (s *PortfolioSuite) TestLoadPortfolioViewStoreFailureIsNotFound() {
	s.st.Fail("case_studies.ListByOwner", nil)

	_, err := NewLoadPortfolioViewUseCase(s.st.Profiles(), s.st.CaseStudies(), logger.NewNopLogger()).
		Execute(s.ctx, LoadPortfolioViewInput{Username: "ada"})

	s.True(apperror.IsNotFound(err))
	s.NotErrorIs(err, memstore.ErrInjected)
	s.Equal(404, apperror.ToHTTPStatus(err))
}

func TestPortfolioFeed(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	p := &profile.Profile{ID: uuid.New(), Username: "ada", FullName: "Ada Lovelace", Bio: "Designer"}
	require.NoError(t, st.Profiles().Save(ctx, p))
	cs := &casestudy.CaseStudy{ID: uuid.New(), OwnerID: p.ID, Title: "Checkout", Description: "Faster checkout", CoverImage: "https://cdn.test/c.jpg"}
	require.NoError(t, st.CaseStudies().Save(ctx, cs))

	uc := NewPortfolioFeedUseCase(NewLoadPortfolioViewUseCase(st.Profiles(), st.CaseStudies(), logger.NewNopLogger()), "https://shelf.test/", logger.NewNopLogger())
	feed, err := uc.Execute(ctx, "ada")
	require.NoError(t, err)

	assert.Equal(t, "Ada Lovelace - Case Studies", feed.Title)
	assert.Equal(t, "https://shelf.test/ada", feed.Link.Href)
	require.Len(t, feed.Items, 1)
	assert.Equal(t, "https://shelf.test/ada/"+cs.ID.String(), feed.Items[0].Link.Href)
	assert.NotNil(t, feed.Items[0].Enclosure)

	rss, err := feed.ToRss()
	require.NoError(t, err)
	assert.Contains(t, rss, "<title>Checkout</title>")

	_, err = uc.Execute(ctx, "nobody")
	assert.True(t, apperror.IsNotFound(err))
}
