package portfolio

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gorilla/feeds"
	"go.uber.org/zap"

	"github.com/khoahotran/projectshelf/pkg/logger"
)

// PortfolioFeedUseCase publishes a portfolio's case studies as an RSS/Atom feed.
type PortfolioFeedUseCase struct {
	loadPortfolio *LoadPortfolioViewUseCase
	baseURL       string
	logger        logger.Logger
}

func NewPortfolioFeedUseCase(load *LoadPortfolioViewUseCase, publicBaseURL string, log logger.Logger) *PortfolioFeedUseCase {
	return &PortfolioFeedUseCase{
		loadPortfolio: load,
		baseURL:       strings.TrimRight(publicBaseURL, "/"),
		logger:        log,
	}
}

func (uc *PortfolioFeedUseCase) Execute(ctx context.Context, username string) (*feeds.Feed, error) {
	view, err := uc.loadPortfolio.Execute(ctx, LoadPortfolioViewInput{Username: username})
	if err != nil {
		return nil, err
	}

	p := view.Profile
	portfolioURL := fmt.Sprintf("%s/%s", uc.baseURL, p.Username)
	feed := &feeds.Feed{
		Title:       fmt.Sprintf("%s - Case Studies", p.DisplayName()),
		Link:        &feeds.Link{Href: portfolioURL},
		Description: p.Bio,
		Author:      &feeds.Author{Name: p.DisplayName()},
		Created:     p.CreatedAt,
		Updated:     time.Now().UTC(),
	}

	items := make([]*feeds.Item, 0, len(view.CaseStudies))
	for _, cs := range view.CaseStudies {
		item := &feeds.Item{
			Id:          cs.ID.String(),
			Title:       cs.Title,
			Link:        &feeds.Link{Href: fmt.Sprintf("%s/%s", portfolioURL, cs.ID)},
			Description: cs.Description,
			Created:     cs.CreatedAt,
			Updated:     cs.UpdatedAt,
		}
		if cs.CoverImage != "" {
			item.Enclosure = &feeds.Enclosure{Url: cs.CoverImage, Type: "image/jpeg", Length: "0"}
		}
		items = append(items, item)
	}
	feed.Items = items

	uc.logger.Debug("Portfolio feed generated", zap.String("username", p.Username), zap.Int("item_count", len(items)))
	return feed, nil
}
