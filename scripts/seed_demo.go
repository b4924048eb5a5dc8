package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"

	"github.com/khoahotran/projectshelf/adapters/persistence"
	casestudyUC "github.com/khoahotran/projectshelf/internal/application/usecase/casestudy"
	"github.com/khoahotran/projectshelf/internal/config"
	"github.com/khoahotran/projectshelf/internal/domain/casestudy"
	"github.com/khoahotran/projectshelf/internal/domain/profile"
	"github.com/khoahotran/projectshelf/internal/domain/theme"
	"github.com/khoahotran/projectshelf/internal/domain/user"
	"github.com/khoahotran/projectshelf/pkg/apperror"
	"github.com/khoahotran/projectshelf/pkg/auth"
	"github.com/khoahotran/projectshelf/pkg/logger"
)

func main() {
	migrations := flag.String("migrations", "file://migrations", "migration source; empty skips migrating")
	flag.Parse()

	fmt.Println("seeding demo portfolio...")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("cannot load config: %v", err)
	}
	appLogger := logger.NewZapLogger(cfg.App.Env, cfg.App.LogLevel)
	ctx := context.Background()

	if *migrations != "" {
		m, err := migrate.New(*migrations, cfg.DB.DSN)
		if err != nil {
			log.Fatalf("cannot open migrations: %v", err)
		}
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatalf("cannot run migrations: %v", err)
		}
	}

	pool, err := persistence.NewPostgresPool(cfg, appLogger)
	if err != nil {
		log.Fatalf("cannot connect DB: %v", err)
	}
	defer pool.Close()

	userRepo := persistence.NewPostgresUserRepo(pool)
	profileRepo := persistence.NewPostgresProfileRepo(pool, appLogger)
	caseStudyRepo := persistence.NewPostgresCaseStudyRepo(pool, appLogger)
	saveUC := casestudyUC.NewSaveCaseStudyUseCase(caseStudyRepo,
		persistence.NewPostgresTimelineRepo(pool), persistence.NewPostgresOutcomeRepo(pool), appLogger)

	email := envOr("DEMO_EMAIL", "demo@projectshelf.dev")
	password := envOr("DEMO_PASSWORD", "demo-password")
	username := envOr("DEMO_USERNAME", "demo")

	u, err := userRepo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		fmt.Printf("user '%s' already exists, skipping\n", email)
		return
	case !errors.Is(err, apperror.ErrNotFound):
		log.Fatalf("cannot look up user: %v", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		log.Fatalf("cannot hash password: %v", err)
	}
	now := time.Now().UTC()
	u = &user.User{ID: uuid.New(), Email: email, PasswordHash: hash, CreatedAt: now}
	if err := userRepo.Save(ctx, u); err != nil {
		log.Fatalf("cannot add user: %v", err)
	}

	p := &profile.Profile{
		ID:        u.ID,
		Username:  username,
		FullName:  "Demo Designer",
		Bio:       "Product designer working on commerce and data tools.",
		Location:  "Remote",
		Theme:     theme.Modern,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := profileRepo.Save(ctx, p); err != nil {
		log.Fatalf("cannot add profile: %v", err)
	}

	out, err := saveUC.Execute(ctx, casestudyUC.SaveCaseStudyInput{
		OwnerID: u.ID,
		Aggregate: casestudy.Aggregate{
			CaseStudy: casestudy.CaseStudy{
				Title:        "Checkout Redesign",
				Description:  "Cutting checkout abandonment for a mid-size retailer.",
				Overview:     "A three month engagement to rebuild the mobile checkout.",
				Challenge:    "Half of mobile shoppers left at the payment step.",
				Solution:     "A single page checkout with saved wallets and inline validation.",
				Outcome:      "Conversion rose and support tickets about payments dropped.",
				Tools:        []string{"Figma", "Maze"},
				Technologies: []string{"React", "Go"},
				Duration:     "3 months",
				Role:         "Lead Designer",
				TeamSize:     4,
				Client:       "Acme Retail",
				Industry:     "E-commerce",
			},
			Timelines: []casestudy.TimelineEntry{
				{Title: "Research", Description: "Interviews and funnel analysis.", Date: "2024-01-08"},
				{Title: "Prototype", Description: "Clickable prototype tested with 12 users.", Date: "2024-02-05", OrderIndex: 1},
				{Title: "Launch", Description: "Rolled out to all mobile traffic.", Date: "2024-03-25", OrderIndex: 2},
			},
			Outcomes: []casestudy.Outcome{
				{Title: "Higher conversion", Description: "Measured over the first month.", Metrics: []string{"+18% mobile conversion"}},
			},
		},
	})
	if err != nil {
		log.Fatalf("cannot add case study: %v", err)
	}

	if err := caseStudyRepo.SetFeatured(ctx, out.CaseStudyID, u.ID, true); err != nil {
		log.Fatalf("cannot feature case study: %v", err)
	}

	fmt.Printf("seeded '%s' (/%s) with case study %s\n", email, username, out.CaseStudyID)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
