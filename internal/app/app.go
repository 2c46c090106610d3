package app

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/soundjury/soundjury/internal/config"
	"github.com/soundjury/soundjury/internal/db"
	"github.com/soundjury/soundjury/internal/repository"
	"github.com/soundjury/soundjury/internal/service"
	"github.com/soundjury/soundjury/internal/storage"
)

type App struct {
	Cfg               *config.Config
	DB                *sqlx.DB
	AuthService       *service.AuthService
	QuotaService      *service.QuotaService
	SubmissionService *service.SubmissionService
	RatingService     *service.RatingService
	FeedService       *service.FeedService
}

func New(cfg *config.Config) (*App, error) {
	// Initialize database
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %v", err)
	}

	// Run database migrations
	err = db.RunMigrations(database.DB, cfg.DBDriver)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %v", err)
	}

	// Repositories
	userRepository := repository.NewUserRepository(database)
	profileRepository := repository.NewProfileRepository(database)
	clipRepository := repository.NewClipRepository(database)
	ratingRepository := repository.NewRatingRepository(database)
	quotaRepository := repository.NewQuotaRepository(database)

	// Storage
	blobStorage, err := storage.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %v", err)
	}

	// Services
	authService := service.NewAuthService(
		userRepository,
		profileRepository,
		cfg.JWTSecret,
		cfg.JWTExpiry,
		cfg.IsProduction(),
	)
	quotaService := service.NewQuotaService(quotaRepository, cfg.DailyClipLimit)
	submissionService := service.NewSubmissionService(clipRepository, ratingRepository, quotaService, blobStorage)
	ratingService := service.NewRatingService(ratingRepository, clipRepository)
	feedService := service.NewFeedService(clipRepository, profileRepository, ratingRepository, blobStorage)

	return &App{
		Cfg:               cfg,
		DB:                database,
		AuthService:       authService,
		QuotaService:      quotaService,
		SubmissionService: submissionService,
		RatingService:     ratingService,
		FeedService:       feedService,
	}, nil
}

func (a *App) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
