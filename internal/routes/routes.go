package routes

import (
	"net/http"
	"time"

	"github.com/soundjury/soundjury/internal/app"
	"github.com/soundjury/soundjury/internal/handler"
	"github.com/soundjury/soundjury/internal/metrics"
	"github.com/soundjury/soundjury/internal/middleware"
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	auth := handler.NewAuthHandler(app.AuthService)
	clip := handler.NewClipHandler(app.SubmissionService, app.FeedService, app.QuotaService, app.Cfg)
	rating := handler.NewRatingHandler(app.RatingService)

	mux := http.NewServeMux()

	// Health and observability
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.Handle("GET /metrics", metrics.Handler())

	// Auth
	signupLimiter := middleware.RateLimit(5, 15*time.Minute)
	mux.HandleFunc("POST /auth/signup", signupLimiter(auth.Signup))
	mux.HandleFunc("POST /auth/logout", auth.Logout)
	mux.HandleFunc("GET /me", middleware.RequireAuth(auth.Me))

	// Feed (the tribunal): any signed-in participant can browse and rate
	mux.HandleFunc("GET /clips", middleware.RequireAuth(clip.Feed))
	mux.HandleFunc("GET /clips/{id}/ratings", middleware.RequireAuth(rating.List))

	// Studio: record and submit under the daily quota
	submitLimiter := middleware.RateLimit(10, time.Minute)
	mux.HandleFunc("POST /clips", submitLimiter(middleware.RequireAuth(clip.Submit)))
	mux.HandleFunc("GET /studio/quota", middleware.RequireAuth(clip.Quota))
	mux.HandleFunc("GET /me/clips", middleware.RequireAuth(clip.MyClips))
	mux.HandleFunc("DELETE /clips/{id}", middleware.RequireAuth(clip.Delete))

	// Ratings
	rateLimiter := middleware.RateLimit(30, time.Minute)
	mux.HandleFunc("PUT /clips/{id}/rating", rateLimiter(middleware.RequireAuth(rating.Rate)))
	mux.HandleFunc("DELETE /clips/{id}/rating", middleware.RequireAuth(rating.Unrate))

	// Global middleware
	return middleware.Chain(mux,
		middleware.Recovery,
		middleware.RequestLogging,
		middleware.AuthMiddleware(app.AuthService),
	)
}
