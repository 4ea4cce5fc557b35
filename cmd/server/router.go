package main

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/srgulbay/flashbox/internal/api"
	apimw "github.com/srgulbay/flashbox/internal/api/middleware"
	"github.com/srgulbay/flashbox/internal/api/shared"
)

// setupRouter creates the router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(apimw.Trace(app.logger))
	r.Use(middleware.Recoverer)

	reviewHandler := api.NewReviewHandler(app.reviewService, time.Now, app.logger)
	authMiddleware := apimw.NewAuthMiddleware(app.jwtService)

	r.Route("/api", func(r chi.Router) {
		r.Route("/reviews", func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)
			reviewHandler.Routes(r, app.limiter.Middleware)
		})

		if secret := app.config.Auth.HookSecret; secret != "" {
			hookHandler := api.NewHookHandler(app.reviewService, secret, app.logger)
			r.Route("/hooks", hookHandler.Routes)
		}
	})

	r.Get("/health", app.health)

	return r
}

// health reports whether the database is reachable.
func (app *application) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := app.db.PingContext(ctx); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusServiceUnavailable, "Database unavailable", err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}
