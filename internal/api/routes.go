package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes mounts the review endpoints. The caller applies authentication.
// submitLimit, when non-nil, wraps the endpoints that write review state.
func (h *ReviewHandler) Routes(r chi.Router, submitLimit func(http.Handler) http.Handler) {
	r.Get("/due", h.GetDueQueue)
	r.Get("/stats", h.Stats)

	r.Group(func(r chi.Router) {
		if submitLimit != nil {
			r.Use(submitLimit)
		}
		r.Post("/", h.SubmitReview)
		r.Post("/queue", h.Enqueue)
		r.Post("/postpone", h.Postpone)
	})
}

// Routes mounts the lifecycle hooks behind the hook secret.
func (h *HookHandler) Routes(r chi.Router) {
	r.Use(h.RequireSecret)
	r.Delete("/items/{kind}/{id}", h.DeleteItem)
	r.Delete("/users/{id}", h.DeleteUser)
}
