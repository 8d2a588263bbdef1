// internal/app/features/scores/routes.go
package scores

import (
	"github.com/go-chi/chi/v5"

	sysauth "github.com/fairwaylog/fairwaylog/internal/app/system/auth"
)

// Routes returns the router for score endpoints. All require a signed-in
// caller.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(sysauth.RequireSignedIn)

	r.Post("/", h.ServeCreate)
	r.Get("/", h.ServeList)
	r.Get("/{scoreID}", h.ServeDetail)
	r.Put("/{scoreID}", h.ServeUpdate)
	r.Delete("/{scoreID}", h.ServeDelete)

	return r
}
