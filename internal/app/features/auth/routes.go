// internal/app/features/auth/routes.go
package auth

import (
	"github.com/go-chi/chi/v5"

	sysauth "github.com/fairwaylog/fairwaylog/internal/app/system/auth"
)

// Routes returns the router for local authentication endpoints. Register,
// login, and logout are public; /me requires a signed-in caller.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Post("/register", h.ServeRegister)
	r.Post("/login", h.ServeLogin)
	r.Post("/logout", h.ServeLogout)

	r.Group(func(r chi.Router) {
		r.Use(sysauth.RequireSignedIn)
		r.Get("/me", h.ServeMe)
	})

	return r
}
