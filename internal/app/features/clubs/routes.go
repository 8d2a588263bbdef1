// internal/app/features/clubs/routes.go
package clubs

import (
	"github.com/go-chi/chi/v5"

	sysauth "github.com/fairwaylog/fairwaylog/internal/app/system/auth"
)

// Routes returns the router for club endpoints. All of them require a
// signed-in caller.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(sysauth.RequireSignedIn)

	r.Post("/", h.ServeCreate)
	r.Get("/", h.ServeList)
	r.Get("/{clubID}", h.ServeDetail)
	r.Put("/{clubID}", h.ServeUpdate)
	r.Post("/{clubID}/join", h.ServeJoin)
	r.Post("/{clubID}/leave", h.ServeLeave)
	r.Post("/{clubID}/remove/{memberID}", h.ServeRemoveMember)
	r.Post("/{clubID}/transfer/{newManagerID}", h.ServeTransfer)
	r.Get("/{clubID}/stats", h.ServeStats)

	return r
}
