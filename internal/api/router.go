package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/menushare/internal/menuservice"
)

const (
	maxJSONBytes   = 1 << 20
	maxImportBytes = 10 << 20
)

// NewRouter creates a chi router with all API routes mounted.
// Reading the menu, resolving share payloads, order links and the event
// stream (sseHandler, if non-nil) are viewer routes and never need a token.
// Everything that edits or publishes the menu sits behind EditorAuth when
// authEnabled is set. maxUploadBytes bounds image uploads.
func NewRouter(svc *menuservice.Service, authEnabled bool, token string, sseHandler http.Handler, maxUploadBytes int64) chi.Router {
	h := NewHandler(svc)
	ih := NewImageHandler(svc, maxUploadBytes)
	editor := EditorAuth(authEnabled, token)

	r := chi.NewRouter()

	r.Route("/menu", func(r chi.Router) {
		r.Get("/", h.GetMenu)
		r.Get("/sections", h.Sections)
		r.Get("/items/{id}/order-link", h.OrderLink)

		r.Group(func(r chi.Router) {
			r.Use(editor)

			r.Post("/import", h.Import)

			r.Patch("/brand", h.PatchBrand)
			r.Post("/brand/logo", ih.UploadLogo)
			r.Patch("/theme", h.PatchTheme)

			r.Post("/categories", h.CreateCategory)
			r.Patch("/categories/{id}", h.PatchCategory)
			r.Delete("/categories/{id}", h.DeleteCategory)
			r.Post("/categories/{id}/move", h.MoveCategory)

			r.Post("/items", h.CreateItem)
			r.Patch("/items/{id}", h.PatchItem)
			r.Delete("/items/{id}", h.DeleteItem)
			r.Post("/items/{id}/move", h.MoveItem)
			r.Post("/items/{id}/image", ih.UploadItemImage)
		})
	})

	// Share links: producing one is an editor action, opening one is not.
	r.With(editor).Post("/share", h.Share)
	r.Get("/view", h.View)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
