package api

import (
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/menushare/internal/catalog"
	"github.com/starford/menushare/internal/menuservice"
	"github.com/starford/menushare/internal/models"
	"github.com/starford/menushare/internal/sharecodec"
)

// Handler holds API route handlers.
type Handler struct {
	svc *menuservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *menuservice.Service) *Handler {
	return &Handler{svc: svc}
}

// GetMenu handles GET /api/menu.
//
//	@Summary		Get the whole menu
//	@Tags			menu
//	@Produce		json
//	@Param			If-None-Match	header	string	false	"Checksum of a previously fetched menu"
//	@Success		200	{object}	MenuResponse
//	@Success		304	"Not modified"
//	@Router			/menu [get]
func (h *Handler) GetMenu(w http.ResponseWriter, r *http.Request) {
	m, err := h.svc.GetMenu(r.Context())
	if err != nil {
		writeError(w, "get menu", err)
		return
	}
	etag := `"` + m.Checksum + `"`
	w.Header().Set("ETag", etag)
	if match := r.Header.Get("If-None-Match"); match == etag || strings.Trim(match, `"`) == m.Checksum {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// Sections handles GET /api/menu/sections.
//
//	@Summary		Categories in order with their items
//	@Tags			menu
//	@Produce		json
//	@Success		200	{object}	SectionsResponse
//	@Router			/menu/sections [get]
func (h *Handler) Sections(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, SectionsResponse{Sections: h.svc.Sections(r.Context())})
}

// PatchBrand handles PATCH /api/menu/brand.
//
//	@Summary		Update brand info
//	@Tags			brand
//	@Accept			json
//	@Produce		json
//	@Param			body	body		models.BrandPatch	true	"Fields to change"
//	@Success		200		{object}	models.BrandInfo
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/menu/brand [patch]
func (h *Handler) PatchBrand(w http.ResponseWriter, r *http.Request) {
	var p models.BrandPatch
	if !decodeJSON(w, r, &p) {
		return
	}
	b, err := h.svc.SetBrand(r.Context(), p)
	if err != nil {
		writeError(w, "patch brand", err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// PatchTheme handles PATCH /api/menu/theme.
func (h *Handler) PatchTheme(w http.ResponseWriter, r *http.Request) {
	var p models.ThemePatch
	if !decodeJSON(w, r, &p) {
		return
	}
	t, err := h.svc.SetTheme(r.Context(), p)
	if err != nil {
		writeError(w, "patch theme", err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// CreateCategory handles POST /api/menu/categories.
//
//	@Summary		Add a category
//	@Tags			categories
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateCategoryRequest	true	"Category to add"
//	@Success		201		{object}	models.Category
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/menu/categories [post]
func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CreateCategoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	c, err := h.svc.AddCategory(r.Context(), strings.TrimSpace(req.Name))
	if err != nil {
		writeError(w, "create category", err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// PatchCategory handles PATCH /api/menu/categories/{id}.
func (h *Handler) PatchCategory(w http.ResponseWriter, r *http.Request) {
	var p models.CategoryPatch
	if !decodeJSON(w, r, &p) {
		return
	}
	c, err := h.svc.UpdateCategory(r.Context(), chi.URLParam(r, "id"), p)
	if err != nil {
		writeError(w, "patch category", err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// DeleteCategory handles DELETE /api/menu/categories/{id}. The category's
// items are deleted with it.
func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.RemoveCategory(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, "delete category", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MoveCategory handles POST /api/menu/categories/{id}/move.
//
//	@Summary		Move a category one step up or down
//	@Tags			categories
//	@Accept			json
//	@Param			id		path	string		true	"Category id"
//	@Param			body	body	MoveRequest	true	"Direction"
//	@Success		204		"Moved, or already at the edge"
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/menu/categories/{id}/move [post]
func (h *Handler) MoveCategory(w http.ResponseWriter, r *http.Request) {
	var req MoveRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.svc.MoveCategory(r.Context(), chi.URLParam(r, "id"), req.Direction); err != nil {
		writeError(w, "move category", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateItem handles POST /api/menu/items.
//
//	@Summary		Add an item to a category
//	@Tags			items
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateItemRequest	true	"Item to add"
//	@Success		201		{object}	models.Item
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/menu/items [post]
func (h *Handler) CreateItem(w http.ResponseWriter, r *http.Request) {
	var req CreateItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	it, err := h.svc.AddItem(r.Context(), req.CategoryID, req.ItemFields)
	if err != nil {
		writeError(w, "create item", err)
		return
	}
	writeJSON(w, http.StatusCreated, it)
}

// PatchItem handles PATCH /api/menu/items/{id}.
func (h *Handler) PatchItem(w http.ResponseWriter, r *http.Request) {
	var p models.ItemPatch
	if !decodeJSON(w, r, &p) {
		return
	}
	it, err := h.svc.UpdateItem(r.Context(), chi.URLParam(r, "id"), p)
	if err != nil {
		writeError(w, "patch item", err)
		return
	}
	writeJSON(w, http.StatusOK, it)
}

// DeleteItem handles DELETE /api/menu/items/{id}.
func (h *Handler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.RemoveItem(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, "delete item", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MoveItem handles POST /api/menu/items/{id}/move. Items move within their
// own category only.
func (h *Handler) MoveItem(w http.ResponseWriter, r *http.Request) {
	var req MoveRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.svc.MoveItem(r.Context(), chi.URLParam(r, "id"), req.Direction); err != nil {
		writeError(w, "move item", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// OrderLink handles GET /api/menu/items/{id}/order-link.
//
//	@Summary		WhatsApp order link for an item
//	@Tags			items
//	@Produce		json
//	@Param			id	path		string	true	"Item id"
//	@Success		200	{object}	OrderLinkResponse
//	@Failure		404	{object}	errResponse
//	@Failure		422	{object}	errResponse	"No phone number set"
//	@Router			/menu/items/{id}/order-link [get]
func (h *Handler) OrderLink(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.OrderLink(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "order link", err)
		return
	}
	writeJSON(w, http.StatusOK, OrderLinkResponse{URL: u})
}

// Share handles POST /api/share.
//
//	@Summary		Encode the menu into a share link
//	@Tags			share
//	@Produce		json
//	@Success		200	{object}	ShareResponse
//	@Security		BearerAuth
//	@Router			/share [post]
func (h *Handler) Share(w http.ResponseWriter, r *http.Request) {
	link, err := h.svc.Share(r.Context())
	if err != nil {
		writeError(w, "share", err)
		return
	}
	resp := ShareResponse{ShareLink: link}
	if link.Long {
		resp.Warning = longLinkWarning
	}
	writeJSON(w, http.StatusOK, resp)
}

// View handles GET /api/view?data=<payload>. It answers like a page load:
// a valid payload gives the read-only menu, anything else the default
// editable one.
//
//	@Summary		Resolve a share payload
//	@Tags			share
//	@Produce		json
//	@Param			data	query		string	false	"Payload from a #data= fragment"
//	@Success		200		{object}	models.State
//	@Router			/view [get]
func (h *Handler) View(w http.ResponseWriter, r *http.Request) {
	fragment := ""
	if data := r.URL.Query().Get("data"); data != "" {
		fragment = sharecodec.FragmentMarker + data
	}
	writeJSON(w, http.StatusOK, h.svc.View(r.Context(), fragment))
}

// Import handles POST /api/menu/import. The body is a YAML or JSON menu
// document, or a multipart form with an XLSX (or YAML/JSON) "file".
//
//	@Summary		Replace the menu with an imported file
//	@Tags			menu
//	@Accept			json,x-yaml,mpfd
//	@Produce		json
//	@Param			format	query		string	false	"yaml, json or xlsx when the content type is ambiguous"
//	@Success		200		{object}	models.State
//	@Failure		409		{object}	errResponse
//	@Failure		415		{object}	errResponse
//	@Failure		422		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/menu/import [post]
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImportBytes)

	var (
		data   []byte
		format catalog.Format
		err    error
	)
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(maxImportBytes); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("file too large or invalid multipart"))
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("missing 'file' field in multipart form"))
			return
		}
		defer file.Close()
		if format, err = catalog.FormatOf(header.Filename); err != nil {
			writeJSON(w, http.StatusUnsupportedMediaType, errorBody(err.Error()))
			return
		}
		data, err = io.ReadAll(file)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("failed to read file"))
			return
		}
	} else {
		format = importFormat(r.URL.Query().Get("format"), mediaType)
		if format == "" {
			writeJSON(w, http.StatusUnsupportedMediaType, errorBody("send application/json, application/yaml or a multipart file"))
			return
		}
		if data, err = io.ReadAll(r.Body); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("failed to read body"))
			return
		}
	}

	st, err := h.svc.Import(r.Context(), data, format)
	if err != nil {
		writeError(w, "import", err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func importFormat(query, mediaType string) catalog.Format {
	switch strings.ToLower(query) {
	case "yaml", "yml":
		return catalog.FormatYAML
	case "json":
		return catalog.FormatJSON
	case "xlsx":
		return catalog.FormatXLSX
	}
	switch mediaType {
	case "application/json":
		return catalog.FormatJSON
	case "application/yaml", "application/x-yaml", "text/yaml", "text/x-yaml":
		return catalog.FormatYAML
	case "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":
		return catalog.FormatXLSX
	}
	return ""
}
