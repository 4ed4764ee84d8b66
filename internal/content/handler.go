// AngelaMos | 2026
// handler.go

package content

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/staff-portal/internal/core"
	"github.com/carterperez-dev/staff-portal/internal/middleware"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Group(func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/news", h.ListNews)
		r.Get("/news/{contentID}", h.GetNews)
		r.Get("/blogs", h.ListBlogs)
		r.Get("/blogs/{contentID}", h.GetBlog)
	})
}

func (h *Handler) ListNews(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.ListNews(
		r.Context(),
		middleware.GetIdentity(r.Context()),
		parseQuery(r),
	)
	if err != nil {
		core.HandleServiceError(w, r, err, "news")
		return
	}

	core.OK(w, page)
}

func (h *Handler) GetNews(w http.ResponseWriter, r *http.Request) {
	n, err := h.service.GetNews(
		r.Context(),
		middleware.GetIdentity(r.Context()),
		chi.URLParam(r, "contentID"),
	)
	if err != nil {
		core.HandleServiceError(w, r, err, "news")
		return
	}

	core.OK(w, n)
}

func (h *Handler) ListBlogs(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.ListBlogs(
		r.Context(),
		middleware.GetIdentity(r.Context()),
		parseQuery(r),
	)
	if err != nil {
		core.HandleServiceError(w, r, err, "blog")
		return
	}

	core.OK(w, page)
}

func (h *Handler) GetBlog(w http.ResponseWriter, r *http.Request) {
	b, err := h.service.GetBlog(
		r.Context(),
		middleware.GetIdentity(r.Context()),
		chi.URLParam(r, "contentID"),
	)
	if err != nil {
		core.HandleServiceError(w, r, err, "blog")
		return
	}

	core.OK(w, b)
}

func parseQuery(r *http.Request) Query {
	values := r.URL.Query()

	limit, _ := strconv.Atoi(values.Get("limit"))
	offset, _ := strconv.Atoi(values.Get("offset"))
	important, _ := strconv.ParseBool(values.Get("important"))

	return Query{
		Limit:     limit,
		Offset:    offset,
		Category:  values.Get("category"),
		Important: important,
	}
}
