// AngelaMos | 2026
// handler.go

package usertype

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/staff-portal/internal/core"
	"github.com/carterperez-dev/staff-portal/internal/middleware"
)

const resourceName = "user type"

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: core.NewValidator(),
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/user-types", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{typeID}", h.Get)
		r.Put("/{typeID}", h.Update)
		r.Delete("/{typeID}", h.Delete)
		r.Get("/{typeID}/usage", h.Usage)
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	types, err := h.service.List(r.Context(), middleware.GetIdentity(r.Context()))
	if err != nil {
		core.HandleServiceError(w, r, err, resourceName)
		return
	}

	core.OK(w, ToUserTypeResponseList(types))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	t, err := h.service.Get(
		r.Context(),
		middleware.GetIdentity(r.Context()),
		chi.URLParam(r, "typeID"),
	)
	if err != nil {
		core.HandleServiceError(w, r, err, resourceName)
		return
	}

	core.OK(w, ToUserTypeResponse(t))
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateUserTypeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	t, err := h.service.Create(r.Context(), middleware.GetIdentity(r.Context()), req)
	if err != nil {
		core.HandleServiceError(w, r, err, "user type name")
		return
	}

	core.Created(w, ToUserTypeResponse(t))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateUserTypeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	t, err := h.service.Update(
		r.Context(),
		middleware.GetIdentity(r.Context()),
		chi.URLParam(r, "typeID"),
		req,
	)
	if err != nil {
		core.HandleServiceError(w, r, err, resourceName)
		return
	}

	core.OK(w, ToUserTypeResponse(t))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.service.Delete(
		r.Context(),
		middleware.GetIdentity(r.Context()),
		chi.URLParam(r, "typeID"),
	)
	if err != nil {
		core.HandleServiceError(w, r, err, resourceName)
		return
	}

	core.NoContent(w)
}

func (h *Handler) Usage(w http.ResponseWriter, r *http.Request) {
	u, err := h.service.Usage(
		r.Context(),
		middleware.GetIdentity(r.Context()),
		chi.URLParam(r, "typeID"),
	)
	if err != nil {
		core.HandleServiceError(w, r, err, resourceName)
		return
	}

	core.OK(w, ToUsageResponse(u))
}
