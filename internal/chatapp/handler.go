// AngelaMos | 2026
// handler.go

package chatapp

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/staff-portal/internal/core"
	"github.com/carterperez-dev/staff-portal/internal/middleware"
)

const resourceName = "chat app"

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
	r.Route("/chat-apps", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{appID}", h.Get)
		r.Put("/{appID}", h.Update)
		r.Delete("/{appID}", h.Delete)
	})

	r.Route("/admin-apps", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(middleware.RequireAdmin)

		r.Get("/", h.ListAdminApps)
		r.Post("/", h.CreateAdminApp)
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	mine, _ := strconv.ParseBool(r.URL.Query().Get("mine"))

	apps, err := h.service.List(
		r.Context(),
		middleware.GetIdentity(r.Context()),
		ListParams{
			UserTypeID: r.URL.Query().Get("userTypeId"),
			Mine:       mine,
		},
	)
	if err != nil {
		core.HandleServiceError(w, r, err, resourceName)
		return
	}

	core.OK(w, ToChatAppResponseList(apps))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	app, err := h.service.Get(
		r.Context(),
		middleware.GetIdentity(r.Context()),
		chi.URLParam(r, "appID"),
	)
	if err != nil {
		core.HandleServiceError(w, r, err, resourceName)
		return
	}

	core.OK(w, ToChatAppResponse(app))
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateChatAppRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	app, err := h.service.Create(r.Context(), middleware.GetIdentity(r.Context()), req)
	if err != nil {
		core.HandleServiceError(w, r, err, resourceName)
		return
	}

	core.Created(w, ToChatAppResponse(app))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateChatAppRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	app, err := h.service.Update(
		r.Context(),
		middleware.GetIdentity(r.Context()),
		chi.URLParam(r, "appID"),
		req,
	)
	if err != nil {
		core.HandleServiceError(w, r, err, resourceName)
		return
	}

	core.OK(w, ToChatAppResponse(app))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.service.Delete(
		r.Context(),
		middleware.GetIdentity(r.Context()),
		chi.URLParam(r, "appID"),
	)
	if err != nil {
		core.HandleServiceError(w, r, err, resourceName)
		return
	}

	core.NoContent(w)
}

func (h *Handler) ListAdminApps(w http.ResponseWriter, r *http.Request) {
	apps, err := h.service.ListAdminApps(r.Context(), middleware.GetIdentity(r.Context()))
	if err != nil {
		core.HandleServiceError(w, r, err, resourceName)
		return
	}

	core.OK(w, ToChatAppResponseList(apps))
}

func (h *Handler) CreateAdminApp(w http.ResponseWriter, r *http.Request) {
	var req CreateAdminAppRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	app, err := h.service.CreateAdminApp(r.Context(), middleware.GetIdentity(r.Context()), req)
	if err != nil {
		core.HandleServiceError(w, r, err, resourceName)
		return
	}

	core.Created(w, ToChatAppResponse(app))
}
