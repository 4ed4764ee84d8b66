// AngelaMos | 2026
// handler.go

package feedback

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/staff-portal/internal/core"
	"github.com/carterperez-dev/staff-portal/internal/middleware"
)

const resourceName = "feedback"

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

// RegisterRoutes mounts submission behind optionalAuth and submitLimiter,
// and the review endpoints behind the authenticator.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator, optionalAuth, submitLimiter func(http.Handler) http.Handler,
) {
	r.Route("/feedback", func(r chi.Router) {
		r.With(optionalAuth, submitLimiter).Post("/", h.Submit)

		r.Group(func(r chi.Router) {
			r.Use(authenticator)

			r.Get("/", h.List)
			r.Get("/{feedbackID}", h.Get)
			r.Patch("/{feedbackID}", h.UpdateStatus)
		})
	})
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var req CreateFeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	f, err := h.service.Submit(r.Context(), middleware.GetIdentity(r.Context()), req)
	if err != nil {
		core.HandleServiceError(w, r, err, resourceName)
		return
	}

	core.Created(w, ToFeedbackResponse(f))
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	params := ListParams{
		Page:     parseIntQuery(r, "page", 1),
		PageSize: parseIntQuery(r, "pageSize", 20),
		Status:   r.URL.Query().Get("status"),
	}
	params.Normalize()

	items, total, err := h.service.List(r.Context(), middleware.GetIdentity(r.Context()), params)
	if err != nil {
		core.HandleServiceError(w, r, err, resourceName)
		return
	}

	core.Paginated(w, ToFeedbackResponseList(items), params.Page, params.PageSize, total)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	f, err := h.service.Get(
		r.Context(),
		middleware.GetIdentity(r.Context()),
		chi.URLParam(r, "feedbackID"),
	)
	if err != nil {
		core.HandleServiceError(w, r, err, resourceName)
		return
	}

	core.OK(w, ToFeedbackResponse(f))
}

func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	f, err := h.service.UpdateStatus(
		r.Context(),
		middleware.GetIdentity(r.Context()),
		chi.URLParam(r, "feedbackID"),
		req.Status,
	)
	if err != nil {
		core.HandleServiceError(w, r, err, resourceName)
		return
	}

	core.OK(w, ToFeedbackResponse(f))
}

func parseIntQuery(r *http.Request, key string, defaultVal int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}

	parsed, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}

	return parsed
}
