// AngelaMos | 2026
// handler.go

package user

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/staff-portal/internal/core"
	"github.com/carterperez-dev/staff-portal/internal/middleware"
)

const resourceName = "user"

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
	r.Route("/users", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/me", h.GetMe)
		r.Put("/me", h.UpdateMe)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireSuperuser)

			r.Get("/", h.ListUsers)
			r.Post("/", h.CreateUser)
			r.Get("/{userID}", h.GetUser)
			r.Put("/{userID}", h.UpdateUser)
		})

		// Delete is left outside the superuser group so that a self-deletion
		// attempt reports SELF_DELETION_FORBIDDEN for every role.
		r.Delete("/{userID}", h.DeleteUser)
	})
}

// bind decodes and validates a request body, answering 400 itself when
// either step fails.
func (h *Handler) bind(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		core.BadRequest(w, "invalid request body")
		return false
	}
	if err := h.validator.Struct(dst); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return false
	}
	return true
}

// respond writes a user or maps the service error.
func respond(w http.ResponseWriter, r *http.Request, u *User, err error, status int) {
	if err != nil {
		core.HandleServiceError(w, r, err, resourceName)
		return
	}
	core.JSON(w, status, core.Response{Success: true, Data: ToUserResponse(u)})
}

func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	u, err := h.service.GetMe(r.Context(), middleware.GetIdentity(r.Context()))
	respond(w, r, u, err, http.StatusOK)
}

func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var req UpdateMeRequest
	if !h.bind(w, r, &req) {
		return
	}

	u, err := h.service.UpdateMe(r.Context(), middleware.GetIdentity(r.Context()), req)
	respond(w, r, u, err, http.StatusOK)
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := ListUsersParams{
		Page:       queryInt(q.Get("page"), 1),
		PageSize:   queryInt(q.Get("pageSize"), 20),
		Search:     q.Get("search"),
		Role:       q.Get("role"),
		UserTypeID: q.Get("userTypeId"),
	}
	params.Normalize()

	users, total, err := h.service.ListUsers(r.Context(), middleware.GetIdentity(r.Context()), params)
	if err != nil {
		core.HandleServiceError(w, r, err, resourceName)
		return
	}

	core.Paginated(w, ToUserResponseList(users), params.Page, params.PageSize, total)
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	u, err := h.service.GetUser(r.Context(), middleware.GetIdentity(r.Context()), chi.URLParam(r, "userID"))
	respond(w, r, u, err, http.StatusOK)
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if !h.bind(w, r, &req) {
		return
	}

	u, err := h.service.CreateUser(r.Context(), middleware.GetIdentity(r.Context()), req)
	if err != nil {
		// duplicates are reported against the username
		core.HandleServiceError(w, r, err, "username")
		return
	}
	core.Created(w, ToUserResponse(u))
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req UpdateUserRequest
	if !h.bind(w, r, &req) {
		return
	}

	u, err := h.service.UpdateUser(
		r.Context(),
		middleware.GetIdentity(r.Context()),
		chi.URLParam(r, "userID"),
		req,
	)
	respond(w, r, u, err, http.StatusOK)
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	err := h.service.DeleteUser(r.Context(), middleware.GetIdentity(r.Context()), chi.URLParam(r, "userID"))
	if err != nil {
		core.HandleServiceError(w, r, err, resourceName)
		return
	}
	core.NoContent(w)
}

// queryInt falls back to def for missing or non-numeric values.
func queryInt(raw string, def int) int {
	if n, err := strconv.Atoi(raw); err == nil {
		return n
	}
	return def
}
