package handlers

import (
	"net/http"

	"github.com/hongminglow/kalafo-api/internal/apperr"
	"github.com/hongminglow/kalafo-api/internal/http/respond"
	"github.com/hongminglow/kalafo-api/internal/middleware"
	"github.com/hongminglow/kalafo-api/internal/models"
	"github.com/hongminglow/kalafo-api/internal/models/dto"
	"github.com/hongminglow/kalafo-api/internal/service"
)

// UsersHandler serves the administrative user and patient listings.
type UsersHandler struct {
	accounts   *service.Accounts
	dashboards *service.Dashboards
	guard      *middleware.Guard
}

func NewUsersHandler(accounts *service.Accounts, dashboards *service.Dashboards, guard *middleware.Guard) *UsersHandler {
	return &UsersHandler{accounts: accounts, dashboards: dashboards, guard: guard}
}

func (h *UsersHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/users", h.guard.Allow(h.handleList, models.RoleAdmin))
	mux.HandleFunc("PATCH /api/users/{id}/active", h.guard.Allow(h.handleSetActive, models.RoleAdmin))
	mux.HandleFunc("GET /api/patients", h.guard.Allow(h.handlePatients, models.RoleAdmin, models.RoleDoctor))
}

func (h *UsersHandler) handleList(w http.ResponseWriter, r *http.Request, _ models.User) {
	users, err := h.accounts.List(r.Context())
	if err != nil {
		respond.Fail(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", dto.UserList{Users: users})
}

func (h *UsersHandler) handleSetActive(w http.ResponseWriter, r *http.Request, _ models.User) {
	id, err := pathID(r)
	if err != nil {
		respond.Fail(w, r, err)
		return
	}
	var req dto.SetActiveRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respond.Fail(w, r, err)
		return
	}
	if req.IsActive == nil {
		respond.Fail(w, r, apperr.Validation("missing_fields", "is_active is required"))
		return
	}
	user, err := h.accounts.SetActive(r.Context(), id, *req.IsActive)
	if err != nil {
		respond.Fail(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, "user updated", user)
}

func (h *UsersHandler) handlePatients(w http.ResponseWriter, r *http.Request, _ models.User) {
	patients, err := h.dashboards.Patients(r.Context())
	if err != nil {
		respond.Fail(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", patients)
}
