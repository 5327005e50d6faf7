package handlers

import (
	"net/http"

	"github.com/hongminglow/kalafo-api/internal/http/respond"
	"github.com/hongminglow/kalafo-api/internal/middleware"
	"github.com/hongminglow/kalafo-api/internal/models"
	"github.com/hongminglow/kalafo-api/internal/service"
)

// DashboardHandler serves the per-role dashboards.
type DashboardHandler struct {
	dashboards *service.Dashboards
	guard      *middleware.Guard
}

func NewDashboardHandler(dashboards *service.Dashboards, guard *middleware.Guard) *DashboardHandler {
	return &DashboardHandler{dashboards: dashboards, guard: guard}
}

func (h *DashboardHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/dashboard/admin", h.guard.Allow(h.handleAdmin, models.RoleAdmin))
	mux.HandleFunc("GET /api/dashboard/doctor", h.guard.Allow(h.handleDoctor, models.RoleDoctor))
	mux.HandleFunc("GET /api/dashboard/patient", h.guard.Allow(h.handlePatient, models.RolePatient))
}

func (h *DashboardHandler) handleAdmin(w http.ResponseWriter, r *http.Request, _ models.User) {
	board, err := h.dashboards.Admin(r.Context())
	if err != nil {
		respond.Fail(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", board)
}

func (h *DashboardHandler) handleDoctor(w http.ResponseWriter, r *http.Request, doctor models.User) {
	board, err := h.dashboards.Doctor(r.Context(), doctor)
	if err != nil {
		respond.Fail(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", board)
}

func (h *DashboardHandler) handlePatient(w http.ResponseWriter, r *http.Request, patient models.User) {
	board, err := h.dashboards.Patient(r.Context(), patient)
	if err != nil {
		respond.Fail(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", board)
}
