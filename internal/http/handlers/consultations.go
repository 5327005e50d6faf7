package handlers

import (
	"net/http"

	"github.com/hongminglow/kalafo-api/internal/http/respond"
	"github.com/hongminglow/kalafo-api/internal/middleware"
	"github.com/hongminglow/kalafo-api/internal/models"
	"github.com/hongminglow/kalafo-api/internal/models/dto"
	"github.com/hongminglow/kalafo-api/internal/service"
)

// ConsultationHandler books consultations and moves them through their lifecycle.
type ConsultationHandler struct {
	consultations *service.Consultations
	guard         *middleware.Guard
}

func NewConsultationHandler(consultations *service.Consultations, guard *middleware.Guard) *ConsultationHandler {
	return &ConsultationHandler{consultations: consultations, guard: guard}
}

func (h *ConsultationHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/consultations", h.guard.Allow(h.handleList, models.RoleDoctor, models.RolePatient))
	mux.HandleFunc("POST /api/consultations", h.guard.Allow(h.handleCreate))
	mux.HandleFunc("PATCH /api/consultations/{id}", h.guard.Allow(h.handleUpdate))
}

func (h *ConsultationHandler) handleList(w http.ResponseWriter, r *http.Request, caller models.User) {
	list, err := h.consultations.ListFor(r.Context(), caller, r.URL.Query().Get("status"))
	if err != nil {
		respond.Fail(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", dto.ConsultationList{Consultations: list, TotalCount: len(list)})
}

func (h *ConsultationHandler) handleCreate(w http.ResponseWriter, r *http.Request, caller models.User) {
	var req dto.CreateConsultationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respond.Fail(w, r, err)
		return
	}
	created, err := h.consultations.Schedule(r.Context(), caller, service.NewConsultation{
		PatientID:     req.PatientID,
		DoctorID:      req.DoctorID,
		ScheduledTime: req.ScheduledTime,
		Notes:         req.Notes,
	})
	if err != nil {
		respond.Fail(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, "consultation scheduled", created)
}

func (h *ConsultationHandler) handleUpdate(w http.ResponseWriter, r *http.Request, caller models.User) {
	id, err := pathID(r)
	if err != nil {
		respond.Fail(w, r, err)
		return
	}
	var req dto.UpdateConsultationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respond.Fail(w, r, err)
		return
	}
	updated, err := h.consultations.Transition(r.Context(), caller, id, service.StatusChange{
		Status:    req.Status,
		Notes:     req.Notes,
		Diagnosis: req.Diagnosis,
	})
	if err != nil {
		respond.Fail(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, "consultation updated", updated)
}
