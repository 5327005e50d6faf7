package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/hongminglow/kalafo-api/internal/apperr"
	"github.com/hongminglow/kalafo-api/internal/models"
	"github.com/hongminglow/kalafo-api/internal/storage"
)

// NewConsultation is the input for booking a consultation. Zero ids mean "not supplied".
type NewConsultation struct {
	PatientID     int64
	DoctorID      int64
	ScheduledTime string
	Notes         *string
}

// StatusChange is the input for moving a consultation to a terminal state.
type StatusChange struct {
	Status    string
	Notes     *string
	Diagnosis *string
}

// Consultations books consultations and applies status transitions.
type Consultations struct {
	users         storage.UserStore
	consultations storage.ConsultationStore
}

// NewConsultations constructs the consultation service.
func NewConsultations(users storage.UserStore, consultations storage.ConsultationStore) *Consultations {
	return &Consultations{users: users, consultations: consultations}
}

// Schedule books a consultation on behalf of caller. Patients book for
// themselves, doctors schedule for themselves, admins name both sides.
// The referenced users must hold the patient and doctor roles respectively.
func (s *Consultations) Schedule(ctx context.Context, caller models.User, in NewConsultation) (models.Consultation, error) {
	switch caller.Role {
	case models.RolePatient:
		if in.PatientID != 0 && in.PatientID != caller.ID {
			return models.Consultation{}, apperr.Authorization("forbidden", "patients can only book for themselves")
		}
		in.PatientID = caller.ID
	case models.RoleDoctor:
		if in.DoctorID != 0 && in.DoctorID != caller.ID {
			return models.Consultation{}, apperr.Authorization("forbidden", "doctors can only schedule their own consultations")
		}
		in.DoctorID = caller.ID
	}
	if in.PatientID == 0 || in.DoctorID == 0 {
		return models.Consultation{}, apperr.Validation("missing_fields", "patient_id and doctor_id are required")
	}

	scheduled, err := parseScheduledTime(in.ScheduledTime)
	if err != nil {
		return models.Consultation{}, err
	}
	if err := s.requireRole(ctx, in.PatientID, models.RolePatient); err != nil {
		return models.Consultation{}, err
	}
	if err := s.requireRole(ctx, in.DoctorID, models.RoleDoctor); err != nil {
		return models.Consultation{}, err
	}

	created, err := s.consultations.CreateConsultation(ctx, models.Consultation{
		PatientID:     in.PatientID,
		DoctorID:      in.DoctorID,
		ScheduledTime: scheduled,
		Status:        models.StatusScheduled,
		Notes:         in.Notes,
	})
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.Consultation{}, apperr.Validation("invalid_participant", "patient or doctor no longer exists")
		}
		return models.Consultation{}, apperr.Internal("failed to create consultation", err)
	}
	return created, nil
}

// Transition moves consultation id to a terminal status. Admins may change any
// consultation, doctors only their own, and patients may only cancel their own.
func (s *Consultations) Transition(ctx context.Context, caller models.User, id int64, in StatusChange) (models.Consultation, error) {
	target := models.ConsultationStatus(in.Status)
	if !target.Valid() || target == models.StatusScheduled {
		return models.Consultation{}, apperr.Validation("invalid_status", "status must be completed or cancelled")
	}

	current, err := s.consultations.GetConsultation(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.Consultation{}, apperr.NotFound("consultation_not_found", "consultation not found")
		}
		return models.Consultation{}, apperr.Internal("failed to fetch consultation", err)
	}

	switch caller.Role {
	case models.RoleDoctor:
		if current.DoctorID != caller.ID {
			return models.Consultation{}, apperr.Authorization("forbidden", "access denied")
		}
	case models.RolePatient:
		if current.PatientID != caller.ID || target != models.StatusCancelled || in.Diagnosis != nil {
			return models.Consultation{}, apperr.Authorization("forbidden", "patients may only cancel their own consultations")
		}
	}

	if !current.Status.CanTransitionTo(target) {
		return models.Consultation{}, apperr.Conflict("invalid_transition", "consultation is already "+string(current.Status))
	}

	updated, err := s.consultations.UpdateConsultationStatus(ctx, id, models.StatusUpdate{
		From:      current.Status,
		To:        target,
		Notes:     in.Notes,
		Diagnosis: in.Diagnosis,
	})
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrConflict):
			return models.Consultation{}, apperr.Conflict("invalid_transition", "consultation was changed concurrently")
		case errors.Is(err, storage.ErrNotFound):
			return models.Consultation{}, apperr.NotFound("consultation_not_found", "consultation not found")
		}
		return models.Consultation{}, apperr.Internal("failed to update consultation", err)
	}
	return updated, nil
}

// ListFor returns the caller's own consultations, optionally filtered by status.
func (s *Consultations) ListFor(ctx context.Context, caller models.User, status string) ([]models.Consultation, error) {
	filter := models.ConsultationStatus(status)
	if filter != "" && !filter.Valid() {
		return nil, apperr.Validation("invalid_status", "status must be scheduled, completed or cancelled")
	}

	var list []models.Consultation
	var err error
	switch caller.Role {
	case models.RoleDoctor:
		list, err = s.consultations.ListByDoctor(ctx, caller.ID, filter, 0)
	case models.RolePatient:
		list, err = s.consultations.ListByPatient(ctx, caller.ID, filter, 0)
	default:
		return nil, apperr.Authorization("forbidden", "access denied")
	}
	if err != nil {
		return nil, apperr.Internal("failed to list consultations", err)
	}
	return list, nil
}

func (s *Consultations) requireRole(ctx context.Context, id int64, role models.Role) error {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return apperr.Validation("invalid_participant", string(role)+" not found")
		}
		return apperr.Internal("failed to fetch user", err)
	}
	if user.Role != role {
		return apperr.Validation("invalid_participant", "user is not a "+string(role))
	}
	return nil
}

func parseScheduledTime(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, apperr.Validation("missing_fields", "scheduled_time is required")
	}
	at, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, apperr.Validation("invalid_scheduled_time", "scheduled_time must be RFC 3339")
	}
	return at.UTC(), nil
}
