package service

import (
	"context"

	"github.com/hongminglow/kalafo-api/internal/apperr"
	"github.com/hongminglow/kalafo-api/internal/models"
	"github.com/hongminglow/kalafo-api/internal/models/dto"
	"github.com/hongminglow/kalafo-api/internal/storage"
)

const recentLimit = 10

// Dashboards composes repository reads into per-role payloads.
type Dashboards struct {
	users         storage.UserStore
	consultations storage.ConsultationStore
}

// NewDashboards constructs the dashboard service.
func NewDashboards(users storage.UserStore, consultations storage.ConsultationStore) *Dashboards {
	return &Dashboards{users: users, consultations: consultations}
}

// Admin returns global counts and the most recently created consultations.
func (d *Dashboards) Admin(ctx context.Context) (dto.AdminDashboard, error) {
	var out dto.AdminDashboard
	var err error
	if out.Stats.TotalDoctors, err = d.users.CountUsersByRole(ctx, models.RoleDoctor); err != nil {
		return dto.AdminDashboard{}, apperr.Internal("failed to load dashboard", err)
	}
	if out.Stats.TotalPatients, err = d.users.CountUsersByRole(ctx, models.RolePatient); err != nil {
		return dto.AdminDashboard{}, apperr.Internal("failed to load dashboard", err)
	}
	if out.Stats.TotalConsultations, err = d.consultations.CountConsultations(ctx, ""); err != nil {
		return dto.AdminDashboard{}, apperr.Internal("failed to load dashboard", err)
	}
	if out.Stats.ActiveConsultations, err = d.consultations.CountConsultations(ctx, models.StatusScheduled); err != nil {
		return dto.AdminDashboard{}, apperr.Internal("failed to load dashboard", err)
	}
	if out.RecentConsultations, err = d.consultations.ListRecent(ctx, recentLimit); err != nil {
		return dto.AdminDashboard{}, apperr.Internal("failed to load dashboard", err)
	}
	return out, nil
}

// Doctor returns the doctor's upcoming consultations and last completed ones.
func (d *Dashboards) Doctor(ctx context.Context, doctor models.User) (dto.DoctorDashboard, error) {
	upcoming, err := d.consultations.ListByDoctor(ctx, doctor.ID, models.StatusScheduled, 0)
	if err != nil {
		return dto.DoctorDashboard{}, apperr.Internal("failed to load dashboard", err)
	}
	recent, err := d.consultations.ListByDoctor(ctx, doctor.ID, models.StatusCompleted, recentLimit)
	if err != nil {
		return dto.DoctorDashboard{}, apperr.Internal("failed to load dashboard", err)
	}
	return dto.DoctorDashboard{UpcomingConsultations: upcoming, RecentConsultations: recent, DoctorInfo: doctor}, nil
}

// Patient returns the patient's upcoming and completed consultations.
func (d *Dashboards) Patient(ctx context.Context, patient models.User) (dto.PatientDashboard, error) {
	upcoming, err := d.consultations.ListByPatient(ctx, patient.ID, models.StatusScheduled, 0)
	if err != nil {
		return dto.PatientDashboard{}, apperr.Internal("failed to load dashboard", err)
	}
	past, err := d.consultations.ListByPatient(ctx, patient.ID, models.StatusCompleted, 0)
	if err != nil {
		return dto.PatientDashboard{}, apperr.Internal("failed to load dashboard", err)
	}
	return dto.PatientDashboard{UpcomingConsultations: upcoming, PastConsultations: past, PatientInfo: patient}, nil
}

// Patients lists every patient with their consultation totals.
func (d *Dashboards) Patients(ctx context.Context) (dto.PatientList, error) {
	summaries, err := d.consultations.PatientSummaries(ctx)
	if err != nil {
		return dto.PatientList{}, apperr.Internal("failed to list patients", err)
	}
	return dto.PatientList{Patients: summaries, TotalCount: len(summaries)}, nil
}
