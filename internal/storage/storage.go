package storage

import (
	"context"
	"errors"

	"github.com/hongminglow/kalafo-api/internal/models"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness conflict.
var ErrAlreadyExists = errors.New("record already exists")

// ErrConflict indicates a conditional write lost against a concurrent change.
var ErrConflict = errors.New("record changed concurrently")

// UserStore captures persistence operations for user accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	FindByID(ctx context.Context, id int64) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	SetUserActive(ctx context.Context, id int64, active bool) (models.User, error)
	CountUsersByRole(ctx context.Context, role models.Role) (int64, error)
}

// ConsultationStore captures persistence operations for consultations.
// A limit of zero or less means unbounded. Listings filtered by status are
// ordered by scheduled_time following status.Ascending, then by id.
type ConsultationStore interface {
	CreateConsultation(ctx context.Context, c models.Consultation) (models.Consultation, error)
	GetConsultation(ctx context.Context, id int64) (models.Consultation, error)
	UpdateConsultationStatus(ctx context.Context, id int64, update models.StatusUpdate) (models.Consultation, error)
	ListByDoctor(ctx context.Context, doctorID int64, status models.ConsultationStatus, limit int) ([]models.Consultation, error)
	ListByPatient(ctx context.Context, patientID int64, status models.ConsultationStatus, limit int) ([]models.Consultation, error)
	ListRecent(ctx context.Context, limit int) ([]models.Consultation, error)
	CountConsultations(ctx context.Context, status models.ConsultationStatus) (int64, error)
	PatientSummaries(ctx context.Context) ([]models.PatientSummary, error)
}

// Store is the full persistence surface used by the services.
type Store interface {
	UserStore
	ConsultationStore
	Close()
}
