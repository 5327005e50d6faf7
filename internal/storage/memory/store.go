// Package memory provides an in-process Store used by tests and local runs.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/hongminglow/kalafo-api/internal/models"
	"github.com/hongminglow/kalafo-api/internal/storage"
)

var _ storage.Store = (*Store)(nil)

// Store keeps users and consultations in maps guarded by a mutex.
type Store struct {
	mu            sync.RWMutex
	now           func() time.Time
	nextUserID    int64
	nextConsultID int64
	users         map[int64]models.User
	emails        map[string]int64
	consultations map[int64]models.Consultation
}

// New returns an empty store.
func New() *Store {
	return &Store{
		now:           time.Now,
		users:         make(map[int64]models.User),
		emails:        make(map[string]int64),
		consultations: make(map[int64]models.Consultation),
	}
}

// WithClock sets the function used to stamp created_at.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

func (s *Store) Close() {}

func (s *Store) CreateUser(_ context.Context, user models.User) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.emails[user.Email]; taken {
		return models.User{}, storage.ErrAlreadyExists
	}
	s.nextUserID++
	user.ID = s.nextUserID
	user.CreatedAt = s.now().UTC()
	s.users[user.ID] = user
	s.emails[user.Email] = user.ID
	return user, nil
}

func (s *Store) FindByID(_ context.Context, id int64) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	return user, nil
}

func (s *Store) FindByEmail(_ context.Context, email string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.emails[email]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	return s.users[id], nil
}

func (s *Store) ListUsers(_ context.Context) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.User, 0, len(s.users))
	for _, user := range s.users {
		out = append(out, user)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) SetUserActive(_ context.Context, id int64, active bool) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	user.IsActive = active
	s.users[id] = user
	return user, nil
}

func (s *Store) CountUsersByRole(_ context.Context, role models.Role) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, user := range s.users {
		if user.Role == role {
			n++
		}
	}
	return n, nil
}

func (s *Store) CreateConsultation(_ context.Context, c models.Consultation) (models.Consultation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[c.PatientID]; !ok {
		return models.Consultation{}, fmt.Errorf("patient %d: %w", c.PatientID, storage.ErrNotFound)
	}
	if _, ok := s.users[c.DoctorID]; !ok {
		return models.Consultation{}, fmt.Errorf("doctor %d: %w", c.DoctorID, storage.ErrNotFound)
	}
	if c.Status == "" {
		c.Status = models.StatusScheduled
	}
	s.nextConsultID++
	c.ID = s.nextConsultID
	c.CreatedAt = s.now().UTC()
	c.ScheduledTime = c.ScheduledTime.UTC()
	s.consultations[c.ID] = c
	return s.withNames(c), nil
}

func (s *Store) GetConsultation(_ context.Context, id int64) (models.Consultation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.consultations[id]
	if !ok {
		return models.Consultation{}, storage.ErrNotFound
	}
	return s.withNames(c), nil
}

func (s *Store) UpdateConsultationStatus(_ context.Context, id int64, update models.StatusUpdate) (models.Consultation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.consultations[id]
	if !ok {
		return models.Consultation{}, storage.ErrNotFound
	}
	if c.Status != update.From {
		return models.Consultation{}, storage.ErrConflict
	}
	c.Status = update.To
	if update.Notes != nil {
		c.Notes = update.Notes
	}
	if update.Diagnosis != nil {
		c.Diagnosis = update.Diagnosis
	}
	s.consultations[id] = c
	return s.withNames(c), nil
}

func (s *Store) ListByDoctor(_ context.Context, doctorID int64, status models.ConsultationStatus, limit int) ([]models.Consultation, error) {
	return s.listScheduled(func(c models.Consultation) bool {
		return c.DoctorID == doctorID && (status == "" || c.Status == status)
	}, status.Ascending(), limit), nil
}

func (s *Store) ListByPatient(_ context.Context, patientID int64, status models.ConsultationStatus, limit int) ([]models.Consultation, error) {
	return s.listScheduled(func(c models.Consultation) bool {
		return c.PatientID == patientID && (status == "" || c.Status == status)
	}, status.Ascending(), limit), nil
}

func (s *Store) ListRecent(_ context.Context, limit int) ([]models.Consultation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.collect(func(models.Consultation) bool { return true })
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return truncate(out, limit), nil
}

func (s *Store) CountConsultations(_ context.Context, status models.ConsultationStatus) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, c := range s.consultations {
		if status == "" || c.Status == status {
			n++
		}
	}
	return n, nil
}

func (s *Store) PatientSummaries(_ context.Context) ([]models.PatientSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	byPatient := make(map[int64]*models.PatientSummary)
	for _, user := range s.users {
		if user.Role == models.RolePatient {
			byPatient[user.ID] = &models.PatientSummary{User: user}
		}
	}
	for _, c := range s.consultations {
		summary, ok := byPatient[c.PatientID]
		if !ok {
			continue
		}
		summary.ConsultationCount++
		if summary.LastConsultation == nil || c.ScheduledTime.After(*summary.LastConsultation) {
			at := c.ScheduledTime
			summary.LastConsultation = &at
		}
	}
	out := make([]models.PatientSummary, 0, len(byPatient))
	for _, summary := range byPatient {
		out = append(out, *summary)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) listScheduled(match func(models.Consultation) bool, ascending bool, limit int) []models.Consultation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.collect(match)
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.ScheduledTime.Equal(b.ScheduledTime) {
			if ascending {
				return a.ScheduledTime.Before(b.ScheduledTime)
			}
			return a.ScheduledTime.After(b.ScheduledTime)
		}
		if ascending {
			return a.ID < b.ID
		}
		return a.ID > b.ID
	})
	return truncate(out, limit)
}

// collect must be called with s.mu held.
func (s *Store) collect(match func(models.Consultation) bool) []models.Consultation {
	out := make([]models.Consultation, 0)
	for _, c := range s.consultations {
		if match(c) {
			out = append(out, s.withNames(c))
		}
	}
	return out
}

func (s *Store) withNames(c models.Consultation) models.Consultation {
	if patient, ok := s.users[c.PatientID]; ok {
		name := patient.FullName()
		c.PatientName = &name
	}
	if doctor, ok := s.users[c.DoctorID]; ok {
		name := "Dr. " + doctor.FullName()
		c.DoctorName = &name
	}
	return c
}

func truncate(list []models.Consultation, limit int) []models.Consultation {
	if limit > 0 && len(list) > limit {
		return list[:limit]
	}
	return list
}
