package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/kalafo-api/internal/models"
	"github.com/hongminglow/kalafo-api/internal/storage"
)

func seedPair(t *testing.T, s *Store) (models.User, models.User) {
	t.Helper()
	ctx := context.Background()
	patient, err := s.CreateUser(ctx, models.User{Email: "p@kalafo.com", Role: models.RolePatient, FirstName: "Karabo", LastName: "Smith", IsActive: true})
	require.NoError(t, err)
	doctor, err := s.CreateUser(ctx, models.User{Email: "d@kalafo.com", Role: models.RoleDoctor, FirstName: "Lerato", LastName: "Tebza", IsActive: true})
	require.NoError(t, err)
	return patient, doctor
}

func TestCreateUserRejectsDuplicateEmail(t *testing.T) {
	s := New()
	ctx := context.Background()

	_, err := s.CreateUser(ctx, models.User{Email: "a@kalafo.com", Role: models.RoleAdmin})
	require.NoError(t, err)
	_, err = s.CreateUser(ctx, models.User{Email: "a@kalafo.com", Role: models.RolePatient})
	require.ErrorIs(t, err, storage.ErrAlreadyExists)

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestFindByEmailIsExactMatch(t *testing.T) {
	s := New()
	ctx := context.Background()
	_, err := s.CreateUser(ctx, models.User{Email: "Case@kalafo.com", Role: models.RolePatient})
	require.NoError(t, err)

	_, err = s.FindByEmail(ctx, "case@kalafo.com")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestListOrderingFollowsStatus(t *testing.T) {
	s := New()
	ctx := context.Background()
	patient, doctor := seedPair(t, s)
	base := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)

	for _, offset := range []time.Duration{48 * time.Hour, 2 * time.Hour, 24 * time.Hour} {
		_, err := s.CreateConsultation(ctx, models.Consultation{PatientID: patient.ID, DoctorID: doctor.ID, ScheduledTime: base.Add(offset), Status: models.StatusScheduled})
		require.NoError(t, err)
		_, err = s.CreateConsultation(ctx, models.Consultation{PatientID: patient.ID, DoctorID: doctor.ID, ScheduledTime: base.Add(-offset), Status: models.StatusCompleted})
		require.NoError(t, err)
	}

	upcoming, err := s.ListByDoctor(ctx, doctor.ID, models.StatusScheduled, 0)
	require.NoError(t, err)
	require.Len(t, upcoming, 3)
	assert.Equal(t, base.Add(2*time.Hour), upcoming[0].ScheduledTime)
	assert.Equal(t, base.Add(48*time.Hour), upcoming[2].ScheduledTime)
	assert.Equal(t, "Dr. Lerato Tebza", *upcoming[0].DoctorName)
	assert.Equal(t, "Karabo Smith", *upcoming[0].PatientName)

	past, err := s.ListByPatient(ctx, patient.ID, models.StatusCompleted, 2)
	require.NoError(t, err)
	require.Len(t, past, 2)
	assert.Equal(t, base.Add(-2*time.Hour), past[0].ScheduledTime)
	assert.Equal(t, base.Add(-24*time.Hour), past[1].ScheduledTime)
}

func TestListRecentByCreation(t *testing.T) {
	clock := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	s := New().WithClock(func() time.Time { clock = clock.Add(time.Minute); return clock })
	ctx := context.Background()
	patient, doctor := seedPair(t, s)

	var ids []int64
	for i := 0; i < 3; i++ {
		c, err := s.CreateConsultation(ctx, models.Consultation{PatientID: patient.ID, DoctorID: doctor.ID, ScheduledTime: clock.Add(-time.Duration(i) * time.Hour)})
		require.NoError(t, err)
		ids = append(ids, c.ID)
	}

	recent, err := s.ListRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, ids[2], recent[0].ID)
	assert.Equal(t, ids[1], recent[1].ID)
}

func TestUpdateConsultationStatusCompareAndSet(t *testing.T) {
	s := New()
	ctx := context.Background()
	patient, doctor := seedPair(t, s)
	c, err := s.CreateConsultation(ctx, models.Consultation{PatientID: patient.ID, DoctorID: doctor.ID, ScheduledTime: time.Now()})
	require.NoError(t, err)
	assert.Equal(t, models.StatusScheduled, c.Status)

	diagnosis := "seasonal flu"
	updated, err := s.UpdateConsultationStatus(ctx, c.ID, models.StatusUpdate{From: models.StatusScheduled, To: models.StatusCompleted, Diagnosis: &diagnosis})
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, updated.Status)
	assert.Equal(t, "seasonal flu", *updated.Diagnosis)

	_, err = s.UpdateConsultationStatus(ctx, c.ID, models.StatusUpdate{From: models.StatusScheduled, To: models.StatusCancelled})
	assert.ErrorIs(t, err, storage.ErrConflict)

	_, err = s.UpdateConsultationStatus(ctx, 999, models.StatusUpdate{From: models.StatusScheduled, To: models.StatusCancelled})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestPatientSummaries(t *testing.T) {
	s := New()
	ctx := context.Background()
	patient, doctor := seedPair(t, s)
	lonely, err := s.CreateUser(ctx, models.User{Email: "l@kalafo.com", Role: models.RolePatient})
	require.NoError(t, err)

	latest := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	for _, at := range []time.Time{latest.Add(-72 * time.Hour), latest} {
		_, err := s.CreateConsultation(ctx, models.Consultation{PatientID: patient.ID, DoctorID: doctor.ID, ScheduledTime: at})
		require.NoError(t, err)
	}

	summaries, err := s.PatientSummaries(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, patient.ID, summaries[0].ID)
	assert.Equal(t, int64(2), summaries[0].ConsultationCount)
	require.NotNil(t, summaries[0].LastConsultation)
	assert.True(t, latest.Equal(*summaries[0].LastConsultation))
	assert.Equal(t, lonely.ID, summaries[1].ID)
	assert.Zero(t, summaries[1].ConsultationCount)
	assert.Nil(t, summaries[1].LastConsultation)
}
