package mongo

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/kalafo-api/internal/models"
	"github.com/hongminglow/kalafo-api/internal/storage"
)

// TestStoreIntegration runs against a live MongoDB in a throwaway database.
func TestStoreIntegration(t *testing.T) {
	uri := os.Getenv("MONGO_URI")
	if os.Getenv("RUN_STORE_INTEGRATION") != "true" || uri == "" {
		t.Skip("set RUN_STORE_INTEGRATION=true and MONGO_URI to run this integration test")
	}

	ctx := context.Background()
	store, err := NewStore(ctx, uri, fmt.Sprintf("kalafo_test_%d", time.Now().UnixNano()))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = store.db.Drop(context.Background())
		store.Close()
	})

	doctor, err := store.CreateUser(ctx, models.User{Email: "doc@kalafo.com", PasswordHash: "h", Role: models.RoleDoctor, FirstName: "Lerato", LastName: "Dube", IsActive: true})
	require.NoError(t, err)
	patient, err := store.CreateUser(ctx, models.User{Email: "pat@kalafo.com", PasswordHash: "h", Role: models.RolePatient, FirstName: "Sipho", LastName: "Nkosi", IsActive: true})
	require.NoError(t, err)
	assert.Greater(t, patient.ID, doctor.ID)

	_, err = store.CreateUser(ctx, models.User{Email: "doc@kalafo.com", PasswordHash: "h", Role: models.RoleDoctor})
	require.ErrorIs(t, err, storage.ErrAlreadyExists)
	_, err = store.FindByEmail(ctx, "DOC@kalafo.com")
	require.ErrorIs(t, err, storage.ErrNotFound)

	now := time.Now().UTC().Truncate(time.Millisecond)
	later, err := store.CreateConsultation(ctx, models.Consultation{PatientID: patient.ID, DoctorID: doctor.ID, ScheduledTime: now.Add(48 * time.Hour), Status: models.StatusScheduled})
	require.NoError(t, err)
	sooner, err := store.CreateConsultation(ctx, models.Consultation{PatientID: patient.ID, DoctorID: doctor.ID, ScheduledTime: now.Add(time.Hour), Status: models.StatusScheduled})
	require.NoError(t, err)
	require.NotNil(t, sooner.DoctorName)
	assert.Equal(t, "Dr. Lerato Dube", *sooner.DoctorName)

	_, err = store.CreateConsultation(ctx, models.Consultation{PatientID: 9999, DoctorID: doctor.ID, ScheduledTime: now, Status: models.StatusScheduled})
	require.ErrorIs(t, err, storage.ErrNotFound)

	upcoming, err := store.ListByDoctor(ctx, doctor.ID, models.StatusScheduled, 0)
	require.NoError(t, err)
	require.Len(t, upcoming, 2)
	assert.Equal(t, sooner.ID, upcoming[0].ID)
	assert.Equal(t, later.ID, upcoming[1].ID)

	diagnosis := "flu"
	done, err := store.UpdateConsultationStatus(ctx, sooner.ID, models.StatusUpdate{From: models.StatusScheduled, To: models.StatusCompleted, Diagnosis: &diagnosis})
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, done.Status)
	_, err = store.UpdateConsultationStatus(ctx, sooner.ID, models.StatusUpdate{From: models.StatusScheduled, To: models.StatusCancelled})
	require.ErrorIs(t, err, storage.ErrConflict)

	count, err := store.CountConsultations(ctx, models.StatusScheduled)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	summaries, err := store.PatientSummaries(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, int64(2), summaries[0].ConsultationCount)
	require.NotNil(t, summaries[0].LastConsultation)
	assert.True(t, later.ScheduledTime.Equal(*summaries[0].LastConsultation))
}
