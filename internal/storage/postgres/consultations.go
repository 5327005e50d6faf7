package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/hongminglow/kalafo-api/internal/models"
	"github.com/hongminglow/kalafo-api/internal/storage"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const foreignKeyViolation = "23503"

// consultationSelect joins the participants so every row carries display names.
const consultationSelect = `
	SELECT c.id, c.patient_id, c.doctor_id,
		p.first_name || ' ' || p.last_name,
		'Dr. ' || d.first_name || ' ' || d.last_name,
		c.scheduled_time, c.status, c.notes, c.diagnosis, c.created_at
	FROM consultations c
	LEFT JOIN users p ON p.id = c.patient_id
	LEFT JOIN users d ON d.id = c.doctor_id
`

// CreateConsultation inserts a consultation. A dangling participant id maps to storage.ErrNotFound.
func (s *Store) CreateConsultation(ctx context.Context, c models.Consultation) (models.Consultation, error) {
	if c.Status == "" {
		c.Status = models.StatusScheduled
	}
	const insert = `
		INSERT INTO consultations (patient_id, doctor_id, scheduled_time, status, notes, diagnosis)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	var id int64
	err := s.pool.QueryRow(ctx, insert, c.PatientID, c.DoctorID, c.ScheduledTime.UTC(), string(c.Status), c.Notes, c.Diagnosis).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
			return models.Consultation{}, fmt.Errorf("consultation participant: %w", storage.ErrNotFound)
		}
		return models.Consultation{}, fmt.Errorf("insert consultation: %w", err)
	}
	return s.GetConsultation(ctx, id)
}

// GetConsultation fetches one consultation by id.
func (s *Store) GetConsultation(ctx context.Context, id int64) (models.Consultation, error) {
	return scanConsultation(s.pool.QueryRow(ctx, consultationSelect+` WHERE c.id = $1`, id))
}

// UpdateConsultationStatus applies update only while the row is still in update.From.
// The write and the re-read share one transaction so a failure leaves no partial change.
func (s *Store) UpdateConsultationStatus(ctx context.Context, id int64, update models.StatusUpdate) (models.Consultation, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return models.Consultation{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	const stmt = `
		UPDATE consultations
		SET status = $3,
			notes = COALESCE($4, notes),
			diagnosis = COALESCE($5, diagnosis)
		WHERE id = $1 AND status = $2
	`
	tag, err := tx.Exec(ctx, stmt, id, string(update.From), string(update.To), update.Notes, update.Diagnosis)
	if err != nil {
		return models.Consultation{}, fmt.Errorf("update consultation status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM consultations WHERE id = $1)`, id).Scan(&exists); err != nil {
			return models.Consultation{}, fmt.Errorf("check consultation: %w", err)
		}
		if !exists {
			return models.Consultation{}, storage.ErrNotFound
		}
		return models.Consultation{}, storage.ErrConflict
	}

	updated, err := scanConsultation(tx.QueryRow(ctx, consultationSelect+` WHERE c.id = $1`, id))
	if err != nil {
		return models.Consultation{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return models.Consultation{}, fmt.Errorf("commit: %w", err)
	}
	return updated, nil
}

// ListByDoctor returns a doctor's consultations with the given status.
func (s *Store) ListByDoctor(ctx context.Context, doctorID int64, status models.ConsultationStatus, limit int) ([]models.Consultation, error) {
	return s.listFor(ctx, "c.doctor_id", doctorID, status, limit)
}

// ListByPatient returns a patient's consultations with the given status.
func (s *Store) ListByPatient(ctx context.Context, patientID int64, status models.ConsultationStatus, limit int) ([]models.Consultation, error) {
	return s.listFor(ctx, "c.patient_id", patientID, status, limit)
}

// listFor builds the participant listing. column is always a package constant.
func (s *Store) listFor(ctx context.Context, column string, id int64, status models.ConsultationStatus, limit int) ([]models.Consultation, error) {
	direction := "DESC"
	if status.Ascending() {
		direction = "ASC"
	}
	query := consultationSelect + fmt.Sprintf(`
		WHERE %s = $1 AND ($2 = '' OR c.status = $2)
		ORDER BY c.scheduled_time %s, c.id %s
		LIMIT NULLIF($3, 0)
	`, column, direction, direction)
	return s.queryConsultations(ctx, query, id, string(status), clampLimit(limit))
}

// ListRecent returns the latest consultations by creation time.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]models.Consultation, error) {
	query := consultationSelect + `
		ORDER BY c.created_at DESC, c.id DESC
		LIMIT NULLIF($1, 0)
	`
	return s.queryConsultations(ctx, query, clampLimit(limit))
}

// CountConsultations counts consultations, optionally filtered by status.
func (s *Store) CountConsultations(ctx context.Context, status models.ConsultationStatus) (int64, error) {
	var n int64
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM consultations WHERE $1 = '' OR status = $1`, string(status)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count consultations: %w", err)
	}
	return n, nil
}

// PatientSummaries aggregates consultation totals for every patient in one pass.
func (s *Store) PatientSummaries(ctx context.Context) ([]models.PatientSummary, error) {
	const query = `
		SELECT u.id, u.email, u.password_hash, u.role, u.first_name, u.last_name, u.created_at, u.is_active,
			COUNT(c.id), MAX(c.scheduled_time)
		FROM users u
		LEFT JOIN consultations c ON c.patient_id = u.id
		WHERE u.role = 'patient'
		GROUP BY u.id
		ORDER BY u.id
	`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("patient summaries: %w", err)
	}
	defer rows.Close()

	out := make([]models.PatientSummary, 0)
	for rows.Next() {
		var summary models.PatientSummary
		var role string
		if err := rows.Scan(&summary.ID, &summary.Email, &summary.PasswordHash, &role, &summary.FirstName, &summary.LastName,
			&summary.CreatedAt, &summary.IsActive, &summary.ConsultationCount, &summary.LastConsultation); err != nil {
			return nil, fmt.Errorf("scan patient summary: %w", err)
		}
		summary.Role = models.Role(role)
		summary.CreatedAt = summary.CreatedAt.UTC()
		if summary.LastConsultation != nil {
			last := summary.LastConsultation.UTC()
			summary.LastConsultation = &last
		}
		out = append(out, summary)
	}
	return out, rows.Err()
}

func (s *Store) queryConsultations(ctx context.Context, query string, args ...any) ([]models.Consultation, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query consultations: %w", err)
	}
	defer rows.Close()

	out := make([]models.Consultation, 0)
	for rows.Next() {
		c, err := scanConsultation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanConsultation(row pgx.Row) (models.Consultation, error) {
	var c models.Consultation
	var status string
	err := row.Scan(&c.ID, &c.PatientID, &c.DoctorID, &c.PatientName, &c.DoctorName,
		&c.ScheduledTime, &status, &c.Notes, &c.Diagnosis, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Consultation{}, storage.ErrNotFound
		}
		return models.Consultation{}, fmt.Errorf("scan consultation: %w", err)
	}
	c.Status = models.ConsultationStatus(status)
	c.ScheduledTime = c.ScheduledTime.UTC()
	c.CreatedAt = c.CreatedAt.UTC()
	return c, nil
}

func clampLimit(limit int) int {
	if limit < 0 {
		return 0
	}
	return limit
}
