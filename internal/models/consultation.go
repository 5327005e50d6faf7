package models

import "time"

// ConsultationStatus is the lifecycle state of a consultation.
type ConsultationStatus string

const (
	StatusScheduled ConsultationStatus = "scheduled"
	StatusCompleted ConsultationStatus = "completed"
	StatusCancelled ConsultationStatus = "cancelled"
)

// Valid reports whether s is a known status.
func (s ConsultationStatus) Valid() bool {
	switch s {
	case StatusScheduled, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether a consultation in state s may move to next.
// Only scheduled consultations move, and only to a terminal state.
func (s ConsultationStatus) CanTransitionTo(next ConsultationStatus) bool {
	return s == StatusScheduled && (next == StatusCompleted || next == StatusCancelled)
}

// Ascending reports whether listings filtered by s are ordered oldest first.
// Scheduled lists answer "what's next"; the rest answer "what happened most recently".
func (s ConsultationStatus) Ascending() bool {
	return s == StatusScheduled
}

// Consultation is an appointment linking one patient and one doctor.
type Consultation struct {
	ID            int64              `json:"id"`
	PatientID     int64              `json:"patient_id"`
	DoctorID      int64              `json:"doctor_id"`
	PatientName   *string            `json:"patient_name"`
	DoctorName    *string            `json:"doctor_name"`
	ScheduledTime time.Time          `json:"scheduled_time"`
	Status        ConsultationStatus `json:"status"`
	Notes         *string            `json:"notes"`
	Diagnosis     *string            `json:"diagnosis"`
	CreatedAt     time.Time          `json:"created_at"`
}

// StatusUpdate describes a transition applied to an existing consultation.
type StatusUpdate struct {
	From      ConsultationStatus
	To        ConsultationStatus
	Notes     *string
	Diagnosis *string
}
