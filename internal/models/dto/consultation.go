package dto

import "github.com/hongminglow/kalafo-api/internal/models"

type CreateConsultationRequest struct {
	PatientID     int64   `json:"patient_id"`
	DoctorID      int64   `json:"doctor_id"`
	ScheduledTime string  `json:"scheduled_time"`
	Notes         *string `json:"notes"`
}

type UpdateConsultationRequest struct {
	Status    string  `json:"status"`
	Notes     *string `json:"notes"`
	Diagnosis *string `json:"diagnosis"`
}

type ConsultationList struct {
	Consultations []models.Consultation `json:"consultations"`
	TotalCount    int                   `json:"total_count"`
}
