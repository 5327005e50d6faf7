package dto

import "github.com/hongminglow/kalafo-api/internal/models"

type AdminStats struct {
	TotalDoctors        int64 `json:"total_doctors"`
	TotalPatients       int64 `json:"total_patients"`
	TotalConsultations  int64 `json:"total_consultations"`
	ActiveConsultations int64 `json:"active_consultations"`
}

type AdminDashboard struct {
	Stats               AdminStats            `json:"stats"`
	RecentConsultations []models.Consultation `json:"recent_consultations"`
}

type DoctorDashboard struct {
	UpcomingConsultations []models.Consultation `json:"upcoming_consultations"`
	RecentConsultations   []models.Consultation `json:"recent_consultations"`
	DoctorInfo            models.User           `json:"doctor_info"`
}

type PatientDashboard struct {
	UpcomingConsultations []models.Consultation `json:"upcoming_consultations"`
	PastConsultations     []models.Consultation `json:"past_consultations"`
	PatientInfo           models.User           `json:"patient_info"`
}

type UserList struct {
	Users []models.User `json:"users"`
}

type PatientList struct {
	Patients   []models.PatientSummary `json:"patients"`
	TotalCount int                     `json:"total_count"`
}
