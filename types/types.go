// Package types holds the patient-facing data models exchanged with the
// clinic backend. Field names follow the backend's JSON contract
// (snake_case); optional fields are pointers so a missing value is
// distinguishable from a zero one.
package types

import "time"

// RoleType identifies what kind of account a user holds.
type RoleType string

const (
	RoleAdmin     RoleType = "admin"
	RoleSecretary RoleType = "secretary"
	RoleDoctor    RoleType = "doctor"
	RolePatient   RoleType = "patient"
)

// AppointmentStatus is the backend's appointment lifecycle state.
type AppointmentStatus string

const (
	AppointmentScheduled      AppointmentStatus = "scheduled"
	AppointmentCheckedIn      AppointmentStatus = "checked_in"
	AppointmentInConsultation AppointmentStatus = "in_consultation"
	AppointmentCompleted      AppointmentStatus = "completed"
	AppointmentCancelled      AppointmentStatus = "cancelled"
)

// User is an account as returned by /auth/me.
type User struct {
	ID         int64    `json:"id"`
	Username   string   `json:"username"`
	Email      string   `json:"email"`
	FirstName  *string  `json:"first_name,omitempty"`
	LastName   *string  `json:"last_name,omitempty"`
	Role       RoleType `json:"role"`
	IsActive   bool     `json:"is_active"`
	IsVerified bool     `json:"is_verified"`
	ClinicID   int64    `json:"clinic_id"`
}

// Patient is the patient profile behind /patients/me.
type Patient struct {
	ID                           int64   `json:"id"`
	FirstName                    string  `json:"first_name"`
	LastName                     string  `json:"last_name"`
	DateOfBirth                  string  `json:"date_of_birth"`
	Gender                       string  `json:"gender"`
	Phone                        string  `json:"phone"`
	Email                        string  `json:"email"`
	Address                      *string `json:"address,omitempty"`
	EmergencyContactName         *string `json:"emergency_contact_name,omitempty"`
	EmergencyContactPhone        *string `json:"emergency_contact_phone,omitempty"`
	EmergencyContactRelationship *string `json:"emergency_contact_relationship,omitempty"`
	Allergies                    *string `json:"allergies,omitempty"`
	ActiveProblems               *string `json:"active_problems,omitempty"`
	BloodType                    *string `json:"blood_type,omitempty"`
	Notes                        *string `json:"notes,omitempty"`
	IsActive                     bool    `json:"is_active"`
	ClinicID                     int64   `json:"clinic_id"`
	CreatedAt                    string  `json:"created_at"`
	UpdatedAt                    *string `json:"updated_at,omitempty"`
}

// Appointment is a booked or historical consultation.
type Appointment struct {
	ID                 int64             `json:"id"`
	PatientID          int64             `json:"patient_id"`
	DoctorID           int64             `json:"doctor_id"`
	ScheduledDatetime  time.Time         `json:"scheduled_datetime"`
	DurationMinutes    int               `json:"duration_minutes"`
	Status             AppointmentStatus `json:"status"`
	AppointmentType    string            `json:"appointment_type,omitempty"`
	Reason             *string           `json:"reason,omitempty"`
	Notes              *string           `json:"notes,omitempty"`
	Diagnosis          *string           `json:"diagnosis,omitempty"`
	TreatmentPlan      *string           `json:"treatment_plan,omitempty"`
	CancelledAt        *string           `json:"cancelled_at,omitempty"`
	CancellationReason *string           `json:"cancellation_reason,omitempty"`
	ClinicID           int64             `json:"clinic_id"`
	CreatedAt          string            `json:"created_at"`
	UpdatedAt          *string           `json:"updated_at,omitempty"`
	DoctorName         *string           `json:"doctor_name,omitempty"`
	PatientName        *string           `json:"patient_name,omitempty"`

	// Pending marks a booking that was accepted locally while the
	// backend was unreachable. The LocalRef identifies the queued
	// mutation; the backend has not assigned an ID yet.
	Pending  bool   `json:"pending,omitempty"`
	LocalRef string `json:"local_ref,omitempty"`
}

// AvailabilitySlot is one entry of a doctor's availability for a day.
type AvailabilitySlot struct {
	Time      string `json:"time"`
	Available bool   `json:"available"`
}

// BookingRequest is the payload for booking an appointment.
type BookingRequest struct {
	PatientID         int64     `json:"patient_id,omitempty"`
	DoctorID          int64     `json:"doctor_id"`
	ClinicID          int64     `json:"clinic_id,omitempty"`
	ScheduledDatetime time.Time `json:"scheduled_datetime"`
	Reason            *string   `json:"reason,omitempty"`
	AppointmentType   string    `json:"appointment_type"`
}

// ClinicalRecord is a SOAP-format entry of the patient's history.
type ClinicalRecord struct {
	ID            int64   `json:"id"`
	AppointmentID int64   `json:"appointment_id"`
	Subjective    *string `json:"subjective,omitempty"`
	Objective     *string `json:"objective,omitempty"`
	Assessment    *string `json:"assessment,omitempty"`
	Plan          *string `json:"plan,omitempty"`
	Notes         *string `json:"notes,omitempty"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     *string `json:"updated_at,omitempty"`
}

// Prescription is a medication order visible to the patient.
type Prescription struct {
	ID           int64   `json:"id"`
	Medication   string  `json:"medication"`
	Dosage       string  `json:"dosage"`
	Instructions *string `json:"instructions,omitempty"`
	PrescribedBy *string `json:"prescribed_by,omitempty"`
	CreatedAt    string  `json:"created_at"`
}

// TestResult is an exam result document reference.
type TestResult struct {
	ID        int64   `json:"id"`
	ExamType  string  `json:"exam_type"`
	FileURL   *string `json:"file_url,omitempty"`
	Status    *string `json:"status,omitempty"`
	CreatedAt string  `json:"created_at"`
}

// Invoice is a billing document from /financial/invoices/me.
type Invoice struct {
	ID          int64   `json:"id"`
	Amount      float64 `json:"amount"`
	Status      string  `json:"status"`
	Description *string `json:"description,omitempty"`
	DueDate     *string `json:"due_date,omitempty"`
	CreatedAt   string  `json:"created_at"`
}

// MessageThread is a conversation between a patient and a provider.
type MessageThread struct {
	ID          int64     `json:"id"`
	Subject     string    `json:"subject"`
	ProviderID  int64     `json:"provider_id"`
	UnreadCount int       `json:"unread_count"`
	UpdatedAt   string    `json:"updated_at"`
	Messages    []Message `json:"messages,omitempty"`
}

// Message is a single entry in a thread.
type Message struct {
	ID        int64  `json:"id"`
	ThreadID  int64  `json:"thread_id"`
	SenderID  int64  `json:"sender_id"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}

// Notification is an in-app notification item.
type Notification struct {
	ID       int64  `json:"id"`
	Kind     string `json:"kind"`
	SourceID int64  `json:"source_id"`
	Title    string `json:"title"`
	Body     string `json:"body"`
	Read     bool   `json:"read"`
	SentAt   string `json:"sent_at"`
}

// SupportTicket is a help-desk ticket raised by the patient.
type SupportTicket struct {
	ID        int64   `json:"id"`
	Subject   string  `json:"subject"`
	Message   string  `json:"message"`
	Priority  *string `json:"priority,omitempty"`
	Status    string  `json:"status"`
	CreatedAt string  `json:"created_at"`
}

// HelpArticle is a knowledge-base entry.
type HelpArticle struct {
	ID       int64  `json:"id"`
	Category string `json:"category"`
	Title    string `json:"title"`
	Content  string `json:"content"`
}

// UserSettings are per-account preferences stored server side.
type UserSettings struct {
	Language             *string `json:"language,omitempty"`
	NotificationsEnabled *bool   `json:"notifications_enabled,omitempty"`
	EmailReminders       *bool   `json:"email_reminders,omitempty"`
	SMSReminders         *bool   `json:"sms_reminders,omitempty"`
}

// LoginResponse is returned by /auth/login, /auth/register and
// /auth/refresh.
type LoginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	User         *User  `json:"user,omitempty"`
}

// APIError is the backend's error body shape. The detail field carries
// the human-readable reason.
type APIError struct {
	Detail  string  `json:"detail"`
	Message *string `json:"message,omitempty"`
}
