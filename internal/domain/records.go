package domain

// AnalysisType is the kind of a persisted analysis.
type AnalysisType string

const (
	AnalysisSymptom AnalysisType = "symptom"
	AnalysisImage   AnalysisType = "image"
)

// RecordSeverity is the severity scale of persisted records.
type RecordSeverity string

const (
	RecordSeverityLow    RecordSeverity = "low"
	RecordSeverityMedium RecordSeverity = "medium"
	RecordSeverityHigh   RecordSeverity = "high"
)

// DateLayout is the calendar-date format of persisted records.
const DateLayout = "2006-01-02"

// HealthAnalysisRecord is a persisted analysis. Date is YYYY-MM-DD.
type HealthAnalysisRecord struct {
	ID              string         `json:"id"`
	Type            AnalysisType   `json:"type" binding:"required,oneof=symptom image"`
	Date            string         `json:"date" binding:"required"`
	Result          string         `json:"result" binding:"required"`
	Confidence      int            `json:"confidence" binding:"gte=0,lte=100"`
	Severity        RecordSeverity `json:"severity" binding:"required,oneof=low medium high"`
	Symptoms        []string       `json:"symptoms,omitempty"`
	ImageURL        string         `json:"imageUrl,omitempty"`
	Description     string         `json:"description,omitempty"`
	Recommendations []string       `json:"recommendations,omitempty"`
}

// ReminderType enumerates reminder kinds.
type ReminderType string

const (
	ReminderAppointment ReminderType = "appointment"
	ReminderMedication  ReminderType = "medication"
	ReminderHealthCheck ReminderType = "health-check"
	ReminderFollowUp    ReminderType = "follow-up"
)

// Priority is a reminder priority.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// HealthReminder is a user-created reminder.
type HealthReminder struct {
	ID          string       `json:"id"`
	Title       string       `json:"title" binding:"required"`
	Date        string       `json:"date" binding:"required"`
	Time        string       `json:"time"`
	Type        ReminderType `json:"type" binding:"required,oneof=appointment medication health-check follow-up"`
	Description string       `json:"description,omitempty"`
	Completed   bool         `json:"completed"`
	Priority    Priority     `json:"priority" binding:"required,oneof=low medium high"`
}

// ReminderPatch is a partial reminder update; nil fields are left alone.
type ReminderPatch struct {
	Title       *string       `json:"title"`
	Date        *string       `json:"date"`
	Time        *string       `json:"time"`
	Type        *ReminderType `json:"type" binding:"omitempty,oneof=appointment medication health-check follow-up"`
	Description *string       `json:"description"`
	Completed   *bool         `json:"completed"`
	Priority    *Priority     `json:"priority" binding:"omitempty,oneof=low medium high"`
}

// Apply merges the patch into r.
func (p ReminderPatch) Apply(r *HealthReminder) {
	if p.Title != nil {
		r.Title = *p.Title
	}
	if p.Date != nil {
		r.Date = *p.Date
	}
	if p.Time != nil {
		r.Time = *p.Time
	}
	if p.Type != nil {
		r.Type = *p.Type
	}
	if p.Description != nil {
		r.Description = *p.Description
	}
	if p.Completed != nil {
		r.Completed = *p.Completed
	}
	if p.Priority != nil {
		r.Priority = *p.Priority
	}
}

// EmergencyContact is the profile's contact person.
type EmergencyContact struct {
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Relationship string `json:"relationship"`
}

// UserProfile is the single stored profile.
type UserProfile struct {
	ID               string            `json:"id"`
	Name             string            `json:"name"`
	Email            string            `json:"email"`
	Age              int               `json:"age,omitempty"`
	Gender           string            `json:"gender,omitempty"`
	MedicalHistory   []string          `json:"medicalHistory,omitempty"`
	Allergies        []string          `json:"allergies,omitempty"`
	Medications      []string          `json:"medications,omitempty"`
	EmergencyContact *EmergencyContact `json:"emergencyContact,omitempty"`
}

// ProfilePatch is a partial profile update.
type ProfilePatch struct {
	Name             *string           `json:"name"`
	Email            *string           `json:"email" binding:"omitempty,email"`
	Age              *int              `json:"age" binding:"omitempty,gte=0,lte=150"`
	Gender           *string           `json:"gender"`
	MedicalHistory   []string          `json:"medicalHistory"`
	Allergies        []string          `json:"allergies"`
	Medications      []string          `json:"medications"`
	EmergencyContact *EmergencyContact `json:"emergencyContact"`
}

// Apply merges the patch into p.
func (pp ProfilePatch) Apply(p *UserProfile) {
	if pp.Name != nil {
		p.Name = *pp.Name
	}
	if pp.Email != nil {
		p.Email = *pp.Email
	}
	if pp.Age != nil {
		p.Age = *pp.Age
	}
	if pp.Gender != nil {
		p.Gender = *pp.Gender
	}
	if pp.MedicalHistory != nil {
		p.MedicalHistory = pp.MedicalHistory
	}
	if pp.Allergies != nil {
		p.Allergies = pp.Allergies
	}
	if pp.Medications != nil {
		p.Medications = pp.Medications
	}
	if pp.EmergencyContact != nil {
		p.EmergencyContact = pp.EmergencyContact
	}
}

// InsightType enumerates insight kinds.
type InsightType string

const (
	InsightPositive InsightType = "positive"
	InsightWarning  InsightType = "warning"
	InsightInfo     InsightType = "info"
	InsightAlert    InsightType = "alert"
)

// HealthInsight is a short message shown on the dashboard.
type HealthInsight struct {
	ID          string      `json:"id"`
	Type        InsightType `json:"type" binding:"required,oneof=positive warning info alert"`
	Title       string      `json:"title" binding:"required"`
	Description string      `json:"description"`
	Date        string      `json:"date" binding:"required"`
	Actionable  bool        `json:"actionable"`
	ActionURL   string      `json:"actionUrl,omitempty"`
}

// HealthStats are derived aggregates over the analysis history.
type HealthStats struct {
	TotalAnalyses     int `json:"totalAnalyses"`
	ThisWeek          int `json:"thisWeek"`
	ThisMonth         int `json:"thisMonth"`
	Accuracy          int `json:"accuracy"`
	Streak            int `json:"streak"`
	AverageConfidence int `json:"averageConfidence"`
}

// HealthTrend is a per-day aggregate.
type HealthTrend struct {
	Date       string `json:"date"`
	Analyses   int    `json:"analyses"`
	Accuracy   int    `json:"accuracy"`
	Confidence int    `json:"confidence"`
}

// DashboardData bundles everything the dashboard renders.
type DashboardData struct {
	User           UserProfile            `json:"user"`
	Stats          HealthStats            `json:"stats"`
	RecentAnalyses []HealthAnalysisRecord `json:"recentAnalyses"`
	Insights       []HealthInsight        `json:"insights"`
	Reminders      []HealthReminder       `json:"reminders"`
	Trends         []HealthTrend          `json:"trends"`
}
