package attendance

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-presence-go/internal/pkg/validator"
)

const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = time.RFC3339
)

// ========================================
// SCAN DTOs
// ========================================

type ScanRequest struct {
	CredentialToken string   `json:"credential_token" validate:"required,max=256"`
	EventType       string   `json:"event_type" validate:"required,oneof=arrival pause_start pause_end departure"`
	Latitude        *float64 `json:"latitude,omitempty" validate:"omitempty,latitude"`
	Longitude       *float64 `json:"longitude,omitempty" validate:"omitempty,longitude"`
	DeviceTag       *string  `json:"device_tag,omitempty" validate:"omitempty,max=64"`
}

func (r *ScanRequest) Validate() error {
	r.CredentialToken = strings.TrimSpace(r.CredentialToken)
	return validator.Struct(r)
}

type BadgeEventResponse struct {
	ID         string    `json:"id"`
	EmployeeID string    `json:"employee_id"`
	WorkDate   string    `json:"work_date"`
	EventType  EventType `json:"event_type"`
	ScannedAt  string    `json:"scanned_at"`
	Latitude   *float64  `json:"latitude,omitempty"`
	Longitude  *float64  `json:"longitude,omitempty"`
	DeviceTag  *string   `json:"device_tag,omitempty"`
}

type PresenceResponse struct {
	ID            string         `json:"id"`
	EmployeeID    string         `json:"employee_id"`
	EmployeeName  *string        `json:"employee_name,omitempty"`
	WorkDate      string         `json:"work_date"`
	Status        PresenceStatus `json:"status"`
	ArrivalTime   *string        `json:"arrival_time,omitempty"`
	DepartureTime *string        `json:"departure_time,omitempty"`
	WorkedMinutes int            `json:"worked_minutes"`
	PauseCount    int            `json:"pause_count"`
	PauseMinutes  int            `json:"pause_minutes"`
	UpdatedAt     string         `json:"updated_at"`
}

type ScanResponse struct {
	Event    BadgeEventResponse `json:"event"`
	Presence PresenceResponse   `json:"presence"`
}

func ToBadgeEventResponse(e BadgeEvent) BadgeEventResponse {
	return BadgeEventResponse{
		ID:         e.ID,
		EmployeeID: e.EmployeeID,
		WorkDate:   e.WorkDate.Format(DateLayout),
		EventType:  e.Type,
		ScannedAt:  e.ScannedAt.Format(DateTimeLayout),
		Latitude:   e.Latitude,
		Longitude:  e.Longitude,
		DeviceTag:  e.DeviceTag,
	}
}

func ToPresenceResponse(p PresenceRecord) PresenceResponse {
	return PresenceResponse{
		ID:            p.ID,
		EmployeeID:    p.EmployeeID,
		EmployeeName:  p.EmployeeName,
		WorkDate:      p.WorkDate.Format(DateLayout),
		Status:        p.Status,
		ArrivalTime:   formatTime(p.ArrivalTime),
		DepartureTime: formatTime(p.DepartureTime),
		WorkedMinutes: p.WorkedMinutes,
		PauseCount:    p.PauseCount,
		PauseMinutes:  p.PauseMinutes,
		UpdatedAt:     p.UpdatedAt.Format(DateTimeLayout),
	}
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(DateTimeLayout)
	return &s
}

// ========================================
// QUERY DTOs
// ========================================

type PresenceFilter struct {
	EmployeeID *string `json:"employee_id,omitempty"`
	Date       *string `json:"date,omitempty"`       // YYYY-MM-DD
	StartDate  *string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate    *string `json:"end_date,omitempty"`   // YYYY-MM-DD
	Status     *string `json:"status,omitempty"`

	// Pagination
	Page  int `json:"page"`
	Limit int `json:"limit"`

	SortOrder string `json:"sort_order"` // asc, desc
}

func (f *PresenceFilter) Validate() error {
	var errs validator.ValidationErrors

	errs = append(errs, validatePaging(&f.Page, &f.Limit)...)
	errs = append(errs, validator.UUIDField("employee_id", f.EmployeeID)...)

	if f.Status != nil {
		if !validator.IsInSlice(*f.Status, AllPresenceStatuses()) {
			errs = append(errs, validator.ValidationError{
				Field:   "status",
				Message: "status must be one of: " + strings.Join(AllPresenceStatuses(), ", "),
			})
		}
	}

	errs = append(errs, validateDateRange(f.Date, f.StartDate, f.EndDate)...)

	if f.SortOrder != "" {
		f.SortOrder = strings.ToLower(f.SortOrder)
		if !validator.IsInSlice(f.SortOrder, []string{"asc", "desc"}) {
			errs = append(errs, validator.ValidationError{
				Field:   "sort_order",
				Message: "sort_order must be one of: asc, desc",
			})
		}
	} else {
		f.SortOrder = "desc"
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type BadgeEventFilter struct {
	EmployeeID *string `json:"employee_id,omitempty"`
	Date       *string `json:"date,omitempty"`
	StartDate  *string `json:"start_date,omitempty"`
	EndDate    *string `json:"end_date,omitempty"`
	EventType  *string `json:"event_type,omitempty"`

	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func (f *BadgeEventFilter) Validate() error {
	var errs validator.ValidationErrors

	errs = append(errs, validatePaging(&f.Page, &f.Limit)...)
	errs = append(errs, validator.UUIDField("employee_id", f.EmployeeID)...)

	if f.EventType != nil && !EventType(*f.EventType).IsValid() {
		errs = append(errs, validator.ValidationError{
			Field:   "event_type",
			Message: "event_type must be one of: arrival, pause_start, pause_end, departure",
		})
	}

	errs = append(errs, validateDateRange(f.Date, f.StartDate, f.EndDate)...)

	if len(errs) > 0 {
		return errs
	}

	return nil
}

func validatePaging(page, limit *int) validator.ValidationErrors {
	var errs validator.ValidationErrors

	if *page < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "page",
			Message: "page must be a positive number",
		})
	}
	if *page == 0 {
		*page = 1
	}

	if *limit < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must be a positive number",
		})
	}
	if *limit == 0 {
		*limit = 20
	}
	if *limit > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must not exceed 100",
		})
	}

	return errs
}

func validateDateRange(date, start, end *string) validator.ValidationErrors {
	var errs validator.ValidationErrors

	if date != nil && *date != "" {
		if _, valid := validator.IsValidDate(*date); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "date",
				Message: "date must be in YYYY-MM-DD format",
			})
		}
		if start != nil || end != nil {
			errs = append(errs, validator.ValidationError{
				Field:   "date",
				Message: "date cannot be combined with start_date or end_date",
			})
		}
	}

	var startDate, endDate time.Time
	var startOK, endOK bool
	if start != nil && *start != "" {
		if startDate, startOK = validator.IsValidDate(*start); !startOK {
			errs = append(errs, validator.ValidationError{
				Field:   "start_date",
				Message: "start_date must be in YYYY-MM-DD format",
			})
		}
	}
	if end != nil && *end != "" {
		if endDate, endOK = validator.IsValidDate(*end); !endOK {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "end_date must be in YYYY-MM-DD format",
			})
		}
	}
	if startOK && endOK && endDate.Before(startDate) {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must not be before start_date",
		})
	}

	return errs
}

type ListPresenceResponse struct {
	TotalCount int64              `json:"total_count"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	TotalPages int                `json:"total_pages"`
	Presences  []PresenceResponse `json:"presences"`
}

type ListBadgeEventResponse struct {
	TotalCount int64                `json:"total_count"`
	Page       int                  `json:"page"`
	Limit      int                  `json:"limit"`
	TotalPages int                  `json:"total_pages"`
	Events     []BadgeEventResponse `json:"events"`
}

// ========================================
// CREDENTIAL DTOs
// ========================================

type CredentialResponse struct {
	ID         string `json:"id"`
	EmployeeID string `json:"employee_id"`
	IsActive   bool   `json:"is_active"`
	CreatedAt  string `json:"created_at"`
}

// IssuedCredentialResponse carries the plaintext token. It is only returned once, at issuance.
type IssuedCredentialResponse struct {
	CredentialResponse
	Token string `json:"token"`
}

func ToCredentialResponse(c BadgeCredential) CredentialResponse {
	return CredentialResponse{
		ID:         c.ID,
		EmployeeID: c.EmployeeID,
		IsActive:   c.IsActive,
		CreatedAt:  c.CreatedAt.Format(DateTimeLayout),
	}
}

// TotalPages computes the page count for a paginated listing.
func TotalPages(total int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
