package leave

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-presence-go/internal/pkg/validator"
)

const dateLayout = "2006-01-02"

type CreateLeaveRequestRequest struct {
	LeaveType   string `json:"leave_type" validate:"required,max=50"`
	StartDate   string `json:"start_date" validate:"required,date"`
	EndDate     string `json:"end_date" validate:"required,date"`
	Description string `json:"description" validate:"max=2000"`
}

func (r *CreateLeaveRequestRequest) Validate() error {
	r.LeaveType = strings.TrimSpace(r.LeaveType)
	if err := validator.Struct(r); err != nil {
		return err
	}

	start, _ := time.Parse(dateLayout, r.StartDate)
	end, _ := time.Parse(dateLayout, r.EndDate)
	if end.Before(start) {
		return validator.ValidationErrors{{
			Field:   "end_date",
			Message: "end_date must not be before start_date",
		}}
	}
	return nil
}

// TransitionRequest is the admin-facing status change. Any field besides status is optional.
type TransitionRequest struct {
	RequestID   string  `json:"-"`
	Status      string  `json:"status" validate:"required,status"`
	Reason      *string `json:"reason,omitempty" validate:"omitempty,max=1000"`
	LeaveType   *string `json:"leave_type,omitempty" validate:"omitempty,min=1,max=50"`
	StartDate   *string `json:"start_date,omitempty" validate:"omitempty,date"`
	EndDate     *string `json:"end_date,omitempty" validate:"omitempty,date"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=2000"`
}

func (r *TransitionRequest) Validate() error {
	r.Status = strings.ToLower(strings.TrimSpace(r.Status))
	if err := validator.Struct(r); err != nil {
		return err
	}
	if validator.IsEmpty(r.RequestID) {
		return validator.ValidationErrors{{
			Field:   "id",
			Message: "leave request id is required",
		}}
	}
	return nil
}

// Updates converts the optional fields into FieldUpdates. Call after Validate.
func (r TransitionRequest) Updates() FieldUpdates {
	u := FieldUpdates{
		LeaveType:   r.LeaveType,
		Description: r.Description,
	}
	if r.StartDate != nil {
		if t, err := time.Parse(dateLayout, *r.StartDate); err == nil {
			u.StartDate = &t
		}
	}
	if r.EndDate != nil {
		if t, err := time.Parse(dateLayout, *r.EndDate); err == nil {
			u.EndDate = &t
		}
	}
	return u
}

type LeaveRequestFilter struct {
	EmployeeID *string `json:"employee_id,omitempty"`
	Status     *string `json:"status,omitempty"`

	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func (f *LeaveRequestFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Page < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "page",
			Message: "page must be a positive number",
		})
	}
	if f.Page == 0 {
		f.Page = 1
	}

	if f.Limit < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must be a positive number",
		})
	}
	if f.Limit == 0 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must not exceed 100",
		})
	}

	errs = append(errs, validator.UUIDField("employee_id", f.EmployeeID)...)

	if f.Status != nil && !validator.IsValidStatus(*f.Status) {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be lowercase letters and underscores",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type LeaveRequestResponse struct {
	ID           string             `json:"id"`
	EmployeeID   string             `json:"employee_id"`
	EmployeeName *string            `json:"employee_name,omitempty"`
	LeaveType    string             `json:"leave_type"`
	StartDate    string             `json:"start_date"`
	EndDate      string             `json:"end_date"`
	Description  string             `json:"description"`
	Status       LeaveRequestStatus `json:"status"`
	CreatedAt    string             `json:"created_at"`
	UpdatedAt    string             `json:"updated_at"`
}

type ListLeaveRequestResponse struct {
	TotalCount    int64                  `json:"total_count"`
	Page          int                    `json:"page"`
	Limit         int                    `json:"limit"`
	TotalPages    int                    `json:"total_pages"`
	LeaveRequests []LeaveRequestResponse `json:"leave_requests"`
}

type AuditResponse struct {
	ID             string      `json:"id"`
	LeaveRequestID string      `json:"leave_request_id"`
	AdminID        *string     `json:"admin_id,omitempty"`
	Action         AuditAction `json:"action"`
	Reason         *string     `json:"reason,omitempty"`
	CreatedAt      string      `json:"created_at"`
}

func ToLeaveRequestResponse(r LeaveRequest) LeaveRequestResponse {
	return LeaveRequestResponse{
		ID:           r.ID,
		EmployeeID:   r.EmployeeID,
		EmployeeName: r.EmployeeName,
		LeaveType:    r.LeaveType,
		StartDate:    r.StartDate.Format(dateLayout),
		EndDate:      r.EndDate.Format(dateLayout),
		Description:  r.Description,
		Status:       r.Status,
		CreatedAt:    r.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    r.UpdatedAt.Format(time.RFC3339),
	}
}

func ToAuditResponse(a Audit) AuditResponse {
	return AuditResponse{
		ID:             a.ID,
		LeaveRequestID: a.LeaveRequestID,
		AdminID:        a.AdminID,
		Action:         a.Action,
		Reason:         a.Reason,
		CreatedAt:      a.CreatedAt.Format(time.RFC3339),
	}
}
