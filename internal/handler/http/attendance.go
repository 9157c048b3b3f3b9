package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hris-presence-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-presence-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-presence-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-presence-go/internal/handler/http/response"
)

type AttendanceHandler interface {
	Scan(w http.ResponseWriter, r *http.Request)
	ListEvents(w http.ResponseWriter, r *http.Request)

	ListPresence(w http.ResponseWriter, r *http.Request)
	GetMyPresence(w http.ResponseWriter, r *http.Request)

	GetMyCredential(w http.ResponseWriter, r *http.Request)
	RegenerateMyCredential(w http.ResponseWriter, r *http.Request)
	RegenerateCredential(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
	}
}

// Scan records one badge event for the credential holder.
func (h *attendanceHandlerImpl) Scan(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	var req attendance.ScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Debug("Failed to decode scan request", "error", err)
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.attendanceService.Scan(r.Context(), actor, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Scan recorded", result)
}

func (h *attendanceHandlerImpl) ListEvents(w http.ResponseWriter, r *http.Request) {
	filter := attendance.BadgeEventFilter{
		EmployeeID: getOptionalQueryParam(r, "employee_id"),
		Date:       getOptionalQueryParam(r, "date"),
		StartDate:  getOptionalQueryParam(r, "start_date"),
		EndDate:    getOptionalQueryParam(r, "end_date"),
		EventType:  getOptionalQueryParam(r, "event_type"),
		Page:       getIntQueryParam(r, "page", 0),
		Limit:      getIntQueryParam(r, "limit", 0),
	}

	result, err := h.attendanceService.ListEvents(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *attendanceHandlerImpl) ListPresence(w http.ResponseWriter, r *http.Request) {
	filter := presenceFilterFromQuery(r)

	result, err := h.attendanceService.ListPresence(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetMyPresence lists the caller's own presence records. Any employee_id in the query is ignored.
func (h *attendanceHandlerImpl) GetMyPresence(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok || actor.EmployeeID == nil {
		response.Unauthorized(w, "employee_id claim is missing or invalid")
		return
	}

	filter := presenceFilterFromQuery(r)
	filter.EmployeeID = actor.EmployeeID

	result, err := h.attendanceService.ListPresence(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *attendanceHandlerImpl) GetMyCredential(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok || actor.EmployeeID == nil {
		response.Unauthorized(w, "employee_id claim is missing or invalid")
		return
	}

	result, err := h.attendanceService.GetActiveCredential(r.Context(), *actor.EmployeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *attendanceHandlerImpl) RegenerateMyCredential(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok || actor.EmployeeID == nil {
		response.Unauthorized(w, "employee_id claim is missing or invalid")
		return
	}

	h.regenerate(w, r, *actor.EmployeeID)
}

func (h *attendanceHandlerImpl) RegenerateCredential(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := idParam(w, r, "id", employee.ErrEmployeeNotFound)
	if !ok {
		return
	}

	h.regenerate(w, r, employeeID)
}

func (h *attendanceHandlerImpl) regenerate(w http.ResponseWriter, r *http.Request, employeeID string) {
	result, err := h.attendanceService.RegenerateCredential(r.Context(), employeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Badge credential issued", result)
}

func presenceFilterFromQuery(r *http.Request) attendance.PresenceFilter {
	return attendance.PresenceFilter{
		EmployeeID: getOptionalQueryParam(r, "employee_id"),
		Date:       getOptionalQueryParam(r, "date"),
		StartDate:  getOptionalQueryParam(r, "start_date"),
		EndDate:    getOptionalQueryParam(r, "end_date"),
		Status:     getOptionalQueryParam(r, "status"),
		Page:       getIntQueryParam(r, "page", 0),
		Limit:      getIntQueryParam(r, "limit", 0),
		SortOrder:  r.URL.Query().Get("sort_order"),
	}
}
