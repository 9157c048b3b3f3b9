package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hris-presence-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-presence-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-presence-go/internal/handler/http/response"
)

type LeaveHandler interface {
	ListRequests(w http.ResponseWriter, r *http.Request)
	GetMyRequests(w http.ResponseWriter, r *http.Request)
	GetRequest(w http.ResponseWriter, r *http.Request)
	CreateRequest(w http.ResponseWriter, r *http.Request)
	UpdateStatus(w http.ResponseWriter, r *http.Request)
	ListAudits(w http.ResponseWriter, r *http.Request)
}

type LeaveHandlerImpl struct {
	leaveService leave.LeaveService
}

func NewLeaveHandler(leaveService leave.LeaveService) LeaveHandler {
	return &LeaveHandlerImpl{
		leaveService: leaveService,
	}
}

// CreateRequest implements LeaveHandler.
func (l *LeaveHandlerImpl) CreateRequest(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	var req leave.CreateLeaveRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Debug("Failed to decode leave request", "error", err)
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := l.leaveService.CreateLeaveRequest(r.Context(), actor, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Leave request submitted", result)
}

// UpdateStatus moves a leave request to a new status on behalf of the calling admin.
func (l *LeaveHandlerImpl) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	requestID, ok := idParam(w, r, "id", leave.ErrLeaveRequestNotFound)
	if !ok {
		return
	}

	var req leave.TransitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Debug("Failed to decode transition request", "error", err)
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.RequestID = requestID

	result, err := l.leaveService.Transition(r.Context(), req, &actor.UserID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave request updated", result)
}

// GetMyRequests implements LeaveHandler.
func (l *LeaveHandlerImpl) GetMyRequests(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	filter := leave.LeaveRequestFilter{
		Status: getOptionalQueryParam(r, "status"),
		Page:   getIntQueryParam(r, "page", 0),
		Limit:  getIntQueryParam(r, "limit", 0),
	}

	result, err := l.leaveService.ListMyLeaveRequests(r.Context(), actor, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ListRequests implements LeaveHandler.
func (l *LeaveHandlerImpl) ListRequests(w http.ResponseWriter, r *http.Request) {
	filter := leave.LeaveRequestFilter{
		EmployeeID: getOptionalQueryParam(r, "employee_id"),
		Status:     getOptionalQueryParam(r, "status"),
		Page:       getIntQueryParam(r, "page", 0),
		Limit:      getIntQueryParam(r, "limit", 0),
	}

	result, err := l.leaveService.ListLeaveRequest(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetRequest implements LeaveHandler.
func (l *LeaveHandlerImpl) GetRequest(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	requestID, ok := idParam(w, r, "id", leave.ErrLeaveRequestNotFound)
	if !ok {
		return
	}

	result, err := l.leaveService.GetLeaveRequest(r.Context(), actor, requestID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (l *LeaveHandlerImpl) ListAudits(w http.ResponseWriter, r *http.Request) {
	requestID, ok := idParam(w, r, "id", leave.ErrLeaveRequestNotFound)
	if !ok {
		return
	}

	result, err := l.leaveService.ListAudits(r.Context(), requestID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
