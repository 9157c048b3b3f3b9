package http

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-presence-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-presence-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-presence-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-presence-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-presence-go/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-presence-go/internal/pkg/bus"
	"github.com/cmlabs-hris/hris-presence-go/internal/pkg/jwt"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const handlerTestSecret = "test-secret-key-for-jwt"

const (
	employeeUUID       = "3f1c2b7a-9d4e-4f6a-8b2c-1e5d7a9c0b3f"
	leaveRequestUUID   = "0190e1f4-5d3a-7c2b-9a11-6f2d3c4b5a01"
	missingRequestUUID = "0190e1f4-5d3a-7c2b-9a11-6f2d3c4b5a02"
	notificationUUID   = "0190e1f4-5d3a-7c2b-9a11-6f2d3c4b5a03"
	otherNotifUUID     = "0190e1f4-5d3a-7c2b-9a11-6f2d3c4b5a04"
)

type stubAttendanceService struct {
	attendance.AttendanceService

	scanErr     error
	scannedBy   user.Actor
	lastFilter  attendance.PresenceFilter
	regenerated string
}

func (s *stubAttendanceService) Scan(_ context.Context, actor user.Actor, req attendance.ScanRequest) (attendance.ScanResponse, error) {
	s.scannedBy = actor
	if s.scanErr != nil {
		return attendance.ScanResponse{}, s.scanErr
	}
	return attendance.ScanResponse{
		Event:    attendance.BadgeEventResponse{ID: "evt-1", EventType: attendance.EventType(req.EventType)},
		Presence: attendance.PresenceResponse{ID: "pr-1", Status: attendance.StatusPresent},
	}, nil
}

func (s *stubAttendanceService) ListEvents(context.Context, attendance.BadgeEventFilter) (attendance.ListBadgeEventResponse, error) {
	return attendance.ListBadgeEventResponse{Page: 1, Limit: 20}, nil
}

func (s *stubAttendanceService) ListPresence(_ context.Context, filter attendance.PresenceFilter) (attendance.ListPresenceResponse, error) {
	s.lastFilter = filter
	return attendance.ListPresenceResponse{Page: 1, Limit: 20}, nil
}

func (s *stubAttendanceService) RegenerateCredential(_ context.Context, employeeID string) (attendance.IssuedCredentialResponse, error) {
	s.regenerated = employeeID
	return attendance.IssuedCredentialResponse{
		CredentialResponse: attendance.CredentialResponse{ID: "cred-1", EmployeeID: employeeID, IsActive: true},
		Token:              "plaintext",
	}, nil
}

type stubLeaveService struct {
	leave.LeaveService

	transition leave.TransitionRequest
	adminID    *string
}

func (s *stubLeaveService) Transition(_ context.Context, req leave.TransitionRequest, actingAdminID *string) (leave.LeaveRequestResponse, error) {
	s.transition = req
	s.adminID = actingAdminID
	if req.RequestID == missingRequestUUID {
		return leave.LeaveRequestResponse{}, leave.ErrLeaveRequestNotFound
	}
	return leave.LeaveRequestResponse{ID: req.RequestID, Status: leave.LeaveRequestStatus(req.Status)}, nil
}

type stubNotificationService struct {
	notification.Service

	mu     sync.Mutex
	topics []string
	events chan notification.SSEEvent
}

func (s *stubNotificationService) GetNotifications(_ context.Context, recipientID string, page, pageSize int, _ bool) (*notification.NotificationListResponse, error) {
	return &notification.NotificationListResponse{Page: page, PageSize: pageSize}, nil
}

func (s *stubNotificationService) MarkAsRead(_ context.Context, recipientID, id string) (notification.NotificationResponse, error) {
	if id != notificationUUID {
		return notification.NotificationResponse{}, notification.ErrNotificationNotFound
	}
	return notification.NotificationResponse{ID: id, IsRead: true}, nil
}

func (s *stubNotificationService) Subscribe(_ context.Context, topics ...string) (<-chan notification.SSEEvent, func()) {
	s.mu.Lock()
	s.topics = topics
	s.mu.Unlock()
	return s.events, func() {}
}

func (s *stubNotificationService) subscribedTopics() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.topics
}

type routerFixture struct {
	router        http.Handler
	jwt           *jwt.JWTService
	attendance    *stubAttendanceService
	leave         *stubLeaveService
	notifications *stubNotificationService
}

func newRouterFixture(t *testing.T, checks ...HealthCheck) *routerFixture {
	t.Helper()

	f := &routerFixture{
		jwt:           jwt.NewJWTService(handlerTestSecret, time.Hour),
		attendance:    &stubAttendanceService{},
		leave:         &stubLeaveService{},
		notifications: &stubNotificationService{events: make(chan notification.SSEEvent, 1)},
	}
	f.router = NewRouter(
		RouterOptions{AppName: "hris-presence", Env: "test", AllowedOrigins: []string{"*"}, Gatherer: prometheus.NewRegistry()},
		f.jwt,
		NewAttendanceHandler(f.attendance),
		NewLeaveHandler(f.leave),
		NewNotificationHandler(f.notifications, f.jwt),
		NewHealthHandler(checks...),
	)
	return f
}

func (f *routerFixture) token(t *testing.T, role user.Role, employeeID string) string {
	t.Helper()
	actor := user.Actor{UserID: "usr-" + string(role), Role: role}
	if employeeID != "" {
		actor.EmployeeID = &employeeID
	}
	token, _, err := f.jwt.GenerateAccessToken(actor)
	require.NoError(t, err)
	return token
}

func (f *routerFixture) do(t *testing.T, method, path, token string, body interface{}) (*httptest.ResponseRecorder, response.Response) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	var resp response.Response
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	return rec, resp
}

func TestScan_RequiresAccessToken(t *testing.T) {
	f := newRouterFixture(t)

	rec, _ := f.do(t, http.MethodPost, "/api/v1/scans", "", map[string]string{"event_type": "arrival"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	sse, _, err := f.jwt.GenerateSSEToken(user.Actor{UserID: "usr-1", Role: user.RoleEmployee})
	require.NoError(t, err)
	rec, _ = f.do(t, http.MethodPost, "/api/v1/scans", sse, map[string]string{"event_type": "arrival"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "stream tokens are not access tokens")
}

func TestScan_Created(t *testing.T) {
	f := newRouterFixture(t)

	rec, resp := f.do(t, http.MethodPost, "/api/v1/scans", f.token(t, user.RoleEmployee, "emp-1"), map[string]string{
		"credential_token": "tok",
		"event_type":       "arrival",
	})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, resp.Success)
	require.NotNil(t, f.attendance.scannedBy.EmployeeID)
	assert.Equal(t, "emp-1", *f.attendance.scannedBy.EmployeeID)
	assert.Equal(t, user.RoleEmployee, f.attendance.scannedBy.Role)
}

func TestScan_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantErr  string
	}{
		{"sequence violation", attendance.ErrDuplicateArrival, http.StatusConflict, "SEQUENCE_VIOLATION"},
		{"unknown credential", attendance.ErrCredentialNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"other employee", attendance.ErrForbiddenScan, http.StatusForbidden, "FORBIDDEN"},
		{"inactive", attendance.ErrEmployeeInactive, http.StatusForbidden, "FORBIDDEN"},
		{"bad event type", attendance.ErrInvalidEventType, http.StatusUnprocessableEntity, "VALIDATION_ERROR"},
		{"database down", errors.New("connection reset"), http.StatusInternalServerError, "INTERNAL_SERVER_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newRouterFixture(t)
			f.attendance.scanErr = tt.err

			rec, resp := f.do(t, http.MethodPost, "/api/v1/scans", f.token(t, user.RoleEmployee, "emp-1"), map[string]string{
				"credential_token": "tok",
				"event_type":       "arrival",
			})

			assert.Equal(t, tt.wantCode, rec.Code)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantErr, resp.Error.Code)
		})
	}
}

func TestScan_MalformedBody(t *testing.T) {
	f := newRouterFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/scans", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+f.token(t, user.RoleEmployee, "emp-1"))
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBadgeEvents_RequiresViewAll(t *testing.T) {
	f := newRouterFixture(t)

	rec, _ := f.do(t, http.MethodGet, "/api/v1/badge-events", f.token(t, user.RoleEmployee, "emp-1"), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = f.do(t, http.MethodGet, "/api/v1/badge-events?date=2026-03-02", f.token(t, user.RoleManager, "emp-9"), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMyPresence_ScopesToCaller(t *testing.T) {
	f := newRouterFixture(t)

	rec, _ := f.do(t, http.MethodGet, "/api/v1/presences/me?employee_id=emp-2&date=2026-03-02", f.token(t, user.RoleEmployee, "emp-1"), nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, f.attendance.lastFilter.EmployeeID)
	assert.Equal(t, "emp-1", *f.attendance.lastFilter.EmployeeID)
	require.NotNil(t, f.attendance.lastFilter.Date)
	assert.Equal(t, "2026-03-02", *f.attendance.lastFilter.Date)
}

func TestMyPresence_RequiresEmployeeProfile(t *testing.T) {
	f := newRouterFixture(t)

	rec, _ := f.do(t, http.MethodGet, "/api/v1/presences/me", f.token(t, user.RoleOwner, ""), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRegenerateCredential(t *testing.T) {
	f := newRouterFixture(t)

	rec, _ := f.do(t, http.MethodPost, "/api/v1/employees/"+employeeUUID+"/badge-credential/regenerate", f.token(t, user.RoleManager, "emp-9"), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code, "managers cannot manage employees")

	rec, resp := f.do(t, http.MethodPost, "/api/v1/employees/"+employeeUUID+"/badge-credential/regenerate", f.token(t, user.RoleOwner, ""), nil)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, resp.Success)
	assert.Equal(t, employeeUUID, f.attendance.regenerated)

	rec, _ = f.do(t, http.MethodPost, "/api/v1/badge-credentials/me/regenerate", f.token(t, user.RoleEmployee, "emp-1"), nil)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "emp-1", f.attendance.regenerated)
}

func TestLeaveStatus(t *testing.T) {
	f := newRouterFixture(t)

	rec, _ := f.do(t, http.MethodPatch, "/api/v1/leave-requests/"+leaveRequestUUID+"/status", f.token(t, user.RoleEmployee, "emp-1"), map[string]string{"status": "approved"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, resp := f.do(t, http.MethodPatch, "/api/v1/leave-requests/"+leaveRequestUUID+"/status", f.token(t, user.RoleManager, "emp-9"), map[string]string{
		"status": "rejected",
		"reason": "team offsite",
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)
	assert.Equal(t, leaveRequestUUID, f.leave.transition.RequestID)
	require.NotNil(t, f.leave.transition.Reason)
	assert.Equal(t, "team offsite", *f.leave.transition.Reason)
	require.NotNil(t, f.leave.adminID)
	assert.Equal(t, "usr-manager", *f.leave.adminID)

	rec, _ = f.do(t, http.MethodPatch, "/api/v1/leave-requests/"+missingRequestUUID+"/status", f.token(t, user.RoleManager, "emp-9"), map[string]string{"status": "approved"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMalformedPathIDs(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		role   user.Role
		body   interface{}
	}{
		{"leave status", http.MethodPatch, "/api/v1/leave-requests/abc/status", user.RoleManager, map[string]string{"status": "approved"}},
		{"leave get", http.MethodGet, "/api/v1/leave-requests/abc", user.RoleManager, nil},
		{"leave audits", http.MethodGet, "/api/v1/leave-requests/abc/audits", user.RoleManager, nil},
		{"notification read", http.MethodPatch, "/api/v1/notifications/abc/read", user.RoleEmployee, nil},
		{"credential regenerate", http.MethodPost, "/api/v1/employees/abc/badge-credential/regenerate", user.RoleOwner, nil},
		{"uuid with a trailing char", http.MethodGet, "/api/v1/leave-requests/" + leaveRequestUUID + "x", user.RoleManager, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newRouterFixture(t)

			rec, resp := f.do(t, tt.method, tt.path, f.token(t, tt.role, "emp-1"), tt.body)

			assert.Equal(t, http.StatusNotFound, rec.Code)
			require.NotNil(t, resp.Error)
			assert.Equal(t, "NOT_FOUND", resp.Error.Code)
			assert.Empty(t, f.leave.transition.RequestID, "the service is never called")
			assert.Empty(t, f.attendance.regenerated)
		})
	}
}

func TestNotifications(t *testing.T) {
	f := newRouterFixture(t)
	token := f.token(t, user.RoleEmployee, "emp-1")

	rec, _ := f.do(t, http.MethodGet, "/api/v1/notifications?page=2&page_size=5", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = f.do(t, http.MethodPatch, "/api/v1/notifications/"+notificationUUID+"/read", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = f.do(t, http.MethodPatch, "/api/v1/notifications/"+otherNotifUUID+"/read", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = f.do(t, http.MethodGet, "/api/v1/notifications", f.token(t, user.RoleOwner, ""), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestStreamTopics(t *testing.T) {
	employeeID := "emp-1"

	assert.Equal(t, []string{bus.UserTopic("emp-1")}, streamTopics(jwt.StreamClaims{EmployeeID: &employeeID, Role: user.RoleEmployee}))
	assert.Equal(t, []string{bus.UserTopic("emp-1"), bus.TopicAdmins}, streamTopics(jwt.StreamClaims{EmployeeID: &employeeID, Role: user.RoleManager}))
	assert.Equal(t, []string{bus.TopicAdmins}, streamTopics(jwt.StreamClaims{Role: user.RoleOwner}))
	assert.Empty(t, streamTopics(jwt.StreamClaims{Role: user.RoleEmployee}))
}

func TestStream(t *testing.T) {
	f := newRouterFixture(t)
	server := httptest.NewServer(f.router)
	defer server.Close()

	rec, resp := f.do(t, http.MethodGet, "/api/v1/notifications/sse-token", f.token(t, user.RoleManager, "emp-9"), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	data, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var issued notification.SSETokenResponse
	require.NoError(t, json.Unmarshal(data, &issued))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/api/v1/notifications/stream?token="+issued.Token, nil)
	require.NoError(t, err)

	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, "text/event-stream", res.Header.Get("Content-Type"))

	f.notifications.events <- notification.SSEEvent{Event: notification.EventNotification, Data: map[string]string{"title": "leave approved"}}

	reader := bufio.NewReader(res.Body)
	var lines []string
	for len(lines) < 4 {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}

	assert.Equal(t, "event: connected", lines[0])
	assert.Equal(t, "event: notification", lines[2])
	assert.JSONEq(t, `{"title":"leave approved"}`, strings.TrimPrefix(lines[3], "data: "))
	assert.Equal(t, []string{bus.UserTopic("emp-9"), bus.TopicAdmins}, f.notifications.subscribedTopics())
}

func TestStream_RejectsAccessToken(t *testing.T) {
	f := newRouterFixture(t)

	rec, _ := f.do(t, http.MethodGet, "/api/v1/notifications/stream?token="+f.token(t, user.RoleEmployee, "emp-1"), "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = f.do(t, http.MethodGet, "/api/v1/notifications/stream", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHealth(t *testing.T) {
	healthy := newRouterFixture(t,
		HealthCheck{Name: "postgres", Ping: func(context.Context) error { return nil }},
		HealthCheck{Name: "redis", Ping: func(context.Context) error { return nil }},
	)
	rec, _ := healthy.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	degraded := newRouterFixture(t,
		HealthCheck{Name: "postgres", Ping: func(context.Context) error { return nil }},
		HealthCheck{Name: "redis", Ping: func(context.Context) error { return errors.New("dial tcp: connection refused") }},
	)
	rec, resp := degraded.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "ok", resp.Error.Details["postgres"])
	assert.Contains(t, resp.Error.Details["redis"], "connection refused")
}

func TestMetricsEndpoint(t *testing.T) {
	f := newRouterFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
