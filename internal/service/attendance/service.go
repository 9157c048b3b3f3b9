package attendance

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-presence-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-presence-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-presence-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-presence-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-presence-go/internal/pkg/metrics"
	"github.com/cmlabs-hris/hris-presence-go/internal/pkg/validator"
	"github.com/moby/locker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/crypto/blake2b"
)

var tracer = otel.Tracer("github.com/cmlabs-hris/hris-presence-go/internal/service/attendance")

const tokenBytes = 32

type AttendanceServiceImpl struct {
	tx          database.Transactor
	events      attendance.BadgeEventRepository
	presence    attendance.PresenceRepository
	credentials attendance.CredentialRepository
	employees   employee.EmployeeRepository
	metrics     *metrics.Metrics

	// days serializes scans of one employee and day inside this process
	days     *locker.Locker
	location *time.Location
	now      func() time.Time
}

func NewAttendanceService(
	tx database.Transactor,
	eventRepository attendance.BadgeEventRepository,
	presenceRepository attendance.PresenceRepository,
	credentialRepository attendance.CredentialRepository,
	employeeRepository employee.EmployeeRepository,
	m *metrics.Metrics,
	location *time.Location,
) *AttendanceServiceImpl {
	if location == nil {
		location = time.UTC
	}
	return &AttendanceServiceImpl{
		tx:          tx,
		events:      eventRepository,
		presence:    presenceRepository,
		credentials: credentialRepository,
		employees:   employeeRepository,
		metrics:     m,
		days:        locker.New(),
		location:    location,
		now:         time.Now,
	}
}

// HashToken returns the stored form of a credential token
func HashToken(token string) string {
	sum := blake2b.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// workDateOf returns the calendar day of t in the service timezone
func (a *AttendanceServiceImpl) workDateOf(t time.Time) time.Time {
	local := t.In(a.location)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, a.location)
}

// Scan implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) Scan(ctx context.Context, actor user.Actor, req attendance.ScanRequest) (attendance.ScanResponse, error) {
	ctx, span := tracer.Start(ctx, "attendance.Scan")
	defer span.End()

	started := time.Now()
	resp, err := a.scan(ctx, actor, req)
	a.metrics.ObserveScanLatency(time.Since(started))

	outcome := "accepted"
	if err != nil {
		outcome = "error"
		var validationErr validator.ValidationErrors
		if errors.Is(err, attendance.ErrSequenceViolation) || errors.As(err, &validationErr) ||
			errors.Is(err, attendance.ErrInvalidEventType) {
			outcome = "rejected"
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	a.metrics.IncrementScan(req.EventType, outcome)
	span.SetAttributes(
		attribute.String("scan.event_type", req.EventType),
		attribute.String("scan.outcome", outcome),
	)

	return resp, err
}

func (a *AttendanceServiceImpl) scan(ctx context.Context, actor user.Actor, req attendance.ScanRequest) (attendance.ScanResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.ScanResponse{}, err
	}
	eventType := attendance.EventType(req.EventType)
	if !eventType.IsValid() {
		return attendance.ScanResponse{}, attendance.ErrInvalidEventType
	}

	credential, err := a.credentials.GetActiveByTokenHash(ctx, HashToken(req.CredentialToken))
	if err != nil {
		return attendance.ScanResponse{}, err
	}

	if !actor.IsEmployee(credential.EmployeeID) && !actor.Can(user.PermissionAttendanceScanAny) {
		return attendance.ScanResponse{}, attendance.ErrForbiddenScan
	}

	emp, err := a.employees.GetByID(ctx, credential.EmployeeID)
	if err != nil {
		return attendance.ScanResponse{}, fmt.Errorf("failed to get employee: %w", err)
	}
	if !emp.CanScan() {
		return attendance.ScanResponse{}, attendance.ErrEmployeeInactive
	}

	// The request time only picks the day; the event is stamped once the day is locked.
	workDate := a.workDateOf(a.now())

	key := emp.ID + ":" + workDate.Format(attendance.DateLayout)
	a.days.Lock(key)
	defer a.days.Unlock(key)

	var (
		event     attendance.BadgeEvent
		record    attendance.PresenceRecord
		scannedAt time.Time
	)

	// Once the ledger unit begins it commits regardless of the caller
	err = a.tx.WithinTransaction(context.WithoutCancel(ctx), func(ctx context.Context) error {
		if err := a.events.LockDay(ctx, emp.ID, workDate); err != nil {
			return err
		}

		todays, err := a.events.ListByEmployeeAndDate(ctx, emp.ID, workDate)
		if err != nil {
			return err
		}

		if err := attendance.ValidateSequence(todays, eventType); err != nil {
			return err
		}

		scannedAt = stampAfter(a.now(), todays)

		event, err = a.events.Append(ctx, attendance.BadgeEvent{
			EmployeeID: emp.ID,
			WorkDate:   workDate,
			Type:       eventType,
			ScannedAt:  scannedAt,
			Latitude:   req.Latitude,
			Longitude:  req.Longitude,
			DeviceTag:  req.DeviceTag,
		})
		if err != nil {
			return err
		}

		current, err := a.presence.GetOrCreateForUpdate(ctx, emp.ID, workDate)
		if err != nil {
			return err
		}

		record = attendance.Apply(current, event, todays)
		if err := a.presence.Update(ctx, record); err != nil {
			return err
		}
		record.UpdatedAt = scannedAt
		return nil
	})
	if err != nil {
		if errors.Is(err, attendance.ErrSequenceViolation) {
			slog.Info("badge scan rejected",
				"employee_id", emp.ID,
				"event_type", eventType,
				"reason", err.Error(),
			)
		}
		return attendance.ScanResponse{}, err
	}

	record.EmployeeName = &emp.FullName

	return attendance.ScanResponse{
		Event:    attendance.ToBadgeEventResponse(event),
		Presence: attendance.ToPresenceResponse(record),
	}, nil
}

// stampAfter returns now, or the latest scan time in todays when that is later.
func stampAfter(now time.Time, todays []attendance.BadgeEvent) time.Time {
	for _, e := range todays {
		if e.ScannedAt.After(now) {
			now = e.ScannedAt
		}
	}
	return now
}

// ListEvents implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ListEvents(ctx context.Context, filter attendance.BadgeEventFilter) (attendance.ListBadgeEventResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.ListBadgeEventResponse{}, err
	}

	events, total, err := a.events.List(ctx, filter)
	if err != nil {
		return attendance.ListBadgeEventResponse{}, err
	}

	responses := make([]attendance.BadgeEventResponse, 0, len(events))
	for _, e := range events {
		responses = append(responses, attendance.ToBadgeEventResponse(e))
	}

	return attendance.ListBadgeEventResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: attendance.TotalPages(total, filter.Limit),
		Events:     responses,
	}, nil
}

// ListPresence implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ListPresence(ctx context.Context, filter attendance.PresenceFilter) (attendance.ListPresenceResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.ListPresenceResponse{}, err
	}

	records, total, err := a.presence.List(ctx, filter)
	if err != nil {
		return attendance.ListPresenceResponse{}, err
	}

	responses := make([]attendance.PresenceResponse, 0, len(records))
	for _, r := range records {
		responses = append(responses, attendance.ToPresenceResponse(r))
	}

	return attendance.ListPresenceResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: attendance.TotalPages(total, filter.Limit),
		Presences:  responses,
	}, nil
}

// GetActiveCredential implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetActiveCredential(ctx context.Context, employeeID string) (attendance.CredentialResponse, error) {
	credential, err := a.credentials.GetActiveByEmployeeID(ctx, employeeID)
	if err != nil {
		return attendance.CredentialResponse{}, err
	}
	return attendance.ToCredentialResponse(credential), nil
}

// RegenerateCredential implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) RegenerateCredential(ctx context.Context, employeeID string) (attendance.IssuedCredentialResponse, error) {
	if _, err := a.employees.GetByID(ctx, employeeID); err != nil {
		return attendance.IssuedCredentialResponse{}, err
	}

	raw := make([]byte, tokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return attendance.IssuedCredentialResponse{}, fmt.Errorf("failed to generate badge token: %w", err)
	}
	token := base64.RawURLEncoding.EncodeToString(raw)

	var issued attendance.BadgeCredential
	err := a.tx.WithinTransaction(context.WithoutCancel(ctx), func(ctx context.Context) error {
		if err := a.credentials.RetireActive(ctx, employeeID, a.now()); err != nil {
			return err
		}

		var err error
		issued, err = a.credentials.Create(ctx, attendance.BadgeCredential{
			EmployeeID: employeeID,
			TokenHash:  HashToken(token),
		})
		return err
	})
	if err != nil {
		return attendance.IssuedCredentialResponse{}, err
	}

	slog.Info("badge credential regenerated", "employee_id", employeeID, "credential_id", issued.ID)

	return attendance.IssuedCredentialResponse{
		CredentialResponse: attendance.ToCredentialResponse(issued),
		Token:              token,
	}, nil
}

// SyncLeavePresence implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) SyncLeavePresence(ctx context.Context, day time.Time) (int64, error) {
	workDate := a.workDateOf(day)

	n, err := a.presence.MarkOnLeave(ctx, workDate)
	if err != nil {
		return 0, fmt.Errorf("failed to sync leave presence for %s: %w", workDate.Format(attendance.DateLayout), err)
	}
	return n, nil
}
