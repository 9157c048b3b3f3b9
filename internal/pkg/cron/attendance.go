package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// LeavePresenceSyncer is the slice of the attendance service the jobs need
type LeavePresenceSyncer interface {
	SyncLeavePresence(ctx context.Context, workDate time.Time) (int64, error)
}

type AttendanceJobs struct {
	attendance LeavePresenceSyncer
	interval   time.Duration
	now        func() time.Time
}

func NewAttendanceJobs(attendance LeavePresenceSyncer, interval time.Duration) *AttendanceJobs {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &AttendanceJobs{
		attendance: attendance,
		interval:   interval,
		now:        time.Now,
	}
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("sync_leave_presence", j.interval, j.SyncLeavePresence)
}

// SyncLeavePresence marks today's presence on_leave for employees with an approved leave
// covering today who have not arrived. It is idempotent, so running it every tick is safe.
func (j *AttendanceJobs) SyncLeavePresence(ctx context.Context) error {
	marked, err := j.attendance.SyncLeavePresence(ctx, j.now())
	if err != nil {
		return fmt.Errorf("sync leave presence: %w", err)
	}

	if marked > 0 {
		slog.Info("Cron: presence marked on leave", "count", marked)
	}
	return nil
}
