package cron

import (
	"context"
	"fmt"

	"github.com/erancho/erancho-backend/internal/reports"
	"github.com/erancho/erancho-backend/pkg/calendar"
	"github.com/erancho/erancho-backend/pkg/logger"
)

// AttendanceSummaryJobParams configure the daily attendance summary.
type AttendanceSummaryJobParams struct {
	Logger  *logger.Logger
	Reports attendanceSummarizer
	Clock   calendar.Clock
}

type attendanceSummarizer interface {
	Summarize(ctx context.Context, date calendar.Date) (*reports.Summary, error)
}

// NewAttendanceSummaryJob builds the job logging today's attendance counts.
func NewAttendanceSummaryJob(params AttendanceSummaryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Reports == nil {
		return nil, fmt.Errorf("report service required")
	}
	return &attendanceSummaryJob{logg: params.Logger, reports: params.Reports, clock: params.Clock}, nil
}

type attendanceSummaryJob struct {
	logg    *logger.Logger
	reports attendanceSummarizer
	clock   calendar.Clock
	last    *reports.Summary
}

func (j *attendanceSummaryJob) Name() string { return "daily-attendance-summary" }

func (j *attendanceSummaryJob) Run(ctx context.Context) error {
	today := j.clock.Today()
	summary, err := j.reports.Summarize(ctx, today)
	if err != nil {
		return fmt.Errorf("attendance summary for %s: %w", today, err)
	}
	j.last = summary
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"date":     summary.Date.String(),
		"reserved": summary.Reserved,
		"present":  summary.Present,
		"absent":   summary.Absent,
		"orphaned": summary.Orphaned,
	})
	j.logg.Info(logCtx, "attendance.summary")
	return nil
}
