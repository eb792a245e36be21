package domain

import (
	"context"
	"time"
)

// ReportJobCause описывает источник запроса на отчёт.
type ReportJobCause string

const (
	// ReportCauseManual — отчёт запрошен вручную.
	ReportCauseManual ReportJobCause = "manual"
	// ReportCauseScheduled — отчёт запланирован по расписанию.
	ReportCauseScheduled ReportJobCause = "scheduled"
)

// ReportJob содержит информацию о задаче построения отчёта.
type ReportJob struct {
	ID          string         `json:"job_id,omitempty"`
	UserID      int64          `json:"user_id"`
	Date        time.Time      `json:"date"`
	RequestedAt time.Time      `json:"requested_at"`
	Cause       ReportJobCause `json:"cause"`
}

// ReportQueue описывает очередь задач на построение отчётов.
type ReportQueue interface {
	Enqueue(ctx context.Context, job ReportJob) error
	Pop(ctx context.Context) (ReportJob, error)
}
